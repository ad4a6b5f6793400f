package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/output"
	"github.com/mj1618/patternpilot/internal/prefs"
)

// infoFields are the single-value getters of the info command.
var infoFields = map[string]func(*prefs.Reader) (string, error){
	"version":  (*prefs.Reader).Version,
	"build-id": (*prefs.Reader).BuildID,
	"channel":  (*prefs.Reader).Channel,
	"locale":   (*prefs.Reader).Locale,
}

// infoDumps are the about: pages copied as a whole.
var infoDumps = map[string]func(*prefs.Reader) (prefs.Info, error){
	"support":   (*prefs.Reader).SupportInfo,
	"telemetry": (*prefs.Reader).TelemetryInfo,
}

func infoNames() []string {
	var names []string
	for name := range infoFields {
		names = append(names, name)
	}
	for name := range infoDumps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var infoCmd = &cobra.Command{
	Use:       "info <field>",
	Short:     "Report browser version, build, channel, locale or an about: page dump",
	Long:      "Report browser information. Fields: " + strings.Join(infoNames(), ", ") + ".",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: infoNames(),
	RunE:      runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	return printInfo(e.prefs, args[0])
}

func printInfo(r *prefs.Reader, field string) error {
	if get, ok := infoFields[field]; ok {
		value, err := get(r)
		if err != nil {
			return err
		}
		return output.Print(output.InfoResult{Field: field, Value: value})
	}
	if dump, ok := infoDumps[field]; ok {
		info, err := dump(r)
		if err != nil {
			return err
		}
		return output.Print(info)
	}
	return fmt.Errorf("unknown info field %q (want one of %s)", field, strings.Join(infoNames(), ", "))
}
