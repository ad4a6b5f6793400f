package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/output"
)

var prefCmd = &cobra.Command{
	Use:   "pref",
	Short: "Read or change a browser preference through about:config",
}

var prefGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the value of a preference",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrefGet,
}

var prefSetCmd = &cobra.Command{
	Use:   "set <name> <value>",
	Short: "Change a preference",
	Long: `Change a preference through about:config. A preference that already has the
value is left alone; boolean preferences are toggled.`,
	Args: cobra.ExactArgs(2),
	RunE: runPrefSet,
}

func init() {
	rootCmd.AddCommand(prefCmd)
	prefCmd.AddCommand(prefGetCmd, prefSetCmd)
}

func runPrefGet(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	value, err := e.prefs.Get(args[0])
	if err != nil {
		return err
	}
	return output.Print(output.PrefResult{Name: args[0], Value: value})
}

func runPrefSet(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	res, err := e.prefs.Set(args[0], args[1])
	if err != nil {
		return err
	}
	return output.Print(output.PrefResult{Name: args[0], Value: args[1], Result: string(res)})
}
