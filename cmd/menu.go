package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/output"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/screen"
)

var zoomOptions = map[string]action.ZoomOption{
	"in":        action.ZoomIn,
	"out":       action.ZoomOut,
	"reset":     action.ZoomReset,
	"text-only": action.ZoomTextOnly,
}

var locationBarOptions = map[string]action.LocationBarOption{
	"undo":       action.LocationUndo,
	"cut":        action.LocationCut,
	"copy":       action.LocationCopy,
	"paste":      action.LocationPaste,
	"paste-go":   action.LocationPasteAndGo,
	"delete":     action.LocationDelete,
	"select-all": action.LocationSelectAll,
}

func keysOf[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parseOption[T any](kind string, m map[string]T, s string) (T, error) {
	v, ok := m[strings.ToLower(s)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s option %q (want one of %s)", kind, s, strings.Join(keysOf(m), ", "))
	}
	return v, nil
}

func regionResult(act string, r screen.Region) output.ActionResult {
	b := r.Bounds()
	return output.ActionResult{Action: act, OK: true, Region: &b}
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Open a browser menu and choose an entry",
}

var menuHamburgerCmd = &cobra.Command{
	Use:   "hamburger <option-pattern>",
	Short: "Choose an entry of the hamburger menu",
	Args:  cobra.ExactArgs(1),
	RunE:  runMenuWithOption("hamburger menu", (*action.Orchestrator).OpenHamburgerMenuOption),
}

var menuLibraryCmd = &cobra.Command{
	Use:   "library <option-pattern>",
	Short: "Choose an entry of the library menu",
	Args:  cobra.ExactArgs(1),
	RunE:  runMenuWithOption("library menu", (*action.Orchestrator).OpenLibraryMenu),
}

var menuBookmarkingCmd = &cobra.Command{
	Use:   "bookmarking <option-pattern>",
	Short: "Choose an entry of Library > Bookmarking Tools",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		option, err := e.pattern(args[0], 0)
		if err != nil {
			return err
		}
		if err := e.actions.AccessBookmarkingTools(option); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "bookmarking tools", OK: true, Detail: args[0]})
	},
}

var menuZoomCmd = &cobra.Command{
	Use:       "zoom <option>",
	Short:     "Choose an entry of View > Zoom",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: keysOf(zoomOptions),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := parseOption("zoom", zoomOptions, args[0])
		if err != nil {
			return err
		}
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.SelectZoomMenuOption(opt); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "zoom menu", OK: true, Detail: args[0]})
	},
}

var menuLocationBarCmd = &cobra.Command{
	Use:       "location-bar <option>",
	Short:     "Choose an entry of the open location bar context menu",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: keysOf(locationBarOptions),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := parseOption("location bar", locationBarOptions, args[0])
		if err != nil {
			return err
		}
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.SelectLocationBarOption(opt); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "location bar option", OK: true, Detail: args[0]})
	},
}

var menuAboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Open the About dialog from the Help menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.OpenAboutDialog(); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "about dialog", OK: true})
	},
}

var regionCmd = &cobra.Command{
	Use:       "region <hamburger|url-bar>",
	Short:     "Print the screen region of the hamburger pop-up or the URL bar",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"hamburger", "url-bar"},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		var r screen.Region
		switch args[0] {
		case "hamburger":
			r, err = e.actions.HamburgerMenuRegion()
		case "url-bar":
			r, err = e.actions.URLBarRegion()
		}
		if err != nil {
			return err
		}
		return output.Print(regionResult(args[0]+" region", r))
	},
}

func runMenuWithOption(act string, open func(*action.Orchestrator, pattern.Pattern, ...action.ChoiceOption) (screen.Region, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var opts []action.ChoiceOption
		if verify, _ := cmd.Flags().GetBool("verify"); verify {
			opts = append(opts, action.VerifyGone())
		}
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		option, err := e.pattern(args[0], 0)
		if err != nil {
			return err
		}
		r, err := open(e.actions, option, opts...)
		if err != nil {
			return err
		}
		res := regionResult(act, r)
		res.Detail = args[0]
		return output.Print(res)
	}
}

func init() {
	for _, c := range []*cobra.Command{menuHamburgerCmd, menuLibraryCmd} {
		c.Flags().Bool("verify", false, "Fail unless the entry disappears after the click")
	}
	rootCmd.AddCommand(menuCmd, regionCmd)
	menuCmd.AddCommand(menuHamburgerCmd, menuLibraryCmd, menuBookmarkingCmd,
		menuZoomCmd, menuLocationBarCmd, menuAboutCmd)
}
