package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/output"
)

var windowButtons = []string{
	action.ControlClose,
	action.ControlMinimize,
	action.ControlMaximize,
	action.ControlFullScreen,
	action.ControlZoomRestore,
}

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Operate the browser window",
}

var windowControlCmd = &cobra.Command{
	Use:       "control <button>",
	Short:     "Click a title bar button: close, minimize, maximize, full_screen, zoom_restore",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: windowButtons,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.ClickAuxiliaryWindowControl(args[0]); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "window control", OK: true, Detail: args[0]})
	},
}

var windowRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Bring a minimized browser window back from the taskbar or dock",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		library, _ := cmd.Flags().GetBool("library")
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		option := ""
		if library {
			option = action.TaskbarLibrary
		}
		if err := e.actions.RestoreWindowFromTaskbar(option); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "restore window", OK: true, Detail: option})
	},
}

var windowFocusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Give the browser window focus by clicking its title bar area",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.RestoreFocus(); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "restore focus", OK: true})
	},
}

var windowResetMouseCmd = &cobra.Command{
	Use:   "reset-mouse",
	Short: "Move the pointer to the top-left corner of the screen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.ResetMouse(); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "reset mouse", OK: true})
	},
}

var windowZoomCmd = &cobra.Command{
	Use:   "zoom",
	Short: "Zoom the page with the mouse wheel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		times, _ := cmd.Flags().GetInt("times")
		out, _ := cmd.Flags().GetBool("out")
		dir := action.ZoomWheelIn
		if out {
			dir = action.ZoomWheelOut
		}
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.ZoomWithMouseWheel(times, dir); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "zoom with mouse wheel", OK: true})
	},
}

func init() {
	rootCmd.AddCommand(windowCmd)
	windowCmd.AddCommand(windowControlCmd, windowRestoreCmd, windowFocusCmd, windowResetMouseCmd, windowZoomCmd)
	windowRestoreCmd.Flags().Bool("library", false, "Restore the Library window (Windows 7 only)")
	windowZoomCmd.Flags().Int("times", 1, "Number of wheel steps")
	windowZoomCmd.Flags().Bool("out", false, "Zoom out instead of in")
}
