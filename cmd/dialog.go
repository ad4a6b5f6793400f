package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/action"
	"github.com/mj1618/patternpilot/internal/output"
)

// dialogActions maps dialog command names to orchestrator actions.
var dialogActions = map[string]func(*action.Orchestrator) error{
	"cancel":                (*action.Orchestrator).ClickCancelButton,
	"customize-done":        (*action.Orchestrator).CloseCustomizePage,
	"dont-save-password":    (*action.Orchestrator).DontSavePassword,
	"close-tabs":            (*action.Orchestrator).ConfirmCloseMultipleTabs,
	"remove-zoom-indicator": (*action.Orchestrator).RemoveZoomIndicatorFromToolbar,
}

var dialogCmd = &cobra.Command{
	Use:       "dialog <name>",
	Short:     "Answer a browser dialog or prompt",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: keysOf(dialogActions),
	RunE: func(cmd *cobra.Command, args []string) error {
		run := dialogActions[args[0]]
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := run(e.actions); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "dialog", OK: true, Detail: args[0]})
	},
}

func init() {
	rootCmd.AddCommand(dialogCmd)
}
