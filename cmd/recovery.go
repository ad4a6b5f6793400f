package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/output"
	"github.com/mj1618/patternpilot/internal/pattern"
	"github.com/mj1618/patternpilot/internal/recovery"
)

// RecoveryResult is the output of the quit, restart and crash-reporter
// commands.
type RecoveryResult struct {
	Action string           `yaml:"action" json:"action"`
	OK     bool             `yaml:"ok" json:"ok"`
	Final  string           `yaml:"final,omitempty" json:"final,omitempty"`
	Report *recovery.Report `yaml:"report,omitempty" json:"report,omitempty"`
	Crash  string           `yaml:"crash,omitempty" json:"crash,omitempty"`
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Quit the browser and confirm it went away",
	Long: `Send the quit shortcut and wait for the browser's home button to vanish.
If it is still there, escalate once (confirm, dismiss, refocus, quit again)
before failing. A crash reporter that shows up afterwards is dismissed.`,
	Args: cobra.NoArgs,
	RunE: runQuit,
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Quit the browser, launch it again and wait for it to come back",
	Args:  cobra.NoArgs,
	RunE:  runRestart,
}

var waitRestartCmd = &cobra.Command{
	Use:   "wait-restart",
	Short: "Follow a restart the browser does on its own",
	Args:  cobra.NoArgs,
	RunE:  runWaitRestart,
}

var confirmLaunchCmd = &cobra.Command{
	Use:   "confirm-launch",
	Short: "Wait for the launch page to show up",
	Args:  cobra.NoArgs,
	RunE:  runConfirmLaunch,
}

var crashReporterCmd = &cobra.Command{
	Use:   "crash-reporter",
	Short: "Dismiss the crash reporter if it is showing",
	Args:  cobra.NoArgs,
	RunE:  runCrashReporter,
}

func init() {
	rootCmd.AddCommand(quitCmd, restartCmd, waitRestartCmd, confirmLaunchCmd, crashReporterCmd)
	restartCmd.Flags().String("check", "", "Pattern that proves the browser is back (default: home button)")
	restartCmd.Flags().Float64("similarity", 0, "Similarity for the check pattern (0 = catalog default)")
}

func reportResult(act string, r recovery.Report, err error) error {
	logger.Info(act, zap.Stringer("report", r), zap.Error(err))
	if err != nil {
		return err
	}
	return output.Print(RecoveryResult{Action: act, OK: true, Final: string(r.Final()), Report: &r})
}

func runQuit(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	r, err := e.recovery.Quit()
	return reportResult("quit", r, err)
}

func runRestart(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	checkName, _ := cmd.Flags().GetString("check")
	similarity, _ := cmd.Flags().GetFloat64("similarity")

	var check *pattern.Pattern
	if checkName != "" {
		p, err := e.pattern(checkName, similarity)
		if err != nil {
			return err
		}
		check = &p
	}
	r, err := e.recovery.Restart(check)
	return reportResult("restart", r, err)
}

func runWaitRestart(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	if err := e.recovery.WaitForRestart(); err != nil {
		return err
	}
	return output.Print(RecoveryResult{Action: "wait-restart", OK: true})
}

func runConfirmLaunch(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	if err := e.recovery.ConfirmLaunch(); err != nil {
		return err
	}
	return output.Print(RecoveryResult{Action: "confirm-launch", OK: true})
}

func runCrashReporter(cmd *cobra.Command, args []string) error {
	e, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	state, err := e.recovery.DismissCrashReporter()
	if err != nil {
		return err
	}
	return output.Print(RecoveryResult{Action: "crash-reporter", OK: true, Crash: string(state)})
}
