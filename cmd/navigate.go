package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/patternpilot/internal/config"
	"github.com/mj1618/patternpilot/internal/output"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate <url>",
	Short: "Load a URL in the current tab",
	Long: `Load a URL in the current tab. The URL is pasted into the location bar by
default; --slow types it key by key for pages that react to typing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		slow, _ := cmd.Flags().GetBool("slow")
		newTab, _ := cmd.Flags().GetBool("new-tab")
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if newTab {
			if err := e.actions.NewTab(); err != nil {
				return err
			}
		}
		navigate := e.actions.Navigate
		if slow {
			navigate = e.actions.NavigateSlow
		}
		if err := navigate(args[0]); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "navigate", OK: true, Detail: args[0]})
	},
}

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Select everything in the focused field, copy it and print the clipboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		text, err := e.actions.CopyToClipboard()
		if err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "copy", OK: true, Detail: text})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Fill the focused login form",
	Long: `Fill the focused login form and submit it. The password falls back to the
PATTERNPILOT_LOGIN_PASSWORD environment variable, which may come from the
dotenv file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv(config.EnvPrefix + "_LOGIN_PASSWORD")
		}
		if username == "" || password == "" {
			return fmt.Errorf("--username and --password are required")
		}
		e, err := newEngine(cfg, logger)
		if err != nil {
			return err
		}
		if err := e.actions.LoginSite(username, password); err != nil {
			return err
		}
		return output.Print(output.ActionResult{Action: "login", OK: true, Detail: username})
	},
}

func init() {
	rootCmd.AddCommand(navigateCmd, copyCmd, loginCmd)
	navigateCmd.Flags().Bool("slow", false, "Type the URL instead of pasting it")
	navigateCmd.Flags().Bool("new-tab", false, "Open a new tab first")
	loginCmd.Flags().String("username", "", "Account name")
	loginCmd.Flags().String("password", "", "Account password")
}
