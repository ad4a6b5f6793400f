package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/patternpilot/internal/config"
	"github.com/mj1618/patternpilot/internal/observability"
	"github.com/mj1618/patternpilot/internal/output"
)

// Version is stamped by the release build.
var Version = "dev"

var (
	// cfg and logger are resolved once per invocation by the root pre-run.
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "patternpilot",
	Short: "Drive a desktop browser through on-screen patterns",
	Long: `patternpilot drives a desktop browser from the outside: it finds UI elements
by matching image templates on screen, sends synthetic keyboard and mouse
input and reads results back through the clipboard.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command. Failures are logged, printed as an error
// result and turn into exit status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		if printErr := output.Print(output.NewErrorResult(err)); printErr != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		observability.Sync()
		os.Exit(1)
	}
	observability.Sync()
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./patternpilot.yaml or ~/.config/patternpilot/patternpilot.yaml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Dotenv file read before the environment")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		configFile, _ := rootCmd.PersistentFlags().GetString("config")
		envFile, _ := rootCmd.PersistentFlags().GetString("env-file")
		loaded, err := config.Load(config.LoadOptions{ConfigFile: configFile, EnvFile: envFile})
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		observability.InitializeLogger(cfg.Logger())
		logger = observability.GetLogger().With(
			zap.String("run_id", uuid.NewString()),
			zap.String("command", cmd.Name()),
		)
		logger.Debug("configuration loaded", zap.Stringer("target", cfg.Target()))
		return nil
	}
}
