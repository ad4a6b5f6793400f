// Package config loads the run configuration once at startup. The result is
// an immutable value handed to every component that needs timing or
// platform facts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/mj1618/patternpilot/internal/platform"
)

// EnvPrefix prefixes every environment override, e.g. PATTERNPILOT_TIMING_UI_DELAY.
const EnvPrefix = "PATTERNPILOT"

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// PlatformConfig overrides platform detection. Empty OS means detect.
type PlatformConfig struct {
	OS      string `mapstructure:"os" yaml:"os"`
	Version string `mapstructure:"version" yaml:"version"`
	// Locale of the browser UI. Right-to-left locales flip some menu
	// keyboard navigation.
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// PatternsConfig locates the template catalog.
type PatternsConfig struct {
	Dir        string  `mapstructure:"dir" yaml:"dir"`
	Similarity float64 `mapstructure:"similarity" yaml:"similarity"`
}

// TimingConfig holds the fixed delays between steps.
type TimingConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	AnchorWait   time.Duration `mapstructure:"anchor_wait" yaml:"anchor_wait"`
	UIDelay      time.Duration `mapstructure:"ui_delay" yaml:"ui_delay"`
	UIDelayLong  time.Duration `mapstructure:"ui_delay_long" yaml:"ui_delay_long"`
	FXDelay      time.Duration `mapstructure:"fx_delay" yaml:"fx_delay"`
	SystemDelay  time.Duration `mapstructure:"system_delay" yaml:"system_delay"`
	TypeDelay    time.Duration `mapstructure:"type_delay" yaml:"type_delay"`
	HoverDelay   time.Duration `mapstructure:"hover_delay" yaml:"hover_delay"`
}

// TimeoutsConfig bounds each named wait.
type TimeoutsConfig struct {
	Element       time.Duration `mapstructure:"element" yaml:"element"`
	Option        time.Duration `mapstructure:"option" yaml:"option"`
	Submenu       time.Duration `mapstructure:"submenu" yaml:"submenu"`
	Control       time.Duration `mapstructure:"control" yaml:"control"`
	Dialog        time.Duration `mapstructure:"dialog" yaml:"dialog"`
	QuitVanish    time.Duration `mapstructure:"quit_vanish" yaml:"quit_vanish"`
	RelaunchWait  time.Duration `mapstructure:"relaunch_wait" yaml:"relaunch_wait"`
	LaunchWait    time.Duration `mapstructure:"launch_wait" yaml:"launch_wait"`
	CrashExists   time.Duration `mapstructure:"crash_exists" yaml:"crash_exists"`
	CrashVanish   time.Duration `mapstructure:"crash_vanish" yaml:"crash_vanish"`
	RestartVanish time.Duration `mapstructure:"restart_vanish" yaml:"restart_vanish"`
	RestartAppear time.Duration `mapstructure:"restart_appear" yaml:"restart_appear"`
}

// CrashConfig controls crash-reporter dismissal.
type CrashConfig struct {
	Annotation string `mapstructure:"annotation" yaml:"annotation"`
}

// DiagConfig controls timeout screenshots.
type DiagConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

type raw struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Platform PlatformConfig `mapstructure:"platform"`
	Patterns PatternsConfig `mapstructure:"patterns"`
	Timing   TimingConfig   `mapstructure:"timing"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
	Crash    CrashConfig    `mapstructure:"crash"`
	Diag     DiagConfig     `mapstructure:"diag"`
}

// Config is the resolved configuration. Fields are private; the accessors
// return copies, so a Config cannot be changed after Load.
type Config struct {
	logger   LoggerConfig
	platform PlatformConfig
	target   platform.Target
	patterns PatternsConfig
	timing   TimingConfig
	timeouts TimeoutsConfig
	crash    CrashConfig
	diag     DiagConfig
}

func (c Config) Logger() LoggerConfig     { return c.logger }
func (c Config) Platform() PlatformConfig { return c.platform }
func (c Config) Target() platform.Target  { return c.target }
func (c Config) Patterns() PatternsConfig { return c.patterns }
func (c Config) Timing() TimingConfig     { return c.timing }
func (c Config) Timeouts() TimeoutsConfig { return c.timeouts }
func (c Config) Crash() CrashConfig       { return c.crash }
func (c Config) Diag() DiagConfig         { return c.diag }

// Locale returns the configured UI locale, "en-US" when unset.
func (c Config) Locale() string {
	if c.platform.Locale == "" {
		return "en-US"
	}
	return c.platform.Locale
}

// WithTarget returns a copy of c for another platform.
func (c Config) WithTarget(t platform.Target) Config {
	c.target = t
	c.platform.OS = string(t.OS)
	c.platform.Version = t.Version
	return c
}

// WithLocale returns a copy of c with another UI locale.
func (c Config) WithLocale(locale string) Config {
	c.platform.Locale = locale
	return c
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "patternpilot")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Platform --
	v.SetDefault("platform.os", "")
	v.SetDefault("platform.version", "")
	v.SetDefault("platform.locale", "en-US")

	// -- Patterns --
	v.SetDefault("patterns.dir", "./patterns")
	v.SetDefault("patterns.similarity", 0.8)

	// -- Timing --
	v.SetDefault("timing.poll_interval", "250ms")
	v.SetDefault("timing.anchor_wait", "5s")
	v.SetDefault("timing.ui_delay", "1s")
	v.SetDefault("timing.ui_delay_long", "2500ms")
	v.SetDefault("timing.fx_delay", "500ms")
	v.SetDefault("timing.system_delay", "5s")
	v.SetDefault("timing.type_delay", "100ms")
	v.SetDefault("timing.hover_delay", "300ms")

	// -- Timeouts --
	v.SetDefault("timeouts.element", "10s")
	v.SetDefault("timeouts.option", "10s")
	v.SetDefault("timeouts.submenu", "15s")
	v.SetDefault("timeouts.control", "5s")
	v.SetDefault("timeouts.dialog", "3s")
	v.SetDefault("timeouts.quit_vanish", "10s")
	v.SetDefault("timeouts.relaunch_wait", "20s")
	v.SetDefault("timeouts.launch_wait", "20s")
	v.SetDefault("timeouts.crash_exists", "2s")
	v.SetDefault("timeouts.crash_vanish", "20s")
	v.SetDefault("timeouts.restart_vanish", "10s")
	v.SetDefault("timeouts.restart_appear", "20s")

	// -- Crash reporter --
	v.SetDefault("crash.annotation", "Automation test crash.")

	// -- Diagnostics --
	v.SetDefault("diag.enabled", false)
	v.SetDefault("diag.dir", "~/.patternpilot/captures")
}

// Default returns the built-in configuration for target.
func Default(target platform.Target) Config {
	v := viper.New()
	SetDefaults(v)
	v.Set("platform.os", string(target.OS))
	v.Set("platform.version", target.Version)
	cfg, err := FromViper(v)
	if err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return cfg
}

// LoadOptions says where Load looks.
type LoadOptions struct {
	// ConfigFile is an explicit config path. When empty, patternpilot.yaml is
	// searched for in the working directory and ~/.config/patternpilot.
	ConfigFile string
	// EnvFile is a dotenv file loaded before the environment is read. A
	// missing file is not an error.
	EnvFile string
}

// Load reads defaults, the config file, the dotenv file and the
// PATTERNPILOT_* environment, in increasing order of precedence.
func Load(opts LoadOptions) (Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		path, err := homedir.Expand(opts.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("patternpilot")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home + "/.config/patternpilot")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return FromViper(v)
}

// detect is platform.Detect; tests replace it.
var detect = platform.Detect

// FromViper builds a validated Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	var target platform.Target
	if r.Platform.OS == "" {
		detected, err := detect()
		if err != nil {
			return Config{}, fmt.Errorf("detect platform: %w", err)
		}
		target = detected
	} else {
		parsed, err := platform.ParseOS(r.Platform.OS)
		if err != nil {
			return Config{}, fmt.Errorf("platform.os: %w", err)
		}
		target = platform.Target{OS: parsed, Version: r.Platform.Version}
	}
	r.Platform.OS = string(target.OS)
	r.Platform.Version = target.Version

	for _, p := range []*string{&r.Patterns.Dir, &r.Logger.LogFile, &r.Diag.Dir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return Config{}, fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}

	cfg := Config{
		logger:   r.Logger,
		platform: r.Platform,
		target:   target,
		patterns: r.Patterns,
		timing:   r.Timing,
		timeouts: r.Timeouts,
		crash:    r.Crash,
		diag:     r.Diag,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for sane values.
func (c Config) Validate() error {
	switch c.logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.logger.Format)
	}
	if c.patterns.Similarity <= 0 || c.patterns.Similarity > 1 {
		return fmt.Errorf("patterns.similarity must be in (0, 1], got %v", c.patterns.Similarity)
	}
	if c.timing.PollInterval <= 0 {
		return fmt.Errorf("timing.poll_interval must be a positive duration")
	}
	delays := map[string]time.Duration{
		"timing.anchor_wait":   c.timing.AnchorWait,
		"timing.ui_delay":      c.timing.UIDelay,
		"timing.ui_delay_long": c.timing.UIDelayLong,
		"timing.fx_delay":      c.timing.FXDelay,
		"timing.system_delay":  c.timing.SystemDelay,
		"timing.type_delay":    c.timing.TypeDelay,
		"timing.hover_delay":   c.timing.HoverDelay,
	}
	for name, d := range delays {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	t := c.timeouts
	for name, d := range map[string]time.Duration{
		"timeouts.element":        t.Element,
		"timeouts.option":         t.Option,
		"timeouts.submenu":        t.Submenu,
		"timeouts.control":        t.Control,
		"timeouts.dialog":         t.Dialog,
		"timeouts.quit_vanish":    t.QuitVanish,
		"timeouts.relaunch_wait":  t.RelaunchWait,
		"timeouts.launch_wait":    t.LaunchWait,
		"timeouts.crash_exists":   t.CrashExists,
		"timeouts.crash_vanish":   t.CrashVanish,
		"timeouts.restart_vanish": t.RestartVanish,
		"timeouts.restart_appear": t.RestartAppear,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.diag.Enabled && c.diag.Dir == "" {
		return fmt.Errorf("diag.dir is required when diag.enabled is set")
	}
	return nil
}
