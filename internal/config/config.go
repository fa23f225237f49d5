package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultEnvPrefix      = "HOSTSTATUS"
	DefaultRefreshRate    = 60
	DefaultVolumeInterval = 500 * time.Millisecond
	DefaultFieldWidth     = 5
	DefaultClockFormat    = "Mon 02 Jan 03:04:05 PM"
	DefaultSeparator      = " | "
	DefaultLogLevel       = string(LogLevelWarning)

	configName = "hoststatus"
)

type Config struct {
	// Status selects the status-line mode; otherwise the bar is registered.
	Status bool `mapstructure:"status"`

	RefreshRate    int           `mapstructure:"refresh_rate"`
	VolumeInterval time.Duration `mapstructure:"volume_interval"`
	Mounts         []string      `mapstructure:"mounts"`
	StrictMounts   bool          `mapstructure:"strict_mounts"`
	FieldWidth     int           `mapstructure:"field_width"`
	ClockFormat    string        `mapstructure:"clock_format"`
	Separator      string        `mapstructure:"separator"`
	Sink           string        `mapstructure:"sink"`
	Sysfs          string        `mapstructure:"sysfs"`
	GPU            bool          `mapstructure:"gpu"`
	LogLevel       string        `mapstructure:"log_level"`
	Bar            BarConfig     `mapstructure:"bar"`
}

type BarConfig struct {
	ID       string `mapstructure:"id"`
	Position string `mapstructure:"position"`
	Font     string `mapstructure:"font"`
	Command  string `mapstructure:"command"`
}

// RenderInterval is the render loop's tick period.
func (c *Config) RenderInterval() time.Duration {
	return time.Second / time.Duration(c.RefreshRate)
}

// Load parses args (without the program name) and merges defaults, the optional
// config file and HOSTSTATUS_* environment variables.
func Load(args []string, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := options{
		configPath: os.Getenv(DefaultEnvPrefix + "_CONFIG"),
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	flags := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	status := flags.Bool("status", false, "Print the status line continuously instead of registering the bar")
	if err := flags.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidArgument, err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(DefaultEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.configPath != "" {
		v.SetConfigFile(o.configPath)
		v.SetConfigType("toml")
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("toml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	cfg.Status = *status

	if cfg.Bar.Command == "" {
		exe, err := os.Executable()
		if err != nil {
			exe = configName
		}
		cfg.Bar.Command = StatusCommand(exe)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// StatusCommand is the shell command that starts exe in status mode.
func StatusCommand(exe string) string {
	return shellQuote(exe) + " --status"
}

// shellQuote single-quotes s for sh unless it is made of safe characters only.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, unsafeShellRune) < 0 {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("/._-+:@%,=", r):
		return false
	}

	return true
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("refresh_rate", DefaultRefreshRate)
	v.SetDefault("volume_interval", DefaultVolumeInterval)
	v.SetDefault("mounts", []string{"/"})
	v.SetDefault("strict_mounts", false)
	v.SetDefault("field_width", DefaultFieldWidth)
	v.SetDefault("clock_format", DefaultClockFormat)
	v.SetDefault("separator", DefaultSeparator)
	v.SetDefault("sink", SinkStdout)
	v.SetDefault("sysfs", "/sys")
	v.SetDefault("gpu", true)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("bar.id", configName)
	v.SetDefault("bar.position", "top")
	v.SetDefault("bar.font", "pango:monospace 10")
	v.SetDefault("bar.command", "")
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.RefreshRate <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "refresh_rate must be positive")
	}
	if c.VolumeInterval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, "volume_interval must be positive")
	}
	if c.FieldWidth <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "field_width must be positive")
	}
	if len(c.Mounts) == 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "mounts must not be empty")
	}
	if c.Sink != SinkStdout && c.Sink != SinkRootWindow {
		return errFactory.WithData(errors.ErrInvalidConfig, "unknown sink "+c.Sink)
	}
	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}
