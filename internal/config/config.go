package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/vitals/internal/errors"
)

const (
	// ConfigFileName is the config file name inside the app config directory.
	ConfigFileName = "config.yaml"
	// AppDirName is the directory under the user config root.
	AppDirName = "vitals"
	// EnvConfig overrides the config search with an explicit path.
	EnvConfig = "VITALS_CONFIG"

	// MinInterval is the fastest sample interval the dashboard accepts.
	MinInterval = 500 * time.Millisecond
	// DefaultInterval is the sample interval used when none is configured.
	DefaultInterval = time.Second
	// DefaultHistory is the per-series ring capacity used when none is configured.
	DefaultHistory = 120
	// DefaultTheme is the palette used when none is configured.
	DefaultTheme = "graphite"
)

// Config holds the persisted dashboard settings.
type Config struct {
	// Theme is the color palette name (graphite, midnight, nord, solarized,
	// gruvbox, neon). Unknown names fall back to the default at startup.
	Theme string `yaml:"theme" mapstructure:"theme"`

	// Interval is the sample cadence, written as a duration string ("1s").
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Interface pins the network card to a single interface. Empty means
	// aggregate across all interfaces.
	Interface string `yaml:"interface" mapstructure:"interface"`

	// History is the per-series sparkline ring capacity.
	History int `yaml:"history" mapstructure:"history"`
}

// Default returns a Config with the stock settings.
func Default() *Config {
	return &Config{
		Theme:    DefaultTheme,
		Interval: DefaultInterval,
		History:  DefaultHistory,
	}
}

// Validate checks value ranges. Theme and interface names are not checked
// here: an unknown theme falls back at startup and an interface may simply
// not be up yet.
func Validate(cfg *Config) error {
	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Sample interval %s is below the %s minimum", cfg.Interval, MinInterval),
			"Use an interval of 500ms or longer, e.g. --interval 1s")
	}
	if cfg.History < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("History size cannot be negative (got %d)", cfg.History),
			"Use a positive ring capacity, or 0 for the default")
	}
	return nil
}
