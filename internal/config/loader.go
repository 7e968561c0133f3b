package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/spf13/viper"
)

// DefaultPath returns the standard config location,
// $XDG_CONFIG_HOME/vitals/config.yaml (~/.config/vitals/config.yaml on most
// Linux setups).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot locate a config directory",
			"Set HOME or XDG_CONFIG_HOME")
	}
	return filepath.Join(base, AppDirName, ConfigFileName), nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. $VITALS_CONFIG
// 3. The default location under the user config directory
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if _, err := os.Stat(env); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"$"+EnvConfig+" points to a missing file: "+env,
					"Fix or unset "+EnvConfig)
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+env,
				"Check file permissions")
		}
		return env, nil
	}

	def, err := DefaultPath()
	if err != nil {
		// No resolvable config directory means no config, not a failure.
		return "", nil
	}
	if _, err := os.Stat(def); err == nil {
		return def, nil
	}

	return "", nil
}

// Load reads config from the specified path, merging defaults for absent keys.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run 'vitals init' to create one, or point --config at an existing file")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file: "+path,
			"Check the file is valid YAML")
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return cfg, nil
}

// setDefaults seeds viper so absent keys unmarshal to stock values. Durations
// are given as strings and parsed by viper's decode hook.
func setDefaults(v *viper.Viper) {
	v.SetDefault("theme", DefaultTheme)
	v.SetDefault("interval", DefaultInterval.String())
	v.SetDefault("interface", "")
	v.SetDefault("history", DefaultHistory)
}
