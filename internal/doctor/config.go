package doctor

import (
	"fmt"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/errors"
)

// NewConfigChecks returns the config file checks. A missing config is fine
// (defaults apply); a config that exists but cannot load is a failure
// because startup would refuse it too.
func NewConfigChecks(explicit string) []Check {
	return []Check{
		&ConfigFileCheck{Explicit: explicit},
		&ConfigValidCheck{Explicit: explicit},
	}
}

// ConfigFileCheck reports where the config was found, if anywhere.
type ConfigFileCheck struct {
	Explicit string // from --config, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return "CONFIG" }

func (c *ConfigFileCheck) Run() CheckResult {
	path, err := config.Find(c.Explicit)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    errors.Summary(err),
			Suggestion: "Fix the path or run 'vitals init'",
		}
	}
	if path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "No config file (defaults in use)",
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Config file: " + path,
	}
}

// ConfigValidCheck loads and validates the config the same way startup does.
type ConfigValidCheck struct {
	Explicit string
}

func (c *ConfigValidCheck) Name() string     { return "config_valid" }
func (c *ConfigValidCheck) Category() string { return "CONFIG" }

func (c *ConfigValidCheck) Run() CheckResult {
	path, err := config.Find(c.Explicit)
	if err != nil || path == "" {
		// ConfigFileCheck reports the find problem; nothing to validate.
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Nothing to validate",
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config invalid: " + errors.Summary(err),
			Suggestion: "Fix the YAML or regenerate with 'vitals init'",
		}
	}

	if err := config.Validate(cfg); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "Config invalid: " + errors.Summary(err),
			Suggestion: "Fix the value or regenerate with 'vitals init'",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Config valid (theme %s, interval %s)", cfg.Theme, cfg.Interval),
	}
}
