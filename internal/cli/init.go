package cli

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/monitor"
	"github.com/rileyhilliard/vitals/internal/ui"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vitals config file",
	Long: `Create a vitals configuration file with interactive prompts.

Walks through theme, sample interval, network interface, and history
size, then writes the config to ~/.config/vitals/config.yaml (or the
--config path).

Examples:
  vitals init
  vitals init --force
  vitals init --config ./vitals.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	rootCmd.AddCommand(initCmd)
}

// initCommand runs the first-run wizard and writes the config file.
func initCommand(force bool) error {
	target := flagConfig
	if target == "" {
		var err error
		target, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(target); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config file already exists: "+target,
			"Use --force to overwrite")
	}

	cfg, err := runInitForm()
	if err != nil {
		return err
	}

	if err := cfg.Save(target); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolPass, target)
	fmt.Println("Next steps:")
	fmt.Println("  vitals         - Start the dashboard")
	fmt.Println("  vitals doctor  - Check which telemetry sources this machine exposes")
	return nil
}

// runInitForm collects config values interactively.
func runInitForm() (*config.Config, error) {
	const aggregate = "all (aggregate)"

	theme := config.DefaultTheme
	intervalStr := config.DefaultInterval.String()
	iface := aggregate
	historyStr := strconv.Itoa(config.DefaultHistory)

	ifaceOptions := []string{aggregate}
	if ifaces, err := net.Interfaces(); err == nil {
		for _, i := range ifaces {
			ifaceOptions = append(ifaceOptions, i.Name)
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Description("Cycle later with 'c'; save with 'C'").
				Options(huh.NewOptions(monitor.ThemeNames()...)...).
				Value(&theme),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Sample interval").
				Description("How often to poll telemetry (minimum 500ms)").
				Placeholder("1s").
				Value(&intervalStr).
				Validate(validateIntervalInput),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Network interface").
				Description("Pin the network card, or aggregate all interfaces").
				Options(huh.NewOptions(ifaceOptions...)...).
				Value(&iface),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("History size").
				Description("Samples kept per sparkline").
				Placeholder("120").
				Value(&historyStr).
				Validate(validateHistoryInput),
		),
	)

	if err := form.Run(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility")
	}

	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid interval: "+intervalStr,
			"Use a valid duration like 1s or 500ms")
	}
	history, err := strconv.Atoi(historyStr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid history size: "+historyStr,
			"Use a whole number of samples")
	}
	if iface == aggregate {
		iface = ""
	}

	cfg := &config.Config{
		Theme:     theme,
		Interval:  interval,
		Interface: iface,
		History:   history,
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateIntervalInput(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("use a duration like 1s or 500ms")
	}
	if d < config.MinInterval {
		return fmt.Errorf("minimum interval is %s", config.MinInterval)
	}
	return nil
}

func validateHistoryInput(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("use a whole number of samples")
	}
	if n < 2 {
		return fmt.Errorf("history needs at least 2 samples for a sparkline")
	}
	return nil
}
