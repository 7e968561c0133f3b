package cli

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/vitals/internal/config"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/logger"
	"github.com/rileyhilliard/vitals/internal/metrics"
	"github.com/rileyhilliard/vitals/internal/monitor"
	"github.com/rileyhilliard/vitals/internal/proc"
)

// Persistent flags shared by the root command and subcommands.
var (
	flagConfig    string
	flagDebug     bool
	flagInterval  string
	flagNoGPU     bool
	flagInterface string
)

var rootCmd = &cobra.Command{
	Use:   "vitals",
	Short: "Live system monitor for the terminal",
	Long: `vitals is a terminal dashboard for live system telemetry: CPU, memory,
GPU, network, disks, and a sortable, filterable process table.

Running vitals with no arguments starts the dashboard. It samples local
telemetry once per interval and draws sparkline history for the headline
metrics. GPU data works out of the box for NVIDIA (nvidia-smi) and Intel
(DRM sysfs) cards; run 'vitals doctor' to see which sources this machine
exposes.

Examples:
  vitals
  vitals --interval 2s
  vitals --interface eth0
  vitals --no-gpu
  vitals doctor`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging (written to vitals-debug.log)")
	rootCmd.Flags().StringVar(&flagInterval, "interval", "", "sample interval (e.g., 1s, 500ms)")
	rootCmd.Flags().BoolVar(&flagNoGPU, "no-gpu", false, "skip GPU detection and sampling")
	rootCmd.Flags().StringVar(&flagInterface, "interface", "", "pin the network card to one interface")
}

// Execute runs the root command. Errors carry their own suggestion
// rendering, so they print without cobra's usage dump.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

// loadConfig resolves the effective config: file values under flag
// overrides, validated as a whole.
func loadConfig() (*config.Config, string, error) {
	path, err := config.Find(flagConfig)
	if err != nil {
		return nil, "", err
	}

	cfg := config.Default()
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, "", err
		}
	}

	if flagInterval != "" {
		parsed, err := time.ParseDuration(flagInterval)
		if err != nil {
			return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid interval: %s", flagInterval),
				"Use a valid duration like 1s, 2s, or 500ms")
		}
		cfg.Interval = parsed
	}
	if flagInterface != "" {
		cfg.Interface = flagInterface
	}

	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// runDashboard wires the collector, process table, and model together and
// hands the terminal to bubbletea.
func runDashboard() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"Standard output is not a terminal",
			"vitals draws a full-screen dashboard; run it from an interactive terminal")
	}

	if flagDebug {
		os.Setenv("VITALS_DEBUG", "1")
	}
	if os.Getenv("VITALS_DEBUG") != "" {
		// The alt screen owns stderr; debug output goes to a file instead.
		f, err := tea.LogToFile("vitals-debug.log", "vitals")
		if err == nil {
			defer f.Close()
		}
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	var collector *metrics.Aggregator
	if flagNoGPU {
		collector = metrics.NewAggregatorWith(logger.NewEnvLogger("[metrics]"),
			metrics.NewCPUSampler(),
			metrics.NewMemorySampler(),
			metrics.NewNetworkSampler(),
			metrics.NewDiskSampler(),
			metrics.NewHostSampler(),
		)
	} else {
		collector = metrics.NewAggregator(logger.NewEnvLogger("[metrics]"))
	}

	table := proc.NewTable(logger.NewEnvLogger("[proc]"))

	model := monitor.NewModel(collector, table, monitor.Options{
		Interval:  cfg.Interval,
		History:   cfg.History,
		Theme:     cfg.Theme,
		Interface: cfg.Interface,
		SaveTheme: themeSaver(cfg, path),
		Logger:    logger.NewEnvLogger("[monitor]"),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// themeSaver persists a theme choice back to the loaded config file, or
// creates the default config file when none was loaded.
func themeSaver(cfg *config.Config, path string) func(string) error {
	return func(name string) error {
		if path != "" {
			return config.UpdateTheme(path, name)
		}
		def, err := config.DefaultPath()
		if err != nil {
			return err
		}
		saved := *cfg
		saved.Theme = name
		return saved.Save(def)
	}
}
