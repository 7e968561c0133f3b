// Package cli implements the vitals command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to a small command function for the actual work. The general
// structure follows a clean separation between:
//
//   - Command definitions (cobra.Command instances)
//   - Command functions (runDashboard, initCommand, doctorCommand)
//   - Implementation details (in other internal packages)
//
// # Command Structure
//
// The root command IS the dashboard; running "vitals" with no subcommand
// starts the full-screen monitor. Subcommands cover everything else:
//
//	vitals              - Start the live dashboard
//	vitals init         - Create a config file interactively
//	vitals doctor       - Diagnose telemetry sources
//	vitals version      - Show version information
//	vitals completion   - Generate shell completion scripts
//
// # Flag Handling
//
// Global flags (--config, --debug) are defined as persistent flags on the
// root command and available to all subcommands. Dashboard flags
// (--interval, --interface, --no-gpu) are defined on the root command only,
// and override the matching config file fields when set.
//
// Configuration resolution happens in loadConfig: an explicit --config path
// wins, then $VITALS_CONFIG, then the per-user config directory. Running
// with no config file at all is fine; built-in defaults apply.
package cli
