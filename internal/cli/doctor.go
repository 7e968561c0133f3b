package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/vitals/internal/doctor"
	"github.com/rileyhilliard/vitals/internal/errors"
	"github.com/rileyhilliard/vitals/internal/ui"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose telemetry sources",
	Long: `Run diagnostic checks against the telemetry sources vitals reads.

Checks:
  - procfs counters (/proc/stat, /proc/meminfo)
  - GPU discovery (DRM cards, gpu_busy_percent, debugfs, nvidia-smi)
  - temperature and power sensors (hwmon, RAPL)
  - configuration file validity

Missing optional sources are warnings: the matching dashboard field just
reads n/a. The exit code is 1 only when a required source (procfs, a
loadable config) is broken.

Examples:
  vitals doctor
  vitals doctor --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return doctorCommand()
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(doctorCmd)
}

// doctorCategoryOrder fixes the report section order.
var doctorCategoryOrder = []string{"SYSTEM", "GPU", "SENSORS", "CONFIG"}

// DoctorOutput represents the JSON output for the doctor command.
type DoctorOutput struct {
	Categories []CategoryOutput `json:"categories"`
	Summary    SummaryOutput    `json:"summary"`
}

// CategoryOutput represents a category of check results.
type CategoryOutput struct {
	Name    string               `json:"name"`
	Results []doctor.CheckResult `json:"results"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

func collectChecks(explicitConfig string) []doctor.Check {
	var checks []doctor.Check
	checks = append(checks, doctor.NewSystemChecks()...)
	checks = append(checks, doctor.NewGPUChecks()...)
	checks = append(checks, doctor.NewSensorChecks()...)
	checks = append(checks, doctor.NewConfigChecks(explicitConfig)...)
	return checks
}

func doctorCommand() error {
	checks := collectChecks(flagConfig)
	results := doctor.RunAll(checks)

	if doctorJSON {
		if err := outputDoctorJSON(os.Stdout, checks, results); err != nil {
			return err
		}
	} else {
		renderDoctorReport(os.Stdout, checks, results)
	}

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrProvider,
			"Required telemetry is unavailable",
			"Fix the ✗ checks above and run 'vitals doctor' again")
	}
	return nil
}

// outputDoctorJSON writes results grouped by category as JSON.
func outputDoctorJSON(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) error {
	grouped := make(map[string][]doctor.CheckResult)
	for i, check := range checks {
		cat := check.Category()
		grouped[cat] = append(grouped[cat], results[i])
	}

	output := DoctorOutput{Categories: make([]CategoryOutput, 0, len(doctorCategoryOrder))}
	for _, cat := range doctorCategoryOrder {
		if rs, ok := grouped[cat]; ok {
			output.Categories = append(output.Categories, CategoryOutput{Name: cat, Results: rs})
		}
	}

	counts := doctor.CountByStatus(results)
	output.Summary = SummaryOutput{
		Pass:     counts[doctor.StatusPass],
		Warn:     counts[doctor.StatusWarn],
		Fail:     counts[doctor.StatusFail],
		AllClear: !doctor.HasIssues(results),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

// renderDoctorReport writes the human-readable report.
func renderDoctorReport(w io.Writer, checks []doctor.Check, results []doctor.CheckResult) {
	headerStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	successStyle := lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ui.ColorError)

	fmt.Fprintln(w)
	fmt.Fprintln(w, headerStyle.Render("vitals Telemetry Report"))
	fmt.Fprintln(w)

	grouped := make(map[string][]int)
	for i, check := range checks {
		cat := check.Category()
		grouped[cat] = append(grouped[cat], i)
	}

	for _, category := range doctorCategoryOrder {
		indices, ok := grouped[category]
		if !ok || len(indices) == 0 {
			continue
		}

		fmt.Fprintln(w, headerStyle.Render(category))
		for _, idx := range indices {
			renderCheckResult(w, results[idx], mutedStyle)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("━", 60))
	fmt.Fprintln(w)

	counts := doctor.CountByStatus(results)
	if !doctor.HasIssues(results) {
		fmt.Fprintf(w, "%s Everything looks good\n", successStyle.Render(ui.SymbolPass))
	} else {
		total := counts[doctor.StatusFail] + counts[doctor.StatusWarn]
		fmt.Fprintf(w, "%s %d issue%s found\n",
			errorStyle.Render(ui.SymbolFail), total, pluralSuffix(total))
	}
	fmt.Fprintln(w)
}

// renderCheckResult writes a single check line with its status glyph.
func renderCheckResult(w io.Writer, result doctor.CheckResult, mutedStyle lipgloss.Style) {
	var symbol string
	var style lipgloss.Style

	switch result.Status {
	case doctor.StatusPass:
		symbol = ui.SymbolPass
		style = lipgloss.NewStyle().Foreground(ui.ColorSuccess)
	case doctor.StatusWarn:
		symbol = ui.SymbolWarn
		style = lipgloss.NewStyle().Foreground(ui.ColorWarning)
	case doctor.StatusFail:
		symbol = ui.SymbolFail
		style = lipgloss.NewStyle().Foreground(ui.ColorError)
	}

	fmt.Fprintf(w, "  %s %s\n", style.Render(symbol), result.Message)

	if result.Suggestion != "" && result.Status != doctor.StatusPass {
		for _, line := range strings.Split(result.Suggestion, "\n") {
			fmt.Fprintf(w, "    %s\n", mutedStyle.Render(line))
		}
	}
}

// pluralSuffix returns "s" if n != 1.
func pluralSuffix(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
