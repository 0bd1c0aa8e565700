package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tapi/tcli/internal/appctx"
	"github.com/tapi/tcli/internal/auth"
	"github.com/tapi/tcli/internal/completion"
	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/hostutil"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/resilience"
	"github.com/tapi/tcli/internal/version"
)

// Check represents a single diagnostic check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "fail", "skip", "warn"
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// DoctorResult holds the complete diagnostic results.
type DoctorResult struct {
	Checks  []Check `json:"checks"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Warned  int     `json:"warned"`
	Skipped int     `json:"skipped"`
}

// Summary returns a human-readable summary of the results.
func (r *DoctorResult) Summary() string {
	if r.Failed == 0 && r.Warned == 0 && r.Passed > 0 {
		if r.Skipped > 0 {
			return fmt.Sprintf("All %d checks passed, %d skipped", r.Passed, r.Skipped)
		}
		return fmt.Sprintf("All %d checks passed", r.Passed)
	}
	parts := []string{}
	if r.Passed > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", r.Passed))
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	if r.Warned > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", r.Warned, pluralize(r.Warned, "warning", "warnings")))
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", r.Skipped))
	}
	return strings.Join(parts, ", ")
}

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check CLI health and diagnose issues",
		Long: `Run diagnostic checks on configuration, credentials, and connectivity.

The doctor command helps troubleshoot common issues by checking:
  - CLI version
  - Configuration files (existence and validity)
  - API key credentials (keyring, file, or env)
  - API connectivity (GET /health)
  - Cache directory health
  - Circuit breaker state
  - Shell completion cache

Examples:
  tcli doctor          # Run all diagnostic checks
  tcli doctor --json   # Output results as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			checks := runDoctorChecks(cmd.Context(), app)
			result := summarizeChecks(checks)

			if app.Output.EffectiveFormat() == output.FormatStyled {
				renderDoctorStyled(cmd.OutOrStdout(), result)
				return nil
			}

			opts := []output.ResponseOption{
				output.WithSummary(result.Summary()),
			}
			if breadcrumbs := buildDoctorBreadcrumbs(checks); len(breadcrumbs) > 0 {
				opts = append(opts, output.WithBreadcrumbs(breadcrumbs...))
			}
			return app.OK(result, opts...)
		},
	}
	return cmd
}

// runDoctorChecks executes all diagnostic checks. Checks that depend on
// an earlier failure are skipped rather than reporting a cascade.
func runDoctorChecks(ctx context.Context, app *appctx.App) []Check {
	checks := []Check{checkVersion()}

	checks = append(checks, checkConfigFiles()...)

	credCheck := checkCredentials(app)
	checks = append(checks, credCheck)

	if credCheck.Status == "fail" {
		checks = append(checks, Check{
			Name:    "API Connectivity",
			Status:  "skip",
			Message: "Skipped (no credentials)",
			Hint:    "Run: tcli auth login",
		})
	} else {
		checks = append(checks, checkAPIConnectivity(ctx, app))
	}

	checks = append(checks, checkCacheHealth(app))
	checks = append(checks, checkCircuitState(app))
	checks = append(checks, checkCompletionCache(app))

	return checks
}

func checkVersion() Check {
	msg := version.Full()
	if version.IsDev() {
		return Check{
			Name:    "Version",
			Status:  "warn",
			Message: msg,
			Hint:    "Install a released build for version pinning",
		}
	}
	return Check{Name: "Version", Status: "pass", Message: msg}
}

// checkConfigFiles validates each config layer that exists.
func checkConfigFiles() []Check {
	var checks []Check
	found := 0

	for _, layer := range config.Layers() {
		data, err := os.ReadFile(layer.Path) //nolint:gosec // G304: trusted config locations
		if err != nil {
			continue
		}
		found++

		name := fmt.Sprintf("Config (%s)", layer.Source)
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			checks = append(checks, Check{
				Name:    name,
				Status:  "fail",
				Message: fmt.Sprintf("Invalid YAML: %s", layer.Path),
				Hint:    err.Error(),
			})
			continue
		}
		checks = append(checks, Check{
			Name:    name,
			Status:  "pass",
			Message: layer.Path,
		})
	}

	if found == 0 {
		checks = append(checks, Check{
			Name:    "Config",
			Status:  "warn",
			Message: "No config files found (using defaults)",
			Hint:    "Run: tcli config init",
		})
	}
	return checks
}

func checkCredentials(app *appctx.App) Check {
	key, source := app.Auth.Key()
	if key == "" {
		return Check{
			Name:    "Credentials",
			Status:  "fail",
			Message: "No API key configured",
			Hint:    "Run: tcli auth login",
		}
	}

	msg := fmt.Sprintf("API key from %s", source)
	if source == auth.SourceFile && app.Auth.UsingKeyring() {
		return Check{
			Name:    "Credentials",
			Status:  "warn",
			Message: msg,
			Hint:    "Keychain available; run 'tcli auth login' to move the key there",
		}
	}
	return Check{Name: "Credentials", Status: "pass", Message: msg}
}

func checkAPIConnectivity(ctx context.Context, app *appctx.App) Check {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	health, err := app.Client.Health(ctx)
	if err != nil {
		hint := "Check the server URL with 'tcli config show'"
		if hostutil.IsLocalhost(app.Client.BaseURL()) {
			hint = "Is the local tapi server running?"
		}
		return Check{
			Name:    "API Connectivity",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot reach %s", app.Client.BaseURL()),
			Hint:    hint,
		}
	}

	msg := fmt.Sprintf("Connected to %s", app.Client.BaseURL())
	if health.Version != "" {
		msg = fmt.Sprintf("%s (server %s)", msg, health.Version)
	}
	return Check{Name: "API Connectivity", Status: "pass", Message: msg}
}

func checkCacheHealth(app *appctx.App) Check {
	dir := app.Config.CacheDir
	if dir == "" {
		return Check{Name: "Cache", Status: "warn", Message: "No cache directory configured"}
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Check{
			Name:    "Cache",
			Status:  "fail",
			Message: fmt.Sprintf("Cannot create cache dir: %s", dir),
			Hint:    err.Error(),
		}
	}

	// Probe writability directly; permissions alone don't prove it.
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return Check{
			Name:    "Cache",
			Status:  "fail",
			Message: fmt.Sprintf("Cache dir not writable: %s", dir),
			Hint:    err.Error(),
		}
	}
	_ = os.Remove(probe)

	if !app.Config.CacheEnabled {
		return Check{
			Name:    "Cache",
			Status:  "warn",
			Message: fmt.Sprintf("%s (caching disabled)", dir),
			Hint:    "Enable with: tcli config set cache.enabled true",
		}
	}
	return Check{Name: "Cache", Status: "pass", Message: dir}
}

func checkCircuitState(app *appctx.App) Check {
	store := resilience.NewStore(filepath.Join(app.Config.CacheDir, resilience.DefaultDirName))
	cb := resilience.NewCircuitBreaker(store, resilience.DefaultConfig().CircuitBreaker)

	state, err := cb.State()
	if err != nil {
		return Check{
			Name:    "Circuit Breaker",
			Status:  "warn",
			Message: "Cannot read circuit state",
			Hint:    err.Error(),
		}
	}

	switch state {
	case "open":
		return Check{
			Name:    "Circuit Breaker",
			Status:  "warn",
			Message: "Circuit open (recent failures); requests are being rejected",
			Hint:    "Wait for the cooldown, or check API connectivity",
		}
	case "half_open":
		return Check{Name: "Circuit Breaker", Status: "warn", Message: "Circuit half-open (probing recovery)"}
	default:
		return Check{Name: "Circuit Breaker", Status: "pass", Message: "Circuit closed"}
	}
}

func checkCompletionCache(app *appctx.App) Check {
	store := completion.NewStore(app.Config.CacheDir)
	if _, err := os.Stat(store.Path()); err != nil {
		return Check{
			Name:    "Completion",
			Status:  "warn",
			Message: "No completion cache",
			Hint:    "Run: tcli completion refresh",
		}
	}
	if store.IsStale(completion.DefaultMaxAge) {
		return Check{
			Name:    "Completion",
			Status:  "warn",
			Message: "Completion cache is stale",
			Hint:    "Run: tcli completion refresh",
		}
	}
	return Check{
		Name:    "Completion",
		Status:  "pass",
		Message: fmt.Sprintf("%d todos cached", len(store.Todos())),
	}
}

// summarizeChecks counts results by status.
func summarizeChecks(checks []Check) *DoctorResult {
	result := &DoctorResult{Checks: checks}
	for _, c := range checks {
		switch c.Status {
		case "pass":
			result.Passed++
		case "fail":
			result.Failed++
		case "warn":
			result.Warned++
		case "skip":
			result.Skipped++
		}
	}
	return result
}

// buildDoctorBreadcrumbs creates next-step suggestions from failures.
func buildDoctorBreadcrumbs(checks []Check) []output.Breadcrumb {
	var breadcrumbs []output.Breadcrumb

	for _, c := range checks {
		if c.Status != "fail" {
			continue
		}
		switch c.Name {
		case "Credentials":
			breadcrumbs = append(breadcrumbs, output.Breadcrumb{
				Action:      "login",
				Cmd:         "tcli auth login",
				Description: "Save an API key",
			})
		case "API Connectivity":
			breadcrumbs = append(breadcrumbs, output.Breadcrumb{
				Action:      "config",
				Cmd:         "tcli config show",
				Description: "Review configuration",
			})
		}
	}

	seen := make(map[string]bool)
	unique := []output.Breadcrumb{}
	for _, b := range breadcrumbs {
		if !seen[b.Cmd] {
			seen[b.Cmd] = true
			unique = append(unique, b)
		}
	}
	return unique
}

// renderDoctorStyled outputs a human-friendly styled format for TTY.
func renderDoctorStyled(w io.Writer, result *DoctorResult) {
	r := output.NewRenderer(w, false)

	nameStyle := lipgloss.NewStyle().Bold(true)

	statusIcon := map[string]string{
		"pass": r.Success.Render("✓"),
		"fail": r.Error.Render("✗"),
		"warn": r.Warning.Render("!"),
		"skip": r.Muted.Render("○"),
	}
	statusMsg := map[string]lipgloss.Style{
		"pass": r.Success,
		"fail": r.Error,
		"warn": r.Warning,
		"skip": r.Muted,
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Summary.Render("tcli doctor"))
	fmt.Fprintln(w)

	for _, check := range result.Checks {
		fmt.Fprintf(w, "  %s %s %s\n",
			statusIcon[check.Status],
			nameStyle.Render(check.Name),
			statusMsg[check.Status].Render(check.Message),
		)
		if check.Hint != "" && (check.Status == "fail" || check.Status == "warn") {
			fmt.Fprintf(w, "      %s\n", r.Hint.Render("↳ "+check.Hint))
		}
	}

	fmt.Fprintln(w)

	var summaryParts []string
	if result.Passed > 0 {
		summaryParts = append(summaryParts, r.Success.Render(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		summaryParts = append(summaryParts, r.Error.Render(fmt.Sprintf("%d failed", result.Failed)))
	}
	if result.Warned > 0 {
		summaryParts = append(summaryParts, r.Warning.Render(fmt.Sprintf("%d %s", result.Warned, pluralize(result.Warned, "warning", "warnings"))))
	}
	if result.Skipped > 0 {
		summaryParts = append(summaryParts, r.Muted.Render(fmt.Sprintf("%d skipped", result.Skipped)))
	}

	fmt.Fprintf(w, "  %s\n", strings.Join(summaryParts, "  "))
	fmt.Fprintln(w)
}
