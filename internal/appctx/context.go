// Package appctx provides application context helpers.
package appctx

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tapi/tcli/internal/api"
	"github.com/tapi/tcli/internal/auth"
	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/models"
	"github.com/tapi/tcli/internal/names"
	"github.com/tapi/tcli/internal/observability"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/presenter"
	"github.com/tapi/tcli/internal/resilience"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config *config.Config
	Auth   *auth.Manager
	Client *api.Client
	Names  *names.Resolver
	Output *output.Writer

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags

	// Candidates records the matches last shown by the resolver, so
	// non-interactive callers can build an ambiguity error from them.
	Candidates *CandidateRenderer
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON    bool
	Quiet   bool
	MD      bool // Literal Markdown syntax output
	Styled  bool // Force ANSI styled output (even when piped)
	IDsOnly bool
	Count   bool
	Agent   bool
	JQ      string

	// Connection flags
	Host    string
	Profile string
	Timeout int

	// Behavior flags
	Verbose int // 0=off, 1=operations, 2=operations+requests (stacks with -v -v or -vv)
	Stats   bool
	NoCache bool
	NoInput bool
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	authMgr := auth.NewManager(cfg)

	// Collector always runs to gather stats; hooks control trace verbosity.
	// Level 0 initially; ApplyFlags sets the actual level from -v flags.
	collector := observability.NewSessionCollector()
	traceWriter := observability.NewTraceWriter()
	hooks := observability.NewCLIHooks(0, collector, traceWriter)

	// Resilience state is shared across tcli processes via the cache dir.
	gate := resilience.NewGateFromConfig(
		resilience.NewStore(filepath.Join(cfg.CacheDir, resilience.DefaultDirName)),
		resilience.DefaultConfig(),
	)

	client := api.NewClient(cfg, authMgr,
		api.WithHooks(hooks),
		api.WithGate(gate),
	)

	// Determine output format from config (default to auto)
	format := output.FormatAuto
	switch cfg.Format {
	case "json":
		format = output.FormatJSON
	case "markdown", "md":
		format = output.FormatMarkdown
	case "styled":
		format = output.FormatStyled
	case "quiet":
		format = output.FormatQuiet
	case "ids":
		format = output.FormatIDs
	case "count":
		format = output.FormatCount
	}

	app := &App{
		Config:    cfg,
		Auth:      authMgr,
		Client:    client,
		Collector: collector,
		Hooks:     hooks,
		Output: output.New(output.Options{
			Format: format,
			Writer: os.Stdout,
		}),
	}
	app.buildResolver()
	return app
}

// buildResolver wires the identifier resolver to the API client and the
// terminal. With --no-input or a non-terminal stdin the prompter cancels
// instead of blocking on a read nobody will answer.
func (a *App) buildResolver() {
	a.Candidates = NewCandidateRenderer(os.Stderr, a.IsInteractive())

	var prompter names.Prompter = &stdinPrompter{in: os.Stdin, out: os.Stderr}
	if a.Flags.NoInput || !stdinIsTerminal() {
		prompter = nonInteractivePrompter{}
	}

	a.Names = names.NewResolver(&todoLister{client: a.Client}, prompter, a.Candidates)
}

// todoLister adapts the API client to the resolver's lister interface.
type todoLister struct {
	client *api.Client
}

func (l *todoLister) GetByID(ctx context.Context, id uuid.UUID) (models.Todo, error) {
	return l.client.GetTodo(ctx, id)
}

func (l *todoLister) List(ctx context.Context, limit int) ([]models.Todo, error) {
	return l.client.ListTodos(ctx, api.ListOptions{Limit: limit})
}

// stdinPrompter reads selection input from the terminal. Prompt text goes
// to stderr so piped stdout stays clean.
type stdinPrompter struct {
	in  io.Reader
	out io.Writer
}

func (p *stdinPrompter) ReadLine(prompt string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", prompt)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			// Final line without a trailing newline still counts.
			return line, nil
		}
		return "", err
	}
	return line, nil
}

// nonInteractivePrompter cancels every prompt, turning ambiguity into the
// Cancelled outcome instead of a hung read.
type nonInteractivePrompter struct{}

func (nonInteractivePrompter) ReadLine(string) (string, error) {
	return "", names.ErrPromptCancelled
}

// CandidateRenderer presents ranked resolver matches on stderr and keeps
// them for error reporting.
type CandidateRenderer struct {
	w       io.Writer
	styled  bool
	matches []models.Todo
}

// NewCandidateRenderer creates a renderer writing to w.
func NewCandidateRenderer(w io.Writer, styled bool) *CandidateRenderer {
	return &CandidateRenderer{w: w, styled: styled}
}

// ShowCandidates renders the ranked matches once, before the selection loop.
func (r *CandidateRenderer) ShowCandidates(query string, matches []models.Todo) {
	r.matches = matches
	fmt.Fprintf(r.w, "Multiple todos match %q:\n", query)
	if presenter.Candidates(r.w, matches, r.styled) {
		return
	}
	// No schema available: plain numbered fallback.
	for i, t := range matches {
		fmt.Fprintf(r.w, "  %d. %s (%s)\n", i+1, t.Title, t.ID)
	}
}

// ShowNotice reports a problem with the previous selection attempt.
func (r *CandidateRenderer) ShowNotice(message string) {
	fmt.Fprintln(r.w, message)
}

// Last returns the matches from the most recent ShowCandidates call.
func (r *CandidateRenderer) Last() []models.Todo {
	return r.matches
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	jq := a.Flags.JQ

	// Apply output format from flags (order matters: specific modes first)
	switch {
	case a.Flags.Agent:
		// Agent mode = quiet JSON (data only, no envelope)
		a.setOutput(output.FormatQuiet, jq)
	case a.Flags.IDsOnly:
		a.setOutput(output.FormatIDs, jq)
	case a.Flags.Count:
		a.setOutput(output.FormatCount, jq)
	case a.Flags.Quiet:
		a.setOutput(output.FormatQuiet, jq)
	case a.Flags.JSON:
		a.setOutput(output.FormatJSON, jq)
	case a.Flags.Styled:
		a.setOutput(output.FormatStyled, jq)
	case a.Flags.MD:
		a.setOutput(output.FormatMarkdown, jq)
	case jq != "":
		a.Output = output.New(output.Options{
			Format: a.Output.Format(),
			Writer: os.Stdout,
			JQ:     jq,
		})
	}

	// Verbosity: flags stack on top of config (which folds in TCLI_DEBUG)
	level := a.Config.VerboseLevel()
	if a.Flags.Verbose > level {
		level = a.Flags.Verbose
	}
	if a.Hooks != nil {
		a.Hooks.SetLevel(level)
	}

	// Flags may have changed interactivity; rebuild the resolver wiring.
	a.buildResolver()
}

func (a *App) setOutput(format output.Format, jq string) {
	a.Output = output.New(output.Options{
		Format: format,
		Writer: os.Stdout,
		JQ:     jq,
	})
}

// StatsEnabled reports whether session statistics should be shown,
// from the --stats flag or the config file.
func (a *App) StatsEnabled() bool {
	return a.Flags.Stats || a.Config.StatsEnabled()
}

// OK outputs a success response, including session stats when enabled.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.StatsEnabled() && a.Collector != nil {
		stats := a.Collector.Summary()
		opts = append(opts, output.WithMeta("stats", stats.ToMap()))
	}
	return a.Output.OK(data, opts...)
}

// Err outputs an error response, printing stats to stderr when enabled.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}

	// Machine-consumable modes never get a stderr stats line.
	if a.StatsEnabled() && a.Collector != nil && !a.isMachineOutput() {
		stats := a.Collector.Summary()
		if parts := stats.FormatParts(); len(parts) > 0 {
			fmt.Fprintf(os.Stderr, "\nStats: %s\n", strings.Join(parts, " | "))
		}
	}
	return nil
}

// isMachineOutput reports whether output is meant for programmatic
// consumption. Checks both flags and config-driven format settings.
func (a *App) isMachineOutput() bool {
	if a.Flags.Agent || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count {
		return true
	}
	if a.Config != nil {
		switch a.Config.Format {
		case "quiet", "ids", "count":
			return true
		}
	}
	return false
}

// IsInteractive returns true if the terminal supports interactive prompts.
func (a *App) IsInteractive() bool {
	// Not interactive if any non-interactive output mode is set
	if a.Flags.Agent || a.Flags.JSON || a.Flags.Quiet || a.Flags.IDsOnly || a.Flags.Count || a.Flags.NoInput {
		return false
	}

	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}
