package completion

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/appctx"
	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/models"
)

// CacheDirFunc returns the cache directory to use for completion.
// Takes the command so the flag and context can be checked at
// completion time.
type CacheDirFunc func(cmd *cobra.Command) string

// DefaultCacheDirFunc returns the cache directory by checking (in order):
// 1. App config from context (set by PersistentPreRunE)
// 2. TCLI_CACHE_DIR environment variable
// 3. XDG default
//
// During __complete, PersistentPreRunE doesn't run, so config files are
// not loaded; loading them would add latency that defeats fast
// completions. Users who set cache.dir in config should also export
// TCLI_CACHE_DIR.
func DefaultCacheDirFunc(cmd *cobra.Command) string {
	if app := appctx.FromContext(cmd.Context()); app != nil {
		return app.Config.CacheDir
	}
	if v := os.Getenv("TCLI_CACHE_DIR"); v != "" {
		return v
	}
	return ""
}

// Completer provides tab completion functions for the tcli CLI.
// It reads from the file cache and never initializes the full App.
type Completer struct {
	getCacheDir CacheDirFunc
}

// NewCompleter creates a new Completer. A nil getCacheDir falls back to
// DefaultCacheDirFunc.
func NewCompleter(getCacheDir CacheDirFunc) *Completer {
	if getCacheDir == nil {
		getCacheDir = DefaultCacheDirFunc
	}
	return &Completer{getCacheDir: getCacheDir}
}

// store resolves the cache dir at call time.
func (c *Completer) store(cmd *cobra.Command) *Store {
	return NewStore(c.getCacheDir(cmd))
}

// TodoCompletion returns a Cobra completion function for todo
// identifier arguments. Open todos rank before done ones; within a
// group, titles sort alphabetically.
func (c *Completer) TodoCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		todos := c.store(cmd).Todos()
		if len(todos) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		ranked := rankTodos(todos)

		toCompleteLower := strings.ToLower(toComplete)
		var completions []cobra.Completion
		for _, t := range ranked {
			titleLower := strings.ToLower(t.Title)
			if strings.HasPrefix(titleLower, toCompleteLower) ||
				strings.Contains(titleLower, toCompleteLower) ||
				strings.HasPrefix(t.ID, toComplete) {
				completions = append(completions,
					cobra.CompletionWithDesc(t.Title, t.Status))
			}
		}

		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// rankTodos orders todos for completion: open work first, then done.
func rankTodos(todos []CachedTodo) []CachedTodo {
	ranked := make([]CachedTodo, len(todos))
	copy(ranked, todos)

	sort.SliceStable(ranked, func(i, j int) bool {
		di, dj := ranked[i].Status == models.StatusDone, ranked[j].Status == models.StatusDone
		if di != dj {
			return !di
		}
		return strings.ToLower(ranked[i].Title) < strings.ToLower(ranked[j].Title)
	})
	return ranked
}

// StatusCompletion returns a completion function for --status flags.
func StatusCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return []cobra.Completion{
			cobra.CompletionWithDesc(models.StatusTodo, "Not started"),
			cobra.CompletionWithDesc(models.StatusInProgress, "In progress"),
			cobra.CompletionWithDesc(models.StatusDone, "Completed"),
		}, cobra.ShellCompDirectiveNoFileComp
	}
}

// ConfigKeyCompletion returns a completion function for config keys.
func ConfigKeyCompletion() cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		if len(args) > 0 {
			// Key already given; the value is free-form.
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.KnownKeys(), cobra.ShellCompDirectiveNoFileComp
	}
}
