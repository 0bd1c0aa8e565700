package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/api"
	"github.com/tapi/tcli/internal/completion"
	"github.com/tapi/tcli/internal/models"
	"github.com/tapi/tcli/internal/output"
)

// NewCompletionCmd creates the completion command group.
func NewCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [shell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tcli.

To load completions:

Bash:
  $ source <(tcli completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tcli completion bash > /etc/bash_completion.d/tcli
  # macOS:
  $ tcli completion bash > $(brew --prefix)/etc/bash_completion.d/tcli

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tcli completion zsh > "${fpath[1]}/_tcli"

Fish:
  $ tcli completion fish | source

  # To load completions for each session, execute once:
  $ tcli completion fish > ~/.config/fish/completions/tcli.fish

PowerShell:
  PS> tcli completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(cmd.Root(), args[0])
		},
	}

	cmd.AddCommand(newCompletionRefreshCmd())
	cmd.AddCommand(newCompletionStatusCmd())

	return cmd
}

func runCompletion(rootCmd *cobra.Command, shell string) error {
	switch shell {
	case "bash":
		return rootCmd.GenBashCompletionV2(os.Stdout, true)
	case "zsh":
		return rootCmd.GenZshCompletion(os.Stdout)
	case "fish":
		return rootCmd.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	default:
		return fmt.Errorf("unknown shell: %s", shell)
	}
}

// clientTodoSource adapts the API client to the refresher's source.
type clientTodoSource struct {
	client *api.Client
}

func (s clientTodoSource) List(ctx context.Context, limit int) ([]models.Todo, error) {
	return s.client.ListTodos(ctx, api.ListOptions{Limit: limit})
}

func newCompletionRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the completion cache",
		Long:  "Fetch todos from the server and rebuild the completion cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			if !app.Auth.IsAuthenticated() {
				return output.ErrAuth("Not authenticated")
			}

			store := completion.NewStore(app.Config.CacheDir)
			refresher := completion.NewRefresher(store, clientTodoSource{client: app.Client})

			count, err := refresher.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			return app.OK(map[string]any{
				"todos":      count,
				"cache_path": store.Path(),
			}, output.WithSummary(fmt.Sprintf("Cached %d %s", count, pluralize(count, "todo", "todos"))))
		},
	}
}

func newCompletionStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show completion cache status",
		Long: `Show the status of the completion cache.

Note: If you set cache.dir in a config file, completions won't find it.
Export TCLI_CACHE_DIR in your environment instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			store := completion.NewStore(app.Config.CacheDir)
			cache, err := store.Load()
			if err != nil {
				return err
			}

			isStale := store.IsStale(completion.DefaultMaxAge)

			var age, status string
			switch {
			case len(cache.Todos) == 0:
				age, status = "never", "empty"
			case cache.UpdatedAt.IsZero():
				age, status = "unknown", "stale"
			default:
				age = time.Since(cache.UpdatedAt).Round(time.Second).String()
				status = "fresh"
				if isStale {
					status = "stale"
				}
			}

			return app.OK(map[string]any{
				"todos":      len(cache.Todos),
				"updated_at": cache.UpdatedAt,
				"age":        age,
				"status":     status,
				"stale":      isStale,
				"cache_path": store.Path(),
			}, output.WithSummary(fmt.Sprintf("%d todos cached (%s)", len(cache.Todos), status)))
		},
	}
}
