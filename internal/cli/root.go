// Package cli wires the cobra command tree and process-level concerns.
package cli

import (
	"context"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tapi/tcli/internal/appctx"
	"github.com/tapi/tcli/internal/commands"
	"github.com/tapi/tcli/internal/completion"
	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/hostutil"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:           "tcli",
		Short:         "Command-line client for the tapi todo service",
		Long:          "tcli manages todos on a tapi server: create, list, update, and complete them from the shell.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          commands.RunListDefault, // Bare 'tcli' behaves as 'tcli list'
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip setup for commands that must work before any config exists
			switch cmd.Name() {
			case "help", "version", "completion",
				cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{
				BaseURL: hostutil.Normalize(flags.Host),
				Format:  formatFromFlags(flags),
				Profile: flags.Profile,
				Timeout: flags.Timeout,
				NoCache: flags.NoCache,
				Stats:   flags.Stats,
				Verbose: flags.Verbose,
			})
			if err != nil {
				return err
			}

			app := appctx.NewApp(cfg)
			app.Flags = flags
			app.ApplyFlags()

			cmd.SetContext(appctx.WithApp(cmd.Context(), app))
			return nil
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	// Output format flags
	cmd.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	cmd.PersistentFlags().BoolVarP(&flags.MD, "md", "m", false, "Output as Markdown (portable)")
	cmd.PersistentFlags().BoolVar(&flags.MD, "markdown", false, "Output as Markdown (portable)")
	cmd.PersistentFlags().BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	cmd.PersistentFlags().BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	cmd.PersistentFlags().BoolVar(&flags.Count, "count", false, "Output only count")
	cmd.PersistentFlags().BoolVar(&flags.Agent, "agent", false, "Agent mode (JSON + quiet)")
	cmd.PersistentFlags().StringVar(&flags.JQ, "jq", "", "Filter response data through a jq expression")

	// Connection flags
	cmd.PersistentFlags().StringVar(&flags.Host, "host", "", "tapi server (e.g., localhost:8000, todo.example.com)")
	cmd.PersistentFlags().StringVar(&flags.Profile, "profile", "", "Named server profile from config")
	cmd.PersistentFlags().IntVar(&flags.Timeout, "timeout", 0, "Request timeout in seconds")

	// Behavior flags
	cmd.PersistentFlags().CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for ops, -vv for requests)")
	cmd.PersistentFlags().BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	cmd.PersistentFlags().BoolVar(&flags.NoCache, "no-cache", false, "Bypass the response cache")
	cmd.PersistentFlags().BoolVar(&flags.NoInput, "no-input", false, "Never prompt; fail instead")

	return cmd
}

// formatFromFlags maps format flags to a config format name so the
// config layer records the flag as the format's source.
func formatFromFlags(flags appctx.GlobalFlags) string {
	switch {
	case flags.Agent, flags.Quiet:
		return "quiet"
	case flags.IDsOnly:
		return "ids"
	case flags.Count:
		return "count"
	case flags.JSON:
		return "json"
	case flags.Styled:
		return "styled"
	case flags.MD:
		return "markdown"
	}
	return ""
}

// Execute runs the root command.
func Execute() {
	cmd := NewRootCmd()

	cmd.AddCommand(commands.NewAddCmd())
	cmd.AddCommand(commands.NewListCmd())
	cmd.AddCommand(commands.NewGetCmd())
	cmd.AddCommand(commands.NewUpdateCmd())
	cmd.AddCommand(commands.NewEditCmd())
	cmd.AddCommand(commands.NewDoneCmd())
	cmd.AddCommand(commands.NewDeleteCmd())
	cmd.AddCommand(commands.NewAuthCmd())
	cmd.AddCommand(commands.NewConfigCmd())
	cmd.AddCommand(commands.NewDoctorCmd())
	cmd.AddCommand(commands.NewCommandsCmd())
	cmd.AddCommand(commands.NewVersionCmd())
	cmd.AddCommand(commands.NewCompletionCmd())

	registerCompletions(cmd)

	// Ctrl-C cancels in-flight requests and prompts.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executedCmd, err := cmd.ExecuteContextC(ctx)
	if err != nil {
		exitWithError(cmd, executedCmd, err)
	}
}

// registerCompletions attaches dynamic completion to identifier args
// and status flags.
func registerCompletions(root *cobra.Command) {
	completer := completion.NewCompleter(nil)
	todoArgs := completer.TodoCompletion()

	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "get", "update", "edit", "done", "delete":
			sub.ValidArgsFunction = todoArgs
		}
		if sub.Flags().Lookup("status") != nil {
			_ = sub.RegisterFlagCompletionFunc("status", completion.StatusCompletion())
		}
		if sub.Name() == "config" {
			for _, cfgSub := range sub.Commands() {
				if cfgSub.Name() == "set" || cfgSub.Name() == "unset" {
					cfgSub.ValidArgsFunction = completion.ConfigKeyCompletion()
				}
			}
		}
	}
}

// exitWithError renders err and exits with its mapped code.
func exitWithError(root, executedCmd *cobra.Command, err error) {
	err = transformCobraError(err)
	apiErr := output.AsError(err)

	// Prefer app.Err for --stats support when setup got far enough.
	if executedCmd != nil {
		if app := appctx.FromContext(executedCmd.Context()); app != nil {
			_ = app.Err(err)
			os.Exit(apiErr.ExitCode())
		}
	}

	// Setup failed before an app existed; honor format flags directly.
	writer := output.New(output.Options{
		Format: formatFromPersistentFlags(root.PersistentFlags()),
		Writer: os.Stdout,
	})
	_ = writer.Err(err)

	os.Exit(apiErr.ExitCode())
}

// formatFromPersistentFlags recovers the output format from parsed
// persistent flags when no app is available.
func formatFromPersistentFlags(pf *pflag.FlagSet) output.Format {
	boolFlag := func(name string) bool {
		v, _ := pf.GetBool(name)
		return v
	}

	switch {
	case boolFlag("agent"), boolFlag("quiet"):
		return output.FormatQuiet
	case boolFlag("ids-only"):
		return output.FormatIDs
	case boolFlag("count"):
		return output.FormatCount
	case boolFlag("styled"):
		return output.FormatStyled
	case boolFlag("md"), boolFlag("markdown"):
		return output.FormatMarkdown
	case boolFlag("json"):
		return output.FormatJSON
	}
	return output.FormatAuto
}

// transformCobraError rewrites Cobra's default error messages into the
// usage taxonomy so scripted callers get stable codes.
func transformCobraError(err error) error {
	msg := err.Error()

	if strings.HasPrefix(msg, "flag needs an argument: ") {
		flag := strings.TrimPrefix(msg, "flag needs an argument: ")
		return output.ErrUsage(flag + " requires a value")
	}

	if strings.HasPrefix(msg, "unknown flag: ") {
		flag := strings.TrimPrefix(msg, "unknown flag: ")
		return output.ErrUsage("Unknown option: " + flag)
	}

	if strings.HasPrefix(msg, "unknown shorthand flag: ") {
		re := regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)
		if matches := re.FindStringSubmatch(msg); len(matches) > 1 {
			return output.ErrUsage("Unknown option: " + matches[1])
		}
	}

	if strings.HasPrefix(msg, "unknown command ") {
		re := regexp.MustCompile(`unknown command "([^"]+)"`)
		if matches := re.FindStringSubmatch(msg); len(matches) > 1 {
			return output.ErrUsageHint(
				"Unknown command: "+matches[1],
				"Run 'tcli commands' to see available commands",
			)
		}
	}

	if strings.Contains(msg, "invalid argument") {
		return output.ErrUsage(msg)
	}

	if strings.Contains(msg, "requires at least") && strings.Contains(msg, "arg(s)") {
		return output.ErrUsage("Identifier required")
	}

	if strings.Contains(msg, "arg(s), received 0") {
		return output.ErrUsage("Identifier required")
	}

	return err
}
