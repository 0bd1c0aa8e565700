package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/auth"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/tui"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage API credentials",
		Long:  "Log in, inspect, and remove the API key used for the todo service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd)
		},
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthStatusCmd(),
		newAuthLogoutCmd(),
		newAuthKeyCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var keyFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API key",
		Long: `Save an API key for the configured server.

The key is read from --key, an interactive prompt on a terminal, or
stdin otherwise. It is verified against the server before saving, and
stored in the system keychain when available (file fallback).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key := strings.TrimSpace(keyFlag)
			if key == "" {
				key, err = readAPIKey(app.IsInteractive())
				if err != nil {
					return err
				}
			}
			if key == "" {
				return output.ErrUsage("API key required")
			}

			// Make the new key effective for the verification call.
			app.Config.APIKey = key
			app.Config.Sources["api_key"] = "login"

			health, err := app.Client.Health(cmd.Context())
			if err != nil {
				return err
			}

			if err := app.Auth.SaveKey(key); err != nil {
				return fmt.Errorf("failed to save API key: %w", err)
			}

			storage := "file"
			if app.Auth.UsingKeyring() {
				storage = "keyring"
			}

			return app.OK(map[string]any{
				"authenticated": true,
				"server":        app.Client.BaseURL(),
				"server_status": health.Status,
				"storage":       storage,
				"key":           auth.MaskKey(key),
			},
				output.WithSummary("Logged in"),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "list",
						Cmd:         "tcli list",
						Description: "List todos",
					},
				),
			)
		},
	}

	cmd.Flags().StringVar(&keyFlag, "key", "", "API key (prompted when omitted)")
	return cmd
}

// readAPIKey reads the key from a masked prompt on a terminal, or a
// single stdin line otherwise (supports piping the key in).
func readAPIKey(interactive bool) (string, error) {
	if interactive {
		key, err := tui.InputSecret("API key")
		if err != nil {
			return "", output.ErrCancelled()
		}
		return strings.TrimSpace(key), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", output.ErrUsage("API key required (pass --key or pipe it to stdin)")
	}
	return strings.TrimSpace(line), nil
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthStatus(cmd)
		},
	}
}

func runAuthStatus(cmd *cobra.Command) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	key, source := app.Auth.Key()
	data := map[string]any{
		"authenticated": key != "",
		"server":        app.Client.BaseURL(),
	}
	summary := "Not authenticated"

	if key != "" {
		data["key"] = auth.MaskKey(key)
		data["source"] = string(source)
		summary = fmt.Sprintf("Authenticated (%s)", source)
	}

	opts := []output.ResponseOption{output.WithSummary(summary)}
	if key == "" {
		opts = append(opts, output.WithBreadcrumbs(output.Breadcrumb{
			Action:      "login",
			Cmd:         "tcli auth login",
			Description: "Save an API key",
		}))
	}
	return app.OK(data, opts...)
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			creds, _ := app.Auth.StoredCredentials()
			if creds == nil {
				return app.OK(map[string]any{"logged_out": false},
					output.WithSummary("No stored credentials"))
			}

			if err := app.Auth.Logout(); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}

			return app.OK(map[string]any{"logged_out": true},
				output.WithSummary("Logged out"))
		},
	}
}

func newAuthKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Print the effective API key",
		Long:  "Print the API key in effect for the configured server. Raw by default for shell use; pass --json for the envelope.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key, source, err := requireKeyWithSource(app.Auth)
			if err != nil {
				return err
			}

			// Raw output for shell substitution unless a structured
			// format was requested.
			if !app.Flags.JSON && !app.Flags.Agent && !app.Flags.Quiet {
				fmt.Println(key)
				return nil
			}

			return app.OK(map[string]any{
				"key":    key,
				"source": string(source),
			}, output.WithSummary("API key"))
		},
	}
}

func requireKeyWithSource(mgr *auth.Manager) (string, auth.Source, error) {
	key, source := mgr.Key()
	if key == "" {
		return "", source, output.ErrAuth("No API key configured")
	}
	return key, source, nil
}
