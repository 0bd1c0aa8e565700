package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/auth"
	"github.com/tapi/tcli/internal/config"
	"github.com/tapi/tcli/internal/output"
)

// NewConfigCmd creates the config command for managing configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage tcli configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > profile > local > global > system > defaults

Config locations:
  - System: /etc/tcli/config.yaml
  - Global: ~/.config/tcli/config.yaml
  - Local:  .tcli/config.yaml (cannot override api.base_url)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigInitCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
}

func runConfigShow(cmd *cobra.Command) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}
	cfg := app.Config

	keys := []struct {
		key     string
		value   string
		include bool
	}{
		{"base_url", cfg.BaseURL, cfg.BaseURL != ""},
		{"api_key", auth.MaskKey(cfg.APIKey), cfg.APIKey != ""},
		{"timeout", fmt.Sprintf("%d", cfg.Timeout), true},
		{"default_priority", fmt.Sprintf("%d", cfg.DefaultPriority), true},
		{"default_limit", fmt.Sprintf("%d", cfg.DefaultLimit), true},
		{"format", cfg.Format, cfg.Format != ""},
		{"cache_dir", cfg.CacheDir, cfg.CacheDir != ""},
		{"cache_enabled", fmt.Sprintf("%t", cfg.CacheEnabled), true},
		{"hints", fmt.Sprintf("%t", cfg.HintsEnabled()), cfg.Hints != nil},
		{"stats", fmt.Sprintf("%t", cfg.StatsEnabled()), cfg.Stats != nil},
		{"verbose", fmt.Sprintf("%d", cfg.VerboseLevel()), cfg.Verbose != nil},
		{"profile", cfg.ActiveProfile, cfg.ActiveProfile != ""},
		{"default_profile", cfg.DefaultProfile, cfg.DefaultProfile != ""},
	}

	configData := make(map[string]any)
	for _, k := range keys {
		if !k.include {
			continue
		}
		source := cfg.Sources[k.key]
		if source == "" {
			source = string(config.SourceDefault)
		}
		configData[k.key] = map[string]string{
			"value":  k.value,
			"source": source,
		}
	}

	return app.OK(configData,
		output.WithSummary("Effective configuration"),
		output.WithBreadcrumbs(
			output.Breadcrumb{
				Action:      "set",
				Cmd:         "tcli config set <key> <value>",
				Description: "Set config value",
			},
			output.Breadcrumb{
				Action:      "path",
				Cmd:         "tcli config path",
				Description: "Show config file locations",
			},
		),
	)
}

func newConfigInitCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default config file",
		Long:  "Write a commented default config file. Targets the global config unless --local is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			path := config.GlobalConfigPath()
			if local {
				path = config.LocalConfigPath()
			}

			if _, err := os.Stat(path); err == nil {
				return app.OK(map[string]any{
					"exists": true,
					"path":   path,
				}, output.WithSummary(fmt.Sprintf("Config file already exists: %s", path)))
			}

			content := config.DefaultFileContent(app.Config.BaseURL, "")
			if err := config.WriteFile(path, []byte(content)); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			return app.OK(map[string]any{
				"created": true,
				"path":    path,
			},
				output.WithSummary(fmt.Sprintf("Created: %s", path)),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "set",
						Cmd:         "tcli config set api.base_url <url>",
						Description: "Set server URL",
					},
				),
			)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Create .tcli/config.yaml in the current directory")
	return cmd
}

func newConfigSetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: fmt.Sprintf(`Set a configuration value in the global (default) or local config file.

Valid keys: %s
Profile keys: profiles.<name>.{base_url,api_key,timeout}`,
			strings.Join(config.KnownKeys(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]

			path := config.GlobalConfigPath()
			scope := "global"
			if local {
				path = config.LocalConfigPath()
				scope = "local"
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := config.SetKey(path, key, value); err != nil {
				return output.ErrUsage(err.Error())
			}

			display := value
			if key == "api.api_key" || strings.HasSuffix(key, ".api_key") {
				display = auth.MaskKey(value)
			}

			return app.OK(map[string]any{
				"key":    key,
				"value":  display,
				"scope":  scope,
				"path":   path,
				"status": "set",
			},
				output.WithSummary(fmt.Sprintf("Set %s = %s (%s)", key, display, scope)),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "show",
						Cmd:         "tcli config show",
						Description: "View config",
					},
				),
			)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Set in .tcli/config.yaml instead of the global config")
	return cmd
}

func newConfigUnsetCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the global (default) or local config file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			key := args[0]

			path := config.GlobalConfigPath()
			scope := "global"
			if local {
				path = config.LocalConfigPath()
				scope = "local"
			}

			removed, err := config.UnsetKey(path, key)
			if err != nil {
				return output.ErrUsage(err.Error())
			}

			summary := fmt.Sprintf("Unset %s (%s)", key, scope)
			if !removed {
				summary = fmt.Sprintf("%s was not set (%s)", key, scope)
			}

			return app.OK(map[string]any{
				"key":     key,
				"scope":   scope,
				"path":    path,
				"removed": removed,
			}, output.WithSummary(summary))
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Unset in .tcli/config.yaml instead of the global config")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		Long:  "Show each config layer's path and whether the file exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			layers := config.Layers()
			data := make([]map[string]any, 0, len(layers))
			for _, layer := range layers {
				_, statErr := os.Stat(layer.Path)
				data = append(data, map[string]any{
					"scope":  string(layer.Source),
					"path":   layer.Path,
					"exists": statErr == nil,
				})
			}

			return app.OK(data, output.WithSummary("Config file locations"))
		},
	}
}
