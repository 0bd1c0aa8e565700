package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/appctx"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Runs without app setup so it works before any config exists.
			app := appctx.FromContext(cmd.Context())
			if app == nil || !app.Flags.JSON && !app.Flags.Agent && !app.Flags.Quiet {
				fmt.Println(version.Full())
				return nil
			}

			return app.OK(map[string]any{
				"version": version.Version,
				"commit":  version.Commit,
				"date":    version.Date,
				"dev":     version.IsDev(),
			}, output.WithSummary(version.Full()))
		},
	}
}
