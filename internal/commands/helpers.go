// Package commands implements the CLI commands.
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/appctx"
	"github.com/tapi/tcli/internal/dateparse"
	"github.com/tapi/tcli/internal/models"
	"github.com/tapi/tcli/internal/names"
	"github.com/tapi/tcli/internal/output"
)

// requireApp fetches the app from the command context.
func requireApp(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return app, nil
}

// resolveTodo resolves a todo identifier (UUID or fuzzy title) to a
// concrete todo, mapping each resolver outcome to the error taxonomy.
func resolveTodo(cmd *cobra.Command, app *appctx.App, identifier string) (models.Todo, error) {
	res, err := app.Names.Resolve(cmd.Context(), identifier)
	if err != nil {
		return models.Todo{}, err
	}

	switch res.Outcome {
	case names.Resolved:
		return res.Todo, nil

	case names.NotFound:
		return models.Todo{}, output.ErrNotFoundHint("Todo", identifier,
			"Run 'tcli list' to see available todos")

	case names.Cancelled:
		// Non-interactive runs cancel the prompt instead of hanging;
		// report the ambiguity with the matches that were shown.
		if !app.IsInteractive() {
			return models.Todo{}, output.ErrAmbiguous("todo", matchTitles(app))
		}
		return models.Todo{}, output.ErrCancelled()

	case names.ExhaustedAttempts:
		return models.Todo{}, &output.Error{
			Code:    output.CodeAmbiguous,
			Message: "Selection attempts exhausted",
			Hint:    "Be more specific, or pass the todo ID directly",
		}

	default:
		return models.Todo{}, fmt.Errorf("unexpected resolution outcome %v", res.Outcome)
	}
}

// matchTitles collects the titles of the last-shown candidate set.
func matchTitles(app *appctx.App) []string {
	matches := app.Candidates.Last()
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		titles = append(titles, m.Title)
	}
	return titles
}

// parseDue parses a --due flag value into a wire timestamp.
func parseDue(value string) (*models.Time, error) {
	t, err := dateparse.Parse(value)
	if err != nil {
		return nil, output.ErrUsageHint(
			fmt.Sprintf("Invalid date: %s", value),
			"Use YYYY-MM-DD, MM/DD/YYYY, MM-DD-YYYY, or an ISO timestamp",
		)
	}
	wire := models.NewTime(t)
	return &wire, nil
}

// parseTags splits a comma-separated tag list, dropping empty entries.
func parseTags(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// validatePriority checks the 1..5 bounds client-side.
func validatePriority(p int) error {
	if !models.ValidPriority(p) {
		return output.ErrUsage(fmt.Sprintf("Priority must be between %d and %d",
			models.PriorityMin, models.PriorityMax))
	}
	return nil
}

// validateStatus checks for a status the service accepts.
func validateStatus(s string) error {
	if !models.ValidStatus(s) {
		return output.ErrUsageHint(
			fmt.Sprintf("Invalid status: %s", s),
			"Valid statuses: todo, in_progress, done",
		)
	}
	return nil
}

// validateEstimate checks for a non-negative minute count.
func validateEstimate(minutes int) error {
	if minutes < 0 {
		return output.ErrUsage("Estimate must be zero or more minutes")
	}
	return nil
}

// pluralize returns singular or plural based on count.
func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
