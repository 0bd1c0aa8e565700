package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tapi/tcli/internal/api"
	"github.com/tapi/tcli/internal/models"
	"github.com/tapi/tcli/internal/output"
	"github.com/tapi/tcli/internal/tui"
)

// NewAddCmd creates the 'add' command.
func NewAddCmd() *cobra.Command {
	var (
		description string
		due         string
		priority    int
		tags        string
		estimate    int
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a new todo",
		Long:  "Create a new todo with an optional description, due date, priority, tags, and time estimate.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return output.ErrUsage("Todo title required")
			}

			if !cmd.Flags().Changed("priority") {
				priority = app.Config.DefaultPriority
			}
			if err := validatePriority(priority); err != nil {
				return err
			}

			create := models.TodoCreate{
				Title:    title,
				Priority: priority,
				Tags:     parseTags(tags),
			}
			if description != "" {
				create.Description = &description
			}
			if due != "" {
				dueAt, err := parseDue(due)
				if err != nil {
					return err
				}
				create.DueAt = dueAt
			}
			if cmd.Flags().Changed("estimate") {
				if err := validateEstimate(estimate); err != nil {
					return err
				}
				create.EstimatedMinutes = &estimate
			}

			todo, err := app.Client.CreateTodo(cmd.Context(), create)
			if err != nil {
				return err
			}

			return app.OK(todo,
				output.WithSummary(fmt.Sprintf("Created todo: %s", todo.Title)),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "view",
						Cmd:         fmt.Sprintf("tcli get %s", todo.ID),
						Description: "View todo",
					},
					output.Breadcrumb{
						Action:      "complete",
						Cmd:         fmt.Sprintf("tcli done %s", todo.ID),
						Description: "Mark done",
					},
				),
			)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Todo description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD, MM/DD/YYYY, MM-DD-YYYY, or ISO timestamp)")
	cmd.Flags().StringVar(&due, "due-at", "", "Due date (alias for --due)")
	_ = cmd.Flags().MarkHidden("due-at")
	cmd.Flags().IntVarP(&priority, "priority", "p", models.PriorityDefault, "Priority (1=highest, 5=lowest)")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().IntVarP(&estimate, "estimate", "e", 0, "Estimated minutes")

	return cmd
}

// listFlags holds the flags for the list command.
type listFlags struct {
	status string
	all    bool
	limit  int
	tag    string
}

// NewListCmd creates the 'list' command.
func NewListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Long:  "List todos. Completed todos are hidden unless --all or --status done is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, flags)
		},
	}

	addListFlags(cmd, &flags)
	return cmd
}

// RunListDefault runs the default list view for a bare 'tcli' invocation.
func RunListDefault(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return output.ErrUsageHint(
			fmt.Sprintf("Unknown command: %s", args[0]),
			"Run 'tcli commands' to see available commands",
		)
	}
	return runList(cmd, listFlags{})
}

func addListFlags(cmd *cobra.Command, flags *listFlags) {
	cmd.Flags().StringVarP(&flags.status, "status", "s", "", "Filter by status (todo, in_progress, done)")
	cmd.Flags().BoolVarP(&flags.all, "all", "A", false, "Include completed todos")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Maximum todos to fetch")
	cmd.Flags().StringVar(&flags.tag, "tag", "", "Filter by tag")
}

func runList(cmd *cobra.Command, flags listFlags) error {
	app, err := requireApp(cmd)
	if err != nil {
		return err
	}

	if flags.status != "" {
		if err := validateStatus(flags.status); err != nil {
			return err
		}
	}

	limit := flags.limit
	if limit <= 0 {
		limit = app.Config.DefaultLimit
	}

	opts := api.ListOptions{
		Status: flags.status,
		Tag:    flags.tag,
		Limit:  limit,
	}

	var todos []models.Todo
	fetch := func() error {
		var err error
		todos, err = app.Client.ListTodos(cmd.Context(), opts)
		return err
	}

	if app.IsInteractive() {
		err = tui.NewSpinner("Fetching todos...").RunSimple(fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return err
	}

	// The service has no "not done" filter, so the default view drops
	// completed todos here.
	if flags.status == "" && !flags.all {
		visible := todos[:0]
		for _, t := range todos {
			if t.Status != models.StatusDone {
				visible = append(visible, t)
			}
		}
		todos = visible
	}

	summary := fmt.Sprintf("%d %s", len(todos), pluralize(len(todos), "todo", "todos"))
	return app.OK(todos,
		output.WithSummary(summary),
		output.WithContext("count", len(todos)),
	)
}

// NewGetCmd creates the 'get' command.
func NewGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <identifier>",
		Short: "Show a todo",
		Long:  "Show a todo by ID or fuzzy title match.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			todo, err := resolveTodo(cmd, app, args[0])
			if err != nil {
				return err
			}

			return app.OK(todo,
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "complete",
						Cmd:         fmt.Sprintf("tcli done %s", todo.ID),
						Description: "Mark done",
					},
					output.Breadcrumb{
						Action:      "update",
						Cmd:         fmt.Sprintf("tcli update %s", todo.ID),
						Description: "Update fields",
					},
				),
			)
		},
	}
	return cmd
}

// updateFlags holds the mutable-field flags shared by update and edit.
type updateFlags struct {
	title       string
	description string
	due         string
	status      string
	priority    int
	tags        string
	estimate    int
}

// NewUpdateCmd creates the 'update' command.
func NewUpdateCmd() *cobra.Command {
	return newUpdateCmd("update", "Update a todo")
}

// NewEditCmd creates the 'edit' command, a synonym for update.
func NewEditCmd() *cobra.Command {
	return newUpdateCmd("edit", "Edit a todo (alias for update)")
}

func newUpdateCmd(name, short string) *cobra.Command {
	var flags updateFlags

	cmd := &cobra.Command{
		Use:   name + " <identifier>",
		Short: short,
		Long:  "Change fields on an existing todo, resolved by ID or fuzzy title match.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			update, err := buildUpdate(cmd, flags)
			if err != nil {
				return err
			}
			if update.IsEmpty() {
				return output.ErrUsageHint(
					"No fields to update",
					"Pass at least one of --title, --description, --due, --status, --priority, --tags, --estimate",
				)
			}

			todo, err := resolveTodo(cmd, app, args[0])
			if err != nil {
				return err
			}

			updated, err := app.Client.UpdateTodo(cmd.Context(), todo.ID, update)
			if err != nil {
				return err
			}

			return app.OK(updated,
				output.WithSummary(fmt.Sprintf("Updated todo: %s", updated.Title)))
		},
	}

	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&flags.description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&flags.due, "due", "", "New due date")
	cmd.Flags().StringVar(&flags.due, "due-at", "", "New due date (alias for --due)")
	_ = cmd.Flags().MarkHidden("due-at")
	cmd.Flags().StringVarP(&flags.status, "status", "s", "", "New status (todo, in_progress, done)")
	cmd.Flags().IntVarP(&flags.priority, "priority", "p", 0, "New priority (1=highest, 5=lowest)")
	cmd.Flags().StringVar(&flags.tags, "tags", "", "New comma-separated tags")
	cmd.Flags().IntVarP(&flags.estimate, "estimate", "e", 0, "New estimated minutes")

	return cmd
}

// buildUpdate converts changed flags into a PATCH body. Only flags the
// user actually passed are sent, so unset fields stay untouched.
func buildUpdate(cmd *cobra.Command, flags updateFlags) (models.TodoUpdate, error) {
	var update models.TodoUpdate

	if cmd.Flags().Changed("title") {
		if strings.TrimSpace(flags.title) == "" {
			return update, output.ErrUsage("Title cannot be empty")
		}
		update.Title = &flags.title
	}
	if cmd.Flags().Changed("description") {
		update.Description = &flags.description
	}
	if cmd.Flags().Changed("due") || cmd.Flags().Changed("due-at") {
		dueAt, err := parseDue(flags.due)
		if err != nil {
			return update, err
		}
		update.DueAt = dueAt
	}
	if cmd.Flags().Changed("status") {
		if err := validateStatus(flags.status); err != nil {
			return update, err
		}
		update.Status = &flags.status
	}
	if cmd.Flags().Changed("priority") {
		if err := validatePriority(flags.priority); err != nil {
			return update, err
		}
		update.Priority = &flags.priority
	}
	if cmd.Flags().Changed("tags") {
		tags := parseTags(flags.tags)
		if tags == nil {
			tags = []string{}
		}
		update.Tags = tags
	}
	if cmd.Flags().Changed("estimate") {
		if err := validateEstimate(flags.estimate); err != nil {
			return update, err
		}
		update.EstimatedMinutes = &flags.estimate
	}

	return update, nil
}

// NewDoneCmd creates the 'done' command.
func NewDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <identifier>",
		Short: "Mark a todo as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			todo, err := resolveTodo(cmd, app, args[0])
			if err != nil {
				return err
			}

			status := models.StatusDone
			updated, err := app.Client.UpdateTodo(cmd.Context(), todo.ID,
				models.TodoUpdate{Status: &status})
			if err != nil {
				return err
			}

			return app.OK(updated,
				output.WithSummary(fmt.Sprintf("Completed: %s", updated.Title)))
		},
	}
	return cmd
}

// NewDeleteCmd creates the 'delete' command.
func NewDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <identifier>",
		Short: "Delete a todo",
		Long:  "Delete a todo. Asks for confirmation on a terminal unless --yes is given.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(cmd)
			if err != nil {
				return err
			}

			todo, err := resolveTodo(cmd, app, args[0])
			if err != nil {
				return err
			}

			if !yes && app.IsInteractive() {
				confirmed, err := tui.ConfirmDangerous(
					fmt.Sprintf("Delete todo %q?", todo.Title))
				if err != nil {
					return output.ErrCancelled()
				}
				if !confirmed {
					return output.ErrCancelled()
				}
			}

			if err := app.Client.DeleteTodo(cmd.Context(), todo.ID); err != nil {
				return err
			}

			return app.OK(map[string]any{"id": todo.ID, "deleted": true},
				output.WithSummary(fmt.Sprintf("Deleted: %s", todo.Title)))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}
