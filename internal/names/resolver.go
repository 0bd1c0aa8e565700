// Package names resolves command line todo identifiers. A UUID goes
// straight to a lookup; anything else is matched against todo titles
// by fuzzy score, with an interactive pick when several titles qualify.
package names

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tapi/tcli/internal/models"
)

const (
	// DefaultListLimit caps how many todos a name query fetches for
	// scoring.
	DefaultListLimit = 1000

	// MinScore is the fuzzy score below which a candidate is not
	// offered as a match.
	MinScore = 25.0

	maxSelectionAttempts = 3
)

// ErrPromptCancelled signals that the user aborted the prompt instead
// of answering. Prompter implementations return it (or io.EOF) for
// interrupt and end-of-input; Resolve maps both to Cancelled.
var ErrPromptCancelled = errors.New("prompt cancelled")

// ItemLister provides the todos a resolution searches over.
type ItemLister interface {
	// GetByID fetches one todo. Used for the UUID fast path; its
	// errors come back from Resolve untouched.
	GetByID(ctx context.Context, id uuid.UUID) (models.Todo, error)
	// List fetches up to limit todos with no filtering.
	List(ctx context.Context, limit int) ([]models.Todo, error)
}

// Prompter reads one line of user input for the selection loop.
type Prompter interface {
	ReadLine(prompt string) (string, error)
}

// Renderer presents resolver output to the user.
type Renderer interface {
	// ShowCandidates renders the ranked matches once, before the
	// selection loop starts.
	ShowCandidates(query string, matches []models.Todo)
	// ShowNotice reports a problem with the previous selection attempt.
	ShowNotice(message string)
}

// Outcome is the terminal result of one resolution call.
type Outcome int

const (
	// Resolved means exactly one todo was chosen.
	Resolved Outcome = iota + 1
	// NotFound means no todo met the match threshold.
	NotFound
	// Cancelled means the user aborted the selection prompt.
	Cancelled
	// ExhaustedAttempts means three selection attempts failed.
	ExhaustedAttempts
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case NotFound:
		return "not found"
	case Cancelled:
		return "cancelled"
	case ExhaustedAttempts:
		return "exhausted attempts"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving one identifier.
type Resolution struct {
	Outcome Outcome
	Todo    models.Todo // set only when Outcome is Resolved
}

// Resolver resolves a command line identifier to a single todo.
// Collaborators are injected so commands, tests, and scripts can supply
// their own transport and terminal handling.
type Resolver struct {
	lister   ItemLister
	prompter Prompter
	renderer Renderer

	// ListLimit caps the candidate fetch for name queries.
	ListLimit int
}

// NewResolver builds a resolver around the given collaborators.
func NewResolver(lister ItemLister, prompter Prompter, renderer Renderer) *Resolver {
	return &Resolver{
		lister:    lister,
		prompter:  prompter,
		renderer:  renderer,
		ListLimit: DefaultListLimit,
	}
}

// Resolve turns identifier into a todo. A UUID looks the todo up
// directly. Anything else is scored against every todo title: no
// qualifying match is NotFound, one resolves immediately, and several
// start an interactive selection capped at three attempts.
//
// Collaborator failures are the only errors Resolve returns; every
// user-driven ending is expressed as an Outcome.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Resolution, error) {
	if id, ok := classify(identifier); ok {
		todo, err := r.lister.GetByID(ctx, id)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Outcome: Resolved, Todo: todo}, nil
	}

	todos, err := r.lister.List(ctx, r.ListLimit)
	if err != nil {
		return Resolution{}, fmt.Errorf("listing todos: %w", err)
	}
	if len(todos) == 0 {
		return Resolution{Outcome: NotFound}, nil
	}

	matches := rank(identifier, todos, Score)
	switch len(matches) {
	case 0:
		return Resolution{Outcome: NotFound}, nil
	case 1:
		return Resolution{Outcome: Resolved, Todo: matches[0]}, nil
	}

	r.renderer.ShowCandidates(identifier, matches)
	return r.selectFrom(matches)
}

// selectFrom runs the disambiguation loop: up to three attempts to pick
// one of matches by index or ID. Empty, unknown, and malformed inputs
// consume an attempt; interrupt or end-of-input cancels immediately.
func (r *Resolver) selectFrom(matches []models.Todo) (Resolution, error) {
	prompt := fmt.Sprintf("Enter the todo ID or index (1-%d) to select", len(matches))

	for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
		line, err := r.prompter.ReadLine(prompt)
		if err != nil {
			if errors.Is(err, ErrPromptCancelled) || errors.Is(err, io.EOF) {
				return Resolution{Outcome: Cancelled}, nil
			}
			return Resolution{}, fmt.Errorf("reading selection: %w", err)
		}

		selection := strings.TrimSpace(line)
		if selection == "" {
			r.renderer.ShowNotice("Selection cannot be empty.")
			continue
		}

		if id, ok := classify(selection); ok {
			if match, found := findByID(matches, id); found {
				return Resolution{Outcome: Resolved, Todo: match}, nil
			}
			r.renderer.ShowNotice(fmt.Sprintf("Todo with ID %s not found in the matches above.", selection))
			continue
		}

		if index, err := strconv.Atoi(selection); err == nil {
			if index >= 1 && index <= len(matches) {
				return Resolution{Outcome: Resolved, Todo: matches[index-1]}, nil
			}
			r.renderer.ShowNotice(fmt.Sprintf("Index must be between 1 and %d.", len(matches)))
			continue
		}

		r.renderer.ShowNotice("Invalid input. Enter a todo ID or an index number.")
	}

	return Resolution{Outcome: ExhaustedAttempts}, nil
}

// classify decides whether an identifier is a direct todo ID or a name
// query. Accepts any form uuid.Parse does.
func classify(identifier string) (uuid.UUID, bool) {
	id, err := uuid.Parse(identifier)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func findByID(todos []models.Todo, id uuid.UUID) (models.Todo, bool) {
	for _, t := range todos {
		if t.ID == id {
			return t, true
		}
	}
	return models.Todo{}, false
}

// rank scores every todo title against query, drops scores below
// MinScore (inclusive threshold: exactly MinScore stays), and sorts the
// rest by descending score. Ties keep listing order.
func rank(query string, todos []models.Todo, score func(query, title string) float64) []models.Todo {
	type scored struct {
		todo  models.Todo
		score float64
	}

	keep := make([]scored, 0, len(todos))
	for _, t := range todos {
		if s := score(query, t.Title); s >= MinScore {
			keep = append(keep, scored{todo: t, score: s})
		}
	}

	sort.SliceStable(keep, func(i, j int) bool {
		return keep[i].score > keep[j].score
	})

	matches := make([]models.Todo, len(keep))
	for i, s := range keep {
		matches[i] = s.todo
	}
	return matches
}
