package completion

import (
	"context"
	"sync"
	"time"

	"github.com/tapi/tcli/internal/models"
)

// refreshLimit caps how many todos a completion refresh fetches.
const refreshLimit = 200

// refreshTimeout bounds a detached background refresh.
const refreshTimeout = 30 * time.Second

// TodoSource fetches todos for the completion cache.
type TodoSource interface {
	List(ctx context.Context, limit int) ([]models.Todo, error)
}

// Refresher handles completion cache refresh operations.
type Refresher struct {
	store  *Store
	source TodoSource

	mu         sync.Mutex
	refreshing bool
}

// NewRefresher creates a new cache refresher.
func NewRefresher(store *Store, source TodoSource) *Refresher {
	return &Refresher{store: store, source: source}
}

// RefreshIfStale triggers a background refresh if the cache is stale.
// Returns immediately; a refresh already in progress makes this a
// no-op.
func (r *Refresher) RefreshIfStale(maxAge time.Duration) {
	if !r.store.IsStale(maxAge) {
		return
	}

	r.mu.Lock()
	if r.refreshing {
		r.mu.Unlock()
		return
	}
	r.refreshing = true
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			r.refreshing = false
			r.mu.Unlock()
		}()

		// Detached context: the refresh outlives the triggering command.
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		// Best-effort; stale completions are better than failed commands.
		_, _ = r.Refresh(ctx)
	}()
}

// Refresh fetches fresh todos and updates the cache synchronously.
// Returns the number of todos cached.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	todos, err := r.source.List(ctx, refreshLimit)
	if err != nil {
		return 0, err
	}

	cached := make([]CachedTodo, 0, len(todos))
	for _, t := range todos {
		cached = append(cached, CachedTodo{
			ID:     t.ID.String(),
			Title:  t.Title,
			Status: t.Status,
		})
	}

	if err := r.store.Save(cached); err != nil {
		return 0, err
	}
	return len(cached), nil
}
