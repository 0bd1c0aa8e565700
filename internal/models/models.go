// Package models provides canonical type definitions for tapi todo
// entities. These types are used throughout the client for request
// bodies and API responses.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Todo statuses accepted by the service.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Priority bounds (1 = highest, 5 = lowest).
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 3
)

// wireLayout is the offset-less timestamp form the service emits.
const wireLayout = "2006-01-02T15:04:05"

// Time is a timestamp in the service's wire conventions. The service
// emits offset-less timestamps; inputs may carry an explicit offset.
// Marshaling keeps RFC 3339 only when the value has a nonzero offset.
type Time struct {
	time.Time
}

// NewTime wraps a time.Time for the wire.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

func (t Time) MarshalJSON() ([]byte, error) {
	if _, offset := t.Zone(); offset != 0 {
		return json.Marshal(t.Format(time.RFC3339))
	}
	return json.Marshal(t.Format(wireLayout))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		parsed, err = time.Parse(wireLayout, s)
	}
	if err != nil {
		parsed, err = time.Parse("2006-01-02", s)
	}
	if err != nil {
		return fmt.Errorf("invalid timestamp %q", s)
	}

	t.Time = parsed
	return nil
}

// Todo represents a todo item as returned by the service.
type Todo struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description,omitempty"`
	Status           string    `json:"status,omitempty"`
	Priority         int       `json:"priority"`
	DueAt            *Time     `json:"due_at,omitempty"`
	EstimatedMinutes *int      `json:"estimated_minutes,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	CreatedAt        Time      `json:"created_at"`
	UpdatedAt        *Time     `json:"updated_at,omitempty"`
}

// TodoCreate is the request body for creating a todo.
// Priority is always sent; the service defaults it to 3 otherwise.
type TodoCreate struct {
	Title            string   `json:"title"`
	Description      *string  `json:"description,omitempty"`
	DueAt            *Time    `json:"due_at,omitempty"`
	EstimatedMinutes *int     `json:"estimated_minutes,omitempty"`
	Priority         int      `json:"priority"`
	Tags             []string `json:"tags,omitempty"`
}

// TodoUpdate is the request body for PATCH updates. All fields are
// optional; only set fields are marshaled.
type TodoUpdate struct {
	Title            *string  `json:"title,omitempty"`
	Description      *string  `json:"description,omitempty"`
	DueAt            *Time    `json:"due_at,omitempty"`
	EstimatedMinutes *int     `json:"estimated_minutes,omitempty"`
	Status           *string  `json:"status,omitempty"`
	Priority         *int     `json:"priority,omitempty"`
	Tags             []string `json:"tags,omitempty"`
}

// IsEmpty reports whether the update sets no fields.
func (u TodoUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.DueAt == nil &&
		u.EstimatedMinutes == nil && u.Status == nil && u.Priority == nil &&
		u.Tags == nil
}

// ValidStatus reports whether s is a status the service accepts.
func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is within the 1..5 bounds.
func ValidPriority(p int) bool {
	return p >= PriorityMin && p <= PriorityMax
}
