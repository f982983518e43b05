// Package task defines the backend-agnostic domain model.
package task

import (
	"sort"
	"time"
)

// User represents the authenticated user for the current session.
// Immutable once created; cleared from memory on sign-out.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Task represents a single to-do item.
// ID is assigned by the active backend at creation time and is stable for
// the task's lifetime. OwnerID always equals the creating user's ID.
type Task struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Draft holds the caller-supplied fields for a new task.
// The backend assigns ID, OwnerID and CreatedAt.
type Draft struct {
	Title       string
	Description string
}

// Patch is a partial update. Nil fields are left untouched by the backend.
type Patch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch carries no fields at all.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply returns a copy of t with the patch fields merged in.
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// SortByCreatedAtDesc orders tasks newest-first, the only ordering the
// in-memory collection ever holds. Ties break on ID so the order is
// deterministic for any input ordering of writes.
func SortByCreatedAtDesc(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}

// StringPtr returns a pointer to s, for building a Patch.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b, for building a Patch.
func BoolPtr(b bool) *bool { return &b }
