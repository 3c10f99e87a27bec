package models

import (
	"time"

	"github.com/tgienger/todo/internal/calendar"
)

// Default display hints, matching what new lists and tags get when the
// client sends none.
const (
	DefaultListColor = "#3B82F6"
	DefaultListIcon  = "📋"
	DefaultTagColor  = "#10B981"
)

// List is a user-defined grouping that tasks may reference
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
	TaskCount int       `json:"task_count"` // derived on read, never stored
}

// Tag represents a label that can be applied to tasks
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Subtask is a checklist item owned by a single task
type Subtask struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// Task represents a single task
type Task struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	Priority    Priority       `json:"priority"`
	DueDate     *calendar.Date `json:"due_date"`
	DueTime     *string        `json:"due_time"` // HH:MM
	ListID      *string        `json:"list_id"`
	Tags        []string       `json:"tags"` // tag IDs, may reference deleted tags
	Subtasks    []Subtask      `json:"subtasks"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	CompletedAt *time.Time     `json:"completed_at"`
}

// InList reports whether the task references listID.
func (t Task) InList(listID string) bool {
	return t.ListID != nil && *t.ListID == listID
}

// HasTag reports whether the task references tagID.
func (t Task) HasTag(tagID string) bool {
	for _, id := range t.Tags {
		if id == tagID {
			return true
		}
	}
	return false
}

// TaskPatch is a partial task update. Nil fields are left unchanged. An empty
// string clears DueDate, DueTime and ListID.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	DueDate     *string   `json:"due_date,omitempty"`
	DueTime     *string   `json:"due_time,omitempty"`
	ListID      *string   `json:"list_id,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
}

// Stats are aggregate counts derived from the full task collection
type Stats struct {
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
	PendingTasks   int `json:"pending_tasks"`
	CompletionRate int `json:"completion_rate"` // percent, 0-100
	DueToday       int `json:"due_today"`
	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`
}

// StatsReport is the dashboard payload: Stats plus list count and the most
// recent pending tasks.
type StatsReport struct {
	Stats
	TotalLists  int    `json:"total_lists"`
	RecentTasks []Task `json:"recent_tasks"`
}
