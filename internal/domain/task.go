package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/models"
)

const timeOfDayLayout = "15:04"

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// ValidateTask normalizes a task as received from a client or the store.
// Empty titles are rejected; unknown status and priority fall back to
// pending and medium; empty optional fields become unset. The description is
// stored as given.
func ValidateTask(t models.Task) (models.Task, error) {
	out := t

	out.Title = strings.TrimSpace(t.Title)
	if out.Title == "" {
		return t, invalid(errTitleRequired)
	}

	if st, ok := models.ParseStatus(string(t.Status)); ok {
		out.Status = st
	} else {
		out.Status = models.StatusPending
	}
	if p, ok := models.ParsePriority(string(t.Priority)); ok {
		out.Priority = p
	} else {
		out.Priority = models.PriorityMedium
	}

	if t.DueDate != nil && t.DueDate.IsZero() {
		out.DueDate = nil
	}

	dueTime, err := normalizeDueTime(t.DueTime)
	if err != nil {
		return t, err
	}
	out.DueTime = dueTime

	out.ListID = normalizeRef(t.ListID)
	out.Tags = normalizeTags(t.Tags)

	out.Subtasks = make([]models.Subtask, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			return t, invalid(errSubtaskTitleMissing)
		}
		out.Subtasks = append(out.Subtasks, s)
	}

	if out.Status != models.StatusCompleted {
		out.CompletedAt = nil
	}

	return out, nil
}

// ApplyPatch returns t with patch applied, stamped with now. Any invalid
// field rejects the whole patch and t is returned unchanged.
func ApplyPatch(t models.Task, patch models.TaskPatch, now time.Time) (models.Task, error) {
	out := t
	out.Tags = append([]string(nil), t.Tags...)

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return t, invalid(errTitleRequired)
		}
		out.Title = title
	}

	if patch.Description != nil {
		out.Description = *patch.Description
	}

	if patch.Priority != nil {
		p, ok := models.ParsePriority(string(*patch.Priority))
		if !ok {
			return t, invalid(fmt.Errorf("%w %q", errInvalidPriority, *patch.Priority))
		}
		out.Priority = p
	}

	if patch.DueDate != nil {
		d, err := ParseDueDate(*patch.DueDate)
		if err != nil {
			return t, err
		}
		out.DueDate = d
	}

	if patch.DueTime != nil {
		dueTime, err := normalizeDueTime(patch.DueTime)
		if err != nil {
			return t, err
		}
		out.DueTime = dueTime
	}

	if patch.ListID != nil {
		out.ListID = normalizeRef(patch.ListID)
	}

	if patch.Tags != nil {
		out.Tags = normalizeTags(*patch.Tags)
	}

	if patch.Status != nil {
		st, ok := models.ParseStatus(string(*patch.Status))
		if !ok {
			return t, invalid(fmt.Errorf("%w %q", errInvalidStatus, *patch.Status))
		}
		out = SetStatus(out, st, now)
	}

	out.UpdatedAt = now
	return out, nil
}

// SetStatus moves t to status st, maintaining CompletedAt.
func SetStatus(t models.Task, st models.Status, now time.Time) models.Task {
	if t.Status == st {
		return t
	}
	t.Status = st
	if st == models.StatusCompleted {
		completed := now
		t.CompletedAt = &completed
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
	return t
}

// ToggleStatus flips a task between pending and completed. Cancelled tasks
// are left as they are and ok is false.
func ToggleStatus(t models.Task, now time.Time) (models.Task, bool) {
	switch t.Status {
	case models.StatusPending:
		return SetStatus(t, models.StatusCompleted, now), true
	case models.StatusCompleted:
		return SetStatus(t, models.StatusPending, now), true
	default:
		return t, false
	}
}

// Progress is the completion state of a task's checklist.
type Progress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
}

// SubtaskProgress counts completed subtasks. Ratio is 0 for a task with no
// subtasks.
func SubtaskProgress(t models.Task) Progress {
	p := Progress{Total: len(t.Subtasks)}
	for _, s := range t.Subtasks {
		if s.Completed {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Ratio = float64(p.Completed) / float64(p.Total)
	}
	return p
}

// IsOverdue reports whether t has a due date strictly before today and is
// not completed.
func IsOverdue(t models.Task, today calendar.Date) bool {
	if t.DueDate == nil || t.Status == models.StatusCompleted {
		return false
	}
	return calendar.IsOverdue(*t.DueDate, today)
}

// IsDueToday reports whether t is due today and not completed.
func IsDueToday(t models.Task, today calendar.Date) bool {
	if t.DueDate == nil || t.Status == models.StatusCompleted {
		return false
	}
	return calendar.IsToday(*t.DueDate, today)
}

// ParseDueDate reads a YYYY-MM-DD due date. Blank input means no due date.
func ParseDueDate(s string) (*calendar.Date, error) {
	s = strings.TrimSpace(calendar.LatinDigits(s))
	if s == "" {
		return nil, nil
	}
	d, err := calendar.Parse(s)
	if err != nil {
		return nil, invalid(fmt.Errorf("%w %q", errInvalidDueDate, s))
	}
	return &d, nil
}

// ValidateSubtaskTitle trims a new subtask title and rejects empty ones.
func ValidateSubtaskTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid(errSubtaskTitleMissing)
	}
	return title, nil
}

func normalizeDueTime(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	s := strings.TrimSpace(calendar.LatinDigits(*v))
	if s == "" {
		return nil, nil
	}
	parsed, err := time.Parse(timeOfDayLayout, s)
	if err != nil {
		return nil, invalid(errInvalidDueTime)
	}
	s = parsed.Format(timeOfDayLayout)
	return &s, nil
}

func normalizeRef(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}

// normalizeTags drops blanks and duplicates, keeping first-seen order.
func normalizeTags(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
