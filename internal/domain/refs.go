package domain

import (
	"strings"

	"github.com/tgienger/todo/internal/models"
)

// ValidateList trims the name and fills display defaults.
func ValidateList(l models.List) (models.List, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return l, invalid(errNameRequired)
	}
	l.Color = strings.TrimSpace(l.Color)
	if l.Color == "" {
		l.Color = models.DefaultListColor
	}
	l.Icon = strings.TrimSpace(l.Icon)
	if l.Icon == "" {
		l.Icon = models.DefaultListIcon
	}
	return l, nil
}

// ValidateTag trims the name and fills the default color.
func ValidateTag(t models.Tag) (models.Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return t, invalid(errNameRequired)
	}
	t.Color = strings.TrimSpace(t.Color)
	if t.Color == "" {
		t.Color = models.DefaultTagColor
	}
	return t, nil
}

// ResolveTags returns the tags a task references, in task order. Ids with
// no matching tag are skipped.
func ResolveTags(t models.Task, tags []models.Tag) []models.Tag {
	byID := make(map[string]models.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}
	var out []models.Tag
	for _, id := range t.Tags {
		if tag, ok := byID[id]; ok {
			out = append(out, tag)
		}
	}
	return out
}

// ResolveList returns the list a task references, or false when the task
// has no list or the list no longer exists.
func ResolveList(t models.Task, lists []models.List) (models.List, bool) {
	if t.ListID == nil {
		return models.List{}, false
	}
	for _, l := range lists {
		if l.ID == *t.ListID {
			return l, true
		}
	}
	return models.List{}, false
}

// CountByList returns the number of tasks referencing each list id.
func CountByList(tasks []models.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		if t.ListID != nil {
			counts[*t.ListID]++
		}
	}
	return counts
}
