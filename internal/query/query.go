// Package query filters and groups task collections for display.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
)

// All is the status/priority filter value that matches every task.
const All = "all"

// Params selects tasks. The zero value, like Default, matches everything.
type Params struct {
	Search   string  // case-insensitive substring of title or description
	ListID   *string // nil means any list, including none
	Status   string  // All, "" or a status
	Priority string  // All, "" or a priority
}

// Default returns the match-all parameters.
func Default() Params {
	return Params{Status: All, Priority: All}
}

// ParamsFromValues reads search, list_id, status and priority from a query
// string. Missing values match everything; an unknown status or priority is
// a domain.ErrValidation.
func ParamsFromValues(v url.Values) (Params, error) {
	p := Default()
	p.Search = v.Get("search")
	if id := strings.TrimSpace(v.Get("list_id")); id != "" {
		p.ListID = &id
	}
	if s := strings.TrimSpace(v.Get("status")); s != "" {
		if _, ok := models.ParseStatus(s); !ok && !matchesAll(s) {
			return Params{}, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
		}
		p.Status = s
	}
	if s := strings.TrimSpace(v.Get("priority")); s != "" {
		if _, ok := models.ParsePriority(s); !ok && !matchesAll(s) {
			return Params{}, fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, s)
		}
		p.Priority = s
	}
	return p, nil
}

// Values encodes p as a query string, omitting match-all values.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.ListID != nil {
		v.Set("list_id", *p.ListID)
	}
	if !matchesAll(p.Status) {
		v.Set("status", p.Status)
	}
	if !matchesAll(p.Priority) {
		v.Set("priority", p.Priority)
	}
	return v
}

// IsDefault reports whether p matches every task.
func (p Params) IsDefault() bool {
	return p.Search == "" && p.ListID == nil &&
		matchesAll(p.Status) && matchesAll(p.Priority)
}

// Filter returns the tasks matching every predicate in p, in input order.
func Filter(tasks []models.Task, p Params) []models.Task {
	m := newMatcher(p)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if m.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Columns splits tasks for the two-column board. Cancelled tasks are in
// neither column.
type Columns struct {
	Pending   []models.Task
	Completed []models.Task
}

// Group partitions tasks by status, preserving order.
func Group(tasks []models.Task) Columns {
	var c Columns
	for _, t := range tasks {
		switch t.Status {
		case models.StatusPending:
			c.Pending = append(c.Pending, t)
		case models.StatusCompleted:
			c.Completed = append(c.Completed, t)
		}
	}
	return c
}

type matcher struct {
	search      string
	listID      *string
	status      models.Status
	anyStatus   bool
	priority    models.Priority
	anyPriority bool
}

func newMatcher(p Params) matcher {
	m := matcher{
		search:      strings.ToLower(p.Search),
		listID:      p.ListID,
		anyStatus:   matchesAll(p.Status),
		anyPriority: matchesAll(p.Priority),
	}
	if !m.anyStatus {
		// An unknown status matches nothing rather than everything.
		m.status, _ = models.ParseStatus(p.Status)
	}
	if !m.anyPriority {
		m.priority, _ = models.ParsePriority(p.Priority)
	}
	return m
}

func (m matcher) match(t models.Task) bool {
	if m.search != "" &&
		!strings.Contains(strings.ToLower(t.Title), m.search) &&
		!strings.Contains(strings.ToLower(t.Description), m.search) {
		return false
	}
	if m.listID != nil && !t.InList(*m.listID) {
		return false
	}
	if !m.anyStatus && t.Status != m.status {
		return false
	}
	if !m.anyPriority && t.Priority != m.priority {
		return false
	}
	return true
}

func matchesAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}
