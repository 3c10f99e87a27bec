package models

import "strings"

// Status is the lifecycle state of a task
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusCompleted, StatusCancelled}

var statusLabels = map[Status]string{
	StatusPending:   "در انتظار",
	StatusCompleted: "تکمیل شده",
	StatusCancelled: "لغو شده",
}

// ParseStatus accepts the wire value in any case or the Persian label.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) || s == statusLabels[st] {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the Persian display label.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

var priorityLabels = map[Priority]string{
	PriorityLow:    "کم",
	PriorityMedium: "متوسط",
	PriorityHigh:   "بالا",
}

// ParsePriority accepts the wire value in any case or the Persian label.
func ParsePriority(s string) (Priority, bool) {
	s = strings.TrimSpace(s)
	for _, p := range Priorities {
		if strings.EqualFold(s, string(p)) || s == priorityLabels[p] {
			return p, true
		}
	}
	return "", false
}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// Label returns the Persian display label.
func (p Priority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// Next returns the following priority, wrapping from high to low.
func (p Priority) Next() Priority {
	for i, v := range Priorities {
		if v == p {
			return Priorities[(i+1)%len(Priorities)]
		}
	}
	return PriorityMedium
}
