package domain

import (
	"math"
	"slices"

	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/models"
)

// ComputeStats derives dashboard counts from the full task collection in a
// single pass. Cancelled tasks count toward the total only, so
// completed+pending may be less than total.
func ComputeStats(tasks []models.Task, today calendar.Date) models.Stats {
	var s models.Stats
	s.TotalTasks = len(tasks)

	for _, t := range tasks {
		switch t.Status {
		case models.StatusCompleted:
			s.CompletedTasks++
		case models.StatusPending:
			s.PendingTasks++
		}

		switch t.Priority {
		case models.PriorityHigh:
			s.HighPriority++
		case models.PriorityMedium:
			s.MediumPriority++
		case models.PriorityLow:
			s.LowPriority++
		}

		if IsDueToday(t, today) {
			s.DueToday++
		}
	}

	s.CompletionRate = CompletionRate(s.CompletedTasks, s.TotalTasks)
	return s
}

// CompletionRate returns round(100*completed/total), or 0 when total is 0.
func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	rate := int(math.Round(100 * float64(completed) / float64(total)))
	return min(max(rate, 0), 100)
}

// RecentPending returns up to n pending tasks with the newest CreatedAt
// first. Input order breaks ties.
func RecentPending(tasks []models.Task, n int) []models.Task {
	out := make([]models.Task, 0, n)
	for _, t := range tasks {
		if t.Status == models.StatusPending {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
