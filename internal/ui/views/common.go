package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
	"github.com/tgienger/todo/internal/ui/styles"
)

// Backend is the task API as the views use it. *client.Client implements it.
type Backend interface {
	ListTasks(ctx context.Context, p query.Params) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)
	ToggleTask(ctx context.Context, id string) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	AddSubtask(ctx context.Context, taskID, title string) (models.Task, error)
	SetSubtaskCompleted(ctx context.Context, taskID, subtaskID string, completed bool) (models.Task, error)
	DeleteSubtask(ctx context.Context, taskID, subtaskID string) (models.Task, error)

	ListLists(ctx context.Context) ([]models.List, error)
	CreateList(ctx context.Context, l models.List) (models.List, error)
	UpdateList(ctx context.Context, l models.List) (models.List, error)
	DeleteList(ctx context.Context, id string) error

	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, t models.Tag) (models.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	Stats(ctx context.Context) (models.StatsReport, error)
	PersianDate(ctx context.Context) (calendar.Info, error)
}

// Deps is what every view is built from
type Deps struct {
	Backend  Backend
	Location *time.Location
	Now      func() time.Time
}

func (d Deps) today() calendar.Date {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	return calendar.Today(now(), loc)
}

// Navigation messages handled by the app
type (
	// SelectedList opens the task board for a list. A nil ID means every task.
	SelectedList struct {
		ListID *string
	}
	// ScopeChanged reports that the board switched lists itself
	ScopeChanged struct {
		ListID *string
	}
	// BackToLists returns to the list overview
	BackToLists struct{}
	// OpenTags shows the tag manager
	OpenTags struct{}
	// OpenDashboard shows the statistics dashboard
	OpenDashboard struct{}
)

// errMsg carries a failed backend call back to the view that issued it
type errMsg struct {
	err error
}

// describeErr turns a backend error into a status line
func describeErr(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrConflict):
		return "این تسک لغو شده و وضعیت آن قابل تغییر نیست"
	case errors.Is(err, domain.ErrNotFound):
		return "مورد مورد نظر پیدا نشد"
	case errors.Is(err, domain.ErrValidation):
		return fmt.Sprintf("ورودی نامعتبر: %v", err)
	case errors.Is(err, domain.ErrTransient):
		return "سرور در دسترس نیست، دوباره تلاش کنید"
	default:
		return fmt.Sprintf("خطا: %v", err)
	}
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// helpLine renders key/description pairs as "k desc • k desc"
func helpLine(s *styles.Styles, pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+pairs[i+1])
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// placeCenter centers content in the content area, then in the terminal
func placeCenter(content string, width, height int) string {
	contentWidth := styles.ContentWidth(width)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, width, height)
}

func renderConfirm(s *styles.Styles, title, name string, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Overdue).Render(title),
		"",
		s.TitleMuted.Render(fmt.Sprintf("«%s»", name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - بله "),
			"  ",
			s.Button.Render(" N - خیر "),
		),
	)
	return placeCenter(content, width, height)
}

func renderHelpPopup(s *styles.Styles, items [][2]string, width, height int) string {
	lines := []string{s.Title.Render("میانبرهای صفحه‌کلید"), ""}
	for _, it := range items {
		lines = append(lines, s.HelpKey.Render(fmt.Sprintf("%-7s", it[0]))+it[1])
	}
	lines = append(lines, "", s.TitleMuted.Render("برای بستن یک کلید بزنید"))
	return placeCenter(s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)), width, height)
}

func colorDot(color string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
}

// dueLabel renders a task's due date in Jalali with the relative day
func dueLabel(t models.Task, today calendar.Date) string {
	if t.DueDate == nil {
		return ""
	}
	label := calendar.FormatJalali(*t.DueDate) + " (" + calendar.Relative(*t.DueDate, today) + ")"
	if t.DueTime != nil {
		label += " " + calendar.FormatTime(*t.DueTime)
	}
	return label
}
