package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// DashboardView shows today's date and the task statistics
type DashboardView struct {
	deps   Deps
	report models.StatsReport
	today  calendar.Info
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
	loaded bool
	status string
}

// NewDashboardView creates the dashboard
func NewDashboardView(deps Deps) *DashboardView {
	return &DashboardView{
		deps:   deps,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

type dashboardLoadedMsg struct {
	report models.StatsReport
	today  calendar.Info
}

func (v *DashboardView) Init() tea.Cmd {
	return v.load
}

func (v *DashboardView) load() tea.Msg {
	ctx := context.Background()
	report, err := v.deps.Backend.Stats(ctx)
	if err != nil {
		return errMsg{err: err}
	}
	today, err := v.deps.Backend.PersianDate(ctx)
	if err != nil {
		return errMsg{err: err}
	}
	return dashboardLoadedMsg{report: report, today: today}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height

	case dashboardLoadedMsg:
		v.report = msg.report
		v.today = msg.today
		v.loaded = true
		v.status = ""

	case errMsg:
		v.loaded = true
		v.status = describeErr(msg.err)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToLists{} }
		case key.Matches(msg, v.keys.Refresh):
			return v, v.load
		}
	}
	return v, nil
}

func persianInt(n int) string {
	return calendar.PersianDigits(fmt.Sprint(n))
}

func (v *DashboardView) card(label string, value string) string {
	return v.styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left,
		v.styles.TitleMuted.Render(label),
		v.styles.CardValue.Render(value),
	))
}

func (v *DashboardView) View() string {
	s := v.styles

	if !v.loaded {
		return s.TitleMuted.Render("در حال بارگذاری...")
	}

	st := v.report.Stats
	rows := []string{s.Title.Render("داشبورد")}
	if v.today.PersianDateLong != "" {
		rows = append(rows, s.TitleMuted.Render(v.today.PersianDateLong+" · "+v.today.GregorianDate))
	}
	rows = append(rows, "")

	if v.status != "" {
		rows = append(rows, s.StatusError.Render(v.status), "")
	}

	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Top,
			v.card("کل تسک‌ها", persianInt(st.TotalTasks)),
			v.card("تکمیل شده", persianInt(st.CompletedTasks)),
			v.card("در انتظار", persianInt(st.PendingTasks)),
			v.card("لیست‌ها", persianInt(v.report.TotalLists)),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			v.card("سررسید امروز", persianInt(st.DueToday)),
			v.card("اولویت بالا", persianInt(st.HighPriority)),
			v.card("اولویت متوسط", persianInt(st.MediumPriority)),
			v.card("اولویت کم", persianInt(st.LowPriority)),
		),
		"",
		s.TitleMuted.Render("درصد پیشرفت"),
		styles.ProgressBar(float64(st.CompletionRate)/100, 40)+" "+persianInt(st.CompletionRate)+"٪",
		"",
		s.TitleMuted.Render("تسک‌های اخیر"),
	)

	today := v.deps.today()
	if len(v.report.RecentTasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("تسک در انتظاری وجود ندارد"))
	}
	for _, t := range v.report.RecentTasks {
		line := lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render("■") + " " + t.Title
		if due := dueLabel(t, today); due != "" {
			dueStyle := s.TitleMuted
			if domain.IsOverdue(t, today) {
				dueStyle = s.TaskOverdue
			}
			line += "  " + dueStyle.Render(due)
		}
		rows = append(rows, s.ListItem.Render(styles.Truncate(line, max(styles.ContentWidth(v.width)-6, 40))))
	}

	rows = append(rows, helpLine(s, "r", "بارگذاری مجدد", "esc", "بازگشت", "q", "خروج"))

	content := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(content, v.width, v.height)
}
