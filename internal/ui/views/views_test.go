package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
)

// fakeBackend is an in-memory Backend following the server's rules
type fakeBackend struct {
	now    time.Time
	loc    *time.Location
	seq    int
	tasks  []models.Task
	lists  []models.List
	tags   []models.Tag
	failOn string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tehran")
	require.NoError(t, err)
	return &fakeBackend{
		now: time.Date(2024, time.October, 14, 12, 0, 0, 0, loc),
		loc: loc,
	}
}

func (f *fakeBackend) deps() Deps {
	return Deps{Backend: f, Location: f.loc, Now: func() time.Time { return f.now }}
}

func (f *fakeBackend) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeBackend) fail(op string) error {
	if f.failOn == op {
		return fmt.Errorf("%s: %w", op, domain.ErrTransient)
	}
	return nil
}

func (f *fakeBackend) index(id string) (int, error) {
	for i, t := range f.tasks {
		if t.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

func (f *fakeBackend) ListTasks(_ context.Context, p query.Params) ([]models.Task, error) {
	if err := f.fail("list tasks"); err != nil {
		return nil, err
	}
	return query.Filter(f.tasks, p), nil
}

func (f *fakeBackend) CreateTask(_ context.Context, t models.Task) (models.Task, error) {
	t, err := domain.ValidateTask(t)
	if err != nil {
		return models.Task{}, err
	}
	t.ID = f.nextID("task-")
	t.CreatedAt, t.UpdatedAt = f.now, f.now
	if t.Subtasks == nil {
		t.Subtasks = []models.Subtask{}
	}
	f.tasks = append([]models.Task{t}, f.tasks...)
	return t, nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	i, err := f.index(id)
	if err != nil {
		return models.Task{}, err
	}
	next, err := domain.ApplyPatch(f.tasks[i], patch, f.now)
	if err != nil {
		return models.Task{}, err
	}
	if next, err = domain.ValidateTask(next); err != nil {
		return models.Task{}, err
	}
	f.tasks[i] = next
	return next, nil
}

func (f *fakeBackend) ToggleTask(_ context.Context, id string) (models.Task, error) {
	i, err := f.index(id)
	if err != nil {
		return models.Task{}, err
	}
	next, ok := domain.ToggleStatus(f.tasks[i], f.now)
	if !ok {
		return models.Task{}, fmt.Errorf("toggle: %w", domain.ErrConflict)
	}
	f.tasks[i] = next
	return next, nil
}

func (f *fakeBackend) DeleteTask(_ context.Context, id string) error {
	i, err := f.index(id)
	if err != nil {
		return err
	}
	f.tasks = slices.Delete(f.tasks, i, i+1)
	return nil
}

func (f *fakeBackend) AddSubtask(_ context.Context, taskID, title string) (models.Task, error) {
	i, err := f.index(taskID)
	if err != nil {
		return models.Task{}, err
	}
	title, err = domain.ValidateSubtaskTitle(title)
	if err != nil {
		return models.Task{}, err
	}
	f.tasks[i].Subtasks = append(f.tasks[i].Subtasks, models.Subtask{ID: f.nextID("sub-"), Title: title})
	return f.tasks[i], nil
}

func (f *fakeBackend) SetSubtaskCompleted(_ context.Context, taskID, subtaskID string, completed bool) (models.Task, error) {
	i, err := f.index(taskID)
	if err != nil {
		return models.Task{}, err
	}
	for j := range f.tasks[i].Subtasks {
		if f.tasks[i].Subtasks[j].ID == subtaskID {
			f.tasks[i].Subtasks[j].Completed = completed
			return f.tasks[i], nil
		}
	}
	return models.Task{}, domain.ErrNotFound
}

func (f *fakeBackend) DeleteSubtask(_ context.Context, taskID, subtaskID string) (models.Task, error) {
	i, err := f.index(taskID)
	if err != nil {
		return models.Task{}, err
	}
	f.tasks[i].Subtasks = slices.DeleteFunc(f.tasks[i].Subtasks, func(s models.Subtask) bool { return s.ID == subtaskID })
	return f.tasks[i], nil
}

func (f *fakeBackend) ListLists(context.Context) ([]models.List, error) {
	if err := f.fail("list lists"); err != nil {
		return nil, err
	}
	counts := domain.CountByList(f.tasks)
	out := slices.Clone(f.lists)
	for i := range out {
		out[i].TaskCount = counts[out[i].ID]
	}
	return out, nil
}

func (f *fakeBackend) CreateList(_ context.Context, l models.List) (models.List, error) {
	l, err := domain.ValidateList(l)
	if err != nil {
		return models.List{}, err
	}
	l.ID = f.nextID("list-")
	f.lists = append(f.lists, l)
	return l, nil
}

func (f *fakeBackend) UpdateList(_ context.Context, l models.List) (models.List, error) {
	l, err := domain.ValidateList(l)
	if err != nil {
		return models.List{}, err
	}
	for i := range f.lists {
		if f.lists[i].ID == l.ID {
			f.lists[i] = l
			return l, nil
		}
	}
	return models.List{}, domain.ErrNotFound
}

func (f *fakeBackend) DeleteList(_ context.Context, id string) error {
	f.lists = slices.DeleteFunc(f.lists, func(l models.List) bool { return l.ID == id })
	for i := range f.tasks {
		if f.tasks[i].InList(id) {
			f.tasks[i].ListID = nil
		}
	}
	return nil
}

func (f *fakeBackend) ListTags(context.Context) ([]models.Tag, error) {
	return slices.Clone(f.tags), nil
}

func (f *fakeBackend) CreateTag(_ context.Context, t models.Tag) (models.Tag, error) {
	t, err := domain.ValidateTag(t)
	if err != nil {
		return models.Tag{}, err
	}
	t.ID = f.nextID("tag-")
	f.tags = append(f.tags, t)
	return t, nil
}

func (f *fakeBackend) DeleteTag(_ context.Context, id string) error {
	f.tags = slices.DeleteFunc(f.tags, func(t models.Tag) bool { return t.ID == id })
	return nil
}

func (f *fakeBackend) Stats(context.Context) (models.StatsReport, error) {
	return models.StatsReport{
		Stats:       domain.ComputeStats(f.tasks, calendar.Today(f.now, f.loc)),
		TotalLists:  len(f.lists),
		RecentTasks: domain.RecentPending(f.tasks, 5),
	}, nil
}

func (f *fakeBackend) PersianDate(context.Context) (calendar.Info, error) {
	return calendar.InfoAt(f.now, f.loc), nil
}

func (f *fakeBackend) seed(t *testing.T, tasks ...models.Task) {
	t.Helper()
	// Create oldest last so the listing matches newest-first order
	for i := len(tasks) - 1; i >= 0; i-- {
		task := tasks[i]
		status := task.Status
		task.Status = ""
		created, err := f.CreateTask(context.Background(), task)
		require.NoError(t, err)
		if status != "" {
			f.tasks[0] = domain.SetStatus(created, status, f.now)
		}
	}
}

// exec runs cmd and returns the messages it produced. Commands that do not
// finish quickly, such as cursor blinks, are dropped.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, exec(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// send delivers msg and then everything its commands produce. Messages the
// model does not own are returned for the caller to inspect.
func send(m tea.Model, msg tea.Msg) []tea.Msg {
	var unhandled []tea.Msg
	queue := []tea.Msg{msg}
	for depth := 0; len(queue) > 0 && depth < 20; depth++ {
		next := queue[0]
		queue = queue[1:]
		switch next.(type) {
		case SelectedList, ScopeChanged, BackToLists, OpenTags, OpenDashboard, tea.QuitMsg:
			unhandled = append(unhandled, next)
			continue
		}
		_, cmd := m.Update(next)
		queue = append(queue, exec(cmd)...)
	}
	return unhandled
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) []tea.Msg {
	var out []tea.Msg
	for _, k := range keys {
		out = append(out, send(m, keyMsg(k))...)
	}
	return out
}

func render(m tea.Model) string {
	return ansi.Strip(m.View())
}

func newBoard(t *testing.T, f *fakeBackend, listID *string) *TaskListView {
	t.Helper()
	v := NewTaskListView(f.deps(), listID)
	send(v, tea.WindowSizeMsg{Width: 120, Height: 60})
	for _, msg := range exec(v.Init()) {
		send(v, msg)
	}
	return v
}

func TestBoardGroupsTasksIntoColumns(t *testing.T) {
	f := newFakeBackend(t)
	f.seed(t,
		models.Task{Title: "Buy milk"},
		models.Task{Title: "File taxes", Status: models.StatusCompleted},
		models.Task{Title: "Old plan", Status: models.StatusCancelled},
	)
	v := newBoard(t, f, nil)

	out := render(v)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "File taxes")
	assert.NotContains(t, out, "Old plan")
	assert.Contains(t, out, "در انتظار (۱)")
	assert.Contains(t, out, "تکمیل شده (۱)")

	// all -> pending -> completed -> cancelled
	press(v, "s", "s", "s")
	out = render(v)
	assert.Contains(t, out, "Old plan")
	assert.NotContains(t, out, "Buy milk")
}

func TestBoardSearchAndPriorityFilter(t *testing.T) {
	f := newFakeBackend(t)
	f.seed(t,
		models.Task{Title: "Buy milk", Priority: models.PriorityHigh},
		models.Task{Title: "Walk", Description: "with the dog", Priority: models.PriorityLow},
	)
	v := newBoard(t, f, nil)

	press(v, "/", "DOG", "enter")
	out := render(v)
	assert.Contains(t, out, "Walk")
	assert.NotContains(t, out, "Buy milk")

	press(v, "0", "p")
	out = render(v)
	assert.Contains(t, out, "اولویت: بالا")
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Walk")
}

func TestBoardScopedToList(t *testing.T) {
	f := newFakeBackend(t)
	home, err := f.CreateList(context.Background(), models.List{Name: "Home"})
	require.NoError(t, err)
	f.seed(t,
		models.Task{Title: "Dishes", ListID: &home.ID},
		models.Task{Title: "Report"},
	)

	v := newBoard(t, f, &home.ID)
	out := render(v)
	assert.Contains(t, out, "Home")
	assert.Contains(t, out, "Dishes")
	assert.NotContains(t, out, "Report")

	// A board opened on a deleted list falls back to every task
	missing := "gone"
	v = newBoard(t, f, &missing)
	assert.Nil(t, v.ListID())
	assert.Contains(t, render(v), "Report")
}

func TestToggleMovesTaskBetweenColumns(t *testing.T) {
	f := newFakeBackend(t)
	f.seed(t, models.Task{Title: "Buy milk"})
	v := newBoard(t, f, nil)

	press(v, " ")
	require.Equal(t, models.StatusCompleted, f.tasks[0].Status)
	assert.NotNil(t, f.tasks[0].CompletedAt)
	assert.Contains(t, render(v), "تکمیل شده (۱)")
	assert.Contains(t, render(v), "در انتظار (۰)")
}

func TestToggleCancelledShowsConflict(t *testing.T) {
	f := newFakeBackend(t)
	f.seed(t, models.Task{Title: "Old plan", Status: models.StatusCancelled})
	v := newBoard(t, f, nil)

	press(v, "s", "s", "s", " ")
	assert.Equal(t, models.StatusCancelled, f.tasks[0].Status)
	assert.Contains(t, render(v), "لغو شده و وضعیت آن قابل تغییر نیست")
}

func TestCreateTaskWithJalaliDueDate(t *testing.T) {
	f := newFakeBackend(t)
	v := newBoard(t, f, nil)

	press(v, "n", "Pay rent", "tab", "tab", "tab", "tab", "۱۴۰۳/۰۷/۲۳", "tab", "09:30")
	assert.Contains(t, render(v), "دوشنبه، ۲۳ مهر ۱۴۰۳")

	press(v, "ctrl+s")
	require.Len(t, f.tasks, 1)
	task := f.tasks[0]
	assert.Equal(t, "Pay rent", task.Title)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-10-14", task.DueDate.String())
	require.NotNil(t, task.DueTime)
	assert.Equal(t, "09:30", *task.DueTime)
	assert.Equal(t, models.PriorityMedium, task.Priority)

	out := render(v)
	assert.Contains(t, out, "Pay rent")
	assert.Contains(t, out, "امروز")
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFakeBackend(t)
	v := newBoard(t, f, nil)

	press(v, "n", "ctrl+s")
	assert.Empty(t, f.tasks)
	assert.Contains(t, render(v), "عنوان تسک الزامی است")

	press(v, "Trip", "tab", "tab", "tab", "tab", "someday", "ctrl+s")
	assert.Empty(t, f.tasks)
	assert.Contains(t, render(v), "تاریخ نامعتبر است")

	// Server-side rejection keeps the form open with the message
	press(v, "esc", "n", "Trip", "tab", "tab", "tab", "tab", "tab", "25:99", "ctrl+s")
	assert.Empty(t, f.tasks)
	assert.Contains(t, render(v), "ورودی نامعتبر")
}

func TestEditTaskClearsDueDateAndSetsList(t *testing.T) {
	f := newFakeBackend(t)
	work, err := f.CreateList(context.Background(), models.List{Name: "Work"})
	require.NoError(t, err)
	due := calendar.NewDate(2024, time.October, 20)
	f.seed(t, models.Task{Title: "Report", DueDate: &due})
	v := newBoard(t, f, nil)

	press(v, "e")
	// Clear the due date field
	press(v, "tab", "tab", "tab", "tab")
	for range len([]rune(calendar.FormatJalali(due))) {
		send(v, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	press(v, "tab", "tab", " ", "ctrl+s")

	task := f.tasks[0]
	assert.Nil(t, task.DueDate)
	require.NotNil(t, task.ListID)
	assert.Equal(t, work.ID, *task.ListID)
	assert.Contains(t, render(v), "Work")
}

func TestSubtasksInDetailView(t *testing.T) {
	f := newFakeBackend(t)
	f.seed(t, models.Task{Title: "Plan trip"})
	v := newBoard(t, f, nil)

	press(v, "enter", "a", "Book hotel", "enter", "a", "Pack", "enter")
	require.Len(t, f.tasks[0].Subtasks, 2)
	assert.Equal(t, "Book hotel", f.tasks[0].Subtasks[0].Title)

	press(v, " ")
	assert.True(t, f.tasks[0].Subtasks[0].Completed)
	assert.Contains(t, render(v), "۱ از ۲")

	press(v, "down", "X")
	require.Len(t, f.tasks[0].Subtasks, 1)
	assert.Contains(t, render(v), "۱ از ۱")

	press(v, "esc")
	assert.Contains(t, render(v), "☑ ۱/۱")
}

func TestAssignTags(t *testing.T) {
	f := newFakeBackend(t)
	tag, err := f.CreateTag(context.Background(), models.Tag{Name: "urgent"})
	require.NoError(t, err)
	f.seed(t, models.Task{Title: "Call bank"})
	v := newBoard(t, f, nil)

	press(v, "t", "enter", "esc")
	assert.Equal(t, []string{tag.ID}, f.tasks[0].Tags)
	assert.Contains(t, render(v), "#urgent")

	// Dangling tag ids render as absent
	require.NoError(t, f.DeleteTag(context.Background(), tag.ID))
	v = newBoard(t, f, nil)
	assert.NotContains(t, render(v), "urgent")
}

func TestDeleteTask(t *testing.T) {
	f := newFakeBackend(t)
	f.seed(t, models.Task{Title: "Buy milk"}, models.Task{Title: "Walk"})
	v := newBoard(t, f, nil)

	press(v, "d")
	assert.Contains(t, render(v), "«Buy milk»")
	press(v, "n")
	assert.Len(t, f.tasks, 2)

	press(v, "d", "y")
	require.Len(t, f.tasks, 1)
	assert.Equal(t, "Walk", f.tasks[0].Title)
	out := render(v)
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "تسک با موفقیت حذف شد")
}

func TestBoardShowsBackendErrors(t *testing.T) {
	f := newFakeBackend(t)
	f.failOn = "list tasks"
	v := newBoard(t, f, nil)
	assert.Contains(t, render(v), "سرور در دسترس نیست")
}

func TestBoardNavigation(t *testing.T) {
	f := newFakeBackend(t)
	v := newBoard(t, f, nil)

	msgs := press(v, "esc")
	assert.Contains(t, msgs, tea.Msg(BackToLists{}))
	assert.Contains(t, press(v, "T"), tea.Msg(OpenTags{}))
	assert.Contains(t, press(v, "D"), tea.Msg(OpenDashboard{}))
}

func TestHelpIsPersian(t *testing.T) {
	f := newFakeBackend(t)
	v := newBoard(t, f, nil)

	out := render(v)
	assert.Contains(t, out, "جستجو")
	assert.Contains(t, out, "بیشتر")
	assert.NotContains(t, out, "search")

	press(v, "?")
	out = render(v)
	assert.Contains(t, out, "میانبرهای صفحه‌کلید")
	assert.Contains(t, out, "فیلتر بر اساس اولویت")
	assert.Contains(t, out, "برای بستن یک کلید بزنید")
	assert.NotContains(t, out, "Keyboard Shortcuts")

	press(v, "esc", "n")
	out = render(v)
	assert.Contains(t, out, "Ctrl+S: ذخیره")
	assert.NotContains(t, out, "save")

	o := newOverview(t, f)
	out = render(o)
	assert.Contains(t, out, "باز کردن")
	assert.NotContains(t, out, "quit")
}

func TestDueLabel(t *testing.T) {
	today := calendar.NewDate(2024, time.October, 14)
	at := "08:05"

	tests := []struct {
		name string
		task models.Task
		want string
	}{
		{"no due date", models.Task{}, ""},
		{"today", models.Task{DueDate: &today}, "۱۴۰۳/۰۷/۲۳ (امروز)"},
		{"yesterday with time", models.Task{DueDate: ptr(today.AddDays(-1)), DueTime: &at}, "۱۴۰۳/۰۷/۲۲ (دیروز) ۰۸:۰۵"},
		{"next week", models.Task{DueDate: ptr(today.AddDays(7))}, "۱۴۰۳/۰۷/۳۰ (۷ روز آینده)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dueLabel(tt.task, today))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestDescribeErr(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("toggle: %w", domain.ErrConflict), "لغو شده"},
		{fmt.Errorf("get: %w", domain.ErrNotFound), "پیدا نشد"},
		{fmt.Errorf("%w: title is required", domain.ErrValidation), "ورودی نامعتبر"},
		{fmt.Errorf("dial: %w", domain.ErrTransient), "در دسترس نیست"},
		{fmt.Errorf("boom"), "خطا: boom"},
	}
	for _, tt := range tests {
		assert.True(t, strings.Contains(describeErr(tt.err), tt.want), "%v -> %q", tt.err, describeErr(tt.err))
	}
}

func newOverview(t *testing.T, f *fakeBackend) *ListOverview {
	t.Helper()
	v := NewListOverview(f.deps())
	send(v, tea.WindowSizeMsg{Width: 100, Height: 40})
	for _, msg := range exec(v.Init()) {
		send(v, msg)
	}
	return v
}

func TestListOverview(t *testing.T) {
	f := newFakeBackend(t)
	home, err := f.CreateList(context.Background(), models.List{Name: "Home", Icon: "🏠"})
	require.NoError(t, err)
	f.seed(t, models.Task{Title: "Dishes", ListID: &home.ID}, models.Task{Title: "Report"})

	v := newOverview(t, f)
	out := render(v)
	assert.Contains(t, out, "همه تسک‌ها")
	assert.Contains(t, out, "۲ تسک")
	assert.Contains(t, out, "🏠 Home")
	assert.Contains(t, out, "۱ تسک")

	msgs := press(v, "enter")
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].(SelectedList).ListID)

	msgs = press(v, "down", "enter")
	require.Len(t, msgs, 1)
	assert.Equal(t, home.ID, *msgs[0].(SelectedList).ListID)
}

func TestListOverviewCreateAndEdit(t *testing.T) {
	f := newFakeBackend(t)
	v := newOverview(t, f)
	assert.Contains(t, render(v), "هنوز لیستی نساخته‌اید")

	msgs := press(v, "n", "ctrl+s")
	assert.Empty(t, msgs)
	assert.Contains(t, render(v), "نام لیست الزامی است")

	msgs = press(v, "Errands", "ctrl+s")
	require.Len(t, f.lists, 1)
	assert.Equal(t, models.DefaultListColor, f.lists[0].Color)
	require.Len(t, msgs, 1)
	assert.Equal(t, f.lists[0].ID, *msgs[0].(SelectedList).ListID)

	v = newOverview(t, f)
	press(v, "down", "e", " today", "ctrl+s")
	assert.Equal(t, "Errands today", f.lists[0].Name)
	assert.Contains(t, render(v), "Errands today")
}

func TestListOverviewDeleteKeepsTasks(t *testing.T) {
	f := newFakeBackend(t)
	home, err := f.CreateList(context.Background(), models.List{Name: "Home"})
	require.NoError(t, err)
	f.seed(t, models.Task{Title: "Dishes", ListID: &home.ID})

	v := newOverview(t, f)
	press(v, "down", "d")
	assert.Contains(t, render(v), "بدون لیست می‌مانند")
	press(v, "y")

	assert.Empty(t, f.lists)
	require.Len(t, f.tasks, 1)
	assert.Nil(t, f.tasks[0].ListID)
	assert.NotContains(t, render(v), "Home")
}

func TestTagListView(t *testing.T) {
	f := newFakeBackend(t)
	v := NewTagListView(f.deps())
	send(v, tea.WindowSizeMsg{Width: 100, Height: 40})
	for _, msg := range exec(v.Init()) {
		send(v, msg)
	}
	assert.Contains(t, render(v), "برچسبی وجود ندارد")

	press(v, "n", "enter")
	assert.Contains(t, render(v), "نام برچسب الزامی است")

	press(v, "work", "tab", "#FF0000", "enter")
	require.Len(t, f.tags, 1)
	assert.Equal(t, "#FF0000", f.tags[0].Color)
	assert.Contains(t, render(v), "work")

	press(v, "d", "y")
	assert.Empty(t, f.tags)

	assert.Contains(t, press(v, "esc"), tea.Msg(BackToLists{}))
}

func TestDashboard(t *testing.T) {
	f := newFakeBackend(t)
	today := calendar.NewDate(2024, time.October, 14)
	f.seed(t,
		models.Task{Title: "Due now", DueDate: &today, Priority: models.PriorityHigh},
		models.Task{Title: "Later"},
		models.Task{Title: "Done", Status: models.StatusCompleted},
		models.Task{Title: "Done too", Status: models.StatusCompleted},
	)

	v := NewDashboardView(f.deps())
	send(v, tea.WindowSizeMsg{Width: 100, Height: 50})
	for _, msg := range exec(v.Init()) {
		send(v, msg)
	}

	out := render(v)
	assert.Contains(t, out, "دوشنبه، ۲۳ مهر ۱۴۰۳")
	assert.Contains(t, out, "۵۰٪")
	assert.Contains(t, out, "Due now")
	assert.Contains(t, out, "Later")
	assert.NotContains(t, out, "Done too")
}
