package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/domain"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/query"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// Column is one side of the task board
type Column int

const (
	ColumnPending Column = iota
	ColumnCompleted
)

// Edit form fields, in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldPriority
	fieldStatus
	fieldDueDate
	fieldDueTime
	fieldList
	fieldTags
	fieldSave
	fieldCount
)

var (
	statusFilters   = []string{query.All, string(models.StatusPending), string(models.StatusCompleted), string(models.StatusCancelled)}
	priorityFilters = []string{query.All, string(models.PriorityHigh), string(models.PriorityMedium), string(models.PriorityLow)}
)

// TaskListView is the two-column task board
type TaskListView struct {
	deps   Deps
	tasks  []models.Task // every task; filtering happens on render
	lists  []models.List
	tags   []models.Tag
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	loaded    bool
	status    string
	statusErr bool

	// Filters
	listID         *string
	searchInput    textinput.Model
	searching      bool
	statusFilter   string
	priorityFilter string
	hideCompleted  bool

	// List dropdown state
	listDropdownOpen bool
	listCursor       int

	// Board cursor
	column  Column
	cursor  [2]int
	scrollY [2]int

	// Task creation/editing
	editing       bool
	editingNew    bool
	saving        bool
	editTaskID    string
	editTitle     textinput.Model
	editDesc      textarea.Model
	editDue       textinput.Model
	editTime      textinput.Model
	editPriority  models.Priority
	editStatus    models.Status
	editListIdx   int // 0 = no list, otherwise lists[editListIdx-1]
	editTags      []string
	editTagCursor int
	editFocusIdx  int
	editErr       string

	// Tag assignment mode
	assigningTags   bool
	assignTagCursor int
	assigningTaskID string

	// Task detail view with subtasks
	viewingTaskID       string
	subtaskCursor       int
	subtaskInput        textinput.Model
	subtaskInputFocused bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
}

// NewTaskListView creates the board scoped to listID, or to every task when
// listID is nil
func NewTaskListView(deps Deps, listID *string) *TaskListView {
	search := textinput.New()
	search.Placeholder = "جستجو..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "عنوان تسک"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "توضیحات"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "۱۴۰۳/۰۷/۲۳ یا 2024-10-14"
	editDue.CharLimit = 10

	editTime := textinput.New()
	editTime.Placeholder = "HH:MM"
	editTime.CharLimit = 5

	subtask := textinput.New()
	subtask.Placeholder = "زیرتسک جدید"
	subtask.CharLimit = 200

	return &TaskListView{
		deps:           deps,
		styles:         styles.NewStyles(),
		keys:           keys.DefaultKeyMap(),
		listID:         listID,
		searchInput:    search,
		statusFilter:   query.All,
		priorityFilter: query.All,
		editTitle:      editTitle,
		editDesc:       editDesc,
		editDue:        editDue,
		editTime:       editTime,
		subtaskInput:   subtask,
	}
}

// ListID returns the list the board is scoped to
func (v *TaskListView) ListID() *string {
	return v.listID
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks, v.loadLists, v.loadTags)
}

type tasksLoadedMsg struct {
	tasks []models.Task
}

type listsLoadedMsg struct {
	lists []models.List
}

type tagsLoadedMsg struct {
	tags []models.Tag
}

type taskSavedMsg struct {
	task models.Task
}

type taskDeletedMsg struct {
	id string
}

func (v *TaskListView) loadTasks() tea.Msg {
	tasks, err := v.deps.Backend.ListTasks(context.Background(), query.Default())
	if err != nil {
		return errMsg{err: err}
	}
	return tasksLoadedMsg{tasks: tasks}
}

func (v *TaskListView) loadLists() tea.Msg {
	lists, err := v.deps.Backend.ListLists(context.Background())
	if err != nil {
		return errMsg{err: err}
	}
	return listsLoadedMsg{lists: lists}
}

func (v *TaskListView) loadTags() tea.Msg {
	tags, err := v.deps.Backend.ListTags(context.Background())
	if err != nil {
		return errMsg{err: err}
	}
	return tagsLoadedMsg{tags: tags}
}

// params returns the filter currently applied to the board
func (v *TaskListView) params() query.Params {
	return query.Params{
		Search:   strings.TrimSpace(v.searchInput.Value()),
		ListID:   v.listID,
		Status:   v.statusFilter,
		Priority: v.priorityFilter,
	}
}

// columnTasks returns the tasks shown in column c. Cancelled tasks belong to
// neither column, so filtering by cancelled shows them in the first one.
func (v *TaskListView) columnTasks(c Column) []models.Task {
	filtered := query.Filter(v.tasks, v.params())
	if st, ok := models.ParseStatus(v.statusFilter); ok && st == models.StatusCancelled {
		if c == ColumnPending {
			return filtered
		}
		return nil
	}

	cols := query.Group(filtered)
	if c == ColumnCompleted {
		if v.hideCompleted {
			return nil
		}
		return cols.Completed
	}
	return cols.Pending
}

func (v *TaskListView) selected() (models.Task, bool) {
	tasks := v.columnTasks(v.column)
	i := v.cursor[v.column]
	if i < 0 || i >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[i], true
}

func (v *TaskListView) taskByID(id string) (models.Task, bool) {
	for _, t := range v.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// upsert replaces the stored copy of t, or prepends it when new
func (v *TaskListView) upsert(t models.Task) {
	for i := range v.tasks {
		if v.tasks[i].ID == t.ID {
			v.tasks[i] = t
			return
		}
	}
	v.tasks = append([]models.Task{t}, v.tasks...)
}

// clampCursors keeps both cursors inside their columns after the data or
// filters changed
func (v *TaskListView) clampCursors() {
	for _, c := range []Column{ColumnPending, ColumnCompleted} {
		n := len(v.columnTasks(c))
		if v.cursor[c] >= n {
			v.cursor[c] = max(0, n-1)
		}
		if v.scrollY[c] > v.cursor[c] {
			v.scrollY[c] = v.cursor[c]
		}
	}
}

func (v *TaskListView) setStatus(msg string, isErr bool) {
	v.status = msg
	v.statusErr = isErr
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		v.loaded = true
		v.clampCursors()
		if v.assigningTags {
			if _, ok := v.taskByID(v.assigningTaskID); !ok {
				v.assigningTags = false
				v.assigningTaskID = ""
			}
		}
		return v, nil

	case listsLoadedMsg:
		v.lists = msg.lists
		// A remembered list that has since been deleted falls back to all tasks
		if v.listID != nil {
			if _, ok := domain.ResolveList(models.Task{ListID: v.listID}, v.lists); !ok {
				v.listID = nil
				v.clampCursors()
			}
		}
		return v, nil

	case tagsLoadedMsg:
		v.tags = msg.tags
		return v, nil

	case taskSavedMsg:
		v.upsert(msg.task)
		if v.saving {
			v.saving = false
			v.editing = false
		}
		v.clampCursors()
		v.setStatus("", false)
		return v, nil

	case taskDeletedMsg:
		v.tasks = slices.DeleteFunc(v.tasks, func(t models.Task) bool { return t.ID == msg.id })
		if v.viewingTaskID == msg.id {
			v.viewingTaskID = ""
		}
		v.clampCursors()
		v.setStatus("تسک با موفقیت حذف شد", false)
		return v, nil

	case errMsg:
		if v.saving {
			v.saving = false
			v.editErr = describeErr(msg.err)
			return v, nil
		}
		v.loaded = true
		v.setStatus(describeErr(msg.err), true)
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.viewingTaskID != "" {
			return v.updateViewingTask(msg)
		}

		if v.assigningTags {
			return v.updateAssigningTags(msg)
		}

		if v.listDropdownOpen {
			return v.updateListDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Don't process hotkeys while typing a search
	if v.searching {
		switch {
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.searching = false
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.clampCursors()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToLists{} }

	case key.Matches(msg, v.keys.Tags):
		return v, func() tea.Msg { return OpenTags{} }

	case key.Matches(msg, v.keys.Dashboard):
		return v, func() tea.Msg { return OpenDashboard{} }

	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right):
		if !v.hideCompleted {
			v.column = 1 - v.column
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor[v.column] > 0 {
			v.cursor[v.column]--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor[v.column] < len(v.columnTasks(v.column))-1 {
			v.cursor[v.column]++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.viewingTaskID = t.ID
			v.subtaskCursor = 0
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if t, ok := v.selected(); ok {
			return v, v.toggleTask(t.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok {
			v.startEditTask(t)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmDelete(t)
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.listDropdownOpen = true
		v.listCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.Status):
		v.statusFilter = nextFilter(statusFilters, v.statusFilter)
		v.clampCursors()
		return v, nil

	case key.Matches(msg, v.keys.Priority):
		v.priorityFilter = nextFilter(priorityFilters, v.priorityFilter)
		v.clampCursors()
		return v, nil

	case key.Matches(msg, v.keys.ClearFilters):
		v.searchInput.Reset()
		v.statusFilter = query.All
		v.priorityFilter = query.All
		v.clampCursors()
		return v, nil

	case key.Matches(msg, v.keys.ShowCompleted):
		v.hideCompleted = !v.hideCompleted
		if v.hideCompleted {
			v.column = ColumnPending
		}
		return v, nil

	case key.Matches(msg, v.keys.AssignTags):
		if t, ok := v.selected(); ok {
			v.assigningTags = true
			v.assignTagCursor = 0
			v.assigningTaskID = t.ID
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		v.setStatus("", false)
		return v, v.Init()

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func nextFilter(values []string, current string) string {
	i := slices.Index(values, current)
	return values[(i+1)%len(values)]
}

func (v *TaskListView) updateListDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.listDropdownOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.listCursor > 0 {
			v.listCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.listCursor < len(v.lists) {
			v.listCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.listCursor == 0 {
			v.listID = nil
		} else {
			id := v.lists[v.listCursor-1].ID
			v.listID = &id
		}
		v.listDropdownOpen = false
		v.cursor = [2]int{}
		v.scrollY = [2]int{}
		listID := v.listID
		return v, func() tea.Msg { return ScopeChanged{ListID: listID} }
	}
	return v, nil
}

func (v *TaskListView) confirmDelete(t models.Task) {
	v.confirmingDelete = true
	v.deleteTargetID = t.ID
	v.deleteTargetName = t.Title
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		backend, id := v.deps.Backend, v.deleteTargetID
		return v, func() tea.Msg {
			if err := backend.DeleteTask(context.Background(), id); err != nil {
				return errMsg{err: err}
			}
			return taskDeletedMsg{id: id}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) toggleTask(id string) tea.Cmd {
	backend := v.deps.Backend
	return func() tea.Msg {
		t, err := backend.ToggleTask(context.Background(), id)
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: t}
	}
}

func (v *TaskListView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	task, ok := v.taskByID(v.viewingTaskID)
	if !ok {
		v.viewingTaskID = ""
		return v, nil
	}

	// Handle subtask input mode
	if v.subtaskInputFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.subtaskInputFocused = false
			v.subtaskInput.Blur()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			return v, v.submitSubtask(task.ID)
		default:
			var cmd tea.Cmd
			v.subtaskInput, cmd = v.subtaskInput.Update(msg)
			return v, cmd
		}
	}

	backend := v.deps.Backend
	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTaskID = ""
		return v, nil
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Up):
		if v.subtaskCursor > 0 {
			v.subtaskCursor--
		}
		return v, nil
	case key.Matches(msg, v.keys.Down):
		if v.subtaskCursor < len(task.Subtasks)-1 {
			v.subtaskCursor++
		}
		return v, nil
	case key.Matches(msg, v.keys.Edit):
		v.viewingTaskID = ""
		v.startEditTask(task)
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete(task)
		return v, nil
	case key.Matches(msg, v.keys.AssignTags):
		v.viewingTaskID = ""
		v.assigningTags = true
		v.assignTagCursor = 0
		v.assigningTaskID = task.ID
		return v, nil
	case key.Matches(msg, v.keys.AddSubtask):
		v.subtaskInputFocused = true
		v.subtaskInput.Reset()
		v.subtaskInput.Focus()
		return v, textinput.Blink
	case msg.String() == " ":
		if v.subtaskCursor < len(task.Subtasks) {
			sub := task.Subtasks[v.subtaskCursor]
			return v, func() tea.Msg {
				t, err := backend.SetSubtaskCompleted(context.Background(), task.ID, sub.ID, !sub.Completed)
				if err != nil {
					return errMsg{err: err}
				}
				return taskSavedMsg{task: t}
			}
		}
		return v, nil
	case msg.String() == "X":
		if v.subtaskCursor < len(task.Subtasks) {
			sub := task.Subtasks[v.subtaskCursor]
			if v.subtaskCursor > 0 && v.subtaskCursor == len(task.Subtasks)-1 {
				v.subtaskCursor--
			}
			return v, func() tea.Msg {
				t, err := backend.DeleteSubtask(context.Background(), task.ID, sub.ID)
				if err != nil {
					return errMsg{err: err}
				}
				return taskSavedMsg{task: t}
			}
		}
		return v, nil
	case msg.String() == "x":
		return v, v.toggleTask(task.ID)
	}
	return v, nil
}

// submitSubtask adds the typed subtask to the viewed task
func (v *TaskListView) submitSubtask(taskID string) tea.Cmd {
	title := strings.TrimSpace(v.subtaskInput.Value())
	if title == "" {
		return nil
	}

	v.subtaskInput.Reset()
	v.subtaskInputFocused = false
	v.subtaskInput.Blur()

	backend := v.deps.Backend
	return func() tea.Msg {
		t, err := backend.AddSubtask(context.Background(), taskID, title)
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: t}
	}
}

func (v *TaskListView) updateAssigningTags(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.assigningTags = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.assignTagCursor > 0 {
			v.assignTagCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.assignTagCursor < len(v.tags)-1 {
			v.assignTagCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Toggle):
		task, ok := v.taskByID(v.assigningTaskID)
		if !ok || v.assignTagCursor >= len(v.tags) {
			return v, nil
		}
		tags := toggleID(task.Tags, v.tags[v.assignTagCursor].ID)
		backend := v.deps.Backend
		return v, func() tea.Msg {
			t, err := backend.UpdateTask(context.Background(), task.ID, models.TaskPatch{Tags: &tags})
			if err != nil {
				return errMsg{err: err}
			}
			return taskSavedMsg{task: t}
		}
	}

	return v, nil
}

// toggleID returns a copy of ids with id removed if present, appended if not
func toggleID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.saving {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + fieldCount - 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldTitle, fieldDueDate, fieldDueTime, fieldPriority, fieldStatus, fieldList:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		case fieldTags:
			v.toggleEditTag()
			return v, nil
		case fieldSave:
			return v, v.saveTask()
		}
		// For the description textarea, let enter pass through for newlines

	case msg.String() == " ", msg.String() == "right", msg.String() == "left":
		back := msg.String() == "left"
		switch v.editFocusIdx {
		case fieldPriority:
			v.editPriority = cycle(models.Priorities, v.editPriority, back)
			return v, nil
		case fieldStatus:
			v.editStatus = cycle(models.Statuses, v.editStatus, back)
			return v, nil
		case fieldList:
			n := len(v.lists) + 1
			if back {
				v.editListIdx = (v.editListIdx + n - 1) % n
			} else {
				v.editListIdx = (v.editListIdx + 1) % n
			}
			return v, nil
		case fieldTags:
			if msg.String() == " " {
				v.toggleEditTag()
				return v, nil
			}
		}

	case key.Matches(msg, v.keys.Up):
		if v.editFocusIdx == fieldTags && v.editTagCursor > 0 {
			v.editTagCursor--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.editFocusIdx == fieldTags && v.editTagCursor < len(v.tags)-1 {
			v.editTagCursor++
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDueDate:
		v.editDue, cmd = v.editDue.Update(msg)
	case fieldDueTime:
		v.editTime, cmd = v.editTime.Update(msg)
	}
	return v, cmd
}

// cycle returns the value after (or before) cur in values, wrapping around
func cycle[T comparable](values []T, cur T, back bool) T {
	i := slices.Index(values, cur)
	if back {
		return values[(i+len(values)-1)%len(values)]
	}
	return values[(i+1)%len(values)]
}

// toggleEditTag toggles the currently selected tag in the edit form
func (v *TaskListView) toggleEditTag() {
	if v.editTagCursor >= len(v.tags) {
		return
	}
	v.editTags = toggleID(v.editTags, v.tags[v.editTagCursor].ID)
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	c := v.column
	if v.cursor[c] < v.scrollY[c] {
		v.scrollY[c] = v.cursor[c]
	} else if v.cursor[c] >= v.scrollY[c]+visibleItems {
		v.scrollY[c] = v.cursor[c] - visibleItems + 1
	}
}

// visibleItems is how many task rows fit; each is 2 lines + 1 margin
func (v *TaskListView) visibleItems() int {
	availableHeight := max(v.height-12, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editTaskID = ""
	v.editFocusIdx = fieldTitle
	v.editTagCursor = 0
	v.editErr = ""
	v.editTags = []string{}
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editTime.Reset()
	v.editPriority = models.PriorityMedium
	v.editStatus = models.StatusPending
	v.editListIdx = v.listIndex(v.listID)
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editTaskID = task.ID
	v.editFocusIdx = fieldTitle
	v.editTagCursor = 0
	v.editErr = ""
	v.editTags = slices.Clone(task.Tags)
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editDue.Reset()
	if task.DueDate != nil {
		v.editDue.SetValue(calendar.FormatJalali(*task.DueDate))
	}
	v.editTime.Reset()
	if task.DueTime != nil {
		v.editTime.SetValue(*task.DueTime)
	}
	v.editPriority = task.Priority
	v.editStatus = task.Status
	v.editListIdx = v.listIndex(task.ListID)
	v.updateEditFocus()
}

// listIndex maps a list id to its edit form position, 0 when unset or gone
func (v *TaskListView) listIndex(id *string) int {
	if id == nil {
		return 0
	}
	for i, l := range v.lists {
		if l.ID == *id {
			return i + 1
		}
	}
	return 0
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()
	v.editTime.Blur()

	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldDueDate:
		v.editDue.Focus()
	case fieldDueTime:
		v.editTime.Focus()
	}
}

func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.editErr = "عنوان تسک الزامی است"
		return nil
	}

	due := ""
	if in := strings.TrimSpace(v.editDue.Value()); in != "" {
		d, err := calendar.ParseInput(in)
		if err != nil {
			v.editErr = "تاریخ نامعتبر است"
			return nil
		}
		due = d.String()
	}
	desc := strings.TrimSpace(v.editDesc.Value())
	dueTime := strings.TrimSpace(calendar.LatinDigits(v.editTime.Value()))
	listID := ""
	if v.editListIdx > 0 && v.editListIdx <= len(v.lists) {
		listID = v.lists[v.editListIdx-1].ID
	}
	tags := slices.Clone(v.editTags)
	status, priority := v.editStatus, v.editPriority

	v.saving = true
	v.editErr = ""
	backend := v.deps.Backend

	if v.editingNew {
		task := models.Task{
			Title:       title,
			Description: desc,
			Status:      status,
			Priority:    priority,
			Tags:        tags,
		}
		if due != "" {
			d, _ := calendar.Parse(due)
			task.DueDate = &d
		}
		if dueTime != "" {
			task.DueTime = &dueTime
		}
		if listID != "" {
			task.ListID = &listID
		}
		return func() tea.Msg {
			saved, err := backend.CreateTask(context.Background(), task)
			if err != nil {
				return errMsg{err: err}
			}
			return taskSavedMsg{task: saved}
		}
	}

	id := v.editTaskID
	patch := models.TaskPatch{
		Title:       &title,
		Description: &desc,
		Status:      &status,
		Priority:    &priority,
		DueDate:     &due,
		DueTime:     &dueTime,
		ListID:      &listID,
		Tags:        &tags,
	}
	return func() tea.Msg {
		saved, err := backend.UpdateTask(context.Background(), id, patch)
		if err != nil {
			return errMsg{err: err}
		}
		return taskSavedMsg{task: saved}
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return renderConfirm(v.styles, "حذف تسک؟", v.deleteTargetName, v.width, v.height)
	}

	if v.editing {
		return v.renderEditForm()
	}

	if v.viewingTaskID != "" {
		return v.renderTaskView()
	}

	if v.assigningTags {
		return v.renderTagAssignment()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("در حال بارگذاری...")
	}

	var b strings.Builder

	// Header with title, search and filters
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	if v.status != "" {
		if v.statusErr {
			b.WriteString(v.styles.StatusError.Render(v.status))
		} else {
			b.WriteString(v.styles.StatusBar.Render(v.status))
		}
	}
	b.WriteString("\n")

	b.WriteString(v.renderBoard())

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) scopeTitle() string {
	if v.listID != nil {
		if l, ok := domain.ResolveList(models.Task{ListID: v.listID}, v.lists); ok {
			return l.Icon + " " + l.Name
		}
	}
	return "همه تسک‌ها"
}

func filterLabel(value string, label func(string) string) string {
	if value == "" || value == query.All {
		return "همه"
	}
	return label(value)
}

func statusLabel(s string) string {
	st, _ := models.ParseStatus(s)
	return st.Label()
}

func priorityLabel(s string) string {
	p, _ := models.ParsePriority(s)
	return p.Label()
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 24)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	statusBtn := s.FilterButton.Render("وضعیت: " + filterLabel(v.statusFilter, statusLabel))
	priorityBtn := s.FilterButton.Render("اولویت: " + filterLabel(v.priorityFilter, priorityLabel))
	listBtn := s.FilterButton.Render("لیست ▼")

	title := s.Title.Render(v.scopeTitle())
	if v.hideCompleted {
		title += s.TitleMuted.Render("  (تکمیل شده‌ها پنهان)")
	}

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left,
			searchBox,
			lipgloss.JoinHorizontal(lipgloss.Center, statusBtn, priorityBtn),
		)
	} else {
		header = lipgloss.JoinHorizontal(lipgloss.Center,
			searchBox, " ", listBtn, statusBtn, priorityBtn,
		)
	}

	dropdown := ""
	if v.listDropdownOpen {
		dropdown = "\n" + v.renderListDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, header+dropdown)
}

func (v *TaskListView) renderListDropdown() string {
	s := v.styles
	var items []string

	allStyle := s.ListItem
	if v.listCursor == 0 {
		allStyle = s.ListSelected
	}
	items = append(items, allStyle.Render("همه تسک‌ها"))

	for i, l := range v.lists {
		itemStyle := s.ListItem
		if v.listCursor == i+1 {
			itemStyle = s.ListSelected
		}
		items = append(items, itemStyle.Render(colorDot(l.Color)+" "+l.Icon+" "+l.Name))
	}

	return s.FilterBar.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) columnTitle(c Column) string {
	n := len(v.columnTasks(c))
	if c == ColumnPending {
		if st, ok := models.ParseStatus(v.statusFilter); ok && st == models.StatusCancelled {
			return fmt.Sprintf("%s (%s)", models.StatusCancelled.Label(), calendar.PersianDigits(fmt.Sprint(n)))
		}
		return fmt.Sprintf("%s (%s)", models.StatusPending.Label(), calendar.PersianDigits(fmt.Sprint(n)))
	}
	return fmt.Sprintf("%s (%s)", models.StatusCompleted.Label(), calendar.PersianDigits(fmt.Sprint(n)))
}

func (v *TaskListView) renderBoard() string {
	contentWidth := styles.ContentWidth(v.width)

	if contentWidth < 60 || v.hideCompleted {
		return v.renderColumn(v.column, max(contentWidth, 20))
	}

	colWidth := (contentWidth - 2) / 2
	return lipgloss.JoinHorizontal(lipgloss.Top,
		v.renderColumn(ColumnPending, colWidth),
		"  ",
		v.renderColumn(ColumnCompleted, colWidth),
	)
}

func (v *TaskListView) renderColumn(c Column, width int) string {
	s := v.styles
	heading := s.ColumnHeading
	if c == v.column {
		heading = heading.Underline(true)
	}

	tasks := v.columnTasks(c)
	lines := []string{heading.Render(v.columnTitle(c)), ""}

	if len(tasks) == 0 {
		empty := "تسکی وجود ندارد"
		if c == ColumnPending && len(v.tasks) == 0 {
			empty = "هنوز تسکی نیست. برای ساخت 'n' را بزنید."
		}
		lines = append(lines, s.TitleMuted.Render(empty))
		return lipgloss.NewStyle().Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	endIdx := min(v.scrollY[c]+v.visibleItems(), len(tasks))
	for i := v.scrollY[c]; i < endIdx; i++ {
		lines = append(lines, v.renderTaskItem(tasks[i], width, c == v.column && i == v.cursor[c]))
	}
	return lipgloss.NewStyle().Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *TaskListView) renderTaskItem(task models.Task, width int, selected bool) string {
	s := v.styles
	today := v.deps.today()
	inner := max(width-4, 10)

	checkbox := "[ ]"
	if task.Status == models.StatusCompleted {
		checkbox = "[x]"
	} else if task.Status == models.StatusCancelled {
		checkbox = "[-]"
	}
	badge := lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Render("■")

	titleText := styles.Truncate(task.Title, inner-6)
	switch {
	case task.Status != models.StatusPending:
		titleText = s.TaskDone.Render(titleText)
	case domain.IsOverdue(task, today):
		titleText = s.TaskOverdue.Render(titleText)
	case domain.IsDueToday(task, today):
		titleText = s.TaskDueToday.Render(titleText)
	}
	titleLine := checkbox + " " + badge + " " + titleText

	// Meta line: due date, checklist progress, list and tags
	var meta []string
	if due := dueLabel(task, today); due != "" {
		dueStyle := s.TitleMuted
		if domain.IsOverdue(task, today) {
			dueStyle = s.TaskOverdue
		} else if domain.IsDueToday(task, today) {
			dueStyle = s.TaskDueToday
		}
		meta = append(meta, dueStyle.Render(due))
	}
	if p := domain.SubtaskProgress(task); p.Total > 0 {
		meta = append(meta, calendar.PersianDigits(fmt.Sprintf("☑ %d/%d", p.Completed, p.Total)))
	}
	if v.listID == nil {
		if l, ok := domain.ResolveList(task, v.lists); ok {
			meta = append(meta, l.Icon+" "+l.Name)
		}
	}
	for _, tag := range domain.ResolveTags(task, v.tags) {
		meta = append(meta, lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color)).Render("#"+tag.Name))
	}
	metaLine := s.TitleMuted.Render("بدون جزئیات")
	if len(meta) > 0 {
		metaLine = styles.Truncate(strings.Join(meta, " "), inner)
	}

	itemStyle := s.ListItem
	if selected {
		itemStyle = s.ListSelected
	}
	itemStyle = itemStyle.Width(width)

	return lipgloss.JoinVertical(lipgloss.Left, itemStyle.Render(titleLine), itemStyle.Render(metaLine)) + "\n"
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "تسک جدید"
	if !v.editingNew {
		formTitle = "ویرایش تسک"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	listName := "بدون لیست"
	if v.editListIdx > 0 && v.editListIdx <= len(v.lists) {
		l := v.lists[v.editListIdx-1]
		listName = l.Icon + " " + l.Name
	}

	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(v.editPriority)).Render(v.editPriority.Label())

	dueHint := ""
	if in := strings.TrimSpace(v.editDue.Value()); in != "" {
		if d, err := calendar.ParseInput(in); err == nil {
			dueHint = s.TitleMuted.Render(calendar.FormatJalaliLong(d) + " · " + d.String())
		}
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"عنوان:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.editTitle.View()),
		"توضیحات:",
		fieldStyle(fieldDesc).Render(v.editDesc.View()),
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, "اولویت:", fieldStyle(fieldPriority).Width(12).Render("◂ "+priority+" ▸")),
			" ",
			lipgloss.JoinVertical(lipgloss.Left, "وضعیت:", fieldStyle(fieldStatus).Width(14).Render("◂ "+v.editStatus.Label()+" ▸")),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.JoinVertical(lipgloss.Left, "تاریخ سررسید:", fieldStyle(fieldDueDate).Width(16).Render(v.editDue.View())),
			" ",
			lipgloss.JoinVertical(lipgloss.Left, "ساعت:", fieldStyle(fieldDueTime).Width(9).Render(v.editTime.View())),
		),
		dueHint,
		"لیست:",
		fieldStyle(fieldList).Width(inputWidth).Render("◂ " + listName + " ▸"),
		"برچسب‌ها:",
		v.renderEditTagSelector(fieldStyle(fieldTags), inputWidth),
		"",
		btnStyle.Render(" ذخیره "),
	}
	if v.editErr != "" {
		rows = append(rows, s.StatusError.Render(v.editErr))
	}
	rows = append(rows, s.TitleMuted.Render("Tab: بعدی • ←→/Space: تغییر • Ctrl+S: ذخیره • Esc: انصراف"))

	return placeCenter(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}

// renderEditTagSelector renders the inline tag selector for the edit form
func (v *TaskListView) renderEditTagSelector(containerStyle lipgloss.Style, width int) string {
	s := v.styles

	if len(v.tags) == 0 {
		return containerStyle.Width(width).Render(s.TitleMuted.Render("برچسبی وجود ندارد"))
	}

	var items []string
	for i, tag := range v.tags {
		checkbox := "[ ]"
		if slices.Contains(v.editTags, tag.ID) {
			checkbox = "[x]"
		}
		itemText := checkbox + " " + colorDot(tag.Color) + " " + tag.Name

		// Highlight current cursor position when tag section is focused
		if v.editFocusIdx == fieldTags && i == v.editTagCursor {
			items = append(items, s.ListSelected.Render(itemText))
		} else {
			items = append(items, s.ListItem.Render(itemText))
		}
	}

	return containerStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " راهنما")
	}
	return helpLine(v.styles,
		"↵", "نمایش",
		"space", "انجام",
		"n", "جدید",
		"e", "ویرایش",
		"d", "حذف",
		"/", "جستجو",
		"s", "وضعیت",
		"p", "اولویت",
		"esc", "لیست‌ها",
		"?", "بیشتر",
	)
}

func (v *TaskListView) renderHelpPopup() string {
	completedLabel := "پنهان کردن تکمیل‌شده‌ها"
	if v.hideCompleted {
		completedLabel = "نمایش تکمیل‌شده‌ها"
	}

	return renderHelpPopup(v.styles, [][2]string{
		{"↵", "نمایش تسک"},
		{"space", "تغییر وضعیت انجام"},
		{"n", "تسک جدید"},
		{"e", "ویرایش تسک"},
		{"d", "حذف تسک"},
		{"t", "برچسب‌گذاری"},
		{"tab", "تغییر ستون"},
		{"/", "جستجو"},
		{"f", "فیلتر بر اساس لیست"},
		{"s", "فیلتر بر اساس وضعیت"},
		{"p", "فیلتر بر اساس اولویت"},
		{"0", "پاک کردن فیلترها"},
		{"c", completedLabel},
		{"r", "بارگذاری مجدد"},
		{"T", "مدیریت برچسب‌ها"},
		{"D", "داشبورد"},
		{"esc", "بازگشت به لیست‌ها"},
		{"q", "خروج"},
	}, v.width, v.height)
}

func (v *TaskListView) renderTagAssignment() string {
	s := v.styles

	task, ok := v.taskByID(v.assigningTaskID)
	if !ok {
		return ""
	}

	var items []string
	for i, tag := range v.tags {
		itemStyle := s.ListItem
		if i == v.assignTagCursor {
			itemStyle = s.ListSelected
		}

		checkbox := "[ ]"
		if task.HasTag(tag.ID) {
			checkbox = "[x]"
		}
		items = append(items, itemStyle.Render(checkbox+" "+colorDot(tag.Color)+" "+tag.Name))
	}
	if len(items) == 0 {
		items = append(items, s.TitleMuted.Render("برچسبی وجود ندارد. با T بسازید."))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("برچسب‌های «"+task.Title+"»"),
		"",
		lipgloss.JoinVertical(lipgloss.Left, items...),
		"",
		s.TitleMuted.Render("Enter/Space: انتخاب • Esc: پایان"),
	)

	return placeCenter(s.FilterBar.Render(content), v.width, v.height)
}

func (v *TaskListView) renderTaskView() string {
	task, ok := v.taskByID(v.viewingTaskID)
	if !ok {
		return ""
	}

	s := v.styles
	today := v.deps.today()
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	labelStyle := s.TitleMuted

	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(task.Priority)).Bold(true).Render(task.Priority.Label())

	due := "بدون سررسید"
	if task.DueDate != nil {
		due = calendar.FormatJalaliLong(*task.DueDate) + " (" + calendar.Relative(*task.DueDate, today) + ")"
		if task.DueTime != nil {
			due += " ساعت " + calendar.FormatTime(*task.DueTime)
		}
		switch {
		case domain.IsOverdue(task, today):
			due = s.TaskOverdue.Render(due + " · عقب افتاده")
		case domain.IsDueToday(task, today):
			due = s.TaskDueToday.Render(due)
		}
	}

	list := "بدون لیست"
	if l, ok := domain.ResolveList(task, v.lists); ok {
		list = l.Icon + " " + l.Name
	}

	var tagStrs []string
	for _, tag := range domain.ResolveTags(task, v.tags) {
		tagStrs = append(tagStrs, lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color)).Render(tag.Name))
	}
	tagsLine := "ندارد"
	if len(tagStrs) > 0 {
		tagsLine = strings.Join(tagStrs, " ")
	}

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render("بدون توضیحات")
	}

	// Subtasks with progress
	progress := domain.SubtaskProgress(task)
	var subLines []string
	if progress.Total == 0 {
		subLines = append(subLines, s.TitleMuted.Render("زیرتسکی وجود ندارد"))
	} else {
		subLines = append(subLines, styles.ProgressBar(progress.Ratio, 20)+" "+
			calendar.PersianDigits(fmt.Sprintf("%d از %d", progress.Completed, progress.Total)))
		for i, sub := range task.Subtasks {
			checkbox := "[ ]"
			title := sub.Title
			if sub.Completed {
				checkbox = "[x]"
				title = s.TaskDone.Render(title)
			}
			itemStyle := s.ListItem
			if i == v.subtaskCursor && !v.subtaskInputFocused {
				itemStyle = s.ListSelected
			}
			subLines = append(subLines, itemStyle.Render(checkbox+" "+title))
		}
	}
	if v.subtaskInputFocused {
		subLines = append(subLines, s.InputFocused.Width(clamp(textWidth, 20, 50)).Render(v.subtaskInput.View()))
	}

	var help string
	if v.subtaskInputFocused {
		help = helpLine(s, "↵", "افزودن", "esc", "انصراف")
	} else {
		help = helpLine(s,
			"space", "انجام زیرتسک",
			"a", "افزودن",
			"X", "حذف زیرتسک",
			"x", "انجام تسک",
			"e", "ویرایش",
			"t", "برچسب‌ها",
			"d", "حذف",
			"esc", "بازگشت",
		)
	}

	status := ""
	if v.status != "" && v.statusErr {
		status = s.StatusError.Render(v.status)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(task.Title),
		labelStyle.Render("وضعیت")+"  "+task.Status.Label()+"    "+labelStyle.Render("اولویت")+"  "+priority,
		labelStyle.Render("سررسید")+"  "+due,
		labelStyle.Render("لیست")+"  "+list,
		labelStyle.Render("برچسب‌ها")+"  "+tagsLine,
		"",
		labelStyle.Render("توضیحات"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("زیرتسک‌ها"),
		lipgloss.JoinVertical(lipgloss.Left, subLines...),
		"",
		labelStyle.Render("ایجاد شده "+calendar.FormatJalali(calendar.DateOf(task.CreatedAt.In(v.location())))),
		status,
		help,
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskListView) location() *time.Location {
	if v.deps.Location != nil {
		return v.deps.Location
	}
	return time.Local
}
