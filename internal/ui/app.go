package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/logging"
	"github.com/tgienger/todo/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLists View = iota
	ViewTasks
	ViewTags
	ViewDashboard
)

// State file names of the views that are restored on start
var viewNames = map[View]string{
	ViewLists:     "lists",
	ViewTasks:     "tasks",
	ViewTags:      "tags",
	ViewDashboard: "dashboard",
}

// Options configures the App
type Options struct {
	Deps views.Deps
	// State is what the previous run saved
	State config.State
	// SaveState persists the state after navigation; nil disables saving
	SaveState func(config.State) error
	Logger    *log.Logger
}

type App struct {
	deps        views.Deps
	state       config.State
	saveState   func(config.State) error
	logger      *log.Logger
	currentView View
	listView    *views.ListOverview
	taskList    *views.TaskListView
	tagList     *views.TagListView
	dashboard   *views.DashboardView
	width       int
	height      int
}

// Creates a new application
func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		deps:        opts.Deps,
		state:       opts.State,
		saveState:   opts.SaveState,
		logger:      logger,
		currentView: ViewLists,
		listView:    views.NewListOverview(opts.Deps),
	}
}

// CurrentView reports which view is showing
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	// Reopen where the last session left off
	switch a.state.LastView {
	case viewNames[ViewTasks]:
		var listID *string
		if a.state.LastListID != "" {
			id := a.state.LastListID
			listID = &id
		}
		return a.openTasks(listID)
	case viewNames[ViewTags]:
		return a.openTags()
	case viewNames[ViewDashboard]:
		return a.openDashboard()
	}

	return a.listView.Init()
}

// resize re-sends the window size so a freshly built view lays itself out
func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) openTasks(listID *string) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.deps, listID)
	a.remember(listID)
	return tea.Batch(a.taskList.Init(), a.resize)
}

func (a *App) openTags() tea.Cmd {
	a.currentView = ViewTags
	a.tagList = views.NewTagListView(a.deps)
	a.remember(a.lastListID())
	return tea.Batch(a.tagList.Init(), a.resize)
}

func (a *App) openDashboard() tea.Cmd {
	a.currentView = ViewDashboard
	a.dashboard = views.NewDashboardView(a.deps)
	a.remember(a.lastListID())
	return tea.Batch(a.dashboard.Init(), a.resize)
}

func (a *App) lastListID() *string {
	if a.state.LastListID == "" {
		return nil
	}
	id := a.state.LastListID
	return &id
}

// remember saves the current view and list. A failed save only costs the
// restore on next start, so it is logged and otherwise ignored.
func (a *App) remember(listID *string) {
	next := config.State{LastView: viewNames[a.currentView]}
	if listID != nil {
		next.LastListID = *listID
	}
	if next == a.state {
		return
	}
	a.state = next
	if a.saveState == nil {
		return
	}
	if err := a.saveState(next); err != nil {
		a.logger.Warn("saving state failed", "err", err)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update list overview size since it persists
		a.listView.Update(msg)

	case views.SelectedList:
		return a, a.openTasks(msg.ListID)

	case views.ScopeChanged:
		a.remember(msg.ListID)
		return a, nil

	case views.OpenTags:
		return a, a.openTags()

	case views.OpenDashboard:
		return a, a.openDashboard()

	case views.BackToLists:
		a.currentView = ViewLists
		a.remember(nil)
		return a, tea.Batch(a.listView.Init(), a.resize)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLists:
		_, cmd = a.listView.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewTags:
		_, cmd = a.tagList.Update(msg)
	case ViewDashboard:
		_, cmd = a.dashboard.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	case ViewTags:
		if a.tagList != nil {
			return a.tagList.View()
		}
	case ViewDashboard:
		if a.dashboard != nil {
			return a.dashboard.View()
		}
	}
	return a.listView.View()
}
