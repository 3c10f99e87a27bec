package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/calendar"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// listItem is a row of the list overview. The first row has no list and
// opens every task.
type listItem struct {
	list  *models.List
	total int
}

func (i listItem) Title() string {
	if i.list == nil {
		return "🗂 همه تسک‌ها"
	}
	return i.list.Icon + " " + i.list.Name
}

func (i listItem) Description() string {
	n := i.total
	if i.list != nil {
		n = i.list.TaskCount
	}
	return calendar.PersianDigits(fmt.Sprintf("%d تسک", n))
}

func (i listItem) FilterValue() string {
	if i.list == nil {
		return ""
	}
	return i.list.Name
}

type listDelegate struct {
	styles *styles.Styles
	width  int
}

func (d listDelegate) Height() int                               { return 2 }
func (d listDelegate) Spacing() int                              { return 1 }
func (d listDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d listDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.Muted).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.Muted).Width(width)
	}

	title := it.Title()
	if it.list != nil {
		title = colorDot(it.list.Color) + " " + title
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), descStyle.Render(it.Description()))
}

// ListOverview shows every list with its task count
type ListOverview struct {
	deps     Deps
	list     list.Model
	delegate *listDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool
	status   string

	// Create/edit form
	editing   bool
	editingID string // empty while creating
	newName   textinput.Model
	newColor  textinput.Model
	newIcon   textinput.Model
	focusIdx  int // 0=name, 1=color, 2=icon, 3=confirm
	formErr   string

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

// NewListOverview creates the list overview
func NewListOverview(deps Deps) *ListOverview {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "نام لیست"
	newName.CharLimit = 100

	newColor := textinput.New()
	newColor.Placeholder = models.DefaultListColor
	newColor.CharLimit = 7

	newIcon := textinput.New()
	newIcon.Placeholder = models.DefaultListIcon
	newIcon.CharLimit = 4

	delegate := &listDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "لیست‌ها"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ListOverview{
		deps:     deps,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newColor: newColor,
		newIcon:  newIcon,
	}
}

func (v *ListOverview) Init() tea.Cmd {
	return v.loadLists
}

// overviewLoadedMsg carries the lists plus the total task count for the
// "all tasks" row
type overviewLoadedMsg struct {
	lists []models.List
	total int
}

type listSavedMsg struct {
	list models.List
}

func (v *ListOverview) loadLists() tea.Msg {
	ctx := context.Background()
	lists, err := v.deps.Backend.ListLists(ctx)
	if err != nil {
		return errMsg{err: err}
	}
	stats, err := v.deps.Backend.Stats(ctx)
	if err != nil {
		return errMsg{err: err}
	}
	return overviewLoadedMsg{lists: lists, total: stats.TotalTasks}
}

func (v *ListOverview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case overviewLoadedMsg:
		items := make([]list.Item, 0, len(msg.lists)+1)
		items = append(items, listItem{total: msg.total})
		for i := range msg.lists {
			items = append(items, listItem{list: &msg.lists[i]})
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case listSavedMsg:
		v.editing = false
		v.status = ""
		if v.editingID == "" {
			id := msg.list.ID
			return v, func() tea.Msg { return SelectedList{ListID: &id} }
		}
		return v, v.loadLists

	case errMsg:
		v.loaded = true
		if v.editing {
			v.formErr = describeErr(msg.err)
			return v, nil
		}
		v.status = describeErr(msg.err)
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

		// Let the list own keys while its filter is being typed
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			// Don't quit on escape in the list overview - only q quits
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.startForm(nil)
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(listItem); ok && item.list != nil {
				v.startForm(item.list)
				return v, textinput.Blink
			}
			return v, nil
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Tags):
			return v, func() tea.Msg { return OpenTags{} }
		case key.Matches(msg, v.keys.Dashboard):
			return v, func() tea.Msg { return OpenDashboard{} }
		case key.Matches(msg, v.keys.Refresh):
			v.status = ""
			return v, v.loadLists
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(listItem); ok {
				var id *string
				if item.list != nil {
					listID := item.list.ID
					id = &listID
				}
				return v, func() tea.Msg { return SelectedList{ListID: id} }
			}
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(listItem); ok && item.list != nil {
				v.confirmingDelete = true
				v.deleteTargetID = item.list.ID
				v.deleteTargetName = item.list.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ListOverview) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		backend, id := v.deps.Backend, v.deleteTargetID
		return v, func() tea.Msg {
			if err := backend.DeleteList(context.Background(), id); err != nil {
				return errMsg{err: err}
			}
			return v.loadLists()
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// startForm opens the form for a new list, or for editing l
func (v *ListOverview) startForm(l *models.List) {
	v.editing = true
	v.focusIdx = 0
	v.formErr = ""
	v.newName.Reset()
	v.newColor.Reset()
	v.newIcon.Reset()
	v.editingID = ""
	if l != nil {
		v.editingID = l.ID
		v.newName.SetValue(l.Name)
		v.newColor.SetValue(l.Color)
		v.newIcon.SetValue(l.Icon)
	}
	v.updateFocus()
}

func (v *ListOverview) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.save()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.save()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newName, cmd = v.newName.Update(msg)
	case 1:
		v.newColor, cmd = v.newColor.Update(msg)
	case 2:
		v.newIcon, cmd = v.newIcon.Update(msg)
	}
	return v, cmd
}

func (v *ListOverview) save() tea.Cmd {
	l := models.List{
		ID:    v.editingID,
		Name:  strings.TrimSpace(v.newName.Value()),
		Color: strings.TrimSpace(v.newColor.Value()),
		Icon:  strings.TrimSpace(v.newIcon.Value()),
	}
	if l.Name == "" {
		v.formErr = "نام لیست الزامی است"
		return nil
	}

	backend := v.deps.Backend
	return func() tea.Msg {
		var (
			saved models.List
			err   error
		)
		if l.ID == "" {
			saved, err = backend.CreateList(context.Background(), l)
		} else {
			saved, err = backend.UpdateList(context.Background(), l)
		}
		if err != nil {
			return errMsg{err: err}
		}
		return listSavedMsg{list: saved}
	}
}

func (v *ListOverview) updateFocus() {
	v.newName.Blur()
	v.newColor.Blur()
	v.newIcon.Blur()
	switch v.focusIdx {
	case 0:
		v.newName.Focus()
	case 1:
		v.newColor.Focus()
	case 2:
		v.newIcon.Focus()
	}
}

// View renders the view
func (v *ListOverview) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderForm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("در حال بارگذاری...")
	}

	content := v.list.View()
	if len(v.list.Items()) <= 1 {
		content += "\n" + v.renderEmpty()
	}
	if v.status != "" {
		content += "\n" + v.styles.StatusError.Render(v.status)
	}
	content += "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ListOverview) renderEmpty() string {
	s := v.styles
	return lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render("هنوز لیستی نساخته‌اید. برای ساخت اولین لیست 'n' را بزنید."),
		"",
		s.ButtonPrimary.Render(" لیست جدید "),
	)
}

func (v *ListOverview) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	nameStyle, colorStyle, iconStyle := s.Input, s.Input, s.Input
	btnStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		colorStyle = s.InputFocused
	case 2:
		iconStyle = s.InputFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	formTitle := "لیست جدید"
	button := " ایجاد "
	if v.editingID != "" {
		formTitle = "ویرایش لیست"
		button = " ذخیره "
	}

	color := strings.TrimSpace(v.newColor.Value())
	if color == "" {
		color = models.DefaultListColor
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"نام:",
		nameStyle.Width(inputWidth).Render(v.newName.View()),
		"",
		"رنگ: " + colorDot(color),
		colorStyle.Width(12).Render(v.newColor.View()),
		"",
		"آیکون:",
		iconStyle.Width(8).Render(v.newIcon.View()),
		"",
		btnStyle.Render(button),
	}
	if v.formErr != "" {
		rows = append(rows, s.StatusError.Render(v.formErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: بعدی • Ctrl+S: ذخیره • Esc: انصراف"))

	return placeCenter(lipgloss.JoinVertical(lipgloss.Left, rows...), v.width, v.height)
}

func (v *ListOverview) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " راهنما")
	}
	return helpLine(v.styles,
		"↵", "باز کردن",
		"n", "جدید",
		"e", "ویرایش",
		"d", "حذف",
		"T", "برچسب‌ها",
		"D", "آمار",
		"q", "خروج",
	)
}

func (v *ListOverview) renderHelpPopup() string {
	return renderHelpPopup(v.styles, [][2]string{
		{"↵", "باز کردن لیست"},
		{"n", "لیست جدید"},
		{"e", "ویرایش لیست"},
		{"d", "حذف لیست"},
		{"/", "فیلتر لیست‌ها"},
		{"T", "مدیریت برچسب‌ها"},
		{"D", "داشبورد"},
		{"r", "بارگذاری مجدد"},
		{"q", "خروج"},
	}, v.width, v.height)
}

func (v *ListOverview) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Overdue).Render("حذف لیست؟"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("«%s»", v.deleteTargetName)),
		s.TitleMuted.Render("تسک‌های این لیست حذف نمی‌شوند و بدون لیست می‌مانند."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - بله "),
			"  ",
			s.Button.Render(" N - خیر "),
		),
	)
	return placeCenter(content, v.width, v.height)
}
