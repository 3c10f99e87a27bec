package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/todo/internal/models"
	"github.com/tgienger/todo/internal/ui/keys"
	"github.com/tgienger/todo/internal/ui/styles"
)

// TagListView manages tags
type TagListView struct {
	deps   Deps
	tags   []models.Tag
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
	loaded bool
	cursor int
	status string

	creating bool
	newName  textinput.Model
	newColor textinput.Model
	focusIdx int // 0=name, 1=color
	formErr  string

	confirmingDelete bool
}

// NewTagListView creates the tag manager
func NewTagListView(deps Deps) *TagListView {
	newName := textinput.New()
	newName.Placeholder = "نام برچسب"
	newName.CharLimit = 50

	newColor := textinput.New()
	newColor.Placeholder = models.DefaultTagColor
	newColor.CharLimit = 7

	return &TagListView{
		deps:     deps,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
		newColor: newColor,
	}
}

func (v *TagListView) Init() tea.Cmd {
	return v.loadTags
}

func (v *TagListView) loadTags() tea.Msg {
	tags, err := v.deps.Backend.ListTags(context.Background())
	if err != nil {
		return errMsg{err: err}
	}
	return tagsLoadedMsg{tags: tags}
}

func (v *TagListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tagsLoadedMsg:
		v.tags = msg.tags
		v.loaded = true
		v.creating = false
		if v.cursor >= len(v.tags) {
			v.cursor = max(0, len(v.tags)-1)
		}
		return v, nil

	case errMsg:
		v.loaded = true
		if v.creating {
			v.formErr = describeErr(msg.err)
			return v, nil
		}
		v.status = describeErr(msg.err)
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToLists{} }
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.tags)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.formErr = ""
			v.newName.Reset()
			v.newColor.Reset()
			v.newName.Focus()
			v.newColor.Blur()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Delete):
			if v.cursor < len(v.tags) {
				v.confirmingDelete = true
			}
		case key.Matches(msg, v.keys.Refresh):
			v.status = ""
			return v, v.loadTags
		}
	}
	return v, nil
}

func (v *TagListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if v.cursor >= len(v.tags) {
			return v, nil
		}
		backend, id := v.deps.Backend, v.tags[v.cursor].ID
		return v, func() tea.Msg {
			if err := backend.DeleteTag(context.Background(), id); err != nil {
				return errMsg{err: err}
			}
			return v.loadTags()
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TagListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Tab), msg.String() == "shift+tab":
		v.focusIdx = 1 - v.focusIdx
		if v.focusIdx == 0 {
			v.newName.Focus()
			v.newColor.Blur()
		} else {
			v.newColor.Focus()
			v.newName.Blur()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		t := models.Tag{
			Name:  strings.TrimSpace(v.newName.Value()),
			Color: strings.TrimSpace(v.newColor.Value()),
		}
		if t.Name == "" {
			v.formErr = "نام برچسب الزامی است"
			return v, nil
		}
		backend := v.deps.Backend
		return v, func() tea.Msg {
			if _, err := backend.CreateTag(context.Background(), t); err != nil {
				return errMsg{err: err}
			}
			return v.loadTags()
		}
	}

	var cmd tea.Cmd
	if v.focusIdx == 0 {
		v.newName, cmd = v.newName.Update(msg)
	} else {
		v.newColor, cmd = v.newColor.Update(msg)
	}
	return v, cmd
}

func (v *TagListView) View() string {
	s := v.styles

	if v.confirmingDelete && v.cursor < len(v.tags) {
		return renderConfirm(s, "حذف برچسب؟", v.tags[v.cursor].Name, v.width, v.height)
	}

	if !v.loaded {
		return s.TitleMuted.Render("در حال بارگذاری...")
	}

	rows := []string{s.Title.Render("برچسب‌ها"), ""}
	if len(v.tags) == 0 {
		rows = append(rows, s.TitleMuted.Render("برچسبی وجود ندارد. برای ساخت 'n' را بزنید."))
	}
	for i, tag := range v.tags {
		itemStyle := s.ListItem
		if i == v.cursor && !v.creating {
			itemStyle = s.ListSelected
		}
		rows = append(rows, itemStyle.Render(colorDot(tag.Color)+" "+tag.Name))
	}

	if v.creating {
		nameStyle, colorStyle := s.Input, s.Input
		if v.focusIdx == 0 {
			nameStyle = s.InputFocused
		} else {
			colorStyle = s.InputFocused
		}
		rows = append(rows, "",
			lipgloss.JoinHorizontal(lipgloss.Top,
				nameStyle.Width(24).Render(v.newName.View()),
				" ",
				colorStyle.Width(12).Render(v.newColor.View()),
			),
		)
		if v.formErr != "" {
			rows = append(rows, s.StatusError.Render(v.formErr))
		}
		rows = append(rows, helpLine(s, "tab", "بعدی", "↵", "ساختن", "esc", "انصراف"))
	} else {
		if v.status != "" {
			rows = append(rows, "", s.StatusError.Render(v.status))
		}
		rows = append(rows, helpLine(s, "n", "جدید", "d", "حذف", "r", "بارگذاری مجدد", "esc", "بازگشت", "q", "خروج"))
	}

	content := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(content, v.width, v.height)
}
