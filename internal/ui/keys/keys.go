package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings shared by every view
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
	Tab   key.Binding
	Help  key.Binding

	New    key.Binding
	Edit   key.Binding
	Delete key.Binding
	Toggle key.Binding
	Save   key.Binding

	Search        key.Binding
	Filter        key.Binding
	Status        key.Binding
	Priority      key.Binding
	ClearFilters  key.Binding
	ShowCompleted key.Binding
	AssignTags    key.Binding
	AddSubtask    key.Binding
	Refresh       key.Binding

	Tags      key.Binding
	Dashboard key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "بالا"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "پایین"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "چپ"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "راست"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "انتخاب"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "بازگشت"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "خروج"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "بعدی"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "راهنما"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "جدید"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "ویرایش"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "حذف"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "تغییر وضعیت"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "ذخیره"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "جستجو"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "لیست"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "وضعیت"),
		),
		Priority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "اولویت"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "پاک کردن فیلترها"),
		),
		ShowCompleted: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "تکمیل‌شده‌ها"),
		),
		AssignTags: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "برچسب‌ها"),
		),
		AddSubtask: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "افزودن زیرتسک"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "ctrl+r"),
			key.WithHelp("r", "بارگذاری مجدد"),
		),
		Tags: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "برچسب‌ها"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "داشبورد"),
		),
	}
}
