package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right, Up, Down key.Binding
	Prev, Next, Today     key.Binding
	Lunch, Dinner         key.Binding
	LunchWhy, DinnerWhy   key.Binding
	Bulk, Only            key.Binding
	Toggle, Range         key.Binding
	PickLunch, PickDinner key.Binding
	Received, Skipped     key.Binding
	Clear, Done, Cancel   key.Binding
	Theme, Help, Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev week")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next week")),
		Prev:       key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev month")),
		Next:       key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next month")),
		Today:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Lunch:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "cycle lunch")),
		Dinner:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "cycle dinner")),
		LunchWhy:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "lunch reason")),
		DinnerWhy:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "dinner reason")),
		Bulk:       key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bulk edit")),
		Only:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "select only")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle date")),
		Range:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select range")),
		PickLunch:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "lunch")),
		PickDinner: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "dinner")),
		Received:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "received")),
		Skipped:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skipped")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Done:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "done")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Theme:      key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "theme")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Lunch, k.Dinner, k.Bulk, k.Prev, k.Next, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Prev, k.Next, k.Today, k.Theme},
		{k.Lunch, k.Dinner, k.LunchWhy, k.DinnerWhy},
		{k.Bulk, k.Only, k.Toggle, k.Range},
		{k.PickLunch, k.PickDinner, k.Received, k.Skipped, k.Clear, k.Done, k.Cancel},
		{k.Help, k.Quit},
	}
}
