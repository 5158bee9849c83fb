package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	NextSuite key.Binding
	PrevSuite key.Binding
	Install   key.Binding
	Quit      key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" ", "space", "x"), key.WithHelp("space", "toggle")),
		NextSuite: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/tab", "next suite")),
		PrevSuite: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←", "prev suite")),
		Install:   key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "install")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
		Cancel:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "abort run")),
	}
}

// ShortHelp satisfies help.KeyMap for the chooser screen.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.NextSuite, k.Install, k.Quit}
}

// FullHelp satisfies help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PrevSuite, k.Cancel}}
}
