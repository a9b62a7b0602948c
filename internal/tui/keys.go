package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit     key.Binding
	QuitDone key.Binding
}

var Keys = KeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "cancel"),
	),
	QuitDone: key.NewBinding(
		key.WithKeys("q", "enter"),
		key.WithHelp("q", "quit"),
	),
}
