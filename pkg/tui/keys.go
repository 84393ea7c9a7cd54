package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Clear  key.Binding
	Reload key.Binding
	Reseed key.Binding
	Pause  key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "n"),
		key.WithHelp("tab/n", "next node"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "p"),
		key.WithHelp("shift+tab/p", "prev node"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Reseed: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "reseed layout"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Clear, k.Reload, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Clear},
		{k.Reload, k.Reseed, k.Pause},
		{k.Help, k.Quit},
	}
}
