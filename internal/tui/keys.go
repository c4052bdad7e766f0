package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	End  key.Binding
	Skip key.Binding
	Quit key.Binding
	Help key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.End, k.Skip, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.End, k.Skip}, {k.Quit, k.Help}}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		End: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "end session now"),
		),
		Skip: key.NewBinding(
			key.WithKeys(" ", "s"),
			key.WithHelp("space", "skip break"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
