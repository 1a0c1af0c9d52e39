package tui

import "charm.land/bubbles/v2/key"

// dayKeyMap defines key bindings for the day page
type dayKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Home   key.Binding
	End    key.Binding
	Quit   key.Binding
	Back   key.Binding

	Compose key.Binding
	Submit  key.Binding
	Abort   key.Binding
}

// defaultDayKeyMap returns the default key bindings for the day page
func defaultDayKeyMap() dayKeyMap {
	return dayKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PgUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PgDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "jump to latest"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Compose: key.NewBinding(
			key.WithKeys("i", "tab"),
			key.WithHelp("i", "write"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Abort: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "stop reply"),
		),
	}
}

// shellKeyMap holds the bindings the shell handles for every page.
type shellKeyMap struct {
	HistoryBack    key.Binding
	HistoryForward key.Binding
}

func defaultShellKeyMap() shellKeyMap {
	return shellKeyMap{
		HistoryBack: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("alt+←", "previous day"),
		),
		HistoryForward: key.NewBinding(
			key.WithKeys("alt+right"),
			key.WithHelp("alt+→", "next day"),
		),
	}
}
