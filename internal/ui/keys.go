package ui

import "github.com/charmbracelet/bubbles/key"

// GState represents the state for "gg" navigation.
type GState int

const (
	GStateIdle GState = iota
	GStateFirstG
)

// KeyMap defines all keybindings for nav mode.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Filter      key.Binding
	NextInput   key.Binding
	NextStatus  key.Binding
	PrevStatus  key.Binding
	Activate    key.Binding
	TogglePanel key.Binding
	Reset       key.Binding
	Copy        key.Binding
	Quit        key.Binding
	Help        key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("gg", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "bottom"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		NextInput: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "next input"),
		),
		NextStatus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next status"),
		),
		PrevStatus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev status"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply status"),
		),
		TogglePanel: key.NewBinding(
			key.WithKeys(" ", "l", "right"),
			key.WithHelp("space", "toggle panel"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy rows"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// InputKeyMap defines keybindings while the filter input has focus.
type InputKeyMap struct {
	Done   key.Binding
	Cancel key.Binding
}

// DefaultInputKeyMap returns the default filter input keybindings.
func DefaultInputKeyMap() InputKeyMap {
	return InputKeyMap{
		Done: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "done"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave input"),
		),
	}
}
