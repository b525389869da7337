package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// PageLoadedMsg is sent when a page's markup has been read and parsed.
type PageLoadedMsg struct {
	Name     string
	Document *Document
}

// ClipboardCopiedMsg is sent after visible rows were copied.
type ClipboardCopiedMsg struct {
	Rows int
}

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInput
)
