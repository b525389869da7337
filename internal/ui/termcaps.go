package ui

import "github.com/muesli/termenv"

// TerminalCapabilities describes what the terminal can render.
type TerminalCapabilities struct {
	Profile        termenv.Profile
	DarkBackground bool
}

// DetectTerminalCapabilities inspects the environment and the terminal.
func DetectTerminalCapabilities() TerminalCapabilities {
	return TerminalCapabilities{
		Profile:        termenv.EnvColorProfile(),
		DarkBackground: termenv.HasDarkBackground(),
	}
}

// Plain reports whether the terminal shows no color at all, in which case
// selection and collapse state need text markers.
func (c TerminalCapabilities) Plain() bool {
	return c.Profile == termenv.Ascii
}

type markers struct {
	expanded  string
	collapsed string
	cursor    string
	reset     string
}

func (c TerminalCapabilities) markers() markers {
	if c.Plain() {
		return markers{expanded: "v", collapsed: ">", cursor: "*", reset: "x"}
	}
	return markers{expanded: "▾", collapsed: "▸", cursor: " ", reset: "✕"}
}
