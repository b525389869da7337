package ui

import (
	"strings"

	"listview/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(mode model.Mode, width int) string {
	if mode == model.ModeInput {
		return renderInputHelp(width)
	}
	return renderNavHelp(width)
}

func renderNavHelp(width int) string {
	keys := []string{
		helpKey("j/k", "panels"),
		helpKey("space", "toggle"),
		helpKey("/", "filter"),
		helpKey("tab", "status"),
		helpKey("enter", "apply"),
		helpKey("r", "reset"),
		helpKey("y", "copy"),
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderInputHelp(width int) string {
	keys := []string{
		helpKey("type", "filter by name"),
		helpKey("enter/esc", "leave input"),
		helpKey("ctrl+c", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full-screen help overlay.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Panels"),
		helpSection([]helpItem{
			{"j / ↓", "Next panel"},
			{"k / ↑", "Previous panel"},
			{"space / l / →", "Collapse or expand panel"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
		}),
		titleSection("Filtering"),
		helpSection([]helpItem{
			{"/", "Type into the name filter"},
			{"i", "Switch to the next filter input"},
			{"tab / shift+tab", "Cycle status links"},
			{"enter", "Apply the focused status link"},
			{"r", "Reset (while a filter is active)"},
		}),
		titleSection("Other"),
		helpSection([]helpItem{
			{"y", "Copy visible rows"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
