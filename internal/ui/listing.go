package ui

import (
	"fmt"
	"strings"

	"listview/internal/listing"
	"listview/internal/model"
	"listview/internal/util"

	"github.com/charmbracelet/lipgloss"
)

const maxCellWidth = 40

// section is a panel and the tables it shows. Tables outside any panel end
// up in a trailing section without a panel.
type section struct {
	panel  *model.Panel
	tables []*model.Table
}

// ListingModel renders a controlled document as collapsible panels of tables.
type ListingModel struct {
	ctrl     *listing.Controller
	caps     TerminalCapabilities
	sections []section

	cursor int
	offset int

	statusCursor int
}

// NewListingModel creates the view for an initialized controller.
func NewListingModel(ctrl *listing.Controller, caps TerminalCapabilities) *ListingModel {
	return &ListingModel{
		ctrl:     ctrl,
		caps:     caps,
		sections: buildSections(ctrl.Document()),
	}
}

func buildSections(doc *model.Document) []section {
	var sections []section
	placed := make(map[string]bool)
	for _, p := range doc.Panels {
		s := section{panel: p}
		if p.Body != nil {
			for _, id := range p.Body.Tables {
				if t := doc.Table(id); t != nil {
					s.tables = append(s.tables, t)
					placed[id] = true
				}
			}
		}
		sections = append(sections, s)
	}

	var loose []*model.Table
	for _, t := range doc.Tables {
		if !placed[t.ID] {
			loose = append(loose, t)
		}
	}
	if len(loose) > 0 {
		sections = append(sections, section{tables: loose})
	}
	return sections
}

// statusControls are the status links offered in the filter bar. The reset
// control is left out; it is reached through its own key while shown.
func (m *ListingModel) statusControls() []*model.StatusControl {
	var controls []*model.StatusControl
	for _, s := range m.ctrl.Document().Statuses {
		if !s.Reset {
			controls = append(controls, s)
		}
	}
	return controls
}

// FocusedStatus returns the status control under the filter bar cursor.
func (m *ListingModel) FocusedStatus() *model.StatusControl {
	controls := m.statusControls()
	if len(controls) == 0 {
		return nil
	}
	return controls[m.statusCursor]
}

// NextStatus moves the filter bar cursor right, wrapping around.
func (m *ListingModel) NextStatus() {
	if n := len(m.statusControls()); n > 0 {
		m.statusCursor = (m.statusCursor + 1) % n
	}
}

// PrevStatus moves the filter bar cursor left, wrapping around.
func (m *ListingModel) PrevStatus() {
	if n := len(m.statusControls()); n > 0 {
		m.statusCursor = (m.statusCursor - 1 + n) % n
	}
}

// SelectedPanel returns the panel under the cursor, or nil.
func (m *ListingModel) SelectedPanel() *model.Panel {
	if len(m.sections) == 0 {
		return nil
	}
	return m.sections[m.cursor].panel
}

// MoveDown moves the cursor to the next section.
func (m *ListingModel) MoveDown() {
	if m.cursor < len(m.sections)-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor to the previous section.
func (m *ListingModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// JumpToTop jumps to the first section.
func (m *ListingModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last section.
func (m *ListingModel) JumpToBottom() {
	if len(m.sections) > 0 {
		m.cursor = len(m.sections) - 1
	}
}

// VisibleRowTexts returns the text of every row a filter left visible.
func (m *ListingModel) VisibleRowTexts() []string {
	var lines []string
	for _, t := range m.ctrl.Document().Tables {
		for _, r := range t.VisibleRows() {
			cells := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				cells = append(cells, util.CollapseSpace(c.Text))
			}
			lines = append(lines, strings.Join(cells, "\t"))
		}
	}
	return lines
}

// View renders the listing.
func (m *ListingModel) View(width, height int) string {
	if len(m.sections) == 0 {
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render("No tables or panels on this page.")
	}

	mk := m.caps.markers()
	var lines []string
	starts := make([]int, len(m.sections))
	for i, s := range m.sections {
		starts[i] = len(lines)
		lines = append(lines, m.renderHeading(i, s, mk, width))
		if s.panel != nil && m.ctrl.PanelHidden(s.panel) {
			continue
		}
		for _, t := range s.tables {
			lines = append(lines, renderTable(t, width)...)
		}
		lines = append(lines, "")
	}

	status := StatusBarStyle.Render(m.statusLine())
	visibleHeight := max(1, height-lipgloss.Height(status))

	// Keep the selected heading on screen.
	if starts[m.cursor] < m.offset {
		m.offset = starts[m.cursor]
	}
	if starts[m.cursor] >= m.offset+visibleHeight {
		m.offset = starts[m.cursor] - visibleHeight + 1
	}
	if m.offset > len(lines)-1 {
		m.offset = max(0, len(lines)-1)
	}
	end := min(len(lines), m.offset+visibleHeight)

	content := strings.Join(lines[m.offset:end], "\n")
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

func (m *ListingModel) renderHeading(i int, s section, mk markers, width int) string {
	title := "Tables"
	marker := mk.expanded
	if s.panel != nil {
		title = s.panel.Heading
		if title == "" {
			title = s.panel.ID
		}
		if m.ctrl.PanelHidden(s.panel) {
			marker = mk.collapsed
		}
	}

	visible, total := 0, 0
	for _, t := range s.tables {
		visible += t.VisibleCount()
		total += t.RowCount()
	}
	counts := ""
	if len(s.tables) > 0 {
		counts = "  " + util.FormatCount(visible, total)
	}

	line := fmt.Sprintf("%s %s%s", marker, title, counts)
	if i == m.cursor {
		return SelectedRowStyle.Width(width).Render(mk.cursor + line)
	}
	return PanelHeadingStyle.Render(" " + line)
}

func renderTable(t *model.Table, width int) []string {
	widths := columnWidths(t)
	if len(widths) == 0 {
		return []string{EmptyStateStyle.Render("empty table " + t.ID)}
	}
	if total := sum(widths); total < width {
		widths[len(widths)-1] += width - total
	}

	var lines []string
	if len(t.Header) > 0 {
		lines = append(lines, renderTableRow(t.Header, widths, TableHeaderStyle))
	}
	rows := t.VisibleRows()
	for _, r := range rows {
		cells := make([]string, 0, len(r.Cells))
		for i, c := range r.Cells {
			if i < len(widths) {
				cells = append(cells, util.TruncateString(util.CollapseSpace(c.Text), widths[i]-2))
			}
		}
		lines = append(lines, renderTableRow(cells, widths, NormalRowStyle))
	}
	if len(rows) == 0 && t.RowCount() > 0 {
		lines = append(lines, EmptyStateStyle.Render("no matching rows"))
	}
	return lines
}

// columnWidths sizes each column to its widest cell, padding included.
func columnWidths(t *model.Table) []int {
	var widths []int
	grow := func(i int, text string) {
		w := min(lipgloss.Width(util.CollapseSpace(text)), maxCellWidth) + 2
		for len(widths) <= i {
			widths = append(widths, 0)
		}
		widths[i] = max(widths[i], w)
	}
	for i, h := range t.Header {
		grow(i, h)
	}
	for _, r := range t.Rows() {
		for i, c := range r.Cells {
			grow(i, c.Text)
		}
	}
	return widths
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func (m *ListingModel) statusLine() string {
	doc := m.ctrl.Document()
	visible, total := 0, 0
	for _, t := range doc.Tables {
		visible += t.VisibleCount()
		total += t.RowCount()
	}
	parts := []string{
		fmt.Sprintf("%d panels", len(doc.Panels)),
		util.FormatCount(visible, total),
	}
	if s := m.ctrl.LastStatus(); s != nil && m.ctrl.ResetVisible() {
		parts = append(parts, fmt.Sprintf("status %q", s.Label))
	}
	if in := m.ctrl.LastInput(); in != nil && in.Value != "" {
		parts = append(parts, fmt.Sprintf("name %q", in.Value))
	}
	return strings.Join(parts, "  ·  ")
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}
