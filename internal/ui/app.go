package ui

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"listview/internal/listing"
	"listview/internal/model"
	"listview/internal/page"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PageSource provides the markup of a listing page.
type PageSource interface {
	LoadPage() (name string, markup []byte, err error)
}

// Model is the root Bubble Tea model.
type Model struct {
	source           PageSource
	opts             listing.Options
	termCapabilities TerminalCapabilities
	log              *slog.Logger
	mode             model.Mode
	gState           GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	pageName string
	ctrl     *listing.Controller
	listing  *ListingModel
	input    textinput.Model
	inputIdx int

	keys      KeyMap
	inputKeys InputKeyMap
}

// New creates a new root model.
func New(source PageSource, opts listing.Options, termCaps TerminalCapabilities) Model {
	in := textinput.New()
	in.Placeholder = "name"
	in.Prompt = "filter> "
	in.CharLimit = 200
	in.TextStyle = lipgloss.NewStyle().Foreground(ColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return Model{
		source:           source,
		opts:             opts,
		termCapabilities: termCaps,
		log:              logger,
		mode:             model.ModeNav,
		gState:           GStateIdle,
		input:            in,
		keys:             DefaultKeyMap(),
		inputKeys:        DefaultInputKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadPageCmd(m.source, m.opts.Classes)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "?" && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" || msg.String() == "?" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.ctrl == nil {
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		if m.mode == model.ModeInput {
			return m.handleInputMode(msg)
		}
		return m.handleNavMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.PageLoadedMsg:
		return m.attach(msg)

	case model.ClipboardCopiedMsg:
		m.info = fmt.Sprintf("Copied %d rows", msg.Rows)
		return m, nil
	}

	return m, nil
}

// attach binds a controller to a freshly loaded document. This is the
// document-ready point: handlers are registered exactly once here.
func (m Model) attach(msg model.PageLoadedMsg) (tea.Model, tea.Cmd) {
	ctrl := listing.New(msg.Document, m.opts)
	if err := ctrl.Initialize(); err != nil {
		m.error = err.Error()
		return m, nil
	}
	m.pageName = msg.Name
	m.ctrl = ctrl
	m.listing = NewListingModel(ctrl, m.termCapabilities)
	m.inputIdx = 0
	m.syncInput()
	m.error = ""
	m.log.Info("page attached",
		"page", msg.Name,
		"tables", len(msg.Document.Tables),
		"rows", msg.Document.RowCount())
	return m, nil
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() != "g" {
		m.gState = GStateIdle
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		m.listing.MoveDown()

	case key.Matches(msg, m.keys.Up):
		m.listing.MoveUp()

	case key.Matches(msg, m.keys.Top):
		if m.gState == GStateFirstG {
			m.listing.JumpToTop()
			m.gState = GStateIdle
		} else {
			m.gState = GStateFirstG
		}

	case key.Matches(msg, m.keys.Bottom):
		m.listing.JumpToBottom()

	case key.Matches(msg, m.keys.TogglePanel):
		p := m.listing.SelectedPanel()
		if p == nil {
			return m, nil
		}
		if err := m.ctrl.HeadingClicked(p.ID); err != nil {
			m.error = err.Error()
		}

	case key.Matches(msg, m.keys.Filter):
		if len(m.ctrl.Document().Inputs) == 0 {
			m.info = "No filter input on this page"
			return m, nil
		}
		m.mode = model.ModeInput
		m.info = ""
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.NextInput):
		if n := len(m.ctrl.Document().Inputs); n > 1 {
			m.inputIdx = (m.inputIdx + 1) % n
			m.syncInput()
			m.info = fmt.Sprintf("Filtering table %s", m.currentInput().Table)
		}

	case key.Matches(msg, m.keys.NextStatus):
		m.listing.NextStatus()

	case key.Matches(msg, m.keys.PrevStatus):
		m.listing.PrevStatus()

	case key.Matches(msg, m.keys.Activate):
		s := m.listing.FocusedStatus()
		if s == nil {
			m.info = "No status links on this page"
			return m, nil
		}
		return m.clickStatus(s)

	case key.Matches(msg, m.keys.Reset):
		return m.clickReset()

	case key.Matches(msg, m.keys.Copy):
		return m, copyRowsCmd(m.listing.VisibleRowTexts())
	}

	return m, nil
}

// handleInputMode feeds keys to the focused filter input. Every change of
// its value is an input event.
func (m Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.inputKeys.Done) || key.Matches(msg, m.inputKeys.Cancel) {
		m.mode = model.ModeNav
		m.input.Blur()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		if err := m.ctrl.InputChanged(m.currentInput().ID, value); err != nil {
			m.error = err.Error()
		} else {
			m.error = ""
		}
	}
	return m, cmd
}

func (m Model) clickStatus(s *model.StatusControl) (tea.Model, tea.Cmd) {
	if _, err := m.ctrl.StatusClicked(s.ID); err != nil {
		m.error = err.Error()
		return m, nil
	}
	m.error = ""
	m.syncInput()
	if s.Reset {
		m.info = "Filter reset"
	} else {
		m.info = fmt.Sprintf("Status %q applied", s.Label)
	}
	return m, nil
}

// clickReset activates the reset affordance. Like a hidden link, it can
// only be activated while shown.
func (m Model) clickReset() (tea.Model, tea.Cmd) {
	doc := m.ctrl.Document()
	if !m.ctrl.ResetVisible() {
		m.info = "No active filter"
		return m, nil
	}
	s := doc.Status(doc.Reset.ElementID)
	if s == nil {
		m.info = "Reset is not a status link on this page"
		return m, nil
	}
	return m.clickStatus(s)
}

func (m *Model) currentInput() *model.FilterInput {
	inputs := m.ctrl.Document().Inputs
	if len(inputs) == 0 {
		return nil
	}
	return inputs[m.inputIdx]
}

// syncInput copies the bound input's value into the text field.
func (m *Model) syncInput() {
	if in := m.currentInput(); in != nil {
		m.input.SetValue(in.Value)
	}
}

// View renders the model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	breadcrumbParts := []string{"Loading"}
	if m.pageName != "" {
		breadcrumbParts = []string{m.pageName}
		if title := m.ctrl.Document().Title; title != "" && title != m.pageName {
			breadcrumbParts = append(breadcrumbParts, title)
		}
	}
	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.mode, m.width)

	parts := []string{header}
	if m.ctrl != nil {
		parts = append(parts, m.renderFilterBar())
	}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}

	used := 0
	for _, p := range parts {
		used += lipgloss.Height(p)
	}
	contentHeight := max(1, m.height-used-lipgloss.Height(footer))

	var content string
	if m.listing != nil {
		content = m.listing.View(m.width, contentHeight)
	}
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderFilterBar() string {
	var items []string
	if m.currentInput() != nil {
		items = append(items, InputStyle.Render(m.input.View()))
	}

	focused := m.listing.FocusedStatus()
	last := m.ctrl.LastStatus()
	for _, s := range m.listing.statusControls() {
		label := s.Text
		if label == "" {
			label = s.Label
		}
		style := StatusLinkStyle
		switch {
		case s == focused && m.mode == model.ModeNav:
			style = StatusLinkFocusStyle
		case s == last && m.ctrl.ResetVisible():
			style = StatusLinkActiveStyle
		}
		items = append(items, style.Render(label))
	}

	if m.ctrl.ResetVisible() {
		items = append(items, ResetStyle.Render(m.termCapabilities.markers().reset+" reset (r)"))
	}
	if len(items) == 0 {
		items = append(items, BreadcrumbStyle.Render("no filters on this page"))
	}
	return FilterBarStyle.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("listview")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func loadPageCmd(source PageSource, classes model.Classes) tea.Cmd {
	return func() tea.Msg {
		name, markup, err := source.LoadPage()
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		doc, err := page.Parse(bytes.NewReader(markup), classes)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.PageLoadedMsg{Name: name, Document: doc}
	}
}

func copyRowsCmd(rows []string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(strings.Join(rows, "\n")); err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to copy rows: %w", err)}
		}
		return model.ClipboardCopiedMsg{Rows: len(rows)}
	}
}
