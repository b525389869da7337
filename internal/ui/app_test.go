package ui

import (
	"errors"
	"strings"
	"testing"

	"listview/internal/listing"
	"listview/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
)

const packagesPage = `<!DOCTYPE html>
<html><head><title>Package status</title></head><body>
<input class="table-filter-input" id="search" data-table="packages">
<a href="#" class="filter-status reset-filter" id="all" data-status="" style="display:none">all</a>
<a href="#" class="filter-status" id="active" data-status="active">active</a>
<a href="#" class="filter-status" id="disabled" data-status="disabled">disabled</a>
<div class="panel">
  <div class="panel-heading" id="pkgs">Packages</div>
  <div class="panel-body">
    <table id="packages">
      <thead><tr><th>name</th><th>status</th></tr></thead>
      <tbody>
        <tr><td class="pkg">alpha</td><td>active</td></tr>
        <tr><td class="pkg">beta</td><td>inactive</td></tr>
        <tr><td class="pkg">gamma</td><td>disabled</td></tr>
      </tbody>
    </table>
  </div>
</div>
</body></html>`

type staticSource struct {
	name   string
	markup string
	err    error
}

func (s staticSource) LoadPage() (string, []byte, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.name, []byte(s.markup), nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	mAny, _ := m.Update(msg)
	return mAny.(Model)
}

func loadedModel(t *testing.T, markup string) Model {
	t.Helper()
	m := New(staticSource{name: "status", markup: markup}, listing.DefaultOptions(), TerminalCapabilities{Profile: termenv.Ascii})
	msg := m.Init()()
	if _, ok := msg.(model.PageLoadedMsg); !ok {
		t.Fatalf("expected PageLoadedMsg, got %T", msg)
	}
	m = update(t, m, msg)
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.ctrl == nil {
		t.Fatalf("expected controller attached, error=%q", m.error)
	}
	return m
}

func visible(m Model) []string {
	var names []string
	for _, r := range m.ctrl.Document().Table("packages").VisibleRows() {
		names = append(names, r.Cell("pkg").Text)
	}
	return names
}

func TestTypingFiltersRowsOnEveryKeystroke(t *testing.T) {
	m := loadedModel(t, packagesPage)

	m = update(t, m, runes("/"))
	if m.mode != model.ModeInput {
		t.Fatalf("expected input mode after /")
	}

	m = update(t, m, runes("a"))
	if got := strings.Join(visible(m), ","); got != "alpha,beta,gamma" {
		t.Fatalf("after a: visible=%s", got)
	}
	m = update(t, m, runes("l"))
	if got := strings.Join(visible(m), ","); got != "alpha" {
		t.Fatalf("after al: visible=%s", got)
	}
	if !m.ctrl.ResetVisible() {
		t.Fatalf("expected reset shown while filtering")
	}

	// Keys that are bindings in nav mode are text while typing.
	m = update(t, m, runes("q"))
	if got := m.input.Value(); got != "alq" {
		t.Fatalf("input value=%q", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if len(visible(m)) != 3 || m.ctrl.ResetVisible() {
		t.Fatalf("expected cleared filter to show all rows and hide reset")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != model.ModeNav {
		t.Fatalf("expected nav mode after esc")
	}
}

func TestStatusLinksAndReset(t *testing.T) {
	m := loadedModel(t, packagesPage)

	m = update(t, m, runes("/"))
	m = update(t, m, runes("g"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	// First status link in the bar is "active"; the reset link is not offered.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := strings.Join(visible(m), ","); got != "alpha,beta" {
		t.Fatalf("after active: visible=%s", got)
	}
	if got := m.input.Value(); got != "" {
		t.Fatalf("expected status click to clear the input, got %q", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if got := strings.Join(visible(m), ","); got != "gamma" {
		t.Fatalf("after disabled: visible=%s", got)
	}
	if !strings.Contains(m.View(), "reset (r)") {
		t.Fatalf("expected reset affordance in view")
	}

	m = update(t, m, runes("r"))
	if len(visible(m)) != 3 {
		t.Fatalf("expected reset to show all rows, got %v", visible(m))
	}
	if m.ctrl.ResetVisible() {
		t.Fatalf("expected reset hidden after use")
	}

	m = update(t, m, runes("r"))
	if m.info != "No active filter" {
		t.Fatalf("info=%q", m.info)
	}
}

func TestSpaceTogglesPanel(t *testing.T) {
	m := loadedModel(t, packagesPage)
	if !strings.Contains(m.View(), "alpha") {
		t.Fatalf("expected rows rendered")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.ctrl.PanelHidden(m.ctrl.Document().Panel("pkgs")) {
		t.Fatalf("expected panel hidden")
	}
	if strings.Contains(m.View(), "alpha") {
		t.Fatalf("expected collapsed panel to hide its rows")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.ctrl.PanelHidden(m.ctrl.Document().Panel("pkgs")) {
		t.Fatalf("expected panel shown again")
	}
}

func TestFilterKeyWithoutInput(t *testing.T) {
	m := loadedModel(t, `<table id="t"><tbody><tr><td>x</td></tr></tbody></table>`)
	m = update(t, m, runes("/"))
	if m.mode != model.ModeNav {
		t.Fatalf("expected to stay in nav mode")
	}
	if m.info != "No filter input on this page" {
		t.Fatalf("info=%q", m.info)
	}
	if !strings.Contains(m.View(), "no filters on this page") {
		t.Fatalf("expected empty filter bar hint")
	}
}

func TestBrokenTableReferenceShowsError(t *testing.T) {
	m := loadedModel(t, `<input class="table-filter-input" data-table="nope">`)
	m = update(t, m, runes("/"))
	m = update(t, m, runes("x"))
	if !strings.Contains(m.error, "unknown table") {
		t.Fatalf("expected unknown table error, got %q", m.error)
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	m := New(staticSource{err: errors.New("boom")}, listing.DefaultOptions(), TerminalCapabilities{})
	m = update(t, m, m.Init()())
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 20})
	if !strings.Contains(m.View(), "Error: boom") {
		t.Fatalf("expected error banner, got:\n%s", m.View())
	}
}

func TestBuildSectionsPutsLooseTablesLast(t *testing.T) {
	m := loadedModel(t, packagesPage+`<table id="extra"><tbody><tr><td>x</td></tr></tbody></table>`)
	if len(m.listing.sections) != 2 {
		t.Fatalf("sections=%d want 2", len(m.listing.sections))
	}
	if m.listing.sections[1].panel != nil || m.listing.sections[1].tables[0].ID != "extra" {
		t.Fatalf("unexpected loose section %+v", m.listing.sections[1])
	}

	m = update(t, m, runes("j"))
	if m.listing.SelectedPanel() != nil {
		t.Fatalf("expected loose section selected")
	}
	// Toggling a section without a panel does nothing.
	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.error != "" {
		t.Fatalf("unexpected error %q", m.error)
	}
}

func TestResetKeyWorksOnUnstyledResetLink(t *testing.T) {
	unstyled := strings.Replace(packagesPage, ` style="display:none"`, "", 1)
	m := loadedModel(t, unstyled)
	if !m.ctrl.ResetVisible() {
		t.Fatalf("expected reset link without inline style to be shown")
	}

	m = update(t, m, runes("r"))
	if m.info != "Filter reset" {
		t.Fatalf("info=%q", m.info)
	}
	if len(visible(m)) != 3 || m.ctrl.ResetVisible() {
		t.Fatalf("expected all rows shown and reset hidden after r")
	}
}
