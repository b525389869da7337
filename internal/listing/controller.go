package listing

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"listview/internal/model"
)

var (
	// ErrNotReady is returned when a controller is initialized before the
	// document finished loading.
	ErrNotReady = errors.New("document not ready")
	// ErrUnknownElement is returned for events targeting an element the
	// document does not contain.
	ErrUnknownElement = errors.New("unknown element")
	// ErrUnknownTable is returned when a data-table reference does not resolve.
	ErrUnknownTable = errors.New("unknown table")
	// ErrMissingNameCell is returned when a row lacks the name cell.
	ErrMissingNameCell = errors.New("row has no name cell")
	// ErrNoFilterInput is returned when a status control has to fall back to
	// the first filter input's table and the page has none.
	ErrNoFilterInput = errors.New("no filter input on page")
)

// Options configure which capabilities a controller applies.
type Options struct {
	// NameCellClass selects the element, at any depth inside a row, the name
	// filter matches against. Empty means the whole row text.
	NameCellClass string
	// StatusTableFromControl lets a status control's own data-table
	// attribute choose the filtered table. Off by default: status controls
	// filter the table of the first filter input.
	StatusTableFromControl bool
	Classes                model.Classes
	Logger                 *slog.Logger
}

// DefaultOptions filter names on the "pkg" element and resolve status
// filters through the first filter input's table.
func DefaultOptions() Options {
	return Options{
		NameCellClass: "pkg",
		Classes:       model.DefaultClasses(),
	}
}

// Controller attaches filtering and panel behaviour to one document.
type Controller struct {
	doc      *model.Document
	opts     Options
	log      *slog.Logger
	bindings Bindings

	lastInput  *model.FilterInput
	lastStatus *model.StatusControl
}

// New creates a controller for doc. Nothing is bound until Initialize.
func New(doc *model.Document, opts Options) *Controller {
	opts.Classes = opts.Classes.WithDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		doc:      doc,
		opts:     opts,
		log:      logger.With("component", "listing"),
		bindings: newBindings(),
	}
}

// Initialize registers handlers for every filter input, status control and
// panel heading in the document. Calling it again registers them again.
func (c *Controller) Initialize() error {
	if c.doc == nil || !c.doc.Ready {
		return ErrNotReady
	}
	for _, in := range c.doc.Inputs {
		c.bindings.onInput(in.ID, c.filterName)
	}
	for _, s := range c.doc.Statuses {
		c.bindings.onStatus(s.ID, c.filterStatus)
	}
	for _, p := range c.doc.Panels {
		c.bindings.onHeading(p.ID, c.togglePanel)
	}
	c.log.Debug("controller initialized",
		"inputs", len(c.doc.Inputs),
		"statuses", len(c.doc.Statuses),
		"panels", len(c.doc.Panels),
		"reset", c.doc.Reset != nil)
	return nil
}

// Document returns the controlled document.
func (c *Controller) Document() *model.Document { return c.doc }

// Bindings returns the registered handler table.
func (c *Controller) Bindings() *Bindings { return &c.bindings }

// LastInput returns the filter input the user last typed into, or nil.
func (c *Controller) LastInput() *model.FilterInput { return c.lastInput }

// LastStatus returns the status control last activated, or nil.
func (c *Controller) LastStatus() *model.StatusControl { return c.lastStatus }

// ResetVisible reports whether the reset affordance is currently shown.
func (c *Controller) ResetVisible() bool { return c.doc.Reset.Visible() }

// InputChanged sets the value of a filter input and runs its input handlers.
func (c *Controller) InputChanged(id, value string) error {
	in := c.doc.Input(id)
	if in == nil {
		return fmt.Errorf("input %q: %w", id, ErrUnknownElement)
	}
	in.Value = value
	c.log.Debug("input event", "input", id, "value", value)
	for _, h := range c.bindings.inputs[id] {
		if err := h(in); err != nil {
			c.log.Error("name filter failed", "input", id, "error", err)
			return err
		}
	}
	return nil
}

// StatusClicked runs the click handlers of a status control. The returned
// follow flag is always false: activation never navigates.
func (c *Controller) StatusClicked(id string) (follow bool, err error) {
	s := c.doc.Status(id)
	if s == nil {
		return false, fmt.Errorf("status control %q: %w", id, ErrUnknownElement)
	}
	c.log.Debug("status event", "control", id, "status", s.Label)
	for _, h := range c.bindings.statuses[id] {
		if err := h(s); err != nil {
			c.log.Error("status filter failed", "control", id, "error", err)
			return false, err
		}
	}
	return false, nil
}

// HeadingClicked runs the click handlers of a panel heading.
func (c *Controller) HeadingClicked(id string) error {
	p := c.doc.Panel(id)
	if p == nil {
		return fmt.Errorf("panel heading %q: %w", id, ErrUnknownElement)
	}
	c.log.Debug("heading event", "panel", id)
	for _, h := range c.bindings.headings[id] {
		h(p)
	}
	return nil
}

func (c *Controller) filterName(in *model.FilterInput) error {
	c.lastInput = in
	t := c.doc.Table(in.Table)
	if t == nil {
		return fmt.Errorf("input %q references table %q: %w", in.ID, in.Table, ErrUnknownTable)
	}

	rows := t.Rows()
	texts := make([]string, len(rows))
	for i, r := range rows {
		if c.opts.NameCellClass == "" {
			texts[i] = r.Text
			continue
		}
		cell := r.Cell(c.opts.NameCellClass)
		if cell == nil {
			return fmt.Errorf("table %q row %d: %w", t.ID, i, ErrMissingNameCell)
		}
		texts[i] = cell.Text
	}

	val := strings.ToLower(in.Value)
	for i, r := range rows {
		r.Display = display(strings.Contains(strings.ToLower(texts[i]), val))
	}

	if in.Value != "" {
		c.setReset(model.DisplayBlock)
	} else {
		c.setReset(model.DisplayNone)
	}
	return nil
}

func (c *Controller) filterStatus(s *model.StatusControl) error {
	c.lastStatus = s
	t, err := c.statusTable(s)
	if err != nil {
		return err
	}

	val := strings.ToLower(s.Label)
	for _, r := range t.Rows() {
		r.Display = display(strings.Contains(strings.ToLower(r.Text), val))
	}

	if s.Reset {
		c.setReset(model.DisplayNone)
	} else {
		c.setReset(model.DisplayBlock)
	}
	if c.lastInput != nil {
		c.lastInput.Value = ""
	}
	return nil
}

// statusTable resolves the table a status control filters. Unless the
// control names its own table, this is the first filter input's table.
func (c *Controller) statusTable(s *model.StatusControl) (*model.Table, error) {
	id := ""
	if c.opts.StatusTableFromControl && s.Table != "" {
		id = s.Table
	} else {
		if len(c.doc.Inputs) == 0 {
			return nil, fmt.Errorf("status control %q: %w", s.ID, ErrNoFilterInput)
		}
		id = c.doc.Inputs[0].Table
	}
	t := c.doc.Table(id)
	if t == nil {
		return nil, fmt.Errorf("status control %q references table %q: %w", s.ID, id, ErrUnknownTable)
	}
	return t, nil
}

func (c *Controller) togglePanel(p *model.Panel) {
	if !p.Body.HasClass(c.opts.Classes.PanelBody) {
		return
	}
	p.Body.ToggleClass(c.opts.Classes.PanelHidden)
}

// PanelHidden reports whether a panel's body is collapsed.
func (c *Controller) PanelHidden(p *model.Panel) bool {
	return p.Body.HasClass(c.opts.Classes.PanelHidden)
}

func (c *Controller) setReset(display string) {
	if c.doc.Reset == nil {
		return
	}
	c.doc.Reset.Display = display
}

func display(visible bool) string {
	if visible {
		return model.DisplayTableRow
	}
	return model.DisplayNone
}
