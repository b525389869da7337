package model

import (
	"slices"
	"time"
)

// Row display values, as written to a row's display style.
const (
	DisplayDefault  = ""
	DisplayTableRow = "table-row"
	DisplayNone     = "none"
	DisplayBlock    = "block"
)

// Classes names the markup classes that give elements their role on a listing page.
type Classes struct {
	FilterInput  string `yaml:"filter_input"`
	Reset        string `yaml:"reset"`
	Status       string `yaml:"status"`
	PanelHeading string `yaml:"panel_heading"`
	PanelBody    string `yaml:"panel_body"`
	PanelHidden  string `yaml:"panel_hidden"`
}

// DefaultClasses returns the class names listing pages use out of the box.
func DefaultClasses() Classes {
	return Classes{
		FilterInput:  "table-filter-input",
		Reset:        "reset-filter",
		Status:       "filter-status",
		PanelHeading: "panel-heading",
		PanelBody:    "panel-body",
		PanelHidden:  "panel-hidden",
	}
}

// WithDefaults fills empty class names from DefaultClasses.
func (c Classes) WithDefaults() Classes {
	d := DefaultClasses()
	if c.FilterInput == "" {
		c.FilterInput = d.FilterInput
	}
	if c.Reset == "" {
		c.Reset = d.Reset
	}
	if c.Status == "" {
		c.Status = d.Status
	}
	if c.PanelHeading == "" {
		c.PanelHeading = d.PanelHeading
	}
	if c.PanelBody == "" {
		c.PanelBody = d.PanelBody
	}
	if c.PanelHidden == "" {
		c.PanelHidden = d.PanelHidden
	}
	return c
}

// Document is a parsed listing page.
type Document struct {
	Title    string
	Tables   []*Table
	Inputs   []*FilterInput
	Statuses []*StatusControl
	Reset    *ResetAffordance
	Panels   []*Panel

	// Ready is set once the whole document has been consumed.
	Ready bool
}

// Table returns the table with the given id, or nil.
func (d *Document) Table(id string) *Table {
	for _, t := range d.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Input returns the filter input with the given element id, or nil.
func (d *Document) Input(id string) *FilterInput {
	for _, in := range d.Inputs {
		if in.ID == id {
			return in
		}
	}
	return nil
}

// Status returns the status control with the given element id, or nil.
func (d *Document) Status(id string) *StatusControl {
	for _, s := range d.Statuses {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Panel returns the panel whose heading has the given element id, or nil.
func (d *Document) Panel(id string) *Panel {
	for _, p := range d.Panels {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RowCount returns the number of rows across all tables.
func (d *Document) RowCount() int {
	n := 0
	for _, t := range d.Tables {
		n += t.RowCount()
	}
	return n
}

// Table is a listing table identified by its element id.
type Table struct {
	ID     string
	Header []string
	Groups []*RowGroup
}

// Rows returns every row of every row group, in document order.
func (t *Table) Rows() []*Row {
	var rows []*Row
	for _, g := range t.Groups {
		rows = append(rows, g.Rows...)
	}
	return rows
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() int {
	n := 0
	for _, g := range t.Groups {
		n += len(g.Rows)
	}
	return n
}

// VisibleRows returns the rows not hidden by a filter.
func (t *Table) VisibleRows() []*Row {
	var rows []*Row
	for _, g := range t.Groups {
		for _, r := range g.Rows {
			if r.Visible() {
				rows = append(rows, r)
			}
		}
	}
	return rows
}

// VisibleCount returns the number of rows not hidden by a filter.
func (t *Table) VisibleCount() int {
	return len(t.VisibleRows())
}

// RowGroup is a tbody section.
type RowGroup struct {
	Rows []*Row
}

// Row is a single table row.
type Row struct {
	Cells []Cell
	// Marked holds every element inside the row that carries a class, cells
	// and nested elements alike, in document order.
	Marked []Cell
	// Text is the text content of the whole row, whitespace included.
	Text    string
	Display string
}

// Visible reports whether the row is currently displayed.
func (r *Row) Visible() bool {
	return r.Display != DisplayNone
}

// Cell returns the first element inside the row carrying class, at any
// depth, or nil. Rows without Marked elements fall back to their cells.
func (r *Row) Cell(class string) *Cell {
	for i := range r.Marked {
		if r.Marked[i].HasClass(class) {
			return &r.Marked[i]
		}
	}
	for i := range r.Cells {
		if r.Cells[i].HasClass(class) {
			return &r.Cells[i]
		}
	}
	return nil
}

// Cell is a td or th element of a row.
type Cell struct {
	Classes []string
	Text    string
}

// HasClass reports whether the cell carries class.
func (c Cell) HasClass(class string) bool {
	return slices.Contains(c.Classes, class)
}

// FilterInput is a text control bound to a table through its data-table attribute.
type FilterInput struct {
	ID    string
	Table string
	Value string
}

// StatusControl is a link that filters rows by its data-status label.
type StatusControl struct {
	ID    string
	Label string
	// Table is the control's own data-table attribute, when it declares one.
	Table string
	Text  string
	// Reset is set when the control is also the reset affordance.
	Reset bool
}

// ResetAffordance signals an active filter.
type ResetAffordance struct {
	ElementID string
	Display   string
}

// Visible reports whether the reset affordance is shown. An element the page
// left unstyled is shown.
func (r *ResetAffordance) Visible() bool {
	return r != nil && r.Display != DisplayNone
}

// Panel is a heading and the body it collapses.
type Panel struct {
	ID      string
	Heading string
	Body    *PanelBody
}

// PanelBody is the collapsible region of a panel.
type PanelBody struct {
	Classes []string
	// Tables lists the ids of tables inside the body.
	Tables []string
}

// HasClass reports whether the body carries class.
func (b *PanelBody) HasClass(class string) bool {
	return b != nil && slices.Contains(b.Classes, class)
}

// ToggleClass adds class when absent and removes it when present.
func (b *PanelBody) ToggleClass(class string) {
	if i := slices.Index(b.Classes, class); i >= 0 {
		b.Classes = slices.Delete(b.Classes, i, i+1)
		return
	}
	b.Classes = append(b.Classes, class)
}

// PageRecord is a listing page stored in the library.
type PageRecord struct {
	ID         int64
	Name       string
	SourcePath string
	Markup     string
	Tables     int
	Rows       int
	ImportedAt time.Time
}

// PageRow is a library page without its markup, for list display.
type PageRow struct {
	ID         int64
	Name       string
	SourcePath string
	Tables     int
	Rows       int
	ImportedAt time.Time
}
