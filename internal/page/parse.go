package page

import (
	"fmt"
	"io"
	"strings"

	"listview/internal/model"

	"golang.org/x/net/html"
)

type parser struct {
	classes model.Classes
	doc     *model.Document

	ids      map[*html.Node]string
	seq      map[string]int
	reserved map[string]bool
	used     map[string]bool
	tables   map[*html.Node]*model.Table
	bodies   map[*html.Node]*model.PanelBody

	headings []*html.Node
}

// Parse reads listing page markup and builds the document model. Elements are
// given roles by the class names in classes.
func Parse(r io.Reader, classes model.Classes) (*model.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markup: %w", err)
	}

	p := &parser{
		classes: classes.WithDefaults(),
		doc:     &model.Document{},
		ids:      make(map[*html.Node]string),
		seq:      make(map[string]int),
		reserved: make(map[string]bool),
		used:     make(map[string]bool),
		tables:   make(map[*html.Node]*model.Table),
		bodies:   make(map[*html.Node]*model.PanelBody),
	}
	p.reserve(root)
	p.walk(root)
	p.resolvePanels()

	if p.doc.Reset != nil {
		for _, s := range p.doc.Statuses {
			s.Reset = s.ID == p.doc.Reset.ElementID
		}
	}

	p.doc.Ready = true
	return p.doc, nil
}

// ParseString is Parse over an in-memory page.
func ParseString(markup string, classes model.Classes) (*model.Document, error) {
	return Parse(strings.NewReader(markup), classes)
}

func (p *parser) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		p.element(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c)
	}
}

func (p *parser) element(n *html.Node) {
	switch n.Data {
	case "title":
		if p.doc.Title == "" {
			p.doc.Title = collapse(textContent(n))
		}
	case "table":
		t := p.table(n)
		p.tables[n] = t
		p.doc.Tables = append(p.doc.Tables, t)
	}

	classes := classList(n)
	if hasClass(classes, p.classes.FilterInput) {
		p.doc.Inputs = append(p.doc.Inputs, &model.FilterInput{
			ID:    p.id(n, "input"),
			Table: attr(n, "data-table"),
			Value: attr(n, "value"),
		})
	}
	if hasClass(classes, p.classes.Status) {
		p.doc.Statuses = append(p.doc.Statuses, &model.StatusControl{
			ID:    p.id(n, "status"),
			Label: attr(n, "data-status"),
			Table: attr(n, "data-table"),
			Text:  collapse(textContent(n)),
		})
	}
	if hasClass(classes, p.classes.Reset) && p.doc.Reset == nil {
		p.doc.Reset = &model.ResetAffordance{
			ElementID: p.id(n, "reset"),
			Display:   styleDisplay(attr(n, "style")),
		}
	}
	if hasClass(classes, p.classes.PanelHeading) {
		p.headings = append(p.headings, n)
	}
}

func (p *parser) table(n *html.Node) *model.Table {
	t := &model.Table{ID: p.id(n, "table")}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "thead":
			if t.Header == nil {
				if tr := firstChildElement(c, "tr"); tr != nil {
					for _, cell := range rowCells(tr) {
						t.Header = append(t.Header, collapse(cell.Text))
					}
				}
			}
		case "tbody":
			g := &model.RowGroup{}
			for tr := c.FirstChild; tr != nil; tr = tr.NextSibling {
				if tr.Type != html.ElementNode || tr.Data != "tr" {
					continue
				}
				g.Rows = append(g.Rows, &model.Row{
					Cells:   rowCells(tr),
					Marked:  markedElements(tr),
					Text:    textContent(tr),
					Display: styleDisplay(attr(tr, "style")),
				})
			}
			t.Groups = append(t.Groups, g)
		}
	}
	return t
}

// resolvePanels pairs every heading with the first panel body found under
// the heading's parent. Headings sharing a parent share the body.
func (p *parser) resolvePanels() {
	for _, h := range p.headings {
		panel := &model.Panel{
			ID:      p.id(h, "panel"),
			Heading: collapse(textContent(h)),
		}
		if h.Parent != nil {
			if bn := findByClass(h.Parent, p.classes.PanelBody); bn != nil {
				panel.Body = p.body(bn)
			}
		}
		p.doc.Panels = append(p.doc.Panels, panel)
	}
}

func (p *parser) body(n *html.Node) *model.PanelBody {
	if b, ok := p.bodies[n]; ok {
		return b
	}
	b := &model.PanelBody{Classes: classList(n)}
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if t, ok := p.tables[c]; ok {
			b.Tables = append(b.Tables, t.ID)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	p.bodies[n] = b
	return b
}

// reserve records every id written in the page so generated ids avoid them.
func (p *parser) reserve(n *html.Node) {
	if n.Type == html.ElementNode {
		if id := attr(n, "id"); id != "" {
			p.reserved[id] = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.reserve(c)
	}
}

// id returns the element's id attribute, or a stable generated one. Ids are
// unique within the document: a repeated id attribute gets a numbered suffix.
func (p *parser) id(n *html.Node, prefix string) string {
	if id, ok := p.ids[n]; ok {
		return id
	}
	id := attr(n, "id")
	if id == "" || p.used[id] {
		base := prefix
		if id != "" {
			base = id
		}
		for {
			id = fmt.Sprintf("%s-%d", base, p.seq[base])
			p.seq[base]++
			if !p.reserved[id] && !p.used[id] {
				break
			}
		}
	}
	p.ids[n] = id
	p.used[id] = true
	return id
}

func rowCells(tr *html.Node) []model.Cell {
	var cells []model.Cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		cells = append(cells, model.Cell{
			Classes: classList(c),
			Text:    textContent(c),
		})
	}
	return cells
}

// markedElements collects every classed element below tr in document order.
func markedElements(tr *html.Node) []model.Cell {
	var marked []model.Cell
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if classes := classList(c); len(classes) > 0 {
				marked = append(marked, model.Cell{Classes: classes, Text: textContent(c)})
			}
			walk(c)
		}
	}
	walk(tr)
	return marked
}
