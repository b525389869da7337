package page

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"listview/internal/model"
)

const listingPage = `<!DOCTYPE html>
<html>
<head><title>  Module   index </title></head>
<body>
  <input type="text" class="form-control table-filter-input" data-table="mods" value="pre">
  <span class="reset-filter" style="display: none">clear</span>
  <a href="#" class="filter-status" data-status="stale"> Stale </a>
  <a href="#" class="filter-status reset-filter" data-status="">All</a>
  <div class="panel">
    <div class="panel-heading"><h3>Modules</h3></div>
    <div class="panel-body panel-hidden">
      <table id="mods">
        <thead><tr><th>Name</th><th>State</th></tr></thead>
        <tbody>
          <tr><td class="pkg name">net/http</td><td>ok</td></tr>
          <tr style="display:none"><td class="pkg">io</td><td>stale</td></tr>
        </tbody>
      </table>
    </div>
  </div>
  <div class="panel">
    <div class="panel-heading" id="second">Second</div>
    <div class="panel-heading" id="third">Third</div>
    <div class="panel-body"><table><tr><td>loose</td></tr></table></div>
  </div>
</body>
</html>`

func TestParse_BuildsDocumentModel(t *testing.T) {
	doc, err := ParseString(listingPage, model.DefaultClasses())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !doc.Ready {
		t.Fatalf("expected document to be ready")
	}
	if doc.Title != "Module index" {
		t.Fatalf("title=%q", doc.Title)
	}

	if len(doc.Inputs) != 1 {
		t.Fatalf("inputs=%d want 1", len(doc.Inputs))
	}
	in := doc.Inputs[0]
	if in.Table != "mods" || in.Value != "pre" || in.ID != "input-0" {
		t.Fatalf("unexpected input %+v", in)
	}

	if doc.Reset == nil || doc.Reset.Display != model.DisplayNone {
		t.Fatalf("unexpected reset %+v", doc.Reset)
	}
	if len(doc.Statuses) != 2 {
		t.Fatalf("statuses=%d want 2", len(doc.Statuses))
	}
	if s := doc.Statuses[0]; s.Label != "stale" || s.Text != "Stale" || s.Reset {
		t.Fatalf("unexpected status %+v", s)
	}
	// Only the first reset-filter element is the reset affordance.
	if doc.Statuses[1].Reset {
		t.Fatalf("second reset-filter element must not be the reset control")
	}

	mods := doc.Table("mods")
	if mods == nil {
		t.Fatalf("table mods not found")
	}
	if strings.Join(mods.Header, ",") != "Name,State" {
		t.Fatalf("header=%v", mods.Header)
	}
	rows := mods.Rows()
	if len(rows) != 2 {
		t.Fatalf("rows=%d want 2", len(rows))
	}
	if c := rows[0].Cell("pkg"); c == nil || c.Text != "net/http" || !c.HasClass("name") {
		t.Fatalf("unexpected name cell %+v", c)
	}
	if rows[0].Text != "net/httpok" {
		t.Fatalf("row text=%q", rows[0].Text)
	}
	if rows[1].Visible() {
		t.Fatalf("expected inline display:none row to start hidden")
	}

	// The parser wraps bare rows in a tbody, like a browser does.
	loose := doc.Table("table-0")
	if loose == nil || loose.RowCount() != 1 {
		t.Fatalf("expected generated table with one row, got %+v", loose)
	}
}

func TestParse_PairsHeadingsWithBodies(t *testing.T) {
	doc, err := ParseString(listingPage, model.DefaultClasses())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Panels) != 3 {
		t.Fatalf("panels=%d want 3", len(doc.Panels))
	}

	first := doc.Panels[0]
	if first.Heading != "Modules" || first.ID != "panel-0" {
		t.Fatalf("unexpected first panel %+v", first)
	}
	if !first.Body.HasClass("panel-hidden") {
		t.Fatalf("expected first body to start hidden")
	}
	if strings.Join(first.Body.Tables, ",") != "mods" {
		t.Fatalf("body tables=%v", first.Body.Tables)
	}

	second, third := doc.Panel("second"), doc.Panel("third")
	if second == nil || third == nil {
		t.Fatalf("expected panels by heading id")
	}
	if second.Body == nil || second.Body != third.Body {
		t.Fatalf("headings sharing a parent must share the body")
	}
}

func TestParse_CustomClasses(t *testing.T) {
	classes := model.Classes{FilterInput: "search", Status: "state-link"}
	doc, err := ParseString(`<input class="search" data-table="t"><a class="state-link" data-status="x">x</a>
<a class="filter-status" data-status="y">y</a>`, classes)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Inputs) != 1 || len(doc.Statuses) != 1 {
		t.Fatalf("inputs=%d statuses=%d", len(doc.Inputs), len(doc.Statuses))
	}
	if doc.Statuses[0].Label != "x" {
		t.Fatalf("unexpected status %+v", doc.Statuses[0])
	}
}

func TestStyleDisplay(t *testing.T) {
	cases := []struct {
		style string
		want  string
	}{
		{style: "", want: ""},
		{style: "display:none", want: "none"},
		{style: "color: red; DISPLAY: Block", want: "block"},
		{style: "displayed: none", want: ""},
	}
	for _, tc := range cases {
		if got := styleDisplay(tc.style); got != tc.want {
			t.Fatalf("styleDisplay(%q)=%q want %q", tc.style, got, tc.want)
		}
	}
}

func TestParse_ElementIDsAreUnique(t *testing.T) {
	doc, err := ParseString(`<input class="table-filter-input" data-table="t">
<a class="filter-status" data-status="zzz">none</a>
<a class="filter-status" id="status-0" data-status="active">active</a>
<a class="filter-status" id="dup" data-status="x">x</a>
<a class="filter-status" id="dup" data-status="y">y</a>
<a class="filter-status" id="dup-0" data-status="z">z</a>`, model.DefaultClasses())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var ids []string
	seen := make(map[string]bool)
	for _, s := range doc.Statuses {
		if seen[s.ID] {
			t.Fatalf("duplicate status id %q in %v", s.ID, ids)
		}
		seen[s.ID] = true
		ids = append(ids, s.ID)
	}
	if got := strings.Join(ids, ","); got != "status-1,status-0,dup,dup-1,dup-0" {
		t.Fatalf("ids=%s", got)
	}
	if s := doc.Status("status-0"); s == nil || s.Label != "active" {
		t.Fatalf("authored id must keep its element, got %+v", s)
	}
}

func TestParse_MarksNestedElements(t *testing.T) {
	doc, err := ParseString(`<table id="t"><tbody>
<tr><td><a href="#" class="pkg">alpha</a> <span class="badge">new</span></td><td>ok</td></tr>
</tbody></table>`, model.DefaultClasses())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	row := doc.Table("t").Rows()[0]
	if c := row.Cell("pkg"); c == nil || c.Text != "alpha" {
		t.Fatalf("expected nested name element, got %+v", c)
	}
	if c := row.Cell("badge"); c == nil || c.Text != "new" {
		t.Fatalf("expected nested badge element, got %+v", c)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status.html")
	if err := os.WriteFile(path, []byte(listingPage), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	name, data, err := FileSource{Path: path}.LoadPage()
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if name != "status" || len(data) != len(listingPage) {
		t.Fatalf("name=%q len=%d", name, len(data))
	}

	if _, _, err := (FileSource{Path: filepath.Join(dir, "missing.html")}).LoadPage(); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
