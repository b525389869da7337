package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"listview/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "listview.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSaveGetPage(t *testing.T) {
	database := openTestDB(t)
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	id, err := SavePage(database, model.PageRecord{
		Name:       "status",
		SourcePath: "/tmp/status.html",
		Markup:     "<table id=t></table>",
		Tables:     1,
		Rows:       0,
		ImportedAt: at,
	})
	if err != nil {
		t.Fatalf("SavePage: %v", err)
	}

	got, err := GetPage(database, "status")
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got.ID != id || got.SourcePath != "/tmp/status.html" || got.Markup != "<table id=t></table>" || got.Tables != 1 {
		t.Fatalf("unexpected page %+v", got)
	}
	if !got.ImportedAt.Equal(at) {
		t.Fatalf("imported_at=%v want %v", got.ImportedAt, at)
	}
}

func TestSavePage_ReplacesByName(t *testing.T) {
	database := openTestDB(t)

	first, err := SavePage(database, model.PageRecord{Name: "p", Markup: "v1", Rows: 1})
	if err != nil {
		t.Fatalf("SavePage: %v", err)
	}
	second, err := SavePage(database, model.PageRecord{Name: "p", Markup: "v2", Rows: 2})
	if err != nil {
		t.Fatalf("SavePage again: %v", err)
	}
	if first != second {
		t.Fatalf("expected upsert to keep id %d, got %d", first, second)
	}

	pages, err := ListPages(database)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 1 || pages[0].Rows != 2 {
		t.Fatalf("unexpected pages %+v", pages)
	}
}

func TestListPages_NewestFirst(t *testing.T) {
	database := openTestDB(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "new", "mid"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		if _, err := SavePage(database, model.PageRecord{Name: name, Markup: "x", ImportedAt: base.Add(offsets[i])}); err != nil {
			t.Fatalf("SavePage %s: %v", name, err)
		}
	}

	pages, err := ListPages(database)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	var names []string
	for _, p := range pages {
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "new" || names[1] != "mid" || names[2] != "old" {
		t.Fatalf("order=%v", names)
	}
}

func TestDeletePage(t *testing.T) {
	database := openTestDB(t)
	if _, err := SavePage(database, model.PageRecord{Name: "gone", Markup: "x"}); err != nil {
		t.Fatalf("SavePage: %v", err)
	}
	if err := DeletePage(database, "gone"); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if err := DeletePage(database, "gone"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if _, err := GetPage(database, "gone"); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestLibrarySource(t *testing.T) {
	database := openTestDB(t)
	if _, err := SavePage(database, model.PageRecord{Name: "lib", Markup: "<p>hi</p>"}); err != nil {
		t.Fatalf("SavePage: %v", err)
	}
	name, markup, err := LibrarySource{DB: database, Name: "lib"}.LoadPage()
	if err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if name != "lib" || string(markup) != "<p>hi</p>" {
		t.Fatalf("name=%q markup=%q", name, markup)
	}
}
