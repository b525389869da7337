package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"listview/internal/model"
)

// ErrPageNotFound is returned when no library page has the requested name.
var ErrPageNotFound = errors.New("page not found")

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SavePage stores a page, replacing any page with the same name.
func SavePage(db *sql.DB, p model.PageRecord) (int64, error) {
	importedAt := p.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now()
	}

	var id int64
	err := db.QueryRow(`
		INSERT INTO pages (name, source_path, markup, table_count, row_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source_path = excluded.source_path,
			markup      = excluded.markup,
			table_count = excluded.table_count,
			row_count   = excluded.row_count,
			imported_at = excluded.imported_at
		RETURNING id
	`, p.Name, p.SourcePath, p.Markup, p.Tables, p.Rows, importedAt.UTC().Format(timeLayout)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to save page %q: %w", p.Name, err)
	}
	return id, nil
}

// GetPage retrieves a page, markup included, by name.
func GetPage(db *sql.DB, name string) (model.PageRecord, error) {
	var p model.PageRecord
	var sourcePath sql.NullString
	var importedAt string
	err := db.QueryRow(`
		SELECT id, name, source_path, markup, table_count, row_count, imported_at
		FROM pages
		WHERE name = ?
	`, name).Scan(&p.ID, &p.Name, &sourcePath, &p.Markup, &p.Tables, &p.Rows, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("%q: %w", name, ErrPageNotFound)
	}
	if err != nil {
		return p, fmt.Errorf("failed to get page %q: %w", name, err)
	}
	p.SourcePath = sourcePath.String
	p.ImportedAt = parseTime(importedAt)
	return p, nil
}

// ListPages returns every library page, most recently imported first.
func ListPages(db *sql.DB) ([]model.PageRow, error) {
	rows, err := db.Query(`
		SELECT id, name, COALESCE(source_path, ''), table_count, row_count, imported_at
		FROM pages
		ORDER BY imported_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var results []model.PageRow
	for rows.Next() {
		var r model.PageRow
		var importedAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.SourcePath, &r.Tables, &r.Rows, &importedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		r.ImportedAt = parseTime(importedAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeletePage removes a page by name.
func DeletePage(db *sql.DB, name string) error {
	res, err := db.Exec(`DELETE FROM pages WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete page %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete page %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", name, ErrPageNotFound)
	}
	return nil
}

// LibrarySource loads a listing page from the library.
type LibrarySource struct {
	DB   *sql.DB
	Name string
}

// LoadPage returns the stored markup of the named page.
func (s LibrarySource) LoadPage() (string, []byte, error) {
	p, err := GetPage(s.DB, s.Name)
	if err != nil {
		return "", nil, err
	}
	return p.Name, []byte(p.Markup), nil
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}
