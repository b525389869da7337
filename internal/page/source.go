package page

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSource loads a listing page straight from disk.
type FileSource struct {
	Path string
}

// LoadPage reads the file and names the page after it.
func (s FileSource) LoadPage() (string, []byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read page: %w", err)
	}
	return NameFromPath(s.Path), data, nil
}

// NameFromPath derives a page name from a file path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
