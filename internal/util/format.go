package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// FormatImportedAt formats an import time relative to now.
// "now", "3 minutes ago", "2 days ago"
func FormatImportedAt(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}
	return humanize.Time(t)
}

// FormatCount formats visible/total row counts as "3/10 rows".
func FormatCount(visible, total int) string {
	noun := "rows"
	if total == 1 {
		noun = "row"
	}
	if visible == total {
		return fmt.Sprintf("%d %s", total, noun)
	}
	return fmt.Sprintf("%d/%d %s", visible, total, noun)
}

// CollapseSpace joins the whitespace separated fields of s with single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateString truncates s to maxWidth display cells and adds "..." if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth < 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
