package core

// convert.go provides conversion functions from CSV cells to destination values.
//
// Fedora exports are machine-written, but they pass through spreadsheets often
// enough that cells show up with:
//   - Several timestamp formats (unix seconds, ISO 8601, US dates)
//   - Thousands separators in sizes
//   - Various boolean representations (yes/no, true/false, 1/0)
//   - Excel formula prefixes (="value")

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// integerRegex validates a plain integer after cleanup.
var integerRegex = regexp.MustCompile(`^[+-]?\d+$`)

// numericRegex matches integers and decimals.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006", "01/02/2006", "2006/01/02",
	"Jan 2, 2006", "2 Jan 2006",
}

// ToTimestamp converts a cell to unix seconds.
// Accepts integer seconds or any of the recognised layouts (UTC assumed).
func ToTimestamp(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if integerRegex.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.Unix(), true
		}
	}
	return 0, false
}

// ToInt converts a cell to an integer, dropping thousands separators.
// Decimal values are truncated.
func ToInt(s string) (int64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}
	if integerRegex.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err == nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

// ToBool converts a cell to a boolean.
// Accepts various representations: true/false, yes/no, t/f, y/n, 1/0, active/blocked.
func ToBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1", "active":
		return true, true
	case "false", "f", "no", "n", "0", "blocked", "inactive":
		return false, true
	default:
		return false, false
	}
}

// BoolInt returns 1 for true and 0 for false, the way Drupal stores flags.
func BoolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// HeaderIndex maps field spec names (lowercase) to their position in a CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row, keyed by the
// raw header text. Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}
