// Package shortcut maps shortcut digits to applications and launches them.
package shortcut

import (
	"fmt"
	"sort"
	"strings"
)

const (
	MinDigit = 1
	MaxDigit = 9
)

// Table maps digits 1..9 to application paths. A Table is immutable once
// built; a digit without a path is an inactive shortcut.
type Table struct {
	paths [MaxDigit + 1]string
}

// Entry is one active mapping.
type Entry struct {
	Digit int
	Path  string
}

// NewTable builds a table from digit -> path. Digits outside 1..9 and blank
// paths are rejected.
func NewTable(mapping map[int]string) (Table, error) {
	var t Table
	digits := make([]int, 0, len(mapping))
	for d := range mapping {
		digits = append(digits, d)
	}
	sort.Ints(digits)
	for _, d := range digits {
		if d < MinDigit || d > MaxDigit {
			return Table{}, fmt.Errorf("shortcut digit %d out of range %d..%d", d, MinDigit, MaxDigit)
		}
		path := strings.TrimSpace(mapping[d])
		if path == "" {
			return Table{}, fmt.Errorf("shortcut %d: empty application path", d)
		}
		t.paths[d] = path
	}
	return t, nil
}

// Lookup returns the application path for digit.
func (t Table) Lookup(digit int) (string, bool) {
	if digit < MinDigit || digit > MaxDigit {
		return "", false
	}
	path := t.paths[digit]
	return path, path != ""
}

// Entries returns the active mappings in ascending digit order.
func (t Table) Entries() []Entry {
	var out []Entry
	for d := MinDigit; d <= MaxDigit; d++ {
		if t.paths[d] != "" {
			out = append(out, Entry{Digit: d, Path: t.paths[d]})
		}
	}
	return out
}

// Len returns the number of active mappings.
func (t Table) Len() int {
	n := 0
	for d := MinDigit; d <= MaxDigit; d++ {
		if t.paths[d] != "" {
			n++
		}
	}
	return n
}
