package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the on-disk representation of loan dates.
const DateLayout = "2006-01-02"

// Row is a flat record as it is persisted: every value is text.
type Row map[string]string

// FieldKind is the semantic type of a persisted column.
type FieldKind uint8

const (
	KindID     FieldKind = iota // assigned sequential identifier
	KindKey                     // unique natural key, never empty
	KindText                    // free text
	KindCount                   // non-negative integer stored as text
	KindDate                    // YYYY-MM-DD, may be empty
	KindStatus                  // one of the loan statuses
)

// Field describes one persisted column.
type Field struct {
	Name string
	Kind FieldKind
}

// Schema is the fixed column set of one entity collection.
type Schema struct {
	Entity string
	Fields []Field
}

// Columns returns the column names in their persisted order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Has reports whether the schema knows the given column.
func (s Schema) Has(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Normalize returns a copy of row restricted to the schema columns with
// surrounding spaces trimmed. Missing columns are set to the empty string.
// A record without its natural key cannot be addressed and is rejected.
func (s Schema) Normalize(row Row) (Row, error) {
	out := make(Row, len(s.Fields))
	for _, f := range s.Fields {
		v := strings.TrimSpace(row[f.Name])
		if f.Kind == KindKey && v == "" {
			return nil, missingFieldError(s.Entity + "." + f.Name)
		}
		out[f.Name] = v
	}
	return out, nil
}

// ParseCount reads a count column. Unparseable or negative values count as zero
// and are reported through the boolean so callers may log them.
func ParseCount(v string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseDate reads a date column. The empty string yields the zero time.
func ParseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", v, err)
	}
	return t, nil
}

// FormatDate writes a date column. The zero time yields the empty string.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Identifiable is a record carrying an assigned identifier.
type Identifiable interface {
	RecordID() string
}

// NextID returns 1 for an empty collection, otherwise the highest numeric
// identifier plus one. A non numeric identifier counts as 0.
func NextID[T Identifiable](records []T) int {
	if len(records) == 0 {
		return 1
	}
	highest := 0
	for i, r := range records {
		n, err := strconv.Atoi(strings.TrimSpace(r.RecordID()))
		if err != nil {
			n = 0
		}
		if i == 0 || n > highest {
			highest = n
		}
	}
	return highest + 1
}

// CalendarDay returns the calendar date of t (in t's location) as UTC
// midnight, the same shape ParseDate produces, so both compare directly.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
