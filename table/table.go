package table

import (
	"fmt"
	"strings"
)

// Record is one lesson-level row keyed by physical column header.
type Record map[string]Value

// Table is a cleaned, typed extract.
type Table struct {
	Header    []string
	Rows      []Record
	Encoding  string
	Delimiter rune

	columns  *ColumnMap
	resolved map[string]string
}

// FromRecords builds a Table from a header and raw string rows, coercing
// each cell according to the logical field its column is mapped to.
// Rows with more cells than the header are rejected; short rows are padded
// with nulls.
func FromRecords(header []string, records [][]string, columns *ColumnMap) (*Table, error) {
	if columns == nil {
		columns = DefaultColumnMap()
	}

	hdr := make([]string, len(header))
	present := make(map[string]struct{}, len(header))
	for i, h := range header {
		hdr[i] = strings.TrimSpace(h)
		present[hdr[i]] = struct{}{}
	}

	t := &Table{
		Header:   hdr,
		Rows:     make([]Record, 0, len(records)),
		columns:  columns,
		resolved: make(map[string]string),
	}

	types := make(map[string]FieldType)
	columns.each(func(category, logical string, names []string) {
		for _, name := range names {
			if _, ok := present[name]; ok {
				t.resolved[resolvedKey(category, logical)] = name
				types[name] = TypeOf(logical)
				break
			}
		}
	})

	for i, rec := range records {
		if len(rec) > len(hdr) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", i+1, len(rec), len(hdr))
		}
		row := make(Record, len(hdr))
		for j, col := range hdr {
			raw := ""
			if j < len(rec) {
				raw = rec[j]
			}
			row[col] = coerce(raw, types[col])
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func coerce(raw string, ft FieldType) Value {
	switch ft {
	case FieldBool:
		return Bool(ParseBool(raw))
	case FieldNumber:
		if f, ok := ParseNumber(raw); ok {
			return Number(f)
		}
		return Null()
	case FieldArray:
		return List(ParseArray(raw))
	default:
		if IsNullToken(raw) {
			return Null()
		}
		return String(raw)
	}
}

func resolvedKey(category, logical string) string {
	return category + "." + logical
}

// Columns returns the column map the table was built with.
func (t *Table) Columns() *ColumnMap {
	return t.columns
}

// Column returns the physical header that holds a logical field in this
// table, or false when none of the configured headers are present.
func (t *Table) Column(category, logical string) (string, bool) {
	col, ok := t.resolved[resolvedKey(category, logical)]
	return col, ok
}

// Has reports whether a logical field is present.
func (t *Table) Has(category, logical string) bool {
	_, ok := t.Column(category, logical)
	return ok
}

// Get returns a logical field of a row, or null when the column is absent.
func (t *Table) Get(row Record, category, logical string) Value {
	col, ok := t.Column(category, logical)
	if !ok {
		return Null()
	}
	return row[col]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
