package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoRows is returned when a dataset has a header but no data rows.
var ErrNoRows = errors.New("dataset has no rows")

// ErrNoHeader is returned when a dataset has no header row.
var ErrNoHeader = errors.New("dataset has no header")

// Table holds the dataset in Struct-of-Arrays format.
// It is never mutated after construction and is safe to share between goroutines.
type Table struct {
	columns []string
	rows    int

	// Data Columns (Flat Arrays), NaN marks a missing cell
	numbers map[string][]float64

	// Dictionary Encoded IDs (0..N), -1 marks a missing cell
	ids map[string][]int32

	// Dictionaries (ID -> String), in first-seen order
	dicts map[string][]string
}

// Record is one row of the table keyed by header. Missing cells are nil.
type Record map[string]any

// NewTable builds a table from a header and raw string rows.
func NewTable(header []string, rows [][]string) (*Table, error) {
	b, err := newTableBuilder(header, len(rows))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		b.appendRow(row)
	}
	return b.build()
}

// NumRows returns the number of records.
func (t *Table) NumRows() int { return t.rows }

// Columns returns the headers in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the header was present in the source file.
func (t *Table) HasColumn(name string) bool {
	if _, ok := t.numbers[name]; ok {
		return true
	}
	_, ok := t.ids[name]
	return ok
}

// Number returns a numeric cell. ok is false for missing cells and unknown columns.
func (t *Table) Number(col string, row int) (float64, bool) {
	vals, found := t.numbers[col]
	if !found {
		return 0, false
	}
	v := vals[row]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Category returns a categorical cell. ok is false for missing cells and unknown columns.
func (t *Table) Category(col string, row int) (string, bool) {
	ids, found := t.ids[col]
	if !found {
		return "", false
	}
	id := ids[row]
	if id < 0 {
		return "", false
	}
	return t.dicts[col][id], true
}

// Dictionary returns the distinct non-missing values of a categorical column in first-seen order.
func (t *Table) Dictionary(col string) []string {
	dict := t.dicts[col]
	out := make([]string, len(dict))
	copy(out, dict)
	return out
}

// Record materializes one row.
func (t *Table) Record(row int) Record {
	rec := make(Record, len(t.columns))
	for _, col := range t.columns {
		if _, numeric := t.numbers[col]; numeric {
			if v, ok := t.Number(col, row); ok {
				rec[col] = v
			} else {
				rec[col] = nil
			}
			continue
		}
		if s, ok := t.Category(col, row); ok {
			rec[col] = s
		} else {
			rec[col] = nil
		}
	}
	return rec
}

// tableBuilder appends raw rows and dictionary-encodes categorical cells on the fly.
type tableBuilder struct {
	t       *Table
	lookups map[string]map[string]int32
}

func newTableBuilder(header []string, capacity int) (*tableBuilder, error) {
	if len(header) == 0 {
		return nil, ErrNoHeader
	}
	t := &Table{
		columns: make([]string, len(header)),
		numbers: make(map[string][]float64),
		ids:     make(map[string][]int32),
		dicts:   make(map[string][]string),
	}
	b := &tableBuilder{t: t, lookups: make(map[string]map[string]int32)}
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if t.HasColumn(name) {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		t.columns[i] = name
		if IsNumericColumn(name) {
			t.numbers[name] = make([]float64, 0, capacity)
		} else {
			t.ids[name] = make([]int32, 0, capacity)
			t.dicts[name] = make([]string, 0)
			b.lookups[name] = make(map[string]int32)
		}
	}
	return b, nil
}

func (b *tableBuilder) appendRow(row []string) {
	t := b.t
	for i, col := range t.columns {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if vals, numeric := t.numbers[col]; numeric {
			t.numbers[col] = append(vals, parseNumber(cell))
			continue
		}
		t.ids[col] = append(t.ids[col], b.encode(col, cell))
	}
	t.rows++
}

func (b *tableBuilder) encode(col, cell string) int32 {
	if isMissing(cell) {
		return -1
	}
	lookup := b.lookups[col]
	if id, ok := lookup[cell]; ok {
		return id
	}
	id := int32(len(b.t.dicts[col]))
	b.t.dicts[col] = append(b.t.dicts[col], cell)
	lookup[cell] = id
	return id
}

func (b *tableBuilder) build() (*Table, error) {
	if b.t.rows == 0 {
		return nil, ErrNoRows
	}
	return b.t, nil
}

// parseNumber returns NaN for missing or unparsable cells.
func parseNumber(cell string) float64 {
	s := strings.TrimSpace(cell)
	if isMissing(s) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
