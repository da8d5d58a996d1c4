package engine

import "strings"

// AllSentinel is the selector choice that disables a filter.
const AllSentinel = "All"

// FilterState is the current restriction on product type and location.
// An empty field means no restriction.
type FilterState struct {
	ProductType string `json:"product_type,omitempty" yaml:"product_type,omitempty"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
}

// NewFilterState builds a state from two selector values.
func NewFilterState(productType, location string) FilterState {
	var s FilterState
	s.SetProductType(productType)
	s.SetLocation(location)
	return s
}

// SetProductType replaces the product type restriction. "All" or "" clears it.
func (s *FilterState) SetProductType(value string) { s.ProductType = selection(value) }

// SetLocation replaces the location restriction. "All" or "" clears it.
func (s *FilterState) SetLocation(value string) { s.Location = selection(value) }

// IsAll reports whether neither filter is active.
func (s FilterState) IsAll() bool { return s.ProductType == "" && s.Location == "" }

func selection(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), AllSentinel) {
		return ""
	}
	return value
}

// View is an ordered subset of a Table's rows. It shares the Table, never copies it.
type View struct {
	table *Table
	rows  []int
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.rows) }

// Table returns the underlying table.
func (v View) Table() *Table { return v.table }

// Rows returns the table row indices in the view, in table order.
func (v View) Rows() []int {
	out := make([]int, len(v.rows))
	copy(out, v.rows)
	return out
}

// Number returns a numeric cell of the i-th view row.
func (v View) Number(col string, i int) (float64, bool) {
	return v.table.Number(col, v.rows[i])
}

// Category returns a categorical cell of the i-th view row.
func (v View) Category(col string, i int) (string, bool) {
	return v.table.Category(col, v.rows[i])
}

// HasColumn reports whether the underlying table has the column.
func (v View) HasColumn(col string) bool {
	return v.table != nil && v.table.HasColumn(col)
}

// All returns a view over every row of the table.
func (t *Table) All() View {
	rows := make([]int, t.rows)
	for i := range rows {
		rows[i] = i
	}
	return View{table: t, rows: rows}
}

// Filter is shorthand for ComputeFilteredView(t, s).
func (t *Table) Filter(s FilterState) View {
	return ComputeFilteredView(t, s)
}

// ComputeFilteredView returns the rows matching every active filter, in table order.
// A value absent from the table yields an empty view.
func ComputeFilteredView(t *Table, s FilterState) View {
	if s.IsAll() {
		return t.All()
	}

	// Resolve each active filter to a dictionary id once, then compare ids per row.
	type predicate struct {
		ids []int32
		id  int32
	}
	var preds []predicate
	for _, f := range []struct{ col, value string }{
		{ColProductType, s.ProductType},
		{ColLocation, s.Location},
	} {
		if f.value == "" {
			continue
		}
		id := t.lookup(f.col, f.value)
		if id < 0 {
			return View{table: t, rows: []int{}}
		}
		preds = append(preds, predicate{ids: t.ids[f.col], id: id})
	}

	rows := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		pass := true
		for _, p := range preds {
			if p.ids[i] != p.id {
				pass = false
				break
			}
		}
		if pass {
			rows = append(rows, i)
		}
	}
	return View{table: t, rows: rows}
}

// lookup returns the dictionary id of value in col, or -1.
func (t *Table) lookup(col, value string) int32 {
	for id, s := range t.dicts[col] {
		if s == value {
			return int32(id)
		}
	}
	return -1
}

// DistinctValues returns the non-missing values of a column in first-seen order.
func DistinctValues(t *Table, col string) []string {
	return t.Dictionary(col)
}

// FilterOptions lists the choices of both selectors, "All" first.
type FilterOptions struct {
	ProductTypes []string `json:"product_types" yaml:"product_types"`
	Locations    []string `json:"locations" yaml:"locations"`
}

// Options returns the selector choices for a table.
func Options(t *Table) FilterOptions {
	return FilterOptions{
		ProductTypes: append([]string{AllSentinel}, DistinctValues(t, ColProductType)...),
		Locations:    append([]string{AllSentinel}, DistinctValues(t, ColLocation)...),
	}
}
