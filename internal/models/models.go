package models

import (
	"encoding/json"
	"sort"
)

// DashboardData is every derived view of one filtered selection.
type DashboardData struct {
	ProductType string `json:"product_type" yaml:"product_type"`
	Location    string `json:"location" yaml:"location"`
	Rows        int    `json:"rows" yaml:"rows"`

	Revenue     Scalar `json:"revenue" yaml:"revenue"`
	UnitsSold   Scalar `json:"units_sold" yaml:"units_sold"`
	DefectRate  Scalar `json:"defect_rate" yaml:"defect_rate"`
	LeadTime    Scalar `json:"lead_time" yaml:"lead_time"`
	MfgLeadTime Scalar `json:"manufacturing_lead_time" yaml:"manufacturing_lead_time"`

	Inspection       []GroupSum `json:"inspection" yaml:"inspection"`
	StockPivot       Pivot      `json:"stock_pivot" yaml:"stock_pivot"`
	CostByRoute      []GroupSum `json:"cost_by_route" yaml:"cost_by_route"`
	UnitsByTransport []GroupSum `json:"units_by_transport" yaml:"units_by_transport"`
}

// Scalar is a KPI value that may be absent when there is no data behind it.
type Scalar struct {
	Value   float64
	Present bool
}

// Some returns a present scalar.
func Some(v float64) Scalar { return Scalar{Value: v, Present: true} }

// None is the absent scalar.
var None = Scalar{}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Some(v)
	return nil
}

func (s Scalar) MarshalYAML() (interface{}, error) {
	if !s.Present {
		return nil, nil
	}
	return s.Value, nil
}

// GroupSum is one bucket of a grouped sum.
type GroupSum struct {
	Key   string  `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
}

// Total adds up every bucket.
func Total(groups []GroupSum) float64 {
	var sum float64
	for _, g := range groups {
		sum += g.Value
	}
	return sum
}

// Pivot is a two-dimensional sum. Cells[i][j] belongs to Rows[i] x Columns[j].
type Pivot struct {
	Index   string      `json:"index" yaml:"index"`
	Rows    []string    `json:"rows" yaml:"rows"`
	Columns []string    `json:"columns" yaml:"columns"`
	Cells   [][]float64 `json:"cells" yaml:"cells"`
}

// Empty reports whether the pivot has no cells.
func (p Pivot) Empty() bool { return len(p.Rows) == 0 }

// RowTotals sums each row across all columns.
func (p Pivot) RowTotals() map[string]float64 {
	out := make(map[string]float64, len(p.Rows))
	for i, r := range p.Rows {
		for _, v := range p.Cells[i] {
			out[r] += v
		}
	}
	return out
}

// ColumnTotals sums each column across all rows.
func (p Pivot) ColumnTotals() map[string]float64 {
	out := make(map[string]float64, len(p.Columns))
	for i := range p.Rows {
		for j, c := range p.Columns {
			out[c] += p.Cells[i][j]
		}
	}
	return out
}

// Lookup returns the cell for a row and column label.
func (p Pivot) Lookup(row, col string) (float64, bool) {
	i := sort.SearchStrings(p.Rows, row)
	j := sort.SearchStrings(p.Columns, col)
	if i >= len(p.Rows) || p.Rows[i] != row || j >= len(p.Columns) || p.Columns[j] != col {
		return 0, false
	}
	return p.Cells[i][j], true
}

// KPIDisplay holds the formatted KPI strings shown in the value boxes.
type KPIDisplay struct {
	Revenue     string `json:"revenue" yaml:"revenue"`
	UnitsSold   string `json:"units_sold" yaml:"units_sold"`
	DefectRate  string `json:"defect_rate" yaml:"defect_rate"`
	LeadTime    string `json:"lead_time" yaml:"lead_time"`
	MfgLeadTime string `json:"manufacturing_lead_time" yaml:"manufacturing_lead_time"`
}
