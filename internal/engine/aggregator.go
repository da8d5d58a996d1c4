package engine

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"supplydash/internal/models"
)

// Summarize computes every dashboard aggregate from one filtered view.
// Each aggregate depends on the view alone, never on another aggregate.
func Summarize(v View, s FilterState) *models.DashboardData {
	return &models.DashboardData{
		ProductType: orAll(s.ProductType),
		Location:    orAll(s.Location),
		Rows:        v.Len(),

		Revenue:     TotalRevenue(v),
		UnitsSold:   TotalUnitsSold(v),
		DefectRate:  MeanDefectRate(v),
		LeadTime:    MeanLeadTime(v),
		MfgLeadTime: MeanMfgLeadTime(v),

		Inspection:       InspectionStockByResult(v),
		StockPivot:       StockPivot(v),
		CostByRoute:      CostByRoute(v),
		UnitsByTransport: UnitsByTransportMode(v),
	}
}

func orAll(s string) string {
	if s == "" {
		return AllSentinel
	}
	return s
}

// --- SCALAR KPIs ---

// TotalRevenue sums revenue rounded to an integer. Absent for an empty view.
func TotalRevenue(v View) models.Scalar {
	if v.Len() == 0 {
		return models.None
	}
	return models.Some(roundTo(sumColumn(v, ColRevenue), 0))
}

// TotalUnitsSold sums units sold. Absent for an empty view.
func TotalUnitsSold(v View) models.Scalar {
	if v.Len() == 0 {
		return models.None
	}
	return models.Some(sumColumn(v, ColUnitsSold))
}

// MeanDefectRate averages the defect rate to one decimal.
// Absent for an empty view or a column without values.
func MeanDefectRate(v View) models.Scalar {
	return meanKPI(v, ColDefectRate)
}

// MeanLeadTime averages the lead time to one decimal.
// Absent for an empty view or a missing column.
func MeanLeadTime(v View) models.Scalar {
	return meanKPI(v, ColLeadTime)
}

// MeanMfgLeadTime averages the manufacturing lead time to one decimal.
func MeanMfgLeadTime(v View) models.Scalar {
	return meanKPI(v, ColMfgLeadTime)
}

func meanKPI(v View, col string) models.Scalar {
	if v.Len() == 0 || !v.HasColumn(col) {
		return models.None
	}
	mean, err := stats.Mean(columnValues(v, col))
	if err != nil {
		return models.None
	}
	return models.Some(roundTo(mean, 1))
}

// columnValues collects the non-missing values of a numeric column.
func columnValues(v View, col string) []float64 {
	vals := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if x, ok := v.Number(col, i); ok {
			vals = append(vals, x)
		}
	}
	return vals
}

// sumColumn adds the non-missing values of a column; no values sum to zero.
func sumColumn(v View, col string) float64 {
	sum, err := stats.Sum(columnValues(v, col))
	if err != nil {
		return 0
	}
	return sum
}

// roundTo rounds half to even at the given number of decimal places.
func roundTo(x float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(x).RoundBank(places).Float64()
	return f
}

// --- GROUPED SUMS ---

// InspectionStockByResult sums stock level per inspection result for the donut chart.
// Results are trimmed and lower-cased. Rows are counted under the same rule as
// StockPivot, so its column totals equal these sums. Sorted ascending by sum.
func InspectionStockByResult(v View) []models.GroupSum {
	g := newGrouper()
	for i := 0; i < v.Len(); i++ {
		_, result, stock, ok := stockCell(v, i)
		if !ok {
			continue
		}
		g.add(result, stock)
	}
	return g.sorted(ascending)
}

// CostByRoute sums costs per route, ascending by sum.
func CostByRoute(v View) []models.GroupSum {
	return groupSum(v, ColRoutes, ColCosts).sorted(ascending)
}

// UnitsByTransportMode sums units sold per transportation mode, descending by sum.
func UnitsByTransportMode(v View) []models.GroupSum {
	return groupSum(v, ColTransportMode, ColUnitsSold).sorted(descending)
}

// groupSum groups by a categorical column. Rows with a missing key are skipped;
// a missing value still registers its group so that it shows up with zero.
func groupSum(v View, keyCol, valueCol string) *grouper {
	g := newGrouper()
	for i := 0; i < v.Len(); i++ {
		key, ok := v.Category(keyCol, i)
		if !ok {
			continue
		}
		x, _ := v.Number(valueCol, i)
		g.add(key, x)
	}
	return g
}

// stockCell returns the product type, normalized inspection result and stock
// level of row i. ok is false when any of the three is missing.
func stockCell(v View, i int) (product, result string, stock float64, ok bool) {
	if stock, ok = v.Number(ColStockLevel, i); !ok {
		return "", "", 0, false
	}
	if product, ok = v.Category(ColProductType, i); !ok {
		return "", "", 0, false
	}
	if result, ok = inspectionKey(v, i); !ok {
		return "", "", 0, false
	}
	return product, result, stock, true
}

// inspectionKey normalizes an inspection result. Blank results count as missing.
func inspectionKey(v View, i int) (string, bool) {
	raw, ok := v.Category(ColInspection, i)
	if !ok {
		return "", false
	}
	key := strings.ToLower(strings.TrimSpace(raw))
	return key, key != ""
}

type sortOrder int

const (
	ascending sortOrder = iota
	descending
)

// grouper accumulates sums per key and remembers first-seen key order.
type grouper struct {
	order []string
	sums  map[string]float64
}

func newGrouper() *grouper {
	return &grouper{sums: make(map[string]float64)}
}

func (g *grouper) add(key string, x float64) {
	if _, seen := g.sums[key]; !seen {
		g.order = append(g.order, key)
	}
	g.sums[key] += x
}

// sorted returns the groups ordered by sum. Ties keep first-seen order.
func (g *grouper) sorted(order sortOrder) []models.GroupSum {
	out := make([]models.GroupSum, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, models.GroupSum{Key: k, Value: g.sums[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == descending {
			return out[i].Value > out[j].Value
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// --- PIVOT ---

// StockPivot sums stock level by product type (rows) and inspection result (columns).
// Rows without a product type, stock level or inspection result are skipped,
// matching InspectionStockByResult. Missing combinations are zero. Labels are sorted.
func StockPivot(v View) models.Pivot {
	p := models.Pivot{
		Index:   ColProductType,
		Rows:    []string{},
		Columns: []string{},
		Cells:   [][]float64{},
	}

	type cell struct{ row, col string }
	sums := make(map[cell]float64)
	rowSet := make(map[string]bool)
	colSet := make(map[string]bool)

	for i := 0; i < v.Len(); i++ {
		product, result, stock, ok := stockCell(v, i)
		if !ok {
			continue
		}
		sums[cell{product, result}] += stock
		rowSet[product] = true
		colSet[result] = true
	}
	if len(sums) == 0 {
		return p
	}

	p.Rows = sortedKeys(rowSet)
	p.Columns = sortedKeys(colSet)
	p.Cells = make([][]float64, len(p.Rows))
	for i, r := range p.Rows {
		p.Cells[i] = make([]float64, len(p.Columns))
		for j, c := range p.Columns {
			p.Cells[i][j] = sums[cell{r, c}]
		}
	}
	return p
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
