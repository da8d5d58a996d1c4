package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplydash/internal/models"
)

func TestTotalRevenueScenario(t *testing.T) {
	// Row 0: ProductA, LocationX, Rev 100
	// Row 1: ProductA, LocationY, Rev 200
	// Row 2: ProductB, LocationX, Rev 50
	tbl, err := NewTable([]string{ColProductType, ColLocation, ColRevenue}, [][]string{
		{"ProductA", "LocationX", "100"},
		{"ProductA", "LocationY", "200"},
		{"ProductB", "LocationX", "50"},
	})
	require.NoError(t, err)

	v := tbl.Filter(NewFilterState("ProductA", ""))
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, models.Some(300), TotalRevenue(v))

	// Unknown product: no data, not zero
	empty := tbl.Filter(NewFilterState("ProductZ", ""))
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, models.None, TotalRevenue(empty))
}

func TestScalarKPIs(t *testing.T) {
	tbl := fixtureTable(t)
	v := tbl.All()

	// 100 + 200 + 50 + 75.6, row 3 missing
	assert.Equal(t, models.Some(426), TotalRevenue(v))
	// row 4 "x" is missing
	assert.Equal(t, models.Some(75), TotalUnitsSold(v))
	// (1.5 + 2.5 + 0.5 + 3.0) / 4 = 1.875
	assert.Equal(t, models.Some(1.9), MeanDefectRate(v))
	// (5 + 7 + 9 + 4) / 4 = 6.25 -> half to even
	assert.Equal(t, models.Some(6.2), MeanLeadTime(v))
	// (10 + 12 + 20 + 8) / 4 = 12.5
	assert.Equal(t, models.Some(12.5), MeanMfgLeadTime(v))
}

func TestScalarKPIsEmptyView(t *testing.T) {
	v := fixtureTable(t).Filter(NewFilterState("toys", ""))

	assert.Equal(t, models.None, TotalRevenue(v))
	assert.Equal(t, models.None, TotalUnitsSold(v))
	assert.Equal(t, models.None, MeanDefectRate(v))
	assert.Equal(t, models.None, MeanLeadTime(v))
	assert.Equal(t, models.None, MeanMfgLeadTime(v))
}

func TestMeanLeadTimeColumnAbsent(t *testing.T) {
	tbl, err := NewTable([]string{ColProductType, ColRevenue}, [][]string{{"haircare", "1"}})
	require.NoError(t, err)

	assert.Equal(t, models.None, MeanLeadTime(tbl.All()))
	assert.Equal(t, models.None, MeanMfgLeadTime(tbl.All()))
	assert.Equal(t, models.Some(1), TotalRevenue(tbl.All()))
}

func TestMeanDefectRateAllMissing(t *testing.T) {
	tbl, err := NewTable([]string{ColDefectRate, ColRevenue}, [][]string{{"", "5"}})
	require.NoError(t, err)

	assert.Equal(t, models.None, MeanDefectRate(tbl.All()))
}

func TestInspectionStockByResultNormalizes(t *testing.T) {
	tbl, err := NewTable([]string{ColProductType, ColInspection, ColStockLevel}, [][]string{
		{"haircare", "Pass", "10"},
		{"haircare", " pass ", "20"},
		{"skincare", "PASS", "30"},
	})
	require.NoError(t, err)

	got := InspectionStockByResult(tbl.All())
	assert.Equal(t, []models.GroupSum{{Key: "pass", Value: 60}}, got)
}

func TestInspectionStockByResult(t *testing.T) {
	got := InspectionStockByResult(fixtureTable(t).All())

	// cosmetics row has no stock level and is skipped entirely
	assert.Equal(t, []models.GroupSum{
		{Key: "fail", Value: 5},
		{Key: "pass", Value: 60},
	}, got)
}

func TestCostByRouteScenario(t *testing.T) {
	tbl, err := NewTable([]string{ColRoutes, ColCosts}, [][]string{
		{"A", "10"},
		{"A", "20"},
		{"B", "5"},
	})
	require.NoError(t, err)

	assert.Equal(t, []models.GroupSum{{Key: "B", Value: 5}, {Key: "A", Value: 30}}, CostByRoute(tbl.All()))
}

func TestCostByRouteKeepsGroupWithMissingCost(t *testing.T) {
	got := CostByRoute(fixtureTable(t).All())

	assert.Equal(t, []models.GroupSum{
		{Key: "Route C", Value: 0},
		{Key: "Route B", Value: 7.5},
		{Key: "Route A", Value: 30},
	}, got)
}

func TestUnitsByTransportModeDescendingStable(t *testing.T) {
	tbl, err := NewTable([]string{ColTransportMode, ColUnitsSold}, [][]string{
		{"Road", "5"},
		{"Air", "10"},
		{"Sea", "5"},
		{"", "99"},
		{"Rail", "10"},
	})
	require.NoError(t, err)

	assert.Equal(t, []models.GroupSum{
		{Key: "Air", Value: 10},
		{Key: "Rail", Value: 10},
		{Key: "Road", Value: 5},
		{Key: "Sea", Value: 5},
	}, UnitsByTransportMode(tbl.All()))
}

func TestGroupedSumsMatchColumnTotals(t *testing.T) {
	tbl := fixtureTable(t)

	for _, s := range []FilterState{{}, {ProductType: "haircare"}, {Location: "Delhi"}} {
		v := tbl.Filter(s)
		assert.InDelta(t, sumColumn(v, ColCosts), models.Total(CostByRoute(v)), 1e-9)
		assert.InDelta(t, sumColumn(v, ColUnitsSold), models.Total(UnitsByTransportMode(v)), 1e-9)
	}
}

func TestStockPivot(t *testing.T) {
	v := fixtureTable(t).All()
	p := StockPivot(v)

	assert.Equal(t, ColProductType, p.Index)
	assert.Equal(t, []string{"haircare", "skincare"}, p.Rows)
	assert.Equal(t, []string{"fail", "pass"}, p.Columns)
	assert.Equal(t, [][]float64{{0, 30}, {5, 30}}, p.Cells)

	cell, ok := p.Lookup("skincare", "fail")
	require.True(t, ok)
	assert.Equal(t, 5.0, cell)
	_, ok = p.Lookup("cosmetics", "pending")
	assert.False(t, ok)
}

func TestStockPivotTotalsMatchGroupings(t *testing.T) {
	v := fixtureTable(t).All()
	p := StockPivot(v)

	cols := p.ColumnTotals()
	for _, g := range InspectionStockByResult(v) {
		assert.Equal(t, g.Value, cols[g.Key], g.Key)
	}

	rows := p.RowTotals()
	assert.Equal(t, map[string]float64{"haircare": 30, "skincare": 35}, rows)
}

func TestStockPivotTotalsSkipMissingProductType(t *testing.T) {
	tbl, err := NewTable([]string{ColProductType, ColStockLevel, ColInspection}, [][]string{
		{"haircare", "10", "Pass"},
		{"", "20", "Pass"},
		{"NA", "7", "Fail"},
	})
	require.NoError(t, err)
	v := tbl.All()

	groups := InspectionStockByResult(v)
	assert.Equal(t, []models.GroupSum{{Key: "pass", Value: 10}}, groups)

	p := StockPivot(v)
	assert.Equal(t, map[string]float64{"pass": 10}, p.ColumnTotals())
	for _, g := range groups {
		assert.Equal(t, g.Value, p.ColumnTotals()[g.Key], g.Key)
	}
}

func TestAggregatesEmptyView(t *testing.T) {
	v := fixtureTable(t).Filter(NewFilterState("haircare", "Kolkata"))

	assert.Empty(t, InspectionStockByResult(v))
	assert.Empty(t, CostByRoute(v))
	assert.Empty(t, UnitsByTransportMode(v))
	assert.True(t, StockPivot(v).Empty())
}

func TestSummarize(t *testing.T) {
	s := NewFilterState("skincare", "")
	data := Summarize(fixtureTable(t).Filter(s), s)

	assert.Equal(t, "skincare", data.ProductType)
	assert.Equal(t, AllSentinel, data.Location)
	assert.Equal(t, 2, data.Rows)
	assert.Equal(t, models.Some(50), data.Revenue)
	assert.Equal(t, models.Some(45), data.UnitsSold)
	assert.Equal(t, []models.GroupSum{{Key: "Route C", Value: 0}, {Key: "Route B", Value: 5}}, data.CostByRoute)
	assert.Equal(t, []models.GroupSum{{Key: "Sea", Value: 40}, {Key: "Road", Value: 5}}, data.UnitsByTransport)
}
