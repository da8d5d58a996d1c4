package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var fixtureHeader = []string{
	ColProductType, ColLocation, ColRevenue, ColUnitsSold, ColDefectRate,
	ColStockLevel, ColInspection, ColRoutes, ColCosts, ColTransportMode,
	ColLeadTime, ColMfgLeadTime,
}

// fixtureTable is a small dataset covering every aggregate.
func fixtureTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(fixtureHeader, [][]string{
		{"haircare", "Mumbai", "100", "10", "1.5", "10", "Pass", "Route A", "10", "Road", "5", "10"},
		{"haircare", "Delhi", "200", "20", "2.5", "20", " pass ", "Route A", "20", "Air", "7", "12"},
		{"skincare", "Mumbai", "50", "5", "0.5", "30", "PASS", "Route B", "5", "Road", "9", ""},
		{"skincare", "Kolkata", "", "40", "", "5", "Fail", "Route C", "", "Sea", "", "20"},
		{"cosmetics", "Delhi", "75.6", "x", "3.0", "", "Pending", "Route B", "2.5", "Air", "4", "8"},
	})
	require.NoError(t, err)
	return tbl
}
