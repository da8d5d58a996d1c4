package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplydash/internal/models"
)

func TestCharts(t *testing.T) {
	groups := []models.GroupSum{{Key: "fail", Value: 5}, {Key: "pass", Value: 60}}

	for name, fn := range map[string]func(*bytes.Buffer) error{
		"donut":     func(b *bytes.Buffer) error { return InspectionDonut(b, groups) },
		"routes":    func(b *bytes.Buffer) error { return CostByRouteBars(b, groups) },
		"transport": func(b *bytes.Buffer) error { return UnitsByTransportBars(b, groups) },
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, fn(&buf))
			assert.Contains(t, buf.String(), "<svg")
			assert.NotContains(t, buf.String(), NoData)
		})
	}
}

func TestChartsPlaceholder(t *testing.T) {
	for name, groups := range map[string][]models.GroupSum{
		"empty": {},
		"zeros": {{Key: "Route A", Value: 0}},
	} {
		t.Run(name, func(t *testing.T) {
			var donut, bars bytes.Buffer
			require.NoError(t, InspectionDonut(&donut, groups))
			require.NoError(t, CostByRouteBars(&bars, groups))

			assert.Contains(t, donut.String(), NoData)
			assert.Contains(t, bars.String(), NoData)
		})
	}
}
