package render

import (
	"fmt"
	"html"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"supplydash/internal/models"
)

const (
	chartWidth  = 500
	chartHeight = 300
)

// inspectionColors maps normalized inspection results to slice colors.
var inspectionColors = map[string]drawing.Color{
	"pass":    drawing.ColorFromHex("6aaa96"),
	"fail":    drawing.ColorFromHex("e67f83"),
	"pending": drawing.ColorFromHex("ffa500"),
}

// InspectionDonut renders stock per inspection result as a donut chart.
func InspectionDonut(w io.Writer, groups []models.GroupSum) error {
	if models.Total(groups) <= 0 {
		return Placeholder(w, "Inspection")
	}
	values := make([]chart.Value, 0, len(groups))
	for _, g := range groups {
		color, ok := inspectionColors[g.Key]
		if !ok {
			color = chart.ColorAlternateGray
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", g.Key, FormatNumber(g.Value)),
			Value: g.Value,
			Style: chart.Style{FillColor: color, StrokeColor: chart.ColorWhite},
		})
	}
	donut := chart.DonutChart{
		Title:  fmt.Sprintf("Inspection (%s stock)", FormatNumber(models.Total(groups))),
		Width:  chartWidth,
		Height: chartHeight,
		Values: values,
	}
	return donut.Render(chart.SVG, w)
}

// CostByRouteBars renders total cost per route.
func CostByRouteBars(w io.Writer, groups []models.GroupSum) error {
	return bars(w, "Total Cost Routes", groups)
}

// UnitsByTransportBars renders units sold per transportation mode.
func UnitsByTransportBars(w io.Writer, groups []models.GroupSum) error {
	return bars(w, "Transportation", groups)
}

func bars(w io.Writer, title string, groups []models.GroupSum) error {
	if !hasNonZero(groups) {
		return Placeholder(w, title)
	}
	values := make([]chart.Value, 0, len(groups))
	for _, g := range groups {
		values = append(values, chart.Value{Label: g.Key, Value: g.Value})
	}
	bc := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: 50,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: values,
	}
	return bc.Render(chart.SVG, w)
}

func hasNonZero(groups []models.GroupSum) bool {
	for _, g := range groups {
		if g.Value != 0 {
			return true
		}
	}
	return false
}

// Placeholder writes an SVG that says there is nothing to plot.
func Placeholder(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+
		`<text x="50%%" y="20" text-anchor="middle" font-size="16">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-size="18" fill="#888">%s</text></svg>`,
		chartWidth, chartHeight, html.EscapeString(title), NoData)
	return err
}
