// Package render turns aggregate results into display artifacts:
// formatted KPI strings, SVG charts and the dashboard page.
package render

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"supplydash/internal/models"
)

// Placeholders for KPIs without data.
const (
	NoData = "No data"
	NA     = "N/A"
)

// FormatKPIs formats every scalar of a dashboard.
func FormatKPIs(d *models.DashboardData) models.KPIDisplay {
	return models.KPIDisplay{
		Revenue:     FormatRevenue(d.Revenue),
		UnitsSold:   FormatUnits(d.UnitsSold),
		DefectRate:  FormatPercent(d.DefectRate),
		LeadTime:    FormatDays(d.LeadTime),
		MfgLeadTime: FormatDays(d.MfgLeadTime),
	}
}

// FormatRevenue renders "12,345".
func FormatRevenue(s models.Scalar) string {
	if !s.Present {
		return NoData
	}
	return humanize.Comma(int64(math.Round(s.Value)))
}

// FormatUnits renders "1,234", keeping decimals only when the sum has them.
func FormatUnits(s models.Scalar) string {
	if !s.Present {
		return NoData
	}
	if s.Value == math.Trunc(s.Value) {
		return humanize.Comma(int64(s.Value))
	}
	return humanize.Commaf(s.Value)
}

// FormatPercent renders "2.3%".
func FormatPercent(s models.Scalar) string {
	if !s.Present {
		return NoData
	}
	return fmt.Sprintf("%.1f%%", s.Value)
}

// FormatDays renders "17.1 days".
func FormatDays(s models.Scalar) string {
	if !s.Present {
		return NA
	}
	return fmt.Sprintf("%.1f days", s.Value)
}

// FormatNumber renders pivot cells and chart labels.
func FormatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return humanize.Comma(int64(v))
	}
	return humanize.CommafWithDigits(v, 2)
}
