package engine

// Column headers of the supply chain dataset.
const (
	ColProductType   = "Product type"
	ColLocation      = "Location"
	ColRoutes        = "Routes"
	ColTransportMode = "Transportation modes"
	ColInspection    = "Inspection results"

	ColRevenue     = "Revenue generated"
	ColUnitsSold   = "Number of products sold"
	ColDefectRate  = "Defect rates"
	ColStockLevel  = "Stock levels"
	ColCosts       = "Costs"
	ColLeadTime    = "Lead times"
	ColMfgLeadTime = "Manufacturing lead time"
)

// numericColumns lists every header parsed as float64. Anything else is categorical.
var numericColumns = map[string]bool{
	ColRevenue:     true,
	ColUnitsSold:   true,
	ColDefectRate:  true,
	ColStockLevel:  true,
	ColCosts:       true,
	ColLeadTime:    true,
	ColMfgLeadTime: true,

	"Price":               true,
	"Availability":        true,
	"Order quantities":    true,
	"Shipping times":      true,
	"Shipping costs":      true,
	"Production volumes":  true,
	"Manufacturing costs": true,
	"Lead time":           true,
}

// naTokens are cell contents read as missing, the same set pandas uses by default.
var naTokens = map[string]bool{
	"":          true,
	"#N/A":      true,
	"#N/A N/A":  true,
	"#NA":       true,
	"-1.#IND":   true,
	"-1.#QNAN":  true,
	"-NaN":      true,
	"-nan":      true,
	"1.#IND":    true,
	"1.#QNAN":   true,
	"<NA>":      true,
	"N/A":       true,
	"NA":        true,
	"NULL":      true,
	"NaN":       true,
	"None":      true,
	"n/a":       true,
	"nan":       true,
	"null":      true,
}

// IsNumericColumn reports whether a header is parsed as a number.
func IsNumericColumn(name string) bool {
	return numericColumns[name]
}

func isMissing(cell string) bool {
	return naTokens[cell]
}
