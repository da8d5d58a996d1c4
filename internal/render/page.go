package render

import (
	"embed"
	"html/template"
	"io"
	"net/url"

	"supplydash/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is everything the dashboard page shows for one selection.
type PageData struct {
	ProductTypes []string
	Locations    []string
	ProductType  string
	Location     string

	Data *models.DashboardData
	KPIs models.KPIDisplay
}

// ChartURL is the image URL of a named chart for the current selection.
func (p PageData) ChartURL(name string) template.URL {
	q := url.Values{}
	q.Set("product_type", p.ProductType)
	q.Set("location", p.Location)
	return template.URL("/charts/" + name + ".svg?" + q.Encode())
}

// Templates holds the parsed page templates.
type Templates struct {
	t *template.Template
}

// NewTemplates parses the embedded templates.
func NewTemplates() (*Templates, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"number": FormatNumber,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Templates{t: t}, nil
}

// Render executes a named template.
func (t *Templates) Render(w io.Writer, name string, data interface{}) error {
	return t.t.ExecuteTemplate(w, name, data)
}

// Dashboard renders the dashboard page.
func (t *Templates) Dashboard(w io.Writer, p PageData) error {
	return t.Render(w, "dashboard.html", p)
}
