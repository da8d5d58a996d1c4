package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"supplydash/internal/engine"
	"supplydash/internal/models"
	"supplydash/internal/render"
)

var (
	productType string
	location    string
	format      string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard for one filter selection",
	Example: `  server summary --product-type haircare
  server summary --location Mumbai --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		s := engine.NewFilterState(productType, location)
		data := engine.Summarize(engine.ComputeFilteredView(table, s), s)
		return writeSummary(cmd.OutOrStdout(), data, format)
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the product type and location choices",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable()
		if err != nil {
			return err
		}
		opts := engine.Options(table)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Product type: %s\n", strings.Join(opts.ProductTypes, ", "))
		fmt.Fprintf(out, "Location: %s\n", strings.Join(opts.Locations, ", "))
		return nil
	},
}

func init() {
	summaryCmd.Flags().StringVar(&productType, "product-type", engine.AllSentinel, "product type filter")
	summaryCmd.Flags().StringVar(&location, "location", engine.AllSentinel, "location filter")
	summaryCmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, json or yaml")
}

type summaryOutput struct {
	models.DashboardData `yaml:",inline"`
	Display              models.KPIDisplay `json:"display" yaml:"display"`
}

func writeSummary(w io.Writer, data *models.DashboardData, format string) error {
	out := summaryOutput{DashboardData: *data, Display: render.FormatKPIs(data)}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		return writeText(w, out)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeText(w io.Writer, out summaryOutput) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Product type\t%s\n", out.ProductType)
	fmt.Fprintf(tw, "Location\t%s\n", out.Location)
	fmt.Fprintf(tw, "Rows\t%d\n\n", out.Rows)
	fmt.Fprintf(tw, "Revenue\t%s\n", out.Display.Revenue)
	fmt.Fprintf(tw, "Products delivered\t%s\n", out.Display.UnitsSold)
	fmt.Fprintf(tw, "Defective products\t%s\n", out.Display.DefectRate)
	fmt.Fprintf(tw, "Average lead time\t%s\n", out.Display.LeadTime)
	fmt.Fprintf(tw, "Manufacturing lead time\t%s\n", out.Display.MfgLeadTime)

	writeGroups(tw, "Inspection (stock)", out.Inspection)
	writeGroups(tw, "Cost by route", out.CostByRoute)
	writeGroups(tw, "Units by transportation mode", out.UnitsByTransport)

	if p := out.StockPivot; !p.Empty() {
		fmt.Fprintf(tw, "\nStock levels\n%s\t%s\n", p.Index, strings.Join(p.Columns, "\t"))
		for i, r := range p.Rows {
			cells := make([]string, len(p.Cells[i]))
			for j, v := range p.Cells[i] {
				cells[j] = render.FormatNumber(v)
			}
			fmt.Fprintf(tw, "%s\t%s\n", r, strings.Join(cells, "\t"))
		}
	}
	return tw.Flush()
}

func writeGroups(w io.Writer, title string, groups []models.GroupSum) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(groups) == 0 {
		fmt.Fprintf(w, "  %s\n", render.NoData)
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "  %s\t%s\n", g.Key, render.FormatNumber(g.Value))
	}
}
