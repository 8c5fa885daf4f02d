package export

import (
	"bytes"
	"fmt"
	"time"

	"butchery-analytics-service/internal/analytics"

	"github.com/phpdave11/gofpdf"
)

// RenderSummaryPDF lays out the headline numbers and the main tables of a
// dashboard on A4 pages.
func RenderSummaryPDF(d analytics.Dashboard, loc *time.Location) (*bytes.Buffer, error) {
	if loc == nil {
		loc = time.Local
	}
	d = d.Rounded()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Sales summary - %s", d.ButcherName)), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Window: %s", d.Window), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", d.GeneratedAt.In(loc).Format(OrderTimeLayout)), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	section(pdf, "Summary")
	pdf.CellFormat(0, 5, fmt.Sprintf("Orders: %d (completed %d)", d.Summary.TotalOrders, d.Summary.CompletedOrders), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Revenue: Rs %.2f", d.Summary.TotalRevenue), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Weight sold: %.3f kg", d.Summary.TotalWeight), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Average order value: Rs %.2f", d.Summary.AverageOrderValue), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Average completion: %.1f min", d.Summary.AvgCompletionMinutes), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Rejection rate: %.1f%%", d.Rejections.Rate), "", 1, "L", false, 0, "")

	pdf.Ln(3)
	section(pdf, "Most sold items")
	widths := []float64{86, 30, 36, 34}
	tableHeader(pdf, widths, "Item", "Orders", "Weight (kg)", "Revenue")
	for _, item := range d.MostSold {
		tableRow(pdf, widths,
			tr(item.Name),
			fmt.Sprintf("%d", item.Orders),
			fmt.Sprintf("%.3f", item.Weight),
			fmt.Sprintf("%.2f", item.Revenue),
		)
	}

	pdf.Ln(3)
	section(pdf, "Revenue by category")
	widths = []float64{86, 50, 50}
	tableHeader(pdf, widths, "Category", "Revenue", "Share")
	for _, row := range d.RevenueByCategory {
		tableRow(pdf, widths,
			tr(row.Category),
			fmt.Sprintf("%.2f", row.Revenue),
			fmt.Sprintf("%.1f%%", row.Share),
		)
	}

	if len(d.Rejections.Reasons) > 0 {
		pdf.Ln(3)
		section(pdf, "Top rejection reasons")
		widths = []float64{150, 36}
		tableHeader(pdf, widths, "Reason", "Count")
		for _, reason := range d.Rejections.Reasons {
			tableRow(pdf, widths, tr(reason.Reason), fmt.Sprintf("%d", reason.Count))
		}
	}

	if len(d.CutTypes) > 0 {
		pdf.Ln(3)
		section(pdf, "Cut types")
		widths = []float64{86, 50, 50}
		tableHeader(pdf, widths, "Cut", "Quantity", "Revenue")
		for _, cut := range d.CutTypes {
			tableRow(pdf, widths, tr(cut.CutType), fmt.Sprintf("%.3f", cut.Quantity), fmt.Sprintf("%.2f", cut.Revenue))
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, titles ...string) {
	pdf.SetFont("Arial", "B", 9)
	for i, title := range titles {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 6, title, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells ...string) {
	for i, text := range cells {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 5, text, "", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
