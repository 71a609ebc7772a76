package api

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/warp/payroll-engine/payroll"
)

// renderPayslip draws a one-page A4 payslip for a stored run. Core fonts
// only cover Latin-1, so every string here stays ASCII.
func renderPayslip(run payroll.RunRecord) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Run: %s", run.ID))
	pdf.Ln(5)
	if run.Label != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Label: %s", run.Label))
		pdf.Ln(5)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Computed: %s", run.CreatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rates per hour: base %s, night %s, holiday %s, weekend %s",
		run.Rates.Base, run.Rates.Night, run.Rates.Holiday, run.Rates.Weekend))
	pdf.Ln(10)

	// Per-day table
	headers := []string{"Day", "Weekday", "Minutes", "Night", "Base", "Night pay", "Holiday", "Weekend", "Total"}
	widths := []float64{12, 26, 18, 16, 22, 22, 22, 22, 24}
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, d := range run.Days {
		cells := []string{
			fmt.Sprintf("%d", d.Index+1),
			d.Weekday.String(),
			fmt.Sprintf("%d", d.WorkedMinutes),
			fmt.Sprintf("%d", d.NightMinutes),
			money(d.Base),
			money(d.Night),
			money(d.Holiday),
			money(d.Weekend),
			money(d.Total()),
		}
		for i, c := range cells {
			align := "R"
			if i == 1 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Hours worked: %s", money(run.Hours)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Gross: %s", money(run.Gross)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Withholding (%s%% + %s%%): %s",
		run.Withholding.Percent, run.Withholding.AdditionalPercent, money(run.Gross.Sub(run.Net))))
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Net: %s", money(run.Net)))
	pdf.Ln(10)

	if len(run.Anomalies) > 0 {
		pdf.SetFont("Helvetica", "I", 9)
		for _, a := range run.Anomalies {
			pdf.Cell(0, 5, a.String())
			pdf.Ln(5)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
