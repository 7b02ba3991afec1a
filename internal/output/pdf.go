package output

import (
	"bytes"
	"fmt"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/ablecalc/ablecalc/internal/report"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// PDFFormatter renders the yearly projection as a printable one-page-per-
// window PDF report.
type PDFFormatter struct{}

func (PDFFormatter) Name() string { return "pdf" }

func (PDFFormatter) Format(rep *report.Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "ABLE Account Projection", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	summary := fmt.Sprintf("Window: %d year(s)", rep.WindowYears)
	if rep.DepletionMonth != nil {
		summary += fmt.Sprintf("   Depletion: year %d, month %d", *rep.DepletionMonth/12, *rep.DepletionMonth%12+1)
	}
	pdf.CellFormat(0, 6, summary, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Year", "Contrib", "Withdraw", "Earnings", "End Balance", "Credit", "St Benefit", "Taxable End"}
	widths := []float64{16, 24, 24, 24, 26, 20, 22, 26}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	taxableByYear := make(map[int]domain.YearRow, len(rep.Taxable))
	for _, y := range rep.Taxable {
		taxableByYear[y.Year] = y
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, y := range rep.Advantaged {
		taxableEnd := decimal.Zero
		if t, ok := taxableByYear[y.Year]; ok {
			taxableEnd = t.EndingBalance
		}
		cells := []string{
			fmt.Sprintf("%d", y.Year),
			y.Contributions.StringFixed(2),
			y.Withdrawals.StringFixed(2),
			y.Earnings.StringFixed(2),
			y.EndingBalance.StringFixed(2),
			y.CreditAmount.StringFixed(2),
			y.StateBenefitAmount.StringFixed(2),
			taxableEnd.StringFixed(2),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}
