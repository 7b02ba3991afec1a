package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/ablecalc/ablecalc/internal/report"
	"github.com/shopspring/decimal"
)

// CSVFormatter emits one row per projection year.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(rep *report.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Contributions", "Withdrawals", "Earnings", "EndingBalance", "FederalCredit", "StateBenefit", "TaxableEndingBalance"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	taxableByYear := make(map[int]domain.YearRow, len(rep.Taxable))
	for _, y := range rep.Taxable {
		taxableByYear[y.Year] = y
	}

	for _, y := range rep.Advantaged {
		taxableEnd := decimal.Zero
		if t, ok := taxableByYear[y.Year]; ok {
			taxableEnd = t.EndingBalance
		}
		row := []string{
			strconv.Itoa(y.Year),
			y.Contributions.StringFixed(2),
			y.Withdrawals.StringFixed(2),
			y.Earnings.StringFixed(2),
			y.EndingBalance.StringFixed(2),
			y.CreditAmount.StringFixed(2),
			y.StateBenefitAmount.StringFixed(2),
			taxableEnd.StringFixed(2),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
