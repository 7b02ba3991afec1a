package output

import (
	"fmt"
	"strings"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/ablecalc/ablecalc/internal/report"
	"github.com/shopspring/decimal"
)

// TableFormatter renders the report as a console table with the
// tax-advantaged and taxable accounts side by side.
type TableFormatter struct{}

func (TableFormatter) Name() string { return "table" }

func (tf TableFormatter) Format(rep *report.Report) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString("ABLE ACCOUNT PROJECTION\n")
	sb.WriteString(strings.Repeat("=", 100) + "\n")
	sb.WriteString(fmt.Sprintf("Window: %d year(s)", rep.WindowYears))
	if rep.DepletionMonth != nil {
		sb.WriteString(fmt.Sprintf("   Depletion: year %d, month %d", *rep.DepletionMonth/12, *rep.DepletionMonth%12+1))
	}
	sb.WriteString("\n\n")

	yearWidth := 6
	numWidth := 13

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s %*s %*s\n",
		yearWidth, "Year",
		numWidth, "Contrib",
		numWidth, "Withdraw",
		numWidth, "Earnings",
		numWidth, "End Balance",
		numWidth, "Credit",
		numWidth, "St Benefit",
		numWidth, "Taxable End"))
	sb.WriteString(strings.Repeat("-", 100) + "\n")

	taxableByYear := make(map[int]domain.YearRow, len(rep.Taxable))
	for _, y := range rep.Taxable {
		taxableByYear[y.Year] = y
	}

	for _, y := range rep.Advantaged {
		taxableEnd := decimal.Zero
		if t, ok := taxableByYear[y.Year]; ok {
			taxableEnd = t.EndingBalance
		}
		sb.WriteString(fmt.Sprintf("%-*d %*s %*s %*s %*s %*s %*s %*s\n",
			yearWidth, y.Year,
			numWidth, y.Contributions.StringFixed(2),
			numWidth, y.Withdrawals.StringFixed(2),
			numWidth, y.Earnings.StringFixed(2),
			numWidth, y.EndingBalance.StringFixed(2),
			numWidth, y.CreditAmount.StringFixed(2),
			numWidth, y.StateBenefitAmount.StringFixed(2),
			numWidth, taxableEnd.StringFixed(2)))
	}
	sb.WriteString(strings.Repeat("=", 100) + "\n")

	if n := len(rep.Advantaged); n > 0 {
		last := rep.Advantaged[n-1]
		taxableEnd := decimal.Zero
		if t, ok := taxableByYear[last.Year]; ok {
			taxableEnd = t.EndingBalance
		}
		advantage := last.EndingBalance.Sub(taxableEnd)
		sb.WriteString(fmt.Sprintf("\nFinal balance: %s (taxable baseline %s, advantage %s)\n",
			last.EndingBalance.StringFixed(2), taxableEnd.StringFixed(2), advantage.StringFixed(2)))
	}

	return []byte(sb.String()), nil
}
