package calculation

import (
	"sort"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalTwelve  = decimal.NewFromInt(12)
	decimalHundred = decimal.NewFromInt(100)
)

// normalizeBrackets filters malformed bracket rows and returns the rest
// sorted ascending by Min. Rows with a negative floor, a negative rate, or
// an inverted range are dropped silently; the calculators never fail on a
// bad table.
func normalizeBrackets(brackets []domain.TaxBracket) []domain.TaxBracket {
	out := make([]domain.TaxBracket, 0, len(brackets))
	for _, b := range brackets {
		if b.Min.LessThan(decimal.Zero) || b.Rate.LessThan(decimal.Zero) {
			continue
		}
		if b.Max != nil && b.Max.LessThan(b.Min) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min.LessThan(out[j].Min) })
	return out
}

// ComputeProgressiveTax applies a marginal bracket table to income. Income
// at or below zero yields zero tax. For each bracket overlapping
// [0, income] the taxed slice is min(income, bracket max) less the amount
// already taxed by lower brackets (Min-1 for brackets starting above zero,
// matching tables written as 0-23200 / 23201-94300 / ...).
func ComputeProgressiveTax(income decimal.Decimal, brackets []domain.TaxBracket) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, b := range normalizeBrackets(brackets) {
		if income.LessThan(b.Min) {
			break
		}
		upper := income
		if b.Max != nil && b.Max.LessThan(upper) {
			upper = *b.Max
		}
		floor := decimal.Zero
		if b.Min.GreaterThan(decimal.Zero) {
			floor = b.Min.Sub(decimalOne)
		}
		slice := upper.Sub(floor)
		if slice.GreaterThan(decimal.Zero) {
			total = total.Add(slice.Mul(b.Rate))
		}
	}
	return total
}
