// Package report slices and aggregates simulator output into the yearly
// rows the display layer consumes, and annotates them with the annual
// federal credit and state benefit amounts.
package report

import (
	"github.com/ablecalc/ablecalc/internal/calculation"
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Window is a requested display span in years. WindowMax selects the
// largest window the projection supports.
type Window int

// WindowMax requests the maximum selectable window.
const WindowMax Window = 0

// SelectableWindows is the fixed set of window choices offered to users.
var SelectableWindows = []Window{5, 10, 20, 30, WindowMax}

// Report is the aggregated, display-ready view of one projection.
type Report struct {
	StartMonthIndex   int  `json:"startMonthIndex"`
	EffectiveEndIndex int  `json:"effectiveEndIndex"`
	DepletionMonth    *int `json:"depletionMonth,omitempty"` // earliest depletion of either account
	MaxWindowYears    int  `json:"maxWindowYears"`
	WindowYears       int  `json:"windowYears"`

	Advantaged []domain.YearRow `json:"advantaged"`
	Taxable    []domain.YearRow `json:"taxable"`
}

// depletionMonth returns the first month an account balance reaches zero
// after having been positive, or nil.
func depletionMonth(years []domain.YearRow) *int {
	seenPositive := false
	for _, y := range years {
		for _, m := range y.Months {
			if m.EndingBalance.GreaterThan(decimal.Zero) {
				seenPositive = true
				continue
			}
			if seenPositive {
				idx := m.MonthIndex
				return &idx
			}
		}
	}
	return nil
}

// truncate re-aggregates monthly rows up to and including endIndex into
// fresh year rows, re-summing from the months so window totals are exact.
func truncate(years []domain.YearRow, endIndex int) []domain.YearRow {
	var out []domain.YearRow
	for _, y := range years {
		for _, m := range y.Months {
			if m.MonthIndex > endIndex {
				return out
			}
			year := m.MonthIndex / 12
			if len(out) == 0 || out[len(out)-1].Year != year {
				out = append(out, domain.YearRow{Year: year})
			}
			out[len(out)-1].AddMonth(m)
		}
	}
	return out
}

// annotateBenefits computes the annual federal saver's credit and state
// benefit from each year's contributions and attributes both to the last
// month of the year, matching how the benefits arise as single annual
// events.
func annotateBenefits(years []domain.YearRow, bc *calculation.BenefitCalculator, filer calculation.Filer) {
	for i := range years {
		y := &years[i]
		credit := bc.FederalSaverCredit(filer.AGI, filer.FilingStatus, y.Contributions)
		benefit := bc.StateBenefit(filer.Jurisdiction, filer.FilingStatus, filer.AGI, y.Contributions)
		if credit.IsZero() && benefit.IsZero() {
			continue
		}
		y.CreditAmount = credit
		y.StateBenefitAmount = benefit
		last := len(y.Months) - 1
		y.Months[last].CreditAmount = credit
		y.Months[last].StateBenefitAmount = benefit
	}
}

// Build produces the report for a requested window. The effective end is
// the earlier of the horizon's natural end and the first depletion month
// of either account; the maximum window is derived from that end, rounded
// up to an even year count and clamped to the full horizon length.
func Build(result *calculation.ProjectionResult, bc *calculation.BenefitCalculator, filer calculation.Filer, window Window) *Report {
	start := result.Inputs.StartMonthIndex
	effectiveEnd := result.Inputs.HorizonEndIndex

	dep := depletionMonth(result.Advantaged)
	if td := depletionMonth(result.Taxable); td != nil && (dep == nil || *td < *dep) {
		dep = td
	}
	if dep != nil && *dep < effectiveEnd {
		effectiveEnd = *dep
	}

	horizonYears := (result.Inputs.HorizonEndIndex - start + 12) / 12
	maxYears := (effectiveEnd - start + 12) / 12
	if maxYears%2 != 0 {
		maxYears++
	}
	if maxYears > horizonYears {
		maxYears = horizonYears
	}
	if maxYears < 1 {
		maxYears = 1
	}

	years := int(window)
	if window == WindowMax || years > maxYears {
		years = maxYears
	}
	if years < 1 {
		years = 1
	}

	endIndex := start + years*12 - 1
	if endIndex > effectiveEnd {
		endIndex = effectiveEnd
	}

	advantaged := truncate(result.Advantaged, endIndex)
	taxable := truncate(result.Taxable, endIndex)
	annotateBenefits(advantaged, bc, filer)

	return &Report{
		StartMonthIndex:   start,
		EffectiveEndIndex: effectiveEnd,
		DepletionMonth:    dep,
		MaxWindowYears:    maxYears,
		WindowYears:       years,
		Advantaged:        advantaged,
		Taxable:           taxable,
	}
}

// SmoothBenefits returns a copy of the year rows with each year's credit
// and state benefit redistributed evenly across that year's months. The
// copy is for smoothed-chart display only; year totals are untouched and
// the input is never mutated.
func SmoothBenefits(years []domain.YearRow) []domain.YearRow {
	out := make([]domain.YearRow, len(years))
	for i, y := range years {
		smoothed := y
		smoothed.Months = append([]domain.MonthlyRow(nil), y.Months...)
		if len(smoothed.Months) == 0 {
			out[i] = smoothed
			continue
		}
		n := decimal.NewFromInt(int64(len(smoothed.Months)))
		creditShare := y.CreditAmount.Div(n)
		benefitShare := y.StateBenefitAmount.Div(n)
		for j := range smoothed.Months {
			smoothed.Months[j].CreditAmount = creditShare
			smoothed.Months[j].StateBenefitAmount = benefitShare
		}
		out[i] = smoothed
	}
	return out
}
