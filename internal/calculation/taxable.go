package calculation

import (
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Filer identifies the taxpayer for bracket placement and benefit lookups.
type Filer struct {
	Jurisdiction     string          `json:"jurisdiction"`     // state of residence
	PlanJurisdiction string          `json:"planJurisdiction"` // state sponsoring the plan
	FilingStatus     string          `json:"filingStatus"`
	AGI              decimal.Decimal `json:"agi"`
}

// BuildTaxableSchedule simulates an ordinary taxable account over the same
// horizon as the tax-advantaged engine. Contribution-limit and balance-cap
// rules do not apply; instead each calendar year's earnings are taxed at
// the filer's marginal federal and state rates, with the annual tax spread
// evenly across that year's simulated months and deducted from the
// balance.
func BuildTaxableSchedule(inputs domain.ProjectionInputs, bc *BenefitCalculator, filer Filer) []domain.YearRow {
	inputs = inputs.Normalize()
	inputs.BalanceCapStopIndex = nil
	inputs.ForcedWithdrawalStartIndex = nil
	inputs.PlanMaxStopIndex = nil

	rate := MonthlyRate(inputs.AnnualReturn)
	contribGrowth := growthFactor(inputs.ContributionIncreasePct)
	withdrawGrowth := growthFactor(inputs.WithdrawalIncreasePct)
	startYear := inputs.StartMonthIndex / 12

	// Streams are precomputed per month so the per-year tax passes below
	// can replay a year without re-deriving growth factors.
	type monthPlan struct {
		index        int
		contribution decimal.Decimal
		withdrawal   decimal.Decimal
	}
	plans := make([]monthPlan, 0, inputs.Months())
	contribFactor := decimalOne
	withdrawFactor := decimalOne
	for m := inputs.StartMonthIndex; m <= inputs.HorizonEndIndex; m++ {
		monthsSinceStart := m - inputs.StartMonthIndex
		if monthsSinceStart > 0 && monthsSinceStart%12 == 0 {
			contribFactor = contribFactor.Mul(contribGrowth)
		}
		if m > inputs.WithdrawalStartIndex && (m-inputs.WithdrawalStartIndex)%12 == 0 {
			withdrawFactor = withdrawFactor.Mul(withdrawGrowth)
		}

		contribution := decimal.Zero
		if m <= inputs.ContributionEndIndex {
			base := inputs.MonthlyContribution
			if m/12 != startYear {
				base = inputs.MonthlyContributionFuture
			}
			contribution = base.Mul(contribFactor)
		}
		withdrawal := decimal.Zero
		if m >= inputs.WithdrawalStartIndex {
			withdrawal = inputs.MonthlyWithdrawal.Mul(withdrawFactor)
		}
		plans = append(plans, monthPlan{index: m, contribution: contribution, withdrawal: withdrawal})
	}

	var years []domain.YearRow
	balance := inputs.StartingBalance
	i := 0
	for i < len(plans) {
		year := plans[i].index / 12
		j := i
		for j < len(plans) && plans[j].index/12 == year {
			j++
		}
		yearPlans := plans[i:j]

		// First pass: estimate the year's untaxed earnings.
		est := balance
		earningsEstimate := decimal.Zero
		for _, p := range yearPlans {
			e := est.Mul(rate)
			earningsEstimate = earningsEstimate.Add(e)
			est = est.Add(e).Add(p.contribution)
			w := p.withdrawal
			if w.GreaterThan(est) {
				w = est
			}
			est = est.Sub(w)
		}

		fedTax := marginalTax(bc.Config.FederalBracketsFor(filer.FilingStatus), filer.AGI, earningsEstimate)
		stateTax := marginalTax(bc.Config.StateBracketsFor(filer.Jurisdiction, filer.FilingStatus), filer.AGI, earningsEstimate)
		monthCount := decimal.NewFromInt(int64(len(yearPlans)))
		fedShare := fedTax.Div(monthCount)
		stateShare := stateTax.Div(monthCount)

		// Second pass: apply the tax drag month by month.
		row := domain.YearRow{Year: year}
		for _, p := range yearPlans {
			var status domain.StatusCode
			earnings := balance.Mul(rate)
			available := balance.Add(earnings).Add(p.contribution).Sub(fedShare).Sub(stateShare)
			if available.LessThan(decimal.Zero) {
				available = decimal.Zero
			}
			withdrawal := p.withdrawal
			if withdrawal.GreaterThan(available) {
				withdrawal = available
				status |= domain.StatusWithdrawalsLimitedToAvailableBalance
			}
			balance = available.Sub(withdrawal)

			row.AddMonth(domain.MonthlyRow{
				MonthIndex:    p.index,
				Contribution:  p.contribution,
				Withdrawal:    withdrawal,
				Earnings:      earnings,
				EndingBalance: balance,
				FederalTax:    fedShare,
				StateTax:      stateShare,
				Status:        status,
			})
		}
		years = append(years, row)
		i = j
	}

	return years
}

// marginalTax returns the extra tax the year's earnings generate on top of
// the filer's AGI: tax(AGI+earnings) - tax(AGI).
func marginalTax(brackets []domain.TaxBracket, agi, earnings decimal.Decimal) decimal.Decimal {
	if len(brackets) == 0 || earnings.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	base := agi
	if base.LessThan(decimal.Zero) {
		base = decimal.Zero
	}
	delta := ComputeProgressiveTax(base.Add(earnings), brackets).Sub(ComputeProgressiveTax(base, brackets))
	if delta.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return delta
}
