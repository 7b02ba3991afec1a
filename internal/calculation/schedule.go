package calculation

import (
	"math"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthlyRate converts an annual return (decimal, e.g. 0.06) to the
// equivalent compound monthly rate (1+r)^(1/12)-1. A naive r/12 overstates
// growth, so the fractional root is taken in float space and converted
// back.
func MonthlyRate(annualReturn decimal.Decimal) decimal.Decimal {
	annual, _ := annualReturn.Float64()
	if annual <= -1 {
		return decimal.Zero
	}
	monthly := math.Pow(1+annual, 1.0/12.0) - 1
	if math.IsNaN(monthly) || math.IsInf(monthly, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(monthly)
}

// growthFactor returns 1 + pct/100, or 1 when the percent is not positive.
func growthFactor(pct decimal.Decimal) decimal.Decimal {
	if pct.LessThanOrEqual(decimal.Zero) {
		return decimalOne
	}
	return decimalOne.Add(pct.Div(decimalHundred))
}

// BuildSchedule runs the month-by-month simulation of the tax-advantaged
// account and groups the rows into calendar-year aggregates. It is a pure
// function: identical inputs produce identical output.
func BuildSchedule(inputs domain.ProjectionInputs) []domain.YearRow {
	inputs = inputs.Normalize()

	rate := MonthlyRate(inputs.AnnualReturn)
	contribGrowth := growthFactor(inputs.ContributionIncreasePct)
	withdrawGrowth := growthFactor(inputs.WithdrawalIncreasePct)

	// Forced withdrawals from cap enforcement move the start month
	// earlier; they never change the withdrawal size.
	withdrawalStart := inputs.WithdrawalStartIndex
	if inputs.ForcedWithdrawalStartIndex != nil && *inputs.ForcedWithdrawalStartIndex < withdrawalStart {
		withdrawalStart = *inputs.ForcedWithdrawalStartIndex
	}

	startYear := inputs.StartMonthIndex / 12

	var years []domain.YearRow
	balance := inputs.StartingBalance
	contribFactor := decimalOne
	withdrawFactor := decimalOne

	for m := inputs.StartMonthIndex; m <= inputs.HorizonEndIndex; m++ {
		monthsSinceStart := m - inputs.StartMonthIndex
		if monthsSinceStart > 0 && monthsSinceStart%12 == 0 {
			contribFactor = contribFactor.Mul(contribGrowth)
		}
		if m > withdrawalStart && (m-withdrawalStart)%12 == 0 {
			withdrawFactor = withdrawFactor.Mul(withdrawGrowth)
		}

		var status domain.StatusCode

		contribution := decimal.Zero
		if m <= inputs.ContributionEndIndex {
			base := inputs.MonthlyContribution
			if m/12 != startYear {
				base = inputs.MonthlyContributionFuture
			}
			contribution = base.Mul(contribFactor)
		}
		if inputs.BalanceCapStopIndex != nil && m > *inputs.BalanceCapStopIndex {
			contribution = decimal.Zero
			status |= domain.StatusBalanceCapContributionsStopped
		}
		if inputs.PlanMaxStopIndex != nil && m > *inputs.PlanMaxStopIndex {
			contribution = decimal.Zero
			status |= domain.StatusPlanMaxContributionsStopped
		}

		withdrawal := decimal.Zero
		if m >= withdrawalStart {
			withdrawal = inputs.MonthlyWithdrawal.Mul(withdrawFactor)
			if inputs.ForcedWithdrawalStartIndex != nil && m >= *inputs.ForcedWithdrawalStartIndex {
				status |= domain.StatusForcedWithdrawalsApplied
			}
		}

		earnings := balance.Mul(rate)
		available := balance.Add(earnings).Add(contribution)
		if withdrawal.GreaterThan(available) {
			withdrawal = available
			status |= domain.StatusWithdrawalsLimitedToAvailableBalance
		}
		balance = available.Sub(withdrawal)

		row := domain.MonthlyRow{
			MonthIndex:    m,
			Contribution:  contribution,
			Withdrawal:    withdrawal,
			Earnings:      earnings,
			EndingBalance: balance,
			Status:        status,
		}

		year := m / 12
		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, domain.YearRow{Year: year})
		}
		years[len(years)-1].AddMonth(row)
	}

	return years
}
