package calculation

import (
	"math"
	"testing"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startIdx = 2025 * 12 // January 2025

func baseInputs() domain.ProjectionInputs {
	return domain.ProjectionInputs{
		StartMonthIndex:           startIdx,
		HorizonEndIndex:           startIdx + 119, // 10 years
		StartingBalance:           decimal.Zero,
		MonthlyContribution:       decimal.NewFromInt(500),
		MonthlyContributionFuture: decimal.NewFromInt(500),
		MonthlyWithdrawal:         decimal.Zero,
		ContributionEndIndex:      startIdx + 119,
		WithdrawalStartIndex:      startIdx + 120, // never
		AnnualReturn:              decimal.NewFromFloat(0.05),
	}
}

func allMonths(years []domain.YearRow) []domain.MonthlyRow {
	var months []domain.MonthlyRow
	for _, y := range years {
		months = append(months, y.Months...)
	}
	return months
}

func TestMonthlyRate_CompoundNotNaive(t *testing.T) {
	rate := MonthlyRate(decimal.NewFromFloat(0.06))
	f, _ := rate.Float64()
	assert.InDelta(t, 0.0048675, f, 0.0000001, "Monthly rate should be the compound root, not 0.005")
}

func TestMonthlyRate_ZeroAndDegenerate(t *testing.T) {
	assert.True(t, MonthlyRate(decimal.Zero).IsZero(), "Zero annual return is zero monthly")
	assert.True(t, MonthlyRate(decimal.NewFromInt(-2)).IsZero(), "Returns below -100%% degrade to zero")
}

func TestBuildSchedule_ClosedFormAnnuity(t *testing.T) {
	years := BuildSchedule(baseInputs())
	require.Len(t, years, 10, "Ten calendar years expected")

	months := allMonths(years)
	require.Len(t, months, 120)

	r, _ := MonthlyRate(decimal.NewFromFloat(0.05)).Float64()
	expected := 500 * (math.Pow(1+r, 120) - 1) / r
	got, _ := months[119].EndingBalance.Float64()
	assert.InDelta(t, expected, got, 0.05, "Ending balance should match the closed-form annuity value")
}

func TestBuildSchedule_Idempotent(t *testing.T) {
	a := BuildSchedule(baseInputs())
	b := BuildSchedule(baseInputs())
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.True(t, a[i].EndingBalance.Equal(b[i].EndingBalance), "Identical inputs should be byte-identical (year %d)", a[i].Year)
		assert.Equal(t, len(a[i].Months), len(b[i].Months))
	}
}

func TestBuildSchedule_BalancesNeverNegative(t *testing.T) {
	inputs := baseInputs()
	inputs.StartingBalance = decimal.NewFromInt(1000)
	inputs.MonthlyContribution = decimal.NewFromInt(50)
	inputs.MonthlyContributionFuture = decimal.NewFromInt(50)
	inputs.MonthlyWithdrawal = decimal.NewFromInt(400)
	inputs.WithdrawalStartIndex = startIdx

	for _, m := range allMonths(BuildSchedule(inputs)) {
		assert.True(t, m.EndingBalance.GreaterThanOrEqual(decimal.Zero), "Balance must never go negative (month %d)", m.MonthIndex)
	}
}

func TestBuildSchedule_WithdrawalClampedAndFlagged(t *testing.T) {
	inputs := baseInputs()
	inputs.StartingBalance = decimal.NewFromInt(100)
	inputs.MonthlyContribution = decimal.Zero
	inputs.MonthlyContributionFuture = decimal.Zero
	inputs.MonthlyWithdrawal = decimal.NewFromInt(1000)
	inputs.WithdrawalStartIndex = startIdx
	inputs.AnnualReturn = decimal.Zero

	months := allMonths(BuildSchedule(inputs))
	first := months[0]
	assert.True(t, first.Withdrawal.Equal(decimal.NewFromInt(100)), "Withdrawal should be limited to available balance")
	assert.True(t, first.Status.Has(domain.StatusWithdrawalsLimitedToAvailableBalance), "Clamp should be flagged")
	assert.True(t, first.EndingBalance.IsZero())
}

func TestBuildSchedule_YearSumsMatchMonths(t *testing.T) {
	inputs := baseInputs()
	inputs.MonthlyWithdrawal = decimal.NewFromInt(100)
	inputs.WithdrawalStartIndex = startIdx + 60

	for _, y := range BuildSchedule(inputs) {
		contrib, withdraw, earnings := decimal.Zero, decimal.Zero, decimal.Zero
		for _, m := range y.Months {
			contrib = contrib.Add(m.Contribution)
			withdraw = withdraw.Add(m.Withdrawal)
			earnings = earnings.Add(m.Earnings)
		}
		assert.True(t, y.Contributions.Equal(contrib), "Year %d contributions mismatch", y.Year)
		assert.True(t, y.Withdrawals.Equal(withdraw), "Year %d withdrawals mismatch", y.Year)
		assert.True(t, y.Earnings.Equal(earnings), "Year %d earnings mismatch", y.Year)
		assert.True(t, y.EndingBalance.Equal(y.Months[len(y.Months)-1].EndingBalance), "Year %d ending balance should be last month's", y.Year)
	}
}

func TestBuildSchedule_AnnualContributionIncreaseCompounds(t *testing.T) {
	inputs := baseInputs()
	inputs.ContributionIncreasePct = decimal.NewFromInt(10)
	inputs.AnnualReturn = decimal.Zero

	months := allMonths(BuildSchedule(inputs))
	assert.True(t, months[0].Contribution.Equal(decimal.NewFromInt(500)), "Year 1 contribution unchanged")
	assert.True(t, months[12].Contribution.Equal(decimal.NewFromInt(550)), "Year 2 contribution up 10%%")
	// Compounding: 500 * 1.1^2 = 605, not 600.
	assert.True(t, months[24].Contribution.Equal(decimal.NewFromInt(605)), "Year 3 should compound, got %s", months[24].Contribution)
}

func TestBuildSchedule_ContributionWindowRespected(t *testing.T) {
	inputs := baseInputs()
	inputs.ContributionEndIndex = startIdx + 11

	months := allMonths(BuildSchedule(inputs))
	assert.False(t, months[11].Contribution.IsZero(), "Last window month contributes")
	assert.True(t, months[12].Contribution.IsZero(), "Months past the end do not contribute")
}

func TestBuildSchedule_ContributionEndBeforeStart(t *testing.T) {
	inputs := baseInputs()
	inputs.ContributionEndIndex = startIdx - 10

	for _, m := range allMonths(BuildSchedule(inputs)) {
		assert.True(t, m.Contribution.IsZero(), "Zero-length active window should contribute nothing")
	}
}

func TestBuildSchedule_HorizonHardCap(t *testing.T) {
	inputs := baseInputs()
	inputs.HorizonEndIndex = startIdx + 5000
	inputs.ContributionEndIndex = startIdx + 5000

	months := allMonths(BuildSchedule(inputs))
	assert.Equal(t, domain.MaxScheduleMonths, len(months), "Horizon should be capped at %d months", domain.MaxScheduleMonths)
}

func TestBuildSchedule_CurrentVsFutureYearContribution(t *testing.T) {
	inputs := baseInputs()
	inputs.MonthlyContribution = decimal.NewFromInt(300)
	inputs.MonthlyContributionFuture = decimal.NewFromInt(700)
	inputs.AnnualReturn = decimal.Zero

	months := allMonths(BuildSchedule(inputs))
	assert.True(t, months[0].Contribution.Equal(decimal.NewFromInt(300)), "Start-year months use the current-year amount")
	assert.True(t, months[11].Contribution.Equal(decimal.NewFromInt(300)))
	assert.True(t, months[12].Contribution.Equal(decimal.NewFromInt(700)), "Later years use the future-year amount")
}
