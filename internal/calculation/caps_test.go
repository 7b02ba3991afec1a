package calculation

import (
	"testing"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capInputs() domain.ProjectionInputs {
	return domain.ProjectionInputs{
		StartMonthIndex:           startIdx,
		HorizonEndIndex:           startIdx + 59,
		StartingBalance:           decimal.NewFromInt(95000),
		MonthlyContribution:       decimal.NewFromInt(1000),
		MonthlyContributionFuture: decimal.NewFromInt(1000),
		MonthlyWithdrawal:         decimal.Zero,
		ContributionEndIndex:      startIdx + 59,
		WithdrawalStartIndex:      startIdx + 60,
		AnnualReturn:              decimal.Zero,
		MeansTested:               true,
	}
}

func TestEnforceCaps_BalanceCapStopsContributionsAndForcesWithdrawals(t *testing.T) {
	cap := decimal.NewFromInt(100000)
	inputs, rpt := EnforceCaps(capInputs(), cap)

	// 95000 + 1000/month crosses 100000 at the 6th month (month index +5).
	require.NotNil(t, rpt.BalanceCapStopIndex, "Cap crossing should be detected")
	k := *rpt.BalanceCapStopIndex
	assert.Equal(t, startIdx+5, k, "Crossing month")
	require.NotNil(t, rpt.ForcedWithdrawalStartIndex)
	assert.Equal(t, k+1, *rpt.ForcedWithdrawalStartIndex, "Forced withdrawals begin the month after")

	for _, m := range allMonths(BuildSchedule(inputs)) {
		if m.MonthIndex > k {
			assert.True(t, m.Contribution.IsZero(), "No contributions after the cap month (month %d)", m.MonthIndex)
			assert.True(t, m.Status.Has(domain.StatusBalanceCapContributionsStopped), "Stop flag expected (month %d)", m.MonthIndex)
		} else {
			assert.False(t, m.Status.Has(domain.StatusBalanceCapContributionsStopped), "No stop flag at or before the cap month (month %d)", m.MonthIndex)
		}
		if m.MonthIndex >= k+1 {
			assert.True(t, m.Status.Has(domain.StatusForcedWithdrawalsApplied), "Forced-withdrawal flag expected from month k+1 (month %d)", m.MonthIndex)
		}
	}
}

func TestEnforceCaps_ZeroForcedWithdrawalIsValid(t *testing.T) {
	inputs, rpt := EnforceCaps(capInputs(), decimal.NewFromInt(100000))
	require.NotNil(t, rpt.ForcedWithdrawalStartIndex)

	// Enforcement changes the start month, never the size: a configured
	// withdrawal of zero stays zero.
	for _, m := range allMonths(BuildSchedule(inputs)) {
		assert.True(t, m.Withdrawal.IsZero(), "Withdrawal amount should remain the configured zero")
	}
}

func TestEnforceCaps_NotMeansTested(t *testing.T) {
	inputs := capInputs()
	inputs.MeansTested = false
	_, rpt := EnforceCaps(inputs, decimal.NewFromInt(100000))
	assert.Nil(t, rpt.BalanceCapStopIndex, "Cap only applies to means-tested beneficiaries")
	assert.Nil(t, rpt.ForcedWithdrawalStartIndex)
}

func TestEnforceCaps_PlanMaxStopsContributionsOnly(t *testing.T) {
	inputs := capInputs()
	inputs.MeansTested = false
	planMax := decimal.NewFromInt(98000)
	inputs.PlanMaxBalance = &planMax

	inputs, rpt := EnforceCaps(inputs, decimal.Zero)
	require.NotNil(t, rpt.PlanMaxStopIndex, "Plan max crossing should be detected")
	assert.Nil(t, rpt.ForcedWithdrawalStartIndex, "Plan max never forces withdrawals")

	k := *rpt.PlanMaxStopIndex
	for _, m := range allMonths(BuildSchedule(inputs)) {
		if m.MonthIndex > k {
			assert.True(t, m.Contribution.IsZero(), "No contributions past the plan max (month %d)", m.MonthIndex)
			assert.True(t, m.Status.Has(domain.StatusPlanMaxContributionsStopped))
			assert.False(t, m.Status.Has(domain.StatusForcedWithdrawalsApplied))
		}
	}
}

func TestEnforceCaps_NeverCrossed(t *testing.T) {
	inputs := capInputs()
	inputs.StartingBalance = decimal.NewFromInt(1000)
	_, rpt := EnforceCaps(inputs, decimal.NewFromInt(10000000))
	assert.Nil(t, rpt.BalanceCapStopIndex)
	assert.Nil(t, rpt.PlanMaxStopIndex)
}
