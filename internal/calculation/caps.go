package calculation

import (
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// CapReport records the months cap enforcement derived from the trial run.
// Nil fields mean the corresponding cap was never crossed.
type CapReport struct {
	BalanceCapStopIndex        *int `json:"balanceCapStopIndex,omitempty"`
	ForcedWithdrawalStartIndex *int `json:"forcedWithdrawalStartIndex,omitempty"`
	PlanMaxStopIndex           *int `json:"planMaxStopIndex,omitempty"`
}

// EnforceCaps runs an unconstrained trial schedule and locates the months
// where the means-tested balance cap and the plan maximum balance are
// first crossed. The resulting stop/start months are copied onto the
// returned inputs so the final schedule treats them as fixed, matching the
// rule that enforcement months are inputs, not emergent behavior.
func EnforceCaps(inputs domain.ProjectionInputs, meansTestedCap decimal.Decimal) (domain.ProjectionInputs, CapReport) {
	trial := inputs
	trial.BalanceCapStopIndex = nil
	trial.ForcedWithdrawalStartIndex = nil
	trial.PlanMaxStopIndex = nil

	var report CapReport

	checkBalanceCap := inputs.MeansTested && meansTestedCap.GreaterThan(decimal.Zero)
	checkPlanMax := inputs.PlanMaxBalance != nil && inputs.PlanMaxBalance.GreaterThan(decimal.Zero)
	if !checkBalanceCap && !checkPlanMax {
		return inputs, report
	}

	for _, year := range BuildSchedule(trial) {
		for _, row := range year.Months {
			if checkBalanceCap && report.BalanceCapStopIndex == nil && row.EndingBalance.GreaterThan(meansTestedCap) {
				k := row.MonthIndex
				forced := k + 1
				report.BalanceCapStopIndex = &k
				report.ForcedWithdrawalStartIndex = &forced
			}
			if checkPlanMax && report.PlanMaxStopIndex == nil && row.EndingBalance.GreaterThan(*inputs.PlanMaxBalance) {
				k := row.MonthIndex
				report.PlanMaxStopIndex = &k
			}
		}
		if (!checkBalanceCap || report.BalanceCapStopIndex != nil) &&
			(!checkPlanMax || report.PlanMaxStopIndex != nil) {
			break
		}
	}

	inputs.BalanceCapStopIndex = report.BalanceCapStopIndex
	inputs.ForcedWithdrawalStartIndex = report.ForcedWithdrawalStartIndex
	inputs.PlanMaxStopIndex = report.PlanMaxStopIndex
	return inputs, report
}
