package domain

import (
	"github.com/shopspring/decimal"
)

// StatusCode flags conditions the simulator attached to a month.
type StatusCode uint8

const (
	// StatusBalanceCapContributionsStopped marks months after the
	// means-tested balance cap halted contributions.
	StatusBalanceCapContributionsStopped StatusCode = 1 << iota
	// StatusPlanMaxContributionsStopped marks months after the plan's
	// maximum account balance halted contributions.
	StatusPlanMaxContributionsStopped
	// StatusForcedWithdrawalsApplied marks months where the means-test
	// rules forced withdrawals to begin.
	StatusForcedWithdrawalsApplied
	// StatusWithdrawalsLimitedToAvailableBalance marks months where the
	// requested withdrawal exceeded the balance and was reduced.
	StatusWithdrawalsLimitedToAvailableBalance
)

// Has reports whether all flags in mask are set.
func (s StatusCode) Has(mask StatusCode) bool { return s&mask == mask }

// MonthlyRow is one simulated month of an account.
type MonthlyRow struct {
	MonthIndex         int             `json:"monthIndex"` // absolute months since year 0
	Contribution       decimal.Decimal `json:"contribution"`
	Withdrawal         decimal.Decimal `json:"withdrawal"`
	Earnings           decimal.Decimal `json:"earnings"`
	EndingBalance      decimal.Decimal `json:"endingBalance"`
	FederalTax         decimal.Decimal `json:"federalTax"`
	StateTax           decimal.Decimal `json:"stateTax"`
	CreditAmount       decimal.Decimal `json:"creditAmount"`
	StateBenefitAmount decimal.Decimal `json:"stateBenefitAmount"`
	Status             StatusCode      `json:"status"`
}

// Year returns the calendar year the row falls in.
func (m MonthlyRow) Year() int { return m.MonthIndex / 12 }

// MonthOfYear returns the 1-based month within the calendar year.
func (m MonthlyRow) MonthOfYear() int { return m.MonthIndex%12 + 1 }

// IsDecember reports whether the row is the last month of its calendar year.
func (m MonthlyRow) IsDecember() bool { return m.MonthIndex%12 == 11 }

// YearRow aggregates the monthly rows sharing a calendar year.
// Partial first and last years carry fewer than 12 months.
type YearRow struct {
	Year               int             `json:"year"`
	Contributions      decimal.Decimal `json:"contributions"`
	Withdrawals        decimal.Decimal `json:"withdrawals"`
	Earnings           decimal.Decimal `json:"earnings"`
	FederalTax         decimal.Decimal `json:"federalTax"`
	StateTax           decimal.Decimal `json:"stateTax"`
	CreditAmount       decimal.Decimal `json:"creditAmount"`
	StateBenefitAmount decimal.Decimal `json:"stateBenefitAmount"`
	EndingBalance      decimal.Decimal `json:"endingBalance"` // last month's balance
	Months             []MonthlyRow    `json:"months"`
}

// AddMonth folds a monthly row into the year's totals.
func (y *YearRow) AddMonth(m MonthlyRow) {
	y.Contributions = y.Contributions.Add(m.Contribution)
	y.Withdrawals = y.Withdrawals.Add(m.Withdrawal)
	y.Earnings = y.Earnings.Add(m.Earnings)
	y.FederalTax = y.FederalTax.Add(m.FederalTax)
	y.StateTax = y.StateTax.Add(m.StateTax)
	y.CreditAmount = y.CreditAmount.Add(m.CreditAmount)
	y.StateBenefitAmount = y.StateBenefitAmount.Add(m.StateBenefitAmount)
	y.EndingBalance = m.EndingBalance
	y.Months = append(y.Months, m)
}

// MaxScheduleMonths bounds the simulated horizon so a malformed input can
// never produce unbounded work.
const MaxScheduleMonths = 900

// ProjectionInputs drives one run of the amortization engine.
type ProjectionInputs struct {
	StartMonthIndex int `json:"startMonthIndex"`
	HorizonEndIndex int `json:"horizonEndIndex"`

	StartingBalance           decimal.Decimal `json:"startingBalance"`
	MonthlyContribution       decimal.Decimal `json:"monthlyContribution"`       // current calendar year
	MonthlyContributionFuture decimal.Decimal `json:"monthlyContributionFuture"` // subsequent years
	MonthlyWithdrawal         decimal.Decimal `json:"monthlyWithdrawal"`

	ContributionIncreasePct decimal.Decimal `json:"contributionIncreasePct"` // percent, e.g. 2 for 2%/yr
	WithdrawalIncreasePct   decimal.Decimal `json:"withdrawalIncreasePct"`

	ContributionEndIndex int `json:"contributionEndIndex"`
	WithdrawalStartIndex int `json:"withdrawalStartIndex"`

	AnnualReturn decimal.Decimal `json:"annualReturn"` // decimal, e.g. 0.06

	PlanMaxBalance *decimal.Decimal `json:"planMaxBalance,omitempty"`
	MeansTested    bool             `json:"meansTested"`

	// Cap enforcement feedback from the trial run. When set they override
	// the natural contribution/withdrawal windows.
	BalanceCapStopIndex        *int `json:"balanceCapStopIndex,omitempty"`
	ForcedWithdrawalStartIndex *int `json:"forcedWithdrawalStartIndex,omitempty"`
	PlanMaxStopIndex           *int `json:"planMaxStopIndex,omitempty"`
}

// Normalize clamps malformed numeric fields to their defined degraded
// values. Negative money becomes zero; an inverted horizon collapses to a
// single month; the horizon is capped at MaxScheduleMonths.
func (p ProjectionInputs) Normalize() ProjectionInputs {
	clampMoney := func(d decimal.Decimal) decimal.Decimal {
		if d.LessThan(decimal.Zero) {
			return decimal.Zero
		}
		return d
	}
	p.StartingBalance = clampMoney(p.StartingBalance)
	p.MonthlyContribution = clampMoney(p.MonthlyContribution)
	p.MonthlyContributionFuture = clampMoney(p.MonthlyContributionFuture)
	p.MonthlyWithdrawal = clampMoney(p.MonthlyWithdrawal)
	if p.AnnualReturn.LessThan(decimal.NewFromInt(-1)) {
		p.AnnualReturn = decimal.Zero
	}
	if p.HorizonEndIndex < p.StartMonthIndex {
		p.HorizonEndIndex = p.StartMonthIndex
	}
	if p.HorizonEndIndex-p.StartMonthIndex+1 > MaxScheduleMonths {
		p.HorizonEndIndex = p.StartMonthIndex + MaxScheduleMonths - 1
	}
	return p
}

// Months returns the horizon length in months.
func (p ProjectionInputs) Months() int { return p.HorizonEndIndex - p.StartMonthIndex + 1 }
