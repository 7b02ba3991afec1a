// Package incentive implements the contribution-limit state machine for
// the earned-income incentive program ("Work to ABLE"). The account has a
// small base annual contribution ceiling; a beneficiary with earned income
// who does not participate in an employer retirement plan can raise it by
// up to the jurisdiction's poverty level.
//
// The machine is a pure transition function over an explicit state value.
// Callers (CLI, TUI, request handler) dispatch events and render the
// resulting state; nothing here performs I/O.
package incentive

import (
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Mode is the dialogue position of the incentive flow.
type Mode string

const (
	ModeIdle           Mode = "idle"
	ModeInitialPrompt  Mode = "initialPrompt"
	ModeIncomeQuestion Mode = "incomeQuestion"
	ModeNoPath         Mode = "noPath"
	ModeCombinedLimit  Mode = "combinedLimit"
)

// Status is the resolved eligibility verdict.
type Status string

const (
	StatusUnknown    Status = "unknown"
	StatusIneligible Status = "ineligible"
	StatusEligible   Status = "eligible"
)

// State is the full incentive-flow state for one planning session.
type State struct {
	Mode   Mode   `json:"mode"`
	Status Status `json:"status"`

	HasEarnedIncome            *bool           `json:"hasEarnedIncome,omitempty"`
	EarnedIncomeAmount         decimal.Decimal `json:"earnedIncomeAmount"`
	ParticipatesInEmployerPlan *bool           `json:"participatesInEmployerPlan,omitempty"`

	AdditionalAllowedAmount decimal.Decimal `json:"additionalAllowedAmount"`
	CombinedAnnualLimit     decimal.Decimal `json:"combinedAnnualLimit"`

	// Last planned annualized contribution amounts, kept so answering the
	// dialogue can re-check the plan against a newly raised limit.
	PlannedCurrentYear decimal.Decimal `json:"plannedCurrentYear"`
	PlannedFullYear    decimal.Decimal `json:"plannedFullYear"`

	// Adjusted latches after the auto-adjustment fires so it applies at
	// most once per breach episode. NoticeDismissed records that the user
	// acknowledged the adjustment notice.
	Adjusted        bool `json:"adjusted"`
	NoticeDismissed bool `json:"noticeDismissed"`
}

// NewState returns the idle, unknown-status starting state.
func NewState() State {
	return State{Mode: ModeIdle, Status: StatusUnknown}
}

// Event is a user or planner action dispatched into the flow.
type Event interface{ isEvent() }

// AmountChanged reports new planned annualized contribution amounts for
// the current calendar year and a full future year.
type AmountChanged struct {
	CurrentYearAnnualized decimal.Decimal
	FullYearAnnualized    decimal.Decimal
}

// PromptAccepted is an affirmative answer to the initial incentive prompt.
type PromptAccepted struct{}

// PromptDeclined is a negative answer to the initial incentive prompt.
type PromptDeclined struct{}

// EarnedIncomeAnswered answers the has-earned-income question.
type EarnedIncomeAnswered struct {
	Has    bool
	Amount decimal.Decimal
}

// EmployerPlanAnswered answers the employer-retirement-plan question.
type EmployerPlanAnswered struct {
	Participates bool
}

// NoticeDismissed acknowledges the auto-adjustment notice.
type NoticeDismissed struct{}

// Reset restarts the planning session.
type Reset struct{}

func (AmountChanged) isEvent()        {}
func (PromptAccepted) isEvent()       {}
func (PromptDeclined) isEvent()       {}
func (EarnedIncomeAnswered) isEvent() {}
func (EmployerPlanAnswered) isEvent() {}
func (NoticeDismissed) isEvent()      {}
func (Reset) isEvent()                {}

// Flow carries the read-only configuration the transitions need.
type Flow struct {
	BaseLimit    decimal.Decimal
	Config       *domain.RegulatoryConfig
	Jurisdiction string
}

// NewFlow creates a flow for one beneficiary's jurisdiction.
func NewFlow(cfg *domain.RegulatoryConfig, jurisdiction string) *Flow {
	return &Flow{BaseLimit: cfg.BaseContributionLimit, Config: cfg, Jurisdiction: jurisdiction}
}

// ApplicableLimit returns the limit the plan is currently held to: the
// combined limit once eligibility is established, otherwise the base
// ceiling.
func (f *Flow) ApplicableLimit(s State) decimal.Decimal {
	if s.Status == StatusEligible && s.CombinedAnnualLimit.GreaterThan(decimal.Zero) {
		return s.CombinedAnnualLimit
	}
	return f.BaseLimit
}

func (f *Flow) exceedsLimit(s State, limit decimal.Decimal) bool {
	return s.PlannedCurrentYear.GreaterThan(limit) || s.PlannedFullYear.GreaterThan(limit)
}

// Transition applies one event and returns the next state. It never
// mutates its argument.
func (f *Flow) Transition(s State, ev Event) State {
	switch ev := ev.(type) {
	case Reset:
		return NewState()

	case AmountChanged:
		s.PlannedCurrentYear = ev.CurrentYearAnnualized
		s.PlannedFullYear = ev.FullYearAnnualized

		if !f.exceedsLimit(s, f.BaseLimit) {
			// Breach resolved. With no adjustment notice pending the whole
			// episode resets, re-arming both the dialogue and the
			// auto-adjustment.
			if !s.Adjusted || s.NoticeDismissed {
				next := NewState()
				next.PlannedCurrentYear = s.PlannedCurrentYear
				next.PlannedFullYear = s.PlannedFullYear
				return next
			}
			s.Mode = ModeIdle
			return s
		}

		switch s.Status {
		case StatusUnknown:
			if s.Mode == ModeIdle {
				s.Mode = ModeInitialPrompt
			}
		case StatusIneligible:
			s.Mode = ModeNoPath
		case StatusEligible:
			if f.exceedsLimit(s, f.ApplicableLimit(s)) {
				s.Mode = ModeCombinedLimit
			} else {
				s.Mode = ModeIdle
			}
		}
		return s

	case PromptAccepted:
		if s.Mode == ModeInitialPrompt {
			s.Mode = ModeIncomeQuestion
		}
		return s

	case PromptDeclined:
		if s.Mode == ModeInitialPrompt {
			s.Status = StatusIneligible
			s.Mode = ModeNoPath
		}
		return s

	case EarnedIncomeAnswered:
		if s.Mode != ModeIncomeQuestion {
			return s
		}
		has := ev.Has
		s.HasEarnedIncome = &has
		s.EarnedIncomeAmount = ev.Amount
		if !has || ev.Amount.LessThanOrEqual(decimal.Zero) {
			s.Status = StatusIneligible
			s.Mode = ModeNoPath
		}
		return s

	case EmployerPlanAnswered:
		if s.Mode != ModeIncomeQuestion || s.HasEarnedIncome == nil || !*s.HasEarnedIncome {
			return s
		}
		participates := ev.Participates
		s.ParticipatesInEmployerPlan = &participates
		if participates {
			// The incentive is unavailable to employer retirement-plan
			// participants.
			s.Status = StatusIneligible
			s.Mode = ModeNoPath
			return s
		}
		s.Status = StatusEligible
		poverty := f.Config.PovertyLevelFor(f.Jurisdiction)
		s.AdditionalAllowedAmount = decimal.Min(s.EarnedIncomeAmount, poverty)
		s.CombinedAnnualLimit = f.BaseLimit.Add(s.AdditionalAllowedAmount)
		if f.exceedsLimit(s, s.CombinedAnnualLimit) {
			s.Mode = ModeCombinedLimit
		} else {
			s.Mode = ModeIdle
		}
		return s

	case NoticeDismissed:
		s.NoticeDismissed = true
		return s
	}
	return s
}

// Adjustment is the result of the auto-adjustment rule.
type Adjustment struct {
	Applied        bool
	MonthlyCurrent decimal.Decimal // limit spread over the remaining months of this year
	MonthlyFuture  decimal.Decimal // limit spread over 12 months
}

// AutoAdjust caps the user's monthly contribution inputs down to the
// applicable limit once a breach has routed the flow to noPath or
// combinedLimit. It fires at most once per breach episode; the returned
// state latches Adjusted so a second call is a no-op until the episode
// resets.
func (f *Flow) AutoAdjust(s State, remainingMonthsInYear int) (State, Adjustment) {
	if s.Adjusted || (s.Mode != ModeNoPath && s.Mode != ModeCombinedLimit) {
		return s, Adjustment{}
	}
	if remainingMonthsInYear < 1 {
		remainingMonthsInYear = 1
	}
	limit := f.ApplicableLimit(s)
	s.Adjusted = true
	s.NoticeDismissed = false
	adj := Adjustment{
		Applied:        true,
		MonthlyCurrent: limit.Div(decimal.NewFromInt(int64(remainingMonthsInYear))),
		MonthlyFuture:  limit.Div(decimal.NewFromInt(12)),
	}
	s.PlannedCurrentYear = limit
	s.PlannedFullYear = limit
	return s, adj
}

// GrowthBreach reports the first projection year an annual increase
// percentage compounds the contribution past the applicable limit.
type GrowthBreach struct {
	Year      int             // 1-based projection year
	Projected decimal.Decimal // annual contribution projected for that year
}

// DetectGrowthBreach walks forward year by year, multiplying the base
// annual contribution by (1+pct/100)^(year-1), and reports the first year
// the projection exceeds the currently applicable limit. A breach against
// the base ceiling while status is still unknown proactively opens the
// initial prompt, so future growth alone can trigger the eligibility
// dialogue even when today's contribution is compliant.
func (f *Flow) DetectGrowthBreach(s State, baseAnnual, increasePct decimal.Decimal, horizonYears int) (State, *GrowthBreach) {
	if increasePct.LessThanOrEqual(decimal.Zero) || baseAnnual.LessThanOrEqual(decimal.Zero) {
		return s, nil
	}
	limit := f.ApplicableLimit(s)
	factor := decimal.NewFromInt(1).Add(increasePct.Div(decimal.NewFromInt(100)))
	projected := baseAnnual
	for year := 1; year <= horizonYears; year++ {
		if year > 1 {
			projected = projected.Mul(factor)
		}
		if projected.GreaterThan(limit) {
			breach := &GrowthBreach{Year: year, Projected: projected}
			if s.Status == StatusUnknown && s.Mode == ModeIdle && limit.Equal(f.BaseLimit) {
				s.Mode = ModeInitialPrompt
			}
			return s, breach
		}
	}
	return s, nil
}
