// Package plan is the structured request/response boundary in front of
// the calculators. It validates and normalizes a raw request, resolves
// jurisdiction metadata and assumptions, and reports problems as notes
// attached to the response; only a malformed payload is a hard error.
package plan

import (
	"fmt"
	"math"
	"time"

	"github.com/ablecalc/ablecalc/internal/calculation"
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Provenance tags where a resolved assumption came from.
type Provenance string

const (
	SourceOverride          Provenance = "override"
	SourceClientDefault     Provenance = "client-default"
	SourceFallbackDefault   Provenance = "fallback-default"
	SourceHardcodedFallback Provenance = "hardcoded-fallback"
)

// Hardcoded last-resort assumptions, used only when both the request and
// the regulatory config fail to supply a usable value.
const (
	fallbackAnnualReturn = 0.05
	fallbackHorizonYears = 20
)

const (
	minHorizonYears = 1
	maxHorizonYears = 75
)

// ProjectionRequest is the optional projection block of a request. Raw
// numbers arrive as float64 so non-finite values can be detected and
// clamped before any decimal math.
type ProjectionRequest struct {
	StartingBalance           float64  `json:"startingBalance"`
	MonthlyContribution       float64  `json:"monthlyContribution"`
	MonthlyContributionFuture *float64 `json:"monthlyContributionFuture,omitempty"`
	MonthlyWithdrawal         float64  `json:"monthlyWithdrawal"`
	ContributionIncreasePct   float64  `json:"contributionIncreasePct"`
	WithdrawalIncreasePct     float64  `json:"withdrawalIncreasePct"`
	ContributionEndMonth      *int     `json:"contributionEndMonth,omitempty"` // 1-12
	ContributionEndYear       *int     `json:"contributionEndYear,omitempty"`
	WithdrawalStartMonth      *int     `json:"withdrawalStartMonth,omitempty"`
	WithdrawalStartYear       *int     `json:"withdrawalStartYear,omitempty"`
}

// Request is the full planning request.
type Request struct {
	Jurisdiction     string  `json:"jurisdiction"`
	PlanJurisdiction string  `json:"planJurisdiction,omitempty"`
	FilingStatus     string  `json:"filingStatus"`
	AGI              float64 `json:"agi"`

	AnnualReturnOverride *float64 `json:"annualReturnOverride,omitempty"`
	HorizonYearsOverride *int     `json:"horizonYearsOverride,omitempty"`

	MeansTested bool                      `json:"meansTested"`
	SaverCredit domain.SaverCreditAnswers `json:"saverCredit"`

	Projection *ProjectionRequest `json:"projection,omitempty"`
}

// ResolvedReturn is the annual return assumption with its provenance.
type ResolvedReturn struct {
	Value  decimal.Decimal `json:"value"`
	Source Provenance      `json:"source"`
}

// ResolvedHorizon is the horizon assumption with its provenance.
type ResolvedHorizon struct {
	Years  int        `json:"years"`
	Source Provenance `json:"source"`
}

// Response echoes the normalized request plus every resolved lookup the
// display layer needs.
type Response struct {
	Jurisdiction     string `json:"jurisdiction"`
	PlanJurisdiction string `json:"planJurisdiction"`
	FilingStatus     string `json:"filingStatus"`

	AGI         decimal.Decimal `json:"agi"`
	MeansTested bool            `json:"meansTested"`

	Plan            *domain.PlanMetadata      `json:"plan,omitempty"`
	PovertyLevel    decimal.Decimal           `json:"povertyLevel"`
	StateBenefit    domain.StateBenefitConfig `json:"stateBenefit"`
	SaverCreditRate decimal.Decimal           `json:"saverCreditRate"`

	CreditEligible bool     `json:"creditEligible"`
	CreditReasons  []string `json:"creditReasons,omitempty"`

	AnnualReturn ResolvedReturn  `json:"annualReturn"`
	Horizon      ResolvedHorizon `json:"horizon"`
	WindowMonths int             `json:"windowMonths"`

	// Inputs is the validated projection window, nil when the request had
	// no projection block or the block was rejected.
	Inputs *domain.ProjectionInputs `json:"inputs,omitempty"`
	Filer  calculation.Filer        `json:"filer"`

	Notes []string `json:"notes,omitempty"`
}

// finiteOrZero clamps NaN, infinities, and negatives to zero.
func finiteOrZero(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// monthIndexOf converts a calendar month/year pair to an absolute month
// index (months since year 0).
func monthIndexOf(year, month int) int { return year*12 + month - 1 }

func validMonthYear(month, year *int) bool {
	if month == nil || year == nil {
		return false
	}
	return *month >= 1 && *month <= 12 && *year >= 1900 && *year <= 2100
}

// Handle validates and resolves a request against the regulatory tables.
// now anchors the projection's start month. A malformed payload (missing
// jurisdiction or filing status) is the only hard failure.
func Handle(req Request, cfg *domain.RegulatoryConfig, now time.Time) (*Response, error) {
	if cfg == nil {
		return nil, fmt.Errorf("regulatory configuration is required")
	}
	if req.Jurisdiction == "" {
		return nil, fmt.Errorf("jurisdiction is required")
	}
	if req.FilingStatus == "" {
		return nil, fmt.Errorf("filing status is required")
	}

	resp := &Response{
		Jurisdiction:     req.Jurisdiction,
		PlanJurisdiction: req.PlanJurisdiction,
		FilingStatus:     req.FilingStatus,
		AGI:              finiteOrZero(req.AGI),
		MeansTested:      req.MeansTested,
	}
	if resp.PlanJurisdiction == "" {
		resp.PlanJurisdiction = req.Jurisdiction
	}

	if _, ok := cfg.FederalBrackets[resp.FilingStatus]; !ok {
		resp.Notes = append(resp.Notes, fmt.Sprintf("unknown filing status %q; using single-filer tables", resp.FilingStatus))
	}

	if plan, ok := cfg.PlanFor(resp.PlanJurisdiction); ok {
		p := plan
		resp.Plan = &p
	} else {
		resp.Notes = append(resp.Notes, fmt.Sprintf("no plan metadata for jurisdiction %q", resp.PlanJurisdiction))
	}
	resp.PovertyLevel = cfg.PovertyLevelFor(resp.Jurisdiction)
	resp.StateBenefit = cfg.StateBenefitFor(resp.Jurisdiction, resp.FilingStatus)

	bc := calculation.NewBenefitCalculator(cfg)
	resp.SaverCreditRate = bc.SaverCreditRate(resp.AGI, resp.FilingStatus)
	resp.CreditEligible, resp.CreditReasons = bc.SaverCreditEligibility(req.SaverCredit)
	if resp.CreditEligible && resp.SaverCreditRate.IsZero() {
		resp.CreditEligible = false
		resp.CreditReasons = append(resp.CreditReasons, domain.ReasonIncomeOrFilingStatus)
	}

	resp.AnnualReturn = resolveReturn(req, cfg, &resp.Notes)
	resp.Horizon = resolveHorizon(req, cfg, &resp.Notes)
	resp.WindowMonths = resp.Horizon.Years * 12

	resp.Filer = calculation.Filer{
		Jurisdiction:     resp.Jurisdiction,
		PlanJurisdiction: resp.PlanJurisdiction,
		FilingStatus:     resp.FilingStatus,
		AGI:              resp.AGI,
	}

	if req.Projection != nil {
		resp.Inputs = buildInputs(req.Projection, resp, now, &resp.Notes)
	}

	return resp, nil
}

func resolveReturn(req Request, cfg *domain.RegulatoryConfig, notes *[]string) ResolvedReturn {
	if req.AnnualReturnOverride != nil {
		v := *req.AnnualReturnOverride
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > -1 && v <= 1 {
			return ResolvedReturn{Value: decimal.NewFromFloat(v), Source: SourceOverride}
		}
		*notes = append(*notes, "annual return override out of range; ignored")
	}
	if cfg.DefaultAnnualReturn != nil {
		v := *cfg.DefaultAnnualReturn
		if v.GreaterThan(decimal.NewFromInt(-1)) && v.LessThanOrEqual(decimal.NewFromInt(1)) {
			return ResolvedReturn{Value: v, Source: SourceClientDefault}
		}
		*notes = append(*notes, "configured default annual return out of range; using fallback")
		return ResolvedReturn{Value: decimal.NewFromFloat(fallbackAnnualReturn), Source: SourceHardcodedFallback}
	}
	return ResolvedReturn{Value: decimal.NewFromFloat(fallbackAnnualReturn), Source: SourceFallbackDefault}
}

func resolveHorizon(req Request, cfg *domain.RegulatoryConfig, notes *[]string) ResolvedHorizon {
	clamp := func(years int, source Provenance) ResolvedHorizon {
		if years < minHorizonYears {
			*notes = append(*notes, fmt.Sprintf("horizon clamped to %d year(s)", minHorizonYears))
			years = minHorizonYears
		}
		if years > maxHorizonYears {
			*notes = append(*notes, fmt.Sprintf("horizon clamped to %d years", maxHorizonYears))
			years = maxHorizonYears
		}
		return ResolvedHorizon{Years: years, Source: source}
	}
	if req.HorizonYearsOverride != nil {
		return clamp(*req.HorizonYearsOverride, SourceOverride)
	}
	if cfg.DefaultHorizonYears != nil {
		return clamp(*cfg.DefaultHorizonYears, SourceClientDefault)
	}
	return clamp(fallbackHorizonYears, SourceFallbackDefault)
}

// buildInputs converts the raw projection block into engine inputs. A bad
// month/year pair rejects the whole window with a note.
func buildInputs(p *ProjectionRequest, resp *Response, now time.Time, notes *[]string) *domain.ProjectionInputs {
	start := monthIndexOf(now.Year(), int(now.Month()))
	end := start + resp.WindowMonths - 1

	contributionEnd := end
	if p.ContributionEndMonth != nil || p.ContributionEndYear != nil {
		if !validMonthYear(p.ContributionEndMonth, p.ContributionEndYear) {
			*notes = append(*notes, "invalid contribution end month/year; projection window rejected")
			return nil
		}
		contributionEnd = monthIndexOf(*p.ContributionEndYear, *p.ContributionEndMonth)
	}

	// Without an explicit start, a nonzero withdrawal begins immediately
	// and a zero one never does.
	withdrawalStart := end + 1
	if p.WithdrawalStartMonth != nil || p.WithdrawalStartYear != nil {
		if !validMonthYear(p.WithdrawalStartMonth, p.WithdrawalStartYear) {
			*notes = append(*notes, "invalid withdrawal start month/year; projection window rejected")
			return nil
		}
		withdrawalStart = monthIndexOf(*p.WithdrawalStartYear, *p.WithdrawalStartMonth)
	} else if p.MonthlyWithdrawal > 0 {
		withdrawalStart = start
	}

	contribution := finiteOrZero(p.MonthlyContribution)
	future := contribution
	if p.MonthlyContributionFuture != nil {
		future = finiteOrZero(*p.MonthlyContributionFuture)
	}

	inputs := domain.ProjectionInputs{
		StartMonthIndex:           start,
		HorizonEndIndex:           end,
		StartingBalance:           finiteOrZero(p.StartingBalance),
		MonthlyContribution:       contribution,
		MonthlyContributionFuture: future,
		MonthlyWithdrawal:         finiteOrZero(p.MonthlyWithdrawal),
		ContributionIncreasePct:   finiteOrZero(p.ContributionIncreasePct),
		WithdrawalIncreasePct:     finiteOrZero(p.WithdrawalIncreasePct),
		ContributionEndIndex:      contributionEnd,
		WithdrawalStartIndex:      withdrawalStart,
		AnnualReturn:              resp.AnnualReturn.Value,
		MeansTested:               resp.MeansTested,
	}
	if resp.Plan != nil && resp.Plan.MaxBalance != nil {
		inputs.PlanMaxBalance = resp.Plan.MaxBalance
	}
	normalized := inputs.Normalize()
	return &normalized
}
