package domain

import (
	"github.com/shopspring/decimal"
)

// Filing statuses recognized by the regulatory tables. Unknown statuses
// degrade to FilingSingle rather than failing.
const (
	FilingSingle          = "single"
	FilingMarriedJoint    = "married_filing_jointly"
	FilingMarriedSeparate = "married_filing_separately"
	FilingHeadOfHousehold = "head_of_household"
)

// TaxBracket is one marginal bracket of a progressive table. A nil Max
// means the bracket is open-ended.
type TaxBracket struct {
	Min  decimal.Decimal  `yaml:"min" json:"min"`
	Max  *decimal.Decimal `yaml:"max,omitempty" json:"max,omitempty"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate"`
}

// SaverCreditBracketKind discriminates how a saver's-credit bracket bounds
// AGI.
type SaverCreditBracketKind string

const (
	SaverCreditMax   SaverCreditBracketKind = "max"   // AGI <= Max
	SaverCreditRange SaverCreditBracketKind = "range" // Min <= AGI <= Max
	SaverCreditMin   SaverCreditBracketKind = "min"   // AGI >= Min
)

// SaverCreditBracket maps an AGI range to a credit rate. Brackets are
// evaluated in order; the first match wins.
type SaverCreditBracket struct {
	Kind SaverCreditBracketKind `yaml:"kind" json:"kind"`
	Min  decimal.Decimal        `yaml:"min,omitempty" json:"min,omitempty"`
	Max  decimal.Decimal        `yaml:"max,omitempty" json:"max,omitempty"`
	Rate decimal.Decimal        `yaml:"rate" json:"rate"`
}

// StateBenefitKind discriminates how a state rewards contributions.
type StateBenefitKind string

const (
	StateBenefitNone      StateBenefitKind = "none"
	StateBenefitDeduction StateBenefitKind = "deduction"
	StateBenefitCredit    StateBenefitKind = "credit"
)

// StateBenefitConfig describes one jurisdiction's contribution benefit for
// one filing status.
type StateBenefitConfig struct {
	Kind StateBenefitKind `yaml:"kind" json:"kind"`
	Cap  decimal.Decimal  `yaml:"cap,omitempty" json:"cap,omitempty"`   // zero = uncapped
	Rate decimal.Decimal  `yaml:"rate,omitempty" json:"rate,omitempty"` // credit percent as decimal
}

// SaverCreditAnswers holds the four eligibility screening answers. Nil
// means unanswered. Eligibility requires tax liability, age 18+, not a
// student, and not claimable as a dependent.
type SaverCreditAnswers struct {
	HasTaxLiability *bool `yaml:"has_tax_liability,omitempty" json:"hasTaxLiability,omitempty"`
	IsAdult         *bool `yaml:"is_adult,omitempty" json:"isAdult,omitempty"`
	IsStudent       *bool `yaml:"is_student,omitempty" json:"isStudent,omitempty"`
	IsDependent     *bool `yaml:"is_dependent,omitempty" json:"isDependent,omitempty"`
}

// Saver's-credit ineligibility reason codes surfaced at the plan boundary.
const (
	ReasonIncomeOrFilingStatus = "income_or_filing_status"
	ReasonNoTaxLiability       = "no_tax_liability"
	ReasonUnder18              = "under_18"
	ReasonStudent              = "student"
	ReasonDependent            = "dependent"
)

// PlanMetadata describes one state's ABLE plan.
type PlanMetadata struct {
	Jurisdiction string           `yaml:"jurisdiction" json:"jurisdiction"`
	PlanName     string           `yaml:"plan_name" json:"planName"`
	MaxBalance   *decimal.Decimal `yaml:"max_balance,omitempty" json:"maxBalance,omitempty"`
}

// RegulatoryConfig is the full read-only table set the calculators consume.
// It is loaded once at startup and never mutated.
type RegulatoryConfig struct {
	Year int `yaml:"year" json:"year"`

	// Federal progressive brackets keyed by filing status.
	FederalBrackets map[string][]TaxBracket `yaml:"federal_brackets" json:"federalBrackets"`

	// State progressive brackets keyed by jurisdiction, then filing
	// status. A jurisdiction with a flat tax carries a single open-ended
	// bracket.
	StateBrackets map[string]map[string][]TaxBracket `yaml:"state_brackets" json:"stateBrackets"`

	// Saver's-credit rate brackets and the contribution amount eligible
	// for the credit, both keyed by filing status.
	SaverCreditBrackets map[string][]SaverCreditBracket `yaml:"saver_credit_brackets" json:"saverCreditBrackets"`
	SaverCreditLimits   map[string]decimal.Decimal      `yaml:"saver_credit_limits" json:"saverCreditLimits"`

	// State contribution benefits keyed by jurisdiction, then filing
	// status ("single" is the documented fallback).
	StateBenefits map[string]map[string]StateBenefitConfig `yaml:"state_benefits" json:"stateBenefits"`

	// BaseContributionLimit is the annual ABLE contribution ceiling before
	// any earned-income increase.
	BaseContributionLimit decimal.Decimal `yaml:"base_contribution_limit" json:"baseContributionLimit"`

	// MeansTestedBalanceCap is the balance above which a means-tested
	// beneficiary must stop contributing and start withdrawing.
	MeansTestedBalanceCap decimal.Decimal `yaml:"means_tested_balance_cap" json:"meansTestedBalanceCap"`

	// PovertyLevels keyed by jurisdiction, with PovertyLevelFallback used
	// when a jurisdiction has no entry.
	PovertyLevels        map[string]decimal.Decimal `yaml:"poverty_levels" json:"povertyLevels"`
	PovertyLevelFallback decimal.Decimal            `yaml:"poverty_level_fallback" json:"povertyLevelFallback"`

	Plans map[string]PlanMetadata `yaml:"plans" json:"plans"`

	// Client-level defaults for resolvable assumptions.
	DefaultAnnualReturn *decimal.Decimal `yaml:"default_annual_return,omitempty" json:"defaultAnnualReturn,omitempty"`
	DefaultHorizonYears *int             `yaml:"default_horizon_years,omitempty" json:"defaultHorizonYears,omitempty"`
}

// FederalBracketsFor returns the federal bracket table for a filing status,
// degrading to single when the status is unknown.
func (rc *RegulatoryConfig) FederalBracketsFor(filingStatus string) []TaxBracket {
	if b, ok := rc.FederalBrackets[filingStatus]; ok {
		return b
	}
	return rc.FederalBrackets[FilingSingle]
}

// StateBracketsFor returns the state bracket table for a jurisdiction and
// filing status. Missing jurisdictions yield nil (no state income tax);
// missing filing statuses degrade to single.
func (rc *RegulatoryConfig) StateBracketsFor(jurisdiction, filingStatus string) []TaxBracket {
	byStatus, ok := rc.StateBrackets[jurisdiction]
	if !ok {
		return nil
	}
	if b, ok := byStatus[filingStatus]; ok {
		return b
	}
	return byStatus[FilingSingle]
}

// StateBenefitFor returns the contribution benefit config for a
// jurisdiction and filing status, falling back to the jurisdiction's
// single-filer entry, then to none.
func (rc *RegulatoryConfig) StateBenefitFor(jurisdiction, filingStatus string) StateBenefitConfig {
	byStatus, ok := rc.StateBenefits[jurisdiction]
	if !ok {
		return StateBenefitConfig{Kind: StateBenefitNone}
	}
	if b, ok := byStatus[filingStatus]; ok {
		return b
	}
	if b, ok := byStatus[FilingSingle]; ok {
		return b
	}
	return StateBenefitConfig{Kind: StateBenefitNone}
}

// PovertyLevelFor returns the poverty-level amount for a jurisdiction,
// degrading to the fallback entry.
func (rc *RegulatoryConfig) PovertyLevelFor(jurisdiction string) decimal.Decimal {
	if lvl, ok := rc.PovertyLevels[jurisdiction]; ok {
		return lvl
	}
	return rc.PovertyLevelFallback
}

// PlanFor returns the plan metadata for a jurisdiction and whether an
// entry exists.
func (rc *RegulatoryConfig) PlanFor(jurisdiction string) (PlanMetadata, bool) {
	p, ok := rc.Plans[jurisdiction]
	return p, ok
}
