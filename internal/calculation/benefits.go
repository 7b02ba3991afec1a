package calculation

import (
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// BENEFIT CALCULATION ASSUMPTIONS:
//
// 1. Federal and state tax liability is computed from AGI and filing
//    status alone. Other credits or deductions a filer may have are out of
//    scope, so the liability caps below are approximations in the filer's
//    favor of simplicity, not accuracy.
//
// 2. Benefits never exceed the liability they offset: a filer with zero
//    pre-benefit liability gets a zero benefit regardless of contribution.
//
// 3. Missing filing-status entries degrade to the single-filer tables.

// BenefitCalculator computes federal saver's-credit and state
// deduction/credit amounts from the regulatory tables.
type BenefitCalculator struct {
	Config *domain.RegulatoryConfig
}

// NewBenefitCalculator creates a benefit calculator over a loaded table set.
func NewBenefitCalculator(cfg *domain.RegulatoryConfig) *BenefitCalculator {
	return &BenefitCalculator{Config: cfg}
}

// FederalTaxLiability returns the progressive federal tax on AGI for the
// filing status.
func (bc *BenefitCalculator) FederalTaxLiability(agi decimal.Decimal, filingStatus string) decimal.Decimal {
	return ComputeProgressiveTax(agi, bc.Config.FederalBracketsFor(filingStatus))
}

// StateTaxLiability returns the progressive state tax on income for the
// jurisdiction and filing status. Jurisdictions without a bracket table
// owe nothing.
func (bc *BenefitCalculator) StateTaxLiability(jurisdiction, filingStatus string, income decimal.Decimal) decimal.Decimal {
	brackets := bc.Config.StateBracketsFor(jurisdiction, filingStatus)
	if len(brackets) == 0 {
		return decimal.Zero
	}
	return ComputeProgressiveTax(income, brackets)
}

// SaverCreditRate returns the credit rate for the filer's AGI, or zero
// when AGI falls outside every defined bracket.
func (bc *BenefitCalculator) SaverCreditRate(agi decimal.Decimal, filingStatus string) decimal.Decimal {
	brackets, ok := bc.Config.SaverCreditBrackets[filingStatus]
	if !ok {
		brackets = bc.Config.SaverCreditBrackets[domain.FilingSingle]
	}
	for _, b := range brackets {
		switch b.Kind {
		case domain.SaverCreditMax:
			if agi.LessThanOrEqual(b.Max) {
				return b.Rate
			}
		case domain.SaverCreditRange:
			if agi.GreaterThanOrEqual(b.Min) && agi.LessThanOrEqual(b.Max) {
				return b.Rate
			}
		case domain.SaverCreditMin:
			if agi.GreaterThanOrEqual(b.Min) {
				return b.Rate
			}
		}
	}
	return decimal.Zero
}

// FederalSaverCredit returns the saver's credit for a year of
// contributions: the rate-matched share of the contribution-eligible
// amount, capped at the filer's federal liability.
func (bc *BenefitCalculator) FederalSaverCredit(agi decimal.Decimal, filingStatus string, yearlyContribution decimal.Decimal) decimal.Decimal {
	if yearlyContribution.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := bc.SaverCreditRate(agi, filingStatus)
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	eligible := yearlyContribution
	limit, ok := bc.Config.SaverCreditLimits[filingStatus]
	if !ok {
		limit = bc.Config.SaverCreditLimits[domain.FilingSingle]
	}
	if limit.GreaterThan(decimal.Zero) && eligible.GreaterThan(limit) {
		eligible = limit
	}

	credit := eligible.Mul(rate)
	liability := bc.FederalTaxLiability(agi, filingStatus)
	if credit.GreaterThan(liability) {
		credit = liability
	}
	return credit
}

// StateBenefit returns the jurisdiction's contribution benefit for a year
// of contributions. Credits are a rate on the capped contribution; a
// deduction is valued as the state-tax delta it produces. Either way the
// benefit is capped at the pre-benefit state liability.
func (bc *BenefitCalculator) StateBenefit(jurisdiction, filingStatus string, agi, contribution decimal.Decimal) decimal.Decimal {
	if contribution.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	cfg := bc.Config.StateBenefitFor(jurisdiction, filingStatus)
	if cfg.Kind == domain.StateBenefitNone {
		return decimal.Zero
	}

	liability := bc.StateTaxLiability(jurisdiction, filingStatus, agi)
	if liability.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	switch cfg.Kind {
	case domain.StateBenefitCredit:
		base := contribution
		if cfg.Cap.GreaterThan(decimal.Zero) && base.GreaterThan(cfg.Cap) {
			base = cfg.Cap
		}
		benefit := base.Mul(cfg.Rate)
		if benefit.GreaterThan(liability) {
			benefit = liability
		}
		return benefit

	case domain.StateBenefitDeduction:
		deduction := contribution
		if cfg.Cap.GreaterThan(decimal.Zero) && deduction.GreaterThan(cfg.Cap) {
			deduction = cfg.Cap
		}
		if deduction.GreaterThan(agi) {
			deduction = agi
		}
		reduced := bc.StateTaxLiability(jurisdiction, filingStatus, agi.Sub(deduction))
		benefit := liability.Sub(reduced)
		if benefit.GreaterThan(liability) {
			benefit = liability
		}
		if benefit.LessThan(decimal.Zero) {
			benefit = decimal.Zero
		}
		return benefit
	}
	return decimal.Zero
}

// SaverCreditEligibility screens the four eligibility answers. An
// unanswered question counts against eligibility. Reasons are returned in
// screening order.
func (bc *BenefitCalculator) SaverCreditEligibility(answers domain.SaverCreditAnswers) (bool, []string) {
	var reasons []string
	if answers.HasTaxLiability == nil || !*answers.HasTaxLiability {
		reasons = append(reasons, domain.ReasonNoTaxLiability)
	}
	if answers.IsAdult == nil || !*answers.IsAdult {
		reasons = append(reasons, domain.ReasonUnder18)
	}
	if answers.IsStudent == nil || *answers.IsStudent {
		reasons = append(reasons, domain.ReasonStudent)
	}
	if answers.IsDependent == nil || *answers.IsDependent {
		reasons = append(reasons, domain.ReasonDependent)
	}
	return len(reasons) == 0, reasons
}
