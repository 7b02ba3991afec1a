package config

import (
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
)

// REGULATORY DEFAULT ASSUMPTIONS:
//
// 1. Federal brackets and saver's-credit thresholds are the 2025 figures
//    and are not inflation-indexed for future projection years.
//
// 2. State tables cover a handful of jurisdictions as shipped defaults;
//    a jurisdiction without a bracket table is treated as having no state
//    income tax, and one without a benefit entry as offering no
//    contribution benefit.
//
// 3. The means-tested balance cap reflects the SSI resource exclusion;
//    poverty levels use the prior-year federal guidelines (separate
//    figures for Alaska and Hawaii, continental figure as the fallback).

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func bracket(min, max, rate string) domain.TaxBracket {
	b := domain.TaxBracket{Min: dec(min), Rate: dec(rate)}
	if max != "" {
		b.Max = decPtr(max)
	}
	return b
}

// DefaultRegulatoryConfig returns the embedded 2025 table set used when no
// regulatory file is supplied or a section is missing.
func DefaultRegulatoryConfig() *domain.RegulatoryConfig {
	return &domain.RegulatoryConfig{
		Year: 2025,

		FederalBrackets: map[string][]domain.TaxBracket{
			domain.FilingSingle: {
				bracket("0", "11925", "0.10"),
				bracket("11926", "48475", "0.12"),
				bracket("48476", "103350", "0.22"),
				bracket("103351", "197300", "0.24"),
				bracket("197301", "250525", "0.32"),
				bracket("250526", "626350", "0.35"),
				bracket("626351", "", "0.37"),
			},
			domain.FilingMarriedJoint: {
				bracket("0", "23850", "0.10"),
				bracket("23851", "96950", "0.12"),
				bracket("96951", "206700", "0.22"),
				bracket("206701", "394600", "0.24"),
				bracket("394601", "501050", "0.32"),
				bracket("501051", "751600", "0.35"),
				bracket("751601", "", "0.37"),
			},
			domain.FilingHeadOfHousehold: {
				bracket("0", "17000", "0.10"),
				bracket("17001", "64850", "0.12"),
				bracket("64851", "103350", "0.22"),
				bracket("103351", "197300", "0.24"),
				bracket("197301", "250500", "0.32"),
				bracket("250501", "626350", "0.35"),
				bracket("626351", "", "0.37"),
			},
		},

		StateBrackets: map[string]map[string][]domain.TaxBracket{
			"PA": {
				domain.FilingSingle: {bracket("0", "", "0.0307")},
			},
			"OH": {
				domain.FilingSingle: {
					bracket("0", "26050", "0"),
					bracket("26051", "100000", "0.0275"),
					bracket("100001", "", "0.035"),
				},
			},
			"VA": {
				domain.FilingSingle: {
					bracket("0", "3000", "0.02"),
					bracket("3001", "5000", "0.03"),
					bracket("5001", "17000", "0.05"),
					bracket("17001", "", "0.0575"),
				},
			},
			"CA": {
				domain.FilingSingle: {
					bracket("0", "10756", "0.01"),
					bracket("10757", "25499", "0.02"),
					bracket("25500", "40245", "0.04"),
					bracket("40246", "55866", "0.06"),
					bracket("55867", "70606", "0.08"),
					bracket("70607", "360659", "0.093"),
					bracket("360660", "", "0.103"),
				},
			},
		},

		SaverCreditBrackets: map[string][]domain.SaverCreditBracket{
			domain.FilingSingle: {
				{Kind: domain.SaverCreditMax, Max: dec("23750"), Rate: dec("0.50")},
				{Kind: domain.SaverCreditRange, Min: dec("23751"), Max: dec("25500"), Rate: dec("0.20")},
				{Kind: domain.SaverCreditRange, Min: dec("25501"), Max: dec("39500"), Rate: dec("0.10")},
			},
			domain.FilingMarriedJoint: {
				{Kind: domain.SaverCreditMax, Max: dec("47500"), Rate: dec("0.50")},
				{Kind: domain.SaverCreditRange, Min: dec("47501"), Max: dec("51000"), Rate: dec("0.20")},
				{Kind: domain.SaverCreditRange, Min: dec("51001"), Max: dec("79000"), Rate: dec("0.10")},
			},
			domain.FilingHeadOfHousehold: {
				{Kind: domain.SaverCreditMax, Max: dec("35625"), Rate: dec("0.50")},
				{Kind: domain.SaverCreditRange, Min: dec("35626"), Max: dec("38250"), Rate: dec("0.20")},
				{Kind: domain.SaverCreditRange, Min: dec("38251"), Max: dec("59250"), Rate: dec("0.10")},
			},
		},

		SaverCreditLimits: map[string]decimal.Decimal{
			domain.FilingSingle:          dec("2000"),
			domain.FilingMarriedJoint:    dec("4000"),
			domain.FilingMarriedSeparate: dec("2000"),
			domain.FilingHeadOfHousehold: dec("2000"),
		},

		StateBenefits: map[string]map[string]domain.StateBenefitConfig{
			"PA": {
				domain.FilingSingle: {Kind: domain.StateBenefitDeduction, Cap: dec("19000")},
			},
			"OH": {
				domain.FilingSingle: {Kind: domain.StateBenefitDeduction, Cap: dec("4000")},
			},
			"VA": {
				domain.FilingSingle: {Kind: domain.StateBenefitDeduction, Cap: dec("2000")},
			},
			"OR": {
				domain.FilingSingle: {Kind: domain.StateBenefitCredit, Cap: dec("5000"), Rate: dec("0.05")},
			},
		},

		BaseContributionLimit: dec("19000"),
		MeansTestedBalanceCap: dec("100000"),

		PovertyLevels: map[string]decimal.Decimal{
			"AK": dec("18810"),
			"HI": dec("17310"),
		},
		PovertyLevelFallback: dec("15060"),

		Plans: map[string]domain.PlanMetadata{
			"OH": {Jurisdiction: "OH", PlanName: "STABLE Account", MaxBalance: decPtr("501000")},
			"PA": {Jurisdiction: "PA", PlanName: "PA ABLE", MaxBalance: decPtr("511758")},
			"VA": {Jurisdiction: "VA", PlanName: "ABLEnow", MaxBalance: decPtr("550000")},
			"CA": {Jurisdiction: "CA", PlanName: "CalABLE", MaxBalance: decPtr("529000")},
		},

		DefaultAnnualReturn: decPtr("0.06"),
		DefaultHorizonYears: intPtr(30),
	}
}

func intPtr(v int) *int { return &v }
