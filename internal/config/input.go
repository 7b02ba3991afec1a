package config

import (
	"fmt"
	"os"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of planner and regulatory configuration
// files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// PlannerInput is the user-supplied scenario document.
type PlannerInput struct {
	Jurisdiction     string `yaml:"jurisdiction"`
	PlanJurisdiction string `yaml:"plan_jurisdiction,omitempty"`
	FilingStatus     string `yaml:"filing_status"`

	AGI         decimal.Decimal `yaml:"agi"`
	MeansTested bool            `yaml:"means_tested"`

	AnnualReturn *decimal.Decimal `yaml:"annual_return,omitempty"`
	HorizonYears *int             `yaml:"horizon_years,omitempty"`

	StartingBalance           decimal.Decimal  `yaml:"starting_balance"`
	MonthlyContribution       decimal.Decimal  `yaml:"monthly_contribution"`
	MonthlyContributionFuture *decimal.Decimal `yaml:"monthly_contribution_future,omitempty"`
	MonthlyWithdrawal         decimal.Decimal  `yaml:"monthly_withdrawal"`

	ContributionIncreasePct decimal.Decimal `yaml:"contribution_increase_pct"`
	WithdrawalIncreasePct   decimal.Decimal `yaml:"withdrawal_increase_pct"`

	ContributionEndMonth *int `yaml:"contribution_end_month,omitempty"` // 1-12
	ContributionEndYear  *int `yaml:"contribution_end_year,omitempty"`
	WithdrawalStartMonth *int `yaml:"withdrawal_start_month,omitempty"`
	WithdrawalStartYear  *int `yaml:"withdrawal_start_year,omitempty"`

	SaverCredit domain.SaverCreditAnswers `yaml:"saver_credit,omitempty"`
}

// LoadPlannerInput loads and validates a scenario file.
func (ip *InputParser) LoadPlannerInput(filename string) (*PlannerInput, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var input PlannerInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidatePlannerInput(&input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &input, nil
}

// ValidatePlannerInput checks the hard requirements of a scenario file.
// Soft problems (out-of-range horizon, bad month/year pairs) are left for
// the plan boundary, which degrades them with notes instead of failing.
func (ip *InputParser) ValidatePlannerInput(input *PlannerInput) error {
	if input.Jurisdiction == "" {
		return fmt.Errorf("jurisdiction is required")
	}
	if input.FilingStatus == "" {
		return fmt.Errorf("filing status is required")
	}
	if input.AGI.LessThan(decimal.Zero) {
		return fmt.Errorf("agi cannot be negative")
	}
	return nil
}

// LoadRegulatoryConfig loads the regulatory tables from a YAML file and
// fills any missing sections from the embedded defaults, so a partial
// table set degrades instead of failing.
func (ip *InputParser) LoadRegulatoryConfig(filename string) (*domain.RegulatoryConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var cfg domain.RegulatoryConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyRegulatoryDefaults(&cfg)
	return &cfg, nil
}

// applyRegulatoryDefaults fills missing sections from the embedded 2025
// tables.
func applyRegulatoryDefaults(cfg *domain.RegulatoryConfig) {
	def := DefaultRegulatoryConfig()
	if cfg.Year == 0 {
		cfg.Year = def.Year
	}
	if len(cfg.FederalBrackets) == 0 {
		cfg.FederalBrackets = def.FederalBrackets
	}
	if len(cfg.StateBrackets) == 0 {
		cfg.StateBrackets = def.StateBrackets
	}
	if len(cfg.SaverCreditBrackets) == 0 {
		cfg.SaverCreditBrackets = def.SaverCreditBrackets
	}
	if len(cfg.SaverCreditLimits) == 0 {
		cfg.SaverCreditLimits = def.SaverCreditLimits
	}
	if len(cfg.StateBenefits) == 0 {
		cfg.StateBenefits = def.StateBenefits
	}
	if cfg.BaseContributionLimit.IsZero() {
		cfg.BaseContributionLimit = def.BaseContributionLimit
	}
	if cfg.MeansTestedBalanceCap.IsZero() {
		cfg.MeansTestedBalanceCap = def.MeansTestedBalanceCap
	}
	if len(cfg.PovertyLevels) == 0 {
		cfg.PovertyLevels = def.PovertyLevels
	}
	if cfg.PovertyLevelFallback.IsZero() {
		cfg.PovertyLevelFallback = def.PovertyLevelFallback
	}
	if len(cfg.Plans) == 0 {
		cfg.Plans = def.Plans
	}
}
