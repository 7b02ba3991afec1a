package calculation

import (
	"github.com/ablecalc/ablecalc/internal/domain"
)

// Logger is the minimal logging contract the engine depends on. The CLI
// and TUI provide their own adapters; the default is a no-op.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger discards all log output.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// ProjectionResult bundles both simulated accounts for one set of inputs.
type ProjectionResult struct {
	Inputs     domain.ProjectionInputs `json:"inputs"` // post-normalization, with cap feedback applied
	Caps       CapReport               `json:"caps"`
	Advantaged []domain.YearRow        `json:"advantaged"`
	Taxable    []domain.YearRow        `json:"taxable"`
}

// CalculationEngine orchestrates the projection pipeline: trial run, cap
// enforcement, final schedule, and the taxable comparison baseline. It
// holds only read-only configuration, so a single engine is safe to reuse
// across calls.
type CalculationEngine struct {
	Config   *domain.RegulatoryConfig
	Benefits *BenefitCalculator
	Logger   Logger
}

// NewCalculationEngine creates an engine over a loaded regulatory table
// set.
func NewCalculationEngine(cfg *domain.RegulatoryConfig) *CalculationEngine {
	return &CalculationEngine{
		Config:   cfg,
		Benefits: NewBenefitCalculator(cfg),
		Logger:   NopLogger{},
	}
}

// SetLogger installs a logger; nil restores the no-op default.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// RunProjection runs the full pipeline for one filer. The plan maximum
// balance is resolved from plan metadata when the inputs leave it unset.
func (ce *CalculationEngine) RunProjection(inputs domain.ProjectionInputs, filer Filer) *ProjectionResult {
	inputs = inputs.Normalize()

	if inputs.PlanMaxBalance == nil && filer.PlanJurisdiction != "" {
		if plan, ok := ce.Config.PlanFor(filer.PlanJurisdiction); ok && plan.MaxBalance != nil {
			inputs.PlanMaxBalance = plan.MaxBalance
		}
	}

	inputs, caps := EnforceCaps(inputs, ce.Config.MeansTestedBalanceCap)
	if caps.BalanceCapStopIndex != nil {
		ce.Logger.Infof("balance cap reached at month %d; contributions stop, withdrawals forced from month %d",
			*caps.BalanceCapStopIndex, *caps.ForcedWithdrawalStartIndex)
	}
	if caps.PlanMaxStopIndex != nil {
		ce.Logger.Infof("plan maximum balance reached at month %d; contributions stop", *caps.PlanMaxStopIndex)
	}

	return &ProjectionResult{
		Inputs:     inputs,
		Caps:       caps,
		Advantaged: BuildSchedule(inputs),
		Taxable:    BuildTaxableSchedule(inputs, ce.Benefits, filer),
	}
}
