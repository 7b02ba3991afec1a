package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPlannerInput(t *testing.T) {
	path := writeTempYAML(t, `
jurisdiction: PA
filing_status: single
agi: 42000
means_tested: true
annual_return: 0.06
horizon_years: 25
starting_balance: 5000
monthly_contribution: 400
monthly_contribution_future: 500
monthly_withdrawal: 0
contribution_increase_pct: 2
contribution_end_month: 12
contribution_end_year: 2040
saver_credit:
  has_tax_liability: true
  is_adult: true
  is_student: false
  is_dependent: false
`)

	parser := NewInputParser()
	input, err := parser.LoadPlannerInput(path)
	require.NoError(t, err)

	assert.Equal(t, "PA", input.Jurisdiction)
	assert.Equal(t, "single", input.FilingStatus)
	assert.True(t, input.AGI.Equal(decimal.NewFromInt(42000)))
	assert.True(t, input.MeansTested)
	require.NotNil(t, input.AnnualReturn)
	assert.True(t, input.AnnualReturn.Equal(decimal.NewFromFloat(0.06)))
	require.NotNil(t, input.HorizonYears)
	assert.Equal(t, 25, *input.HorizonYears)
	require.NotNil(t, input.MonthlyContributionFuture)
	assert.True(t, input.MonthlyContributionFuture.Equal(decimal.NewFromInt(500)))
	require.NotNil(t, input.ContributionEndMonth)
	assert.Equal(t, 12, *input.ContributionEndMonth)
	require.NotNil(t, input.SaverCredit.HasTaxLiability)
	assert.True(t, *input.SaverCredit.HasTaxLiability)
}

func TestLoadPlannerInput_MinimalDocument(t *testing.T) {
	path := writeTempYAML(t, `
jurisdiction: OH
filing_status: married_joint
`)

	input, err := NewInputParser().LoadPlannerInput(path)
	require.NoError(t, err)
	assert.Nil(t, input.AnnualReturn, "Omitted assumptions stay nil for the plan boundary to resolve")
	assert.Nil(t, input.HorizonYears)
	assert.Nil(t, input.MonthlyContributionFuture)
	assert.Nil(t, input.SaverCredit.HasTaxLiability, "Unanswered screens stay nil")
}

func TestLoadPlannerInput_Errors(t *testing.T) {
	parser := NewInputParser()

	_, err := parser.LoadPlannerInput(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "Missing file should error")

	_, err = parser.LoadPlannerInput(writeTempYAML(t, "jurisdiction: [unterminated"))
	assert.Error(t, err, "Malformed YAML should error")

	_, err = parser.LoadPlannerInput(writeTempYAML(t, "filing_status: single"))
	assert.ErrorContains(t, err, "jurisdiction", "Missing jurisdiction should fail validation")

	_, err = parser.LoadPlannerInput(writeTempYAML(t, "jurisdiction: PA"))
	assert.ErrorContains(t, err, "filing status")

	_, err = parser.LoadPlannerInput(writeTempYAML(t, `
jurisdiction: PA
filing_status: single
agi: -100
`))
	assert.ErrorContains(t, err, "agi")
}

func TestValidatePlannerInput_SoftProblemsPass(t *testing.T) {
	badMonth := 13
	input := &PlannerInput{
		Jurisdiction:         "PA",
		FilingStatus:         "single",
		ContributionEndMonth: &badMonth,
	}
	assert.NoError(t, NewInputParser().ValidatePlannerInput(input),
		"Calendar problems are degraded downstream, not rejected here")
}

func TestLoadRegulatoryConfig_PartialFileFilledFromDefaults(t *testing.T) {
	path := writeTempYAML(t, `
year: 2026
base_contribution_limit: 20000
`)

	cfg, err := NewInputParser().LoadRegulatoryConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2026, cfg.Year, "Explicit values win")
	assert.True(t, cfg.BaseContributionLimit.Equal(decimal.NewFromInt(20000)))

	def := DefaultRegulatoryConfig()
	assert.Equal(t, len(def.FederalBrackets), len(cfg.FederalBrackets), "Missing sections come from the embedded defaults")
	assert.NotEmpty(t, cfg.SaverCreditBrackets)
	assert.NotEmpty(t, cfg.Plans)
	assert.True(t, cfg.MeansTestedBalanceCap.Equal(def.MeansTestedBalanceCap))
	assert.True(t, cfg.PovertyLevelFallback.Equal(def.PovertyLevelFallback))
}

func TestLoadRegulatoryConfig_ExplicitSectionsNotOverwritten(t *testing.T) {
	path := writeTempYAML(t, `
state_benefits:
  VT:
    single:
      kind: credit
      cap: 2500
      rate: 0.10
`)

	cfg, err := NewInputParser().LoadRegulatoryConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.StateBenefits, 1, "A supplied section replaces the default wholesale")
	vt := cfg.StateBenefits["VT"]["single"]
	assert.Equal(t, domain.StateBenefitCredit, vt.Kind)
	assert.True(t, vt.Cap.Equal(decimal.NewFromInt(2500)))
	assert.True(t, vt.Rate.Equal(decimal.NewFromFloat(0.10)))
}

func TestDefaultRegulatoryConfig(t *testing.T) {
	cfg := DefaultRegulatoryConfig()

	assert.Equal(t, 2025, cfg.Year)
	assert.NotEmpty(t, cfg.FederalBrackets[domain.FilingSingle])
	assert.NotEmpty(t, cfg.FederalBrackets[domain.FilingMarriedJoint])
	assert.NotEmpty(t, cfg.SaverCreditBrackets[domain.FilingSingle])
	assert.False(t, cfg.BaseContributionLimit.IsZero())
	assert.False(t, cfg.MeansTestedBalanceCap.IsZero())
	assert.False(t, cfg.PovertyLevelFallback.IsZero())
	require.NotNil(t, cfg.DefaultAnnualReturn)
	assert.True(t, cfg.DefaultAnnualReturn.Equal(decimal.NewFromFloat(0.06)))
	require.NotNil(t, cfg.DefaultHorizonYears)
	assert.Equal(t, 30, *cfg.DefaultHorizonYears)

	// Bracket tables must be well formed for the progressive calculator.
	for status, brackets := range cfg.FederalBrackets {
		for i, b := range brackets {
			assert.True(t, b.Rate.GreaterThan(decimal.Zero), "%s bracket %d rate", status, i)
			if b.Max != nil {
				assert.True(t, b.Max.GreaterThan(b.Min), "%s bracket %d range", status, i)
			}
		}
	}
}
