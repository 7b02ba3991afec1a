package integration

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ablecalc/ablecalc/internal/calculation"
	"github.com/ablecalc/ablecalc/internal/config"
	"github.com/ablecalc/ablecalc/internal/output"
	"github.com/ablecalc/ablecalc/internal/plan"
	"github.com/ablecalc/ablecalc/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

// runPipeline exercises the full path a CLI invocation takes: scenario
// file -> plan boundary -> engine -> windowed report.
func runPipeline(t *testing.T, scenario string, window report.Window) (*plan.Response, *report.Report) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o644))

	parser := config.NewInputParser()
	input, err := parser.LoadPlannerInput(path)
	require.NoError(t, err)

	cfg := config.DefaultRegulatoryConfig()

	req := plan.Request{
		Jurisdiction:     input.Jurisdiction,
		PlanJurisdiction: input.PlanJurisdiction,
		FilingStatus:     input.FilingStatus,
		AGI:              input.AGI.InexactFloat64(),
		MeansTested:      input.MeansTested,
		SaverCredit:      input.SaverCredit,
		Projection: &plan.ProjectionRequest{
			StartingBalance:      input.StartingBalance.InexactFloat64(),
			MonthlyContribution:  input.MonthlyContribution.InexactFloat64(),
			MonthlyWithdrawal:    input.MonthlyWithdrawal.InexactFloat64(),
			WithdrawalStartMonth: input.WithdrawalStartMonth,
			WithdrawalStartYear:  input.WithdrawalStartYear,
		},
	}
	if input.AnnualReturn != nil {
		req.AnnualReturnOverride = floatPtr(input.AnnualReturn.InexactFloat64())
	}
	if input.HorizonYears != nil {
		req.HorizonYearsOverride = input.HorizonYears
	}

	resp, err := plan.Handle(req, cfg, testNow)
	require.NoError(t, err)
	require.NotNil(t, resp.Inputs)

	engine := calculation.NewCalculationEngine(cfg)
	result := engine.RunProjection(*resp.Inputs, resp.Filer)
	return resp, report.Build(result, engine.Benefits, resp.Filer, window)
}

const growthScenario = `
jurisdiction: PA
filing_status: single
agi: 23000
annual_return: 0.05
horizon_years: 10
monthly_contribution: 500
saver_credit:
  has_tax_liability: true
  is_adult: true
  is_student: false
  is_dependent: false
`

func TestPipeline_GrowthScenarioMatchesClosedForm(t *testing.T) {
	resp, rep := runPipeline(t, growthScenario, report.WindowMax)

	assert.Equal(t, plan.SourceOverride, resp.AnnualReturn.Source)
	assert.True(t, resp.CreditEligible)
	assert.Equal(t, 10, rep.MaxWindowYears)
	require.Len(t, rep.Advantaged, 10)

	// 120 deposits of 500 at the compound monthly equivalent of 5%/yr.
	r, _ := calculation.MonthlyRate(resp.AnnualReturn.Value).Float64()
	expected := 500 * (math.Pow(1+r, 120) - 1) / r
	got, _ := rep.Advantaged[9].EndingBalance.Float64()
	assert.InDelta(t, expected, got, 0.05, "Ending balance should match the closed-form annuity value")

	// PA has a flat income tax, so the ordinary account must trail.
	taxableEnd, _ := rep.Taxable[9].EndingBalance.Float64()
	assert.Less(t, taxableEnd, got, "Taxable account should trail the advantaged one")

	// 6000/year contributed, credit limit 2000 at the 50% rate for AGI 23000.
	firstYear := rep.Advantaged[0]
	credit, _ := firstYear.CreditAmount.Float64()
	assert.InDelta(t, 1000, credit, 0.01, "Saver's credit = min(6000, 2000) * 0.50")
	assert.False(t, firstYear.StateBenefitAmount.IsZero(), "PA deduction benefit expected")
}

func TestPipeline_MeansTestedCapEngages(t *testing.T) {
	scenario := `
jurisdiction: PA
filing_status: single
agi: 23000
means_tested: true
annual_return: 0.0
horizon_years: 10
starting_balance: 99000
monthly_contribution: 1000
`
	resp, rep := runPipeline(t, scenario, report.WindowMax)
	require.NotNil(t, resp.Inputs)

	engine := calculation.NewCalculationEngine(config.DefaultRegulatoryConfig())
	result := engine.RunProjection(*resp.Inputs, resp.Filer)
	require.NotNil(t, result.Caps.BalanceCapStopIndex, "99000 + 1000/month crosses the 100000 cap")
	k := *result.Caps.BalanceCapStopIndex

	for _, y := range rep.Advantaged {
		for _, m := range y.Months {
			if m.MonthIndex > k {
				assert.True(t, m.Contribution.IsZero(), "Contributions must stop past the cap month (month %d)", m.MonthIndex)
			}
		}
	}
}

func TestPipeline_WithdrawalDepletionShortensReport(t *testing.T) {
	scenario := `
jurisdiction: PA
filing_status: single
agi: 23000
annual_return: 0.0
horizon_years: 30
starting_balance: 24000
monthly_withdrawal: 1000
`
	_, rep := runPipeline(t, scenario, report.WindowMax)

	require.NotNil(t, rep.DepletionMonth, "24000 at 1000/month depletes in two years")
	assert.Equal(t, *rep.DepletionMonth, rep.EffectiveEndIndex)
	assert.LessOrEqual(t, rep.MaxWindowYears, 4, "Window should collapse to the depleted span")
}

func TestPipeline_FormatterOutputs(t *testing.T) {
	_, rep := runPipeline(t, growthScenario, report.Window(5))

	table, err := output.ByName("table")
	require.NoError(t, err)
	rendered, err := table.Format(rep)
	require.NoError(t, err)
	assert.Contains(t, string(rendered), "2025", "Table should list projection years")

	csvFmt, err := output.ByName("csv")
	require.NoError(t, err)
	rendered, err = csvFmt.Format(rep)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(rendered)), "\n")
	assert.Len(t, lines, 6, "Header plus five window years")

	jsonFmt, err := output.ByName("json")
	require.NoError(t, err)
	rendered, err = jsonFmt.Format(rep)
	require.NoError(t, err)
	var decoded report.Report
	require.NoError(t, json.Unmarshal(rendered, &decoded), "JSON output should round-trip")
	assert.Equal(t, rep.WindowYears, decoded.WindowYears)

	pdfFmt, err := output.ByName("pdf")
	require.NoError(t, err)
	rendered, err = pdfFmt.Format(rep)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(rendered), "%PDF"), "PDF output should carry the magic header")

	_, err = output.ByName("xml")
	assert.Error(t, err, "Unknown formats should be rejected")
}
