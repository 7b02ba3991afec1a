package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"time"

	"github.com/ablecalc/ablecalc/internal/calculation"
	"github.com/ablecalc/ablecalc/internal/config"
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/ablecalc/ablecalc/internal/incentive"
	"github.com/ablecalc/ablecalc/internal/output"
	"github.com/ablecalc/ablecalc/internal/plan"
	"github.com/ablecalc/ablecalc/internal/report"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "ablecalc %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

var rootCmd = &cobra.Command{
	Use:   "ablecalc",
	Short: "ABLE Account Planning Calculator CLI",
	Long:  "Projection and contribution-limit planning for tax-advantaged disability savings accounts",
}

// loadRegulatory loads the regulatory tables, falling back to the
// embedded defaults when no file is given.
func loadRegulatory(path string) (*domain.RegulatoryConfig, error) {
	if path == "" {
		return config.DefaultRegulatoryConfig(), nil
	}
	return config.NewInputParser().LoadRegulatoryConfig(path)
}

// buildRequest maps a planner input file onto the plan boundary request.
func buildRequest(in *config.PlannerInput) plan.Request {
	req := plan.Request{
		Jurisdiction:     in.Jurisdiction,
		PlanJurisdiction: in.PlanJurisdiction,
		FilingStatus:     in.FilingStatus,
		AGI:              in.AGI.InexactFloat64(),
		MeansTested:      in.MeansTested,
		SaverCredit:      in.SaverCredit,
	}
	if in.AnnualReturn != nil {
		v := in.AnnualReturn.InexactFloat64()
		req.AnnualReturnOverride = &v
	}
	req.HorizonYearsOverride = in.HorizonYears

	proj := plan.ProjectionRequest{
		StartingBalance:         in.StartingBalance.InexactFloat64(),
		MonthlyContribution:     in.MonthlyContribution.InexactFloat64(),
		MonthlyWithdrawal:       in.MonthlyWithdrawal.InexactFloat64(),
		ContributionIncreasePct: in.ContributionIncreasePct.InexactFloat64(),
		WithdrawalIncreasePct:   in.WithdrawalIncreasePct.InexactFloat64(),
		ContributionEndMonth:    in.ContributionEndMonth,
		ContributionEndYear:     in.ContributionEndYear,
		WithdrawalStartMonth:    in.WithdrawalStartMonth,
		WithdrawalStartYear:     in.WithdrawalStartYear,
	}
	if in.MonthlyContributionFuture != nil {
		v := in.MonthlyContributionFuture.InexactFloat64()
		proj.MonthlyContributionFuture = &v
	}
	req.Projection = &proj
	return req
}

// reportLimitFindings runs the non-interactive incentive checks and prints
// anything the planner should know before reading the projection.
func reportLimitFindings(cfg *domain.RegulatoryConfig, resp *plan.Response, in *config.PlannerInput, now time.Time) {
	if resp.Inputs == nil {
		return
	}
	flow := incentive.NewFlow(cfg, resp.Jurisdiction)
	state := incentive.NewState()

	remaining := 12 - int(now.Month()) + 1
	currentYear := in.MonthlyContribution.Mul(decimal.NewFromInt(int64(remaining)))
	future := in.MonthlyContribution
	if in.MonthlyContributionFuture != nil {
		future = *in.MonthlyContributionFuture
	}
	fullYear := future.Mul(decimal.NewFromInt(12))

	state = flow.Transition(state, incentive.AmountChanged{
		CurrentYearAnnualized: currentYear,
		FullYearAnnualized:    fullYear,
	})
	if state.Mode == incentive.ModeInitialPrompt {
		fmt.Printf("Note: planned contributions exceed the %s annual limit; run ablecalc-tui to explore the earned-income increase.\n",
			cfg.BaseContributionLimit.StringFixed(0))
	}

	horizonYears := (resp.Inputs.HorizonEndIndex-resp.Inputs.StartMonthIndex)/12 + 1
	if _, breach := flow.DetectGrowthBreach(state, fullYear, in.ContributionIncreasePct, horizonYears); breach != nil {
		fmt.Printf("Note: the %s%% annual increase pushes contributions past the limit in year %d (%s/yr).\n",
			in.ContributionIncreasePct.StringFixed(1), breach.Year, breach.Projected.StringFixed(0))
	}
}

var projectCmd = &cobra.Command{
	Use:   "project [input-file]",
	Short: "Project an ABLE account against a taxable baseline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		regulatoryFile, _ := cmd.Flags().GetString("regulatory-config")
		format, _ := cmd.Flags().GetString("format")
		outFile, _ := cmd.Flags().GetString("output")
		windowYears, _ := cmd.Flags().GetInt("window")
		verbose, _ := cmd.Flags().GetBool("verbose")

		parser := config.NewInputParser()
		in, err := parser.LoadPlannerInput(args[0])
		if err != nil {
			log.Fatal(err)
		}
		cfg, err := loadRegulatory(regulatoryFile)
		if err != nil {
			log.Fatal(err)
		}

		now := time.Now()
		resp, err := plan.Handle(buildRequest(in), cfg, now)
		if err != nil {
			log.Fatal(err)
		}
		for _, note := range resp.Notes {
			fmt.Printf("Note: %s\n", note)
		}
		if resp.Inputs == nil {
			log.Fatal("no valid projection window in input")
		}

		engine := calculation.NewCalculationEngine(cfg)
		if verbose {
			engine.SetLogger(simpleCLILogger{})
		}
		result := engine.RunProjection(*resp.Inputs, resp.Filer)
		rep := report.Build(result, engine.Benefits, resp.Filer, report.Window(windowYears))

		reportLimitFindings(cfg, resp, in, now)

		formatter, err := output.ByName(format)
		if err != nil {
			log.Fatal(err)
		}
		data, err := formatter.Format(rep)
		if err != nil {
			log.Fatal(err)
		}
		if outFile != "" {
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Wrote %s report to %s\n", formatter.Name(), outFile)
			return
		}
		os.Stdout.Write(data)
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [input-file]",
	Short: "Summarize the ABLE account against the taxable baseline",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		regulatoryFile, _ := cmd.Flags().GetString("regulatory-config")

		parser := config.NewInputParser()
		in, err := parser.LoadPlannerInput(args[0])
		if err != nil {
			log.Fatal(err)
		}
		cfg, err := loadRegulatory(regulatoryFile)
		if err != nil {
			log.Fatal(err)
		}

		resp, err := plan.Handle(buildRequest(in), cfg, time.Now())
		if err != nil {
			log.Fatal(err)
		}
		if resp.Inputs == nil {
			log.Fatal("no valid projection window in input")
		}

		engine := calculation.NewCalculationEngine(cfg)
		result := engine.RunProjection(*resp.Inputs, resp.Filer)
		rep := report.Build(result, engine.Benefits, resp.Filer, report.WindowMax)
		if len(rep.Advantaged) == 0 {
			log.Fatal("projection produced no years")
		}

		credits, benefits := decimal.Zero, decimal.Zero
		for _, y := range rep.Advantaged {
			credits = credits.Add(y.CreditAmount)
			benefits = benefits.Add(y.StateBenefitAmount)
		}
		advantaged := rep.Advantaged[len(rep.Advantaged)-1].EndingBalance
		taxable := decimal.Zero
		if n := len(rep.Taxable); n > 0 {
			taxable = rep.Taxable[n-1].EndingBalance
		}

		fmt.Printf("Comparison over %d year(s):\n", rep.WindowYears)
		fmt.Printf("  ABLE ending balance:    %s\n", advantaged.StringFixed(2))
		fmt.Printf("  Taxable ending balance: %s\n", taxable.StringFixed(2))
		fmt.Printf("  Advantage:              %s\n", advantaged.Sub(taxable).StringFixed(2))
		fmt.Printf("  Saver's credits:        %s\n", credits.StringFixed(2))
		fmt.Printf("  State benefits:         %s\n", benefits.StringFixed(2))
		if rep.DepletionMonth != nil {
			fmt.Printf("  Depletes:               year %d, month %d\n",
				*rep.DepletionMonth/12, *rep.DepletionMonth%12+1)
		}
	},
}

func main() {
	projectCmd.Flags().String("regulatory-config", "", "Path to regulatory tables YAML (embedded defaults if omitted)")
	projectCmd.Flags().String("format", "table", "Output format: table, csv, json, pdf")
	projectCmd.Flags().String("output", "", "Write output to file instead of stdout")
	projectCmd.Flags().Int("window", 0, "Display window in years (0 = maximum)")
	projectCmd.Flags().Bool("verbose", false, "Enable engine logging")

	compareCmd.Flags().String("regulatory-config", "", "Path to regulatory tables YAML (embedded defaults if omitted)")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
