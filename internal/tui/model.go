// Package tui hosts the interactive walkthrough of the contribution-limit
// dialogue. The model only dispatches events into the incentive state
// machine and renders the resulting state; all rules live in the
// incentive package.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ablecalc/ablecalc/internal/calculation"
	"github.com/ablecalc/ablecalc/internal/config"
	"github.com/ablecalc/ablecalc/internal/domain"
	"github.com/ablecalc/ablecalc/internal/incentive"
	"github.com/ablecalc/ablecalc/internal/plan"
	"github.com/ablecalc/ablecalc/internal/report"
)

// Model is the application state for the incentive walkthrough.
type Model struct {
	cfg    *domain.RegulatoryConfig
	input  *config.PlannerInput
	engine *calculation.CalculationEngine

	flow  *incentive.Flow
	state incentive.State

	amountInput textinput.Model
	adjustment  incentive.Adjustment

	resp *plan.Response
	rep  *report.Report

	width  int
	height int
	err    error
}

// NewModel creates the walkthrough model from a loaded planner input and
// regulatory tables.
func NewModel(cfg *domain.RegulatoryConfig, input *config.PlannerInput) Model {
	ti := textinput.New()
	ti.Placeholder = "annual earned income, e.g. 5000"
	ti.CharLimit = 12
	ti.Width = 24

	m := Model{
		cfg:         cfg,
		input:       input,
		engine:      calculation.NewCalculationEngine(cfg),
		flow:        incentive.NewFlow(cfg, input.Jurisdiction),
		state:       incentive.NewState(),
		amountInput: ti,
	}
	m.state = m.flow.Transition(m.state, m.amountEvent())
	m.recalculate()
	return m
}

func (m *Model) amountEvent() incentive.AmountChanged {
	now := time.Now()
	remaining := 12 - int(now.Month()) + 1
	future := m.input.MonthlyContribution
	if m.input.MonthlyContributionFuture != nil {
		future = *m.input.MonthlyContributionFuture
	}
	return incentive.AmountChanged{
		CurrentYearAnnualized: m.input.MonthlyContribution.Mul(decimal.NewFromInt(int64(remaining))),
		FullYearAnnualized:    future.Mul(decimal.NewFromInt(12)),
	}
}

func (m *Model) recalculate() {
	resp, err := plan.Handle(buildRequest(m.input), m.cfg, time.Now())
	if err != nil {
		m.err = err
		return
	}
	m.resp = resp
	if resp.Inputs == nil {
		return
	}
	result := m.engine.RunProjection(*resp.Inputs, resp.Filer)
	m.rep = report.Build(result, m.engine.Benefits, resp.Filer, report.WindowMax)
}

// buildRequest mirrors the CLI's input mapping.
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

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.state = m.flow.Transition(m.state, incentive.Reset{})
			m.state = m.flow.Transition(m.state, m.amountEvent())
			m.adjustment = incentive.Adjustment{}
			return m, nil
		}
		return m.handleDialogueKey(msg)
	}

	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}

func (m Model) handleDialogueKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch m.state.Mode {
	case incentive.ModeInitialPrompt:
		switch key {
		case "y":
			m.state = m.flow.Transition(m.state, incentive.PromptAccepted{})
			m.amountInput.Focus()
		case "n":
			m.state = m.flow.Transition(m.state, incentive.PromptDeclined{})
			m.state, m.adjustment = m.flow.AutoAdjust(m.state, remainingMonths())
		}
		return m, nil

	case incentive.ModeIncomeQuestion:
		// First the earned-income amount, then the employer-plan answer.
		if m.state.HasEarnedIncome == nil {
			switch key {
			case "n":
				m.state = m.flow.Transition(m.state, incentive.EarnedIncomeAnswered{Has: false})
				m.state, m.adjustment = m.flow.AutoAdjust(m.state, remainingMonths())
				return m, nil
			case "enter":
				amount, err := decimal.NewFromString(strings.TrimSpace(m.amountInput.Value()))
				if err != nil || amount.LessThanOrEqual(decimal.Zero) {
					m.state = m.flow.Transition(m.state, incentive.EarnedIncomeAnswered{Has: false})
					m.state, m.adjustment = m.flow.AutoAdjust(m.state, remainingMonths())
					return m, nil
				}
				m.state = m.flow.Transition(m.state, incentive.EarnedIncomeAnswered{Has: true, Amount: amount})
				return m, nil
			}
			var cmd tea.Cmd
			m.amountInput, cmd = m.amountInput.Update(msg)
			return m, cmd
		}
		switch key {
		case "y":
			m.state = m.flow.Transition(m.state, incentive.EmployerPlanAnswered{Participates: true})
			m.state, m.adjustment = m.flow.AutoAdjust(m.state, remainingMonths())
		case "n":
			m.state = m.flow.Transition(m.state, incentive.EmployerPlanAnswered{Participates: false})
			m.state, m.adjustment = m.flow.AutoAdjust(m.state, remainingMonths())
		}
		return m, nil

	case incentive.ModeNoPath, incentive.ModeCombinedLimit:
		if key == "enter" || key == "d" {
			m.state = m.flow.Transition(m.state, incentive.NoticeDismissed{})
		}
		return m, nil
	}
	return m, nil
}

func remainingMonths() int {
	return 12 - int(time.Now().Month()) + 1
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("ABLE Contribution Planner"))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(IneligibleStyle.Render(fmt.Sprintf("error: %v", m.err)))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(m.dialogueView())
	sb.WriteString("\n")
	sb.WriteString(m.summaryView())
	sb.WriteString(HelpStyle.Render("y/n answer  enter confirm  d dismiss  r restart  q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) dialogueView() string {
	base := m.cfg.BaseContributionLimit.StringFixed(0)

	switch m.state.Mode {
	case incentive.ModeIdle:
		switch m.state.Status {
		case incentive.StatusEligible:
			return EligibleStyle.Render(fmt.Sprintf(
				"Eligible: combined annual limit %s (base %s + earned-income increase %s)",
				m.state.CombinedAnnualLimit.StringFixed(0), base, m.state.AdditionalAllowedAmount.StringFixed(0)))
		default:
			return fmt.Sprintf("Planned contributions are within the %s annual limit.", base)
		}

	case incentive.ModeInitialPrompt:
		return QuestionStyle.Render(fmt.Sprintf(
			"Planned contributions exceed the %s annual limit.\nExplore the earned-income limit increase? (y/n)", base))

	case incentive.ModeIncomeQuestion:
		if m.state.HasEarnedIncome == nil {
			return QuestionStyle.Render("Does the beneficiary have earned income?\nEnter the annual amount (or n for none):") +
				"\n" + m.amountInput.View()
		}
		return QuestionStyle.Render("Does the beneficiary participate in an employer retirement plan? (y/n)")

	case incentive.ModeNoPath:
		msg := fmt.Sprintf("Not eligible for the limit increase; the %s base limit applies.", base)
		if m.adjustment.Applied && !m.state.NoticeDismissed {
			msg += fmt.Sprintf("\nContributions adjusted to %s/mo this year, %s/mo in future years. (enter to dismiss)",
				m.adjustment.MonthlyCurrent.StringFixed(2), m.adjustment.MonthlyFuture.StringFixed(2))
		}
		return NoticeStyle.Render(IneligibleStyle.Render(msg))

	case incentive.ModeCombinedLimit:
		msg := fmt.Sprintf("Plan still exceeds the combined limit of %s.", m.state.CombinedAnnualLimit.StringFixed(0))
		if m.adjustment.Applied && !m.state.NoticeDismissed {
			msg += fmt.Sprintf("\nContributions adjusted to %s/mo this year, %s/mo in future years. (enter to dismiss)",
				m.adjustment.MonthlyCurrent.StringFixed(2), m.adjustment.MonthlyFuture.StringFixed(2))
		}
		return NoticeStyle.Render(msg)
	}
	return ""
}

func (m Model) summaryView() string {
	if m.rep == nil || len(m.rep.Advantaged) == 0 {
		return ""
	}
	last := m.rep.Advantaged[len(m.rep.Advantaged)-1]
	taxableEnd := decimal.Zero
	if n := len(m.rep.Taxable); n > 0 {
		taxableEnd = m.rep.Taxable[n-1].EndingBalance
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("\nProjection over %d year(s):\n", m.rep.WindowYears))
	sb.WriteString(fmt.Sprintf("  ABLE balance:     %s\n", last.EndingBalance.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("  Taxable baseline: %s\n", taxableEnd.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("  Advantage:        %s\n", last.EndingBalance.Sub(taxableEnd).StringFixed(2)))
	if m.rep.DepletionMonth != nil {
		sb.WriteString(fmt.Sprintf("  Depletes:         year %d, month %d\n",
			*m.rep.DepletionMonth/12, *m.rep.DepletionMonth%12+1))
	}
	return sb.String()
}
