// Package optimizer selects multi-year capital-improvement plans under a
// budget constraint and projects the resulting cash flows.
//
// A scenario moves draft -> optimized -> approved -> implemented; only draft
// scenarios may be (re-)optimized. The selection itself is a per-year greedy
// pass over candidates ranked by a goal-weighted benefit/cost priority score.
package optimizer

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"capital_planning/pkg/core/condition"
	"capital_planning/pkg/core/finance"
	"capital_planning/pkg/core/validate"
	"capital_planning/pkg/models"
)

var (
	// ErrInvalidBudget rejects non-positive budget constraints.
	ErrInvalidBudget = errors.New("invalid budget")
	// ErrInvalidHorizon rejects non-positive time horizons.
	ErrInvalidHorizon = errors.New("invalid horizon")
	// ErrNotDraft rejects optimization of a scenario past draft status.
	ErrNotDraft = errors.New("scenario is not in draft status")
)

// Config tunes the optimizer's economic assumptions.
type Config struct {
	// DeferralPenalty escalates a skipped strategy's cost and avoided
	// failure cost per year of deferral.
	DeferralPenalty float64
	// RiskUnitValue monetizes one full point of risk reduction for priority
	// scoring.
	RiskUnitValue float64
	// CIUnitValue monetizes one CI point of condition improvement.
	CIUnitValue float64
	// MaintenanceRate is the annual maintenance cost as a fraction of the
	// remaining deferred-maintenance backlog.
	MaintenanceRate float64
	// OperatingRate is the annual operating cost as a fraction of the
	// portfolio replacement value.
	OperatingRate float64
}

// DefaultConfig returns the standard economic assumptions.
func DefaultConfig() Config {
	return Config{
		DeferralPenalty: 0.05,
		RiskUnitValue:   100000,
		CIUnitValue:     1000,
		MaintenanceRate: 0.03,
		OperatingRate:   0.01,
	}
}

// goalWeights are the priority-score weight profiles per optimization goal.
type goalWeights struct {
	financial float64 // failure cost avoided + maintenance savings
	risk      float64 // risk reduction
	ci        float64 // condition improvement
}

func weightsFor(goal models.OptimizationGoal) goalWeights {
	switch goal {
	case models.GoalMinimizeRisk:
		return goalWeights{financial: 0.3, risk: 1.0, ci: 0.2}
	case models.GoalMaximizeCI:
		return goalWeights{financial: 0.3, risk: 0.2, ci: 1.0}
	case models.GoalMinimizeCost:
		return goalWeights{financial: 1.0, risk: 0.1, ci: 0.1}
	default: // maximize_roi
		return goalWeights{financial: 1.0, risk: 0.2, ci: 0.2}
	}
}

// Input is everything one optimization run consumes. Baseline assessments and
// per-component risk scores feed the before/after summary figures.
type Input struct {
	Scenario   models.OptimizationScenario
	Candidates []models.ScenarioStrategy

	BaselineAssessments []models.Assessment
	BaselineRisk        map[string]float64 // component code -> risk score
}

// Output is the full result handed back for persistence.
type Output struct {
	Scenario   models.OptimizationScenario
	Strategies []models.ScenarioStrategy
	CashFlows  []models.CashFlowProjection
	Warnings   []models.ValidationWarning
}

// Optimizer runs capital-planning scenarios.
type Optimizer struct {
	cfg        Config
	aggregator *condition.Aggregator
}

// New creates an optimizer. The aggregator recomputes before/after CI and FCI
// figures from the baseline assessments.
func New(cfg Config, aggregator *condition.Aggregator) *Optimizer {
	return &Optimizer{cfg: cfg, aggregator: aggregator}
}

// PriorityScore computes the goal-weighted benefit/cost ratio for one
// candidate. Benefits are monetized against the configured unit values and
// normalized by present-value cost.
func (o *Optimizer) PriorityScore(s models.ScenarioStrategy, goal models.OptimizationGoal) float64 {
	if s.PresentValueCost <= 0 {
		return 0
	}
	w := weightsFor(goal)
	benefit := w.financial*(s.FailureCostAvoided+s.MaintenanceSavings) +
		w.risk*s.RiskReduction*o.cfg.RiskUnitValue +
		w.ci*s.ConditionImprovement*o.cfg.CIUnitValue
	return benefit / s.PresentValueCost
}

// Optimize runs the full selection and projection for a draft scenario.
// Malformed candidates are excluded with recorded warnings and the result is
// marked partial; the run itself proceeds.
func (o *Optimizer) Optimize(in Input) (*Output, error) {
	sc := in.Scenario

	if sc.Status != models.StatusDraft {
		return nil, fmt.Errorf("%w: scenario %s is %s", ErrNotDraft, sc.ID, sc.Status)
	}
	if sc.BudgetConstraint <= 0 {
		return nil, fmt.Errorf("%w: budget constraint %f for scenario %s", ErrInvalidBudget, sc.BudgetConstraint, sc.ID)
	}
	if sc.TimeHorizon <= 0 {
		return nil, fmt.Errorf("%w: time horizon %d for scenario %s", ErrInvalidHorizon, sc.TimeHorizon, sc.ID)
	}
	if !sc.BudgetType.IsValid() {
		sc.BudgetType = models.BudgetHard
	}

	// 1. Validate candidates; excluded records keep their warnings attached.
	var warnings []models.ValidationWarning
	candidates := make([]models.ScenarioStrategy, 0, len(in.Candidates))
	for _, c := range in.Candidates {
		if ws := validate.CandidateStrategy(c); len(ws) > 0 {
			warnings = append(warnings, ws...)
			continue
		}
		candidates = append(candidates, c)
	}
	partial := len(warnings) > 0
	if partial {
		log.Printf("[OPTIMIZER] scenario %s: excluded %d invalid candidates of %d",
			sc.ID, len(in.Candidates)-len(candidates), len(in.Candidates))
	}

	// 2. Price and rank candidates.
	for i := range candidates {
		c := &candidates[i]
		c.PresentValueCost = finance.RoundMoney(finance.PresentValue(c.StrategyCost, sc.DiscountRate, c.ActionYear))
		c.PriorityScore = o.PriorityScore(*c, sc.Goal)
	}

	// 3. Per-year greedy selection with deferral of budget-skipped candidates.
	selected, rejected := o.selectByYear(&sc, candidates)

	// 4 & 5. Scenario aggregates and chained yearly cash flows.
	cashFlows := o.projectCashFlows(sc, selected, in.BaselineAssessments)
	o.summarize(&sc, selected, cashFlows, in)

	sc.Partial = partial
	sc.Status = models.StatusOptimized
	sc.OptimizedAt = time.Now().UTC()

	strategies := append(selected, rejected...)
	sort.Slice(strategies, func(i, j int) bool { return strategies[i].ID < strategies[j].ID })

	return &Output{
		Scenario:   sc,
		Strategies: strategies,
		CashFlows:  cashFlows,
		Warnings:   warnings,
	}, nil
}

// selectByYear walks the horizon year by year, greedily funding the highest
// priority candidates within the annual budget. Skipped candidates roll into
// the next year with an incremented deferral count and escalated costs; every
// non-selection records its reason.
func (o *Optimizer) selectByYear(sc *models.OptimizationScenario, candidates []models.ScenarioStrategy) (selected, rejected []models.ScenarioStrategy) {
	pendingByYear := make(map[int][]models.ScenarioStrategy)
	for _, c := range candidates {
		pendingByYear[c.ActionYear] = append(pendingByYear[c.ActionYear], c)
	}

	for year := 1; year <= sc.TimeHorizon; year++ {
		pending := pendingByYear[year]
		sort.Slice(pending, func(i, j int) bool {
			if pending[i].PriorityScore != pending[j].PriorityScore {
				return pending[i].PriorityScore > pending[j].PriorityScore
			}
			if pending[i].StrategyCost != pending[j].StrategyCost {
				return pending[i].StrategyCost < pending[j].StrategyCost
			}
			return pending[i].ID < pending[j].ID
		})

		remaining := sc.BudgetConstraint
		var skipped []models.ScenarioStrategy

		for _, c := range pending {
			if c.StrategyCost <= remaining {
				c.Selected = true
				c.SelectedInYear = year
				c.SkipReason = ""
				remaining -= c.StrategyCost
				selected = append(selected, c)
				continue
			}
			// Under a hard budget an over-budget candidate is rejected
			// outright for this year, never partially funded.
			c.SkipReason = fmt.Sprintf("exceeds year %d budget (cost %.2f, remaining %.2f)", year, c.StrategyCost, remaining)
			skipped = append(skipped, c)
		}

		// Soft budgets may exceed once per year, for the single
		// highest-priority candidate that would otherwise be skipped.
		if sc.BudgetType == models.BudgetSoft && len(skipped) > 0 {
			over := skipped[0]
			over.Selected = true
			over.SelectedInYear = year
			over.OverBudget = true
			over.SkipReason = ""
			selected = append(selected, over)
			skipped = skipped[1:]
			log.Printf("[OPTIMIZER] scenario %s: over-budget selection %s in year %d", sc.ID, over.ID, year)
		}

		for _, c := range skipped {
			if year == sc.TimeHorizon {
				c.SkipReason = fmt.Sprintf("deferred beyond horizon after year %d: %s", year, c.SkipReason)
				rejected = append(rejected, c)
				continue
			}
			deferred := o.deferCandidate(c, sc.DiscountRate, sc.Goal)
			pendingByYear[year+1] = append(pendingByYear[year+1], deferred)
		}
	}

	// Candidates whose action year already lies past the horizon were never
	// considered; record why.
	for year, pending := range pendingByYear {
		if year <= sc.TimeHorizon {
			continue
		}
		for _, c := range pending {
			c.SkipReason = fmt.Sprintf("action year %d beyond scenario horizon %d", c.ActionYear, sc.TimeHorizon)
			rejected = append(rejected, c)
		}
	}
	return selected, rejected
}

// deferCandidate rolls a skipped candidate into the next year, escalating its
// cost and deferred failure cost by the configured penalty and re-pricing the
// present value at the later action year.
func (o *Optimizer) deferCandidate(c models.ScenarioStrategy, discountRate float64, goal models.OptimizationGoal) models.ScenarioStrategy {
	c.DeferralYears++
	c.ActionYear++
	c.StrategyCost = finance.RoundMoney(c.StrategyCost * (1 + o.cfg.DeferralPenalty))
	c.FailureCostAvoided = finance.RoundMoney(c.FailureCostAvoided * (1 + o.cfg.DeferralPenalty))
	c.PresentValueCost = finance.RoundMoney(finance.PresentValue(c.StrategyCost, discountRate, c.ActionYear))
	c.PriorityScore = o.PriorityScore(c, goal)
	return c
}

// summarize computes the scenario-level aggregates from the selected set and
// the yearly cash flows.
func (o *Optimizer) summarize(sc *models.OptimizationScenario, selected []models.ScenarioStrategy, cashFlows []models.CashFlowProjection, in Input) {
	benefits := make([]float64, sc.TimeHorizon)
	costs := make([]float64, sc.TimeHorizon)
	nets := make([]float64, sc.TimeHorizon)

	var totalCost, totalBenefit float64
	for _, cf := range cashFlows {
		i := cf.Year - 1
		costs[i] = cf.CapitalCost
		benefits[i] = cf.CostAvoidance + cf.EfficiencyGains
		nets[i] = benefits[i] - costs[i]
		totalCost += cf.CapitalCost
		totalBenefit += benefits[i]
	}

	sc.TotalCost = finance.RoundMoney(totalCost)
	sc.TotalBenefit = finance.RoundMoney(totalBenefit)
	sc.NPV = finance.RoundMoney(finance.NPV(benefits, costs, sc.DiscountRate))
	sc.ROI = finance.RoundScore(finance.ROI(totalBenefit, totalCost))
	sc.PaybackYear = finance.PaybackYear(nets)

	// Before/after condition figures recomputed from the baseline
	// assessments with the selected strategies assumed executed on schedule.
	before := o.aggregator.Aggregate(sc.ProjectID, in.BaselineAssessments)
	after := o.aggregator.Aggregate(sc.ProjectID, ApplyStrategies(in.BaselineAssessments, selected))
	if before.CIDefined {
		sc.CIBefore = before.CI
	}
	if after.CIDefined {
		sc.CIAfter = after.CI
	}
	if before.FCIDefined {
		sc.FCIBefore = before.FCIPercent()
	}
	if after.FCIDefined {
		sc.FCIAfter = after.FCIPercent()
	}

	sc.RiskScoreBefore, sc.RiskScoreAfter = riskBeforeAfter(in.BaselineRisk, selected)
}

// riskBeforeAfter averages the baseline per-component risk scores and applies
// each selected strategy's risk reduction to its component.
func riskBeforeAfter(baseline map[string]float64, selected []models.ScenarioStrategy) (before, after float64) {
	if len(baseline) == 0 {
		return 0, 0
	}
	reduction := make(map[string]float64)
	for _, s := range selected {
		reduction[s.ComponentCode] += s.RiskReduction
	}

	var sumBefore, sumAfter float64
	for code, score := range baseline {
		sumBefore += score
		adjusted := score - reduction[code]
		if adjusted < 0 {
			adjusted = 0
		}
		sumAfter += adjusted
	}
	n := float64(len(baseline))
	return finance.RoundScore(sumBefore / n), finance.RoundScore(sumAfter / n)
}

// Approve moves an optimized scenario to approved.
func Approve(sc models.OptimizationScenario) (models.OptimizationScenario, error) {
	return transition(sc, models.StatusApproved)
}

// Implement moves an approved scenario to its terminal implemented state.
func Implement(sc models.OptimizationScenario) (models.OptimizationScenario, error) {
	return transition(sc, models.StatusImplemented)
}

// Reopen returns an optimized scenario to draft for re-optimization.
// Approved and implemented scenarios are frozen.
func Reopen(sc models.OptimizationScenario) (models.OptimizationScenario, error) {
	return transition(sc, models.StatusDraft)
}

func transition(sc models.OptimizationScenario, next models.ScenarioStatus) (models.OptimizationScenario, error) {
	if !sc.Status.CanTransitionTo(next) {
		return sc, fmt.Errorf("scenario %s cannot move from %s to %s", sc.ID, sc.Status, next)
	}
	sc.Status = next
	return sc, nil
}
