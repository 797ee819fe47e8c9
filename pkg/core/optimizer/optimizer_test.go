package optimizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"capital_planning/pkg/core/condition"
	"capital_planning/pkg/core/config"
	"capital_planning/pkg/models"
)

var assessedAt = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func baseline() []models.Assessment {
	return []models.Assessment{
		{ID: "a1", ComponentCode: "D3010", Condition: models.ConditionPoor, EstimatedRepairCost: 55000, ReplacementValue: 400000, ExpectedUsefulLife: 25, RemainingUsefulLife: 3, AssessedAt: assessedAt},
		{ID: "a2", ComponentCode: "B3010", Condition: models.ConditionFair, EstimatedRepairCost: 30000, ReplacementValue: 250000, ExpectedUsefulLife: 20, RemainingUsefulLife: 8, AssessedAt: assessedAt},
	}
}

func draftScenario() models.OptimizationScenario {
	return models.OptimizationScenario{
		ID:               "scn-1",
		ProjectID:        "p1",
		Name:             "FY27 capital plan",
		Status:           models.StatusDraft,
		BudgetConstraint: 100000,
		BudgetType:       models.BudgetHard,
		TimeHorizon:      3,
		DiscountRate:     0.03,
		Goal:             models.GoalMaximizeROI,
	}
}

// Two same-year candidates: 60000 at high priority, 70000 at lower priority.
// Selecting both would exceed the 100000 annual budget.
func competingCandidates() []models.ScenarioStrategy {
	return []models.ScenarioStrategy{
		{ID: "s1", ScenarioID: "scn-1", ComponentCode: "D3010", Strategy: models.StrategyReplace, ActionYear: 1,
			StrategyCost: 60000, FailureCostAvoided: 90000, MaintenanceSavings: 5000, RiskReduction: 0.3, ConditionImprovement: 20},
		{ID: "s2", ScenarioID: "scn-1", ComponentCode: "B3010", Strategy: models.StrategyRehabilitate, ActionYear: 1,
			StrategyCost: 70000, FailureCostAvoided: 60000, MaintenanceSavings: 2000, RiskReduction: 0.2, ConditionImprovement: 10},
	}
}

func newOptimizer() *Optimizer {
	return New(DefaultConfig(), condition.New(config.NewResolver(nil, nil)))
}

func TestHardBudgetNeverExceeded(t *testing.T) {
	out, err := newOptimizer().Optimize(Input{
		Scenario:            draftScenario(),
		Candidates:          competingCandidates(),
		BaselineAssessments: baseline(),
		BaselineRisk:        map[string]float64{"D3010": 0.4, "B3010": 0.3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byID := make(map[string]models.ScenarioStrategy)
	for _, s := range out.Strategies {
		byID[s.ID] = s
	}

	s1 := byID["s1"]
	if !s1.Selected || s1.SelectedInYear != 1 {
		t.Errorf("higher-priority 60000 candidate should be selected in year 1: %+v", s1)
	}

	// The 70000 candidate is rejected for year 1 and deferred to year 2.
	s2 := byID["s2"]
	if !s2.Selected {
		t.Fatalf("deferred candidate should be funded the following year: %+v", s2)
	}
	if s2.SelectedInYear != 2 || s2.DeferralYears != 1 {
		t.Errorf("expected selection in year 2 after one deferral, got year %d deferrals %d", s2.SelectedInYear, s2.DeferralYears)
	}
	// Deferral is never silent: the escalated cost reflects the penalty.
	if s2.StrategyCost != 73500 {
		t.Errorf("expected 5%% escalation to 73500, got %.2f", s2.StrategyCost)
	}

	// No single year's selected cost may exceed the budget.
	perYear := make(map[int]float64)
	for _, s := range out.Strategies {
		if s.Selected {
			perYear[s.SelectedInYear] += s.StrategyCost
		}
	}
	for year, cost := range perYear {
		if cost > 100000 {
			t.Errorf("year %d spend %.2f exceeds hard budget", year, cost)
		}
	}
}

func TestSoftBudgetSingleOverrun(t *testing.T) {
	sc := draftScenario()
	sc.BudgetType = models.BudgetSoft
	sc.TimeHorizon = 1

	candidates := competingCandidates()
	// Third candidate ensures only the single top skipped one goes over.
	candidates = append(candidates, models.ScenarioStrategy{
		ID: "s3", ScenarioID: "scn-1", ComponentCode: "C1010", Strategy: models.StrategyRehabilitate, ActionYear: 1,
		StrategyCost: 50000, FailureCostAvoided: 10000, MaintenanceSavings: 500, RiskReduction: 0.05, ConditionImprovement: 2,
	})

	out, err := newOptimizer().Optimize(Input{
		Scenario:            sc,
		Candidates:          candidates,
		BaselineAssessments: baseline(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var overBudget, selected int
	for _, s := range out.Strategies {
		if s.Selected {
			selected++
			if s.OverBudget {
				overBudget++
			}
		} else if s.SkipReason == "" {
			t.Errorf("non-selection without a recorded reason: %+v", s)
		}
	}
	if overBudget != 1 {
		t.Errorf("soft budget allows exactly one flagged overrun per year, got %d", overBudget)
	}
	if selected != 2 {
		t.Errorf("expected 2 selections (one in budget, one over), got %d", selected)
	}
}

func TestInvalidBudgetAndHorizon(t *testing.T) {
	sc := draftScenario()
	sc.BudgetConstraint = 0
	if _, err := newOptimizer().Optimize(Input{Scenario: sc, Candidates: competingCandidates()}); !errors.Is(err, ErrInvalidBudget) {
		t.Errorf("expected ErrInvalidBudget, got %v", err)
	}

	sc = draftScenario()
	sc.TimeHorizon = -2
	if _, err := newOptimizer().Optimize(Input{Scenario: sc, Candidates: competingCandidates()}); !errors.Is(err, ErrInvalidHorizon) {
		t.Errorf("expected ErrInvalidHorizon, got %v", err)
	}
}

func TestOnlyDraftScenariosOptimize(t *testing.T) {
	for _, status := range []models.ScenarioStatus{models.StatusOptimized, models.StatusApproved, models.StatusImplemented} {
		sc := draftScenario()
		sc.Status = status
		if _, err := newOptimizer().Optimize(Input{Scenario: sc, Candidates: competingCandidates()}); !errors.Is(err, ErrNotDraft) {
			t.Errorf("status %s: expected ErrNotDraft, got %v", status, err)
		}
	}
}

func TestInvalidCandidateExcludedNotFatal(t *testing.T) {
	candidates := append(competingCandidates(), models.ScenarioStrategy{
		ID: "s-bad", ScenarioID: "scn-1", ComponentCode: "", Strategy: models.StrategyReplace, ActionYear: 1,
		StrategyCost: -5, // missing code, negative cost
	})

	out, err := newOptimizer().Optimize(Input{
		Scenario:            draftScenario(),
		Candidates:          candidates,
		BaselineAssessments: baseline(),
	})
	if err != nil {
		t.Fatalf("partial results are preferred over total failure: %v", err)
	}

	if len(out.Warnings) == 0 {
		t.Fatal("excluded candidate must leave validation warnings")
	}
	if !out.Scenario.Partial {
		t.Error("run with exclusions must be marked partial")
	}
	for _, w := range out.Warnings {
		if w.RecordID != "s-bad" {
			t.Errorf("warning should identify the offending record, got %q", w.RecordID)
		}
	}
}

func TestScenarioSummaryFigures(t *testing.T) {
	out, err := newOptimizer().Optimize(Input{
		Scenario:            draftScenario(),
		Candidates:          competingCandidates(),
		BaselineAssessments: baseline(),
		BaselineRisk:        map[string]float64{"D3010": 0.4, "B3010": 0.3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sc := out.Scenario
	if sc.Status != models.StatusOptimized {
		t.Errorf("expected optimized status, got %s", sc.Status)
	}
	if sc.OptimizedAt.IsZero() {
		t.Error("optimized_at must be set")
	}
	// 60000 in year 1 plus the escalated 73500 in year 2.
	if sc.TotalCost != 133500 {
		t.Errorf("expected total cost 133500, got %.2f", sc.TotalCost)
	}
	if sc.TotalBenefit <= sc.TotalCost {
		t.Errorf("this plan should be benefit-positive: benefit %.2f cost %.2f", sc.TotalBenefit, sc.TotalCost)
	}
	if sc.NPV <= 0 {
		t.Errorf("expected positive NPV, got %.2f", sc.NPV)
	}
	if sc.ROI <= 1 {
		t.Errorf("expected ROI above 1, got %.4f", sc.ROI)
	}
	if sc.PaybackYear != 1 {
		t.Errorf("benefits exceed costs from year 1, payback should be year 1, got %d", sc.PaybackYear)
	}

	// Executed replacements clear backlog: condition improves, FCI drops.
	if sc.CIAfter <= sc.CIBefore {
		t.Errorf("CI should improve: before %.2f after %.2f", sc.CIBefore, sc.CIAfter)
	}
	if sc.FCIAfter >= sc.FCIBefore {
		t.Errorf("FCI should drop: before %.4f after %.4f", sc.FCIBefore, sc.FCIAfter)
	}
	if sc.RiskScoreAfter >= sc.RiskScoreBefore {
		t.Errorf("risk should drop: before %.4f after %.4f", sc.RiskScoreBefore, sc.RiskScoreAfter)
	}
}

func TestCashFlowProjections(t *testing.T) {
	out, err := newOptimizer().Optimize(Input{
		Scenario:            draftScenario(),
		Candidates:          competingCandidates(),
		BaselineAssessments: baseline(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(out.CashFlows) != 3 {
		t.Fatalf("expected one projection per horizon year, got %d", len(out.CashFlows))
	}

	cumulative := 0.0
	for i, cf := range out.CashFlows {
		if cf.Year != i+1 {
			t.Errorf("projection %d has year %d", i, cf.Year)
		}
		cumulative += cf.NetCashFlow
		if diff := cumulative - cf.CumulativeCash; diff > 0.01 || diff < -0.01 {
			t.Errorf("year %d cumulative cash %.2f does not chain from nets (%.2f)", cf.Year, cf.CumulativeCash, cumulative)
		}
		if !cf.FCIDefined {
			t.Errorf("year %d FCI should be defined for this portfolio", cf.Year)
		}
	}

	if out.CashFlows[0].CapitalCost != 60000 {
		t.Errorf("year 1 capital should be 60000, got %.2f", out.CashFlows[0].CapitalCost)
	}
	if out.CashFlows[1].CapitalCost != 73500 {
		t.Errorf("year 2 capital should be the escalated 73500, got %.2f", out.CashFlows[1].CapitalCost)
	}
	// Maintenance savings recur once a strategy executes.
	if out.CashFlows[2].EfficiencyGains != 7000 {
		t.Errorf("year 3 recurring savings should be 7000, got %.2f", out.CashFlows[2].EfficiencyGains)
	}
	// Projected condition improves as the plan executes.
	if out.CashFlows[2].ProjectedCI <= out.CashFlows[0].ProjectedCI {
		t.Errorf("projected CI should improve over the horizon: %.2f -> %.2f",
			out.CashFlows[0].ProjectedCI, out.CashFlows[2].ProjectedCI)
	}
}

func TestGoalChangesRanking(t *testing.T) {
	o := newOptimizer()
	// Financially weak but risk-heavy candidate vs cash-positive one.
	riskHeavy := models.ScenarioStrategy{ID: "r1", ComponentCode: "D3010", Strategy: models.StrategyReplace, ActionYear: 1,
		StrategyCost: 50000, PresentValueCost: 50000, FailureCostAvoided: 10000, MaintenanceSavings: 1000, RiskReduction: 0.8}
	cashPositive := models.ScenarioStrategy{ID: "c1", ComponentCode: "B3010", Strategy: models.StrategyReplace, ActionYear: 1,
		StrategyCost: 50000, PresentValueCost: 50000, FailureCostAvoided: 60000, MaintenanceSavings: 8000, RiskReduction: 0.05}

	roiRisk := o.PriorityScore(riskHeavy, models.GoalMaximizeROI)
	roiCash := o.PriorityScore(cashPositive, models.GoalMaximizeROI)
	if roiCash <= roiRisk {
		t.Errorf("under maximize_roi the cash-positive candidate should rank higher: %.4f vs %.4f", roiCash, roiRisk)
	}

	riskRisk := o.PriorityScore(riskHeavy, models.GoalMinimizeRisk)
	riskCash := o.PriorityScore(cashPositive, models.GoalMinimizeRisk)
	if riskRisk <= riskCash {
		t.Errorf("under minimize_risk the risk-heavy candidate should rank higher: %.4f vs %.4f", riskRisk, riskCash)
	}
}

func TestCandidateBeyondHorizonRecorded(t *testing.T) {
	candidates := append(competingCandidates(), models.ScenarioStrategy{
		ID: "s-late", ScenarioID: "scn-1", ComponentCode: "C3020", Strategy: models.StrategyReplace, ActionYear: 9,
		StrategyCost: 10000, FailureCostAvoided: 5000,
	})

	out, err := newOptimizer().Optimize(Input{
		Scenario:            draftScenario(),
		Candidates:          candidates,
		BaselineAssessments: baseline(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range out.Strategies {
		if s.ID == "s-late" {
			if s.Selected {
				t.Fatal("candidate beyond horizon must not be selected")
			}
			if !strings.Contains(s.SkipReason, "horizon") {
				t.Errorf("skip reason should mention the horizon, got %q", s.SkipReason)
			}
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	sc := draftScenario()
	sc.Status = models.StatusOptimized

	approved, err := Approve(sc)
	if err != nil {
		t.Fatalf("optimized -> approved should succeed: %v", err)
	}
	implemented, err := Implement(approved)
	if err != nil {
		t.Fatalf("approved -> implemented should succeed: %v", err)
	}
	if _, err := Reopen(implemented); err == nil {
		t.Fatal("implemented is terminal; reopen must fail")
	}
	if _, err := Approve(draftScenario()); err == nil {
		t.Fatal("draft cannot be approved before optimization")
	}

	reopened, err := Reopen(models.OptimizationScenario{ID: "x", Status: models.StatusOptimized})
	if err != nil {
		t.Fatalf("optimized -> draft should succeed for re-optimization: %v", err)
	}
	if reopened.Status != models.StatusDraft {
		t.Errorf("expected draft after reopen, got %s", reopened.Status)
	}
}
