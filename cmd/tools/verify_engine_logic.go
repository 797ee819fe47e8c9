package main

import (
	"fmt"
	"time"

	"capital_planning/pkg/core/condition"
	"capital_planning/pkg/core/config"
	"capital_planning/pkg/core/curve"
	"capital_planning/pkg/core/optimizer"
	"capital_planning/pkg/core/risk"
	"capital_planning/pkg/models"
)

// Manual sanity-check of the engine math against the known reference figures:
// a 3-component FCI of 2.1429%, a linear curve at mid-life, a 0.24 product
// risk score, and the hard-budget selection case.
func main() {
	fmt.Println("--- FCI ---")
	aggregator := condition.New(config.NewResolver(nil, nil))
	assessments := []models.Assessment{
		{ComponentCode: "D3010", Condition: models.ConditionFair, ReplacementValue: 100000, EstimatedRepairCost: 5000, ExpectedUsefulLife: 25, RemainingUsefulLife: 10, AssessedAt: time.Now()},
		{ComponentCode: "D2020", Condition: models.ConditionGood, ReplacementValue: 200000, EstimatedRepairCost: 0, ExpectedUsefulLife: 30, RemainingUsefulLife: 25, AssessedAt: time.Now()},
		{ComponentCode: "B3010", Condition: models.ConditionPoor, ReplacementValue: 50000, EstimatedRepairCost: 2500, ExpectedUsefulLife: 20, RemainingUsefulLife: 3, AssessedAt: time.Now()},
	}
	result := aggregator.Aggregate("demo", assessments)
	fmt.Printf("FCI = %.4f%% (expect 2.1429), CI = %.2f\n", result.FCIPercent(), result.CI)

	fmt.Println("--- Curve ---")
	ev, err := curve.New(models.DeteriorationCurve{
		ID: "linear-roof", Name: "Roof design case", Mode: models.InterpLinear,
		ServiceLife: 40, MinCondition: 0, MaxCondition: 100,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("condition(20) = %.1f (expect 50.0), remaining = %.1f (expect 20.0)\n",
		ev.Evaluate(20), ev.RemainingLife(20))

	fmt.Println("--- Risk ---")
	scorer := risk.NewDefaultScorer()
	res := scorer.Score(
		models.PoFFactors{AgeRatio: 0.6, RemainingLifePercent: 0.4, ConditionIndex: 0.4, DeferredMaintYears: 6, EnvironmentFactor: 0.6},
		models.CoFFactors{Safety: 0.4, Operational: 0.4, Financial: 0.4, Environmental: 0.4, Reputational: 0.4},
	)
	fmt.Printf("pof=%.2f cof=%.2f score=%.2f level=%s (expect 0.24 medium)\n", res.PoF, res.CoF, res.RiskScore, res.RiskLevel)

	fmt.Println("--- Optimizer ---")
	planner := optimizer.New(optimizer.DefaultConfig(), aggregator)
	out, err := planner.Optimize(optimizer.Input{
		Scenario: models.OptimizationScenario{
			ID: "demo-scenario", ProjectID: "demo", Status: models.StatusDraft,
			BudgetConstraint: 100000, BudgetType: models.BudgetHard,
			TimeHorizon: 2, DiscountRate: 0.03, Goal: models.GoalMaximizeROI,
		},
		Candidates: []models.ScenarioStrategy{
			{ID: "s1", ComponentCode: "D3010", Strategy: models.StrategyReplace, ActionYear: 1, StrategyCost: 60000, FailureCostAvoided: 90000, MaintenanceSavings: 5000, RiskReduction: 0.3, ConditionImprovement: 20},
			{ID: "s2", ComponentCode: "B3010", Strategy: models.StrategyRehabilitate, ActionYear: 1, StrategyCost: 70000, FailureCostAvoided: 60000, MaintenanceSavings: 2000, RiskReduction: 0.2, ConditionImprovement: 10},
		},
		BaselineAssessments: assessments,
		BaselineRisk:        map[string]float64{"D3010": 0.4, "B3010": 0.3},
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, s := range out.Strategies {
		fmt.Printf("  %s selected=%v year=%d priority=%.2f reason=%q\n", s.ID, s.Selected, s.SelectedInYear, s.PriorityScore, s.SkipReason)
	}
	fmt.Printf("NPV=%.2f ROI=%.2f payback=year %d\n", out.Scenario.NPV, out.Scenario.ROI, out.Scenario.PaybackYear)
}
