package optimizer

import (
	"sort"

	"capital_planning/pkg/core/finance"
	"capital_planning/pkg/models"
)

// ApplyStrategies returns a copy of the assessments with the selected
// strategies assumed executed. Source assessments are never mutated.
//
// A replacement resets the component to good condition with a cleared repair
// backlog and a full remaining life plus any life extension. A rehabilitation
// clears backlog up to the strategy cost and improves the condition rating by
// one step. Defer and do-nothing leave the component untouched.
func ApplyStrategies(assessments []models.Assessment, selected []models.ScenarioStrategy) []models.Assessment {
	byComponent := make(map[string][]models.ScenarioStrategy)
	for _, s := range selected {
		if !s.Selected {
			continue
		}
		byComponent[s.ComponentCode] = append(byComponent[s.ComponentCode], s)
	}

	out := make([]models.Assessment, len(assessments))
	for i, a := range assessments {
		for _, s := range byComponent[a.ComponentCode] {
			a = applyStrategy(a, s)
		}
		out[i] = a
	}
	return out
}

func applyStrategy(a models.Assessment, s models.ScenarioStrategy) models.Assessment {
	switch s.Strategy {
	case models.StrategyReplace:
		a.Condition = models.ConditionGood
		a.EstimatedRepairCost = 0
		a.RemainingUsefulLife = a.ExpectedUsefulLife + s.LifeExtension
	case models.StrategyRehabilitate:
		a.EstimatedRepairCost -= s.StrategyCost
		if a.EstimatedRepairCost < 0 {
			a.EstimatedRepairCost = 0
		}
		a.RemainingUsefulLife += s.LifeExtension
		switch a.Condition {
		case models.ConditionPoor:
			a.Condition = models.ConditionFair
		case models.ConditionFair:
			a.Condition = models.ConditionGood
		}
	}
	return a
}

// projectCashFlows emits one projection row per horizon year, chaining each
// year's condition state off the prior year's: capital cost is that year's
// executed strategies, maintenance tracks the remaining deferred backlog,
// operating cost tracks replacement value, avoided failure cost lands in the
// execution year, and maintenance savings recur from execution onward.
func (o *Optimizer) projectCashFlows(sc models.OptimizationScenario, selected []models.ScenarioStrategy, baseline []models.Assessment) []models.CashFlowProjection {
	byYear := make(map[int][]models.ScenarioStrategy)
	for _, s := range selected {
		byYear[s.SelectedInYear] = append(byYear[s.SelectedInYear], s)
	}
	for _, year := range byYear {
		sort.Slice(year, func(i, j int) bool { return year[i].ID < year[j].ID })
	}

	state := append([]models.Assessment(nil), baseline...)
	cumulative := 0.0
	recurringSavings := 0.0

	flows := make([]models.CashFlowProjection, 0, sc.TimeHorizon)
	for year := 1; year <= sc.TimeHorizon; year++ {
		executed := byYear[year]

		var capital, avoided float64
		for _, s := range executed {
			capital += s.StrategyCost
			avoided += s.FailureCostAvoided
			recurringSavings += s.MaintenanceSavings
		}

		state = ApplyStrategies(state, executed)
		agg := o.aggregator.Aggregate(sc.ProjectID, state)

		maintenance := agg.DeferredMaintenanceCost * o.cfg.MaintenanceRate
		operating := agg.CurrentReplacementValue * o.cfg.OperatingRate
		net := avoided + recurringSavings - capital - maintenance - operating
		cumulative += net

		cf := models.CashFlowProjection{
			ScenarioID:      sc.ID,
			Year:            year,
			CapitalCost:     finance.RoundMoney(capital),
			MaintenanceCost: finance.RoundMoney(maintenance),
			OperatingCost:   finance.RoundMoney(operating),
			CostAvoidance:   finance.RoundMoney(avoided),
			EfficiencyGains: finance.RoundMoney(recurringSavings),
			NetCashFlow:     finance.RoundMoney(net),
			CumulativeCash:  finance.RoundMoney(cumulative),
			FCIDefined:      agg.FCIDefined,
		}
		if agg.CIDefined {
			cf.ProjectedCI = agg.CI
		}
		if agg.FCIDefined {
			cf.ProjectedFCI = agg.FCIPercent()
		}
		flows = append(flows, cf)
	}
	return flows
}
