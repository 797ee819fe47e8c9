// Package validate provides reusable input validation for the engine.
// Problems surface as ValidationWarnings attached to specific records;
// callers exclude the flagged records and mark the run partial instead of
// failing outright.
package validate

import (
	"fmt"

	"capital_planning/pkg/models"
)

// CandidateStrategy checks the cost/benefit fields the optimizer requires.
// A candidate with warnings is excluded from the run, never partially scored.
func CandidateStrategy(s models.ScenarioStrategy) []models.ValidationWarning {
	var warnings []models.ValidationWarning

	warn := func(field, msg string) {
		warnings = append(warnings, models.ValidationWarning{RecordID: s.ID, Field: field, Message: msg})
	}

	if !s.Strategy.IsValid() {
		warn("strategy", fmt.Sprintf("unknown strategy type %q", s.Strategy))
	}
	if s.ComponentCode == "" {
		warn("component_code", "missing component code")
	}
	if s.ActionYear <= 0 {
		warn("action_year", fmt.Sprintf("action year must be positive, got %d", s.ActionYear))
	}
	if s.Strategy != models.StrategyDoNothing && s.StrategyCost <= 0 {
		warn("strategy_cost", fmt.Sprintf("strategy cost must be positive, got %f", s.StrategyCost))
	}
	if s.RiskReduction < 0 {
		warn("risk_reduction", "risk reduction cannot be negative")
	}
	if s.ConditionImprovement < 0 {
		warn("condition_improvement", "condition improvement cannot be negative")
	}
	if s.FailureCostAvoided < 0 {
		warn("failure_cost_avoided", "failure cost avoided cannot be negative")
	}
	if s.MaintenanceSavings < 0 {
		warn("maintenance_savings", "maintenance savings cannot be negative")
	}
	return warnings
}

// Assessment checks the cost and life fields the aggregator and risk scorer
// consume.
func Assessment(a models.Assessment) []models.ValidationWarning {
	var warnings []models.ValidationWarning

	warn := func(field, msg string) {
		warnings = append(warnings, models.ValidationWarning{RecordID: a.ID, Field: field, Message: msg})
	}

	if !a.Condition.IsValid() {
		warn("condition", fmt.Sprintf("unknown condition %q", a.Condition))
	}
	if a.EstimatedRepairCost < 0 {
		warn("estimated_repair_cost", "repair cost cannot be negative")
	}
	if a.ReplacementValue < 0 {
		warn("replacement_value", "replacement value cannot be negative")
	}
	if a.ExpectedUsefulLife <= 0 {
		warn("expected_useful_life", fmt.Sprintf("expected useful life must be positive, got %f", a.ExpectedUsefulLife))
	}
	if a.RemainingUsefulLife > a.ExpectedUsefulLife {
		warn("remaining_useful_life", "remaining life exceeds expected useful life")
	}
	return warnings
}

// Component checks hierarchy invariants: every non-root code needs a parent
// one level up, codes are unique, and custom components must not collide with
// the standard scheme.
func Component(c models.Component, scheme map[string]models.Component) []models.ValidationWarning {
	var warnings []models.ValidationWarning

	warn := func(field, msg string) {
		warnings = append(warnings, models.ValidationWarning{RecordID: c.Code, Field: field, Message: msg})
	}

	if c.Level < 1 || c.Level > 4 {
		warn("level", fmt.Sprintf("level must be 1-4, got %d", c.Level))
	}
	if c.Level > 1 {
		parent, ok := scheme[c.ParentCode]
		if !ok {
			warn("parent_code", fmt.Sprintf("parent %q does not exist", c.ParentCode))
		} else if parent.Level != c.Level-1 {
			warn("parent_code", fmt.Sprintf("parent %q is level %d, expected %d", c.ParentCode, parent.Level, c.Level-1))
		}
	}
	if existing, ok := scheme[c.Code]; ok && c.Custom && !existing.Custom {
		warn("code", fmt.Sprintf("custom component collides with standard code %q", c.Code))
	}
	return warnings
}
