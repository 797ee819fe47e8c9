package models

import (
	"time"
)

// Component is a classified building element in a hierarchical scheme
// (UNIFORMAT II levels 1-4: Major Group -> Group -> Individual Element).
type Component struct {
	Code       string `json:"code"`
	ParentCode string `json:"parent_code,omitempty"` // empty for level-1 roots
	Level      int    `json:"level"`                 // 1..4
	Name       string `json:"name"`
	Custom     bool   `json:"custom,omitempty"` // project-defined, outside the standard scheme
}

// SystemCode returns the level-1 classification code this component rolls up to.
// UNIFORMAT codes nest by prefix, so the first letter identifies the major group.
func (c Component) SystemCode() string {
	if len(c.Code) == 0 {
		return ""
	}
	return c.Code[:1]
}

// Assessment is one observation of a component's condition at a point in time.
// Assessments are immutable once finalized; corrections append a new version.
type Assessment struct {
	ID                  string    `json:"id"`
	Version             int       `json:"version"`
	ProjectID           string    `json:"project_id"`
	AssetID             string    `json:"asset_id"`
	ComponentCode       string    `json:"component_code"`
	Condition           Condition `json:"condition"`
	RemainingUsefulLife float64   `json:"remaining_useful_life"` // years
	ExpectedUsefulLife  float64   `json:"expected_useful_life"`  // years
	EstimatedRepairCost float64   `json:"estimated_repair_cost"`
	ReplacementValue    float64   `json:"replacement_value"`
	AssessedAt          time.Time `json:"assessed_at"`
	Finalized           bool      `json:"finalized"`
}

// Age returns the implied component age in years as of the assessment date.
func (a Assessment) Age() float64 {
	age := a.ExpectedUsefulLife - a.RemainingUsefulLife
	if age < 0 {
		return 0
	}
	return age
}

// DeteriorationCurve maps component age to expected condition.
// The six flat parameter slots mirror the stored shape; pkg/core/curve
// resolves them into a typed variant per interpolation mode.
type DeteriorationCurve struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Case          CurveCase         `json:"case"`
	Mode          InterpolationMode `json:"mode"`
	Param1        float64           `json:"param1"`
	Param2        float64           `json:"param2"`
	Param3        float64           `json:"param3"`
	Param4        float64           `json:"param4"`
	Param5        float64           `json:"param5"`
	Param6        float64           `json:"param6"`
	ServiceLife   float64           `json:"service_life"` // years, the curve's domain
	MinCondition  float64           `json:"min_condition"`
	MaxCondition  float64           `json:"max_condition"`
	FailThreshold float64           `json:"fail_threshold"` // condition at which the component is considered failed
}

// ComponentDeteriorationConfig binds curves to a component code for a project
// and selects which case is active for prediction.
type ComponentDeteriorationConfig struct {
	ProjectID     string    `yaml:"project_id" json:"project_id"`
	ComponentCode string    `yaml:"component_code" json:"component_code"`
	BestCurveID   string    `yaml:"best_curve_id" json:"best_curve_id"`
	DesignCurveID string    `yaml:"design_curve_id" json:"design_curve_id"`
	WorstCurveID  string    `yaml:"worst_curve_id" json:"worst_curve_id"`
	ActiveCase    CurveCase `yaml:"active_case" json:"active_case"`
}

// PoFFactors are the probability-of-failure inputs. All scores are clamped to
// [0,1] before combination.
type PoFFactors struct {
	AgeRatio             float64 `json:"age_ratio"`              // age / expected useful life
	RemainingLifePercent float64 `json:"remaining_life_percent"` // 0 = expired, 1 = new
	ConditionIndex       float64 `json:"condition_index"`        // normalized, 1 = perfect
	DeferredMaintYears   float64 `json:"deferred_maint_years"`   // years of deferred maintenance
	EnvironmentFactor    float64 `json:"environment_factor"`     // exposure/utilization multiplier
}

// CoFFactors are the consequence-of-failure inputs, pre-scored 0-1 by the
// assessor. Narrative fields ride along for audit and never enter the math.
type CoFFactors struct {
	Safety        float64 `json:"safety"`
	Operational   float64 `json:"operational"`
	Financial     float64 `json:"financial"`
	Environmental float64 `json:"environmental"`
	Reputational  float64 `json:"reputational"`

	SafetyNarrative      string `json:"safety_narrative,omitempty"`
	OperationalNarrative string `json:"operational_narrative,omitempty"`
	FinancialNarrative   string `json:"financial_narrative,omitempty"`
}

// RiskAssessment is the scored risk output for one assessment.
type RiskAssessment struct {
	ID           string              `json:"id"`
	AssessmentID string              `json:"assessment_id"`
	PoF          float64             `json:"pof"`
	CoF          float64             `json:"cof"`
	RiskScore    float64             `json:"risk_score"`
	RiskLevel    RiskLevel           `json:"risk_level"`
	Rule         RiskCombinationRule `json:"rule"` // recorded for auditability
	ScoredAt     time.Time           `json:"scored_at"`
}

// Snapshot is a calculated CI/FCI value at one hierarchy level.
// FCIDefined distinguishes a real zero from an undefined ratio
// (CurrentReplacementValue = 0); downstream reporting depends on this.
type Snapshot struct {
	ID                      string           `json:"id"`
	ProjectID               string           `json:"project_id"`
	Level                   AggregationLevel `json:"level"`
	EntityID                string           `json:"entity_id,omitempty"`
	CI                      float64          `json:"ci"`
	CIDefined               bool             `json:"ci_defined"`
	FCI                     float64          `json:"fci"`
	FCIDefined              bool             `json:"fci_defined"`
	DeferredMaintenanceCost float64          `json:"deferred_maintenance_cost"`
	CurrentReplacementValue float64          `json:"current_replacement_value"`
	CalculatedAt            time.Time        `json:"calculated_at"`
	CalculationMethod       string           `json:"calculation_method"`
}

// OptimizationScenario is one capital-planning run with its parameters and
// aggregate results.
type OptimizationScenario struct {
	ID               string           `json:"id"`
	ProjectID        string           `json:"project_id"`
	Name             string           `json:"name"`
	Status           ScenarioStatus   `json:"status"`
	BudgetConstraint float64          `json:"budget_constraint"` // per year
	BudgetType       BudgetType       `json:"budget_type"`
	TimeHorizon      int              `json:"time_horizon"` // years
	DiscountRate     float64          `json:"discount_rate"`
	Goal             OptimizationGoal `json:"goal"`

	TotalCost       float64 `json:"total_cost"`
	TotalBenefit    float64 `json:"total_benefit"`
	NPV             float64 `json:"npv"`
	ROI             float64 `json:"roi"`
	PaybackYear     int     `json:"payback_year"` // 0 = never within horizon
	CIBefore        float64 `json:"ci_before"`
	CIAfter         float64 `json:"ci_after"`
	FCIBefore       float64 `json:"fci_before"`
	FCIAfter        float64 `json:"fci_after"`
	RiskScoreBefore float64 `json:"risk_score_before"`
	RiskScoreAfter  float64 `json:"risk_score_after"`
	Partial         bool    `json:"partial"` // some candidates excluded by validation

	CreatedAt   time.Time `json:"created_at"`
	OptimizedAt time.Time `json:"optimized_at,omitempty"`
}

// ScenarioStrategy is one candidate action for one component within a scenario.
type ScenarioStrategy struct {
	ID            string       `json:"id"`
	ScenarioID    string       `json:"scenario_id"`
	ComponentCode string       `json:"component_code"`
	Strategy      StrategyType `json:"strategy"`
	ActionYear    int          `json:"action_year"` // offset from scenario start, 1-based
	DeferralYears int          `json:"deferral_years"`

	StrategyCost     float64 `json:"strategy_cost"`
	PresentValueCost float64 `json:"present_value_cost"`

	LifeExtension        float64 `json:"life_extension"` // years
	ConditionImprovement float64 `json:"condition_improvement"`
	RiskReduction        float64 `json:"risk_reduction"`
	FailureCostAvoided   float64 `json:"failure_cost_avoided"`
	MaintenanceSavings   float64 `json:"maintenance_savings"`

	PriorityScore   float64 `json:"priority_score"`
	Selected        bool    `json:"selected"`
	OverBudget      bool    `json:"over_budget,omitempty"` // soft-budget exception pick
	SkipReason      string  `json:"skip_reason,omitempty"` // recorded for every non-selection
	SelectedInYear  int     `json:"selected_in_year,omitempty"`
}

// CashFlowProjection is one projected year of a scenario's cash flows.
type CashFlowProjection struct {
	ScenarioID      string  `json:"scenario_id"`
	Year            int     `json:"year"` // 1-based offset from scenario start
	CapitalCost     float64 `json:"capital_cost"`
	MaintenanceCost float64 `json:"maintenance_cost"`
	OperatingCost   float64 `json:"operating_cost"`
	CostAvoidance   float64 `json:"cost_avoidance"`
	EfficiencyGains float64 `json:"efficiency_gains"`
	NetCashFlow     float64 `json:"net_cash_flow"`
	CumulativeCash  float64 `json:"cumulative_cash"`
	ProjectedCI     float64 `json:"projected_ci"`
	ProjectedFCI    float64 `json:"projected_fci"`
	FCIDefined      bool    `json:"fci_defined"`
}

// PredictionHistory records one prediction call so accuracy can be measured
// retrospectively once the outcome is realized.
type PredictionHistory struct {
	ID            string           `json:"id"`
	ProjectID     string           `json:"project_id"`
	ComponentCode string           `json:"component_code"`
	Method        PredictionMethod `json:"method"`
	CurveUsed     string           `json:"curve_used,omitempty"`
	ModelVersion  string           `json:"model_version"`

	PredictedFailureYear   int     `json:"predicted_failure_year"`
	PredictedRemainingLife float64 `json:"predicted_remaining_life"`
	PredictedCondition     float64 `json:"predicted_condition"`
	ConfidenceScore        float64 `json:"confidence_score"`

	ActualFailureYear     int       `json:"actual_failure_year,omitempty"`
	ActualCondition       float64   `json:"actual_condition,omitempty"`
	PredictionAccuracy    float64   `json:"prediction_accuracy,omitempty"`
	AccuracyMeasured      bool      `json:"accuracy_measured"`
	PredictedAt           time.Time `json:"predicted_at"`
}

// ValidationWarning is a non-fatal problem attached to a specific record.
// Runs that exclude records because of warnings are marked partial, never
// failed outright.
type ValidationWarning struct {
	RecordID string `json:"record_id"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}
