package models

// Condition is the rating an inspector assigns to a component.
type Condition string

const (
	ConditionGood        Condition = "good"
	ConditionFair        Condition = "fair"
	ConditionPoor        Condition = "poor"
	ConditionNotAssessed Condition = "not_assessed"
)

// IsValid returns true if the condition is a known value.
func (c Condition) IsValid() bool {
	switch c {
	case ConditionGood, ConditionFair, ConditionPoor, ConditionNotAssessed:
		return true
	default:
		return false
	}
}

// Score maps the rating onto a 0-100 condition scale midpoint.
// ConditionNotAssessed has no score; callers must exclude it before scoring.
func (c Condition) Score() float64 {
	switch c {
	case ConditionGood:
		return 90.0
	case ConditionFair:
		return 60.0
	case ConditionPoor:
		return 25.0
	default:
		return 0.0
	}
}

// RiskLevel is the categorical band derived from a numeric risk score.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskVeryLow, RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	default:
		return false
	}
}

// StrategyType is the action a candidate strategy proposes for a component.
type StrategyType string

const (
	StrategyReplace      StrategyType = "replace"
	StrategyRehabilitate StrategyType = "rehabilitate"
	StrategyDefer        StrategyType = "defer"
	StrategyDoNothing    StrategyType = "do_nothing"
)

func (s StrategyType) IsValid() bool {
	switch s {
	case StrategyReplace, StrategyRehabilitate, StrategyDefer, StrategyDoNothing:
		return true
	default:
		return false
	}
}

// ScenarioStatus tracks the lifecycle of an optimization scenario.
// Transitions: draft -> optimized -> approved -> implemented (terminal).
type ScenarioStatus string

const (
	StatusDraft       ScenarioStatus = "draft"
	StatusOptimized   ScenarioStatus = "optimized"
	StatusApproved    ScenarioStatus = "approved"
	StatusImplemented ScenarioStatus = "implemented"
)

func (s ScenarioStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusOptimized, StatusApproved, StatusImplemented:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status machine allows moving to next.
func (s ScenarioStatus) CanTransitionTo(next ScenarioStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusOptimized
	case StatusOptimized:
		return next == StatusApproved || next == StatusDraft
	case StatusApproved:
		return next == StatusImplemented
	default:
		return false
	}
}

// BudgetType controls how strictly the optimizer treats the annual budget.
type BudgetType string

const (
	BudgetHard BudgetType = "hard"
	BudgetSoft BudgetType = "soft"
)

func (b BudgetType) IsValid() bool {
	return b == BudgetHard || b == BudgetSoft
}

// OptimizationGoal selects the objective the optimizer maximizes.
type OptimizationGoal string

const (
	GoalMinimizeCost OptimizationGoal = "minimize_cost"
	GoalMaximizeCI   OptimizationGoal = "maximize_ci"
	GoalMaximizeROI  OptimizationGoal = "maximize_roi"
	GoalMinimizeRisk OptimizationGoal = "minimize_risk"
)

func (g OptimizationGoal) IsValid() bool {
	switch g {
	case GoalMinimizeCost, GoalMaximizeCI, GoalMaximizeROI, GoalMinimizeRisk:
		return true
	default:
		return false
	}
}

// PredictionMethod identifies which forecasting model produced a prediction.
type PredictionMethod string

const (
	MethodCurveBased      PredictionMethod = "curve_based"
	MethodHistoricalTrend PredictionMethod = "historical_trend"
	MethodHybrid          PredictionMethod = "hybrid"
	MethodUnavailable     PredictionMethod = "unavailable"
)

func (m PredictionMethod) IsValid() bool {
	switch m {
	case MethodCurveBased, MethodHistoricalTrend, MethodHybrid, MethodUnavailable:
		return true
	default:
		return false
	}
}

// CurveCase distinguishes the best/design/worst variants of a deterioration curve.
type CurveCase string

const (
	CurveBestCase   CurveCase = "best_case"
	CurveDesignCase CurveCase = "design_case"
	CurveWorstCase  CurveCase = "worst_case"
)

func (c CurveCase) IsValid() bool {
	switch c {
	case CurveBestCase, CurveDesignCase, CurveWorstCase:
		return true
	default:
		return false
	}
}

// InterpolationMode is the functional form of a deterioration curve.
type InterpolationMode string

const (
	InterpLinear      InterpolationMode = "linear"
	InterpPolynomial  InterpolationMode = "polynomial"
	InterpExponential InterpolationMode = "exponential"
)

func (m InterpolationMode) IsValid() bool {
	switch m {
	case InterpLinear, InterpPolynomial, InterpExponential:
		return true
	default:
		return false
	}
}

// AggregationLevel is the hierarchy level a CI/FCI snapshot is computed at.
type AggregationLevel string

const (
	LevelComponent AggregationLevel = "component"
	LevelSystem    AggregationLevel = "system"
	LevelBuilding  AggregationLevel = "building"
	LevelPortfolio AggregationLevel = "portfolio"
)

func (l AggregationLevel) IsValid() bool {
	switch l {
	case LevelComponent, LevelSystem, LevelBuilding, LevelPortfolio:
		return true
	default:
		return false
	}
}

// RiskCombinationRule selects how PoF and CoF are combined into a risk score.
type RiskCombinationRule string

const (
	CombineProduct     RiskCombinationRule = "product"
	CombineMax         RiskCombinationRule = "max"
	CombineWeightedSum RiskCombinationRule = "weighted_sum"
)

func (r RiskCombinationRule) IsValid() bool {
	switch r {
	case CombineProduct, CombineMax, CombineWeightedSum:
		return true
	default:
		return false
	}
}
