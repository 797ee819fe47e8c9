package prediction

import (
	"time"

	"github.com/google/uuid"

	"capital_planning/pkg/core/finance"
	"capital_planning/pkg/models"
)

// modelVersion tags every PredictionHistory row so accuracy comparisons only
// run within a single model generation.
const modelVersion = "prediction_v1"

// Selector picks the strongest strategy the available data supports.
type Selector struct {
	curve  CurveBasedStrategy
	trend  HistoricalTrendStrategy
	hybrid HybridStrategy
}

// NewSelector creates a selector over the built-in strategies.
func NewSelector() *Selector {
	return &Selector{}
}

// Select returns the strategy to use for the given input, or nil when no
// method is available (no curve and fewer than two history points).
func (s *Selector) Select(in Input) Strategy {
	hasCurve := s.curve.Validate(in) == nil
	hasTrend := s.trend.Validate(in) == nil

	switch {
	case hasCurve && hasTrend:
		return &s.hybrid
	case hasCurve:
		return &s.curve
	case hasTrend:
		return &s.trend
	default:
		return nil
	}
}

// Engine runs predictions and emits the history rows the caller persists.
type Engine struct {
	selector *Selector
}

// NewEngine creates a prediction engine.
func NewEngine() *Engine {
	return &Engine{selector: NewSelector()}
}

// Predict forecasts the component described by in and returns both the
// forecast and its history row. When no method is available the forecast
// carries method=unavailable and confidence 0 rather than a fabricated
// number; the history row is still recorded so the gap is visible.
func (e *Engine) Predict(projectID string, in Input) (Prediction, models.PredictionHistory) {
	var p Prediction

	strategy := e.selector.Select(in)
	if strategy == nil {
		p = Prediction{Method: models.MethodUnavailable, ConfidenceScore: 0}
	} else {
		var err error
		p, err = strategy.Predict(in)
		if err != nil {
			p = Prediction{Method: models.MethodUnavailable, ConfidenceScore: 0}
		}
	}

	history := models.PredictionHistory{
		ID:                     uuid.NewString(),
		ProjectID:              projectID,
		ComponentCode:          in.ComponentCode,
		Method:                 p.Method,
		CurveUsed:              p.CurveUsed,
		ModelVersion:           modelVersion,
		PredictedFailureYear:   p.PredictedFailureYear,
		PredictedRemainingLife: p.PredictedRemainingLife,
		PredictedCondition:     p.PredictedCondition,
		ConfidenceScore:        p.ConfidenceScore,
		PredictedAt:            time.Now().UTC(),
	}
	return p, history
}

// MeasureAccuracy scores a past prediction against the realized outcome:
// accuracy = 1 - |predicted - actual| / actual, clamped to [0,1]. Accuracy is
// only ever computed retrospectively, never at prediction time.
func MeasureAccuracy(predicted, actual float64) float64 {
	if actual == 0 {
		return 0
	}
	acc := 1.0 - (abs(predicted-actual) / abs(actual))
	if acc < 0 {
		acc = 0
	}
	if acc > 1 {
		acc = 1
	}
	return finance.RoundScore(acc)
}

// RecordOutcome fills in the realized figures on a history row and computes
// accuracy against the predicted failure year.
func RecordOutcome(h models.PredictionHistory, actualFailureYear int, actualCondition float64) models.PredictionHistory {
	h.ActualFailureYear = actualFailureYear
	h.ActualCondition = actualCondition
	h.PredictionAccuracy = MeasureAccuracy(float64(h.PredictedFailureYear), float64(actualFailureYear))
	h.AccuracyMeasured = true
	return h
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
