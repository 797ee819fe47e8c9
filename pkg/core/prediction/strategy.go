// Package prediction forecasts future component condition, failure year, and
// remaining life from deterioration curves and assessment history.
//
// Forecasting is a pluggable Strategy; the Selector picks the best available
// method for the data on hand and never fabricates a forecast when neither a
// curve nor enough history exists.
package prediction

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"capital_planning/pkg/core/curve"
	"capital_planning/pkg/models"
)

// ErrInsufficientData is returned when a strategy lacks the inputs it needs
// (no curve configured, fewer than two history points).
var ErrInsufficientData = errors.New("insufficient data for prediction")

// minHistoryPoints is the floor for fitting a trend line.
const minHistoryPoints = 2

// defaultFailThreshold is the 0-100 condition at which a component with no
// configured curve is considered failed.
const defaultFailThreshold = 20.0

// curveBasedConfidence reflects that a curve is an engineering estimate, not
// observed component behavior; trend confidence is computed from the fit.
const curveBasedConfidence = 0.8

// Input carries everything a strategy may draw on.
type Input struct {
	ComponentCode string
	CurrentAge    float64 // years
	CurrentYear   int

	Curve   *curve.Evaluator    // active curve for the component, nil if unconfigured
	History []models.Assessment // prior assessments for the same component
}

// Prediction is one forecast.
type Prediction struct {
	Method                 models.PredictionMethod `json:"method"`
	PredictedCondition     float64                 `json:"predicted_condition"`
	PredictedRemainingLife float64                 `json:"predicted_remaining_life"`
	PredictedFailureYear   int                     `json:"predicted_failure_year"`
	ConfidenceScore        float64                 `json:"confidence_score"`
	CurveUsed              string                  `json:"curve_used,omitempty"`
}

// Strategy is a pluggable forecasting algorithm.
type Strategy interface {
	Name() models.PredictionMethod
	Validate(in Input) error
	Predict(in Input) (Prediction, error)
}

// =============================================================================
// CURVE-BASED STRATEGY
// =============================================================================

// CurveBasedStrategy evaluates the component's active deterioration curve at
// its current age.
type CurveBasedStrategy struct{}

func (s *CurveBasedStrategy) Name() models.PredictionMethod { return models.MethodCurveBased }

func (s *CurveBasedStrategy) Validate(in Input) error {
	if in.Curve == nil {
		return fmt.Errorf("%w: no curve configured for %s", ErrInsufficientData, in.ComponentCode)
	}
	return nil
}

func (s *CurveBasedStrategy) Predict(in Input) (Prediction, error) {
	if err := s.Validate(in); err != nil {
		return Prediction{}, err
	}
	remaining := in.Curve.RemainingLife(in.CurrentAge)
	return Prediction{
		Method:                 models.MethodCurveBased,
		PredictedCondition:     in.Curve.Evaluate(in.CurrentAge),
		PredictedRemainingLife: remaining,
		PredictedFailureYear:   in.CurrentYear + int(math.Round(remaining)),
		ConfidenceScore:        curveBasedConfidence,
		CurveUsed:              in.Curve.Curve().ID,
	}, nil
}

// =============================================================================
// HISTORICAL TREND STRATEGY
// =============================================================================

// HistoricalTrendStrategy fits a least-squares line over the component's
// assessment history. Confidence falls with fewer points and with higher
// residual variance around the fitted line.
type HistoricalTrendStrategy struct{}

func (s *HistoricalTrendStrategy) Name() models.PredictionMethod { return models.MethodHistoricalTrend }

func (s *HistoricalTrendStrategy) Validate(in Input) error {
	if len(in.History) < minHistoryPoints {
		return fmt.Errorf("%w: %d history points for %s, need %d",
			ErrInsufficientData, len(in.History), in.ComponentCode, minHistoryPoints)
	}
	return nil
}

func (s *HistoricalTrendStrategy) Predict(in Input) (Prediction, error) {
	if err := s.Validate(in); err != nil {
		return Prediction{}, err
	}

	history := append([]models.Assessment(nil), in.History...)
	sort.Slice(history, func(i, j int) bool { return history[i].AssessedAt.Before(history[j].AssessedAt) })

	// x = years since first assessment, y = condition score on the 0-100 scale.
	origin := history[0].AssessedAt
	xs := make([]float64, 0, len(history))
	ys := make([]float64, 0, len(history))
	for _, a := range history {
		if a.Condition == models.ConditionNotAssessed {
			continue
		}
		xs = append(xs, a.AssessedAt.Sub(origin).Hours()/(24*365.25))
		ys = append(ys, a.Condition.Score())
	}
	if len(xs) < minHistoryPoints {
		return Prediction{}, fmt.Errorf("%w: %d scored history points for %s, need %d",
			ErrInsufficientData, len(xs), in.ComponentCode, minHistoryPoints)
	}

	slope, intercept := leastSquares(xs, ys)

	now := xs[len(xs)-1]
	predicted := intercept + slope*now
	if predicted > 100 {
		predicted = 100
	}
	if predicted < 0 {
		predicted = 0
	}

	threshold := defaultFailThreshold
	if in.Curve != nil {
		threshold = in.Curve.Curve().FailThreshold
	}

	remaining := 0.0
	if slope < 0 && predicted > threshold {
		remaining = (threshold - predicted) / slope // slope negative, result positive
	} else if slope >= 0 && predicted > threshold {
		// Condition holding or improving across observations; trend alone
		// cannot place a failure year. Cap at the assessed remaining life.
		remaining = history[len(history)-1].RemainingUsefulLife
	}

	return Prediction{
		Method:                 models.MethodHistoricalTrend,
		PredictedCondition:     predicted,
		PredictedRemainingLife: remaining,
		PredictedFailureYear:   in.CurrentYear + int(math.Round(remaining)),
		ConfidenceScore:        trendConfidence(xs, ys, slope, intercept),
	}, nil
}

func leastSquares(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// trendConfidence combines a point-count factor (more observations, more
// trust) with a fit factor (residual RMSE normalized against the 0-100
// condition scale).
func trendConfidence(xs, ys []float64, slope, intercept float64) float64 {
	n := float64(len(xs))

	var sse float64
	for i := range xs {
		residual := ys[i] - (intercept + slope*xs[i])
		sse += residual * residual
	}
	rmse := math.Sqrt(sse / n)

	pointFactor := 1.0 - 1.0/n // 2 points -> 0.5, asymptotically 1
	fitFactor := 1.0 - rmse/100.0
	if fitFactor < 0 {
		fitFactor = 0
	}

	c := pointFactor * fitFactor
	if c > 1 {
		c = 1
	}
	return c
}

// =============================================================================
// HYBRID STRATEGY
// =============================================================================

// HybridStrategy blends the curve and trend forecasts, weighting each by its
// own confidence score.
type HybridStrategy struct {
	curve CurveBasedStrategy
	trend HistoricalTrendStrategy
}

func (s *HybridStrategy) Name() models.PredictionMethod { return models.MethodHybrid }

func (s *HybridStrategy) Validate(in Input) error {
	if err := s.curve.Validate(in); err != nil {
		return err
	}
	return s.trend.Validate(in)
}

func (s *HybridStrategy) Predict(in Input) (Prediction, error) {
	cp, err := s.curve.Predict(in)
	if err != nil {
		return Prediction{}, err
	}
	tp, err := s.trend.Predict(in)
	if err != nil {
		return Prediction{}, err
	}

	wTotal := cp.ConfidenceScore + tp.ConfidenceScore
	if wTotal == 0 {
		return Prediction{}, fmt.Errorf("%w: both methods produced zero confidence for %s",
			ErrInsufficientData, in.ComponentCode)
	}
	wc := cp.ConfidenceScore / wTotal
	wt := tp.ConfidenceScore / wTotal

	remaining := wc*cp.PredictedRemainingLife + wt*tp.PredictedRemainingLife
	return Prediction{
		Method:                 models.MethodHybrid,
		PredictedCondition:     wc*cp.PredictedCondition + wt*tp.PredictedCondition,
		PredictedRemainingLife: remaining,
		PredictedFailureYear:   in.CurrentYear + int(math.Round(remaining)),
		ConfidenceScore:        math.Max(cp.ConfidenceScore, tp.ConfidenceScore),
		CurveUsed:              cp.CurveUsed,
	}, nil
}
