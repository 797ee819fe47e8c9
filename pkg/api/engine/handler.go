// Package engine exposes the computation engine over JSON HTTP. Handlers do
// no persistence; results go back to the caller, which owns storage.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"capital_planning/pkg/core/condition"
	"capital_planning/pkg/core/config"
	"capital_planning/pkg/core/curve"
	"capital_planning/pkg/core/optimizer"
	"capital_planning/pkg/core/prediction"
	"capital_planning/pkg/core/risk"
	"capital_planning/pkg/models"
)

var (
	resolver   *config.Resolver
	aggregator *condition.Aggregator
	planner    *optimizer.Optimizer
	predictor  *prediction.Engine
)

// InitHandler wires the handler set to a configuration resolver.
func InitHandler(r *config.Resolver) {
	resolver = r
	aggregator = condition.New(r)
	planner = optimizer.New(optimizer.DefaultConfig(), aggregator)
	predictor = prediction.NewEngine()
}

func writeCORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// AggregateRequest computes CI/FCI for a flat scope, or a portfolio rollup
// when Buildings is supplied.
type AggregateRequest struct {
	ProjectID   string                         `json:"project_id"`
	Level       models.AggregationLevel        `json:"level"`
	EntityID    string                         `json:"entity_id"`
	Assessments []models.Assessment            `json:"assessments"`
	Buildings   map[string][]models.Assessment `json:"buildings,omitempty"`
}

type AggregateResponse struct {
	Snapshots []models.Snapshot `json:"snapshots"`
}

func HandleAggregate(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r) {
		return
	}

	var req AggregateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fmt.Printf("[ENGINE] aggregate: project=%s level=%s assessments=%d\n", req.ProjectID, req.Level, len(req.Assessments))

	var snaps []models.Snapshot
	if len(req.Buildings) > 0 {
		snaps = aggregator.RollupPortfolio(req.ProjectID, req.Buildings)
	} else {
		level := req.Level
		if !level.IsValid() {
			level = models.LevelBuilding
		}
		snaps = []models.Snapshot{aggregator.Snapshot(req.ProjectID, level, req.EntityID, req.Assessments)}
	}
	writeJSON(w, AggregateResponse{Snapshots: snaps})
}

// RiskRequest scores one assessment's PoF/CoF factors using the project's
// effective weights, scale, and combination rule.
type RiskRequest struct {
	ProjectID    string            `json:"project_id"`
	AssessmentID string            `json:"assessment_id"`
	PoFFactors   models.PoFFactors `json:"pof_factors"`
	CoFFactors   models.CoFFactors `json:"cof_factors"`
}

func HandleRiskScore(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r) {
		return
	}

	var req RiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pofW, cofW := resolver.WeightsFor(req.ProjectID)
	scorer := risk.NewScorer(resolver.ScaleFor(req.ProjectID), pofW, cofW, resolver.RuleFor(req.ProjectID))
	writeJSON(w, scorer.ScoreAssessment(req.AssessmentID, req.PoFFactors, req.CoFFactors))
}

// PredictRequest forecasts one component. Curve is optional; with no curve
// and fewer than two history points the response carries method=unavailable.
type PredictRequest struct {
	ProjectID     string                     `json:"project_id"`
	ComponentCode string                     `json:"component_code"`
	CurrentAge    float64                    `json:"current_age"`
	CurrentYear   int                        `json:"current_year"`
	Curve         *models.DeteriorationCurve `json:"curve,omitempty"`
	History       []models.Assessment        `json:"history,omitempty"`
}

type PredictResponse struct {
	Prediction prediction.Prediction    `json:"prediction"`
	History    models.PredictionHistory `json:"history"`
}

func HandlePredict(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r) {
		return
	}

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	in := prediction.Input{
		ComponentCode: req.ComponentCode,
		CurrentAge:    req.CurrentAge,
		CurrentYear:   req.CurrentYear,
		History:       req.History,
	}
	if req.Curve != nil {
		ev, err := curve.New(*req.Curve)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in.Curve = ev
	}

	p, h := predictor.Predict(req.ProjectID, in)
	writeJSON(w, PredictResponse{Prediction: p, History: h})
}

// OptimizeRequest runs a draft scenario.
type OptimizeRequest struct {
	Scenario            models.OptimizationScenario `json:"scenario"`
	Candidates          []models.ScenarioStrategy   `json:"candidates"`
	BaselineAssessments []models.Assessment         `json:"baseline_assessments"`
	BaselineRisk        map[string]float64          `json:"baseline_risk,omitempty"`
}

func HandleOptimize(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r) {
		return
	}

	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	fmt.Printf("[ENGINE] optimize: scenario=%s candidates=%d horizon=%d\n",
		req.Scenario.ID, len(req.Candidates), req.Scenario.TimeHorizon)

	out, err := planner.Optimize(optimizer.Input{
		Scenario:            req.Scenario,
		Candidates:          req.Candidates,
		BaselineAssessments: req.BaselineAssessments,
		BaselineRisk:        req.BaselineRisk,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, optimizer.ErrInvalidBudget) || errors.Is(err, optimizer.ErrInvalidHorizon) || errors.Is(err, optimizer.ErrNotDraft) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, out)
}

// CurveEvaluateRequest evaluates a curve at one age.
type CurveEvaluateRequest struct {
	Curve models.DeteriorationCurve `json:"curve"`
	Age   float64                   `json:"age"`
}

type CurveEvaluateResponse struct {
	Condition     float64 `json:"condition"`
	RemainingLife float64 `json:"remaining_life"`
}

func HandleCurveEvaluate(w http.ResponseWriter, r *http.Request) {
	if writeCORS(w, r) {
		return
	}

	var req CurveEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ev, err := curve.New(req.Curve)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, CurveEvaluateResponse{
		Condition:     ev.Evaluate(req.Age),
		RemainingLife: ev.RemainingLife(req.Age),
	})
}
