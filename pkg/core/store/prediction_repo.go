package store

import (
	"context"
	"fmt"

	"capital_planning/pkg/models"
)

// PredictionRepo stores prediction history rows so forecast accuracy can be
// measured against realized outcomes later.
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS prediction_history (
//	  id UUID PRIMARY KEY,
//	  project_id TEXT NOT NULL,
//	  component_code TEXT NOT NULL,
//	  method TEXT NOT NULL,
//	  curve_used TEXT,
//	  model_version TEXT NOT NULL,
//	  predicted_failure_year INT,
//	  predicted_remaining_life DOUBLE PRECISION,
//	  predicted_condition DOUBLE PRECISION,
//	  confidence_score DOUBLE PRECISION,
//	  actual_failure_year INT,
//	  actual_condition DOUBLE PRECISION,
//	  prediction_accuracy DOUBLE PRECISION,
//	  accuracy_measured BOOLEAN NOT NULL DEFAULT FALSE,
//	  predicted_at TIMESTAMPTZ NOT NULL
//	);
type PredictionRepo struct{}

// NewPredictionRepo creates a new repository instance.
func NewPredictionRepo() *PredictionRepo {
	return &PredictionRepo{}
}

// Save appends one prediction history row. History is append-only; outcomes
// are recorded by UpdateOutcome, never by rewriting the prediction.
func (r *PredictionRepo) Save(ctx context.Context, h models.PredictionHistory) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO prediction_history
			(id, project_id, component_code, method, curve_used, model_version,
			 predicted_failure_year, predicted_remaining_life, predicted_condition,
			 confidence_score, accuracy_measured, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`

	_, err := pool.Exec(ctx, query,
		h.ID, h.ProjectID, h.ComponentCode, string(h.Method), h.CurveUsed, h.ModelVersion,
		h.PredictedFailureYear, h.PredictedRemainingLife, h.PredictedCondition,
		h.ConfidenceScore, h.AccuracyMeasured, h.PredictedAt)
	if err != nil {
		return fmt.Errorf("failed to save prediction history: %w", err)
	}
	return nil
}

// UpdateOutcome fills in realized figures and the retrospective accuracy.
func (r *PredictionRepo) UpdateOutcome(ctx context.Context, h models.PredictionHistory) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		UPDATE prediction_history
		SET actual_failure_year = $2,
		    actual_condition = $3,
		    prediction_accuracy = $4,
		    accuracy_measured = TRUE
		WHERE id = $1;
	`
	_, err := pool.Exec(ctx, query, h.ID, h.ActualFailureYear, h.ActualCondition, h.PredictionAccuracy)
	if err != nil {
		return fmt.Errorf("failed to update prediction outcome: %w", err)
	}
	return nil
}
