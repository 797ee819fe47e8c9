package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"capital_planning/pkg/models"
)

// ScenarioRepo stores optimization runs. The scenario summary gets its own
// columns; strategies and cash flows ride in a JSONB payload, which keeps the
// write atomic — a partially persisted run must never read as "optimized".
//
// Schema assumption:
//
//	CREATE TABLE IF NOT EXISTS optimization_scenarios (
//	  id UUID PRIMARY KEY,
//	  project_id TEXT NOT NULL,
//	  status TEXT NOT NULL,
//	  summary_json JSONB NOT NULL,
//	  result_json JSONB,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
type ScenarioRepo struct{}

// NewScenarioRepo creates a new repository instance.
func NewScenarioRepo() *ScenarioRepo {
	return &ScenarioRepo{}
}

// scenarioResult is the JSONB payload bundling everything one run produced.
type scenarioResult struct {
	Strategies []models.ScenarioStrategy   `json:"strategies"`
	CashFlows  []models.CashFlowProjection `json:"cash_flows"`
	Warnings   []models.ValidationWarning  `json:"warnings,omitempty"`
}

// Save upserts a scenario with its full optimization result in one statement.
func (r *ScenarioRepo) Save(ctx context.Context, sc models.OptimizationScenario, strategies []models.ScenarioStrategy, cashFlows []models.CashFlowProjection, warnings []models.ValidationWarning) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	summaryJSON, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}
	resultJSON, err := json.Marshal(scenarioResult{Strategies: strategies, CashFlows: cashFlows, Warnings: warnings})
	if err != nil {
		return fmt.Errorf("failed to marshal scenario result: %w", err)
	}

	query := `
		INSERT INTO optimization_scenarios (id, project_id, status, summary_json, result_json, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			status = EXCLUDED.status,
			summary_json = EXCLUDED.summary_json,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at;
	`

	_, err = pool.Exec(ctx, query, sc.ID, sc.ProjectID, string(sc.Status), summaryJSON, resultJSON, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

// Load fetches a scenario and its stored result.
func (r *ScenarioRepo) Load(ctx context.Context, id string) (*models.OptimizationScenario, []models.ScenarioStrategy, []models.CashFlowProjection, error) {
	pool := GetPool()
	if pool == nil {
		return nil, nil, nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT summary_json, result_json FROM optimization_scenarios WHERE id = $1;`

	var summaryJSON, resultJSON []byte
	if err := pool.QueryRow(ctx, query, id).Scan(&summaryJSON, &resultJSON); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load scenario %s: %w", id, err)
	}

	var sc models.OptimizationScenario
	if err := json.Unmarshal(summaryJSON, &sc); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to unmarshal scenario %s: %w", id, err)
	}
	var result scenarioResult
	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to unmarshal scenario result %s: %w", id, err)
		}
	}
	return &sc, result.Strategies, result.CashFlows, nil
}

// UpdateStatus persists a status transition (approve, implement, reopen).
func (r *ScenarioRepo) UpdateStatus(ctx context.Context, id string, status models.ScenarioStatus) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		UPDATE optimization_scenarios
		SET status = $2, summary_json = jsonb_set(summary_json, '{status}', to_jsonb($2::text)), updated_at = $3
		WHERE id = $1;
	`
	_, err := pool.Exec(ctx, query, id, string(status), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update scenario status: %w", err)
	}
	return nil
}
