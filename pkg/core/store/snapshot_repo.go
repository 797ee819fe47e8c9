package store

import (
	"context"
	"fmt"

	"capital_planning/pkg/models"
)

// SnapshotRepo handles CI/FCI snapshot rows.
//
// Schema assumption (migrations managed by the surrounding application):
//
//	CREATE TABLE IF NOT EXISTS ci_fci_snapshots (
//	  id UUID PRIMARY KEY,
//	  project_id TEXT NOT NULL,
//	  level TEXT NOT NULL,
//	  entity_id TEXT NOT NULL DEFAULT '',
//	  ci NUMERIC(7,2),
//	  ci_defined BOOLEAN NOT NULL,
//	  fci NUMERIC(10,4),
//	  fci_defined BOOLEAN NOT NULL,
//	  deferred_maintenance_cost NUMERIC(14,2) NOT NULL,
//	  current_replacement_value NUMERIC(14,2) NOT NULL,
//	  calculated_at TIMESTAMPTZ NOT NULL,
//	  calculation_method TEXT NOT NULL,
//	  UNIQUE (project_id, level, entity_id)
//	);
//
// Note: the assessment tables this engine reads from join to projects through
// assets (assessments.asset_id -> assets.project_id); the engine consumes the
// already-joined records and never queries assessments directly.
type SnapshotRepo struct{}

// NewSnapshotRepo creates a new repository instance.
func NewSnapshotRepo() *SnapshotRepo {
	return &SnapshotRepo{}
}

// Save upserts one snapshot row per (project, level, entity), replacing any
// previously cached value. Snapshots are recomputed on demand; a stale row is
// overwritten, never trusted indefinitely.
func (r *SnapshotRepo) Save(ctx context.Context, s models.Snapshot) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	query := `
		INSERT INTO ci_fci_snapshots
			(id, project_id, level, entity_id, ci, ci_defined, fci, fci_defined,
			 deferred_maintenance_cost, current_replacement_value, calculated_at, calculation_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (project_id, level, entity_id)
		DO UPDATE SET
			id = EXCLUDED.id,
			ci = EXCLUDED.ci,
			ci_defined = EXCLUDED.ci_defined,
			fci = EXCLUDED.fci,
			fci_defined = EXCLUDED.fci_defined,
			deferred_maintenance_cost = EXCLUDED.deferred_maintenance_cost,
			current_replacement_value = EXCLUDED.current_replacement_value,
			calculated_at = EXCLUDED.calculated_at,
			calculation_method = EXCLUDED.calculation_method;
	`

	_, err := pool.Exec(ctx, query,
		s.ID, s.ProjectID, string(s.Level), s.EntityID, s.CI, s.CIDefined, s.FCI, s.FCIDefined,
		s.DeferredMaintenanceCost, s.CurrentReplacementValue, s.CalculatedAt, s.CalculationMethod)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// SaveAll persists a batch of snapshots, e.g. a full portfolio rollup.
func (r *SnapshotRepo) SaveAll(ctx context.Context, snapshots []models.Snapshot) error {
	for _, s := range snapshots {
		if err := r.Save(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Latest loads the cached snapshot for one (project, level, entity).
func (r *SnapshotRepo) Latest(ctx context.Context, projectID string, level models.AggregationLevel, entityID string) (*models.Snapshot, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, project_id, level, entity_id, ci, ci_defined, fci, fci_defined,
		       deferred_maintenance_cost, current_replacement_value, calculated_at, calculation_method
		FROM ci_fci_snapshots
		WHERE project_id = $1 AND level = $2 AND entity_id = $3;
	`

	var s models.Snapshot
	var level2 string
	err := pool.QueryRow(ctx, query, projectID, string(level), entityID).Scan(
		&s.ID, &s.ProjectID, &level2, &s.EntityID, &s.CI, &s.CIDefined, &s.FCI, &s.FCIDefined,
		&s.DeferredMaintenanceCost, &s.CurrentReplacementValue, &s.CalculatedAt, &s.CalculationMethod)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	s.Level = models.AggregationLevel(level2)
	return &s, nil
}
