// Package condition rolls component-level assessments up into Condition Index
// (CI) and Facility Condition Index (FCI) values at component, system,
// building, and portfolio levels.
package condition

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"capital_planning/pkg/core/config"
	"capital_planning/pkg/core/finance"
	"capital_planning/pkg/models"
)

// calculationMethod tags every snapshot this package writes so stale or
// legacy rows can be told apart from current ones.
const calculationMethod = "weighted_rollup_v1"

// Result is one aggregation outcome. CIDefined is false when every in-scope
// assessment was not_assessed; FCIDefined is false when the replacement value
// denominator is zero. An undefined ratio is a distinct state, never 0.
type Result struct {
	CI                      float64
	CIDefined               bool
	FCI                     float64 // ratio, deferred maintenance / replacement value
	FCIDefined              bool
	DeferredMaintenanceCost float64
	CurrentReplacementValue float64
}

// FCIPercent returns the FCI as a percentage rounded to the stored 4-decimal
// scale. Only meaningful when FCIDefined.
func (r Result) FCIPercent() float64 {
	return finance.RoundFCI(r.FCI * 100)
}

// partial carries the associative pieces of an aggregation so parallel
// rollups reduce deterministically.
type partial struct {
	weightedScore float64
	weightSum     float64
	repairCost    float64
	replacement   float64
}

func (p partial) add(o partial) partial {
	return partial{
		weightedScore: p.weightedScore + o.weightedScore,
		weightSum:     p.weightSum + o.weightSum,
		repairCost:    p.repairCost + o.repairCost,
		replacement:   p.replacement + o.replacement,
	}
}

// Aggregator computes CI/FCI results using project configuration for
// component weights and the CI scale.
type Aggregator struct {
	cfg *config.Resolver
}

// New creates an aggregator over the given configuration resolver.
func New(cfg *config.Resolver) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// accumulate folds a set of assessments into a partial. not_assessed
// components contribute cost figures but are excluded from the CI
// numerator and denominator.
func (a *Aggregator) accumulate(projectID string, assessments []models.Assessment) partial {
	var p partial
	scale := a.cfg.ScaleFor(projectID)
	for _, as := range assessments {
		p.repairCost += as.EstimatedRepairCost
		p.replacement += as.ReplacementValue

		if as.Condition == models.ConditionNotAssessed || !as.Condition.IsValid() {
			continue
		}
		w := a.cfg.ComponentWeight(projectID, as.ComponentCode)
		score := scale.CIMin + as.Condition.Score()/100.0*(scale.CIMax-scale.CIMin)
		p.weightedScore += score * w
		p.weightSum += w
	}
	return p
}

func (p partial) result() Result {
	r := Result{
		DeferredMaintenanceCost: finance.RoundMoney(p.repairCost),
		CurrentReplacementValue: finance.RoundMoney(p.replacement),
	}
	if p.weightSum > 0 {
		r.CI = finance.RoundCI(p.weightedScore / p.weightSum)
		r.CIDefined = true
	}
	if p.replacement > 0 {
		r.FCI = p.repairCost / p.replacement
		r.FCIDefined = true
	}
	return r
}

// Aggregate computes CI/FCI over a flat set of assessments. The computation
// is a sum-based reduction, so the result is invariant under reordering of
// the input.
func (a *Aggregator) Aggregate(projectID string, assessments []models.Assessment) Result {
	return a.accumulate(projectID, assessments).result()
}

// Snapshot wraps an aggregation result as a persistable snapshot row for one
// (project, level, entity). Source assessments are never mutated.
func (a *Aggregator) Snapshot(projectID string, level models.AggregationLevel, entityID string, assessments []models.Assessment) models.Snapshot {
	r := a.Aggregate(projectID, assessments)
	return snapshotFromResult(projectID, level, entityID, r)
}

func snapshotFromResult(projectID string, level models.AggregationLevel, entityID string, r Result) models.Snapshot {
	s := models.Snapshot{
		ID:                      uuid.NewString(),
		ProjectID:               projectID,
		Level:                   level,
		EntityID:                entityID,
		CIDefined:               r.CIDefined,
		FCIDefined:              r.FCIDefined,
		DeferredMaintenanceCost: r.DeferredMaintenanceCost,
		CurrentReplacementValue: r.CurrentReplacementValue,
		CalculatedAt:            time.Now().UTC(),
		CalculationMethod:       calculationMethod,
	}
	if r.CIDefined {
		s.CI = r.CI
	}
	if r.FCIDefined {
		s.FCI = r.FCIPercent()
	}
	return s
}

// RollupSystems groups assessments by their level-1 classification code and
// emits one system-level snapshot per group, ordered by system code.
func (a *Aggregator) RollupSystems(projectID string, assessments []models.Assessment) []models.Snapshot {
	groups := make(map[string][]models.Assessment)
	for _, as := range assessments {
		sys := models.Component{Code: as.ComponentCode}.SystemCode()
		groups[sys] = append(groups[sys], as)
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	snaps := make([]models.Snapshot, 0, len(codes))
	for _, code := range codes {
		snaps = append(snaps, a.Snapshot(projectID, models.LevelSystem, code, groups[code]))
	}
	return snaps
}

// RollupBuilding aggregates every assessment for one asset into a single
// building-level snapshot.
func (a *Aggregator) RollupBuilding(projectID, assetID string, assessments []models.Assessment) models.Snapshot {
	return a.Snapshot(projectID, models.LevelBuilding, assetID, assessments)
}

// RollupPortfolio aggregates buildings in parallel and reduces the partial
// results in entity-ID order, keeping the output reproducible regardless of
// goroutine completion order. It returns the per-building snapshots followed
// by the portfolio snapshot.
func (a *Aggregator) RollupPortfolio(projectID string, buildings map[string][]models.Assessment) []models.Snapshot {
	ids := make([]string, 0, len(buildings))
	for id := range buildings {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	partials := make([]partial, len(ids))
	done := make(chan int, len(ids))
	for i, id := range ids {
		go func(i int, assessments []models.Assessment) {
			partials[i] = a.accumulate(projectID, assessments)
			done <- i
		}(i, buildings[id])
	}
	for range ids {
		<-done
	}

	snaps := make([]models.Snapshot, 0, len(ids)+1)
	var total partial
	for i, id := range ids {
		snaps = append(snaps, snapshotFromResult(projectID, models.LevelBuilding, id, partials[i].result()))
		total = total.add(partials[i])
	}
	snaps = append(snaps, snapshotFromResult(projectID, models.LevelPortfolio, "", total.result()))
	return snaps
}

// LatestPerComponent filters an assessment history down to the most recent
// finalized version per component code. Superseded versions stay in the
// input untouched; this is a read-side view, not a mutation.
func LatestPerComponent(assessments []models.Assessment) []models.Assessment {
	latest := make(map[string]models.Assessment)
	for _, as := range assessments {
		cur, ok := latest[as.ComponentCode]
		if !ok || as.AssessedAt.After(cur.AssessedAt) ||
			(as.AssessedAt.Equal(cur.AssessedAt) && as.Version > cur.Version) {
			latest[as.ComponentCode] = as
		}
	}

	codes := make([]string, 0, len(latest))
	for code := range latest {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]models.Assessment, 0, len(codes))
	for _, code := range codes {
		out = append(out, latest[code])
	}
	return out
}
