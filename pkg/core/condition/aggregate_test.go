package condition

import (
	"math"
	"testing"
	"time"

	"capital_planning/pkg/core/config"
	"capital_planning/pkg/models"
)

// Three-building campus fixture. Replacement values and repair costs are in
// the range a mid-size facility assessment actually produces.
var assessedAt = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func campusAssessments() []models.Assessment {
	return []models.Assessment{
		{ID: "a1", ComponentCode: "D3010", Condition: models.ConditionFair, EstimatedRepairCost: 5000, ReplacementValue: 100000, ExpectedUsefulLife: 25, RemainingUsefulLife: 10, AssessedAt: assessedAt},
		{ID: "a2", ComponentCode: "D2020", Condition: models.ConditionGood, EstimatedRepairCost: 0, ReplacementValue: 200000, ExpectedUsefulLife: 30, RemainingUsefulLife: 25, AssessedAt: assessedAt},
		{ID: "a3", ComponentCode: "B3010", Condition: models.ConditionPoor, EstimatedRepairCost: 2500, ReplacementValue: 50000, ExpectedUsefulLife: 20, RemainingUsefulLife: 3, AssessedAt: assessedAt},
	}
}

func newAggregator() *Aggregator {
	return New(config.NewResolver(nil, nil))
}

func TestFCIReferenceScenario(t *testing.T) {
	r := newAggregator().Aggregate("p1", campusAssessments())

	// 7500 / 350000 = 2.142857...%, rounded to 4 places = 2.1429%
	if !r.FCIDefined {
		t.Fatal("FCI should be defined")
	}
	if got := r.FCIPercent(); got != 2.1429 {
		t.Errorf("expected FCI 2.1429%%, got %.4f%%", got)
	}
	if r.DeferredMaintenanceCost != 7500 {
		t.Errorf("expected deferred maintenance 7500, got %.2f", r.DeferredMaintenanceCost)
	}
	if r.CurrentReplacementValue != 350000 {
		t.Errorf("expected replacement value 350000, got %.2f", r.CurrentReplacementValue)
	}
}

func TestFCIUndefinedNotZero(t *testing.T) {
	assessments := []models.Assessment{
		{ID: "a1", ComponentCode: "D3010", Condition: models.ConditionFair, EstimatedRepairCost: 5000, ReplacementValue: 0, AssessedAt: assessedAt},
	}
	r := newAggregator().Aggregate("p1", assessments)

	if r.FCIDefined {
		t.Fatal("FCI with zero replacement value must be undefined, not a number")
	}
	if r.DeferredMaintenanceCost != 5000 {
		t.Errorf("deferred maintenance should still be reported, got %.2f", r.DeferredMaintenanceCost)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	agg := newAggregator()
	forward := campusAssessments()
	reversed := []models.Assessment{forward[2], forward[0], forward[1]}

	r1 := agg.Aggregate("p1", forward)
	r2 := agg.Aggregate("p1", reversed)

	if r1 != r2 {
		t.Errorf("aggregation must be order-independent: %+v vs %+v", r1, r2)
	}
}

func TestNotAssessedExcludedFromCI(t *testing.T) {
	agg := newAggregator()
	base := campusAssessments()
	withUnassessed := append(campusAssessments(), models.Assessment{
		ID: "a4", ComponentCode: "C1010", Condition: models.ConditionNotAssessed,
		EstimatedRepairCost: 0, ReplacementValue: 80000, AssessedAt: assessedAt,
	})

	r1 := agg.Aggregate("p1", base)
	r2 := agg.Aggregate("p1", withUnassessed)

	// not_assessed never scores as zero: CI unchanged, costs still counted.
	if r1.CI != r2.CI {
		t.Errorf("not_assessed component changed CI: %.2f vs %.2f", r1.CI, r2.CI)
	}
	if r2.CurrentReplacementValue != 430000 {
		t.Errorf("replacement value should include unassessed component, got %.2f", r2.CurrentReplacementValue)
	}
}

func TestCIAllUnassessedUndefined(t *testing.T) {
	assessments := []models.Assessment{
		{ID: "a1", ComponentCode: "D3010", Condition: models.ConditionNotAssessed, ReplacementValue: 100000, AssessedAt: assessedAt},
	}
	r := newAggregator().Aggregate("p1", assessments)
	if r.CIDefined {
		t.Fatal("CI over only not_assessed components must be undefined")
	}
}

func TestComponentWeightsApplied(t *testing.T) {
	resolver := config.NewResolver([]config.ProjectConfig{{
		ProjectID:        "p1",
		ComponentWeights: map[string]float64{"D3010": 3.0},
	}}, nil)
	agg := New(resolver)

	assessments := []models.Assessment{
		{ID: "a1", ComponentCode: "D3010", Condition: models.ConditionPoor, ReplacementValue: 1, AssessedAt: assessedAt},
		{ID: "a2", ComponentCode: "D2020", Condition: models.ConditionGood, ReplacementValue: 1, AssessedAt: assessedAt},
	}
	r := agg.Aggregate("p1", assessments)

	// (25*3 + 90*1) / 4 = 41.25
	if math.Abs(r.CI-41.25) > 1e-9 {
		t.Errorf("expected weighted CI 41.25, got %.2f", r.CI)
	}
}

func TestRollupSystems(t *testing.T) {
	snaps := newAggregator().RollupSystems("p1", campusAssessments())

	// D3010 and D2020 share major group D; B3010 is its own group.
	if len(snaps) != 2 {
		t.Fatalf("expected 2 system snapshots, got %d", len(snaps))
	}
	if snaps[0].EntityID != "B" || snaps[1].EntityID != "D" {
		t.Errorf("system snapshots should be ordered by code, got %s, %s", snaps[0].EntityID, snaps[1].EntityID)
	}
	if snaps[0].Level != models.LevelSystem {
		t.Errorf("expected system level, got %s", snaps[0].Level)
	}
}

func TestRollupPortfolioDeterministic(t *testing.T) {
	agg := newAggregator()
	buildings := map[string][]models.Assessment{
		"bldg-admin": campusAssessments(),
		"bldg-lab": {
			{ID: "b1", ComponentCode: "D3010", Condition: models.ConditionGood, EstimatedRepairCost: 1000, ReplacementValue: 150000, AssessedAt: assessedAt},
		},
		"bldg-gym": {
			{ID: "c1", ComponentCode: "B2010", Condition: models.ConditionPoor, EstimatedRepairCost: 9000, ReplacementValue: 60000, AssessedAt: assessedAt},
		},
	}

	first := agg.RollupPortfolio("p1", buildings)
	if len(first) != 4 {
		t.Fatalf("expected 3 building snapshots + 1 portfolio snapshot, got %d", len(first))
	}
	for i, want := range []string{"bldg-admin", "bldg-gym", "bldg-lab"} {
		if first[i].EntityID != want {
			t.Errorf("building snapshot %d: expected %s, got %s", i, want, first[i].EntityID)
		}
	}

	portfolio := first[3]
	if portfolio.Level != models.LevelPortfolio {
		t.Fatalf("last snapshot should be portfolio level, got %s", portfolio.Level)
	}
	// 7500+1000+9000 over 350000+150000+60000
	wantFCI := 17500.0 / 560000.0 * 100
	if math.Abs(portfolio.FCI-wantFCI) > 0.0001 {
		t.Errorf("expected portfolio FCI %.4f, got %.4f", wantFCI, portfolio.FCI)
	}

	// Parallel rollup must reduce identically run to run.
	for i := 0; i < 10; i++ {
		again := agg.RollupPortfolio("p1", buildings)
		for j := range again {
			if again[j].FCI != first[j].FCI || again[j].CI != first[j].CI || again[j].EntityID != first[j].EntityID {
				t.Fatalf("portfolio rollup not deterministic at snapshot %d", j)
			}
		}
	}
}

func TestSnapshotRoundTripPrecision(t *testing.T) {
	agg := newAggregator()
	s1 := agg.Snapshot("p1", models.LevelBuilding, "bldg-admin", campusAssessments())
	s2 := agg.Snapshot("p1", models.LevelBuilding, "bldg-admin", campusAssessments())

	// Recomputing from the same source yields bit-identical values at the
	// declared precision.
	if s1.CI != s2.CI || s1.FCI != s2.FCI ||
		s1.DeferredMaintenanceCost != s2.DeferredMaintenanceCost ||
		s1.CurrentReplacementValue != s2.CurrentReplacementValue {
		t.Errorf("recomputed snapshot differs: %+v vs %+v", s1, s2)
	}
	if s1.CalculationMethod == "" {
		t.Error("snapshot must carry a calculation method tag")
	}
	if s1.CalculatedAt.IsZero() {
		t.Error("snapshot must carry a calculation timestamp")
	}
}

func TestLatestPerComponent(t *testing.T) {
	older := assessedAt.AddDate(-2, 0, 0)
	history := []models.Assessment{
		{ID: "v1", Version: 1, ComponentCode: "D3010", Condition: models.ConditionGood, AssessedAt: older},
		{ID: "v2", Version: 2, ComponentCode: "D3010", Condition: models.ConditionFair, AssessedAt: assessedAt},
		{ID: "w1", Version: 1, ComponentCode: "B3010", Condition: models.ConditionPoor, AssessedAt: older},
	}

	latest := LatestPerComponent(history)
	if len(latest) != 2 {
		t.Fatalf("expected 2 components, got %d", len(latest))
	}
	if latest[1].ID != "v2" {
		t.Errorf("expected latest version v2 for D3010, got %s", latest[1].ID)
	}
}
