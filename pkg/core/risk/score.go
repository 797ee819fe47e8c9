// Package risk combines probability-of-failure and consequence-of-failure
// factors into a single bounded risk score and categorical level.
package risk

import (
	"time"

	"github.com/google/uuid"

	"capital_planning/pkg/core/config"
	"capital_planning/pkg/core/finance"
	"capital_planning/pkg/models"
)

// deferredMaintHorizon normalizes deferred-maintenance years onto [0,1];
// a decade of deferral saturates the factor.
const deferredMaintHorizon = 10.0

// Result is one scoring outcome. Rule records the combination rule that was
// in effect so the score can be audited later.
type Result struct {
	PoF       float64                    `json:"pof"`
	CoF       float64                    `json:"cof"`
	RiskScore float64                    `json:"risk_score"`
	RiskLevel models.RiskLevel           `json:"risk_level"`
	Rule      models.RiskCombinationRule `json:"rule"`
}

// Scorer evaluates risk with a fixed weight/rule configuration. Identical
// factor inputs always produce identical results.
type Scorer struct {
	scale config.RatingScale
	pofW  config.PoFWeights
	cofW  config.CoFWeights
	rule  models.RiskCombinationRule
}

// NewScorer builds a scorer. An invalid rule falls back to the product rule.
func NewScorer(scale config.RatingScale, pofW config.PoFWeights, cofW config.CoFWeights, rule models.RiskCombinationRule) *Scorer {
	if !rule.IsValid() {
		rule = models.CombineProduct
	}
	return &Scorer{scale: scale, pofW: pofW, cofW: cofW, rule: rule}
}

// NewDefaultScorer is the equal-weight, product-rule, default-scale scorer.
func NewDefaultScorer() *Scorer {
	return NewScorer(config.DefaultRatingScale(), config.DefaultPoFWeights(), config.DefaultCoFWeights(), models.CombineProduct)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// PoF combines the probability sub-factors. Each is clamped to [0,1] before
// weighting; remaining life and condition enter inverted since a fresh,
// healthy component carries low failure probability.
func (s *Scorer) PoF(f models.PoFFactors) float64 {
	factors := []float64{
		clamp01(f.AgeRatio),
		1 - clamp01(f.RemainingLifePercent),
		1 - clamp01(f.ConditionIndex),
		clamp01(f.DeferredMaintYears / deferredMaintHorizon),
		clamp01(f.EnvironmentFactor),
	}
	weights := []float64{s.pofW.AgeRatio, s.pofW.RemainingLife, s.pofW.ConditionIndex, s.pofW.DeferredMaint, s.pofW.Environment}

	return clamp01(weightedAverage(factors, weights))
}

// CoF combines the consequence impact scores. Narrative fields on the input
// are audit payload only and never enter the computation.
func (s *Scorer) CoF(f models.CoFFactors) float64 {
	factors := []float64{
		clamp01(f.Safety),
		clamp01(f.Operational),
		clamp01(f.Financial),
		clamp01(f.Environmental),
		clamp01(f.Reputational),
	}
	weights := []float64{s.cofW.Safety, s.cofW.Operational, s.cofW.Financial, s.cofW.Environmental, s.cofW.Reputational}

	return clamp01(weightedAverage(factors, weights))
}

func weightedAverage(factors, weights []float64) float64 {
	var sum, wsum float64
	for i, f := range factors {
		w := weights[i]
		if w <= 0 {
			continue
		}
		sum += f * w
		wsum += w
	}
	if wsum == 0 {
		return 0
	}
	return sum / wsum
}

// Score computes PoF, CoF, the combined risk score, and its band.
func (s *Scorer) Score(pofFactors models.PoFFactors, cofFactors models.CoFFactors) Result {
	pof := s.PoF(pofFactors)
	cof := s.CoF(cofFactors)

	var score float64
	switch s.rule {
	case models.CombineMax:
		score = pof
		if cof > score {
			score = cof
		}
	case models.CombineWeightedSum:
		score = clamp01(0.5*pof + 0.5*cof)
	default: // product
		score = pof * cof
	}
	score = finance.RoundScore(score)

	return Result{
		PoF:       finance.RoundScore(pof),
		CoF:       finance.RoundScore(cof),
		RiskScore: score,
		RiskLevel: s.scale.Band(score),
		Rule:      s.rule,
	}
}

// ScoreAssessment scores one assessment and wraps the result as a persistable
// row. Persistence itself is the caller's responsibility.
func (s *Scorer) ScoreAssessment(assessmentID string, pofFactors models.PoFFactors, cofFactors models.CoFFactors) models.RiskAssessment {
	r := s.Score(pofFactors, cofFactors)
	return models.RiskAssessment{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		PoF:          r.PoF,
		CoF:          r.CoF,
		RiskScore:    r.RiskScore,
		RiskLevel:    r.RiskLevel,
		Rule:         r.Rule,
		ScoredAt:     time.Now().UTC(),
	}
}

// FactorsFromAssessment derives PoF inputs from an assessment record plus the
// deferred-maintenance backlog measured in years.
func FactorsFromAssessment(a models.Assessment, deferredYears, environment float64) models.PoFFactors {
	f := models.PoFFactors{
		DeferredMaintYears: deferredYears,
		EnvironmentFactor:  environment,
	}
	if a.ExpectedUsefulLife > 0 {
		f.AgeRatio = a.Age() / a.ExpectedUsefulLife
		f.RemainingLifePercent = a.RemainingUsefulLife / a.ExpectedUsefulLife
	}
	if a.Condition != models.ConditionNotAssessed {
		f.ConditionIndex = a.Condition.Score() / 100.0
	}
	return f
}
