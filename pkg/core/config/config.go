// Package config holds the rating scales, weight sets, and curve bindings the
// engine computes against. Effective configuration is always resolved through
// an explicit lookup chain (project override -> template -> global default);
// nothing in here is mutable global state.
package config

import (
	"fmt"
	"os"

	"github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"

	"capital_planning/pkg/models"
)

// RatingScale declares the bounds of the condition index scale and the risk
// thresholds that band a numeric risk score into levels.
type RatingScale struct {
	Name  string  `yaml:"name" json:"name"`
	CIMin float64 `yaml:"ci_min" json:"ci_min"`
	CIMax float64 `yaml:"ci_max" json:"ci_max"`

	// RiskThresholds are the four ascending upper bounds separating the five
	// bands: very_low | low | medium | high | critical.
	RiskThresholds [4]float64 `yaml:"risk_thresholds" json:"risk_thresholds"`
}

// DefaultRatingScale is the 0-100 CI scale with risk bands at evenly spaced
// decile boundaries. Product-rule risk scores concentrate low, so the decile
// spacing keeps the upper bands reachable.
func DefaultRatingScale() RatingScale {
	return RatingScale{
		Name:           "default",
		CIMin:          0,
		CIMax:          100,
		RiskThresholds: [4]float64{0.1, 0.2, 0.3, 0.4},
	}
}

// Band maps a risk score onto its categorical level using this scale's
// thresholds. Scores land in the lowest band whose upper bound they do not
// reach.
func (s RatingScale) Band(riskScore float64) models.RiskLevel {
	switch {
	case riskScore < s.RiskThresholds[0]:
		return models.RiskVeryLow
	case riskScore < s.RiskThresholds[1]:
		return models.RiskLow
	case riskScore < s.RiskThresholds[2]:
		return models.RiskMedium
	case riskScore < s.RiskThresholds[3]:
		return models.RiskHigh
	default:
		return models.RiskCritical
	}
}

// Validate rejects scales whose thresholds are not strictly ascending within
// (0,1) or whose CI bounds are inverted.
func (s RatingScale) Validate() error {
	if s.CIMax <= s.CIMin {
		return fmt.Errorf("rating scale %q: ci_max must exceed ci_min", s.Name)
	}
	prev := 0.0
	for i, t := range s.RiskThresholds {
		if t <= prev || t >= 1 {
			return fmt.Errorf("rating scale %q: risk threshold %d (%f) not strictly ascending within (0,1)", s.Name, i, t)
		}
		prev = t
	}
	return nil
}

// PoFWeights weight the probability-of-failure sub-factors. Zero-value means
// "unset"; use DefaultPoFWeights for the equal-weight default.
type PoFWeights struct {
	AgeRatio       float64 `yaml:"age_ratio" json:"age_ratio"`
	RemainingLife  float64 `yaml:"remaining_life" json:"remaining_life"`
	ConditionIndex float64 `yaml:"condition_index" json:"condition_index"`
	DeferredMaint  float64 `yaml:"deferred_maint" json:"deferred_maint"`
	Environment    float64 `yaml:"environment" json:"environment"`
}

// CoFWeights weight the consequence-of-failure impact dimensions.
type CoFWeights struct {
	Safety        float64 `yaml:"safety" json:"safety"`
	Operational   float64 `yaml:"operational" json:"operational"`
	Financial     float64 `yaml:"financial" json:"financial"`
	Environmental float64 `yaml:"environmental" json:"environmental"`
	Reputational  float64 `yaml:"reputational" json:"reputational"`
}

// DefaultPoFWeights returns the equal-weight default.
func DefaultPoFWeights() PoFWeights {
	return PoFWeights{AgeRatio: 1, RemainingLife: 1, ConditionIndex: 1, DeferredMaint: 1, Environment: 1}
}

// DefaultCoFWeights returns the equal-weight default.
func DefaultCoFWeights() CoFWeights {
	return CoFWeights{Safety: 1, Operational: 1, Financial: 1, Environmental: 1, Reputational: 1}
}

// ProjectConfig is the per-project configuration surface: component weights
// for CI aggregation, optional scale override, risk weights and combination
// rule, curve bindings, and the deferral penalty the optimizer applies.
type ProjectConfig struct {
	ProjectID        string                     `yaml:"project_id" json:"project_id"`
	Scale            *RatingScale               `yaml:"scale,omitempty" json:"scale,omitempty"`
	ComponentWeights map[string]float64         `yaml:"component_weights" json:"component_weights"`
	PoF              *PoFWeights                `yaml:"pof_weights,omitempty" json:"pof_weights,omitempty"`
	CoF              *CoFWeights                `yaml:"cof_weights,omitempty" json:"cof_weights,omitempty"`
	RiskRule         models.RiskCombinationRule `yaml:"risk_rule,omitempty" json:"risk_rule,omitempty"`

	// DeferralPenalty escalates deferred failure/maintenance costs per year
	// of deferral (e.g. 0.05 = 5%/year).
	DeferralPenalty float64 `yaml:"deferral_penalty" json:"deferral_penalty"`

	CurveConfigs []models.ComponentDeteriorationConfig `yaml:"curve_configs" json:"curve_configs"`
}

// Resolver computes effective configuration through the explicit chain
// project override -> template -> global default, as a pure lookup.
type Resolver struct {
	Projects  map[string]ProjectConfig
	Templates map[string]RatingScale // template name -> scale
}

// NewResolver builds a resolver over the known project and template configs.
func NewResolver(projects []ProjectConfig, templates []RatingScale) *Resolver {
	r := &Resolver{
		Projects:  make(map[string]ProjectConfig, len(projects)),
		Templates: make(map[string]RatingScale, len(templates)),
	}
	for _, p := range projects {
		r.Projects[p.ProjectID] = p
	}
	for _, t := range templates {
		r.Templates[t.Name] = t
	}
	return r
}

// ScaleFor resolves the effective rating scale for a project.
func (r *Resolver) ScaleFor(projectID string) RatingScale {
	if p, ok := r.Projects[projectID]; ok && p.Scale != nil {
		return *p.Scale
	}
	if t, ok := r.Templates["standard"]; ok {
		return t
	}
	return DefaultRatingScale()
}

// WeightsFor resolves the effective PoF/CoF weights for a project.
func (r *Resolver) WeightsFor(projectID string) (PoFWeights, CoFWeights) {
	pof, cof := DefaultPoFWeights(), DefaultCoFWeights()
	if p, ok := r.Projects[projectID]; ok {
		if p.PoF != nil {
			pof = *p.PoF
		}
		if p.CoF != nil {
			cof = *p.CoF
		}
	}
	return pof, cof
}

// RuleFor resolves the effective risk combination rule for a project.
func (r *Resolver) RuleFor(projectID string) models.RiskCombinationRule {
	if p, ok := r.Projects[projectID]; ok && p.RiskRule.IsValid() {
		return p.RiskRule
	}
	return models.CombineProduct
}

// ComponentWeight resolves a CI weight for a component code, defaulting to 1.0.
func (r *Resolver) ComponentWeight(projectID, componentCode string) float64 {
	if p, ok := r.Projects[projectID]; ok {
		if w, ok := p.ComponentWeights[componentCode]; ok && w > 0 {
			return w
		}
	}
	return 1.0
}

// CurveConfigFor resolves the curve binding for a component code within a
// project. Returns false when the project has no binding for that code.
func (r *Resolver) CurveConfigFor(projectID, componentCode string) (models.ComponentDeteriorationConfig, bool) {
	p, ok := r.Projects[projectID]
	if !ok {
		return models.ComponentDeteriorationConfig{}, false
	}
	for _, cc := range p.CurveConfigs {
		if cc.ComponentCode == componentCode {
			return cc, true
		}
	}
	return models.ComponentDeteriorationConfig{}, false
}

// LoadProjectConfig reads a project config from a YAML file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Scale != nil {
		if err := cfg.Scale.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadProjectConfigHJSON reads a project config from an HJSON file. Field
// crews hand-edit these overrides, so the tolerant syntax earns its keep.
func LoadProjectConfigHJSON(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg ProjectConfig
	if err := hjson.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse hjson config %s: %w", path, err)
	}
	if cfg.Scale != nil {
		if err := cfg.Scale.Validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
