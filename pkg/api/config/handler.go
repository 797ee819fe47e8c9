package config

import (
	"encoding/json"
	"net/http"

	"capital_planning/pkg/core/config"
	"capital_planning/pkg/models"
)

// Response is the effective configuration for one project after the
// override -> template -> default resolution chain has run.
type Response struct {
	ProjectID string                     `json:"project_id"`
	Scale     config.RatingScale         `json:"scale"`
	PoF       config.PoFWeights          `json:"pof_weights"`
	CoF       config.CoFWeights          `json:"cof_weights"`
	RiskRule  models.RiskCombinationRule `json:"risk_rule"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	Resolver *config.Resolver
}

// NewHandler creates a new config handler
func NewHandler(resolver *config.Resolver) *Handler {
	return &Handler{
		Resolver: resolver,
	}
}

// HandleResolve returns the effective configuration for ?project_id=...
// so clients see exactly what the engine will compute against.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers for local dev
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "project_id is required", http.StatusBadRequest)
		return
	}

	pof, cof := h.Resolver.WeightsFor(projectID)
	resp := Response{
		ProjectID: projectID,
		Scale:     h.Resolver.ScaleFor(projectID),
		PoF:       pof,
		CoF:       cof,
		RiskRule:  h.Resolver.RuleFor(projectID),
	}
	json.NewEncoder(w).Encode(resp)
}
