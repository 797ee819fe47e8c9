package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"capital_planning/pkg/core/condition"
	"capital_planning/pkg/core/config"
	"capital_planning/pkg/core/risk"
	"capital_planning/pkg/models"
)

// Standalone calculation binary for shell pipelines: feed JSON on the -data
// flag, get a JSON result on stdout.

type fciPayload struct {
	ProjectID   string              `json:"project_id"`
	Assessments []models.Assessment `json:"assessments"`
}

type riskPayload struct {
	PoFFactors models.PoFFactors `json:"pof_factors"`
	CoFFactors models.CoFFactors `json:"cof_factors"`
}

func main() {
	mode := flag.String("mode", "fci", "Mode: fci or risk")
	dataStr := flag.String("data", "", "JSON data payload")
	flag.Parse()

	if *dataStr == "" {
		fmt.Println("Error: No data provided")
		os.Exit(1)
	}

	switch *mode {
	case "fci":
		runFCI(*dataStr)
	case "risk":
		runRisk(*dataStr)
	default:
		fmt.Printf("Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}

func runFCI(data string) {
	var payload fciPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}

	aggregator := condition.New(config.NewResolver(nil, nil))
	result := aggregator.Aggregate(payload.ProjectID, payload.Assessments)

	out := map[string]interface{}{
		"ci":                        result.CI,
		"ci_defined":                result.CIDefined,
		"fci_percent":               result.FCIPercent(),
		"fci_defined":               result.FCIDefined,
		"deferred_maintenance_cost": result.DeferredMaintenanceCost,
		"current_replacement_value": result.CurrentReplacementValue,
	}
	if !result.FCIDefined {
		out["fci_percent"] = nil // undefined is a distinct state, not zero
	}
	json.NewEncoder(os.Stdout).Encode(out)
}

func runRisk(data string) {
	var payload riskPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		fmt.Printf("Error unmarshaling data: %v\n", err)
		os.Exit(1)
	}

	scorer := risk.NewDefaultScorer()
	json.NewEncoder(os.Stdout).Encode(scorer.Score(payload.PoFFactors, payload.CoFFactors))
}
