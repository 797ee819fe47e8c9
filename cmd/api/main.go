package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	configapi "capital_planning/pkg/api/config"
	"capital_planning/pkg/api/engine"
	"capital_planning/pkg/core/config"
	"capital_planning/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Load project configuration overrides from the configs directory.
	// YAML and HJSON files are both accepted.
	configsPath := "configs"
	if _, err := os.Stat(configsPath); os.IsNotExist(err) {
		exePath, _ := os.Executable()
		configsPath = filepath.Join(filepath.Dir(exePath), "configs")
	}
	projects := loadProjectConfigs(configsPath)
	resolver := config.NewResolver(projects, nil)
	fmt.Printf("[CONFIG] Loaded %d project configs from %s\n", len(projects), configsPath)

	// The database is optional; without it the engine still serves
	// computation and the caller persists results itself.
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database init failed: %v\n", err)
		} else {
			defer store.Close()
			fmt.Println("[STORE] Database pool initialized")
		}
	}

	engine.InitHandler(resolver)
	http.HandleFunc("/api/condition/aggregate", engine.HandleAggregate)
	http.HandleFunc("/api/risk/score", engine.HandleRiskScore)
	http.HandleFunc("/api/prediction/predict", engine.HandlePredict)
	http.HandleFunc("/api/scenario/optimize", engine.HandleOptimize)
	http.HandleFunc("/api/curve/evaluate", engine.HandleCurveEvaluate)

	configHandler := configapi.NewHandler(resolver)
	http.HandleFunc("/api/config/resolve", configHandler.HandleResolve)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /api/condition/aggregate")
	fmt.Println("  - POST /api/risk/score")
	fmt.Println("  - POST /api/prediction/predict")
	fmt.Println("  - POST /api/scenario/optimize")
	fmt.Println("  - POST /api/curve/evaluate")
	fmt.Println("  - GET  /api/config/resolve")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}

func loadProjectConfigs(dir string) []config.ProjectConfig {
	var projects []config.ProjectConfig
	entries, err := os.ReadDir(dir)
	if err != nil {
		return projects
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		var cfg *config.ProjectConfig
		switch {
		case strings.HasSuffix(e.Name(), ".yaml"), strings.HasSuffix(e.Name(), ".yml"):
			cfg, err = config.LoadProjectConfig(path)
		case strings.HasSuffix(e.Name(), ".hjson"):
			cfg, err = config.LoadProjectConfigHJSON(path)
		default:
			continue
		}
		if err != nil {
			fmt.Printf("[WARNING] Skipping config %s: %v\n", path, err)
			continue
		}
		projects = append(projects, *cfg)
	}
	return projects
}
