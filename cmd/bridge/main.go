package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/pysugar/atlassian-bridge/internal/config"
	"github.com/pysugar/atlassian-bridge/internal/db"
	"github.com/pysugar/atlassian-bridge/internal/proxy"
	"github.com/pysugar/atlassian-bridge/internal/version"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/api/atlassian", proxy.NewRouter(cfg, database))

	log.Printf("🚀 atlassian-bridge %s starting on http://%s", version.Version, cfg.Addr())
	if !cfg.Enabled {
		log.Printf("⚠️ Atlassian integration is disabled; most endpoints will answer 503")
	}

	if err := http.ListenAndServe(cfg.Addr(), r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
