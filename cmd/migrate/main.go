// Command migrate probes the configured database once, creating its tables
// or indexes, and prints the diagnostic report as JSON.
package main

import (
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/repository/selector"
	"context"
	"encoding/json"
	"log"
	"os"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatalf("FATAL: DATABASE_URL not configured")
	}

	report := selector.Diagnose(context.Background(), cfg.Database.URL, cfg.Database.Name, cfg.Database.ProbeTimeout)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("FATAL: Could not write report: %v", err)
	}
	if !report.Success {
		log.Printf("ERROR: %s", report.Message)
		os.Exit(1)
	}
	log.Printf("INFO: %s", report.Message)
}
