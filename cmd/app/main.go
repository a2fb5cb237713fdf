package main

import (
	"flag"
	"log"
	"os"

	"rrtracker/internal/di"
	"rrtracker/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s port=%d perRun=%d interval=%s",
		cfg.Environment, cfg.Server.Port, cfg.Alerts.PerRun, cfg.Alerts.Interval)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
