package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"agromarket-backend/pkg/container"
)

type namedCheck struct {
	name string
	fn   func(ctx context.Context) error
}

// startServices runs the startup checks and starts the health endpoint
func startServices(c *container.Container) error {
	checks := workerChecks(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := runChecks(ctx, checks); err != nil {
		return err
	}

	go startHealthCheckServer(c.Config.Worker.HealthPort, checks)
	return nil
}

func workerChecks(c *container.Container) []namedCheck {
	return []namedCheck{
		{"redis", c.Cache.HealthCheck},
		{"database", c.DB.HealthCheck},
		{"storage", c.Storage.HealthCheck},
	}
}

func runChecks(ctx context.Context, checks []namedCheck) error {
	for _, check := range checks {
		if err := check.fn(ctx); err != nil {
			log.Error().Err(err).Str("check", check.name).Msg("Health check failed")
			return fmt.Errorf("%s check failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("Health check passed")
	}
	return nil
}

func startHealthCheckServer(port string, checks []namedCheck) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP", "service": "agromarket-worker"})
	})
	mux.HandleFunc("/ready", readyHandler(checks))

	log.Info().Str("port", port).Msg("Health check server starting")
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Error().Err(err).Msg("Health check server failed")
	}
}

// readyHandler reports 503 while any dependency is down
func readyHandler(checks []namedCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := runChecks(ctx, checks); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "NOT_READY", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "READY"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
