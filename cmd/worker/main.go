package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"agromarket-backend/pkg/container"
	"agromarket-backend/pkg/logger"
)

func main() {
	envErr := godotenv.Load()

	c, err := container.NewContainer()
	if err != nil {
		logger.Init("production", "info")
		log.Fatal().Err(err).Msg("Failed to initialize container")
	}
	defer c.Cleanup()

	logger.Init(c.Config.App.Environment, c.Config.App.LogLevel)
	if envErr != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	handlers, err := initializeHandlers(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize job handlers")
	}

	if err := startServices(c); err != nil {
		log.Fatal().Err(err).Msg("Startup health check failed")
	}

	srv := setupAsynqServer(c, handlers)
	scheduler := setupScheduler(c)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Worker shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Info().Msg("Worker stopped")
}
