package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"agromarket-backend/internal/config"
	"agromarket-backend/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "importer",
	Short:         "Bulk product import tools for AgroMarket suppliers",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		logger.Init(getEnv("APP_ENV", "development"), getEnv("LOG_LEVEL", "warn"))
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("importer failed")
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads the same environment as the api and worker
func loadConfig() (*config.Config, error) {
	return config.Load()
}
