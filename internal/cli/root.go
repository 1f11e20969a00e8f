package cli

import (
	"os"

	"github.com/revisio/revisio/internal/config"
	"github.com/revisio/revisio/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "revisio",
	Short: "Spaced-repetition study planner",
	Long:  "Revisio schedules topic reviews with a forgetting-curve memory model, tracks study time, and predicts exam readiness. Single Go binary.",
}

var configFile string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default ~/.revisio/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(logCmd)
}

// loadConfig resolves the effective configuration for a command run.
func loadConfig() (config.Config, error) {
	return config.Load(configFile, nil)
}

// openDB is a helper that opens the database for CLI commands.
// REVISIO_DB overrides both the config file and the default path.
func openDB() (*store.DB, error) {
	if dbPath := os.Getenv("REVISIO_DB"); dbPath != "" {
		return store.Open(dbPath)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}
