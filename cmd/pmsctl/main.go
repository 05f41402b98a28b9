package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/shared"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pmsctl",
		Short:         "Operator tools for the PMS webhook pipeline",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(replayCmd())
	root.AddCommand(checkinsCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(hotelsCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(staysCmd())
	return root
}

// loadConfig reads the environment and installs the global logger.
func loadConfig() shared.Config {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	return cfg
}
