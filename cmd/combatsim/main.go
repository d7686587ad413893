// Package main runs seeded demonstration encounters against the combat
// engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	seed       uint64
)

var rootCmd = &cobra.Command{
	Use:   "combatsim",
	Short: "Tactical combat simulator",
	Long: `combatsim runs encounters between a party, its henchmen and a band of
hostiles using the combat rules engine. Configuration comes from --config and
TACTICS_ environment variables (a .env file is loaded when present).`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "dice seed (0 = cryptographic randomness)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(templatesCmd)
}
