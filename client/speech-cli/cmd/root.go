package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	orchestratorURL string
	mappingURL      string
)

var rootCmd = &cobra.Command{
	Use:   "speech-cli",
	Short: "A CLI client to drive the Speech-to-Act pipeline",
	Long: `A command-line interface for pushing classified facts through the orchestrator,
confirming or rejecting pending intents, and inspecting the mapping schema.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func init() {
	rootCmd.PersistentFlags().StringVar(&orchestratorURL, "orchestrator", envOr("ORCHESTRATOR_URL", "http://localhost:3003"), "orchestrator base URL")
	rootCmd.PersistentFlags().StringVar(&mappingURL, "mapping", envOr("MAPPING_URL", "http://localhost:3004"), "mapping service base URL")
}
