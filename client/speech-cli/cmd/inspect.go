package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List intents awaiting confirmation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, endpoint(orchestratorURL, "/api/process/pending"), nil)
	},
}

var schemaCmd = &cobra.Command{
	Use:       "schema [dimensions|domains|prompt]",
	Short:     "Show the mapping schema",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"dimensions", "domains", "prompt"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/schema"
		if len(args) == 1 {
			path += "/" + args[0]
		}
		return call(cmd.OutOrStdout(), http.MethodGet, endpoint(mappingURL, path), nil)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the orchestrator and, through it, the gateway",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, endpoint(orchestratorURL, "/health"), nil)
	},
}

func init() {
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(healthCmd)
}
