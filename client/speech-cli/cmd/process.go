package cmd

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
)

var (
	factFlags   []string
	targetFlags []string
	workflow    string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Map facts to an intention contract and send it through the pipeline",
	Example: `  speech-cli process --fact SLEEP_STATE=ASLEEP@0.95 --target Louis
  speech-cli process --fact MEDICATION_TYPE=ANTIBIOTIC@0.9 --target Zoé --workflow fast`,
	RunE: func(cmd *cobra.Command, args []string) error {
		facts, err := parseFacts(factFlags)
		if err != nil {
			return err
		}
		if len(facts) == 0 {
			return errors.New("at least one --fact is required")
		}
		if len(targetFlags) == 0 {
			return errors.New("at least one --target is required")
		}
		req := processRequest{Facts: facts, Targets: targetFlags, Workflow: workflow}
		return call(cmd.OutOrStdout(), http.MethodPost, endpoint(orchestratorURL, "/api/process"), req)
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm [pending-id]",
	Short: "Confirm and commit a pending intent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := pendingIDRequest{PendingID: args[0]}
		return call(cmd.OutOrStdout(), http.MethodPost, endpoint(orchestratorURL, "/api/process/confirm"), body)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [pending-id]",
	Short: "Reject a pending intent without committing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := pendingIDRequest{PendingID: args[0]}
		return call(cmd.OutOrStdout(), http.MethodPost, endpoint(orchestratorURL, "/api/process/reject"), body)
	},
}

func init() {
	processCmd.Flags().StringArrayVarP(&factFlags, "fact", "f", nil, "fact as DIMENSION=VALUE[@CONFIDENCE] (repeatable)")
	processCmd.Flags().StringArrayVarP(&targetFlags, "target", "t", nil, "child name (repeatable)")
	processCmd.Flags().StringVarP(&workflow, "workflow", "w", "safe", "workflow: safe or fast")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(rejectCmd)
}
