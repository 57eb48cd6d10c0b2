package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset [assessment-id]",
	Short: "Reset an assessment's run state",
	Long: `Returns the run state machine to idle so the assessment can be run
again. Scores, criteria results, and findings from previous runs are
kept; only the run fields clear.`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	if runner == nil {
		return errors.New("run service not configured")
	}

	reset, err := runner.Reset(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}
	if !reset {
		cmd.Printf("Assessment %s has a run in progress; cancel it first.\n", args[0])
		return nil
	}

	cmd.Printf("Assessment %s reset to idle.\n", args[0])
	return nil
}
