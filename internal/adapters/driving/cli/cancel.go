package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [assessment-id]",
	Short: "Cancel a running assessment",
	Long: `Flags a running assessment for cancellation. The run stops before the
next safeguard; the in-flight safeguard completes its network calls
first, so cancellation is not instantaneous.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	if runner == nil {
		return errors.New("run service not configured")
	}

	cancelled, err := runner.Cancel(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to cancel: %w", err)
	}
	if !cancelled {
		cmd.Printf("No run in progress for assessment %s.\n", args[0])
		return nil
	}

	cmd.Printf("Run for assessment %s cancelled.\n", args[0])
	return nil
}
