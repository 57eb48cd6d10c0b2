package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status [assessment-id]",
	Short: "Show run status for an assessment",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if runner == nil {
		return errors.New("run service not configured")
	}

	info, err := runner.Status(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if info == nil {
		if statusJSON {
			cmd.Println("null")
			return nil
		}
		cmd.Printf("Assessment %s not found.\n", args[0])
		return nil
	}

	if statusJSON {
		payload := map[string]any{
			"status":   string(info.Status),
			"progress": info.Progress,
		}
		if !info.StartedAt.IsZero() {
			payload["started_at"] = info.StartedAt.Format(time.RFC3339)
		}
		if !info.CompletedAt.IsZero() {
			payload["completed_at"] = info.CompletedAt.Format(time.RFC3339)
		}
		if info.Error != "" {
			payload["error"] = info.Error
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Status:   %s\n", info.Status)
	cmd.Printf("Progress: %d%%\n", info.Progress)
	if !info.StartedAt.IsZero() {
		cmd.Printf("Started:  %s\n", info.StartedAt.Format(time.RFC3339))
	}
	if !info.CompletedAt.IsZero() {
		cmd.Printf("Finished: %s\n", info.CompletedAt.Format(time.RFC3339))
	}
	if info.Error != "" {
		cmd.Printf("Error:    %s\n", info.Error)
	}
	return nil
}
