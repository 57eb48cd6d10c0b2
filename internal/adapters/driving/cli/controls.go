package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var controlsJSON bool

var controlsCmd = &cobra.Command{
	Use:   "controls [assessment-id]",
	Short: "Show an assessment's control scores",
	Args:  cobra.ExactArgs(1),
	RunE:  runControls,
}

func init() {
	controlsCmd.Flags().BoolVar(&controlsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(controlsCmd)
}

func runControls(cmd *cobra.Command, args []string) error {
	if assessmentService == nil {
		return errors.New("assessment service not configured")
	}

	safeguards, err := assessmentService.Safeguards(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get controls: %w", err)
	}

	if controlsJSON {
		type row struct {
			CatalogID      string `json:"catalog_id"`
			Name           string `json:"name"`
			Score          int    `json:"score"`
			Status         string `json:"status"`
			ManualOverride bool   `json:"manual_override"`
		}
		rows := make([]row, 0, len(safeguards))
		for _, sg := range safeguards {
			rows = append(rows, row{
				CatalogID:      sg.CatalogID,
				Name:           sg.Name,
				Score:          sg.Score,
				Status:         string(sg.Status),
				ManualOverride: sg.ManualOverride,
			})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal controls: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(safeguards) == 0 {
		cmd.Println("No controls found.")
		return nil
	}

	cmd.Println("Controls:")
	cmd.Println()
	for _, sg := range safeguards {
		marker := ""
		if sg.ManualOverride {
			marker = " (manual)"
		}
		cmd.Printf("  %-6s %-40s %3d  %s%s\n", sg.CatalogID, sg.Name, sg.Score, sg.Status, marker)
	}
	return nil
}
