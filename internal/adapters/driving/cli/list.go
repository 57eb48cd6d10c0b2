package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List assessments",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if assessmentService == nil {
		return errors.New("assessment service not configured")
	}

	assessments, err := assessmentService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list assessments: %w", err)
	}

	if listJSON {
		type row struct {
			ID            string `json:"id"`
			CompanyID     string `json:"company_id"`
			Name          string `json:"name"`
			RunStatus     string `json:"run_status"`
			MaturityScore int    `json:"maturity_score"`
		}
		rows := make([]row, 0, len(assessments))
		for _, a := range assessments {
			rows = append(rows, row{
				ID:            a.ID,
				CompanyID:     a.CompanyID,
				Name:          a.Name,
				RunStatus:     string(a.RunStatus),
				MaturityScore: a.MaturityScore,
			})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal assessments: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(assessments) == 0 {
		cmd.Println("No assessments yet. Create one with: posture new <company-id>")
		return nil
	}

	cmd.Println("Assessments:")
	cmd.Println()
	for _, a := range assessments {
		cmd.Printf("  %s  %s (%s)\n", a.ID, a.Name, a.CompanyID)
		cmd.Printf("      Status: %s  Maturity: %d  Covered: %d/%d\n",
			a.RunStatus, a.MaturityScore, a.ControlsCovered, a.TotalControls)
	}
	return nil
}
