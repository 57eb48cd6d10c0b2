package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var findingsJSON bool

var findingsCmd = &cobra.Command{
	Use:   "findings [assessment-id]",
	Short: "List an assessment's findings",
	Long: `Lists the remediation findings recorded for an assessment. A finding
is opened for every control assessed as gap (high severity) or partial
(medium severity).`,
	Args: cobra.ExactArgs(1),
	RunE: runFindings,
}

func init() {
	findingsCmd.Flags().BoolVar(&findingsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(findingsCmd)
}

func runFindings(cmd *cobra.Command, args []string) error {
	if assessmentService == nil {
		return errors.New("assessment service not configured")
	}

	findings, err := assessmentService.Findings(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get findings: %w", err)
	}

	if findingsJSON {
		type row struct {
			ID          string `json:"id"`
			CatalogID   string `json:"catalog_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Severity    string `json:"severity"`
			Status      string `json:"status"`
		}
		rows := make([]row, 0, len(findings))
		for _, f := range findings {
			rows = append(rows, row{
				ID:          f.ID,
				CatalogID:   f.CatalogID,
				Title:       f.Title,
				Description: f.Description,
				Severity:    string(f.Severity),
				Status:      string(f.Status),
			})
		}
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal findings: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(findings) == 0 {
		cmd.Println("No findings.")
		return nil
	}

	cmd.Printf("Findings (%d):\n", len(findings))
	cmd.Println()
	for _, f := range findings {
		cmd.Printf("  [%s] %s (%s)\n", f.Severity, f.Title, f.Status)
		cmd.Printf("      %s\n", f.Description)
		cmd.Println()
	}
	return nil
}
