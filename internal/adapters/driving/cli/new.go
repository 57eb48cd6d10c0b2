package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	newName string
	newJSON bool
)

var newCmd = &cobra.Command{
	Use:   "new [company-id]",
	Short: "Create an assessment from the control catalog",
	Long: `Instantiates a new assessment for a company. One safeguard is created
per catalog control and one criterion per evidence requirement, all
starting unassessed. The company id determines which evidence partition
is queried during runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&newName, "name", "", "assessment name (defaults to a dated name)")
	newCmd.Flags().BoolVar(&newJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	if assessmentService == nil {
		return errors.New("assessment service not configured")
	}

	assessment, err := assessmentService.Create(context.Background(), args[0], newName)
	if err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}

	if newJSON {
		data, err := json.MarshalIndent(map[string]any{
			"id":             assessment.ID,
			"company_id":     assessment.CompanyID,
			"name":           assessment.Name,
			"total_controls": assessment.TotalControls,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal assessment: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Created assessment %s\n", assessment.ID)
	cmd.Printf("  Company:  %s\n", assessment.CompanyID)
	cmd.Printf("  Name:     %s\n", assessment.Name)
	cmd.Printf("  Controls: %d\n", assessment.TotalControls)
	cmd.Println()
	cmd.Printf("Run it with: posture run %s\n", assessment.ID)
	return nil
}
