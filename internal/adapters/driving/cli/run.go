package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/posture-cli/internal/core/ports/driving"
)

var (
	runCompany string
	runTopK    int
	runDetach  bool
	runJSON    bool
)

var runCmd = &cobra.Command{
	Use:   "run [assessment-id]",
	Short: "Run an assessment",
	Long: `Runs the evidence pipeline for an assessment: every criterion is
matched against retrieved evidence, classified, and scored, and
findings are recorded for controls assessed as gap or partial.

The run blocks until it finishes. Use --detach to start it in the
background and poll with 'posture status'.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runCompany, "company", "", "query another company's evidence partition")
	runCmd.Flags().IntVar(&runTopK, "top-k", 0, "evidence chunks retrieved per criterion")
	runCmd.Flags().BoolVar(&runDetach, "detach", false, "start the run in the background")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	if runner == nil {
		return errors.New("run service not configured")
	}
	assessmentID := args[0]

	opts := driving.RunOptions{
		CompanyID: runCompany,
		TopK:      runTopK,
	}

	if runDetach {
		if err := runner.Start(context.Background(), assessmentID, opts); err != nil {
			return fmt.Errorf("failed to start run: %w", err)
		}
		cmd.Printf("Run started for assessment %s\n", assessmentID)
		cmd.Printf("Check progress with: posture status %s\n", assessmentID)
		return nil
	}

	if !runJSON {
		opts.Progress = func(ev driving.ProgressEvent) {
			switch ev.Phase {
			case driving.PhaseStarting:
				cmd.Printf("Assessing %s...\n", assessmentID)
			case driving.PhaseProcessing:
				cmd.Printf("\rProcessing... %d%%", ev.PercentComplete)
			case driving.PhaseCompleted:
				cmd.Printf("\rProcessing... 100%%\n")
			}
		}
	}

	result, err := runner.Run(context.Background(), assessmentID, opts)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if runJSON {
		data, err := json.MarshalIndent(map[string]any{
			"status":               string(result.Status),
			"safeguards_processed": result.SafeguardsProcessed,
			"errors":               result.Errors,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println()
	cmd.Printf("Run finished: %s\n", result.Status)
	cmd.Printf("  Safeguards processed: %d\n", result.SafeguardsProcessed)
	if len(result.Errors) > 0 {
		cmd.Printf("  Errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			cmd.Printf("    - %s\n", e)
		}
	}

	if assessmentService != nil {
		if a, err := assessmentService.Get(context.Background(), assessmentID); err == nil {
			cmd.Printf("  Maturity score: %d\n", a.MaturityScore)
			cmd.Printf("  Covered: %d  Partial: %d  Gap: %d\n",
				a.ControlsCovered, a.ControlsPartial, a.ControlsGap)
		}
	}
	return nil
}
