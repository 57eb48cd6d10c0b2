package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var overrideCmd = &cobra.Command{
	Use:   "override [assessment-id] [control-id] [score]",
	Short: "Manually override a control's score",
	Long: `Sets a control's score by hand, bypassing the scoring engine. The
status is derived from the score: 80 and above is covered, 40 and
above is partial, below 40 is gap. The next run recomputes the score
and clears the override.`,
	Args: cobra.ExactArgs(3),
	RunE: runOverride,
}

func init() {
	rootCmd.AddCommand(overrideCmd)
}

func runOverride(cmd *cobra.Command, args []string) error {
	if assessmentService == nil {
		return errors.New("assessment service not configured")
	}

	score, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid score %q: must be an integer 0-100", args[2])
	}

	sg, err := assessmentService.Override(context.Background(), args[0], args[1], score)
	if err != nil {
		return fmt.Errorf("failed to override: %w", err)
	}

	cmd.Printf("Control %s set to %d (%s).\n", sg.CatalogID, sg.Score, sg.Status)
	return nil
}
