// Package cli implements the posture command-line interface using cobra.
// Commands are thin adapters over the driving ports; services are
// injected by the composition root before Execute.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driving"
	"github.com/custodia-labs/posture-cli/internal/logger"
)

// version is the build version, overridden at link time.
var version = "dev"

// Injected services. Nil until SetServices is called; commands guard
// against nil so help and version work unconfigured.
var (
	assessmentService driving.AssessmentService
	runner            driving.AssessmentRunner
	configStore       driven.ConfigStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "posture",
	Short: "Compliance posture assessment from your evidence corpus",
	Long: `Posture assesses a company's compliance posture against a fixed
control catalog. It retrieves evidence passages from the company's
indexed document corpus, classifies each evidence requirement with an
LLM, scores every control, and records findings for the gaps.

Start with 'posture new' to instantiate an assessment, then
'posture run' to assess it.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects the driving ports used by the commands.
func SetServices(assessments driving.AssessmentService, r driving.AssessmentRunner, config driven.ConfigStore) {
	assessmentService = assessments
	runner = r
	configStore = config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
