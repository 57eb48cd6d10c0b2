package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driving"
)

// executeCommand runs the root command with the given args and returns
// the combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		// Flag variables persist between executions; reset them so
		// tests stay independent.
		runCompany, runTopK, runDetach, runJSON = "", 0, false, false
		newName, newJSON = "", false
		listJSON, statusJSON, findingsJSON, controlsJSON = false, false, false, false
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices swaps the injected services for the duration of a test.
func withServices(t *testing.T, svc driving.AssessmentService, r driving.AssessmentRunner) {
	t.Helper()
	oldSvc, oldRunner := assessmentService, runner
	assessmentService = svc
	runner = r
	t.Cleanup(func() {
		assessmentService = oldSvc
		runner = oldRunner
	})
}

// mockAssessmentService implements driving.AssessmentService.
type mockAssessmentService struct {
	assessment  *domain.Assessment
	assessments []domain.Assessment
	safeguards  []domain.Safeguard
	findings    []domain.Finding
	overridden  *domain.Safeguard
	err         error

	createdCompany string
	createdName    string
	overrideScore  int
}

func (m *mockAssessmentService) Create(_ context.Context, companyID, name string) (*domain.Assessment, error) {
	m.createdCompany = companyID
	m.createdName = name
	return m.assessment, m.err
}

func (m *mockAssessmentService) Get(_ context.Context, _ string) (*domain.Assessment, error) {
	return m.assessment, m.err
}

func (m *mockAssessmentService) List(_ context.Context) ([]domain.Assessment, error) {
	return m.assessments, m.err
}

func (m *mockAssessmentService) Safeguards(_ context.Context, _ string) ([]domain.Safeguard, error) {
	return m.safeguards, m.err
}

func (m *mockAssessmentService) Override(_ context.Context, _, _ string, score int) (*domain.Safeguard, error) {
	m.overrideScore = score
	return m.overridden, m.err
}

func (m *mockAssessmentService) Findings(_ context.Context, _ string) ([]domain.Finding, error) {
	return m.findings, m.err
}

// mockRunner implements driving.AssessmentRunner.
type mockRunner struct {
	result    *driving.RunResult
	info      *driving.RunStatusInfo
	cancelled bool
	reset     bool
	err       error

	ranDetached bool
	runOpts     driving.RunOptions
}

func (m *mockRunner) Run(_ context.Context, _ string, opts driving.RunOptions) (*driving.RunResult, error) {
	m.runOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if opts.Progress != nil {
		opts.Progress(driving.ProgressEvent{Phase: driving.PhaseStarting, PercentComplete: 0})
		opts.Progress(driving.ProgressEvent{Phase: driving.PhaseProcessing, PercentComplete: 50})
		opts.Progress(driving.ProgressEvent{Phase: driving.PhaseCompleted, PercentComplete: 100})
	}
	return m.result, nil
}

func (m *mockRunner) Start(_ context.Context, _ string, opts driving.RunOptions) error {
	m.ranDetached = true
	m.runOpts = opts
	return m.err
}

func (m *mockRunner) Status(_ context.Context, _ string) (*driving.RunStatusInfo, error) {
	return m.info, m.err
}

func (m *mockRunner) Cancel(_ context.Context, _ string) (bool, error) {
	return m.cancelled, m.err
}

func (m *mockRunner) Reset(_ context.Context, _ string) (bool, error) {
	return m.reset, m.err
}
