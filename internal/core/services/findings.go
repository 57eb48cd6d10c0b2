package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
	"github.com/custodia-labs/posture-cli/internal/logger"
)

// FindingGenerator derives remediation findings for safeguards scored
// as gap or partial. Findings are deduplicated on the safeguard's
// catalog id, so repeated runs never create duplicates.
type FindingGenerator struct {
	store driven.AssessmentStore
}

// NewFindingGenerator creates a finding generator.
func NewFindingGenerator(store driven.AssessmentStore) *FindingGenerator {
	return &FindingGenerator{store: store}
}

// Generate creates a finding for the safeguard if its status warrants
// one and no finding for the same catalog id already exists. Returns
// true when a finding was created.
func (g *FindingGenerator) Generate(ctx context.Context, safeguard *domain.Safeguard) (bool, error) {
	var severity domain.Severity
	switch safeguard.Status {
	case domain.SafeguardGap:
		severity = domain.SeverityHigh
	case domain.SafeguardPartial:
		severity = domain.SeverityMedium
	default:
		return false, nil // Covered safeguards produce no finding
	}

	existing, err := g.store.GetFindingsByAssessment(ctx, safeguard.AssessmentID)
	if err != nil {
		return false, fmt.Errorf("get findings: %w", err)
	}
	for i := range existing {
		if existing[i].CatalogID == safeguard.CatalogID {
			logger.Debug("Finding for control %s already exists, skipping", safeguard.CatalogID)
			return false, nil
		}
	}

	finding := domain.Finding{
		ID:           uuid.NewString(),
		AssessmentID: safeguard.AssessmentID,
		CatalogID:    safeguard.CatalogID,
		Title:        fmt.Sprintf("Control %s: %s", safeguard.CatalogID, safeguard.Name),
		Description: fmt.Sprintf(
			"Control %s (%s) scored %d and was assessed as %s. Review the unmet criteria and collect or produce the missing evidence.",
			safeguard.CatalogID, safeguard.Name, safeguard.Score, safeguard.Status,
		),
		Severity:  severity,
		Status:    domain.FindingOpen,
		CreatedAt: time.Now().UTC(),
	}

	if err := g.store.CreateFinding(ctx, &finding); err != nil {
		return false, fmt.Errorf("create finding: %w", err)
	}

	logger.Debug("Created %s finding for control %s", severity, safeguard.CatalogID)
	return true, nil
}
