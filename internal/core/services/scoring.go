package services

import (
	"math"

	"github.com/custodia-labs/posture-cli/internal/core/domain"
)

// Safeguard status thresholds, applied to the raw coverage ratio.
const (
	coveredThreshold = 0.80
	partialThreshold = 0.40
)

// ScoreBreakdown counts a safeguard's criteria by status.
type ScoreBreakdown struct {
	// Met counts criteria with status met.
	Met int

	// Partial counts criteria with status partial.
	Partial int

	// NotMet counts criteria with status not_met.
	NotMet int

	// Insufficient counts criteria with status insufficient.
	Insufficient int

	// Total is the number of criteria.
	Total int
}

// SafeguardScore is the scoring engine's output for one safeguard.
type SafeguardScore struct {
	// Score is the coverage score (0-100), rounded half-up.
	Score int

	// Status is the coverage classification.
	Status domain.SafeguardStatus

	// Breakdown is the per-status criterion tally.
	Breakdown ScoreBreakdown
}

// AssessmentStats is the assessment-level rollup over safeguards.
type AssessmentStats struct {
	// MaturityScore is the rounded mean of safeguard scores.
	MaturityScore int

	// ControlsCovered counts safeguards with status covered.
	ControlsCovered int

	// ControlsPartial counts safeguards with status partial.
	ControlsPartial int

	// ControlsGap counts safeguards with status gap.
	ControlsGap int

	// TotalControls is the number of safeguards.
	TotalControls int
}

// CalculateSafeguardScore computes a safeguard's score and status from
// its criteria. Met criteria weigh 1, partial 0.5; not_met and
// insufficient both weigh 0. An empty criteria list yields score 0 and
// status gap.
func CalculateSafeguardScore(criteria []domain.Criterion) SafeguardScore {
	var b ScoreBreakdown
	b.Total = len(criteria)
	for _, c := range criteria {
		switch c.Status {
		case domain.CriterionMet:
			b.Met++
		case domain.CriterionPartial:
			b.Partial++
		case domain.CriterionNotMet:
			b.NotMet++
		default:
			b.Insufficient++
		}
	}

	if b.Total == 0 {
		return SafeguardScore{Score: 0, Status: domain.SafeguardGap, Breakdown: b}
	}

	raw := (float64(b.Met) + 0.5*float64(b.Partial)) / float64(b.Total)

	status := domain.SafeguardGap
	switch {
	case raw >= coveredThreshold:
		status = domain.SafeguardCovered
	case raw >= partialThreshold:
		status = domain.SafeguardPartial
	}

	return SafeguardScore{
		Score:     roundHalfUp(raw * 100),
		Status:    status,
		Breakdown: b,
	}
}

// CalculateAssessmentStats computes the assessment-level rollup from a
// set of safeguards. An empty safeguard list yields all zeros.
func CalculateAssessmentStats(safeguards []domain.Safeguard) AssessmentStats {
	var stats AssessmentStats
	stats.TotalControls = len(safeguards)
	if stats.TotalControls == 0 {
		return stats
	}

	var sum int
	for _, s := range safeguards {
		sum += s.Score
		switch s.Status {
		case domain.SafeguardCovered:
			stats.ControlsCovered++
		case domain.SafeguardPartial:
			stats.ControlsPartial++
		default:
			stats.ControlsGap++
		}
	}

	stats.MaturityScore = roundHalfUp(float64(sum) / float64(stats.TotalControls))
	return stats
}

// StatusForScore derives a safeguard status from an integer score.
// Used by the manual override path, which sets scores directly without
// going through the scoring engine.
func StatusForScore(score int) domain.SafeguardStatus {
	switch {
	case score >= 80:
		return domain.SafeguardCovered
	case score >= 40:
		return domain.SafeguardPartial
	default:
		return domain.SafeguardGap
	}
}

// roundHalfUp rounds to the nearest integer, halves up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
