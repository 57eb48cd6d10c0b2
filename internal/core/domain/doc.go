// Package domain defines the core business entities for Posture.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Assessment: One evaluation of a tenant against the control catalog
//   - Safeguard: One catalog control within an assessment
//   - Criterion: One gradable evidence requirement within a safeguard
//   - Finding: A tracked remediation item for a gap or partial safeguard
//   - EvidenceChunk / ClassificationResult: Ephemeral pipeline values
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
