// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for an assessment run to function:
//
//   - AssessmentStore: Assessment/safeguard/criterion/finding persistence
//   - EvidenceRetriever: Ranked passage retrieval from the tenant corpus
//   - EvidenceClassifier: Structured criterion classification
//
// # Optional Interfaces
//
//   - ConfigStore: Application configuration
//   - PromptStore: Customisable classifier prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
