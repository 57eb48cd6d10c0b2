// Package services implements the core business logic for Posture.
//
// Services implement the driving ports and depend only on domain types
// and driven port interfaces. The scoring functions are pure; the run
// orchestrator is the only service with sequencing and failure-handling
// logic.
package services
