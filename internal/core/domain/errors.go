package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunInProgress indicates a run is already active for the
	// assessment. Surfaced immediately, no state change.
	ErrRunInProgress = errors.New("assessment run in progress")

	// ErrNotRunning indicates an operation that requires an active run
	// (e.g. cancel) was attempted while no run was active.
	ErrNotRunning = errors.New("no assessment run in progress")

	// ErrNoSafeguards indicates an assessment with zero safeguards.
	// Fatal to the run; the run is marked failed.
	ErrNoSafeguards = errors.New("assessment has no safeguards")

	// ErrConfiguration indicates missing provider credentials or other
	// invalid configuration. Raised before any network call.
	ErrConfiguration = errors.New("configuration error")

	// ErrClassifierUnavailable indicates the classification service is
	// not configured. Runs cannot start without it.
	ErrClassifierUnavailable = errors.New("classification service unavailable")

	// ErrRetrievalUnavailable indicates the retrieval service is not
	// configured. Runs cannot start without it.
	ErrRetrievalUnavailable = errors.New("retrieval service unavailable")
)
