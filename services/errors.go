// services/errors.go - Domain error taxonomy
package services

import "errors"

// Sentinel errors surfaced by the lock state machine and the
// verification gate. Handlers translate these into HTTP responses with
// errors.Is; none of them should ever crash a request.
var (
	// ErrForbidden: the caller lacks permission for this transition
	// (not the owner, not the lock holder, or not verified).
	ErrForbidden = errors.New("forbidden")

	// ErrConflict: another actor already holds or matches the resource
	// differently than expected (lost the lock race, solution not
	// authored by the current solver).
	ErrConflict = errors.New("conflict")

	// ErrInvalidState: the operation is not legal in the problem's
	// current lifecycle state, e.g. accepting an already solved problem.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation: the request itself is malformed or incomplete,
	// e.g. an in-person accept without a meeting proposal.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateDocument: the uploaded identity document already
	// belongs to a different account.
	ErrDuplicateDocument = errors.New("duplicate document")

	// ErrServiceUnavailable: the document analysis collaborator is
	// unreachable or erroring. Callers degrade to pending, never fail.
	ErrServiceUnavailable = errors.New("verification service unavailable")

	// ErrNotFound: the referenced problem or solution does not exist.
	ErrNotFound = errors.New("not found")
)
