// errors.go - Error taxonomy for the governance relations.
//
// Verification failures are reported deterministically as classified errors,
// never as panics. A rejected proof requires the prover to regenerate from a
// corrected witness; there are no retries at this layer.

package dao

import (
	"errors"
	"fmt"
)

var (
	// ErrConstraintViolation means a witness does not satisfy its relation.
	// Proof generation aborts locally; no partial proof is ever emitted.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrMalformedPublicInput means a public instance has the wrong arity,
	// ordering, or contains an out-of-field value.
	ErrMalformedPublicInput = errors.New("malformed public input")

	// ErrMembershipFailure means a claimed registry root does not match any
	// known registry snapshot. This is an application-level rejection, not a
	// relation defect.
	ErrMembershipFailure = errors.New("membership failure")

	// ErrProposalExecuted is returned by the registry when a proposal is
	// executed a second time.
	ErrProposalExecuted = errors.New("proposal already executed")
)

// VerificationError classifies a proof rejection with one of the sentinel
// reasons above and the underlying backend error, if any.
type VerificationError struct {
	Reason error
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%v: %v", e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Reason }

// RejectProof wraps a backend verification failure into a classified error.
func RejectProof(reason, err error) error {
	return &VerificationError{Reason: reason, Err: err}
}
