package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a manager already owns as many
	// entries as its configured limit allows.
	ErrQuotaExceeded = errors.New("app quota exceeded")

	// ErrDuplicateID is returned when an explicitly requested entry ID
	// already exists. Explicit IDs are never silently reassigned.
	ErrDuplicateID = errors.New("entry id already exists")

	// ErrIDSpaceExhausted is returned when random ID generation failed to
	// find a free ID within the retry budget.
	ErrIDSpaceExhausted = errors.New("no free entry id found")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting principal lacks the right
	// to perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTarget is returned when an SN assignment or account update
	// names a target that is not an existing manager account.
	ErrInvalidTarget = errors.New("target is not a manager account")

	// ErrAccountExists is returned when creating an account under a
	// username that is already taken.
	ErrAccountExists = errors.New("account already exists")
)

// SNConflictError reports an SN code requested by a manager that the registry
// maps to a different owner.
type SNConflictError struct {
	SN    string
	Owner string
}

func (e *SNConflictError) Error() string {
	return fmt.Sprintf("sn %s is managed by %s", e.SN, e.Owner)
}

// LimitBelowUsageError reports an attempt to lower a manager's max-apps limit
// below the number of entries it currently owns.
type LimitBelowUsageError struct {
	Max  int
	Owns int
}

func (e *LimitBelowUsageError) Error() string {
	return fmt.Sprintf("max apps %d is below current usage %d", e.Max, e.Owns)
}
