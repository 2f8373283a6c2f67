// Package booking holds the allocation engines: exclusive cabinet slots,
// shared staining capacity, and long-lived freezer box custody. All three
// follow one pattern: a named actor claims a discrete unit of capacity under
// uniqueness and ownership rules, and every outcome is reported as an
// explicit Result rather than a silent no-op.
package booking

import "errors"

// ErrNoActor is returned by every mutating operation when the caller has no
// established actor. The HTTP boundary maps it to 401.
var ErrNoActor = errors.New("no actor established")

// Status tells whether an operation changed the store.
type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
)

// Reason explains a skipped operation. Conflicts and invalid input are
// deliberately not errors: batches stay idempotent-ish under retry, and
// callers who care can still tell "already satisfied" from "rejected".
type Reason string

const (
	ReasonAlreadyTaken     Reason = "already_taken"
	ReasonNotFound         Reason = "not_found"
	ReasonNotOwner         Reason = "not_owner"
	ReasonInvalid          Reason = "invalid"
	ReasonCapacityExceeded Reason = "capacity_exceeded"
	ReasonOccupied         Reason = "occupied"
	ReasonDuplicate        Reason = "duplicate"
)

// Result is the outcome of one unit of work inside an operation or batch.
type Result struct {
	Status Status `json:"status"`
	Reason Reason `json:"reason,omitempty"`
	// Detail carries operation-specific context, e.g. the previous
	// occupant displaced by a freezer checkout.
	Detail string `json:"detail,omitempty"`
}

// Applied reports whether the operation changed the store.
func (r Result) Applied() bool {
	return r.Status == StatusApplied
}

func applied() Result {
	return Result{Status: StatusApplied}
}

func appliedDetail(detail string) Result {
	return Result{Status: StatusApplied, Detail: detail}
}

func skipped(reason Reason) Result {
	return Result{Status: StatusSkipped, Reason: reason}
}
