package services

import "errors"

// Failure kinds surfaced to callers. Losing a booking race and hitting a
// store outage must stay distinguishable: only the latter is worth a
// retry with backoff.
var (
	// ErrItemNotFound - a point read found no document
	ErrItemNotFound = errors.New("item not found")

	// ErrConditionFailed - a conditional write or transaction was rejected
	// by the store because its condition no longer held
	ErrConditionFailed = errors.New("conditional check failed")

	// ErrSlotNoLongerAvailable - another booker claimed one of the
	// requested chunks first; the caller must re-enumerate candidates
	ErrSlotNoLongerAvailable = errors.New("slot no longer available")

	// ErrCandidateFetchFailed - transient read failure while paging; safe
	// to retry with the same cursor
	ErrCandidateFetchFailed = errors.New("candidate fetch failed")

	// ErrInvalidDuration - a service duration that is not a positive
	// multiple of the base chunk, rejected at offering creation
	ErrInvalidDuration = errors.New("duration must be a positive multiple of the base chunk")
)

// IsRaceLoss reports whether err means some concurrent writer won a
// conflicting claim. Race losses are not retried blindly; everything else
// store-side is infrastructure failure and retryable.
func IsRaceLoss(err error) bool {
	return errors.Is(err, ErrSlotNoLongerAvailable) || errors.Is(err, ErrConditionFailed)
}
