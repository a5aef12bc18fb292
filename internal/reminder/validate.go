package reminder

import "time"

// Validation messages are user-facing and surfaced verbatim by the composer.
const (
	ErrMsgPast   = "cannot schedule in the past"
	ErrMsgTooFar = "cannot schedule more than 1 year ahead"
)

// maxAhead bounds how far in the future a reminder may be scheduled.
const maxAhead = 365 * 24 * time.Hour

// Validate checks the resolved due time against plausibility bounds. It only
// makes sense once the missing set is empty. Entity ambiguity is not a
// validation concern; it stays a missing field because it is resolvable by
// asking rather than rejecting.
func Validate(d Draft, now time.Time) []string {
	var errs []string
	if d.DueAt != nil {
		due := d.DueAt.UTC()
		if due.Before(now.UTC()) {
			errs = append(errs, ErrMsgPast)
		} else if due.After(now.UTC().Add(maxAhead)) {
			errs = append(errs, ErrMsgTooFar)
		}
	}
	return errs
}
