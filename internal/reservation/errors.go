package reservation

import (
	"fmt"
	"strings"
	"time"
)

// Kind discriminates the expected, caller-recoverable failure modes of the
// reservation engine. Handlers switch on the kind rather than matching
// message strings.
type Kind string

const (
	KindInvalidSeat  Kind = "invalid_seat" // selection outside the event's seat range or malformed
	KindNotFound     Kind = "not_found"    // unknown reservation or event
	KindUnauthorized Kind = "unauthorized" // ownership mismatch
	KindExpired      Kind = "expired"      // hold lapsed or no longer active at confirm time
	KindConflict     Kind = "conflict"     // seat overlap with another hold or booking
	KindAbuse        Kind = "abuse"        // heuristic rejection by the abuse guard
	KindInvalid      Kind = "invalid"      // operation not legal in the current state
)

// Error is the tagged failure value returned by the reservation engine. The
// Kind is the discriminant; ConflictingSeats is populated for Conflict
// errors when the offending subset is known, and RetryAfter for Abuse
// rejections that come with a cooldown.
type Error struct {
	Kind             Kind
	Message          string
	ConflictingSeats []string
	RetryAfter       time.Duration
}

func (e *Error) Error() string {
	if len(e.ConflictingSeats) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.ConflictingSeats, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a reservation Error of the given kind.
func IsKind(err error, kind Kind) bool {
	rerr, ok := err.(*Error)
	return ok && rerr.Kind == kind
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func conflictError(message string, seats []string) *Error {
	return &Error{Kind: KindConflict, Message: message, ConflictingSeats: seats}
}

func abuseError(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindAbuse, Message: message, RetryAfter: retryAfter}
}
