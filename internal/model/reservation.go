package model

import "time"

// ReservationStatus enumerates the reservation lifecycle states. Transitions
// are monotone: active reservations move to completed or expired and never
// leave a terminal state.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusExpired   ReservationStatus = "expired"
)

// Reservation is the central entity of the system: a time-boxed claim on a
// set of seats for a single event. While Status is active and ExpiresAt is
// in the future the claim blocks other holders; once completed it is a
// permanent booking.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – identity of the holder.
//	EventID     – event the seats belong to; exactly one per reservation.
//	SeatNumbers – non-empty set of seat identifiers within the event's range.
//	Status      – lifecycle state (active, completed, expired).
//	ExpiresAt   – instant after which an active reservation is no longer honorable.
//	CreatedAt   – immutable creation timestamp, input to the abuse windows.
type Reservation struct {
	ID          uint64            // reservations.id
	UserID      uint64            // reservations.user_id
	EventID     uint64            // reservations.event_id
	SeatNumbers []string          // reservation_seats.seat_number rows
	Status      ReservationStatus // reservations.status
	ExpiresAt   time.Time         // reservations.expires_at
	CreatedAt   time.Time         // reservations.created_at
}

// Active reports whether the reservation is an unexpired hold at the given
// instant. Expiry is evaluated strictly: a reservation whose ExpiresAt
// equals now is no longer honorable.
func (r Reservation) Active(now time.Time) bool {
	return r.Status == StatusActive && r.ExpiresAt.After(now)
}
