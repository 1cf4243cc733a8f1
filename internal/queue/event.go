// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a seat hold is successfully
// confirmed into a booking. It carries enough context for downstream
// consumers to log, notify, or feed analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	EventID       uint64   `json:"event_id"`
	EventName     string   `json:"event_name"`
	Venue         string   `json:"venue"`
	EventDate     string   `json:"event_date"`
	SeatNumbers   []string `json:"seats"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
