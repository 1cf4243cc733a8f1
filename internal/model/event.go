package model

import "time"

// Event is a catalog entry for a ticketed event. The reservation core only
// reads TotalSeats and the existence of the identifier; everything else is
// presentation data for the browse endpoints. Seats are not modelled as
// rows of their own: seat identifiers are derived from TotalSeats.
type Event struct {
	ID         uint64    // events.id
	Name       string    // events.name
	Date       time.Time // events.date
	Venue      string    // events.venue
	TotalSeats int       // events.total_seats
	CreatedAt  time.Time // events.created_at
	UpdatedAt  time.Time // events.updated_at
}
