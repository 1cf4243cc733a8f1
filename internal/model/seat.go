package model

// SeatState describes the occupancy of a single seat as derived from the
// reservation history. Seats have no persisted state of their own; the
// projector recomputes these values on demand.
type SeatState string

const (
	SeatAvailable SeatState = "available" // no booking and no unexpired hold
	SeatReserved  SeatState = "reserved"  // claimed by an unexpired active hold
	SeatBooked    SeatState = "booked"    // claimed by a completed reservation
)

// SeatStatus pairs a derived seat identifier with its projected state.
type SeatStatus struct {
	SeatNumber string    `json:"seat_number"`
	Status     SeatState `json:"status"`
}
