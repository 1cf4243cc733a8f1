package reservation

import (
	"strconv"
	"strings"
)

// Seats are not persisted anywhere. An event with totalSeats = N exposes the
// seat identifiers A1..AN, derived on demand; every stored seat reference is
// one of these strings.
const seatPrefix = "A"

// SeatNumber returns the derived identifier for the n-th seat (1-based).
func SeatNumber(n int) string {
	return seatPrefix + strconv.Itoa(n)
}

// seatOrdinal parses a seat identifier back into its 1-based ordinal. It
// returns false for identifiers that do not follow the naming scheme.
func seatOrdinal(seat string) (int, bool) {
	if !strings.HasPrefix(seat, seatPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(seat, seatPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// invalidSeatNumbers returns the subset of seats that are malformed or fall
// outside [1, totalSeats].
func invalidSeatNumbers(seats []string, totalSeats int) []string {
	var invalid []string
	for _, seat := range seats {
		n, ok := seatOrdinal(seat)
		if !ok || n < 1 || n > totalSeats {
			invalid = append(invalid, seat)
		}
	}
	return invalid
}

// intersect returns the members of seats present in set, preserving the
// order of seats.
func intersect(seats []string, set map[string]struct{}) []string {
	var out []string
	for _, seat := range seats {
		if _, ok := set[seat]; ok {
			out = append(out, seat)
		}
	}
	return out
}
