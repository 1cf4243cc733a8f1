// Package repository defines error values that are reused across multiple
// repositories. These sentinel values allow higher layers to distinguish
// between different failure scenarios without string matching. For example,
// ErrEventNotFound signals that a caller referenced an event identifier that
// does not exist in the catalog, while ErrReservationNotFound signals an
// unknown reservation id.
package repository

import "errors"

// ErrEventNotFound is returned when no event exists for the given id.
var ErrEventNotFound = errors.New("event not found")

// ErrReservationNotFound is returned when no reservation exists for the
// given id. Callers translate this into their own not-found representation.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrEmailExists is returned when registering a user with an email address
// already present in the users table.
var ErrEmailExists = errors.New("email already exists")
