// Package reservation implements the reservation lifecycle and
// conflict-resolution engine: hold creation, the race rules between holds
// and completed bookings, lazy expiry, atomic promotion of a hold to a
// booking, and the abuse heuristics that bound how aggressively one identity
// may claim seats.
//
// The engine is stateless; the Store is the single source of truth and the
// only shared mutable state, so any number of service instances may run
// concurrently against it. Correctness does not rest on the sweep or on the
// hold-time overlap check (both are best-effort): the one hard guarantee is
// the conditional update inside ConfirmHold, which lets exactly one of any
// set of racing confirmations observe an active row.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/priyanshu9046/SortMyScene/internal/clock"
	"github.com/priyanshu9046/SortMyScene/internal/model"
	"github.com/priyanshu9046/SortMyScene/internal/repository"
)

// shorthand for the lifecycle states used throughout the engine
const (
	statusActive    = model.StatusActive
	statusCompleted = model.StatusCompleted
	statusExpired   = model.StatusExpired
)

// DefaultHoldTTL is how long a newly created hold stays honorable.
const DefaultHoldTTL = 10 * time.Minute

// Store is the durable reservation store consumed by the engine. The
// contract mirrors what the MySQL repository provides:
//
//   - CompleteReservation and ExpireReservation are conditional updates:
//     they apply their transition only if the lifecycle predicate still
//     holds at commit time and report unambiguously whether they applied.
//   - Every time-filtered query treats expiry strictly (expires_at > now).
//   - GetReservation returns repository.ErrReservationNotFound for unknown ids.
type Store interface {
	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id uint64) (model.Reservation, error)
	BookedSeats(ctx context.Context, eventID uint64) (map[string]struct{}, error)
	HeldSeats(ctx context.Context, eventID uint64, now time.Time, excludeID uint64) (map[string]struct{}, error)
	CompleteReservation(ctx context.Context, id uint64, now time.Time) (bool, error)
	ExpireReservation(ctx context.Context, id uint64) (bool, error)
	SweepExpired(ctx context.Context, eventID uint64, now time.Time) (int64, error)
	ActiveByOwner(ctx context.Context, ownerID, eventID uint64, now time.Time) ([]model.Reservation, error)
	CountCreatedSince(ctx context.Context, ownerID, eventID uint64, status model.ReservationStatus, since time.Time) (int, error)
	CountActiveByOwner(ctx context.Context, ownerID, eventID uint64, now time.Time) (int, error)
	LastExpiry(ctx context.Context, ownerID, eventID uint64) (time.Time, bool, error)
}

// Catalog is the external event-catalog collaborator. GetEvent returns
// repository.ErrEventNotFound for unknown ids; the engine reads only
// TotalSeats and existence.
type Catalog interface {
	GetEvent(ctx context.Context, eventID uint64) (model.Event, error)
}

// Service wires the store, the catalog and a clock into the reservation
// engine. All operations either complete immediately or fail fast with a
// typed *Error; nothing blocks waiting on another caller.
type Service struct {
	store   Store
	catalog Catalog
	clock   clock.Clock
	holdTTL time.Duration
	limits  AbuseLimits
}

// Option customizes a Service.
type Option func(*Service)

// WithHoldTTL overrides the default duration of new holds.
func WithHoldTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithAbuseLimits overrides the abuse guard thresholds.
func WithAbuseLimits(l AbuseLimits) Option {
	return func(s *Service) { s.limits = l }
}

// New constructs a Service. All dependencies must be non-nil.
func New(store Store, catalog Catalog, clk clock.Clock, opts ...Option) *Service {
	if store == nil || catalog == nil || clk == nil {
		panic("nil dependency passed to reservation.New")
	}
	s := &Service{
		store:   store,
		catalog: catalog,
		clock:   clk,
		holdTTL: DefaultHoldTTL,
		limits:  DefaultAbuseLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Booking is the result of a successful confirmation: a permanent claim on
// the reservation's seats.
type Booking struct {
	ReservationID uint64
	EventID       uint64
	SeatNumbers   []string
	ConfirmedAt   time.Time
}

// Cancellation reports the seats released by an owner-initiated cancel.
type Cancellation struct {
	ReservationID uint64
	EventID       uint64
	SeatNumbers   []string
}

// event resolves the catalog entry, translating an unknown id into the
// engine's NotFound error.
func (s *Service) event(ctx context.Context, eventID uint64) (model.Event, error) {
	ev, err := s.catalog.GetEvent(ctx, eventID)
	if errors.Is(err, repository.ErrEventNotFound) {
		return model.Event{}, newError(KindNotFound, "event not found")
	}
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// SeatStatuses projects the occupancy of every seat of an event: booked if
// any completed reservation carries it, else reserved if an unexpired active
// hold carries it, else available. Booked wins over reserved since a seat
// can appear in both only transiently before sweeping. The projection is a
// pure read; lapsed holds are swept first so they do not linger as active
// rows (the strict expiry filter would exclude them from the reserved set
// regardless).
func (s *Service) SeatStatuses(ctx context.Context, eventID uint64) ([]model.SeatStatus, error) {
	ev, err := s.event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if _, err := s.store.SweepExpired(ctx, eventID, now); err != nil {
		return nil, err
	}
	booked, err := s.store.BookedSeats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	held, err := s.store.HeldSeats(ctx, eventID, now, 0)
	if err != nil {
		return nil, err
	}
	statuses := make([]model.SeatStatus, 0, ev.TotalSeats)
	for i := 1; i <= ev.TotalSeats; i++ {
		seat := SeatNumber(i)
		state := model.SeatAvailable
		if _, ok := booked[seat]; ok {
			state = model.SeatBooked
		} else if _, ok := held[seat]; ok {
			state = model.SeatReserved
		}
		statuses = append(statuses, model.SeatStatus{SeatNumber: seat, Status: state})
	}
	return statuses, nil
}

// CreateHold places a time-boxed claim on the requested seats. The request
// is checked against the abuse guard, the event's seat range, and the
// current occupancy; on success an active reservation expiring holdTTL from
// now is inserted.
//
// The overlap check and the insert are not atomic: two racing callers can
// slip through and both hold the same seat for a moment. That window is
// accepted — the confirm-time re-check and conditional update guarantee at
// most one of them ever completes.
func (s *Service) CreateHold(ctx context.Context, ownerID, eventID uint64, seatNumbers []string) (model.Reservation, error) {
	ev, err := s.event(ctx, eventID)
	if err != nil {
		return model.Reservation{}, err
	}
	now := s.clock.Now()
	if _, err := s.store.SweepExpired(ctx, eventID, now); err != nil {
		return model.Reservation{}, err
	}
	if err := s.checkAbuse(ctx, ownerID, eventID, now); err != nil {
		return model.Reservation{}, err
	}
	if len(seatNumbers) == 0 {
		return model.Reservation{}, newError(KindInvalidSeat, "at least one seat must be selected")
	}
	if invalid := invalidSeatNumbers(seatNumbers, ev.TotalSeats); len(invalid) > 0 {
		return model.Reservation{}, newError(KindInvalidSeat,
			fmt.Sprintf("invalid seat numbers: %s", strings.Join(invalid, ", ")))
	}
	booked, err := s.store.BookedSeats(ctx, eventID)
	if err != nil {
		return model.Reservation{}, err
	}
	if taken := intersect(seatNumbers, booked); len(taken) > 0 {
		return model.Reservation{}, conflictError("some seats have already been booked", taken)
	}
	held, err := s.store.HeldSeats(ctx, eventID, now, 0)
	if err != nil {
		return model.Reservation{}, err
	}
	if taken := intersect(seatNumbers, held); len(taken) > 0 {
		return model.Reservation{}, conflictError("some seats are currently reserved by another user", taken)
	}

	res := model.Reservation{
		UserID:      ownerID,
		EventID:     eventID,
		SeatNumbers: append([]string(nil), seatNumbers...),
		Status:      statusActive,
		ExpiresAt:   now.Add(s.holdTTL),
		CreatedAt:   now,
	}
	if err := s.store.CreateReservation(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// ConfirmHold promotes an active, unexpired hold owned by ownerID into a
// permanent booking. The caller's original hold is not trusted: occupancy is
// re-validated against the latest state, because a seat can legitimately be
// double-held for a brief window after racing CreateHold calls. The actual
// transition is a single conditional update; if it does not apply, the row
// is re-read to report whether the hold lapsed or lost a race.
func (s *Service) ConfirmHold(ctx context.Context, reservationID, ownerID uint64) (Booking, error) {
	res, err := s.store.GetReservation(ctx, reservationID)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return Booking{}, newError(KindNotFound, "reservation not found")
	}
	if err != nil {
		return Booking{}, err
	}
	if res.UserID != ownerID {
		return Booking{}, newError(KindUnauthorized, "unauthorized access to this reservation")
	}
	now := s.clock.Now()
	if !res.Active(now) {
		return Booking{}, newError(KindExpired, "reservation expired, please reserve again")
	}

	// Confirm-time re-check against the latest state.
	booked, err := s.store.BookedSeats(ctx, res.EventID)
	if err != nil {
		return Booking{}, err
	}
	if taken := intersect(res.SeatNumbers, booked); len(taken) > 0 {
		return Booking{}, conflictError("some seats have been booked by another user", taken)
	}
	held, err := s.store.HeldSeats(ctx, res.EventID, now, res.ID)
	if err != nil {
		return Booking{}, err
	}
	if taken := intersect(res.SeatNumbers, held); len(taken) > 0 {
		return Booking{}, conflictError("some seats are currently reserved by another user", taken)
	}

	ok, err := s.store.CompleteReservation(ctx, res.ID, now)
	if err != nil {
		return Booking{}, err
	}
	if !ok {
		// Another writer changed the row between our read and the update.
		cur, err := s.store.GetReservation(ctx, res.ID)
		if err != nil {
			return Booking{}, err
		}
		if cur.Status == statusActive || !cur.ExpiresAt.After(now) {
			return Booking{}, newError(KindExpired, "reservation expired, please reserve again")
		}
		return Booking{}, conflictError("reservation is no longer available for booking", nil)
	}
	return Booking{
		ReservationID: res.ID,
		EventID:       res.EventID,
		SeatNumbers:   res.SeatNumbers,
		ConfirmedAt:   now,
	}, nil
}

// CancelHold lets the owning identity release an active hold ahead of its
// natural timeout, transitioning it straight to expired. The seats become
// available to other callers immediately.
func (s *Service) CancelHold(ctx context.Context, reservationID, ownerID uint64) (Cancellation, error) {
	res, err := s.store.GetReservation(ctx, reservationID)
	if errors.Is(err, repository.ErrReservationNotFound) {
		return Cancellation{}, newError(KindNotFound, "reservation not found")
	}
	if err != nil {
		return Cancellation{}, err
	}
	if res.UserID != ownerID {
		return Cancellation{}, newError(KindUnauthorized, "unauthorized access to this reservation")
	}
	if res.Status != statusActive {
		return Cancellation{}, newError(KindInvalid, "only active reservations can be canceled")
	}
	ok, err := s.store.ExpireReservation(ctx, res.ID)
	if err != nil {
		return Cancellation{}, err
	}
	if !ok {
		// Lost a race with a concurrent confirm or sweep.
		return Cancellation{}, newError(KindInvalid, "only active reservations can be canceled")
	}
	return Cancellation{
		ReservationID: res.ID,
		EventID:       res.EventID,
		SeatNumbers:   res.SeatNumbers,
	}, nil
}

// ActiveReservations lists the owner's live holds for an event, newest
// first. Lapsed holds are excluded by the strict expiry filter whether or
// not a sweep has reclaimed them yet.
func (s *Service) ActiveReservations(ctx context.Context, ownerID, eventID uint64) ([]model.Reservation, error) {
	if _, err := s.event(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ActiveByOwner(ctx, ownerID, eventID, s.clock.Now())
}
