package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/priyanshu9046/SortMyScene/internal/model"
	"github.com/priyanshu9046/SortMyScene/internal/queue"
	"github.com/priyanshu9046/SortMyScene/internal/repository"
	"github.com/priyanshu9046/SortMyScene/internal/reservation"
	qp "github.com/priyanshu9046/SortMyScene/internal/service"
)

// maxSeatsPerHold bounds a single request at the transport layer. The core
// engine accepts any non-empty set; this cap keeps one caller from asking
// for an entire venue in one hold.
const maxSeatsPerHold = 20

// ReservationHandler exposes the reservation engine over HTTP: seat
// projection, hold creation, confirmation, cancellation and listing. All
// mutating routes require the JWT middleware; the authenticated user id is
// the owner identity handed to the engine.
type ReservationHandler struct {
	Svc    *reservation.Service
	Events *repository.EventRepo
}

// NewReservationHandler constructs a ReservationHandler. Both dependencies
// must be non-nil.
func NewReservationHandler(svc *reservation.Service, events *repository.EventRepo) *ReservationHandler {
	if svc == nil || events == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Svc: svc, Events: events}
}

type holdReq struct {
	Seats []string `json:"seats"`
}

type reservationResp struct {
	ID        uint64    `json:"id"`
	EventID   uint64    `json:"event_id"`
	Seats     []string  `json:"seats"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:        r.ID,
		EventID:   r.EventID,
		Seats:     r.SeatNumbers,
		Status:    string(r.Status),
		ExpiresAt: r.ExpiresAt,
		CreatedAt: r.CreatedAt,
	}
}

// Seats handles GET /v1/events/:id/seats. It is public: browsing occupancy
// requires no account. The projection is recomputed on every call and is
// never cached.
func (h *ReservationHandler) Seats(c echo.Context) error {
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	statuses, err := h.Svc.SeatStatuses(c.Request().Context(), eventID)
	if err != nil {
		return reservationError(c, err)
	}

	available := 0
	for _, st := range statuses {
		if st.Status == model.SeatAvailable {
			available++
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"event_id":  eventID,
		"seats":     statuses,
		"total":     len(statuses),
		"available": available,
	})
}

// Create handles POST /v1/events/:id/reservations. The body carries the
// requested seat identifiers; duplicates are collapsed here so the engine
// always sees a set.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	var body holdReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}
	seats := dedupSeats(body.Seats)
	if len(seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid seats provided"})
	}
	if len(seats) > maxSeatsPerHold {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats in one reservation"})
	}

	res, err := h.Svc.CreateHold(c.Request().Context(), userID, eventID, seats)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": toReservationResp(res)})
}

// Confirm handles POST /v1/reservations/:id/confirm. On success the booking
// is announced on the booking.confirmed queue; publish failures are logged
// by the publisher and never fail the request.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	booking, err := h.Svc.ConfirmHold(c.Request().Context(), resID, userID)
	if err != nil {
		return reservationError(c, err)
	}

	go h.announceBooking(userID, booking)

	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": booking.ReservationID,
		"event_id":       booking.EventID,
		"seats":          booking.SeatNumbers,
		"status":         string(model.StatusCompleted),
		"confirmed_at":   booking.ConfirmedAt,
	})
}

// announceBooking enriches the booking with catalog data and publishes it.
// It runs detached from the request; the 5s budget covers the catalog read
// and the broker round trip.
func (h *ReservationHandler) announceBooking(userID uint64, booking reservation.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, booking.EventID)
	if err != nil {
		ev = model.Event{ID: booking.EventID}
	}
	_ = qp.PublishBookingConfirmed(ctx, queue.BookingConfirmedEvent{
		ReservationID: booking.ReservationID,
		UserID:        userID,
		EventID:       booking.EventID,
		EventName:     ev.Name,
		Venue:         ev.Venue,
		EventDate:     ev.Date.UTC().Format(time.RFC3339),
		SeatNumbers:   booking.SeatNumbers,
		ConfirmedAt:   booking.ConfirmedAt.UTC().Format(time.RFC3339),
	})
}

// Cancel handles DELETE /v1/reservations/:id. Only the owner may cancel,
// and only while the hold is still active.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	cancelled, err := h.Svc.CancelHold(c.Request().Context(), resID, userID)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"reservation_id": cancelled.ReservationID,
		"event_id":       cancelled.EventID,
		"released_seats": cancelled.SeatNumbers,
		"status":         string(model.StatusExpired),
	})
}

// Mine handles GET /v1/events/:id/reservations/my: the caller's live holds
// for one event, newest first.
func (h *ReservationHandler) Mine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	list, err := h.Svc.ActiveReservations(c.Request().Context(), userID, eventID)
	if err != nil {
		return reservationError(c, err)
	}
	out := make([]reservationResp, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// dedupSeats collapses duplicates while preserving the caller's order and
// drops empty strings.
func dedupSeats(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// reservationError maps the engine's typed errors onto HTTP responses.
// Anything that is not a *reservation.Error is an internal failure.
func reservationError(c echo.Context, err error) error {
	rerr, ok := err.(*reservation.Error)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	switch rerr.Kind {
	case reservation.KindAbuse:
		resp := echo.Map{"error": "abuse_detected", "message": rerr.Message}
		if rerr.RetryAfter > 0 {
			secs := int(rerr.RetryAfter.Seconds())
			if rerr.RetryAfter%time.Second != 0 {
				secs++
			}
			resp["retry_after"] = secs
			c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
		}
		return c.JSON(http.StatusTooManyRequests, resp)
	case reservation.KindConflict:
		resp := echo.Map{"error": "seat_conflict", "message": rerr.Message}
		if len(rerr.ConflictingSeats) > 0 {
			resp["conflicting_seats"] = rerr.ConflictingSeats
		}
		return c.JSON(http.StatusConflict, resp)
	case reservation.KindUnauthorized:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "message": rerr.Message})
	case reservation.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "message": rerr.Message})
	case reservation.KindExpired:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_expired", "message": rerr.Message})
	case reservation.KindInvalidSeat:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_seats", "message": rerr.Message})
	case reservation.KindInvalid:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_state", "message": rerr.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
