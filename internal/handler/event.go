package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/priyanshu9046/SortMyScene/internal/model"
	"github.com/priyanshu9046/SortMyScene/internal/repository"
)

// EventHandler serves the public event catalog. The routes are read-only
// and sit behind the Redis response cache; the reservation routes never do.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(e *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: e}
}

type eventResp struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	Venue      string    `json:"venue"`
	TotalSeats int       `json:"total_seats"`
}

func toEventResp(e model.Event) eventResp {
	return eventResp{
		ID:         e.ID,
		Name:       e.Name,
		Date:       e.Date,
		Venue:      e.Venue,
		TotalSeats: e.TotalSeats,
	}
}

// List returns every event ordered by date.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResp(e))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// Get returns one event by id.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event": toEventResp(e)})
}
