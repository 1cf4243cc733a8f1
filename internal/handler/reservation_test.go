package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/priyanshu9046/SortMyScene/internal/reservation"
)

func TestDedupSeats(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"already unique", []string{"A1", "A2"}, []string{"A1", "A2"}},
		{"duplicates collapsed", []string{"A1", "A2", "A1", "A2"}, []string{"A1", "A2"}},
		{"empties dropped", []string{"", "A3", ""}, []string{"A3"}},
		{"order preserved", []string{"A9", "A1", "A9", "A4"}, []string{"A9", "A1", "A4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dedupSeats(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("dedupSeats(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestReservationErrorMapping(t *testing.T) {
	t.Run("abuse with cooldown", func(t *testing.T) {
		c, rec := newTestContext(t)
		err := reservationError(c, &reservation.Error{
			Kind:       reservation.KindAbuse,
			Message:    "please wait 90 seconds before reserving again",
			RetryAfter: 90 * time.Second,
		})
		if err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if got := rec.Header().Get("Retry-After"); got != "90" {
			t.Fatalf("expected Retry-After 90, got %q", got)
		}
		body := decodeBody(t, rec)
		if body["error"] != "abuse_detected" {
			t.Fatalf("unexpected error code %v", body["error"])
		}
		if body["retry_after"] != float64(90) {
			t.Fatalf("unexpected retry_after %v", body["retry_after"])
		}
	})

	t.Run("abuse without cooldown omits the hint", func(t *testing.T) {
		c, rec := newTestContext(t)
		_ = reservationError(c, &reservation.Error{Kind: reservation.KindAbuse, Message: "blocked"})
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "" {
			t.Fatalf("expected no Retry-After header")
		}
		if _, ok := decodeBody(t, rec)["retry_after"]; ok {
			t.Fatalf("expected no retry_after field")
		}
	})

	t.Run("conflict carries the offending seats", func(t *testing.T) {
		c, rec := newTestContext(t)
		_ = reservationError(c, &reservation.Error{
			Kind:             reservation.KindConflict,
			Message:          "some seats have already been booked",
			ConflictingSeats: []string{"A3", "A4"},
		})
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		body := decodeBody(t, rec)
		seats, ok := body["conflicting_seats"].([]any)
		if !ok || len(seats) != 2 || seats[0] != "A3" || seats[1] != "A4" {
			t.Fatalf("unexpected conflicting_seats %v", body["conflicting_seats"])
		}
	})

	t.Run("status codes per kind", func(t *testing.T) {
		cases := []struct {
			kind reservation.Kind
			code int
		}{
			{reservation.KindUnauthorized, http.StatusForbidden},
			{reservation.KindNotFound, http.StatusNotFound},
			{reservation.KindExpired, http.StatusBadRequest},
			{reservation.KindInvalidSeat, http.StatusBadRequest},
			{reservation.KindInvalid, http.StatusBadRequest},
		}
		for _, tt := range cases {
			c, rec := newTestContext(t)
			_ = reservationError(c, &reservation.Error{Kind: tt.kind, Message: "x"})
			if rec.Code != tt.code {
				t.Fatalf("kind %s: expected %d, got %d", tt.kind, tt.code, rec.Code)
			}
		}
	})

	t.Run("opaque errors become 500", func(t *testing.T) {
		c, rec := newTestContext(t)
		_ = reservationError(c, echo.ErrInternalServerError)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext(t)
	c.Set("user_id", uint64(42))
	id, err := getUserID(c)
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}

	c2, _ := newTestContext(t)
	if _, err := getUserID(c2); err == nil {
		t.Fatalf("expected error when user_id missing")
	}
}

func TestPathID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("17")
	if id, err := pathID(c, "id"); err != nil || id != 17 {
		t.Fatalf("expected 17, got %d (%v)", id, err)
	}

	for _, bad := range []string{"0", "abc", "-3", ""} {
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(bad)
		if _, err := pathID(c, "id"); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
