package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/priyanshu9046/SortMyScene/internal/model"
)

// seedExpired adds an expired reservation created at the given offset before
// the clock's current time, with its expiry a minute after creation.
func seedExpired(store *fakeStore, ownerID uint64, createdAgo time.Duration, now time.Time) {
	created := now.Add(-createdAgo)
	store.add(model.Reservation{
		UserID: ownerID, EventID: testEventID, SeatNumbers: []string{"A9"},
		Status: model.StatusExpired, ExpiresAt: created.Add(time.Minute), CreatedAt: created,
	})
}

func TestAbuseGuard(t *testing.T) {
	ctx := context.Background()
	const owner = 7

	t.Run("many expirations and no completions blocks new holds", func(t *testing.T) {
		svc, store, clk := newTestService(10)
		for i := 0; i < 6; i++ {
			seedExpired(store, owner, 3*time.Hour, clk.Now())
		}
		_, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"})
		rerr := wantKind(t, err, KindAbuse)
		if rerr.RetryAfter != 0 {
			t.Fatalf("pattern block carries no retry hint, got %v", rerr.RetryAfter)
		}
	})

	t.Run("expiration ratio over completions blocks new holds", func(t *testing.T) {
		svc, store, clk := newTestService(10)
		for i := 0; i < 4; i++ {
			seedExpired(store, owner, 3*time.Hour, clk.Now())
		}
		store.add(model.Reservation{
			UserID: owner, EventID: testEventID, SeatNumbers: []string{"A8"},
			Status: model.StatusCompleted, ExpiresAt: clk.Now().Add(-2 * time.Hour), CreatedAt: clk.Now().Add(-3 * time.Hour),
		})
		_, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"})
		wantKind(t, err, KindAbuse)
	})

	t.Run("a balanced history passes", func(t *testing.T) {
		svc, store, clk := newTestService(10)
		for i := 0; i < 3; i++ {
			seedExpired(store, owner, 3*time.Hour, clk.Now())
		}
		store.add(model.Reservation{
			UserID: owner, EventID: testEventID, SeatNumbers: []string{"A8"},
			Status: model.StatusCompleted, ExpiresAt: clk.Now().Add(-2 * time.Hour), CreatedAt: clk.Now().Add(-3 * time.Hour),
		})
		// Last expiry is hours old, so the cooldown does not apply either.
		if _, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"}); err != nil {
			t.Fatalf("expected balanced history to pass, got %v", err)
		}
	})

	t.Run("stacked active holds block a third", func(t *testing.T) {
		svc, _, _ := newTestService(10)
		if _, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"}); err != nil {
			t.Fatalf("first hold failed: %v", err)
		}
		if _, err := svc.CreateHold(ctx, owner, testEventID, []string{"A2"}); err != nil {
			t.Fatalf("second hold failed: %v", err)
		}
		_, err := svc.CreateHold(ctx, owner, testEventID, []string{"A3"})
		wantKind(t, err, KindAbuse)
	})

	t.Run("stacking is scoped to the owner", func(t *testing.T) {
		svc, _, _ := newTestService(10)
		_, _ = svc.CreateHold(ctx, 1, testEventID, []string{"A1"})
		_, _ = svc.CreateHold(ctx, 1, testEventID, []string{"A2"})
		if _, err := svc.CreateHold(ctx, 2, testEventID, []string{"A3"}); err != nil {
			t.Fatalf("other owner must not be blocked, got %v", err)
		}
	})

	t.Run("a burst of recent expirations blocks new holds", func(t *testing.T) {
		svc, store, clk := newTestService(10)
		for i := 0; i < 3; i++ {
			seedExpired(store, owner, 30*time.Minute, clk.Now())
		}
		// A completion keeps the 24h pattern checks quiet so the burst
		// check is the one that fires.
		store.add(model.Reservation{
			UserID: owner, EventID: testEventID, SeatNumbers: []string{"A8"},
			Status: model.StatusCompleted, ExpiresAt: clk.Now().Add(-2 * time.Hour), CreatedAt: clk.Now().Add(-3 * time.Hour),
		})
		_, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"})
		wantKind(t, err, KindAbuse)
	})

	t.Run("cooldown after an expiry carries a retry hint", func(t *testing.T) {
		svc, store, clk := newTestService(10)
		created := clk.Now().Add(-20 * time.Minute)
		store.add(model.Reservation{
			UserID: owner, EventID: testEventID, SeatNumbers: []string{"A9"},
			Status: model.StatusExpired, ExpiresAt: clk.Now().Add(-time.Minute), CreatedAt: created,
		})
		store.add(model.Reservation{
			UserID: owner, EventID: testEventID, SeatNumbers: []string{"A8"},
			Status: model.StatusCompleted, ExpiresAt: clk.Now().Add(-2 * time.Hour), CreatedAt: clk.Now().Add(-3 * time.Hour),
		})
		_, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"})
		rerr := wantKind(t, err, KindAbuse)
		if rerr.RetryAfter <= 0 || rerr.RetryAfter > 2*time.Minute {
			t.Fatalf("expected a retry hint within the cooldown window, got %v", rerr.RetryAfter)
		}

		clk.Advance(2 * time.Minute)
		if _, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"}); err != nil {
			t.Fatalf("expected hold after the cooldown passed, got %v", err)
		}
	})

	t.Run("custom limits are honoured", func(t *testing.T) {
		limits := DefaultAbuseLimits()
		limits.MaxActiveHolds = 1
		svc, _, _ := newTestService(10, WithAbuseLimits(limits))
		if _, err := svc.CreateHold(ctx, owner, testEventID, []string{"A1"}); err != nil {
			t.Fatalf("first hold failed: %v", err)
		}
		_, err := svc.CreateHold(ctx, owner, testEventID, []string{"A2"})
		wantKind(t, err, KindAbuse)
	})
}
