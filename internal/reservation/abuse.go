package reservation

import (
	"context"
	"fmt"
	"math"
	"time"
)

// AbuseLimits tunes the heuristics that bound how aggressively one identity
// may consume seats for a single event. The checks are defense in depth for
// fairness and availability, not safety: the conflict engine alone prevents
// double-booking.
type AbuseLimits struct {
	PatternWindow              time.Duration // lookback for the expired/completed pattern checks
	MaxExpiredWithoutCompleted int           // expired count above which a holder with zero bookings is rejected
	MaxExpiredPerCompleted     float64       // rejection threshold for the expired:completed ratio
	MaxActiveHolds             int           // active unexpired holds allowed per identity per event
	RecentWindow               time.Duration // lookback for the burst-of-expiries check
	MaxRecentExpired           int           // expired holds tolerated inside RecentWindow
	Cooldown                   time.Duration // minimum wait after a hold expires before the next one
}

// DefaultAbuseLimits returns the production thresholds.
func DefaultAbuseLimits() AbuseLimits {
	return AbuseLimits{
		PatternWindow:              24 * time.Hour,
		MaxExpiredWithoutCompleted: 5,
		MaxExpiredPerCompleted:     3,
		MaxActiveHolds:             2,
		RecentWindow:               time.Hour,
		MaxRecentExpired:           3,
		Cooldown:                   2 * time.Minute,
	}
}

// checkAbuse runs the guard's ordered heuristics for one identity and event.
// The first violated check wins; a nil return means the hold may proceed to
// the conflict checks.
func (s *Service) checkAbuse(ctx context.Context, ownerID, eventID uint64, now time.Time) error {
	l := s.limits

	// Expired/completed pattern over the long window. An identity that keeps
	// letting holds lapse without ever buying is presumed to be seat-blocking.
	since := now.Add(-l.PatternWindow)
	expired, err := s.store.CountCreatedSince(ctx, ownerID, eventID, statusExpired, since)
	if err != nil {
		return err
	}
	completed, err := s.store.CountCreatedSince(ctx, ownerID, eventID, statusCompleted, since)
	if err != nil {
		return err
	}
	if expired > l.MaxExpiredWithoutCompleted && completed == 0 {
		return abuseError("too many expired reservations without any completed bookings", 0)
	}
	if completed > 0 && float64(expired)/float64(completed) > l.MaxExpiredPerCompleted {
		return abuseError("high ratio of expired to completed reservations", 0)
	}

	// No stacking: at most MaxActiveHolds live holds per identity per event.
	active, err := s.store.CountActiveByOwner(ctx, ownerID, eventID, now)
	if err != nil {
		return err
	}
	if active >= l.MaxActiveHolds {
		return abuseError("you already have active reservations for this event; complete or wait for them to expire", 0)
	}

	// Burst of expiries inside the short window.
	recent, err := s.store.CountCreatedSince(ctx, ownerID, eventID, statusExpired, now.Add(-l.RecentWindow))
	if err != nil {
		return err
	}
	if recent >= l.MaxRecentExpired {
		return abuseError("too many recently expired reservations; please wait before reserving again", 0)
	}

	// Cooldown after the most recent expiry.
	last, ok, err := s.store.LastExpiry(ctx, ownerID, eventID)
	if err != nil {
		return err
	}
	if ok {
		elapsed := now.Sub(last)
		if elapsed < l.Cooldown {
			remaining := l.Cooldown - elapsed
			secs := int(math.Ceil(remaining.Seconds()))
			return abuseError(fmt.Sprintf("please wait %d seconds before reserving again", secs), remaining)
		}
	}
	return nil
}
