package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/priyanshu9046/SortMyScene/internal/model"
)

// ReservationRepo is the durable reservation store: the single source of
// truth for seat occupancy. Reservations live in the reservations table and
// their seat identifiers in reservation_seats. All timestamps are stored in
// UTC and every time-sensitive query takes the evaluation instant as a
// parameter instead of relying on the database clock, so callers can drive
// the store with an injected clock.
//
// The store provides the conditional-update primitive the conflict engine
// depends on: CompleteReservation and ExpireReservation apply their mutation
// only if the lifecycle predicate still holds at commit time and report
// unambiguously whether they applied.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const sqlTimeLayout = "2006-01-02 15:04:05"

// CreateReservation inserts a reservation row plus one reservation_seats row
// per seat inside a single transaction, and populates the generated id on
// the provided model. Status, ExpiresAt and CreatedAt must be set by the
// caller.
func (r *ReservationRepo) CreateReservation(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const ins = `INSERT INTO reservations (user_id, event_id, status, expires_at, created_at)
                 VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, ins,
		res.UserID, res.EventID, string(res.Status),
		res.ExpiresAt.UTC().Format(sqlTimeLayout),
		res.CreatedAt.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)

	// Multi-row insert for the seats of this reservation.
	query := `INSERT INTO reservation_seats (reservation_id, event_id, seat_number) VALUES `
	args := make([]interface{}, 0, len(res.SeatNumbers)*3)
	for i, seat := range res.SeatNumbers {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, res.ID, res.EventID, seat)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetReservation loads a reservation with its seat numbers. It returns
// ErrReservationNotFound when no row exists for the id.
func (r *ReservationRepo) GetReservation(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT id, user_id, event_id, status, expires_at, created_at
               FROM reservations WHERE id = ? LIMIT 1`
	var res model.Reservation
	var status string
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.UserID, &res.EventID, &status, &res.ExpiresAt, &res.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, ErrReservationNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationStatus(status)
	seats, err := r.seatNumbers(ctx, []uint64{res.ID})
	if err != nil {
		return model.Reservation{}, err
	}
	res.SeatNumbers = seats[res.ID]
	return res, nil
}

// BookedSeats returns the union of seat identifiers across all completed
// reservations for an event. This is the permanent occupancy set: completed
// rows are never reclaimed.
func (r *ReservationRepo) BookedSeats(ctx context.Context, eventID uint64) (map[string]struct{}, error) {
	const q = `SELECT DISTINCT rs.seat_number
               FROM reservation_seats rs
               JOIN reservations res ON res.id = rs.reservation_id
               WHERE rs.event_id = ? AND res.status = 'completed'`
	return r.seatSet(ctx, q, eventID)
}

// HeldSeats returns the union of seat identifiers across all active,
// unexpired reservations for an event, excluding the reservation with
// excludeID (pass zero to exclude nothing). The expiry filter is strict:
// a hold whose expires_at equals now is already lapsed.
func (r *ReservationRepo) HeldSeats(ctx context.Context, eventID uint64, now time.Time, excludeID uint64) (map[string]struct{}, error) {
	const q = `SELECT DISTINCT rs.seat_number
               FROM reservation_seats rs
               JOIN reservations res ON res.id = rs.reservation_id
               WHERE rs.event_id = ? AND res.status = 'active'
                 AND res.expires_at > ? AND res.id <> ?`
	return r.seatSet(ctx, q, eventID, now.UTC().Format(sqlTimeLayout), excludeID)
}

// CompleteReservation atomically transitions a reservation from active to
// completed, conditioned on the row still being active and unexpired at the
// moment of the update. It reports whether the transition applied; a false
// return with nil error means another writer got there first or the hold
// lapsed, and the caller must re-read to find out which.
func (r *ReservationRepo) CompleteReservation(ctx context.Context, id uint64, now time.Time) (bool, error) {
	const q = `UPDATE reservations SET status = 'completed'
               WHERE id = ? AND status = 'active' AND expires_at > ?`
	result, err := r.db.ExecContext(ctx, q, id, now.UTC().Format(sqlTimeLayout))
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ExpireReservation atomically transitions a reservation from active to
// expired, used for owner-initiated cancellation. It reports whether the
// transition applied.
func (r *ReservationRepo) ExpireReservation(ctx context.Context, id uint64) (bool, error) {
	const q = `UPDATE reservations SET status = 'expired'
               WHERE id = ? AND status = 'active'`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// SweepExpired bulk-transitions every active reservation of the event whose
// expires_at has passed into expired. The statement is idempotent: rows
// already expired do not match the predicate, so redundant sweeps are free.
func (r *ReservationRepo) SweepExpired(ctx context.Context, eventID uint64, now time.Time) (int64, error) {
	const q = `UPDATE reservations SET status = 'expired'
               WHERE event_id = ? AND status = 'active' AND expires_at <= ?`
	result, err := r.db.ExecContext(ctx, q, eventID, now.UTC().Format(sqlTimeLayout))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ActiveByOwner returns the owner's active, unexpired reservations for an
// event, newest first, each with its seat numbers loaded.
func (r *ReservationRepo) ActiveByOwner(ctx context.Context, ownerID, eventID uint64, now time.Time) ([]model.Reservation, error) {
	const q = `SELECT id, user_id, event_id, status, expires_at, created_at
               FROM reservations
               WHERE user_id = ? AND event_id = ? AND status = 'active' AND expires_at > ?
               ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID, eventID, now.UTC().Format(sqlTimeLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.Reservation
	var ids []uint64
	for rows.Next() {
		var res model.Reservation
		var status string
		if err := rows.Scan(&res.ID, &res.UserID, &res.EventID, &status, &res.ExpiresAt, &res.CreatedAt); err != nil {
			return nil, err
		}
		res.Status = model.ReservationStatus(status)
		list = append(list, res)
		ids = append(ids, res.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	seats, err := r.seatNumbers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].SeatNumbers = seats[list[i].ID]
	}
	return list, nil
}

// CountCreatedSince counts the owner's reservations for an event that have
// the given status and were created at or after the window start. The abuse
// guard uses this for its sliding-window queries.
func (r *ReservationRepo) CountCreatedSince(ctx context.Context, ownerID, eventID uint64, status model.ReservationStatus, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations
               WHERE user_id = ? AND event_id = ? AND status = ? AND created_at >= ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, ownerID, eventID, string(status), since.UTC().Format(sqlTimeLayout)).Scan(&n)
	return n, err
}

// CountActiveByOwner counts the owner's currently active, unexpired holds
// for an event.
func (r *ReservationRepo) CountActiveByOwner(ctx context.Context, ownerID, eventID uint64, now time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM reservations
               WHERE user_id = ? AND event_id = ? AND status = 'active' AND expires_at > ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, ownerID, eventID, now.UTC().Format(sqlTimeLayout)).Scan(&n)
	return n, err
}

// LastExpiry returns the latest expires_at among the owner's expired
// reservations for an event. The second return value is false when the
// owner has no expired reservations for the event.
func (r *ReservationRepo) LastExpiry(ctx context.Context, ownerID, eventID uint64) (time.Time, bool, error) {
	const q = `SELECT MAX(expires_at) FROM reservations
               WHERE user_id = ? AND event_id = ? AND status = 'expired'`
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, ownerID, eventID).Scan(&last); err != nil {
		return time.Time{}, false, err
	}
	if !last.Valid {
		return time.Time{}, false, nil
	}
	return last.Time, true, nil
}

// seatSet runs a query returning a single seat_number column and collects
// the values into a set.
func (r *ReservationRepo) seatSet(ctx context.Context, query string, args ...interface{}) (map[string]struct{}, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	set := make(map[string]struct{})
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		set[seat] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// seatNumbers loads the seat numbers for a batch of reservation ids, keyed
// by reservation id. Rows come back in insertion order.
func (r *ReservationRepo) seatNumbers(ctx context.Context, ids []uint64) (map[uint64][]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := `SELECT reservation_id, seat_number FROM reservation_seats
              WHERE reservation_id IN (` + placeholders + `) ORDER BY id`
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]string, len(ids))
	for rows.Next() {
		var rid uint64
		var seat string
		if err := rows.Scan(&rid, &seat); err != nil {
			return nil, err
		}
		out[rid] = append(out[rid], seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
