package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/priyanshu9046/SortMyScene/internal/model"
)

// EventRepo provides read access to the events table. The catalog is owned
// by an external subsystem as far as the reservation core is concerned; the
// core only consumes GetByID to bound seat-number validation.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the provided database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// List returns all events ordered by date ascending.
func (r *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, name, date, venue, total_seats, created_at, updated_at
               FROM events ORDER BY date ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Venue, &e.TotalSeats, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// GetByID fetches a single event. It returns ErrEventNotFound when no row
// exists for the id.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	const q = `SELECT id, name, date, venue, total_seats, created_at, updated_at
               FROM events WHERE id = ? LIMIT 1`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&e.ID, &e.Name, &e.Date, &e.Venue, &e.TotalSeats, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	return e, nil
}

// GetEvent adapts GetByID to the catalog contract consumed by the
// reservation core.
func (r *EventRepo) GetEvent(ctx context.Context, id uint64) (model.Event, error) {
	return r.GetByID(ctx, id)
}

// Create inserts a new event and populates the generated id. It is used by
// the seed command; the service itself never mutates the catalog.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const q = `INSERT INTO events (name, date, venue, total_seats) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.Name, e.Date.UTC().Format("2006-01-02 15:04:05"), e.Venue, e.TotalSeats)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}
