package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotdesk/internal/model"
)

// BookingEventRepo stores the audit trail written by the queue consumer.
type BookingEventRepo struct {
	db *sql.DB
}

// NewBookingEventRepo returns a BookingEventRepo bound to db.
func NewBookingEventRepo(db *sql.DB) *BookingEventRepo { return &BookingEventRepo{db: db} }

// Create inserts an audit row.  Redelivered messages carry the same
// event_id and are ignored; the boolean reports whether a row was written.
func (r *BookingEventRepo) Create(ctx context.Context, ev *model.BookingEvent) (bool, error) {
	const q = `INSERT IGNORE INTO booking_events (event_id, booking_id, desk_id, desk_name, name, starts_at, ends_at)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, ev.EventID, ev.BookingID, ev.DeskID, ev.DeskName, ev.Name, ev.Start.UTC(), ev.End.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return false, err
	}
	ev.ID = uint64(id)
	return true, nil
}
