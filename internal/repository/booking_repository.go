package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hotdesk/internal/model"
)

// BookingRepo provides persistence for bookings.  All timestamps are
// stored as UTC DATETIME values and intervals are half-open
// [starts_at, ends_at).
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = "id, name, desk_id, starts_at, ends_at, created_at"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanBookings(ctx context.Context, q queryer, query string, args ...any) ([]model.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Booking, 0)
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.Name, &b.DeskID, &b.Start, &b.End, &b.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByDesk returns all bookings of a desk ordered by start time.
func (r *BookingRepo) ListByDesk(ctx context.Context, deskID uint64) ([]model.Booking, error) {
	const q = "SELECT " + bookingColumns + " FROM bookings WHERE desk_id = ? ORDER BY starts_at ASC, id ASC"
	return scanBookings(ctx, r.db, q, deskID)
}

// ListEndingAfter returns the bookings that have not finished at t, i.e.
// the only ones that can be active at t or later.  Results are grouped by
// desk and ordered by start time.
func (r *BookingRepo) ListEndingAfter(ctx context.Context, t time.Time) ([]model.Booking, error) {
	const q = "SELECT " + bookingColumns + " FROM bookings WHERE ends_at > ? ORDER BY desk_id ASC, starts_at ASC, id ASC"
	return scanBookings(ctx, r.db, q, t.UTC())
}

// ListPage returns a window of bookings ordered by start time.
func (r *BookingRepo) ListPage(ctx context.Context, limit, offset int) ([]model.Booking, error) {
	const q = "SELECT " + bookingColumns + " FROM bookings ORDER BY starts_at ASC, id ASC LIMIT ? OFFSET ?"
	return scanBookings(ctx, r.db, q, limit, offset)
}

// ListAll returns every booking ordered by start time.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	const q = "SELECT " + bookingColumns + " FROM bookings ORDER BY starts_at ASC, id ASC"
	return scanBookings(ctx, r.db, q)
}

// Count returns the total number of bookings.
func (r *BookingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// CreateChecked inserts b after check has accepted the desk's existing
// bookings.  The desk row is locked with SELECT ... FOR UPDATE for the
// duration of the transaction so two concurrent requests for the same
// desk are validated one after the other.  An unknown desk yields
// ErrDeskNotFound; an error from check is returned unchanged and nothing
// is written.  On success the generated ID and CreatedAt are populated.
func (r *BookingRepo) CreateChecked(ctx context.Context, b *model.Booking, check func(existing []model.Booking) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var deskID uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM desks WHERE id = ? FOR UPDATE", b.DeskID).Scan(&deskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDeskNotFound
		}
		return err
	}

	const sel = "SELECT " + bookingColumns + " FROM bookings WHERE desk_id = ? ORDER BY starts_at ASC, id ASC"
	existing, err := scanBookings(ctx, tx, sel, deskID)
	if err != nil {
		return err
	}
	if err := check(existing); err != nil {
		return err
	}

	const ins = "INSERT INTO bookings (name, desk_id, starts_at, ends_at) VALUES (?, ?, ?, ?)"
	res, err := tx.ExecContext(ctx, ins, b.Name, b.DeskID, b.Start.UTC(), b.End.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	if err := tx.QueryRowContext(ctx, "SELECT created_at FROM bookings WHERE id = ?", b.ID).Scan(&b.CreatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
