package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotdesk/internal/model"
)

var bookingCols = []string{"id", "name", "desk_id", "starts_at", "ends_at", "created_at"}

func hour(h int) time.Time {
	return time.Date(2026, 1, 15, h, 0, 0, 0, time.UTC)
}

func TestBookingRepo_ListByDesk(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE desk_id = ? ORDER BY starts_at ASC, id ASC")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(1, "alice", 1, hour(9), hour(10), created).
			AddRow(2, "bob", 1, hour(10), hour(11), created))

	got, err := NewBookingRepo(db).ListByDesk(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[1].Name)
	assert.True(t, got[0].End.Equal(hour(10)))
}

func TestBookingRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := NewBookingRepo(db).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestBookingRepo_CreateChecked(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM desks WHERE id = ? FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE desk_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(1, "alice", 1, hour(9), hour(10), created))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings (name, desk_id, starts_at, ends_at) VALUES (?, ?, ?, ?)")).
		WithArgs("bob", 1, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM bookings WHERE id = ?")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	var seen []model.Booking
	b := &model.Booking{Name: "bob", DeskID: 1, Start: hour(10), End: hour(11)}
	err = NewBookingRepo(db).CreateChecked(context.Background(), b, func(existing []model.Booking) error {
		seen = existing
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), b.ID)
	assert.Equal(t, created, b.CreatedAt)
	require.Len(t, seen, 1)
	assert.Equal(t, "alice", seen[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateChecked_Rejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE desk_id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(bookingCols).AddRow(1, "alice", 1, hour(9), hour(10), created))
	mock.ExpectRollback()

	rejected := errors.New("nope")
	b := &model.Booking{Name: "bob", DeskID: 1, Start: hour(9), End: hour(10)}
	err = NewBookingRepo(db).CreateChecked(context.Background(), b, func([]model.Booking) error { return rejected })
	assert.ErrorIs(t, err, rejected)
	assert.Zero(t, b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepo_CreateChecked_UnknownDesk(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	b := &model.Booking{Name: "bob", DeskID: 99, Start: hour(9), End: hour(10)}
	err = NewBookingRepo(db).CreateChecked(context.Background(), b, func([]model.Booking) error {
		t.Fatal("check must not run for an unknown desk")
		return nil
	})
	assert.ErrorIs(t, err, ErrDeskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingEventRepo_CreateIgnoresDuplicates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO booking_events")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := NewBookingEventRepo(db).Create(context.Background(), &model.BookingEvent{EventID: "e1", Start: hour(9), End: hour(10)})
	require.NoError(t, err)
	assert.False(t, ok)
}
