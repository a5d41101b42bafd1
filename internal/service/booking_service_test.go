package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hotdesk/internal/export"
	"github.com/iliyamo/hotdesk/internal/model"
	"github.com/iliyamo/hotdesk/internal/queue"
	"github.com/iliyamo/hotdesk/internal/repository"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type countingPurger struct {
	mu    sync.Mutex
	calls int
}

func (p *countingPurger) Purge(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return nil
}

// newTestService returns a service over a fresh memory store with desks
// A-01 and A-02 and the clock fixed at 9:30.
func newTestService(t *testing.T) (*BookingService, map[string]uint64) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewBookingService(store.Desks(), store.Bookings(), zerolog.New(io.Discard))
	svc.Now = func() time.Time { return at(9, 30) }

	n, err := svc.SeedDesks(context.Background(), []string{"A-01", "A-02"})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	desks, err := store.Desks().ListAll(context.Background())
	require.NoError(t, err)
	ids := make(map[string]uint64, len(desks))
	for _, d := range desks {
		ids[d.Name] = d.ID
	}
	return svc, ids
}

func input(deskID uint64, from, until time.Time) CreateBookingInput {
	return CreateBookingInput{Name: "alice", DeskID: deskID, Start: from, End: until}
}

func TestNewBookingService_PanicsOnNilRepository(t *testing.T) {
	store := repository.NewMemoryStore()
	assert.Panics(t, func() { NewBookingService(nil, store.Bookings(), zerolog.Nop()) })
	assert.Panics(t, func() { NewBookingService(store.Desks(), nil, zerolog.Nop()) })
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)

	b, err := svc.CreateBooking(ctx, CreateBookingInput{Name: "  alice ", DeskID: ids["A-01"], Start: at(9, 0), End: at(10, 0)})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, "alice", b.Name)

	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	assert.ErrorIs(t, err, ErrOverlap, "identical range")

	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(10, 0), at(11, 0)))
	assert.NoError(t, err, "back-to-back booking")

	_, err = svc.CreateBooking(ctx, input(ids["A-02"], at(9, 0), at(10, 0)))
	assert.NoError(t, err, "same range on another desk")

	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(9, 45), at(9, 15)))
	assert.ErrorIs(t, err, ErrInvertedInterval)

	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(14, 0), at(14, 0)))
	assert.ErrorIs(t, err, ErrZeroLength)

	_, err = svc.CreateBooking(ctx, input(999, at(14, 0), at(15, 0)))
	assert.ErrorIs(t, err, repository.ErrDeskNotFound)

	page, err := svc.ListBookings(ctx, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
}

func TestCreateBooking_RejectsBadName(t *testing.T) {
	svc, ids := newTestService(t)
	for _, name := range []string{"", "   ", strings.Repeat("x", model.BookingNameMaxLen+1)} {
		_, err := svc.CreateBooking(context.Background(), CreateBookingInput{Name: name, DeskID: ids["A-01"], Start: at(9, 0), End: at(10, 0)})
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestCreateBooking_OverlapCarriesConflicts(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)
	first, err := svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(9, 30), at(11, 0)))
	var overlap *OverlapError
	require.True(t, errors.As(err, &overlap))
	require.Len(t, overlap.Conflicts, 1)
	assert.Equal(t, first.ID, overlap.Conflicts[0].ID)
}

func TestCreateBooking_PublishesAndPurges(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)
	pub := new(mockPublisher)
	purger := &countingPurger{}
	svc.Publisher = pub
	svc.Cache = purger

	pub.On("PublishBookingCreated", mock.Anything, mock.MatchedBy(func(ev queue.BookingCreatedEvent) bool {
		return ev.EventID != "" && ev.DeskName == "A-01" && ev.Name == "alice" &&
			ev.StartsAt == "2026-01-15T09:00:00Z" && ev.EndsAt == "2026-01-15T10:00:00Z"
	})).Return(nil).Once()

	_, err := svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	require.ErrorIs(t, err, ErrOverlap)

	pub.AssertExpectations(t)
	assert.Equal(t, 1, purger.calls, "rejections leave the cache alone")
}

func TestCreateBooking_PublishFailureKeepsBooking(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)
	pub := new(mockPublisher)
	pub.On("PublishBookingCreated", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	svc.Publisher = pub

	b, err := svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	pub.AssertNumberOfCalls(t, "PublishBookingCreated", 1)
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CreateBooking(ctx, input(ids["A-02"], at(13, 0), at(14, 0))); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, accepted)
}

func TestListDesks_Status(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)

	statuses, err := svc.ListDesks(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Booked(), "desk %s has no bookings", s.Desk.Name)
	}

	b, err := svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	require.NoError(t, err)

	statuses, err = svc.ListDesks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A-01", statuses[0].Desk.Name)
	require.True(t, statuses[0].Booked())
	assert.Equal(t, b.ID, statuses[0].Active.ID)
	assert.False(t, statuses[1].Booked())

	svc.Now = func() time.Time { return at(10, 0) }
	statuses, err = svc.ListDesks(ctx)
	require.NoError(t, err)
	assert.False(t, statuses[0].Booked(), "free at the end instant")
}

func TestGetDesk(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)
	_, err := svc.CreateBooking(ctx, input(ids["A-01"], at(11, 0), at(12, 0)))
	require.NoError(t, err)
	_, err = svc.CreateBooking(ctx, input(ids["A-01"], at(9, 0), at(10, 0)))
	require.NoError(t, err)

	d, err := svc.GetDesk(ctx, ids["A-01"])
	require.NoError(t, err)
	assert.Equal(t, "A-01", d.Desk.Name)
	require.Len(t, d.Bookings, 2)
	assert.True(t, d.Bookings[0].Start.Before(d.Bookings[1].Start))
	require.NotNil(t, d.Active)
	assert.Equal(t, at(9, 0), d.Active.Start)

	_, err = svc.GetDesk(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrDeskNotFound)

	_, err = svc.ListDeskBookings(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrDeskNotFound)

	list, err := svc.ListDeskBookings(ctx, ids["A-02"])
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListBookings_Paging(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)
	for h := 8; h < 13; h++ {
		_, err := svc.CreateBooking(ctx, input(ids["A-01"], at(h, 0), at(h+1, 0)))
		require.NoError(t, err)
	}

	tests := []struct {
		name          string
		limit, offset int
		wantLimit     int
		wantOffset    int
		wantItems     int
	}{
		{"defaults", 0, 0, DefaultPageSize, 0, 5},
		{"explicit window", 2, 1, 2, 1, 2},
		{"limit capped", 1000, 0, MaxPageSize, 0, 5},
		{"negative offset", 3, -4, 3, 0, 3},
		{"offset past end", 10, 10, 10, 10, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.ListBookings(ctx, tc.limit, tc.offset)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLimit, page.Limit)
			assert.Equal(t, tc.wantOffset, page.Offset)
			assert.Len(t, page.Items, tc.wantItems)
			assert.EqualValues(t, 5, page.Total)
		})
	}
}

func TestExportBookings(t *testing.T) {
	ctx := context.Background()
	svc, ids := newTestService(t)
	_, err := svc.CreateBooking(ctx, input(ids["A-02"], at(9, 0), at(10, 0)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportBookings(ctx, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-02", rows[1][1])
	assert.Equal(t, "alice", rows[1][2])
	assert.Equal(t, "2026-01-15 09:00", rows[1][3])
}

func TestSeedDesks(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	n, err := svc.SeedDesks(ctx, []string{"A-01", "B-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "existing desks are kept")

	_, err = svc.SeedDesks(ctx, []string{"TOOLONG"})
	assert.ErrorIs(t, err, ErrInvalidDeskName)
}
