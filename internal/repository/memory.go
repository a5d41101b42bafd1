package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/hotdesk/internal/model"
)

// MemoryStore keeps desks, bookings and booking events in process memory.
// It backs STORE=memory for local runs and is used by tests.  A single
// mutex serialises writers, which gives CreateChecked the same
// check-then-insert atomicity the MySQL repository gets from row locks.
type MemoryStore struct {
	mu       sync.Mutex
	now      func() time.Time
	desks    []model.Desk
	bookings []model.Booking
	events   map[string]model.BookingEvent
	nextID   uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:    func() time.Time { return time.Now().UTC() },
		events: make(map[string]model.BookingEvent),
	}
}

func (s *MemoryStore) id() uint64 {
	s.nextID++
	return s.nextID
}

// Desks returns the desk repository view of the store.
func (s *MemoryStore) Desks() *MemoryDeskRepo { return &MemoryDeskRepo{s: s} }

// Bookings returns the booking repository view of the store.
func (s *MemoryStore) Bookings() *MemoryBookingRepo { return &MemoryBookingRepo{s: s} }

// Events returns the booking event repository view of the store.
func (s *MemoryStore) Events() *MemoryEventRepo { return &MemoryEventRepo{s: s} }

// MemoryDeskRepo is the in-memory counterpart of DeskRepo.
type MemoryDeskRepo struct{ s *MemoryStore }

// Create inserts a new desk.  Names must be unique.
func (r *MemoryDeskRepo) Create(_ context.Context, d *model.Desk) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.desks {
		if existing.Name == d.Name {
			return ErrDuplicateDesk
		}
	}
	d.ID = r.s.id()
	d.CreatedAt = r.s.now()
	r.s.desks = append(r.s.desks, *d)
	return nil
}

// GetByID retrieves a desk by ID.
func (r *MemoryDeskRepo) GetByID(_ context.Context, id uint64) (*model.Desk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.desks {
		if d.ID == id {
			out := d
			return &out, nil
		}
	}
	return nil, ErrDeskNotFound
}

// ListAll returns every desk ordered by name.
func (r *MemoryDeskRepo) ListAll(_ context.Context) ([]model.Desk, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.Desk, len(r.s.desks))
	copy(out, r.s.desks)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// EnsureByName returns the named desk, creating it when missing.
func (r *MemoryDeskRepo) EnsureByName(ctx context.Context, name string) (*model.Desk, bool, error) {
	r.s.mu.Lock()
	for _, d := range r.s.desks {
		if d.Name == name {
			r.s.mu.Unlock()
			out := d
			return &out, false, nil
		}
	}
	r.s.mu.Unlock()
	d := &model.Desk{Name: name}
	if err := r.Create(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// MemoryBookingRepo is the in-memory counterpart of BookingRepo.
type MemoryBookingRepo struct{ s *MemoryStore }

// sorted returns the bookings matching keep ordered like the SQL queries.
func (r *MemoryBookingRepo) sorted(keep func(model.Booking) bool, byDesk bool) []model.Booking {
	out := make([]model.Booking, 0)
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if byDesk && out[i].DeskID != out[j].DeskID {
			return out[i].DeskID < out[j].DeskID
		}
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func all(model.Booking) bool { return true }

// ListByDesk returns the bookings of a desk ordered by start time.
func (r *MemoryBookingRepo) ListByDesk(_ context.Context, deskID uint64) ([]model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(b model.Booking) bool { return b.DeskID == deskID }, false), nil
}

// ListEndingAfter returns bookings whose end lies after t.
func (r *MemoryBookingRepo) ListEndingAfter(_ context.Context, t time.Time) ([]model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(b model.Booking) bool { return b.End.After(t) }, true), nil
}

// ListPage returns a window of bookings ordered by start time.
func (r *MemoryBookingRepo) ListPage(_ context.Context, limit, offset int) ([]model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.sorted(all, false)
	if offset >= len(items) {
		return []model.Booking{}, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], nil
}

// ListAll returns every booking ordered by start time.
func (r *MemoryBookingRepo) ListAll(_ context.Context) ([]model.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(all, false), nil
}

// Count returns the number of stored bookings.
func (r *MemoryBookingRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.bookings)), nil
}

// CreateChecked validates and inserts b while holding the store lock.
func (r *MemoryBookingRepo) CreateChecked(_ context.Context, b *model.Booking, check func(existing []model.Booking) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := false
	for _, d := range r.s.desks {
		if d.ID == b.DeskID {
			found = true
			break
		}
	}
	if !found {
		return ErrDeskNotFound
	}
	existing := r.sorted(func(e model.Booking) bool { return e.DeskID == b.DeskID }, false)
	if err := check(existing); err != nil {
		return err
	}
	b.ID = r.s.id()
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	b.CreatedAt = r.s.now()
	r.s.bookings = append(r.s.bookings, *b)
	return nil
}

// MemoryEventRepo is the in-memory counterpart of BookingEventRepo.
type MemoryEventRepo struct{ s *MemoryStore }

// Create stores ev unless an event with the same EventID exists.
func (r *MemoryEventRepo) Create(_ context.Context, ev *model.BookingEvent) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[ev.EventID]; ok {
		return false, nil
	}
	ev.ID = r.s.id()
	ev.CreatedAt = r.s.now()
	r.s.events[ev.EventID] = *ev
	return true, nil
}

// Len returns the number of stored events.
func (r *MemoryEventRepo) Len() int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.events)
}
