package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotdesk/internal/model"
	"github.com/iliyamo/hotdesk/internal/queue"
)

// DeskRepository is the desk lookup the service needs.
type DeskRepository interface {
	GetByID(ctx context.Context, id uint64) (*model.Desk, error)
	ListAll(ctx context.Context) ([]model.Desk, error)
	EnsureByName(ctx context.Context, name string) (*model.Desk, bool, error)
}

// BookingRepository is the query interface over bookings.  Desk-scoped
// reads take the desk identifier and return its intervals ordered by
// start time.
type BookingRepository interface {
	ListByDesk(ctx context.Context, deskID uint64) ([]model.Booking, error)
	ListEndingAfter(ctx context.Context, t time.Time) ([]model.Booking, error)
	ListPage(ctx context.Context, limit, offset int) ([]model.Booking, error)
	ListAll(ctx context.Context) ([]model.Booking, error)
	Count(ctx context.Context) (int64, error)
	// CreateChecked runs check against the desk's existing bookings and
	// inserts b only if check returns nil, atomically per desk.
	CreateChecked(ctx context.Context, b *model.Booking, check func(existing []model.Booking) error) error
}

// EventPublisher delivers booking.created events.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, ev queue.BookingCreatedEvent) error
}

// CachePurger drops cached listing responses.
type CachePurger interface {
	Purge(ctx context.Context) error
}
