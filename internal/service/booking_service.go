// Package service holds the desk booking use cases and the booking validator.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/export"
	"github.com/iliyamo/hotdesk/internal/metrics"
	"github.com/iliyamo/hotdesk/internal/model"
	"github.com/iliyamo/hotdesk/internal/queue"
	"github.com/iliyamo/hotdesk/internal/repository"
)

// ErrInvalidName is returned for an empty or over-long booking owner name.
var ErrInvalidName = fmt.Errorf("name is required and must be at most %d characters", model.BookingNameMaxLen)

// ErrInvalidDeskName is returned when seeding a desk with an unusable name.
var ErrInvalidDeskName = fmt.Errorf("desk name is required and must be at most %d characters", model.DeskNameMaxLen)

// Pagination bounds for ListBookings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BookingService implements the desk booking use cases on top of the
// repositories.  Publisher and Cache are optional.
type BookingService struct {
	Desks     DeskRepository
	Bookings  BookingRepository
	Publisher EventPublisher   // nil disables booking.created events
	Cache     CachePurger      // nil when response caching is off
	Log       zerolog.Logger
	Now       func() time.Time // clock used for desk status
}

// NewBookingService constructs a BookingService and panics if a
// repository is nil.
func NewBookingService(desks DeskRepository, bookings BookingRepository, log zerolog.Logger) *BookingService {
	if desks == nil || bookings == nil {
		panic("nil repository passed to NewBookingService")
	}
	return &BookingService{
		Desks:    desks,
		Bookings: bookings,
		Log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBookingInput is a booking request after transport decoding.
type CreateBookingInput struct {
	Name   string
	DeskID uint64
	Start  time.Time
	End    time.Time
}

// CreateBooking validates the request against the desk's existing
// bookings and stores it.  Rejections are ErrInvalidName,
// repository.ErrDeskNotFound, ErrInvertedInterval, ErrZeroLength or an
// *OverlapError.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*model.Booking, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || utf8.RuneCountInString(name) > model.BookingNameMaxLen {
		metrics.IncBookingRequest(metrics.ResultInvalid)
		return nil, ErrInvalidName
	}

	desk, err := s.Desks.GetByID(ctx, in.DeskID)
	if err != nil {
		if errors.Is(err, repository.ErrDeskNotFound) {
			metrics.IncBookingRequest(metrics.ResultDeskNotFound)
			return nil, err
		}
		metrics.IncBookingRequest(metrics.ResultError)
		return nil, fmt.Errorf("load desk %d: %w", in.DeskID, err)
	}

	b := &model.Booking{
		Name:   name,
		DeskID: desk.ID,
		Start:  in.Start.UTC(),
		End:    in.End.UTC(),
	}
	err = s.Bookings.CreateChecked(ctx, b, func(existing []model.Booking) error {
		return ValidateBooking(b.DeskID, b.Interval(), existing)
	})
	if err != nil {
		result := rejectionResult(err)
		metrics.IncBookingRequest(result)
		if result == metrics.ResultError {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		s.Log.Info().
			Str("desk", desk.Name).
			Time("start", b.Start).
			Time("end", b.End).
			Str("reason", err.Error()).
			Msg("booking rejected")
		return nil, err
	}
	metrics.IncBookingRequest(metrics.ResultCreated)
	s.Log.Info().
		Uint64("id", b.ID).
		Str("desk", desk.Name).
		Str("name", b.Name).
		Time("start", b.Start).
		Time("end", b.End).
		Msg("booking created")

	s.afterCreate(ctx, *b, desk.Name)
	return b, nil
}

func rejectionResult(err error) string {
	switch {
	case errors.Is(err, ErrOverlap):
		return metrics.ResultOverlap
	case errors.Is(err, ErrInvertedInterval):
		return metrics.ResultInverted
	case errors.Is(err, ErrZeroLength):
		return metrics.ResultZeroLength
	case errors.Is(err, repository.ErrDeskNotFound):
		return metrics.ResultDeskNotFound
	default:
		return metrics.ResultError
	}
}

// afterCreate runs the side effects of a stored booking.  Their failures
// are logged and never undo the booking.
func (s *BookingService) afterCreate(ctx context.Context, b model.Booking, deskName string) {
	if s.Cache != nil {
		if err := s.Cache.Purge(ctx); err != nil {
			s.Log.Warn().Err(err).Msg("cache purge failed")
		}
	}
	if s.Publisher != nil {
		ev := queue.NewBookingCreatedEvent(uuid.NewString(), b, deskName)
		if err := s.Publisher.PublishBookingCreated(ctx, ev); err != nil {
			s.Log.Warn().Err(err).Uint64("booking_id", b.ID).Msg("booking.created not published")
		}
	}
}

// DeskStatus is a desk together with the booking holding it at the time
// of the query, if any.
type DeskStatus struct {
	Desk   model.Desk
	Active *model.Booking
}

// Booked reports whether the desk is currently occupied.
func (d DeskStatus) Booked() bool { return d.Active != nil }

// ListDesks returns every desk with its current status.
func (s *BookingService) ListDesks(ctx context.Context) ([]DeskStatus, error) {
	now := s.Now()
	desks, err := s.Desks.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list desks: %w", err)
	}
	pending, err := s.Bookings.ListEndingAfter(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list current bookings: %w", err)
	}
	byDesk := make(map[uint64][]model.Booking)
	for _, b := range pending {
		byDesk[b.DeskID] = append(byDesk[b.DeskID], b)
	}
	out := make([]DeskStatus, 0, len(desks))
	for _, d := range desks {
		out = append(out, DeskStatus{Desk: d, Active: model.ActiveBooking(byDesk[d.ID], now)})
	}
	return out, nil
}

// DeskDetail is a desk with all of its bookings and its current status.
type DeskDetail struct {
	DeskStatus
	Bookings []model.Booking
}

// GetDesk returns one desk with its bookings.  Unknown IDs yield
// repository.ErrDeskNotFound.
func (s *BookingService) GetDesk(ctx context.Context, id uint64) (*DeskDetail, error) {
	desk, err := s.Desks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByDesk(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list bookings of desk %d: %w", id, err)
	}
	return &DeskDetail{
		DeskStatus: DeskStatus{Desk: *desk, Active: model.ActiveBooking(bookings, s.Now())},
		Bookings:   bookings,
	}, nil
}

// ListDeskBookings returns the bookings of one desk ordered by start.
func (s *BookingService) ListDeskBookings(ctx context.Context, deskID uint64) ([]model.Booking, error) {
	if _, err := s.Desks.GetByID(ctx, deskID); err != nil {
		return nil, err
	}
	return s.Bookings.ListByDesk(ctx, deskID)
}

// BookingPage is one page of the bookings listing.
type BookingPage struct {
	Items  []model.Booking
	Total  int64
	Limit  int
	Offset int
}

// ListBookings returns a page of bookings.  A non-positive limit falls
// back to DefaultPageSize, larger ones are capped at MaxPageSize and a
// negative offset is treated as zero.
func (s *BookingService) ListBookings(ctx context.Context, limit, offset int) (*BookingPage, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	total, err := s.Bookings.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	items, err := s.Bookings.ListPage(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return &BookingPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// ExportBookings writes every booking as an .xlsx workbook.
func (s *BookingService) ExportBookings(ctx context.Context, w io.Writer) error {
	desks, err := s.Desks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list desks: %w", err)
	}
	names := make(map[uint64]string, len(desks))
	for _, d := range desks {
		names[d.ID] = d.Name
	}
	bookings, err := s.Bookings.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list bookings: %w", err)
	}
	rows := make([]export.BookingRow, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, export.BookingRow{ID: b.ID, Desk: names[b.DeskID], Name: b.Name, Start: b.Start, End: b.End})
	}
	return export.WriteBookings(w, rows)
}

// SeedDesks creates the named desks that do not exist yet and returns how
// many were inserted.
func (s *BookingService) SeedDesks(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || utf8.RuneCountInString(name) > model.DeskNameMaxLen {
			return created, fmt.Errorf("%w: %q", ErrInvalidDeskName, raw)
		}
		_, inserted, err := s.Desks.EnsureByName(ctx, name)
		if err != nil {
			return created, fmt.Errorf("seed desk %q: %w", name, err)
		}
		if inserted {
			created++
		}
	}
	if created > 0 {
		s.Log.Info().Int("created", created).Msg("desks seeded")
	}
	return created, nil
}
