// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the consumer that use them.
package queue

import (
	"fmt"
	"time"

	"github.com/iliyamo/hotdesk/internal/model"
)

// BookingCreatedQueue is the durable queue carrying BookingCreatedEvent.
const BookingCreatedQueue = "booking.created"

// BookingCreatedEvent is published after a booking has been stored.  It
// contains enough information for the audit consumer to record the booking
// without querying the primary database.  Times are RFC3339 in UTC.
type BookingCreatedEvent struct {
	EventID   string `json:"event_id"`
	BookingID uint64 `json:"booking_id"`
	DeskID    uint64 `json:"desk_id"`
	DeskName  string `json:"desk_name"`
	Name      string `json:"name"`
	StartsAt  string `json:"starts_at"`
	EndsAt    string `json:"ends_at"`
	CreatedAt string `json:"created_at"`
}

// NewBookingCreatedEvent builds the event for b on desk d.
func NewBookingCreatedEvent(eventID string, b model.Booking, deskName string) BookingCreatedEvent {
	return BookingCreatedEvent{
		EventID:   eventID,
		BookingID: b.ID,
		DeskID:    b.DeskID,
		DeskName:  deskName,
		Name:      b.Name,
		StartsAt:  b.Start.UTC().Format(time.RFC3339),
		EndsAt:    b.End.UTC().Format(time.RFC3339),
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ToModel converts the payload into an audit record.
func (e BookingCreatedEvent) ToModel() (model.BookingEvent, error) {
	if e.EventID == "" {
		return model.BookingEvent{}, fmt.Errorf("event_id is required")
	}
	start, err := time.Parse(time.RFC3339, e.StartsAt)
	if err != nil {
		return model.BookingEvent{}, fmt.Errorf("starts_at: %w", err)
	}
	end, err := time.Parse(time.RFC3339, e.EndsAt)
	if err != nil {
		return model.BookingEvent{}, fmt.Errorf("ends_at: %w", err)
	}
	return model.BookingEvent{
		EventID:   e.EventID,
		BookingID: e.BookingID,
		DeskID:    e.DeskID,
		DeskName:  e.DeskName,
		Name:      e.Name,
		Start:     start.UTC(),
		End:       end.UTC(),
	}, nil
}
