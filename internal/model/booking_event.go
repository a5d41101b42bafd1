package model

import "time"

// BookingEvent is an audit record of a created booking, written by the
// queue consumer from a booking.created message.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – unique identifier of the message, used for deduplication.
//  BookingID – booking the event describes.
//  DeskID    – desk that was booked.
//  DeskName  – name of the desk at the time of booking.
//  Name      – booking owner's display name.
//  Start     – start of the booked interval.
//  End       – end of the booked interval.
//  CreatedAt – when the audit row was written.
type BookingEvent struct {
	ID        uint64
	EventID   string
	BookingID uint64
	DeskID    uint64
	DeskName  string
	Name      string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}
