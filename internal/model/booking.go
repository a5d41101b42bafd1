package model

import "time"

// Booking is a reservation of one desk by a named person for the
// half-open interval [Start, End).  Bookings are created once and never
// mutated.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the person holding the booking.
//  DeskID    – desk being reserved.
//  Start     – first instant of the reservation (UTC).
//  End       – first instant after the reservation (UTC).
//  CreatedAt – timestamp when the booking was stored.
type Booking struct {
	ID        uint64    // bookings.id
	Name      string    // bookings.name
	DeskID    uint64    // bookings.desk_id
	Start     time.Time // bookings.starts_at
	End       time.Time // bookings.ends_at
	CreatedAt time.Time // bookings.created_at
}

// BookingNameMaxLen mirrors the width of bookings.name.
const BookingNameMaxLen = 64

// Interval returns the booking's time range.
func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// OverlapsWith reports whether the two bookings share at least one
// instant.  Desk identity is not considered.
func (b Booking) OverlapsWith(other Booking) bool {
	return b.Interval().Overlaps(other.Interval())
}

// IsActiveAt reports whether the booking holds its desk at instant t.
func (b Booking) IsActiveAt(t time.Time) bool {
	return b.Interval().Contains(t)
}
