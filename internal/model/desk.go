package model

import "time"

// Desk represents a bookable desk.  Its booked/free status is never
// stored; it is derived from the desk's bookings at query time.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique short name of the desk (at most 6 characters).
//  CreatedAt – timestamp when the desk was created.
type Desk struct {
	ID        uint64    // desks.id
	Name      string    // desks.name
	CreatedAt time.Time // desks.created_at
}

// DeskNameMaxLen mirrors the width of desks.name.
const DeskNameMaxLen = 6

// ActiveBooking returns the first booking in bookings whose interval
// contains now, or nil when the desk is free.  Callers that load
// bookings from a repository receive them ordered by start time.
func ActiveBooking(bookings []Booking, now time.Time) *Booking {
	for i := range bookings {
		if bookings[i].IsActiveAt(now) {
			return &bookings[i]
		}
	}
	return nil
}

// IsBooked reports whether any of the bookings is active at now.
func IsBooked(bookings []Booking, now time.Time) bool {
	return ActiveBooking(bookings, now) != nil
}
