package service

import (
	"errors"

	"github.com/iliyamo/hotdesk/internal/model"
)

// Rejection reasons returned to the submitter.
var (
	ErrOverlap          = errors.New("booking overlaps with an existing booking")
	ErrInvertedInterval = errors.New("booking ends before it begins")
	ErrZeroLength       = errors.New("booking has zero duration")
)

// OverlapError lists the bookings a rejected candidate collides with.
// It matches ErrOverlap with errors.Is.
type OverlapError struct {
	Conflicts []model.Booking
}

func (e *OverlapError) Error() string { return ErrOverlap.Error() }

func (e *OverlapError) Unwrap() error { return ErrOverlap }

// ValidateBooking decides whether candidate may be booked on deskID given
// existing, the desk's current bookings.  Bookings of other desks in
// existing are ignored.  The interval shape is checked first, so an
// inverted interval is always reported as such even when it also
// intersects an existing booking.
func ValidateBooking(deskID uint64, candidate model.Interval, existing []model.Booking) error {
	if candidate.End.Before(candidate.Start) {
		return ErrInvertedInterval
	}
	if candidate.End.Equal(candidate.Start) {
		return ErrZeroLength
	}
	var conflicts []model.Booking
	for _, b := range existing {
		if b.DeskID != deskID {
			continue
		}
		if candidate.Overlaps(b.Interval()) {
			conflicts = append(conflicts, b)
		}
	}
	if len(conflicts) > 0 {
		return &OverlapError{Conflicts: conflicts}
	}
	return nil
}
