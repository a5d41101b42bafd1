package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/model"
	"github.com/iliyamo/hotdesk/internal/repository"
	"github.com/iliyamo/hotdesk/internal/service"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation_failed"
	CodeInvalidName  = "invalid_name"
	CodeDeskNotFound = "desk_not_found"
	CodeInverted     = "inverted_interval"
	CodeZeroLength   = "zero_length"
	CodeOverlap      = "overlap"
	CodeInternal     = "internal_error"
)

// BookingResponse is the JSON form of a booking.
type BookingResponse struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	DeskID    uint64    `json:"desk_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// DeskResponse is a desk with its status at request time.
type DeskResponse struct {
	ID            uint64           `json:"id"`
	Name          string           `json:"name"`
	Booked        bool             `json:"booked"`
	ActiveBooking *BookingResponse `json:"active_booking"`
}

// DeskDetailResponse adds the desk's bookings.
type DeskDetailResponse struct {
	DeskResponse
	Bookings []BookingResponse `json:"bookings"`
}

func toBooking(b model.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Name:      b.Name,
		DeskID:    b.DeskID,
		Start:     b.Start.UTC(),
		End:       b.End.UTC(),
		CreatedAt: b.CreatedAt.UTC(),
	}
}

func toBookings(in []model.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(in))
	for _, b := range in {
		out = append(out, toBooking(b))
	}
	return out
}

func toDesk(s service.DeskStatus) DeskResponse {
	out := DeskResponse{ID: s.Desk.ID, Name: s.Desk.Name, Booked: s.Booked()}
	if s.Active != nil {
		active := toBooking(*s.Active)
		out.ActiveBooking = &active
	}
	return out
}

func errorJSON(c echo.Context, status int, code, msg string) error {
	return c.JSON(status, echo.Map{"error": msg, "code": code})
}

// writeError maps service and repository errors to HTTP responses.
// Anything unrecognised is logged and answered with 500.
func writeError(c echo.Context, log zerolog.Logger, err error) error {
	var overlap *service.OverlapError
	var verrs ValidationErrors
	switch {
	case errors.As(err, &overlap):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     err.Error(),
			"code":      CodeOverlap,
			"conflicts": toBookings(overlap.Conflicts),
		})
	case errors.As(err, &verrs):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":  "validation failed",
			"code":   CodeValidation,
			"fields": verrs,
		})
	case errors.Is(err, service.ErrInvertedInterval):
		return errorJSON(c, http.StatusUnprocessableEntity, CodeInverted, err.Error())
	case errors.Is(err, service.ErrZeroLength):
		return errorJSON(c, http.StatusUnprocessableEntity, CodeZeroLength, err.Error())
	case errors.Is(err, service.ErrInvalidName):
		return errorJSON(c, http.StatusUnprocessableEntity, CodeInvalidName, err.Error())
	case errors.Is(err, repository.ErrDeskNotFound):
		return errorJSON(c, http.StatusNotFound, CodeDeskNotFound, "desk not found")
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("request failed")
		return errorJSON(c, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
