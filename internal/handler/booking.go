package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/service"
)

// Layouts accepted by CreateBooking.
const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// MIMEXLSX is the content type of the bookings export.
const MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingHandler serves booking creation, listing and export.
type BookingHandler struct {
	Service *service.BookingService
	Log     zerolog.Logger
}

// CreateBookingRequest accepts either a day with two clock times
// (date, from, until) or two RFC3339 timestamps (start, end).
type CreateBookingRequest struct {
	Name   string `json:"name" validate:"required,max=64"`
	DeskID uint64 `json:"desk_id" validate:"required"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	From   string `json:"from" validate:"omitempty,datetime=15:04"`
	Until  string `json:"until" validate:"omitempty,datetime=15:04"`
	Start  string `json:"start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End    string `json:"end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// interval resolves the request into UTC start and end times.  The
// fields have already passed the struct tags, so only presence is
// checked here.
func (r CreateBookingRequest) interval() (time.Time, time.Time, error) {
	if r.Date != "" || r.From != "" || r.Until != "" {
		var missing ValidationErrors
		fields := []struct{ name, value string }{{"date", r.Date}, {"from", r.From}, {"until", r.Until}}
		for _, f := range fields {
			if f.value == "" {
				missing = append(missing, FieldError{Field: f.name, Message: "is required"})
			}
		}
		if len(missing) > 0 {
			return time.Time{}, time.Time{}, missing
		}
		start, err := time.ParseInLocation(dateLayout+" "+clockLayout, r.Date+" "+r.From, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, ValidationErrors{{Field: "from", Message: err.Error()}}
		}
		end, err := time.ParseInLocation(dateLayout+" "+clockLayout, r.Date+" "+r.Until, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, ValidationErrors{{Field: "until", Message: err.Error()}}
		}
		return start, end, nil
	}

	var missing ValidationErrors
	if r.Start == "" {
		missing = append(missing, FieldError{Field: "start", Message: "is required"})
	}
	if r.End == "" {
		missing = append(missing, FieldError{Field: "end", Message: "is required"})
	}
	if len(missing) > 0 {
		return time.Time{}, time.Time{}, missing
	}
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{{Field: "start", Message: err.Error()}}
	}
	end, err := time.Parse(time.RFC3339, r.End)
	if err != nil {
		return time.Time{}, time.Time{}, ValidationErrors{{Field: "end", Message: err.Error()}}
	}
	return start.UTC(), end.UTC(), nil
}

// CreateBooking handles POST /v1/bookings.  It answers 201 with the
// stored booking, 400 for an unreadable body, 404 for an unknown desk,
// 409 with the conflicting bookings on overlap and 422 otherwise.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, h.Log, err)
	}
	start, end, err := req.interval()
	if err != nil {
		return writeError(c, h.Log, err)
	}

	b, err := h.Service.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		Name:   req.Name,
		DeskID: req.DeskID,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toBooking(*b))
}

// ListBookings handles GET /v1/bookings?limit=&offset=.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeBadRequest, "invalid limit")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, CodeBadRequest, "invalid offset")
	}
	page, err := h.Service.ListBookings(c.Request().Context(), limit, offset)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":  toBookings(page.Items),
		"total":  page.Total,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// ExportBookings handles GET /v1/bookings/export.xlsx.
func (h *BookingHandler) ExportBookings(c echo.Context) error {
	var buf bytes.Buffer
	if err := h.Service.ExportBookings(c.Request().Context(), &buf); err != nil {
		return writeError(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.xlsx"`)
	return c.Blob(http.StatusOK, MIMEXLSX, buf.Bytes())
}

func queryInt(c echo.Context, name string) (int, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
