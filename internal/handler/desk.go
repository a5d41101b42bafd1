package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotdesk/internal/service"
)

// DeskHandler serves the desk views.
type DeskHandler struct {
	Service *service.BookingService
	Log     zerolog.Logger
}

// ListDesks returns every desk with its current status as {"items": [...]}.
func (h *DeskHandler) ListDesks(c echo.Context) error {
	statuses, err := h.Service.ListDesks(c.Request().Context())
	if err != nil {
		return writeError(c, h.Log, err)
	}
	out := make([]DeskResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toDesk(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetDesk returns one desk with its bookings and the active one.
func (h *DeskHandler) GetDesk(c echo.Context) error {
	id, ok := deskID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, CodeBadRequest, "invalid desk id")
	}
	d, err := h.Service.GetDesk(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, DeskDetailResponse{
		DeskResponse: toDesk(d.DeskStatus),
		Bookings:     toBookings(d.Bookings),
	})
}

// ListDeskBookings returns the bookings of one desk ordered by start.
func (h *DeskHandler) ListDeskBookings(c echo.Context) error {
	id, ok := deskID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, CodeBadRequest, "invalid desk id")
	}
	bookings, err := h.Service.ListDeskBookings(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toBookings(bookings)})
}

func deskID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
