package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
)

// SeatHandler serves the seat map.  Reads come from the in-process
// projection, which is seeded from the store at startup and kept current by
// the realtime sync client plus local commit results; the store is never
// queried on the hot path.
type SeatHandler struct {
	Seats *engine.SeatMap
}

// NewSeatHandler constructs a SeatHandler bound to the shared projection.
func NewSeatHandler(seats *engine.SeatMap) *SeatHandler {
	if seats == nil {
		panic("nil seat map passed to NewSeatHandler")
	}
	return &SeatHandler{Seats: seats}
}

// GetSeats handles GET /v1/seats.  It returns every seat ordered by number
// together with the current availability count, which is what the seat
// picker screen renders.
func (h *SeatHandler) GetSeats(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"items":     h.Seats.Snapshot(),
		"available": h.Seats.AvailableCount(),
	})
}
