package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/model"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
	"github.com/iliyamo/bus-seat-reservation/internal/repository"
	queue_publisher "github.com/iliyamo/bus-seat-reservation/internal/service"
)

// BookingHandler drives the booking flow: it builds a selection session
// from the request, validates it through the engine and commits it through
// the coordinator, so the engine's invariants hold no matter what the
// client sent.  Successful commits are recorded in booking history and
// announced on the realtime stream.
type BookingHandler struct {
	Seats       *engine.SeatMap
	Coordinator *engine.Coordinator
	Bookings    *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must be
// non-nil.
func NewBookingHandler(seats *engine.SeatMap, co *engine.Coordinator, bookings *repository.BookingRepo) *BookingHandler {
	if seats == nil || co == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Seats: seats, Coordinator: co, Bookings: bookings}
}

// CreateBooking handles POST /v1/bookings.  The body carries the selected
// seat numbers, the party's gender and the passenger count (accepted as
// number or string, parsed strictly).  Responses:
//
//	201 – booked; body carries the downstream contract
//	      {transaction_id, seats, gender, seat_count, total_amount_cents}
//	400 – validation failure (bad count, unknown seat, too many seats, ...)
//	409 – concurrency conflict; body lists the seats lost to another party
//	422 – gender segregation conflict; body names the blocking neighbor
//	503 – store unreachable or timed out; body flags outcome_unknown
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Seats      []int  `json:"seats"`
		Gender     string `json:"gender"`
		Passengers any    `json:"passengers"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	passengers, err := engine.ParsePassengerCount(body.Passengers)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	// Deduplicate seat numbers so a repeated entry cannot toggle a seat
	// back off.
	seen := make(map[int]struct{}, len(body.Seats))
	ordered := make([]int, 0, len(body.Seats))
	for _, n := range body.Seats {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			ordered = append(ordered, n)
		}
	}
	if len(ordered) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats are required"})
	}
	if len(ordered) > passengers {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "more seats than passengers"})
	}

	session, err := engine.NewSession(passengers, h.Seats)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := session.SetGender(model.Gender(body.Gender)); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	// Toggle in ascending order so constraint conflicts are reported
	// deterministically.
	sort.Ints(ordered)
	for _, n := range ordered {
		added, err := session.Toggle(n)
		if err != nil {
			return h.bookingError(c, err)
		}
		if !added {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat " + strconv.Itoa(n) + " could not be selected"})
		}
	}

	booking, err := h.Coordinator.Commit(c.Request().Context(), session)
	if err != nil {
		return h.bookingError(c, err)
	}
	booking.UserID = userID

	// Record history and announce the delta.  Both are best-effort: the
	// seats are already durably booked in the store.
	rec := &repository.BookingRecord{
		TransactionID:    booking.TransactionID,
		UserID:           userID,
		Gender:           string(booking.Gender),
		SeatCount:        booking.SeatCount(),
		TotalAmountCents: booking.TotalAmountCents,
		Seats:            booking.Seats,
	}
	if err := h.Bookings.Create(c.Request().Context(), rec); err != nil {
		log.Printf("booking: history insert failed for tx %s: %v", booking.TransactionID, err)
	}
	pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := queue_publisher.PublishSeatDelta(pubCtx, queue.NewSeatDeltaEvent(booking)); err != nil {
		log.Printf("booking: delta publish failed for tx %s: %v", booking.TransactionID, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"transaction_id":     booking.TransactionID,
		"seats":              booking.Seats,
		"gender":             booking.Gender,
		"seat_count":         booking.SeatCount(),
		"total_amount_cents": booking.TotalAmountCents,
	})
}

// bookingError maps the engine's error taxonomy onto HTTP responses.
func (h *BookingHandler) bookingError(c echo.Context, err error) error {
	var (
		vErr *engine.ValidationError
		cvIn *engine.ConstraintViolation
		cc   *engine.ConcurrencyConflict
		te   *engine.TransportError
	)
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Reason})
	case errors.As(err, &cvIn):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":           "gender restriction",
			"seat":            cvIn.Seat,
			"neighbor_seat":   cvIn.NeighborSeat,
			"neighbor_gender": cvIn.NeighborGender,
		})
	case errors.As(err, &cc):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "seats no longer available",
			"lost":  cc.Lost,
		})
	case errors.As(err, &te):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"error":           "store unavailable",
			"outcome_unknown": te.OutcomeUnknown,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
}

// ListBookings handles GET /v1/bookings.  It returns the caller's booking
// history, newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id.  It returns one booking for the
// authenticated user: 404 when it does not exist, 403 when it belongs to
// someone else.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	rec, err := h.Bookings.GetByIDForUser(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		if errors.Is(err, repository.ErrForbidden) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": rec})
}
