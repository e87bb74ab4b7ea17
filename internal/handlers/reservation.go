package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ReservationHandler struct {
	reservationService ReservationServiceInterface
	bookingService     BookingServiceInterface
}

func NewReservationHandler(reservationService ReservationServiceInterface, bookingService BookingServiceInterface) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		bookingService:     bookingService,
	}
}

func (h *ReservationHandler) List(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	filter := models.ReservationFilter{
		Status: c.QueryParam("status"),
		Source: c.QueryParam("source"),
		Search: strings.TrimSpace(c.QueryParam("search")),
	}

	reservations, err := h.reservationService.List(context.Background(), workspaceID, filter)
	if err != nil {
		c.InternalServerError("failed to fetch reservations")
		return
	}

	_ = c.JSON(200, reservations)
}

func (h *ReservationHandler) Create(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateReservationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	phone, email := trimmed(req.CustomerPhone), trimmed(req.CustomerEmail)
	if phone == nil && email == nil {
		c.BadRequest("customer_phone or customer_email is required")
		return
	}
	if !req.End.After(*req.Start) {
		c.BadRequest("end must be after start")
		return
	}

	reservation, err := h.bookingService.Book(context.Background(), workspaceID, services.BookingInput{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: phone,
		CustomerEmail: email,
		Service:       strings.TrimSpace(req.Service),
		Staff:         trimmed(req.Staff),
		Start:         *req.Start,
		End:           *req.End,
		Notes:         req.Notes,
		NotifyBy:      req.NotifyBy,
		CalendarID:    req.CalendarID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrGoogleNotConnected):
			c.BadRequest("Google Calendar not connected")
		case errors.Is(err, services.ErrUpstream):
			c.BadGateway("failed to create calendar event")
		default:
			c.InternalServerError("failed to create reservation")
		}
		return
	}

	_ = c.JSON(201, reservation)
}

func (h *ReservationHandler) Update(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid reservation id")
		return
	}

	var req dto.UpdateReservationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if req.Start != nil && req.End != nil && !req.End.After(*req.Start) {
		c.BadRequest("end must be after start")
		return
	}

	reservation, err := h.bookingService.Update(context.Background(), workspaceID, reservationID, models.ReservationPatch{
		Status:   req.Status,
		Start:    req.Start,
		End:      req.End,
		Notes:    req.Notes,
		NotifyBy: req.NotifyBy,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReservationNotFound):
			c.NotFound("reservation not found")
		case errors.Is(err, services.ErrUpstream):
			c.BadGateway("failed to update calendar event")
		default:
			c.InternalServerError("failed to update reservation")
		}
		return
	}

	_ = c.JSON(200, reservation)
}

func (h *ReservationHandler) Delete(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid reservation id")
		return
	}

	if err := h.bookingService.Delete(context.Background(), workspaceID, reservationID); err != nil {
		if errors.Is(err, services.ErrReservationNotFound) {
			c.NotFound("reservation not found")
			return
		}
		c.InternalServerError("failed to delete reservation")
		return
	}

	_ = c.JSON(200, dto.SuccessResponse{Success: true})
}

// CalendarEvents lists reservations starting inside [start, end).
func (h *ReservationHandler) CalendarEvents(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	start, err := parseTimeParam(c.QueryParam("start"))
	if err != nil {
		c.BadRequest("invalid start")
		return
	}
	end, err := parseTimeParam(c.QueryParam("end"))
	if err != nil {
		c.BadRequest("invalid end")
		return
	}
	if !end.After(start) {
		c.BadRequest("end must be after start")
		return
	}

	reservations, err := h.reservationService.ListBetween(context.Background(), workspaceID, start, end)
	if err != nil {
		c.InternalServerError("failed to fetch calendar events")
		return
	}

	_ = c.JSON(200, reservations)
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("missing time")
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, v)
}
