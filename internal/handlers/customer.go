package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type CustomerHandler struct {
	customerService CustomerServiceInterface
	messageService  MessageServiceInterface
}

func NewCustomerHandler(customerService CustomerServiceInterface, messageService MessageServiceInterface) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		messageService:  messageService,
	}
}

func (h *CustomerHandler) List(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	customers, err := h.customerService.List(context.Background(), workspaceID, strings.TrimSpace(c.QueryParam("search")))
	if err != nil {
		c.InternalServerError("failed to fetch customers")
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}

	_ = c.JSON(200, customers)
}

func (h *CustomerHandler) Create(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	req.Phone = trimmed(req.Phone)
	req.Email = trimmed(req.Email)
	if req.Phone == nil && req.Email == nil {
		c.BadRequest("phone or email is required")
		return
	}

	customer, err := h.customerService.Create(context.Background(), workspaceID, services.CustomerInput{
		Name:  trimmed(req.Name),
		Phone: req.Phone,
		Email: req.Email,
	})
	if err != nil {
		if errors.Is(err, services.ErrCustomerExists) {
			_ = c.JSON(409, map[string]string{
				"error": "customer with this phone or email already exists",
			})
			return
		}
		c.InternalServerError("failed to create customer")
		return
	}

	_ = c.JSON(201, customer)
}

func (h *CustomerHandler) Messages(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		c.BadRequest("invalid customer id")
		return
	}

	ctx := context.Background()

	if _, err := h.customerService.GetByID(ctx, workspaceID, customerID); err != nil {
		if errors.Is(err, services.ErrCustomerNotFound) {
			c.NotFound("customer not found")
			return
		}
		c.InternalServerError("failed to fetch customer")
		return
	}

	messages, err := h.messageService.ListByCustomer(ctx, workspaceID, customerID)
	if err != nil {
		c.InternalServerError("failed to fetch messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	_ = c.JSON(200, messages)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
