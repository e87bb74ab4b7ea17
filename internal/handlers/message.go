package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/dimitrije/relayo-api/internal/conversation"
	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type MessageHandler struct {
	messageService MessageServiceInterface
	smsService     SMSServiceInterface
}

func NewMessageHandler(messageService MessageServiceInterface, smsService SMSServiceInterface) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		smsService:     smsService,
	}
}

// Conversations returns one summary per customer the workspace has
// exchanged messages with.
func (h *MessageHandler) Conversations(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	summaries, err := conversation.List(context.Background(), h.messageService, workspaceID)
	if err != nil {
		c.InternalServerError("failed to fetch messages")
		return
	}

	_ = c.JSON(200, dto.ConversationsResponse{Conversations: summaries})
}

func (h *MessageHandler) SendSMS(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SendSMSRequest
	if !bindAndValidate(c, &req) {
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		c.BadRequest("body is required")
		return
	}

	msg, err := h.smsService.Send(context.Background(), workspaceID, services.OutboundSMS{
		To:         req.To,
		Body:       body,
		CustomerID: req.CustomerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTwilioNotConnected):
			c.BadRequest("Twilio not connected")
		case errors.Is(err, services.ErrCustomerNotFound):
			c.NotFound("customer not found")
		case errors.Is(err, services.ErrUpstream):
			c.BadGateway("failed to send sms")
		default:
			c.InternalServerError("failed to send sms")
		}
		return
	}

	_ = c.JSON(201, msg)
}
