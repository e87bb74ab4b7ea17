package dto

import (
	"github.com/dimitrije/relayo-api/internal/conversation"
	"github.com/google/uuid"
)

type SendSMSRequest struct {
	To         string     `json:"to" validate:"required,e164"`
	Body       string     `json:"body" validate:"required,max=1600"`
	CustomerID *uuid.UUID `json:"customer_id"`
}

type ConversationsResponse struct {
	Conversations []conversation.Summary `json:"conversations"`
}
