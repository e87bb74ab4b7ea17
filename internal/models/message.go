package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"

	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Message is an append-only log row.
type Message struct {
	ID                uuid.UUID  `json:"id"`
	WorkspaceID       uuid.UUID  `json:"workspace_id"`
	CustomerID        *uuid.UUID `json:"customer_id,omitempty"`
	Direction         string     `json:"direction"`
	Channel           string     `json:"channel"`
	Body              string     `json:"body"`
	FromNumber        *string    `json:"from_number,omitempty"`
	ToNumber          *string    `json:"to_number,omitempty"`
	ProviderMessageID *string    `json:"provider_message_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	Customer *Customer `json:"customer,omitempty"`
}
