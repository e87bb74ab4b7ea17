package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/relayo-api/internal/metrics"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"github.com/google/uuid"
)

var (
	ErrTwilioNotConnected = errors.New("twilio not connected")

	// ErrUpstream wraps failures of a provider call that the request
	// depended on.
	ErrUpstream = errors.New("upstream provider failure")
)

type OutboundSMS struct {
	To         string
	Body       string
	CustomerID *uuid.UUID
}

type InboundSMS struct {
	From       string
	To         string
	Body       string
	MessageSID string
}

type SMSService struct {
	integrations *IntegrationService
	customers    *CustomerService
	messages     *MessageService
	sms          providers.SMS
}

func NewSMSService(integrations *IntegrationService, customers *CustomerService, messages *MessageService, sms providers.SMS) *SMSService {
	return &SMSService{
		integrations: integrations,
		customers:    customers,
		messages:     messages,
		sms:          sms,
	}
}

// Send delivers an SMS through the workspace's Twilio account and records it
// as an outbound message. Without an explicit customer the message is linked
// to the customer owning the destination number, if any.
func (s *SMSService) Send(ctx context.Context, workspaceID uuid.UUID, out OutboundSMS) (*models.Message, error) {
	integ, err := s.integrations.GetByWorkspaceAndProvider(ctx, workspaceID, models.ProviderTwilio)
	if errors.Is(err, ErrIntegrationNotFound) {
		return nil, ErrTwilioNotConnected
	}
	if err != nil {
		return nil, err
	}

	customer, err := s.recipient(ctx, workspaceID, out)
	if err != nil {
		return nil, err
	}

	result, err := s.sms.Send(ctx, integ, out.To, out.Body)
	if err != nil {
		metrics.SMSSentTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	metrics.SMSSentTotal.WithLabelValues("success").Inc()

	to := out.To
	msg := &models.Message{
		WorkspaceID: workspaceID,
		Direction:   models.DirectionOutbound,
		Channel:     models.ChannelSMS,
		Body:        out.Body,
		FromNumber:  integ.FromNumber,
		ToNumber:    &to,
		Customer:    customer,
	}
	if customer != nil {
		msg.CustomerID = &customer.ID
	}
	if result.MessageID != "" {
		msg.ProviderMessageID = &result.MessageID
	}
	return s.messages.Create(ctx, msg)
}

func (s *SMSService) recipient(ctx context.Context, workspaceID uuid.UUID, out OutboundSMS) (*models.Customer, error) {
	if out.CustomerID != nil {
		return s.customers.GetByID(ctx, workspaceID, *out.CustomerID)
	}
	to := out.To
	customer, err := s.customers.FindByPhoneOrEmail(ctx, workspaceID, &to, nil)
	if errors.Is(err, ErrCustomerNotFound) {
		return nil, nil
	}
	return customer, err
}

// ReceiveInbound stores an SMS sent to one of the workspaces' numbers. The
// sender becomes a customer, named after their number, on first contact.
// ErrIntegrationNotFound means no workspace owns the destination number.
func (s *SMSService) ReceiveInbound(ctx context.Context, in InboundSMS) (*models.Message, error) {
	integ, err := s.integrations.FindTwilioByNumber(ctx, in.To)
	if err != nil {
		return nil, err
	}

	from, to := in.From, in.To
	customer, err := s.customers.FindOrCreate(ctx, integ.WorkspaceID, CustomerInput{Name: &from, Phone: &from})
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		WorkspaceID: integ.WorkspaceID,
		CustomerID:  &customer.ID,
		Direction:   models.DirectionInbound,
		Channel:     models.ChannelSMS,
		Body:        in.Body,
		FromNumber:  &from,
		ToNumber:    &to,
		Customer:    customer,
	}
	if in.MessageSID != "" {
		sid := in.MessageSID
		msg.ProviderMessageID = &sid
	}
	return s.messages.Create(ctx, msg)
}
