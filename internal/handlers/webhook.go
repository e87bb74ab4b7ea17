package handlers

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/metrics"
	"github.com/dimitrije/relayo-api/internal/providers/twilio"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type WebhookHandler struct {
	smsService SMSServiceInterface
	hub        HubInterface
	authToken  string
	baseURL    string
	logger     *logging.Logger
}

// NewWebhookHandler handles Twilio's inbound SMS callbacks. With an empty
// authToken signatures are not checked.
func NewWebhookHandler(smsService SMSServiceInterface, hub HubInterface, authToken, baseURL string, logger *logging.Logger) *WebhookHandler {
	return &WebhookHandler{
		smsService: smsService,
		hub:        hub,
		authToken:  authToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// TwilioSMS stores an inbound SMS and acknowledges it with empty TwiML.
// Twilio retries anything but a 2xx, so processing failures are logged and
// still acknowledged.
func (h *WebhookHandler) TwilioSMS(c *drift.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.InboundWebhooksTotal.WithLabelValues("error").Inc()
		h.logger.Errorw("failed to read twilio webhook body", "error", err)
		h.acknowledge(c)
		return
	}

	form, err := url.ParseQuery(string(body))
	if err != nil {
		metrics.InboundWebhooksTotal.WithLabelValues("error").Inc()
		h.logger.Errorw("failed to parse twilio webhook body", "error", err)
		h.acknowledge(c)
		return
	}
	// The body may already have been consumed into PostForm upstream.
	if len(form) == 0 && len(c.Request.PostForm) > 0 {
		form = c.Request.PostForm
	}

	params := make(map[string]string, len(form))
	for key := range form {
		params[key] = form.Get(key)
	}

	signature := c.GetHeader("X-Twilio-Signature")
	if !twilio.ValidateSignature(h.authToken, h.baseURL+c.Request.URL.RequestURI(), params, signature) {
		metrics.InboundWebhooksTotal.WithLabelValues("rejected").Inc()
		c.Forbidden("invalid signature")
		return
	}

	in := services.InboundSMS{
		From:       params["From"],
		To:         params["To"],
		Body:       params["Body"],
		MessageSID: params["MessageSid"],
	}

	msg, err := h.smsService.ReceiveInbound(context.Background(), in)
	switch {
	case errors.Is(err, services.ErrIntegrationNotFound):
		metrics.InboundWebhooksTotal.WithLabelValues("unknown_number").Inc()
		h.logger.Warnw("no integration found for number", "to", in.To)
	case err != nil:
		metrics.InboundWebhooksTotal.WithLabelValues("error").Inc()
		h.logger.Errorw("failed to process twilio webhook", "to", in.To, "message_sid", in.MessageSID, "error", err)
	default:
		metrics.InboundWebhooksTotal.WithLabelValues("stored").Inc()
		h.hub.BroadcastMessageReceived(msg)
	}

	h.acknowledge(c)
}

func (h *WebhookHandler) acknowledge(c *drift.Context) {
	c.Response.Header().Set("Content-Type", "text/xml")
	c.Response.WriteHeader(200)
	_, _ = c.Response.Write([]byte(emptyTwiML))
	c.Abort()
}
