package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers/google"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type IntegrationHandler struct {
	integrationService IntegrationServiceInterface
	consent            ConsentProvider
	states             StateStoreInterface
	dashboardURL       string
	logger             *logging.Logger
}

// NewIntegrationHandler wires the integration endpoints. consent may be nil
// when no Google OAuth client is configured.
func NewIntegrationHandler(
	integrationService IntegrationServiceInterface,
	consent ConsentProvider,
	states StateStoreInterface,
	dashboardURL string,
	logger *logging.Logger,
) *IntegrationHandler {
	return &IntegrationHandler{
		integrationService: integrationService,
		consent:            consent,
		states:             states,
		dashboardURL:       strings.TrimRight(dashboardURL, "/"),
		logger:             logger,
	}
}

func (h *IntegrationHandler) List(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	integrations, err := h.integrationService.ListByWorkspace(context.Background(), workspaceID)
	if err != nil {
		c.InternalServerError("failed to fetch integrations")
		return
	}

	response := make([]dto.IntegrationResponse, len(integrations))
	for i := range integrations {
		response[i] = toIntegrationResponse(&integrations[i])
	}

	_ = c.JSON(200, response)
}

func (h *IntegrationHandler) GoogleInit(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if h.consent == nil {
		c.BadRequest("google integration is not configured")
		return
	}

	state, err := h.states.Issue(workspaceID)
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	_ = c.JSON(200, dto.ConsentURLResponse{
		URL: h.consent.GetConsentURL(state),
	})
}

// GoogleCallback completes the consent flow. It is reached by the browser,
// so every outcome is a redirect back to the dashboard.
func (h *IntegrationHandler) GoogleCallback(c *drift.Context) {
	if h.consent == nil {
		h.redirect(c, "error", "not_configured")
		return
	}

	state := c.QueryParam("state")
	code := c.QueryParam("code")
	if state == "" || code == "" {
		h.redirect(c, "error", "missing_params")
		return
	}

	workspaceID, ok := h.states.Consume(state)
	if !ok {
		h.redirect(c, "error", "invalid_state")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := h.consent.ExchangeCode(ctx, code)
	if err != nil {
		h.logger.Warnw("google code exchange failed", "workspace_id", workspaceID, "error", err)
		h.redirect(c, "error", "oauth_failed")
		return
	}

	if _, err := h.integrationService.SaveGoogleToken(ctx, workspaceID, token); err != nil {
		h.logger.Errorw("failed to save google token", "workspace_id", workspaceID, "error", err)
		h.redirect(c, "error", "oauth_failed")
		return
	}

	h.redirect(c, "connected", "google")
}

func (h *IntegrationHandler) UpdateGoogle(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateGoogleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sheetsURL := trimmed(req.SheetsURL)
	if sheetsURL != nil {
		if _, err := google.SpreadsheetID(*sheetsURL); err != nil {
			c.BadRequest("sheets_url is not a Google Sheets link")
			return
		}
	}

	integ, err := h.integrationService.UpdateGoogleConfig(context.Background(), workspaceID, req.CalendarIDs, sheetsURL)
	if err != nil {
		if errors.Is(err, services.ErrIntegrationNotFound) {
			c.NotFound("Google integration not found")
			return
		}
		c.InternalServerError("failed to update integration")
		return
	}

	_ = c.JSON(200, toIntegrationResponse(integ))
}

func (h *IntegrationHandler) SaveTwilio(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.SaveTwilioRequest
	if !bindAndValidate(c, &req) {
		return
	}

	integ, err := h.integrationService.SaveTwilio(context.Background(), workspaceID,
		strings.TrimSpace(req.AccountSID),
		strings.TrimSpace(req.AuthToken),
		strings.TrimSpace(req.FromNumber),
	)
	if err != nil {
		c.InternalServerError("failed to save integration")
		return
	}

	_ = c.JSON(200, toIntegrationResponse(integ))
}

func (h *IntegrationHandler) redirect(c *drift.Context, key, value string) {
	target := fmt.Sprintf("%s/integrations?%s=%s", h.dashboardURL, key, url.QueryEscape(value))
	c.Response.Header().Set("Location", target)
	c.Response.WriteHeader(302)
	c.Abort()
}

func toIntegrationResponse(integ *models.Integration) dto.IntegrationResponse {
	calendarIDs := integ.CalendarIDs
	if calendarIDs == nil {
		calendarIDs = []string{}
	}
	return dto.IntegrationResponse{
		ID:          integ.ID,
		Provider:    integ.Provider,
		CalendarIDs: calendarIDs,
		SheetsURL:   integ.SheetsURL,
		FromNumber:  integ.FromNumber,
	}
}
