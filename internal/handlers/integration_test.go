package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/oauth"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/dimitrije/relayo-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const testDashboardURL = "http://dashboard.test/"

type integrationTestEnv struct {
	integrations *testutil.MockIntegrationService
	consent      *testutil.MockConsentProvider
	states       *oauth.StateStore
	app          http.Handler
	callback     http.Handler
	provisioner  *testutil.StaticProvisioner
}

func setupIntegrationTest(t *testing.T, withConsent bool) *integrationTestEnv {
	t.Helper()
	env := &integrationTestEnv{
		integrations: new(testutil.MockIntegrationService),
		consent:      new(testutil.MockConsentProvider),
		states:       oauth.NewStateStore(time.Minute),
	}

	var consent ConsentProvider
	if withConsent {
		consent = env.consent
	}
	handler := NewIntegrationHandler(env.integrations, consent, env.states, testDashboardURL, logging.NewNoopLogger())

	env.app, env.provisioner = newTestApp(t,
		testRoute{http.MethodGet, "/integrations", handler.List},
		testRoute{http.MethodGet, "/integrations/google/init", handler.GoogleInit},
		testRoute{http.MethodPatch, "/integrations/google", handler.UpdateGoogle},
		testRoute{http.MethodPost, "/integrations/twilio", handler.SaveTwilio},
	)
	env.callback = newPublicApp(t, testRoute{http.MethodGet, "/integrations/google/callback", handler.GoogleCallback})
	return env
}

func (env *integrationTestEnv) callbackRequest(t *testing.T, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/integrations/google/callback"+query, nil)
	rec := httptest.NewRecorder()
	env.callback.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationHandler_List(t *testing.T) {
	env := setupIntegrationTest(t, true)

	sheetsURL := "https://docs.google.com/spreadsheets/d/abc123/edit"
	env.integrations.On("ListByWorkspace", mock.Anything, env.provisioner.Workspace.ID).Return([]models.Integration{
		{ID: uuid.New(), Provider: models.ProviderGoogle, CalendarIDs: []string{"primary"}, SheetsURL: &sheetsURL, AccessToken: strPtr("secret")},
		{ID: uuid.New(), Provider: models.ProviderTwilio, FromNumber: strPtr("+15550100"), AuthToken: strPtr("secret")},
	}, nil)

	rec := doRequest(t, env.app, http.MethodGet, "/integrations", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	var response []dto.IntegrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, []string{"primary"}, response[0].CalendarIDs)
	assert.Equal(t, []string{}, response[1].CalendarIDs)
	assert.Equal(t, "+15550100", *response[1].FromNumber)
}

func TestIntegrationHandler_GoogleInit(t *testing.T) {
	env := setupIntegrationTest(t, true)

	var issued string
	env.consent.On("GetConsentURL", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { issued = args.String(0) }).
		Return("https://accounts.google.com/o/oauth2/auth?state=x")

	rec := doRequest(t, env.app, http.MethodGet, "/integrations/google/init", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "accounts.google.com")

	// the state handed to Google resolves back to the caller's workspace
	workspaceID, ok := env.states.Consume(issued)
	assert.True(t, ok)
	assert.Equal(t, env.provisioner.Workspace.ID, workspaceID)
}

func TestIntegrationHandler_GoogleInit_NotConfigured(t *testing.T) {
	env := setupIntegrationTest(t, false)

	rec := doRequest(t, env.app, http.MethodGet, "/integrations/google/init", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "google integration is not configured")
}

func TestIntegrationHandler_GoogleCallback_Success(t *testing.T) {
	env := setupIntegrationTest(t, true)
	workspaceID := uuid.New()

	state, err := env.states.Issue(workspaceID)
	require.NoError(t, err)

	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}
	env.consent.On("ExchangeCode", mock.Anything, "auth-code").Return(token, nil)
	env.integrations.On("SaveGoogleToken", mock.Anything, workspaceID, token).
		Return(&models.Integration{ID: uuid.New(), Provider: models.ProviderGoogle}, nil)

	rec := env.callbackRequest(t, "?state="+state+"&code=auth-code")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://dashboard.test/integrations?connected=google", rec.Header().Get("Location"))

	env.consent.AssertExpectations(t)
	env.integrations.AssertExpectations(t)

	// states are single use
	_, ok := env.states.Consume(state)
	assert.False(t, ok)
}

func TestIntegrationHandler_GoogleCallback_Failures(t *testing.T) {
	t.Run("missing params", func(t *testing.T) {
		env := setupIntegrationTest(t, true)

		rec := env.callbackRequest(t, "?code=auth-code")

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "http://dashboard.test/integrations?error=missing_params", rec.Header().Get("Location"))
	})

	t.Run("unknown state", func(t *testing.T) {
		env := setupIntegrationTest(t, true)

		rec := env.callbackRequest(t, "?state=forged&code=auth-code")

		assert.Equal(t, "http://dashboard.test/integrations?error=invalid_state", rec.Header().Get("Location"))
		env.consent.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
	})

	t.Run("exchange fails", func(t *testing.T) {
		env := setupIntegrationTest(t, true)
		state, err := env.states.Issue(uuid.New())
		require.NoError(t, err)

		env.consent.On("ExchangeCode", mock.Anything, "bad-code").Return(nil, errors.New("invalid_grant"))

		rec := env.callbackRequest(t, "?state="+state+"&code=bad-code")

		assert.Equal(t, "http://dashboard.test/integrations?error=oauth_failed", rec.Header().Get("Location"))
		env.integrations.AssertNotCalled(t, "SaveGoogleToken", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not configured", func(t *testing.T) {
		env := setupIntegrationTest(t, false)

		rec := env.callbackRequest(t, "?state=s&code=c")

		assert.Equal(t, "http://dashboard.test/integrations?error=not_configured", rec.Header().Get("Location"))
	})
}

func TestIntegrationHandler_UpdateGoogle(t *testing.T) {
	env := setupIntegrationTest(t, true)

	sheetsURL := "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0"
	calendarIDs := []string{"primary", "team@group.calendar.google.com"}
	env.integrations.On("UpdateGoogleConfig", mock.Anything, env.provisioner.Workspace.ID, calendarIDs, &sheetsURL).
		Return(&models.Integration{ID: uuid.New(), Provider: models.ProviderGoogle, CalendarIDs: calendarIDs, SheetsURL: &sheetsURL}, nil)

	rec := doRequest(t, env.app, http.MethodPatch, "/integrations/google", dto.UpdateGoogleRequest{
		CalendarIDs: calendarIDs,
		SheetsURL:   &sheetsURL,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	env.integrations.AssertExpectations(t)
}

func TestIntegrationHandler_UpdateGoogle_Errors(t *testing.T) {
	t.Run("not a sheets link", func(t *testing.T) {
		env := setupIntegrationTest(t, true)

		rec := doRequest(t, env.app, http.MethodPatch, "/integrations/google", map[string]any{
			"sheets_url": "https://example.com/spreadsheet",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "not a Google Sheets link")
	})

	t.Run("not connected", func(t *testing.T) {
		env := setupIntegrationTest(t, true)
		env.integrations.On("UpdateGoogleConfig", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, services.ErrIntegrationNotFound)

		rec := doRequest(t, env.app, http.MethodPatch, "/integrations/google", map[string]any{
			"calendar_ids": []string{"primary"},
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Google integration not found")
	})

	t.Run("empty calendar id", func(t *testing.T) {
		env := setupIntegrationTest(t, true)

		rec := doRequest(t, env.app, http.MethodPatch, "/integrations/google", map[string]any{
			"calendar_ids": []string{"primary", ""},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestIntegrationHandler_SaveTwilio(t *testing.T) {
	env := setupIntegrationTest(t, true)

	env.integrations.On("SaveTwilio", mock.Anything, env.provisioner.Workspace.ID, "AC123", "token", "+15550100").
		Return(&models.Integration{ID: uuid.New(), Provider: models.ProviderTwilio, FromNumber: strPtr("+15550100"), AuthToken: strPtr("token")}, nil)

	rec := doRequest(t, env.app, http.MethodPost, "/integrations/twilio", dto.SaveTwilioRequest{
		AccountSID: " AC123 ",
		AuthToken:  "token",
		FromNumber: "+15550100",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"token"`)
	assert.Contains(t, rec.Body.String(), `"provider":"TWILIO"`)
	env.integrations.AssertExpectations(t)
}

func TestIntegrationHandler_SaveTwilio_Validation(t *testing.T) {
	env := setupIntegrationTest(t, true)

	rec := doRequest(t, env.app, http.MethodPost, "/integrations/twilio", dto.SaveTwilioRequest{
		AccountSID: "AC123",
		AuthToken:  "token",
		FromNumber: "5550100",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "from_number must be an E.164 phone number")
	env.integrations.AssertNotCalled(t, "SaveTwilio", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
