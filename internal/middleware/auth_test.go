package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvisioner struct {
	user      *models.User
	workspace *models.Workspace
	err       error
	calls     int
	lastID    *services.Identity
}

func (p *fakeProvisioner) Provision(ctx context.Context, identity *services.Identity) (*models.User, *models.Workspace, error) {
	p.calls++
	p.lastID = identity
	return p.user, p.workspace, p.err
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		user:      &models.User{ID: uuid.New()},
		workspace: &models.Workspace{ID: uuid.New(), Name: "Test Workspace"},
	}
}

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", 15*time.Minute)
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, subject, email string) string {
	t.Helper()
	token, err := jwtSvc.Issue(subject, email, "Test User")
	require.NoError(t, err)
	return token
}

func newProtectedApp(verifier services.TokenVerifier, provisioner Provisioner) http.Handler {
	app := drift.New()
	app.Use(Auth(verifier, provisioner, logging.NewNoopLogger()))
	app.Get("/protected", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return app
}

func TestAuth_MissingAuthorizationHeader(t *testing.T) {
	provisioner := newFakeProvisioner()
	app := newProtectedApp(newTestJWTService(), provisioner)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
	assert.Zero(t, provisioner.calls)
}

func TestAuth_InvalidAuthorizationFormat(t *testing.T) {
	testCases := map[string]string{
		"no bearer":   "Token some-token",
		"only bearer": "Bearer",
		"empty token": "Bearer ",
	}

	for name, header := range testCases {
		t.Run(name, func(t *testing.T) {
			provisioner := newFakeProvisioner()
			app := newProtectedApp(newTestJWTService(), provisioner)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", header)
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "invalid authorization header format")
			assert.Zero(t, provisioner.calls)
		})
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	provisioner := newFakeProvisioner()
	app := newProtectedApp(newTestJWTService(), provisioner)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
	assert.Zero(t, provisioner.calls)
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtSvc := services.NewJWTService("test-secret-key", -time.Minute)
	token := generateTestToken(t, jwtSvc, "user-1", "test@example.com")

	provisioner := newFakeProvisioner()
	app := newProtectedApp(jwtSvc, provisioner)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")
}

func TestAuth_WrongSecret(t *testing.T) {
	token := generateTestToken(t, services.NewJWTService("secret-1", 15*time.Minute), "user-1", "test@example.com")

	app := newProtectedApp(services.NewJWTService("secret-2", 15*time.Minute), newFakeProvisioner())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidToken(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, "user-1", "test@example.com")
	provisioner := newFakeProvisioner()

	var extractedUserID, extractedWorkspaceID uuid.UUID
	var extractedEmail string

	app := drift.New()
	app.Use(Auth(jwtSvc, provisioner, logging.NewNoopLogger()))
	app.Get("/protected", func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedWorkspaceID = GetWorkspaceID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, provisioner.user.ID, extractedUserID)
	assert.Equal(t, provisioner.workspace.ID, extractedWorkspaceID)
	assert.Equal(t, "test@example.com", extractedEmail)
	require.NotNil(t, provisioner.lastID)
	assert.Equal(t, "user-1", provisioner.lastID.Subject)
}

func TestAuth_ProvisionFailure(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, "user-1", "test@example.com")
	provisioner := newFakeProvisioner()
	provisioner.err = errors.New("connection refused")

	app := newProtectedApp(jwtSvc, provisioner)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to load account")
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, "user-1", "test@example.com")
	app := newProtectedApp(jwtSvc, newFakeProvisioner())

	for _, bearer := range []string{"bearer", "BEARER", "BeArEr"} {
		t.Run(bearer, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", bearer+" "+token)
			rec := httptest.NewRecorder()

			app.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestGetters_NotSet(t *testing.T) {
	app := drift.New()

	var extractedUserID, extractedWorkspaceID uuid.UUID
	var extractedEmail string

	app.Get("/test", func(c *drift.Context) {
		extractedUserID = GetUserID(c)
		extractedWorkspaceID = GetWorkspaceID(c)
		extractedEmail = GetUserEmail(c)
		_ = c.JSON(http.StatusOK, nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, uuid.Nil, extractedUserID)
	assert.Equal(t, uuid.Nil, extractedWorkspaceID)
	assert.Equal(t, "", extractedEmail)
}
