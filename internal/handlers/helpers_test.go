package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/require"
)

type testRoute struct {
	method  string
	path    string
	handler drift.HandlerFunc
}

// newTestApp builds an authenticated drift app around the given routes. Every
// valid token resolves to the provisioner's user and workspace.
func newTestApp(t *testing.T, routes ...testRoute) (http.Handler, *testutil.StaticProvisioner) {
	t.Helper()
	provisioner := testutil.NewStaticProvisioner()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestJWTService(), provisioner, logging.NewNoopLogger()))

	for _, r := range routes {
		switch r.method {
		case http.MethodGet:
			app.Get(r.path, r.handler)
		case http.MethodPost:
			app.Post(r.path, r.handler)
		case http.MethodPatch:
			app.Patch(r.path, r.handler)
		case http.MethodDelete:
			app.Delete(r.path, r.handler)
		default:
			t.Fatalf("unsupported method %s", r.method)
		}
	}
	return app, provisioner
}

// newPublicApp builds an app without the auth middleware, for callback routes.
func newPublicApp(t *testing.T, routes ...testRoute) http.Handler {
	t.Helper()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	for _, r := range routes {
		switch r.method {
		case http.MethodGet:
			app.Get(r.path, r.handler)
		case http.MethodPost:
			app.Post(r.path, r.handler)
		default:
			t.Fatalf("unsupported method %s", r.method)
		}
	}
	return app
}

func doRequest(t *testing.T, app http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", testutil.AuthHeader(testutil.GenerateTestToken(t, "user-1", "test@example.com")))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func strPtr(s string) *string { return &s }
