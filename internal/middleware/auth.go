package middleware

import (
	"context"
	"strings"

	"github.com/dimitrije/relayo-api/internal/logging"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey      = "user_id"
	UserEmailKey   = "user_email"
	WorkspaceIDKey = "workspace_id"
)

// Provisioner resolves a verified identity to its user and workspace,
// creating both on first sight.
type Provisioner interface {
	Provision(ctx context.Context, identity *services.Identity) (*models.User, *models.Workspace, error)
}

// Auth rejects requests without a valid bearer token before touching the
// store, then provisions the caller.
func Auth(verifier services.TokenVerifier, provisioner Provisioner, logger *logging.Logger) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		ctx := context.Background()

		identity, err := verifier.Verify(ctx, parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		user, workspace, err := provisioner.Provision(ctx, identity)
		if err != nil {
			logger.Errorw("failed to provision user", "subject", identity.Subject, "error", err)
			c.InternalServerError("failed to load account")
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserEmailKey, identity.Email)
		c.Set(WorkspaceIDKey, workspace.ID)

		c.Next()
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	return getUUID(c, UserIDKey)
}

func GetWorkspaceID(c *drift.Context) uuid.UUID {
	return getUUID(c, WorkspaceIDKey)
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

func getUUID(c *drift.Context, key string) uuid.UUID {
	if id, ok := c.Get(key); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}
