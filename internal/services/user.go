package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrUserNotFound = errors.New("user not found")

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// Provision returns the user and workspace for a verified identity, creating
// both on first sight. Creation is decided by the insert into users: only the
// transaction whose INSERT returns a row goes on to create a workspace, so
// concurrent first requests for one identity converge on a single workspace.
func (s *UserService) Provision(ctx context.Context, identity *Identity) (*models.User, *models.Workspace, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var user models.User
	created := true
	err = tx.QueryRow(ctx, `
		INSERT INTO users (external_id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id, external_id, email, name, created_at, updated_at
	`, identity.Subject, nullableString(identity.Email), nullableString(identity.Name)).Scan(
		&user.ID, &user.ExternalID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		created = false
		err = tx.QueryRow(ctx, `
			SELECT id, external_id, email, name, created_at, updated_at
			FROM users WHERE external_id = $1
		`, identity.Subject).Scan(
			&user.ID, &user.ExternalID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
		)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !created {
		var workspace models.Workspace
		err = tx.QueryRow(ctx, `
			SELECT w.id, w.name, w.created_at, w.updated_at
			FROM workspaces w
			JOIN workspace_members wm ON wm.workspace_id = w.id
			WHERE wm.user_id = $1
		`, user.ID).Scan(&workspace.ID, &workspace.Name, &workspace.CreatedAt, &workspace.UpdatedAt)
		if err == nil {
			if err := tx.Commit(ctx); err != nil {
				return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
			}
			return &user, &workspace, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("failed to load workspace: %w", err)
		}
	}

	var workspace models.Workspace
	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, workspaceName(identity)).Scan(&workspace.ID, &workspace.Name, &workspace.CreatedAt, &workspace.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
	`, workspace.ID, user.ID, models.RoleOwner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &user, &workspace, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, external_id, email, name, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.ExternalID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func workspaceName(identity *Identity) string {
	switch {
	case identity.Email != "":
		return identity.Email + "'s Workspace"
	case identity.Name != "":
		return identity.Name + "'s Workspace"
	default:
		return "My Workspace"
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
