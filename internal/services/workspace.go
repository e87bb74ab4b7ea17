package services

import (
	"context"
	"errors"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

type WorkspaceService struct {
	db *database.DB
}

func NewWorkspaceService(db *database.DB) *WorkspaceService {
	return &WorkspaceService{db: db}
}

func (s *WorkspaceService) GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at
		FROM workspaces WHERE id = $1
	`, workspaceID).Scan(&workspace.ID, &workspace.Name, &workspace.CreatedAt, &workspace.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

func (s *WorkspaceService) Rename(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE workspaces SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, name, created_at, updated_at
	`, name, workspaceID).Scan(&workspace.ID, &workspace.Name, &workspace.CreatedAt, &workspace.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}
