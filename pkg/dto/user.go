package dto

import "github.com/dimitrije/relayo-api/internal/models"

type MeResponse struct {
	User      *models.User      `json:"user"`
	Workspace *models.Workspace `json:"workspace"`
}

type RenameWorkspaceRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
