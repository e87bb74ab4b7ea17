package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/dimitrije/relayo-api/internal/middleware"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService      UserServiceInterface
	workspaceService WorkspaceServiceInterface
}

func NewUserHandler(userService UserServiceInterface, workspaceService WorkspaceServiceInterface) *UserHandler {
	return &UserHandler{
		userService:      userService,
		workspaceService: workspaceService,
	}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	workspaceID := middleware.GetWorkspaceID(c)
	if userID == uuid.Nil || workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	workspace, err := h.workspaceService.GetByID(ctx, workspaceID)
	if err != nil {
		c.NotFound("workspace not found")
		return
	}

	_ = c.JSON(200, dto.MeResponse{
		User:      user,
		Workspace: workspace,
	})
}

func (h *UserHandler) RenameWorkspace(c *drift.Context) {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.RenameWorkspaceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.BadRequest("name is required")
		return
	}

	workspace, err := h.workspaceService.Rename(context.Background(), workspaceID, name)
	if err != nil {
		if errors.Is(err, services.ErrWorkspaceNotFound) {
			c.NotFound("workspace not found")
			return
		}
		c.InternalServerError("failed to update workspace")
		return
	}

	_ = c.JSON(200, workspace)
}
