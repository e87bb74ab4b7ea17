package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "external_id", "email", "name", "created_at", "updated_at"}

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func TestUserService_Provision_CreatesUserAndWorkspace(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	identity := &Identity{Subject: "ext-1", Email: "owner@example.com", Name: "Ada"}
	userID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()
	email := identity.Email
	name := identity.Name

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users .+ ON CONFLICT \(external_id\) DO NOTHING`).
		WithArgs(identity.Subject, &email, &name).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userID, identity.Subject, &email, &name, now, now))
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs("owner@example.com's Workspace").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(workspaceID, "owner@example.com's Workspace", now, now))
	mock.ExpectExec(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, userID, "owner").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	user, workspace, err := svc.Provision(ctx, identity)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, workspaceID, workspace.ID)
	assert.Equal(t, "owner@example.com's Workspace", workspace.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Provision_ExistingUserReturnsWorkspace(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	identity := &Identity{Subject: "ext-2"}
	userID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(identity.Subject, (*string)(nil), (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE external_id`).
		WithArgs(identity.Subject).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userID, identity.Subject, nil, nil, now, now))
	mock.ExpectQuery(`SELECT .+ FROM workspaces w\s+JOIN workspace_members`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(workspaceID, "Existing", now, now))
	mock.ExpectCommit()

	user, workspace, err := svc.Provision(ctx, identity)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, workspaceID, workspace.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Provision_ExistingUserWithoutWorkspace(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	identity := &Identity{Subject: "ext-3", Name: "Grace"}
	name := identity.Name
	userID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(identity.Subject, (*string)(nil), &name).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE external_id`).
		WithArgs(identity.Subject).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userID, identity.Subject, nil, &name, now, now))
	mock.ExpectQuery(`SELECT .+ FROM workspaces w`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs("Grace's Workspace").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(workspaceID, "Grace's Workspace", now, now))
	mock.ExpectExec(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, userID, "owner").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, workspace, err := svc.Provision(ctx, identity)

	require.NoError(t, err)
	assert.Equal(t, workspaceID, workspace.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Provision_MembershipConflictRollsBack(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	identity := &Identity{Subject: "ext-4"}
	userID := uuid.New()
	workspaceID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(identity.Subject, (*string)(nil), (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userID, identity.Subject, nil, nil, now, now))
	mock.ExpectQuery(`INSERT INTO workspaces`).
		WithArgs("My Workspace").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "created_at", "updated_at"}).
			AddRow(workspaceID, "My Workspace", now, now))
	mock.ExpectExec(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, userID, "owner").
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectRollback()

	_, _, err := svc.Provision(ctx, identity)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add owner membership")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()
	email := "test@example.com"

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow(userID, "ext", &email, nil, now, now))

	user, err := svc.GetByID(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, email, *user.Email)
	assert.Nil(t, user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(context.Background(), userID)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
