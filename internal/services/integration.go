package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/relayo-api/internal/crypto"
	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/oauth2"
)

var ErrIntegrationNotFound = errors.New("integration not found")

const integrationColumns = `id, workspace_id, provider, access_token, refresh_token, token_expiry,
	calendar_ids, sheets_url, account_sid, auth_token, from_number, created_at, updated_at`

// IntegrationService stores provider credentials. Tokens and auth secrets are
// sealed with the cipher before they reach the table.
type IntegrationService struct {
	db     *database.DB
	cipher *crypto.Cipher
}

func NewIntegrationService(db *database.DB, cipher *crypto.Cipher) *IntegrationService {
	return &IntegrationService{db: db, cipher: cipher}
}

func (s *IntegrationService) GetByWorkspaceAndProvider(ctx context.Context, workspaceID uuid.UUID, provider string) (*models.Integration, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+integrationColumns+`
		FROM integrations WHERE workspace_id = $1 AND provider = $2
	`, workspaceID, provider)
	return s.scan(row)
}

func (s *IntegrationService) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Integration, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+integrationColumns+`
		FROM integrations WHERE workspace_id = $1
		ORDER BY provider
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// ListCalendarIntegrations returns every Google integration, across all
// workspaces, that has at least one calendar configured.
func (s *IntegrationService) ListCalendarIntegrations(ctx context.Context) ([]models.Integration, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+integrationColumns+`
		FROM integrations
		WHERE provider = $1 AND cardinality(calendar_ids) > 0
		ORDER BY created_at
	`, models.ProviderGoogle)
	if err != nil {
		return nil, err
	}
	return s.collect(rows)
}

// FindTwilioByNumber resolves the workspace that owns an SMS sender number.
func (s *IntegrationService) FindTwilioByNumber(ctx context.Context, number string) (*models.Integration, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+integrationColumns+`
		FROM integrations WHERE provider = $1 AND from_number = $2
		LIMIT 1
	`, models.ProviderTwilio, number)
	return s.scan(row)
}

// SaveGoogleToken upserts the workspace's Google integration. A token without
// a refresh token keeps the stored one.
func (s *IntegrationService) SaveGoogleToken(ctx context.Context, workspaceID uuid.UUID, token *oauth2.Token) (*models.Integration, error) {
	access, refresh, err := s.sealToken(token)
	if err != nil {
		return nil, err
	}

	row := s.db.Pool.QueryRow(ctx, `
		INSERT INTO integrations (workspace_id, provider, access_token, refresh_token, token_expiry)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, integrations.refresh_token),
			token_expiry = EXCLUDED.token_expiry,
			updated_at = NOW()
		RETURNING `+integrationColumns,
		workspaceID, models.ProviderGoogle, access, refresh, nullableTime(token.Expiry))
	return s.scan(row)
}

// UpdateToken persists a refreshed token for an existing integration.
func (s *IntegrationService) UpdateToken(ctx context.Context, integrationID uuid.UUID, token *oauth2.Token) error {
	access, refresh, err := s.sealToken(token)
	if err != nil {
		return err
	}

	result, err := s.db.Pool.Exec(ctx, `
		UPDATE integrations SET
			access_token = $1,
			refresh_token = COALESCE($2, refresh_token),
			token_expiry = $3,
			updated_at = NOW()
		WHERE id = $4
	`, access, refresh, nullableTime(token.Expiry), integrationID)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrIntegrationNotFound
	}
	return nil
}

func (s *IntegrationService) UpdateGoogleConfig(ctx context.Context, workspaceID uuid.UUID, calendarIDs []string, sheetsURL *string) (*models.Integration, error) {
	if calendarIDs == nil {
		calendarIDs = []string{}
	}
	row := s.db.Pool.QueryRow(ctx, `
		UPDATE integrations SET calendar_ids = $1, sheets_url = $2, updated_at = NOW()
		WHERE workspace_id = $3 AND provider = $4
		RETURNING `+integrationColumns,
		calendarIDs, sheetsURL, workspaceID, models.ProviderGoogle)
	return s.scan(row)
}

func (s *IntegrationService) SaveTwilio(ctx context.Context, workspaceID uuid.UUID, accountSID, authToken, fromNumber string) (*models.Integration, error) {
	sealed, err := s.cipher.Encrypt(authToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt auth token: %w", err)
	}

	row := s.db.Pool.QueryRow(ctx, `
		INSERT INTO integrations (workspace_id, provider, account_sid, auth_token, from_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, provider) DO UPDATE SET
			account_sid = EXCLUDED.account_sid,
			auth_token = EXCLUDED.auth_token,
			from_number = EXCLUDED.from_number,
			updated_at = NOW()
		RETURNING `+integrationColumns,
		workspaceID, models.ProviderTwilio, accountSID, sealed, fromNumber)
	return s.scan(row)
}

func (s *IntegrationService) sealToken(token *oauth2.Token) (*string, *string, error) {
	access, err := s.cipher.EncryptOptional(nullableString(token.AccessToken))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refresh, err := s.cipher.EncryptOptional(nullableString(token.RefreshToken))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}
	return access, refresh, nil
}

func (s *IntegrationService) scan(row pgx.Row) (*models.Integration, error) {
	var i models.Integration
	err := row.Scan(
		&i.ID, &i.WorkspaceID, &i.Provider, &i.AccessToken, &i.RefreshToken, &i.TokenExpiry,
		&i.CalendarIDs, &i.SheetsURL, &i.AccountSID, &i.AuthToken, &i.FromNumber, &i.CreatedAt, &i.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrIntegrationNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.open(&i); err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *IntegrationService) collect(rows pgx.Rows) ([]models.Integration, error) {
	defer rows.Close()

	var integrations []models.Integration
	for rows.Next() {
		i, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		integrations = append(integrations, *i)
	}
	return integrations, rows.Err()
}

func (s *IntegrationService) open(i *models.Integration) error {
	var err error
	if i.AccessToken, err = s.cipher.DecryptOptional(i.AccessToken); err != nil {
		return fmt.Errorf("failed to decrypt access token: %w", err)
	}
	if i.RefreshToken, err = s.cipher.DecryptOptional(i.RefreshToken); err != nil {
		return fmt.Errorf("failed to decrypt refresh token: %w", err)
	}
	if i.AuthToken, err = s.cipher.DecryptOptional(i.AuthToken); err != nil {
		return fmt.Errorf("failed to decrypt auth token: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
