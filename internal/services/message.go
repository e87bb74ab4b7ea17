package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `id, workspace_id, customer_id, direction, channel, body, from_number, to_number,
	provider_message_id, created_at`

const messageJoinedColumns = `m.id, m.workspace_id, m.customer_id, m.direction, m.channel, m.body, m.from_number, m.to_number,
	m.provider_message_id, m.created_at, c.name, c.phone, c.email`

// MessageService is the append-only message log. Messages are never
// updated or deleted.
type MessageService struct {
	db *database.DB
}

func NewMessageService(db *database.DB) *MessageService {
	return &MessageService{db: db}
}

// ListByWorkspace returns every message of the workspace, newest first, with
// the linked customer attached.
func (s *MessageService) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Message, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+messageJoinedColumns+`
		FROM messages m LEFT JOIN customers c ON c.id = m.customer_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// ListByCustomer returns a single customer's thread, oldest first.
func (s *MessageService) ListByCustomer(ctx context.Context, workspaceID, customerID uuid.UUID) ([]models.Message, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+messageJoinedColumns+`
		FROM messages m LEFT JOIN customers c ON c.id = m.customer_id
		WHERE m.workspace_id = $1 AND m.customer_id = $2
		ORDER BY m.created_at ASC
	`, workspaceID, customerID)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

func (s *MessageService) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	channel := m.Channel
	if channel == "" {
		channel = models.ChannelSMS
	}

	var created models.Message
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO messages (workspace_id, customer_id, direction, channel, body, from_number, to_number, provider_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+messageColumns,
		m.WorkspaceID, m.CustomerID, m.Direction, channel, m.Body, m.FromNumber, m.ToNumber, m.ProviderMessageID,
	).Scan(messageFields(&created)...)
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	created.Customer = m.Customer
	return &created, nil
}

func messageFields(m *models.Message) []any {
	return []any{
		&m.ID, &m.WorkspaceID, &m.CustomerID, &m.Direction, &m.Channel, &m.Body, &m.FromNumber, &m.ToNumber,
		&m.ProviderMessageID, &m.CreatedAt,
	}
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		var name, phone, email *string
		if err := rows.Scan(append(messageFields(&m), &name, &phone, &email)...); err != nil {
			return nil, err
		}
		if m.CustomerID != nil {
			m.Customer = &models.Customer{
				ID:          *m.CustomerID,
				WorkspaceID: m.WorkspaceID,
				Name:        name,
				Phone:       phone,
				Email:       email,
			}
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
