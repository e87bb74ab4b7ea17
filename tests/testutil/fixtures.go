package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateWorkspace creates a bare workspace
func (f *Fixtures) CreateWorkspace(t *testing.T) *models.Workspace {
	t.Helper()
	f.counter++

	ws := &models.Workspace{Name: fmt.Sprintf("Test Workspace %d", f.counter)}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO workspaces (name) VALUES ($1)
		RETURNING id, created_at, updated_at
	`, ws.Name).Scan(&ws.ID, &ws.CreatedAt, &ws.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return ws
}

// CreateCustomer creates a customer in the workspace
func (f *Fixtures) CreateCustomer(t *testing.T, ws *models.Workspace, opts ...CustomerOption) *models.Customer {
	t.Helper()
	f.counter++

	name := fmt.Sprintf("Customer %d", f.counter)
	phone := fmt.Sprintf("+1555010%04d", f.counter)
	c := &models.Customer{
		WorkspaceID: ws.ID,
		Name:        &name,
		Phone:       &phone,
	}

	for _, opt := range opts {
		opt(c)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO customers (workspace_id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, c.WorkspaceID, c.Name, c.Phone, c.Email).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	return c
}

// CustomerOption configures a test customer
type CustomerOption func(*models.Customer)

// WithPhone sets the customer's phone
func WithPhone(phone string) CustomerOption {
	return func(c *models.Customer) {
		c.Phone = &phone
	}
}

// WithEmail sets the customer's email
func WithEmail(email string) CustomerOption {
	return func(c *models.Customer) {
		c.Email = &email
	}
}

// WithoutPhone clears the customer's phone
func WithoutPhone() CustomerOption {
	return func(c *models.Customer) {
		c.Phone = nil
	}
}

// CreateGoogleIntegration creates a Google integration without credentials
func (f *Fixtures) CreateGoogleIntegration(t *testing.T, ws *models.Workspace, calendarIDs []string, sheetsURL *string) *models.Integration {
	t.Helper()

	integ := &models.Integration{
		WorkspaceID: ws.ID,
		Provider:    models.ProviderGoogle,
		CalendarIDs: calendarIDs,
		SheetsURL:   sheetsURL,
	}
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO integrations (workspace_id, provider, calendar_ids, sheets_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, ws.ID, integ.Provider, calendarIDs, sheetsURL).Scan(&integ.ID, &integ.CreatedAt, &integ.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create integration: %v", err)
	}
	return integ
}

// CreateReservation creates a confirmed reservation starting at start
func (f *Fixtures) CreateReservation(t *testing.T, ws *models.Workspace, customer *models.Customer, start time.Time) *models.Reservation {
	t.Helper()
	f.counter++

	r := &models.Reservation{
		WorkspaceID: ws.ID,
		EventID:     fmt.Sprintf("fixture-event-%d", f.counter),
		Service:     "Haircut",
		Status:      models.StatusConfirmed,
		Source:      models.SourceManual,
		Start:       start,
		End:         start.Add(time.Hour),
	}
	if customer != nil {
		r.CustomerID = &customer.ID
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO reservations (workspace_id, customer_id, event_id, service, status, source, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.WorkspaceID, r.CustomerID, r.EventID, r.Service, r.Status, r.Source, r.Start, r.End).Scan(
		&r.ID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create reservation: %v", err)
	}
	return r
}

// CreateMessage appends a message to the workspace log
func (f *Fixtures) CreateMessage(t *testing.T, ws *models.Workspace, customer *models.Customer, direction, body string, at time.Time) *models.Message {
	t.Helper()

	m := &models.Message{
		WorkspaceID: ws.ID,
		Direction:   direction,
		Channel:     models.ChannelSMS,
		Body:        body,
		CreatedAt:   at,
	}
	if customer != nil {
		m.CustomerID = &customer.ID
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO messages (workspace_id, customer_id, direction, channel, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, m.WorkspaceID, m.CustomerID, m.Direction, m.Channel, m.Body, m.CreatedAt).Scan(&m.ID)
	if err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return m
}
