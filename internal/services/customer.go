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

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrCustomerExists   = errors.New("customer with this phone or email already exists")
)

const customerColumns = `id, workspace_id, name, phone, email, created_at, updated_at`

type CustomerInput struct {
	Name  *string
	Phone *string
	Email *string
}

type CustomerService struct {
	db *database.DB
}

func NewCustomerService(db *database.DB) *CustomerService {
	return &CustomerService{db: db}
}

// List returns the workspace's customers, newest first. A non-empty search
// matches name, phone or email case-insensitively.
func (s *CustomerService) List(ctx context.Context, workspaceID uuid.UUID, search string) ([]models.Customer, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE workspace_id = $1
			AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%' OR email ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
	`, workspaceID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *CustomerService) GetByID(ctx context.Context, workspaceID, customerID uuid.UUID) (*models.Customer, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers WHERE id = $1 AND workspace_id = $2
	`, customerID, workspaceID)
	return scanCustomer(row)
}

// FindByPhoneOrEmail matches on either field; the oldest match wins.
func (s *CustomerService) FindByPhoneOrEmail(ctx context.Context, workspaceID uuid.UUID, phone, email *string) (*models.Customer, error) {
	if phone == nil && email == nil {
		return nil, ErrCustomerNotFound
	}
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+customerColumns+`
		FROM customers
		WHERE workspace_id = $1 AND (phone = $2 OR email = $3)
		ORDER BY created_at ASC
		LIMIT 1
	`, workspaceID, phone, email)
	return scanCustomer(row)
}

// Create rejects the input with ErrCustomerExists when a customer with the
// same phone or email is already on file.
func (s *CustomerService) Create(ctx context.Context, workspaceID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	_, err := s.FindByPhoneOrEmail(ctx, workspaceID, in.Phone, in.Email)
	if err == nil {
		return nil, ErrCustomerExists
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate customer: %w", err)
	}
	return s.insert(ctx, workspaceID, in)
}

// FindOrCreate returns the existing customer matching phone or email, or
// creates one from the input.
func (s *CustomerService) FindOrCreate(ctx context.Context, workspaceID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	existing, err := s.FindByPhoneOrEmail(ctx, workspaceID, in.Phone, in.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}
	return s.insert(ctx, workspaceID, in)
}

func (s *CustomerService) insert(ctx context.Context, workspaceID uuid.UUID, in CustomerInput) (*models.Customer, error) {
	row := s.db.Pool.QueryRow(ctx, `
		INSERT INTO customers (workspace_id, name, phone, email)
		VALUES ($1, $2, $3, $4)
		RETURNING `+customerColumns,
		workspaceID, in.Name, in.Phone, in.Email)
	c, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.WorkspaceID, &c.Name, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
