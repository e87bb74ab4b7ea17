package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReservationExists   = errors.New("reservation for this event already exists")
)

const reservationColumns = `id, workspace_id, integration_id, customer_id, event_id, calendar_id, title,
	service, staff, notes, status, source, start_time, end_time, created_at, updated_at`

const reservationJoinedColumns = `r.id, r.workspace_id, r.integration_id, r.customer_id, r.event_id, r.calendar_id, r.title,
	r.service, r.staff, r.notes, r.status, r.source, r.start_time, r.end_time, r.created_at, r.updated_at,
	c.name, c.phone, c.email`

const reservationFromJoined = `FROM reservations r LEFT JOIN customers c ON c.id = r.customer_id`

type ReservationService struct {
	db *database.DB
}

func NewReservationService(db *database.DB) *ReservationService {
	return &ReservationService{db: db}
}

// List returns the workspace's reservations with their customer, latest
// start first. Search matches the title and the customer's name or phone.
func (s *ReservationService) List(ctx context.Context, workspaceID uuid.UUID, filter models.ReservationFilter) ([]models.Reservation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+reservationJoinedColumns+`
		`+reservationFromJoined+`
		WHERE r.workspace_id = $1
			AND ($2 = '' OR r.status = $2)
			AND ($3 = '' OR r.source = $3)
			AND ($4 = '' OR r.title ILIKE '%' || $4 || '%' OR c.name ILIKE '%' || $4 || '%' OR c.phone ILIKE '%' || $4 || '%')
		ORDER BY r.start_time DESC
	`, workspaceID, filter.Status, filter.Source, filter.Search)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

// ListBetween returns reservations starting inside [from, to), earliest first.
func (s *ReservationService) ListBetween(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+reservationJoinedColumns+`
		`+reservationFromJoined+`
		WHERE r.workspace_id = $1 AND r.start_time >= $2 AND r.start_time < $3
		ORDER BY r.start_time ASC
	`, workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (s *ReservationService) GetByID(ctx context.Context, workspaceID, reservationID uuid.UUID) (*models.Reservation, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+reservationJoinedColumns+`
		`+reservationFromJoined+`
		WHERE r.id = $1 AND r.workspace_id = $2
	`, reservationID, workspaceID)
	return scanJoinedReservation(row)
}

// GetByEventID looks a reservation up by its calendar event id. Event ids are
// unique across workspaces, so no workspace scope applies.
func (s *ReservationService) GetByEventID(ctx context.Context, eventID string) (*models.Reservation, error) {
	row := s.db.Pool.QueryRow(ctx, `
		SELECT `+reservationJoinedColumns+`
		`+reservationFromJoined+`
		WHERE r.event_id = $1
	`, eventID)
	return scanJoinedReservation(row)
}

func (s *ReservationService) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	row := s.db.Pool.QueryRow(ctx, `
		INSERT INTO reservations (workspace_id, integration_id, customer_id, event_id, calendar_id, title,
			service, staff, notes, status, source, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+reservationColumns,
		r.WorkspaceID, r.IntegrationID, r.CustomerID, r.EventID, r.CalendarID, r.Title,
		r.Service, r.Staff, r.Notes, r.Status, r.Source, r.Start, r.End)

	created, err := scanReservation(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrReservationExists
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return created, nil
}

// UpdateFromEvent overwrites the calendar-owned fields of a reservation.
func (s *ReservationService) UpdateFromEvent(ctx context.Context, reservationID uuid.UUID, u models.EventUpdate) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE reservations SET title = $1, start_time = $2, end_time = $3, status = $4, updated_at = NOW()
		WHERE id = $5
	`, u.Title, u.Start, u.End, u.Status, reservationID)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (s *ReservationService) Update(ctx context.Context, workspaceID, reservationID uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error) {
	row := s.db.Pool.QueryRow(ctx, `
		UPDATE reservations SET
			status = COALESCE($1, status),
			start_time = COALESCE($2, start_time),
			end_time = COALESCE($3, end_time),
			notes = COALESCE($4, notes),
			updated_at = NOW()
		WHERE id = $5 AND workspace_id = $6
		RETURNING `+reservationColumns,
		patch.Status, patch.Start, patch.End, patch.Notes, reservationID, workspaceID)
	return scanReservation(row)
}

func (s *ReservationService) Delete(ctx context.Context, workspaceID, reservationID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM reservations WHERE id = $1 AND workspace_id = $2
	`, reservationID, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// ListDueReminders returns confirmed reservations across all workspaces that
// start in [from, to) and have not been reminded of yet.
func (s *ReservationService) ListDueReminders(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+reservationJoinedColumns+`
		`+reservationFromJoined+`
		WHERE r.status = $1 AND r.reminded_at IS NULL AND r.start_time >= $2 AND r.start_time < $3
		ORDER BY r.start_time ASC
	`, models.StatusConfirmed, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return collectReservations(rows)
}

func (s *ReservationService) MarkReminded(ctx context.Context, reservationID uuid.UUID, at time.Time) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE reservations SET reminded_at = $1 WHERE id = $2
	`, at, reservationID)
	if err != nil {
		return fmt.Errorf("failed to mark reservation reminded: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func reservationFields(r *models.Reservation) []any {
	return []any{
		&r.ID, &r.WorkspaceID, &r.IntegrationID, &r.CustomerID, &r.EventID, &r.CalendarID, &r.Title,
		&r.Service, &r.Staff, &r.Notes, &r.Status, &r.Source, &r.Start, &r.End, &r.CreatedAt, &r.UpdatedAt,
	}
}

func scanReservation(row pgx.Row) (*models.Reservation, error) {
	var r models.Reservation
	err := row.Scan(reservationFields(&r)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanJoinedReservation(row pgx.Row) (*models.Reservation, error) {
	var r models.Reservation
	var name, phone, email *string
	err := row.Scan(append(reservationFields(&r), &name, &phone, &email)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	if r.CustomerID != nil {
		r.Customer = &models.Customer{
			ID:          *r.CustomerID,
			WorkspaceID: r.WorkspaceID,
			Name:        name,
			Phone:       phone,
			Email:       email,
		}
	}
	return &r, nil
}

func collectReservations(rows pgx.Rows) ([]models.Reservation, error) {
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		r, err := scanJoinedReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}
