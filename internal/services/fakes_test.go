package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/crypto"
	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

type fakeSMS struct {
	calls  []string
	result *providers.SendResult
	err    error
}

func (f *fakeSMS) Send(_ context.Context, _ *models.Integration, to, body string) (*providers.SendResult, error) {
	f.calls = append(f.calls, to+": "+body)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCalendar struct {
	created []providers.NewEvent
	updated []providers.EventPatch
	deleted []string

	createErr error
	updateErr error
	deleteErr error
}

func (f *fakeCalendar) ListEvents(context.Context, *models.Integration, []string, time.Time, time.Time) ([]providers.Event, error) {
	return nil, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, _ *models.Integration, ev providers.NewEvent) (*providers.Event, error) {
	f.created = append(f.created, ev)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &providers.Event{ID: "evt-1", CalendarID: ev.CalendarID, Summary: ev.Summary, Start: ev.Start, End: ev.End}, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, _ *models.Integration, _, eventID string, patch providers.EventPatch) (*providers.Event, error) {
	f.updated = append(f.updated, patch)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &providers.Event{ID: eventID}, nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, _ *models.Integration, _, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

type fakeSheets struct {
	upserts map[string][]any
	err     error
}

func (f *fakeSheets) AppendRow(context.Context, *models.Integration, string, string, []any) error {
	return f.err
}

func (f *fakeSheets) UpsertRowByKey(_ context.Context, _ *models.Integration, _, _, key string, values []any) error {
	if f.err != nil {
		return f.err
	}
	if f.upserts == nil {
		f.upserts = map[string][]any{}
	}
	f.upserts[key] = values
	return nil
}

// storeSet wires every store service onto one mocked pool.
type storeSet struct {
	mock         pgxmock.PgxPoolIface
	cipher       *crypto.Cipher
	integrations *IntegrationService
	customers    *CustomerService
	messages     *MessageService
	reservations *ReservationService
	workspaces   *WorkspaceService
}

func setupStores(t *testing.T) *storeSet {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	cipher, err := crypto.NewCipher("test-encryption-key")
	require.NoError(t, err)

	db := &database.DB{Pool: mock}
	return &storeSet{
		mock:         mock,
		cipher:       cipher,
		integrations: NewIntegrationService(db, cipher),
		customers:    NewCustomerService(db),
		messages:     NewMessageService(db),
		reservations: NewReservationService(db),
		workspaces:   NewWorkspaceService(db),
	}
}

func (s *storeSet) twilioRow(t *testing.T, workspaceID uuid.UUID, from string) []any {
	now := time.Now()
	return []any{
		uuid.New(), workspaceID, models.ProviderTwilio, nil, nil, nil,
		[]string{}, nil, strPtr("AC123"), seal(t, s.cipher, "twilio-secret"), &from, now, now,
	}
}

func (s *storeSet) googleRow(t *testing.T, integrationID, workspaceID uuid.UUID, sheetsURL *string) []any {
	now := time.Now()
	expiry := now.Add(time.Hour)
	return []any{
		integrationID, workspaceID, models.ProviderGoogle, seal(t, s.cipher, "access"), seal(t, s.cipher, "refresh"), &expiry,
		[]string{"primary"}, sheetsURL, nil, nil, nil, now, now,
	}
}

func customerRow(id, workspaceID uuid.UUID, name, phone, email *string) []any {
	now := time.Now()
	return []any{id, workspaceID, name, phone, email, now, now}
}
