package testutil

import (
	"context"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

// StaticProvisioner resolves every identity to the same user and workspace
type StaticProvisioner struct {
	User      *models.User
	Workspace *models.Workspace
}

// NewStaticProvisioner creates a provisioner with fresh ids
func NewStaticProvisioner() *StaticProvisioner {
	return &StaticProvisioner{
		User:      &models.User{ID: uuid.New()},
		Workspace: &models.Workspace{ID: uuid.New(), Name: "Test Workspace"},
	}
}

func (p *StaticProvisioner) Provision(ctx context.Context, identity *services.Identity) (*models.User, *models.Workspace, error) {
	return p.User, p.Workspace, nil
}

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockWorkspaceService mocks the WorkspaceService
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Rename(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error) {
	args := m.Called(ctx, workspaceID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

// MockCustomerService mocks the CustomerService
type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) List(ctx context.Context, workspaceID uuid.UUID, search string) ([]models.Customer, error) {
	args := m.Called(ctx, workspaceID, search)
	customers, _ := args.Get(0).([]models.Customer)
	return customers, args.Error(1)
}

func (m *MockCustomerService) GetByID(ctx context.Context, workspaceID, customerID uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, workspaceID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerService) Create(ctx context.Context, workspaceID uuid.UUID, in services.CustomerInput) (*models.Customer, error) {
	args := m.Called(ctx, workspaceID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

// MockReservationService mocks the read side of ReservationService
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) List(ctx context.Context, workspaceID uuid.UUID, filter models.ReservationFilter) ([]models.Reservation, error) {
	args := m.Called(ctx, workspaceID, filter)
	reservations, _ := args.Get(0).([]models.Reservation)
	return reservations, args.Error(1)
}

func (m *MockReservationService) ListBetween(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]models.Reservation, error) {
	args := m.Called(ctx, workspaceID, from, to)
	reservations, _ := args.Get(0).([]models.Reservation)
	return reservations, args.Error(1)
}

// MockBookingService mocks the BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Book(ctx context.Context, workspaceID uuid.UUID, in services.BookingInput) (*models.Reservation, error) {
	args := m.Called(ctx, workspaceID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockBookingService) Update(ctx context.Context, workspaceID, reservationID uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error) {
	args := m.Called(ctx, workspaceID, reservationID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}

func (m *MockBookingService) Delete(ctx context.Context, workspaceID, reservationID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, reservationID)
	return args.Error(0)
}

// MockMessageService mocks the MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, workspaceID)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

func (m *MockMessageService) ListByCustomer(ctx context.Context, workspaceID, customerID uuid.UUID) ([]models.Message, error) {
	args := m.Called(ctx, workspaceID, customerID)
	messages, _ := args.Get(0).([]models.Message)
	return messages, args.Error(1)
}

// MockSMSService mocks the SMSService
type MockSMSService struct {
	mock.Mock
}

func (m *MockSMSService) Send(ctx context.Context, workspaceID uuid.UUID, out services.OutboundSMS) (*models.Message, error) {
	args := m.Called(ctx, workspaceID, out)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockSMSService) ReceiveInbound(ctx context.Context, in services.InboundSMS) (*models.Message, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// MockStatsService mocks the StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Get(ctx context.Context, workspaceID uuid.UUID, now time.Time) (*models.DashboardStats, error) {
	args := m.Called(ctx, workspaceID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

// MockIntegrationService mocks the IntegrationService
type MockIntegrationService struct {
	mock.Mock
}

func (m *MockIntegrationService) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Integration, error) {
	args := m.Called(ctx, workspaceID)
	integrations, _ := args.Get(0).([]models.Integration)
	return integrations, args.Error(1)
}

func (m *MockIntegrationService) SaveGoogleToken(ctx context.Context, workspaceID uuid.UUID, token *oauth2.Token) (*models.Integration, error) {
	args := m.Called(ctx, workspaceID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

func (m *MockIntegrationService) UpdateGoogleConfig(ctx context.Context, workspaceID uuid.UUID, calendarIDs []string, sheetsURL *string) (*models.Integration, error) {
	args := m.Called(ctx, workspaceID, calendarIDs, sheetsURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

func (m *MockIntegrationService) SaveTwilio(ctx context.Context, workspaceID uuid.UUID, accountSID, authToken, fromNumber string) (*models.Integration, error) {
	args := m.Called(ctx, workspaceID, accountSID, authToken, fromNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Integration), args.Error(1)
}

// MockConsentProvider mocks the Google OAuth provider
type MockConsentProvider struct {
	mock.Mock
}

func (m *MockConsentProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockConsentProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

// MockSyncRunner mocks the sync orchestrator
type MockSyncRunner struct {
	mock.Mock
}

func (m *MockSyncRunner) Run(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockSSEHub mocks the SSE Hub
type MockSSEHub struct {
	mock.Mock
}

func (m *MockSSEHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) Unregister(client *sse.Client) {
	m.Called(client)
}

func (m *MockSSEHub) BroadcastMessageReceived(msg *models.Message) {
	m.Called(msg)
}
