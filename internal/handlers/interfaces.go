package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/services"
	"github.com/dimitrije/relayo-api/internal/sse"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// WorkspaceServiceInterface defines the methods used by handlers from WorkspaceService
type WorkspaceServiceInterface interface {
	GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)
	Rename(ctx context.Context, workspaceID uuid.UUID, name string) (*models.Workspace, error)
}

// CustomerServiceInterface defines the methods used by handlers from CustomerService
type CustomerServiceInterface interface {
	List(ctx context.Context, workspaceID uuid.UUID, search string) ([]models.Customer, error)
	GetByID(ctx context.Context, workspaceID, customerID uuid.UUID) (*models.Customer, error)
	Create(ctx context.Context, workspaceID uuid.UUID, in services.CustomerInput) (*models.Customer, error)
}

// ReservationServiceInterface defines the read methods used by handlers from ReservationService
type ReservationServiceInterface interface {
	List(ctx context.Context, workspaceID uuid.UUID, filter models.ReservationFilter) ([]models.Reservation, error)
	ListBetween(ctx context.Context, workspaceID uuid.UUID, from, to time.Time) ([]models.Reservation, error)
}

// BookingServiceInterface defines the methods used by handlers from BookingService
type BookingServiceInterface interface {
	Book(ctx context.Context, workspaceID uuid.UUID, in services.BookingInput) (*models.Reservation, error)
	Update(ctx context.Context, workspaceID, reservationID uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error)
	Delete(ctx context.Context, workspaceID, reservationID uuid.UUID) error
}

// MessageServiceInterface defines the methods used by handlers from MessageService
type MessageServiceInterface interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Message, error)
	ListByCustomer(ctx context.Context, workspaceID, customerID uuid.UUID) ([]models.Message, error)
}

// SMSServiceInterface defines the methods used by handlers from SMSService
type SMSServiceInterface interface {
	Send(ctx context.Context, workspaceID uuid.UUID, out services.OutboundSMS) (*models.Message, error)
	ReceiveInbound(ctx context.Context, in services.InboundSMS) (*models.Message, error)
}

// StatsServiceInterface defines the methods used by handlers from StatsService
type StatsServiceInterface interface {
	Get(ctx context.Context, workspaceID uuid.UUID, now time.Time) (*models.DashboardStats, error)
}

// IntegrationServiceInterface defines the methods used by handlers from IntegrationService
type IntegrationServiceInterface interface {
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Integration, error)
	SaveGoogleToken(ctx context.Context, workspaceID uuid.UUID, token *oauth2.Token) (*models.Integration, error)
	UpdateGoogleConfig(ctx context.Context, workspaceID uuid.UUID, calendarIDs []string, sheetsURL *string) (*models.Integration, error)
	SaveTwilio(ctx context.Context, workspaceID uuid.UUID, accountSID, authToken, fromNumber string) (*models.Integration, error)
}

// ConsentProvider is the OAuth side of the Google connect flow
type ConsentProvider interface {
	GetConsentURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
}

// StateStoreInterface remembers which workspace started a consent flow
type StateStoreInterface interface {
	Issue(workspaceID uuid.UUID) (string, error)
	Consume(state string) (uuid.UUID, bool)
}

// SyncRunner runs one reconciliation pass over every calendar integration
type SyncRunner interface {
	Run(ctx context.Context) (int, error)
}

// HubInterface defines the methods used by handlers from the SSE Hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
	BroadcastMessageReceived(msg *models.Message)
}
