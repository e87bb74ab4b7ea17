package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
	StatusNoShow    = "no-show"
)

const (
	SourceWeb          = "WEB"
	SourceCalendarSync = "CALENDAR_SYNC"
	SourceManual       = "MANUAL"
	SourcePhone        = "PHONE"
	SourceSMS          = "SMS"
)

type Reservation struct {
	ID            uuid.UUID  `json:"id"`
	WorkspaceID   uuid.UUID  `json:"workspace_id"`
	IntegrationID *uuid.UUID `json:"integration_id,omitempty"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	EventID       string     `json:"event_id"`
	CalendarID    *string    `json:"calendar_id,omitempty"`
	Title         *string    `json:"title,omitempty"`
	Service       string     `json:"service"`
	Staff         *string    `json:"staff,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Customer *Customer `json:"customer,omitempty"`
}

// ReservationFilter narrows a workspace's reservation listing. Empty fields
// are ignored.
type ReservationFilter struct {
	Status string
	Source string
	Search string
}

// ReservationPatch carries the manually editable fields. Nil means unchanged.
type ReservationPatch struct {
	Status *string
	Start  *time.Time
	End    *time.Time
	Notes  *string
	// NotifyBy requests a cancellation or reschedule notice once the edit is
	// saved. It is not stored.
	NotifyBy string
}

// EventUpdate is what a calendar sync writes onto an existing reservation.
type EventUpdate struct {
	Title  string
	Start  time.Time
	End    time.Time
	Status string
}
