package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProviderGoogle = "GOOGLE"
	ProviderTwilio = "TWILIO"
)

// Integration holds one provider's credentials and configuration for a
// workspace. Secrets are plaintext here; the service layer encrypts them at rest.
type Integration struct {
	ID           uuid.UUID  `json:"id"`
	WorkspaceID  uuid.UUID  `json:"workspace_id"`
	Provider     string     `json:"provider"`
	AccessToken  *string    `json:"-"`
	RefreshToken *string    `json:"-"`
	TokenExpiry  *time.Time `json:"-"`
	CalendarIDs  []string   `json:"calendar_ids"`
	SheetsURL    *string    `json:"sheets_url,omitempty"`
	AccountSID   *string    `json:"-"`
	AuthToken    *string    `json:"-"`
	FromNumber   *string    `json:"from_number,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PrimaryCalendarID is the calendar new reservations are written to.
func (i *Integration) PrimaryCalendarID() string {
	if len(i.CalendarIDs) == 0 {
		return "primary"
	}
	return i.CalendarIDs[0]
}

func (i *Integration) HasSheet() bool {
	return i.SheetsURL != nil && *i.SheetsURL != ""
}
