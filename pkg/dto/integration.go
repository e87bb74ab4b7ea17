package dto

import "github.com/google/uuid"

type IntegrationResponse struct {
	ID          uuid.UUID `json:"id"`
	Provider    string    `json:"provider"`
	CalendarIDs []string  `json:"calendar_ids"`
	SheetsURL   *string   `json:"sheets_url"`
	FromNumber  *string   `json:"from_number"`
}

type UpdateGoogleRequest struct {
	CalendarIDs []string `json:"calendar_ids" validate:"omitempty,dive,required"`
	SheetsURL   *string  `json:"sheets_url" validate:"omitempty,url"`
}

type SaveTwilioRequest struct {
	AccountSID string `json:"account_sid" validate:"required"`
	AuthToken  string `json:"auth_token" validate:"required"`
	FromNumber string `json:"from_number" validate:"required,e164"`
}

type SyncResponse struct {
	Success bool `json:"success"`
	Synced  int  `json:"synced"`
}
