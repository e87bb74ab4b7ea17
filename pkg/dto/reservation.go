package dto

import "time"

type CreateReservationRequest struct {
	CustomerName  string     `json:"customer_name" validate:"required,max=200"`
	CustomerPhone *string    `json:"customer_phone" validate:"omitempty,e164"`
	CustomerEmail *string    `json:"customer_email" validate:"omitempty,email"`
	Service       string     `json:"service" validate:"required,max=200"`
	Staff         *string    `json:"staff" validate:"omitempty,max=200"`
	Start         *time.Time `json:"start" validate:"required"`
	End           *time.Time `json:"end" validate:"required"`
	Notes         *string    `json:"notes"`
	NotifyBy      string     `json:"notify_by" validate:"omitempty,oneof=SMS EMAIL NONE"`
	CalendarID    string     `json:"calendar_id"`
}

type UpdateReservationRequest struct {
	Status   *string    `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed no-show"`
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	Notes    *string    `json:"notes"`
	NotifyBy string     `json:"notify_by" validate:"omitempty,oneof=SMS EMAIL NONE"`
}
