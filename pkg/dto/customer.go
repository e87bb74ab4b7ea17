package dto

type CreateCustomerRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Phone *string `json:"phone" validate:"omitempty,e164"`
	Email *string `json:"email" validate:"omitempty,email"`
}
