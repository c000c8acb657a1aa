package dto

type CreateVendorRequest struct {
	Name          string  `json:"name"          validate:"required,min=2,max=120"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"         validate:"omitempty,email"`
	Address       *string `json:"address"`
}

type UpdateVendorRequest struct {
	Name          *string `json:"name"          validate:"omitempty,min=2,max=120"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"         validate:"omitempty,email"`
	Address       *string `json:"address"`
}

type VendorResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContactPerson *string `json:"contactPerson"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
	Active        bool    `json:"active"`
}
