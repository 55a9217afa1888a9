package partner

import "github.com/cultivo/backend/internal/domain/partner"

// CreateSupplierRequest registers a supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	ContactName   string `json:"contact_name" binding:"max=200"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone" binding:"max=50"`
	Address       string `json:"address"`
	LicenseNumber string `json:"license_number" binding:"max=100"`
}

// UpdateSupplierRequest is a partial supplier update
type UpdateSupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactName   *string `json:"contact_name" binding:"omitempty,max=200"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Address       *string `json:"address"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=100"`
	Status        *string `json:"status" binding:"omitempty,oneof=active inactive suspended"`
}

func (r UpdateSupplierRequest) details() partner.ContactDetails {
	return partner.ContactDetails{
		Name:          r.Name,
		ContactName:   r.ContactName,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
		LicenseNumber: r.LicenseNumber,
	}
}

// CreateClientRequest registers a client
type CreateClientRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Email         string `json:"email" binding:"required,email"`
	Phone         string `json:"phone" binding:"max=50"`
	Address       string `json:"address"`
	LicenseNumber string `json:"license_number" binding:"max=100"`
	ClientType    string `json:"client_type" binding:"omitempty,oneof=dispensary processor distributor other"`
}

// UpdateClientRequest is a partial client update
type UpdateClientRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Address       *string `json:"address"`
	LicenseNumber *string `json:"license_number" binding:"omitempty,max=100"`
	ClientType    *string `json:"client_type" binding:"omitempty,oneof=dispensary processor distributor other"`
}
