package partner

import (
	"net/mail"
	"strings"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierStatus represents the standing of a supplier
type SupplierStatus string

const (
	SupplierStatusActive    SupplierStatus = "active"
	SupplierStatusInactive  SupplierStatus = "inactive"
	SupplierStatusSuspended SupplierStatus = "suspended"
)

// IsValid checks if the status is known
func (s SupplierStatus) IsValid() bool {
	switch s {
	case SupplierStatusActive, SupplierStatusInactive, SupplierStatusSuspended:
		return true
	}
	return false
}

// Supplier is a vendor that purchase orders are placed with
type Supplier struct {
	shared.BaseEntity
	Name          string         `gorm:"type:varchar(200);not null" json:"name"`
	ContactName   string         `gorm:"type:varchar(200)" json:"contact_name"`
	Email         string         `gorm:"type:varchar(200)" json:"email"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	LicenseNumber string         `gorm:"type:varchar(100)" json:"license_number"`
	Status        SupplierStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedBy     *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// ContactDetails are the editable contact fields shared by suppliers and clients
type ContactDetails struct {
	Name          *string
	ContactName   *string
	Email         *string
	Phone         *string
	Address       *string
	LicenseNumber *string
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return shared.NewInvalidInputError("Invalid email format")
	}
	return nil
}

// NewSupplier creates an active supplier
func NewSupplier(name, contactName, email, phone, address, license string, createdBy uuid.UUID) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidInputError("Supplier name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	s := &Supplier{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		ContactName:   contactName,
		Email:         email,
		Phone:         phone,
		Address:       address,
		LicenseNumber: license,
		Status:        SupplierStatusActive,
	}
	if createdBy != uuid.Nil {
		s.CreatedBy = &createdBy
	}
	return s, nil
}

// Update applies contact changes and an optional status
func (s *Supplier) Update(d ContactDetails, status *SupplierStatus) error {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		if n == "" {
			return shared.NewInvalidInputError("Supplier name cannot be empty")
		}
		s.Name = n
	}
	if d.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*d.Email))
		if err := validateEmail(e); err != nil {
			return err
		}
		s.Email = e
	}
	if d.ContactName != nil {
		s.ContactName = *d.ContactName
	}
	if d.Phone != nil {
		s.Phone = *d.Phone
	}
	if d.Address != nil {
		s.Address = *d.Address
	}
	if d.LicenseNumber != nil {
		s.LicenseNumber = *d.LicenseNumber
	}
	if status != nil {
		if !status.IsValid() {
			return shared.NewInvalidInputError("Invalid supplier status")
		}
		s.Status = *status
	}
	s.Touch()
	return nil
}

// IsActive reports whether orders can be placed with the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}
