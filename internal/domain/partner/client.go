package partner

import (
	"strings"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientType classifies a client
type ClientType string

const (
	ClientTypeDispensary  ClientType = "dispensary"
	ClientTypeProcessor   ClientType = "processor"
	ClientTypeDistributor ClientType = "distributor"
	ClientTypeOther       ClientType = "other"
)

// IsValid checks if the client type is known
func (t ClientType) IsValid() bool {
	switch t {
	case ClientTypeDispensary, ClientTypeProcessor, ClientTypeDistributor, ClientTypeOther:
		return true
	}
	return false
}

// ClientStatus represents whether a client can receive dispatches
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client is a licensed customer that dispatches are sent to
type Client struct {
	shared.BaseEntity
	Name          string       `gorm:"type:varchar(200);not null" json:"name"`
	Email         string       `gorm:"type:varchar(200);not null;uniqueIndex" json:"email"`
	Phone         string       `gorm:"type:varchar(50)" json:"phone"`
	Address       string       `gorm:"type:text" json:"address"`
	LicenseNumber string       `gorm:"type:varchar(100)" json:"license_number"`
	ClientType    ClientType   `gorm:"type:varchar(20);not null;default:'other';index" json:"client_type"`
	Status        ClientStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedBy     *uuid.UUID   `gorm:"type:uuid" json:"created_by"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates an active client
func NewClient(name, email, phone, address, license string, clientType ClientType, createdBy uuid.UUID) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidInputError("Client name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, shared.NewInvalidInputError("Client email is required")
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if clientType == "" {
		clientType = ClientTypeOther
	}
	if !clientType.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid client type")
	}
	c := &Client{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Email:         email,
		Phone:         phone,
		Address:       address,
		LicenseNumber: license,
		ClientType:    clientType,
		Status:        ClientStatusActive,
	}
	if createdBy != uuid.Nil {
		c.CreatedBy = &createdBy
	}
	return c, nil
}

// Update applies contact changes and an optional client type
func (c *Client) Update(d ContactDetails, clientType *ClientType) error {
	if d.Name != nil {
		n := strings.TrimSpace(*d.Name)
		if n == "" {
			return shared.NewInvalidInputError("Client name cannot be empty")
		}
		c.Name = n
	}
	if d.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*d.Email))
		if e == "" {
			return shared.NewInvalidInputError("Client email is required")
		}
		if err := validateEmail(e); err != nil {
			return err
		}
		c.Email = e
	}
	if d.Phone != nil {
		c.Phone = *d.Phone
	}
	if d.Address != nil {
		c.Address = *d.Address
	}
	if d.LicenseNumber != nil {
		c.LicenseNumber = *d.LicenseNumber
	}
	if clientType != nil {
		if !clientType.IsValid() {
			return shared.NewInvalidInputError("Invalid client type")
		}
		c.ClientType = *clientType
	}
	c.Touch()
	return nil
}

// Deactivate soft-deletes the client
func (c *Client) Deactivate() {
	c.Status = ClientStatusInactive
	c.Touch()
}
