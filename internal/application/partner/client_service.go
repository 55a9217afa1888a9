package partner

import (
	"context"
	"strings"

	"github.com/cultivo/backend/internal/domain/partner"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo partner.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// List returns a page of clients
func (s *ClientService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[partner.Client], error) {
	return shared.ListPage[partner.Client](ctx, s.clientRepo, filter)
}

// GetByID returns a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	return s.clientRepo.FindByID(ctx, id)
}

// Create registers a new client; emails are unique
func (s *ClientService) Create(ctx context.Context, actorID uuid.UUID, req CreateClientRequest) (*partner.Client, error) {
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}
	client, err := partner.NewClient(req.Name, req.Email, req.Phone, req.Address, req.LicenseNumber, partner.ClientType(req.ClientType), actorID)
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*partner.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && !strings.EqualFold(strings.TrimSpace(*req.Email), client.Email) {
		if err := s.ensureEmailFree(ctx, *req.Email); err != nil {
			return nil, err
		}
	}
	var clientType *partner.ClientType
	if req.ClientType != nil {
		v := partner.ClientType(*req.ClientType)
		clientType = &v
	}
	details := partner.ContactDetails{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		LicenseNumber: req.LicenseNumber,
	}
	if err := client.Update(details, clientType); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// Delete deactivates a client; client rows are never removed
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	client.Deactivate()
	return s.clientRepo.Save(ctx, client)
}

func (s *ClientService) ensureEmailFree(ctx context.Context, email string) error {
	exists, err := s.clientRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewAlreadyExistsError("Client with this email already exists")
	}
	return nil
}
