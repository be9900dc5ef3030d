package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// ClientService manages customers. Clients are never deleted; they are set inactive.
type ClientService struct {
	clientRepo *repository.ClientRepository
	activities *ActivityService
	logger     *zap.Logger
}

func NewClientService(clientRepo *repository.ClientRepository, activities *ActivityService, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, activities: activities, logger: logger}
}

func applyClientRequest(c *domain.Client, req *domain.ClientRequest) {
	c.Name = req.Name
	c.Type = req.Type
	c.Status = req.Status
	c.Email = req.Email
	c.Phone = req.Phone
	c.Address = req.Address
	c.City = req.City
	c.TaxID = req.TaxID
	c.Notes = req.Notes
	c.Contacts = make([]domain.ClientContact, len(req.Contacts))
	for i, ct := range req.Contacts {
		c.Contacts[i] = domain.ClientContact{
			Name:     ct.Name,
			Email:    ct.Email,
			Phone:    ct.Phone,
			Position: ct.Position,
		}
	}
}

func (s *ClientService) Create(ctx context.Context, req *domain.ClientRequest) (*domain.ClientDTO, error) {
	client := &domain.Client{}
	applyClientRequest(client, req)
	if err := client.Normalize(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.activities.Record(ctx, domain.ActivityTargetClient, client.ID, "Client created",
		fmt.Sprintf("Client '%s' was created", client.Name))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrClientNotFound, "get client")
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Update replaces all fields of the client including its contact list
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.ClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrClientNotFound, "get client")
	}

	previousStatus := client.Status
	applyClientRequest(client, req)
	if req.Status == "" {
		client.Status = previousStatus
	}
	if err := client.Normalize(); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	if client.Status != previousStatus {
		s.activities.Record(ctx, domain.ActivityTargetClient, client.ID, "Client status changed",
			fmt.Sprintf("Client '%s' is now %s", client.Name, client.Status))
	}

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

func (s *ClientService) List(ctx context.Context, opts repository.ListOptions, filters repository.ClientFilters) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	clients, total, err := s.clientRepo.List(ctx, opts, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}

// Activities returns the client timeline
func (s *ClientService) Activities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
		return nil, notFound(err, ErrClientNotFound, "get client")
	}
	return s.activities.List(ctx, domain.ActivityTargetClient, id)
}
