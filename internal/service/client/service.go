// Package client manages care recipients and the organizations that own them.
// Clients are never deleted; ending service is a status transition.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/careops-api/internal/model"
	"github.com/careloop/careops-api/internal/repository"
	apperrors "github.com/careloop/careops-api/pkg/errors"
	"github.com/careloop/careops-api/pkg/event"
)

type ClientService interface {
	CreateCareOrg(ctx context.Context, req *model.CreateCareOrgRequest) (*model.CareOrg, error)
	GetCareOrg(ctx context.Context, id uuid.UUID) (*model.CareOrg, error)
	ListCareOrgs(ctx context.Context) ([]*model.CareOrg, error)

	CreateClient(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error)
	UpdateClientStatus(ctx context.Context, id uuid.UUID, status model.ClientStatus) error
}

type Service struct {
	orgs     repository.CareOrgRepository
	clients  repository.ClientRepository
	notifier event.Notifier
}

func NewService(orgs repository.CareOrgRepository, clients repository.ClientRepository, notifier event.Notifier) *Service {
	return &Service{orgs: orgs, clients: clients, notifier: notifier}
}

func (s *Service) CreateCareOrg(ctx context.Context, req *model.CreateCareOrgRequest) (*model.CareOrg, error) {
	now := time.Now()
	org := &model.CareOrg{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Region:       req.Region,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create care org: %w", err)
	}
	s.notify("care_org", "create", org.ID, uuid.Nil)
	return org, nil
}

func (s *Service) GetCareOrg(ctx context.Context, id uuid.UUID) (*model.CareOrg, error) {
	return s.orgs.Get(ctx, id)
}

func (s *Service) ListCareOrgs(ctx context.Context) ([]*model.CareOrg, error) {
	return s.orgs.List(ctx)
}

func (s *Service) CreateClient(ctx context.Context, req *model.CreateClientRequest) (*model.Client, error) {
	orgID, err := uuid.Parse(req.CareOrgID)
	if err != nil {
		return nil, apperrors.Validation("invalid care org id", err)
	}
	if _, err := s.orgs.Get(ctx, orgID); err != nil {
		return nil, fmt.Errorf("failed to resolve care org: %w", err)
	}

	now := time.Now()
	client := &model.Client{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CareOrgID:         orgID,
		Name:              req.Name,
		DateOfBirth:       req.DateOfBirth,
		Status:            model.ClientStatusActive,
		RiskLevel:         model.RiskLevelLow,
		Address:           req.Address,
		Phone:             req.Phone,
		Email:             req.Email,
		EmergencyContacts: req.EmergencyContacts,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	s.notify("client", "create", client.ID, client.ID)
	return client, nil
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.clients.Get(ctx, id)
}

func (s *Service) ListClients(ctx context.Context, filters *model.ClientFilters) ([]*model.Client, error) {
	return s.clients.List(ctx, filters)
}

// UpdateClientStatus applies the client state machine; ENDED and DECEASED are
// terminal and unreachable statuses are rejected.
func (s *Service) UpdateClientStatus(ctx context.Context, id uuid.UUID, status model.ClientStatus) error {
	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get client: %w", err)
	}
	if client.Status == status {
		return nil
	}
	if !model.ValidClientTransition(client.Status, status) {
		return apperrors.InvalidTransition(fmt.Sprintf("client cannot move from %s to %s", client.Status, status))
	}

	client.Status = status
	client.UpdatedAt = time.Now()
	if err := s.clients.Update(ctx, client); err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	s.notify("client", "status_change", client.ID, client.ID)
	return nil
}

func (s *Service) notify(resource, operation string, entityID, clientID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(event.Change{
		Resource:  resource,
		Operation: operation,
		EntityID:  entityID,
		ClientID:  clientID,
	})
}
