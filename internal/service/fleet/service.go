// Package fleet covers the peripheral custody and scheduling records the
// dashboards consume: physical devices, field jobs and operational exceptions.
// These are plain records with status filtering; cross-entity behaviour (like
// exception resolution on case approval) lives in the lifecycle service.
package fleet

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

type FleetService interface {
	CreateDevice(ctx context.Context, req *model.CreateDeviceRequest) (*model.Device, error)
	AssignDevice(ctx context.Context, deviceID, clientID uuid.UUID) error
	UpdateDeviceStatus(ctx context.Context, deviceID uuid.UUID, status model.DeviceStatus) error
	ListDevices(ctx context.Context, filters *model.DeviceFilters) ([]*model.Device, error)

	CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) error
	ListJobs(ctx context.Context, filters *model.JobFilters) ([]*model.Job, error)

	RaiseException(ctx context.Context, req *model.CreateExceptionRequest) (*model.ExceptionRecord, error)
	ListExceptions(ctx context.Context, filters *model.ExceptionFilters) ([]*model.ExceptionRecord, error)
}

type Service struct {
	devices    repository.DeviceRepository
	jobs       repository.JobRepository
	exceptions repository.ExceptionRepository
	cases      repository.CaseRepository
	notifier   event.Notifier
}

func NewService(
	devices repository.DeviceRepository,
	jobs repository.JobRepository,
	exceptions repository.ExceptionRepository,
	cases repository.CaseRepository,
	notifier event.Notifier,
) *Service {
	return &Service{
		devices:    devices,
		jobs:       jobs,
		exceptions: exceptions,
		cases:      cases,
		notifier:   notifier,
	}
}

func (s *Service) CreateDevice(ctx context.Context, req *model.CreateDeviceRequest) (*model.Device, error) {
	orgID, err := uuid.Parse(req.CareOrgID)
	if err != nil {
		return nil, apperrors.Validation("invalid care org id", err)
	}

	now := time.Now()
	device := &model.Device{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CareOrgID:    orgID,
		SerialNumber: req.SerialNumber,
		ProductName:  req.ProductName,
		Status:       model.DeviceStatusInStock,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}
	s.notify("device", "create", device.ID)
	return device, nil
}

func (s *Service) AssignDevice(ctx context.Context, deviceID, clientID uuid.UUID) error {
	device, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	device.ClientID = &clientID
	device.Status = model.DeviceStatusReserved
	device.UpdatedAt = time.Now()
	if err := s.devices.Update(ctx, device); err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	s.notify("device", "assign", device.ID)
	return nil
}

func (s *Service) UpdateDeviceStatus(ctx context.Context, deviceID uuid.UUID, status model.DeviceStatus) error {
	device, err := s.devices.Get(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	device.Status = status
	device.UpdatedAt = time.Now()
	if err := s.devices.Update(ctx, device); err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	s.notify("device", "status_change", device.ID)
	return nil
}

func (s *Service) ListDevices(ctx context.Context, filters *model.DeviceFilters) ([]*model.Device, error) {
	return s.devices.List(ctx, filters)
}

func (s *Service) CreateJob(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperrors.Validation("invalid client id", err)
	}
	var caseID *uuid.UUID
	if req.CaseID != "" {
		id, err := uuid.Parse(req.CaseID)
		if err != nil {
			return nil, apperrors.Validation("invalid case id", err)
		}
		caseID = &id
	}

	now := time.Now()
	job := &model.Job{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ClientID:     clientID,
		CaseID:       caseID,
		AssignedTo:   req.AssignedTo,
		Type:         req.Type,
		Status:       model.JobStatusPlanned,
		ScheduledFor: req.ScheduledFor,
		Notes:        req.Notes,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	s.notify("job", "create", job.ID)
	return job, nil
}

func (s *Service) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status model.JobStatus) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to get job: %w", err)
	}
	job.Status = status
	job.UpdatedAt = time.Now()
	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	s.notify("job", "status_change", job.ID)
	return nil
}

func (s *Service) ListJobs(ctx context.Context, filters *model.JobFilters) ([]*model.Job, error) {
	return s.jobs.List(ctx, filters)
}

func (s *Service) RaiseException(ctx context.Context, req *model.CreateExceptionRequest) (*model.ExceptionRecord, error) {
	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		return nil, apperrors.Validation("invalid case id", err)
	}
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, fmt.Errorf("failed to resolve case: %w", err)
	}

	now := time.Now()
	exc := &model.ExceptionRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CaseID: caseID,
		Reason: req.Reason,
		Status: model.ExceptionStatusOpen,
	}
	if err := s.exceptions.Create(ctx, exc); err != nil {
		return nil, fmt.Errorf("failed to create exception: %w", err)
	}
	s.notify("exception", "create", exc.ID)
	return exc, nil
}

func (s *Service) ListExceptions(ctx context.Context, filters *model.ExceptionFilters) ([]*model.ExceptionRecord, error) {
	return s.exceptions.List(ctx, filters)
}

func (s *Service) notify(resource, operation string, entityID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(event.Change{
		Resource:  resource,
		Operation: operation,
		EntityID:  entityID,
	})
}
