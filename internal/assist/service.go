// AngelaMos | 2026
// service.go

package assist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/roadassist-api/internal/alerts"
	"github.com/carterperez-dev/roadassist-api/internal/core"
)

// Service runs the request lifecycle. Every status move goes through the
// transition table; the repository never sees an illegal hop.
type Service struct {
	repo   Repository
	alerts alerts.Publisher
}

func NewService(repo Repository, publisher alerts.Publisher) *Service {
	return &Service{repo: repo, alerts: publisher}
}

func (s *Service) Create(
	ctx context.Context,
	req CreateRequestRequest,
) (*Request, error) {
	serviceType := ServiceType(req.ServiceType)
	if !serviceType.IsValid() {
		return nil, fmt.Errorf(
			"unknown service type %q: %w", req.ServiceType, core.ErrInvalidInput)
	}

	request := &Request{
		ID:          uuid.New().String(),
		CustomerID:  req.CustomerID,
		ServiceType: serviceType,
		Status:      StatusPending,
		Location:    req.Location,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.alerts.Publish(ctx, alerts.SeverityInfo, "assist",
		fmt.Sprintf("new %s request %s at %s",
			request.ServiceType, request.ID, request.Location))

	return request, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(
	ctx context.Context,
	filters ListFilters,
) ([]Request, error) {
	if filters.Status != "" && !Status(filters.Status).IsValid() {
		return nil, fmt.Errorf(
			"unknown status %q: %w", filters.Status, core.ErrInvalidInput)
	}
	if filters.ServiceType != "" && !ServiceType(filters.ServiceType).IsValid() {
		return nil, fmt.Errorf(
			"unknown service type %q: %w",
			filters.ServiceType, core.ErrInvalidInput)
	}

	return s.repo.List(ctx, filters)
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	id string,
	next Status,
) (*Request, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf(
			"unknown status %q: %w", next, core.ErrInvalidInput)
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(request.Status, next) {
		return nil, fmt.Errorf(
			"cannot move request from %s to %s: %w",
			request.Status, next, core.ErrInvalidInput)
	}

	// Dispatch requires a technician on the request.
	if next == StatusDispatched && request.TechnicianID == nil {
		return nil, fmt.Errorf(
			"cannot dispatch without an assigned technician: %w",
			core.ErrInvalidInput)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	request.Status = next
	request.UpdatedAt = time.Now()
	if next == StatusCompleted {
		now := time.Now()
		request.CompletedAt = &now
	}

	if next == StatusCancelled {
		s.alerts.Publish(ctx, alerts.SeverityWarning, "assist",
			fmt.Sprintf("request %s cancelled", id))
	}

	return request, nil
}

// AssignTechnician attaches a technician to a pending or dispatched
// request. In-progress and terminal requests keep their assignment.
func (s *Service) AssignTechnician(
	ctx context.Context,
	id, technicianID string,
) (*Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Status != StatusPending && request.Status != StatusDispatched {
		return nil, fmt.Errorf(
			"cannot reassign a request in %s: %w",
			request.Status, core.ErrInvalidInput)
	}

	if err := s.repo.AssignTechnician(ctx, id, technicianID); err != nil {
		return nil, err
	}

	request.TechnicianID = &technicianID
	request.UpdatedAt = time.Now()
	return request, nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}
