// AngelaMos | 2026
// service_test.go

package assist

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/alerts"
	"github.com/carterperez-dev/roadassist-api/internal/core"
)

type fakeRepo struct {
	byID map[string]*Request
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]*Request)}
}

func (f *fakeRepo) Create(_ context.Context, req *Request) error {
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	clone := *req
	f.byID[req.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Request, error) {
	req, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("assist request %s: %w", id, core.ErrNotFound)
	}
	clone := *req
	return &clone, nil
}

func (f *fakeRepo) List(
	_ context.Context,
	filters ListFilters,
) ([]Request, error) {
	var out []Request
	for _, req := range f.byID {
		if filters.Status != "" && string(req.Status) != filters.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(
	_ context.Context,
	id string,
	status Status,
) error {
	req, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("update request status: %w", core.ErrNotFound)
	}
	req.Status = status
	return nil
}

func (f *fakeRepo) AssignTechnician(
	_ context.Context,
	id, technicianID string,
) error {
	req, ok := f.byID[id]
	if !ok {
		return fmt.Errorf("assign technician: %w", core.ErrNotFound)
	}
	req.TechnicianID = &technicianID
	return nil
}

func (f *fakeRepo) CountByStatus(_ context.Context) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, req := range f.byID {
		counts[req.Status]++
	}
	return counts, nil
}

type publisherSpy struct {
	published []alerts.Severity
}

func (p *publisherSpy) Publish(
	_ context.Context,
	severity alerts.Severity,
	_, _ string,
) {
	p.published = append(p.published, severity)
}

func newRequest(
	t *testing.T,
	svc *Service,
	serviceType string,
) *Request {
	t.Helper()
	req, err := svc.Create(context.Background(), CreateRequestRequest{
		CustomerID:  "customer-1",
		ServiceType: serviceType,
		Location:    "I-80 exit 12",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusDispatched},
		{StatusPending, StatusCancelled},
		{StatusDispatched, StatusInProgress},
		{StatusDispatched, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("%s -> %s should be allowed", tt.from, tt.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusDispatched, StatusCompleted},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusPending},
	}
	for _, tt := range denied {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("%s -> %s should be denied", tt.from, tt.to)
		}
	}
}

func TestCreate_StartsPendingAndAlerts(t *testing.T) {
	spy := &publisherSpy{}
	svc := NewService(newFakeRepo(), spy)

	req := newRequest(t, svc, "tow")

	if req.Status != StatusPending {
		t.Errorf("new requests start pending, got %s", req.Status)
	}
	if len(spy.published) != 1 || spy.published[0] != alerts.SeverityInfo {
		t.Errorf("creation should publish one info alert, got %v",
			spy.published)
	}
}

func TestCreate_RejectsUnknownServiceType(t *testing.T) {
	svc := NewService(newFakeRepo(), &publisherSpy{})

	_, err := svc.Create(context.Background(), CreateRequestRequest{
		CustomerID:  "customer-1",
		ServiceType: "helicopter",
		Location:    "somewhere",
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUpdateStatus_FullLifecycle(t *testing.T) {
	svc := NewService(newFakeRepo(), &publisherSpy{})
	ctx := context.Background()

	req := newRequest(t, svc, "battery")

	if _, err := svc.AssignTechnician(ctx, req.ID, "tech-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	for _, next := range []Status{
		StatusDispatched, StatusInProgress, StatusCompleted,
	} {
		updated, err := svc.UpdateStatus(ctx, req.ID, next)
		if err != nil {
			t.Fatalf("move to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status not applied, got %s want %s",
				updated.Status, next)
		}
	}

	final, err := svc.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.Status != StatusCompleted {
		t.Errorf("lifecycle should end completed, got %s", final.Status)
	}
}

func TestUpdateStatus_RejectsIllegalHop(t *testing.T) {
	svc := NewService(newFakeRepo(), &publisherSpy{})

	req := newRequest(t, svc, "fuel")

	_, err := svc.UpdateStatus(context.Background(), req.ID, StatusCompleted)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("pending -> completed should fail, got %v", err)
	}
}

func TestUpdateStatus_DispatchRequiresTechnician(t *testing.T) {
	svc := NewService(newFakeRepo(), &publisherSpy{})

	req := newRequest(t, svc, "lockout")

	_, err := svc.UpdateStatus(context.Background(), req.ID, StatusDispatched)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("dispatch without technician should fail, got %v", err)
	}
}

func TestUpdateStatus_CancellationAlertsWarning(t *testing.T) {
	spy := &publisherSpy{}
	svc := NewService(newFakeRepo(), spy)

	req := newRequest(t, svc, "flat_tire")

	_, err := svc.UpdateStatus(context.Background(), req.ID, StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	last := spy.published[len(spy.published)-1]
	if last != alerts.SeverityWarning {
		t.Errorf("cancellation should publish a warning, got %s", last)
	}
}

func TestAssignTechnician_RejectedOnceInProgress(t *testing.T) {
	svc := NewService(newFakeRepo(), &publisherSpy{})
	ctx := context.Background()

	req := newRequest(t, svc, "tow")

	if _, err := svc.AssignTechnician(ctx, req.ID, "tech-1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, req.ID, StatusDispatched); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, req.ID, StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}

	_, err := svc.AssignTechnician(ctx, req.ID, "tech-2")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("reassignment in progress should fail, got %v", err)
	}
}
