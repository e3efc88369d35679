// AngelaMos | 2026
// entity.go

package assist

import (
	"time"
)

// ServiceType is the kind of roadside help being requested.
type ServiceType string

const (
	ServiceTow      ServiceType = "tow"
	ServiceBattery  ServiceType = "battery"
	ServiceFlatTire ServiceType = "flat_tire"
	ServiceLockout  ServiceType = "lockout"
	ServiceFuel     ServiceType = "fuel"
)

func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceTow, ServiceBattery, ServiceFlatTire, ServiceLockout,
		ServiceFuel:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDispatched, StatusInProgress,
		StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// transitions is the request lifecycle. Cancellation is reachable from any
// non-terminal state; everything else moves strictly forward.
var transitions = map[Status][]Status{
	StatusPending:    {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Request is one emergency assistance request.
type Request struct {
	ID           string      `db:"id"`
	CustomerID   string      `db:"customer_id"`
	TechnicianID *string     `db:"technician_id"`
	ServiceType  ServiceType `db:"service_type"`
	Status       Status      `db:"status"`
	Location     string      `db:"location"`
	Description  string      `db:"description"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	CompletedAt  *time.Time  `db:"completed_at"`
}
