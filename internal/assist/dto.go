// AngelaMos | 2026
// dto.go

package assist

import (
	"time"
)

type CreateRequestRequest struct {
	CustomerID  string `json:"customer_id"  validate:"required"`
	ServiceType string `json:"service_type" validate:"required,oneof=tow battery flat_tire lockout fuel"`
	Location    string `json:"location"     validate:"required,max=255"`
	Description string `json:"description"  validate:"omitempty,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending dispatched in_progress completed cancelled"`
}

type AssignTechnicianRequest struct {
	TechnicianID string `json:"technician_id" validate:"required"`
}

// ListFilters narrows the request list; zero values match everything.
type ListFilters struct {
	Status       string
	ServiceType  string
	CustomerID   string
	TechnicianID string
	Limit        int
	Offset       int
}

type RequestResponse struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customer_id"`
	TechnicianID *string     `json:"technician_id,omitempty"`
	ServiceType  ServiceType `json:"service_type"`
	Status       Status      `json:"status"`
	Location     string      `json:"location"`
	Description  string      `json:"description,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

type RequestListResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int               `json:"total"`
}

func ToRequestResponse(req *Request) RequestResponse {
	return RequestResponse{
		ID:           req.ID,
		CustomerID:   req.CustomerID,
		TechnicianID: req.TechnicianID,
		ServiceType:  req.ServiceType,
		Status:       req.Status,
		Location:     req.Location,
		Description:  req.Description,
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
		CompletedAt:  req.CompletedAt,
	}
}

func ToRequestResponseList(requests []Request) []RequestResponse {
	responses := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, ToRequestResponse(&requests[i]))
	}
	return responses
}
