// AngelaMos | 2026
// handler.go

package assist

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/requests", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireDashboardRole)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{requestID}", h.Get)
		r.Put("/{requestID}/status", h.UpdateStatus)
		r.Put("/{requestID}/technician", h.AssignTechnician)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := ListFilters{
		Status:       q.Get("status"),
		ServiceType:  q.Get("service_type"),
		CustomerID:   q.Get("customer_id"),
		TechnicianID: q.Get("technician_id"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "limit must be an integer")
			return
		}
		filters.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "offset must be an integer")
			return
		}
		filters.Offset = n
	}

	requests, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, RequestListResponse{
		Requests: ToRequestResponseList(requests),
		Total:    len(requests),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	request, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.Created(w, ToRequestResponse(request))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "requestID")

	request, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	id := chi.URLParam(r, "requestID")

	request, err := h.service.UpdateStatus(r.Context(), id, Status(req.Status))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}

func (h *Handler) AssignTechnician(w http.ResponseWriter, r *http.Request) {
	var req AssignTechnicianRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	id := chi.URLParam(r, "requestID")

	request, err := h.service.AssignTechnician(
		r.Context(),
		id,
		req.TechnicianID,
	)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(request))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "assist request")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	default:
		core.InternalServerError(w, err)
	}
}
