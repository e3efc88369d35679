// AngelaMos | 2026
// handler.go

package investigate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/middleware"
)

type Handler struct {
	client    *Client
	validator *validator.Validate
}

func NewHandler(client *Client) *Handler {
	return &Handler{
		client:    client,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/investigate", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireDashboardRole)
		r.Post("/", h.Investigate)
	})
}

type investigateRequest struct {
	Error   string `json:"error"   validate:"required,max=4000"`
	Context string `json:"context" validate:"omitempty,max=4000"`
	Stack   string `json:"stack"   validate:"omitempty,max=8000"`
}

type investigateResponse struct {
	Diagnosis string `json:"diagnosis"`
}

func (h *Handler) Investigate(w http.ResponseWriter, r *http.Request) {
	var req investigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	var report strings.Builder
	fmt.Fprintf(&report, "Error: %s\n", req.Error)
	if req.Context != "" {
		fmt.Fprintf(&report, "Context: %s\n", req.Context)
	}
	if req.Stack != "" {
		fmt.Fprintf(&report, "Stack:\n%s\n", req.Stack)
	}

	diagnosis, err := h.client.Diagnose(r.Context(), report.String())
	if err != nil {
		core.JSONError(w, core.NewAppError(
			err,
			"investigator unavailable",
			http.StatusBadGateway,
			"INVESTIGATOR_UNAVAILABLE",
		))
		return
	}

	core.OK(w, investigateResponse{Diagnosis: diagnosis})
}
