// AngelaMos | 2026
// handler.go

package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/middleware"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
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
	r.Route("/accounts", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireDashboardRole)

		r.Route("/{category}", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)

			r.Route("/{accountID}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Patch("/", h.Update)
				r.Delete("/", h.Delete)
				r.Put("/profile", h.UpdateProfile)
				r.Put("/password", h.ChangePassword)
				r.Put("/role", h.AssignRole)
			})
		})
	})
}

func parseCategory(r *http.Request) (rbac.Resource, bool) {
	category := rbac.Resource(chi.URLParam(r, "category"))
	return category, category.IsValid()
}

func listParamsFromQuery(
	r *http.Request,
	category rbac.Resource,
) ListParams {
	q := r.URL.Query()
	return ListParams{
		Category: category,
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Facet:    q.Get("facet"),
		SortBy:   SortKey(q.Get("sort")),
		SortDir:  q.Get("dir"),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	actor := middleware.GetActor(r.Context())
	params := listParamsFromQuery(r, category)

	accounts, err := h.service.List(actor, params)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, AccountListResponse{
		Accounts: ToAccountResponseList(accounts),
		Total:    len(accounts),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	actor := middleware.GetActor(r.Context())
	id := chi.URLParam(r, "accountID")

	account, err := h.service.Get(actor, category, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())

	account, err := h.service.Create(r.Context(), actor, category, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.Created(w, ToAccountResponse(account))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	id := chi.URLParam(r, "accountID")

	account, err := h.service.Update(r.Context(), actor, category, id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

// Delete requires ?confirm=true, the server half of the dashboard's
// confirmation dialog.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	actor := middleware.GetActor(r.Context())
	id := chi.URLParam(r, "accountID")
	confirmed := r.URL.Query().Get("confirm") == "true"

	err := h.service.Delete(r.Context(), actor, category, id, confirmed)
	if err != nil {
		if errors.Is(err, ErrConfirmationRequired) {
			core.BadRequest(w, "deletion requires confirm=true")
			return
		}
		h.writeServiceError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	id := chi.URLParam(r, "accountID")

	account, err := h.service.UpdateProfile(
		r.Context(), actor, category, id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok {
		core.NotFound(w, "account category")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	// No struct validation here; the service reports each password rule
	// violation specifically, in order.
	actor := middleware.GetActor(r.Context())
	id := chi.URLParam(r, "accountID")

	err := h.service.ChangePassword(r.Context(), actor, category, id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	category, ok := parseCategory(r)
	if !ok || category != rbac.ResourceAdmins {
		core.NotFound(w, "account category")
		return
	}

	var req AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	actor := middleware.GetActor(r.Context())
	id := chi.URLParam(r, "accountID")

	account, err := h.service.AssignRole(r.Context(), actor, id, req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(account))
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "account")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, err.Error())
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("email"))
	default:
		core.InternalServerError(w, err)
	}
}
