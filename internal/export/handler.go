// AngelaMos | 2026
// handler.go

package export

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/roadassist-api/internal/account"
	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/middleware"
	"github.com/carterperez-dev/roadassist-api/internal/rbac"
)

// Handler streams the operator's current filtered view as a download, or
// archives it to the object store. The permission check rides on the
// account service: whatever the operator may list, they may export.
type Handler struct {
	accounts *account.Service
	sink     *Sink
}

// NewHandler accepts a nil sink; archive endpoints then report the object
// store as disabled.
func NewHandler(accounts *account.Service, sink *Sink) *Handler {
	return &Handler{accounts: accounts, sink: sink}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/export", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireDashboardRole)

		r.Get("/{category}", h.Download)
		r.Post("/{category}/archive", h.Archive)
	})
}

func (h *Handler) visibleList(
	r *http.Request,
) (rbac.Resource, []account.Account, error) {
	category := rbac.Resource(chi.URLParam(r, "category"))
	if !category.IsValid() {
		return "", nil, fmt.Errorf(
			"unknown category %q: %w", category, core.ErrNotFound)
	}

	q := r.URL.Query()
	params := account.ListParams{
		Category: category,
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Facet:    q.Get("facet"),
		SortBy:   account.SortKey(q.Get("sort")),
		SortDir:  q.Get("dir"),
	}

	accounts, err := h.accounts.List(middleware.GetActor(r.Context()), params)
	if err != nil {
		return "", nil, err
	}
	return category, accounts, nil
}

func parseFormat(r *http.Request) (Format, bool) {
	format := Format(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatCSV
	}
	return format, format.IsValid()
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	format, ok := parseFormat(r)
	if !ok {
		core.BadRequest(w, "format must be csv or ndjson")
		return
	}

	category, accounts, err := h.visibleList(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s",
		category, time.Now().Format("20060102"), format.Extension())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filename))

	if err := Encode(w, format, accounts); err != nil {
		// Headers are gone; nothing to do but drop the connection.
		return
	}
}

type archiveResponse struct {
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key"`
	Rows   int    `json:"rows"`
}

func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.sink == nil {
		core.JSONError(w, core.NewAppError(
			core.ErrInvalidInput,
			"object store is not configured",
			http.StatusServiceUnavailable,
			"OBJECT_STORE_DISABLED",
		))
		return
	}

	format, ok := parseFormat(r)
	if !ok {
		core.BadRequest(w, "format must be csv or ndjson")
		return
	}

	category, accounts, err := h.visibleList(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	key, err := h.sink.Archive(r.Context(), string(category), format, accounts)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, archiveResponse{
		Bucket: h.sink.bucket,
		Key:    key,
		Rows:   len(accounts),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "account category")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "")
	default:
		core.InternalServerError(w, err)
	}
}
