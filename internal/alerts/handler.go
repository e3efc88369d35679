// AngelaMos | 2026
// handler.go

package alerts

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/roadassist-api/internal/core"
	"github.com/carterperez-dev/roadassist-api/internal/middleware"
)

type Handler struct {
	feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/alerts", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireDashboardRole)
		r.Get("/recent", h.Recent)
	})
}

type recentResponse struct {
	Alerts []Alert `json:"alerts"`
	Total  int     `json:"total"`
}

func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			core.BadRequest(w, "limit must be an integer")
			return
		}
		limit = n
	}

	alerts, err := h.feed.Recent(r.Context(), limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, recentResponse{Alerts: alerts, Total: len(alerts)})
}
