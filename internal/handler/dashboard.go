package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
}

func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth)

	r.Get("/", h.Summary)

	return r
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	summary, err := h.dashboard.Summary(r.Context(), *sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
