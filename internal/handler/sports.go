package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

type SportsHandler struct {
	sports repository.SportRepository
	access *middleware.AccessMiddleware
}

func NewSportsHandler(sports repository.SportRepository, access *middleware.AccessMiddleware) *SportsHandler {
	return &SportsHandler{sports: sports, access: access}
}

func (h *SportsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	manage := h.access.RequireRole(model.RoleVereinsAdmin)

	r.Get("/", h.List)
	r.With(manage).Post("/", h.Create)
	r.Get("/{sportID}", h.Get)
	r.With(manage).Put("/{sportID}", h.Update)
	r.With(manage).Delete("/{sportID}", h.Delete)

	return r
}

func (h *SportsHandler) List(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	sports, err := h.sports.ListByClub(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if sports == nil {
		sports = []model.Sport{}
	}
	writeJSON(w, http.StatusOK, sports)
}

func (h *SportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, errors.ValidationError("Der Name der Sportart ist erforderlich."))
		return
	}

	sport, err := h.sports.Create(r.Context(), clubID, body.Name)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusCreated, sport)
}

// resolve loads the sport and checks it belongs to the request's club, so a
// valid ID from another club is indistinguishable from a missing one.
func (h *SportsHandler) resolve(r *http.Request) (*model.Sport, error) {
	clubID, _ := middleware.GetClubID(r.Context())

	sportID, err := urlID(r, "sportID")
	if err != nil {
		return nil, err
	}

	sport, err := h.sports.FindByID(r.Context(), sportID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if sport == nil || sport.ClubID != clubID {
		return nil, errors.NotFound("Sportart nicht gefunden.")
	}
	return sport, nil
}

func (h *SportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sport, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sport)
}

func (h *SportsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sport, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, errors.ValidationError("Der Name der Sportart ist erforderlich."))
		return
	}

	updated, err := h.sports.UpdateName(r.Context(), sport.ID, body.Name)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *SportsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sport, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sports.Delete(r.Context(), sport.ID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Sportart gelöscht.")
}
