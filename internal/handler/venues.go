package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

type VenuesHandler struct {
	venues repository.VenueRepository
	access *middleware.AccessMiddleware
}

func NewVenuesHandler(venues repository.VenueRepository, access *middleware.AccessMiddleware) *VenuesHandler {
	return &VenuesHandler{venues: venues, access: access}
}

func (h *VenuesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	manage := h.access.RequireRole(model.RoleVereinsAdmin, model.RoleTrainer)

	r.Get("/", h.List)
	r.With(manage).Post("/", h.Create)
	r.Get("/{venueID}", h.Get)
	r.With(manage).Put("/{venueID}", h.Update)
	r.With(manage).Delete("/{venueID}", h.Delete)

	return r
}

func (h *VenuesHandler) List(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	venues, err := h.venues.ListByClub(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if venues == nil {
		venues = []model.Venue{}
	}
	writeJSON(w, http.StatusOK, venues)
}

func (h *VenuesHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	var params model.VenueParams
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}
	if params.Name == "" {
		writeError(w, errors.ValidationError("Der Name des Austragungsorts ist erforderlich."))
		return
	}

	venue, err := h.venues.Create(r.Context(), clubID, params)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusCreated, venue)
}

func (h *VenuesHandler) resolve(r *http.Request) (*model.Venue, error) {
	clubID, _ := middleware.GetClubID(r.Context())

	venueID, err := urlID(r, "venueID")
	if err != nil {
		return nil, err
	}

	venue, err := h.venues.FindByID(r.Context(), venueID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if venue == nil || venue.ClubID != clubID {
		return nil, errors.NotFound("Austragungsort nicht gefunden.")
	}
	return venue, nil
}

func (h *VenuesHandler) Get(w http.ResponseWriter, r *http.Request) {
	venue, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

func (h *VenuesHandler) Update(w http.ResponseWriter, r *http.Request) {
	venue, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var params model.VenueParams
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}
	if params.Name == "" {
		writeError(w, errors.ValidationError("Der Name des Austragungsorts ist erforderlich."))
		return
	}

	updated, err := h.venues.Update(r.Context(), venue.ID, params)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *VenuesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	venue, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.venues.Delete(r.Context(), venue.ID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Austragungsort gelöscht.")
}
