package handler

import (
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/authz"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

type ClubsHandler struct {
	clubs  repository.ClubRepository
	roles  repository.RoleRepository
	access *middleware.AccessMiddleware
}

func NewClubsHandler(clubs repository.ClubRepository, roles repository.RoleRepository, access *middleware.AccessMiddleware) *ClubsHandler {
	return &ClubsHandler{clubs: clubs, roles: roles, access: access}
}

// Routes covers the club collection; club-scoped subresources are mounted
// beneath it by the caller.
func (h *ClubsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.With(h.access.RequireRole(model.RolePortalAdmin)).Post("/", h.Create)

	return r
}

// ClubRoutes are the routes below /{clubID}, already behind RequireClubAccess.
func (h *ClubsHandler) ClubRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Put("/", h.Update)
	r.With(h.access.RequireRole(model.RolePortalAdmin)).Delete("/", h.Delete)

	r.Get("/logo", h.GetLogo)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Post("/logo", h.UploadLogo)

	r.Get("/members", h.ListMembers)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Delete("/members/{userID}", h.RemoveMember)

	return r
}

// List shows the user's clubs; an unscoped PortalAdmin sees all of them.
func (h *ClubsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	assignments, err := h.roles.FindByUserID(r.Context(), *sess.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}

	var clubs []model.ClubSummary
	if authz.IsPortalAdmin(assignments) {
		clubs, err = h.clubs.ListAll(r.Context())
	} else {
		clubs, err = h.clubs.ListForUser(r.Context(), *sess.UserID)
	}
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if clubs == nil {
		clubs = []model.ClubSummary{}
	}

	writeJSON(w, http.StatusOK, clubs)
}

func (h *ClubsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, errors.ValidationError("Der Vereinsname ist erforderlich."))
		return
	}

	club, err := h.clubs.Create(r.Context(), body.Name)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusCreated, club)
}

func (h *ClubsHandler) Get(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	club, err := h.clubs.FindByID(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if club == nil {
		writeError(w, errors.NotFound("Verein nicht gefunden."))
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (h *ClubsHandler) Update(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, errors.ValidationError("Der Vereinsname ist erforderlich."))
		return
	}

	club, err := h.clubs.UpdateName(r.Context(), clubID, body.Name)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if club == nil {
		writeError(w, errors.NotFound("Verein nicht gefunden."))
		return
	}
	writeJSON(w, http.StatusOK, club)
}

func (h *ClubsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	if err := h.clubs.Delete(r.Context(), clubID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Verein gelöscht.")
}

// UploadLogo accepts an image as multipart form or raw body and sniffs the
// type server side instead of trusting the Content-Type header.
func (h *ClubsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	data, _, err := readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(data) == 0 {
		writeError(w, errors.ValidationError("Keine Datei hochgeladen."))
		return
	}

	mtype := mimetype.Detect(data)
	if !isAllowedImage(mtype.String()) {
		writeError(w, errors.ValidationError("Nur JPEG-, PNG-, GIF- oder WebP-Bilder sind erlaubt."))
		return
	}

	if err := h.clubs.SetLogo(r.Context(), clubID, data, mtype.String()); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	log.Info().Int64("clubId", clubID).Str("mime", mtype.String()).Msg("club logo updated")
	writeOK(w, "Logo aktualisiert.")
}

func (h *ClubsHandler) GetLogo(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	club, err := h.clubs.GetLogo(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if club == nil || len(club.Logo) == 0 {
		writeError(w, errors.NotFound("Kein Logo vorhanden."))
		return
	}

	mime := "application/octet-stream"
	if club.LogoMime != nil {
		mime = *club.LogoMime
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(club.Logo)
}

func (h *ClubsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	members, err := h.clubs.ListMembers(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if members == nil {
		members = []model.ClubMember{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *ClubsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	userID, err := urlID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.clubs.RemoveMember(r.Context(), clubID, userID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Mitglied entfernt.")
}

func isAllowedImage(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
