package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/authz"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/repository"
)

// PhotosHandler serves photo blobs outside the club routes; the IDs are
// handed out by the event photo listing.
type PhotosHandler struct {
	photos repository.PhotoRepository
	roles  repository.RoleRepository
}

func NewPhotosHandler(photos repository.PhotoRepository, roles repository.RoleRepository) *PhotosHandler {
	return &PhotosHandler{photos: photos, roles: roles}
}

func (h *PhotosHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth)

	r.Get("/{photoID}", h.Get)
	r.Delete("/{photoID}", h.Delete)

	return r
}

func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	photoID, err := urlID(r, "photoID")
	if err != nil {
		writeError(w, err)
		return
	}

	photo, err := h.photos.FindByID(r.Context(), photoID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if photo == nil {
		writeError(w, errors.NotFound("Foto nicht gefunden."))
		return
	}

	w.Header().Set("Content-Type", photo.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", photo.Filename))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(photo.Data)
}

// Delete is restricted to the uploader; an unscoped PortalAdmin may remove
// any photo.
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	photoID, err := urlID(r, "photoID")
	if err != nil {
		writeError(w, err)
		return
	}

	photo, err := h.photos.FindByID(r.Context(), photoID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if photo == nil {
		writeError(w, errors.NotFound("Foto nicht gefunden."))
		return
	}

	if photo.UploadedBy != *sess.UserID {
		assignments, err := h.roles.FindByUserID(r.Context(), *sess.UserID)
		if err != nil {
			writeError(w, errors.Database(err))
			return
		}
		if !authz.IsPortalAdmin(assignments) {
			writeError(w, errors.Forbidden("Nur der Uploader kann dieses Foto löschen."))
			return
		}
	}

	if err := h.photos.Delete(r.Context(), photoID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Foto gelöscht.")
}
