package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/audit"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/service"
)

type InvitationsHandler struct {
	invitations *service.InvitationService
	access      *middleware.AccessMiddleware
}

func NewInvitationsHandler(invitations *service.InvitationService, access *middleware.AccessMiddleware) *InvitationsHandler {
	return &InvitationsHandler{invitations: invitations, access: access}
}

// ClubRoutes manages a club's invitations; mounted behind RequireClubAccess.
func (h *InvitationsHandler) ClubRoutes() chi.Router {
	r := chi.NewRouter()

	manage := h.access.RequireRole(model.RoleVereinsAdmin)

	r.With(manage).Get("/", h.ListByClub)
	r.With(manage).Post("/", h.Create)
	r.With(manage).Delete("/{invitationID}", h.Delete)

	return r
}

// GlobalRoutes lets an invited user look up and redeem their code without a
// club context.
func (h *InvitationsHandler) GlobalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth)

	r.Get("/{code}", h.FindByCode)
	r.Post("/accept", h.Accept)

	return r
}

func (h *InvitationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())
	sess := middleware.GetSession(r.Context())

	var body struct {
		Email string     `json:"email"`
		Role  model.Role `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	inv, err := h.invitations.Create(r.Context(), clubID, *sess.UserID, body.Email, body.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventInvitationCreate,
		UserID: *sess.UserID,
		ClubID: clubID,
		Details: map[string]interface{}{
			"invitationId": inv.ID,
			"role":         string(inv.Role),
		},
	})
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InvitationsHandler) ListByClub(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	invitations, err := h.invitations.ListByClub(r.Context(), clubID)
	if err != nil {
		writeError(w, err)
		return
	}
	if invitations == nil {
		invitations = []model.Invitation{}
	}
	writeJSON(w, http.StatusOK, invitations)
}

func (h *InvitationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	invitationID, err := urlID(r, "invitationID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.invitations.Delete(r.Context(), clubID, invitationID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "Einladung gelöscht.")
}

func (h *InvitationsHandler) FindByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, errors.ValidationError("Einladungscode ist erforderlich."))
		return
	}

	inv, err := h.invitations.FindByCode(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InvitationsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Code == "" {
		writeError(w, errors.ValidationError("Einladungscode ist erforderlich."))
		return
	}

	inv, err := h.invitations.Accept(r.Context(), body.Code, *sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventInvitationAccept,
		UserID: *sess.UserID,
		ClubID: inv.ClubID,
		Details: map[string]interface{}{
			"invitationId": inv.ID,
			"role":         string(inv.Role),
		},
	})
	writeJSON(w, http.StatusOK, inv)
}
