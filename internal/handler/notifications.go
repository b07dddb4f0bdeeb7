package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

const notificationListLimit = 50

type NotificationsHandler struct {
	notifications repository.NotificationRepository
}

func NewNotificationsHandler(notifications repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

func (h *NotificationsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth)

	r.Get("/", h.List)
	r.Get("/unread-count", h.UnreadCount)
	r.Put("/read-all", h.MarkAllRead)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Put("/{notificationID}/read", h.MarkRead)
	r.Delete("/{notificationID}", h.Delete)

	return r
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	notifications, err := h.notifications.ListByUser(r.Context(), *sess.UserID, notificationListLimit)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	count, err := h.notifications.CountUnread(r.Context(), *sess.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	notificationID, err := urlID(r, "notificationID")
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.notifications.MarkRead(r.Context(), notificationID, *sess.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if !updated {
		writeError(w, errors.NotFound("Benachrichtigung nicht gefunden."))
		return
	}
	writeOK(w, "Benachrichtigung als gelesen markiert.")
}

func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	if err := h.notifications.MarkAllRead(r.Context(), *sess.UserID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Alle Benachrichtigungen als gelesen markiert.")
}

func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	notificationID, err := urlID(r, "notificationID")
	if err != nil {
		writeError(w, err)
		return
	}

	deleted, err := h.notifications.Delete(r.Context(), notificationID, *sess.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if !deleted {
		writeError(w, errors.NotFound("Benachrichtigung nicht gefunden."))
		return
	}
	writeOK(w, "Benachrichtigung gelöscht.")
}

func (h *NotificationsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	settings, err := h.notifications.GetSettings(r.Context(), *sess.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *NotificationsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var body struct {
		EmailEnabled     bool `json:"emailEnabled"`
		PushEnabled      bool `json:"pushEnabled"`
		DashboardEnabled bool `json:"dashboardEnabled"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	settings, err := h.notifications.UpsertSettings(r.Context(), model.NotificationSettings{
		UserID:           *sess.UserID,
		EmailEnabled:     body.EmailEnabled,
		PushEnabled:      body.PushEnabled,
		DashboardEnabled: body.DashboardEnabled,
	})
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
