package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/service"
)

type MessagesHandler struct {
	messages *service.MessageService
}

func NewMessagesHandler(messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

func (h *MessagesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequireAuth)

	r.Get("/", h.Inbox)
	r.Get("/sent", h.Sent)
	r.Post("/", h.Send)
	r.Get("/{messageID}", h.Thread)
	r.Post("/{messageID}/reply", h.Reply)
	r.Put("/{messageID}/read", h.MarkRead)

	return r
}

func (h *MessagesHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	entries, err := h.messages.Inbox(r.Context(), *sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.InboxEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *MessagesHandler) Sent(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	messages, err := h.messages.Sent(r.Context(), *sess.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	var body struct {
		Subject    *string             `json:"subject"`
		Body       string              `json:"body"`
		TargetType model.MessageTarget `json:"targetType"`
		TargetID   int64               `json:"targetId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	msg, err := h.messages.Send(r.Context(), model.CreateMessageParams{
		SenderID:   *sess.UserID,
		Subject:    body.Subject,
		Body:       body.Body,
		TargetType: body.TargetType,
		TargetID:   body.TargetID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessagesHandler) Thread(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	messageID, err := urlID(r, "messageID")
	if err != nil {
		writeError(w, err)
		return
	}

	msg, replies, err := h.messages.Thread(r.Context(), *sess.UserID, messageID)
	if err != nil {
		writeError(w, err)
		return
	}
	if replies == nil {
		replies = []model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": msg,
		"replies": replies,
	})
}

func (h *MessagesHandler) Reply(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	messageID, err := urlID(r, "messageID")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Body string `json:"body"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Body == "" {
		writeError(w, errors.ValidationError("Die Nachricht darf nicht leer sein."))
		return
	}

	msg, err := h.messages.Reply(r.Context(), *sess.UserID, messageID, body.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())

	messageID, err := urlID(r, "messageID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.messages.MarkRead(r.Context(), messageID, *sess.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w, "Nachricht als gelesen markiert.")
}
