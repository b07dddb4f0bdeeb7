package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/audit"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/service"
	"github.com/teammanager/server-go/internal/session"
)

type AuthHandler struct {
	auth         *service.AuthService
	sessions     *session.Store
	isProduction bool
}

func NewAuthHandler(auth *service.AuthService, sessions *session.Store, isProduction bool) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, isProduction: isProduction}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/captcha", h.Captcha)
	r.Get("/csrf-token", h.CSRFToken)
	r.Post("/register", h.Register)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/status", h.Status)

	return r
}

// ensureSession returns the request's session, creating one with a fresh
// cookie when the client has none yet.
func (h *AuthHandler) ensureSession(w http.ResponseWriter, r *http.Request) (string, *session.Session, error) {
	if sess := middleware.GetSession(r.Context()); sess != nil {
		return middleware.GetSessionToken(r.Context()), sess, nil
	}

	token, sess, err := h.sessions.New(r.Context())
	if err != nil {
		return "", nil, err
	}
	middleware.SetSessionCookie(w, token, h.sessions.TTL(), h.isProduction)
	return token, sess, nil
}

func (h *AuthHandler) Captcha(w http.ResponseWriter, r *http.Request) {
	token, sess, err := h.ensureSession(w, r)
	if err != nil {
		log.Error().Err(err).Msg("creating session failed")
		writeError(w, errors.Internal())
		return
	}

	question, err := h.auth.NewCaptcha(sess)
	if err != nil {
		writeError(w, errors.Internal().WithCause(err))
		return
	}

	// Fetching the captcha is the client's first contact, so hand out the
	// CSRF token here too and spare it a second round trip.
	csrfToken, err := h.auth.EnsureCSRFToken(sess)
	if err != nil {
		writeError(w, errors.Internal().WithCause(err))
		return
	}

	if err := h.sessions.Save(r.Context(), token, sess); err != nil {
		log.Error().Err(err).Msg("saving session failed")
		writeError(w, errors.Internal())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"question":  question,
		"csrfToken": csrfToken,
	})
}

func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, sess, err := h.ensureSession(w, r)
	if err != nil {
		log.Error().Err(err).Msg("creating session failed")
		writeError(w, errors.Internal())
		return
	}

	csrfToken, err := h.auth.EnsureCSRFToken(sess)
	if err != nil {
		writeError(w, errors.Internal().WithCause(err))
		return
	}
	if err := h.sessions.Save(r.Context(), token, sess); err != nil {
		log.Error().Err(err).Msg("saving session failed")
		writeError(w, errors.Internal())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"csrfToken": csrfToken})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	token := middleware.GetSessionToken(r.Context())
	if sess == nil {
		writeError(w, errors.CSRFInvalid())
		return
	}

	var params service.RegisterParams
	if err := decodeBody(r, &params); err != nil {
		writeError(w, err)
		return
	}

	regErr := h.auth.Register(r.Context(), sess, params)

	// The captcha is consumed and the pending registration parked in the
	// session either way, so persist before reporting the outcome.
	if err := h.sessions.Save(r.Context(), token, sess); err != nil {
		log.Error().Err(err).Msg("saving session failed")
		writeError(w, errors.Internal())
		return
	}

	if regErr != nil {
		writeError(w, regErr)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventRegistrationPending,
		Details: map[string]interface{}{"username": params.Username},
	})
	// The account does not exist yet; it is created on email verification.
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "pending",
		"message": "Verifizierungscode wurde an Ihre E-Mail-Adresse gesendet.",
	})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	token := middleware.GetSessionToken(r.Context())
	if sess == nil {
		writeError(w, errors.NoPendingRegistration())
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, verifyErr := h.auth.VerifyEmail(r.Context(), sess, body.Code)

	if err := h.sessions.Save(r.Context(), token, sess); err != nil {
		log.Error().Err(err).Msg("saving session failed")
		writeError(w, errors.Internal())
		return
	}

	if verifyErr != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventVerificationFailure})
		writeError(w, verifyErr)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:   audit.EventRegistrationDone,
		UserID: user.ID,
	})
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "ok",
		"message": "E-Mail erfolgreich verifiziert. Sie können sich jetzt anmelden.",
		"user":    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	oldToken := middleware.GetSessionToken(r.Context())
	if sess == nil {
		writeError(w, errors.CSRFInvalid())
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Login(r.Context(), sess, body.Username, body.Password)
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventLoginFailure,
			Details: map[string]interface{}{"username": body.Username},
		})
		writeError(w, err)
		return
	}

	// A fresh token prevents fixation of the pre-login session.
	newToken, err := h.sessions.Regenerate(r.Context(), oldToken, sess)
	if err != nil {
		log.Error().Err(err).Msg("regenerating session failed")
		writeError(w, errors.Internal())
		return
	}
	middleware.SetSessionCookie(w, newToken, h.sessions.TTL(), h.isProduction)

	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess, UserID: user.ID})
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"user":      user,
		"csrfToken": sess.CSRFToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.GetSession(r.Context())
	token := middleware.GetSessionToken(r.Context())

	if sess != nil {
		var userID int64
		if sess.UserID != nil {
			userID = *sess.UserID
		}
		h.auth.Logout(sess)
		if err := h.sessions.Destroy(r.Context(), token); err != nil {
			log.Error().Err(err).Msg("destroying session failed")
		}
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, UserID: userID})
	}

	middleware.ClearSessionCookie(w)
	writeOK(w, "Erfolgreich abgemeldet.")
}

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.auth.Status(middleware.GetSession(r.Context())))
}
