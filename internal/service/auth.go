package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/email"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
	"github.com/teammanager/server-go/internal/session"
	"github.com/teammanager/server-go/internal/util"
)

type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Captcha  *int   `json:"captcha"`
}

type AuthStatus struct {
	LoggedIn            bool   `json:"loggedIn"`
	Username            string `json:"username,omitempty"`
	PendingVerification bool   `json:"pendingVerification"`
}

// AuthService implements registration with email verification, login and
// the captcha/CSRF helpers. It mutates the session it is handed; persisting
// the session is the caller's job.
type AuthService struct {
	users           repository.UserRepository
	sender          email.Sender
	verificationTTL time.Duration

	// dummyHash keeps the password comparison on the unknown-username path,
	// so response timing does not reveal which usernames exist.
	dummyHash string
}

func NewAuthService(users repository.UserRepository, sender email.Sender, verificationTTL time.Duration) (*AuthService, error) {
	dummy, err := util.DummyHash()
	if err != nil {
		return nil, fmt.Errorf("generating dummy hash: %w", err)
	}
	return &AuthService{
		users:           users,
		sender:          sender,
		verificationTTL: verificationTTL,
		dummyHash:       dummy,
	}, nil
}

// NewCaptcha stores a fresh arithmetic challenge in the session and returns
// the question text.
func (s *AuthService) NewCaptcha(sess *session.Session) (string, error) {
	a, err := util.RandomInt(1, 10)
	if err != nil {
		return "", err
	}
	b, err := util.RandomInt(1, 10)
	if err != nil {
		return "", err
	}
	answer := a + b
	sess.CaptchaAnswer = &answer
	return fmt.Sprintf("Was ist %d + %d?", a, b), nil
}

// EnsureCSRFToken returns the session's CSRF token, creating one if needed.
func (s *AuthService) EnsureCSRFToken(sess *session.Session) (string, error) {
	if sess.CSRFToken != "" {
		return sess.CSRFToken, nil
	}
	token, err := util.GenerateToken()
	if err != nil {
		return "", err
	}
	sess.CSRFToken = token
	return token, nil
}

// Register validates the input, parks the registration in the session and
// mails a verification code. No user row exists until the code is confirmed.
func (s *AuthService) Register(ctx context.Context, sess *session.Session, params RegisterParams) error {
	// Emails compare case-insensitively, so normalize before the uniqueness
	// check and store the normalized form.
	params.Username = strings.TrimSpace(params.Username)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))

	if params.Username == "" || params.Email == "" || params.Password == "" {
		return errors.ValidationError("Alle Felder sind erforderlich.")
	}

	// The captcha is single use: consumed on any attempt, right or wrong.
	expected := sess.CaptchaAnswer
	sess.CaptchaAnswer = nil
	if expected == nil || params.Captcha == nil || *params.Captcha != *expected {
		return errors.ValidationError("Captcha ungültig. Bitte erneut versuchen.")
	}

	if !util.IsValidUsername(params.Username) {
		return errors.ValidationError("Der Benutzername muss zwischen 3 und 50 Zeichen lang sein.")
	}
	if !util.IsValidEmail(params.Email) {
		return errors.ValidationError("Ungültige E-Mail-Adresse.")
	}
	if !util.IsStrongPassword(params.Password) {
		return errors.ValidationError("Das Passwort muss mindestens 8 Zeichen lang sein und Großbuchstaben, Kleinbuchstaben, Zahlen und Sonderzeichen enthalten.")
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, params.Username, params.Email)
	if err != nil {
		return errors.Database(err)
	}
	if existing != nil {
		return errors.Conflict("Benutzername oder E-Mail bereits vergeben.")
	}

	passwordHash, err := util.HashPassword(params.Password)
	if err != nil {
		return errors.Internal().WithCause(err)
	}

	code, err := util.GenerateVerificationCode()
	if err != nil {
		return errors.Internal().WithCause(err)
	}

	sess.PendingRegistration = &session.PendingRegistration{
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Code:         code,
		ExpiresAt:    time.Now().Add(s.verificationTTL),
	}

	subject := "Ihr Verifizierungscode"
	body := fmt.Sprintf(
		"Hallo %s,\n\nIhr Verifizierungscode lautet: %s\n\nDer Code ist %d Minuten gültig.\n\nFalls Sie sich nicht registriert haben, ignorieren Sie diese E-Mail.",
		params.Username, code, int(s.verificationTTL.Minutes()),
	)
	if err := s.sender.Send(params.Email, subject, body); err != nil {
		// Without the email the user can never verify, so roll back.
		sess.PendingRegistration = nil
		log.Error().Err(err).Msg("sending verification email failed")
		return errors.EmailDelivery(err)
	}

	return nil
}

// VerifyEmail turns a pending registration into a user account once the
// correct code arrives in time.
func (s *AuthService) VerifyEmail(ctx context.Context, sess *session.Session, code string) (*model.User, error) {
	pending := sess.PendingRegistration
	if pending == nil {
		return nil, errors.NoPendingRegistration()
	}

	if time.Now().After(pending.ExpiresAt) {
		sess.PendingRegistration = nil
		return nil, errors.CodeExpired()
	}

	if !util.ConstantTimeEqual(pending.Code, code) {
		return nil, errors.ValidationError("Falscher Verifizierungscode.")
	}

	// Someone may have taken the name while the code was in flight.
	existing, err := s.users.FindByUsernameOrEmail(ctx, pending.Username, pending.Email)
	if err != nil {
		return nil, errors.Database(err)
	}
	if existing != nil {
		sess.PendingRegistration = nil
		return nil, errors.Conflict("Benutzername oder E-Mail bereits vergeben.")
	}

	user, err := s.users.Create(ctx, model.CreateUserParams{
		Username:      pending.Username,
		Email:         pending.Email,
		PasswordHash:  pending.PasswordHash,
		EmailVerified: true,
	})
	if err != nil {
		return nil, errors.Database(err)
	}

	sess.PendingRegistration = nil
	return user, nil
}

// Login checks the credentials and marks the session authenticated. The
// error is identical for unknown username and wrong password.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.ValidationError("Benutzername und Passwort sind erforderlich.")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, errors.Database(err)
	}

	if user == nil {
		util.CheckPasswordHash(password, s.dummyHash)
		return nil, errors.New(errors.ErrCodeUnauthorized, "Benutzername oder Passwort falsch.")
	}

	if !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errors.New(errors.ErrCodeUnauthorized, "Benutzername oder Passwort falsch.")
	}

	sess.UserID = &user.ID
	sess.Username = user.Username
	sess.PendingRegistration = nil

	// Fresh CSRF token for the authenticated session.
	token, err := util.GenerateToken()
	if err != nil {
		return nil, errors.Internal().WithCause(err)
	}
	sess.CSRFToken = token

	return user, nil
}

// Logout clears the authenticated state. Destroying the stored session is
// the caller's job.
func (s *AuthService) Logout(sess *session.Session) {
	sess.UserID = nil
	sess.Username = ""
	sess.PendingRegistration = nil
}

func (s *AuthService) Status(sess *session.Session) AuthStatus {
	if sess == nil {
		return AuthStatus{}
	}
	return AuthStatus{
		LoggedIn:            sess.LoggedIn(),
		Username:            sess.Username,
		PendingVerification: sess.PendingRegistration != nil,
	}
}
