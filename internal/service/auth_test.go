package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/session"
	"github.com/teammanager/server-go/internal/util"
)

// Mock repositories
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsernames(ctx context.Context, usernames []string) ([]model.User, error) {
	args := m.Called(ctx, usernames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestAuthService(t *testing.T, users *mockUserRepo, sender *fakeSender) *AuthService {
	t.Helper()
	svc, err := NewAuthService(users, sender, 10*time.Minute)
	require.NoError(t, err)
	return svc
}

func sessionWithCaptcha(answer int) *session.Session {
	return &session.Session{CaptchaAnswer: &answer, CreatedAt: time.Now()}
}

func validRegisterParams(captcha int) RegisterParams {
	return RegisterParams{
		Username: "maxmuster",
		Email:    "max@example.com",
		Password: "Sicher#123",
		Captcha:  &captcha,
	}
}

func TestNewCaptcha(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	sess := &session.Session{}
	question, err := svc.NewCaptcha(sess)
	require.NoError(t, err)
	assert.Regexp(t, `^Was ist \d+ \+ \d+\?$`, question)
	require.NotNil(t, sess.CaptchaAnswer)
	assert.GreaterOrEqual(t, *sess.CaptchaAnswer, 2)
	assert.LessOrEqual(t, *sess.CaptchaAnswer, 20)
}

func TestEnsureCSRFTokenIsStable(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	sess := &session.Session{}
	first, err := svc.EnsureCSRFToken(sess)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.EnsureCSRFToken(sess)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	err := svc.Register(context.Background(), sessionWithCaptcha(7), RegisterParams{Username: "max"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "Alle Felder sind erforderlich.")
}

func TestRegisterWrongCaptchaConsumesIt(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	sess := sessionWithCaptcha(7)
	err := svc.Register(context.Background(), sess, validRegisterParams(8))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Captcha ungültig")

	// The captcha is gone even though the attempt failed; the correct
	// answer no longer works either.
	assert.Nil(t, sess.CaptchaAnswer)
	err = svc.Register(context.Background(), sess, validRegisterParams(7))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Captcha ungültig")
}

func TestRegisterValidationOrder(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	tests := []struct {
		name    string
		mutate  func(*RegisterParams)
		message string
	}{
		{
			name:    "short username",
			mutate:  func(p *RegisterParams) { p.Username = "ab" },
			message: "Benutzername muss zwischen 3 und 50 Zeichen",
		},
		{
			name:    "invalid email",
			mutate:  func(p *RegisterParams) { p.Email = "not-an-email" },
			message: "Ungültige E-Mail-Adresse.",
		},
		{
			name:    "weak password",
			mutate:  func(p *RegisterParams) { p.Password = "nurklein" },
			message: "Das Passwort muss mindestens 8 Zeichen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validRegisterParams(7)
			tt.mutate(&params)

			err := svc.Register(context.Background(), sessionWithCaptcha(7), params)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrCodeValidation, apperrors.GetCode(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRegisterNormalizesUsernameAndEmail(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(nil, nil)

	sender := &fakeSender{}
	svc := newTestAuthService(t, users, sender)

	captcha := 7
	sess := sessionWithCaptcha(7)
	err := svc.Register(context.Background(), sess, RegisterParams{
		Username: "  maxmuster ",
		Email:    "Max@Example.COM",
		Password: "Sicher#123",
		Captcha:  &captcha,
	})
	require.NoError(t, err)

	require.NotNil(t, sess.PendingRegistration)
	assert.Equal(t, "maxmuster", sess.PendingRegistration.Username)
	assert.Equal(t, "max@example.com", sess.PendingRegistration.Email)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "max@example.com", sender.sent[0].to)
	users.AssertExpectations(t)
}

func TestRegisterCaseInsensitiveEmailConflict(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "anderer", "max@example.com").
		Return(&model.User{ID: 1, Email: "max@example.com"}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	captcha := 7
	err := svc.Register(context.Background(), sessionWithCaptcha(7), RegisterParams{
		Username: "anderer",
		Email:    "Max@Example.com",
		Password: "Sicher#123",
		Captcha:  &captcha,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	users.AssertExpectations(t)
}

func TestLoginTrimsUsername(t *testing.T) {
	hash, err := util.HashPassword("Richtig#123")
	require.NoError(t, err)

	users := &mockUserRepo{}
	users.On("FindByUsername", mock.Anything, "maxmuster").
		Return(&model.User{ID: 1, Username: "maxmuster", PasswordHash: hash}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	user, err := svc.Login(context.Background(), &session.Session{}, " maxmuster ", "Richtig#123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	users.AssertExpectations(t)
}

func TestRegisterConflict(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(&model.User{ID: 1, Username: "maxmuster"}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	err := svc.Register(context.Background(), sessionWithCaptcha(7), validRegisterParams(7))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	users.AssertExpectations(t)
}

func TestRegisterParksPendingAndMailsCode(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(nil, nil)

	sender := &fakeSender{}
	svc := newTestAuthService(t, users, sender)

	sess := sessionWithCaptcha(7)
	err := svc.Register(context.Background(), sess, validRegisterParams(7))
	require.NoError(t, err)

	require.NotNil(t, sess.PendingRegistration)
	assert.Equal(t, "maxmuster", sess.PendingRegistration.Username)
	assert.Regexp(t, `^\d{6}$`, sess.PendingRegistration.Code)
	assert.True(t, sess.PendingRegistration.ExpiresAt.After(time.Now()))
	assert.True(t, util.CheckPasswordHash("Sicher#123", sess.PendingRegistration.PasswordHash))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "max@example.com", sender.sent[0].to)
	assert.Equal(t, "Ihr Verifizierungscode", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, sess.PendingRegistration.Code)
}

func TestRegisterRollsBackOnMailFailure(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(nil, nil)

	sender := &fakeSender{err: errors.New("smtp down")}
	svc := newTestAuthService(t, users, sender)

	sess := sessionWithCaptcha(7)
	err := svc.Register(context.Background(), sess, validRegisterParams(7))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeEmailDelivery, apperrors.GetCode(err))
	assert.Nil(t, sess.PendingRegistration)
}

func pendingSession(code string, expiresAt time.Time) *session.Session {
	hash, _ := util.HashPassword("Sicher#123")
	return &session.Session{
		PendingRegistration: &session.PendingRegistration{
			Username:     "maxmuster",
			Email:        "max@example.com",
			PasswordHash: hash,
			Code:         code,
			ExpiresAt:    expiresAt,
		},
	}
}

func TestVerifyEmailNoPending(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	_, err := svc.VerifyEmail(context.Background(), &session.Session{}, "123456")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeNoPending, apperrors.GetCode(err))
}

func TestVerifyEmailExpiredClearsPending(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	sess := pendingSession("123456", time.Now().Add(-time.Minute))
	_, err := svc.VerifyEmail(context.Background(), sess, "123456")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCodeExpired, apperrors.GetCode(err))
	assert.Nil(t, sess.PendingRegistration)
}

func TestVerifyEmailWrongCodeKeepsPending(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	sess := pendingSession("123456", time.Now().Add(time.Minute))
	_, err := svc.VerifyEmail(context.Background(), sess, "654321")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Falscher Verifizierungscode.")
	assert.NotNil(t, sess.PendingRegistration)
}

func TestVerifyEmailUsernameTakenMeanwhile(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(&model.User{ID: 2}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	sess := pendingSession("123456", time.Now().Add(time.Minute))
	_, err := svc.VerifyEmail(context.Background(), sess, "123456")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	assert.Nil(t, sess.PendingRegistration)
}

func TestVerifyEmailCreatesVerifiedUser(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(nil, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateUserParams) bool {
		return p.Username == "maxmuster" && p.EmailVerified
	})).Return(&model.User{ID: 1, Username: "maxmuster", EmailVerified: true}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	sess := pendingSession("123456", time.Now().Add(time.Minute))
	user, err := svc.VerifyEmail(context.Background(), sess, "123456")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Nil(t, sess.PendingRegistration)
	users.AssertExpectations(t)
}

func TestLoginUnknownUserGenericError(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsername", mock.Anything, "niemand").Return(nil, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	_, err := svc.Login(context.Background(), &session.Session{}, "niemand", "Sicher#123")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "Benutzername oder Passwort falsch.")
}

func TestLoginWrongPasswordGenericError(t *testing.T) {
	hash, err := util.HashPassword("Richtig#123")
	require.NoError(t, err)

	users := &mockUserRepo{}
	users.On("FindByUsername", mock.Anything, "maxmuster").
		Return(&model.User{ID: 1, Username: "maxmuster", PasswordHash: hash}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	_, err = svc.Login(context.Background(), &session.Session{}, "maxmuster", "Falsch#123")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.GetCode(err))
	assert.Contains(t, err.Error(), "Benutzername oder Passwort falsch.")
}

func TestLoginSuccessRotatesCSRFToken(t *testing.T) {
	hash, err := util.HashPassword("Richtig#123")
	require.NoError(t, err)

	users := &mockUserRepo{}
	users.On("FindByUsername", mock.Anything, "maxmuster").
		Return(&model.User{ID: 1, Username: "maxmuster", PasswordHash: hash}, nil)

	svc := newTestAuthService(t, users, &fakeSender{})

	sess := &session.Session{CSRFToken: "old-token"}
	user, err := svc.Login(context.Background(), sess, "maxmuster", "Richtig#123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	require.NotNil(t, sess.UserID)
	assert.Equal(t, int64(1), *sess.UserID)
	assert.Equal(t, "maxmuster", sess.Username)
	assert.NotEmpty(t, sess.CSRFToken)
	assert.NotEqual(t, "old-token", sess.CSRFToken)
}

func TestLogoutClearsAuthenticatedState(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	userID := int64(1)
	sess := &session.Session{UserID: &userID, Username: "maxmuster"}
	svc.Logout(sess)
	assert.Nil(t, sess.UserID)
	assert.Empty(t, sess.Username)
}

func TestStatus(t *testing.T) {
	svc := newTestAuthService(t, &mockUserRepo{}, &fakeSender{})

	assert.Equal(t, AuthStatus{}, svc.Status(nil))

	userID := int64(1)
	status := svc.Status(&session.Session{UserID: &userID, Username: "maxmuster"})
	assert.True(t, status.LoggedIn)
	assert.Equal(t, "maxmuster", status.Username)
	assert.False(t, status.PendingVerification)

	status = svc.Status(pendingSession("123456", time.Now().Add(time.Minute)))
	assert.False(t, status.LoggedIn)
	assert.True(t, status.PendingVerification)
}
