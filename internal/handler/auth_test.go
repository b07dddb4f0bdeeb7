package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/redis"
	"github.com/teammanager/server-go/internal/service"
	"github.com/teammanager/server-go/internal/session"
)

// testRedis connects to DB 15 on localhost and skips the test when no
// Redis instance is reachable.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	opts, err := goredis.ParseURL("redis://localhost:6379/15")
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available for testing")
	}
	client.FlushDB(context.Background())
	t.Cleanup(func() { client.Close() })

	return &redis.Client{Client: client}
}

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
	sent int
}

func (f *fakeSender) Send(to, subject, body string) error {
	f.sent++
	return nil
}

// newAuthTestServer wires the auth routes behind the session middleware,
// the same chain main.go builds, against a live Redis session store.
func newAuthTestServer(t *testing.T, users *mockUserRepo) (http.Handler, *session.Store) {
	t.Helper()

	store := session.NewStore(testRedis(t), "test-secret", time.Minute, zerolog.Nop())

	svc, err := service.NewAuthService(users, &fakeSender{}, 10*time.Minute)
	require.NoError(t, err)

	handler := NewAuthHandler(svc, store, false)
	return middleware.NewSessionMiddleware(store).Handler(handler.Routes()), store
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestCaptchaIssuesCSRFToken(t *testing.T) {
	srv, _ := newAuthTestServer(t, &mockUserRepo{})

	req := httptest.NewRequest(http.MethodGet, "/captcha", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Regexp(t, `^Was ist \d+ \+ \d+\?$`, body["question"])
	assert.NotEmpty(t, body["csrfToken"])

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie, "captcha request should establish a session")

	// The token is stable across requests on the same session; only the
	// captcha question changes.
	req2 := httptest.NewRequest(http.MethodGet, "/captcha", nil)
	req2.AddCookie(cookie)
	rec2 := httptest.NewRecorder()
	srv.ServeHTTP(rec2, req2)

	require.Equal(t, http.StatusOK, rec2.Code)
	var body2 map[string]string
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &body2))
	assert.Equal(t, body["csrfToken"], body2["csrfToken"])
}

func TestRegisterRespondsPending(t *testing.T) {
	users := &mockUserRepo{}
	users.On("FindByUsernameOrEmail", mock.Anything, "maxmuster", "max@example.com").
		Return(nil, nil)

	srv, store := newAuthTestServer(t, users)

	// Establish a session with a known captcha answer.
	token, sess, err := store.New(context.Background())
	require.NoError(t, err)
	answer := 9
	sess.CaptchaAnswer = &answer
	require.NoError(t, store.Save(context.Background(), token, sess))

	payload, err := json.Marshal(map[string]any{
		"username": "maxmuster",
		"email":    "max@example.com",
		"password": "Sicher#123",
		"captcha":  9,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "pending", body["status"])
	assert.Contains(t, body["message"], "Verifizierungscode")

	// The registration is parked in the session, no user row exists yet.
	saved, err := store.Get(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.NotNil(t, saved.PendingRegistration)
	assert.Equal(t, "maxmuster", saved.PendingRegistration.Username)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
