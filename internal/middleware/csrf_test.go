package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teammanager/server-go/internal/session"
)

func csrfRequest(method, token string, sess *session.Session) *http.Request {
	r := httptest.NewRequest(method, "/api/clubs", nil)
	if token != "" {
		r.Header.Set(CSRFHeaderName, token)
	}
	if sess != nil {
		ctx := context.WithValue(r.Context(), SessionContextKey, sess)
		r = r.WithContext(ctx)
	}
	return r
}

func runCSRF(t *testing.T, r *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	NewCSRFMiddleware().Handler(next).ServeHTTP(w, r)
	return w, called
}

func TestCSRFSafeMethodsPass(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		w, called := runCSRF(t, csrfRequest(method, "", nil))
		assert.True(t, called, method)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestCSRFRejectsWithoutSession(t *testing.T) {
	w, called := runCSRF(t, csrfRequest(http.MethodPost, "some-token", nil))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFRejectsMissingHeader(t *testing.T) {
	sess := &session.Session{CSRFToken: "stored-token"}
	w, called := runCSRF(t, csrfRequest(http.MethodPost, "", sess))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFRejectsMismatch(t *testing.T) {
	sess := &session.Session{CSRFToken: "stored-token"}
	w, called := runCSRF(t, csrfRequest(http.MethodPost, "other-token", sess))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFRejectsSessionWithoutToken(t *testing.T) {
	sess := &session.Session{}
	w, called := runCSRF(t, csrfRequest(http.MethodPost, "anything", sess))
	assert.False(t, called)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRFAcceptsMatchingToken(t *testing.T) {
	sess := &session.Session{CSRFToken: "stored-token"}
	w, called := runCSRF(t, csrfRequest(http.MethodPut, "stored-token", sess))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}
