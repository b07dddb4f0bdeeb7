package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/util"
)

const CSRFHeaderName = "X-CSRF-Token"

// CSRFMiddleware rejects state-changing requests whose X-CSRF-Token header
// does not match the token stored in the session. The token is handed out
// by the csrf-token endpoint, so it never travels in a cookie the browser
// would attach cross-site.
type CSRFMiddleware struct{}

func NewCSRFMiddleware() *CSRFMiddleware {
	return &CSRFMiddleware{}
}

func (m *CSRFMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		sess := GetSession(r.Context())
		headerToken := r.Header.Get(CSRFHeaderName)

		if sess == nil || sess.CSRFToken == "" || headerToken == "" ||
			!util.ConstantTimeEqual(sess.CSRFToken, headerToken) {
			log.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("ip", r.RemoteAddr).
				Msg("csrf validation failed")
			writeError(w, errors.CSRFInvalid())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}
