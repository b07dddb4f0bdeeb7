package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/authz"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

const (
	ClubIDContextKey      contextKey = "clubID"
	AssignmentsContextKey contextKey = "roleAssignments"
)

// GetClubID returns the club scope established by RequireClubAccess.
func GetClubID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ClubIDContextKey).(int64)
	return id, ok
}

func GetAssignments(ctx context.Context) []model.RoleAssignment {
	if a, ok := ctx.Value(AssignmentsContextKey).([]model.RoleAssignment); ok {
		return a
	}
	return nil
}

// RequireAuth rejects requests without a logged-in session.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil || !sess.LoggedIn() {
			writeError(w, errors.Unauthorized())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AccessMiddleware enforces club membership and role requirements. It runs
// after RequireAuth, so a logged-in session is guaranteed.
type AccessMiddleware struct {
	roleRepo repository.RoleRepository
	clubRepo repository.ClubRepository
}

func NewAccessMiddleware(roleRepo repository.RoleRepository, clubRepo repository.ClubRepository) *AccessMiddleware {
	return &AccessMiddleware{roleRepo: roleRepo, clubRepo: clubRepo}
}

// RequireClubAccess resolves the {clubID} route parameter and verifies the
// user may see that club, either as unscoped PortalAdmin or as a member.
// The club ID and the user's role assignments are stored in the context for
// downstream role checks.
func (m *AccessMiddleware) RequireClubAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil || !sess.LoggedIn() {
			writeError(w, errors.Unauthorized())
			return
		}

		clubID, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
		if err != nil || clubID <= 0 {
			writeError(w, errors.ValidationError("Ungültige Vereins-ID."))
			return
		}

		assignments, err := m.roleRepo.FindByUserID(r.Context(), *sess.UserID)
		if err != nil {
			log.Error().Err(err).Int64("userId", *sess.UserID).Msg("loading role assignments failed")
			writeError(w, errors.Database(err))
			return
		}

		if !authz.IsPortalAdmin(assignments) {
			member, err := m.clubRepo.IsMember(r.Context(), clubID, *sess.UserID)
			if err != nil {
				log.Error().Err(err).Int64("clubId", clubID).Msg("membership check failed")
				writeError(w, errors.Database(err))
				return
			}
			if !member {
				writeError(w, errors.Forbidden("Kein Zugriff auf diesen Verein."))
				return
			}
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, ClubIDContextKey, clubID)
		ctx = context.WithValue(ctx, AssignmentsContextKey, assignments)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request through when the user holds one of the
// given roles. Inside a club route the check is scoped to that club.
func (m *AccessMiddleware) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil || !sess.LoggedIn() {
				writeError(w, errors.Unauthorized())
				return
			}

			assignments := GetAssignments(r.Context())
			if assignments == nil {
				var err error
				assignments, err = m.roleRepo.FindByUserID(r.Context(), *sess.UserID)
				if err != nil {
					log.Error().Err(err).Int64("userId", *sess.UserID).Msg("loading role assignments failed")
					writeError(w, errors.Database(err))
					return
				}
			}

			var clubID *int64
			if id, ok := GetClubID(r.Context()); ok {
				clubID = &id
			}

			if !authz.HasRole(assignments, roles, clubID) {
				writeError(w, errors.Forbidden("Keine ausreichenden Berechtigungen."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
