package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/session"
)

// Mock repositories
type mockRoleRepo struct {
	mock.Mock
}

func (m *mockRoleRepo) FindByUserID(ctx context.Context, userID int64) ([]model.RoleAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RoleAssignment), args.Error(1)
}

func (m *mockRoleRepo) Create(ctx context.Context, userID int64, role model.Role, clubID, sportID, teamID *int64) (*model.RoleAssignment, error) {
	args := m.Called(ctx, userID, role, clubID, sportID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleAssignment), args.Error(1)
}

func (m *mockRoleRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRoleRepo) ListTrainerIDsByTeam(ctx context.Context, teamID int64) ([]int64, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type mockClubRepo struct {
	mock.Mock
}

func (m *mockClubRepo) ListAll(ctx context.Context) ([]model.ClubSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ClubSummary), args.Error(1)
}

func (m *mockClubRepo) ListForUser(ctx context.Context, userID int64) ([]model.ClubSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ClubSummary), args.Error(1)
}

func (m *mockClubRepo) FindByID(ctx context.Context, id int64) (*model.ClubSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClubSummary), args.Error(1)
}

func (m *mockClubRepo) Create(ctx context.Context, name string) (*model.ClubSummary, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClubSummary), args.Error(1)
}

func (m *mockClubRepo) UpdateName(ctx context.Context, id int64, name string) (*model.ClubSummary, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ClubSummary), args.Error(1)
}

func (m *mockClubRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockClubRepo) SetLogo(ctx context.Context, id int64, data []byte, mimeType string) error {
	args := m.Called(ctx, id, data, mimeType)
	return args.Error(0)
}

func (m *mockClubRepo) GetLogo(ctx context.Context, id int64) (*model.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Club), args.Error(1)
}

func (m *mockClubRepo) IsMember(ctx context.Context, clubID, userID int64) (bool, error) {
	args := m.Called(ctx, clubID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockClubRepo) AddMember(ctx context.Context, clubID, userID int64) error {
	args := m.Called(ctx, clubID, userID)
	return args.Error(0)
}

func (m *mockClubRepo) RemoveMember(ctx context.Context, clubID, userID int64) error {
	args := m.Called(ctx, clubID, userID)
	return args.Error(0)
}

func (m *mockClubRepo) ListMembers(ctx context.Context, clubID int64) ([]model.ClubMember, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ClubMember), args.Error(1)
}

func loggedInRequest(userID int64, clubParam string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/clubs/"+clubParam, nil)

	sess := &session.Session{UserID: &userID, Username: "maxmuster"}
	ctx := context.WithValue(r.Context(), SessionContextKey, sess)

	if clubParam != "" {
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("clubID", clubParam)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	}
	return r.WithContext(ctx)
}

func clubScoped(role model.Role, clubID int64) model.RoleAssignment {
	return model.RoleAssignment{UserID: 1, Role: role, ClubID: &clubID}
}

func TestRequireClubAccessRejectsAnonymous(t *testing.T) {
	m := NewAccessMiddleware(&mockRoleRepo{}, &mockClubRepo{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/clubs/1", nil)
	m.RequireClubAccess(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireClubAccessRejectsBadClubID(t *testing.T) {
	m := NewAccessMiddleware(&mockRoleRepo{}, &mockClubRepo{})

	w := httptest.NewRecorder()
	m.RequireClubAccess(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(w, loggedInRequest(1, "abc"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireClubAccessRejectsNonMember(t *testing.T) {
	roles := &mockRoleRepo{}
	roles.On("FindByUserID", mock.Anything, int64(1)).Return([]model.RoleAssignment{}, nil)
	clubs := &mockClubRepo{}
	clubs.On("IsMember", mock.Anything, int64(5), int64(1)).Return(false, nil)

	m := NewAccessMiddleware(roles, clubs)

	w := httptest.NewRecorder()
	m.RequireClubAccess(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(w, loggedInRequest(1, "5"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	clubs.AssertExpectations(t)
}

func TestRequireClubAccessAllowsMemberAndSetsContext(t *testing.T) {
	roles := &mockRoleRepo{}
	roles.On("FindByUserID", mock.Anything, int64(1)).
		Return([]model.RoleAssignment{clubScoped(model.RoleSpieler, 5)}, nil)
	clubs := &mockClubRepo{}
	clubs.On("IsMember", mock.Anything, int64(5), int64(1)).Return(true, nil)

	m := NewAccessMiddleware(roles, clubs)

	w := httptest.NewRecorder()
	m.RequireClubAccess(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clubID, ok := GetClubID(r.Context())
		assert.True(t, ok)
		assert.Equal(t, int64(5), clubID)
		assert.Len(t, GetAssignments(r.Context()), 1)
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, loggedInRequest(1, "5"))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireClubAccessPortalAdminSkipsMembership(t *testing.T) {
	roles := &mockRoleRepo{}
	roles.On("FindByUserID", mock.Anything, int64(1)).
		Return([]model.RoleAssignment{{UserID: 1, Role: model.RolePortalAdmin}}, nil)
	clubs := &mockClubRepo{}

	m := NewAccessMiddleware(roles, clubs)

	w := httptest.NewRecorder()
	m.RequireClubAccess(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, loggedInRequest(1, "5"))

	assert.Equal(t, http.StatusOK, w.Code)
	clubs.AssertNotCalled(t, "IsMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequireRoleDeniesMissingRole(t *testing.T) {
	roles := &mockRoleRepo{}
	roles.On("FindByUserID", mock.Anything, int64(1)).
		Return([]model.RoleAssignment{clubScoped(model.RoleSpieler, 5)}, nil)

	m := NewAccessMiddleware(roles, &mockClubRepo{})

	w := httptest.NewRecorder()
	m.RequireRole(model.RoleVereinsAdmin)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(w, loggedInRequest(1, ""))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleScopedToClub(t *testing.T) {
	m := NewAccessMiddleware(&mockRoleRepo{}, &mockClubRepo{})

	handler := m.RequireRole(model.RoleVereinsAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Admin of club 5, acting inside club 5: allowed.
	r := loggedInRequest(1, "5")
	ctx := context.WithValue(r.Context(), ClubIDContextKey, int64(5))
	ctx = context.WithValue(ctx, AssignmentsContextKey, []model.RoleAssignment{clubScoped(model.RoleVereinsAdmin, 5)})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))
	assert.Equal(t, http.StatusOK, w.Code)

	// Same assignment inside club 9: denied.
	r = loggedInRequest(1, "9")
	ctx = context.WithValue(r.Context(), ClubIDContextKey, int64(9))
	ctx = context.WithValue(ctx, AssignmentsContextKey, []model.RoleAssignment{clubScoped(model.RoleVereinsAdmin, 5)})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r.WithContext(ctx))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolePortalAdminAlwaysPasses(t *testing.T) {
	m := NewAccessMiddleware(&mockRoleRepo{}, &mockClubRepo{})

	r := loggedInRequest(1, "5")
	ctx := context.WithValue(r.Context(), ClubIDContextKey, int64(5))
	ctx = context.WithValue(ctx, AssignmentsContextKey, []model.RoleAssignment{{UserID: 1, Role: model.RolePortalAdmin}})

	w := httptest.NewRecorder()
	m.RequireRole(model.RoleVereinsAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(w, r.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
}
