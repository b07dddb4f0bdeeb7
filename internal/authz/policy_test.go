package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teammanager/server-go/internal/model"
)

func ptr(v int64) *int64 { return &v }

func TestIsPortalAdmin(t *testing.T) {
	tests := []struct {
		name        string
		assignments []model.RoleAssignment
		want        bool
	}{
		{
			name: "unscoped portal admin",
			assignments: []model.RoleAssignment{
				{Role: model.RolePortalAdmin},
			},
			want: true,
		},
		{
			name: "club scoped portal admin does not count",
			assignments: []model.RoleAssignment{
				{Role: model.RolePortalAdmin, ClubID: ptr(3)},
			},
			want: false,
		},
		{
			name: "other roles",
			assignments: []model.RoleAssignment{
				{Role: model.RoleVereinsAdmin, ClubID: ptr(3)},
				{Role: model.RoleTrainer},
			},
			want: false,
		},
		{
			name: "no assignments",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPortalAdmin(tt.assignments))
		})
	}
}

func TestHasRole(t *testing.T) {
	tests := []struct {
		name        string
		assignments []model.RoleAssignment
		required    []model.Role
		clubID      *int64
		want        bool
	}{
		{
			name: "portal admin passes any check",
			assignments: []model.RoleAssignment{
				{Role: model.RolePortalAdmin},
			},
			required: []model.Role{model.RoleTrainer},
			clubID:   ptr(9),
			want:     true,
		},
		{
			name: "matching role same club",
			assignments: []model.RoleAssignment{
				{Role: model.RoleVereinsAdmin, ClubID: ptr(5)},
			},
			required: []model.Role{model.RoleVereinsAdmin},
			clubID:   ptr(5),
			want:     true,
		},
		{
			name: "matching role wrong club",
			assignments: []model.RoleAssignment{
				{Role: model.RoleVereinsAdmin, ClubID: ptr(5)},
			},
			required: []model.Role{model.RoleVereinsAdmin},
			clubID:   ptr(6),
			want:     false,
		},
		{
			name: "unscoped assignment matches any club",
			assignments: []model.RoleAssignment{
				{Role: model.RoleTrainer},
			},
			required: []model.Role{model.RoleTrainer},
			clubID:   ptr(12),
			want:     true,
		},
		{
			name: "scoped assignment accepted without club context",
			assignments: []model.RoleAssignment{
				{Role: model.RoleTrainer, ClubID: ptr(12)},
			},
			required: []model.Role{model.RoleTrainer},
			want:     true,
		},
		{
			name: "role not in required set",
			assignments: []model.RoleAssignment{
				{Role: model.RoleSpieler, ClubID: ptr(5)},
			},
			required: []model.Role{model.RoleVereinsAdmin, model.RoleTrainer},
			clubID:   ptr(5),
			want:     false,
		},
		{
			name: "second assignment matches",
			assignments: []model.RoleAssignment{
				{Role: model.RoleSpieler, ClubID: ptr(5)},
				{Role: model.RoleTrainer, ClubID: ptr(5)},
			},
			required: []model.Role{model.RoleTrainer},
			clubID:   ptr(5),
			want:     true,
		},
		{
			name:     "no assignments",
			required: []model.Role{model.RoleVereinsmitglied},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasRole(tt.assignments, tt.required, tt.clubID))
		})
	}
}

func TestCanAccessClub(t *testing.T) {
	admin := []model.RoleAssignment{{Role: model.RolePortalAdmin}}
	member := []model.RoleAssignment{{Role: model.RoleSpieler, ClubID: ptr(1)}}

	assert.True(t, CanAccessClub(admin, false))
	assert.True(t, CanAccessClub(member, true))
	assert.False(t, CanAccessClub(member, false))
	assert.False(t, CanAccessClub(nil, false))
}
