// Package authz implements role and club access decisions. The rules are
// pure functions over a user's role assignments so they can be checked
// without touching the database.
package authz

import (
	"slices"

	"github.com/teammanager/server-go/internal/model"
)

// IsPortalAdmin reports whether any assignment grants the unscoped
// platform administrator role. A club-scoped PortalAdmin row does not
// count; the role is only meaningful without a club binding.
func IsPortalAdmin(assignments []model.RoleAssignment) bool {
	for _, a := range assignments {
		if a.Role == model.RolePortalAdmin && a.ClubID == nil {
			return true
		}
	}
	return false
}

// HasRole decides whether the assignments satisfy one of the required
// roles, optionally bound to a club.
//
// An unscoped PortalAdmin always passes. Otherwise an assignment matches
// when its role is in required and, if both the assignment and the request
// carry a club, the clubs agree. Assignments without a club scope match
// any club; a required check without club context accepts scoped
// assignments too.
func HasRole(assignments []model.RoleAssignment, required []model.Role, clubID *int64) bool {
	if IsPortalAdmin(assignments) {
		return true
	}
	for _, a := range assignments {
		if !slices.Contains(required, a.Role) {
			continue
		}
		if a.ClubID != nil && clubID != nil && *a.ClubID != *clubID {
			continue
		}
		return true
	}
	return false
}

// CanAccessClub decides whether a user may operate inside a club at all.
// PortalAdmin sees every club; everyone else needs a membership row.
func CanAccessClub(assignments []model.RoleAssignment, isMember bool) bool {
	return IsPortalAdmin(assignments) || isMember
}
