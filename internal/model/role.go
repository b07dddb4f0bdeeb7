package model

import "time"

type Role string

const (
	RolePortalAdmin     Role = "PortalAdmin"
	RoleVereinsAdmin    Role = "VereinsAdmin"
	RoleTrainer         Role = "Trainer"
	RoleVereinsmitglied Role = "Vereinsmitglied"
	RoleSpieler         Role = "Spieler"
)

// InvitableRoles are the roles an invitation may grant. PortalAdmin is
// excluded: it is never club-scoped and cannot be handed out per club.
var InvitableRoles = []Role{RoleVereinsAdmin, RoleTrainer, RoleVereinsmitglied, RoleSpieler}

func IsInvitableRole(r Role) bool {
	for _, v := range InvitableRoles {
		if r == v {
			return true
		}
	}
	return false
}

// RoleAssignment grants a role, optionally scoped to a club, sport or team.
// PortalAdmin assignments carry no scope and apply everywhere.
type RoleAssignment struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	Role      Role      `db:"role" json:"role"`
	ClubID    *int64    `db:"club_id" json:"clubId,omitempty"`
	SportID   *int64    `db:"sport_id" json:"sportId,omitempty"`
	TeamID    *int64    `db:"team_id" json:"teamId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
