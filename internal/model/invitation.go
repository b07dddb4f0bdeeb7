package model

import "time"

// Invitation is a single-use role grant bound to an email and a club.
// It becomes void once accepted.
type Invitation struct {
	ID        int64     `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Role      Role      `db:"role" json:"role"`
	ClubID    int64     `db:"club_id" json:"clubId"`
	Code      string    `db:"code" json:"-"`
	InvitedBy int64     `db:"invited_by" json:"invitedBy"`
	Accepted  bool      `db:"accepted" json:"accepted"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	ClubName  string    `db:"club_name" json:"clubName,omitempty"`
}

type CreateInvitationParams struct {
	Email     string
	Role      Role
	ClubID    int64
	Code      string
	InvitedBy int64
}
