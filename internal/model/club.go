package model

import "time"

type Club struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Logo      []byte    `db:"logo" json:"-"`
	LogoMime  *string   `db:"logo_mime" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ClubSummary is the list/dashboard projection without the logo blob.
type ClubSummary struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ClubMember is the member list projection with user details joined in.
type ClubMember struct {
	UserID    int64     `db:"user_id" json:"userId"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"memberSince"`
}

type ClubMembership struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	ClubID    int64     `db:"club_id" json:"clubId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Sport struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	ClubID    int64     `db:"club_id" json:"clubId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Team struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	SportID   int64     `db:"sport_id" json:"sportId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Venue struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Address     *string   `db:"address" json:"address,omitempty"`
	Coordinates *string   `db:"coordinates" json:"coordinates,omitempty"`
	MapLink     *string   `db:"map_link" json:"mapLink,omitempty"`
	ClubID      int64     `db:"club_id" json:"clubId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type VenueParams struct {
	Name        string  `json:"name"`
	Address     *string `json:"address"`
	Coordinates *string `json:"coordinates"`
	MapLink     *string `json:"mapLink"`
}

type Player struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"userId"`
	TeamID       int64     `db:"team_id" json:"teamId"`
	JerseyNumber *int      `db:"jersey_number" json:"jerseyNumber,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	Username     string    `db:"username" json:"username"`
}

// TeamTrainer links a trainer user to a team.
type TeamTrainer struct {
	ID       int64  `db:"id" json:"id"`
	TeamID   int64  `db:"team_id" json:"teamId"`
	UserID   int64  `db:"user_id" json:"userId"`
	Username string `db:"username" json:"username"`
}
