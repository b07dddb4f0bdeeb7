package model

import "time"

type MessageTarget string

const (
	TargetUser     MessageTarget = "user"
	TargetTeam     MessageTarget = "team"
	TargetClub     MessageTarget = "club"
	TargetSport    MessageTarget = "sport"
	TargetGame     MessageTarget = "game"
	TargetTraining MessageTarget = "training"
)

func (t MessageTarget) Valid() bool {
	switch t {
	case TargetUser, TargetTeam, TargetClub, TargetSport, TargetGame, TargetTraining:
		return true
	}
	return false
}

type Message struct {
	ID         int64         `db:"id" json:"id"`
	SenderID   int64         `db:"sender_id" json:"senderId"`
	Subject    *string       `db:"subject" json:"subject,omitempty"`
	Body       string        `db:"body" json:"body"`
	TargetType MessageTarget `db:"target_type" json:"targetType"`
	TargetID   int64         `db:"target_id" json:"targetId"`
	ParentID   *int64        `db:"parent_id" json:"parentId,omitempty"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	SenderName string        `db:"sender_name" json:"senderName"`
}

// InboxEntry is a received message with the per-recipient read marker.
type InboxEntry struct {
	Message
	IsRead bool `db:"is_read" json:"isRead"`
}

type CreateMessageParams struct {
	SenderID   int64
	Subject    *string
	Body       string
	TargetType MessageTarget
	TargetID   int64
	ParentID   *int64
}
