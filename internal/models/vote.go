package models

import "time"

const (
	VoteUp   = 1
	VoteDown = -1
)

// Vote is a signed vote by one user on one question or answer.
type Vote struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_votes_user_target" json:"user_id"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_votes_user_target;index:idx_votes_target" json:"target_id"`
	TargetType TargetType `gorm:"size:16;not null;uniqueIndex:idx_votes_user_target;index:idx_votes_target" json:"target_type"`
	Value      int        `gorm:"not null" json:"value"`
	CreatedAt  time.Time  `json:"created_at"`
}
