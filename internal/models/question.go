package models

import "time"

// Question is a forum question owned by a user.
type Question struct {
	ID     uint          `gorm:"primaryKey" json:"id"`
	UserID uint          `gorm:"not null;index" json:"user_id"`
	User   *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Title  string        `gorm:"size:300;not null" json:"title"`
	Body   string        `gorm:"type:text;not null" json:"body"`
	Status ContentStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	// Tags is loaded through question_tags, never persisted directly.
	Tags []Tag `gorm:"-" json:"tags"`
	// AnswerCount and Score are computed at query time
	AnswerCount int64     `gorm:"->;-:migration" json:"answer_count"`
	Score       int64     `gorm:"->;-:migration" json:"score"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Answer is a reply to exactly one question.
type Answer struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	QuestionID uint          `gorm:"not null;index" json:"question_id"`
	UserID     uint          `gorm:"not null;index" json:"user_id"`
	User       *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Body       string        `gorm:"type:text;not null" json:"body"`
	Status     ContentStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	IsAccepted bool          `gorm:"not null;default:false;index" json:"is_accepted"`
	Score      int64         `gorm:"->;-:migration" json:"score"`
	// QuestionTitle is filled only when listing a user's answers.
	QuestionTitle string    `gorm:"->;-:migration" json:"question_title,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
