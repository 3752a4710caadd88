package models

import (
	"strings"
	"time"
)

// Tag is a normalized topic label.
type Tag struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	QuestionCount int64     `gorm:"->;-:migration" json:"question_count,omitempty"`
	AnswerCount   int64     `gorm:"->;-:migration" json:"answer_count,omitempty"`
	UseCount      int64     `gorm:"->;-:migration" json:"use_count,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// QuestionTag links a question to a tag. The pair is the primary key.
type QuestionTag struct {
	QuestionID uint      `gorm:"primaryKey;autoIncrement:false" json:"question_id"`
	TagID      uint      `gorm:"primaryKey;autoIncrement:false;index" json:"tag_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NormalizeTag lowercases and trims a tag name.
func NormalizeTag(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
