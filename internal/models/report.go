package models

import "time"

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

// Report is a user complaint about a question or answer.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	UserID     uint         `gorm:"not null;index" json:"user_id"`
	TargetID   uint         `gorm:"not null;index:idx_reports_target" json:"target_id"`
	TargetType TargetType   `gorm:"size:16;not null;index:idx_reports_target" json:"target_type"`
	Reason     string       `gorm:"size:500;not null" json:"reason"`
	Status     ReportStatus `gorm:"size:16;not null;default:pending;index" json:"status"`
	ResolvedBy *uint        `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// AdminStats summarizes forum totals for the admin dashboard.
type AdminStats struct {
	Users            int64 `json:"users"`
	Admins           int64 `json:"admins"`
	BannedUsers      int64 `json:"banned_users"`
	Questions        int64 `json:"questions"`
	FlaggedQuestions int64 `json:"flagged_questions"`
	Answers          int64 `json:"answers"`
	FlaggedAnswers   int64 `json:"flagged_answers"`
	PendingReports   int64 `json:"pending_reports"`
}
