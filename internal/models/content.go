package models

// ContentStatus is the lifecycle state of a question or answer.
type ContentStatus string

const (
	StatusActive  ContentStatus = "active"
	StatusDeleted ContentStatus = "deleted"
	StatusFlagged ContentStatus = "flagged"
)

// Valid reports whether s is a known status.
func (s ContentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDeleted, StatusFlagged:
		return true
	}
	return false
}

// Restricted reports whether only admins may act on content in this state.
func (s ContentStatus) Restricted() bool {
	return s == StatusDeleted || s == StatusFlagged
}

// TargetType names the kind of content a vote or report points at.
type TargetType string

const (
	TargetQuestion TargetType = "question"
	TargetAnswer   TargetType = "answer"
)

func (t TargetType) Valid() bool {
	return t == TargetQuestion || t == TargetAnswer
}
