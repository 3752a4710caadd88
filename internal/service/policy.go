// Package service holds the forum's business rules. Every mutating call
// takes the acting identity as an explicit models.Actor.
package service

import (
	"context"
	"log/slog"

	"stackit/internal/models"
)

// Notification event types delivered to users.
const (
	EventAnswerCreated  = "answer.created"
	EventAnswerAccepted = "answer.accepted"
	EventUserPromoted   = "user.promoted"
)

// EventPublisher delivers a user-scoped notification.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, eventType string, payload any) error
}

func publish(ctx context.Context, events EventPublisher, userID uint, eventType string, payload any) {
	if events == nil || userID == 0 {
		return
	}
	if err := events.PublishEvent(ctx, userID, eventType, payload); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			slog.String("event", eventType),
			slog.Uint64("recipient_id", uint64(userID)),
			slog.String("error", err.Error()),
		)
	}
}

// CanModify reports whether actor owns the item or is an admin.
func CanModify(actor models.Actor, ownerID uint) bool {
	if actor.IsAdmin() {
		return true
	}
	return !actor.IsGuest() && actor.UserID == ownerID
}

// CheckStatusChange decides whether actor may move an item from current to target.
func CheckStatusChange(actor models.Actor, ownerID uint, current, target models.ContentStatus) error {
	if !target.Valid() {
		return models.NewValidationError("Invalid status")
	}
	if current.Restricted() && !actor.IsAdmin() {
		return models.NewForbiddenError("Only admins can change the status of flagged or deleted content")
	}
	if !CanModify(actor, ownerID) {
		return models.NewForbiddenError("Not authorized")
	}
	return nil
}

// CheckEditable guards content edits and soft deletes. Deleted items are
// reported as missing; flagged items are admin-only.
func CheckEditable(actor models.Actor, resource string, id, ownerID uint, status models.ContentStatus) error {
	if status == models.StatusDeleted {
		return models.NewNotFoundError(resource, id)
	}
	if !CanModify(actor, ownerID) {
		return models.NewForbiddenError("Not authorized")
	}
	if status == models.StatusFlagged && !actor.IsAdmin() {
		return models.NewForbiddenError("Flagged content can only be edited by an admin")
	}
	return nil
}

func requireMember(actor models.Actor) error {
	if actor.IsGuest() {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}

func requireAdmin(actor models.Actor) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

// visibleStatuses lists the content states a listing may show to actor.
func visibleStatuses(actor models.Actor) []models.ContentStatus {
	if actor.IsAdmin() {
		return nil
	}
	return []models.ContentStatus{models.StatusActive}
}
