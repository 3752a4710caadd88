package service

import (
	"context"

	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/validation"
)

type AnswerService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	events    EventPublisher
}

func NewAnswerService(questions repository.QuestionRepository, answers repository.AnswerRepository, events EventPublisher) *AnswerService {
	return &AnswerService{questions: questions, answers: answers, events: events}
}

// ListForQuestion returns answers newest first. Non-admins only see active
// answers of a question that is not deleted.
func (s *AnswerService) ListForQuestion(ctx context.Context, actor models.Actor, questionID uint) ([]models.Answer, error) {
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if q.Status == models.StatusDeleted && !actor.IsAdmin() {
		return nil, models.NewNotFoundError("Question", questionID)
	}
	return s.answers.ListByQuestion(ctx, questionID, visibleStatuses(actor))
}

func (s *AnswerService) Create(ctx context.Context, actor models.Actor, questionID uint, body string) (*models.Answer, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateBody(body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	q, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	switch q.Status {
	case models.StatusDeleted:
		return nil, models.NewNotFoundError("Question", questionID)
	case models.StatusFlagged:
		return nil, models.NewValidationError("Cannot answer a flagged question")
	}

	a := &models.Answer{
		QuestionID: questionID,
		UserID:     actor.UserID,
		Body:       body,
		Status:     models.StatusActive,
	}
	if err := s.answers.Create(ctx, a); err != nil {
		return nil, err
	}

	if q.UserID != actor.UserID {
		publish(ctx, s.events, q.UserID, EventAnswerCreated, map[string]any{
			"question_id": q.ID,
			"answer_id":   a.ID,
			"title":       q.Title,
		})
	}
	return s.answers.GetByID(ctx, a.ID)
}

func (s *AnswerService) Update(ctx context.Context, actor models.Actor, id uint, body string) (*models.Answer, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	a, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckEditable(actor, "Answer", id, a.UserID, a.Status); err != nil {
		return nil, err
	}
	if err := validation.ValidateBody(body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := s.answers.Update(ctx, id, map[string]any{"body": body}); err != nil {
		return nil, err
	}
	return s.answers.GetByID(ctx, id)
}

func (s *AnswerService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	a, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status == models.StatusDeleted {
		return models.NewNotFoundError("Answer", id)
	}
	if !CanModify(actor, a.UserID) {
		return models.NewForbiddenError("Not authorized")
	}
	return s.answers.SetStatus(ctx, id, models.StatusDeleted)
}

func (s *AnswerService) ChangeStatus(ctx context.Context, actor models.Actor, id uint, status models.ContentStatus) (*models.Answer, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}
	a, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckStatusChange(actor, a.UserID, a.Status, status); err != nil {
		return nil, err
	}
	if err := s.answers.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	return a, nil
}

// ToggleAccept flips the accepted mark. Only the question owner or an admin
// may do it, and only on an active answer.
func (s *AnswerService) ToggleAccept(ctx context.Context, actor models.Actor, id uint) (*models.Answer, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	a, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == models.StatusDeleted {
		return nil, models.NewNotFoundError("Answer", id)
	}
	q, err := s.questions.GetByID(ctx, a.QuestionID)
	if err != nil {
		return nil, err
	}
	if !CanModify(actor, q.UserID) {
		return nil, models.NewForbiddenError("Only the question owner can accept an answer")
	}
	if !a.IsAccepted && a.Status != models.StatusActive {
		return nil, models.NewValidationError("Only active answers can be accepted")
	}

	if err := s.answers.SetAccepted(ctx, a, !a.IsAccepted); err != nil {
		return nil, err
	}
	if a.IsAccepted && a.UserID != actor.UserID {
		publish(ctx, s.events, a.UserID, EventAnswerAccepted, map[string]any{
			"question_id": q.ID,
			"answer_id":   a.ID,
			"title":       q.Title,
		})
	}
	return a, nil
}

// ListOwn returns the actor's non-deleted answers with their question titles.
func (s *AnswerService) ListOwn(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Answer, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.answers.ListByUser(ctx, actor.UserID, limit, offset)
}
