package service

import (
	"context"

	"stackit/internal/models"
	"stackit/internal/repository"
)

type VoteService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	votes     repository.VoteRepository
}

// VoteResult is the target's score after a vote change.
type VoteResult struct {
	TargetID   uint              `json:"target_id"`
	TargetType models.TargetType `json:"target_type"`
	Value      int               `json:"value,omitempty"`
	Score      int64             `json:"score"`
}

func NewVoteService(questions repository.QuestionRepository, answers repository.AnswerRepository, votes repository.VoteRepository) *VoteService {
	return &VoteService{questions: questions, answers: answers, votes: votes}
}

// ownerOfActive returns the owner of an active target, or NotFound.
func (s *VoteService) ownerOfActive(ctx context.Context, targetType models.TargetType, targetID uint) (uint, error) {
	switch targetType {
	case models.TargetQuestion:
		q, err := s.questions.GetByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if q.Status != models.StatusActive {
			return 0, models.NewNotFoundError("Question", targetID)
		}
		return q.UserID, nil
	case models.TargetAnswer:
		a, err := s.answers.GetByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if a.Status != models.StatusActive {
			return 0, models.NewNotFoundError("Answer", targetID)
		}
		return a.UserID, nil
	default:
		return 0, models.NewValidationError("Invalid target type")
	}
}

// Cast records a +1/-1 vote. A second vote on the same target is a conflict.
func (s *VoteService) Cast(ctx context.Context, actor models.Actor, targetType models.TargetType, targetID uint, value int) (*VoteResult, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if value != models.VoteUp && value != models.VoteDown {
		return nil, models.NewValidationError("Vote value must be 1 or -1")
	}
	ownerID, err := s.ownerOfActive(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	if ownerID == actor.UserID {
		return nil, models.NewForbiddenError("You cannot vote on your own content")
	}

	vote := &models.Vote{UserID: actor.UserID, TargetID: targetID, TargetType: targetType, Value: value}
	if err := s.votes.Create(ctx, vote); err != nil {
		return nil, err
	}
	score, err := s.votes.Score(ctx, targetID, targetType)
	if err != nil {
		return nil, err
	}
	return &VoteResult{TargetID: targetID, TargetType: targetType, Value: value, Score: score}, nil
}

// Retract removes the actor's vote on the target.
func (s *VoteService) Retract(ctx context.Context, actor models.Actor, targetType models.TargetType, targetID uint) (*VoteResult, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if !targetType.Valid() {
		return nil, models.NewValidationError("Invalid target type")
	}
	if err := s.votes.Delete(ctx, actor.UserID, targetID, targetType); err != nil {
		return nil, err
	}
	score, err := s.votes.Score(ctx, targetID, targetType)
	if err != nil {
		return nil, err
	}
	return &VoteResult{TargetID: targetID, TargetType: targetType, Score: score}, nil
}
