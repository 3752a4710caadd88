package repository

import (
	"context"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// VoteRepository defines persistence operations for votes.
type VoteRepository interface {
	Create(ctx context.Context, v *models.Vote) error
	Delete(ctx context.Context, userID, targetID uint, targetType models.TargetType) error
	Score(ctx context.Context, targetID uint, targetType models.TargetType) (int64, error)
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Create inserts a vote; the (user, target, type) unique index turns a
// second vote into a conflict.
func (r *voteRepository) Create(ctx context.Context, v *models.Vote) error {
	if err := r.db.WithContext(ctx).Create(v).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("You have already voted on this item", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, userID, targetID uint, targetType models.TargetType) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ? AND target_type = ?", userID, targetID, targetType).
		Delete(&models.Vote{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Vote", targetID)
	}
	return nil
}

func (r *voteRepository) Score(ctx context.Context, targetID uint, targetType models.TargetType) (int64, error) {
	var score int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("target_id = ? AND target_type = ?", targetID, targetType).
		Scan(&score).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return score, nil
}
