package repository

import (
	"context"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// AnswerRepository defines persistence operations for answers.
type AnswerRepository interface {
	Create(ctx context.Context, a *models.Answer) error
	GetByID(ctx context.Context, id uint) (*models.Answer, error)
	ListByQuestion(ctx context.Context, questionID uint, statuses []models.ContentStatus) ([]models.Answer, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Answer, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	SetStatus(ctx context.Context, id uint, status models.ContentStatus) error
	SetAccepted(ctx context.Context, answer *models.Answer, accepted bool) error
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a new answer repository.
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, a *models.Answer) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(a).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return nil
}

func applyAnswerDetails(db *gorm.DB) *gorm.DB {
	return db.Select("answers.*, " +
		"(SELECT COALESCE(SUM(votes.value), 0) FROM votes WHERE votes.target_id = answers.id AND votes.target_type = 'answer') AS score")
}

func (r *answerRepository) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	var a models.Answer
	err := applyAnswerDetails(r.db.WithContext(ctx)).
		Preload("User", authorColumns).
		Where("answers.id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, lookupError(err, "Answer", id)
	}
	return &a, nil
}

func (r *answerRepository) ListByQuestion(ctx context.Context, questionID uint, statuses []models.ContentStatus) ([]models.Answer, error) {
	query := applyAnswerDetails(r.db.WithContext(ctx)).
		Preload("User", authorColumns).
		Where("answers.question_id = ?", questionID)
	if len(statuses) > 0 {
		query = query.Where("answers.status IN ?", statuses)
	}
	answers := []models.Answer{}
	if err := query.Order("answers.created_at DESC").Order("answers.id DESC").Find(&answers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

// ListByUser returns the user's non-deleted answers with their question title.
func (r *answerRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Answer, error) {
	limit, offset = clampPage(limit, offset)
	answers := []models.Answer{}
	err := r.db.WithContext(ctx).
		Select("answers.*, questions.title AS question_title, " +
			"(SELECT COALESCE(SUM(votes.value), 0) FROM votes WHERE votes.target_id = answers.id AND votes.target_type = 'answer') AS score").
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.user_id = ? AND answers.status <> ?", userID, models.StatusDeleted).
		Order("answers.created_at DESC").
		Order("answers.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&answers).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return answers, nil
}

func (r *answerRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Answer{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Answer", id)
	}
	return nil
}

func (r *answerRepository) SetStatus(ctx context.Context, id uint, status models.ContentStatus) error {
	if err := r.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return nil
}

// SetAccepted marks or unmarks an answer. Accepting clears any other
// accepted answer on the same question.
func (r *answerRepository) SetAccepted(ctx context.Context, answer *models.Answer, accepted bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if accepted {
			if err := tx.Model(&models.Answer{}).
				Where("question_id = ? AND id <> ? AND is_accepted = ?", answer.QuestionID, answer.ID, true).
				Update("is_accepted", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Answer{}).Where("id = ?", answer.ID).Update("is_accepted", accepted).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	answer.IsAccepted = accepted
	return nil
}
