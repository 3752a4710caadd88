package repository

import (
	"context"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// Question list orderings.
const (
	SortNewest     = "newest"
	SortVotes      = "votes"
	SortUnanswered = "unanswered"
)

// QuestionFilter narrows a question listing.
type QuestionFilter struct {
	Statuses []models.ContentStatus
	UserID   uint
	Tag      string
	Query    string
	Sort     string
	Limit    int
	Offset   int
}

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context, f QuestionFilter) ([]models.Question, error)
	Update(ctx context.Context, id uint, updates map[string]any) error
	SetStatus(ctx context.Context, id uint, status models.ContentStatus) error
	HardDelete(ctx context.Context, id uint) error
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	return nil
}

// applyQuestionDetails adds answer_count and score subqueries.
func applyQuestionDetails(db *gorm.DB) *gorm.DB {
	return db.Select("questions.*, " +
		"(SELECT COUNT(*) FROM answers WHERE answers.question_id = questions.id AND answers.status = 'active') AS answer_count, " +
		"(SELECT COALESCE(SUM(votes.value), 0) FROM votes WHERE votes.target_id = questions.id AND votes.target_type = 'question') AS score")
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := applyQuestionDetails(r.db.WithContext(ctx)).
		Preload("User", authorColumns).
		Where("questions.id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, lookupError(err, "Question", id)
	}

	tags, err := tagsForQuestions(ctx, r.db, []uint{q.ID})
	if err != nil {
		return nil, err
	}
	q.Tags = nonNilTags(tags[q.ID])
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context, f QuestionFilter) ([]models.Question, error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	query := applyQuestionDetails(r.db.WithContext(ctx)).Preload("User", authorColumns)
	if len(f.Statuses) > 0 {
		query = query.Where("questions.status IN ?", f.Statuses)
	}
	if f.UserID != 0 {
		query = query.Where("questions.user_id = ?", f.UserID)
	}
	if tag := models.NormalizeTag(f.Tag); tag != "" {
		query = query.Where("EXISTS (SELECT 1 FROM question_tags JOIN tags ON tags.id = question_tags.tag_id "+
			"WHERE question_tags.question_id = questions.id AND tags.name = ?)", tag)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Query)); term != "" {
		like := "%" + term + "%"
		query = query.Where("(LOWER(questions.title) LIKE ? OR LOWER(questions.body) LIKE ?)", like, like)
	}

	switch f.Sort {
	case SortVotes:
		query = query.Order("score DESC").Order("questions.created_at DESC")
	case SortUnanswered:
		query = query.Where("NOT EXISTS (SELECT 1 FROM answers WHERE answers.question_id = questions.id AND answers.status = 'active')").
			Order("questions.created_at DESC")
	default:
		query = query.Order("questions.created_at DESC")
	}

	var questions []models.Question
	if err := query.Order("questions.id DESC").Limit(limit).Offset(offset).Find(&questions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := attachTags(ctx, r.db, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) Update(ctx context.Context, id uint, updates map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Question", id)
	}
	return nil
}

func (r *questionRepository) SetStatus(ctx context.Context, id uint, status models.ContentStatus) error {
	if err := r.Update(ctx, id, map[string]any{"status": status}); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.AdminStatsKey)
	cache.InvalidateTrending(ctx)
	return nil
}

// HardDelete removes the question, its answers, tag links, votes and reports.
func (r *questionRepository) HardDelete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answerIDs []uint
		if err := tx.Model(&models.Answer{}).Where("question_id = ?", id).Pluck("id", &answerIDs).Error; err != nil {
			return err
		}

		if len(answerIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetAnswer, answerIDs).Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetAnswer, answerIDs).Delete(&models.Report{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetQuestion, id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetQuestion, id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", id).Delete(&models.QuestionTag{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return lookupError(err, "Question", id)
	}

	cache.Invalidate(ctx, cache.AdminStatsKey)
	cache.InvalidateTrending(ctx)
	return nil
}

func attachTags(ctx context.Context, db *gorm.DB, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	ids := make([]uint, len(questions))
	for i := range questions {
		ids[i] = questions[i].ID
	}
	byQuestion, err := tagsForQuestions(ctx, db, ids)
	if err != nil {
		return err
	}
	for i := range questions {
		questions[i].Tags = nonNilTags(byQuestion[questions[i].ID])
	}
	return nil
}

func nonNilTags(tags []models.Tag) []models.Tag {
	if tags == nil {
		return []models.Tag{}
	}
	return tags
}
