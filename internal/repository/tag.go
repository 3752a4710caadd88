package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"stackit/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags and question links.
type TagRepository interface {
	FindOrCreate(ctx context.Context, name string) (*models.Tag, error)
	Attach(ctx context.Context, questionID, tagID uint) error
	DetachAll(ctx context.Context, questionID uint) error
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	ListWithCounts(ctx context.Context) ([]models.Tag, error)
	Search(ctx context.Context, query string) ([]models.Tag, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]models.Tag, error)
	ForQuestions(ctx context.Context, questionIDs []uint) (map[uint][]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// FindOrCreate returns the tag with the given normalized name, creating it
// if needed. A concurrent insert of the same name is resolved by re-reading.
func (r *tagRepository) FindOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	tag = models.Tag{Name: name}
	if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
		if !isUniqueConstraintError(err) {
			return nil, models.NewInternalError(err)
		}
		if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
			return nil, lookupError(err, "Tag", name)
		}
	}
	return &tag, nil
}

func (r *tagRepository) Attach(ctx context.Context, questionID, tagID uint) error {
	link := models.QuestionTag{QuestionID: questionID, TagID: tagID}
	if err := r.db.WithContext(ctx).Create(&link).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Tag already attached to question", err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) DetachAll(ctx context.Context, questionID uint) error {
	if err := r.db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&models.QuestionTag{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := applyTagCounts(r.db.WithContext(ctx)).Where("tags.name = ?", name).First(&tag).Error; err != nil {
		return nil, lookupError(err, "Tag", name)
	}
	return &tag, nil
}

// applyTagCounts adds question_count and answer_count over active content.
func applyTagCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Tag{}).Select("tags.*, " +
		"(SELECT COUNT(*) FROM question_tags JOIN questions ON questions.id = question_tags.question_id " +
		"WHERE question_tags.tag_id = tags.id AND questions.status = 'active') AS question_count, " +
		"(SELECT COUNT(*) FROM question_tags JOIN questions ON questions.id = question_tags.question_id " +
		"JOIN answers ON answers.question_id = questions.id " +
		"WHERE question_tags.tag_id = tags.id AND questions.status = 'active' AND answers.status = 'active') AS answer_count")
}

func (r *tagRepository) ListWithCounts(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := applyTagCounts(r.db.WithContext(ctx)).Order("tags.name ASC").Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) Search(ctx context.Context, query string) ([]models.Tag, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	tags := []models.Tag{}
	if err := applyTagCounts(r.db.WithContext(ctx)).
		Where("LOWER(tags.name) LIKE ?", like).
		Order("tags.name ASC").
		Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

// Trending ranks tags by how many active questions created since `since` use them.
func (r *tagRepository) Trending(ctx context.Context, since time.Time, limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.created_at, COUNT(*) AS use_count").
		Joins("JOIN question_tags ON question_tags.tag_id = tags.id").
		Joins("JOIN questions ON questions.id = question_tags.question_id").
		Where("questions.status = ? AND questions.created_at >= ?", models.StatusActive, since).
		Group("tags.id, tags.name, tags.created_at").
		Order("use_count DESC").
		Order("tags.name ASC").
		Limit(limit).
		Find(&tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) ForQuestions(ctx context.Context, questionIDs []uint) (map[uint][]models.Tag, error) {
	return tagsForQuestions(ctx, r.db, questionIDs)
}

type questionTagRow struct {
	QuestionID uint
	TagID      uint
	Name       string
}

func tagsForQuestions(ctx context.Context, db *gorm.DB, questionIDs []uint) (map[uint][]models.Tag, error) {
	out := make(map[uint][]models.Tag, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	var rows []questionTagRow
	err := db.WithContext(ctx).
		Table("question_tags").
		Select("question_tags.question_id, tags.id AS tag_id, tags.name").
		Joins("JOIN tags ON tags.id = question_tags.tag_id").
		Where("question_tags.question_id IN ?", questionIDs).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		out[row.QuestionID] = append(out[row.QuestionID], models.Tag{ID: row.TagID, Name: row.Name})
	}
	return out, nil
}
