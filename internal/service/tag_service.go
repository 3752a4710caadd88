package service

import (
	"context"
	"strings"
	"time"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/repository"
)

const trendingWindow = 7 * 24 * time.Hour

type TagService struct {
	tags      repository.TagRepository
	questions repository.QuestionRepository
	now       func() time.Time
}

func NewTagService(tags repository.TagRepository, questions repository.QuestionRepository) *TagService {
	return &TagService{tags: tags, questions: questions, now: func() time.Time { return time.Now().UTC() }}
}

// NormalizeTags trims and lowercases names, dropping empties and duplicates
// while keeping first-seen order.
func NormalizeTags(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := models.NormalizeTag(name)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	return s.tags.ListWithCounts(ctx)
}

func (s *TagService) Search(ctx context.Context, query string) ([]models.Tag, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.tags.Search(ctx, query)
}

// Trending is cached per limit for cache.TrendingTagsTTL.
func (s *TagService) Trending(ctx context.Context, limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	var tags []models.Tag
	err := cache.Aside(ctx, cache.TrendingTagsKey(limit), &tags, cache.TrendingTagsTTL, func() error {
		var err error
		tags, err = s.tags.Trending(ctx, s.now().Add(-trendingWindow), limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Tag{}
	}
	return tags, nil
}

// QuestionsByTag resolves the tag and lists its active questions.
func (s *TagService) QuestionsByTag(ctx context.Context, name string, limit, offset int) (*models.Tag, []models.Question, error) {
	normalized := models.NormalizeTag(name)
	if normalized == "" {
		return nil, nil, models.NewValidationError("Tag name is required")
	}
	tag, err := s.tags.GetByName(ctx, normalized)
	if err != nil {
		return nil, nil, err
	}
	questions, err := s.questions.List(ctx, repository.QuestionFilter{
		Statuses: []models.ContentStatus{models.StatusActive},
		Tag:      normalized,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, nil, err
	}
	return tag, questions, nil
}
