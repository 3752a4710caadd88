package service

import (
	"context"
	"log/slog"
	"strings"

	"stackit/internal/cache"
	"stackit/internal/models"
	"stackit/internal/observability"
	"stackit/internal/repository"
	"stackit/internal/validation"
)

type QuestionService struct {
	questions repository.QuestionRepository
	tags      repository.TagRepository
}

type CreateQuestionInput struct {
	Title string
	Body  string
	Tags  []string
}

// UpdateQuestionInput is a partial update; nil fields are left unchanged.
type UpdateQuestionInput struct {
	Title *string
	Body  *string
	Tags  *[]string
}

type ListQuestionsInput struct {
	Query  string
	Sort   string
	Tag    string
	Limit  int
	Offset int
}

func NewQuestionService(questions repository.QuestionRepository, tags repository.TagRepository) *QuestionService {
	return &QuestionService{questions: questions, tags: tags}
}

// List returns active questions for any caller, guests included.
func (s *QuestionService) List(ctx context.Context, in ListQuestionsInput) ([]models.Question, error) {
	switch in.Sort {
	case "", repository.SortNewest, repository.SortVotes, repository.SortUnanswered:
	default:
		return nil, models.NewValidationError("Invalid sort (newest, votes, unanswered)")
	}
	return s.questions.List(ctx, repository.QuestionFilter{
		Statuses: []models.ContentStatus{models.StatusActive},
		Query:    in.Query,
		Sort:     in.Sort,
		Tag:      in.Tag,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
}

// Get hides deleted questions from everyone but admins.
func (s *QuestionService) Get(ctx context.Context, actor models.Actor, id uint) (*models.Question, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == models.StatusDeleted && !actor.IsAdmin() {
		return nil, models.NewNotFoundError("Question", id)
	}
	return q, nil
}

func (s *QuestionService) Create(ctx context.Context, actor models.Actor, in CreateQuestionInput) (*models.Question, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBody(in.Body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	names := NormalizeTags(in.Tags)
	if len(names) > validation.MaxTagsPerPost {
		return nil, models.NewValidationError("Too many tags (max 10)")
	}

	q := &models.Question{
		UserID: actor.UserID,
		Title:  strings.TrimSpace(in.Title),
		Body:   in.Body,
		Status: models.StatusActive,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}

	s.attachTags(ctx, q.ID, names)
	return s.questions.GetByID(ctx, q.ID)
}

// attachTags links each tag independently; a failing tag is logged and
// skipped so the question and the remaining tags still commit. Trending pages
// are invalidated once for the whole batch.
func (s *QuestionService) attachTags(ctx context.Context, questionID uint, names []string) []models.Tag {
	attached := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if len(name) > validation.MaxTagLength {
			s.tagFailed(ctx, questionID, name, models.NewValidationError("tag too long"))
			continue
		}
		tag, err := s.tags.FindOrCreate(ctx, name)
		if err != nil {
			s.tagFailed(ctx, questionID, name, err)
			continue
		}
		if err := s.tags.Attach(ctx, questionID, tag.ID); err != nil {
			s.tagFailed(ctx, questionID, name, err)
			continue
		}
		attached = append(attached, *tag)
	}
	cache.InvalidateTrending(ctx)
	return attached
}

func (s *QuestionService) tagFailed(ctx context.Context, questionID uint, name string, err error) {
	observability.TagBatchFailures.Inc()
	slog.WarnContext(ctx, "skipping tag",
		slog.Uint64("question_id", uint64(questionID)),
		slog.String("tag", name),
		slog.String("error", err.Error()),
	)
}

// Replace overwrites title and body; both are required.
func (s *QuestionService) Replace(ctx context.Context, actor models.Actor, id uint, title, body string) (*models.Question, error) {
	return s.Update(ctx, actor, id, UpdateQuestionInput{Title: &title, Body: &body})
}

func (s *QuestionService) Update(ctx context.Context, actor models.Actor, id uint, in UpdateQuestionInput) (*models.Question, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckEditable(actor, "Question", id, q.UserID, q.Status); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		if err := validation.ValidateBody(*in.Body); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		updates["body"] = *in.Body
	}
	var names []string
	if in.Tags != nil {
		names = NormalizeTags(*in.Tags)
		if len(names) > validation.MaxTagsPerPost {
			return nil, models.NewValidationError("Too many tags (max 10)")
		}
	}
	if len(updates) == 0 && in.Tags == nil {
		return nil, models.NewValidationError("Nothing to update")
	}

	if len(updates) > 0 {
		if err := s.questions.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	if in.Tags != nil {
		if err := s.tags.DetachAll(ctx, id); err != nil {
			return nil, err
		}
		s.attachTags(ctx, id, names)
	}
	return s.questions.GetByID(ctx, id)
}

// Delete soft-deletes the question.
func (s *QuestionService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireMember(actor); err != nil {
		return err
	}
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if q.Status == models.StatusDeleted {
		return models.NewNotFoundError("Question", id)
	}
	if !CanModify(actor, q.UserID) {
		return models.NewForbiddenError("Not authorized")
	}
	return s.questions.SetStatus(ctx, id, models.StatusDeleted)
}

func (s *QuestionService) ChangeStatus(ctx context.Context, actor models.Actor, id uint, status models.ContentStatus) (*models.Question, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckStatusChange(actor, q.UserID, q.Status, status); err != nil {
		return nil, err
	}
	if err := s.questions.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	q.Status = status
	return q, nil
}

// HardDelete permanently removes a question and everything attached to it.
func (s *QuestionService) HardDelete(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.questions.HardDelete(ctx, id)
}

// ListOwn returns the actor's questions in every state but deleted.
func (s *QuestionService) ListOwn(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Question, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	return s.questions.List(ctx, repository.QuestionFilter{
		UserID:   actor.UserID,
		Statuses: []models.ContentStatus{models.StatusActive, models.StatusFlagged},
		Limit:    limit,
		Offset:   offset,
	})
}
