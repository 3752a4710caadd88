package service

import (
	"context"
	"strings"

	"stackit/internal/models"
	"stackit/internal/repository"
	"stackit/internal/validation"
)

type ReportService struct {
	reports   repository.ReportRepository
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
}

type CreateReportInput struct {
	TargetType models.TargetType
	TargetID   uint
	Reason     string
}

func NewReportService(reports repository.ReportRepository, questions repository.QuestionRepository, answers repository.AnswerRepository) *ReportService {
	return &ReportService{reports: reports, questions: questions, answers: answers}
}

// Create files a report against an existing, non-deleted question or answer.
func (s *ReportService) Create(ctx context.Context, actor models.Actor, in CreateReportInput) (*models.Report, error) {
	if err := requireMember(actor); err != nil {
		return nil, err
	}
	if !in.TargetType.Valid() {
		return nil, models.NewValidationError("Invalid target type")
	}
	if in.TargetID == 0 {
		return nil, models.NewValidationError("target_id is required")
	}
	if err := validation.ValidateReason(in.Reason); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var status models.ContentStatus
	switch in.TargetType {
	case models.TargetQuestion:
		q, err := s.questions.GetByID(ctx, in.TargetID)
		if err != nil {
			return nil, err
		}
		status = q.Status
	case models.TargetAnswer:
		a, err := s.answers.GetByID(ctx, in.TargetID)
		if err != nil {
			return nil, err
		}
		status = a.Status
	}
	if status == models.StatusDeleted {
		return nil, models.NewNotFoundError(targetResource(in.TargetType), in.TargetID)
	}

	report := &models.Report{
		UserID:     actor.UserID,
		TargetID:   in.TargetID,
		TargetType: in.TargetType,
		Reason:     strings.TrimSpace(in.Reason),
		Status:     models.ReportPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *ReportService) List(ctx context.Context, actor models.Actor, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	switch status {
	case "", models.ReportPending, models.ReportResolved:
	default:
		return nil, models.NewValidationError("Invalid report status (pending, resolved)")
	}
	return s.reports.List(ctx, status, limit, offset)
}

func (s *ReportService) Resolve(ctx context.Context, actor models.Actor, id uint) (*models.Report, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.reports.Resolve(ctx, id, actor.UserID)
}

func targetResource(t models.TargetType) string {
	if t == models.TargetAnswer {
		return "Answer"
	}
	return "Question"
}
