package server

import (
	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

type voteRequest struct {
	Value int `json:"value"`
}

// CastQuestionVote handles POST /api/questions/:id/votes
// @Summary Vote on a question
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body voteRequest true "1 or -1"
// @Success 201 {object} service.VoteResult
// @Failure 409 {object} models.ErrorResponse
// @Router /questions/{id}/votes [post]
func (s *Server) CastQuestionVote(c *fiber.Ctx) error {
	return s.castVote(c, models.TargetQuestion, "id")
}

// RetractQuestionVote handles DELETE /api/questions/:id/votes
// @Summary Retract a question vote
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 200 {object} service.VoteResult
// @Router /questions/{id}/votes [delete]
func (s *Server) RetractQuestionVote(c *fiber.Ctx) error {
	return s.retractVote(c, models.TargetQuestion, "id")
}

// CastAnswerVote handles POST /api/answers/:answerId/votes
// @Summary Vote on an answer
// @Tags votes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Param request body voteRequest true "1 or -1"
// @Success 201 {object} service.VoteResult
// @Failure 409 {object} models.ErrorResponse
// @Router /answers/{answerId}/votes [post]
func (s *Server) CastAnswerVote(c *fiber.Ctx) error {
	return s.castVote(c, models.TargetAnswer, "answerId")
}

// RetractAnswerVote handles DELETE /api/answers/:answerId/votes
// @Summary Retract an answer vote
// @Tags votes
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Success 200 {object} service.VoteResult
// @Router /answers/{answerId}/votes [delete]
func (s *Server) RetractAnswerVote(c *fiber.Ctx) error {
	return s.retractVote(c, models.TargetAnswer, "answerId")
}

func (s *Server) castVote(c *fiber.Ctx, target models.TargetType, param string) error {
	id, err := parseID(c, param)
	if err != nil {
		return nil
	}
	var req voteRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.voteService.Cast(c.UserContext(), middleware.ActorFromCtx(c), target, id, req.Value)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *Server) retractVote(c *fiber.Ctx, target models.TargetType, param string) error {
	id, err := parseID(c, param)
	if err != nil {
		return nil
	}
	result, err := s.voteService.Retract(c.UserContext(), middleware.ActorFromCtx(c), target, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
