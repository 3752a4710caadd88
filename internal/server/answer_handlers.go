package server

import (
	"stackit/internal/middleware"
	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListAnswers handles GET /api/questions/:questionId/answers
// @Summary List answers of a question
// @Description Newest first; non-admins only see active answers
// @Tags answers
// @Produce json
// @Param questionId path int true "Question ID"
// @Success 200 {array} models.Answer
// @Router /questions/{questionId}/answers [get]
func (s *Server) ListAnswers(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return nil
	}
	answers, err := s.answerService.ListForQuestion(c.UserContext(), middleware.ActorFromCtx(c), questionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(answers))
}

// CreateAnswer handles POST /api/questions/:questionId/answers
// @Summary Answer a question
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionId path int true "Question ID"
// @Param request body object{body=string} true "Answer"
// @Success 201 {object} models.Answer
// @Failure 400 {object} models.ErrorResponse
// @Router /questions/{questionId}/answers [post]
func (s *Server) CreateAnswer(c *fiber.Ctx) error {
	questionID, err := parseID(c, "questionId")
	if err != nil {
		return nil
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	answer, err := s.answerService.Create(c.UserContext(), middleware.ActorFromCtx(c), questionID, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(answer)
}

// ReplaceAnswer handles PUT /api/answers/:answerId
// @Summary Replace answer body
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Param request body object{body=string} true "Answer"
// @Success 200 {object} models.Answer
// @Router /answers/{answerId} [put]
func (s *Server) ReplaceAnswer(c *fiber.Ctx) error {
	id, err := parseID(c, "answerId")
	if err != nil {
		return nil
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	return s.updateAnswerBody(c, id, req.Body)
}

// PatchAnswer handles PATCH /api/answers/:answerId
// @Summary Partially update an answer
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Param request body object{body=string} true "Fields to change"
// @Success 200 {object} models.Answer
// @Router /answers/{answerId} [patch]
func (s *Server) PatchAnswer(c *fiber.Ctx) error {
	id, err := parseID(c, "answerId")
	if err != nil {
		return nil
	}
	var req struct {
		Body *string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	// body is the only editable field
	if req.Body == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No fields to update"))
	}
	return s.updateAnswerBody(c, id, *req.Body)
}

func (s *Server) updateAnswerBody(c *fiber.Ctx, id uint, body string) error {
	answer, err := s.answerService.Update(c.UserContext(), middleware.ActorFromCtx(c), id, body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(answer)
}

// DeleteAnswer handles DELETE /api/answers/:answerId
// @Summary Soft delete an answer
// @Tags answers
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Success 204
// @Router /answers/{answerId} [delete]
func (s *Server) DeleteAnswer(c *fiber.Ctx) error {
	id, err := parseID(c, "answerId")
	if err != nil {
		return nil
	}
	if err := s.answerService.Delete(c.UserContext(), middleware.ActorFromCtx(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateAnswerStatus handles PATCH /api/answers/:answerId/status
// @Summary Change answer status
// @Tags answers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Param request body statusRequest true "Target status"
// @Success 200 {object} models.Answer
// @Router /answers/{answerId}/status [patch]
func (s *Server) UpdateAnswerStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "answerId")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	answer, err := s.answerService.ChangeStatus(c.UserContext(), middleware.ActorFromCtx(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(answer)
}

// ToggleAcceptAnswer handles PATCH /api/answers/:answerId/accept
// @Summary Toggle the accepted answer
// @Description Question owner or admin; accepting clears the previous accepted answer
// @Tags answers
// @Produce json
// @Security BearerAuth
// @Param answerId path int true "Answer ID"
// @Success 200 {object} models.Answer
// @Router /answers/{answerId}/accept [patch]
func (s *Server) ToggleAcceptAnswer(c *fiber.Ctx) error {
	id, err := parseID(c, "answerId")
	if err != nil {
		return nil
	}
	answer, err := s.answerService.ToggleAccept(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(answer)
}
