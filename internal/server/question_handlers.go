package server

import (
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

type statusRequest struct {
	Status models.ContentStatus `json:"status"`
}

// ListQuestions handles GET /api/questions
// @Summary List questions
// @Description Active questions with tags, author, answer count and score
// @Tags questions
// @Produce json
// @Param q query string false "Search text"
// @Param sort query string false "newest, votes or unanswered"
// @Param tag query string false "Tag name"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Question
// @Router /questions [get]
func (s *Server) ListQuestions(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	questions, err := s.questionService.List(c.UserContext(), service.ListQuestionsInput{
		Query:  c.Query("q"),
		Sort:   c.Query("sort"),
		Tag:    c.Query("tag"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(questions))
}

// GetQuestion handles GET /api/questions/:id
// @Summary Get question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} models.Question
// @Failure 404 {object} models.ErrorResponse
// @Router /questions/{id} [get]
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	q, err := s.questionService.Get(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// CreateQuestion handles POST /api/questions
// @Summary Ask a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,body=string,tags=[]string} true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} models.ErrorResponse
// @Router /questions [post]
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	var req struct {
		Title string   `json:"title"`
		Body  string   `json:"body"`
		Tags  []string `json:"tags"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	q, err := s.questionService.Create(c.UserContext(), middleware.ActorFromCtx(c), service.CreateQuestionInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(q)
}

// ReplaceQuestion handles PUT /api/questions/:id
// @Summary Replace question title and body
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body object{title=string,body=string} true "Question"
// @Success 200 {object} models.Question
// @Failure 403 {object} models.ErrorResponse
// @Router /questions/{id} [put]
func (s *Server) ReplaceQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	q, err := s.questionService.Replace(c.UserContext(), middleware.ActorFromCtx(c), id, req.Title, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// PatchQuestion handles PATCH /api/questions/:id
// @Summary Partially update a question
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body object{title=string,body=string,tags=[]string} true "Fields to change"
// @Success 200 {object} models.Question
// @Router /questions/{id} [patch]
func (s *Server) PatchQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Title *string   `json:"title"`
		Body  *string   `json:"body"`
		Tags  *[]string `json:"tags"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	q, err := s.questionService.Update(c.UserContext(), middleware.ActorFromCtx(c), id, service.UpdateQuestionInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}

// DeleteQuestion handles DELETE /api/questions/:id
// @Summary Soft delete a question
// @Tags questions
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Router /questions/{id} [delete]
func (s *Server) DeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.questionService.Delete(c.UserContext(), middleware.ActorFromCtx(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateQuestionStatus handles PATCH /api/questions/:id/status
// @Summary Change question status
// @Description Only admins may move deleted or flagged content
// @Tags questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Param request body statusRequest true "Target status"
// @Success 200 {object} models.Question
// @Failure 403 {object} models.ErrorResponse
// @Router /questions/{id}/status [patch]
func (s *Server) UpdateQuestionStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	q, err := s.questionService.ChangeStatus(c.UserContext(), middleware.ActorFromCtx(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(q)
}
