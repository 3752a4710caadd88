package server

import (
	"stackit/internal/middleware"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/user/profile
// @Summary Own profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /user/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), middleware.ActorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateProfile handles PUT /api/user/profile
// @Summary Update own profile
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,email=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 409 {object} models.ErrorResponse
// @Router /user/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req struct {
		Username *string `json:"username"`
		Email    *string `json:"email"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), middleware.ActorFromCtx(c), service.UpdateProfileInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ListOwnQuestions handles GET /api/user/questions
// @Summary Own questions
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Question
// @Router /user/questions [get]
func (s *Server) ListOwnQuestions(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	questions, err := s.questionService.ListOwn(c.UserContext(), middleware.ActorFromCtx(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(questions))
}

// ListOwnAnswers handles GET /api/user/answers
// @Summary Own answers with their question titles
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Answer
// @Router /user/answers [get]
func (s *Server) ListOwnAnswers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	answers, err := s.answerService.ListOwn(c.UserContext(), middleware.ActorFromCtx(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(answers))
}
