package server

import (
	"net/url"

	"stackit/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListTags handles GET /api/tags
// @Summary List tags
// @Description All tags with counts over active content, by name
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (s *Server) ListTags(c *fiber.Ctx) error {
	tags, err := s.tagService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(tags))
}

// TrendingTags handles GET /api/tags/trending
// @Summary Trending tags
// @Description Most used tags on active questions from the last 7 days
// @Tags tags
// @Produce json
// @Param limit query int false "Number of tags (default 10)"
// @Success 200 {array} models.Tag
// @Router /tags/trending [get]
func (s *Server) TrendingTags(c *fiber.Ctx) error {
	tags, err := s.tagService.Trending(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tags)
}

// SearchTags handles GET /api/tags/search/:query
// @Summary Search tags
// @Tags tags
// @Produce json
// @Param query path string true "Substring"
// @Success 200 {array} models.Tag
// @Router /tags/search/{query} [get]
func (s *Server) SearchTags(c *fiber.Ctx) error {
	query, err := url.PathUnescape(c.Params("query"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid search query"))
	}
	tags, err := s.tagService.Search(c.UserContext(), query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(tags))
}

// QuestionsByTag handles GET /api/tags/:tagName/questions
// @Summary Questions with a tag
// @Tags tags
// @Produce json
// @Param tagName path string true "Tag name"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} object{tag=models.Tag,questions=[]models.Question}
// @Failure 404 {object} models.ErrorResponse
// @Router /tags/{tagName}/questions [get]
func (s *Server) QuestionsByTag(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("tagName"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid tag name"))
	}
	page := parsePagination(c, defaultPageSize)

	tag, questions, err := s.tagService.QuestionsByTag(c.UserContext(), name, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tag":       tag,
		"questions": listOrEmpty(questions),
	})
}
