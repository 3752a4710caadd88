package server

import (
	"errors"

	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/promotion"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminListUsers handles GET /api/admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (s *Server) AdminListUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	users, err := s.adminService.ListUsers(c.UserContext(), middleware.ActorFromCtx(c), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(users))
}

// AdminUpdateUser handles PATCH /api/admin/users/:id
// @Summary Change a user's role or ban state
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{role=string,is_banned=bool} true "Fields to change"
// @Success 200 {object} models.User
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users/{id} [patch]
func (s *Server) AdminUpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Role     *models.Role `json:"role"`
		IsBanned *bool        `json:"is_banned"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.adminService.UpdateUser(c.UserContext(), middleware.ActorFromCtx(c), id, service.AdminUpdateUserInput{
		Role:     req.Role,
		IsBanned: req.IsBanned,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// AdminToggleBan handles PATCH /api/admin/users/:id/ban
// @Summary Toggle a user's ban
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Router /admin/users/{id}/ban [patch]
func (s *Server) AdminToggleBan(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	user, err := s.adminService.ToggleBan(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// AdminHardDeleteQuestion handles DELETE /api/admin/questions/:id
// @Summary Permanently delete a question
// @Description Removes the question with its answers, tag links and votes
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Question ID"
// @Success 204
// @Router /admin/questions/{id} [delete]
func (s *Server) AdminHardDeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.questionService.HardDelete(c.UserContext(), middleware.ActorFromCtx(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminStats handles GET /api/admin/stats
// @Summary Forum totals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AdminStats
// @Router /admin/stats [get]
func (s *Server) AdminStats(c *fiber.Ctx) error {
	stats, err := s.adminService.Stats(c.UserContext(), middleware.ActorFromCtx(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// AdminListReports handles GET /api/admin/reports
// @Summary List reports
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending or resolved"
// @Success 200 {array} models.Report
// @Router /admin/reports [get]
func (s *Server) AdminListReports(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageSize)
	status := models.ReportStatus(c.Query("status"))

	reports, err := s.reportService.List(c.UserContext(), middleware.ActorFromCtx(c), status, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(listOrEmpty(reports))
}

// AdminResolveReport handles PATCH /api/admin/reports/:id/resolve
// @Summary Resolve a report
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} models.Report
// @Router /admin/reports/{id}/resolve [patch]
func (s *Server) AdminResolveReport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	report, err := s.reportService.Resolve(c.UserContext(), middleware.ActorFromCtx(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// AdminRunPromotions handles POST /api/admin/promotions/run
// @Summary Run the promotion job now
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{promoted=[]int,threshold=int}
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/promotions/run [post]
func (s *Server) AdminRunPromotions(c *fiber.Ctx) error {
	promoted, err := s.promotionJob.RunOnce(c.UserContext())
	if err != nil {
		if errors.Is(err, promotion.ErrAlreadyRunning) {
			return models.RespondWithError(c, fiber.StatusConflict,
				models.NewConflictError("Promotion job is already running", nil))
		}
		return respondError(c, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "promotion job triggered manually",
		"promoted", len(promoted),
	)
	return c.JSON(fiber.Map{
		"promoted":  listOrEmpty(promoted),
		"threshold": s.promotionJob.Threshold(),
	})
}

// GetFeatureFlags handles GET /api/admin/feature-flags
// @Summary Feature flags
// @Description Configured flags and their evaluation for the calling admin
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(actor.UserID),
	})
}
