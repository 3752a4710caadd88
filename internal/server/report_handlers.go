package server

import (
	"stackit/internal/middleware"
	"stackit/internal/models"
	"stackit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports
// @Summary Report a question or answer
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{target_type=string,target_id=int,reason=string} true "Report"
// @Success 201 {object} models.Report
// @Failure 404 {object} models.ErrorResponse
// @Router /reports [post]
func (s *Server) CreateReport(c *fiber.Ctx) error {
	var req struct {
		TargetType models.TargetType `json:"target_type"`
		TargetID   uint              `json:"target_id"`
		Reason     string            `json:"reason"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	report, err := s.reportService.Create(c.UserContext(), middleware.ActorFromCtx(c), service.CreateReportInput{
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}
