package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dopaj/field-service/internal/api/dto"
	"github.com/dopaj/field-service/internal/auth"
	"github.com/dopaj/field-service/internal/service"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// DashboardHandler serves the derived management figures.
type DashboardHandler struct {
	stats *service.StatsService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(statsService *service.StatsService) *DashboardHandler {
	return &DashboardHandler{stats: statsService}
}

// Stats GET /dashboard/stats. Admin only (enforced on the route).
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.stats.Dashboard(c.Context(), principal.User)
	if err != nil {
		return err
	}

	byStatus := make(map[string]int, len(stats.ByStatus))
	for status, count := range stats.ByStatus {
		byStatus[string(status)] = count
	}
	return c.JSON(fiber.Map{"data": dto.DashboardStatsResponse{
		TotalTickets:          stats.TotalTickets,
		ClosedTickets:         stats.ClosedTickets,
		PendingTickets:        stats.PendingTickets,
		ByStatus:              byStatus,
		ByEngineer:            stats.ByEngineer,
		AvgAttentionTimeHours: stats.AvgAttentionTimeHours,
	}})
}
