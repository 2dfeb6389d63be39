package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

// Estatisticas returns the empresa's candidatura statistics.
func (h *DashboardHandler) Estatisticas(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	stats, err := h.dashboardService.Estatisticas(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Export streams the statistics as an xlsx attachment.
func (h *DashboardHandler) Export(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	data, filename, err := h.dashboardService.ExportEstatisticas(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
