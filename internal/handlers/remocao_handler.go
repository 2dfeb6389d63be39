package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

// RemocaoHandler exposes the moderation side of the account removal
// workflow (listing and resolving pedidos).
type RemocaoHandler struct {
	BaseHandler
	remocaoService services.RemocaoService
}

func NewRemocaoHandler(remocaoService services.RemocaoService, logger utils.Logger) *RemocaoHandler {
	return &RemocaoHandler{
		BaseHandler:    NewBaseHandler(logger),
		remocaoService: remocaoService,
	}
}

// List returns pedidos de remocao, pendentes first by creation order.
func (h *RemocaoHandler) List(c *gin.Context) {
	filters := repositories.PedidoRemocaoFilters{}
	if raw := c.Query("estado"); raw != "" {
		estado := models.PedidoRemocaoEstado(raw)
		filters.Estado = &estado
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filters.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			filters.Offset = offset
		}
	}

	pedidos, total, err := h.remocaoService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pedidos": pedidos, "total": total})
}

// Resolve closes a pedido with {acao: aprovar|rejeitar}.
func (h *RemocaoHandler) Resolve(c *gin.Context) {
	pedidoID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req validator.PedidoRemocaoResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	pedido, err := h.remocaoService.Resolve(c.Request.Context(), pedidoID, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pedido)
}
