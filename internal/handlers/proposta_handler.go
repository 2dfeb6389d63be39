package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

type PropostaHandler struct {
	BaseHandler
	propostaService services.PropostaService
}

func NewPropostaHandler(propostaService services.PropostaService, logger utils.Logger) *PropostaHandler {
	return &PropostaHandler{
		BaseHandler:     NewBaseHandler(logger),
		propostaService: propostaService,
	}
}

// Create registers a new proposta in estado pendente.
func (h *PropostaHandler) Create(c *gin.Context) {
	var req validator.PropostaCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	proposta, err := h.propostaService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposta)
}

func (h *PropostaHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	proposta, err := h.propostaService.GetByID(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposta)
}

func (h *PropostaHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req validator.PropostaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	proposta, err := h.propostaService.Update(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposta)
}

func (h *PropostaHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.propostaService.Delete(c.Request.Context(), id, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Proposta deleted"})
}

// List returns propostas visible to the caller, with optional estado,
// pagination and sorting query parameters.
func (h *PropostaHandler) List(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	filters := repositories.PropostaFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("estado"); raw != "" {
		estado := models.NormalizeEstado(raw)
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

	list, err := h.propostaService.List(c.Request.Context(), filters, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ===== STATE MACHINE ENDPOINTS =====

func (h *PropostaHandler) Aprovar(c *gin.Context) {
	h.runTransition(c, h.propostaService.Aprovar)
}

func (h *PropostaHandler) Desativar(c *gin.Context) {
	h.runTransition(c, h.propostaService.Desativar)
}

func (h *PropostaHandler) Reativar(c *gin.Context) {
	h.runTransition(c, h.propostaService.Reativar)
}

func (h *PropostaHandler) Arquivar(c *gin.Context) {
	h.runTransition(c, h.propostaService.Arquivar)
}

// UpdateEstado is the generic transition endpoint taking {estado} in the
// body, accepting legacy spellings.
func (h *PropostaHandler) UpdateEstado(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req validator.EstadoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	proposta, err := h.propostaService.UpdateEstado(c.Request.Context(), id, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposta)
}

type transitionFunc func(ctx context.Context, id uint, actor services.Actor) (*services.PropostaResponse, error)

func (h *PropostaHandler) runTransition(c *gin.Context, op transitionFunc) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	proposta, err := op(c.Request.Context(), id, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, proposta)
}
