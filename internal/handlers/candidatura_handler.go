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

type CandidaturaHandler struct {
	BaseHandler
	candidaturaService services.CandidaturaService
}

func NewCandidaturaHandler(candidaturaService services.CandidaturaService, logger utils.Logger) *CandidaturaHandler {
	return &CandidaturaHandler{
		BaseHandler:        NewBaseHandler(logger),
		candidaturaService: candidaturaService,
	}
}

// Apply submits the student's candidatura to a proposta.
func (h *CandidaturaHandler) Apply(c *gin.Context) {
	propostaID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	candidatura, err := h.candidaturaService.Apply(c.Request.Context(), propostaID, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, candidatura)
}

// Decide accepts or rejects a candidatura ({estado: aceite|rejeitada}).
func (h *CandidaturaHandler) Decide(c *gin.Context) {
	candidaturaID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req validator.CandidaturaDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	candidatura, err := h.candidaturaService.Decide(c.Request.Context(), candidaturaID, &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, candidatura)
}

// ListMine returns the acting student's candidaturas.
func (h *CandidaturaHandler) ListMine(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	list, err := h.candidaturaService.ListByEstudante(c.Request.Context(), actor, h.filtersFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListIncoming returns candidaturas against the acting empresa's
// propostas.
func (h *CandidaturaHandler) ListIncoming(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	list, err := h.candidaturaService.ListByEmpresa(c.Request.Context(), actor, h.filtersFrom(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *CandidaturaHandler) filtersFrom(c *gin.Context) repositories.CandidaturaFilters {
	filters := repositories.CandidaturaFilters{}
	if raw := c.Query("estado"); raw != "" {
		estado := models.CandidaturaEstado(raw)
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
	return filters
}
