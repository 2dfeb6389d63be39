package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

// EstudanteHandler groups the student-facing endpoints: matching,
// favorites, profile skills and removal requests.
type EstudanteHandler struct {
	BaseHandler
	matchingService  services.MatchingService
	estudanteService services.EstudanteService
	remocaoService   services.RemocaoService
}

func NewEstudanteHandler(
	matchingService services.MatchingService,
	estudanteService services.EstudanteService,
	remocaoService services.RemocaoService,
	logger utils.Logger,
) *EstudanteHandler {
	return &EstudanteHandler{
		BaseHandler:      NewBaseHandler(logger),
		matchingService:  matchingService,
		estudanteService: estudanteService,
		remocaoService:   remocaoService,
	}
}

// Matching returns the ativa propostas whose areas overlap the student's
// competencias.
func (h *EstudanteHandler) Matching(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	matches, err := h.matchingService.MatchesFor(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "total": len(matches)})
}

func (h *EstudanteHandler) AddFavorito(c *gin.Context) {
	propostaID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.estudanteService.AddFavorito(c.Request.Context(), propostaID, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Message: "Favorito added"})
}

func (h *EstudanteHandler) RemoveFavorito(c *gin.Context) {
	propostaID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.estudanteService.RemoveFavorito(c.Request.Context(), propostaID, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Favorito removed"})
}

func (h *EstudanteHandler) ListFavoritos(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	favoritos, err := h.estudanteService.ListFavoritos(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favoritos": favoritos})
}

// UpdateCompetencias replaces the student's declared skill list.
func (h *EstudanteHandler) UpdateCompetencias(c *gin.Context) {
	var req validator.CompetenciasUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.estudanteService.UpdateCompetencias(c.Request.Context(), &req, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Competencias updated"})
}

// CreatePedidoRemocao opens an account removal request.
func (h *EstudanteHandler) CreatePedidoRemocao(c *gin.Context) {
	var req validator.PedidoRemocaoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	pedido, err := h.remocaoService.Create(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pedido)
}
