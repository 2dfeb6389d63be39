package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
)

// GestorHandler exposes the gestor's own-scope endpoints; proposta
// moderation itself lives on PropostaHandler.
type GestorHandler struct {
	BaseHandler
	scopeService services.ScopeService
}

func NewGestorHandler(scopeService services.ScopeService, logger utils.Logger) *GestorHandler {
	return &GestorHandler{
		BaseHandler:  NewBaseHandler(logger),
		scopeService: scopeService,
	}
}

// MyScope returns the acting gestor's department scope, with the
// unscoped case surfaced as {"all": true}.
func (h *GestorHandler) MyScope(c *gin.Context) {
	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	scope, err := h.scopeService.ScopeFor(c.Request.Context(), actor.UserID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, scope)
}
