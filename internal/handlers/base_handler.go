package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
)

// ErrorResponse is the error envelope for every endpoint.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps operations that have a message but no natural
// resource body.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler provides shared helpers for all entity handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// parseIDParam reads a positive integer path parameter, answering 400
// itself when the value is malformed.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0, false
	}
	return uint(id), true
}

// actorFrom rebuilds the acting identity from the JWT middleware's
// context values, answering 401 itself when they are missing.
func (h *BaseHandler) actorFrom(c *gin.Context) (services.Actor, bool) {
	userID, okID := c.Get(ContextUserID)
	role, okRole := c.Get(ContextUserRole)
	if !okID || !okRole {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID.(uint), Role: role.(models.UserRole)}, true
}

// handleServiceError translates service errors into the HTTP error
// taxonomy. Raw storage errors never reach clients.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs services.ValidationErrors
	var permissionErr *services.PermissionError
	var businessErr *services.BusinessRuleError

	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
	case errors.As(err, &permissionErr):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Permission denied",
			Details: permissionErr.Reason,
		})
	case errors.As(err, &businessErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: businessErr.Message,
			Details: businessErr.Context,
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
	case errors.Is(err, services.ErrEmpresaNotValidated):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Empresa account not validated yet"})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrEmpresaNotFound),
		errors.Is(err, services.ErrEstudanteNotFound),
		errors.Is(err, services.ErrDepartamentoNotFound),
		errors.Is(err, services.ErrPropostaNotFound),
		errors.Is(err, services.ErrCandidaturaNotFound),
		errors.Is(err, services.ErrPedidoNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrPropostaNotAtiva),
		errors.Is(err, services.ErrDuplicateCandidatura),
		errors.Is(err, services.ErrDuplicatePedido),
		errors.Is(err, services.ErrCandidaturaDecided),
		errors.Is(err, services.ErrPedidoAlreadyClosed),
		errors.Is(err, services.ErrEmailAlreadyInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	default:
		h.logger.Error("Unhandled service error", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
