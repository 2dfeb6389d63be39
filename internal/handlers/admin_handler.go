package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

// AdminHandler groups the platform administration endpoints: user
// provisioning, gestor scope management and empresa validation.
type AdminHandler struct {
	BaseHandler
	authService    services.AuthService
	scopeService   services.ScopeService
	empresaService services.EmpresaService
}

func NewAdminHandler(
	authService services.AuthService,
	scopeService services.ScopeService,
	empresaService services.EmpresaService,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:    NewBaseHandler(logger),
		authService:    authService,
		scopeService:   scopeService,
		empresaService: empresaService,
	}
}

// CreateUser provisions a platform account (used to seed gestores).
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req validator.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	user, err := h.authService.CreateUser(c.Request.Context(), &req, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListGestores returns every gestor with its department scope.
func (h *AdminHandler) ListGestores(c *gin.Context) {
	gestores, err := h.authService.ListGestores(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gestores": gestores})
}

// AssignDepartamentos replaces a gestor's full department set.
func (h *AdminHandler) AssignDepartamentos(c *gin.Context) {
	gestorID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req validator.AssignDepartamentosRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	scope, err := h.scopeService.Assign(c.Request.Context(), gestorID, req.DepartamentoIDs, actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, scope)
}

// ValidateEmpresa approves an empresa account.
func (h *AdminHandler) ValidateEmpresa(c *gin.Context) {
	empresaID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	actor, ok := h.actorFrom(c)
	if !ok {
		return
	}

	if err := h.empresaService.Validate(c.Request.Context(), empresaID, actor); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Empresa validated"})
}

// ListEmpresasPorValidar returns empresas waiting for validation.
func (h *AdminHandler) ListEmpresasPorValidar(c *gin.Context) {
	empresas, err := h.empresaService.ListPorValidar(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"empresas": empresas})
}

// ListDepartamentos returns every department.
func (h *AdminHandler) ListDepartamentos(c *gin.Context) {
	departamentos, err := h.scopeService.ListDepartamentos(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departamentos": departamentos})
}
