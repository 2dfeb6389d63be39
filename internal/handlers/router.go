package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/services"
	"github.com/ESTG-P5-2025/propostas-service/internal/utils"
)

type HandlerManager struct {
	authHandler        *AuthHandler
	adminHandler       *AdminHandler
	gestorHandler      *GestorHandler
	propostaHandler    *PropostaHandler
	candidaturaHandler *CandidaturaHandler
	estudanteHandler   *EstudanteHandler
	remocaoHandler     *RemocaoHandler
	dashboardHandler   *DashboardHandler
	authMiddleware     *AuthMiddleware
	serviceManager     services.ServiceManager
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		authHandler:        NewAuthHandler(serviceManager.Auth(), logger),
		adminHandler:       NewAdminHandler(serviceManager.Auth(), serviceManager.Scope(), serviceManager.Empresa(), logger),
		gestorHandler:      NewGestorHandler(serviceManager.Scope(), logger),
		propostaHandler:    NewPropostaHandler(serviceManager.Proposta(), logger),
		candidaturaHandler: NewCandidaturaHandler(serviceManager.Candidatura(), logger),
		estudanteHandler:   NewEstudanteHandler(serviceManager.Matching(), serviceManager.Estudante(), serviceManager.Remocao(), logger),
		remocaoHandler:     NewRemocaoHandler(serviceManager.Remocao(), logger),
		dashboardHandler:   NewDashboardHandler(serviceManager.Dashboard(), logger),
		authMiddleware:     NewAuthMiddleware(serviceManager.Auth(), logger),
		serviceManager:     serviceManager,
	}
}

// SetupRoutes sets up all API routes, grouped by role prefix.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	v1.GET("/health", hm.healthCheck)
	v1.POST("/auth/login", hm.authHandler.Login)

	requireRole := hm.authMiddleware.RequireRole

	// Admin routes
	admin := v1.Group("/admin", hm.authMiddleware.RequireAuth(), requireRole(models.RoleAdmin))
	{
		admin.POST("/users", hm.adminHandler.CreateUser)
		admin.GET("/gestores", hm.adminHandler.ListGestores)
		admin.PUT("/gestores/:id/departamentos", hm.adminHandler.AssignDepartamentos)
		admin.GET("/departamentos", hm.adminHandler.ListDepartamentos)
		admin.GET("/empresas-por-validar", hm.adminHandler.ListEmpresasPorValidar)
		admin.POST("/empresas/:id/validar", hm.adminHandler.ValidateEmpresa)

		admin.GET("/propostas", hm.propostaHandler.List)
		admin.GET("/propostas/:id", hm.propostaHandler.Get)
		admin.DELETE("/propostas/:id", hm.propostaHandler.Delete)
		admin.PATCH("/propostas/:id/estado", hm.propostaHandler.UpdateEstado)

		admin.GET("/pedidos-remocao", hm.remocaoHandler.List)
		admin.POST("/pedidos-remocao/:id/resolver", hm.remocaoHandler.Resolve)
	}

	// Gestor routes
	gestor := v1.Group("/gestor", hm.authMiddleware.RequireAuth(), requireRole(models.RoleGestor))
	{
		gestor.GET("/departamentos", hm.gestorHandler.MyScope)
		gestor.GET("/empresas-por-validar", hm.adminHandler.ListEmpresasPorValidar)
		gestor.POST("/empresas/:id/validar", hm.adminHandler.ValidateEmpresa)

		gestor.GET("/propostas", hm.propostaHandler.List)
		gestor.GET("/propostas/:id", hm.propostaHandler.Get)
		gestor.POST("/propostas", hm.propostaHandler.Create)
		gestor.POST("/propostas/:id/aprovar", hm.propostaHandler.Aprovar)
		gestor.POST("/propostas/:id/arquivar", hm.propostaHandler.Arquivar)
		gestor.PATCH("/propostas/:id/estado", hm.propostaHandler.UpdateEstado)

		gestor.GET("/pedidos-remocao", hm.remocaoHandler.List)
		gestor.POST("/pedidos-remocao/:id/resolver", hm.remocaoHandler.Resolve)
	}

	// Empresa routes
	empresa := v1.Group("/empresa", hm.authMiddleware.RequireAuth(), requireRole(models.RoleEmpresa))
	{
		empresa.POST("/propostas", hm.propostaHandler.Create)
		empresa.GET("/propostas", hm.propostaHandler.List)
		empresa.GET("/propostas/:id", hm.propostaHandler.Get)
		empresa.PUT("/propostas/:id", hm.propostaHandler.Update)
		empresa.DELETE("/propostas/:id", hm.propostaHandler.Delete)
		empresa.POST("/propostas/:id/desativar", hm.propostaHandler.Desativar)
		empresa.POST("/propostas/:id/reativar", hm.propostaHandler.Reativar)

		empresa.GET("/candidaturas", hm.candidaturaHandler.ListIncoming)
		empresa.PATCH("/candidaturas/:id", hm.candidaturaHandler.Decide)

		empresa.GET("/estatisticas", hm.dashboardHandler.Estatisticas)
		empresa.GET("/estatisticas/export", hm.dashboardHandler.Export)
	}

	// Estudante routes
	estudante := v1.Group("/estudante", hm.authMiddleware.RequireAuth(), requireRole(models.RoleEstudante))
	{
		estudante.GET("/propostas", hm.propostaHandler.List)
		estudante.GET("/propostas/:id", hm.propostaHandler.Get)
		estudante.GET("/matching", hm.estudanteHandler.Matching)
		estudante.POST("/propostas/:id/candidaturas", hm.candidaturaHandler.Apply)
		estudante.GET("/candidaturas", hm.candidaturaHandler.ListMine)

		estudante.POST("/propostas/:id/favoritos", hm.estudanteHandler.AddFavorito)
		estudante.DELETE("/propostas/:id/favoritos", hm.estudanteHandler.RemoveFavorito)
		estudante.GET("/favoritos", hm.estudanteHandler.ListFavoritos)

		estudante.PUT("/competencias", hm.estudanteHandler.UpdateCompetencias)
		estudante.POST("/pedido-remocao", hm.estudanteHandler.CreatePedidoRemocao)
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "propostas-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
