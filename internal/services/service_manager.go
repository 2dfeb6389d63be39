package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ESTG-P5-2025/propostas-service/internal/events"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

// ServiceManagerConfig holds cross-service settings.
type ServiceManagerConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	ExpirySchedule string
}

// serviceManager implements ServiceManager: it owns every service
// instance plus the background expiry sweeper.
type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
	config    ServiceManagerConfig

	authService        AuthService
	scopeService       ScopeService
	empresaService     EmpresaService
	propostaService    PropostaService
	candidaturaService CandidaturaService
	matchingService    MatchingService
	estudanteService   EstudanteService
	remocaoService     RemocaoService
	dashboardService   DashboardService
	sweeper            *ExpirySweeper

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// Initialize wires the service graph and starts the expiry sweeper.
func (m *serviceManager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return fmt.Errorf("service manager already initialized")
	}
	if m.shutdown {
		return fmt.Errorf("service manager has been shut down")
	}

	m.scopeService = NewScopeService(m.repo, m.logger)
	m.authService = NewAuthService(m.repo, m.logger, m.validator, m.config.JWTSecret, m.config.TokenTTL)
	m.empresaService = NewEmpresaService(m.repo, m.logger, m.publisher)
	m.propostaService = NewPropostaService(m.repo, m.logger, m.validator, m.publisher, m.scopeService)
	m.candidaturaService = NewCandidaturaService(m.repo, m.logger, m.validator, m.publisher)
	m.matchingService = NewMatchingService(m.repo, m.logger)
	m.estudanteService = NewEstudanteService(m.repo, m.logger, m.validator)
	m.remocaoService = NewRemocaoService(m.repo, m.logger, m.validator, m.publisher, m.scopeService)
	m.dashboardService = NewDashboardService(m.repo, m.logger)

	m.sweeper = NewExpirySweeper(m.repo, m.logger, m.publisher, m.config.ExpirySchedule)
	if err := m.sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start expiry sweeper: %w", err)
	}

	m.initialized = true
	m.logger.Info("Service manager initialized")
	return nil
}

func (m *serviceManager) Auth() AuthService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authService
}

func (m *serviceManager) Scope() ScopeService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scopeService
}

func (m *serviceManager) Empresa() EmpresaService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.empresaService
}

func (m *serviceManager) Proposta() PropostaService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.propostaService
}

func (m *serviceManager) Candidatura() CandidaturaService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.candidaturaService
}

func (m *serviceManager) Matching() MatchingService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.matchingService
}

func (m *serviceManager) Estudante() EstudanteService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.estudanteService
}

func (m *serviceManager) Remocao() RemocaoService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remocaoService
}

func (m *serviceManager) Dashboard() DashboardService {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dashboardService
}

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized || m.shutdown {
		return fmt.Errorf("service manager not ready")
	}
	return m.repo.Ping(ctx)
}

// Shutdown stops the sweeper and closes the event publisher. The
// repository is closed by its own manager.
func (m *serviceManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.shutdown {
		return nil
	}
	m.shutdown = true

	if m.sweeper != nil {
		m.sweeper.Stop()
	}
	if m.publisher != nil {
		if err := m.publisher.Close(); err != nil {
			m.logger.Warn("Failed to close event publisher", "error", err)
		}
	}

	m.logger.Info("Service manager shut down")
	return nil
}
