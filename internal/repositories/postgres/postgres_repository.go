package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/cache"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user          repositories.UserRepository
	empresa       repositories.EmpresaRepository
	estudante     repositories.EstudanteRepository
	departamento  repositories.DepartamentoRepository
	proposta      repositories.PropostaRepository
	candidatura   repositories.CandidaturaRepository
	pedidoRemocao repositories.PedidoRemocaoRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.empresa = NewEmpresaPostgreSQL(config.DB, cacheManager)
	repo.estudante = NewEstudantePostgreSQL(config.DB)
	repo.departamento = NewDepartamentoPostgreSQL(config.DB, cacheManager)
	repo.proposta = NewPropostaPostgreSQL(config.DB, cacheManager)
	repo.candidatura = NewCandidaturaPostgreSQL(config.DB, cacheManager)
	repo.pedidoRemocao = NewPedidoRemocaoPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) Empresa() repositories.EmpresaRepository {
	return r.empresa
}

func (r *PostgreSQLRepository) Estudante() repositories.EstudanteRepository {
	return r.estudante
}

func (r *PostgreSQLRepository) Departamento() repositories.DepartamentoRepository {
	return r.departamento
}

func (r *PostgreSQLRepository) Proposta() repositories.PropostaRepository {
	return r.proposta
}

func (r *PostgreSQLRepository) Candidatura() repositories.CandidaturaRepository {
	return r.candidatura
}

func (r *PostgreSQLRepository) PedidoRemocao() repositories.PedidoRemocaoRepository {
	return r.pedidoRemocao
}

// WithTransaction executes a function within a database transaction. The
// callback receives a Repository whose sub-repositories are bound to the
// transaction; the account-removal cascade relies on this boundary.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.user = NewUserPostgreSQL(tx)
		txRepo.empresa = NewEmpresaPostgreSQL(tx, r.cacheManager)
		txRepo.estudante = NewEstudantePostgreSQL(tx)
		txRepo.departamento = NewDepartamentoPostgreSQL(tx, r.cacheManager)
		txRepo.proposta = NewPropostaPostgreSQL(tx, r.cacheManager)
		txRepo.candidatura = NewCandidaturaPostgreSQL(tx, r.cacheManager)
		txRepo.pedidoRemocao = NewPedidoRemocaoPostgreSQL(tx)

		return fn(txRepo)
	})
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	return nil
}

// RepositoryManager manages the repository lifecycle
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) *RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize initializes all repositories and connections
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck verifies all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

// Shutdown closes all repository connections
func (rm *RepositoryManager) Shutdown(_ context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
