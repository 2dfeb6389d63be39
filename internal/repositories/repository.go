package repositories

import "context"

// Repository aggregates all entity repositories. Implementations bound to a
// transaction are handed to the callback of WithTransaction.
type Repository interface {
	User() UserRepository
	Empresa() EmpresaRepository
	Estudante() EstudanteRepository
	Departamento() DepartamentoRepository
	Proposta() PropostaRepository
	Candidatura() CandidaturaRepository
	PedidoRemocao() PedidoRemocaoRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
