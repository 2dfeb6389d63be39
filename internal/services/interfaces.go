package services

import (
	"context"
	"time"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

// Actor identifies the authenticated caller for permission checks. The
// handlers build it from the JWT claims.
type Actor struct {
	UserID uint
	Role   models.UserRole
}

// ===== RESPONSE DTOS =====

type UserResponse struct {
	ID    uint            `json:"id"`
	Nome  string          `json:"nome"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// AuthResponse is the login result: a signed bearer token plus the profile
// IDs the client needs for follow-up calls.
type AuthResponse struct {
	Token       string       `json:"token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
	EmpresaID   *uint        `json:"empresa_id,omitempty"`
	EstudanteID *uint        `json:"estudante_id,omitempty"`
}

type GestorResponse struct {
	UserResponse
	Departamentos []models.Departamento `json:"departamentos"`
}

type PropostaResponse struct {
	ID           uint                   `json:"id"`
	EmpresaID    uint                   `json:"empresa_id"`
	Empresa      *models.EmpresaSummary `json:"empresa,omitempty"`
	GestorID     *uint                  `json:"gestor_id,omitempty"`
	Titulo       string                 `json:"titulo"`
	Descricao    *string                `json:"descricao,omitempty"`
	Departamento string                 `json:"departamento"`
	Estado       models.PropostaEstado  `json:"estado"`
	Areas        []string               `json:"areas"`
	AtivaAte     *time.Time             `json:"ativa_ate,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type PropostaListResponse struct {
	Propostas []*PropostaResponse `json:"propostas"`
	Total     int64               `json:"total"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

type CandidaturaEstudante struct {
	ID           uint   `json:"id"`
	Nome         string `json:"nome"`
	Competencias string `json:"competencias"`
}

type CandidaturaResponse struct {
	ID          uint                     `json:"id"`
	EstudanteID uint                     `json:"estudante_id"`
	PropostaID  uint                     `json:"proposta_id"`
	Estado      models.CandidaturaEstado `json:"estado"`
	SubmittedAt time.Time                `json:"submitted_at"`
	RespondedAt *time.Time               `json:"responded_at,omitempty"`
	Proposta    *PropostaResponse        `json:"proposta,omitempty"`
	Estudante   *CandidaturaEstudante    `json:"estudante,omitempty"`
}

type CandidaturaListResponse struct {
	Candidaturas []*CandidaturaResponse `json:"candidaturas"`
	Total        int64                  `json:"total"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// MatchResponse is one matching-engine hit with the areas that matched the
// student's competencias.
type MatchResponse struct {
	Proposta     *PropostaResponse `json:"proposta"`
	MatchedAreas []string          `json:"matched_areas"`
}

type PedidoRemocaoResponse struct {
	ID          uint                       `json:"id"`
	EstudanteID uint                       `json:"estudante_id"`
	Estado      models.PedidoRemocaoEstado `json:"estado"`
	Motivo      string                     `json:"motivo"`
	ResolvedBy  *uint                      `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time                 `json:"resolved_at,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
}

// EmpresaStatsResponse is the dashboard projection of the per-empresa
// candidatura aggregates. TempoMedioResposta is human formatted and reads
// "0 dias" when nothing has been responded to yet.
type EmpresaStatsResponse struct {
	TotalCandidaturas  int64   `json:"total_candidaturas"`
	Pendentes          int64   `json:"pendentes"`
	Aceites            int64   `json:"aceites"`
	Rejeitadas         int64   `json:"rejeitadas"`
	NovasUltimos30Dias int64   `json:"novas_ultimos_30_dias"`
	TaxaAceitacao      float64 `json:"taxa_aceitacao"`
	TempoMedioResposta string  `json:"tempo_medio_resposta"`
}

// GestorScope is the explicit authorization scope of a gestor. All is true
// when the gestor has no department assignments; that gestor moderates
// every department.
type GestorScope struct {
	GestorID      uint                  `json:"gestor_id"`
	All           bool                  `json:"all"`
	Departamentos []models.Departamento `json:"departamentos"`
}

// DepartamentoNames returns the scope's department names, nil when All.
func (s *GestorScope) DepartamentoNames() []string {
	if s.All {
		return nil
	}
	names := make([]string, 0, len(s.Departamentos))
	for _, d := range s.Departamentos {
		names = append(names, d.Nome)
	}
	return names
}

// Covers reports whether the scope includes the given department name.
func (s *GestorScope) Covers(departamento string) bool {
	if s.All {
		return true
	}
	for _, d := range s.Departamentos {
		if d.Nome == departamento {
			return true
		}
	}
	return false
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Authenticate(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error)
	CreateUser(ctx context.Context, req *validator.CreateUserRequest, actor Actor) (*UserResponse, error)
	ListGestores(ctx context.Context) ([]*GestorResponse, error)
	VerifyToken(tokenString string) (*Actor, error)
}

type ScopeService interface {
	ScopeFor(ctx context.Context, gestorID uint) (*GestorScope, error)
	IsAuthorized(ctx context.Context, gestorID uint, proposta *models.Proposta) (bool, error)
	Assign(ctx context.Context, gestorID uint, departamentoIDs []uint, actor Actor) (*GestorScope, error)
	ListDepartamentos(ctx context.Context) ([]*models.Departamento, error)
}

type EmpresaService interface {
	Validate(ctx context.Context, empresaID uint, actor Actor) error
	ListPorValidar(ctx context.Context) ([]*models.Empresa, error)
}

type PropostaService interface {
	Create(ctx context.Context, req *validator.PropostaCreateRequest, actor Actor) (*PropostaResponse, error)
	GetByID(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error)
	Update(ctx context.Context, id uint, req *validator.PropostaUpdateRequest, actor Actor) (*PropostaResponse, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, filters repositories.PropostaFilters, actor Actor) (*PropostaListResponse, error)

	// State machine operations
	Aprovar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error)
	Desativar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error)
	Reativar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error)
	Arquivar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error)
	UpdateEstado(ctx context.Context, id uint, req *validator.EstadoUpdateRequest, actor Actor) (*PropostaResponse, error)
}

type CandidaturaService interface {
	Apply(ctx context.Context, propostaID uint, actor Actor) (*CandidaturaResponse, error)
	Decide(ctx context.Context, candidaturaID uint, req *validator.CandidaturaDecideRequest, actor Actor) (*CandidaturaResponse, error)
	ListByEstudante(ctx context.Context, actor Actor, filters repositories.CandidaturaFilters) (*CandidaturaListResponse, error)
	ListByEmpresa(ctx context.Context, actor Actor, filters repositories.CandidaturaFilters) (*CandidaturaListResponse, error)
}

type MatchingService interface {
	MatchesFor(ctx context.Context, actor Actor) ([]*MatchResponse, error)
}

type EstudanteService interface {
	AddFavorito(ctx context.Context, propostaID uint, actor Actor) error
	RemoveFavorito(ctx context.Context, propostaID uint, actor Actor) error
	ListFavoritos(ctx context.Context, actor Actor) ([]*PropostaResponse, error)
	UpdateCompetencias(ctx context.Context, req *validator.CompetenciasUpdateRequest, actor Actor) error
}

type RemocaoService interface {
	Create(ctx context.Context, req *validator.PedidoRemocaoCreateRequest, actor Actor) (*PedidoRemocaoResponse, error)
	List(ctx context.Context, filters repositories.PedidoRemocaoFilters) ([]*PedidoRemocaoResponse, int64, error)
	Resolve(ctx context.Context, pedidoID uint, req *validator.PedidoRemocaoResolveRequest, actor Actor) (*PedidoRemocaoResponse, error)
}

type DashboardService interface {
	Estatisticas(ctx context.Context, actor Actor) (*EmpresaStatsResponse, error)
	// ExportEstatisticas renders the same numbers as an xlsx workbook and
	// returns the file bytes plus a suggested filename.
	ExportEstatisticas(ctx context.Context, actor Actor) ([]byte, string, error)
}

// ServiceManager provides access to all services with lifecycle management.
type ServiceManager interface {
	Auth() AuthService
	Scope() ScopeService
	Empresa() EmpresaService
	Proposta() PropostaService
	Candidatura() CandidaturaService
	Matching() MatchingService
	Estudante() EstudanteService
	Remocao() RemocaoService
	Dashboard() DashboardService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
