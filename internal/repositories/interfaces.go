package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type PropostaFilters struct {
	Estado        *models.PropostaEstado `json:"estado"`
	EmpresaID     *uint                  `json:"empresa_id"`
	GestorID      *uint                  `json:"gestor_id"`
	Departamentos []string               `json:"departamentos"` // department names; empty means no department restriction
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
	SortBy        string                 `json:"sort_by"`    // "created_at", "titulo", "ativa_ate"
	SortOrder     string                 `json:"sort_order"` // "asc", "desc"
}

type CandidaturaFilters struct {
	Estado      *models.CandidaturaEstado `json:"estado"`
	EstudanteID *uint                     `json:"estudante_id"`
	PropostaID  *uint                     `json:"proposta_id"`
	Limit       int                       `json:"limit"`
	Offset      int                       `json:"offset"`
}

type PedidoRemocaoFilters struct {
	Estado      *models.PedidoRemocaoEstado `json:"estado"`
	EstudanteID *uint                       `json:"estudante_id"`
	Limit       int                         `json:"limit"`
	Offset      int                         `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// CandidaturaAggregates holds the raw per-empresa aggregates computed by the
// store; the service layer derives rates and presentation from it.
type CandidaturaAggregates struct {
	Total              int64    `json:"total"`
	Pendentes          int64    `json:"pendentes"`
	Aceites            int64    `json:"aceites"`
	Rejeitadas         int64    `json:"rejeitadas"`
	NovasUltimos30Dias int64    `json:"novas_ultimos_30_dias"`
	MediaRespostaDias  *float64 `json:"media_resposta_dias"` // nil when nothing has been responded to
}

// ===== REPOSITORY INTERFACES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
	// Delete hard-deletes the user row. Dependent rows are removed by the
	// caller inside the same transaction; see remocaoService.Resolve.
	Delete(ctx context.Context, id uint) error
}

type EmpresaRepository interface {
	Create(ctx context.Context, empresa *models.Empresa) error
	GetByID(ctx context.Context, id uint) (*models.Empresa, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Empresa, error)
	SetValidada(ctx context.Context, id uint, validada bool) error
	ListPorValidar(ctx context.Context) ([]*models.Empresa, error)
}

type EstudanteRepository interface {
	Create(ctx context.Context, estudante *models.Estudante) error
	GetByID(ctx context.Context, id uint) (*models.Estudante, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Estudante, error)
	Update(ctx context.Context, estudante *models.Estudante) error
	Delete(ctx context.Context, id uint) error

	// Favorites
	AddFavorito(ctx context.Context, estudanteID, propostaID uint) error
	RemoveFavorito(ctx context.Context, estudanteID, propostaID uint) error
	ListFavoritos(ctx context.Context, estudanteID uint) ([]*models.Proposta, error)
	ClearFavoritos(ctx context.Context, estudanteID uint) error

	// DepartamentoIDs returns the departments the estudante belongs to,
	// used by the removal workflow's gestor authorization check.
	DepartamentoIDs(ctx context.Context, estudanteID uint) ([]uint, error)
}

type DepartamentoRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Departamento, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Departamento, error)
	List(ctx context.Context) ([]*models.Departamento, error)

	// Gestor scope index
	ScopeFor(ctx context.Context, gestorID uint) ([]*models.GestorDepartamento, error)
	ReplaceScope(ctx context.Context, gestorID uint, departamentoIDs []uint) error
}

type PropostaRepository interface {
	Create(ctx context.Context, proposta *models.Proposta) error
	GetByID(ctx context.Context, id uint) (*models.Proposta, error)
	Update(ctx context.Context, proposta *models.Proposta) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters PropostaFilters) ([]*models.Proposta, int64, error)
	ListAtivas(ctx context.Context) ([]*models.Proposta, error)

	// UpdateEstado is a single conditional row update; ativaAte is written
	// as given (nil clears the deadline).
	UpdateEstado(ctx context.Context, id uint, estado models.PropostaEstado, ativaAte *time.Time) error

	// ExpireOverdue moves every ativa proposta whose deadline passed to
	// inativa and reports how many rows changed.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type CandidaturaRepository interface {
	Create(ctx context.Context, candidatura *models.Candidatura) error
	GetByID(ctx context.Context, id uint) (*models.Candidatura, error)
	Update(ctx context.Context, candidatura *models.Candidatura) error
	Exists(ctx context.Context, estudanteID, propostaID uint) (bool, error)
	List(ctx context.Context, filters CandidaturaFilters) ([]*models.Candidatura, int64, error)
	ListByEmpresa(ctx context.Context, empresaID uint, filters CandidaturaFilters) ([]*models.Candidatura, int64, error)
	DeleteByEstudante(ctx context.Context, estudanteID uint) error
	DeleteByProposta(ctx context.Context, propostaID uint) error
	AggregatesByEmpresa(ctx context.Context, empresaID uint, now time.Time) (*CandidaturaAggregates, error)
}

type PedidoRemocaoRepository interface {
	Create(ctx context.Context, pedido *models.PedidoRemocao) error
	GetByID(ctx context.Context, id uint) (*models.PedidoRemocao, error)
	Update(ctx context.Context, pedido *models.PedidoRemocao) error
	ExistsPendente(ctx context.Context, estudanteID uint) (bool, error)
	List(ctx context.Context, filters PedidoRemocaoFilters) ([]*models.PedidoRemocao, int64, error)
}

// ===== SHARED ERROR HELPERS =====

// IsNotFoundError reports whether err is the store's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
