package postgres

import (
	"fmt"

	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"gorm.io/gorm"
)

// SharedHelpers contains common database query helpers
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyPropostaFilters applies common filters to proposta queries
func (h *SharedHelpers) ApplyPropostaFilters(query *gorm.DB, filters repositories.PropostaFilters) *gorm.DB {
	if filters.Estado != nil {
		query = query.Where("estado = ?", *filters.Estado)
	}
	if filters.EmpresaID != nil {
		query = query.Where("empresa_id = ?", *filters.EmpresaID)
	}
	if filters.GestorID != nil && len(filters.Departamentos) > 0 {
		// Restricted gestor scope: department match OR own creations
		query = query.Where("departamento IN ? OR gestor_id = ?", filters.Departamentos, *filters.GestorID)
	} else if len(filters.Departamentos) > 0 {
		query = query.Where("departamento IN ?", filters.Departamentos)
	} else if filters.GestorID != nil {
		query = query.Where("gestor_id = ?", *filters.GestorID)
	}
	return query
}

// ApplyCandidaturaFilters applies common filters to candidatura queries
func (h *SharedHelpers) ApplyCandidaturaFilters(query *gorm.DB, filters repositories.CandidaturaFilters) *gorm.DB {
	if filters.Estado != nil {
		query = query.Where("candidaturas.estado = ?", *filters.Estado)
	}
	if filters.EstudanteID != nil {
		query = query.Where("candidaturas.estudante_id = ?", *filters.EstudanteID)
	}
	if filters.PropostaID != nil {
		query = query.Where("candidaturas.proposta_id = ?", *filters.PropostaID)
	}
	return query
}

// ApplySorting applies validated sorting; unknown columns fall back to
// created_at to keep user input out of the ORDER BY clause.
func (h *SharedHelpers) ApplySorting(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))
}

// ApplyPagination applies limit/offset with sane defaults
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
