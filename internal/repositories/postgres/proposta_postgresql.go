package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/cache"
	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

var propostaSortColumns = map[string]bool{
	"created_at": true,
	"titulo":     true,
	"ativa_ate":  true,
}

type PropostaPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewPropostaPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PropostaRepository {
	return &PropostaPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

// Create inserts a new proposta and invalidates listing caches
func (p *PropostaPostgreSQL) Create(ctx context.Context, proposta *models.Proposta) error {
	if err := p.db.WithContext(ctx).Create(proposta).Error; err != nil {
		return fmt.Errorf("failed to create proposta: %w", err)
	}
	cache.InvalidateProposta(ctx, p.cacheManager, proposta.ID, proposta.EmpresaID)
	return nil
}

// GetByID retrieves a proposta by ID with its empresa preloaded, cached
func (p *PropostaPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Proposta, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var proposta models.Proposta

	err := p.cacheManager.Proposta.CacheOrExecute(ctx, cacheKey, &proposta, cache.PropostaCacheConfig.TTL, func() (interface{}, error) {
		var dbProposta models.Proposta
		err := p.db.WithContext(ctx).
			Preload("Empresa").
			First(&dbProposta, id).Error
		if err != nil {
			return nil, err
		}
		return &dbProposta, nil
	})

	if err != nil {
		return nil, err
	}

	return &proposta, nil
}

// Update persists the whole proposta row
func (p *PropostaPostgreSQL) Update(ctx context.Context, proposta *models.Proposta) error {
	if err := p.db.WithContext(ctx).Save(proposta).Error; err != nil {
		return fmt.Errorf("failed to update proposta: %w", err)
	}
	cache.InvalidateProposta(ctx, p.cacheManager, proposta.ID, proposta.EmpresaID)
	return nil
}

// Delete removes the proposta row. Candidatura cascade runs in the same
// service-level transaction, not here.
func (p *PropostaPostgreSQL) Delete(ctx context.Context, id uint) error {
	result := p.db.WithContext(ctx).Delete(&models.Proposta{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete proposta: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	cache.InvalidateProposta(ctx, p.cacheManager, id, 0)
	return nil
}

// List returns propostas matching the filters plus the unpaginated total
func (p *PropostaPostgreSQL) List(ctx context.Context, filters repositories.PropostaFilters) ([]*models.Proposta, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.Proposta{})
	query = p.helpers.ApplyPropostaFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count propostas: %w", err)
	}

	query = p.helpers.ApplySorting(query, filters.SortBy, filters.SortOrder, propostaSortColumns)
	query = p.helpers.ApplyPagination(query, filters.Limit, filters.Offset)

	var propostas []*models.Proposta
	if err := query.Preload("Empresa").Find(&propostas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list propostas: %w", err)
	}

	return propostas, total, nil
}

// ListAtivas returns every ativa proposta of a validated empresa. This is
// the matching engine's input set and is deliberately uncached: matching
// results are recomputed on every read.
func (p *PropostaPostgreSQL) ListAtivas(ctx context.Context) ([]*models.Proposta, error) {
	var propostas []*models.Proposta
	err := p.db.WithContext(ctx).
		Joins("JOIN empresas ON empresas.id = propostas.empresa_id AND empresas.validada = true AND empresas.deleted_at IS NULL").
		Where("propostas.estado = ?", models.PropostaAtiva).
		Preload("Empresa").
		Find(&propostas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ativa propostas: %w", err)
	}
	return propostas, nil
}

// UpdateEstado performs the single conditional row update the state
// machine is built on. RowsAffected 0 means the proposta vanished.
func (p *PropostaPostgreSQL) UpdateEstado(ctx context.Context, id uint, estado models.PropostaEstado, ativaAte *time.Time) error {
	result := p.db.WithContext(ctx).
		Model(&models.Proposta{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":    estado,
			"ativa_ate": ativaAte,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update proposta estado: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.SafeDelete(ctx, p.cacheManager.Proposta, fmt.Sprintf("id:%d", id))
	cache.SafeInvalidatePattern(ctx, p.cacheManager.Proposta, "list:*")
	return nil
}

// ExpireOverdue is the batch sweep: every ativa proposta past its deadline
// becomes inativa. Not transactional with user-initiated transitions;
// last writer wins.
func (p *PropostaPostgreSQL) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := p.db.WithContext(ctx).
		Model(&models.Proposta{}).
		Where("estado = ? AND ativa_ate IS NOT NULL AND ativa_ate < ?", models.PropostaAtiva, now).
		Update("estado", models.PropostaInativa)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire propostas: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		cache.SafeInvalidatePattern(ctx, p.cacheManager.Proposta, "*")
	}
	return result.RowsAffected, nil
}
