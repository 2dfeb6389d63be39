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

type CandidaturaPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewCandidaturaPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CandidaturaRepository {
	return &CandidaturaPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
	}
}

func (c *CandidaturaPostgreSQL) Create(ctx context.Context, candidatura *models.Candidatura) error {
	if err := c.db.WithContext(ctx).Create(candidatura).Error; err != nil {
		return fmt.Errorf("failed to create candidatura: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Stats, "empresa:*")
	return nil
}

func (c *CandidaturaPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Candidatura, error) {
	var candidatura models.Candidatura
	err := c.db.WithContext(ctx).
		Preload("Proposta").
		Preload("Estudante").
		First(&candidatura, id).Error
	if err != nil {
		return nil, err
	}
	return &candidatura, nil
}

func (c *CandidaturaPostgreSQL) Update(ctx context.Context, candidatura *models.Candidatura) error {
	if err := c.db.WithContext(ctx).Save(candidatura).Error; err != nil {
		return fmt.Errorf("failed to update candidatura: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, c.cacheManager.Stats, "empresa:*")
	return nil
}

func (c *CandidaturaPostgreSQL) Exists(ctx context.Context, estudanteID, propostaID uint) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Model(&models.Candidatura{}).
		Where("estudante_id = ? AND proposta_id = ?", estudanteID, propostaID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check candidatura existence: %w", err)
	}
	return count > 0, nil
}

func (c *CandidaturaPostgreSQL) List(ctx context.Context, filters repositories.CandidaturaFilters) ([]*models.Candidatura, int64, error) {
	query := c.db.WithContext(ctx).Model(&models.Candidatura{})
	query = c.helpers.ApplyCandidaturaFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count candidaturas: %w", err)
	}

	query = c.helpers.ApplyPagination(query.Order("submitted_at desc"), filters.Limit, filters.Offset)

	var candidaturas []*models.Candidatura
	if err := query.Preload("Proposta").Preload("Proposta.Empresa").Find(&candidaturas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list candidaturas: %w", err)
	}

	return candidaturas, total, nil
}

// ListByEmpresa returns candidaturas targeting any proposta of the empresa
func (c *CandidaturaPostgreSQL) ListByEmpresa(ctx context.Context, empresaID uint, filters repositories.CandidaturaFilters) ([]*models.Candidatura, int64, error) {
	base := c.db.WithContext(ctx).
		Model(&models.Candidatura{}).
		Joins("JOIN propostas ON propostas.id = candidaturas.proposta_id").
		Where("propostas.empresa_id = ?", empresaID)
	base = c.helpers.ApplyCandidaturaFilters(base, filters)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count empresa candidaturas: %w", err)
	}

	query := c.helpers.ApplyPagination(base.Order("candidaturas.submitted_at desc"), filters.Limit, filters.Offset)

	var candidaturas []*models.Candidatura
	if err := query.Preload("Proposta").Preload("Estudante").Find(&candidaturas).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list empresa candidaturas: %w", err)
	}

	return candidaturas, total, nil
}

// DeleteByEstudante removes every candidatura of an estudante; part of the
// account-removal cascade.
func (c *CandidaturaPostgreSQL) DeleteByEstudante(ctx context.Context, estudanteID uint) error {
	err := c.db.WithContext(ctx).
		Unscoped().
		Where("estudante_id = ?", estudanteID).
		Delete(&models.Candidatura{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete candidaturas by estudante: %w", err)
	}
	return nil
}

// DeleteByProposta removes every candidatura of a proposta; part of the
// proposta deletion cascade.
func (c *CandidaturaPostgreSQL) DeleteByProposta(ctx context.Context, propostaID uint) error {
	err := c.db.WithContext(ctx).
		Unscoped().
		Where("proposta_id = ?", propostaID).
		Delete(&models.Candidatura{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete candidaturas by proposta: %w", err)
	}
	return nil
}

// aggregatesRow receives the single-row aggregate scan
type aggregatesRow struct {
	Total             int64
	Pendentes         int64
	Aceites           int64
	Rejeitadas        int64
	Novas30d          int64
	MediaRespostaDias *float64
}

// AggregatesByEmpresa computes the empresa dashboard aggregates in one
// query, cached briefly since the dashboard is polled.
func (c *CandidaturaPostgreSQL) AggregatesByEmpresa(ctx context.Context, empresaID uint, now time.Time) (*repositories.CandidaturaAggregates, error) {
	cacheKey := fmt.Sprintf("empresa:%d", empresaID)
	var agg repositories.CandidaturaAggregates

	err := c.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &agg, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row aggregatesRow
		err := c.db.WithContext(ctx).
			Model(&models.Candidatura{}).
			Select(`
				COUNT(*) AS total,
				COUNT(*) FILTER (WHERE candidaturas.estado = 'pendente') AS pendentes,
				COUNT(*) FILTER (WHERE candidaturas.estado = 'aceite') AS aceites,
				COUNT(*) FILTER (WHERE candidaturas.estado = 'rejeitada') AS rejeitadas,
				COUNT(*) FILTER (WHERE candidaturas.submitted_at >= ?) AS novas30d,
				AVG(EXTRACT(EPOCH FROM (candidaturas.responded_at - candidaturas.submitted_at)) / 86400.0)
					FILTER (WHERE candidaturas.responded_at IS NOT NULL) AS media_resposta_dias`,
				now.Add(-30*24*time.Hour)).
			Joins("JOIN propostas ON propostas.id = candidaturas.proposta_id").
			Where("propostas.empresa_id = ?", empresaID).
			Scan(&row).Error
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate candidaturas: %w", err)
		}

		return &repositories.CandidaturaAggregates{
			Total:              row.Total,
			Pendentes:          row.Pendentes,
			Aceites:            row.Aceites,
			Rejeitadas:         row.Rejeitadas,
			NovasUltimos30Dias: row.Novas30d,
			MediaRespostaDias:  row.MediaRespostaDias,
		}, nil
	})

	if err != nil {
		return nil, err
	}

	return &agg, nil
}
