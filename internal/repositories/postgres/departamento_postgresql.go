package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/cache"
	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type DepartamentoPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDepartamentoPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DepartamentoRepository {
	return &DepartamentoPostgreSQL{db: db, cacheManager: cacheManager}
}

func (d *DepartamentoPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Departamento, error) {
	var departamento models.Departamento
	if err := d.db.WithContext(ctx).First(&departamento, id).Error; err != nil {
		return nil, err
	}
	return &departamento, nil
}

func (d *DepartamentoPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Departamento, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var departamentos []*models.Departamento
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&departamentos).Error; err != nil {
		return nil, fmt.Errorf("failed to get departamentos: %w", err)
	}
	return departamentos, nil
}

func (d *DepartamentoPostgreSQL) List(ctx context.Context) ([]*models.Departamento, error) {
	var departamentos []*models.Departamento
	if err := d.db.WithContext(ctx).Order("nome asc").Find(&departamentos).Error; err != nil {
		return nil, fmt.Errorf("failed to list departamentos: %w", err)
	}
	return departamentos, nil
}

// ScopeFor returns the gestor's scope rows with departments preloaded,
// cached until the next Assign.
func (d *DepartamentoPostgreSQL) ScopeFor(ctx context.Context, gestorID uint) ([]*models.GestorDepartamento, error) {
	cacheKey := fmt.Sprintf("gestor:%d", gestorID)
	var scope []*models.GestorDepartamento

	err := d.cacheManager.Scope.CacheOrExecute(ctx, cacheKey, &scope, cache.ScopeCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.GestorDepartamento
		err := d.db.WithContext(ctx).
			Preload("Departamento").
			Where("gestor_id = ?", gestorID).
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get gestor scope: %w", err)
		}
		return rows, nil
	})

	if err != nil {
		return nil, err
	}

	return scope, nil
}

// ReplaceScope swaps the gestor's full department set in one transaction.
// This is a destructive set-replace, never a merge.
func (d *DepartamentoPostgreSQL) ReplaceScope(ctx context.Context, gestorID uint, departamentoIDs []uint) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("gestor_id = ?", gestorID).Delete(&models.GestorDepartamento{}).Error; err != nil {
			return fmt.Errorf("failed to clear gestor scope: %w", err)
		}

		for _, depID := range departamentoIDs {
			row := models.GestorDepartamento{GestorID: gestorID, DepartamentoID: depID}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to assign departamento %d: %w", depID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateScope(ctx, d.cacheManager, gestorID)
	return nil
}
