package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/cache"
	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type EmpresaPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewEmpresaPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.EmpresaRepository {
	return &EmpresaPostgreSQL{db: db, cacheManager: cacheManager}
}

func (e *EmpresaPostgreSQL) Create(ctx context.Context, empresa *models.Empresa) error {
	if err := e.db.WithContext(ctx).Create(empresa).Error; err != nil {
		return fmt.Errorf("failed to create empresa: %w", err)
	}
	return nil
}

// GetByID retrieves an empresa by ID, cached for the matching read path
func (e *EmpresaPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Empresa, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var empresa models.Empresa

	err := e.cacheManager.Empresa.CacheOrExecute(ctx, cacheKey, &empresa, cache.EmpresaCacheConfig.TTL, func() (interface{}, error) {
		var dbEmpresa models.Empresa
		if err := e.db.WithContext(ctx).First(&dbEmpresa, id).Error; err != nil {
			return nil, err
		}
		return &dbEmpresa, nil
	})

	if err != nil {
		return nil, err
	}

	return &empresa, nil
}

func (e *EmpresaPostgreSQL) GetByUserID(ctx context.Context, userID uint) (*models.Empresa, error) {
	var empresa models.Empresa
	if err := e.db.WithContext(ctx).Where("user_id = ?", userID).First(&empresa).Error; err != nil {
		return nil, err
	}
	return &empresa, nil
}

func (e *EmpresaPostgreSQL) SetValidada(ctx context.Context, id uint, validada bool) error {
	result := e.db.WithContext(ctx).
		Model(&models.Empresa{}).
		Where("id = ?", id).
		Update("validada", validada)
	if result.Error != nil {
		return fmt.Errorf("failed to update empresa validada: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	cache.InvalidateEmpresa(ctx, e.cacheManager, id)
	return nil
}

func (e *EmpresaPostgreSQL) ListPorValidar(ctx context.Context) ([]*models.Empresa, error) {
	var empresas []*models.Empresa
	err := e.db.WithContext(ctx).
		Where("validada = false").
		Order("created_at asc").
		Find(&empresas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list empresas por validar: %w", err)
	}
	return empresas, nil
}
