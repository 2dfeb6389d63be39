package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type PedidoRemocaoPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewPedidoRemocaoPostgreSQL(db *gorm.DB) repositories.PedidoRemocaoRepository {
	return &PedidoRemocaoPostgreSQL{db: db, helpers: NewSharedHelpers(db)}
}

func (p *PedidoRemocaoPostgreSQL) Create(ctx context.Context, pedido *models.PedidoRemocao) error {
	if err := p.db.WithContext(ctx).Create(pedido).Error; err != nil {
		return fmt.Errorf("failed to create pedido de remocao: %w", err)
	}
	return nil
}

func (p *PedidoRemocaoPostgreSQL) GetByID(ctx context.Context, id uint) (*models.PedidoRemocao, error) {
	var pedido models.PedidoRemocao
	err := p.db.WithContext(ctx).
		Preload("Estudante").
		First(&pedido, id).Error
	if err != nil {
		return nil, err
	}
	return &pedido, nil
}

func (p *PedidoRemocaoPostgreSQL) Update(ctx context.Context, pedido *models.PedidoRemocao) error {
	if err := p.db.WithContext(ctx).Save(pedido).Error; err != nil {
		return fmt.Errorf("failed to update pedido de remocao: %w", err)
	}
	return nil
}

func (p *PedidoRemocaoPostgreSQL) ExistsPendente(ctx context.Context, estudanteID uint) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.PedidoRemocao{}).
		Where("estudante_id = ? AND estado = ?", estudanteID, models.PedidoPendente).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pendente pedido: %w", err)
	}
	return count > 0, nil
}

func (p *PedidoRemocaoPostgreSQL) List(ctx context.Context, filters repositories.PedidoRemocaoFilters) ([]*models.PedidoRemocao, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.PedidoRemocao{})
	if filters.Estado != nil {
		query = query.Where("estado = ?", *filters.Estado)
	}
	if filters.EstudanteID != nil {
		query = query.Where("estudante_id = ?", *filters.EstudanteID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pedidos de remocao: %w", err)
	}

	query = p.helpers.ApplyPagination(query.Order("created_at asc"), filters.Limit, filters.Offset)

	var pedidos []*models.PedidoRemocao
	if err := query.Preload("Estudante").Find(&pedidos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list pedidos de remocao: %w", err)
	}

	return pedidos, total, nil
}
