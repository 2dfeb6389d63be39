package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type EstudantePostgreSQL struct {
	db *gorm.DB
}

func NewEstudantePostgreSQL(db *gorm.DB) repositories.EstudanteRepository {
	return &EstudantePostgreSQL{db: db}
}

func (e *EstudantePostgreSQL) Create(ctx context.Context, estudante *models.Estudante) error {
	if err := e.db.WithContext(ctx).Create(estudante).Error; err != nil {
		return fmt.Errorf("failed to create estudante: %w", err)
	}
	return nil
}

func (e *EstudantePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Estudante, error) {
	var estudante models.Estudante
	if err := e.db.WithContext(ctx).First(&estudante, id).Error; err != nil {
		return nil, err
	}
	return &estudante, nil
}

func (e *EstudantePostgreSQL) GetByUserID(ctx context.Context, userID uint) (*models.Estudante, error) {
	var estudante models.Estudante
	if err := e.db.WithContext(ctx).Where("user_id = ?", userID).First(&estudante).Error; err != nil {
		return nil, err
	}
	return &estudante, nil
}

func (e *EstudantePostgreSQL) Update(ctx context.Context, estudante *models.Estudante) error {
	if err := e.db.WithContext(ctx).Save(estudante).Error; err != nil {
		return fmt.Errorf("failed to update estudante: %w", err)
	}
	return nil
}

// Delete hard-deletes the estudante profile row as part of the removal
// cascade.
func (e *EstudantePostgreSQL) Delete(ctx context.Context, id uint) error {
	result := e.db.WithContext(ctx).Unscoped().Delete(&models.Estudante{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete estudante: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (e *EstudantePostgreSQL) AddFavorito(ctx context.Context, estudanteID, propostaID uint) error {
	err := e.db.WithContext(ctx).Exec(
		"INSERT INTO estudante_favoritos (estudante_id, proposta_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		estudanteID, propostaID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to add favorito: %w", err)
	}
	return nil
}

func (e *EstudantePostgreSQL) RemoveFavorito(ctx context.Context, estudanteID, propostaID uint) error {
	err := e.db.WithContext(ctx).Exec(
		"DELETE FROM estudante_favoritos WHERE estudante_id = ? AND proposta_id = ?",
		estudanteID, propostaID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to remove favorito: %w", err)
	}
	return nil
}

func (e *EstudantePostgreSQL) ListFavoritos(ctx context.Context, estudanteID uint) ([]*models.Proposta, error) {
	var propostas []*models.Proposta
	err := e.db.WithContext(ctx).
		Joins("JOIN estudante_favoritos ef ON ef.proposta_id = propostas.id").
		Where("ef.estudante_id = ?", estudanteID).
		Preload("Empresa").
		Find(&propostas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list favoritos: %w", err)
	}
	return propostas, nil
}

// ClearFavoritos removes every favorite row of an estudante; part of the
// removal cascade.
func (e *EstudantePostgreSQL) ClearFavoritos(ctx context.Context, estudanteID uint) error {
	err := e.db.WithContext(ctx).Exec(
		"DELETE FROM estudante_favoritos WHERE estudante_id = ?", estudanteID,
	).Error
	if err != nil {
		return fmt.Errorf("failed to clear favoritos: %w", err)
	}
	return nil
}

func (e *EstudantePostgreSQL) DepartamentoIDs(ctx context.Context, estudanteID uint) ([]uint, error) {
	var ids []uint
	err := e.db.WithContext(ctx).
		Table("estudante_departamentos").
		Where("estudante_id = ?", estudanteID).
		Pluck("departamento_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get estudante departamentos: %w", err)
	}
	return ids, nil
}
