package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

type estudanteService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewEstudanteService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) EstudanteService {
	return &estudanteService{repo: repo, logger: logger, validator: validator}
}

// AddFavorito bookmarks a proposta. Adding twice is a no-op; the proposta
// must exist but does not have to be ativa, bookmarks survive deactivation.
func (s *estudanteService) AddFavorito(ctx context.Context, propostaID uint, actor Actor) error {
	estudante, err := s.estudanteFor(ctx, actor)
	if err != nil {
		return err
	}

	if _, err := s.repo.Proposta().GetByID(ctx, propostaID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPropostaNotFound
		}
		return fmt.Errorf("failed to load proposta: %w", err)
	}

	if err := s.repo.Estudante().AddFavorito(ctx, estudante.ID, propostaID); err != nil {
		return fmt.Errorf("failed to add favorito: %w", err)
	}

	s.logger.Info("Favorito added", "estudante_id", estudante.ID, "proposta_id", propostaID)
	return nil
}

func (s *estudanteService) RemoveFavorito(ctx context.Context, propostaID uint, actor Actor) error {
	estudante, err := s.estudanteFor(ctx, actor)
	if err != nil {
		return err
	}
	if err := s.repo.Estudante().RemoveFavorito(ctx, estudante.ID, propostaID); err != nil {
		return fmt.Errorf("failed to remove favorito: %w", err)
	}
	return nil
}

func (s *estudanteService) ListFavoritos(ctx context.Context, actor Actor) ([]*PropostaResponse, error) {
	estudante, err := s.estudanteFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	propostas, err := s.repo.Estudante().ListFavoritos(ctx, estudante.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favoritos: %w", err)
	}

	responses := make([]*PropostaResponse, 0, len(propostas))
	for _, p := range propostas {
		responses = append(responses, toPropostaResponse(p))
	}
	return responses, nil
}

func (s *estudanteService) UpdateCompetencias(ctx context.Context, req *validator.CompetenciasUpdateRequest, actor Actor) error {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return errs
	}

	estudante, err := s.estudanteFor(ctx, actor)
	if err != nil {
		return err
	}

	estudante.Competencias = req.Competencias
	if err := s.repo.Estudante().Update(ctx, estudante); err != nil {
		return fmt.Errorf("failed to update competencias: %w", err)
	}

	s.logger.Info("Competencias updated", "estudante_id", estudante.ID)
	return nil
}

func (s *estudanteService) estudanteFor(ctx context.Context, actor Actor) (*models.Estudante, error) {
	if actor.Role != models.RoleEstudante {
		return nil, NewPermissionError(actor.UserID, 0, "estudante", "access", "estudante-only operation")
	}
	estudante, err := s.repo.Estudante().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEstudanteNotFound
		}
		return nil, fmt.Errorf("failed to load estudante profile: %w", err)
	}
	return estudante, nil
}
