package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ESTG-P5-2025/propostas-service/internal/events"
	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type empresaService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.Publisher
}

func NewEmpresaService(repo repositories.Repository, logger *slog.Logger, publisher events.Publisher) EmpresaService {
	return &empresaService{repo: repo, logger: logger, publisher: publisher}
}

// Validate flips the empresa's validada flag, unblocking login and
// proposta visibility. Admins and gestores may validate.
func (s *empresaService) Validate(ctx context.Context, empresaID uint, actor Actor) error {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleGestor {
		return NewPermissionError(actor.UserID, empresaID, "empresa", "validate", "only admins and gestores validate empresas")
	}

	empresa, err := s.repo.Empresa().GetByID(ctx, empresaID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrEmpresaNotFound
		}
		return fmt.Errorf("failed to load empresa: %w", err)
	}
	if empresa.Validada {
		return nil
	}

	if err := s.repo.Empresa().SetValidada(ctx, empresaID, true); err != nil {
		return fmt.Errorf("failed to validate empresa: %w", err)
	}

	if s.publisher != nil {
		event := events.NewEvent(events.TypeEmpresaValidada, events.EmpresaValidadaEvent{
			EmpresaID: empresaID,
			ActorID:   actor.UserID,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
		}
	}

	s.logger.Info("Empresa validated", "empresa_id", empresaID, "actor_id", actor.UserID)
	return nil
}

func (s *empresaService) ListPorValidar(ctx context.Context) ([]*models.Empresa, error) {
	empresas, err := s.repo.Empresa().ListPorValidar(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list empresas por validar: %w", err)
	}
	return empresas, nil
}
