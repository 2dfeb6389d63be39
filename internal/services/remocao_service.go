package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ESTG-P5-2025/propostas-service/internal/events"
	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

type remocaoService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
	scope     ScopeService
}

func NewRemocaoService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher, scope ScopeService) RemocaoService {
	return &remocaoService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		scope:     scope,
	}
}

// Create opens an account removal request. At most one pendente pedido may
// exist per estudante.
func (s *remocaoService) Create(ctx context.Context, req *validator.PedidoRemocaoCreateRequest, actor Actor) (*PedidoRemocaoResponse, error) {
	if actor.Role != models.RoleEstudante {
		return nil, NewPermissionError(actor.UserID, 0, "pedido_remocao", "create", "only estudantes request removal")
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	estudante, err := s.repo.Estudante().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEstudanteNotFound
		}
		return nil, fmt.Errorf("failed to load estudante profile: %w", err)
	}

	pendente, err := s.repo.PedidoRemocao().ExistsPendente(ctx, estudante.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pendente pedido: %w", err)
	}
	if pendente {
		return nil, ErrDuplicatePedido
	}

	pedido := &models.PedidoRemocao{
		EstudanteID: estudante.ID,
		Estado:      models.PedidoPendente,
		Motivo:      req.Motivo,
	}
	if err := s.repo.PedidoRemocao().Create(ctx, pedido); err != nil {
		return nil, fmt.Errorf("failed to create pedido de remocao: %w", err)
	}

	s.logger.Info("Pedido de remocao created", "pedido_id", pedido.ID, "estudante_id", estudante.ID)
	return s.toResponse(pedido), nil
}

func (s *remocaoService) List(ctx context.Context, filters repositories.PedidoRemocaoFilters) ([]*PedidoRemocaoResponse, int64, error) {
	pedidos, total, err := s.repo.PedidoRemocao().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pedidos de remocao: %w", err)
	}

	responses := make([]*PedidoRemocaoResponse, 0, len(pedidos))
	for _, p := range pedidos {
		responses = append(responses, s.toResponse(p))
	}
	return responses, total, nil
}

// Resolve closes a pendente pedido. Admins resolve unconditionally;
// gestores only when they share a department with the target estudante.
// Approval cascades deletion of the estudante's user, profile,
// candidaturas and favorites in one transaction.
func (s *remocaoService) Resolve(ctx context.Context, pedidoID uint, req *validator.PedidoRemocaoResolveRequest, actor Actor) (*PedidoRemocaoResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	pedido, err := s.repo.PedidoRemocao().GetByID(ctx, pedidoID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPedidoNotFound
		}
		return nil, fmt.Errorf("failed to load pedido de remocao: %w", err)
	}
	if pedido.Estado != models.PedidoPendente {
		return nil, ErrPedidoAlreadyClosed
	}

	if err := s.authorizeResolver(ctx, pedido, actor); err != nil {
		return nil, err
	}

	now := time.Now()
	pedido.ResolvedBy = &actor.UserID
	pedido.ResolvedAt = &now

	if req.Acao == "rejeitar" {
		pedido.Estado = models.PedidoRejeitado
		if err := s.repo.PedidoRemocao().Update(ctx, pedido); err != nil {
			return nil, fmt.Errorf("failed to update pedido de remocao: %w", err)
		}
		s.logger.Info("Pedido de remocao rejected", "pedido_id", pedidoID, "actor_id", actor.UserID)
		return s.toResponse(pedido), nil
	}

	pedido.Estado = models.PedidoAprovado
	userID := pedido.Estudante.UserID
	// Drop the preloaded association so the final save does not touch the
	// estudante row being deleted in the same transaction.
	pedido.Estudante = models.Estudante{}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Candidatura().DeleteByEstudante(ctx, pedido.EstudanteID); err != nil {
			return fmt.Errorf("failed to delete candidaturas: %w", err)
		}
		if err := txRepo.Estudante().ClearFavoritos(ctx, pedido.EstudanteID); err != nil {
			return fmt.Errorf("failed to clear favoritos: %w", err)
		}
		if err := txRepo.Estudante().Delete(ctx, pedido.EstudanteID); err != nil {
			return fmt.Errorf("failed to delete estudante: %w", err)
		}
		if err := txRepo.User().Delete(ctx, userID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return txRepo.PedidoRemocao().Update(ctx, pedido)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve pedido de remocao: %w", err)
	}

	if s.publisher != nil {
		event := events.NewEvent(events.TypeRemocaoAprovada, events.RemocaoAprovadaEvent{
			PedidoID:    pedido.ID,
			EstudanteID: pedido.EstudanteID,
			UserID:      userID,
			ActorID:     actor.UserID,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
		}
	}

	s.logger.Info("Pedido de remocao approved, account removed",
		"pedido_id", pedidoID, "estudante_id", pedido.EstudanteID, "actor_id", actor.UserID)
	return s.toResponse(pedido), nil
}

// authorizeResolver checks who may resolve the pedido. A gestor needs a
// department in common with the estudante; an unscoped gestor moderates
// every department and may resolve any pedido.
func (s *remocaoService) authorizeResolver(ctx context.Context, pedido *models.PedidoRemocao, actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleGestor:
		scope, err := s.scope.ScopeFor(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if scope.All {
			return nil
		}

		estudanteDeps, err := s.repo.Estudante().DepartamentoIDs(ctx, pedido.EstudanteID)
		if err != nil {
			return fmt.Errorf("failed to load estudante departamentos: %w", err)
		}
		for _, d := range scope.Departamentos {
			for _, id := range estudanteDeps {
				if d.ID == id {
					return nil
				}
			}
		}
		return NewPermissionError(actor.UserID, pedido.ID, "pedido_remocao", "resolve", "estudante outside gestor departamentos")
	default:
		return NewPermissionError(actor.UserID, pedido.ID, "pedido_remocao", "resolve", "only admins and gestores resolve pedidos")
	}
}

func (s *remocaoService) toResponse(p *models.PedidoRemocao) *PedidoRemocaoResponse {
	return &PedidoRemocaoResponse{
		ID:          p.ID,
		EstudanteID: p.EstudanteID,
		Estado:      p.Estado,
		Motivo:      p.Motivo,
		ResolvedBy:  p.ResolvedBy,
		ResolvedAt:  p.ResolvedAt,
		CreatedAt:   p.CreatedAt,
	}
}
