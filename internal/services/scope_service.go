package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
)

type scopeService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewScopeService(repo repositories.Repository, logger *slog.Logger) ScopeService {
	return &scopeService{repo: repo, logger: logger}
}

// ScopeFor resolves a gestor's moderation scope. A gestor with no
// department assignments is unscoped and moderates everything; that case is
// surfaced as an explicit All variant instead of an empty list.
func (s *scopeService) ScopeFor(ctx context.Context, gestorID uint) (*GestorScope, error) {
	assignments, err := s.repo.Departamento().ScopeFor(ctx, gestorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gestor scope: %w", err)
	}

	if len(assignments) == 0 {
		return &GestorScope{GestorID: gestorID, All: true}, nil
	}

	departamentos := make([]models.Departamento, 0, len(assignments))
	for _, a := range assignments {
		departamentos = append(departamentos, a.Departamento)
	}
	return &GestorScope{GestorID: gestorID, Departamentos: departamentos}, nil
}

// IsAuthorized reports whether the gestor may act on the proposta: either
// its scope covers the proposta's department, or the gestor is the one who
// created or approved it.
func (s *scopeService) IsAuthorized(ctx context.Context, gestorID uint, proposta *models.Proposta) (bool, error) {
	if proposta.GestorID != nil && *proposta.GestorID == gestorID {
		return true, nil
	}

	scope, err := s.ScopeFor(ctx, gestorID)
	if err != nil {
		return false, err
	}
	return scope.Covers(proposta.Departamento), nil
}

// Assign replaces the gestor's full department set in one transaction. An
// empty set makes the gestor unscoped again.
func (s *scopeService) Assign(ctx context.Context, gestorID uint, departamentoIDs []uint, actor Actor) (*GestorScope, error) {
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.UserID, gestorID, "gestor_scope", "assign", "only admins can assign departamentos")
	}

	gestor, err := s.repo.User().GetByID(ctx, gestorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load gestor: %w", err)
	}
	if gestor.Role != models.RoleGestor {
		return nil, NewBusinessRuleError("gestor_role", "user is not a gestor", map[string]interface{}{"user_id": gestorID})
	}

	if len(departamentoIDs) > 0 {
		departamentos, err := s.repo.Departamento().GetByIDs(ctx, departamentoIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load departamentos: %w", err)
		}
		if len(departamentos) != len(dedupe(departamentoIDs)) {
			return nil, ErrDepartamentoNotFound
		}
	}

	if err := s.repo.Departamento().ReplaceScope(ctx, gestorID, dedupe(departamentoIDs)); err != nil {
		return nil, fmt.Errorf("failed to replace gestor scope: %w", err)
	}

	s.logger.Info("Gestor scope replaced",
		"gestor_id", gestorID, "departamentos", len(departamentoIDs), "actor_id", actor.UserID)
	return s.ScopeFor(ctx, gestorID)
}

func (s *scopeService) ListDepartamentos(ctx context.Context) ([]*models.Departamento, error) {
	departamentos, err := s.repo.Departamento().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departamentos: %w", err)
	}
	return departamentos, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
