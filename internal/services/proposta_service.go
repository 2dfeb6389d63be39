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

type propostaService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
	scope     ScopeService
}

func NewPropostaService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher, scope ScopeService) PropostaService {
	return &propostaService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		scope:     scope,
	}
}

// Create registers a new proposta in estado pendente. Empresas create for
// themselves; gestores and admins create on behalf of an empresa named in
// the request, and a gestor-created proposta carries the gestor's stamp.
func (s *propostaService) Create(ctx context.Context, req *validator.PropostaCreateRequest, actor Actor) (*PropostaResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidatePropostaCreate(req); len(errs) > 0 {
		return nil, errs
	}

	proposta := &models.Proposta{
		Titulo:       req.Titulo,
		Descricao:    req.Descricao,
		Departamento: req.Departamento,
		Estado:       models.PropostaPendente,
	}
	if err := proposta.SetAreas(req.Areas); err != nil {
		return nil, fmt.Errorf("failed to encode areas: %w", err)
	}

	switch actor.Role {
	case models.RoleEmpresa:
		empresa, err := s.empresaFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		proposta.EmpresaID = empresa.ID
	case models.RoleGestor, models.RoleAdmin:
		if req.EmpresaID == nil {
			return nil, ValidationErrors{{Field: "empresa_id", Message: "is required", Rule: "required"}}
		}
		if _, err := s.repo.Empresa().GetByID(ctx, *req.EmpresaID); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrEmpresaNotFound
			}
			return nil, fmt.Errorf("failed to load empresa: %w", err)
		}
		proposta.EmpresaID = *req.EmpresaID
		if actor.Role == models.RoleGestor {
			scope, err := s.scope.ScopeFor(ctx, actor.UserID)
			if err != nil {
				return nil, err
			}
			if !scope.Covers(proposta.Departamento) {
				return nil, NewPermissionError(actor.UserID, 0, "proposta", "create", "departamento outside gestor scope")
			}
			gestorID := actor.UserID
			proposta.GestorID = &gestorID
		}
	default:
		return nil, NewPermissionError(actor.UserID, 0, "proposta", "create", "estudantes cannot create propostas")
	}

	if err := s.repo.Proposta().Create(ctx, proposta); err != nil {
		return nil, fmt.Errorf("failed to create proposta: %w", err)
	}

	s.logger.Info("Proposta created", "proposta_id", proposta.ID, "empresa_id", proposta.EmpresaID)
	return s.toResponse(proposta), nil
}

func (s *propostaService) GetByID(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error) {
	proposta, err := s.loadProposta(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, proposta, actor); err != nil {
		return nil, err
	}
	return s.toResponse(proposta), nil
}

// Update edits the descriptive fields. Only the owning empresa edits, and
// only while the proposta has not been arquivado.
func (s *propostaService) Update(ctx context.Context, id uint, req *validator.PropostaUpdateRequest, actor Actor) (*PropostaResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	proposta, err := s.loadProposta(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, proposta, actor, "update"); err != nil {
		return nil, err
	}
	if proposta.Estado == models.PropostaArquivado {
		return nil, ErrInvalidTransition
	}

	if req.Titulo != nil {
		proposta.Titulo = *req.Titulo
	}
	if req.Descricao != nil {
		proposta.Descricao = req.Descricao
	}
	if req.Departamento != nil {
		proposta.Departamento = *req.Departamento
	}
	if req.Areas != nil {
		if err := proposta.SetAreas(req.Areas); err != nil {
			return nil, fmt.Errorf("failed to encode areas: %w", err)
		}
	}

	if err := s.repo.Proposta().Update(ctx, proposta); err != nil {
		return nil, fmt.Errorf("failed to update proposta: %w", err)
	}

	s.logger.Info("Proposta updated", "proposta_id", proposta.ID, "actor_id", actor.UserID)
	return s.toResponse(proposta), nil
}

// Delete removes the proposta and its candidaturas in one transaction.
func (s *propostaService) Delete(ctx context.Context, id uint, actor Actor) error {
	proposta, err := s.loadProposta(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeOwner(ctx, proposta, actor, "delete"); err != nil {
		return err
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Candidatura().DeleteByProposta(ctx, id); err != nil {
			return fmt.Errorf("failed to delete candidaturas: %w", err)
		}
		return txRepo.Proposta().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete proposta: %w", err)
	}

	s.logger.Info("Proposta deleted", "proposta_id", id, "actor_id", actor.UserID)
	return nil
}

// List applies role-based scoping on top of the caller's filters: empresas
// see their own propostas, gestores see their scope (or everything when
// unscoped) plus propostas they moderate, admins see all.
func (s *propostaService) List(ctx context.Context, filters repositories.PropostaFilters, actor Actor) (*PropostaListResponse, error) {
	switch actor.Role {
	case models.RoleEmpresa:
		empresa, err := s.empresaFor(ctx, actor)
		if err != nil {
			return nil, err
		}
		filters.EmpresaID = &empresa.ID
		filters.Departamentos = nil
		filters.GestorID = nil
	case models.RoleGestor:
		scope, err := s.scope.ScopeFor(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !scope.All {
			filters.Departamentos = scope.DepartamentoNames()
			gestorID := actor.UserID
			filters.GestorID = &gestorID
		}
	case models.RoleAdmin:
		// unrestricted
	default:
		estado := models.PropostaAtiva
		filters.Estado = &estado
		filters.EmpresaID = nil
	}

	propostas, total, err := s.repo.Proposta().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list propostas: %w", err)
	}

	responses := make([]*PropostaResponse, 0, len(propostas))
	for _, p := range propostas {
		responses = append(responses, s.toResponse(p))
	}
	return &PropostaListResponse{
		Propostas: responses,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

// Aprovar moves pendente → ativa and starts the 30-day activation window.
// Gestores must be in scope; the approving gestor is stamped on the row.
func (s *propostaService) Aprovar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error) {
	return s.transition(ctx, id, models.PropostaAtiva, actor)
}

func (s *propostaService) Desativar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error) {
	return s.transition(ctx, id, models.PropostaInativa, actor)
}

func (s *propostaService) Reativar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error) {
	return s.transition(ctx, id, models.PropostaAtiva, actor)
}

func (s *propostaService) Arquivar(ctx context.Context, id uint, actor Actor) (*PropostaResponse, error) {
	return s.transition(ctx, id, models.PropostaArquivado, actor)
}

// UpdateEstado is the generic transition endpoint. The requested estado is
// normalized first so legacy spellings keep working at the boundary.
func (s *propostaService) UpdateEstado(ctx context.Context, id uint, req *validator.EstadoUpdateRequest, actor Actor) (*PropostaResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}
	return s.transition(ctx, id, models.NormalizeEstado(req.Estado), actor)
}

// transition runs one state machine step: authorization, transition
// validation, the conditional row update, and the domain event.
func (s *propostaService) transition(ctx context.Context, id uint, target models.PropostaEstado, actor Actor) (*PropostaResponse, error) {
	proposta, err := s.loadProposta(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeTransition(ctx, proposta, target, actor); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateEstadoTransition(proposta.Estado, target); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTransition, errs.Error())
	}

	var ativaAte *time.Time
	if target == models.PropostaAtiva {
		deadline := time.Now().Add(models.AtivacaoPrazo)
		ativaAte = &deadline
	}

	previous := proposta.Estado
	if err := s.repo.Proposta().UpdateEstado(ctx, id, target, ativaAte); err != nil {
		if repositories.IsNotFoundError(err) {
			// The row changed state under us; re-read would race again, so
			// report the conflict.
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update proposta estado: %w", err)
	}

	proposta.Estado = target
	proposta.AtivaAte = ativaAte
	if actor.Role == models.RoleGestor && target == models.PropostaAtiva && previous == models.PropostaPendente {
		gestorID := actor.UserID
		proposta.GestorID = &gestorID
		if err := s.repo.Proposta().Update(ctx, proposta); err != nil {
			s.logger.Warn("Failed to stamp approving gestor", "proposta_id", id, "error", err)
		}
	}

	s.publish(ctx, events.NewEvent(events.TypePropostaEstadoAlterado, events.PropostaEstadoAlteradoEvent{
		PropostaID: proposta.ID,
		EmpresaID:  proposta.EmpresaID,
		De:         string(previous),
		Para:       string(target),
		AtivaAte:   ativaAte,
		ActorID:    actor.UserID,
	}))

	s.logger.Info("Proposta estado changed",
		"proposta_id", id, "de", previous, "para", target, "actor_id", actor.UserID)
	return s.toResponse(proposta), nil
}

// ===== AUTHORIZATION =====

func (s *propostaService) authorizeView(ctx context.Context, proposta *models.Proposta, actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleGestor:
		ok, err := s.scope.IsAuthorized(ctx, actor.UserID, proposta)
		if err != nil {
			return err
		}
		if !ok {
			return NewPermissionError(actor.UserID, proposta.ID, "proposta", "view", "proposta outside gestor scope")
		}
		return nil
	case models.RoleEmpresa:
		empresa, err := s.empresaFor(ctx, actor)
		if err != nil {
			return err
		}
		if empresa.ID != proposta.EmpresaID {
			return NewPermissionError(actor.UserID, proposta.ID, "proposta", "view", "proposta belongs to another empresa")
		}
		return nil
	default:
		if proposta.Estado != models.PropostaAtiva {
			return ErrPropostaNotFound
		}
		return nil
	}
}

func (s *propostaService) authorizeOwner(ctx context.Context, proposta *models.Proposta, actor Actor, action string) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role != models.RoleEmpresa {
		return NewPermissionError(actor.UserID, proposta.ID, "proposta", action, "only the owning empresa or an admin")
	}
	empresa, err := s.empresaFor(ctx, actor)
	if err != nil {
		return err
	}
	if empresa.ID != proposta.EmpresaID {
		return NewPermissionError(actor.UserID, proposta.ID, "proposta", action, "proposta belongs to another empresa")
	}
	return nil
}

// authorizeTransition enforces who may trigger each target estado:
// approval and archiving are moderation actions (gestor in scope, admin);
// deactivation and reactivation also belong to the owning empresa.
func (s *propostaService) authorizeTransition(ctx context.Context, proposta *models.Proposta, target models.PropostaEstado, actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleGestor:
		ok, err := s.scope.IsAuthorized(ctx, actor.UserID, proposta)
		if err != nil {
			return err
		}
		if !ok {
			return NewPermissionError(actor.UserID, proposta.ID, "proposta", "transition", "proposta outside gestor scope")
		}
		return nil
	case models.RoleEmpresa:
		if proposta.Estado == models.PropostaPendente || target == models.PropostaArquivado {
			return NewPermissionError(actor.UserID, proposta.ID, "proposta", "transition", "approval and archiving are moderation actions")
		}
		return s.authorizeOwner(ctx, proposta, actor, "transition")
	default:
		return NewPermissionError(actor.UserID, proposta.ID, "proposta", "transition", "estudantes cannot change proposta estado")
	}
}

// ===== HELPERS =====

func (s *propostaService) loadProposta(ctx context.Context, id uint) (*models.Proposta, error) {
	proposta, err := s.repo.Proposta().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPropostaNotFound
		}
		return nil, fmt.Errorf("failed to load proposta: %w", err)
	}
	return proposta, nil
}

func (s *propostaService) empresaFor(ctx context.Context, actor Actor) (*models.Empresa, error) {
	empresa, err := s.repo.Empresa().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmpresaNotFound
		}
		return nil, fmt.Errorf("failed to load empresa profile: %w", err)
	}
	return empresa, nil
}

func (s *propostaService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}

func (s *propostaService) toResponse(p *models.Proposta) *PropostaResponse {
	return toPropostaResponse(p)
}

// toPropostaResponse is shared with the matching and favorites paths.
func toPropostaResponse(p *models.Proposta) *PropostaResponse {
	resp := &PropostaResponse{
		ID:           p.ID,
		EmpresaID:    p.EmpresaID,
		GestorID:     p.GestorID,
		Titulo:       p.Titulo,
		Descricao:    p.Descricao,
		Departamento: p.Departamento,
		Estado:       p.Estado,
		Areas:        p.AreaList(),
		AtivaAte:     p.AtivaAte,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.Empresa.ID != 0 {
		summary := p.Empresa.Summary()
		resp.Empresa = &summary
	}
	return resp
}
