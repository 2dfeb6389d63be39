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

type candidaturaService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.Publisher
}

func NewCandidaturaService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) CandidaturaService {
	return &candidaturaService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Apply submits the student's candidatura. The proposta must be ativa and
// the student must not have applied to it before; the unique index backs
// the duplicate check against races.
func (s *candidaturaService) Apply(ctx context.Context, propostaID uint, actor Actor) (*CandidaturaResponse, error) {
	if actor.Role != models.RoleEstudante {
		return nil, NewPermissionError(actor.UserID, propostaID, "candidatura", "create", "only estudantes can apply")
	}

	estudante, err := s.estudanteFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	proposta, err := s.repo.Proposta().GetByID(ctx, propostaID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPropostaNotFound
		}
		return nil, fmt.Errorf("failed to load proposta: %w", err)
	}
	if proposta.Estado != models.PropostaAtiva {
		return nil, ErrPropostaNotAtiva
	}

	exists, err := s.repo.Candidatura().Exists(ctx, estudante.ID, propostaID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing candidatura: %w", err)
	}
	if exists {
		return nil, ErrDuplicateCandidatura
	}

	candidatura := &models.Candidatura{
		EstudanteID: estudante.ID,
		PropostaID:  propostaID,
		Estado:      models.CandidaturaPendente,
		SubmittedAt: time.Now(),
	}
	if err := s.repo.Candidatura().Create(ctx, candidatura); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateCandidatura
		}
		return nil, fmt.Errorf("failed to create candidatura: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeCandidaturaSubmetida, events.CandidaturaEvent{
		CandidaturaID: candidatura.ID,
		PropostaID:    propostaID,
		EstudanteID:   estudante.ID,
		Estado:        string(candidatura.Estado),
	}))

	s.logger.Info("Candidatura submitted",
		"candidatura_id", candidatura.ID, "proposta_id", propostaID, "estudante_id", estudante.ID)
	return s.toResponse(candidatura), nil
}

// Decide accepts or rejects a candidatura. Only the empresa owning the
// proposta decides, the candidatura must still be pendente, and the
// response timestamp is stamped for the dashboard latency metric.
func (s *candidaturaService) Decide(ctx context.Context, candidaturaID uint, req *validator.CandidaturaDecideRequest, actor Actor) (*CandidaturaResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	candidatura, err := s.repo.Candidatura().GetByID(ctx, candidaturaID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCandidaturaNotFound
		}
		return nil, fmt.Errorf("failed to load candidatura: %w", err)
	}

	if actor.Role != models.RoleEmpresa {
		return nil, NewPermissionError(actor.UserID, candidaturaID, "candidatura", "decide", "only the owning empresa decides")
	}
	empresa, err := s.repo.Empresa().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmpresaNotFound
		}
		return nil, fmt.Errorf("failed to load empresa profile: %w", err)
	}
	if candidatura.Proposta.EmpresaID != empresa.ID {
		return nil, NewPermissionError(actor.UserID, candidaturaID, "candidatura", "decide", "candidatura belongs to another empresa's proposta")
	}

	if candidatura.Estado.Decided() {
		return nil, ErrCandidaturaDecided
	}

	now := time.Now()
	candidatura.Estado = models.CandidaturaEstado(req.Estado)
	candidatura.RespondedAt = &now
	if err := s.repo.Candidatura().Update(ctx, candidatura); err != nil {
		return nil, fmt.Errorf("failed to update candidatura: %w", err)
	}

	s.publish(ctx, events.NewEvent(events.TypeCandidaturaRespondida, events.CandidaturaEvent{
		CandidaturaID: candidatura.ID,
		PropostaID:    candidatura.PropostaID,
		EstudanteID:   candidatura.EstudanteID,
		Estado:        string(candidatura.Estado),
	}))

	s.logger.Info("Candidatura decided",
		"candidatura_id", candidaturaID, "estado", candidatura.Estado, "empresa_id", empresa.ID)
	return s.toResponse(candidatura), nil
}

func (s *candidaturaService) ListByEstudante(ctx context.Context, actor Actor, filters repositories.CandidaturaFilters) (*CandidaturaListResponse, error) {
	estudante, err := s.estudanteFor(ctx, actor)
	if err != nil {
		return nil, err
	}
	filters.EstudanteID = &estudante.ID

	candidaturas, total, err := s.repo.Candidatura().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidaturas: %w", err)
	}
	return s.toListResponse(candidaturas, total, filters), nil
}

func (s *candidaturaService) ListByEmpresa(ctx context.Context, actor Actor, filters repositories.CandidaturaFilters) (*CandidaturaListResponse, error) {
	empresa, err := s.repo.Empresa().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEmpresaNotFound
		}
		return nil, fmt.Errorf("failed to load empresa profile: %w", err)
	}

	candidaturas, total, err := s.repo.Candidatura().ListByEmpresa(ctx, empresa.ID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidaturas: %w", err)
	}
	return s.toListResponse(candidaturas, total, filters), nil
}

// ===== HELPERS =====

func (s *candidaturaService) estudanteFor(ctx context.Context, actor Actor) (*models.Estudante, error) {
	estudante, err := s.repo.Estudante().GetByUserID(ctx, actor.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrEstudanteNotFound
		}
		return nil, fmt.Errorf("failed to load estudante profile: %w", err)
	}
	return estudante, nil
}

func (s *candidaturaService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}

func (s *candidaturaService) toResponse(c *models.Candidatura) *CandidaturaResponse {
	resp := &CandidaturaResponse{
		ID:          c.ID,
		EstudanteID: c.EstudanteID,
		PropostaID:  c.PropostaID,
		Estado:      c.Estado,
		SubmittedAt: c.SubmittedAt,
		RespondedAt: c.RespondedAt,
	}
	if c.Proposta.ID != 0 {
		resp.Proposta = toPropostaResponse(&c.Proposta)
	}
	if c.Estudante.ID != 0 {
		resp.Estudante = &CandidaturaEstudante{
			ID:           c.Estudante.ID,
			Nome:         c.Estudante.Nome,
			Competencias: c.Estudante.Competencias,
		}
	}
	return resp
}

func (s *candidaturaService) toListResponse(candidaturas []*models.Candidatura, total int64, filters repositories.CandidaturaFilters) *CandidaturaListResponse {
	responses := make([]*CandidaturaResponse, 0, len(candidaturas))
	for _, c := range candidaturas {
		responses = append(responses, s.toResponse(c))
	}
	return &CandidaturaListResponse{
		Candidaturas: responses,
		Total:        total,
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	}
}
