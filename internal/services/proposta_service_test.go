package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ESTG-P5-2025/propostas-service/internal/events"
	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

type propostaFixture struct {
	repo      *fakeRepository
	service   PropostaService
	publisher *events.MockEventPublisher

	empresa      *models.Empresa
	empresaActor Actor
	gestorActor  Actor
	adminActor   Actor
	departamento *models.Departamento
}

func newPropostaFixture(t *testing.T) *propostaFixture {
	t.Helper()

	repo := newFakeRepository()
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	v := validator.New()

	empresaUser := repo.seedUser("Acme", "acme@test.pt", models.RoleEmpresa)
	empresa := repo.seedEmpresa(empresaUser.ID, "Acme", true)
	gestorUser := repo.seedUser("Gestor", "gestor@test.pt", models.RoleGestor)
	adminUser := repo.seedUser("Admin", "admin@test.pt", models.RoleAdmin)
	departamento := repo.seedDepartamento("Informatica")
	repo.assignScope(gestorUser.ID, departamento.ID)

	scope := NewScopeService(repo, logger)
	service := NewPropostaService(repo, logger, v, publisher, scope)

	return &propostaFixture{
		repo:         repo,
		service:      service,
		publisher:    publisher,
		empresa:      empresa,
		empresaActor: Actor{UserID: empresaUser.ID, Role: models.RoleEmpresa},
		gestorActor:  Actor{UserID: gestorUser.ID, Role: models.RoleGestor},
		adminActor:   Actor{UserID: adminUser.ID, Role: models.RoleAdmin},
		departamento: departamento,
	}
}

func TestPropostaService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("empresa creates pendente proposta", func(t *testing.T) {
		f := newPropostaFixture(t)
		req := &validator.PropostaCreateRequest{
			Titulo:       "Backend developer",
			Departamento: "Informatica",
			Areas:        []string{"go", "postgres"},
		}

		proposta, err := f.service.Create(ctx, req, f.empresaActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if proposta.Estado != models.PropostaPendente {
			t.Errorf("expected estado pendente, got %s", proposta.Estado)
		}
		if proposta.EmpresaID != f.empresa.ID {
			t.Errorf("expected empresa %d, got %d", f.empresa.ID, proposta.EmpresaID)
		}
		if proposta.AtivaAte != nil {
			t.Error("new proposta must not carry a deadline")
		}
	})

	t.Run("gestor creates with gestor stamped", func(t *testing.T) {
		f := newPropostaFixture(t)
		req := &validator.PropostaCreateRequest{
			EmpresaID:    &f.empresa.ID,
			Titulo:       "Estagio em redes",
			Departamento: "Informatica",
			Areas:        []string{"redes"},
		}

		proposta, err := f.service.Create(ctx, req, f.gestorActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if proposta.GestorID == nil || *proposta.GestorID != f.gestorActor.UserID {
			t.Errorf("expected gestor %d stamped, got %v", f.gestorActor.UserID, proposta.GestorID)
		}
	})

	t.Run("gestor outside departamento cannot create", func(t *testing.T) {
		f := newPropostaFixture(t)
		req := &validator.PropostaCreateRequest{
			EmpresaID:    &f.empresa.ID,
			Titulo:       "Marketing digital",
			Departamento: "Gestao",
			Areas:        []string{"marketing"},
		}

		_, err := f.service.Create(ctx, req, f.gestorActor)
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("missing areas fails validation", func(t *testing.T) {
		f := newPropostaFixture(t)
		req := &validator.PropostaCreateRequest{
			Titulo:       "Sem areas",
			Departamento: "Informatica",
		}

		_, err := f.service.Create(ctx, req, f.empresaActor)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
	})
}

func TestPropostaService_StateMachine(t *testing.T) {
	ctx := context.Background()

	t.Run("aprovar sets deadline thirty days out", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})

		before := time.Now()
		proposta, err := f.service.Aprovar(ctx, seeded.ID, f.gestorActor)
		if err != nil {
			t.Fatalf("Aprovar failed: %v", err)
		}
		if proposta.Estado != models.PropostaAtiva {
			t.Fatalf("expected estado ativa, got %s", proposta.Estado)
		}
		if proposta.AtivaAte == nil {
			t.Fatal("expected a deadline on approval")
		}
		want := before.Add(models.AtivacaoPrazo)
		if proposta.AtivaAte.Before(want.Add(-time.Minute)) || proposta.AtivaAte.After(want.Add(time.Minute)) {
			t.Errorf("deadline should be ~30 days out, got %v", proposta.AtivaAte)
		}

		published := f.publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.TypePropostaEstadoAlterado {
			t.Errorf("expected one estado event, got %v", published)
		}
	})

	t.Run("empresa cannot approve its own proposta", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})

		_, err := f.service.Aprovar(ctx, seeded.ID, f.empresaActor)
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("gestor outside scope cannot approve", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Gestao", models.PropostaPendente, []string{"gestao"})

		_, err := f.service.Aprovar(ctx, seeded.ID, f.gestorActor)
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("owning empresa can deactivate and reactivate", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})

		proposta, err := f.service.Desativar(ctx, seeded.ID, f.empresaActor)
		if err != nil {
			t.Fatalf("Desativar failed: %v", err)
		}
		if proposta.Estado != models.PropostaInativa {
			t.Fatalf("expected inativa, got %s", proposta.Estado)
		}

		proposta, err = f.service.Reativar(ctx, seeded.ID, f.empresaActor)
		if err != nil {
			t.Fatalf("Reativar failed: %v", err)
		}
		if proposta.Estado != models.PropostaAtiva {
			t.Fatalf("expected ativa, got %s", proposta.Estado)
		}
		if proposta.AtivaAte == nil {
			t.Error("reactivation must set a fresh deadline")
		}
	})

	t.Run("empresa cannot archive", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})

		_, err := f.service.Arquivar(ctx, seeded.ID, f.empresaActor)
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("arquivado is terminal", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})

		if _, err := f.service.Arquivar(ctx, seeded.ID, f.gestorActor); err != nil {
			t.Fatalf("Arquivar failed: %v", err)
		}

		_, err := f.service.Reativar(ctx, seeded.ID, f.adminActor)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition from arquivado, got %v", err)
		}
	})

	t.Run("pendente cannot go straight to inativa", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})

		_, err := f.service.UpdateEstado(ctx, seeded.ID, &validator.EstadoUpdateRequest{Estado: "inativa"}, f.adminActor)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("legacy spelling is normalized", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})

		proposta, err := f.service.UpdateEstado(ctx, seeded.ID, &validator.EstadoUpdateRequest{Estado: "ativo"}, f.adminActor)
		if err != nil {
			t.Fatalf("UpdateEstado failed: %v", err)
		}
		if proposta.Estado != models.PropostaAtiva {
			t.Errorf("expected 'ativo' to normalize to ativa, got %s", proposta.Estado)
		}
	})

	t.Run("unknown proposta yields not found", func(t *testing.T) {
		f := newPropostaFixture(t)
		_, err := f.service.Aprovar(ctx, 4242, f.adminActor)
		if !errors.Is(err, ErrPropostaNotFound) {
			t.Fatalf("expected ErrPropostaNotFound, got %v", err)
		}
	})
}

func TestPropostaService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empresa sees only its own propostas", func(t *testing.T) {
		f := newPropostaFixture(t)
		otherUser := f.repo.seedUser("Other", "other@test.pt", models.RoleEmpresa)
		other := f.repo.seedEmpresa(otherUser.ID, "Other", true)
		f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})
		f.repo.seedProposta(other.ID, "Informatica", models.PropostaAtiva, []string{"go"})

		list, err := f.service.List(ctx, repositories.PropostaFilters{}, f.empresaActor)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 1 {
			t.Errorf("expected 1 proposta, got %d", list.Total)
		}
	})

	t.Run("scoped gestor sees departamento plus own stamped propostas", func(t *testing.T) {
		f := newPropostaFixture(t)
		f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})
		outside := f.repo.seedProposta(f.empresa.ID, "Gestao", models.PropostaPendente, []string{"gestao"})
		stamped := f.repo.seedProposta(f.empresa.ID, "Gestao", models.PropostaPendente, []string{"gestao"})
		gestorID := f.gestorActor.UserID
		stamped.GestorID = &gestorID
		_ = outside

		list, err := f.service.List(ctx, repositories.PropostaFilters{}, f.gestorActor)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 2 {
			t.Errorf("expected scope + stamped = 2 propostas, got %d", list.Total)
		}
	})

	t.Run("unscoped gestor sees everything", func(t *testing.T) {
		f := newPropostaFixture(t)
		unscoped := f.repo.seedUser("Livre", "livre@test.pt", models.RoleGestor)
		f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})
		f.repo.seedProposta(f.empresa.ID, "Gestao", models.PropostaPendente, []string{"gestao"})

		list, err := f.service.List(ctx, repositories.PropostaFilters{}, Actor{UserID: unscoped.ID, Role: models.RoleGestor})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 2 {
			t.Errorf("expected unscoped gestor to see all 2 propostas, got %d", list.Total)
		}
	})

	t.Run("estudante sees only ativas", func(t *testing.T) {
		f := newPropostaFixture(t)
		estudanteUser := f.repo.seedUser("Ana", "ana@test.pt", models.RoleEstudante)
		f.repo.seedEstudante(estudanteUser.ID, "Ana", "go")
		f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})
		f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaPendente, []string{"go"})

		list, err := f.service.List(ctx, repositories.PropostaFilters{}, Actor{UserID: estudanteUser.ID, Role: models.RoleEstudante})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if list.Total != 1 {
			t.Errorf("expected only ativa propostas, got %d", list.Total)
		}
	})
}

func TestPropostaService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("delete cascades candidaturas", func(t *testing.T) {
		f := newPropostaFixture(t)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})

		estudanteUser := f.repo.seedUser("Ana", "ana@test.pt", models.RoleEstudante)
		estudante := f.repo.seedEstudante(estudanteUser.ID, "Ana", "go")
		candidatura := &models.Candidatura{EstudanteID: estudante.ID, PropostaID: seeded.ID, Estado: models.CandidaturaPendente, SubmittedAt: time.Now()}
		if err := f.repo.Candidatura().Create(ctx, candidatura); err != nil {
			t.Fatalf("seed candidatura: %v", err)
		}

		if err := f.service.Delete(ctx, seeded.ID, f.empresaActor); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		if _, err := f.repo.Proposta().GetByID(ctx, seeded.ID); err == nil {
			t.Error("proposta should be gone")
		}
		exists, _ := f.repo.Candidatura().Exists(ctx, estudante.ID, seeded.ID)
		if exists {
			t.Error("candidaturas should be deleted with the proposta")
		}
	})

	t.Run("other empresa cannot delete", func(t *testing.T) {
		f := newPropostaFixture(t)
		otherUser := f.repo.seedUser("Other", "other@test.pt", models.RoleEmpresa)
		f.repo.seedEmpresa(otherUser.ID, "Other", true)
		seeded := f.repo.seedProposta(f.empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})

		err := f.service.Delete(ctx, seeded.ID, Actor{UserID: otherUser.ID, Role: models.RoleEmpresa})
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})
}
