package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

func newEstudanteFixture(t *testing.T) (EstudanteService, *fakeRepository, *models.Proposta, Actor) {
	t.Helper()

	repo := newFakeRepository()
	empresaUser := repo.seedUser("Acme", "acme@test.pt", models.RoleEmpresa)
	empresa := repo.seedEmpresa(empresaUser.ID, "Acme", true)
	estudanteUser := repo.seedUser("Ana", "ana@test.pt", models.RoleEstudante)
	repo.seedEstudante(estudanteUser.ID, "Ana", "go")
	proposta := repo.seedProposta(empresa.ID, "Informatica", models.PropostaAtiva, []string{"go"})

	service := NewEstudanteService(repo, testLogger(), validator.New())
	return service, repo, proposta, Actor{UserID: estudanteUser.ID, Role: models.RoleEstudante}
}

func TestEstudanteService_Favoritos(t *testing.T) {
	ctx := context.Background()

	t.Run("add list remove", func(t *testing.T) {
		service, _, proposta, actor := newEstudanteFixture(t)

		if err := service.AddFavorito(ctx, proposta.ID, actor); err != nil {
			t.Fatalf("AddFavorito failed: %v", err)
		}
		// Bookmarking twice is a no-op.
		if err := service.AddFavorito(ctx, proposta.ID, actor); err != nil {
			t.Fatalf("second AddFavorito failed: %v", err)
		}

		favoritos, err := service.ListFavoritos(ctx, actor)
		if err != nil {
			t.Fatalf("ListFavoritos failed: %v", err)
		}
		if len(favoritos) != 1 || favoritos[0].ID != proposta.ID {
			t.Fatalf("expected 1 favorito for proposta %d, got %+v", proposta.ID, favoritos)
		}

		if err := service.RemoveFavorito(ctx, proposta.ID, actor); err != nil {
			t.Fatalf("RemoveFavorito failed: %v", err)
		}
		favoritos, err = service.ListFavoritos(ctx, actor)
		if err != nil {
			t.Fatalf("ListFavoritos failed: %v", err)
		}
		if len(favoritos) != 0 {
			t.Errorf("expected no favoritos, got %d", len(favoritos))
		}
	})

	t.Run("proposta must exist", func(t *testing.T) {
		service, _, _, actor := newEstudanteFixture(t)

		if err := service.AddFavorito(ctx, 9999, actor); !errors.Is(err, ErrPropostaNotFound) {
			t.Fatalf("expected ErrPropostaNotFound, got %v", err)
		}
	})

	t.Run("non estudante is denied", func(t *testing.T) {
		service, _, proposta, _ := newEstudanteFixture(t)

		err := service.AddFavorito(ctx, proposta.ID, Actor{UserID: 1, Role: models.RoleEmpresa})
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})
}

func TestEstudanteService_UpdateCompetencias(t *testing.T) {
	ctx := context.Background()
	service, repo, _, actor := newEstudanteFixture(t)

	if err := service.UpdateCompetencias(ctx, &validator.CompetenciasUpdateRequest{Competencias: "go, redes, sql"}, actor); err != nil {
		t.Fatalf("UpdateCompetencias failed: %v", err)
	}

	estudante, err := repo.Estudante().GetByUserID(ctx, actor.UserID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if estudante.Competencias != "go, redes, sql" {
		t.Errorf("expected updated competencias, got %q", estudante.Competencias)
	}
}
