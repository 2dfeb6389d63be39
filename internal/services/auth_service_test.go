package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

const testPassword = "segredo123"

func newAuthService(repo *fakeRepository) AuthService {
	return NewAuthService(repo, testLogger(), validator.New(), "test-secret", time.Hour)
}

func seedCredentials(t *testing.T, repo *fakeRepository, nome, email string, role models.UserRole) *models.User {
	t.Helper()
	user := repo.seedUser(nome, email, role)
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user.Password = string(hash)
	return user
}

func TestAuthService_Authenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("estudante logs in and gets a token", func(t *testing.T) {
		repo := newFakeRepository()
		user := seedCredentials(t, repo, "Ana", "ana@test.pt", models.RoleEstudante)
		estudante := repo.seedEstudante(user.ID, "Ana", "go")
		service := newAuthService(repo)

		resp, err := service.Authenticate(ctx, &validator.LoginRequest{Email: "ana@test.pt", Password: testPassword})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a signed token")
		}
		if !resp.ExpiresAt.After(time.Now()) {
			t.Error("token must expire in the future")
		}
		if resp.EstudanteID == nil || *resp.EstudanteID != estudante.ID {
			t.Errorf("expected estudante profile %d, got %v", estudante.ID, resp.EstudanteID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := newFakeRepository()
		seedCredentials(t, repo, "Ana", "ana@test.pt", models.RoleEstudante)
		service := newAuthService(repo)

		_, err := service.Authenticate(ctx, &validator.LoginRequest{Email: "ana@test.pt", Password: "errada123"})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := newFakeRepository()
		service := newAuthService(repo)

		_, err := service.Authenticate(ctx, &validator.LoginRequest{Email: "ghost@test.pt", Password: testPassword})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unvalidated empresa cannot log in but gets a profile", func(t *testing.T) {
		repo := newFakeRepository()
		user := seedCredentials(t, repo, "Acme", "acme@test.pt", models.RoleEmpresa)
		service := newAuthService(repo)

		_, err := service.Authenticate(ctx, &validator.LoginRequest{Email: "acme@test.pt", Password: testPassword})
		if !errors.Is(err, ErrEmpresaNotValidated) {
			t.Fatalf("expected ErrEmpresaNotValidated, got %v", err)
		}

		// First login provisions the profile even when the login is refused.
		empresa, err := repo.Empresa().GetByUserID(ctx, user.ID)
		if err != nil {
			t.Fatalf("expected provisioned empresa profile: %v", err)
		}

		if err := repo.Empresa().SetValidada(ctx, empresa.ID, true); err != nil {
			t.Fatalf("SetValidada failed: %v", err)
		}
		resp, err := service.Authenticate(ctx, &validator.LoginRequest{Email: "acme@test.pt", Password: testPassword})
		if err != nil {
			t.Fatalf("Authenticate after validation failed: %v", err)
		}
		if resp.EmpresaID == nil || *resp.EmpresaID != empresa.ID {
			t.Errorf("expected empresa %d on response, got %v", empresa.ID, resp.EmpresaID)
		}
	})
}

func TestAuthService_VerifyToken(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo := newFakeRepository()
		user := seedCredentials(t, repo, "Ana", "ana@test.pt", models.RoleEstudante)
		repo.seedEstudante(user.ID, "Ana", "")
		service := newAuthService(repo)

		resp, err := service.Authenticate(ctx, &validator.LoginRequest{Email: "ana@test.pt", Password: testPassword})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		actor, err := service.VerifyToken(resp.Token)
		if err != nil {
			t.Fatalf("VerifyToken failed: %v", err)
		}
		if actor.UserID != user.ID || actor.Role != models.RoleEstudante {
			t.Errorf("expected actor %d/%s, got %+v", user.ID, models.RoleEstudante, actor)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		service := newAuthService(newFakeRepository())
		if _, err := service.VerifyToken("not.a.token"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		repo := newFakeRepository()
		user := seedCredentials(t, repo, "Ana", "ana@test.pt", models.RoleEstudante)
		repo.seedEstudante(user.ID, "Ana", "")

		issuer := NewAuthService(repo, testLogger(), validator.New(), "other-secret", time.Hour)
		resp, err := issuer.Authenticate(ctx, &validator.LoginRequest{Email: "ana@test.pt", Password: testPassword})
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}

		service := newAuthService(repo)
		if _, err := service.VerifyToken(resp.Token); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_CreateUser(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (AuthService, *fakeRepository, Actor) {
		t.Helper()
		repo := newFakeRepository()
		admin := repo.seedUser("Admin", "admin@test.pt", models.RoleAdmin)
		return newAuthService(repo), repo, Actor{UserID: admin.ID, Role: models.RoleAdmin}
	}

	t.Run("empresa account gets a profile row", func(t *testing.T) {
		service, repo, admin := setup(t)

		created, err := service.CreateUser(ctx, &validator.CreateUserRequest{
			Nome:     "Acme",
			Email:    "acme@test.pt",
			Password: testPassword,
			Role:     "empresa",
		}, admin)
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		empresa, err := repo.Empresa().GetByUserID(ctx, created.ID)
		if err != nil {
			t.Fatalf("expected empresa profile: %v", err)
		}
		if empresa.Validada {
			t.Error("new empresa must start unvalidated")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		service, repo, admin := setup(t)
		repo.seedUser("Ana", "ana@test.pt", models.RoleEstudante)

		_, err := service.CreateUser(ctx, &validator.CreateUserRequest{
			Nome:     "Outra Ana",
			Email:    "ana@test.pt",
			Password: testPassword,
			Role:     "estudante",
		}, admin)
		if !errors.Is(err, ErrEmailAlreadyInUse) {
			t.Fatalf("expected ErrEmailAlreadyInUse, got %v", err)
		}
	})

	t.Run("non admin is denied", func(t *testing.T) {
		service, _, _ := setup(t)

		_, err := service.CreateUser(ctx, &validator.CreateUserRequest{
			Nome:     "Ana",
			Email:    "ana@test.pt",
			Password: testPassword,
			Role:     "estudante",
		}, Actor{UserID: 2, Role: models.RoleEstudante})
		var permissionErr *PermissionError
		if !errors.As(err, &permissionErr) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("unknown role fails validation", func(t *testing.T) {
		service, _, admin := setup(t)

		_, err := service.CreateUser(ctx, &validator.CreateUserRequest{
			Nome:     "Ana",
			Email:    "ana@test.pt",
			Password: testPassword,
			Role:     "superuser",
		}, admin)
		var validationErrs ValidationErrors
		if !errors.As(err, &validationErrs) {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
	})
}
