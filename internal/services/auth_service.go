package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/ESTG-P5-2025/propostas-service/internal/repositories"
	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	secret    []byte
	tokenTTL  time.Duration
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, secret string, tokenTTL time.Duration) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
	}
}

// Authenticate verifies the credential pair and issues a bearer token. An
// empresa whose account has not been validated yet cannot log in; an
// empresa logging in for the first time gets its profile provisioned.
func (s *authService) Authenticate(ctx context.Context, req *validator.LoginRequest) (*AuthResponse, error) {
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	resp := &AuthResponse{
		User: UserResponse{ID: user.ID, Nome: user.Nome, Email: user.Email, Role: user.Role},
	}

	switch user.Role {
	case models.RoleEmpresa:
		empresa, err := s.ensureEmpresa(ctx, user)
		if err != nil {
			return nil, err
		}
		if !empresa.Validada {
			return nil, ErrEmpresaNotValidated
		}
		resp.EmpresaID = &empresa.ID
	case models.RoleEstudante:
		estudante, err := s.ensureEstudante(ctx, user)
		if err != nil {
			return nil, err
		}
		resp.EstudanteID = &estudante.ID
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	resp.Token = token
	resp.ExpiresAt = expiresAt

	s.logger.Info("User authenticated", "user_id", user.ID, "role", user.Role)
	return resp, nil
}

// CreateUser provisions a platform account with the given role. Empresa and
// estudante accounts get their profile row created alongside.
func (s *authService) CreateUser(ctx context.Context, req *validator.CreateUserRequest, actor Actor) (*UserResponse, error) {
	if actor.Role != models.RoleAdmin {
		return nil, NewPermissionError(actor.UserID, 0, "user", "create", "only admins can create users")
	}
	if errs := s.validator.ValidateStruct(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.User().GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailAlreadyInUse
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Nome:     req.Nome,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.UserRole(req.Role),
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.User().Create(ctx, user); err != nil {
			if repositories.IsDuplicateError(err) {
				return ErrEmailAlreadyInUse
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		switch user.Role {
		case models.RoleEmpresa:
			return txRepo.Empresa().Create(ctx, &models.Empresa{UserID: user.ID, Nome: user.Nome})
		case models.RoleEstudante:
			return txRepo.Estudante().Create(ctx, &models.Estudante{UserID: user.ID, Nome: user.Nome})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role, "actor_id", actor.UserID)
	return &UserResponse{ID: user.ID, Nome: user.Nome, Email: user.Email, Role: user.Role}, nil
}

func (s *authService) ListGestores(ctx context.Context) ([]*GestorResponse, error) {
	users, err := s.repo.User().ListByRole(ctx, models.RoleGestor)
	if err != nil {
		return nil, fmt.Errorf("failed to list gestores: %w", err)
	}

	gestores := make([]*GestorResponse, 0, len(users))
	for _, user := range users {
		scope, err := s.repo.Departamento().ScopeFor(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load gestor scope: %w", err)
		}
		departamentos := make([]models.Departamento, 0, len(scope))
		for _, gd := range scope {
			departamentos = append(departamentos, gd.Departamento)
		}
		gestores = append(gestores, &GestorResponse{
			UserResponse:  UserResponse{ID: user.ID, Nome: user.Nome, Email: user.Email, Role: user.Role},
			Departamentos: departamentos,
		})
	}
	return gestores, nil
}

// VerifyToken parses and validates a bearer token into the acting identity.
func (s *authService) VerifyToken(tokenString string) (*Actor, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	role := models.UserRole(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidCredentials
	}

	return &Actor{UserID: uint(userID), Role: role}, nil
}

func (s *authService) issueToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := authClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "propostas-service",
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

func (s *authService) ensureEmpresa(ctx context.Context, user *models.User) (*models.Empresa, error) {
	empresa, err := s.repo.Empresa().GetByUserID(ctx, user.ID)
	if err == nil {
		return empresa, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load empresa profile: %w", err)
	}

	empresa = &models.Empresa{UserID: user.ID, Nome: user.Nome}
	if err := s.repo.Empresa().Create(ctx, empresa); err != nil {
		return nil, fmt.Errorf("failed to provision empresa profile: %w", err)
	}
	s.logger.Info("Empresa profile provisioned on first login", "user_id", user.ID, "empresa_id", empresa.ID)
	return empresa, nil
}

func (s *authService) ensureEstudante(ctx context.Context, user *models.User) (*models.Estudante, error) {
	estudante, err := s.repo.Estudante().GetByUserID(ctx, user.ID)
	if err == nil {
		return estudante, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to load estudante profile: %w", err)
	}

	estudante = &models.Estudante{UserID: user.ID, Nome: user.Nome}
	if err := s.repo.Estudante().Create(ctx, estudante); err != nil {
		return nil, fmt.Errorf("failed to provision estudante profile: %w", err)
	}
	return estudante, nil
}
