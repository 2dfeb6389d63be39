package services

import (
	"errors"
	"fmt"

	"github.com/ESTG-P5-2025/propostas-service/internal/validator"
)

// ValidationErrors is re-exported so handlers can errors.As against the
// service package only.
type ValidationErrors = validator.ValidationErrors

// ===== SENTINEL ERRORS =====

var (
	// Generic
	ErrValidationFailed = errors.New("validation failed")
	ErrInternal         = errors.New("internal error")

	// Identity
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyInUse   = errors.New("email already in use")
	ErrEmpresaNotValidated = errors.New("empresa not validated")

	// Profiles
	ErrEmpresaNotFound   = errors.New("empresa not found")
	ErrEstudanteNotFound = errors.New("estudante not found")

	// Departamentos
	ErrDepartamentoNotFound = errors.New("departamento not found")

	// Propostas
	ErrPropostaNotFound  = errors.New("proposta not found")
	ErrPropostaNotAtiva  = errors.New("proposta is not ativa")
	ErrInvalidTransition = errors.New("invalid estado transition")

	// Candidaturas
	ErrCandidaturaNotFound  = errors.New("candidatura not found")
	ErrDuplicateCandidatura = errors.New("candidatura already exists for this proposta")
	ErrCandidaturaDecided   = errors.New("candidatura already decided")

	// Pedidos de remocao
	ErrPedidoNotFound      = errors.New("pedido de remocao not found")
	ErrDuplicatePedido     = errors.New("a pendente pedido de remocao already exists")
	ErrPedidoAlreadyClosed = errors.New("pedido de remocao already resolved")
)

// ===== TYPED ERRORS =====

// PermissionError carries the denied action's context for the 403 payload.
type PermissionError struct {
	UserID     uint
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError reports a domain rule violation that is neither a
// field validation failure nor a permission problem.
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Context: context}
}
