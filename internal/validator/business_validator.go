package validator

import (
	"fmt"

	"github.com/ESTG-P5-2025/propostas-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewBusinessValidator creates a new business validator with domain rules
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

func (bv *BusinessValidator) registerBusinessRules() {
	// user_role: one of the four platform roles
	_ = bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.UserRole(fl.Field().String()).Valid()
	})

	// estado_proposta: canonical proposta state after normalization
	_ = bv.validate.RegisterValidation("estado_proposta", func(fl validator.FieldLevel) bool {
		switch models.NormalizeEstado(fl.Field().String()) {
		case models.PropostaPendente, models.PropostaAtiva, models.PropostaInativa, models.PropostaArquivado:
			return true
		}
		return false
	})
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts go-playground errors into the domain shape
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrors {
			errors = append(errors, ValidationError{
				Field:   fe.Field(),
				Message: errorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
		return errors
	}

	return ValidationErrors{{Field: "", Message: err.Error(), Rule: "struct"}}
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "user_role":
		return "must be one of: admin, empresa, estudante, gestor"
	case "estado_proposta":
		return "must be one of: pendente, ativa, inativa, arquivado"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidatePropostaCreate validates proposta creation business rules
func (bv *BusinessValidator) ValidatePropostaCreate(req *PropostaCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	for i, area := range req.Areas {
		if area == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("areas[%d]", i),
				Message: "must not be empty",
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateEstadoTransition validates a proposta state transition against
// the state machine; terminal-state attempts produce a dedicated error so
// handlers can answer with a conflict.
func (bv *BusinessValidator) ValidateEstadoTransition(current, next models.PropostaEstado) ValidationErrors {
	if current.CanTransition(next) {
		return nil
	}

	msg := fmt.Sprintf("cannot transition from %s to %s", current, next)
	if current == models.PropostaArquivado {
		msg = "proposta is arquivado and cannot change state"
	}

	return ValidationErrors{{
		Field:   "estado",
		Message: msg,
		Value:   string(next),
		Rule:    "estado_transition",
	}}
}
