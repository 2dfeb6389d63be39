package validator

// LoginRequest carries the credential pair for AuthService.Authenticate.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// CreateUserRequest is the admin-side user provisioning payload.
type CreateUserRequest struct {
	Nome     string `json:"nome" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"required,user_role"`
}

// PropostaCreateRequest represents the request structure for creating
// propostas. EmpresaID is only honored (and required) when a gestor or
// admin creates on behalf of an empresa.
type PropostaCreateRequest struct {
	EmpresaID    *uint    `json:"empresa_id" validate:"omitempty,gt=0"`
	Titulo       string   `json:"titulo" validate:"required,min=3,max=200"`
	Descricao    *string  `json:"descricao" validate:"omitempty,max=2000"`
	Departamento string   `json:"departamento" validate:"required,max=100"`
	Areas        []string `json:"areas" validate:"required,min=1,max=20,dive,min=1,max=50"`
}

// PropostaUpdateRequest represents the request structure for updating propostas
type PropostaUpdateRequest struct {
	Titulo       *string  `json:"titulo" validate:"omitempty,min=3,max=200"`
	Descricao    *string  `json:"descricao" validate:"omitempty,max=2000"`
	Departamento *string  `json:"departamento" validate:"omitempty,max=100"`
	Areas        []string `json:"areas" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// EstadoUpdateRequest carries a generic state-transition request. Estado is
// normalized before validation so legacy spellings keep working.
type EstadoUpdateRequest struct {
	Estado string  `json:"estado" validate:"required,estado_proposta"`
	Motivo *string `json:"motivo" validate:"omitempty,max=500"`
}

// CandidaturaDecideRequest is the empresa's accept/reject payload.
type CandidaturaDecideRequest struct {
	Estado string `json:"estado" validate:"required,oneof=aceite rejeitada"`
}

// PedidoRemocaoCreateRequest is the student's removal request payload.
type PedidoRemocaoCreateRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=1000"`
}

// PedidoRemocaoResolveRequest carries the gestor/admin resolution action.
type PedidoRemocaoResolveRequest struct {
	Acao string `json:"acao" validate:"required,oneof=aprovar rejeitar"`
}

// AssignDepartamentosRequest replaces a gestor's full department set.
type AssignDepartamentosRequest struct {
	DepartamentoIDs []uint `json:"departamento_ids" validate:"max=50"`
}

// CompetenciasUpdateRequest updates the student's declared skills.
type CompetenciasUpdateRequest struct {
	Competencias string `json:"competencias" validate:"max=2000"`
}
