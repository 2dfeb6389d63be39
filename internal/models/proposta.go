package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PropostaEstado string

const (
	PropostaPendente  PropostaEstado = "pendente"
	PropostaAtiva     PropostaEstado = "ativa"
	PropostaInativa   PropostaEstado = "inativa"
	PropostaArquivado PropostaEstado = "arquivado"
)

// AtivacaoPrazo is how long an approved proposta stays ativa before the
// expiry sweep deactivates it.
const AtivacaoPrazo = 30 * 24 * time.Hour

// NormalizeEstado collapses the legacy gendered spellings ("ativo",
// "inativo") and whitespace variants into the canonical enum. Unknown
// values are returned unchanged so validation can reject them.
func NormalizeEstado(raw string) PropostaEstado {
	switch PropostaEstado(raw) {
	case "ativo":
		return PropostaAtiva
	case "inativo":
		return PropostaInativa
	case PropostaPendente, PropostaAtiva, PropostaInativa, PropostaArquivado:
		return PropostaEstado(raw)
	}
	return PropostaEstado(raw)
}

// CanTransition reports whether the state machine allows moving from the
// receiver to the target state. Arquivado is terminal.
func (e PropostaEstado) CanTransition(to PropostaEstado) bool {
	switch e {
	case PropostaPendente:
		return to == PropostaAtiva
	case PropostaAtiva:
		return to == PropostaInativa || to == PropostaArquivado
	case PropostaInativa:
		return to == PropostaAtiva || to == PropostaArquivado
	case PropostaArquivado:
		return false
	}
	return false
}

// Proposta is a company project/internship listing. Departamento is the
// department name the proposta is filed under; gestor scope checks compare
// against it by name. GestorID is stamped by whichever gestor created or
// approved the proposta.
type Proposta struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	EmpresaID    uint           `json:"empresa_id" gorm:"not null;index"`
	GestorID     *uint          `json:"gestor_id" gorm:"index"`
	Titulo       string         `json:"titulo" gorm:"not null;size:200"`
	Descricao    *string        `json:"descricao" gorm:"type:text"`
	Departamento string         `json:"departamento" gorm:"size:100;index"`
	Estado       PropostaEstado `json:"estado" gorm:"not null;default:pendente;size:20;index"`
	Areas        datatypes.JSON `json:"areas" gorm:"type:jsonb"`
	AtivaAte     *time.Time     `json:"ativa_ate"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Empresa      Empresa       `json:"empresa" gorm:"foreignKey:EmpresaID"`
	Candidaturas []Candidatura `json:"candidaturas,omitempty" gorm:"foreignKey:PropostaID"`
}

func (Proposta) TableName() string {
	return "propostas"
}

// AreaList decodes the jsonb areas column. A corrupt or empty column
// decodes to nil rather than failing the read path.
func (p *Proposta) AreaList() []string {
	if len(p.Areas) == 0 {
		return nil
	}
	var areas []string
	if err := json.Unmarshal(p.Areas, &areas); err != nil {
		return nil
	}
	return areas
}

// SetAreas encodes the tag set into the jsonb column.
func (p *Proposta) SetAreas(areas []string) error {
	data, err := json.Marshal(areas)
	if err != nil {
		return err
	}
	p.Areas = data
	return nil
}
