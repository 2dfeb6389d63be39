package models

import (
	"time"

	"gorm.io/gorm"
)

type CandidaturaEstado string

const (
	CandidaturaPendente  CandidaturaEstado = "pendente"
	CandidaturaAceite    CandidaturaEstado = "aceite"
	CandidaturaRejeitada CandidaturaEstado = "rejeitada"
)

// Decided reports whether the candidatura reached a terminal state.
func (e CandidaturaEstado) Decided() bool {
	return e == CandidaturaAceite || e == CandidaturaRejeitada
}

// Candidatura is a student's application to a proposta. The composite
// unique index enforces at most one application per (estudante, proposta)
// pair; duplicates surface as a conflict at the service layer.
type Candidatura struct {
	ID          uint              `json:"id" gorm:"primaryKey"`
	EstudanteID uint              `json:"estudante_id" gorm:"not null;uniqueIndex:idx_candidatura_unica"`
	PropostaID  uint              `json:"proposta_id" gorm:"not null;uniqueIndex:idx_candidatura_unica"`
	Estado      CandidaturaEstado `json:"estado" gorm:"not null;default:pendente;size:20;index"`
	SubmittedAt time.Time         `json:"submitted_at" gorm:"not null"`
	RespondedAt *time.Time        `json:"responded_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Estudante Estudante `json:"estudante,omitempty" gorm:"foreignKey:EstudanteID"`
	Proposta  Proposta  `json:"proposta,omitempty" gorm:"foreignKey:PropostaID"`
}

func (Candidatura) TableName() string {
	return "candidaturas"
}
