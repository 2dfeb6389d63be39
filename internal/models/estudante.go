package models

import (
	"time"

	"gorm.io/gorm"
)

// Estudante is the student profile owned by a user with RoleEstudante.
// Competencias is free text as the student typed it, comma-delimited; the
// matching engine normalizes it at read time.
type Estudante struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Nome         string `json:"nome" gorm:"not null;size:100"`
	Competencias string `json:"competencias" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User          User           `json:"-" gorm:"foreignKey:UserID"`
	Candidaturas  []Candidatura  `json:"candidaturas,omitempty" gorm:"foreignKey:EstudanteID"`
	Favoritos     []Proposta     `json:"favoritos,omitempty" gorm:"many2many:estudante_favoritos"`
	Departamentos []Departamento `json:"departamentos,omitempty" gorm:"many2many:estudante_departamentos"`
}

func (Estudante) TableName() string {
	return "estudantes"
}
