package models

import "time"

type Departamento struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Nome string `json:"nome" gorm:"uniqueIndex;not null;size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Departamento) TableName() string {
	return "departamentos"
}

// GestorDepartamento links a gestor user to a department it moderates.
// The set of rows for a gestor defines its authorization scope; a gestor
// with zero rows is unscoped and moderates every proposta (surfaced as
// services.GestorScope with All set).
type GestorDepartamento struct {
	GestorID       uint `json:"gestor_id" gorm:"primaryKey"`
	DepartamentoID uint `json:"departamento_id" gorm:"primaryKey"`

	CreatedAt time.Time `json:"created_at"`

	Departamento Departamento `json:"departamento" gorm:"foreignKey:DepartamentoID"`
}

func (GestorDepartamento) TableName() string {
	return "gestor_departamentos"
}
