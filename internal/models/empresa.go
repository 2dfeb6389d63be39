package models

import (
	"time"

	"gorm.io/gorm"
)

// Empresa is the company profile owned by a user with RoleEmpresa.
// Validada gates login and proposta visibility until an admin or gestor
// approves the account.
type Empresa struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Nome     string `json:"nome" gorm:"not null;size:200"`
	Validada bool   `json:"validada" gorm:"not null;default:false;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User          User           `json:"-" gorm:"foreignKey:UserID"`
	Propostas     []Proposta     `json:"propostas,omitempty" gorm:"foreignKey:EmpresaID"`
	Departamentos []Departamento `json:"departamentos,omitempty" gorm:"many2many:empresa_departamentos"`
}

func (Empresa) TableName() string {
	return "empresas"
}

// EmpresaSummary is the slim projection embedded in matching results.
type EmpresaSummary struct {
	ID       uint   `json:"id"`
	Nome     string `json:"nome"`
	Validada bool   `json:"validada"`
}

func (e *Empresa) Summary() EmpresaSummary {
	return EmpresaSummary{ID: e.ID, Nome: e.Nome, Validada: e.Validada}
}
