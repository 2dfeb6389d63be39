package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleEmpresa   UserRole = "empresa"
	RoleEstudante UserRole = "estudante"
	RoleGestor    UserRole = "gestor"
)

// Valid reports whether the role is one of the four platform roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmpresa, RoleEstudante, RoleGestor:
		return true
	}
	return false
}

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	Nome     string   `json:"nome" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
