package models

import (
	"time"

	"gorm.io/gorm"
)

type PedidoRemocaoEstado string

const (
	PedidoPendente  PedidoRemocaoEstado = "pendente"
	PedidoAprovado  PedidoRemocaoEstado = "aprovado"
	PedidoRejeitado PedidoRemocaoEstado = "rejeitado"
)

// PedidoRemocao is a student-initiated account deletion request. At most
// one pendente pedido may exist per estudante; approval cascades deletion
// of the underlying user and all dependent rows.
type PedidoRemocao struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	EstudanteID uint                `json:"estudante_id" gorm:"not null;index"`
	Estado      PedidoRemocaoEstado `json:"estado" gorm:"not null;default:pendente;size:20;index"`
	Motivo      string              `json:"motivo" gorm:"type:text"`
	ResolvedBy  *uint               `json:"resolved_by"`
	ResolvedAt  *time.Time          `json:"resolved_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Estudante Estudante `json:"estudante,omitempty" gorm:"foreignKey:EstudanteID"`
}

func (PedidoRemocao) TableName() string {
	return "pedidos_remocao"
}
