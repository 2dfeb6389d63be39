package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published by the service. Consumers (notification workers,
// audit trail) subscribe by topic; this service only publishes.
const (
	TypePropostaEstadoAlterado = "proposta.estado_alterado"
	TypePropostaExpirada       = "proposta.expirada"
	TypeCandidaturaSubmetida   = "candidatura.submetida"
	TypeCandidaturaRespondida  = "candidatura.respondida"
	TypeEmpresaValidada        = "empresa.validada"
	TypeRemocaoAprovada        = "conta.remocao_aprovada"
)

const source = "propostas-service"

// Event is the envelope written to the message bus.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh ID and the service source tag.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// Publisher is the outbound event port. Publish failures are logged by
// callers and never surfaced to API clients.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type PropostaEstadoAlteradoEvent struct {
	PropostaID uint       `json:"proposta_id"`
	EmpresaID  uint       `json:"empresa_id"`
	De         string     `json:"de"`
	Para       string     `json:"para"`
	AtivaAte   *time.Time `json:"ativa_ate,omitempty"`
	ActorID    uint       `json:"actor_id"`
}

type CandidaturaEvent struct {
	CandidaturaID uint   `json:"candidatura_id"`
	PropostaID    uint   `json:"proposta_id"`
	EstudanteID   uint   `json:"estudante_id"`
	Estado        string `json:"estado"`
}

type EmpresaValidadaEvent struct {
	EmpresaID uint `json:"empresa_id"`
	ActorID   uint `json:"actor_id"`
}

type RemocaoAprovadaEvent struct {
	PedidoID    uint `json:"pedido_id"`
	EstudanteID uint `json:"estudante_id"`
	UserID      uint `json:"user_id"`
	ActorID     uint `json:"actor_id"`
}

type PropostaExpiradaEvent struct {
	Expiradas int64     `json:"expiradas"`
	SweepAt   time.Time `json:"sweep_at"`
}
