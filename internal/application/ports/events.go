package ports

import (
	"context"
	"time"
)

// Nombres de eventos de dominio publicados después del commit.
const (
	EventMovementRecorded = "stock.movement.recorded"
	EventLowStock         = "stock.low"
	EventGRNCreated       = "grn.created"
	EventPOStatusChanged  = "purchase_order.status_changed"
	EventConsumption      = "stock.consumed"
)

// Event mensaje de integración para colaboradores externos (notificaciones, auditoría).
type Event struct {
	Name       string
	Key        string // clave de partición (id del agregado)
	OccurredAt time.Time
	Payload    any
}

// EventPublisher publica eventos fuera de la transacción. Un fallo no revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// NoopPublisher descarta los eventos (sin broker configurado).
type NoopPublisher struct{}

// Publish no hace nada.
func (NoopPublisher) Publish(context.Context, ...Event) error { return nil }
