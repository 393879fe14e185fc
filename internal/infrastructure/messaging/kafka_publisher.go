// Package messaging publica los eventos de dominio en Kafka (segmentio/kafka-go).
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
)

// messageWriter subconjunto de *kafka.Writer usado por el publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope cuerpo JSON de cada mensaje.
type Envelope struct {
	Event      string    `json:"event"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source"`
	Payload    any       `json:"payload"`
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher implementa ports.EventPublisher. El tópico de cada evento es
// "<prefijo>.<nombre del evento>" y la clave de partición es el id del agregado.
type KafkaPublisher struct {
	w      messageWriter
	prefix string
	source string
}

// NewKafkaPublisher crea el writer contra los brokers. El writer no fija tópico;
// cada mensaje lleva el suyo.
func NewKafkaPublisher(brokers []string, topicPrefix, source string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           2 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newKafkaPublisher(w, topicPrefix, source)
}

func newKafkaPublisher(w messageWriter, topicPrefix, source string) *KafkaPublisher {
	return &KafkaPublisher{w: w, prefix: topicPrefix, source: source}
}

// Publish serializa y envía los eventos en un solo lote.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ports.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := p.message(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka: publicar %d eventos: %w", len(msgs), err)
	}
	return nil
}

// Close vacía los lotes pendientes y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func (p *KafkaPublisher) message(ev ports.Event) (kafka.Message, error) {
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	body, err := json.Marshal(Envelope{
		Event:      ev.Name,
		Key:        ev.Key,
		OccurredAt: occurred,
		Source:     p.source,
		Payload:    ev.Payload,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar %s: %w", ev.Name, err)
	}
	return kafka.Message{
		Topic: p.topic(ev.Name),
		Key:   []byte(ev.Key),
		Value: body,
		Time:  occurred,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(ev.Name)},
		},
	}, nil
}

func (p *KafkaPublisher) topic(event string) string {
	if p.prefix == "" {
		return event
	}
	return p.prefix + "." + event
}
