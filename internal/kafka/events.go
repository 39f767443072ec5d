package kafka

import (
	"context"
	"time"

	"github.com/Domenick1991/tripsaga/internal/saga"
)

const (
	EventSagaSucceeded = "saga_succeeded"
	EventSagaFailed    = "saga_failed"
)

// SagaEvent is the message published for every finished saga execution.
type SagaEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	*saga.Execution
}

func NewSagaEvent(exec *saga.Execution) SagaEvent {
	eventType := EventSagaSucceeded
	if !exec.Succeeded() {
		eventType = EventSagaFailed
	}
	return SagaEvent{Type: eventType, OccurredAt: exec.FinishedAt, Execution: exec}
}

// SagaEventPublisher publishes executions keyed by trip id so events of one
// trip stay ordered.
type SagaEventPublisher struct {
	producer *Producer
	topic    string
}

func NewSagaEventPublisher(producer *Producer, topic string) *SagaEventPublisher {
	return &SagaEventPublisher{producer: producer, topic: topic}
}

func (p *SagaEventPublisher) PublishExecution(ctx context.Context, exec *saga.Execution) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}
	return p.producer.Publish(ctx, p.topic, string(exec.TripID), NewSagaEvent(exec))
}

var _ saga.Publisher = (*SagaEventPublisher)(nil)
