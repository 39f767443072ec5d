// Package notify tells travelers how their booking ended.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripsaga/internal/saga"
)

// Publisher delivers notifications to an outbound channel.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type Notification struct {
	TripID      string `json:"trip_id"`
	ExecutionID string `json:"execution_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

type Sender struct {
	publisher Publisher
	topic     string
	log       *slog.Logger
}

// NewSender returns a sender that logs every notification and, when
// publisher is non-nil and topic is set, also publishes it.
func NewSender(publisher Publisher, topic string, log *slog.Logger) *Sender {
	if log == nil {
		log = slog.Default()
	}
	return &Sender{publisher: publisher, topic: topic, log: log}
}

func (s *Sender) Send(ctx context.Context, exec *saga.Execution) error {
	n := Compose(exec)
	s.log.InfoContext(ctx, "notify traveler", "trip_id", n.TripID, "subject", n.Subject)

	if s.publisher == nil || s.topic == "" {
		return nil
	}
	if err := s.publisher.Publish(ctx, s.topic, n.TripID, n); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Compose renders the message for a finished execution.
func Compose(exec *saga.Execution) Notification {
	n := Notification{TripID: string(exec.TripID), ExecutionID: exec.ID}
	switch {
	case exec.Succeeded():
		n.Subject = "Your trip is booked"
		n.Body = fmt.Sprintf("Flight, hotel and payment for trip %s are confirmed.", exec.TripID)
	case exec.Marker == saga.CompensationFailed:
		n.Subject = "Your trip needs attention"
		n.Body = fmt.Sprintf("Booking trip %s failed at %s and could not be fully rolled back. Our support team will contact you.", exec.TripID, exec.FailedStep)
	default:
		n.Subject = "Your trip could not be booked"
		n.Body = fmt.Sprintf("Booking trip %s failed at %s. Nothing was charged and all reservations were released.", exec.TripID, exec.FailedStep)
	}
	return n
}
