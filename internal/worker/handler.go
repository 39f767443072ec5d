// Package worker turns trip request messages into saga executions.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/saga"
	"github.com/segmentio/kafka-go"
)

type Notifier interface {
	Send(ctx context.Context, exec *saga.Execution) error
}

type TripRequestHandler struct {
	saga     saga.SagaUseCase
	notifier Notifier
	log      *slog.Logger
}

func NewTripRequestHandler(runner saga.SagaUseCase, notifier Notifier, log *slog.Logger) *TripRequestHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TripRequestHandler{saga: runner, notifier: notifier, log: log}
}

// Handle runs one saga per message. Malformed and invalid requests are logged
// and dropped. When the saga does not start because ctx has ended, the error
// is returned and the message stays uncommitted for redelivery. A saga that
// ran is final: its outcome is committed whether it succeeded or failed.
func (h *TripRequestHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req saga.Request
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		h.log.WarnContext(ctx, "drop malformed trip request", "offset", msg.Offset, "error", err)
		return nil
	}
	if req.TripID == "" && len(msg.Key) > 0 {
		req.TripID = string(msg.Key)
	}

	exec, err := h.saga.Run(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			h.log.WarnContext(ctx, "drop invalid trip request", "trip_id", req.TripID, "error", err)
			return nil
		}
		return err
	}
	if !exec.Succeeded() {
		h.log.WarnContext(ctx, "trip request failed",
			"trip_id", exec.TripID,
			"marker", exec.Marker,
			"error", exec.Err(),
		)
	}

	if h.notifier != nil {
		if err := h.notifier.Send(ctx, exec); err != nil {
			h.log.WarnContext(ctx, "failed to notify traveler", "trip_id", exec.TripID, "error", err)
		}
	}
	return nil
}
