package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Domenick1991/tripsaga/internal/saga"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type fakeReader struct {
	queue     []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, slog.New(slog.DiscardHandler))

	err := p.Publish(context.Background(), "saga_events", "trip-1", map[string]string{"hello": "world"})
	require.NoError(t, err)

	require.Len(t, w.messages, 1)
	assert.Equal(t, "saga_events", w.messages[0].Topic)
	assert.Equal(t, []byte("trip-1"), w.messages[0].Key)
	assert.JSONEq(t, `{"hello":"world"}`, string(w.messages[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestProducer_PublishErrors(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, nil)

	err := p.Publish(context.Background(), "t", "k", "v")
	assert.ErrorContains(t, err, "leader not available")

	err = p.Publish(context.Background(), "t", "k", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal payload")
}

func TestSagaEventPublisher(t *testing.T) {
	w := &fakeWriter{}
	publisher := NewSagaEventPublisher(newProducer(w, nil), "saga_events")

	finished := time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)
	exec := &saga.Execution{
		ID:         "exec-1",
		TripID:     "trip-1",
		Status:     saga.StatusFailed,
		FailedStep: saga.StepReserveHotel,
		Marker:     saga.FailedFromHotel,
		FinishedAt: finished,
	}
	require.NoError(t, publisher.PublishExecution(context.Background(), exec))

	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("trip-1"), w.messages[0].Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, EventSagaFailed, decoded["type"])
	assert.Equal(t, "exec-1", decoded["execution_id"])
	assert.Equal(t, "SagaFailedFromHotel", decoded["failure_marker"])
	assert.Equal(t, "2025-10-01T12:00:00Z", decoded["occurred_at"])
}

func TestSagaEventPublisher_Disabled(t *testing.T) {
	publisher := NewSagaEventPublisher(nil, "")
	assert.NoError(t, publisher.PublishExecution(context.Background(), &saga.Execution{}))
}

func TestConsumer_CommitsAfterHandler(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Offset: 1}, {Offset: 2}}}
	c := &Consumer{reader: reader}

	var handled []int64
	err := c.Consume(context.Background(), func(_ context.Context, msg kafka.Message) error {
		handled = append(handled, msg.Offset)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, handled)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestConsumer_HandlerErrorStopsWithoutCommit(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Offset: 7}}}
	c := &Consumer{reader: reader}

	err := c.Consume(context.Background(), func(context.Context, kafka.Message) error {
		return errors.New("store unavailable")
	})

	assert.ErrorContains(t, err, "store unavailable")
	assert.Empty(t, reader.committed)
}
