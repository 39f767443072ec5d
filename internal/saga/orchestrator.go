// Package saga runs the trip booking saga: flight, hotel and payment steps in
// order, with reverse-ordered compensation when a step fails.
package saga

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/service/flights"
	"github.com/Domenick1991/tripsaga/internal/service/hotels"
	"github.com/Domenick1991/tripsaga/internal/service/payments"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Domenick1991/tripsaga/internal/saga"

const (
	StepReserveFlight  = "ReserveFlight"
	StepReserveHotel   = "ReserveHotel"
	StepProcessPayment = "ProcessPayment"
)

type SagaUseCase interface {
	Run(ctx context.Context, req Request) (*Execution, error)
}

// Publisher receives every finished execution.
type Publisher interface {
	PublishExecution(ctx context.Context, exec *Execution) error
}

// CacheInvalidator drops cached read views of a trip.
type CacheInvalidator interface {
	InvalidateTrip(ctx context.Context, tripID domain.TripID) error
}

// step pairs a forward action with its compensation. The suffix names the
// step inside compensation names, e.g. CancelFlightFromHotel.
type step struct {
	name         string
	suffix       string
	marker       Marker
	action       func(ctx context.Context, req *Request) error
	compensation string
	compensate   func(ctx context.Context, tripID domain.TripID) error
}

type Orchestrator struct {
	steps     []step
	validator *RequestValidator
	retry     RetryPolicy
	publisher Publisher
	cache     CacheInvalidator
	tracer    trace.Tracer
	log       *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Orchestrator)

func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *Orchestrator) {
		o.retry = p
	}
}

func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) {
		o.publisher = p
	}
}

func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(o *Orchestrator) {
		o.cache = c
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func NewOrchestrator(
	flightSvc flights.FlightUseCase,
	hotelSvc hotels.HotelUseCase,
	paymentSvc payments.PaymentUseCase,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		validator: NewRequestValidator(),
		retry:     DefaultRetryPolicy(),
		tracer:    otel.Tracer(tracerName),
		log:       slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.steps = []step{
		{
			name:   StepReserveFlight,
			suffix: "Flight",
			marker: FailedFromFlight,
			action: func(ctx context.Context, req *Request) error {
				_, err := flightSvc.Reserve(ctx, domain.TripID(req.TripID), req.FlightDetails)
				return err
			},
			compensation: "CancelFlight",
			compensate: func(ctx context.Context, tripID domain.TripID) error {
				_, err := flightSvc.Cancel(ctx, tripID)
				return err
			},
		},
		{
			name:   StepReserveHotel,
			suffix: "Hotel",
			marker: FailedFromHotel,
			action: func(ctx context.Context, req *Request) error {
				_, err := hotelSvc.Reserve(ctx, domain.TripID(req.TripID), req.HotelDetails)
				return err
			},
			compensation: "CancelHotel",
			compensate: func(ctx context.Context, tripID domain.TripID) error {
				_, err := hotelSvc.Cancel(ctx, tripID)
				return err
			},
		},
		{
			name:   StepProcessPayment,
			suffix: "Payment",
			marker: FailedFromPayment,
			action: func(ctx context.Context, req *Request) error {
				_, err := paymentSvc.Process(ctx, domain.TripID(req.TripID), req.PaymentAmount, req.Currency)
				return err
			},
			compensation: "RefundPayment",
			compensate: func(ctx context.Context, tripID domain.TripID) error {
				_, err := paymentSvc.Refund(ctx, tripID)
				return err
			},
		},
	}
	return o
}

// Run validates req and executes the saga to a terminal state. A saga that
// fails is not an error: the returned execution carries the failure marker.
// The error is non-nil only when no step ran: req is invalid (ErrValidation)
// or ctx has already ended.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Execution, error) {
	if err := o.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tripID := domain.TripID(req.TripID)

	exec := &Execution{
		ID:        o.newID(),
		TripID:    tripID,
		Status:    StatusRunning,
		StartedAt: o.now(),
	}

	ctx, span := o.tracer.Start(ctx, "saga.Run", trace.WithAttributes(
		attribute.String("saga.execution_id", exec.ID),
		attribute.String("trip.id", string(tripID)),
	))
	defer span.End()

	log := o.log.With("execution_id", exec.ID, "trip_id", tripID)
	log.InfoContext(ctx, "saga started")

	completed := make([]step, 0, len(o.steps))
	for _, st := range o.steps {
		err := o.invoke(ctx, exec, log, st.name, false, func(ctx context.Context) error {
			return st.action(ctx, &req)
		})
		if err != nil {
			exec.fail(st.name, st.marker, err)
			o.compensate(ctx, exec, log, completed, st)
			break
		}
		completed = append(completed, st)
	}
	if exec.Status == StatusRunning {
		exec.Status = StatusSucceeded
	}
	exec.FinishedAt = o.now()

	if exec.Succeeded() {
		span.SetStatus(codes.Ok, "")
		log.InfoContext(ctx, "saga succeeded")
	} else {
		span.SetStatus(codes.Error, string(exec.Marker))
		log.WarnContext(ctx, "saga failed",
			"failed_step", exec.FailedStep,
			"marker", exec.Marker,
			"cause", exec.Cause,
		)
	}

	o.afterRun(ctx, exec, log)
	return exec, nil
}

// compensate runs the compensations of completed in reverse order. The chain
// stops at the first compensation that still fails after retries.
func (o *Orchestrator) compensate(ctx context.Context, exec *Execution, log *slog.Logger, completed []step, failed step) {
	ctx = context.WithoutCancel(ctx)
	for i := len(completed) - 1; i >= 0; i-- {
		st := completed[i]
		name := st.compensation + "From" + failed.suffix
		err := o.invoke(ctx, exec, log, name, true, func(ctx context.Context) error {
			return st.compensate(ctx, exec.TripID)
		})
		if err != nil {
			exec.compensationFailed(err)
			log.ErrorContext(ctx, "compensation chain stopped", "compensation", name, "error", err)
			return
		}
	}
}

// invoke runs one named invocation through the retry policy and appends it to
// the execution history.
func (o *Orchestrator) invoke(
	ctx context.Context,
	exec *Execution,
	log *slog.Logger,
	name string,
	compensation bool,
	fn func(context.Context) error,
) error {
	ctx, span := o.tracer.Start(ctx, "saga.step."+name, trace.WithAttributes(
		attribute.String("saga.step", name),
		attribute.Bool("saga.compensation", compensation),
	))
	defer span.End()

	rec := StepRecord{Name: name, Compensation: compensation, StartedAt: o.now()}
	attempts, err := o.retry.Do(ctx, fn)
	rec.Attempts = attempts
	rec.FinishedAt = o.now()
	span.SetAttributes(attribute.Int("saga.attempts", attempts))

	switch {
	case err == nil:
		rec.Status = StepSucceeded
	// Services report a duplicate only while the existing record is live.
	case !compensation && errors.Is(err, domain.ErrDuplicateResource):
		rec.Status = StepAlreadyDone
		rec.Error = err.Error()
		err = nil
	case compensation && errors.Is(err, domain.ErrResourceNotFound):
		rec.Status = StepAlreadyDone
		rec.Error = err.Error()
		err = nil
	default:
		rec.Status = StepFailed
		rec.Error = err.Error()
	}
	exec.record(rec)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WarnContext(ctx, "saga step failed", "step", name, "attempts", attempts, "error", err)
		return err
	}
	log.InfoContext(ctx, "saga step done", "step", name, "status", rec.Status, "attempts", attempts)
	return nil
}

func (o *Orchestrator) afterRun(ctx context.Context, exec *Execution, log *slog.Logger) {
	ctx = context.WithoutCancel(ctx)
	if o.cache != nil {
		if err := o.cache.InvalidateTrip(ctx, exec.TripID); err != nil {
			log.WarnContext(ctx, "failed to invalidate trip cache", "error", err)
		}
	}
	if o.publisher != nil {
		if err := o.publisher.PublishExecution(ctx, exec); err != nil {
			log.WarnContext(ctx, "failed to publish saga execution", "error", err)
		}
	}
}

var _ SagaUseCase = (*Orchestrator)(nil)
