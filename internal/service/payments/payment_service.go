package payments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/repository"
	"github.com/shopspring/decimal"
)

type PaymentUseCase interface {
	Process(ctx context.Context, tripID domain.TripID, amount decimal.Decimal, currency string) (*domain.Payment, error)
	Refund(ctx context.Context, tripID domain.TripID) (*domain.Payment, error)
}

// Gateway moves money for a payment. Both calls must be idempotent per
// payment id. A declined charge is reported with domain.ErrBusinessRule, a
// temporary outage with domain.Transient.
type Gateway interface {
	Charge(ctx context.Context, payment *domain.Payment) error
	Refund(ctx context.Context, payment *domain.Payment) error
}

// NoopGateway approves every charge and refund.
type NoopGateway struct{}

func (NoopGateway) Charge(context.Context, *domain.Payment) error {
	return nil
}

func (NoopGateway) Refund(context.Context, *domain.Payment) error {
	return nil
}

type PaymentService struct {
	payments repository.PaymentRepository
	gateway  Gateway
	log      *slog.Logger
}

type PaymentServiceOption func(*PaymentService)

func WithLogger(log *slog.Logger) PaymentServiceOption {
	return func(s *PaymentService) {
		s.log = log
	}
}

func WithGateway(gateway Gateway) PaymentServiceOption {
	return func(s *PaymentService) {
		s.gateway = gateway
	}
}

func NewPaymentService(payments repository.PaymentRepository, opts ...PaymentServiceOption) *PaymentService {
	service := &PaymentService{
		payments: payments,
		gateway:  NoopGateway{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Process charges the trip once and stores the payment as COMPLETED.
//
// A trip that is already charged fails with domain.ErrDuplicateResource; one
// whose payment was refunded or declined fails with domain.ErrBusinessRule and
// is not charged again. A declined charge is stored as FAILED.
func (s *PaymentService) Process(ctx context.Context, tripID domain.TripID, amount decimal.Decimal, currency string) (*domain.Payment, error) {
	payment, err := domain.NewPayment(tripID, amount, currency)
	if err != nil {
		return nil, err
	}

	existing, err := s.payments.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Active() {
			return nil, fmt.Errorf("process payment: %w: trip %s is already charged", domain.ErrDuplicateResource, tripID)
		}
		return nil, fmt.Errorf("%w: payment for trip %s is %s", domain.ErrBusinessRule, tripID, existing.Status)
	}

	if err := s.gateway.Charge(ctx, payment); err != nil {
		if domain.IsRetryable(err) {
			return nil, fmt.Errorf("charge payment: %w", err)
		}
		s.recordDecline(ctx, payment, err)
		return nil, fmt.Errorf("charge payment: %w", err)
	}

	if err := payment.Complete(); err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("process payment: %w", err)
	}
	s.log.InfoContext(ctx, "payment processed",
		"trip_id", tripID,
		"payment_id", payment.ID,
		"amount", payment.Amount.String(),
	)
	return payment, nil
}

func (s *PaymentService) recordDecline(ctx context.Context, payment *domain.Payment, cause error) {
	if err := payment.Fail(); err != nil {
		return
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		s.log.WarnContext(ctx, "failed to store declined payment", "trip_id", payment.TripID, "error", err)
		return
	}
	s.log.InfoContext(ctx, "payment declined", "trip_id", payment.TripID, "payment_id", payment.ID, "reason", cause)
}

// Refund returns a completed payment. A trip that was never charged needs no
// refund and the call succeeds with a nil payment.
func (s *PaymentService) Refund(ctx context.Context, tripID domain.TripID) (*domain.Payment, error) {
	payment, err := s.payments.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		s.log.InfoContext(ctx, "no payment to refund", "trip_id", tripID)
		return nil, nil
	}
	if payment.Status == domain.PaymentStatusRefunded {
		return payment, nil
	}

	expected := payment.Status
	if err := payment.Refund(); err != nil {
		return nil, err
	}
	if err := s.gateway.Refund(ctx, payment); err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}
	if err := s.payments.Update(ctx, payment, expected); err != nil {
		return nil, fmt.Errorf("refund payment: %w", err)
	}
	s.log.InfoContext(ctx, "payment refunded", "trip_id", tripID, "payment_id", payment.ID)
	return payment, nil
}

var _ PaymentUseCase = (*PaymentService)(nil)
