package domain

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type Payment struct {
	ID     ResourceID
	TripID TripID
	Amount Money
	Status PaymentStatus
}

func NewPayment(tripID TripID, amount decimal.Decimal, currency string) (*Payment, error) {
	if _, err := NewTripID(string(tripID)); err != nil {
		return nil, err
	}
	money, err := NewMoney(amount, currency)
	if err != nil {
		return nil, err
	}
	return &Payment{
		ID:     PaymentIDFor(tripID),
		TripID: tripID,
		Amount: money,
		Status: PaymentStatusPending,
	}, nil
}

// Complete is allowed only once, from PENDING.
func (p *Payment) Complete() error {
	if p.Status != PaymentStatusPending {
		return businessRuleErrorf("cannot complete payment in %s status", p.Status)
	}
	p.Status = PaymentStatusCompleted
	return nil
}

// Refund moves a COMPLETED payment to REFUNDED and is a no-op when already refunded.
func (p *Payment) Refund() error {
	if p.Status == PaymentStatusRefunded {
		return nil
	}
	if p.Status != PaymentStatusCompleted {
		return businessRuleErrorf("can only refund completed payments, got %s", p.Status)
	}
	p.Status = PaymentStatusRefunded
	return nil
}

// Fail records a charge the gateway rejected. A failed payment is terminal.
func (p *Payment) Fail() error {
	if p.Status != PaymentStatusPending {
		return businessRuleErrorf("cannot fail payment in %s status", p.Status)
	}
	p.Status = PaymentStatusFailed
	return nil
}

// Active reports whether the trip has been charged and not refunded.
func (p *Payment) Active() bool {
	return p.Status == PaymentStatusCompleted
}
