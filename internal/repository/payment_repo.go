package repository

import (
	"fmt"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/store"
)

func NewPaymentRepository(s store.Store) PaymentRepository {
	return &kvRepository[domain.Payment, domain.PaymentStatus]{store: s, codec: paymentCodec{}}
}

type paymentCodec struct{}

func (paymentCodec) entityType() string                            { return EntityPayment }
func (paymentCodec) tripID(p *domain.Payment) domain.TripID        { return p.TripID }
func (paymentCodec) id(p *domain.Payment) domain.ResourceID        { return p.ID }
func (paymentCodec) status(p *domain.Payment) domain.PaymentStatus { return p.Status }

func (paymentCodec) attributes(p *domain.Payment) map[string]string {
	return map[string]string{
		"payment_id": string(p.ID),
		"trip_id":    string(p.TripID),
		"amount":     p.Amount.Amount.String(),
		"currency":   string(p.Amount.Currency),
	}
}

func (paymentCodec) decode(item store.Item) (*domain.Payment, error) {
	return decodePayment(item)
}

func decodePayment(item store.Item) (*domain.Payment, error) {
	a := item.Attributes

	amount, err := decodeMoney(a["amount"], a["currency"])
	if err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	return &domain.Payment{
		ID:     domain.ResourceID(a["payment_id"]),
		TripID: domain.TripID(a["trip_id"]),
		Amount: amount,
		Status: domain.PaymentStatus(item.Status),
	}, nil
}
