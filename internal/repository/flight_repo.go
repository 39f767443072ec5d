package repository

import (
	"fmt"
	"time"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/store"
	"github.com/shopspring/decimal"
)

func NewBookingRepository(s store.Store) BookingRepository {
	return &kvRepository[domain.Booking, domain.BookingStatus]{store: s, codec: bookingCodec{}}
}

type bookingCodec struct{}

func (bookingCodec) entityType() string                            { return EntityFlight }
func (bookingCodec) tripID(b *domain.Booking) domain.TripID        { return b.TripID }
func (bookingCodec) id(b *domain.Booking) domain.ResourceID        { return b.ID }
func (bookingCodec) status(b *domain.Booking) domain.BookingStatus { return b.Status }

func (bookingCodec) attributes(b *domain.Booking) map[string]string {
	return map[string]string{
		"booking_id":     string(b.ID),
		"trip_id":        string(b.TripID),
		"flight_number":  string(b.FlightNumber),
		"departure_time": b.DepartureTime.Format(time.RFC3339Nano),
		"arrival_time":   b.ArrivalTime.Format(time.RFC3339Nano),
		"price_amount":   b.Price.Amount.String(),
		"price_currency": string(b.Price.Currency),
	}
}

func (bookingCodec) decode(item store.Item) (*domain.Booking, error) {
	return decodeBooking(item)
}

func decodeBooking(item store.Item) (*domain.Booking, error) {
	a := item.Attributes

	number, err := domain.ParseFlightNumber(a["flight_number"])
	if err != nil {
		return nil, fmt.Errorf("decode flight booking: %w", err)
	}
	departure, err := domain.ParseDateTime(a["departure_time"])
	if err != nil {
		return nil, fmt.Errorf("decode flight booking: %w", err)
	}
	arrival, err := domain.ParseDateTime(a["arrival_time"])
	if err != nil {
		return nil, fmt.Errorf("decode flight booking: %w", err)
	}
	price, err := decodeMoney(a["price_amount"], a["price_currency"])
	if err != nil {
		return nil, fmt.Errorf("decode flight booking: %w", err)
	}

	b := &domain.Booking{
		ID:            domain.ResourceID(a["booking_id"]),
		TripID:        domain.TripID(a["trip_id"]),
		FlightNumber:  number,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Price:         price,
		Status:        domain.BookingStatus(item.Status),
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("decode flight booking: %w", err)
	}
	return b, nil
}

func decodeMoney(amount, currency string) (domain.Money, error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, amount)
	}
	return domain.NewMoney(value, currency)
}
