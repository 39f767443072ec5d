package repository

import (
	"fmt"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/store"
)

func NewHotelBookingRepository(s store.Store) HotelBookingRepository {
	return &kvRepository[domain.HotelBooking, domain.HotelBookingStatus]{store: s, codec: hotelCodec{}}
}

type hotelCodec struct{}

func (hotelCodec) entityType() string                                      { return EntityHotel }
func (hotelCodec) tripID(h *domain.HotelBooking) domain.TripID             { return h.TripID }
func (hotelCodec) id(h *domain.HotelBooking) domain.ResourceID             { return h.ID }
func (hotelCodec) status(h *domain.HotelBooking) domain.HotelBookingStatus { return h.Status }

func (hotelCodec) attributes(h *domain.HotelBooking) map[string]string {
	return map[string]string{
		"booking_id":     string(h.ID),
		"trip_id":        string(h.TripID),
		"hotel_name":     string(h.HotelName),
		"check_in_date":  h.StayPeriod.CheckIn.Format(domain.DateLayout),
		"check_out_date": h.StayPeriod.CheckOut.Format(domain.DateLayout),
		"price_amount":   h.Price.Amount.String(),
		"price_currency": string(h.Price.Currency),
	}
}

func (hotelCodec) decode(item store.Item) (*domain.HotelBooking, error) {
	return decodeHotelBooking(item)
}

func decodeHotelBooking(item store.Item) (*domain.HotelBooking, error) {
	a := item.Attributes

	name, err := domain.ParseHotelName(a["hotel_name"])
	if err != nil {
		return nil, fmt.Errorf("decode hotel booking: %w", err)
	}
	stay, err := domain.NewStayPeriod(a["check_in_date"], a["check_out_date"])
	if err != nil {
		return nil, fmt.Errorf("decode hotel booking: %w", err)
	}
	price, err := decodeMoney(a["price_amount"], a["price_currency"])
	if err != nil {
		return nil, fmt.Errorf("decode hotel booking: %w", err)
	}

	return &domain.HotelBooking{
		ID:         domain.ResourceID(a["booking_id"]),
		TripID:     domain.TripID(a["trip_id"]),
		HotelName:  name,
		StayPeriod: stay,
		Price:      price,
		Status:     domain.HotelBookingStatus(item.Status),
	}, nil
}
