package domain

import "time"

// TripView is the composite read model of a trip. Kinds that were never
// reserved are omitted.
type TripView struct {
	TripID  TripID       `json:"trip_id"`
	Flight  *FlightView  `json:"flight,omitempty"`
	Hotel   *HotelView   `json:"hotel,omitempty"`
	Payment *PaymentView `json:"payment,omitempty"`
}

type FlightView struct {
	BookingID     ResourceID    `json:"booking_id"`
	FlightNumber  FlightNumber  `json:"flight_number"`
	DepartureTime time.Time     `json:"departure_time"`
	ArrivalTime   time.Time     `json:"arrival_time"`
	PriceAmount   string        `json:"price_amount"`
	PriceCurrency Currency      `json:"price_currency"`
	Status        BookingStatus `json:"status"`
}

type HotelView struct {
	BookingID     ResourceID         `json:"booking_id"`
	HotelName     HotelName          `json:"hotel_name"`
	CheckInDate   string             `json:"check_in_date"`
	CheckOutDate  string             `json:"check_out_date"`
	Nights        int                `json:"nights"`
	PriceAmount   string             `json:"price_amount"`
	PriceCurrency Currency           `json:"price_currency"`
	Status        HotelBookingStatus `json:"status"`
}

type PaymentView struct {
	PaymentID ResourceID    `json:"payment_id"`
	Amount    string        `json:"amount"`
	Currency  Currency      `json:"currency"`
	Status    PaymentStatus `json:"status"`
}

func NewFlightView(b *Booking) *FlightView {
	if b == nil {
		return nil
	}
	return &FlightView{
		BookingID:     b.ID,
		FlightNumber:  b.FlightNumber,
		DepartureTime: b.DepartureTime,
		ArrivalTime:   b.ArrivalTime,
		PriceAmount:   b.Price.Amount.String(),
		PriceCurrency: b.Price.Currency,
		Status:        b.Status,
	}
}

func NewHotelView(h *HotelBooking) *HotelView {
	if h == nil {
		return nil
	}
	return &HotelView{
		BookingID:     h.ID,
		HotelName:     h.HotelName,
		CheckInDate:   h.StayPeriod.CheckIn.Format(DateLayout),
		CheckOutDate:  h.StayPeriod.CheckOut.Format(DateLayout),
		Nights:        h.StayPeriod.Nights(),
		PriceAmount:   h.Price.Amount.String(),
		PriceCurrency: h.Price.Currency,
		Status:        h.Status,
	}
}

func NewPaymentView(p *Payment) *PaymentView {
	if p == nil {
		return nil
	}
	return &PaymentView{
		PaymentID: p.ID,
		Amount:    p.Amount.Amount.String(),
		Currency:  p.Amount.Currency,
		Status:    p.Status,
	}
}
