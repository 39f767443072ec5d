package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var flightNumberPattern = regexp.MustCompile(`^[A-Z]{2}\d{1,4}$`)

// FlightNumber is a two letter airline code followed by 1-4 digits, e.g. NH001.
type FlightNumber string

func ParseFlightNumber(value string) (FlightNumber, error) {
	normalized := strings.ToUpper(value)
	if !flightNumberPattern.MatchString(normalized) {
		return "", validationErrorf("invalid flight number %q, expected two letters and 1-4 digits", value)
	}
	return FlightNumber(normalized), nil
}

// FlightDetails is the raw reservation input for a flight.
type FlightDetails struct {
	FlightNumber  string          `json:"flight_number" validate:"required,min=2,max=10"`
	DepartureTime string          `json:"departure_time" validate:"required"`
	ArrivalTime   string          `json:"arrival_time" validate:"required"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency" validate:"required,len=3"`
}

// Booking is a flight reservation owned by one trip.
type Booking struct {
	ID            ResourceID
	TripID        TripID
	FlightNumber  FlightNumber
	DepartureTime time.Time
	ArrivalTime   time.Time
	Price         Money
	Status        BookingStatus
}

// NewBooking builds a PENDING booking whose id is derived from tripID.
func NewBooking(tripID TripID, details FlightDetails) (*Booking, error) {
	if _, err := NewTripID(string(tripID)); err != nil {
		return nil, err
	}
	number, err := ParseFlightNumber(details.FlightNumber)
	if err != nil {
		return nil, err
	}
	departure, err := ParseDateTime(details.DepartureTime)
	if err != nil {
		return nil, err
	}
	arrival, err := ParseDateTime(details.ArrivalTime)
	if err != nil {
		return nil, err
	}
	price, err := NewMoney(details.PriceAmount, details.PriceCurrency)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:            BookingIDFor(tripID),
		TripID:        tripID,
		FlightNumber:  number,
		DepartureTime: departure,
		ArrivalTime:   arrival,
		Price:         price,
		Status:        BookingStatusPending,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the schedule invariant: departure strictly before arrival.
func (b *Booking) Validate() error {
	if !b.DepartureTime.Before(b.ArrivalTime) {
		return businessRuleErrorf("departure time must be before arrival time")
	}
	return nil
}

func (b *Booking) Confirm() error {
	if b.Status == BookingStatusCancelled {
		return businessRuleErrorf("cannot confirm a cancelled booking")
	}
	b.Status = BookingStatusConfirmed
	return nil
}

// Cancel is a no-op on an already cancelled booking.
func (b *Booking) Cancel() {
	b.Status = BookingStatusCancelled
}

// Active reports whether the booking still holds a seat.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDateTime accepts ISO 8601 timestamps with or without a zone offset.
// Timestamps without an offset are read as UTC.
func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, validationErrorf("invalid ISO 8601 datetime %q", value)
}
