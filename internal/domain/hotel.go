package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type HotelBookingStatus string

const (
	HotelBookingStatusPending   HotelBookingStatus = "PENDING"
	HotelBookingStatusConfirmed HotelBookingStatus = "CONFIRMED"
	HotelBookingStatusCanceled  HotelBookingStatus = "CANCELED"
)

const (
	maxHotelNameLength = 100
	DateLayout         = "2006-01-02"
)

type HotelName string

func ParseHotelName(value string) (HotelName, error) {
	if strings.TrimSpace(value) == "" {
		return "", validationErrorf("hotel name cannot be empty")
	}
	if utf8.RuneCountInString(value) > maxHotelNameLength {
		return "", validationErrorf("hotel name is too long (max %d characters)", maxHotelNameLength)
	}
	return HotelName(value), nil
}

// StayPeriod is a check-in/check-out date pair.
type StayPeriod struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func NewStayPeriod(checkIn, checkOut string) (StayPeriod, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return StayPeriod{}, validationErrorf("invalid check-in date %q", checkIn)
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return StayPeriod{}, validationErrorf("invalid check-out date %q", checkOut)
	}
	p := StayPeriod{CheckIn: in, CheckOut: out}
	if err := p.Validate(); err != nil {
		return StayPeriod{}, err
	}
	return p, nil
}

func (p StayPeriod) Validate() error {
	if !p.CheckOut.After(p.CheckIn) {
		return businessRuleErrorf("check-out date must be after check-in date")
	}
	return nil
}

func (p StayPeriod) Nights() int {
	return int(p.CheckOut.Sub(p.CheckIn).Hours() / 24)
}

// HotelDetails is the raw reservation input for a hotel stay.
type HotelDetails struct {
	HotelName     string          `json:"hotel_name" validate:"required,max=100"`
	CheckIn       string          `json:"check_in" validate:"required"`
	CheckOut      string          `json:"check_out" validate:"required"`
	PriceAmount   decimal.Decimal `json:"price_amount"`
	PriceCurrency string          `json:"price_currency" validate:"required,len=3"`
}

type HotelBooking struct {
	ID         ResourceID
	TripID     TripID
	HotelName  HotelName
	StayPeriod StayPeriod
	Price      Money
	Status     HotelBookingStatus
}

func NewHotelBooking(tripID TripID, details HotelDetails) (*HotelBooking, error) {
	if _, err := NewTripID(string(tripID)); err != nil {
		return nil, err
	}
	name, err := ParseHotelName(details.HotelName)
	if err != nil {
		return nil, err
	}
	stay, err := NewStayPeriod(details.CheckIn, details.CheckOut)
	if err != nil {
		return nil, err
	}
	price, err := NewMoney(details.PriceAmount, details.PriceCurrency)
	if err != nil {
		return nil, err
	}
	return &HotelBooking{
		ID:         HotelBookingIDFor(tripID),
		TripID:     tripID,
		HotelName:  name,
		StayPeriod: stay,
		Price:      price,
		Status:     HotelBookingStatusPending,
	}, nil
}

func (h *HotelBooking) Confirm() error {
	if h.Status == HotelBookingStatusCanceled {
		return businessRuleErrorf("cannot confirm a canceled hotel booking")
	}
	h.Status = HotelBookingStatusConfirmed
	return nil
}

// Cancel is a no-op on an already canceled booking.
func (h *HotelBooking) Cancel() {
	h.Status = HotelBookingStatusCanceled
}

func (h *HotelBooking) Active() bool {
	return h.Status == HotelBookingStatusPending || h.Status == HotelBookingStatusConfirmed
}
