package domain

import "fmt"

// TripID identifies one trip. Every resource id is derived from it.
type TripID string

func NewTripID(value string) (TripID, error) {
	if value == "" {
		return "", validationErrorf("trip id cannot be empty")
	}
	return TripID(value), nil
}

func (t TripID) String() string {
	return string(t)
}

type ResourceKind string

const (
	KindFlight  ResourceKind = "flight"
	KindHotel   ResourceKind = "hotel"
	KindPayment ResourceKind = "payment"
)

type ResourceID string

func (id ResourceID) String() string {
	return string(id)
}

// DeriveID returns the id of the kind record owned by tripID. It is a pure
// function, so a retried request for the same trip always addresses the same
// record instead of creating a second one.
func DeriveID(kind ResourceKind, tripID TripID) ResourceID {
	return ResourceID(fmt.Sprintf("%s_for_%s", kind, tripID))
}

func BookingIDFor(tripID TripID) ResourceID      { return DeriveID(KindFlight, tripID) }
func HotelBookingIDFor(tripID TripID) ResourceID { return DeriveID(KindHotel, tripID) }
func PaymentIDFor(tripID TripID) ResourceID      { return DeriveID(KindPayment, tripID) }
