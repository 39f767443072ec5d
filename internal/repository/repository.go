// Package repository implements the persistence protocol of the trip
// resources on top of a conditional-write store. Every storage error is
// translated into the domain error taxonomy here.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/store"
)

// Repository is the capability set shared by all resource kinds.
type Repository[T any, S ~string] interface {
	// Save creates entity. It fails with domain.ErrDuplicateResource when a
	// record already exists at the entity's key.
	Save(ctx context.Context, entity *T) error
	// FindByTripID returns the trip's record, or nil when there is none.
	FindByTripID(ctx context.Context, tripID domain.TripID) (*T, error)
	// Update persists the entity's status. It fails with
	// domain.ErrOptimisticLock when the stored status is not expected and with
	// domain.ErrValidation when expected is empty.
	Update(ctx context.Context, entity *T, expected S) error
}

type (
	BookingRepository      = Repository[domain.Booking, domain.BookingStatus]
	HotelBookingRepository = Repository[domain.HotelBooking, domain.HotelBookingStatus]
	PaymentRepository      = Repository[domain.Payment, domain.PaymentStatus]
)

// Single-table layout.
const (
	EntityFlight  = "FLIGHT"
	EntityHotel   = "HOTEL"
	EntityPayment = "PAYMENT"

	tripsIndexPartition = "TRIPS"
	tripKeyPrefix       = "TRIP#"
)

func PartitionKey(tripID domain.TripID) string {
	return tripKeyPrefix + string(tripID)
}

func sortKey(entityType string, id domain.ResourceID) string {
	return entityType + "#" + string(id)
}

// codec maps one entity type to and from store items.
type codec[T any, S ~string] interface {
	entityType() string
	tripID(e *T) domain.TripID
	id(e *T) domain.ResourceID
	status(e *T) S
	attributes(e *T) map[string]string
	decode(item store.Item) (*T, error)
}

type kvRepository[T any, S ~string] struct {
	store store.Store
	codec codec[T, S]
}

func (r *kvRepository[T, S]) Save(ctx context.Context, entity *T) error {
	tripID := r.codec.tripID(entity)
	item := store.Item{
		Key:        r.key(entity),
		IndexPK:    tripsIndexPartition,
		IndexSK:    PartitionKey(tripID),
		EntityType: r.codec.entityType(),
		Status:     string(r.codec.status(entity)),
		Attributes: r.codec.attributes(entity),
	}

	err := r.store.PutItem(ctx, item, store.NotExists())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrConditionFailed):
		return fmt.Errorf("%w: %s already exists", domain.ErrDuplicateResource, r.codec.id(entity))
	default:
		return fmt.Errorf("save %s: %w", r.codec.id(entity), domain.Transient(err))
	}
}

func (r *kvRepository[T, S]) FindByTripID(ctx context.Context, tripID domain.TripID) (*T, error) {
	items, err := r.store.Query(ctx, store.Query{
		Partition:  PartitionKey(tripID),
		SortPrefix: r.codec.entityType() + "#",
	})
	if err != nil {
		return nil, fmt.Errorf("find %s for trip %s: %w", r.codec.entityType(), tripID, domain.Transient(err))
	}
	if len(items) == 0 {
		return nil, nil
	}
	return r.codec.decode(items[0])
}

func (r *kvRepository[T, S]) Update(ctx context.Context, entity *T, expected S) error {
	if string(expected) == "" {
		return fmt.Errorf("%w: update of %s needs the expected status", domain.ErrValidation, r.codec.id(entity))
	}
	upd := store.Update{Status: string(r.codec.status(entity))}

	err := r.store.UpdateItem(ctx, r.key(entity), upd, store.StatusEquals(string(expected)))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrConditionFailed):
		return fmt.Errorf("%w: %s status is no longer %s", domain.ErrOptimisticLock, r.codec.id(entity), expected)
	default:
		return fmt.Errorf("update %s: %w", r.codec.id(entity), domain.Transient(err))
	}
}

func (r *kvRepository[T, S]) key(entity *T) store.Key {
	return store.Key{
		PK: PartitionKey(r.codec.tripID(entity)),
		SK: sortKey(r.codec.entityType(), r.codec.id(entity)),
	}
}
