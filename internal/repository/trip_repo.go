package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/Domenick1991/tripsaga/internal/store"
)

// TripRecords holds every record of one trip. Missing kinds are nil.
type TripRecords struct {
	TripID  domain.TripID
	Flight  *domain.Booking
	Hotel   *domain.HotelBooking
	Payment *domain.Payment
}

func (r TripRecords) Empty() bool {
	return r.Flight == nil && r.Hotel == nil && r.Payment == nil
}

type TripRepository interface {
	Get(ctx context.Context, tripID domain.TripID) (TripRecords, error)
	ListTripIDs(ctx context.Context) ([]domain.TripID, error)
}

type KVTripRepository struct {
	store store.Store
}

func NewTripRepository(s store.Store) TripRepository {
	return &KVTripRepository{store: s}
}

// Get reads the whole trip partition and sorts the items by entity type.
// Items of unknown types are ignored.
func (r *KVTripRepository) Get(ctx context.Context, tripID domain.TripID) (TripRecords, error) {
	records := TripRecords{TripID: tripID}

	items, err := r.store.Query(ctx, store.Query{Partition: PartitionKey(tripID)})
	if err != nil {
		return records, fmt.Errorf("get trip %s: %w", tripID, domain.Transient(err))
	}

	for _, item := range items {
		switch item.EntityType {
		case EntityFlight:
			if records.Flight, err = decodeBooking(item); err != nil {
				return records, err
			}
		case EntityHotel:
			if records.Hotel, err = decodeHotelBooking(item); err != nil {
				return records, err
			}
		case EntityPayment:
			if records.Payment, err = decodePayment(item); err != nil {
				return records, err
			}
		}
	}
	return records, nil
}

// ListTripIDs returns each trip id once, in index order.
func (r *KVTripRepository) ListTripIDs(ctx context.Context) ([]domain.TripID, error) {
	items, err := r.store.Query(ctx, store.Query{
		Index:      store.IndexGSI1,
		Partition:  tripsIndexPartition,
		SortPrefix: tripKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", domain.Transient(err))
	}

	seen := make(map[string]struct{}, len(items))
	ids := make([]domain.TripID, 0, len(items))
	for _, item := range items {
		id := strings.TrimPrefix(item.IndexSK, tripKeyPrefix)
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, domain.TripID(id))
	}
	return ids, nil
}

var _ TripRepository = (*KVTripRepository)(nil)
