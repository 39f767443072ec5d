package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps items in a map guarded by a mutex. Every operation holds
// the lock for its whole duration, which makes conditional writes atomic.
type MemoryStore struct {
	mu    sync.Mutex
	items map[Key]Item
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[Key]Item)}
}

func (s *MemoryStore) GetItem(_ context.Context, key Key) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return Item{}, ErrNotFound
	}
	return copyItem(item), nil
}

func (s *MemoryStore) PutItem(_ context.Context, item Item, cond Condition) error {
	if err := validatePut(item, cond); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.Key]; exists && cond.NotExists {
		return ErrConditionFailed
	}
	s.items[item.Key] = copyItem(item)
	return nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, key Key, upd Update, cond Condition) error {
	if err := validateUpdate(key, cond); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		if cond.isZero() {
			return ErrNotFound
		}
		return ErrConditionFailed
	}
	if cond.StatusEquals != "" && item.Status != cond.StatusEquals {
		return ErrConditionFailed
	}

	item = copyItem(item)
	if upd.Status != "" {
		item.Status = upd.Status
	}
	for k, v := range upd.Attributes {
		item.Attributes[k] = v
	}
	s.items[key] = item
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Item
	for _, item := range s.items {
		if matchesQuery(item, q) {
			out = append(out, copyItem(item))
		}
	}
	sortItems(out, q.Index)
	return out, nil
}

func matchesQuery(item Item, q Query) bool {
	switch q.Index {
	case IndexGSI1:
		return item.IndexPK != "" && item.IndexPK == q.Partition && strings.HasPrefix(item.IndexSK, q.SortPrefix)
	default:
		return item.PK == q.Partition && strings.HasPrefix(item.SK, q.SortPrefix)
	}
}

func sortItems(items []Item, index string) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if index == IndexGSI1 && a.IndexSK != b.IndexSK {
			return a.IndexSK < b.IndexSK
		}
		if a.PK != b.PK {
			return a.PK < b.PK
		}
		return a.SK < b.SK
	})
}

func copyItem(item Item) Item {
	item.Attributes = cloneAttributes(item.Attributes)
	return item
}

var _ Store = (*MemoryStore)(nil)
