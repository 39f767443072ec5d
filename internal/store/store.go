// Package store defines the atomic conditional-write key-value contract the
// repositories are built on, along with memory, Postgres and Redis backends.
//
// Items follow a single-table layout: a partition key groups every record of
// one trip and the sort key tells the record kinds apart. An optional global
// index (gsi1) allows listing across partitions.
package store

import (
	"context"
	"errors"
)

var (
	// ErrConditionFailed is returned when a write condition does not hold at
	// write time. Nothing is written.
	ErrConditionFailed = errors.New("store: condition failed")
	ErrNotFound        = errors.New("store: item not found")
	ErrInvalidRequest  = errors.New("store: invalid request")
)

const (
	IndexPrimary = ""
	IndexGSI1    = "gsi1"
)

type Key struct {
	PK string
	SK string
}

type Item struct {
	Key
	IndexPK    string
	IndexSK    string
	EntityType string
	Status     string
	Attributes map[string]string
}

// Condition guards a write. The zero value means unconditional.
type Condition struct {
	NotExists    bool
	StatusEquals string
}

func NotExists() Condition {
	return Condition{NotExists: true}
}

func StatusEquals(status string) Condition {
	return Condition{StatusEquals: status}
}

func (c Condition) isZero() bool {
	return !c.NotExists && c.StatusEquals == ""
}

// Update sets Status when non-empty and merges Attributes into the item.
type Update struct {
	Status     string
	Attributes map[string]string
}

type Query struct {
	Index      string
	Partition  string
	SortPrefix string
}

// Store is satisfied by any storage engine offering atomic single-item
// conditional writes.
type Store interface {
	GetItem(ctx context.Context, key Key) (Item, error)
	// PutItem writes item. Only NotExists (or no condition) is supported.
	PutItem(ctx context.Context, item Item, cond Condition) error
	// UpdateItem applies upd to an existing item. A StatusEquals condition
	// fails with ErrConditionFailed when the item is missing too.
	UpdateItem(ctx context.Context, key Key, upd Update, cond Condition) error
	// Query returns items of one partition (or one gsi1 partition) whose sort
	// key starts with SortPrefix, ordered by sort key.
	Query(ctx context.Context, q Query) ([]Item, error)
}

func validatePut(item Item, cond Condition) error {
	if item.PK == "" || item.SK == "" {
		return errors.Join(ErrInvalidRequest, errors.New("item key is incomplete"))
	}
	if cond.StatusEquals != "" {
		return errors.Join(ErrInvalidRequest, errors.New("put supports only the not-exists condition"))
	}
	return nil
}

func validateUpdate(key Key, cond Condition) error {
	if key.PK == "" || key.SK == "" {
		return errors.Join(ErrInvalidRequest, errors.New("item key is incomplete"))
	}
	if cond.NotExists {
		return errors.Join(ErrInvalidRequest, errors.New("update does not support the not-exists condition"))
	}
	return nil
}

func cloneAttributes(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
