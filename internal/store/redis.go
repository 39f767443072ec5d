package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	fieldPK         = "pk"
	fieldSK         = "sk"
	fieldIndexPK    = "gsi1pk"
	fieldIndexSK    = "gsi1sk"
	fieldEntityType = "entity_type"
	fieldStatus     = "status"
	attrPrefix      = "attr:"

	memberSeparator = "\x1f"
)

// KEYS: item hash, partition set, gsi1 set.
// ARGV: sort key, gsi1 member (may be empty), "1" to require absence, field/value pairs.
var putItemScript = redis.NewScript(`
if ARGV[3] == '1' and redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('DEL', KEYS[1])
for i = 4, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
redis.call('SADD', KEYS[2], ARGV[1])
if ARGV[2] ~= '' then
	redis.call('SADD', KEYS[3], ARGV[2])
end
return 1
`)

// KEYS: item hash.
// ARGV: expected status (may be empty), new status (may be empty), field/value pairs.
var updateItemScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'status')
if not current then
	return -1
end
if ARGV[1] ~= '' and current ~= ARGV[1] then
	return 0
end
if ARGV[2] ~= '' then
	redis.call('HSET', KEYS[1], 'status', ARGV[2])
end
for i = 3, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
return 1
`)

// RedisStore keeps every item in a hash and tracks partitions with sets.
// Conditional writes run as Lua scripts, so the check and the write are one
// atomic step on the server.
//
// A put script touches the item, its partition set and the global index set
// at once. Those keys hash to different cluster slots, so the store needs a
// single-node (or sentinel failover) client rather than a cluster client.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "tripsaga"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) GetItem(ctx context.Context, key Key) (Item, error) {
	fields, err := s.client.HGetAll(ctx, s.itemKey(key)).Result()
	if err != nil {
		return Item{}, err
	}
	if len(fields) == 0 {
		return Item{}, ErrNotFound
	}
	return itemFromHash(fields), nil
}

func (s *RedisStore) PutItem(ctx context.Context, item Item, cond Condition) error {
	if err := validatePut(item, cond); err != nil {
		return err
	}

	var indexMember string
	if item.IndexPK != "" {
		indexMember = item.PK + memberSeparator + item.SK
	}
	requireAbsent := "0"
	if cond.NotExists {
		requireAbsent = "1"
	}

	args := []any{item.SK, indexMember, requireAbsent}
	args = append(args, hashFields(item)...)
	keys := []string{s.itemKey(item.Key), s.partitionKey(item.PK), s.indexKey(item.IndexPK)}

	written, err := putItemScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return err
	}
	if written == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (s *RedisStore) UpdateItem(ctx context.Context, key Key, upd Update, cond Condition) error {
	if err := validateUpdate(key, cond); err != nil {
		return err
	}

	args := []any{cond.StatusEquals, upd.Status}
	for k, v := range upd.Attributes {
		args = append(args, attrPrefix+k, v)
	}

	res, err := updateItemScript.Run(ctx, s.client, []string{s.itemKey(key)}, args...).Int()
	if err != nil {
		return err
	}
	switch res {
	case 1:
		return nil
	case -1:
		if cond.isZero() {
			return ErrNotFound
		}
		return ErrConditionFailed
	default:
		return ErrConditionFailed
	}
}

func (s *RedisStore) Query(ctx context.Context, q Query) ([]Item, error) {
	var keys []Key
	switch q.Index {
	case IndexGSI1:
		members, err := s.client.SMembers(ctx, s.indexKey(q.Partition)).Result()
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			pk, sk, ok := strings.Cut(m, memberSeparator)
			if !ok {
				return nil, fmt.Errorf("malformed index member %q", m)
			}
			keys = append(keys, Key{PK: pk, SK: sk})
		}
	case IndexPrimary:
		sks, err := s.client.SMembers(ctx, s.partitionKey(q.Partition)).Result()
		if err != nil {
			return nil, err
		}
		for _, sk := range sks {
			if strings.HasPrefix(sk, q.SortPrefix) {
				keys = append(keys, Key{PK: q.Partition, SK: sk})
			}
		}
	default:
		return nil, errors.Join(ErrInvalidRequest, fmt.Errorf("unknown index %q", q.Index))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, s.itemKey(k))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(cmds))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		item := itemFromHash(fields)
		if q.Index == IndexGSI1 && !strings.HasPrefix(item.IndexSK, q.SortPrefix) {
			continue
		}
		items = append(items, item)
	}
	sortItems(items, q.Index)
	return items, nil
}

func (s *RedisStore) itemKey(k Key) string {
	return s.prefix + ":item:" + k.PK + memberSeparator + k.SK
}

func (s *RedisStore) partitionKey(pk string) string {
	return s.prefix + ":partition:" + pk
}

func (s *RedisStore) indexKey(indexPK string) string {
	return s.prefix + ":gsi1:" + indexPK
}

func hashFields(item Item) []any {
	fields := []any{
		fieldPK, item.PK,
		fieldSK, item.SK,
		fieldIndexPK, item.IndexPK,
		fieldIndexSK, item.IndexSK,
		fieldEntityType, item.EntityType,
		fieldStatus, item.Status,
	}
	names := make([]string, 0, len(item.Attributes))
	for name := range item.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fields = append(fields, attrPrefix+name, item.Attributes[name])
	}
	return fields
}

func itemFromHash(fields map[string]string) Item {
	item := Item{
		Key:        Key{PK: fields[fieldPK], SK: fields[fieldSK]},
		IndexPK:    fields[fieldIndexPK],
		IndexSK:    fields[fieldIndexSK],
		EntityType: fields[fieldEntityType],
		Status:     fields[fieldStatus],
		Attributes: make(map[string]string),
	}
	for k, v := range fields {
		if name, ok := strings.CutPrefix(k, attrPrefix); ok {
			item.Attributes[name] = v
		}
	}
	return item
}

var _ Store = (*RedisStore)(nil)
