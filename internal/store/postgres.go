package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore keeps items in a single trip_items table. Conditional writes
// rely on INSERT .. ON CONFLICT DO NOTHING and UPDATE .. WHERE status = $n,
// both atomic for a single row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPostgresStoreWithSchema initializes the schema then returns the store.
func NewPostgresStoreWithSchema(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	s := NewPostgresStore(db)
	if err := s.InitSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// InitSchema creates the items table and its index if they do not exist.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS trip_items (
			pk TEXT NOT NULL,
			sk TEXT NOT NULL,
			gsi1pk TEXT NOT NULL DEFAULT '',
			gsi1sk TEXT NOT NULL DEFAULT '',
			entity_type TEXT NOT NULL,
			status TEXT NOT NULL,
			attributes JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (pk, sk)
		)`,
		`CREATE INDEX IF NOT EXISTS trip_items_gsi1 ON trip_items (gsi1pk, gsi1sk)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetItem(ctx context.Context, key Key) (Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT pk, sk, gsi1pk, gsi1sk, entity_type, status, attributes
		FROM trip_items
		WHERE pk = $1 AND sk = $2`,
		key.PK, key.SK,
	)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func (s *PostgresStore) PutItem(ctx context.Context, item Item, cond Condition) error {
	if err := validatePut(item, cond); err != nil {
		return err
	}
	attrs, err := json.Marshal(cloneAttributes(item.Attributes))
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}

	query := `
		INSERT INTO trip_items (pk, sk, gsi1pk, gsi1sk, entity_type, status, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pk, sk) DO NOTHING`
	if !cond.NotExists {
		query = `
		INSERT INTO trip_items (pk, sk, gsi1pk, gsi1sk, entity_type, status, attributes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (pk, sk) DO UPDATE SET
			gsi1pk = EXCLUDED.gsi1pk,
			gsi1sk = EXCLUDED.gsi1sk,
			entity_type = EXCLUDED.entity_type,
			status = EXCLUDED.status,
			attributes = EXCLUDED.attributes,
			updated_at = NOW()`
	}

	res, err := s.db.ExecContext(ctx, query,
		item.PK, item.SK, item.IndexPK, item.IndexSK, item.EntityType, item.Status, string(attrs),
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 && cond.NotExists {
		return ErrConditionFailed
	}
	return nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, key Key, upd Update, cond Condition) error {
	if err := validateUpdate(key, cond); err != nil {
		return err
	}
	attrs, err := json.Marshal(cloneAttributes(upd.Attributes))
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}

	query := `
		UPDATE trip_items
		SET status = COALESCE(NULLIF($3, ''), status),
			attributes = attributes || $4::jsonb,
			updated_at = NOW()
		WHERE pk = $1 AND sk = $2`
	args := []any{key.PK, key.SK, upd.Status, string(attrs)}
	if cond.StatusEquals != "" {
		query += ` AND status = $5`
		args = append(args, cond.StatusEquals)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if cond.isZero() {
			return ErrNotFound
		}
		return ErrConditionFailed
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Item, error) {
	query := `
		SELECT pk, sk, gsi1pk, gsi1sk, entity_type, status, attributes
		FROM trip_items
		WHERE pk = $1 AND starts_with(sk, $2)
		ORDER BY sk`
	if q.Index == IndexGSI1 {
		query = `
		SELECT pk, sk, gsi1pk, gsi1sk, entity_type, status, attributes
		FROM trip_items
		WHERE gsi1pk = $1 AND starts_with(gsi1sk, $2)
		ORDER BY gsi1sk, pk, sk`
	}

	rows, err := s.db.QueryContext(ctx, query, q.Partition, q.SortPrefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (Item, error) {
	var (
		item  Item
		attrs []byte
	)
	if err := row.Scan(&item.PK, &item.SK, &item.IndexPK, &item.IndexSK, &item.EntityType, &item.Status, &attrs); err != nil {
		return Item{}, err
	}
	item.Attributes = make(map[string]string)
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &item.Attributes); err != nil {
			return Item{}, fmt.Errorf("decode attributes: %w", err)
		}
	}
	return item, nil
}

var _ Store = (*PostgresStore)(nil)
