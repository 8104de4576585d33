package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// tableFor maps collection names to table names. Collection names are
// never interpolated into SQL directly; only values from this map are.
var tableFor = map[string]string{
	Orders:       "orders",
	MenuItems:    "menu_items",
	Ingredients:  "ingredients",
	Users:        "users",
	Expenses:     "expenses",
	Requisitions: "requisitions",
	Customers:    "customers",
}

// Postgres stores each collection as an (id, doc jsonb) table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed store on an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) List(ctx context.Context, collection string) ([][]byte, error) {
	table, ok := tableFor[collection]
	if !ok {
		return nil, ErrUnknownCollection
	}
	rows, err := p.pool.Query(ctx, fmt.Sprintf("SELECT doc FROM %s ORDER BY id", table))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func (p *Postgres) Add(ctx context.Context, collection, id string, doc []byte) error {
	return p.upsert(ctx, collection, id, doc)
}

func (p *Postgres) Update(ctx context.Context, collection, id string, doc []byte) error {
	return p.upsert(ctx, collection, id, doc)
}

func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	table, ok := tableFor[collection]
	if !ok {
		return ErrUnknownCollection
	}
	_, err := p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) BulkAdd(ctx context.Context, collection string, docs map[string][]byte) error {
	return p.bulkUpsert(ctx, collection, docs)
}

func (p *Postgres) BulkUpdate(ctx context.Context, collection string, docs map[string][]byte) error {
	return p.bulkUpsert(ctx, collection, docs)
}

func (p *Postgres) BulkDelete(ctx context.Context, collection string, ids []string) error {
	table, ok := tableFor[collection]
	if !ok {
		return ErrUnknownCollection
	}
	if len(ids) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	for _, id := range ids {
		batch.Queue(sql, id)
	}
	return p.sendBatch(ctx, collection, batch)
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) upsert(ctx context.Context, collection, id string, doc []byte) error {
	table, ok := tableFor[collection]
	if !ok {
		return ErrUnknownCollection
	}
	// Last write wins for a given id; there is no version check.
	sql := fmt.Sprintf(
		"INSERT INTO %s (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc",
		table,
	)
	if _, err := p.pool.Exec(ctx, sql, id, doc); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (p *Postgres) bulkUpsert(ctx context.Context, collection string, docs map[string][]byte) error {
	table, ok := tableFor[collection]
	if !ok {
		return ErrUnknownCollection
	}
	if len(docs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	sql := fmt.Sprintf(
		"INSERT INTO %s (id, doc) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc",
		table,
	)
	for id, doc := range docs {
		batch.Queue(sql, id, doc)
	}
	return p.sendBatch(ctx, collection, batch)
}

func (p *Postgres) sendBatch(ctx context.Context, collection string, batch *pgx.Batch) error {
	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch %s: %w", collection, err)
		}
	}
	return nil
}
