package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the production store driver. Each collection lives in its own
// (id uuid, doc jsonb, created_at, updated_at) table — deliberately without
// unique indexes or foreign keys on business fields, matching the document
// store this system was built against.
type Postgres struct {
	pool   *pgxpool.Pool
	tags   *pgCollection
	people *pgCollection
	notes  *pgCollection
}

// NewPostgres constructs a Postgres store on the given pool. The pool remains
// owned by the caller until Close is called.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool:   pool,
		tags:   &pgCollection{pool: pool, table: "tags"},
		people: &pgCollection{pool: pool, table: "people"},
		notes:  &pgCollection{pool: pool, table: "notes"},
	}
}

func (p *Postgres) Tags() Collection   { return p.tags }
func (p *Postgres) People() Collection { return p.people }
func (p *Postgres) Notes() Collection  { return p.notes }

// Close releases the underlying connection pool.
func (p *Postgres) Close() { p.pool.Close() }

type pgCollection struct {
	pool  *pgxpool.Pool
	table string
}

func (c *pgCollection) Insert(ctx context.Context, id uuid.UUID, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store.%s.Insert: marshal: %w", c.table, err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, doc) VALUES (@id, @doc::jsonb)`, c.table)
	_, err = c.pool.Exec(ctx, q, pgx.NamedArgs{"id": id, "doc": raw})
	if err != nil {
		return fmt.Errorf("store.%s.Insert: %w", c.table, err)
	}
	return nil
}

func (c *pgCollection) FindByID(ctx context.Context, id uuid.UUID) (Document, error) {
	q := fmt.Sprintf(`SELECT doc FROM %s WHERE id = @id`, c.table)
	row := c.pool.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	doc, err := scanDoc(row)
	if err != nil {
		return nil, fmt.Errorf("store.%s.FindByID: %w", c.table, err)
	}
	return doc, nil
}

func (c *pgCollection) Find(ctx context.Context, f Filter) ([]Document, error) {
	match, err := f.containment()
	if err != nil {
		return nil, fmt.Errorf("store.%s.Find: filter: %w", c.table, err)
	}
	q := fmt.Sprintf(`
		SELECT doc FROM %s
		WHERE doc @> @match::jsonb
		ORDER BY created_at, id`, c.table)

	rows, err := c.pool.Query(ctx, q, pgx.NamedArgs{"match": match})
	if err != nil {
		return nil, fmt.Errorf("store.%s.Find: %w", c.table, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("store.%s.Find: scan: %w", c.table, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.%s.Find: rows: %w", c.table, err)
	}
	return docs, nil
}

func (c *pgCollection) Count(ctx context.Context, f Filter) (int64, error) {
	match, err := f.containment()
	if err != nil {
		return 0, fmt.Errorf("store.%s.Count: filter: %w", c.table, err)
	}
	q := fmt.Sprintf(`SELECT count(*) FROM %s WHERE doc @> @match::jsonb`, c.table)

	var n int64
	if err := c.pool.QueryRow(ctx, q, pgx.NamedArgs{"match": match}).Scan(&n); err != nil {
		return 0, fmt.Errorf("store.%s.Count: %w", c.table, err)
	}
	return n, nil
}

func (c *pgCollection) UpdateByID(ctx context.Context, id uuid.UUID, doc Document) (Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store.%s.UpdateByID: marshal: %w", c.table, err)
	}
	q := fmt.Sprintf(`
		UPDATE %s SET doc = @doc::jsonb, updated_at = now()
		WHERE id = @id
		RETURNING doc`, c.table)

	row := c.pool.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "doc": raw})
	updated, err := scanDoc(row)
	if err != nil {
		return nil, fmt.Errorf("store.%s.UpdateByID: %w", c.table, err)
	}
	return updated, nil
}

func (c *pgCollection) DeleteByID(ctx context.Context, id uuid.UUID) (Document, error) {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = @id RETURNING doc`, c.table)
	row := c.pool.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	doc, err := scanDoc(row)
	if err != nil {
		return nil, fmt.Errorf("store.%s.DeleteByID: %w", c.table, err)
	}
	return doc, nil
}

// scanner is the single-row subset shared by pgx.Row and pgx.Rows.
type scanner interface{ Scan(dest ...any) error }

// scanDoc maps one jsonb column into a Document, translating pgx.ErrNoRows
// into the store's ErrNotFound.
func scanDoc(s scanner) (Document, error) {
	var raw []byte
	if err := s.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
