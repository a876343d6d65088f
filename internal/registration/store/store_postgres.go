package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hampuff/internal/registration"
)

const schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id              TEXT PRIMARY KEY,
	full_name       TEXT NOT NULL,
	call_sign       TEXT NOT NULL,
	phone_raw       TEXT NOT NULL,
	phone_canonical TEXT NOT NULL UNIQUE,
	opted_in        BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	source_ip       TEXT,
	user_agent      TEXT
)`

// PostgresStore persists registrations in PostgreSQL. Per-number
// serialization comes from the unique index on phone_canonical: every
// mutation is a single statement that takes the row lock.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to url, ensures the schema exists, and returns
// the store.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure registrations table: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Upsert(ctx context.Context, rec registration.Record) (registration.Record, bool, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO registrations
			(id, full_name, call_sign, phone_raw, phone_canonical, opted_in,
			 created_at, updated_at, source_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''))
		ON CONFLICT (phone_canonical) DO UPDATE SET
			full_name  = EXCLUDED.full_name,
			call_sign  = EXCLUDED.call_sign,
			phone_raw  = EXCLUDED.phone_raw,
			opted_in   = EXCLUDED.opted_in,
			updated_at = EXCLUDED.updated_at,
			source_ip  = EXCLUDED.source_ip,
			user_agent = EXCLUDED.user_agent
		RETURNING id, created_at, (xmax = 0)`,
		rec.ID, rec.FullName, rec.CallSign, rec.PhoneRaw, rec.PhoneCanonical,
		rec.OptedIn, rec.CreatedAt, rec.UpdatedAt, rec.SourceIP, rec.UserAgent,
	)
	var created bool
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &created); err != nil {
		return registration.Record{}, false, fmt.Errorf("upsert registration: %w", err)
	}
	return rec, created, nil
}

func (s *PostgresStore) FindByCanonical(ctx context.Context, canonical string) (registration.Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, selectColumns+` WHERE phone_canonical = $1`, canonical))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Record{}, registration.ErrNotFound
		}
		return registration.Record{}, fmt.Errorf("find registration: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) SetOptIn(ctx context.Context, canonical string, optedIn bool) (registration.Record, error) {
	rec, err := scanRecord(s.pool.QueryRow(ctx, `
		UPDATE registrations
		SET opted_in = $2, updated_at = now()
		WHERE phone_canonical = $1
		RETURNING id, full_name, call_sign, phone_raw, phone_canonical,
			opted_in, created_at, updated_at,
			COALESCE(source_ip, ''), COALESCE(user_agent, '')`,
		canonical, optedIn,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Record{}, registration.ErrNotFound
		}
		return registration.Record{}, fmt.Errorf("set opt-in: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]registration.Record, error) {
	rows, err := s.pool.Query(ctx, selectColumns+` ORDER BY created_at DESC, phone_canonical`)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []registration.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return out, nil
}

const selectColumns = `
	SELECT id, full_name, call_sign, phone_raw, phone_canonical, opted_in,
		created_at, updated_at,
		COALESCE(source_ip, ''), COALESCE(user_agent, '')
	FROM registrations`

func scanRecord(row pgx.Row) (registration.Record, error) {
	var rec registration.Record
	err := row.Scan(
		&rec.ID, &rec.FullName, &rec.CallSign, &rec.PhoneRaw,
		&rec.PhoneCanonical, &rec.OptedIn, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.SourceIP, &rec.UserAgent,
	)
	return rec, err
}
