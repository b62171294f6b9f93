package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

//go:embed schema/postgres.sql
var postgresSchema string

const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
// Uniqueness of (owner, code) is enforced by the url_mappings_owner_code_key constraint.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed mapping store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the url_mappings table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	query := `
		INSERT INTO url_mappings (id, owner_id, code, long_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.pool.Exec(ctx, query,
		m.ID.String(),
		string(m.Owner),
		string(m.Code),
		m.LongURL,
		m.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
			pgErr.ConstraintName == "url_mappings_owner_code_key" {
			return shortener.ErrCodeAlreadyTaken
		}

		return err
	}

	return nil
}

func (p *PostgresStore) Get(ctx context.Context, owner shortener.OwnerID, code shortener.Code) (*shortener.Mapping, error) {
	query := `
		SELECT id::text, owner_id, code, long_url, created_at
		FROM url_mappings
		WHERE owner_id = $1 AND code = $2
	`

	m, err := scanMapping(p.pool.QueryRow(ctx, query, string(owner), string(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return m, nil
}

func (p *PostgresStore) List(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	query := `
		SELECT id::text, owner_id, code, long_url, created_at
		FROM url_mappings
		WHERE owner_id = $1
		ORDER BY seq
	`

	rows, err := p.pool.Query(ctx, query, string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make([]*shortener.Mapping, 0)

	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}

		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

func (p *PostgresStore) Delete(ctx context.Context, owner shortener.OwnerID, code shortener.Code) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM url_mappings WHERE owner_id = $1 AND code = $2`,
		string(owner), string(code),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func scanMapping(row pgx.Row) (*shortener.Mapping, error) {
	var (
		m     shortener.Mapping
		id    string
		owner string
		code  string
	)

	if err := row.Scan(&id, &owner, &code, &m.LongURL, &m.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse mapping id %q: %w", id, err)
	}

	m.ID = parsed
	m.Owner = shortener.OwnerID(owner)
	m.Code = shortener.Code(code)
	m.CreatedAt = m.CreatedAt.UTC()

	return &m, nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
