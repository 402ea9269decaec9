package tokenstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/rencard-user/internal/domain/auth"
)

// PostgresStore keeps refresh tokens in the refresh_tokens table, keyed by user.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Replace(ctx context.Context, ownerID, value string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, value, issued_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET value = EXCLUDED.value, issued_at = EXCLUDED.issued_at
	`, ownerID, value)
	return err
}

func (s *PostgresStore) Validate(ctx context.Context, ownerID, presented string) (bool, error) {
	var stored string
	err := s.pool.QueryRow(ctx, `SELECT value FROM refresh_tokens WHERE user_id = $1`, ownerID).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return matches(stored, presented), nil
}

var _ auth.RefreshTokenStore = (*PostgresStore)(nil)
