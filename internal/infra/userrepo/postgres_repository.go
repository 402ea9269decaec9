package userrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/user"
	apperrors "github.com/yanqian/rencard-user/pkg/errors"
)

const (
	usersEmailKey = "users_email_key"
	usersPhoneKey = "users_phone_number_key"
	userColumns   = "id, email, phone_number, password_hash, birth_date, sex, created_at, updated_at"
)

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, phone_number, password_hash, birth_date, sex, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PhoneNumber, u.PasswordHash, u.BirthDate, u.Sex, u.CreatedAt, u.UpdatedAt)
	created, err := scanUser(row)
	if err != nil {
		return user.User{}, translateUnique(err)
	}
	return created, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (user.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (user.User, bool, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

func (r *PostgresRepository) PhoneTaken(ctx context.Context, phone, exceptID string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE phone_number = $1 AND id::text <> $2)
	`, phone, exceptID).Scan(&taken)
	if err != nil {
		return false, apperrors.Wrap(apperrors.CodeStorage, "query phone number", err)
	}
	return taken, nil
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errUserNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateDemographics(ctx context.Context, id string, d user.Demographics) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET phone_number = $2, sex = $3, birth_date = $4, updated_at = now()
		WHERE id = $1
	`, id, d.PhoneNumber, d.Sex, d.BirthDate)
	if err != nil {
		return translateUnique(err)
	}
	if tag.RowsAffected() == 0 {
		return errUserNotFound
	}
	return nil
}

// Delete removes the user; profile rows and the refresh token follow through
// ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return apperrors.Wrap(apperrors.CodeStorage, "delete user", err)
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (user.User, bool, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, false, nil
	}
	if err != nil {
		return user.User{}, false, apperrors.Wrap(apperrors.CodeStorage, "query user", err)
	}
	return u, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	var birth, created, updated time.Time
	if err := row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.PasswordHash, &birth, &u.Sex, &created, &updated); err != nil {
		return user.User{}, err
	}
	u.BirthDate = birth.UTC()
	u.CreatedAt = created.UTC()
	u.UpdatedAt = updated.UTC()
	return u, nil
}

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case usersEmailKey:
		return auth.ErrEmailExists
	case usersPhoneKey:
		return auth.ErrPhoneExists
	default:
		return err
	}
}

var _ user.Repository = (*PostgresRepository)(nil)
