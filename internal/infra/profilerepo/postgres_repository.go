package profilerepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/rencard-user/internal/domain/profile"
	apperrors "github.com/yanqian/rencard-user/pkg/errors"
)

// PostgresRepository stores each profile section in its own table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) GetAbout(ctx context.Context, userID string) (profile.About, bool, error) {
	var a profile.About
	err := r.pool.QueryRow(ctx, `
		SELECT description, is_smoker, alcohol, religion FROM about_users WHERE user_id = $1
	`, userID).Scan(&a.Description, &a.IsSmoker, &a.Alcohol, &a.Religion)
	return a, found(err), storageErr("query about", ignoreNoRows(err))
}

func (r *PostgresRepository) GetPreferences(ctx context.Context, userID string) (profile.Preferences, bool, error) {
	var p profile.Preferences
	err := r.pool.QueryRow(ctx, `
		SELECT preferred_sex, min_preferred_age, max_preferred_age, search_radius_km
		FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&p.PreferredSex, &p.MinPreferredAge, &p.MaxPreferredAge, &p.SearchRadiusKm)
	return p, found(err), storageErr("query preferences", ignoreNoRows(err))
}

func (r *PostgresRepository) GetLocation(ctx context.Context, userID string) (profile.Location, bool, error) {
	var l profile.Location
	var updated time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT longitude, latitude, last_updated FROM user_locations WHERE user_id = $1
	`, userID).Scan(&l.Longitude, &l.Latitude, &updated)
	l.LastUpdated = updated.UTC()
	return l, found(err), storageErr("query location", ignoreNoRows(err))
}

func (r *PostgresRepository) GetPhoto(ctx context.Context, userID string) (profile.Photo, bool, error) {
	var p profile.Photo
	var blobURL sql.NullString
	var uploaded time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT blob_url, uploaded_at FROM user_photos WHERE user_id = $1
	`, userID).Scan(&blobURL, &uploaded)
	p.BlobURL = blobURL.String
	p.UploadedAt = uploaded.UTC()
	return p, found(err), storageErr("query photo", ignoreNoRows(err))
}

// EnsureDefaults relies on ON CONFLICT DO NOTHING so concurrent calls are safe.
func (r *PostgresRepository) EnsureDefaults(ctx context.Context, userID string, d profile.Profile) error {
	batch := &pgx.Batch{}
	if d.About != nil {
		batch.Queue(`
			INSERT INTO about_users (user_id, description, is_smoker, alcohol, religion)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id) DO NOTHING
		`, userID, d.About.Description, d.About.IsSmoker, d.About.Alcohol, d.About.Religion)
	}
	if d.Preferences != nil {
		batch.Queue(`
			INSERT INTO user_preferences (user_id, preferred_sex, min_preferred_age, max_preferred_age, search_radius_km)
			VALUES ($1, $2, $3, $4, $5) ON CONFLICT (user_id) DO NOTHING
		`, userID, d.Preferences.PreferredSex, d.Preferences.MinPreferredAge, d.Preferences.MaxPreferredAge, d.Preferences.SearchRadiusKm)
	}
	if d.Location != nil {
		batch.Queue(`
			INSERT INTO user_locations (user_id, longitude, latitude, last_updated)
			VALUES ($1, $2, $3, $4) ON CONFLICT (user_id) DO NOTHING
		`, userID, d.Location.Longitude, d.Location.Latitude, d.Location.LastUpdated)
	}
	if d.Photo != nil {
		batch.Queue(`
			INSERT INTO user_photos (user_id, blob_url, uploaded_at)
			VALUES ($1, NULLIF($2, ''), $3) ON CONFLICT (user_id) DO NOTHING
		`, userID, d.Photo.BlobURL, d.Photo.UploadedAt)
	}
	if batch.Len() == 0 {
		return nil
	}
	return storageErr("insert profile defaults", r.pool.SendBatch(ctx, batch).Close())
}

func (r *PostgresRepository) Save(ctx context.Context, userID string, about profile.About, prefs profile.Preferences, loc profile.Location) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin profile update", err)
	}
	defer func() {
		if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
			_ = rerr
		}
	}()

	if _, err := tx.Exec(ctx, `
		INSERT INTO about_users (user_id, description, is_smoker, alcohol, religion)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			description = EXCLUDED.description,
			is_smoker = EXCLUDED.is_smoker,
			alcohol = EXCLUDED.alcohol,
			religion = EXCLUDED.religion
	`, userID, about.Description, about.IsSmoker, about.Alcohol, about.Religion); err != nil {
		return storageErr("save about", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO user_preferences (user_id, preferred_sex, min_preferred_age, max_preferred_age, search_radius_km)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_sex = EXCLUDED.preferred_sex,
			min_preferred_age = EXCLUDED.min_preferred_age,
			max_preferred_age = EXCLUDED.max_preferred_age,
			search_radius_km = EXCLUDED.search_radius_km
	`, userID, prefs.PreferredSex, prefs.MinPreferredAge, prefs.MaxPreferredAge, prefs.SearchRadiusKm); err != nil {
		return storageErr("save preferences", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO user_locations (user_id, longitude, latitude, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			longitude = EXCLUDED.longitude,
			latitude = EXCLUDED.latitude,
			last_updated = EXCLUDED.last_updated
	`, userID, loc.Longitude, loc.Latitude, loc.LastUpdated); err != nil {
		return storageErr("save location", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit profile update", err)
	}
	return nil
}

func (r *PostgresRepository) SavePhoto(ctx context.Context, userID string, photo profile.Photo) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_photos (user_id, blob_url, uploaded_at)
		VALUES ($1, NULLIF($2, ''), $3)
		ON CONFLICT (user_id) DO UPDATE SET blob_url = EXCLUDED.blob_url, uploaded_at = EXCLUDED.uploaded_at
	`, userID, photo.BlobURL, photo.UploadedAt)
	return storageErr("save photo", err)
}

func found(err error) bool {
	return err == nil
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.CodeStorage, op, err)
}

func ignoreNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

var _ profile.Repository = (*PostgresRepository)(nil)
