package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workoutlog/internal/domain"
)

// ProfileRepository provides Postgres-backed persistence for user profiles.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the profile row for the user, or nil when none exists yet.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return nil, err
	}

	const query = `SELECT user_id, display_name, training_focus, email, image, created_at, updated_at
        FROM profiles WHERE user_id = $1`

	row := tx.QueryRow(ctx, query, userID)
	var profile domain.Profile
	if err := row.Scan(&profile.UserID, &profile.DisplayName, &profile.TrainingFocus, &profile.Email, &profile.Image, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tx.Commit(ctx)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert inserts or patches the profile row, applying only the non-nil patch
// fields. The absent-only merge policy for inferred values is decided by the
// caller; this method applies whatever the patch carries.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", userID); err != nil {
		return err
	}

	const stmt = `INSERT INTO profiles (user_id, display_name, training_focus, email, image, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW())
        ON CONFLICT (user_id) DO UPDATE SET
            display_name   = COALESCE(EXCLUDED.display_name, profiles.display_name),
            training_focus = COALESCE(EXCLUDED.training_focus, profiles.training_focus),
            email          = COALESCE(EXCLUDED.email, profiles.email),
            image          = COALESCE(EXCLUDED.image, profiles.image),
            created_at     = COALESCE(profiles.created_at, EXCLUDED.created_at),
            updated_at     = NOW()`

	_, err = tx.Exec(ctx, stmt,
		userID,
		patch.DisplayName,
		patch.TrainingFocus,
		patch.Email,
		patch.Image,
		patch.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
