//go:build integration

package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"example.com/workoutlog/internal/domain"
)

func TestRepositoryRespectsUserIsolation(t *testing.T) {
	ctx := context.Background()
	connStr := startDatabase(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)

	owner := uuid.NewString()
	other := uuid.NewString()

	workout := domain.Workout{
		ID:              uuid.NewString(),
		UserID:          owner,
		Type:            domain.WorkoutTypeCycling,
		PerformedAt:     time.Now().UTC(),
		DurationSeconds: 3600,
		CreatedAt:       time.Now().UTC(),
		StrengthSets:    []domain.StrengthSet{},
	}
	require.NoError(t, repo.CreateWorkout(ctx, workout))

	mine, err := repo.ListRecent(ctx, owner, 20)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, workout.ID, mine[0].ID)

	theirs, err := repo.ListRecent(ctx, other, 20)
	require.NoError(t, err)
	require.Empty(t, theirs, "RLS should prevent cross-user access")
}

func TestRepositoryEnrichesStrengthWorkouts(t *testing.T) {
	ctx := context.Background()
	connStr := startDatabase(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewRepository(pool)

	owner := uuid.NewString()
	weight := 100.0
	workout := domain.Workout{
		ID:              uuid.NewString(),
		UserID:          owner,
		Type:            domain.WorkoutTypeStrength,
		PerformedAt:     time.Now().UTC(),
		DurationSeconds: 2700,
		CreatedAt:       time.Now().UTC(),
		StrengthSets: []domain.StrengthSet{
			{ExerciseName: "Squat", SetIndex: 0, WeightKg: &weight, Reps: 5},
			{ExerciseName: "Squat", SetIndex: 1, WeightKg: &weight, Reps: 3},
			{ExerciseName: "Deadlift", SetIndex: 0, Reps: 5},
		},
	}
	require.NoError(t, repo.CreateWorkout(ctx, workout))

	stored, err := repo.ListRecent(ctx, owner, 20)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	sets := stored[0].StrengthSets
	require.Len(t, sets, 3)
	// Flattened submission order survives the round trip.
	require.Equal(t, "Squat", sets[0].ExerciseName)
	require.Equal(t, 1, sets[1].SetIndex)
	require.Equal(t, "Deadlift", sets[2].ExerciseName)
	require.Equal(t, 0, sets[2].SetIndex)
	require.Nil(t, sets[2].WeightKg)

	// The workout.created outbox row is committed with the workout.
	var outboxCount int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND event_type = 'workout.created'",
		workout.ID).Scan(&outboxCount))
	require.Equal(t, 1, outboxCount)
}

func TestProfileRepositoryMergesPatches(t *testing.T) {
	ctx := context.Background()
	connStr := startDatabase(t, ctx)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	repo := NewProfileRepository(pool)

	userID := uuid.NewString()
	name := "Alex"
	email := "alex@example.com"
	created := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.Upsert(ctx, userID, domain.ProfilePatch{
		DisplayName: &name,
		Email:       &email,
		CreatedAt:   &created,
	}))

	focus := "endurance"
	require.NoError(t, repo.Upsert(ctx, userID, domain.ProfilePatch{TrainingFocus: &focus}))

	stored, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Alex", *stored.DisplayName)
	require.Equal(t, "endurance", *stored.TrainingFocus)
	require.Equal(t, "alex@example.com", *stored.Email)
	require.NotNil(t, stored.CreatedAt)
}

func startDatabase(t *testing.T, ctx context.Context) string {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("workoutlog"),
		postgrescontainer.WithUsername("workoutlog"),
		postgrescontainer.WithPassword("workoutlog"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)
	return connStr
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	path := resolvePath(t, "../../../db/postgres/migrations/0001_init.up.sql")
	contents, readErr := os.ReadFile(path)
	require.NoError(t, readErr)

	_, execErr := pool.Exec(ctx, string(contents))
	require.NoError(t, execErr)
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
