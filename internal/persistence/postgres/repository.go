// Package postgres provides pgx-backed persistence for workouts and profiles.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/workoutlog/internal/domain"
	"example.com/workoutlog/internal/events"
	"example.com/workoutlog/internal/observability"
)

// Repository provides Postgres-backed persistence for workouts and the
// outbox rows recorded alongside them.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWorkout persists the workout, its child sets, and a workout.created
// outbox row inside a single transaction. Child sets never exist without
// their parent; a failed set insert rolls the parent back.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, "SELECT set_config('app.user_id', $1, true)", workout.UserID); err != nil {
		return err
	}

	const insertWorkout = `INSERT INTO workouts (workout_id, user_id, workout_type, performed_at, duration_seconds, perceived_effort, memo, avg_power, avg_heart_rate, elevation_gain, distance_km, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	_, err = tx.Exec(ctx, insertWorkout,
		workout.ID,
		workout.UserID,
		string(workout.Type),
		workout.PerformedAt,
		workout.DurationSeconds,
		workout.PerceivedEffort,
		workout.Memo,
		workout.AvgPower,
		workout.AvgHeartRate,
		workout.ElevationGain,
		workout.DistanceKm,
		workout.CreatedAt,
	)
	if err != nil {
		return err
	}

	const insertSet = `INSERT INTO strength_sets (workout_id, exercise_name, set_index, weight_kg, reps)
        VALUES ($1,$2,$3,$4,$5)`

	for _, set := range workout.StrengthSets {
		if _, err = tx.Exec(ctx, insertSet, workout.ID, set.ExerciseName, set.SetIndex, set.WeightKg, set.Reps); err != nil {
			return err
		}
	}

	if err = r.insertOutbox(ctx, tx, workout); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return err
	}
	observability.RecordWorkoutPersisted(string(workout.Type), workout.CreatedAt)
	return nil
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, workout domain.Workout) error {
	payload := events.WorkoutCreated{
		WorkoutID:       workout.ID,
		UserID:          workout.UserID,
		WorkoutType:     string(workout.Type),
		PerformedAt:     workout.PerformedAt.UnixMilli(),
		DurationSeconds: workout.DurationSeconds,
		SetCount:        len(workout.StrengthSets),
		OccurredAt:      workout.CreatedAt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (user_id, aggregate_id, event_type, topic, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = tx.Exec(ctx, stmt,
		workout.UserID,
		workout.ID,
		events.EventTypeWorkoutCreated,
		events.TopicWorkoutEvents,
		workout.UserID,
		body,
	)
	return err
}

// ListRecent returns the caller's workouts ordered by performed_at
// descending, each strength workout enriched with its child sets in storage
// order. Row-level security scoped to app.user_id backs the ownership
// invariant in addition to the explicit filter.
func (r *Repository) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Workout, error) {
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

	const query = `SELECT workout_id, user_id, workout_type, performed_at, duration_seconds, perceived_effort, memo, avg_power, avg_heart_rate, elevation_gain, distance_km, created_at
        FROM workouts
        WHERE user_id = $1
        ORDER BY performed_at DESC, workout_id DESC
        LIMIT $2`

	rows, err := tx.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}

	workouts := make([]domain.Workout, 0, limit)
	index := make(map[string]int)
	strengthIDs := make([]string, 0)
	for rows.Next() {
		var workout domain.Workout
		var workoutType string
		if err := rows.Scan(&workout.ID, &workout.UserID, &workoutType, &workout.PerformedAt, &workout.DurationSeconds, &workout.PerceivedEffort, &workout.Memo, &workout.AvgPower, &workout.AvgHeartRate, &workout.ElevationGain, &workout.DistanceKm, &workout.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		workout.Type = domain.WorkoutType(workoutType)
		workout.StrengthSets = []domain.StrengthSet{}
		index[workout.ID] = len(workouts)
		if workout.Type == domain.WorkoutTypeStrength {
			strengthIDs = append(strengthIDs, workout.ID)
		}
		workouts = append(workouts, workout)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(strengthIDs) > 0 {
		if err := r.attachSets(ctx, tx, strengthIDs, index, workouts); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return workouts, nil
}

func (r *Repository) attachSets(ctx context.Context, tx pgx.Tx, workoutIDs []string, index map[string]int, workouts []domain.Workout) error {
	const query = `SELECT id, workout_id, exercise_name, set_index, weight_kg, reps
        FROM strength_sets
        WHERE workout_id = ANY($1)
        ORDER BY id`

	rows, err := tx.Query(ctx, query, workoutIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			set       domain.StrengthSet
			rowID     int64
			workoutID string
		)
		if err := rows.Scan(&rowID, &workoutID, &set.ExerciseName, &set.SetIndex, &set.WeightKg, &set.Reps); err != nil {
			return err
		}
		set.ID = fmt.Sprintf("%d", rowID)
		position, ok := index[workoutID]
		if !ok {
			continue
		}
		workouts[position].StrengthSets = append(workouts[position].StrengthSets, set)
	}
	return rows.Err()
}
