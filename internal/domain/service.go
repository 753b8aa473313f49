// Package domain defines the business logic for the workout logger.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated is returned by mutations invoked without a caller identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidWorkout indicates the workout payload violated a required-field invariant.
	ErrInvalidWorkout = errors.New("invalid workout")
	// ErrDisplayNameRequired is returned when onboarding submits an empty display name.
	ErrDisplayNameRequired = errors.New("display name is required")
)

// DefaultRecentLimit is the window size used when the caller expresses no
// limit at all. An explicit limit, even zero, is clamped instead.
const DefaultRecentLimit = 20

const (
	minRecentLimit = 1
	maxRecentLimit = 100
)

// WorkoutRepository captures workout persistence operations. Implementations
// must scope every read and write to the owning user.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout Workout) error
	ListRecent(ctx context.Context, userID string, limit int) ([]Workout, error)
}

// ProfileRepository captures profile persistence operations.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, userID string, patch ProfilePatch) error
}

// Service orchestrates workout and profile workflows.
type Service struct {
	workouts WorkoutRepository
	profiles ProfileRepository
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(workouts WorkoutRepository, profiles ProfileRepository) *Service {
	return &Service{workouts: workouts, profiles: profiles, now: time.Now}
}

// CyclingWorkoutInput captures a cycling create payload.
type CyclingWorkoutInput struct {
	PerformedAt     time.Time
	DurationSeconds int
	AvgPower        *float64
	AvgHeartRate    *float64
	ElevationGain   *float64
	DistanceKm      *float64
	PerceivedEffort *int
	Memo            *string
}

// StrengthSetInput is one submitted set within an exercise.
type StrengthSetInput struct {
	WeightKg *float64
	Reps     int
}

// StrengthExerciseInput groups the submitted sets of one exercise.
type StrengthExerciseInput struct {
	Name string
	Sets []StrengthSetInput
}

// StrengthWorkoutInput captures a strength create payload.
type StrengthWorkoutInput struct {
	PerformedAt     time.Time
	DurationSeconds int
	PerceivedEffort *int
	Memo            *string
	Exercises       []StrengthExerciseInput
}

// CreateCyclingWorkout persists one cycling workout owned by the caller and
// returns the new workout identifier.
func (s *Service) CreateCyclingWorkout(ctx context.Context, userID string, input CyclingWorkoutInput) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if input.PerformedAt.IsZero() || input.DurationSeconds <= 0 {
		return "", ErrInvalidWorkout
	}

	workout := Workout{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            WorkoutTypeCycling,
		PerformedAt:     input.PerformedAt.UTC(),
		DurationSeconds: input.DurationSeconds,
		PerceivedEffort: input.PerceivedEffort,
		Memo:            input.Memo,
		AvgPower:        input.AvgPower,
		AvgHeartRate:    input.AvgHeartRate,
		ElevationGain:   input.ElevationGain,
		DistanceKm:      input.DistanceKm,
		CreatedAt:       s.now().UTC(),
		StrengthSets:    []StrengthSet{},
	}

	if err := s.workouts.CreateWorkout(ctx, workout); err != nil {
		return "", err
	}
	return workout.ID, nil
}

// CreateStrengthWorkout persists one strength workout and one child set per
// (exercise, set) pair. Set indexes restart at zero for each exercise; the
// flattened submission order is the storage order.
func (s *Service) CreateStrengthWorkout(ctx context.Context, userID string, input StrengthWorkoutInput) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if input.PerformedAt.IsZero() || input.DurationSeconds <= 0 {
		return "", ErrInvalidWorkout
	}

	workout := Workout{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            WorkoutTypeStrength,
		PerformedAt:     input.PerformedAt.UTC(),
		DurationSeconds: input.DurationSeconds,
		PerceivedEffort: input.PerceivedEffort,
		Memo:            input.Memo,
		CreatedAt:       s.now().UTC(),
		StrengthSets:    flattenExercises(input.Exercises),
	}

	if err := s.workouts.CreateWorkout(ctx, workout); err != nil {
		return "", err
	}
	return workout.ID, nil
}

func flattenExercises(exercises []StrengthExerciseInput) []StrengthSet {
	sets := make([]StrengthSet, 0)
	for _, exercise := range exercises {
		name := strings.TrimSpace(exercise.Name)
		for index, set := range exercise.Sets {
			sets = append(sets, StrengthSet{
				ExerciseName: name,
				SetIndex:     index,
				WeightKg:     set.WeightKg,
				Reps:         set.Reps,
			})
		}
	}
	return sets
}

// ListRecent returns up to min(max(limit, 1), 100) workouts owned by the
// caller, most recent first, each enriched with its child sets. Callers with
// no limit preference pass DefaultRecentLimit; an explicit zero or negative
// limit clamps to 1. An anonymous caller gets an empty list, not an error.
func (s *Service) ListRecent(ctx context.Context, userID string, limit int) ([]Workout, error) {
	if userID == "" {
		return []Workout{}, nil
	}
	return s.workouts.ListRecent(ctx, userID, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit < minRecentLimit {
		return minRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}
