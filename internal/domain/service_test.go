package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeWorkoutRepo struct {
	created   []Workout
	lastLimit int
	listed    []Workout
	err       error
}

func (f *fakeWorkoutRepo) CreateWorkout(ctx context.Context, workout Workout) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, workout)
	return nil
}

func (f *fakeWorkoutRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Workout, error) {
	f.lastLimit = limit
	return f.listed, f.err
}

type fakeProfileRepo struct {
	profile *Profile
	patches []ProfilePatch
}

func (f *fakeProfileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	return f.profile, nil
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, userID string, patch ProfilePatch) error {
	f.patches = append(f.patches, patch)
	return nil
}

func newTestService(workouts *fakeWorkoutRepo, profiles *fakeProfileRepo) *Service {
	svc := NewService(workouts, profiles)
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreateCyclingWorkoutRequiresIdentity(t *testing.T) {
	repo := &fakeWorkoutRepo{}
	svc := newTestService(repo, &fakeProfileRepo{})

	_, err := svc.CreateCyclingWorkout(context.Background(), "", CyclingWorkoutInput{
		PerformedAt:     time.Now(),
		DurationSeconds: 3600,
	})
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.Empty(t, repo.created)
}

func TestCreateCyclingWorkoutPersistsOwnedRecord(t *testing.T) {
	repo := &fakeWorkoutRepo{}
	svc := newTestService(repo, &fakeProfileRepo{})

	performedAt := time.Date(2025, time.May, 30, 7, 30, 0, 0, time.UTC)
	power := 215.0
	id, err := svc.CreateCyclingWorkout(context.Background(), "user-1", CyclingWorkoutInput{
		PerformedAt:     performedAt,
		DurationSeconds: 5400,
		AvgPower:        &power,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	require.Equal(t, "user-1", created.UserID)
	require.Equal(t, WorkoutTypeCycling, created.Type)
	require.Equal(t, performedAt, created.PerformedAt)
	require.Equal(t, 5400, created.DurationSeconds)
	require.NotNil(t, created.StrengthSets)
	require.Empty(t, created.StrengthSets)
}

func TestCreateCyclingWorkoutRejectsMissingRequiredFields(t *testing.T) {
	repo := &fakeWorkoutRepo{}
	svc := newTestService(repo, &fakeProfileRepo{})

	_, err := svc.CreateCyclingWorkout(context.Background(), "user-1", CyclingWorkoutInput{
		DurationSeconds: 3600,
	})
	require.ErrorIs(t, err, ErrInvalidWorkout)

	_, err = svc.CreateCyclingWorkout(context.Background(), "user-1", CyclingWorkoutInput{
		PerformedAt: time.Now(),
	})
	require.ErrorIs(t, err, ErrInvalidWorkout)
	require.Empty(t, repo.created)
}

func TestCreateStrengthWorkoutAssignsSetIndexesPerExercise(t *testing.T) {
	repo := &fakeWorkoutRepo{}
	svc := newTestService(repo, &fakeProfileRepo{})

	weight := 100.0
	_, err := svc.CreateStrengthWorkout(context.Background(), "user-1", StrengthWorkoutInput{
		PerformedAt:     time.Now(),
		DurationSeconds: 2700,
		Exercises: []StrengthExerciseInput{
			{Name: "Squat", Sets: []StrengthSetInput{
				{WeightKg: &weight, Reps: 5},
				{WeightKg: &weight, Reps: 5},
			}},
			{Name: "Bench Press", Sets: []StrengthSetInput{
				{Reps: 8},
			}},
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	sets := repo.created[0].StrengthSets
	require.Len(t, sets, 3)
	require.Equal(t, "Squat", sets[0].ExerciseName)
	require.Equal(t, 0, sets[0].SetIndex)
	require.Equal(t, 1, sets[1].SetIndex)
	// Index restarts for the next exercise.
	require.Equal(t, "Bench Press", sets[2].ExerciseName)
	require.Equal(t, 0, sets[2].SetIndex)
	require.Nil(t, sets[2].WeightKg)
}

func TestListRecentAnonymousReturnsEmpty(t *testing.T) {
	repo := &fakeWorkoutRepo{listed: []Workout{{ID: "w-1"}}}
	svc := newTestService(repo, &fakeProfileRepo{})

	workouts, err := svc.ListRecent(context.Background(), "", 10)
	require.NoError(t, err)
	require.Empty(t, workouts)
	require.Zero(t, repo.lastLimit, "repository must not be queried for anonymous callers")
}

func TestListRecentClampsLimit(t *testing.T) {
	repo := &fakeWorkoutRepo{}
	svc := newTestService(repo, &fakeProfileRepo{})

	cases := []struct {
		requested int
		effective int
	}{
		// Zero is an explicit value and clamps like any other, it is not
		// shorthand for the default.
		{0, 1},
		{-5, 1},
		{1, 1},
		{DefaultRecentLimit, 20},
		{42, 42},
		{250, 100},
	}
	for _, tc := range cases {
		_, err := svc.ListRecent(context.Background(), "user-1", tc.requested)
		require.NoError(t, err)
		require.Equal(t, tc.effective, repo.lastLimit, "requested limit %d", tc.requested)
	}
}
