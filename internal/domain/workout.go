package domain

import "time"

// WorkoutType discriminates the two workout variants.
type WorkoutType string

const (
	WorkoutTypeCycling  WorkoutType = "cycling"
	WorkoutTypeStrength WorkoutType = "strength"
)

// StrengthSet is one recorded set (weight x reps) under an exercise name.
// SetIndex is the ordinal of the set within its exercise as submitted,
// starting at zero; it is not unique across exercises.
type StrengthSet struct {
	ID           string
	ExerciseName string
	SetIndex     int
	WeightKg     *float64
	Reps         int
}

// Workout is one logged training session. The Type field discriminates the
// variant: cycling rows carry the optional ride metrics, strength rows carry
// child StrengthSets. StrengthSets is always non-nil on enriched reads and
// empty for cycling workouts; sets are flattened in storage order, not
// grouped by exercise name.
type Workout struct {
	ID              string
	UserID          string
	Type            WorkoutType
	PerformedAt     time.Time
	DurationSeconds int
	PerceivedEffort *int
	Memo            *string

	// Cycling-only metrics.
	AvgPower      *float64
	AvgHeartRate  *float64
	ElevationGain *float64
	DistanceKm    *float64

	CreatedAt    time.Time
	StrengthSets []StrengthSet
}
