package forms

import (
	"context"
	"errors"
	"math"
	"sync/atomic"

	"example.com/workoutlog/internal/domain"
)

// Messages surfaced by the form controllers.
const (
	msgSignInRequired       = "please sign in to record workouts"
	msgRequiredFields       = "performed-at and duration are required"
	msgDurationTooShort     = "duration must be at least 1 minute"
	msgSaveFailed           = "failed to save, please retry"
	msgSubmissionInProgress = "a submission is already in progress"
	msgCyclingSaved         = "cycling workout saved"
	msgStrengthSaved        = "strength workout saved"
	msgExerciseRequired     = "at least one exercise and one set required"
)

const minDurationMinutes = 1

// ValidationError is a local, pre-submission rejection; it never reaches
// the store.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Status tracks where a submission is in its lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Outcome is the user-facing result of one submission attempt.
type Outcome struct {
	Status    Status
	Message   string
	WorkoutID string
}

// workoutCreator is the slice of the domain service the workout controllers need.
type workoutCreator interface {
	CreateCyclingWorkout(ctx context.Context, userID string, input domain.CyclingWorkoutInput) (string, error)
	CreateStrengthWorkout(ctx context.Context, userID string, input domain.StrengthWorkoutInput) (string, error)
}

// CyclingForm holds the raw string inputs of the cycling entry form.
type CyclingForm struct {
	PerformedAt     string
	DurationMinutes string
	AvgPower        string
	AvgHeartRate    string
	ElevationGain   string
	DistanceKm      string
	PerceivedEffort string
	Memo            string
}

// Normalize validates the form and converts it to a create payload.
func (f CyclingForm) Normalize() (domain.CyclingWorkoutInput, *ValidationError) {
	timestamp, ok := parseTimestamp(f.PerformedAt)
	duration := parseFloatField(f.DurationMinutes)
	if !ok || duration == nil {
		return domain.CyclingWorkoutInput{}, &ValidationError{Message: msgRequiredFields}
	}
	if *duration < minDurationMinutes {
		return domain.CyclingWorkoutInput{}, &ValidationError{Message: msgDurationTooShort}
	}

	return domain.CyclingWorkoutInput{
		PerformedAt:     timestamp,
		DurationSeconds: int(math.Round(*duration * 60)),
		AvgPower:        parseFloatField(f.AvgPower),
		AvgHeartRate:    parseFloatField(f.AvgHeartRate),
		ElevationGain:   parseFloatField(f.ElevationGain),
		DistanceKm:      parseFloatField(f.DistanceKm),
		PerceivedEffort: parseIntField(f.PerceivedEffort),
		Memo:            optionalText(f.Memo),
	}, nil
}

// CyclingController submits cycling forms to the workout store.
type CyclingController struct {
	service  workoutCreator
	inFlight atomic.Bool
}

// NewCyclingController constructs a CyclingController.
func NewCyclingController(service workoutCreator) *CyclingController {
	return &CyclingController{service: service}
}

// Submit runs one submission attempt. The returned form is the state the
// client should re-render: on success the memo is cleared, on failure the
// entered values are retained. While a submission is in flight, further
// attempts return a submitting outcome without touching the store.
func (c *CyclingController) Submit(ctx context.Context, userID string, form CyclingForm) (CyclingForm, Outcome) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return form, Outcome{Status: StatusSubmitting, Message: msgSubmissionInProgress}
	}
	defer c.inFlight.Store(false)

	if userID == "" {
		return form, Outcome{Status: StatusFailed, Message: msgSignInRequired}
	}

	input, vErr := form.Normalize()
	if vErr != nil {
		return form, Outcome{Status: StatusFailed, Message: vErr.Message}
	}

	workoutID, err := c.service.CreateCyclingWorkout(ctx, userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return form, Outcome{Status: StatusFailed, Message: msgSignInRequired}
		}
		return form, Outcome{Status: StatusFailed, Message: msgSaveFailed}
	}

	form.Memo = ""
	return form, Outcome{Status: StatusSucceeded, Message: msgCyclingSaved, WorkoutID: workoutID}
}
