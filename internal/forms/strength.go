package forms

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"sync/atomic"

	"example.com/workoutlog/internal/domain"
	"example.com/workoutlog/internal/templatecache"
)

// StrengthSetForm is one raw set row of the strength entry form.
type StrengthSetForm struct {
	WeightKg string
	Reps     string
}

// StrengthExerciseForm is one raw exercise block of the strength entry form.
type StrengthExerciseForm struct {
	Name string
	Sets []StrengthSetForm
}

// StrengthForm holds the raw string inputs of the strength entry form.
type StrengthForm struct {
	PerformedAt     string
	DurationMinutes string
	PerceivedEffort string
	Memo            string
	Exercises       []StrengthExerciseForm
}

// Normalize validates the form and converts it to a create payload.
// Exercises with an empty trimmed name, and exercises left with no
// parseable set, are dropped entirely; sets whose rep count does not parse
// are discarded. When nothing survives the pruning, the submission is
// rejected locally.
func (f StrengthForm) Normalize() (domain.StrengthWorkoutInput, *ValidationError) {
	timestamp, ok := parseTimestamp(f.PerformedAt)
	duration := parseFloatField(f.DurationMinutes)
	if !ok || duration == nil {
		return domain.StrengthWorkoutInput{}, &ValidationError{Message: msgRequiredFields}
	}
	if *duration < minDurationMinutes {
		return domain.StrengthWorkoutInput{}, &ValidationError{Message: msgDurationTooShort}
	}

	exercises := make([]domain.StrengthExerciseInput, 0, len(f.Exercises))
	for _, exercise := range f.Exercises {
		name := strings.TrimSpace(exercise.Name)
		if name == "" {
			continue
		}

		sets := make([]domain.StrengthSetInput, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			reps := parseIntField(set.Reps)
			if reps == nil || *reps <= 0 {
				continue
			}
			sets = append(sets, domain.StrengthSetInput{
				WeightKg: parseFloatField(set.WeightKg),
				Reps:     *reps,
			})
		}
		if len(sets) == 0 {
			continue
		}

		exercises = append(exercises, domain.StrengthExerciseInput{Name: name, Sets: sets})
	}

	if len(exercises) == 0 {
		return domain.StrengthWorkoutInput{}, &ValidationError{Message: msgExerciseRequired}
	}

	return domain.StrengthWorkoutInput{
		PerformedAt:     timestamp,
		DurationSeconds: int(math.Round(*duration * 60)),
		PerceivedEffort: parseIntField(f.PerceivedEffort),
		Memo:            optionalText(f.Memo),
		Exercises:       exercises,
	}, nil
}

// Template converts the raw submitted shape into a cacheable template.
func (f StrengthForm) Template() templatecache.Template {
	exercises := make([]templatecache.StoredExercise, 0, len(f.Exercises))
	for _, exercise := range f.Exercises {
		sets := make([]templatecache.StoredSet, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			sets = append(sets, templatecache.StoredSet{WeightKg: set.WeightKg, Reps: set.Reps})
		}
		exercises = append(exercises, templatecache.StoredExercise{Name: exercise.Name, Sets: sets})
	}
	return templatecache.Template{
		PerceivedEffort: f.PerceivedEffort,
		Exercises:       exercises,
	}
}

// FromTemplate pre-populates a strength form from a cached template.
func FromTemplate(template templatecache.Template) StrengthForm {
	form := StrengthForm{PerceivedEffort: template.PerceivedEffort}
	for _, exercise := range template.Exercises {
		sets := make([]StrengthSetForm, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			sets = append(sets, StrengthSetForm{WeightKg: set.WeightKg, Reps: set.Reps})
		}
		form.Exercises = append(form.Exercises, StrengthExerciseForm{Name: exercise.Name, Sets: sets})
	}
	return form
}

// StrengthController submits strength forms to the workout store and
// remembers the submitted shape for the next entry.
type StrengthController struct {
	service  workoutCreator
	cache    *templatecache.Cache
	inFlight atomic.Bool
}

// NewStrengthController constructs a StrengthController.
func NewStrengthController(service workoutCreator, cache *templatecache.Cache) *StrengthController {
	return &StrengthController{service: service, cache: cache}
}

// Submit runs one submission attempt. On success the raw submitted shape is
// stored as the template for the next form; a cache write failure does not
// fail the submission.
func (c *StrengthController) Submit(ctx context.Context, userID string, form StrengthForm) Outcome {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{Status: StatusSubmitting, Message: msgSubmissionInProgress}
	}
	defer c.inFlight.Store(false)

	if userID == "" {
		return Outcome{Status: StatusFailed, Message: msgSignInRequired}
	}

	input, vErr := form.Normalize()
	if vErr != nil {
		return Outcome{Status: StatusFailed, Message: vErr.Message}
	}

	workoutID, err := c.service.CreateStrengthWorkout(ctx, userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return Outcome{Status: StatusFailed, Message: msgSignInRequired}
		}
		return Outcome{Status: StatusFailed, Message: msgSaveFailed}
	}

	if c.cache != nil {
		if cacheErr := c.cache.Save(ctx, userID, form.Template()); cacheErr != nil {
			log.Printf("strength template cache write failed: %v", cacheErr)
		}
	}

	return Outcome{Status: StatusSucceeded, Message: msgStrengthSaved, WorkoutID: workoutID}
}
