// Package events defines the payloads published through the outbox. The
// external real-time subscription layer consumes these to redeliver a user's
// recent-workout snapshot after every write.
package events

import "time"

// TopicWorkoutEvents carries workout lifecycle events keyed by user.
const TopicWorkoutEvents = "workout_events"

// EventTypeWorkoutCreated marks a newly persisted workout.
const EventTypeWorkoutCreated = "workout.created"

// WorkoutCreated is emitted after a workout and its child sets are committed.
type WorkoutCreated struct {
	WorkoutID       string    `json:"workout_id"`
	UserID          string    `json:"user_id"`
	WorkoutType     string    `json:"workout_type"`
	PerformedAt     int64     `json:"performed_at"` // epoch millis
	DurationSeconds int       `json:"duration_seconds"`
	SetCount        int       `json:"set_count"`
	OccurredAt      time.Time `json:"occurred_at"`
}
