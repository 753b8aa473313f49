package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutsCreatedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "workoutlog",
		Subsystem: "persistence",
		Name:      "workouts_created_total",
		Help:      "Number of workouts persisted, labeled by workout type.",
	}, []string{"workout_type"})

	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "workoutlog",
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout persisted to Postgres.",
	})
)

func init() {
	prometheus.MustRegister(workoutsCreatedCounter, workoutPersistGauge)
}

// RecordWorkoutPersisted updates the persistence counters after a commit.
func RecordWorkoutPersisted(workoutType string, ts time.Time) {
	workoutsCreatedCounter.WithLabelValues(workoutType).Inc()
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}
