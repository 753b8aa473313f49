package domain

import "math"

// Summary aggregates a window of enriched workouts into dashboard counters.
// Average fields are nil when no cycling workout in the window defines the
// underlying metric.
type Summary struct {
	TotalWorkouts        int
	TotalDurationMinutes int
	TotalStrengthSets    int
	AveragePower         *int
	AverageHeartRate     *int
	WattsPerHeartRate    *float64
}

// Summarize reduces the given workouts to summary counters. Each workout's
// duration is rounded to whole minutes independently before summing. Averages
// are taken over cycling workouts that define the metric and rounded to the
// nearest integer. The watts-per-heart-rate ratio is rounded to two decimals
// and computed only when both averages exist and the heart-rate average is
// positive.
func Summarize(workouts []Workout) Summary {
	var summary Summary
	var totalPower, totalHeartRate float64
	var powerSamples, heartRateSamples int

	for _, workout := range workouts {
		summary.TotalWorkouts++
		summary.TotalDurationMinutes += int(math.Round(float64(workout.DurationSeconds) / 60))

		switch workout.Type {
		case WorkoutTypeStrength:
			summary.TotalStrengthSets += len(workout.StrengthSets)
		case WorkoutTypeCycling:
			if workout.AvgPower != nil {
				totalPower += *workout.AvgPower
				powerSamples++
			}
			if workout.AvgHeartRate != nil {
				totalHeartRate += *workout.AvgHeartRate
				heartRateSamples++
			}
		}
	}

	if powerSamples > 0 {
		avg := int(math.Round(totalPower / float64(powerSamples)))
		summary.AveragePower = &avg
	}
	if heartRateSamples > 0 {
		avg := int(math.Round(totalHeartRate / float64(heartRateSamples)))
		summary.AverageHeartRate = &avg
	}
	if summary.AveragePower != nil && summary.AverageHeartRate != nil && *summary.AverageHeartRate > 0 {
		ratio := math.Round(float64(*summary.AveragePower)/float64(*summary.AverageHeartRate)*100) / 100
		summary.WattsPerHeartRate = &ratio
	}

	return summary
}
