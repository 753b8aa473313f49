// Package api exposes HTTP handlers for the workout logger.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"example.com/workoutlog/internal/auth"
	"example.com/workoutlog/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/profile", h.profile)
	mux.HandleFunc("/v1/profile/sync", h.profileSync)
	mux.HandleFunc("/v1/profile/onboarding", h.profileOnboarding)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/cycling", h.createCyclingWorkout)
	mux.HandleFunc("/v1/workouts/strength", h.createStrengthWorkout)
	mux.HandleFunc("/v1/workouts/summary", h.workoutSummary)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// identity converts the request identity into the domain shape. A nil result
// means the caller is anonymous.
func identity(r *http.Request) *domain.Identity {
	ident, ok := auth.FromContext(r.Context())
	if !ok || ident == nil {
		return nil
	}
	return &domain.Identity{
		UserID: ident.Subject,
		Name:   ident.Name,
		Email:  ident.Email,
		Image:  ident.Image,
	}
}

func callerID(r *http.Request) string {
	if ident := identity(r); ident != nil {
		return ident.UserID
	}
	return ""
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	view, err := h.service.GetCurrentProfile(r.Context(), identity(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if view == nil {
		// Anonymous callers get an explicit null, not an error.
		writeJSON(w, http.StatusOK, ProfileResponse{Profile: nil})
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Profile: toProfileView(*view)})
}

func (h *Handler) profileSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	ident := identity(r)
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	userID, err := h.service.SyncIdentity(r.Context(), ident)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ProfileMutationResponse{UserID: userID})
}

func (h *Handler) profileOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	ident := identity(r)
	if ident == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req OnboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	userID, err := h.service.CompleteOnboarding(r.Context(), ident, req.DisplayName, req.TrainingFocus)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
		case errors.Is(err, domain.ErrDisplayNameRequired):
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, ProfileMutationResponse{UserID: userID})
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	// An absent limit defaults; a supplied one is clamped, so ?limit=0 means 1.
	limit := domain.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid limit")
			return
		}
		limit = parsed
	}

	workouts, err := h.service.ListRecent(r.Context(), callerID(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WorkoutView, 0, len(workouts))
	for _, workout := range workouts {
		items = append(items, toWorkoutView(workout))
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: items})
}

func (h *Handler) createCyclingWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req CreateCyclingWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	workoutID, err := h.service.CreateCyclingWorkout(r.Context(), userID, domain.CyclingWorkoutInput{
		PerformedAt:     time.UnixMilli(req.PerformedAt).UTC(),
		DurationSeconds: req.DurationSeconds,
		AvgPower:        req.AvgPower,
		AvgHeartRate:    req.AvgHeartRate,
		ElevationGain:   req.ElevationGain,
		DistanceKm:      req.DistanceKm,
		PerceivedEffort: req.PerceivedEffort,
		Memo:            req.Memo,
	})
	if err != nil {
		writeCreateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateWorkoutResponse{WorkoutID: workoutID})
}

func (h *Handler) createStrengthWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	var req CreateStrengthWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	exercises := make([]domain.StrengthExerciseInput, 0, len(req.Exercises))
	for _, exercise := range req.Exercises {
		sets := make([]domain.StrengthSetInput, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			sets = append(sets, domain.StrengthSetInput{WeightKg: set.WeightKg, Reps: set.Reps})
		}
		exercises = append(exercises, domain.StrengthExerciseInput{Name: exercise.Name, Sets: sets})
	}

	workoutID, err := h.service.CreateStrengthWorkout(r.Context(), userID, domain.StrengthWorkoutInput{
		PerformedAt:     time.UnixMilli(req.PerformedAt).UTC(),
		DurationSeconds: req.DurationSeconds,
		PerceivedEffort: req.PerceivedEffort,
		Memo:            req.Memo,
		Exercises:       exercises,
	})
	if err != nil {
		writeCreateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateWorkoutResponse{WorkoutID: workoutID})
}

func (h *Handler) workoutSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	limit := domain.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid limit")
			return
		}
		limit = parsed
	}

	workouts, err := h.service.ListRecent(r.Context(), callerID(r), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	summary := domain.Summarize(workouts)
	writeJSON(w, http.StatusOK, SummaryView{
		TotalWorkouts:        summary.TotalWorkouts,
		TotalDurationMinutes: summary.TotalDurationMinutes,
		TotalStrengthSets:    summary.TotalStrengthSets,
		AveragePower:         summary.AveragePower,
		AverageHeartRate:     summary.AverageHeartRate,
		WattsPerHeartRate:    summary.WattsPerHeartRate,
	})
}

func writeCreateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrInvalidWorkout):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// CreateCyclingWorkoutRequest is the payload for POST /v1/workouts/cycling.
// PerformedAt is epoch milliseconds.
type CreateCyclingWorkoutRequest struct {
	PerformedAt     int64    `json:"performed_at"`
	DurationSeconds int      `json:"duration_seconds"`
	AvgPower        *float64 `json:"avg_power,omitempty"`
	AvgHeartRate    *float64 `json:"avg_heart_rate,omitempty"`
	ElevationGain   *float64 `json:"elevation_gain,omitempty"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	PerceivedEffort *int     `json:"perceived_effort,omitempty"`
	Memo            *string  `json:"memo,omitempty"`
}

// Validate ensures request correctness.
func (r CreateCyclingWorkoutRequest) Validate() error {
	if r.PerformedAt <= 0 {
		return errors.New("performed_at is required")
	}
	if r.DurationSeconds <= 0 {
		return errors.New("duration_seconds must be > 0")
	}
	return nil
}

// StrengthSetRequest is one submitted set within an exercise.
type StrengthSetRequest struct {
	WeightKg *float64 `json:"weight_kg,omitempty"`
	Reps     int      `json:"reps"`
}

// StrengthExerciseRequest groups the submitted sets of one exercise.
type StrengthExerciseRequest struct {
	Name string               `json:"name"`
	Sets []StrengthSetRequest `json:"sets"`
}

// CreateStrengthWorkoutRequest is the payload for POST /v1/workouts/strength.
type CreateStrengthWorkoutRequest struct {
	PerformedAt     int64                     `json:"performed_at"`
	DurationSeconds int                       `json:"duration_seconds"`
	PerceivedEffort *int                      `json:"perceived_effort,omitempty"`
	Memo            *string                   `json:"memo,omitempty"`
	Exercises       []StrengthExerciseRequest `json:"exercises"`
}

// Validate ensures request correctness.
func (r CreateStrengthWorkoutRequest) Validate() error {
	if r.PerformedAt <= 0 {
		return errors.New("performed_at is required")
	}
	if r.DurationSeconds <= 0 {
		return errors.New("duration_seconds must be > 0")
	}
	for _, exercise := range r.Exercises {
		for _, set := range exercise.Sets {
			if set.Reps <= 0 {
				return errors.New("reps must be > 0")
			}
		}
	}
	return nil
}

// CreateWorkoutResponse describes the response body for create.
type CreateWorkoutResponse struct {
	WorkoutID string `json:"workout_id"`
}

// StrengthSetView exposes one stored set.
type StrengthSetView struct {
	SetID        string   `json:"set_id"`
	ExerciseName string   `json:"exercise_name"`
	SetIndex     int      `json:"set_index"`
	WeightKg     *float64 `json:"weight_kg,omitempty"`
	Reps         int      `json:"reps"`
}

// WorkoutView exposes full details about a workout.
type WorkoutView struct {
	WorkoutID       string            `json:"workout_id"`
	WorkoutType     string            `json:"workout_type"`
	PerformedAt     int64             `json:"performed_at"`
	DurationSeconds int               `json:"duration_seconds"`
	PerceivedEffort *int              `json:"perceived_effort,omitempty"`
	Memo            *string           `json:"memo,omitempty"`
	AvgPower        *float64          `json:"avg_power,omitempty"`
	AvgHeartRate    *float64          `json:"avg_heart_rate,omitempty"`
	ElevationGain   *float64          `json:"elevation_gain,omitempty"`
	DistanceKm      *float64          `json:"distance_km,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	StrengthSets    []StrengthSetView `json:"strength_sets"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items []WorkoutView `json:"items"`
}

// SummaryView aggregates the recent workout window.
type SummaryView struct {
	TotalWorkouts        int      `json:"total_workouts"`
	TotalDurationMinutes int      `json:"total_duration_minutes"`
	TotalStrengthSets    int      `json:"total_strength_sets"`
	AveragePower         *int     `json:"average_power,omitempty"`
	AverageHeartRate     *int     `json:"average_heart_rate,omitempty"`
	WattsPerHeartRate    *float64 `json:"watts_per_heart_rate,omitempty"`
}

// ProfileDetails is the read model of the caller's profile.
type ProfileDetails struct {
	UserID        string  `json:"user_id"`
	DisplayName   *string `json:"display_name"`
	TrainingFocus *string `json:"training_focus"`
	Email         *string `json:"email"`
}

// ProfileResponse wraps the profile read. Profile is null for anonymous
// callers.
type ProfileResponse struct {
	Profile *ProfileDetails `json:"profile"`
}

// ProfileMutationResponse acknowledges a profile write.
type ProfileMutationResponse struct {
	UserID string `json:"user_id"`
}

// OnboardingRequest is the payload for POST /v1/profile/onboarding.
type OnboardingRequest struct {
	DisplayName   string `json:"display_name"`
	TrainingFocus string `json:"training_focus"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toWorkoutView(workout domain.Workout) WorkoutView {
	sets := make([]StrengthSetView, 0, len(workout.StrengthSets))
	for _, set := range workout.StrengthSets {
		sets = append(sets, StrengthSetView{
			SetID:        set.ID,
			ExerciseName: set.ExerciseName,
			SetIndex:     set.SetIndex,
			WeightKg:     set.WeightKg,
			Reps:         set.Reps,
		})
	}
	return WorkoutView{
		WorkoutID:       workout.ID,
		WorkoutType:     string(workout.Type),
		PerformedAt:     workout.PerformedAt.UnixMilli(),
		DurationSeconds: workout.DurationSeconds,
		PerceivedEffort: workout.PerceivedEffort,
		Memo:            workout.Memo,
		AvgPower:        workout.AvgPower,
		AvgHeartRate:    workout.AvgHeartRate,
		ElevationGain:   workout.ElevationGain,
		DistanceKm:      workout.DistanceKm,
		CreatedAt:       workout.CreatedAt,
		StrengthSets:    sets,
	}
}

func toProfileView(view domain.ProfileView) *ProfileDetails {
	return &ProfileDetails{
		UserID:        view.UserID,
		DisplayName:   view.DisplayName,
		TrainingFocus: view.TrainingFocus,
		Email:         view.Email,
	}
}
