package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"example.com/workoutlog/internal/domain"
	"example.com/workoutlog/internal/forms"
	"example.com/workoutlog/internal/templatecache"
)

func newFormsHandler(repo *mockWorkoutRepo, kv *memoryKV) *FormsHandler {
	service := domain.NewService(repo, &mockProfileRepo{})
	cache := templatecache.New(kv)
	return NewFormsHandler(
		forms.NewCyclingController(service),
		forms.NewStrengthController(service, cache),
		forms.NewOnboardingController(service),
		cache,
	)
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSubmitCyclingFormClearsMemoOnSuccess(t *testing.T) {
	repo := &mockWorkoutRepo{}
	handler := newFormsHandler(repo, newMemoryKV())

	values := url.Values{}
	values.Set("performed_at", "2025-11-03T07:30")
	values.Set("duration_minutes", "90")
	values.Set("avg_power", "205")
	values.Set("memo", "windy ride")

	req := authenticated(formRequest("/v1/forms/cycling", values), "user-1")
	rr := httptest.NewRecorder()
	handler.submitCycling(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp CyclingFormResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Outcome.Status != string(forms.StatusSucceeded) {
		t.Fatalf("unexpected outcome %+v", resp.Outcome)
	}
	if resp.Outcome.WorkoutID == "" {
		t.Fatalf("expected a workout id")
	}
	if resp.Form.Memo != "" {
		t.Fatalf("expected memo cleared got %q", resp.Form.Memo)
	}
	if resp.Form.AvgPower != "205" {
		t.Fatalf("expected avg power retained got %q", resp.Form.AvgPower)
	}
	if len(repo.created) != 1 || repo.created[0].DurationSeconds != 5400 {
		t.Fatalf("unexpected created workouts %+v", repo.created)
	}
}

func TestSubmitCyclingFormAnonymousFails(t *testing.T) {
	repo := &mockWorkoutRepo{}
	handler := newFormsHandler(repo, newMemoryKV())

	values := url.Values{}
	values.Set("performed_at", "2025-11-03T07:30")
	values.Set("duration_minutes", "90")

	rr := httptest.NewRecorder()
	handler.submitCycling(rr, formRequest("/v1/forms/cycling", values))

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rr.Code)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no store call got %d", len(repo.created))
	}
}

func TestSubmitStrengthFormParsesIndexedFields(t *testing.T) {
	repo := &mockWorkoutRepo{}
	kv := newMemoryKV()
	handler := newFormsHandler(repo, kv)

	values := url.Values{}
	values.Set("performed_at", "2025-11-03T18:00")
	values.Set("duration_minutes", "45")
	values.Set("perceived_effort", "8")
	values.Set("exercise.0.name", "Squat")
	values.Set("exercise.0.set.0.weight_kg", "100")
	values.Set("exercise.0.set.0.reps", "5")
	values.Set("exercise.0.set.1.weight_kg", "105")
	values.Set("exercise.0.set.1.reps", "3")
	values.Set("exercise.1.name", "Deadlift")
	values.Set("exercise.1.set.0.weight_kg", "140")
	values.Set("exercise.1.set.0.reps", "5")

	req := authenticated(formRequest("/v1/forms/strength", values), "user-1")
	rr := httptest.NewRecorder()
	handler.submitStrength(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 created workout got %d", len(repo.created))
	}
	sets := repo.created[0].StrengthSets
	if len(sets) != 3 {
		t.Fatalf("expected 3 flattened sets got %d", len(sets))
	}
	if sets[0].ExerciseName != "Squat" || sets[2].ExerciseName != "Deadlift" {
		t.Fatalf("unexpected exercise order %+v", sets)
	}

	// The submitted shape becomes the next template.
	stored, err := kv.Get(context.Background(), "cycle-strength-logger:last-strength-template:user-1")
	if err != nil {
		t.Fatalf("expected template cached: %v", err)
	}
	if !strings.Contains(stored, "Deadlift") {
		t.Fatalf("unexpected cached template %s", stored)
	}
}

func TestSubmitStrengthFormRejectsWhenNothingSurvives(t *testing.T) {
	repo := &mockWorkoutRepo{}
	handler := newFormsHandler(repo, newMemoryKV())

	values := url.Values{}
	values.Set("performed_at", "2025-11-03T18:00")
	values.Set("duration_minutes", "45")
	values.Set("exercise.0.name", "   ")
	values.Set("exercise.0.set.0.reps", "5")

	req := authenticated(formRequest("/v1/forms/strength", values), "user-1")
	rr := httptest.NewRecorder()
	handler.submitStrength(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", rr.Code, rr.Body.String())
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no store call got %d", len(repo.created))
	}
}

func TestStrengthTemplateDefaultsWhenNothingCached(t *testing.T) {
	handler := newFormsHandler(&mockWorkoutRepo{}, newMemoryKV())

	req := authenticated(httptest.NewRequest(http.MethodGet, "/v1/forms/strength/template", nil), "user-1")
	rr := httptest.NewRecorder()
	handler.strengthTemplate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp StrengthTemplateResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Form.PerceivedEffort != "6" {
		t.Fatalf("unexpected effort %q", resp.Form.PerceivedEffort)
	}
	if len(resp.Form.Exercises) != 1 || resp.Form.Exercises[0].Name != "Squat" {
		t.Fatalf("unexpected exercises %+v", resp.Form.Exercises)
	}
}

func TestStrengthTemplateRequiresAuth(t *testing.T) {
	handler := newFormsHandler(&mockWorkoutRepo{}, newMemoryKV())

	rr := httptest.NewRecorder()
	handler.strengthTemplate(rr, httptest.NewRequest(http.MethodGet, "/v1/forms/strength/template", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestSubmitOnboardingForm(t *testing.T) {
	handler := newFormsHandler(&mockWorkoutRepo{}, newMemoryKV())

	values := url.Values{}
	values.Set("display_name", "Alex")
	values.Set("training_focus", "endurance")

	req := authenticated(formRequest("/v1/forms/onboarding", values), "user-1")
	rr := httptest.NewRecorder()
	handler.submitOnboarding(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	var resp OnboardingFormResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Outcome.Status != string(forms.StatusSucceeded) {
		t.Fatalf("unexpected outcome %+v", resp.Outcome)
	}
}

type memoryKV struct {
	values map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: map[string]string{}}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", templatecache.ErrNotFound
	}
	return value, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	m.values[key] = value
	return nil
}
