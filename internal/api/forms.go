package api

import (
	"fmt"
	"net/http"

	"example.com/workoutlog/internal/forms"
	"example.com/workoutlog/internal/templatecache"
)

// FormsHandler serves the urlencoded entry-form endpoints. Submissions pass
// through the form controllers, which validate locally before any store call
// and echo back the state the client should re-render.
type FormsHandler struct {
	cycling    *forms.CyclingController
	strength   *forms.StrengthController
	onboarding *forms.OnboardingController
	templates  *templatecache.Cache
}

// NewFormsHandler builds a FormsHandler.
func NewFormsHandler(cycling *forms.CyclingController, strength *forms.StrengthController, onboarding *forms.OnboardingController, templates *templatecache.Cache) *FormsHandler {
	return &FormsHandler{
		cycling:    cycling,
		strength:   strength,
		onboarding: onboarding,
		templates:  templates,
	}
}

// RegisterRoutes wires the form endpoints to the mux.
func (h *FormsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/forms/cycling", h.submitCycling)
	mux.HandleFunc("/v1/forms/strength", h.submitStrength)
	mux.HandleFunc("/v1/forms/strength/template", h.strengthTemplate)
	mux.HandleFunc("/v1/forms/onboarding", h.submitOnboarding)
}

// maxFormSets bounds the per-exercise set index scan.
const maxFormSets = 50

func (h *FormsHandler) submitCycling(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}

	form := forms.CyclingForm{
		PerformedAt:     r.PostFormValue("performed_at"),
		DurationMinutes: r.PostFormValue("duration_minutes"),
		AvgPower:        r.PostFormValue("avg_power"),
		AvgHeartRate:    r.PostFormValue("avg_heart_rate"),
		ElevationGain:   r.PostFormValue("elevation_gain"),
		DistanceKm:      r.PostFormValue("distance_km"),
		PerceivedEffort: r.PostFormValue("perceived_effort"),
		Memo:            r.PostFormValue("memo"),
	}

	echoed, outcome := h.cycling.Submit(r.Context(), callerID(r), form)
	writeJSON(w, outcomeStatusCode(outcome), CyclingFormResponse{
		Outcome: toOutcomeView(outcome),
		Form:    toCyclingFormView(echoed),
	})
}

func (h *FormsHandler) submitStrength(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}

	form := forms.StrengthForm{
		PerformedAt:     r.PostFormValue("performed_at"),
		DurationMinutes: r.PostFormValue("duration_minutes"),
		PerceivedEffort: r.PostFormValue("perceived_effort"),
		Memo:            r.PostFormValue("memo"),
		Exercises:       parseExerciseFields(r),
	}

	outcome := h.strength.Submit(r.Context(), callerID(r), form)
	writeJSON(w, outcomeStatusCode(outcome), StrengthFormResponse{Outcome: toOutcomeView(outcome)})
}

func (h *FormsHandler) strengthTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}

	form := forms.FromTemplate(h.templates.Load(r.Context(), userID))
	writeJSON(w, http.StatusOK, StrengthTemplateResponse{Form: toStrengthFormView(form)})
}

func (h *FormsHandler) submitOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}

	form := forms.OnboardingForm{
		DisplayName:   r.PostFormValue("display_name"),
		TrainingFocus: r.PostFormValue("training_focus"),
	}
	outcome := h.onboarding.Submit(r.Context(), identity(r), form)
	writeJSON(w, outcomeStatusCode(outcome), OnboardingFormResponse{Outcome: toOutcomeView(outcome)})
}

// parseExerciseFields reads the indexed form keys
// exercise.<i>.name, exercise.<i>.set.<j>.weight_kg, exercise.<i>.set.<j>.reps.
// Exercise indexes stop at the first missing name key; set rows stop at the
// first index with neither field present.
func parseExerciseFields(r *http.Request) []forms.StrengthExerciseForm {
	var exercises []forms.StrengthExerciseForm
	for i := 0; ; i++ {
		nameKey := fmt.Sprintf("exercise.%d.name", i)
		if !r.PostForm.Has(nameKey) {
			break
		}

		exercise := forms.StrengthExerciseForm{Name: r.PostFormValue(nameKey)}
		for j := 0; j < maxFormSets; j++ {
			weightKey := fmt.Sprintf("exercise.%d.set.%d.weight_kg", i, j)
			repsKey := fmt.Sprintf("exercise.%d.set.%d.reps", i, j)
			if !r.PostForm.Has(weightKey) && !r.PostForm.Has(repsKey) {
				break
			}
			exercise.Sets = append(exercise.Sets, forms.StrengthSetForm{
				WeightKg: r.PostFormValue(weightKey),
				Reps:     r.PostFormValue(repsKey),
			})
		}
		exercises = append(exercises, exercise)
	}
	return exercises
}

func outcomeStatusCode(outcome forms.Outcome) int {
	switch outcome.Status {
	case forms.StatusSucceeded:
		return http.StatusOK
	case forms.StatusSubmitting:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

// OutcomeView is the user-facing result of one submission attempt.
type OutcomeView struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	WorkoutID string `json:"workout_id,omitempty"`
}

// CyclingFormView echoes the cycling form state the client should render.
type CyclingFormView struct {
	PerformedAt     string `json:"performed_at"`
	DurationMinutes string `json:"duration_minutes"`
	AvgPower        string `json:"avg_power"`
	AvgHeartRate    string `json:"avg_heart_rate"`
	ElevationGain   string `json:"elevation_gain"`
	DistanceKm      string `json:"distance_km"`
	PerceivedEffort string `json:"perceived_effort"`
	Memo            string `json:"memo"`
}

// StrengthSetFormView is one set row of the strength form.
type StrengthSetFormView struct {
	WeightKg string `json:"weight_kg"`
	Reps     string `json:"reps"`
}

// StrengthExerciseFormView is one exercise block of the strength form.
type StrengthExerciseFormView struct {
	Name string                `json:"name"`
	Sets []StrengthSetFormView `json:"sets"`
}

// StrengthFormView is the strength form shape used for template pre-fill.
type StrengthFormView struct {
	PerceivedEffort string                     `json:"perceived_effort"`
	Exercises       []StrengthExerciseFormView `json:"exercises"`
}

// CyclingFormResponse is the body of POST /v1/forms/cycling.
type CyclingFormResponse struct {
	Outcome OutcomeView     `json:"outcome"`
	Form    CyclingFormView `json:"form"`
}

// StrengthFormResponse is the body of POST /v1/forms/strength.
type StrengthFormResponse struct {
	Outcome OutcomeView `json:"outcome"`
}

// StrengthTemplateResponse is the body of GET /v1/forms/strength/template.
type StrengthTemplateResponse struct {
	Form StrengthFormView `json:"form"`
}

// OnboardingFormResponse is the body of POST /v1/forms/onboarding.
type OnboardingFormResponse struct {
	Outcome OutcomeView `json:"outcome"`
}

func toOutcomeView(outcome forms.Outcome) OutcomeView {
	return OutcomeView{
		Status:    string(outcome.Status),
		Message:   outcome.Message,
		WorkoutID: outcome.WorkoutID,
	}
}

func toCyclingFormView(form forms.CyclingForm) CyclingFormView {
	return CyclingFormView{
		PerformedAt:     form.PerformedAt,
		DurationMinutes: form.DurationMinutes,
		AvgPower:        form.AvgPower,
		AvgHeartRate:    form.AvgHeartRate,
		ElevationGain:   form.ElevationGain,
		DistanceKm:      form.DistanceKm,
		PerceivedEffort: form.PerceivedEffort,
		Memo:            form.Memo,
	}
}

func toStrengthFormView(form forms.StrengthForm) StrengthFormView {
	view := StrengthFormView{PerceivedEffort: form.PerceivedEffort}
	for _, exercise := range form.Exercises {
		sets := make([]StrengthSetFormView, 0, len(exercise.Sets))
		for _, set := range exercise.Sets {
			sets = append(sets, StrengthSetFormView{WeightKg: set.WeightKg, Reps: set.Reps})
		}
		view.Exercises = append(view.Exercises, StrengthExerciseFormView{Name: exercise.Name, Sets: sets})
	}
	return view
}
