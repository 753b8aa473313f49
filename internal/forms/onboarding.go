package forms

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"example.com/workoutlog/internal/domain"
)

const (
	msgDisplayNameRequired = "display name is required"
	msgProfileUpdated      = "profile updated"
	msgUpdateFailed        = "update failed, please retry"
)

// OnboardingForm holds the raw inputs of the profile onboarding form.
type OnboardingForm struct {
	DisplayName   string
	TrainingFocus string
}

// Validate checks the onboarding form locally.
func (f OnboardingForm) Validate() *ValidationError {
	if strings.TrimSpace(f.DisplayName) == "" {
		return &ValidationError{Message: msgDisplayNameRequired}
	}
	return nil
}

type onboarder interface {
	CompleteOnboarding(ctx context.Context, ident *domain.Identity, displayName, trainingFocus string) (string, error)
}

// OnboardingController submits profile onboarding forms.
type OnboardingController struct {
	service  onboarder
	inFlight atomic.Bool
}

// NewOnboardingController constructs an OnboardingController.
func NewOnboardingController(service onboarder) *OnboardingController {
	return &OnboardingController{service: service}
}

// Submit runs one onboarding attempt.
func (c *OnboardingController) Submit(ctx context.Context, ident *domain.Identity, form OnboardingForm) Outcome {
	if !c.inFlight.CompareAndSwap(false, true) {
		return Outcome{Status: StatusSubmitting, Message: msgSubmissionInProgress}
	}
	defer c.inFlight.Store(false)

	if ident == nil || ident.UserID == "" {
		return Outcome{Status: StatusFailed, Message: msgSignInRequired}
	}

	if vErr := form.Validate(); vErr != nil {
		return Outcome{Status: StatusFailed, Message: vErr.Message}
	}

	_, err := c.service.CompleteOnboarding(ctx, ident, form.DisplayName, form.TrainingFocus)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			return Outcome{Status: StatusFailed, Message: msgSignInRequired}
		case errors.Is(err, domain.ErrDisplayNameRequired):
			return Outcome{Status: StatusFailed, Message: msgDisplayNameRequired}
		default:
			return Outcome{Status: StatusFailed, Message: msgUpdateFailed}
		}
	}

	return Outcome{Status: StatusSucceeded, Message: msgProfileUpdated}
}
