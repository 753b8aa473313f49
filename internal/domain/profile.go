package domain

import (
	"context"
	"strings"
	"time"
)

// Profile is the per-user profile record. At most one exists per identity;
// it is provisioned implicitly at first sign-in and patched by onboarding.
type Profile struct {
	UserID        string
	DisplayName   *string
	TrainingFocus *string
	Email         *string
	Image         *string
	CreatedAt     *time.Time
	UpdatedAt     time.Time
}

// ProfilePatch carries the fields to merge into a profile. Nil fields are
// left untouched.
type ProfilePatch struct {
	DisplayName   *string
	TrainingFocus *string
	Email         *string
	Image         *string
	CreatedAt     *time.Time
}

func (p ProfilePatch) isEmpty() bool {
	return p.DisplayName == nil && p.TrainingFocus == nil && p.Email == nil &&
		p.Image == nil && p.CreatedAt == nil
}

// Identity carries the claims of the authenticated caller as seen by the
// profile operations. Name, Email and Image may be empty.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Image  string
}

// ProfileView is the read model returned by GetCurrentProfile.
type ProfileView struct {
	UserID        string
	DisplayName   *string
	TrainingFocus *string
	Email         *string
}

// GetCurrentProfile resolves the caller's profile view. An anonymous caller
// gets nil. An authenticated caller whose profile row does not exist yet gets
// a best-effort view derived from the identity claims alone; the
// "profile not yet created" case is never an error. The display name falls
// back through stored name, identity name, identity email.
func (s *Service) GetCurrentProfile(ctx context.Context, ident *Identity) (*ProfileView, error) {
	if ident == nil || ident.UserID == "" {
		return nil, nil
	}

	profile, err := s.profiles.Get(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &ProfileView{
			UserID:      ident.UserID,
			DisplayName: firstNonEmpty(ident.Name, ident.Email),
			Email:       firstNonEmpty(ident.Email),
		}, nil
	}

	view := &ProfileView{
		UserID:        ident.UserID,
		TrainingFocus: profile.TrainingFocus,
		Email:         profile.Email,
	}
	if view.Email == nil {
		view.Email = firstNonEmpty(ident.Email)
	}
	if profile.DisplayName != nil {
		view.DisplayName = profile.DisplayName
	} else {
		view.DisplayName = firstNonEmpty(ident.Name, ident.Email)
	}
	return view, nil
}

// CompleteOnboarding merges the submitted display name and training focus
// into the caller's profile. The display name is required after trimming and
// is an explicit overwrite; the identity email is copied opportunistically
// only when the profile has none; createdAt is seeded if absent.
func (s *Service) CompleteOnboarding(ctx context.Context, ident *Identity, displayName, trainingFocus string) (string, error) {
	if ident == nil || ident.UserID == "" {
		return "", ErrUnauthenticated
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return "", ErrDisplayNameRequired
	}

	profile, err := s.profiles.Get(ctx, ident.UserID)
	if err != nil {
		return "", err
	}

	patch := ProfilePatch{DisplayName: &displayName}
	if focus := strings.TrimSpace(trainingFocus); focus != "" {
		patch.TrainingFocus = &focus
	}
	if (profile == nil || profile.Email == nil) && ident.Email != "" {
		email := ident.Email
		patch.Email = &email
	}
	if profile == nil || profile.CreatedAt == nil {
		created := s.now().UTC()
		patch.CreatedAt = &created
	}

	if err := s.profiles.Upsert(ctx, ident.UserID, patch); err != nil {
		return "", err
	}
	return ident.UserID, nil
}

// SyncIdentity provisions the profile from identity claims after a sign-in.
// Inferred values only ever fill absent fields: an already-set display name,
// email or image is never overwritten.
func (s *Service) SyncIdentity(ctx context.Context, ident *Identity) (string, error) {
	if ident == nil || ident.UserID == "" {
		return "", ErrUnauthenticated
	}

	profile, err := s.profiles.Get(ctx, ident.UserID)
	if err != nil {
		return "", err
	}

	var patch ProfilePatch
	if profile == nil || profile.DisplayName == nil {
		patch.DisplayName = firstNonEmpty(ident.Name, ident.Email)
	}
	if (profile == nil || profile.Email == nil) && ident.Email != "" {
		email := ident.Email
		patch.Email = &email
	}
	if (profile == nil || profile.Image == nil) && ident.Image != "" {
		image := ident.Image
		patch.Image = &image
	}
	if profile == nil || profile.CreatedAt == nil {
		created := s.now().UTC()
		patch.CreatedAt = &created
	}

	if patch.isEmpty() {
		return ident.UserID, nil
	}
	if err := s.profiles.Upsert(ctx, ident.UserID, patch); err != nil {
		return "", err
	}
	return ident.UserID, nil
}

func firstNonEmpty(values ...string) *string {
	for _, value := range values {
		if value != "" {
			v := value
			return &v
		}
	}
	return nil
}
