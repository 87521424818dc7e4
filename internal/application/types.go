package application

import (
	"time"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
)

type Config struct {
	ServiceName           string
	PublicProfileCacheTTL time.Duration
	IdempotencyTTL        time.Duration
}

type CreateProfileRequest struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	City        string `json:"city"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

type PreferencesPayload struct {
	Theme       *string `json:"theme,omitempty"`
	NotifyEmail *bool   `json:"notify_email,omitempty"`
	NotifyPush  *bool   `json:"notify_push,omitempty"`
}

type UpdateProfileRequest struct {
	Name           *string             `json:"name,omitempty"`
	Gender         *string             `json:"gender,omitempty"`
	City           *string             `json:"city,omitempty"`
	Phone          *string             `json:"phone,omitempty"`
	DateOfBirth    *string             `json:"date_of_birth,omitempty"`
	ProfilePicture *string             `json:"profile_picture,omitempty"`
	Bio            *string             `json:"bio,omitempty"`
	Preferences    *PreferencesPayload `json:"preferences,omitempty"`
}

type IdentityResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"email_verified"`
}

type PreferencesView struct {
	Theme       string `json:"theme"`
	NotifyEmail bool   `json:"notify_email"`
	NotifyPush  bool   `json:"notify_push"`
}

// ProfileResponse is the owner-scoped view. It never carries the subject id or
// the active flag.
type ProfileResponse struct {
	ProfileID      string          `json:"profile_id"`
	Name           string          `json:"name"`
	Gender         string          `json:"gender"`
	City           string          `json:"city"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	DateOfBirth    *time.Time      `json:"date_of_birth,omitempty"`
	ProfilePicture string          `json:"profile_picture,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	LastLogin      *time.Time      `json:"last_login,omitempty"`
	Preferences    PreferencesView `json:"preferences"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PublicProfileResponse additionally strips email and phone.
type PublicProfileResponse struct {
	ProfileID      string          `json:"profile_id"`
	Name           string          `json:"name"`
	Gender         string          `json:"gender"`
	City           string          `json:"city"`
	DateOfBirth    *time.Time      `json:"date_of_birth,omitempty"`
	ProfilePicture string          `json:"profile_picture,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	Preferences    PreferencesView `json:"preferences"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type MeResponse struct {
	Identity IdentityResponse `json:"identity"`
	Profile  *ProfileResponse `json:"profile"`
}

func toIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:            identity.Subject,
		Email:         identity.Email,
		Username:      identity.Username,
		EmailVerified: identity.EmailVerified,
	}
}

// ToProfileView exposes the owner projection to transports that already hold
// a loaded profile (the profile-existence guard attaches one).
func ToProfileView(p domain.Profile) ProfileResponse {
	return toProfileResponse(p)
}

func toProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		ProfileID:      p.ProfileID.String(),
		Name:           p.Name,
		Gender:         string(p.Gender),
		City:           p.City,
		Email:          p.Email,
		Phone:          p.Phone,
		DateOfBirth:    p.DateOfBirth,
		ProfilePicture: p.ProfilePicture,
		Bio:            p.Bio,
		LastLogin:      p.LastLogin,
		Preferences:    toPreferencesView(p.Preferences),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPublicProfileResponse(p domain.Profile) PublicProfileResponse {
	return PublicProfileResponse{
		ProfileID:      p.ProfileID.String(),
		Name:           p.Name,
		Gender:         string(p.Gender),
		City:           p.City,
		DateOfBirth:    p.DateOfBirth,
		ProfilePicture: p.ProfilePicture,
		Bio:            p.Bio,
		Preferences:    toPreferencesView(p.Preferences),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPreferencesView(p domain.Preferences) PreferencesView {
	return PreferencesView{
		Theme:       string(p.Theme),
		NotifyEmail: p.NotifyEmail,
		NotifyPush:  p.NotifyPush,
	}
}
