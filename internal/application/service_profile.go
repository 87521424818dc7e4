package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

const dateOfBirthLayout = "2006-01-02"

// GetActiveProfile is used by the profile-existence guard; the loaded profile
// is attached to the request scope so handlers do not repeat the lookup.
func (s *Service) GetActiveProfile(ctx context.Context, subjectID string) (domain.Profile, error) {
	return s.profiles.GetActiveBySubject(ctx, subjectID)
}

func (s *Service) CreateProfile(ctx context.Context, identity domain.Identity, req CreateProfileRequest, idempotencyKey string) (ProfileResponse, error) {
	if err := domain.ValidateName(req.Name); err != nil {
		return ProfileResponse{}, err
	}
	gender, err := domain.ParseGender(req.Gender)
	if err != nil {
		return ProfileResponse{}, err
	}
	if err := domain.ValidateCity(req.City); err != nil {
		return ProfileResponse{}, err
	}
	if err := domain.ValidatePhone(req.Phone); err != nil {
		return ProfileResponse{}, err
	}
	if err := domain.ValidateBio(req.Bio); err != nil {
		return ProfileResponse{}, err
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return ProfileResponse{}, err
	}
	if err := s.reserveIdempotency(ctx, idempotencyKey, req); err != nil {
		return ProfileResponse{}, err
	}

	created, err := s.profiles.Create(ctx, ports.CreateProfileParams{
		SubjectID:   identity.Subject,
		Name:        strings.TrimSpace(req.Name),
		Gender:      gender,
		City:        strings.TrimSpace(req.City),
		Email:       domain.NormalizeEmail(identity.Email),
		Phone:       strings.TrimSpace(req.Phone),
		DateOfBirth: dob,
		Bio:         strings.TrimSpace(req.Bio),
		CreatedAt:   s.nowFn(),
	})
	if err != nil {
		return ProfileResponse{}, err
	}

	_ = s.enqueueProfileEvent(ctx, "profile.created", created)
	return toProfileResponse(created), nil
}

func (s *Service) UpdateProfile(ctx context.Context, subjectID string, req UpdateProfileRequest, idempotencyKey string) (ProfileResponse, error) {
	params := ports.UpdateProfileParams{SubjectID: subjectID}

	if req.Name != nil {
		if err := domain.ValidateName(*req.Name); err != nil {
			return ProfileResponse{}, err
		}
		trimmed := strings.TrimSpace(*req.Name)
		params.Name = &trimmed
	}
	if req.Gender != nil {
		gender, err := domain.ParseGender(*req.Gender)
		if err != nil {
			return ProfileResponse{}, err
		}
		params.Gender = &gender
	}
	if req.City != nil {
		if err := domain.ValidateCity(*req.City); err != nil {
			return ProfileResponse{}, err
		}
		trimmed := strings.TrimSpace(*req.City)
		params.City = &trimmed
	}
	if req.Phone != nil {
		if err := domain.ValidatePhone(*req.Phone); err != nil {
			return ProfileResponse{}, err
		}
		trimmed := strings.TrimSpace(*req.Phone)
		params.Phone = &trimmed
	}
	if req.DateOfBirth != nil {
		// An explicit empty string clears the stored date; absence leaves it.
		if strings.TrimSpace(*req.DateOfBirth) == "" {
			params.ClearDateOfBirth = true
		} else {
			dob, err := parseDateOfBirth(*req.DateOfBirth)
			if err != nil {
				return ProfileResponse{}, err
			}
			params.DateOfBirth = dob
		}
	}
	if req.ProfilePicture != nil {
		trimmed := strings.TrimSpace(*req.ProfilePicture)
		params.ProfilePicture = &trimmed
	}
	if req.Bio != nil {
		if err := domain.ValidateBio(*req.Bio); err != nil {
			return ProfileResponse{}, err
		}
		trimmed := strings.TrimSpace(*req.Bio)
		params.Bio = &trimmed
	}
	if req.Preferences != nil {
		if req.Preferences.Theme != nil {
			theme, err := domain.ParseTheme(*req.Preferences.Theme)
			if err != nil {
				return ProfileResponse{}, err
			}
			params.Theme = &theme
		}
		params.NotifyEmail = req.Preferences.NotifyEmail
		params.NotifyPush = req.Preferences.NotifyPush
	}
	if err := s.reserveIdempotency(ctx, idempotencyKey, req); err != nil {
		return ProfileResponse{}, err
	}
	params.UpdatedAt = s.nowFn()

	updated, err := s.profiles.Update(ctx, params)
	if err != nil {
		return ProfileResponse{}, err
	}

	_ = s.enqueueProfileEvent(ctx, "profile.updated", updated)
	if err := s.cache.Delete(ctx, publicProfileCacheKey(updated.ProfileID)); err != nil {
		s.logCacheFailure(ctx, "invalidate_public_profile", err)
	}
	return toProfileResponse(updated), nil
}

// DeleteProfile soft-deletes the given active profile. The row is kept; only
// the active flag flips, so a later create for the same subject is allowed.
// Instead of dropping the public cache entry, the key is overwritten with a
// tombstone: a deleted profile id never becomes active again, and the marker
// keeps a concurrent public read from re-caching the row it loaded just
// before the delete committed.
func (s *Service) DeleteProfile(ctx context.Context, profile domain.Profile) error {
	if err := s.profiles.SoftDelete(ctx, profile.SubjectID, s.nowFn()); err != nil {
		return err
	}
	_ = s.enqueueProfileEvent(ctx, "profile.deleted", profile)
	key := publicProfileCacheKey(profile.ProfileID)
	if err := s.cache.Set(ctx, key, publicProfileTombstone, s.cfg.PublicProfileCacheTTL); err != nil {
		s.logCacheFailure(ctx, "tombstone_public_profile", err)
	}
	return nil
}

func (s *Service) GetPublicProfile(ctx context.Context, profileID uuid.UUID) (PublicProfileResponse, error) {
	cacheKey := publicProfileCacheKey(profileID)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		if cached == publicProfileTombstone {
			return PublicProfileResponse{}, domain.ErrNotFound
		}
		var resp PublicProfileResponse
		if unmarshalErr := json.Unmarshal([]byte(cached), &resp); unmarshalErr == nil {
			return resp, nil
		}
	}

	profile, err := s.profiles.GetActiveByID(ctx, profileID)
	if err != nil {
		return PublicProfileResponse{}, err
	}

	resp := toPublicProfileResponse(profile)
	if raw, marshalErr := json.Marshal(resp); marshalErr == nil {
		// Re-check before caching: a delete may have tombstoned the key while
		// this read was loading the row. The tombstone must not be overwritten.
		if current, getErr := s.cache.Get(ctx, cacheKey); getErr == nil && current == publicProfileTombstone {
			return PublicProfileResponse{}, domain.ErrNotFound
		}
		if setErr := s.cache.Set(ctx, cacheKey, string(raw), s.cfg.PublicProfileCacheTTL); setErr != nil {
			s.logCacheFailure(ctx, "cache_public_profile", setErr)
		}
	}
	return resp, nil
}

func parseDateOfBirth(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateOfBirthLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", domain.ErrInvalidInput)
	}
	if t.After(time.Now().UTC()) {
		return nil, fmt.Errorf("%w: date_of_birth cannot be in the future", domain.ErrInvalidInput)
	}
	return &t, nil
}
