package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

// fakeProfileRepo mirrors the store contract in memory, including the
// one-active-profile-per-subject constraint enforced under a single lock.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]domain.Profile

	lookupCalls int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]domain.Profile)}
}

func (f *fakeProfileRepo) Create(_ context.Context, params ports.CreateProfileParams) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.SubjectID == params.SubjectID && p.IsActive {
			return domain.Profile{}, domain.ErrAlreadyExists
		}
	}
	profile := domain.Profile{
		ProfileID:   uuid.New(),
		SubjectID:   params.SubjectID,
		Name:        params.Name,
		Gender:      params.Gender,
		City:        params.City,
		Email:       params.Email,
		Phone:       params.Phone,
		DateOfBirth: params.DateOfBirth,
		Bio:         params.Bio,
		IsActive:    true,
		Preferences: domain.Preferences{Theme: domain.ThemeLight, NotifyEmail: true, NotifyPush: true},
		CreatedAt:   params.CreatedAt,
		UpdatedAt:   params.CreatedAt,
	}
	f.profiles[profile.ProfileID] = profile
	return profile, nil
}

func (f *fakeProfileRepo) GetActiveBySubject(_ context.Context, subjectID string) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	for _, p := range f.profiles {
		if p.SubjectID == subjectID && p.IsActive {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (f *fakeProfileRepo) GetActiveByID(_ context.Context, profileID uuid.UUID) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupCalls++
	p, ok := f.profiles[profileID]
	if !ok || !p.IsActive {
		return domain.Profile{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, params ports.UpdateProfileParams) (domain.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.profiles {
		if p.SubjectID != params.SubjectID || !p.IsActive {
			continue
		}
		if params.Name != nil {
			p.Name = *params.Name
		}
		if params.Gender != nil {
			p.Gender = *params.Gender
		}
		if params.City != nil {
			p.City = *params.City
		}
		if params.Phone != nil {
			p.Phone = *params.Phone
		}
		if params.ClearDateOfBirth {
			p.DateOfBirth = nil
		} else if params.DateOfBirth != nil {
			p.DateOfBirth = params.DateOfBirth
		}
		if params.ProfilePicture != nil {
			p.ProfilePicture = *params.ProfilePicture
		}
		if params.Bio != nil {
			p.Bio = *params.Bio
		}
		if params.Theme != nil {
			p.Preferences.Theme = *params.Theme
		}
		if params.NotifyEmail != nil {
			p.Preferences.NotifyEmail = *params.NotifyEmail
		}
		if params.NotifyPush != nil {
			p.Preferences.NotifyPush = *params.NotifyPush
		}
		p.UpdatedAt = params.UpdatedAt
		f.profiles[id] = p
		return p, nil
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (f *fakeProfileRepo) SoftDelete(_ context.Context, subjectID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.profiles {
		if p.SubjectID == subjectID && p.IsActive {
			p.IsActive = false
			p.UpdatedAt = now
			f.profiles[id] = p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeProfileRepo) TouchLastLogin(_ context.Context, subjectID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.profiles {
		if p.SubjectID == subjectID && p.IsActive {
			p.LastLogin = &now
			f.profiles[id] = p
			return nil
		}
	}
	return nil
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (f *fakeOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(context.Context, int) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkPublished(context.Context, uuid.UUID, time.Time) error { return nil }

func (f *fakeOutbox) MarkFailed(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (f *fakeOutbox) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, e := range f.events {
		types = append(types, e.EventType)
	}
	return types
}

type fakeIdempotency struct {
	mu     sync.Mutex
	hashes map[string]string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{hashes: make(map[string]string)}
}

func (f *fakeIdempotency) Reserve(_ context.Context, key, requestHash string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.hashes[key]; ok && existing != requestHash {
		return domain.ErrIdempotencyConflict
	}
	f.hashes[key] = requestHash
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[key], nil
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = value
	return nil
}

func (f *fakeCache) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

type fakeVerifier struct {
	claims ports.IdentityClaims
	err    error
}

func (f *fakeVerifier) Verify(context.Context, string) (ports.IdentityClaims, error) {
	if f.err != nil {
		return ports.IdentityClaims{}, f.err
	}
	return f.claims, nil
}

func newTestService(repo *fakeProfileRepo, outbox *fakeOutbox, verifier ports.TokenVerifier) *Service {
	if verifier == nil {
		verifier = &fakeVerifier{claims: ports.IdentityClaims{
			Subject:       "subject-1",
			Email:         "jane@example.com",
			EmailVerified: true,
			Username:      "jane",
			TokenUse:      "id",
		}}
	}
	return NewService(Dependencies{
		Profiles:    repo,
		Outbox:      outbox,
		Idempotency: newFakeIdempotency(),
		Verifier:    verifier,
		Cache:       newFakeCache(),
	})
}
