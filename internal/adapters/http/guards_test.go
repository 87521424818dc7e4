package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nimbuslabs/profile-gateway/internal/application"
	"github.com/nimbuslabs/profile-gateway/internal/domain"
	"github.com/nimbuslabs/profile-gateway/internal/ports"
)

type stubVerifier struct {
	claims ports.IdentityClaims
	err    error

	mu    sync.Mutex
	calls int
}

func (s *stubVerifier) Verify(context.Context, string) (ports.IdentityClaims, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return ports.IdentityClaims{}, s.err
	}
	return s.claims, nil
}

type stubProfileRepo struct {
	mu      sync.Mutex
	active  map[string]domain.Profile
	lookups int
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{active: make(map[string]domain.Profile)}
}

func (s *stubProfileRepo) seed(subjectID string) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile := domain.Profile{
		ProfileID: uuid.New(),
		SubjectID: subjectID,
		Name:      "Jane",
		Gender:    domain.GenderFemale,
		City:      "Lisbon",
		Email:     "jane@example.com",
		IsActive:  true,
		Preferences: domain.Preferences{
			Theme: domain.ThemeLight, NotifyEmail: true, NotifyPush: true,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.active[subjectID] = profile
	return profile
}

func (s *stubProfileRepo) Create(_ context.Context, params ports.CreateProfileParams) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.active[params.SubjectID]; exists {
		return domain.Profile{}, domain.ErrAlreadyExists
	}
	profile := domain.Profile{
		ProfileID: uuid.New(),
		SubjectID: params.SubjectID,
		Name:      params.Name,
		Gender:    params.Gender,
		City:      params.City,
		Email:     params.Email,
		IsActive:  true,
		CreatedAt: params.CreatedAt,
		UpdatedAt: params.CreatedAt,
	}
	s.active[params.SubjectID] = profile
	return profile, nil
}

func (s *stubProfileRepo) GetActiveBySubject(_ context.Context, subjectID string) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups++
	profile, ok := s.active[subjectID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	return profile, nil
}

func (s *stubProfileRepo) GetActiveByID(_ context.Context, profileID uuid.UUID) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.active {
		if p.ProfileID == profileID {
			return p, nil
		}
	}
	return domain.Profile{}, domain.ErrNotFound
}

func (s *stubProfileRepo) Update(_ context.Context, params ports.UpdateProfileParams) (domain.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.active[params.SubjectID]
	if !ok {
		return domain.Profile{}, domain.ErrNotFound
	}
	if params.City != nil {
		profile.City = *params.City
	}
	profile.UpdatedAt = params.UpdatedAt
	s.active[params.SubjectID] = profile
	return profile, nil
}

func (s *stubProfileRepo) SoftDelete(_ context.Context, subjectID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[subjectID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.active, subjectID)
	return nil
}

func (s *stubProfileRepo) TouchLastLogin(context.Context, string, time.Time) error { return nil }

type stubOutbox struct{}

func (stubOutbox) Enqueue(context.Context, ports.OutboxEvent) error { return nil }
func (stubOutbox) FetchUnpublished(context.Context, int) ([]ports.OutboxRecord, error) {
	return nil, nil
}
func (stubOutbox) MarkPublished(context.Context, uuid.UUID, time.Time) error { return nil }
func (stubOutbox) MarkFailed(context.Context, uuid.UUID, string, time.Time) error { return nil }

type stubIdempotency struct{}

func (stubIdempotency) Reserve(context.Context, string, string, time.Time) error { return nil }

type stubCache struct{}

func (stubCache) Get(context.Context, string) (string, error)              { return "", nil }
func (stubCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (stubCache) Delete(context.Context, ...string) error                  { return nil }

func newTestRouter(verifier ports.TokenVerifier, repo *stubProfileRepo) http.Handler {
	service := application.NewService(application.Dependencies{
		Profiles:    repo,
		Outbox:      stubOutbox{},
		Idempotency: stubIdempotency{},
		Verifier:    verifier,
		Cache:       stubCache{},
	})
	return NewRouter(NewHandler(service))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	var e apiError
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func verifiedClaims() ports.IdentityClaims {
	return ports.IdentityClaims{
		Subject:       "subject-1",
		Email:         "jane@example.com",
		EmailVerified: true,
		Username:      "jane",
		TokenUse:      "id",
	}
}

func TestMissingBearerRejectedBeforeVerification(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{claims: verifiedClaims()}
	router := newTestRouter(verifier, newStubProfileRepo())

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/verify", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "TOKEN_MALFORMED" {
		t.Fatalf("expected TOKEN_MALFORMED, got %q", e.Code)
	}
	if verifier.calls != 0 {
		t.Fatalf("verifier should not run without a bearer token")
	}
}

func TestExpiredTokenStopsGuardChain(t *testing.T) {
	t.Parallel()

	verifier := &stubVerifier{err: domain.ErrExpiredCredential}
	repo := newStubProfileRepo()
	router := newTestRouter(verifier, repo)

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "TOKEN_EXPIRED" {
		t.Fatalf("expected TOKEN_EXPIRED, got %q", e.Code)
	}
	if repo.lookups != 0 {
		t.Fatalf("store must not be touched after a failed authentication guard")
	}
}

func TestUnverifiedContactBlocksCreate(t *testing.T) {
	t.Parallel()

	claims := verifiedClaims()
	claims.EmailVerified = false
	repo := newStubProfileRepo()
	router := newTestRouter(&stubVerifier{claims: claims}, repo)

	body := strings.NewReader(`{"name":"Jane","gender":"female","city":"Lisbon"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "EMAIL_NOT_VERIFIED" {
		t.Fatalf("expected EMAIL_NOT_VERIFIED, got %q", e.Code)
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.active) != 0 {
		t.Fatalf("profile must not be created for unverified contact")
	}
}

func TestMissingProfileRejectedOnSelfRead(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubVerifier{claims: verifiedClaims()}, newStubProfileRepo())

	req := httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != "PROFILE_NOT_FOUND" {
		t.Fatalf("expected PROFILE_NOT_FOUND, got %q", e.Code)
	}
}

func TestProfileLifecycleOverHTTP(t *testing.T) {
	t.Parallel()

	repo := newStubProfileRepo()
	router := newTestRouter(&stubVerifier{claims: verifiedClaims()}, repo)

	body := strings.NewReader(`{"name":"Jane","gender":"female","city":"Lisbon"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/profiles", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/v1/profiles/me", strings.NewReader(`{"city":"Porto"}`))
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d body=%s", rec.Code, rec.Body.String())
	}

	profile := repo.active["subject-1"]
	req = httptest.NewRequest(http.MethodGet, "/v1/profiles/"+profile.ProfileID.String(), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on public read, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "jane@example.com") {
		t.Fatalf("public view must not expose email")
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/profiles/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
