package settings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type fakeSettingsRepo struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]settings.Settings
	getErr    error
	insertErr error
	upsertErr error
	getGate   chan struct{}
	gets      int
	inserts   int
	upserts   int

	// row another device wrote between our read and insert; installed when
	// insertErr fires so the follow-up read observes it
	conflictRow *settings.Settings
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{rows: map[uuid.UUID]settings.Settings{}}
}

func (f *fakeSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (settings.Settings, error) {
	f.mu.Lock()
	gate := f.getGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return settings.Settings{}, f.getErr
	}
	row, ok := f.rows[userID]
	if !ok {
		return settings.Settings{}, apperror.NewNotFound("user_settings", userID.String())
	}
	return row, nil
}

func (f *fakeSettingsRepo) Insert(ctx context.Context, userID uuid.UUID, s settings.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		if f.conflictRow != nil {
			f.rows[userID] = *f.conflictRow
		}
		return f.insertErr
	}
	if _, ok := f.rows[userID]; ok {
		return apperror.NewConflict("user_settings", "user_id", userID.String())
	}
	f.rows[userID] = s
	return nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, userID uuid.UUID, s settings.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[userID] = s
	return nil
}

func (f *fakeSettingsRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, userID)
	return nil
}

func (f *fakeSettingsRepo) row(userID uuid.UUID) (settings.Settings, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[userID]
	return row, ok
}

type fakeCache struct {
	mu       sync.Mutex
	value    *settings.Settings
	loadErr  error
	storeErr error
	stores   int
}

func (f *fakeCache) Load(ctx context.Context) (settings.Settings, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return settings.Settings{}, false, f.loadErr
	}
	if f.value == nil {
		return settings.Settings{}, false, nil
	}
	return *f.value, true, nil
}

func (f *fakeCache) Store(ctx context.Context, s settings.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stores++
	if f.storeErr != nil {
		return f.storeErr
	}
	cp := s
	f.value = &cp
	return nil
}

func (f *fakeCache) stored() *settings.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.value == nil {
		return nil
	}
	cp := *f.value
	return &cp
}

func waitForSettings(t *testing.T, s *Synchronizer, cond func(settings.Settings) bool) {
	t.Helper()
	assert.Eventually(t, func() bool { return cond(s.Settings()) },
		2*time.Second, 5*time.Millisecond)
}

func TestSetIdentity_AnonymousUsesCachedValue(t *testing.T) {
	repo := newFakeSettingsRepo()
	cache := &fakeCache{}
	cached := settings.Defaults()
	cached.Language = "hi"
	cached.ThemeMode = settings.ThemeModeDark
	cache.value = &cached

	s := NewSynchronizer(repo, cache, logger.NewNop())
	assert.True(t, s.Loading())

	s.SetIdentity(context.Background(), nil)

	assert.False(t, s.Loading())
	assert.Equal(t, "hi", s.Settings().Language)
	assert.Equal(t, settings.ThemeModeDark, s.Settings().ThemeMode)

	// nothing remote happens without an identity
	repo.mu.Lock()
	assert.Zero(t, repo.gets)
	repo.mu.Unlock()
}

func TestSetIdentity_AnonymousWithoutCacheFallsBackToDefaults(t *testing.T) {
	s := NewSynchronizer(newFakeSettingsRepo(), &fakeCache{}, logger.NewNop())

	s.SetIdentity(context.Background(), nil)

	assert.False(t, s.Loading())
	assert.Equal(t, settings.Defaults(), s.Settings())
}

func TestSetIdentity_CacheFailureStillResolves(t *testing.T) {
	cache := &fakeCache{loadErr: apperror.NewTransient("cache down", nil)}
	s := NewSynchronizer(newFakeSettingsRepo(), cache, logger.NewNop())

	s.SetIdentity(context.Background(), nil)

	assert.False(t, s.Loading())
	assert.Equal(t, settings.Defaults(), s.Settings())
}

func TestSetIdentity_RemoteRowWins(t *testing.T) {
	userID := uuid.New()
	repo := newFakeSettingsRepo()
	remote := settings.Defaults()
	remote.Language = "hi"
	remote.FontSize = settings.FontLarge
	repo.rows[userID] = remote

	cache := &fakeCache{}
	local := settings.Defaults()
	local.Language = "en"
	cache.value = &local

	s := NewSynchronizer(repo, cache, logger.NewNop())
	s.SetIdentity(context.Background(), &userID)

	waitForSettings(t, s, func(v settings.Settings) bool { return v.Language == "hi" })
	assert.Equal(t, settings.FontLarge, s.Settings().FontSize)

	// the winning value is mirrored back to the cache
	assert.Eventually(t, func() bool {
		v := cache.stored()
		return v != nil && v.Language == "hi"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSetIdentity_MissingRowSeededFromLocalValue(t *testing.T) {
	userID := uuid.New()
	repo := newFakeSettingsRepo()
	cache := &fakeCache{}
	local := settings.Defaults()
	local.Density = settings.DensityCompact
	cache.value = &local

	s := NewSynchronizer(repo, cache, logger.NewNop())
	s.SetIdentity(context.Background(), &userID)

	assert.Eventually(t, func() bool {
		row, ok := repo.row(userID)
		return ok && row.Density == settings.DensityCompact
	}, 2*time.Second, 5*time.Millisecond)

	// local value stays in effect
	assert.Equal(t, settings.DensityCompact, s.Settings().Density)
}

func TestSetIdentity_SeedConflictAdoptsRemoteRow(t *testing.T) {
	userID := uuid.New()
	repo := newFakeSettingsRepo()
	repo.insertErr = apperror.NewConflict("user_settings", "user_id", userID.String())
	winner := settings.Defaults()
	winner.Language = "hi"

	repo.conflictRow = &winner

	s := NewSynchronizer(repo, &fakeCache{}, logger.NewNop())
	s.SetIdentity(context.Background(), &userID)

	waitForSettings(t, s, func(v settings.Settings) bool { return v.Language == "hi" })

	repo.mu.Lock()
	assert.Equal(t, 1, repo.inserts)
	repo.mu.Unlock()
}

func TestSetIdentity_RemoteFailureKeepsLocalValues(t *testing.T) {
	userID := uuid.New()
	repo := newFakeSettingsRepo()
	repo.getErr = apperror.NewTransient("directory down", nil)
	cache := &fakeCache{}
	local := settings.Defaults()
	local.Language = "hi"
	cache.value = &local

	s := NewSynchronizer(repo, cache, logger.NewNop())
	s.SetIdentity(context.Background(), &userID)

	assert.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.gets > 0
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, "hi", s.Settings().Language)
	assert.False(t, s.Loading())
}

func TestSetIdentity_StaleReconciliationDiscarded(t *testing.T) {
	first := uuid.New()
	second := uuid.New()
	repo := newFakeSettingsRepo()
	firstRow := settings.Defaults()
	firstRow.Language = "fr"
	repo.rows[first] = firstRow
	secondRow := settings.Defaults()
	secondRow.Language = "hi"
	repo.rows[second] = secondRow

	gate := make(chan struct{})
	repo.mu.Lock()
	repo.getGate = gate
	repo.mu.Unlock()

	s := NewSynchronizer(repo, &fakeCache{}, logger.NewNop())
	s.SetIdentity(context.Background(), &first)

	// identity switches while the first fetch is in flight
	repo.mu.Lock()
	repo.getGate = nil
	repo.mu.Unlock()
	s.SetIdentity(context.Background(), &second)
	close(gate)

	waitForSettings(t, s, func(v settings.Settings) bool { return v.Language == "hi" })
	assert.Never(t, func() bool { return s.Settings().Language == "fr" },
		200*time.Millisecond, 10*time.Millisecond)
}

func TestUpdate_AnonymousIsLocalOnly(t *testing.T) {
	repo := newFakeSettingsRepo()
	cache := &fakeCache{}
	s := NewSynchronizer(repo, cache, logger.NewNop())
	s.SetIdentity(context.Background(), nil)

	mode := settings.ThemeModeDark
	assert.NoError(t, s.Update(context.Background(), settings.Patch{ThemeMode: &mode}))

	assert.Equal(t, settings.ThemeModeDark, s.Settings().ThemeMode)
	v := cache.stored()
	assert.NotNil(t, v)
	assert.Equal(t, settings.ThemeModeDark, v.ThemeMode)

	repo.mu.Lock()
	assert.Zero(t, repo.upserts)
	repo.mu.Unlock()
}

func TestUpdate_PersistsForResolvedIdentity(t *testing.T) {
	userID := uuid.New()
	repo := newFakeSettingsRepo()
	repo.rows[userID] = settings.Defaults()
	s := NewSynchronizer(repo, &fakeCache{}, logger.NewNop())
	s.SetIdentity(context.Background(), &userID)
	waitForSettings(t, s, func(v settings.Settings) bool { return !s.Loading() })

	size := settings.FontLarge
	assert.NoError(t, s.Update(context.Background(), settings.Patch{FontSize: &size}))

	row, _ := repo.row(userID)
	assert.Equal(t, settings.FontLarge, row.FontSize)
}

func TestUpdate_RemoteFailureKeepsOptimisticValue(t *testing.T) {
	userID := uuid.New()
	repo := newFakeSettingsRepo()
	repo.rows[userID] = settings.Defaults()
	cache := &fakeCache{}
	s := NewSynchronizer(repo, cache, logger.NewNop())
	s.SetIdentity(context.Background(), &userID)
	waitForSettings(t, s, func(v settings.Settings) bool { return !s.Loading() })

	repo.mu.Lock()
	repo.upsertErr = apperror.NewTransient("directory down", nil)
	repo.mu.Unlock()

	mode := settings.ThemeModeDark
	err := s.Update(context.Background(), settings.Patch{ThemeMode: &mode})

	assert.ErrorIs(t, err, apperror.ErrTransient)
	// no rollback: the local value and cache keep the update
	assert.Equal(t, settings.ThemeModeDark, s.Settings().ThemeMode)
	v := cache.stored()
	assert.NotNil(t, v)
	assert.Equal(t, settings.ThemeModeDark, v.ThemeMode)
}

func TestUpdate_CookieOptOutPropagates(t *testing.T) {
	s := NewSynchronizer(newFakeSettingsRepo(), &fakeCache{}, logger.NewNop())
	s.SetIdentity(context.Background(), nil)

	on := true
	assert.NoError(t, s.Update(context.Background(), settings.Patch{AllowAnalytics: &on}))
	assert.True(t, s.Settings().AllowAnalytics)

	off := false
	assert.NoError(t, s.Update(context.Background(), settings.Patch{AllowCookies: &off}))
	assert.False(t, s.Settings().AllowAnalytics)
	assert.False(t, s.Settings().AllowMarketing)
}

func TestOnChange_NotifiesAndUnsubscribes(t *testing.T) {
	s := NewSynchronizer(newFakeSettingsRepo(), &fakeCache{}, logger.NewNop())
	s.SetIdentity(context.Background(), nil)

	var mu sync.Mutex
	var seen []settings.ThemeMode
	unsub := s.OnChange(func(v settings.Settings) {
		mu.Lock()
		seen = append(seen, v.ThemeMode)
		mu.Unlock()
	})

	dark := settings.ThemeModeDark
	assert.NoError(t, s.Update(context.Background(), settings.Patch{ThemeMode: &dark}))

	mu.Lock()
	assert.Equal(t, []settings.ThemeMode{settings.ThemeModeDark}, seen)
	mu.Unlock()

	unsub()
	light := settings.ThemeModeLight
	assert.NoError(t, s.Update(context.Background(), settings.Patch{ThemeMode: &light}))

	mu.Lock()
	assert.Len(t, seen, 1)
	mu.Unlock()
}
