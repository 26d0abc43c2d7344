package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

var tracer = otel.Tracer("settings_sync")

// Synchronizer keeps one coherent Settings value durable across the local
// cache and the remote row. Local cache wins at first paint; the remote
// row wins once an identity is resolved. Every remote task captures the
// epoch at start so results for a superseded identity are discarded.
type Synchronizer struct {
	remote settings.Repository
	cache  settings.Cache
	logger logger.Logger

	mu           sync.Mutex
	current      settings.Settings
	loading      bool
	epoch        uint64
	userID       *uuid.UUID
	listeners    map[int]func(settings.Settings)
	nextListener int

	runCtx context.Context
}

func NewSynchronizer(remote settings.Repository, cache settings.Cache, log logger.Logger) *Synchronizer {
	return &Synchronizer{
		remote:    remote,
		cache:     cache,
		logger:    log,
		current:   settings.Defaults(),
		loading:   true,
		listeners: map[int]func(settings.Settings){},
		runCtx:    context.Background(),
	}
}

// SetIdentity re-resolves settings for a new identity (nil for anonymous).
// The local snapshot lands synchronously; remote reconciliation runs as a
// background task keyed by the epoch captured here.
func (s *Synchronizer) SetIdentity(ctx context.Context, userID *uuid.UUID) {
	s.mu.Lock()
	s.epoch++
	ep := s.epoch
	if userID != nil {
		v := *userID
		s.userID = &v
	} else {
		s.userID = nil
	}
	s.mu.Unlock()

	snap := settings.Defaults()
	cached, ok, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("settings cache read failed, using defaults", zap.Error(err))
	} else if ok {
		snap = cached
	}
	s.commit(ep, snap)

	if userID == nil {
		return
	}
	go s.reconcile(s.runCtx, ep, *userID)
}

// reconcile fetches the remote row for the identity the task was started
// for. The remote value replaces the local one; a missing row is seeded
// from the value currently in memory so a first-time user's defaults
// become their durable baseline.
func (s *Synchronizer) reconcile(ctx context.Context, ep uint64, userID uuid.UUID) {
	ctx, span := tracer.Start(ctx, "reconcile")
	defer span.End()

	row, err := s.remote.Get(ctx, userID)
	switch {
	case err == nil:
		s.commit(ep, row)
	case errors.Is(err, apperror.ErrNotFound):
		seed := s.snapshotFor(ep)
		if seed == nil {
			return
		}
		insertErr := s.remote.Insert(ctx, userID, *seed)
		if insertErr == nil {
			return
		}
		if errors.Is(insertErr, apperror.ErrConflict) {
			// another device seeded first; its row wins
			if row, err := s.remote.Get(ctx, userID); err == nil {
				s.commit(ep, row)
			}
			return
		}
		span.RecordError(insertErr)
		s.logger.Warn("could not seed settings row", zap.Error(insertErr),
			zap.String("user_id", userID.String()))
	default:
		span.RecordError(err)
		s.logger.Warn("settings fetch failed, keeping local values", zap.Error(err),
			zap.String("user_id", userID.String()))
	}
}

// snapshotFor returns the current value if the epoch is still live.
func (s *Synchronizer) snapshotFor(ep uint64) *settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ep != s.epoch {
		return nil
	}
	cp := s.current
	return &cp
}

// commit installs a resolved value if no newer resolution has started,
// mirrors it to the local cache, and flips loading off. The in-memory
// value is always a whole-object replacement, never a torn field mix.
func (s *Synchronizer) commit(ep uint64, next settings.Settings) {
	s.mu.Lock()
	if ep != s.epoch {
		s.mu.Unlock()
		s.logger.Debug("discarding stale settings resolution", zap.Uint64("epoch", ep))
		return
	}
	s.current = next
	s.loading = false
	fns := s.listenerList()
	s.mu.Unlock()

	if err := s.cache.Store(s.runCtx, next); err != nil {
		s.logger.Warn("settings cache write failed", zap.Error(err))
	}
	for _, fn := range fns {
		fn(next)
	}
}

// Update applies the patch optimistically: the in-memory value and local
// cache always take it; the remote upsert may fail and is reported to the
// caller without rolling the in-memory value back.
func (s *Synchronizer) Update(ctx context.Context, p settings.Patch) error {
	s.mu.Lock()
	next := s.current.Apply(p)
	s.current = next
	var userID *uuid.UUID
	if s.userID != nil {
		v := *s.userID
		userID = &v
	}
	fns := s.listenerList()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}

	if err := s.cache.Store(ctx, next); err != nil {
		s.logger.Warn("settings cache write failed", zap.Error(err))
	}

	if userID == nil {
		return nil
	}
	if err := s.remote.Upsert(ctx, *userID, next); err != nil {
		s.logger.Warn("settings upsert failed, local value kept", zap.Error(err),
			zap.String("user_id", userID.String()))
		return apperror.NewTransient("could not save settings", err)
	}
	return nil
}

// Settings returns the current resolved value.
func (s *Synchronizer) Settings() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Loading is true until the first resolution pass (local or remote)
// completes. Failure paths still resolve it.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// OnChange registers a listener for every installed Settings value.
func (s *Synchronizer) OnChange(fn func(settings.Settings)) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Synchronizer) listenerList() []func(settings.Settings) {
	fns := make([]func(settings.Settings), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	return fns
}
