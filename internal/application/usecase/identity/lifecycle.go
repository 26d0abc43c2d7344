package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/internal/domain/session"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type State int

const (
	StateUnresolved State = iota
	StateAnonymous
	StateResolving
	StateResolved
	StateError
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateError:
		return "error"
	default:
		return "unresolved"
	}
}

// AccountRemover triggers server-side removal of an identity's durable
// rows. The manager only requests removal; it never deletes rows itself.
type AccountRemover interface {
	RequestRemoval(ctx context.Context, userID uuid.UUID) error
}

var tracer = otel.Tracer("identity_lifecycle")

const idleCheckInterval = 30 * time.Second

// Manager turns the session event stream into a resolved UserProfile.
// Every resolution captures the epoch at start and commits only if no
// newer session event has arrived, so out-of-order completions can never
// leak another identity's profile.
type Manager struct {
	source   session.Source
	profiles identity.Repository
	remover  AccountRemover
	logger   logger.Logger

	mu           sync.Mutex
	state        State
	profile      *identity.UserProfile
	epoch        uint64
	lastErr      error
	listeners    map[int]func(*uuid.UUID)
	nextListener int
	autoLogout   *int
	lastActivity time.Time

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

func NewManager(src session.Source, profiles identity.Repository, remover AccountRemover, log logger.Logger) *Manager {
	return &Manager{
		source:    src,
		profiles:  profiles,
		remover:   remover,
		logger:    log,
		state:     StateUnresolved,
		listeners: map[int]func(*uuid.UUID){},
	}
}

// Start subscribes to the session source and performs the one-shot
// current-session check. Events arriving during the check win: the
// one-shot answer is only applied while the state is still Unresolved.
func (m *Manager) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	m.ctx = runCtx
	m.cancel = cancel
	m.unsubscribe = m.source.Subscribe(m.handleEvent)

	cur, err := m.source.Current(ctx)
	if err != nil {
		m.logger.Warn("current-session lookup failed, treating as signed out", zap.Error(err))
	}

	if cur != nil {
		m.mu.Lock()
		unresolved := m.state == StateUnresolved
		m.mu.Unlock()
		if unresolved {
			m.beginResolve(cur)
		}
	} else {
		m.mu.Lock()
		if m.state == StateUnresolved {
			m.state = StateAnonymous
		}
		m.mu.Unlock()
		m.notify(nil)
	}

	go m.idleWatch(runCtx)
	return nil
}

func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) handleEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventStarted:
		if ev.Session == nil {
			return
		}
		m.beginResolve(ev.Session)
	case session.EventEnded:
		m.mu.Lock()
		m.epoch++
		m.state = StateAnonymous
		m.profile = nil
		m.lastErr = nil
		m.mu.Unlock()
		m.notify(nil)
	}
}

func (m *Manager) beginResolve(s *session.Session) {
	sess := *s
	m.mu.Lock()
	m.epoch++
	ep := m.epoch
	m.state = StateResolving
	m.profile = nil
	m.lastErr = nil
	m.lastActivity = time.Now()
	m.mu.Unlock()
	go m.resolve(ep, sess)
}

func (m *Manager) resolve(ep uint64, sess session.Session) {
	ctx, span := tracer.Start(m.runContext(), "resolve")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", sess.UserID.String()))

	p, err := m.provision(ctx, sess)

	m.mu.Lock()
	if ep != m.epoch {
		m.mu.Unlock()
		m.logger.Debug("discarding stale profile resolution",
			zap.Uint64("epoch", ep), zap.String("user_id", sess.UserID.String()))
		return
	}
	if err != nil {
		m.state = StateError
		m.lastErr = err
		m.mu.Unlock()
		span.RecordError(err)
		m.logger.Error("profile resolution failed", err, zap.String("user_id", sess.UserID.String()))
		m.notify(nil)
		return
	}
	if sess.Email != "" {
		p.Email = sess.Email
	}
	m.state = StateResolved
	m.profile = p
	m.lastActivity = time.Now()
	m.mu.Unlock()

	id := p.ID
	m.notify(&id)
}

// provision reads the profile row, inserting a bare one on first sign-in.
// A unique-key conflict means another tab provisioned first; it is
// swallowed and followed by a re-read.
func (m *Manager) provision(ctx context.Context, sess session.Session) (*identity.UserProfile, error) {
	p, err := m.profiles.Get(ctx, sess.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	bare := &identity.UserProfile{
		ID:         sess.UserID,
		Email:      sess.Email,
		Gender:     identity.GenderMale,
		Occupation: identity.Student{},
		CreatedAt:  time.Now().UTC(),
	}
	err = m.profiles.Insert(ctx, bare)
	if err == nil {
		m.logger.Info("provisioned bare profile", zap.String("user_id", sess.UserID.String()))
		return bare, nil
	}
	if errors.Is(err, apperror.ErrConflict) {
		return m.profiles.Get(ctx, sess.UserID)
	}
	return nil, err
}

func (m *Manager) runContext() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return context.Background()
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Profile returns a copy of the resolved profile, or nil.
func (m *Manager) Profile() *identity.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.profile == nil {
		return nil
	}
	cp := *m.profile
	return &cp
}

// ProfileComplete is recomputed on every read, never cached.
func (m *Manager) ProfileComplete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateResolved && m.profile.Complete()
}

// OnIdentityChange registers a listener called with the resolved user id,
// or nil when the identity goes away. Returns an unregister func.
func (m *Manager) OnIdentityChange(fn func(userID *uuid.UUID)) func() {
	m.mu.Lock()
	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(userID *uuid.UUID) {
	m.mu.Lock()
	fns := make([]func(*uuid.UUID), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(userID)
	}
}

// Login delegates to the session source. The profile is not resolved here;
// resolution is driven by the SESSION_STARTED event.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.Touch()
	return m.source.BeginPasswordLogin(ctx, email, password)
}

func (m *Manager) OAuthLogin(ctx context.Context, provider, idToken string) error {
	m.Touch()
	return m.source.BeginOAuth(ctx, provider, idToken)
}

func (m *Manager) Register(ctx context.Context, email, password string) error {
	m.Touch()
	return m.source.BeginRegistration(ctx, email, password)
}

// Logout asks the source to end the session. The transition to Anonymous
// is driven by the SESSION_ENDED event, never performed optimistically.
func (m *Manager) Logout(ctx context.Context) error {
	return m.source.EndSession(ctx)
}

func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	return m.source.BeginPasswordReset(ctx, email)
}

// CompleteProfile merges the patch into the resolved profile, writing the
// remote row before the in-memory value. Idempotent: the same patch twice
// yields the same stored state.
func (m *Manager) CompleteProfile(ctx context.Context, patch identity.Patch) (*identity.UserProfile, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.state != StateResolved || m.profile == nil {
		m.mu.Unlock()
		return nil, apperror.NewNotAuthenticated("profile update requires a resolved identity")
	}
	ep := m.epoch
	next := m.profile.Apply(patch)
	m.mu.Unlock()

	if err := m.profiles.Update(ctx, &next); err != nil {
		return nil, err
	}

	m.mu.Lock()
	if ep == m.epoch && m.state == StateResolved {
		cp := next
		m.profile = &cp
	}
	m.mu.Unlock()
	return &next, nil
}

func validatePatch(p identity.Patch) error {
	if p.Name != nil && *p.Name == "" {
		return apperror.NewInvalidInput("name must not be empty", nil)
	}
	if p.DateOfBirth != nil && *p.DateOfBirth == "" {
		return apperror.NewInvalidInput("date of birth must not be empty", nil)
	}
	if p.PhoneNumber != nil && *p.PhoneNumber == "" {
		return apperror.NewInvalidInput("phone number must not be empty", nil)
	}
	return nil
}

// DeleteAccount requests server-side row removal and ends the session.
// The Anonymous transition follows from the SESSION_ENDED event.
func (m *Manager) DeleteAccount(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateResolved || m.profile == nil {
		m.mu.Unlock()
		return apperror.NewNotAuthenticated("account deletion requires a resolved identity")
	}
	userID := m.profile.ID
	m.mu.Unlock()

	if m.remover != nil {
		if err := m.remover.RequestRemoval(ctx, userID); err != nil {
			return apperror.NewTransient("could not request account removal", err)
		}
	}
	return m.source.EndSession(ctx)
}

// SetAutoLogout updates the idle timeout; nil disables it. Pushed back in
// by the preference synchronizer whenever settings resolve.
func (m *Manager) SetAutoLogout(minutes *int) {
	m.mu.Lock()
	if minutes != nil {
		v := *minutes
		m.autoLogout = &v
	} else {
		m.autoLogout = nil
	}
	m.mu.Unlock()
}

// Touch records user activity for the idle watchdog.
func (m *Manager) Touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

func (m *Manager) idleExpired(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateResolved || m.autoLogout == nil || *m.autoLogout <= 0 {
		return false
	}
	return now.Sub(m.lastActivity) >= time.Duration(*m.autoLogout)*time.Minute
}

func (m *Manager) idleWatch(ctx context.Context) {
	ticker := time.NewTicker(idleCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if m.idleExpired(now) {
				m.logger.Info("auto-logout after inactivity")
				if err := m.source.EndSession(ctx); err != nil {
					m.logger.Warn("auto-logout failed", zap.Error(err))
				}
			}
		}
	}
}
