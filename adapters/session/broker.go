package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/internal/domain/session"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/auth"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

const (
	currentSessionKey = "reclaim:session:current"
	resetTokenPrefix  = "reclaim:pwreset:"
	resetTokenTTL     = 30 * time.Minute
)

// Bus is the slice of the event bus the broker needs.
type Bus interface {
	Publish(ctx context.Context, ev session.Event) error
	Subscribe(fn func(session.Event)) func()
}

type storedSession struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Token  string    `json:"token"`
}

// Broker is the concrete session source: credentials live in Postgres,
// the live session in Redis, and lifecycle transitions are announced on
// the event bus. It never returns a resolved profile.
type Broker struct {
	creds    session.CredentialRepository
	rdb      *redis.Client
	jwt      *auth.JWTService
	bus      Bus
	verifier OAuthVerifier
	logger   logger.Logger
}

func NewBroker(creds session.CredentialRepository, rdb *redis.Client, jwtSvc *auth.JWTService, bus Bus, verifier OAuthVerifier, log logger.Logger) *Broker {
	return &Broker{
		creds:    creds,
		rdb:      rdb,
		jwt:      jwtSvc,
		bus:      bus,
		verifier: verifier,
		logger:   log,
	}
}

func (b *Broker) Subscribe(fn func(session.Event)) func() {
	return b.bus.Subscribe(fn)
}

func (b *Broker) Current(ctx context.Context) (*session.Session, error) {
	raw, err := b.rdb.Get(ctx, currentSessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, apperror.NewTransient("session store unavailable", err)
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, apperror.NewInternal("corrupt stored session", err)
	}
	if _, err := b.jwt.ValidateToken(stored.Token); err != nil {
		// expired or tampered; treat as signed out
		b.rdb.Del(ctx, currentSessionKey)
		return nil, nil
	}
	return &session.Session{UserID: stored.UserID, Email: stored.Email}, nil
}

func (b *Broker) BeginPasswordLogin(ctx context.Context, email, password string) error {
	cred, err := b.creds.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NewNotAuthenticated("unknown email or wrong password")
		}
		return err
	}
	if cred.PasswordHash == nil || !auth.CheckPasswordHash(password, *cred.PasswordHash) {
		return apperror.NewNotAuthenticated("unknown email or wrong password")
	}
	return b.startSession(ctx, cred.UserID, cred.Email)
}

func (b *Broker) BeginOAuth(ctx context.Context, provider, idToken string) error {
	if b.verifier == nil {
		return apperror.NewInvalidInput("oauth is not configured", nil)
	}
	email, err := b.verifier.Verify(ctx, provider, idToken)
	if err != nil {
		return apperror.NewNotAuthenticated(fmt.Sprintf("%s token rejected", provider))
	}

	cred, err := b.creds.FindByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		p := provider
		cred = &session.Credential{
			UserID:    uuid.New(),
			Email:     email,
			Provider:  &p,
			CreatedAt: time.Now().UTC(),
		}
		insertErr := b.creds.Insert(ctx, cred)
		if errors.Is(insertErr, apperror.ErrConflict) {
			// raced another first sign-in for the same email
			cred, err = b.creds.FindByEmail(ctx, email)
			if err != nil {
				return err
			}
		} else if insertErr != nil {
			return insertErr
		}
	} else if err != nil {
		return err
	}

	return b.startSession(ctx, cred.UserID, cred.Email)
}

func (b *Broker) BeginRegistration(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return apperror.NewInvalidInput("email and password are required", nil)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return apperror.NewInternal("could not hash password", err)
	}

	cred := &session.Credential{
		UserID:       uuid.New(),
		Email:        email,
		PasswordHash: &hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := b.creds.Insert(ctx, cred); err != nil {
		return err
	}
	return b.startSession(ctx, cred.UserID, cred.Email)
}

func (b *Broker) EndSession(ctx context.Context) error {
	cur, err := b.Current(ctx)
	if err != nil {
		return err
	}
	if cur == nil {
		return nil
	}
	if err := b.rdb.Del(ctx, currentSessionKey).Err(); err != nil {
		return apperror.NewTransient("could not end session", err)
	}
	return b.bus.Publish(ctx, session.Event{Kind: session.EventEnded, Session: cur})
}

// BeginPasswordReset is fire-and-forget: the token is parked in Redis for
// the mail pipeline and the caller learns nothing about account existence.
func (b *Broker) BeginPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return apperror.NewInvalidInput("email is required", nil)
	}
	token := uuid.NewString()
	if err := b.rdb.Set(ctx, resetTokenPrefix+token, email, resetTokenTTL).Err(); err != nil {
		return apperror.NewTransient("could not store reset token", err)
	}
	b.logger.Info("password reset requested", zap.String("email", email))
	return nil
}

func (b *Broker) startSession(ctx context.Context, userID uuid.UUID, email string) error {
	token, err := b.jwt.GenerateToken(userID, email)
	if err != nil {
		return apperror.NewInternal("could not issue session token", err)
	}

	raw, err := json.Marshal(storedSession{UserID: userID, Email: email, Token: token})
	if err != nil {
		return apperror.NewInternal("could not encode session", err)
	}
	if err := b.rdb.Set(ctx, currentSessionKey, raw, b.jwt.TokenLifespan()).Err(); err != nil {
		return apperror.NewTransient("could not store session", err)
	}

	sess := &session.Session{UserID: userID, Email: email}
	return b.bus.Publish(ctx, session.Event{Kind: session.EventStarted, Session: sess})
}
