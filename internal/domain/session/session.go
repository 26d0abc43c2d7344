package session

import (
	"context"

	"github.com/google/uuid"
)

// Session is the identity asserted by the session source. The profile row
// is resolved separately; a session only carries the stable id and email.
type Session struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

type EventKind string

const (
	EventStarted EventKind = "SESSION_STARTED"
	EventEnded   EventKind = "SESSION_ENDED"
)

type Event struct {
	Kind    EventKind `json:"kind"`
	Session *Session  `json:"session,omitempty"`
}

// Source is the capability the identity lifecycle subscribes to. None of
// the begin* operations return a resolved profile; resolution happens
// through the event stream only.
type Source interface {
	Subscribe(fn func(Event)) (unsubscribe func())
	Current(ctx context.Context) (*Session, error)
	BeginPasswordLogin(ctx context.Context, email, password string) error
	BeginOAuth(ctx context.Context, provider, idToken string) error
	BeginRegistration(ctx context.Context, email, password string) error
	EndSession(ctx context.Context) error
	BeginPasswordReset(ctx context.Context, email string) error
}
