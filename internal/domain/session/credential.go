package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Credential is the session source's own record of how an identity signs
// in. OAuth identities carry no password hash.
type Credential struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash *string
	Provider     *string
	CreatedAt    time.Time
}

type CredentialRepository interface {
	FindByEmail(ctx context.Context, email string) (*Credential, error)
	Insert(ctx context.Context, c *Credential) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
