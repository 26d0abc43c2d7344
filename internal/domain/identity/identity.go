package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderTransgender Gender = "transgender"
)

// UserProfile is the resolved identity for one authenticated person. The
// durable row is the source of truth; in-memory values are caches.
type UserProfile struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	DateOfBirth string     `json:"dob"`
	Gender      Gender     `json:"gender"`
	PhoneNumber string     `json:"phone_number"`
	PictureRef  *string    `json:"picture_ref,omitempty"`
	Occupation  Occupation `json:"occupation"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// Complete reports whether the profile has passed explicit completion.
// Derived on every read, never stored.
func (p *UserProfile) Complete() bool {
	return p != nil &&
		p.ID != uuid.Nil &&
		p.Name != "" &&
		p.DateOfBirth != "" &&
		p.PhoneNumber != ""
}

// Patch carries the fields settable through profile completion/update.
// Nil means "leave unchanged".
type Patch struct {
	Name        *string
	DateOfBirth *string
	Gender      *Gender
	PhoneNumber *string
	PictureRef  *string
	Occupation  Occupation
}

// Apply merges the patch into a copy of p.
func (p UserProfile) Apply(patch Patch) UserProfile {
	next := p
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.DateOfBirth != nil {
		next.DateOfBirth = *patch.DateOfBirth
	}
	if patch.Gender != nil {
		next.Gender = *patch.Gender
	}
	if patch.PhoneNumber != nil {
		next.PhoneNumber = *patch.PhoneNumber
	}
	if patch.PictureRef != nil {
		next.PictureRef = patch.PictureRef
	}
	if patch.Occupation != nil {
		next.Occupation = patch.Occupation
	}
	return next
}

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*UserProfile, error)
	Insert(ctx context.Context, p *UserProfile) error
	Update(ctx context.Context, p *UserProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
}
