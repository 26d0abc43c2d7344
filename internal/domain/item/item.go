package item

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrganizationType string

const (
	OrgSchool  OrganizationType = "school"
	OrgCollege OrganizationType = "college"
	OrgCompany OrganizationType = "company"
)

type LostItem struct {
	ID               uuid.UUID        `json:"id"`
	CreatedBy        uuid.UUID        `json:"created_by"`
	ImageURL         string           `json:"image_url"`
	Category         string           `json:"category"`
	LostDate         string           `json:"lost_date"`
	Description      string           `json:"description"`
	PhoneNumber      string           `json:"phone_number"`
	Organization     string           `json:"organization"`
	OrganizationType OrganizationType `json:"organization_type"`
	CreatedAt        time.Time        `json:"created_at"`
}

type FoundItem struct {
	ID               uuid.UUID        `json:"id"`
	CreatedBy        uuid.UUID        `json:"created_by"`
	ImageURL         string           `json:"image_url"`
	Location         string           `json:"location"`
	Description      string           `json:"description"`
	Organization     string           `json:"organization"`
	OrganizationType OrganizationType `json:"organization_type"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Filter narrows item listings; zero values mean "no constraint".
type Filter struct {
	CreatedBy    *uuid.UUID
	Organization string
}

type Repository interface {
	CreateLost(ctx context.Context, it *LostItem) error
	ListLost(ctx context.Context, f Filter) ([]LostItem, error)
	DeleteLost(ctx context.Context, id, createdBy uuid.UUID) error
	CreateFound(ctx context.Context, it *FoundItem) error
	ListFound(ctx context.Context, f Filter) ([]FoundItem, error)
	DeleteFound(ctx context.Context, id, createdBy uuid.UUID) error
}
