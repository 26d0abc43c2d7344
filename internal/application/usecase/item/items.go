package item

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim/internal/application/service"
	"github.com/reclaimhq/reclaim/internal/domain/item"
	"github.com/reclaimhq/reclaim/pkg/apperror"
)

// ItemUseCase is a thin wrapper over the item store. The resolved
// identity id arrives as the creator foreign key; nothing here inspects
// the identity itself.
type ItemUseCase struct {
	itemRepo item.Repository
	uploader service.Uploader
}

func NewItemUseCase(repo item.Repository, uploader service.Uploader) *ItemUseCase {
	return &ItemUseCase{itemRepo: repo, uploader: uploader}
}

type ReportLostInput struct {
	CreatedBy        uuid.UUID
	Image            io.Reader
	Category         string
	LostDate         string
	Description      string
	PhoneNumber      string
	Organization     string
	OrganizationType item.OrganizationType
}

func (uc *ItemUseCase) ReportLost(ctx context.Context, input ReportLostInput) (*item.LostItem, error) {
	if input.Category == "" || input.LostDate == "" {
		return nil, apperror.NewInvalidInput("category and lost date are required", nil)
	}

	it := &item.LostItem{
		ID:               uuid.New(),
		CreatedBy:        input.CreatedBy,
		Category:         input.Category,
		LostDate:         input.LostDate,
		Description:      input.Description,
		PhoneNumber:      input.PhoneNumber,
		Organization:     input.Organization,
		OrganizationType: input.OrganizationType,
		CreatedAt:        time.Now().UTC(),
	}

	if input.Image != nil {
		url, err := uc.uploader.Upload(ctx, input.Image, "lost_items", it.ID.String())
		if err != nil {
			return nil, apperror.NewTransient("could not upload item image", err)
		}
		it.ImageURL = url
	}

	if err := uc.itemRepo.CreateLost(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

type ReportFoundInput struct {
	CreatedBy        uuid.UUID
	Image            io.Reader
	Location         string
	Description      string
	Organization     string
	OrganizationType item.OrganizationType
}

func (uc *ItemUseCase) ReportFound(ctx context.Context, input ReportFoundInput) (*item.FoundItem, error) {
	if input.Location == "" {
		return nil, apperror.NewInvalidInput("location is required", nil)
	}

	it := &item.FoundItem{
		ID:               uuid.New(),
		CreatedBy:        input.CreatedBy,
		Location:         input.Location,
		Description:      input.Description,
		Organization:     input.Organization,
		OrganizationType: input.OrganizationType,
		CreatedAt:        time.Now().UTC(),
	}

	if input.Image != nil {
		url, err := uc.uploader.Upload(ctx, input.Image, "found_items", it.ID.String())
		if err != nil {
			return nil, apperror.NewTransient("could not upload item image", err)
		}
		it.ImageURL = url
	}

	if err := uc.itemRepo.CreateFound(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (uc *ItemUseCase) ListLost(ctx context.Context, f item.Filter) ([]item.LostItem, error) {
	return uc.itemRepo.ListLost(ctx, f)
}

func (uc *ItemUseCase) ListFound(ctx context.Context, f item.Filter) ([]item.FoundItem, error) {
	return uc.itemRepo.ListFound(ctx, f)
}

func (uc *ItemUseCase) DeleteLost(ctx context.Context, id, createdBy uuid.UUID) error {
	return uc.itemRepo.DeleteLost(ctx, id, createdBy)
}

func (uc *ItemUseCase) DeleteFound(ctx context.Context, id, createdBy uuid.UUID) error {
	return uc.itemRepo.DeleteFound(ctx, id, createdBy)
}
