package persistence

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reclaimhq/reclaim/internal/domain/item"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type postgresItemRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresItemRepo(db *pgxpool.Pool, log logger.Logger) item.Repository {
	return &postgresItemRepo{db: db, logger: log}
}

var psqlItem = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *postgresItemRepo) CreateLost(ctx context.Context, it *item.LostItem) error {
	query := `
		INSERT INTO lost_items
			(id, created_by, image_url, category, lost_date, description, phone_number,
			 organization, organization_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		it.ID, it.CreatedBy, it.ImageURL, it.Category, it.LostDate, it.Description,
		it.PhoneNumber, it.Organization, it.OrganizationType, it.CreatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to insert lost item", err)
	}
	return nil
}

func (r *postgresItemRepo) ListLost(ctx context.Context, f item.Filter) ([]item.LostItem, error) {
	builder := psqlItem.
		Select("id", "created_by", "image_url", "category", "lost_date", "description",
			"phone_number", "organization", "organization_type", "created_at").
		From("lost_items").
		OrderBy("created_at DESC")
	builder = applyItemFilter(builder, f)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build lost item query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list lost items", err)
	}
	defer rows.Close()

	items := make([]item.LostItem, 0)
	for rows.Next() {
		var it item.LostItem
		if err := rows.Scan(
			&it.ID, &it.CreatedBy, &it.ImageURL, &it.Category, &it.LostDate, &it.Description,
			&it.PhoneNumber, &it.Organization, &it.OrganizationType, &it.CreatedAt,
		); err != nil {
			return nil, apperror.NewInternal("failed to scan lost item row", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating lost item rows", err)
	}
	return items, nil
}

func (r *postgresItemRepo) DeleteLost(ctx context.Context, id, createdBy uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM lost_items WHERE id = $1 AND created_by = $2`, id, createdBy)
	if err != nil {
		return apperror.NewInternal("failed to delete lost item", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("lost item", id.String())
	}
	return nil
}

func (r *postgresItemRepo) CreateFound(ctx context.Context, it *item.FoundItem) error {
	query := `
		INSERT INTO found_items
			(id, created_by, image_url, location, description, organization, organization_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		it.ID, it.CreatedBy, it.ImageURL, it.Location, it.Description,
		it.Organization, it.OrganizationType, it.CreatedAt,
	)
	if err != nil {
		return apperror.NewInternal("failed to insert found item", err)
	}
	return nil
}

func (r *postgresItemRepo) ListFound(ctx context.Context, f item.Filter) ([]item.FoundItem, error) {
	builder := psqlItem.
		Select("id", "created_by", "image_url", "location", "description",
			"organization", "organization_type", "created_at").
		From("found_items").
		OrderBy("created_at DESC")
	builder = applyItemFilter(builder, f)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build found item query", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewInternal("failed to list found items", err)
	}
	defer rows.Close()

	items := make([]item.FoundItem, 0)
	for rows.Next() {
		var it item.FoundItem
		if err := rows.Scan(
			&it.ID, &it.CreatedBy, &it.ImageURL, &it.Location, &it.Description,
			&it.Organization, &it.OrganizationType, &it.CreatedAt,
		); err != nil {
			return nil, apperror.NewInternal("failed to scan found item row", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewInternal("error iterating found item rows", err)
	}
	return items, nil
}

func (r *postgresItemRepo) DeleteFound(ctx context.Context, id, createdBy uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM found_items WHERE id = $1 AND created_by = $2`, id, createdBy)
	if err != nil {
		return apperror.NewInternal("failed to delete found item", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("found item", id.String())
	}
	return nil
}

func applyItemFilter(builder sq.SelectBuilder, f item.Filter) sq.SelectBuilder {
	if f.CreatedBy != nil {
		builder = builder.Where(sq.Eq{"created_by": *f.CreatedBy})
	}
	if f.Organization != "" {
		builder = builder.Where(sq.Eq{"organization": f.Organization})
	}
	return builder
}
