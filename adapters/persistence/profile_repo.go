package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type postgresProfileRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresProfileRepo(db *pgxpool.Pool, log logger.Logger) identity.Repository {
	return &postgresProfileRepo{db: db, logger: log}
}

func (r *postgresProfileRepo) Get(ctx context.Context, id uuid.UUID) (*identity.UserProfile, error) {
	query := `
		SELECT id, email, name, dob, gender, phone_number, picture_ref, occupation, created_at, last_login_at
		FROM profiles
		WHERE id = $1
	`
	p := &identity.UserProfile{}
	var occupationBytes []byte

	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Email,
		&p.Name,
		&p.DateOfBirth,
		&p.Gender,
		&p.PhoneNumber,
		&p.PictureRef,
		&occupationBytes,
		&p.CreatedAt,
		&p.LastLoginAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("profile", id.String())
		}
		return nil, apperror.NewInternal("failed to query profile", err)
	}

	occ, err := identity.UnmarshalOccupation(occupationBytes)
	if err != nil {
		return nil, apperror.NewInternal("failed to decode occupation", err)
	}
	p.Occupation = occ

	return p, nil
}

func (r *postgresProfileRepo) Insert(ctx context.Context, p *identity.UserProfile) error {
	occupationBytes, err := identity.MarshalOccupation(p.Occupation)
	if err != nil {
		return apperror.NewInternal("failed to encode occupation", err)
	}

	query := `
		INSERT INTO profiles (id, email, name, dob, gender, phone_number, picture_ref, occupation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID,
		p.Email,
		p.Name,
		p.DateOfBirth,
		p.Gender,
		p.PhoneNumber,
		p.PictureRef,
		occupationBytes,
		p.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("profile", "id", p.ID.String())
		}
		return apperror.NewInternal("failed to insert profile", err)
	}
	return nil
}

func (r *postgresProfileRepo) Update(ctx context.Context, p *identity.UserProfile) error {
	occupationBytes, err := identity.MarshalOccupation(p.Occupation)
	if err != nil {
		return apperror.NewInternal("failed to encode occupation", err)
	}

	query := `
		UPDATE profiles
		SET name = $2, dob = $3, gender = $4, phone_number = $5, picture_ref = $6, occupation = $7
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.DateOfBirth,
		p.Gender,
		p.PhoneNumber,
		p.PictureRef,
		occupationBytes,
	)

	if err != nil {
		return apperror.NewInternal("failed to update profile", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("profile", p.ID.String())
	}
	return nil
}

func (r *postgresProfileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return apperror.NewInternal("failed to delete profile", err)
	}
	return nil
}
