package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reclaimhq/reclaim/internal/domain/session"
	"github.com/reclaimhq/reclaim/pkg/apperror"
)

type postgresCredentialRepo struct {
	db *pgxpool.Pool
}

func NewPostgresCredentialRepo(db *pgxpool.Pool) session.CredentialRepository {
	return &postgresCredentialRepo{db: db}
}

func (r *postgresCredentialRepo) FindByEmail(ctx context.Context, email string) (*session.Credential, error) {
	query := `
		SELECT user_id, email, password_hash, provider, created_at
		FROM credentials
		WHERE email = $1
	`
	c := &session.Credential{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&c.UserID,
		&c.Email,
		&c.PasswordHash,
		&c.Provider,
		&c.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("credential", email)
		}
		return nil, apperror.NewInternal("failed to query credential", err)
	}
	return c, nil
}

func (r *postgresCredentialRepo) Insert(ctx context.Context, c *session.Credential) error {
	query := `
		INSERT INTO credentials (user_id, email, password_hash, provider, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, c.UserID, c.Email, c.PasswordHash, c.Provider, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("credential", "email", c.Email)
		}
		return apperror.NewInternal("failed to insert credential", err)
	}
	return nil
}

func (r *postgresCredentialRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID)
	if err != nil {
		return apperror.NewInternal("failed to delete credential", err)
	}
	return nil
}
