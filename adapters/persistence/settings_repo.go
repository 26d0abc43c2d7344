package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type postgresSettingsRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSettingsRepo(db *pgxpool.Pool, log logger.Logger) settings.Repository {
	return &postgresSettingsRepo{db: db, logger: log}
}

func (r *postgresSettingsRepo) Get(ctx context.Context, userID uuid.UUID) (settings.Settings, error) {
	query := `
		SELECT language, theme_mode, font_size, density, border_radius,
		       auto_logout_minutes, allow_cookies, allow_analytics, allow_marketing
		FROM user_settings
		WHERE user_id = $1
	`
	var s settings.Settings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.Language,
		&s.ThemeMode,
		&s.FontSize,
		&s.Density,
		&s.BorderRadius,
		&s.AutoLogoutMinutes,
		&s.AllowCookies,
		&s.AllowAnalytics,
		&s.AllowMarketing,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return settings.Settings{}, apperror.NewNotFound("user_settings", userID.String())
		}
		return settings.Settings{}, apperror.NewTransient("failed to query settings", err)
	}
	return s, nil
}

func (r *postgresSettingsRepo) Insert(ctx context.Context, userID uuid.UUID, s settings.Settings) error {
	query := `
		INSERT INTO user_settings
			(user_id, language, theme_mode, font_size, density, border_radius,
			 auto_logout_minutes, allow_cookies, allow_analytics, allow_marketing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		userID,
		s.Language,
		s.ThemeMode,
		s.FontSize,
		s.Density,
		s.BorderRadius,
		s.AutoLogoutMinutes,
		s.AllowCookies,
		s.AllowAnalytics,
		s.AllowMarketing,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("user_settings", "user_id", userID.String())
		}
		return apperror.NewTransient("failed to insert settings", err)
	}
	return nil
}

func (r *postgresSettingsRepo) Upsert(ctx context.Context, userID uuid.UUID, s settings.Settings) error {
	query := `
		INSERT INTO user_settings
			(user_id, language, theme_mode, font_size, density, border_radius,
			 auto_logout_minutes, allow_cookies, allow_analytics, allow_marketing)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			theme_mode = EXCLUDED.theme_mode,
			font_size = EXCLUDED.font_size,
			density = EXCLUDED.density,
			border_radius = EXCLUDED.border_radius,
			auto_logout_minutes = EXCLUDED.auto_logout_minutes,
			allow_cookies = EXCLUDED.allow_cookies,
			allow_analytics = EXCLUDED.allow_analytics,
			allow_marketing = EXCLUDED.allow_marketing,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query,
		userID,
		s.Language,
		s.ThemeMode,
		s.FontSize,
		s.Density,
		s.BorderRadius,
		s.AutoLogoutMinutes,
		s.AllowCookies,
		s.AllowAnalytics,
		s.AllowMarketing,
	)

	if err != nil {
		return apperror.NewTransient("failed to upsert settings", err)
	}
	return nil
}

func (r *postgresSettingsRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM user_settings WHERE user_id = $1`, userID)
	if err != nil {
		return apperror.NewTransient("failed to delete settings", err)
	}
	return nil
}
