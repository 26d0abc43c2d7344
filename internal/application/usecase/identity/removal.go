package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/internal/domain/session"
	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/apperror"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

// RemovalUseCase performs the server-side part of account deletion. It
// runs in the background worker, consuming removal requests published by
// the API process. Item rows go with the profile through the cascade.
type RemovalUseCase struct {
	credentials session.CredentialRepository
	profiles    identity.Repository
	settings    settings.Repository
	logger      logger.Logger
}

func NewRemovalUseCase(creds session.CredentialRepository, profiles identity.Repository, settingsRepo settings.Repository, log logger.Logger) *RemovalUseCase {
	return &RemovalUseCase{credentials: creds, profiles: profiles, settings: settingsRepo, logger: log}
}

// Execute removes every row owned by the user. Requests are delivered at
// least once, so missing rows are not an error.
func (uc *RemovalUseCase) Execute(ctx context.Context, userID uuid.UUID) error {
	if err := uc.settings.Delete(ctx, userID); err != nil {
		return err
	}
	if err := uc.credentials.Delete(ctx, userID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	if err := uc.profiles.Delete(ctx, userID); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}
	uc.logger.Info("account removed", zap.String("user_id", userID.String()))
	return nil
}
