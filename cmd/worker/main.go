package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/adapters/event"
	"github.com/reclaimhq/reclaim/adapters/persistence"
	identityUC "github.com/reclaimhq/reclaim/internal/application/usecase/identity"
	"github.com/reclaimhq/reclaim/internal/config"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting Reclaim account worker")

	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	credentialRepo := persistence.NewPostgresCredentialRepo(dbPool)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	settingsRepo := persistence.NewPostgresSettingsRepo(dbPool, appLogger)

	removalUC := identityUC.NewRemovalUseCase(credentialRepo, profileRepo, settingsRepo, appLogger)

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicAccountEvents,
		GroupID:  "account-removal-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicAccountEvents))

	ctx := context.Background()
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			appLogger.Error("failed to read message", err)
			continue
		}

		var req event.AccountRemoval
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			appLogger.Error("failed to decode removal request, skipping", err)
			commitMessage(consumer, msg, appLogger)
			continue
		}

		if err := removalUC.Execute(ctx, req.UserID); err != nil {
			// leave uncommitted so the removal is retried
			appLogger.Error("failed to remove account", err, zap.String("user_id", req.UserID.String()))
			continue
		}

		commitMessage(consumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, appLogger logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		appLogger.Error("failed to commit message", err)
	}
}
