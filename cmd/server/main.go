package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reclaimhq/reclaim/adapters/event"
	httpAdapter "github.com/reclaimhq/reclaim/adapters/http"
	"github.com/reclaimhq/reclaim/adapters/media_storage"
	"github.com/reclaimhq/reclaim/adapters/persistence"
	sessionAdapter "github.com/reclaimhq/reclaim/adapters/session"
	identityUC "github.com/reclaimhq/reclaim/internal/application/usecase/identity"
	itemUC "github.com/reclaimhq/reclaim/internal/application/usecase/item"
	settingsUC "github.com/reclaimhq/reclaim/internal/application/usecase/settings"
	"github.com/reclaimhq/reclaim/internal/config"
	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/auth"
	"github.com/reclaimhq/reclaim/pkg/i18n"
	"github.com/reclaimhq/reclaim/pkg/logger"
	"github.com/reclaimhq/reclaim/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	appLogger.Info("Starting Reclaim API server", zap.String("port", cfg.App.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Jaeger.OTLPEndpoint != "" {
		tp, err := tracing.NewTracerProvider(cfg, appLogger, "reclaim-api")
		if err != nil {
			log.Fatalf("FATAL: cannot init tracing: %v", err)
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// Infrastructure
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Postgres: %v", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot connect Redis: %v", err)
	}
	defer redisClient.Close()

	sessionBus, err := event.NewSessionBus(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot init session bus: %v", err)
	}
	defer sessionBus.Close()
	go sessionBus.Run(ctx)

	// Repositories
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	settingsRepo := persistence.NewPostgresSettingsRepo(dbPool, appLogger)
	settingsCache := persistence.NewRedisSettingsCache(redisClient)
	credentialRepo := persistence.NewPostgresCredentialRepo(dbPool)
	itemRepo := persistence.NewPostgresItemRepo(dbPool, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	verifier := sessionAdapter.NewOAuthVerifier(cfg)
	broker := sessionAdapter.NewBroker(credentialRepo, redisClient, jwtSvc, sessionBus, verifier, appLogger)

	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		log.Fatalf("FATAL: cannot init uploader: %v", err)
	}

	translator, err := i18n.NewTranslator(cfg.I18n.LocalesDir)
	if err != nil {
		log.Fatalf("FATAL: cannot load locales: %v", err)
	}

	// Use cases
	manager := identityUC.NewManager(broker, profileRepo, sessionBus, appLogger)
	synchronizer := settingsUC.NewSynchronizer(settingsRepo, settingsCache, appLogger)
	itemUseCase := itemUC.NewItemUseCase(itemRepo, uploader)

	// Identity changes drive preference scope; auto logout follows the
	// synchronized settings.
	manager.OnIdentityChange(func(userID *uuid.UUID) {
		synchronizer.SetIdentity(ctx, userID)
	})
	synchronizer.OnChange(func(s settings.Settings) {
		manager.SetAutoLogout(s.AutoLogoutMinutes)
	})

	// Presentation projection
	doc := httpAdapter.NewDocumentState()
	relay := httpAdapter.NewColorSchemeRelay(settingsUC.ThemeLight)
	projector := settingsUC.NewProjector(synchronizer, relay, doc)

	// Local snapshot first, then the session source takes over.
	synchronizer.SetIdentity(ctx, nil)
	projector.Start()
	defer projector.Close()

	if err := manager.Start(ctx); err != nil {
		log.Fatalf("FATAL: cannot start identity manager: %v", err)
	}
	defer manager.Close()

	// HTTP handlers
	authHandler := httpAdapter.NewAuthHandler(manager, appLogger)
	profileHandler := httpAdapter.NewProfileHandler(manager, uploader, appLogger)
	settingsHandler := httpAdapter.NewSettingsHandler(synchronizer, projector, translator, appLogger)
	itemHandler := httpAdapter.NewItemHandler(itemUseCase, manager, appLogger)
	appearanceHandler := httpAdapter.NewAppearanceHandler(doc, relay)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpAdapter.ErrorMiddleware(appLogger))
	router.Use(httpAdapter.ActivityMiddleware(manager))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/oauth", authHandler.OAuthLogin)
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.POST("/password-reset", authHandler.RequestPasswordReset)
			authRoutes.GET("/state", authHandler.State)
		}

		settingsRoutes := api.Group("/settings")
		{
			settingsRoutes.GET("", settingsHandler.Get)
			settingsRoutes.PATCH("", settingsHandler.Update)
			settingsRoutes.POST("/theme/toggle", settingsHandler.ToggleTheme)
		}

		appearanceRoutes := api.Group("/appearance")
		{
			appearanceRoutes.GET("", appearanceHandler.Get)
			appearanceRoutes.POST("/color-scheme", appearanceHandler.ReportColorScheme)
		}

		private := api.Group("/")
		private.Use(httpAdapter.RequireResolved(manager))
		{
			private.GET("/profile", profileHandler.GetProfile)
			private.PUT("/profile", profileHandler.UpdateProfile)
			private.POST("/profile/picture", profileHandler.UploadPicture)
			private.DELETE("/account", authHandler.DeleteAccount)

			lost := private.Group("/items/lost")
			{
				lost.POST("", itemHandler.ReportLost)
				lost.GET("", itemHandler.ListLost)
				lost.DELETE("/:id", itemHandler.DeleteLost)
			}
			found := private.Group("/items/found")
			{
				found.POST("", itemHandler.ReportFound)
				found.GET("", itemHandler.ListFound)
				found.DELETE("/:id", itemHandler.DeleteFound)
			}
		}
	}

	appLogger.Info("Server running", zap.String("port", cfg.App.Port))
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Cannot run server: %v", err)
	}
}
