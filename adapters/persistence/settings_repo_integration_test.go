package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/reclaimhq/reclaim/internal/domain/identity"
	"github.com/reclaimhq/reclaim/internal/domain/settings"
	"github.com/reclaimhq/reclaim/pkg/logger"
)

type SettingsRepoIntegrationTestSuite struct {
	suite.Suite
	dbPool       *pgxpool.Pool
	pgContainer  *postgres.PostgresContainer
	testLogger   logger.Logger
	settingsRepo settings.Repository
	profileRepo  identity.Repository
	testUserID   uuid.UUID
}

func (s *SettingsRepoIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(1*time.Minute),
		),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.pgContainer = pgContainer

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}

	m, err := migrate.New("file://../../migrations", dsn)
	if err != nil {
		s.T().Fatalf("Failed to create migrate instance: %s", err)
	}
	if err := m.Up(); err != nil {
		s.T().Fatalf("Failed to run migrations: %s", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		s.T().Fatalf("Failed to create pgxpool: %s", err)
	}
	s.dbPool = pool

	s.testLogger = logger.NewNop()
	s.settingsRepo = NewPostgresSettingsRepo(s.dbPool, s.testLogger)
	s.profileRepo = NewPostgresProfileRepo(s.dbPool, s.testLogger)

	s.testUserID = uuid.New()
	err = s.profileRepo.Insert(ctx, &identity.UserProfile{
		ID:         s.testUserID,
		Email:      "settings_test@example.com",
		Gender:     identity.GenderMale,
		Occupation: identity.Student{},
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.T().Fatalf("Failed to seed profile: %s", err)
	}
}

func (s *SettingsRepoIntegrationTestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate postgres container: %s", err)
		}
	}
}

func TestSettingsRepoIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(SettingsRepoIntegrationTestSuite))
}

func (s *SettingsRepoIntegrationTestSuite) Test_Insert_And_Get() {
	ctx := context.Background()

	v := settings.Defaults()
	v.Language = "hi"
	thirty := 30
	v.AutoLogoutMinutes = &thirty

	s.NoError(s.settingsRepo.Insert(ctx, s.testUserID, v))

	got, err := s.settingsRepo.Get(ctx, s.testUserID)
	s.NoError(err)
	s.Equal("hi", got.Language)
	s.Equal(settings.ThemeModeSystem, got.ThemeMode)
	s.NotNil(got.AutoLogoutMinutes)
	s.Equal(30, *got.AutoLogoutMinutes)
	s.True(got.AllowCookies)
}

func (s *SettingsRepoIntegrationTestSuite) Test_Insert_Conflict() {
	ctx := context.Background()

	err := s.settingsRepo.Insert(ctx, s.testUserID, settings.Defaults())
	s.Error(err)
}

func (s *SettingsRepoIntegrationTestSuite) Test_Upsert_Replaces() {
	ctx := context.Background()

	v := settings.Defaults()
	v.ThemeMode = settings.ThemeModeDark
	v.FontSize = settings.FontLarge
	v.AutoLogoutMinutes = nil

	s.NoError(s.settingsRepo.Upsert(ctx, s.testUserID, v))

	got, err := s.settingsRepo.Get(ctx, s.testUserID)
	s.NoError(err)
	s.Equal(settings.ThemeModeDark, got.ThemeMode)
	s.Equal(settings.FontLarge, got.FontSize)
	s.Nil(got.AutoLogoutMinutes)
}

func (s *SettingsRepoIntegrationTestSuite) Test_Get_MissingRow() {
	_, err := s.settingsRepo.Get(context.Background(), uuid.New())
	s.Error(err)
}

func (s *SettingsRepoIntegrationTestSuite) Test_Delete_CascadesFromProfile() {
	ctx := context.Background()

	userID := uuid.New()
	s.NoError(s.profileRepo.Insert(ctx, &identity.UserProfile{
		ID:         userID,
		Email:      "cascade_test@example.com",
		Gender:     identity.GenderFemale,
		Occupation: identity.Student{},
		CreatedAt:  time.Now().UTC(),
	}))
	s.NoError(s.settingsRepo.Upsert(ctx, userID, settings.Defaults()))

	s.NoError(s.profileRepo.Delete(ctx, userID))

	_, err := s.settingsRepo.Get(ctx, userID)
	s.Error(err)
}
