package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/config"
	"github.com/pawws/pawws/internal/db"
	"github.com/pawws/pawws/internal/markdown"
	"github.com/pawws/pawws/internal/repository"
	"github.com/pawws/pawws/internal/service"
	"github.com/pawws/pawws/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	AuthService      *service.AuthService
	EmailService     *service.EmailService
	FileService      *service.FileService
	LedgerService    *service.LedgerService
	AnimalService    *service.AnimalService
	MilestoneService *service.MilestoneService
	DonationService  *service.DonationService
	SettingsService  *service.SettingsService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := Wire(cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}

	// Bootstrap admin
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		_, err = app.AuthService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	return app, nil
}

// Wire builds the services on top of an already migrated database.
func Wire(cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	animalRepository := repository.NewAnimalRepository(database)
	milestoneRepository := repository.NewMilestoneRepository(database)
	donationRepository := repository.NewDonationRepository(database)
	paymentQRRepository := repository.NewPaymentQRRepository(database)

	// Storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	fileService := service.NewFileService(blobStorage)
	ledgerService := service.NewLedgerService(milestoneRepository)

	authService := service.NewAuthService(
		userRepository,
		emailService,
		cfg.JWTSecret,
		cfg.JWTExpiry,
	)
	animalService := service.NewAnimalService(
		animalRepository,
		milestoneRepository,
		donationRepository,
		fileService,
		markdown.NewParser(),
	)
	milestoneService := service.NewMilestoneService(
		milestoneRepository,
		animalRepository,
		ledgerService,
		cfg.DirectContributionsEnabled,
	)
	donationService := service.NewDonationService(
		database,
		donationRepository,
		milestoneRepository,
		userRepository,
		ledgerService,
		fileService,
		emailService,
	)
	settingsService := service.NewSettingsService(paymentQRRepository, fileService)

	slog.Info("services wired",
		"storage", cfg.StorageDriver,
		"direct_contributions", cfg.DirectContributionsEnabled,
		"anonymous_donations", cfg.AnonymousDonationsEnabled,
	)

	return &App{
		Cfg:              cfg,
		DB:               database,
		AuthService:      authService,
		EmailService:     emailService,
		FileService:      fileService,
		LedgerService:    ledgerService,
		AnimalService:    animalService,
		MilestoneService: milestoneService,
		DonationService:  donationService,
		SettingsService:  settingsService,
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
