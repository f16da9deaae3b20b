package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pawws/pawws/internal/db/dbtest"
	"github.com/pawws/pawws/internal/markdown"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
	"github.com/pawws/pawws/internal/storage"
)

// testEnv wires every service against a migrated SQLite database and a
// filesystem blob store, both living in the test's temp dir.
type testEnv struct {
	store      storage.Storage
	users      repository.UserRepository
	milestones repository.MilestoneRepository
	donations  repository.DonationRepository

	auth      *AuthService
	ledger    *LedgerService
	donation  *DonationService
	milestone *MilestoneService
	animal    *AnimalService
	settings  *SettingsService
}

func newTestEnv(t *testing.T, directEnabled bool) *testEnv {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	return newTestEnvWithStorage(t, store, directEnabled)
}

// newTestEnvWithStorage wires the services against a given blob store.
func newTestEnvWithStorage(t *testing.T, store storage.Storage, directEnabled bool) *testEnv {
	t.Helper()

	database := dbtest.Open(t)

	userRepo := repository.NewUserRepository(database)
	animalRepo := repository.NewAnimalRepository(database)
	milestoneRepo := repository.NewMilestoneRepository(database)
	donationRepo := repository.NewDonationRepository(database)
	qrRepo := repository.NewPaymentQRRepository(database)

	emailService := NewEmailService("", "shelter@example.com", "http://localhost:8000", "Pawws", true)
	fileService := NewFileService(store)
	ledgerService := NewLedgerService(milestoneRepo)

	return &testEnv{
		store:      store,
		users:      userRepo,
		milestones: milestoneRepo,
		donations:  donationRepo,

		auth:      NewAuthService(userRepo, emailService, "test-secret", time.Hour),
		ledger:    ledgerService,
		donation:  NewDonationService(database, donationRepo, milestoneRepo, userRepo, ledgerService, fileService, emailService),
		milestone: NewMilestoneService(milestoneRepo, animalRepo, ledgerService, directEnabled),
		animal:    NewAnimalService(animalRepo, milestoneRepo, donationRepo, fileService, markdown.NewParser()),
		settings:  NewSettingsService(qrRepo, fileService),
	}
}

func (e *testEnv) user(t *testing.T, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "unused",
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) animalWithMilestone(t *testing.T, cost int64) (*model.Animal, *model.Milestone) {
	t.Helper()
	ctx := context.Background()

	animal, err := e.animal.Create(ctx, CreateAnimalInput{Name: "Biscuit"})
	if err != nil {
		t.Fatalf("create animal: %v", err)
	}
	milestone, err := e.milestone.Create(ctx, CreateMilestoneInput{AnimalID: animal.ID, Title: "Surgery", Cost: cost})
	if err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	return animal, milestone
}

func (e *testEnv) submit(t *testing.T, milestoneID string, amount int64, userID *string) *model.Donation {
	t.Helper()
	donation, err := e.donation.Submit(context.Background(), SubmitInput{
		MilestoneID:      milestoneID,
		Amount:           amount,
		Proof:            strings.NewReader("\x89PNG fake receipt"),
		ProofContentType: "image/png",
		UserID:           userID,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return donation
}

func (e *testEnv) milestoneState(t *testing.T, id string) *model.Milestone {
	t.Helper()
	m, err := e.milestones.ByID(context.Background(), id)
	if err != nil {
		t.Fatalf("milestone: %v", err)
	}
	return m
}
