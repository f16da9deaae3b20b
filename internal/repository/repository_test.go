package repository_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/db"
	"github.com/pawws/pawws/internal/db/dbtest"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
)

func seedAnimal(t *testing.T, repo repository.AnimalRepository, name string) *model.Animal {
	t.Helper()
	animal := &model.Animal{
		ID:            uuid.New().String(),
		Name:          name,
		AdmissionDate: time.Now().Add(-48 * time.Hour),
		Status:        model.AnimalStatusRecovering,
		CreatedAt:     time.Now(),
	}
	if err := repo.Create(context.Background(), animal); err != nil {
		t.Fatalf("create animal: %v", err)
	}
	return animal
}

func seedMilestone(t *testing.T, repo repository.MilestoneRepository, animalID string, cost int64) *model.Milestone {
	t.Helper()
	now := time.Now()
	milestone := &model.Milestone{
		ID:        uuid.New().String(),
		AnimalID:  animalID,
		Title:     "Surgery",
		Cost:      cost,
		Status:    model.MilestoneStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(context.Background(), milestone); err != nil {
		t.Fatalf("create milestone: %v", err)
	}
	return milestone
}

func seedDonation(t *testing.T, repo repository.DonationRepository, milestoneID string, userID *string, amount int64) *model.Donation {
	t.Helper()
	now := time.Now()
	donation := &model.Donation{
		ID:               uuid.New().String(),
		MilestoneID:      milestoneID,
		UserID:           userID,
		Amount:           amount,
		Status:           model.DonationStatusPending,
		ProofPath:        "proofs/" + uuid.New().String() + ".png",
		ProofContentType: "image/png",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := repo.Create(context.Background(), donation); err != nil {
		t.Fatalf("create donation: %v", err)
	}
	return donation
}

func seedUser(t *testing.T, repo repository.UserRepository, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: "hash",
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

type repos struct {
	db         *sqlx.DB
	users      repository.UserRepository
	animals    repository.AnimalRepository
	milestones repository.MilestoneRepository
	donations  repository.DonationRepository
	qr         repository.PaymentQRRepository
}

func newRepos(t *testing.T) repos {
	database := dbtest.Open(t)
	return repos{
		db:         database,
		users:      repository.NewUserRepository(database),
		animals:    repository.NewAnimalRepository(database),
		milestones: repository.NewMilestoneRepository(database),
		donations:  repository.NewDonationRepository(database),
		qr:         repository.NewPaymentQRRepository(database),
	}
}

func TestMilestoneCreditFundsAtCost(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	animal := seedAnimal(t, r.animals, "Biscuit")
	milestone := seedMilestone(t, r.milestones, animal.ID, 200)

	got, err := r.milestones.Credit(ctx, milestone.ID, 150)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got.CurrentAmount != 150 || got.Status != model.MilestoneStatusPending {
		t.Fatalf("after 150: amount=%d status=%s", got.CurrentAmount, got.Status)
	}

	got, err = r.milestones.Credit(ctx, milestone.ID, 60)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got.CurrentAmount != 210 || got.Status != model.MilestoneStatusFunded {
		t.Fatalf("after 60: amount=%d status=%s, want 210 funded", got.CurrentAmount, got.Status)
	}
}

func TestMilestoneCreditKeepsCompleted(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	animal := seedAnimal(t, r.animals, "Pepper")
	milestone := seedMilestone(t, r.milestones, animal.ID, 50)

	if _, err := r.milestones.Credit(ctx, milestone.ID, 50); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := r.milestones.Complete(ctx, milestone.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	got, err := r.milestones.Credit(ctx, milestone.ID, 10)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if got.Status != model.MilestoneStatusCompleted || got.CurrentAmount != 60 {
		t.Fatalf("got amount=%d status=%s, want 60 completed", got.CurrentAmount, got.Status)
	}
}

func TestMilestoneCreditUnknown(t *testing.T) {
	r := newRepos(t)
	_, err := r.milestones.Credit(context.Background(), "missing", 10)
	if !errors.Is(err, repository.ErrMilestoneNotFound) || !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrMilestoneNotFound", err)
	}
}

func TestMilestoneCreditRefusesOverflow(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	animal := seedAnimal(t, r.animals, "Mochi")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)

	if _, err := r.milestones.Credit(ctx, milestone.ID, 20); err != nil {
		t.Fatalf("credit: %v", err)
	}

	_, err := r.milestones.Credit(ctx, milestone.ID, math.MaxInt64)
	if !errors.Is(err, repository.ErrCreditOverflow) {
		t.Fatalf("err = %v, want ErrCreditOverflow", err)
	}

	got, err := r.milestones.ByID(ctx, milestone.ID)
	if err != nil {
		t.Fatalf("milestone unreadable after refused credit: %v", err)
	}
	if got.CurrentAmount != 20 || got.Status != model.MilestoneStatusPending {
		t.Fatalf("got amount=%d status=%s, want 20 pending", got.CurrentAmount, got.Status)
	}

	// The largest credit that still fits is accepted
	got, err = r.milestones.Credit(ctx, milestone.ID, math.MaxInt64-20)
	if err != nil {
		t.Fatalf("credit up to the limit: %v", err)
	}
	if got.CurrentAmount != math.MaxInt64 || got.Status != model.MilestoneStatusFunded {
		t.Fatalf("got amount=%d status=%s", got.CurrentAmount, got.Status)
	}
}

func TestMilestoneCreditConcurrent(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	animal := seedAnimal(t, r.animals, "Mochi")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)

	var wg sync.WaitGroup
	for _, amount := range []int64{30, 50} {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			if _, err := r.milestones.Credit(ctx, milestone.ID, amount); err != nil {
				t.Errorf("credit %d: %v", amount, err)
			}
		}(amount)
	}
	wg.Wait()

	got, err := r.milestones.ByID(ctx, milestone.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if got.CurrentAmount != 80 || got.Status != model.MilestoneStatusPending {
		t.Fatalf("amount=%d status=%s, want 80 pending", got.CurrentAmount, got.Status)
	}
}

func TestMilestoneCompleteRequiresFunded(t *testing.T) {
	r := newRepos(t)
	animal := seedAnimal(t, r.animals, "Rex")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)

	_, err := r.milestones.Complete(context.Background(), milestone.ID)
	if !errors.Is(err, repository.ErrMilestoneNotFunded) {
		t.Fatalf("err = %v, want ErrMilestoneNotFunded", err)
	}
}

func TestMilestonesByAnimalIDs(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	a := seedAnimal(t, r.animals, "A")
	b := seedAnimal(t, r.animals, "B")
	c := seedAnimal(t, r.animals, "C")
	seedMilestone(t, r.milestones, a.ID, 10)
	seedMilestone(t, r.milestones, a.ID, 20)
	seedMilestone(t, r.milestones, b.ID, 30)
	seedMilestone(t, r.milestones, c.ID, 40)

	got, err := r.milestones.ByAnimalIDs(ctx, []string{a.ID, b.ID})
	if err != nil {
		t.Fatalf("by animal ids: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d milestones, want 3", len(got))
	}

	empty, err := r.milestones.ByAnimalIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty ids = %v, %v", empty, err)
	}
}

func TestDonationApproveOnce(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := seedUser(t, r.users, "admin@example.com", model.RoleAdmin)
	animal := seedAnimal(t, r.animals, "Biscuit")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)
	donation := seedDonation(t, r.donations, milestone.ID, nil, 30)

	approved, err := r.donations.Approve(ctx, donation.ID, admin.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.DonationStatusApproved || approved.DecidedBy == nil || *approved.DecidedBy != admin.ID {
		t.Fatalf("unexpected approved donation: %+v", approved)
	}

	_, err = r.donations.Approve(ctx, donation.ID, admin.ID)
	if !errors.Is(err, repository.ErrDonationNotPending) {
		t.Fatalf("second approve err = %v, want ErrDonationNotPending", err)
	}
}

func TestDonationRejectAnyStatus(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := seedUser(t, r.users, "admin@example.com", model.RoleAdmin)
	animal := seedAnimal(t, r.animals, "Biscuit")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)
	donation := seedDonation(t, r.donations, milestone.ID, nil, 30)

	if _, err := r.donations.Approve(ctx, donation.ID, admin.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	rejected, err := r.donations.Reject(ctx, donation.ID, admin.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.DonationStatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}

	_, err = r.donations.Reject(ctx, "missing", admin.ID)
	if !errors.Is(err, repository.ErrDonationNotFound) {
		t.Fatalf("err = %v, want ErrDonationNotFound", err)
	}
}

func TestDonationListingsJoinAnimal(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	donor := seedUser(t, r.users, "donor@example.com", model.RoleDonor)
	animal := seedAnimal(t, r.animals, "Biscuit")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)
	seedDonation(t, r.donations, milestone.ID, &donor.ID, 10)
	seedDonation(t, r.donations, milestone.ID, nil, 20)

	mine, err := r.donations.ByUser(ctx, donor.ID)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(mine) != 1 || mine[0].AnimalName != "Biscuit" || mine[0].AnimalID != animal.ID {
		t.Fatalf("unexpected donor view: %+v", mine)
	}

	all, err := r.donations.List(ctx, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d donations, want 2", len(all))
	}

	paths, err := r.donations.ProofPathsByAnimal(ctx, animal.ID)
	if err != nil || len(paths) != 2 {
		t.Fatalf("proof paths = %v, %v", paths, err)
	}
}

func TestTxBoundRepositoriesRollBack(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	admin := seedUser(t, r.users, "admin@example.com", model.RoleAdmin)
	animal := seedAnimal(t, r.animals, "Biscuit")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)
	donation := seedDonation(t, r.donations, milestone.ID, nil, 30)
	boom := errors.New("boom")

	err := db.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := r.donations.WithTx(tx).Approve(ctx, donation.ID, admin.ID); err != nil {
			return err
		}
		if _, err := r.milestones.WithTx(tx).Credit(ctx, milestone.ID, donation.Amount); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	gotDonation, _ := r.donations.ByID(ctx, donation.ID)
	gotMilestone, _ := r.milestones.ByID(ctx, milestone.ID)
	if gotDonation.Status != model.DonationStatusPending || gotMilestone.CurrentAmount != 0 {
		t.Fatalf("rollback left status=%s amount=%d", gotDonation.Status, gotMilestone.CurrentAmount)
	}
}

func TestAnimalDeleteCascades(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	donor := seedUser(t, r.users, "donor@example.com", model.RoleDonor)
	animal := seedAnimal(t, r.animals, "Biscuit")
	milestone := seedMilestone(t, r.milestones, animal.ID, 100)
	donation := seedDonation(t, r.donations, milestone.ID, &donor.ID, 10)

	if err := r.animals.Delete(ctx, animal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.milestones.ByID(ctx, milestone.ID); !errors.Is(err, repository.ErrMilestoneNotFound) {
		t.Fatalf("milestone err = %v, want not found", err)
	}
	if _, err := r.donations.ByID(ctx, donation.ID); !errors.Is(err, repository.ErrDonationNotFound) {
		t.Fatalf("donation err = %v, want not found", err)
	}
	if err := r.animals.Delete(ctx, animal.ID); !errors.Is(err, repository.ErrAnimalNotFound) {
		t.Fatalf("second delete err = %v, want ErrAnimalNotFound", err)
	}
}

func TestAnimalListPaginates(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		seedAnimal(t, r.animals, name)
	}

	page, err := r.animals.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("got %d animals, want 1", len(page))
	}

	if err := r.animals.SetImage(ctx, page[0].ID, "animals/x.png", "image/png"); err != nil {
		t.Fatalf("set image: %v", err)
	}
	got, _ := r.animals.ByID(ctx, page[0].ID)
	if !got.HasImage() || *got.ImageContentType != "image/png" {
		t.Fatalf("image not stored: %+v", got)
	}
}

func TestUserDuplicateEmail(t *testing.T) {
	r := newRepos(t)
	seedUser(t, r.users, "dup@example.com", model.RoleDonor)

	err := r.users.Create(context.Background(), &model.User{
		ID:           uuid.New().String(),
		Email:        "dup@example.com",
		PasswordHash: "hash",
		Role:         model.RoleDonor,
		IsActive:     true,
		CreatedAt:    time.Now(),
	})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestPaymentQRSaveReplaces(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	if _, err := r.qr.Get(ctx); !errors.Is(err, repository.ErrPaymentQRNotFound) {
		t.Fatalf("err = %v, want ErrPaymentQRNotFound", err)
	}

	for _, path := range []string{"qr/one.png", "qr/two.png"} {
		err := r.qr.Save(ctx, &model.PaymentQR{ImagePath: path, ImageContentType: "image/png", UpdatedAt: time.Now()})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := r.qr.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ImagePath != "qr/two.png" {
		t.Fatalf("image path = %s, want qr/two.png", got.ImagePath)
	}
}
