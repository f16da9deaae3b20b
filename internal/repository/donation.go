package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/model"
)

var (
	ErrDonationNotPending = errors.New("donation is not pending")
)

const donationWithAnimalSelect = `SELECT d.*, m.animal_id, a.name AS animal_name
	FROM donations d
	JOIN milestones m ON m.id = d.milestone_id
	JOIN animals a ON a.id = m.animal_id`

type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	ByID(ctx context.Context, id string) (*model.Donation, error)
	ByUser(ctx context.Context, userID string) ([]*model.DonationWithAnimal, error)
	List(ctx context.Context, offset, limit int) ([]*model.DonationWithAnimal, error)
	ProofPathsByAnimal(ctx context.Context, animalID string) ([]string, error)
	Approve(ctx context.Context, id, actorID string) (*model.Donation, error)
	Reject(ctx context.Context, id, actorID string) (*model.Donation, error)
	WithTx(tx *sqlx.Tx) DonationRepository
}

type donationRepository struct {
	db Querier
}

func NewDonationRepository(db *sqlx.DB) DonationRepository {
	return &donationRepository{db: db}
}

func (r *donationRepository) WithTx(tx *sqlx.Tx) DonationRepository {
	return &donationRepository{db: tx}
}

func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) error {
	query := `INSERT INTO donations (id, milestone_id, user_id, amount, status, proof_path, proof_content_type, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		donation.ID,
		donation.MilestoneID,
		donation.UserID,
		donation.Amount,
		donation.Status,
		donation.ProofPath,
		donation.ProofContentType,
		donation.CreatedAt,
		donation.UpdatedAt,
	)

	return err
}

func (r *donationRepository) ByID(ctx context.Context, id string) (*model.Donation, error) {
	donation := &model.Donation{}
	query := `SELECT * FROM donations WHERE id = $1`

	err := r.db.GetContext(ctx, donation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}

	return donation, nil
}

func (r *donationRepository) ByUser(ctx context.Context, userID string) ([]*model.DonationWithAnimal, error) {
	donations := []*model.DonationWithAnimal{}
	query := donationWithAnimalSelect + ` WHERE d.user_id = $1 ORDER BY d.created_at DESC, d.id ASC`

	err := r.db.SelectContext(ctx, &donations, query, userID)
	if err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *donationRepository) List(ctx context.Context, offset, limit int) ([]*model.DonationWithAnimal, error) {
	donations := []*model.DonationWithAnimal{}
	query := donationWithAnimalSelect + ` ORDER BY d.created_at DESC, d.id ASC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &donations, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return donations, nil
}

func (r *donationRepository) ProofPathsByAnimal(ctx context.Context, animalID string) ([]string, error) {
	paths := []string{}
	query := `SELECT d.proof_path FROM donations d
	          JOIN milestones m ON m.id = d.milestone_id
	          WHERE m.animal_id = $1`

	err := r.db.SelectContext(ctx, &paths, query, animalID)
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// Approve claims the PENDING -> APPROVED transition. Only one caller can win
// it; everyone else gets ErrDonationNotPending and must not credit the ledger.
func (r *donationRepository) Approve(ctx context.Context, id, actorID string) (*model.Donation, error) {
	donation := &model.Donation{}
	now := time.Now()
	query := `UPDATE donations
	          SET status = $1, decided_by = $2, decided_at = $3, updated_at = $3
	          WHERE id = $4 AND status = $5
	          RETURNING *`

	err := r.db.GetContext(ctx, donation, query,
		model.DonationStatusApproved,
		actorID,
		now,
		id,
		model.DonationStatusPending,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDonationNotPending
	}
	if err != nil {
		return nil, err
	}

	return donation, nil
}

// Reject marks the donation REJECTED whatever its current status.
func (r *donationRepository) Reject(ctx context.Context, id, actorID string) (*model.Donation, error) {
	donation := &model.Donation{}
	now := time.Now()
	query := `UPDATE donations
	          SET status = $1, decided_by = $2, decided_at = $3, updated_at = $3
	          WHERE id = $4
	          RETURNING *`

	err := r.db.GetContext(ctx, donation, query,
		model.DonationStatusRejected,
		actorID,
		now,
		id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDonationNotFound
	}
	if err != nil {
		return nil, err
	}

	return donation, nil
}
