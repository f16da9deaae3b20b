package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/model"
)

var (
	ErrMilestoneNotFunded = errors.New("milestone is not funded")
	ErrCreditOverflow     = errors.New("credit would overflow the milestone total")
)

type MilestoneRepository interface {
	Create(ctx context.Context, milestone *model.Milestone) error
	ByID(ctx context.Context, id string) (*model.Milestone, error)
	ByAnimal(ctx context.Context, animalID string) ([]*model.Milestone, error)
	ByAnimalIDs(ctx context.Context, animalIDs []string) ([]*model.Milestone, error)
	Credit(ctx context.Context, id string, amount int64) (*model.Milestone, error)
	Complete(ctx context.Context, id string) (*model.Milestone, error)
	WithTx(tx *sqlx.Tx) MilestoneRepository
}

type milestoneRepository struct {
	db Querier
}

func NewMilestoneRepository(db *sqlx.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) WithTx(tx *sqlx.Tx) MilestoneRepository {
	return &milestoneRepository{db: tx}
}

func (r *milestoneRepository) Create(ctx context.Context, milestone *model.Milestone) error {
	query := `INSERT INTO milestones (id, animal_id, title, description, cost, current_amount, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		milestone.ID,
		milestone.AnimalID,
		milestone.Title,
		milestone.Description,
		milestone.Cost,
		milestone.CurrentAmount,
		milestone.Status,
		milestone.CreatedAt,
		milestone.UpdatedAt,
	)

	return err
}

func (r *milestoneRepository) ByID(ctx context.Context, id string) (*model.Milestone, error) {
	milestone := &model.Milestone{}
	query := `SELECT * FROM milestones WHERE id = $1`

	err := r.db.GetContext(ctx, milestone, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMilestoneNotFound
	}
	if err != nil {
		return nil, err
	}

	return milestone, nil
}

func (r *milestoneRepository) ByAnimal(ctx context.Context, animalID string) ([]*model.Milestone, error) {
	milestones := []*model.Milestone{}
	query := `SELECT * FROM milestones WHERE animal_id = $1 ORDER BY created_at ASC, id ASC`

	err := r.db.SelectContext(ctx, &milestones, query, animalID)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *milestoneRepository) ByAnimalIDs(ctx context.Context, animalIDs []string) ([]*model.Milestone, error) {
	milestones := []*model.Milestone{}
	if len(animalIDs) == 0 {
		return milestones, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM milestones WHERE animal_id IN (?) ORDER BY created_at ASC, id ASC`, animalIDs)
	if err != nil {
		return nil, err
	}

	err = r.db.SelectContext(ctx, &milestones, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

// Credit adds amount to the milestone and flips PENDING to FUNDED once the
// cost is reached. It is a single UPDATE, so the row lock the database takes
// for it serializes concurrent credits; the CASE reads the pre-update row.
// A credit that would push the total past int64 matches no row and leaves
// the milestone untouched.
func (r *milestoneRepository) Credit(ctx context.Context, id string, amount int64) (*model.Milestone, error) {
	milestone := &model.Milestone{}
	query := `UPDATE milestones
	          SET current_amount = current_amount + $1,
	              status = CASE WHEN status = $2 AND current_amount + $1 >= cost THEN $3 ELSE status END,
	              updated_at = $4
	          WHERE id = $5 AND $6 - current_amount >= $1
	          RETURNING *`

	err := r.db.GetContext(ctx, milestone, query,
		amount,
		model.MilestoneStatusPending,
		model.MilestoneStatusFunded,
		time.Now(),
		id,
		int64(math.MaxInt64),
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the milestone is gone or the guard refused the amount
		_, err = r.ByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, ErrCreditOverflow
	}
	if err != nil {
		return nil, err
	}

	return milestone, nil
}

// Complete moves a FUNDED milestone to COMPLETED. Any other status yields ErrMilestoneNotFunded.
func (r *milestoneRepository) Complete(ctx context.Context, id string) (*model.Milestone, error) {
	milestone := &model.Milestone{}
	query := `UPDATE milestones SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4 RETURNING *`

	err := r.db.GetContext(ctx, milestone, query,
		model.MilestoneStatusCompleted,
		time.Now(),
		id,
		model.MilestoneStatusFunded,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMilestoneNotFunded
	}
	if err != nil {
		return nil, err
	}

	return milestone, nil
}
