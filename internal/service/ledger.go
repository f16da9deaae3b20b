package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
)

// LedgerService owns the funding invariant of a milestone: the amount only
// grows, and PENDING becomes FUNDED the first time it reaches the cost.
type LedgerService struct {
	milestoneRepository repository.MilestoneRepository
}

func NewLedgerService(milestoneRepository repository.MilestoneRepository) *LedgerService {
	return &LedgerService{
		milestoneRepository: milestoneRepository,
	}
}

func (s *LedgerService) Credit(ctx context.Context, milestoneID string, amount int64) (*model.Milestone, error) {
	return s.credit(ctx, s.milestoneRepository, milestoneID, amount)
}

// CreditTx credits inside a transaction owned by the caller.
func (s *LedgerService) CreditTx(ctx context.Context, tx *sqlx.Tx, milestoneID string, amount int64) (*model.Milestone, error) {
	return s.credit(ctx, s.milestoneRepository.WithTx(tx), milestoneID, amount)
}

func (s *LedgerService) credit(ctx context.Context, repo repository.MilestoneRepository, milestoneID string, amount int64) (*model.Milestone, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	milestone, err := repo.Credit(ctx, milestoneID, amount)
	if errors.Is(err, repository.ErrCreditOverflow) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to credit milestone: %w", err)
	}

	slog.Info("milestone credited",
		"milestone_id", milestone.ID,
		"amount", amount,
		"current_amount", milestone.CurrentAmount,
		"status", milestone.Status,
	)

	return milestone, nil
}
