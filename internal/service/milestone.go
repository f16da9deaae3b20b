package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
	"github.com/pawws/pawws/internal/validation"
)

type CreateMilestoneInput struct {
	AnimalID    string
	Title       string
	Description string
	Cost        int64
}

type MilestoneService struct {
	milestoneRepository repository.MilestoneRepository
	animalRepository    repository.AnimalRepository
	ledgerService       *LedgerService
	directEnabled       bool
}

func NewMilestoneService(
	milestoneRepository repository.MilestoneRepository,
	animalRepository repository.AnimalRepository,
	ledgerService *LedgerService,
	directEnabled bool,
) *MilestoneService {
	return &MilestoneService{
		milestoneRepository: milestoneRepository,
		animalRepository:    animalRepository,
		ledgerService:       ledgerService,
		directEnabled:       directEnabled,
	}
}

func (s *MilestoneService) Create(ctx context.Context, in CreateMilestoneInput) (*model.Milestone, error) {
	err := validation.ValidateText("title", in.Title, 200)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if in.Cost <= 0 {
		return nil, ErrInvalidCost
	}

	_, err = s.animalRepository.ByID(ctx, in.AnimalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	milestone := &model.Milestone{
		ID:          uuid.New().String(),
		AnimalID:    in.AnimalID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Cost:        in.Cost,
		Status:      model.MilestoneStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.milestoneRepository.Create(ctx, milestone)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	return milestone, nil
}

func (s *MilestoneService) ByID(ctx context.Context, id string) (*model.Milestone, error) {
	return s.milestoneRepository.ByID(ctx, id)
}

func (s *MilestoneService) ByAnimal(ctx context.Context, animalID string) ([]*model.Milestone, error) {
	_, err := s.animalRepository.ByID(ctx, animalID)
	if err != nil {
		return nil, err
	}
	return s.milestoneRepository.ByAnimal(ctx, animalID)
}

// Complete closes a FUNDED milestone once the work it paid for is done.
func (s *MilestoneService) Complete(ctx context.Context, id string, actor *model.User) (*model.Milestone, error) {
	err := Authorize(actor, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	_, err = s.milestoneRepository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	milestone, err := s.milestoneRepository.Complete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrMilestoneNotFunded) {
			return nil, ErrMilestoneNotFunded
		}
		return nil, fmt.Errorf("failed to complete milestone: %w", err)
	}

	return milestone, nil
}

// DirectContribute credits a milestone without a donation record or review.
// It is off unless DIRECT_CONTRIBUTIONS_ENABLED is set. A non-empty animalID
// must own the milestone.
func (s *MilestoneService) DirectContribute(ctx context.Context, animalID, milestoneID string, amount int64) (*model.Milestone, error) {
	if !s.directEnabled {
		return nil, ErrDirectContributionsDisabled
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	milestone, err := s.milestoneRepository.ByID(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if animalID != "" && milestone.AnimalID != animalID {
		return nil, ErrMilestoneNotFound
	}

	return s.ledgerService.Credit(ctx, milestoneID, amount)
}
