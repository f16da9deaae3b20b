package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/db"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
)

// SubmitInput is a donor's claim that they paid toward a milestone.
type SubmitInput struct {
	MilestoneID      string
	Amount           int64
	Proof            io.Reader
	ProofContentType string
	UserID           *string // nil for anonymous donations
}

// DonationService runs the review workflow: donations are submitted PENDING
// and only credit the ledger when an admin approves them.
type DonationService struct {
	db                  *sqlx.DB
	donationRepository  repository.DonationRepository
	milestoneRepository repository.MilestoneRepository
	userRepository      repository.UserRepository
	ledgerService       *LedgerService
	fileService         *FileService
	emailService        *EmailService
}

func NewDonationService(
	db *sqlx.DB,
	donationRepository repository.DonationRepository,
	milestoneRepository repository.MilestoneRepository,
	userRepository repository.UserRepository,
	ledgerService *LedgerService,
	fileService *FileService,
	emailService *EmailService,
) *DonationService {
	return &DonationService{
		db:                  db,
		donationRepository:  donationRepository,
		milestoneRepository: milestoneRepository,
		userRepository:      userRepository,
		ledgerService:       ledgerService,
		fileService:         fileService,
		emailService:        emailService,
	}
}

func (s *DonationService) Submit(ctx context.Context, in SubmitInput) (*model.Donation, error) {
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if in.Proof == nil || in.ProofContentType == "" {
		return nil, ErrMissingEvidence
	}

	proof, empty, err := peekProof(in.Proof)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof: %w", err)
	}
	if empty {
		return nil, ErrMissingEvidence
	}

	milestone, err := s.milestoneRepository.ByID(ctx, in.MilestoneID)
	if err != nil {
		return nil, err
	}

	proofPath, err := s.fileService.Upload(ctx, FolderProofs, proof, in.ProofContentType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	donation := &model.Donation{
		ID:               uuid.New().String(),
		MilestoneID:      milestone.ID,
		UserID:           in.UserID,
		Amount:           in.Amount,
		Status:           model.DonationStatusPending,
		ProofPath:        proofPath,
		ProofContentType: in.ProofContentType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.donationRepository.Create(ctx, donation)
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded proof
		s.fileService.Delete(ctx, proofPath)
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	slog.Info("donation submitted",
		"donation_id", donation.ID,
		"milestone_id", donation.MilestoneID,
		"amount", donation.Amount,
	)

	return donation, nil
}

// peekProof reports whether r is empty and returns a reader over its full
// content. Seekable readers such as multipart files are rewound rather than
// buffered so the blob store can still seek them.
func peekProof(r io.Reader) (io.Reader, bool, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		var b [1]byte
		n, err := io.ReadFull(rs, b[:])
		if err != nil && err != io.EOF {
			return nil, false, err
		}
		_, err = rs.Seek(0, io.SeekStart)
		if err != nil {
			return nil, false, err
		}
		return rs, n == 0, nil
	}

	br := bufio.NewReader(r)
	_, err := br.Peek(1)
	if err == io.EOF {
		return br, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return br, false, nil
}

// Decide approves or rejects a donation. Approval of a PENDING donation and
// the matching ledger credit commit together; approving an APPROVED donation
// is a no-op and approving a REJECTED one fails with ErrDonationRejected.
// Rejection never touches the ledger.
func (s *DonationService) Decide(ctx context.Context, donationID string, status model.DonationStatus, actor *model.User) (*model.Donation, error) {
	err := Authorize(actor, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !status.IsDecision() {
		return nil, ErrInvalidStatus
	}

	var (
		donation *model.Donation
		changed  bool
	)

	err = db.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		donations := s.donationRepository.WithTx(tx)

		if status == model.DonationStatusRejected {
			current, err := donations.ByID(ctx, donationID)
			if err != nil {
				return err
			}
			if current.Status == model.DonationStatusRejected {
				donation = current
				return nil
			}
			donation, err = donations.Reject(ctx, donationID, actor.ID)
			changed = err == nil
			return err
		}

		claimed, err := donations.Approve(ctx, donationID, actor.ID)
		if errors.Is(err, repository.ErrDonationNotPending) {
			current, err := donations.ByID(ctx, donationID)
			if err != nil {
				return err
			}
			if current.Status == model.DonationStatusRejected {
				return ErrDonationRejected
			}
			donation = current
			return nil
		}
		if err != nil {
			return err
		}

		_, err = s.ledgerService.CreditTx(ctx, tx, claimed.MilestoneID, claimed.Amount)
		if err != nil {
			return err
		}

		donation = claimed
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		slog.Info("donation decided",
			"donation_id", donation.ID,
			"status", donation.Status,
			"actor_id", actor.ID,
		)
		s.notifyDonor(ctx, donation)
	}

	return donation, nil
}

// notifyDonor emails the donor about a decision. Failures are only logged.
func (s *DonationService) notifyDonor(ctx context.Context, donation *model.Donation) {
	if s.emailService == nil || donation.UserID == nil {
		return
	}

	donor, err := s.userRepository.ByID(ctx, *donation.UserID)
	if err != nil {
		slog.Warn("failed to load donor for notification", "error", err, "donation_id", donation.ID)
		return
	}

	milestone, err := s.milestoneRepository.ByID(ctx, donation.MilestoneID)
	if err != nil {
		slog.Warn("failed to load milestone for notification", "error", err, "donation_id", donation.ID)
		return
	}

	err = s.emailService.SendDonationDecision(ctx, donor.Email, donation, milestone)
	if err != nil {
		slog.Warn("failed to send donation decision email", "error", err, "donation_id", donation.ID)
	}
}

func (s *DonationService) ByID(ctx context.Context, id string) (*model.Donation, error) {
	return s.donationRepository.ByID(ctx, id)
}

// Mine lists the donations submitted by userID, newest first.
func (s *DonationService) Mine(ctx context.Context, userID string) ([]*model.DonationWithAnimal, error) {
	return s.donationRepository.ByUser(ctx, userID)
}

func (s *DonationService) List(ctx context.Context, offset, limit int) ([]*model.DonationWithAnimal, error) {
	offset, limit = page(offset, limit)
	return s.donationRepository.List(ctx, offset, limit)
}

// Proof opens the proof of payment for its donor or an admin. The caller closes the reader.
func (s *DonationService) Proof(ctx context.Context, donationID string, actor *model.User) (io.ReadCloser, string, error) {
	err := Authorize(actor, model.RoleDonor)
	if err != nil {
		return nil, "", err
	}

	donation, err := s.donationRepository.ByID(ctx, donationID)
	if err != nil {
		return nil, "", err
	}

	if !actor.IsAdmin() && !donation.OwnedBy(actor.ID) {
		return nil, "", ErrForbidden
	}

	rc, err := s.fileService.Open(ctx, donation.ProofPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open proof: %w", err)
	}

	return rc, donation.ProofContentType, nil
}
