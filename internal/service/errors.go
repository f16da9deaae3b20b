package service

import (
	"errors"

	"github.com/pawws/pawws/internal/repository"
)

var (
	ErrInvalidAmount               = errors.New("amount must be positive")
	ErrInvalidCost                 = errors.New("cost must be positive")
	ErrMissingEvidence             = errors.New("proof of payment is required")
	ErrInvalidStatus               = errors.New("status must be approved or rejected")
	ErrDonationRejected            = errors.New("donation was rejected and cannot be approved")
	ErrDirectContributionsDisabled = errors.New("direct contributions are disabled")
	ErrForbidden                   = errors.New("forbidden")
	ErrImageNotFound               = errors.New("animal has no image")
	ErrPaymentQRNotSet             = errors.New("payment qr code has not been uploaded")
)

// Not-found errors are the repository sentinels, so errors.Is matches either name.
var (
	ErrAnimalNotFound     = repository.ErrAnimalNotFound
	ErrMilestoneNotFound  = repository.ErrMilestoneNotFound
	ErrDonationNotFound   = repository.ErrDonationNotFound
	ErrMilestoneNotFunded = repository.ErrMilestoneNotFunded
)

// ErrInvalidInput wraps field validation failures.
var ErrInvalidInput = errors.New("invalid input")
