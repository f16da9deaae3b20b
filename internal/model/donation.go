package model

import (
	"time"
)

type Donation struct {
	ID               string         `db:"id" json:"id"`
	MilestoneID      string         `db:"milestone_id" json:"milestone_id"`
	UserID           *string        `db:"user_id" json:"user_id"` // Nil for anonymous donations
	Amount           int64          `db:"amount" json:"amount"`
	Status           DonationStatus `db:"status" json:"status"`
	ProofPath        string         `db:"proof_path" json:"-"`
	ProofContentType string         `db:"proof_content_type" json:"-"`
	DecidedBy        *string        `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time     `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// OwnedBy reports whether the donation was submitted by userID.
func (d *Donation) OwnedBy(userID string) bool {
	return d.UserID != nil && *d.UserID == userID
}

// DonationWithAnimal is a donation joined with the animal its milestone belongs to.
type DonationWithAnimal struct {
	Donation
	AnimalID   string `db:"animal_id" json:"animal_id"`
	AnimalName string `db:"animal_name" json:"animal_name"`
}
