package model

import (
	"database/sql/driver"
	"fmt"
)

// MilestoneStatus is the funding state of a milestone.
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"
	MilestoneStatusFunded    MilestoneStatus = "funded"
	MilestoneStatusCompleted MilestoneStatus = "completed"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusFunded, MilestoneStatusCompleted:
		return true
	}
	return false
}

func (s MilestoneStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid milestone status %q", string(s))
	}
	return string(s), nil
}

func (s *MilestoneStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	status := MilestoneStatus(v)
	if !status.Valid() {
		return fmt.Errorf("invalid milestone status %q", v)
	}
	*s = status
	return nil
}

// DonationStatus is the review state of a donation.
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "pending"
	DonationStatusApproved DonationStatus = "approved"
	DonationStatusRejected DonationStatus = "rejected"
)

// ParseDonationStatus converts user input into a DonationStatus.
func ParseDonationStatus(v string) (DonationStatus, error) {
	status := DonationStatus(v)
	if !status.Valid() {
		return "", fmt.Errorf("invalid donation status %q", v)
	}
	return status, nil
}

func (s DonationStatus) Valid() bool {
	switch s {
	case DonationStatusPending, DonationStatusApproved, DonationStatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether s is a status an admin may decide on.
func (s DonationStatus) IsDecision() bool {
	return s == DonationStatusApproved || s == DonationStatusRejected
}

func (s DonationStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid donation status %q", string(s))
	}
	return string(s), nil
}

func (s *DonationStatus) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	status := DonationStatus(v)
	if !status.Valid() {
		return fmt.Errorf("invalid donation status %q", v)
	}
	*s = status
	return nil
}

// Role is the privilege level of a user.
type Role string

const (
	RoleDonor Role = "donor"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleDonor || r == RoleAdmin
}

func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %q", string(r))
	}
	return string(r), nil
}

func (r *Role) Scan(src any) error {
	v, err := scanString(src)
	if err != nil {
		return err
	}
	role := Role(v)
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", v)
	}
	*r = role
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("unexpected NULL enum value")
	default:
		return "", fmt.Errorf("unsupported enum source type %T", src)
	}
}
