package model

import (
	"time"
)

type Milestone struct {
	ID            string          `db:"id" json:"id"`
	AnimalID      string          `db:"animal_id" json:"animal_id"`
	Title         string          `db:"title" json:"title"`
	Description   string          `db:"description" json:"description"`
	Cost          int64           `db:"cost" json:"cost"`
	CurrentAmount int64           `db:"current_amount" json:"current_amount"`
	Status        MilestoneStatus `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// Remaining returns how much is still needed to reach the cost, never negative.
func (m *Milestone) Remaining() int64 {
	if m.CurrentAmount >= m.Cost {
		return 0
	}
	return m.Cost - m.CurrentAmount
}

func (m *Milestone) IsFunded() bool {
	return m.Status == MilestoneStatusFunded || m.Status == MilestoneStatusCompleted
}
