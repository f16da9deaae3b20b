package model

import (
	"time"
)

const AnimalStatusRecovering = "recovering"

type Animal struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Bio              string    `db:"bio" json:"bio"`
	AdmissionDate    time.Time `db:"admission_date" json:"admission_date"`
	Status           string    `db:"status" json:"status"` // Free text, e.g. "recovering"
	JourneyStory     string    `db:"journey_story" json:"journey_story"`
	ImagePath        *string   `db:"image_path" json:"-"`
	ImageContentType *string   `db:"image_content_type" json:"-"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`

	// Computed fields (not in database)
	Milestones []*Milestone `db:"-" json:"milestones"`
}

func (a *Animal) HasImage() bool {
	return a.ImagePath != nil && *a.ImagePath != ""
}
