package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/pawws/pawws/internal/model"
)

type AnimalRepository interface {
	Create(ctx context.Context, animal *model.Animal) error
	ByID(ctx context.Context, id string) (*model.Animal, error)
	List(ctx context.Context, offset, limit int) ([]*model.Animal, error)
	SetImage(ctx context.Context, id, path, contentType string) error
	Delete(ctx context.Context, id string) error
}

type animalRepository struct {
	db Querier
}

func NewAnimalRepository(db *sqlx.DB) AnimalRepository {
	return &animalRepository{db: db}
}

func (r *animalRepository) Create(ctx context.Context, animal *model.Animal) error {
	query := `INSERT INTO animals (id, name, bio, admission_date, status, journey_story, image_path, image_content_type, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		animal.ID,
		animal.Name,
		animal.Bio,
		animal.AdmissionDate,
		animal.Status,
		animal.JourneyStory,
		animal.ImagePath,
		animal.ImageContentType,
		animal.CreatedAt,
	)

	return err
}

func (r *animalRepository) ByID(ctx context.Context, id string) (*model.Animal, error) {
	animal := &model.Animal{}
	query := `SELECT * FROM animals WHERE id = $1`

	err := r.db.GetContext(ctx, animal, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnimalNotFound
	}
	if err != nil {
		return nil, err
	}

	return animal, nil
}

func (r *animalRepository) List(ctx context.Context, offset, limit int) ([]*model.Animal, error) {
	var animals []*model.Animal
	query := `SELECT * FROM animals ORDER BY admission_date DESC, id ASC LIMIT $1 OFFSET $2`

	err := r.db.SelectContext(ctx, &animals, query, limit, offset)
	if err != nil {
		return nil, err
	}

	return animals, nil
}

func (r *animalRepository) SetImage(ctx context.Context, id, path, contentType string) error {
	query := `UPDATE animals SET image_path = $1, image_content_type = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, path, contentType, id)
	if err != nil {
		return err
	}

	return requireRows(result, ErrAnimalNotFound)
}

// Delete removes the animal; milestones and their donations cascade.
func (r *animalRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM animals WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return requireRows(result, ErrAnimalNotFound)
}
