package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawws/pawws/internal/markdown"
	"github.com/pawws/pawws/internal/model"
	"github.com/pawws/pawws/internal/repository"
	"github.com/pawws/pawws/internal/validation"
)

const (
	defaultPageSize = 100
	maxPageSize     = 100
)

type CreateAnimalInput struct {
	Name          string
	Bio           string
	AdmissionDate time.Time // zero means today
	Status        string    // empty means recovering
	JourneyStory  string
}

type AnimalService struct {
	animalRepository    repository.AnimalRepository
	milestoneRepository repository.MilestoneRepository
	donationRepository  repository.DonationRepository
	fileService         *FileService
	parser              *markdown.Parser
}

func NewAnimalService(
	animalRepository repository.AnimalRepository,
	milestoneRepository repository.MilestoneRepository,
	donationRepository repository.DonationRepository,
	fileService *FileService,
	parser *markdown.Parser,
) *AnimalService {
	return &AnimalService{
		animalRepository:    animalRepository,
		milestoneRepository: milestoneRepository,
		donationRepository:  donationRepository,
		fileService:         fileService,
		parser:              parser,
	}
}

func (s *AnimalService) Create(ctx context.Context, in CreateAnimalInput) (*model.Animal, error) {
	err := validation.ValidateText("name", in.Name, 100)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := time.Now()
	animal := &model.Animal{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Bio:           strings.TrimSpace(in.Bio),
		AdmissionDate: in.AdmissionDate,
		Status:        strings.TrimSpace(in.Status),
		JourneyStory:  in.JourneyStory,
		CreatedAt:     now,
		Milestones:    []*model.Milestone{},
	}
	if animal.AdmissionDate.IsZero() {
		animal.AdmissionDate = now
	}
	if animal.Status == "" {
		animal.Status = model.AnimalStatusRecovering
	}

	err = s.animalRepository.Create(ctx, animal)
	if err != nil {
		return nil, fmt.Errorf("failed to create animal: %w", err)
	}

	return animal, nil
}

// ByID returns the animal with its milestones.
func (s *AnimalService) ByID(ctx context.Context, id string) (*model.Animal, error) {
	animal, err := s.animalRepository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	animal.Milestones, err = s.milestoneRepository.ByAnimal(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}

	return animal, nil
}

func (s *AnimalService) List(ctx context.Context, offset, limit int) ([]*model.Animal, error) {
	offset, limit = page(offset, limit)

	animals, err := s.animalRepository.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(animals))
	byID := make(map[string]*model.Animal, len(animals))
	for _, a := range animals {
		a.Milestones = []*model.Milestone{}
		ids = append(ids, a.ID)
		byID[a.ID] = a
	}

	milestones, err := s.milestoneRepository.ByAnimalIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	for _, m := range milestones {
		a := byID[m.AnimalID]
		a.Milestones = append(a.Milestones, m)
	}

	return animals, nil
}

// Delete removes the animal with its milestones and donations, then the
// image and proof blobs that belonged to them.
func (s *AnimalService) Delete(ctx context.Context, id string) error {
	animal, err := s.animalRepository.ByID(ctx, id)
	if err != nil {
		return err
	}

	blobs, err := s.donationRepository.ProofPathsByAnimal(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list proofs: %w", err)
	}
	if animal.HasImage() {
		blobs = append(blobs, *animal.ImagePath)
	}

	err = s.animalRepository.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.fileService.Delete(ctx, blobs...)
	slog.Info("animal deleted", "animal_id", id, "blobs", len(blobs))
	return nil
}

// SetImage replaces the animal's photo. Validation of the upload is done by the caller.
func (s *AnimalService) SetImage(ctx context.Context, id string, r io.Reader, contentType string) (*model.Animal, error) {
	animal, err := s.animalRepository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	imagePath, err := s.fileService.Upload(ctx, FolderAnimals, r, contentType)
	if err != nil {
		return nil, err
	}

	err = s.animalRepository.SetImage(ctx, id, imagePath, contentType)
	if err != nil {
		s.fileService.Delete(ctx, imagePath)
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	if animal.HasImage() {
		s.fileService.Delete(ctx, *animal.ImagePath)
	}

	animal.ImagePath = &imagePath
	animal.ImageContentType = &contentType
	return animal, nil
}

// Image opens the animal's photo. The caller closes the reader.
func (s *AnimalService) Image(ctx context.Context, id string) (io.ReadCloser, string, error) {
	animal, err := s.animalRepository.ByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !animal.HasImage() {
		return nil, "", ErrImageNotFound
	}

	rc, err := s.fileService.Open(ctx, *animal.ImagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}

	contentType := "application/octet-stream"
	if animal.ImageContentType != nil {
		contentType = *animal.ImageContentType
	}
	return rc, contentType, nil
}

// ImportProfile creates an animal from a markdown profile: frontmatter
// fields name, status, bio and admitted, with the body as journey story.
func (s *AnimalService) ImportProfile(ctx context.Context, source []byte) (*model.Animal, error) {
	profile, err := s.parser.ParseProfile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return s.Create(ctx, CreateAnimalInput{
		Name:          profile.Name,
		Bio:           profile.Bio,
		AdmissionDate: profile.Admitted,
		Status:        profile.Status,
		JourneyStory:  profile.Story,
	})
}

// StoryHTML renders the journey story markdown.
func (s *AnimalService) StoryHTML(animal *model.Animal) (string, error) {
	if animal.JourneyStory == "" {
		return "", nil
	}
	html, err := s.parser.Render([]byte(animal.JourneyStory))
	if err != nil {
		return "", fmt.Errorf("failed to render story: %w", err)
	}
	return string(html), nil
}

func page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}
