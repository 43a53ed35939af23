package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

// Validation messages shared by the create mutations.
const (
	MsgPlanetNotFound    = "Planet not found"
	MsgCharacterNotFound = "Character not found"
)

// PersonService provides read and create operations for characters.
type PersonService interface {
	// List returns one page of people matching filter, homeworlds expanded.
	List(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Person], error)

	// Get returns a person with the homeworld expanded.
	Get(ctx context.Context, id uuid.UUID) (*models.Person, error)

	// GetFilms returns a person and their films ordered by episode, each with
	// its planets. Returns apperrors.ErrNotFound for an unknown person.
	GetFilms(ctx context.Context, id uuid.UUID) (*models.Person, []*models.FilmWithPlanets, error)

	// Search returns every person whose name contains name, ignoring case.
	// An empty name matches everyone.
	Search(ctx context.Context, name string) ([]*models.Person, error)

	// FilmsByCharacter returns the films a person appears in. Unknown ids
	// yield an empty list.
	FilmsByCharacter(ctx context.Context, id uuid.UUID) ([]*models.Film, error)

	// Species returns the species a person belongs to.
	Species(ctx context.Context, id uuid.UUID) ([]*models.Species, error)

	// Create validates input and stores a new person.
	Create(ctx context.Context, input *CreatePersonInput) (*models.MutationResult[models.Person], error)
}

// CreatePersonInput carries the fields of a new person.
type CreatePersonInput struct {
	Name        string
	Height      string
	Mass        string
	HairColor   string
	SkinColor   string
	EyeColor    string
	BirthYear   string
	Gender      string
	HomeworldID *uuid.UUID
}

type personService struct {
	personRepo  repositories.PersonRepository
	planetRepo  repositories.PlanetRepository
	filmRepo    repositories.FilmRepository
	speciesRepo repositories.SpeciesRepository
	homeworlds  homeworldResolver
	logger      *zap.Logger
}

// NewPersonService creates a new PersonService.
func NewPersonService(
	personRepo repositories.PersonRepository,
	planetRepo repositories.PlanetRepository,
	filmRepo repositories.FilmRepository,
	speciesRepo repositories.SpeciesRepository,
	logger *zap.Logger,
) PersonService {
	return &personService{
		personRepo:  personRepo,
		planetRepo:  planetRepo,
		filmRepo:    filmRepo,
		speciesRepo: speciesRepo,
		homeworlds:  homeworldResolver{planetRepo: planetRepo},
		logger:      logger.Named("person-service"),
	}
}

var _ PersonService = (*personService)(nil)

func (s *personService) List(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Person], error) {
	result, err := paginate(ctx, page,
		func(ctx context.Context) (int, error) { return s.personRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Person, error) {
			return s.personRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	if err := s.homeworlds.people(ctx, result.Items...); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *personService) Get(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.homeworlds.people(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

func (s *personService) GetFilms(ctx context.Context, id uuid.UUID) (*models.Person, []*models.FilmWithPlanets, error) {
	person, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	films, err := s.filmRepo.ListByPerson(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list films for person: %w", err)
	}

	out := make([]*models.FilmWithPlanets, 0, len(films))
	for _, film := range films {
		planets, err := s.planetRepo.ListByFilm(ctx, film.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list planets for film: %w", err)
		}
		out = append(out, &models.FilmWithPlanets{Film: film, Planets: planets})
	}
	return person, out, nil
}

func (s *personService) Search(ctx context.Context, name string) ([]*models.Person, error) {
	filter := models.ListFilter{Name: strings.TrimSpace(name)}
	people, err := listAll(ctx,
		func(ctx context.Context) (int, error) { return s.personRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Person, error) {
			return s.personRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search people: %w", err)
	}
	return people, nil
}

func (s *personService) FilmsByCharacter(ctx context.Context, id uuid.UUID) ([]*models.Film, error) {
	return s.filmRepo.ListByPerson(ctx, id)
}

func (s *personService) Species(ctx context.Context, id uuid.UUID) ([]*models.Species, error) {
	return s.speciesRepo.ListByPerson(ctx, id)
}

func (s *personService) Create(ctx context.Context, input *CreatePersonInput) (*models.MutationResult[models.Person], error) {
	name := strings.TrimSpace(input.Name)
	gender := models.Gender(strings.ToLower(strings.TrimSpace(input.Gender)))

	var problems []string
	if name == "" {
		problems = append(problems, "Name is required")
	}
	if !gender.IsValid() {
		problems = append(problems, fmt.Sprintf("Invalid gender %q", input.Gender))
	}
	problems = append(problems, personLimits(name, input)...)
	if input.HomeworldID != nil {
		if _, err := s.planetRepo.GetByID(ctx, *input.HomeworldID); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("failed to look up homeworld: %w", err)
			}
			problems = append(problems, MsgPlanetNotFound)
		}
	}
	if len(problems) > 0 {
		return models.Failed[models.Person](problems...), nil
	}

	person := &models.Person{
		Name:        name,
		Height:      input.Height,
		Mass:        input.Mass,
		HairColor:   input.HairColor,
		SkinColor:   input.SkinColor,
		EyeColor:    input.EyeColor,
		BirthYear:   input.BirthYear,
		Gender:      gender,
		HomeworldID: input.HomeworldID,
	}

	if err := s.personRepo.Create(ctx, person); err != nil {
		var ce *apperrors.ConflictError
		switch {
		case errors.As(err, &ce):
			return models.Failed[models.Person](ce.Error()), nil
		case errors.Is(err, apperrors.ErrInvalidInput):
			return models.Failed[models.Person](err.Error()), nil
		case errors.Is(err, apperrors.ErrNotFound):
			return models.Failed[models.Person](MsgPlanetNotFound), nil
		}
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	s.logger.Info("Created person",
		zap.String("id", person.ID.String()),
		zap.String("name", person.Name))

	if err := s.homeworlds.people(ctx, person); err != nil {
		return nil, err
	}
	return models.Succeeded(person), nil
}
