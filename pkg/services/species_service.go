package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

// SpeciesService provides read operations for species.
type SpeciesService interface {
	// List returns every species matching filter, homeworlds expanded.
	List(ctx context.Context, filter models.ListFilter) ([]*models.Species, error)
	ListPage(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Species], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Species, error)
	People(ctx context.Context, id uuid.UUID) ([]*models.Person, error)
	Films(ctx context.Context, id uuid.UUID) ([]*models.Film, error)
}

type speciesService struct {
	speciesRepo repositories.SpeciesRepository
	personRepo  repositories.PersonRepository
	filmRepo    repositories.FilmRepository
	homeworlds  homeworldResolver
	logger      *zap.Logger
}

// NewSpeciesService creates a new SpeciesService.
func NewSpeciesService(
	speciesRepo repositories.SpeciesRepository,
	personRepo repositories.PersonRepository,
	filmRepo repositories.FilmRepository,
	planetRepo repositories.PlanetRepository,
	logger *zap.Logger,
) SpeciesService {
	return &speciesService{
		speciesRepo: speciesRepo,
		personRepo:  personRepo,
		filmRepo:    filmRepo,
		homeworlds:  homeworldResolver{planetRepo: planetRepo},
		logger:      logger.Named("species-service"),
	}
}

var _ SpeciesService = (*speciesService)(nil)

func (s *speciesService) List(ctx context.Context, filter models.ListFilter) ([]*models.Species, error) {
	species, err := listAll(ctx,
		func(ctx context.Context) (int, error) { return s.speciesRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Species, error) {
			return s.speciesRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	if err := s.homeworlds.species(ctx, species...); err != nil {
		return nil, err
	}
	return species, nil
}

func (s *speciesService) ListPage(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Species], error) {
	result, err := paginate(ctx, page,
		func(ctx context.Context) (int, error) { return s.speciesRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Species, error) {
			return s.speciesRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list species: %w", err)
	}
	if err := s.homeworlds.species(ctx, result.Items...); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *speciesService) Get(ctx context.Context, id uuid.UUID) (*models.Species, error) {
	species, err := s.speciesRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.homeworlds.species(ctx, species); err != nil {
		return nil, err
	}
	return species, nil
}

func (s *speciesService) People(ctx context.Context, id uuid.UUID) ([]*models.Person, error) {
	return s.personRepo.ListBySpecies(ctx, id)
}

func (s *speciesService) Films(ctx context.Context, id uuid.UUID) ([]*models.Film, error) {
	return s.filmRepo.ListBySpecies(ctx, id)
}
