package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

// PlanetService provides read, create and delete operations for planets.
type PlanetService interface {
	// List returns every planet matching filter, ordered by name.
	List(ctx context.Context, filter models.ListFilter) ([]*models.Planet, error)
	ListPage(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Planet], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Planet, error)

	// Residents returns the people whose homeworld is the planet.
	Residents(ctx context.Context, id uuid.UUID) ([]*models.Person, error)

	// Films returns the films featuring the planet, ordered by episode.
	Films(ctx context.Context, id uuid.UUID) ([]*models.Film, error)

	Create(ctx context.Context, input *CreatePlanetInput) (*models.MutationResult[models.Planet], error)

	// Delete removes a planet. People and species that called it home keep
	// their records with the homeworld cleared.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreatePlanetInput carries the fields of a new planet.
type CreatePlanetInput struct {
	Name           string
	RotationPeriod string
	OrbitalPeriod  string
	Diameter       string
	Climate        string
	Gravity        string
	Terrain        string
	SurfaceWater   string
	Population     string
}

type planetService struct {
	planetRepo repositories.PlanetRepository
	personRepo repositories.PersonRepository
	filmRepo   repositories.FilmRepository
	tx         database.TxFunc
	logger     *zap.Logger
}

// NewPlanetService creates a new PlanetService.
func NewPlanetService(
	planetRepo repositories.PlanetRepository,
	personRepo repositories.PersonRepository,
	filmRepo repositories.FilmRepository,
	tx database.TxFunc,
	logger *zap.Logger,
) PlanetService {
	return &planetService{
		planetRepo: planetRepo,
		personRepo: personRepo,
		filmRepo:   filmRepo,
		tx:         tx,
		logger:     logger.Named("planet-service"),
	}
}

var _ PlanetService = (*planetService)(nil)

func (s *planetService) List(ctx context.Context, filter models.ListFilter) ([]*models.Planet, error) {
	planets, err := listAll(ctx,
		func(ctx context.Context) (int, error) { return s.planetRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Planet, error) {
			return s.planetRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}
	return planets, nil
}

func (s *planetService) ListPage(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Planet], error) {
	result, err := paginate(ctx, page,
		func(ctx context.Context) (int, error) { return s.planetRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Planet, error) {
			return s.planetRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list planets: %w", err)
	}
	return result, nil
}

func (s *planetService) Get(ctx context.Context, id uuid.UUID) (*models.Planet, error) {
	return s.planetRepo.GetByID(ctx, id)
}

func (s *planetService) Residents(ctx context.Context, id uuid.UUID) ([]*models.Person, error) {
	return s.personRepo.ListByHomeworld(ctx, id)
}

func (s *planetService) Films(ctx context.Context, id uuid.UUID) ([]*models.Film, error) {
	return s.filmRepo.ListByPlanet(ctx, id)
}

func (s *planetService) Create(ctx context.Context, input *CreatePlanetInput) (*models.MutationResult[models.Planet], error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Failed[models.Planet]("Name is required"), nil
	}
	if problems := planetLimits(name, input); len(problems) > 0 {
		return models.Failed[models.Planet](problems...), nil
	}

	planet := &models.Planet{
		Name:           name,
		RotationPeriod: input.RotationPeriod,
		OrbitalPeriod:  input.OrbitalPeriod,
		Diameter:       input.Diameter,
		Climate:        input.Climate,
		Gravity:        input.Gravity,
		Terrain:        input.Terrain,
		SurfaceWater:   input.SurfaceWater,
		Population:     input.Population,
	}

	if err := s.planetRepo.Create(ctx, planet); err != nil {
		var ce *apperrors.ConflictError
		if errors.As(err, &ce) {
			return models.Failed[models.Planet](ce.Error()), nil
		}
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return models.Failed[models.Planet](err.Error()), nil
		}
		return nil, fmt.Errorf("failed to create planet: %w", err)
	}

	s.logger.Info("Created planet",
		zap.String("id", planet.ID.String()),
		zap.String("name", planet.Name))

	return models.Succeeded(planet), nil
}

func (s *planetService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx(ctx, func(ctx context.Context) error {
		return s.planetRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Deleted planet", zap.String("id", id.String()))
	return nil
}
