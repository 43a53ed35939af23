package services

import (
	"context"
	"fmt"

	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

// StatsService reports dataset totals.
type StatsService interface {
	// Get counts every entity type. Nothing is cached.
	Get(ctx context.Context) (*models.Stats, error)
}

type statsService struct {
	personRepo  repositories.PersonRepository
	filmRepo    repositories.FilmRepository
	planetRepo  repositories.PlanetRepository
	speciesRepo repositories.SpeciesRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	personRepo repositories.PersonRepository,
	filmRepo repositories.FilmRepository,
	planetRepo repositories.PlanetRepository,
	speciesRepo repositories.SpeciesRepository,
) StatsService {
	return &statsService{
		personRepo:  personRepo,
		filmRepo:    filmRepo,
		planetRepo:  planetRepo,
		speciesRepo: speciesRepo,
	}
}

var _ StatsService = (*statsService)(nil)

func (s *statsService) Get(ctx context.Context) (*models.Stats, error) {
	var (
		stats models.Stats
		err   error
		all   models.ListFilter
	)

	if stats.TotalPeople, err = s.personRepo.Count(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to count people: %w", err)
	}
	if stats.TotalFilms, err = s.filmRepo.Count(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to count films: %w", err)
	}
	if stats.TotalPlanets, err = s.planetRepo.Count(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to count planets: %w", err)
	}
	if stats.TotalSpecies, err = s.speciesRepo.Count(ctx, all); err != nil {
		return nil, fmt.Errorf("failed to count species: %w", err)
	}
	return &stats, nil
}
