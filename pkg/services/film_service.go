package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

// FilmService provides read and create operations for films.
type FilmService interface {
	// List returns every film matching filter, ordered by episode.
	List(ctx context.Context, filter models.ListFilter) ([]*models.Film, error)

	// ListPage returns one page of films matching filter.
	ListPage(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Film], error)

	Get(ctx context.Context, id uuid.UUID) (*models.Film, error)

	// Planets returns the planets a film features.
	Planets(ctx context.Context, id uuid.UUID) ([]*models.Planet, error)

	// Characters returns the people appearing in a film. Returns
	// apperrors.ErrNotFound for an unknown film.
	Characters(ctx context.Context, id uuid.UUID) ([]*models.Person, error)

	// CharactersInFilm is Characters for lookups where an unknown film
	// simply has no characters.
	CharactersInFilm(ctx context.Context, id uuid.UUID) ([]*models.Person, error)

	// Species returns the species appearing in a film.
	Species(ctx context.Context, id uuid.UUID) ([]*models.Species, error)

	// Create validates input and stores a film with its planet and character
	// links in one transaction.
	Create(ctx context.Context, input *CreateFilmInput) (*models.MutationResult[models.Film], error)
}

// CreateFilmInput carries the fields of a new film. ReleaseDate uses
// YYYY-MM-DD.
type CreateFilmInput struct {
	Title        string
	EpisodeID    int
	OpeningCrawl string
	Director     string
	Producer     string
	ReleaseDate  string
	PlanetIDs    []uuid.UUID
	CharacterIDs []uuid.UUID
}

type filmService struct {
	filmRepo    repositories.FilmRepository
	planetRepo  repositories.PlanetRepository
	personRepo  repositories.PersonRepository
	speciesRepo repositories.SpeciesRepository
	tx          database.TxFunc
	logger      *zap.Logger
}

// NewFilmService creates a new FilmService.
func NewFilmService(
	filmRepo repositories.FilmRepository,
	planetRepo repositories.PlanetRepository,
	personRepo repositories.PersonRepository,
	speciesRepo repositories.SpeciesRepository,
	tx database.TxFunc,
	logger *zap.Logger,
) FilmService {
	return &filmService{
		filmRepo:    filmRepo,
		planetRepo:  planetRepo,
		personRepo:  personRepo,
		speciesRepo: speciesRepo,
		tx:          tx,
		logger:      logger.Named("film-service"),
	}
}

var _ FilmService = (*filmService)(nil)

func (s *filmService) List(ctx context.Context, filter models.ListFilter) ([]*models.Film, error) {
	films, err := listAll(ctx,
		func(ctx context.Context) (int, error) { return s.filmRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Film, error) {
			return s.filmRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return films, nil
}

func (s *filmService) ListPage(ctx context.Context, filter models.ListFilter, page models.PageRequest) (*models.Page[models.Film], error) {
	result, err := paginate(ctx, page,
		func(ctx context.Context) (int, error) { return s.filmRepo.Count(ctx, filter) },
		func(ctx context.Context, limit, offset int) ([]*models.Film, error) {
			return s.filmRepo.List(ctx, filter, limit, offset)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return result, nil
}

func (s *filmService) Get(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	return s.filmRepo.GetByID(ctx, id)
}

func (s *filmService) Planets(ctx context.Context, id uuid.UUID) ([]*models.Planet, error) {
	return s.planetRepo.ListByFilm(ctx, id)
}

func (s *filmService) Characters(ctx context.Context, id uuid.UUID) ([]*models.Person, error) {
	if _, err := s.filmRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.personRepo.ListByFilm(ctx, id)
}

func (s *filmService) CharactersInFilm(ctx context.Context, id uuid.UUID) ([]*models.Person, error) {
	return s.personRepo.ListByFilm(ctx, id)
}

func (s *filmService) Species(ctx context.Context, id uuid.UUID) ([]*models.Species, error) {
	return s.speciesRepo.ListByFilm(ctx, id)
}

func (s *filmService) Create(ctx context.Context, input *CreateFilmInput) (*models.MutationResult[models.Film], error) {
	title := strings.TrimSpace(input.Title)

	var problems []string
	if title == "" {
		problems = append(problems, "Title is required")
	}
	if input.EpisodeID < 1 {
		problems = append(problems, "Episode ID must be a positive integer")
	}
	problems = append(problems, filmLimits(title, input)...)
	releaseDate, err := time.Parse(models.DateLayout, strings.TrimSpace(input.ReleaseDate))
	if err != nil {
		problems = append(problems, fmt.Sprintf("Invalid release date %q: expected YYYY-MM-DD", input.ReleaseDate))
	}

	planetIDs := dedupe(input.PlanetIDs)
	missing, err := s.missingPlanets(ctx, planetIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		problems = append(problems, fmt.Sprintf("%s: %s", MsgPlanetNotFound, id))
	}

	characterIDs := dedupe(input.CharacterIDs)
	missing, err = s.missingPeople(ctx, characterIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range missing {
		problems = append(problems, fmt.Sprintf("%s: %s", MsgCharacterNotFound, id))
	}

	if len(problems) > 0 {
		return models.Failed[models.Film](problems...), nil
	}

	film := &models.Film{
		Title:        title,
		EpisodeID:    input.EpisodeID,
		OpeningCrawl: input.OpeningCrawl,
		Director:     input.Director,
		Producer:     input.Producer,
		ReleaseDate:  releaseDate,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.filmRepo.Create(ctx, film); err != nil {
			return err
		}
		for _, planetID := range planetIDs {
			if _, err := s.filmRepo.AddPlanet(ctx, film.ID, planetID); err != nil {
				return fmt.Errorf("failed to link planet %s: %w", planetID, err)
			}
		}
		for _, personID := range characterIDs {
			if _, err := s.personRepo.AddFilm(ctx, personID, film.ID); err != nil {
				return fmt.Errorf("failed to link character %s: %w", personID, err)
			}
		}
		return nil
	})
	if err != nil {
		var ce *apperrors.ConflictError
		if errors.As(err, &ce) {
			return models.Failed[models.Film](ce.Error()), nil
		}
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return models.Failed[models.Film](err.Error()), nil
		}
		return nil, fmt.Errorf("failed to create film: %w", err)
	}

	s.logger.Info("Created film",
		zap.String("id", film.ID.String()),
		zap.String("title", film.Title),
		zap.Int("planets", len(planetIDs)),
		zap.Int("characters", len(characterIDs)))

	stored, err := s.filmRepo.GetByID(ctx, film.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload film: %w", err)
	}
	return models.Succeeded(stored), nil
}

func (s *filmService) missingPlanets(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.planetRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up planets: %w", err)
	}
	present := make(map[uuid.UUID]bool, len(found))
	for _, p := range found {
		present[p.ID] = true
	}
	return absent(ids, present), nil
}

func (s *filmService) missingPeople(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := s.personRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up characters: %w", err)
	}
	present := make(map[uuid.UUID]bool, len(found))
	for _, p := range found {
		present[p.ID] = true
	}
	return absent(ids, present), nil
}

func absent(ids []uuid.UUID, present map[uuid.UUID]bool) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range ids {
		if !present[id] {
			out = append(out, id)
		}
	}
	return out
}

// dedupe drops repeated ids, keeping first-seen order.
func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
