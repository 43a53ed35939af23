package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/models"
)

// FilmRepository provides data access for films and their planet links.
type FilmRepository interface {
	Create(ctx context.Context, film *models.Film) error
	GetOrCreate(ctx context.Context, film *models.Film) (*models.Film, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Film, error)
	GetByTitle(ctx context.Context, title string) (*models.Film, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Film, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Film, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	ListByPerson(ctx context.Context, personID uuid.UUID) ([]*models.Film, error)
	ListByPlanet(ctx context.Context, planetID uuid.UUID) ([]*models.Film, error)
	ListBySpecies(ctx context.Context, speciesID uuid.UUID) ([]*models.Film, error)
	AddPlanet(ctx context.Context, filmID, planetID uuid.UUID) (bool, error)
	RemovePlanet(ctx context.Context, filmID, planetID uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type filmRepository struct{}

// NewFilmRepository creates a new FilmRepository.
func NewFilmRepository() FilmRepository {
	return &filmRepository{}
}

var _ FilmRepository = (*filmRepository)(nil)

const filmColumns = `
		f.id, f.title, f.episode_id, f.opening_crawl, f.director, f.producer,
		f.release_date, f.swapi_url, f.created, f.edited,
		(SELECT COUNT(*) FROM person_films pf WHERE pf.film_id = f.id) AS character_count,
		(SELECT COUNT(*) FROM film_planets fp WHERE fp.film_id = f.id) AS planet_count`

const filmInsert = `
		INSERT INTO films (
			id, title, episode_id, opening_crawl, director, producer,
			release_date, swapi_url, created, edited
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`

func filmArgs(f *models.Film, now time.Time) []any {
	return []any{
		f.ID,
		f.Title,
		f.EpisodeID,
		f.OpeningCrawl,
		f.Director,
		f.Producer,
		f.ReleaseDate,
		nullString(f.SwapiURL),
		now,
	}
}

// filmConflict names the key a film insert collided with.
func filmConflict(f *models.Film, constraint string) error {
	if constraint == "films_episode_id_key" {
		return conflict("film", "episode_id", strconv.Itoa(f.EpisodeID))
	}
	return conflict("film", "title", f.Title)
}

func (r *filmRepository) Create(ctx context.Context, film *models.Film) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if film.ID == uuid.Nil {
		film.ID = uuid.New()
	}

	err := scope.Conn.QueryRow(ctx, filmInsert+` RETURNING created, edited`, filmArgs(film, time.Now())...).
		Scan(&film.Created, &film.Edited)
	if err != nil {
		if constraint, ok := constraintName(err); ok {
			return filmConflict(film, constraint)
		}
		if invalid := invalidInput("film", err); invalid != nil {
			return invalid
		}
		return fmt.Errorf("failed to create film: %w", err)
	}

	return nil
}

// GetOrCreate stores film unless one with the same title exists. A different
// film already holding the episode number is reported as a conflict.
func (r *filmRepository) GetOrCreate(ctx context.Context, film *models.Film) (*models.Film, bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, false, apperrors.ErrNoScope
	}

	if film.ID == uuid.Nil {
		film.ID = uuid.New()
	}

	err := scope.Conn.QueryRow(ctx, filmInsert+` ON CONFLICT DO NOTHING RETURNING created, edited`, filmArgs(film, time.Now())...).
		Scan(&film.Created, &film.Edited)
	if err == nil {
		return film, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create film: %w", err)
	}

	existing, err := r.GetByTitle(ctx, film.Title)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, filmConflict(film, "films_episode_id_key")
		}
		return nil, false, err
	}
	return existing, false, nil
}

func (r *filmRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	return r.getOne(ctx, `WHERE f.id = $1`, id)
}

func (r *filmRepository) GetByTitle(ctx context.Context, title string) (*models.Film, error) {
	return r.getOne(ctx, `WHERE f.title = $1`, title)
}

func (r *filmRepository) getOne(ctx context.Context, where string, arg any) (*models.Film, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	film, err := scanFilm(scope.Conn.QueryRow(ctx, `SELECT `+filmColumns+` FROM films f `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return film, nil
}

func (r *filmRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Film, error) {
	if len(ids) == 0 {
		return []*models.Film{}, nil
	}
	return r.query(ctx, `WHERE f.id = ANY($1) ORDER BY f.episode_id`, ids)
}

func (r *filmRepository) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Film, error) {
	cond, args := nameCondition("f.title", filter, 1, nil)
	args = append(args, limit, offset)
	tail := fmt.Sprintf(`WHERE %s ORDER BY f.episode_id LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))
	return r.query(ctx, tail, args...)
}

func (r *filmRepository) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	cond, args := nameCondition("f.title", filter, 1, nil)
	var total int
	if err := scope.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM films f WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count films: %w", err)
	}
	return total, nil
}

func (r *filmRepository) ListByPerson(ctx context.Context, personID uuid.UUID) ([]*models.Film, error) {
	return r.query(ctx, `
		JOIN person_films l ON l.film_id = f.id
		WHERE l.person_id = $1
		ORDER BY f.episode_id`, personID)
}

func (r *filmRepository) ListByPlanet(ctx context.Context, planetID uuid.UUID) ([]*models.Film, error) {
	return r.query(ctx, `
		JOIN film_planets l ON l.film_id = f.id
		WHERE l.planet_id = $1
		ORDER BY f.episode_id`, planetID)
}

func (r *filmRepository) ListBySpecies(ctx context.Context, speciesID uuid.UUID) ([]*models.Film, error) {
	return r.query(ctx, `
		JOIN species_films l ON l.film_id = f.id
		WHERE l.species_id = $1
		ORDER BY f.episode_id`, speciesID)
}

func (r *filmRepository) AddPlanet(ctx context.Context, filmID, planetID uuid.UUID) (bool, error) {
	return addLink(ctx, filmPlanets, filmID, planetID)
}

func (r *filmRepository) RemovePlanet(ctx context.Context, filmID, planetID uuid.UUID) (bool, error) {
	return removeLink(ctx, filmPlanets, filmID, planetID)
}

func (r *filmRepository) DeleteAll(ctx context.Context) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM films`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete films: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *filmRepository) query(ctx context.Context, tail string, args ...any) ([]*models.Film, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+filmColumns+` FROM films f `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query films: %w", err)
	}
	defer rows.Close()

	films := make([]*models.Film, 0)
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		films = append(films, film)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating films: %w", err)
	}

	return films, nil
}

func scanFilm(row pgx.Row) (*models.Film, error) {
	var f models.Film
	var swapiURL *string

	err := row.Scan(
		&f.ID,
		&f.Title,
		&f.EpisodeID,
		&f.OpeningCrawl,
		&f.Director,
		&f.Producer,
		&f.ReleaseDate,
		&swapiURL,
		&f.Created,
		&f.Edited,
		&f.CharacterCount,
		&f.PlanetCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan film: %w", err)
	}

	f.SwapiURL = deref(swapiURL)
	return &f, nil
}
