package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/models"
)

// SpeciesRepository provides data access for species and their people and
// film links.
type SpeciesRepository interface {
	Create(ctx context.Context, species *models.Species) error
	GetOrCreate(ctx context.Context, species *models.Species) (*models.Species, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Species, error)
	GetByName(ctx context.Context, name string) (*models.Species, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Species, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	ListByPerson(ctx context.Context, personID uuid.UUID) ([]*models.Species, error)
	ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Species, error)
	ListByHomeworld(ctx context.Context, planetID uuid.UUID) ([]*models.Species, error)
	AddPerson(ctx context.Context, speciesID, personID uuid.UUID) (bool, error)
	RemovePerson(ctx context.Context, speciesID, personID uuid.UUID) (bool, error)
	AddFilm(ctx context.Context, speciesID, filmID uuid.UUID) (bool, error)
	RemoveFilm(ctx context.Context, speciesID, filmID uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type speciesRepository struct{}

// NewSpeciesRepository creates a new SpeciesRepository.
func NewSpeciesRepository() SpeciesRepository {
	return &speciesRepository{}
}

var _ SpeciesRepository = (*speciesRepository)(nil)

const speciesColumns = `
		s.id, s.name, s.classification, s.designation, s.average_height,
		s.skin_colors, s.hair_colors, s.eye_colors, s.average_lifespan,
		s.language, s.homeworld_id, s.swapi_url, s.created, s.edited,
		(SELECT COUNT(*) FROM species_people sp WHERE sp.species_id = s.id) AS people_count,
		(SELECT COUNT(*) FROM species_films sf WHERE sf.species_id = s.id) AS film_count`

const speciesInsert = `
		INSERT INTO species (
			id, name, classification, designation, average_height, skin_colors,
			hair_colors, eye_colors, average_lifespan, language, homeworld_id,
			swapi_url, created, edited
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`

func speciesArgs(s *models.Species, now time.Time) []any {
	return []any{
		s.ID,
		s.Name,
		nullString(s.Classification),
		nullString(s.Designation),
		nullString(s.AverageHeight),
		nullString(s.SkinColors),
		nullString(s.HairColors),
		nullString(s.EyeColors),
		nullString(s.AverageLifespan),
		nullString(s.Language),
		s.HomeworldID,
		nullString(s.SwapiURL),
		now,
	}
}

func (r *speciesRepository) Create(ctx context.Context, species *models.Species) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if species.ID == uuid.Nil {
		species.ID = uuid.New()
	}

	err := scope.Conn.QueryRow(ctx, speciesInsert+` RETURNING created, edited`, speciesArgs(species, time.Now())...).
		Scan(&species.Created, &species.Edited)
	if err != nil {
		if _, ok := constraintName(err); ok {
			return conflict("species", "name", species.Name)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("homeworld %s: %w", species.HomeworldID, apperrors.ErrNotFound)
		}
		if invalid := invalidInput("species", err); invalid != nil {
			return invalid
		}
		return fmt.Errorf("failed to create species: %w", err)
	}

	return nil
}

// GetOrCreate stores species unless one with the same name exists.
func (r *speciesRepository) GetOrCreate(ctx context.Context, species *models.Species) (*models.Species, bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, false, apperrors.ErrNoScope
	}

	if species.ID == uuid.Nil {
		species.ID = uuid.New()
	}

	err := scope.Conn.QueryRow(ctx, speciesInsert+` ON CONFLICT DO NOTHING RETURNING created, edited`, speciesArgs(species, time.Now())...).
		Scan(&species.Created, &species.Edited)
	if err == nil {
		return species, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create species: %w", err)
	}

	existing, err := r.GetByName(ctx, species.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, conflict("species", "name", species.Name)
		}
		return nil, false, err
	}
	return existing, false, nil
}

func (r *speciesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Species, error) {
	return r.getOne(ctx, `WHERE s.id = $1`, id)
}

func (r *speciesRepository) GetByName(ctx context.Context, name string) (*models.Species, error) {
	return r.getOne(ctx, `WHERE s.name = $1`, name)
}

func (r *speciesRepository) getOne(ctx context.Context, where string, arg any) (*models.Species, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	species, err := scanSpecies(scope.Conn.QueryRow(ctx, `SELECT `+speciesColumns+` FROM species s `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return species, nil
}

func (r *speciesRepository) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Species, error) {
	cond, args := nameCondition("s.name", filter, 1, nil)
	args = append(args, limit, offset)
	tail := fmt.Sprintf(`WHERE %s ORDER BY s.name LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))
	return r.query(ctx, tail, args...)
}

func (r *speciesRepository) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	cond, args := nameCondition("s.name", filter, 1, nil)
	var total int
	if err := scope.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM species s WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count species: %w", err)
	}
	return total, nil
}

func (r *speciesRepository) ListByPerson(ctx context.Context, personID uuid.UUID) ([]*models.Species, error) {
	return r.query(ctx, `
		JOIN species_people l ON l.species_id = s.id
		WHERE l.person_id = $1
		ORDER BY s.name`, personID)
}

func (r *speciesRepository) ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Species, error) {
	return r.query(ctx, `
		JOIN species_films l ON l.species_id = s.id
		WHERE l.film_id = $1
		ORDER BY s.name`, filmID)
}

func (r *speciesRepository) ListByHomeworld(ctx context.Context, planetID uuid.UUID) ([]*models.Species, error) {
	return r.query(ctx, `WHERE s.homeworld_id = $1 ORDER BY s.name`, planetID)
}

func (r *speciesRepository) AddPerson(ctx context.Context, speciesID, personID uuid.UUID) (bool, error) {
	return addLink(ctx, speciesPeople, speciesID, personID)
}

func (r *speciesRepository) RemovePerson(ctx context.Context, speciesID, personID uuid.UUID) (bool, error) {
	return removeLink(ctx, speciesPeople, speciesID, personID)
}

func (r *speciesRepository) AddFilm(ctx context.Context, speciesID, filmID uuid.UUID) (bool, error) {
	return addLink(ctx, speciesFilms, speciesID, filmID)
}

func (r *speciesRepository) RemoveFilm(ctx context.Context, speciesID, filmID uuid.UUID) (bool, error) {
	return removeLink(ctx, speciesFilms, speciesID, filmID)
}

func (r *speciesRepository) DeleteAll(ctx context.Context) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM species`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete species: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *speciesRepository) query(ctx context.Context, tail string, args ...any) ([]*models.Species, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+speciesColumns+` FROM species s `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query species: %w", err)
	}
	defer rows.Close()

	list := make([]*models.Species, 0)
	for rows.Next() {
		s, err := scanSpecies(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating species: %w", err)
	}

	return list, nil
}

func scanSpecies(row pgx.Row) (*models.Species, error) {
	var s models.Species
	var classification, designation, height, skin, hair, eye, lifespan, language, swapiURL *string

	err := row.Scan(
		&s.ID,
		&s.Name,
		&classification,
		&designation,
		&height,
		&skin,
		&hair,
		&eye,
		&lifespan,
		&language,
		&s.HomeworldID,
		&swapiURL,
		&s.Created,
		&s.Edited,
		&s.PeopleCount,
		&s.FilmCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan species: %w", err)
	}

	s.Classification = deref(classification)
	s.Designation = deref(designation)
	s.AverageHeight = deref(height)
	s.SkinColors = deref(skin)
	s.HairColors = deref(hair)
	s.EyeColors = deref(eye)
	s.AverageLifespan = deref(lifespan)
	s.Language = deref(language)
	s.SwapiURL = deref(swapiURL)

	return &s, nil
}
