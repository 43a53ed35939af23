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

// PlanetRepository provides data access for planets.
type PlanetRepository interface {
	Create(ctx context.Context, planet *models.Planet) error
	GetOrCreate(ctx context.Context, planet *models.Planet) (*models.Planet, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Planet, error)
	GetByName(ctx context.Context, name string) (*models.Planet, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Planet, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Planet, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Planet, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int64, error)
}

type planetRepository struct{}

// NewPlanetRepository creates a new PlanetRepository.
func NewPlanetRepository() PlanetRepository {
	return &planetRepository{}
}

var _ PlanetRepository = (*planetRepository)(nil)

const planetColumns = `
		p.id, p.name, p.rotation_period, p.orbital_period, p.diameter, p.climate,
		p.gravity, p.terrain, p.surface_water, p.population, p.swapi_url,
		p.created, p.edited,
		(SELECT COUNT(*) FROM people r WHERE r.homeworld_id = p.id) AS resident_count,
		(SELECT COUNT(*) FROM film_planets fp WHERE fp.planet_id = p.id) AS film_count`

const planetInsert = `
		INSERT INTO planets (
			id, name, rotation_period, orbital_period, diameter, climate,
			gravity, terrain, surface_water, population, swapi_url, created, edited
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

func planetArgs(p *models.Planet, now time.Time) []any {
	return []any{
		p.ID,
		p.Name,
		nullString(p.RotationPeriod),
		nullString(p.OrbitalPeriod),
		nullString(p.Diameter),
		nullString(p.Climate),
		nullString(p.Gravity),
		nullString(p.Terrain),
		nullString(p.SurfaceWater),
		nullString(p.Population),
		nullString(p.SwapiURL),
		now,
	}
}

// ============================================================================
// CRUD Operations
// ============================================================================

func (r *planetRepository) Create(ctx context.Context, planet *models.Planet) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if planet.ID == uuid.Nil {
		planet.ID = uuid.New()
	}

	query := planetInsert + ` RETURNING created, edited`

	err := scope.Conn.QueryRow(ctx, query, planetArgs(planet, time.Now())...).Scan(&planet.Created, &planet.Edited)
	if err != nil {
		if _, ok := constraintName(err); ok {
			return conflict("planet", "name", planet.Name)
		}
		if invalid := invalidInput("planet", err); invalid != nil {
			return invalid
		}
		return fmt.Errorf("failed to create planet: %w", err)
	}

	return nil
}

// GetOrCreate stores planet unless one with the same name exists. The stored
// record is returned either way; the bool reports whether it was inserted.
func (r *planetRepository) GetOrCreate(ctx context.Context, planet *models.Planet) (*models.Planet, bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, false, apperrors.ErrNoScope
	}

	if planet.ID == uuid.Nil {
		planet.ID = uuid.New()
	}

	query := planetInsert + ` ON CONFLICT DO NOTHING RETURNING created, edited`

	err := scope.Conn.QueryRow(ctx, query, planetArgs(planet, time.Now())...).Scan(&planet.Created, &planet.Edited)
	if err == nil {
		return planet, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create planet: %w", err)
	}

	existing, err := r.GetByName(ctx, planet.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, conflict("planet", "name", planet.Name)
		}
		return nil, false, err
	}
	return existing, false, nil
}

func (r *planetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Planet, error) {
	return r.getOne(ctx, `WHERE p.id = $1`, id)
}

func (r *planetRepository) GetByName(ctx context.Context, name string) (*models.Planet, error) {
	return r.getOne(ctx, `WHERE p.name = $1`, name)
}

func (r *planetRepository) getOne(ctx context.Context, where string, arg any) (*models.Planet, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	query := `SELECT ` + planetColumns + ` FROM planets p ` + where

	planet, err := scanPlanet(scope.Conn.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return planet, nil
}

func (r *planetRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Planet, error) {
	if len(ids) == 0 {
		return []*models.Planet{}, nil
	}
	return r.query(ctx, `WHERE p.id = ANY($1) ORDER BY p.name`, ids)
}

func (r *planetRepository) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Planet, error) {
	cond, args := nameCondition("p.name", filter, 1, nil)
	args = append(args, limit, offset)
	where := fmt.Sprintf(`WHERE %s ORDER BY p.name LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))
	return r.query(ctx, where, args...)
}

func (r *planetRepository) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	cond, args := nameCondition("p.name", filter, 1, nil)
	var total int
	if err := scope.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM planets p WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count planets: %w", err)
	}
	return total, nil
}

func (r *planetRepository) ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Planet, error) {
	return r.query(ctx, `
		JOIN film_planets l ON l.planet_id = p.id
		WHERE l.film_id = $1
		ORDER BY p.name`, filmID)
}

// Delete removes a planet. People and species that called it home keep their
// rows with the homeworld cleared.
func (r *planetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	now := time.Now()
	if _, err := scope.Conn.Exec(ctx, `UPDATE people SET homeworld_id = NULL, edited = $2 WHERE homeworld_id = $1`, id, now); err != nil {
		return fmt.Errorf("failed to clear resident homeworlds: %w", err)
	}
	if _, err := scope.Conn.Exec(ctx, `UPDATE species SET homeworld_id = NULL, edited = $2 WHERE homeworld_id = $1`, id, now); err != nil {
		return fmt.Errorf("failed to clear species homeworlds: %w", err)
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM planets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete planet: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *planetRepository) DeleteAll(ctx context.Context) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM planets`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete planets: %w", err)
	}
	return result.RowsAffected(), nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func (r *planetRepository) query(ctx context.Context, tail string, args ...any) ([]*models.Planet, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+planetColumns+` FROM planets p `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer rows.Close()

	planets := make([]*models.Planet, 0)
	for rows.Next() {
		planet, err := scanPlanet(rows)
		if err != nil {
			return nil, err
		}
		planets = append(planets, planet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating planets: %w", err)
	}

	return planets, nil
}

func scanPlanet(row pgx.Row) (*models.Planet, error) {
	var p models.Planet
	var rotation, orbital, diameter, climate, gravity, terrain, water, population, swapiURL *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&rotation,
		&orbital,
		&diameter,
		&climate,
		&gravity,
		&terrain,
		&water,
		&population,
		&swapiURL,
		&p.Created,
		&p.Edited,
		&p.ResidentCount,
		&p.FilmCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan planet: %w", err)
	}

	p.RotationPeriod = deref(rotation)
	p.OrbitalPeriod = deref(orbital)
	p.Diameter = deref(diameter)
	p.Climate = deref(climate)
	p.Gravity = deref(gravity)
	p.Terrain = deref(terrain)
	p.SurfaceWater = deref(water)
	p.Population = deref(population)
	p.SwapiURL = deref(swapiURL)

	return &p, nil
}
