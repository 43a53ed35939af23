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

// PersonRepository provides data access for people and their film links.
type PersonRepository interface {
	Create(ctx context.Context, person *models.Person) error
	GetOrCreate(ctx context.Context, person *models.Person) (*models.Person, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error)
	GetByName(ctx context.Context, name string) (*models.Person, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Person, error)
	List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Person, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Person, error)
	ListBySpecies(ctx context.Context, speciesID uuid.UUID) ([]*models.Person, error)
	ListByHomeworld(ctx context.Context, planetID uuid.UUID) ([]*models.Person, error)
	AddFilm(ctx context.Context, personID, filmID uuid.UUID) (bool, error)
	RemoveFilm(ctx context.Context, personID, filmID uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type personRepository struct{}

// NewPersonRepository creates a new PersonRepository.
func NewPersonRepository() PersonRepository {
	return &personRepository{}
}

var _ PersonRepository = (*personRepository)(nil)

const personColumns = `
		p.id, p.name, p.height, p.mass, p.hair_color, p.skin_color, p.eye_color,
		p.birth_year, p.gender, p.homeworld_id, p.swapi_url, p.created, p.edited,
		(SELECT COUNT(*) FROM person_films pf WHERE pf.person_id = p.id) AS film_count`

const personInsert = `
		INSERT INTO people (
			id, name, height, mass, hair_color, skin_color, eye_color,
			birth_year, gender, homeworld_id, swapi_url, created, edited
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

func personArgs(p *models.Person, now time.Time) []any {
	return []any{
		p.ID,
		p.Name,
		nullString(p.Height),
		nullString(p.Mass),
		nullString(p.HairColor),
		nullString(p.SkinColor),
		nullString(p.EyeColor),
		nullString(p.BirthYear),
		nullString(string(p.Gender)),
		p.HomeworldID,
		nullString(p.SwapiURL),
		now,
	}
}

func (r *personRepository) Create(ctx context.Context, person *models.Person) error {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}

	err := scope.Conn.QueryRow(ctx, personInsert+` RETURNING created, edited`, personArgs(person, time.Now())...).
		Scan(&person.Created, &person.Edited)
	if err != nil {
		if _, ok := constraintName(err); ok {
			return conflict("person", "name", person.Name)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("homeworld %s: %w", person.HomeworldID, apperrors.ErrNotFound)
		}
		if invalid := invalidInput("person", err); invalid != nil {
			return invalid
		}
		return fmt.Errorf("failed to create person: %w", err)
	}

	return nil
}

// GetOrCreate stores person unless one with the same name exists.
func (r *personRepository) GetOrCreate(ctx context.Context, person *models.Person) (*models.Person, bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, false, apperrors.ErrNoScope
	}

	if person.ID == uuid.Nil {
		person.ID = uuid.New()
	}

	err := scope.Conn.QueryRow(ctx, personInsert+` ON CONFLICT DO NOTHING RETURNING created, edited`, personArgs(person, time.Now())...).
		Scan(&person.Created, &person.Edited)
	if err == nil {
		return person, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to create person: %w", err)
	}

	existing, err := r.GetByName(ctx, person.Name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, false, conflict("person", "name", person.Name)
		}
		return nil, false, err
	}
	return existing, false, nil
}

func (r *personRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	return r.getOne(ctx, `WHERE p.id = $1`, id)
}

func (r *personRepository) GetByName(ctx context.Context, name string) (*models.Person, error) {
	return r.getOne(ctx, `WHERE p.name = $1`, name)
}

func (r *personRepository) getOne(ctx context.Context, where string, arg any) (*models.Person, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	person, err := scanPerson(scope.Conn.QueryRow(ctx, `SELECT `+personColumns+` FROM people p `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return person, nil
}

func (r *personRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Person, error) {
	if len(ids) == 0 {
		return []*models.Person{}, nil
	}
	return r.query(ctx, `WHERE p.id = ANY($1) ORDER BY p.name`, ids)
}

func (r *personRepository) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Person, error) {
	cond, args := nameCondition("p.name", filter, 1, nil)
	args = append(args, limit, offset)
	tail := fmt.Sprintf(`WHERE %s ORDER BY p.name LIMIT $%d OFFSET $%d`, cond, len(args)-1, len(args))
	return r.query(ctx, tail, args...)
}

func (r *personRepository) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	cond, args := nameCondition("p.name", filter, 1, nil)
	var total int
	if err := scope.Conn.QueryRow(ctx, `SELECT COUNT(*) FROM people p WHERE `+cond, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return total, nil
}

func (r *personRepository) ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Person, error) {
	return r.query(ctx, `
		JOIN person_films l ON l.person_id = p.id
		WHERE l.film_id = $1
		ORDER BY p.name`, filmID)
}

func (r *personRepository) ListBySpecies(ctx context.Context, speciesID uuid.UUID) ([]*models.Person, error) {
	return r.query(ctx, `
		JOIN species_people l ON l.person_id = p.id
		WHERE l.species_id = $1
		ORDER BY p.name`, speciesID)
}

func (r *personRepository) ListByHomeworld(ctx context.Context, planetID uuid.UUID) ([]*models.Person, error) {
	return r.query(ctx, `WHERE p.homeworld_id = $1 ORDER BY p.name`, planetID)
}

func (r *personRepository) AddFilm(ctx context.Context, personID, filmID uuid.UUID) (bool, error) {
	return addLink(ctx, personFilms, personID, filmID)
}

func (r *personRepository) RemoveFilm(ctx context.Context, personID, filmID uuid.UUID) (bool, error) {
	return removeLink(ctx, personFilms, personID, filmID)
}

func (r *personRepository) DeleteAll(ctx context.Context) (int64, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return 0, apperrors.ErrNoScope
	}

	result, err := scope.Conn.Exec(ctx, `DELETE FROM people`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete people: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *personRepository) query(ctx context.Context, tail string, args ...any) ([]*models.Person, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, apperrors.ErrNoScope
	}

	rows, err := scope.Conn.Query(ctx, `SELECT `+personColumns+` FROM people p `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	people := make([]*models.Person, 0)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating people: %w", err)
	}

	return people, nil
}

func scanPerson(row pgx.Row) (*models.Person, error) {
	var p models.Person
	var height, mass, hair, skin, eye, birthYear, gender, swapiURL *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&height,
		&mass,
		&hair,
		&skin,
		&eye,
		&birthYear,
		&gender,
		&p.HomeworldID,
		&swapiURL,
		&p.Created,
		&p.Edited,
		&p.FilmCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan person: %w", err)
	}

	p.Height = deref(height)
	p.Mass = deref(mass)
	p.HairColor = deref(hair)
	p.SkinColor = deref(skin)
	p.EyeColor = deref(eye)
	p.BirthYear = deref(birthYear)
	p.Gender = models.Gender(deref(gender))
	p.SwapiURL = deref(swapiURL)

	return &p, nil
}
