//go:build integration

package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

type repoTestContext struct {
	t       *testing.T
	ctx     context.Context
	planets repositories.PlanetRepository
	films   repositories.FilmRepository
	people  repositories.PersonRepository
	species repositories.SpeciesRepository
}

func setupRepoTest(t *testing.T) *repoTestContext {
	testDB := testhelpers.GetTestDB(t)
	testDB.Truncate(t)

	return &repoTestContext{
		t:       t,
		ctx:     testDB.Context(t),
		planets: repositories.NewPlanetRepository(),
		films:   repositories.NewFilmRepository(),
		people:  repositories.NewPersonRepository(),
		species: repositories.NewSpeciesRepository(),
	}
}

func (tc *repoTestContext) planet(name string) *models.Planet {
	tc.t.Helper()
	p := &models.Planet{Name: name, Climate: "arid", Terrain: "desert"}
	require.NoError(tc.t, tc.planets.Create(tc.ctx, p))
	return p
}

func (tc *repoTestContext) film(title string, episode int) *models.Film {
	tc.t.Helper()
	f := &models.Film{
		Title:       title,
		EpisodeID:   episode,
		Director:    "George Lucas",
		Producer:    "Gary Kurtz",
		ReleaseDate: time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(tc.t, tc.films.Create(tc.ctx, f))
	return f
}

func (tc *repoTestContext) person(name string, homeworld *uuid.UUID) *models.Person {
	tc.t.Helper()
	p := &models.Person{Name: name, Gender: models.GenderMale, HomeworldID: homeworld}
	require.NoError(tc.t, tc.people.Create(tc.ctx, p))
	return p
}

func TestPlanetRepository_CreateAndGet(t *testing.T) {
	tc := setupRepoTest(t)

	created := tc.planet("Tatooine")
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.Created.IsZero())

	got, err := tc.planets.GetByID(tc.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tatooine", got.Name)
	assert.Equal(t, "arid", got.Climate)
	assert.Equal(t, "", got.Population)

	_, err = tc.planets.GetByName(tc.ctx, "Alderaan")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPlanetRepository_CreateDuplicateIsConflict(t *testing.T) {
	tc := setupRepoTest(t)
	tc.planet("Tatooine")

	err := tc.planets.Create(tc.ctx, &models.Planet{Name: "Tatooine"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	var ce *apperrors.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "name", ce.Field)
}

func TestGetOrCreate_IsIdempotent(t *testing.T) {
	tc := setupRepoTest(t)

	first, created, err := tc.planets.GetOrCreate(tc.ctx, &models.Planet{Name: "Hoth", Climate: "frozen"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := tc.planets.GetOrCreate(tc.ctx, &models.Planet{Name: "Hoth", Climate: "changed"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "frozen", second.Climate, "existing record must not be overwritten")

	total, err := tc.planets.Count(tc.ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestFilmRepository_GetOrCreateEpisodeConflict(t *testing.T) {
	tc := setupRepoTest(t)
	tc.film("A New Hope", 4)

	_, _, err := tc.films.GetOrCreate(tc.ctx, &models.Film{
		Title:       "Not A New Hope",
		EpisodeID:   4,
		ReleaseDate: time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)

	var ce *apperrors.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "episode_id", ce.Field)
}

func TestFilmRepository_OrderedByEpisode(t *testing.T) {
	tc := setupRepoTest(t)
	tc.film("Return of the Jedi", 6)
	tc.film("A New Hope", 4)
	tc.film("The Empire Strikes Back", 5)

	films, err := tc.films.List(tc.ctx, models.ListFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, films, 3)
	assert.Equal(t, []int{4, 5, 6}, []int{films[0].EpisodeID, films[1].EpisodeID, films[2].EpisodeID})
	assert.Equal(t, "1977-05-25", films[0].ReleaseDateString())
}

func TestPersonRepository_FilterIsCaseInsensitiveSubstring(t *testing.T) {
	tc := setupRepoTest(t)
	tc.person("Luke Skywalker", nil)
	tc.person("Leia Organa", nil)

	filter := models.ListFilter{Name: "luke"}
	people, err := tc.people.List(tc.ctx, filter, 20, 0)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Luke Skywalker", people[0].Name)

	total, err := tc.people.Count(tc.ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestPersonRepository_FilmCountTracksLinks(t *testing.T) {
	tc := setupRepoTest(t)
	luke := tc.person("Luke Skywalker", nil)
	anh := tc.film("A New Hope", 4)
	esb := tc.film("The Empire Strikes Back", 5)

	added, err := tc.people.AddFilm(tc.ctx, luke.ID, anh.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = tc.people.AddFilm(tc.ctx, luke.ID, anh.ID)
	require.NoError(t, err)
	assert.False(t, added, "links are a set")

	_, err = tc.people.AddFilm(tc.ctx, luke.ID, esb.ID)
	require.NoError(t, err)

	got, err := tc.people.GetByID(tc.ctx, luke.ID)
	require.NoError(t, err)
	films, err := tc.films.ListByPerson(tc.ctx, luke.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.FilmCount)
	assert.Len(t, films, got.FilmCount)
	assert.True(t, got.Edited.After(luke.Edited) || got.Edited.Equal(luke.Edited))

	removed, err := tc.people.RemoveFilm(tc.ctx, luke.ID, anh.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	got, err = tc.people.GetByID(tc.ctx, luke.ID)
	require.NoError(t, err)
	films, err = tc.films.ListByPerson(tc.ctx, luke.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.FilmCount)
	assert.Len(t, films, 1)
}

func TestAddLink_MissingEndpointIsNotFound(t *testing.T) {
	tc := setupRepoTest(t)
	anh := tc.film("A New Hope", 4)

	_, err := tc.films.AddPlanet(tc.ctx, anh.ID, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddLink_FailureDoesNotAbortTransaction(t *testing.T) {
	tc := setupRepoTest(t)
	anh := tc.film("A New Hope", 4)
	tatooine := tc.planet("Tatooine")

	err := database.WithTx(tc.ctx, func(ctx context.Context) error {
		if _, err := tc.films.AddPlanet(ctx, anh.ID, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
			return errors.New("expected not found")
		}
		_, err := tc.films.AddPlanet(ctx, anh.ID, tatooine.ID)
		return err
	})
	require.NoError(t, err)

	planets, err := tc.planets.ListByFilm(tc.ctx, anh.ID)
	require.NoError(t, err)
	require.Len(t, planets, 1)
	assert.Equal(t, "Tatooine", planets[0].Name)
}

func TestPlanetRepository_DeleteClearsHomeworld(t *testing.T) {
	tc := setupRepoTest(t)
	tatooine := tc.planet("Tatooine")
	luke := tc.person("Luke Skywalker", &tatooine.ID)

	residents, err := tc.people.ListByHomeworld(tc.ctx, tatooine.ID)
	require.NoError(t, err)
	require.Len(t, residents, 1)

	require.NoError(t, tc.planets.Delete(tc.ctx, tatooine.ID))

	got, err := tc.people.GetByID(tc.ctx, luke.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HomeworldID)
	assert.Equal(t, "Luke Skywalker", got.Name)

	assert.ErrorIs(t, tc.planets.Delete(tc.ctx, tatooine.ID), apperrors.ErrNotFound)
}

func TestSpeciesRepository_LinksAndCounts(t *testing.T) {
	tc := setupRepoTest(t)
	kashyyyk := tc.planet("Kashyyyk")
	chewie := tc.person("Chewbacca", &kashyyyk.ID)
	anh := tc.film("A New Hope", 4)

	wookie := &models.Species{Name: "Wookie", Language: "Shyriiwook", HomeworldID: &kashyyyk.ID}
	require.NoError(t, tc.species.Create(tc.ctx, wookie))

	_, err := tc.species.AddPerson(tc.ctx, wookie.ID, chewie.ID)
	require.NoError(t, err)
	_, err = tc.species.AddFilm(tc.ctx, wookie.ID, anh.ID)
	require.NoError(t, err)

	got, err := tc.species.GetByID(tc.ctx, wookie.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.PeopleCount)
	assert.Equal(t, 1, got.FilmCount)

	byPerson, err := tc.species.ListByPerson(tc.ctx, chewie.ID)
	require.NoError(t, err)
	require.Len(t, byPerson, 1)

	byHome, err := tc.species.ListByHomeworld(tc.ctx, kashyyyk.ID)
	require.NoError(t, err)
	assert.Len(t, byHome, 1)
}

func TestDeleteAll_CascadesLinks(t *testing.T) {
	tc := setupRepoTest(t)
	tatooine := tc.planet("Tatooine")
	anh := tc.film("A New Hope", 4)
	luke := tc.person("Luke Skywalker", &tatooine.ID)
	_, err := tc.films.AddPlanet(tc.ctx, anh.ID, tatooine.ID)
	require.NoError(t, err)
	_, err = tc.people.AddFilm(tc.ctx, luke.ID, anh.ID)
	require.NoError(t, err)

	n, err := tc.people.DeleteAll(tc.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := tc.films.GetByID(tc.ctx, anh.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CharacterCount)
	assert.Equal(t, 1, got.PlanetCount)
}
