package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

type surface struct {
	store   *testhelpers.MemStore
	people  PersonService
	films   FilmService
	planets PlanetService
	species SpeciesService
	stats   StatsService
}

func newSurface(t *testing.T) *surface {
	t.Helper()
	store := testhelpers.NewMemStore()
	logger := zaptest.NewLogger(t)

	return &surface{
		store:   store,
		people:  NewPersonService(store.People(), store.Planets(), store.Films(), store.Species(), logger),
		films:   NewFilmService(store.Films(), store.Planets(), store.People(), store.Species(), store.WithTx, logger),
		planets: NewPlanetService(store.Planets(), store.People(), store.Films(), store.WithTx, logger),
		species: NewSpeciesService(store.Species(), store.People(), store.Films(), store.Planets(), logger),
		stats:   NewStatsService(store.People(), store.Films(), store.Planets(), store.Species()),
	}
}

// seedTatooine stores Tatooine, A New Hope linked to it, and Luke linked to
// both.
func (s *surface) seedTatooine(t *testing.T) (planet *models.Planet, film *models.Film, person *models.Person) {
	t.Helper()
	ctx := context.Background()

	planet = &models.Planet{Name: "Tatooine", Climate: "arid"}
	require.NoError(t, s.store.Planets().Create(ctx, planet))

	film = &models.Film{
		Title:       "A New Hope",
		EpisodeID:   4,
		Director:    "George Lucas",
		ReleaseDate: time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, s.store.Films().Create(ctx, film))
	_, err := s.store.Films().AddPlanet(ctx, film.ID, planet.ID)
	require.NoError(t, err)

	person = &models.Person{Name: "Luke Skywalker", Gender: models.GenderMale, HomeworldID: &planet.ID}
	require.NoError(t, s.store.People().Create(ctx, person))
	_, err = s.store.People().AddFilm(ctx, person.ID, film.ID)
	require.NoError(t, err)

	return planet, film, person
}

func (s *surface) count(t *testing.T, fn func(context.Context, models.ListFilter) (int, error)) int {
	t.Helper()
	n, err := fn(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	return n
}

// ===== PersonService =====

func TestPersonService_ListPaginates(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		require.NoError(t, s.store.People().Create(ctx, &models.Person{Name: fmt.Sprintf("Clone %02d", i)}))
	}

	tests := []struct {
		page        int
		wantItems   int
		wantNext    bool
		wantPrev    bool
		wantFirstAs string
	}{
		{page: 1, wantItems: 10, wantNext: true, wantPrev: false, wantFirstAs: "Clone 01"},
		{page: 2, wantItems: 10, wantNext: true, wantPrev: true, wantFirstAs: "Clone 11"},
		{page: 3, wantItems: 5, wantNext: false, wantPrev: true, wantFirstAs: "Clone 21"},
		{page: 9, wantItems: 5, wantNext: false, wantPrev: true, wantFirstAs: "Clone 21"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("page %d", tt.page), func(t *testing.T) {
			result, err := s.people.List(ctx, models.ListFilter{}, models.NewPageRequest(tt.page, 10, 20, 100))
			require.NoError(t, err)
			require.Len(t, result.Items, tt.wantItems)
			assert.Equal(t, 25, result.Count)
			assert.Equal(t, 3, result.TotalPages)
			assert.Equal(t, tt.wantNext, result.HasNext)
			assert.Equal(t, tt.wantPrev, result.HasPrevious)
			assert.Equal(t, tt.wantFirstAs, result.Items[0].Name)
		})
	}
}

func TestPersonService_ListFilterAndHomeworld(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	s.seedTatooine(t)
	require.NoError(t, s.store.People().Create(ctx, &models.Person{Name: "Leia Organa"}))

	result, err := s.people.List(ctx, models.ListFilter{Name: "luke"}, models.NewPageRequest(1, 20, 20, 100))
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "Luke Skywalker", result.Items[0].Name)
	require.NotNil(t, result.Items[0].Homeworld)
	assert.Equal(t, "Tatooine", result.Items[0].Homeworld.Name)
	assert.Equal(t, 1, result.Items[0].FilmCount)
}

func TestPersonService_ListEmpty(t *testing.T) {
	s := newSurface(t)

	result, err := s.people.List(context.Background(), models.ListFilter{Name: "vader"}, models.NewPageRequest(4, 20, 20, 100))
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Items)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.HasNext)
}

func TestPersonService_ListCountError(t *testing.T) {
	s := newSurface(t)
	s.store.Errors["people.Count"] = errors.New("connection refused")

	_, err := s.people.List(context.Background(), models.ListFilter{}, models.NewPageRequest(1, 20, 20, 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list people")
}

func TestPersonService_GetFilms(t *testing.T) {
	s := newSurface(t)
	_, film, luke := s.seedTatooine(t)

	person, films, err := s.people.GetFilms(context.Background(), luke.ID)
	require.NoError(t, err)
	assert.Equal(t, "Luke Skywalker", person.Name)
	require.NotNil(t, person.Homeworld)
	require.Len(t, films, 1)
	assert.Equal(t, film.ID, films[0].Film.ID)
	assert.Equal(t, 1, films[0].Film.CharacterCount)
	require.Len(t, films[0].Planets, 1)
	assert.Equal(t, "Tatooine", films[0].Planets[0].Name)
}

func TestPersonService_GetFilmsUnknown(t *testing.T) {
	s := newSurface(t)

	_, _, err := s.people.GetFilms(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPersonService_SearchAndLookups(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	_, film, luke := s.seedTatooine(t)
	require.NoError(t, s.store.People().Create(ctx, &models.Person{Name: "Leia Organa"}))

	all, err := s.people.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := s.people.Search(ctx, "  SKY ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, luke.ID, found[0].ID)

	films, err := s.people.FilmsByCharacter(ctx, luke.ID)
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, film.ID, films[0].ID)

	films, err = s.people.FilmsByCharacter(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, films)
}

func TestPersonService_CreateUnknownHomeworld(t *testing.T) {
	s := newSurface(t)
	missing := uuid.New()

	result, err := s.people.Create(context.Background(), &CreatePersonInput{
		Name:        "Biggs Darklighter",
		HomeworldID: &missing,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Planet not found"}, result.Errors)
	assert.Nil(t, result.Entity)
	assert.Zero(t, s.count(t, s.store.People().Count))
}

func TestPersonService_CreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreatePersonInput
		want  []string
	}{
		{
			name:  "missing name",
			input: CreatePersonInput{Name: "   "},
			want:  []string{"Name is required"},
		},
		{
			name:  "bad gender",
			input: CreatePersonInput{Name: "IG-88", Gender: "robot"},
			want:  []string{`Invalid gender "robot"`},
		},
		{
			name:  "both",
			input: CreatePersonInput{Gender: "robot"},
			want:  []string{"Name is required", `Invalid gender "robot"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSurface(t)
			result, err := s.people.Create(context.Background(), &tt.input)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Errors)
			assert.Zero(t, s.count(t, s.store.People().Count))
		})
	}
}

func TestPersonService_CreateDuplicateName(t *testing.T) {
	s := newSurface(t)
	s.seedTatooine(t)

	result, err := s.people.Create(context.Background(), &CreatePersonInput{Name: "Luke Skywalker"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "already exists")
	assert.Equal(t, 1, s.count(t, s.store.People().Count))
}

func TestPersonService_CreateSuccess(t *testing.T) {
	s := newSurface(t)
	tatooine, _, _ := s.seedTatooine(t)

	result, err := s.people.Create(context.Background(), &CreatePersonInput{
		Name:        "Owen Lars",
		Gender:      "Male",
		BirthYear:   "52BBY",
		HomeworldID: &tatooine.ID,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Errors)
	require.NotNil(t, result.Entity)
	assert.Equal(t, models.GenderMale, result.Entity.Gender)
	require.NotNil(t, result.Entity.Homeworld)
	assert.Equal(t, "Tatooine", result.Entity.Homeworld.Name)

	residents, err := s.planets.Residents(context.Background(), tatooine.ID)
	require.NoError(t, err)
	assert.Len(t, residents, 2)
}

func TestPersonService_CreateStoreError(t *testing.T) {
	s := newSurface(t)
	s.store.Errors["people.Create"] = errors.New("connection reset")

	result, err := s.people.Create(context.Background(), &CreatePersonInput{Name: "Wedge Antilles"})
	require.Error(t, err)
	assert.Nil(t, result)
}

func TestPersonService_CreateOverlongFields(t *testing.T) {
	s := newSurface(t)

	result, err := s.people.Create(context.Background(), &CreatePersonInput{
		Name:      "Chewbacca",
		Height:    "22800000000",
		HairColor: strings.Repeat("brown", 11),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{
		"Height must be at most 10 characters",
		"Hair color must be at most 50 characters",
	}, result.Errors)
	assert.Zero(t, s.count(t, s.store.People().Count))
}

func TestPersonService_CreateStoreRejectsValue(t *testing.T) {
	s := newSurface(t)
	s.store.Errors["people.Create"] = &apperrors.InvalidInputError{
		Entity: "person",
		Detail: "value too long for type character varying(10)",
	}

	result, err := s.people.Create(context.Background(), &CreatePersonInput{Name: "Chewbacca"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"invalid person: value too long for type character varying(10)"}, result.Errors)
}

// ===== FilmService =====

func TestFilmService_CreateWithLinks(t *testing.T) {
	s := newSurface(t)
	tatooine, _, luke := s.seedTatooine(t)

	result, err := s.films.Create(context.Background(), &CreateFilmInput{
		Title:        "The Empire Strikes Back",
		EpisodeID:    5,
		ReleaseDate:  "1980-05-17",
		PlanetIDs:    []uuid.UUID{tatooine.ID, tatooine.ID},
		CharacterIDs: []uuid.UUID{luke.ID},
	})
	require.NoError(t, err)
	require.True(t, result.Success, result.Errors)
	assert.Equal(t, 1, result.Entity.PlanetCount)
	assert.Equal(t, 1, result.Entity.CharacterCount)
	assert.Equal(t, "1980-05-17", result.Entity.ReleaseDateString())

	person, err := s.people.Get(context.Background(), luke.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, person.FilmCount)
}

func TestFilmService_CreateUnknownRelated(t *testing.T) {
	s := newSurface(t)
	tatooine, _, _ := s.seedTatooine(t)
	ghostPlanet, ghostPerson := uuid.New(), uuid.New()

	result, err := s.films.Create(context.Background(), &CreateFilmInput{
		Title:        "Return of the Jedi",
		EpisodeID:    6,
		ReleaseDate:  "1983-05-25",
		PlanetIDs:    []uuid.UUID{tatooine.ID, ghostPlanet},
		CharacterIDs: []uuid.UUID{ghostPerson},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Nil(t, result.Entity)
	assert.Equal(t, []string{
		"Planet not found: " + ghostPlanet.String(),
		"Character not found: " + ghostPerson.String(),
	}, result.Errors)
	assert.Equal(t, 1, s.count(t, s.store.Films().Count))
}

func TestFilmService_CreateValidation(t *testing.T) {
	s := newSurface(t)

	result, err := s.films.Create(context.Background(), &CreateFilmInput{
		EpisodeID:   0,
		ReleaseDate: "25/05/1977",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{
		"Title is required",
		"Episode ID must be a positive integer",
		`Invalid release date "25/05/1977": expected YYYY-MM-DD`,
	}, result.Errors)
}

func TestFilmService_CreateOverlongFields(t *testing.T) {
	s := newSurface(t)

	result, err := s.films.Create(context.Background(), &CreateFilmInput{
		Title:       strings.Repeat("x", 101),
		EpisodeID:   9,
		Producer:    strings.Repeat("y", 201),
		ReleaseDate: "2019-12-20",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{
		"Title must be at most 100 characters",
		"Producer must be at most 200 characters",
	}, result.Errors)

	s.store.Errors["films.Create"] = &apperrors.InvalidInputError{Entity: "film", Detail: "value too long"}
	result, err = s.films.Create(context.Background(), &CreateFilmInput{Title: "Solo", EpisodeID: 10, ReleaseDate: "2018-05-25"})
	require.NoError(t, err)
	assert.Equal(t, []string{"invalid film: value too long"}, result.Errors)
	assert.Zero(t, s.count(t, s.store.Films().Count))
}

func TestFilmService_CreateDuplicateEpisode(t *testing.T) {
	s := newSurface(t)
	s.seedTatooine(t)

	result, err := s.films.Create(context.Background(), &CreateFilmInput{
		Title:       "Star Wars",
		EpisodeID:   4,
		ReleaseDate: "1977-05-25",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "episode_id")
}

func TestFilmService_CreateRollsBackOnLinkFailure(t *testing.T) {
	s := newSurface(t)
	tatooine, _, luke := s.seedTatooine(t)
	s.store.Errors["people.AddFilm"] = errors.New("serialization failure")

	result, err := s.films.Create(context.Background(), &CreateFilmInput{
		Title:        "Return of the Jedi",
		EpisodeID:    6,
		ReleaseDate:  "1983-05-25",
		PlanetIDs:    []uuid.UUID{tatooine.ID},
		CharacterIDs: []uuid.UUID{luke.ID},
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, s.count(t, s.store.Films().Count), "film insert rolled back")

	films, err := s.planets.Films(context.Background(), tatooine.ID)
	require.NoError(t, err)
	assert.Len(t, films, 1)
}

func TestFilmService_ListOrderedByEpisode(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	for _, f := range []struct {
		title   string
		episode int
	}{{"Return of the Jedi", 6}, {"A New Hope", 4}, {"The Empire Strikes Back", 5}} {
		require.NoError(t, s.store.Films().Create(ctx, &models.Film{Title: f.title, EpisodeID: f.episode}))
	}

	films, err := s.films.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, films, 3)
	assert.Equal(t, []int{4, 5, 6}, []int{films[0].EpisodeID, films[1].EpisodeID, films[2].EpisodeID})

	page, err := s.films.ListPage(ctx, models.ListFilter{}, models.NewPageRequest(2, 2, 20, 100))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 6, page.Items[0].EpisodeID)
}

func TestFilmService_Characters(t *testing.T) {
	s := newSurface(t)
	_, film, luke := s.seedTatooine(t)
	ctx := context.Background()

	people, err := s.films.Characters(ctx, film.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, luke.ID, people[0].ID)

	_, err = s.films.Characters(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	people, err = s.films.CharactersInFilm(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, people)

	planets, err := s.films.Planets(ctx, film.ID)
	require.NoError(t, err)
	require.Len(t, planets, 1)
	assert.Equal(t, "Tatooine", planets[0].Name)
}

// ===== PlanetService =====

func TestPlanetService_DeleteClearsHomeworld(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	tatooine, _, luke := s.seedTatooine(t)

	require.NoError(t, s.planets.Delete(ctx, tatooine.ID))

	person, err := s.people.Get(ctx, luke.ID)
	require.NoError(t, err)
	assert.Nil(t, person.HomeworldID)
	assert.Nil(t, person.Homeworld)
	assert.Equal(t, 1, person.FilmCount)

	assert.ErrorIs(t, s.planets.Delete(ctx, tatooine.ID), apperrors.ErrNotFound)
}

func TestPlanetService_Create(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()

	result, err := s.planets.Create(ctx, &CreatePlanetInput{Name: "Hoth", Climate: "frozen"})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "frozen", result.Entity.Climate)

	result, err = s.planets.Create(ctx, &CreatePlanetInput{Name: "Hoth"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{`planet with name "Hoth" already exists`}, result.Errors)

	result, err = s.planets.Create(ctx, &CreatePlanetInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name is required"}, result.Errors)

	assert.Equal(t, 1, s.count(t, s.store.Planets().Count))
}

func TestPlanetService_CreateOverlongFields(t *testing.T) {
	s := newSurface(t)

	result, err := s.planets.Create(context.Background(), &CreatePlanetInput{
		Name:     "Kashyyyk",
		Diameter: strings.Repeat("9", 21),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, []string{"Diameter must be at most 20 characters"}, result.Errors)

	s.store.Errors["planets.Create"] = &apperrors.InvalidInputError{Entity: "planet", Detail: "value too long"}
	result, err = s.planets.Create(context.Background(), &CreatePlanetInput{Name: "Kashyyyk"})
	require.NoError(t, err)
	assert.Equal(t, []string{"invalid planet: value too long"}, result.Errors)
	assert.Zero(t, s.count(t, s.store.Planets().Count))
}

func TestPlanetService_ListAndRelations(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	tatooine, film, _ := s.seedTatooine(t)
	require.NoError(t, s.store.Planets().Create(ctx, &models.Planet{Name: "Alderaan"}))

	planets, err := s.planets.List(ctx, models.ListFilter{})
	require.NoError(t, err)
	require.Len(t, planets, 2)
	assert.Equal(t, "Alderaan", planets[0].Name)
	assert.Equal(t, 1, planets[1].ResidentCount)
	assert.Equal(t, 1, planets[1].FilmCount)

	films, err := s.planets.Films(ctx, tatooine.ID)
	require.NoError(t, err)
	require.Len(t, films, 1)
	assert.Equal(t, film.ID, films[0].ID)
}

// ===== SpeciesService =====

func TestSpeciesService_GetExpandsHomeworld(t *testing.T) {
	s := newSurface(t)
	ctx := context.Background()
	tatooine, film, luke := s.seedTatooine(t)

	human := &models.Species{Name: "Human", Language: "Galactic Basic", HomeworldID: &tatooine.ID}
	require.NoError(t, s.store.Species().Create(ctx, human))
	_, err := s.store.Species().AddPerson(ctx, human.ID, luke.ID)
	require.NoError(t, err)
	_, err = s.store.Species().AddFilm(ctx, human.ID, film.ID)
	require.NoError(t, err)

	got, err := s.species.Get(ctx, human.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Homeworld)
	assert.Equal(t, "Tatooine", got.Homeworld.Name)
	assert.Equal(t, 1, got.PeopleCount)
	assert.Equal(t, 1, got.FilmCount)

	people, err := s.species.People(ctx, human.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)

	page, err := s.species.ListPage(ctx, models.ListFilter{}, models.NewPageRequest(1, 20, 20, 100))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.NotNil(t, page.Items[0].Homeworld)

	membership, err := s.people.Species(ctx, luke.ID)
	require.NoError(t, err)
	require.Len(t, membership, 1)
	assert.Equal(t, "Human", membership[0].Name)

	_, err = s.species.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ===== StatsService =====

func TestStatsService_Get(t *testing.T) {
	s := newSurface(t)
	s.seedTatooine(t)

	stats, err := s.stats.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalPeople: 1, TotalFilms: 1, TotalPlanets: 1, TotalSpecies: 0}, *stats)

	s.store.Errors["films.Count"] = errors.New("timeout")
	_, err = s.stats.Get(context.Background())
	assert.Error(t, err)
}
