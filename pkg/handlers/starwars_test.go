package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

func passthrough(next http.HandlerFunc) http.HandlerFunc { return next }

type restFixture struct {
	store *testhelpers.MemStore
	mux   *http.ServeMux
}

func newRESTFixture(t *testing.T) *restFixture {
	t.Helper()
	store := testhelpers.NewMemStore()
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Version:    "1.0.0",
		APIPrefix:  "/api/starwars",
		Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}

	handler := NewStarWarsHandler(
		services.NewPersonService(store.People(), store.Planets(), store.Films(), store.Species(), logger),
		services.NewFilmService(store.Films(), store.Planets(), store.People(), store.Species(), store.WithTx, logger),
		services.NewPlanetService(store.Planets(), store.People(), store.Films(), store.WithTx, logger),
		services.NewSpeciesService(store.Species(), store.People(), store.Films(), store.Planets(), logger),
		services.NewStatsService(store.People(), store.Films(), store.Planets(), store.Species()),
		cfg,
		logger,
	)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, passthrough)
	return &restFixture{store: store, mux: mux}
}

func (f *restFixture) get(t *testing.T, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec
}

// seed stores Tatooine, A New Hope linked to it, and Luke linked to both.
func (f *restFixture) seed(t *testing.T) (*models.Planet, *models.Film, *models.Person) {
	t.Helper()
	ctx := context.Background()

	tatooine := &models.Planet{Name: "Tatooine", Climate: "arid", Terrain: "desert", Population: "200000"}
	require.NoError(t, f.store.Planets().Create(ctx, tatooine))

	anh := &models.Film{
		Title:       "A New Hope",
		EpisodeID:   4,
		Director:    "George Lucas",
		Producer:    "Gary Kurtz",
		ReleaseDate: time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.Films().Create(ctx, anh))
	_, err := f.store.Films().AddPlanet(ctx, anh.ID, tatooine.ID)
	require.NoError(t, err)

	luke := &models.Person{Name: "Luke Skywalker", Gender: models.GenderMale, BirthYear: "19BBY", HomeworldID: &tatooine.ID}
	require.NoError(t, f.store.People().Create(ctx, luke))
	_, err = f.store.People().AddFilm(ctx, luke.ID, anh.ID)
	require.NoError(t, err)

	return tatooine, anh, luke
}

func TestStatus(t *testing.T) {
	f := newRESTFixture(t)

	for _, path := range []string{"/status", "/status/", "/api/starwars/status/"} {
		var got StatusResponse
		rec := f.get(t, path, &got)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, StatusResponse{Status: "ok", Message: "Star Wars API is running", Version: "1.0.0"}, got)
	}
}

func TestStats(t *testing.T) {
	f := newRESTFixture(t)
	f.seed(t)

	rec := f.get(t, "/api/starwars/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_people":1,"total_films":1,"total_planets":1,"total_species":0}`, rec.Body.String())
}

func TestStats_InternalError(t *testing.T) {
	f := newRESTFixture(t)
	f.store.Errors["planets.Count"] = errors.New("relation \"planets\" does not exist")

	rec := f.get(t, "/stats", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to fetch statistics", body["error"])
	assert.Contains(t, body["message"], "does not exist")
}

func TestListCharacters_Pagination(t *testing.T) {
	f := newRESTFixture(t)
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		require.NoError(t, f.store.People().Create(ctx, &models.Person{Name: fmt.Sprintf("Trooper %02d", i)}))
	}

	tests := []struct {
		page     int
		count    int
		hasNext  bool
		hasPrev  bool
		lastName string
	}{
		{1, 10, true, false, "Trooper 10"},
		{2, 10, true, true, "Trooper 20"},
		{3, 5, false, true, "Trooper 25"},
		{7, 5, false, true, "Trooper 25"},
	}

	for _, tt := range tests {
		var got CharacterListResponse
		rec := f.get(t, fmt.Sprintf("/api/starwars/characters/?page=%d&page_size=10", tt.page), &got)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, got.Results, tt.count)
		assert.Equal(t, 25, got.Count)
		assert.Equal(t, 3, got.TotalPages)
		assert.Equal(t, tt.hasNext, got.HasNext, "page %d", tt.page)
		assert.Equal(t, tt.hasPrev, got.HasPrevious, "page %d", tt.page)
		assert.Equal(t, tt.lastName, got.Results[len(got.Results)-1].Name)
	}
}

func TestListCharacters_NameFilter(t *testing.T) {
	f := newRESTFixture(t)
	_, _, luke := f.seed(t)
	require.NoError(t, f.store.People().Create(context.Background(), &models.Person{Name: "Leia Organa"}))

	var got CharacterListResponse
	rec := f.get(t, "/characters?name=LUKE", &got)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, got.Results, 1)

	c := got.Results[0]
	assert.Equal(t, luke.ID.String(), c.ID)
	assert.Equal(t, 1, c.FilmsCount)
	assert.Equal(t, "/api/starwars/characters/"+luke.ID.String()+"/films/", c.FilmsURL)
	require.NotNil(t, c.Homeworld)
	assert.Equal(t, "Tatooine", c.Homeworld.Name)
	assert.Empty(t, c.Homeworld.Population, "list view omits population")
}

func TestListCharacters_BadPage(t *testing.T) {
	f := newRESTFixture(t)

	rec := f.get(t, "/characters?page=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCharacter(t *testing.T) {
	f := newRESTFixture(t)
	_, _, luke := f.seed(t)
	ctx := context.Background()
	human := &models.Species{Name: "Human"}
	require.NoError(t, f.store.Species().Create(ctx, human))
	_, err := f.store.Species().AddPerson(ctx, human.ID, luke.ID)
	require.NoError(t, err)

	var got CharacterResponse
	rec := f.get(t, "/api/starwars/characters/"+luke.ID.String()+"/", &got)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Luke Skywalker", got.Name)
	assert.Equal(t, "male", got.Gender)
	assert.Equal(t, []string{"Human"}, got.Species)
	require.NotNil(t, got.Homeworld)
	assert.Equal(t, "200000", got.Homeworld.Population)
}

func TestGetCharacter_NotFound(t *testing.T) {
	f := newRESTFixture(t)

	for _, path := range []string{
		"/characters/" + uuid.NewString(),
		"/characters/not-a-uuid",
		"/characters/" + uuid.NewString() + "/films",
	} {
		rec := f.get(t, path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"error":"Character not found"}`, rec.Body.String())
	}
}

func TestGetCharacterFilms(t *testing.T) {
	f := newRESTFixture(t)
	_, anh, luke := f.seed(t)

	var got CharacterFilmsResponse
	rec := f.get(t, "/api/starwars/characters/"+luke.ID.String()+"/films/", &got)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Luke Skywalker", got.Character.Name)
	require.NotNil(t, got.Character.Homeworld)
	assert.Equal(t, "Tatooine", *got.Character.Homeworld)
	assert.Equal(t, 1, got.TotalFilms)
	require.Len(t, got.Films, 1)

	film := got.Films[0]
	assert.Equal(t, anh.ID.String(), film.ID)
	assert.Equal(t, "1977-05-25", film.ReleaseDate)
	assert.Equal(t, 1, film.CharacterCount)
	require.Len(t, film.Planets, 1)
	assert.Equal(t, "Tatooine", film.Planets[0].Name)
}

func TestListFilmsPlanetsSpecies(t *testing.T) {
	f := newRESTFixture(t)
	tatooine, _, _ := f.seed(t)
	require.NoError(t, f.store.Species().Create(context.Background(), &models.Species{Name: "Jawa", HomeworldID: &tatooine.ID}))

	var films ListResponse[FilmResponse]
	require.Equal(t, http.StatusOK, f.get(t, "/films/", &films).Code)
	require.Equal(t, 1, films.Count)
	assert.Equal(t, 1, films.Results[0].CharacterCount)
	assert.Equal(t, 1, films.Results[0].PlanetCount)

	var planets ListResponse[PlanetResponse]
	require.Equal(t, http.StatusOK, f.get(t, "/api/starwars/planets", &planets).Code)
	require.Equal(t, 1, planets.Count)
	assert.Equal(t, 1, planets.Results[0].ResidentCount)
	assert.Equal(t, 1, planets.Results[0].FilmCount)

	var species ListResponse[SpeciesResponse]
	require.Equal(t, http.StatusOK, f.get(t, "/species", &species).Code)
	require.Equal(t, 1, species.Count)
	require.NotNil(t, species.Results[0].Homeworld)
	assert.Equal(t, "Tatooine", *species.Results[0].Homeworld)
}

func TestListFilms_InternalError(t *testing.T) {
	f := newRESTFixture(t)
	f.store.Errors["films.List"] = errors.New("boom")
	f.seed(t)

	rec := f.get(t, "/films", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newRESTFixture(t)

	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/films", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
