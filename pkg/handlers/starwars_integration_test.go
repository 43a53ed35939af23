//go:build integration

package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/handlers"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
	"github.com/holocron-dev/holocron/pkg/services"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

func TestCharacterFilms_Postgres(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	testDB.Truncate(t)
	logger := zaptest.NewLogger(t)

	planetRepo := repositories.NewPlanetRepository()
	filmRepo := repositories.NewFilmRepository()
	personRepo := repositories.NewPersonRepository()
	speciesRepo := repositories.NewSpeciesRepository()

	ctx := testDB.Context(t)
	tatooine := &models.Planet{Name: "Tatooine", Climate: "arid", Terrain: "desert", Population: "200000"}
	require.NoError(t, planetRepo.Create(ctx, tatooine))
	anh := &models.Film{
		Title:       "A New Hope",
		EpisodeID:   4,
		Director:    "George Lucas",
		Producer:    "Gary Kurtz",
		ReleaseDate: time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, filmRepo.Create(ctx, anh))
	_, err := filmRepo.AddPlanet(ctx, anh.ID, tatooine.ID)
	require.NoError(t, err)
	luke := &models.Person{Name: "Luke Skywalker", Gender: models.GenderMale, HomeworldID: &tatooine.ID}
	require.NoError(t, personRepo.Create(ctx, luke))
	_, err = personRepo.AddFilm(ctx, luke.ID, anh.ID)
	require.NoError(t, err)

	cfg := &config.Config{
		Version:    "test",
		APIPrefix:  "/api/starwars",
		Pagination: config.PaginationConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
	handler := handlers.NewStarWarsHandler(
		services.NewPersonService(personRepo, planetRepo, filmRepo, speciesRepo, logger),
		services.NewFilmService(filmRepo, planetRepo, personRepo, speciesRepo, database.WithTx, logger),
		services.NewPlanetService(planetRepo, personRepo, filmRepo, database.WithTx, logger),
		services.NewSpeciesService(speciesRepo, personRepo, filmRepo, planetRepo, logger),
		services.NewStatsService(personRepo, filmRepo, planetRepo, speciesRepo),
		cfg,
		logger,
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, database.WithScope(testDB.DB, logger))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/starwars/characters/"+luke.ID.String()+"/films/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got handlers.CharacterFilmsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Luke Skywalker", got.Character.Name)
	require.NotNil(t, got.Character.Homeworld)
	assert.Equal(t, "Tatooine", *got.Character.Homeworld)
	require.Len(t, got.Films, 1)
	assert.Equal(t, 4, got.Films[0].EpisodeID)
	assert.Equal(t, 1, got.Films[0].CharacterCount)
	require.Len(t, got.Films[0].Planets, 1)
	assert.Equal(t, "Tatooine", got.Films[0].Planets[0].Name)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/characters?name=sky", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list handlers.CharacterListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)
}
