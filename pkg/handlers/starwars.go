package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/logging"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
)

// ScopeMiddleware wraps a handler with whatever per-request setup the store
// needs, typically database.WithScope.
type ScopeMiddleware func(http.HandlerFunc) http.HandlerFunc

// StarWarsHandler serves the REST surface over characters, films, planets and
// species.
type StarWarsHandler struct {
	people  services.PersonService
	films   services.FilmService
	planets services.PlanetService
	species services.SpeciesService
	stats   services.StatsService
	cfg     *config.Config
	logger  *zap.Logger
}

// NewStarWarsHandler creates a new StarWarsHandler.
func NewStarWarsHandler(
	people services.PersonService,
	films services.FilmService,
	planets services.PlanetService,
	species services.SpeciesService,
	stats services.StatsService,
	cfg *config.Config,
	logger *zap.Logger,
) *StarWarsHandler {
	return &StarWarsHandler{
		people:  people,
		films:   films,
		planets: planets,
		species: species,
		stats:   stats,
		cfg:     cfg,
		logger:  logger,
	}
}

// RegisterRoutes mounts the REST surface under the configured API prefix and
// again at the root. Every path answers with and without a trailing slash.
func (h *StarWarsHandler) RegisterRoutes(mux *http.ServeMux, scope ScopeMiddleware) {
	routes := []struct {
		path    string
		handler http.HandlerFunc
		scoped  bool
	}{
		{"/status", h.Status, false},
		{"/stats", h.Stats, true},
		{"/characters", h.ListCharacters, true},
		{"/characters/{id}", h.GetCharacter, true},
		{"/characters/{id}/films", h.GetCharacterFilms, true},
		{"/films", h.ListFilms, true},
		{"/planets", h.ListPlanets, true},
		{"/species", h.ListSpecies, true},
	}

	prefixes := []string{""}
	if p := strings.TrimRight(h.cfg.APIPrefix, "/"); p != "" {
		prefixes = append(prefixes, p)
	}

	for _, prefix := range prefixes {
		for _, route := range routes {
			handler := route.handler
			if route.scoped {
				handler = scope(handler)
			}
			mux.HandleFunc("GET "+prefix+route.path, handler)
			mux.HandleFunc("GET "+prefix+route.path+"/{$}", handler)
		}
	}
}

// Status handles GET /status
func (h *StarWarsHandler) Status(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Status:  "ok",
		Message: "Star Wars API is running",
		Version: h.cfg.Version,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Stats handles GET /stats
func (h *StarWarsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Get(r.Context())
	if err != nil {
		h.internalError(w, "Failed to fetch statistics", err)
		return
	}
	h.write(w, stats)
}

// ListCharacters handles GET /characters?name=&page=&page_size=
func (h *StarWarsHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	page, ok := ParsePageRequest(w, r, h.cfg.Pagination, h.logger)
	if !ok {
		return
	}
	filter := models.ListFilter{Name: strings.TrimSpace(r.URL.Query().Get("name"))}

	result, err := h.people.List(r.Context(), filter, page)
	if err != nil {
		h.internalError(w, "Failed to fetch characters", err)
		return
	}

	h.write(w, CharacterListResponse{
		Results:  mapSlice(result.Items, h.characterResponse),
		PageInfo: result.PageInfo,
	})
}

// GetCharacter handles GET /characters/{id}
func (h *StarWarsHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseEntityID(w, r, "Character", h.logger)
	if !ok {
		return
	}

	person, err := h.people.Get(r.Context(), id)
	if err != nil {
		h.lookupError(w, "Character", "Failed to fetch character details", err)
		return
	}

	species, err := h.people.Species(r.Context(), id)
	if err != nil {
		h.internalError(w, "Failed to fetch character details", err)
		return
	}

	response := h.characterResponse(person)
	response.Homeworld = toPlanetBrief(person.Homeworld, true)
	response.Species = make([]string, 0, len(species))
	for _, s := range species {
		response.Species = append(response.Species, s.Name)
	}
	h.write(w, response)
}

// GetCharacterFilms handles GET /characters/{id}/films
func (h *StarWarsHandler) GetCharacterFilms(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseEntityID(w, r, "Character", h.logger)
	if !ok {
		return
	}

	person, films, err := h.people.GetFilms(r.Context(), id)
	if err != nil {
		h.lookupError(w, "Character", "Failed to fetch character films", err)
		return
	}

	character := CharacterBrief{
		ID:        person.ID.String(),
		Name:      person.Name,
		Gender:    string(person.Gender),
		BirthYear: person.BirthYear,
	}
	if person.Homeworld != nil {
		character.Homeworld = &person.Homeworld.Name
	}

	h.write(w, CharacterFilmsResponse{
		Character:  character,
		Films:      mapSlice(films, toCharacterFilm),
		TotalFilms: len(films),
	})
}

// ListFilms handles GET /films
func (h *StarWarsHandler) ListFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.films.List(r.Context(), models.ListFilter{})
	if err != nil {
		h.internalError(w, "Failed to fetch films", err)
		return
	}
	results := mapSlice(films, toFilmResponse)
	h.write(w, ListResponse[FilmResponse]{Results: results, Count: len(results)})
}

// ListPlanets handles GET /planets
func (h *StarWarsHandler) ListPlanets(w http.ResponseWriter, r *http.Request) {
	planets, err := h.planets.List(r.Context(), models.ListFilter{})
	if err != nil {
		h.internalError(w, "Failed to fetch planets", err)
		return
	}
	results := mapSlice(planets, toPlanetResponse)
	h.write(w, ListResponse[PlanetResponse]{Results: results, Count: len(results)})
}

// ListSpecies handles GET /species
func (h *StarWarsHandler) ListSpecies(w http.ResponseWriter, r *http.Request) {
	species, err := h.species.List(r.Context(), models.ListFilter{})
	if err != nil {
		h.internalError(w, "Failed to fetch species", err)
		return
	}
	results := mapSlice(species, toSpeciesResponse)
	h.write(w, ListResponse[SpeciesResponse]{Results: results, Count: len(results)})
}

func (h *StarWarsHandler) characterResponse(p *models.Person) CharacterResponse {
	prefix := strings.TrimRight(h.cfg.APIPrefix, "/")
	return toCharacterResponse(p, prefix+"/characters/"+p.ID.String()+"/films/")
}

func (h *StarWarsHandler) write(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// lookupError answers ErrNotFound with the entity's 404 and anything else
// with a 500.
func (h *StarWarsHandler) lookupError(w http.ResponseWriter, entity, failure string, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		if err := NotFoundResponse(w, entity); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	h.internalError(w, failure, err)
}

func (h *StarWarsHandler) internalError(w http.ResponseWriter, failure string, err error) {
	h.logger.Error(failure, zap.Error(err))
	if err := ErrorResponse(w, http.StatusInternalServerError, failure, logging.SanitizeError(err)); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
