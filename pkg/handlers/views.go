package handlers

import (
	"time"

	"github.com/holocron-dev/holocron/pkg/models"
)

// ============================================================================
// Response Types
// ============================================================================

// PlanetBrief is the homeworld summary embedded in character responses.
type PlanetBrief struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Climate    string `json:"climate"`
	Terrain    string `json:"terrain"`
	Population string `json:"population,omitempty"`
}

// CharacterResponse is one character in list and detail responses.
type CharacterResponse struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Gender     string       `json:"gender"`
	BirthYear  string       `json:"birth_year"`
	Height     string       `json:"height"`
	Mass       string       `json:"mass"`
	HairColor  string       `json:"hair_color"`
	SkinColor  string       `json:"skin_color"`
	EyeColor   string       `json:"eye_color"`
	Homeworld  *PlanetBrief `json:"homeworld"`
	Species    []string     `json:"species,omitempty"`
	FilmsCount int          `json:"films_count"`
	FilmsURL   string       `json:"films_url"`
	Created    time.Time    `json:"created"`
}

// CharacterListResponse for GET /characters
type CharacterListResponse struct {
	Results []CharacterResponse `json:"results"`
	models.PageInfo
}

// CharacterBrief is the character header of GET /characters/{id}/films.
type CharacterBrief struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Gender    string  `json:"gender"`
	BirthYear string  `json:"birth_year"`
	Homeworld *string `json:"homeworld"`
}

// PlanetDetail is a planet as listed inside a film.
type PlanetDetail struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Climate        string `json:"climate"`
	Terrain        string `json:"terrain"`
	Population     string `json:"population"`
	Diameter       string `json:"diameter"`
	Gravity        string `json:"gravity"`
	SurfaceWater   string `json:"surface_water"`
	RotationPeriod string `json:"rotation_period"`
	OrbitalPeriod  string `json:"orbital_period"`
}

// CharacterFilm is one film of GET /characters/{id}/films.
type CharacterFilm struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	EpisodeID      int            `json:"episode_id"`
	OpeningCrawl   string         `json:"opening_crawl"`
	Director       string         `json:"director"`
	Producer       string         `json:"producer"`
	ReleaseDate    string         `json:"release_date"`
	Planets        []PlanetDetail `json:"planets"`
	CharacterCount int            `json:"character_count"`
	Created        time.Time      `json:"created"`
	SwapiURL       string         `json:"swapi_url"`
}

// CharacterFilmsResponse for GET /characters/{id}/films
type CharacterFilmsResponse struct {
	Character  CharacterBrief  `json:"character"`
	Films      []CharacterFilm `json:"films"`
	TotalFilms int             `json:"total_films"`
}

// FilmResponse is one film of GET /films.
type FilmResponse struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	EpisodeID      int    `json:"episode_id"`
	Director       string `json:"director"`
	Producer       string `json:"producer"`
	ReleaseDate    string `json:"release_date"`
	CharacterCount int    `json:"character_count"`
	PlanetCount    int    `json:"planet_count"`
}

// PlanetResponse is one planet of GET /planets.
type PlanetResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Climate       string `json:"climate"`
	Terrain       string `json:"terrain"`
	Population    string `json:"population"`
	ResidentCount int    `json:"resident_count"`
	FilmCount     int    `json:"film_count"`
}

// SpeciesResponse is one species of GET /species.
type SpeciesResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Classification string  `json:"classification"`
	Designation    string  `json:"designation"`
	Language       string  `json:"language"`
	Homeworld      *string `json:"homeworld"`
	PeopleCount    int     `json:"people_count"`
	FilmCount      int     `json:"film_count"`
}

// ListResponse wraps an unpaginated collection.
type ListResponse[T any] struct {
	Results []T `json:"results"`
	Count   int `json:"count"`
}

// StatusResponse for GET /status
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// ============================================================================
// Conversions
// ============================================================================

func toPlanetBrief(p *models.Planet, withPopulation bool) *PlanetBrief {
	if p == nil {
		return nil
	}
	brief := &PlanetBrief{
		ID:      p.ID.String(),
		Name:    p.Name,
		Climate: p.Climate,
		Terrain: p.Terrain,
	}
	if withPopulation {
		brief.Population = p.Population
	}
	return brief
}

func toCharacterResponse(p *models.Person, filmsURL string) CharacterResponse {
	return CharacterResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		Gender:     string(p.Gender),
		BirthYear:  p.BirthYear,
		Height:     p.Height,
		Mass:       p.Mass,
		HairColor:  p.HairColor,
		SkinColor:  p.SkinColor,
		EyeColor:   p.EyeColor,
		Homeworld:  toPlanetBrief(p.Homeworld, false),
		FilmsCount: p.FilmCount,
		FilmsURL:   filmsURL,
		Created:    p.Created,
	}
}

func toPlanetDetail(p *models.Planet) PlanetDetail {
	return PlanetDetail{
		ID:             p.ID.String(),
		Name:           p.Name,
		Climate:        p.Climate,
		Terrain:        p.Terrain,
		Population:     p.Population,
		Diameter:       p.Diameter,
		Gravity:        p.Gravity,
		SurfaceWater:   p.SurfaceWater,
		RotationPeriod: p.RotationPeriod,
		OrbitalPeriod:  p.OrbitalPeriod,
	}
}

func toCharacterFilm(fw *models.FilmWithPlanets) CharacterFilm {
	planets := make([]PlanetDetail, 0, len(fw.Planets))
	for _, p := range fw.Planets {
		planets = append(planets, toPlanetDetail(p))
	}
	f := fw.Film
	return CharacterFilm{
		ID:             f.ID.String(),
		Title:          f.Title,
		EpisodeID:      f.EpisodeID,
		OpeningCrawl:   f.OpeningCrawl,
		Director:       f.Director,
		Producer:       f.Producer,
		ReleaseDate:    f.ReleaseDateString(),
		Planets:        planets,
		CharacterCount: f.CharacterCount,
		Created:        f.Created,
		SwapiURL:       f.SwapiURL,
	}
}

func toFilmResponse(f *models.Film) FilmResponse {
	return FilmResponse{
		ID:             f.ID.String(),
		Title:          f.Title,
		EpisodeID:      f.EpisodeID,
		Director:       f.Director,
		Producer:       f.Producer,
		ReleaseDate:    f.ReleaseDateString(),
		CharacterCount: f.CharacterCount,
		PlanetCount:    f.PlanetCount,
	}
}

func toPlanetResponse(p *models.Planet) PlanetResponse {
	return PlanetResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Climate:       p.Climate,
		Terrain:       p.Terrain,
		Population:    p.Population,
		ResidentCount: p.ResidentCount,
		FilmCount:     p.FilmCount,
	}
}

func toSpeciesResponse(s *models.Species) SpeciesResponse {
	var homeworld *string
	if s.Homeworld != nil {
		homeworld = &s.Homeworld.Name
	}
	return SpeciesResponse{
		ID:             s.ID.String(),
		Name:           s.Name,
		Classification: s.Classification,
		Designation:    s.Designation,
		Language:       s.Language,
		Homeworld:      homeworld,
		PeopleCount:    s.PeopleCount,
		FilmCount:      s.FilmCount,
	}
}

func mapSlice[T, R any](items []*T, fn func(*T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
