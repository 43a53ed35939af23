package swapi

import (
	"github.com/holocron-dev/holocron/pkg/jsonutil"
)

// Resource collection names under the base URL.
const (
	ResourcePlanets = "planets"
	ResourceFilms   = "films"
	ResourcePeople  = "people"
	ResourceSpecies = "species"
)

// PlanetRecord is a planet as the source serves it.
type PlanetRecord struct {
	Name           string              `json:"name"`
	RotationPeriod jsonutil.FlexString `json:"rotation_period"`
	OrbitalPeriod  jsonutil.FlexString `json:"orbital_period"`
	Diameter       jsonutil.FlexString `json:"diameter"`
	Climate        jsonutil.FlexString `json:"climate"`
	Gravity        jsonutil.FlexString `json:"gravity"`
	Terrain        jsonutil.FlexString `json:"terrain"`
	SurfaceWater   jsonutil.FlexString `json:"surface_water"`
	Population     jsonutil.FlexString `json:"population"`
	Residents      []string            `json:"residents"`
	Films          []string            `json:"films"`
	URL            string              `json:"url"`
}

// FilmRecord is a film as the source serves it.
type FilmRecord struct {
	Title        string           `json:"title"`
	EpisodeID    jsonutil.FlexInt `json:"episode_id"`
	OpeningCrawl string           `json:"opening_crawl"`
	Director     string           `json:"director"`
	Producer     string           `json:"producer"`
	ReleaseDate  string           `json:"release_date"`
	Characters   []string         `json:"characters"`
	Planets      []string         `json:"planets"`
	Species      []string         `json:"species"`
	URL          string           `json:"url"`
}

// PersonRecord is a person as the source serves it.
type PersonRecord struct {
	Name      string              `json:"name"`
	Height    jsonutil.FlexString `json:"height"`
	Mass      jsonutil.FlexString `json:"mass"`
	HairColor jsonutil.FlexString `json:"hair_color"`
	SkinColor jsonutil.FlexString `json:"skin_color"`
	EyeColor  jsonutil.FlexString `json:"eye_color"`
	BirthYear jsonutil.FlexString `json:"birth_year"`
	Gender    jsonutil.FlexString `json:"gender"`
	Homeworld jsonutil.FlexString `json:"homeworld"`
	Films     []string            `json:"films"`
	Species   []string            `json:"species"`
	URL       string              `json:"url"`
}

// SpeciesRecord is a species as the source serves it.
type SpeciesRecord struct {
	Name            string              `json:"name"`
	Classification  jsonutil.FlexString `json:"classification"`
	Designation     jsonutil.FlexString `json:"designation"`
	AverageHeight   jsonutil.FlexString `json:"average_height"`
	SkinColors      jsonutil.FlexString `json:"skin_colors"`
	HairColors      jsonutil.FlexString `json:"hair_colors"`
	EyeColors       jsonutil.FlexString `json:"eye_colors"`
	AverageLifespan jsonutil.FlexString `json:"average_lifespan"`
	Language        jsonutil.FlexString `json:"language"`
	Homeworld       jsonutil.FlexString `json:"homeworld"`
	People          []string            `json:"people"`
	Films           []string            `json:"films"`
	URL             string              `json:"url"`
}
