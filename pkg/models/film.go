package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for release dates.
const DateLayout = "2006-01-02"

// Film is a single episode. Title and EpisodeID are both unique; Title is the
// natural key used by the importer.
type Film struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	EpisodeID    int       `json:"episode_id"`
	OpeningCrawl string    `json:"opening_crawl"`
	Director     string    `json:"director"`
	Producer     string    `json:"producer"`
	ReleaseDate  time.Time `json:"release_date"`
	SwapiURL     string    `json:"swapi_url,omitempty"`
	Created      time.Time `json:"created"`
	Edited       time.Time `json:"edited"`

	// Derived at read time, never persisted.
	CharacterCount int `json:"character_count"`
	PlanetCount    int `json:"planet_count"`
}

// ReleaseDateString formats the release date as YYYY-MM-DD.
func (f *Film) ReleaseDateString() string {
	if f.ReleaseDate.IsZero() {
		return ""
	}
	return f.ReleaseDate.Format(DateLayout)
}

// FilmWithPlanets is a film expanded with the planets it features.
type FilmWithPlanets struct {
	Film    *Film
	Planets []*Planet
}
