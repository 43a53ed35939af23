package models

import (
	"time"

	"github.com/google/uuid"
)

// Species groups people by biology. Name is the natural key.
type Species struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Classification  string     `json:"classification,omitempty"`
	Designation     string     `json:"designation,omitempty"`
	AverageHeight   string     `json:"average_height,omitempty"`
	SkinColors      string     `json:"skin_colors,omitempty"`
	HairColors      string     `json:"hair_colors,omitempty"`
	EyeColors       string     `json:"eye_colors,omitempty"`
	AverageLifespan string     `json:"average_lifespan,omitempty"`
	Language        string     `json:"language,omitempty"`
	HomeworldID     *uuid.UUID `json:"homeworld_id,omitempty"`
	SwapiURL        string     `json:"swapi_url,omitempty"`
	Created         time.Time  `json:"created"`
	Edited          time.Time  `json:"edited"`

	Homeworld *Planet `json:"homeworld,omitempty"`

	// Derived at read time, never persisted.
	PeopleCount int `json:"people_count"`
	FilmCount   int `json:"film_count"`
}
