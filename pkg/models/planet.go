package models

import (
	"time"

	"github.com/google/uuid"
)

// Planet is a world referenced by films, people and species.
// Stored in the planets table; Name is the natural key.
type Planet struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	RotationPeriod string    `json:"rotation_period,omitempty"`
	OrbitalPeriod  string    `json:"orbital_period,omitempty"`
	Diameter       string    `json:"diameter,omitempty"`
	Climate        string    `json:"climate,omitempty"`
	Gravity        string    `json:"gravity,omitempty"`
	Terrain        string    `json:"terrain,omitempty"`
	SurfaceWater   string    `json:"surface_water,omitempty"`
	Population     string    `json:"population,omitempty"`
	SwapiURL       string    `json:"swapi_url,omitempty"`
	Created        time.Time `json:"created"`
	Edited         time.Time `json:"edited"`

	// Derived at read time, never persisted.
	ResidentCount int `json:"resident_count"`
	FilmCount     int `json:"film_count"`
}
