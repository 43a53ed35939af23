package models

import (
	"time"

	"github.com/google/uuid"
)

// Gender is the enumerated gender of a Person. The empty value means unset.
type Gender string

const (
	GenderMale          Gender = "male"
	GenderFemale        Gender = "female"
	GenderHermaphrodite Gender = "hermaphrodite"
	GenderNone          Gender = "none"
	GenderNA            Gender = "n/a"
	GenderUnknown       Gender = "unknown"
)

// ValidGenders lists every accepted non-empty Gender.
var ValidGenders = []Gender{
	GenderMale, GenderFemale, GenderHermaphrodite, GenderNone, GenderNA, GenderUnknown,
}

// IsValid reports whether g is unset or one of ValidGenders.
func (g Gender) IsValid() bool {
	if g == "" {
		return true
	}
	for _, v := range ValidGenders {
		if g == v {
			return true
		}
	}
	return false
}

// Person is a character. Name is the natural key.
type Person struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Height      string     `json:"height,omitempty"`
	Mass        string     `json:"mass,omitempty"`
	HairColor   string     `json:"hair_color,omitempty"`
	SkinColor   string     `json:"skin_color,omitempty"`
	EyeColor    string     `json:"eye_color,omitempty"`
	BirthYear   string     `json:"birth_year,omitempty"`
	Gender      Gender     `json:"gender,omitempty"`
	HomeworldID *uuid.UUID `json:"homeworld_id,omitempty"`
	SwapiURL    string     `json:"swapi_url,omitempty"`
	Created     time.Time  `json:"created"`
	Edited      time.Time  `json:"edited"`

	// Homeworld is populated by services that expand the reference.
	Homeworld *Planet `json:"homeworld,omitempty"`

	// Derived at read time, never persisted.
	FilmCount int `json:"film_count"`
}
