package models

// Stats holds the row count of every entity type.
type Stats struct {
	TotalPeople  int `json:"total_people"`
	TotalFilms   int `json:"total_films"`
	TotalPlanets int `json:"total_planets"`
	TotalSpecies int `json:"total_species"`
}
