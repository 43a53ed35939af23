package services

import (
	"fmt"
	"unicode/utf8"
)

// Column widths from the initial schema migration.
const (
	varchar10  = 10
	varchar20  = 20
	varchar50  = 50
	varchar100 = 100
	varchar200 = 200
)

type fieldLimit struct {
	label string
	value string
	max   int
}

// tooLong reports every field whose value exceeds its column width.
func tooLong(fields ...fieldLimit) []string {
	var problems []string
	for _, f := range fields {
		if utf8.RuneCountInString(f.value) > f.max {
			problems = append(problems, fmt.Sprintf("%s must be at most %d characters", f.label, f.max))
		}
	}
	return problems
}

func personLimits(name string, in *CreatePersonInput) []string {
	return tooLong(
		fieldLimit{"Name", name, varchar100},
		fieldLimit{"Height", in.Height, varchar10},
		fieldLimit{"Mass", in.Mass, varchar10},
		fieldLimit{"Hair color", in.HairColor, varchar50},
		fieldLimit{"Skin color", in.SkinColor, varchar50},
		fieldLimit{"Eye color", in.EyeColor, varchar50},
		fieldLimit{"Birth year", in.BirthYear, varchar20},
	)
}

func planetLimits(name string, in *CreatePlanetInput) []string {
	return tooLong(
		fieldLimit{"Name", name, varchar100},
		fieldLimit{"Rotation period", in.RotationPeriod, varchar20},
		fieldLimit{"Orbital period", in.OrbitalPeriod, varchar20},
		fieldLimit{"Diameter", in.Diameter, varchar20},
		fieldLimit{"Climate", in.Climate, varchar100},
		fieldLimit{"Gravity", in.Gravity, varchar50},
		fieldLimit{"Terrain", in.Terrain, varchar100},
		fieldLimit{"Surface water", in.SurfaceWater, varchar20},
		fieldLimit{"Population", in.Population, varchar50},
	)
}

func filmLimits(title string, in *CreateFilmInput) []string {
	return tooLong(
		fieldLimit{"Title", title, varchar100},
		fieldLimit{"Director", in.Director, varchar100},
		fieldLimit{"Producer", in.Producer, varchar200},
	)
}
