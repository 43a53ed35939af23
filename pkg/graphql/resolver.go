package graphql

//go:generate go run github.com/99designs/gqlgen generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
)

// This file will not be regenerated automatically.
//
// It serves as dependency injection for your app, add any dependencies you require here.

// Resolver is the root resolver over the services. maxFirst caps the page
// size of every connection.
type Resolver struct {
	people   services.PersonService
	films    services.FilmService
	planets  services.PlanetService
	species  services.SpeciesService
	stats    services.StatsService
	maxFirst int
}

// NewResolver creates the root resolver.
func NewResolver(
	people services.PersonService,
	films services.FilmService,
	planets services.PlanetService,
	species services.SpeciesService,
	stats services.StatsService,
	maxFirst int,
) *Resolver {
	return &Resolver{
		people:   people,
		films:    films,
		planets:  planets,
		species:  species,
		stats:    stats,
		maxFirst: maxFirst,
	}
}

// NewSchema builds the executable schema served at /graphql.
func NewSchema(r *Resolver) graphql.ExecutableSchema {
	return NewExecutableSchema(Config{Resolvers: r})
}

// fetch loads a node of typeName. Unknown ids resolve to nil.
func (r *Resolver) fetch(ctx context.Context, typeName string, id uuid.UUID) (models.Node, error) {
	switch typeName {
	case TypePerson:
		return nodeOf(r.people.Get(ctx, id))
	case TypeFilm:
		return nodeOf(r.films.Get(ctx, id))
	case TypePlanet:
		return nodeOf(r.planets.Get(ctx, id))
	case TypeSpecies:
		return nodeOf(r.species.Get(ctx, id))
	}
	return nil, nil
}

func nodeOf[P interface {
	models.Node
	comparable
}](v P, err error) (models.Node, error) {
	var zero P
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil || v == zero {
		return nil, err
	}
	return v, nil
}

// found maps apperrors.ErrNotFound to a nil result.
func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return v, err
}

// homeworld returns an already expanded planet or loads it by id.
func (r *Resolver) homeworld(ctx context.Context, planet *models.Planet, id *uuid.UUID) (*models.Planet, error) {
	if planet != nil {
		return planet, nil
	}
	if id == nil {
		return nil, nil
	}
	return found(r.planets.Get(ctx, *id))
}

// collectIDs decodes related ids, reporting malformed ones the same way the
// services report unknown ones. Null items are skipped.
func collectIDs(typeName string, raw []*string, notFound string, problems []string) ([]uuid.UUID, []string) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if s == nil {
			continue
		}
		id, ok, err := parseID(typeName, *s)
		if err != nil || !ok {
			problems = append(problems, fmt.Sprintf("%s: %s", notFound, *s))
			continue
		}
		ids = append(ids, id)
	}
	return ids, problems
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func errorList(errs []string) []string {
	if errs == nil {
		return []string{}
	}
	return errs
}
