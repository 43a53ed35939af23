package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

// homeworldResolver batches homeworld lookups for a set of rows.
type homeworldResolver struct {
	planetRepo repositories.PlanetRepository
}

// resolve loads the planets behind ids and returns them keyed by id.
func (h homeworldResolver) resolve(ctx context.Context, ids []*uuid.UUID) (map[uuid.UUID]*models.Planet, error) {
	seen := make(map[uuid.UUID]bool)
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != nil && !seen[*id] {
			seen[*id] = true
			unique = append(unique, *id)
		}
	}

	out := make(map[uuid.UUID]*models.Planet, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	planets, err := h.planetRepo.GetByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("failed to load homeworlds: %w", err)
	}
	for _, p := range planets {
		out[p.ID] = p
	}
	return out, nil
}

func (h homeworldResolver) people(ctx context.Context, people ...*models.Person) error {
	ids := make([]*uuid.UUID, len(people))
	for i, p := range people {
		ids[i] = p.HomeworldID
	}
	planets, err := h.resolve(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range people {
		if p.HomeworldID != nil {
			p.Homeworld = planets[*p.HomeworldID]
		}
	}
	return nil
}

func (h homeworldResolver) species(ctx context.Context, species ...*models.Species) error {
	ids := make([]*uuid.UUID, len(species))
	for i, s := range species {
		ids[i] = s.HomeworldID
	}
	planets, err := h.resolve(ctx, ids)
	if err != nil {
		return err
	}
	for _, s := range species {
		if s.HomeworldID != nil {
			s.Homeworld = planets[*s.HomeworldID]
		}
	}
	return nil
}
