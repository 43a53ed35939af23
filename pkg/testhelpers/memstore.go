package testhelpers

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
)

type pair struct{ owner, other uuid.UUID }

// MemStore is an in-memory stand-in for the PostgreSQL repositories. It keeps
// the same ordering, filtering, uniqueness and link semantics so services and
// handlers can be tested without Docker.
type MemStore struct {
	mu sync.Mutex

	planets map[uuid.UUID]*models.Planet
	films   map[uuid.UUID]*models.Film
	people  map[uuid.UUID]*models.Person
	species map[uuid.UUID]*models.Species

	filmPlanets   map[pair]bool
	personFilms   map[pair]bool
	speciesPeople map[pair]bool
	speciesFilms  map[pair]bool

	// Errors injects a failure for an operation, keyed like "people.Count".
	Errors map[string]error
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{
		planets:       map[uuid.UUID]*models.Planet{},
		films:         map[uuid.UUID]*models.Film{},
		people:        map[uuid.UUID]*models.Person{},
		species:       map[uuid.UUID]*models.Species{},
		filmPlanets:   map[pair]bool{},
		personFilms:   map[pair]bool{},
		speciesPeople: map[pair]bool{},
		speciesFilms:  map[pair]bool{},
		Errors:        map[string]error{},
	}
}

// Planets returns the planet repository view.
func (s *MemStore) Planets() repositories.PlanetRepository { return &memPlanets{s} }

// Films returns the film repository view.
func (s *MemStore) Films() repositories.FilmRepository { return &memFilms{s} }

// People returns the person repository view.
func (s *MemStore) People() repositories.PersonRepository { return &memPeople{s} }

// Species returns the species repository view.
func (s *MemStore) Species() repositories.SpeciesRepository { return &memSpecies{s} }

// WithTx runs fn and restores the previous state if it fails.
func (s *MemStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

type memSnapshot struct {
	planets                                               map[uuid.UUID]models.Planet
	films                                                 map[uuid.UUID]models.Film
	people                                                map[uuid.UUID]models.Person
	species                                               map[uuid.UUID]models.Species
	filmPlanets, personFilms, speciesPeople, speciesFilms map[pair]bool
}

func (s *MemStore) snapshot() memSnapshot {
	snap := memSnapshot{
		planets:       map[uuid.UUID]models.Planet{},
		films:         map[uuid.UUID]models.Film{},
		people:        map[uuid.UUID]models.Person{},
		species:       map[uuid.UUID]models.Species{},
		filmPlanets:   copyPairs(s.filmPlanets),
		personFilms:   copyPairs(s.personFilms),
		speciesPeople: copyPairs(s.speciesPeople),
		speciesFilms:  copyPairs(s.speciesFilms),
	}
	for id, p := range s.planets {
		snap.planets[id] = *p
	}
	for id, f := range s.films {
		snap.films[id] = *f
	}
	for id, p := range s.people {
		snap.people[id] = *p
	}
	for id, sp := range s.species {
		snap.species[id] = *sp
	}
	return snap
}

func (s *MemStore) restore(snap memSnapshot) {
	s.planets = map[uuid.UUID]*models.Planet{}
	for id, p := range snap.planets {
		s.planets[id] = &p
	}
	s.films = map[uuid.UUID]*models.Film{}
	for id, f := range snap.films {
		s.films[id] = &f
	}
	s.people = map[uuid.UUID]*models.Person{}
	for id, p := range snap.people {
		s.people[id] = &p
	}
	s.species = map[uuid.UUID]*models.Species{}
	for id, sp := range snap.species {
		s.species[id] = &sp
	}
	s.filmPlanets = snap.filmPlanets
	s.personFilms = snap.personFilms
	s.speciesPeople = snap.speciesPeople
	s.speciesFilms = snap.speciesFilms
}

func copyPairs(m map[pair]bool) map[pair]bool {
	out := make(map[pair]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *MemStore) fail(op string) error {
	return s.Errors[op]
}

func matches(value string, filter models.ListFilter) bool {
	return filter.Name == "" || strings.Contains(strings.ToLower(value), strings.ToLower(filter.Name))
}

func window[T any](items []*T, limit, offset int) []*T {
	if offset >= len(items) {
		return []*T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func countPairs(m map[pair]bool, match func(pair) bool) int {
	n := 0
	for p := range m {
		if match(p) {
			n++
		}
	}
	return n
}

func (s *MemStore) addPair(m map[pair]bool, p pair, ownerExists, otherExists bool, touch func()) (bool, error) {
	if !ownerExists || !otherExists {
		return false, apperrors.ErrNotFound
	}
	if m[p] {
		return false, nil
	}
	m[p] = true
	touch()
	return true, nil
}

func (s *MemStore) removePair(m map[pair]bool, p pair, touch func()) bool {
	if !m[p] {
		return false
	}
	delete(m, p)
	touch()
	return true
}

// ============================================================================
// Planets
// ============================================================================

type memPlanets struct{ s *MemStore }

var _ repositories.PlanetRepository = (*memPlanets)(nil)

func (r *memPlanets) view(p *models.Planet) *models.Planet {
	c := *p
	c.ResidentCount = 0
	for _, person := range r.s.people {
		if person.HomeworldID != nil && *person.HomeworldID == p.ID {
			c.ResidentCount++
		}
	}
	c.FilmCount = countPairs(r.s.filmPlanets, func(x pair) bool { return x.other == p.ID })
	return &c
}

func (r *memPlanets) byName(name string) *models.Planet {
	for _, p := range r.s.planets {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *memPlanets) insert(p *models.Planet) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.Created, p.Edited = now, now
	c := *p
	r.s.planets[p.ID] = &c
}

func (r *memPlanets) Create(ctx context.Context, planet *models.Planet) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planets.Create"); err != nil {
		return err
	}
	if r.byName(planet.Name) != nil {
		return &apperrors.ConflictError{Entity: "planet", Field: "name", Value: planet.Name}
	}
	r.insert(planet)
	return nil
}

func (r *memPlanets) GetOrCreate(ctx context.Context, planet *models.Planet) (*models.Planet, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planets.GetOrCreate"); err != nil {
		return nil, false, err
	}
	if existing := r.byName(planet.Name); existing != nil {
		return r.view(existing), false, nil
	}
	r.insert(planet)
	return planet, true, nil
}

func (r *memPlanets) GetByID(ctx context.Context, id uuid.UUID) (*models.Planet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planets.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.planets[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.view(p), nil
}

func (r *memPlanets) GetByName(ctx context.Context, name string) (*models.Planet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("planets.GetByName"); err != nil {
		return nil, err
	}
	p := r.byName(name)
	if p == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.view(p), nil
}

func (r *memPlanets) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Planet, error) {
	return r.collect(func(p *models.Planet) bool {
		for _, id := range ids {
			if id == p.ID {
				return true
			}
		}
		return false
	}), nil
}

func (r *memPlanets) collect(match func(*models.Planet) bool) []*models.Planet {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Planet, 0)
	for _, p := range r.s.planets {
		if match(p) {
			out = append(out, r.view(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memPlanets) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Planet, error) {
	if err := r.s.fail("planets.List"); err != nil {
		return nil, err
	}
	all := r.collect(func(p *models.Planet) bool { return matches(p.Name, filter) })
	return window(all, limit, offset), nil
}

func (r *memPlanets) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	if err := r.s.fail("planets.Count"); err != nil {
		return 0, err
	}
	return len(r.collect(func(p *models.Planet) bool { return matches(p.Name, filter) })), nil
}

func (r *memPlanets) ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Planet, error) {
	return r.collect(func(p *models.Planet) bool { return r.s.filmPlanets[pair{filmID, p.ID}] }), nil
}

func (r *memPlanets) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.planets[id]; !ok {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	for _, p := range r.s.people {
		if p.HomeworldID != nil && *p.HomeworldID == id {
			p.HomeworldID = nil
			p.Edited = now
		}
	}
	for _, sp := range r.s.species {
		if sp.HomeworldID != nil && *sp.HomeworldID == id {
			sp.HomeworldID = nil
			sp.Edited = now
		}
	}
	for p := range r.s.filmPlanets {
		if p.other == id {
			delete(r.s.filmPlanets, p)
		}
	}
	delete(r.s.planets, id)
	return nil
}

func (r *memPlanets) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	ids := make([]uuid.UUID, 0, len(r.s.planets))
	for id := range r.s.planets {
		ids = append(ids, id)
	}
	r.s.mu.Unlock()

	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return int64(len(ids)), nil
}

// ============================================================================
// Films
// ============================================================================

type memFilms struct{ s *MemStore }

var _ repositories.FilmRepository = (*memFilms)(nil)

func (r *memFilms) view(f *models.Film) *models.Film {
	c := *f
	c.CharacterCount = countPairs(r.s.personFilms, func(x pair) bool { return x.other == f.ID })
	c.PlanetCount = countPairs(r.s.filmPlanets, func(x pair) bool { return x.owner == f.ID })
	return &c
}

func (r *memFilms) byTitle(title string) *models.Film {
	for _, f := range r.s.films {
		if f.Title == title {
			return f
		}
	}
	return nil
}

func (r *memFilms) byEpisode(episode int) *models.Film {
	for _, f := range r.s.films {
		if f.EpisodeID == episode {
			return f
		}
	}
	return nil
}

func (r *memFilms) insert(f *models.Film) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	now := time.Now()
	f.Created, f.Edited = now, now
	c := *f
	r.s.films[f.ID] = &c
}

func (r *memFilms) Create(ctx context.Context, film *models.Film) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("films.Create"); err != nil {
		return err
	}
	if r.byTitle(film.Title) != nil {
		return &apperrors.ConflictError{Entity: "film", Field: "title", Value: film.Title}
	}
	if r.byEpisode(film.EpisodeID) != nil {
		return &apperrors.ConflictError{Entity: "film", Field: "episode_id", Value: strconv.Itoa(film.EpisodeID)}
	}
	r.insert(film)
	return nil
}

func (r *memFilms) GetOrCreate(ctx context.Context, film *models.Film) (*models.Film, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("films.GetOrCreate"); err != nil {
		return nil, false, err
	}
	if existing := r.byTitle(film.Title); existing != nil {
		return r.view(existing), false, nil
	}
	if r.byEpisode(film.EpisodeID) != nil {
		return nil, false, &apperrors.ConflictError{Entity: "film", Field: "episode_id", Value: strconv.Itoa(film.EpisodeID)}
	}
	r.insert(film)
	return film, true, nil
}

func (r *memFilms) GetByID(ctx context.Context, id uuid.UUID) (*models.Film, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("films.GetByID"); err != nil {
		return nil, err
	}
	f, ok := r.s.films[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.view(f), nil
}

func (r *memFilms) GetByTitle(ctx context.Context, title string) (*models.Film, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("films.GetByTitle"); err != nil {
		return nil, err
	}
	f := r.byTitle(title)
	if f == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.view(f), nil
}

func (r *memFilms) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Film, error) {
	return r.collect(func(f *models.Film) bool {
		for _, id := range ids {
			if id == f.ID {
				return true
			}
		}
		return false
	}), nil
}

func (r *memFilms) collect(match func(*models.Film) bool) []*models.Film {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Film, 0)
	for _, f := range r.s.films {
		if match(f) {
			out = append(out, r.view(f))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EpisodeID < out[j].EpisodeID })
	return out
}

func (r *memFilms) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Film, error) {
	if err := r.s.fail("films.List"); err != nil {
		return nil, err
	}
	all := r.collect(func(f *models.Film) bool { return matches(f.Title, filter) })
	return window(all, limit, offset), nil
}

func (r *memFilms) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	if err := r.s.fail("films.Count"); err != nil {
		return 0, err
	}
	return len(r.collect(func(f *models.Film) bool { return matches(f.Title, filter) })), nil
}

func (r *memFilms) ListByPerson(ctx context.Context, personID uuid.UUID) ([]*models.Film, error) {
	return r.collect(func(f *models.Film) bool { return r.s.personFilms[pair{personID, f.ID}] }), nil
}

func (r *memFilms) ListByPlanet(ctx context.Context, planetID uuid.UUID) ([]*models.Film, error) {
	return r.collect(func(f *models.Film) bool { return r.s.filmPlanets[pair{f.ID, planetID}] }), nil
}

func (r *memFilms) ListBySpecies(ctx context.Context, speciesID uuid.UUID) ([]*models.Film, error) {
	return r.collect(func(f *models.Film) bool { return r.s.speciesFilms[pair{speciesID, f.ID}] }), nil
}

func (r *memFilms) AddPlanet(ctx context.Context, filmID, planetID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("films.AddPlanet"); err != nil {
		return false, err
	}
	f, fok := r.s.films[filmID]
	_, pok := r.s.planets[planetID]
	return r.s.addPair(r.s.filmPlanets, pair{filmID, planetID}, fok, pok, func() { f.Edited = time.Now() })
}

func (r *memFilms) RemovePlanet(ctx context.Context, filmID, planetID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.removePair(r.s.filmPlanets, pair{filmID, planetID}, func() { r.s.films[filmID].Edited = time.Now() }), nil
}

func (r *memFilms) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.films))
	r.s.films = map[uuid.UUID]*models.Film{}
	r.s.filmPlanets = map[pair]bool{}
	for p := range r.s.personFilms {
		delete(r.s.personFilms, p)
	}
	for p := range r.s.speciesFilms {
		delete(r.s.speciesFilms, p)
	}
	return n, nil
}

// ============================================================================
// People
// ============================================================================

type memPeople struct{ s *MemStore }

var _ repositories.PersonRepository = (*memPeople)(nil)

func (r *memPeople) view(p *models.Person) *models.Person {
	c := *p
	c.FilmCount = countPairs(r.s.personFilms, func(x pair) bool { return x.owner == p.ID })
	return &c
}

func (r *memPeople) byName(name string) *models.Person {
	for _, p := range r.s.people {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *memPeople) insert(p *models.Person) error {
	if p.HomeworldID != nil {
		if _, ok := r.s.planets[*p.HomeworldID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.Created, p.Edited = now, now
	c := *p
	r.s.people[p.ID] = &c
	return nil
}

func (r *memPeople) Create(ctx context.Context, person *models.Person) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("people.Create"); err != nil {
		return err
	}
	if r.byName(person.Name) != nil {
		return &apperrors.ConflictError{Entity: "person", Field: "name", Value: person.Name}
	}
	return r.insert(person)
}

func (r *memPeople) GetOrCreate(ctx context.Context, person *models.Person) (*models.Person, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("people.GetOrCreate"); err != nil {
		return nil, false, err
	}
	if existing := r.byName(person.Name); existing != nil {
		return r.view(existing), false, nil
	}
	if err := r.insert(person); err != nil {
		return nil, false, err
	}
	return person, true, nil
}

func (r *memPeople) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("people.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.s.people[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.view(p), nil
}

func (r *memPeople) GetByName(ctx context.Context, name string) (*models.Person, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("people.GetByName"); err != nil {
		return nil, err
	}
	p := r.byName(name)
	if p == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.view(p), nil
}

func (r *memPeople) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Person, error) {
	return r.collect(func(p *models.Person) bool {
		for _, id := range ids {
			if id == p.ID {
				return true
			}
		}
		return false
	}), nil
}

func (r *memPeople) collect(match func(*models.Person) bool) []*models.Person {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Person, 0)
	for _, p := range r.s.people {
		if match(p) {
			out = append(out, r.view(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memPeople) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Person, error) {
	if err := r.s.fail("people.List"); err != nil {
		return nil, err
	}
	all := r.collect(func(p *models.Person) bool { return matches(p.Name, filter) })
	return window(all, limit, offset), nil
}

func (r *memPeople) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	if err := r.s.fail("people.Count"); err != nil {
		return 0, err
	}
	return len(r.collect(func(p *models.Person) bool { return matches(p.Name, filter) })), nil
}

func (r *memPeople) ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Person, error) {
	return r.collect(func(p *models.Person) bool { return r.s.personFilms[pair{p.ID, filmID}] }), nil
}

func (r *memPeople) ListBySpecies(ctx context.Context, speciesID uuid.UUID) ([]*models.Person, error) {
	return r.collect(func(p *models.Person) bool { return r.s.speciesPeople[pair{speciesID, p.ID}] }), nil
}

func (r *memPeople) ListByHomeworld(ctx context.Context, planetID uuid.UUID) ([]*models.Person, error) {
	return r.collect(func(p *models.Person) bool { return p.HomeworldID != nil && *p.HomeworldID == planetID }), nil
}

func (r *memPeople) AddFilm(ctx context.Context, personID, filmID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("people.AddFilm"); err != nil {
		return false, err
	}
	p, pok := r.s.people[personID]
	_, fok := r.s.films[filmID]
	return r.s.addPair(r.s.personFilms, pair{personID, filmID}, pok, fok, func() { p.Edited = time.Now() })
}

func (r *memPeople) RemoveFilm(ctx context.Context, personID, filmID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.removePair(r.s.personFilms, pair{personID, filmID}, func() { r.s.people[personID].Edited = time.Now() }), nil
}

func (r *memPeople) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.people))
	r.s.people = map[uuid.UUID]*models.Person{}
	r.s.personFilms = map[pair]bool{}
	r.s.speciesPeople = map[pair]bool{}
	return n, nil
}

// ============================================================================
// Species
// ============================================================================

type memSpecies struct{ s *MemStore }

var _ repositories.SpeciesRepository = (*memSpecies)(nil)

func (r *memSpecies) view(sp *models.Species) *models.Species {
	c := *sp
	c.PeopleCount = countPairs(r.s.speciesPeople, func(x pair) bool { return x.owner == sp.ID })
	c.FilmCount = countPairs(r.s.speciesFilms, func(x pair) bool { return x.owner == sp.ID })
	return &c
}

func (r *memSpecies) byName(name string) *models.Species {
	for _, sp := range r.s.species {
		if sp.Name == name {
			return sp
		}
	}
	return nil
}

func (r *memSpecies) insert(sp *models.Species) error {
	if sp.HomeworldID != nil {
		if _, ok := r.s.planets[*sp.HomeworldID]; !ok {
			return apperrors.ErrNotFound
		}
	}
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	now := time.Now()
	sp.Created, sp.Edited = now, now
	c := *sp
	r.s.species[sp.ID] = &c
	return nil
}

func (r *memSpecies) Create(ctx context.Context, species *models.Species) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("species.Create"); err != nil {
		return err
	}
	if r.byName(species.Name) != nil {
		return &apperrors.ConflictError{Entity: "species", Field: "name", Value: species.Name}
	}
	return r.insert(species)
}

func (r *memSpecies) GetOrCreate(ctx context.Context, species *models.Species) (*models.Species, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("species.GetOrCreate"); err != nil {
		return nil, false, err
	}
	if existing := r.byName(species.Name); existing != nil {
		return r.view(existing), false, nil
	}
	if err := r.insert(species); err != nil {
		return nil, false, err
	}
	return species, true, nil
}

func (r *memSpecies) GetByID(ctx context.Context, id uuid.UUID) (*models.Species, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("species.GetByID"); err != nil {
		return nil, err
	}
	sp, ok := r.s.species[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r.view(sp), nil
}

func (r *memSpecies) GetByName(ctx context.Context, name string) (*models.Species, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("species.GetByName"); err != nil {
		return nil, err
	}
	sp := r.byName(name)
	if sp == nil {
		return nil, apperrors.ErrNotFound
	}
	return r.view(sp), nil
}

func (r *memSpecies) collect(match func(*models.Species) bool) []*models.Species {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.Species, 0)
	for _, sp := range r.s.species {
		if match(sp) {
			out = append(out, r.view(sp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memSpecies) List(ctx context.Context, filter models.ListFilter, limit, offset int) ([]*models.Species, error) {
	if err := r.s.fail("species.List"); err != nil {
		return nil, err
	}
	all := r.collect(func(sp *models.Species) bool { return matches(sp.Name, filter) })
	return window(all, limit, offset), nil
}

func (r *memSpecies) Count(ctx context.Context, filter models.ListFilter) (int, error) {
	if err := r.s.fail("species.Count"); err != nil {
		return 0, err
	}
	return len(r.collect(func(sp *models.Species) bool { return matches(sp.Name, filter) })), nil
}

func (r *memSpecies) ListByPerson(ctx context.Context, personID uuid.UUID) ([]*models.Species, error) {
	return r.collect(func(sp *models.Species) bool { return r.s.speciesPeople[pair{sp.ID, personID}] }), nil
}

func (r *memSpecies) ListByFilm(ctx context.Context, filmID uuid.UUID) ([]*models.Species, error) {
	return r.collect(func(sp *models.Species) bool { return r.s.speciesFilms[pair{sp.ID, filmID}] }), nil
}

func (r *memSpecies) ListByHomeworld(ctx context.Context, planetID uuid.UUID) ([]*models.Species, error) {
	return r.collect(func(sp *models.Species) bool { return sp.HomeworldID != nil && *sp.HomeworldID == planetID }), nil
}

func (r *memSpecies) AddPerson(ctx context.Context, speciesID, personID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("species.AddPerson"); err != nil {
		return false, err
	}
	sp, sok := r.s.species[speciesID]
	_, pok := r.s.people[personID]
	return r.s.addPair(r.s.speciesPeople, pair{speciesID, personID}, sok, pok, func() { sp.Edited = time.Now() })
}

func (r *memSpecies) RemovePerson(ctx context.Context, speciesID, personID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.removePair(r.s.speciesPeople, pair{speciesID, personID}, func() { r.s.species[speciesID].Edited = time.Now() }), nil
}

func (r *memSpecies) AddFilm(ctx context.Context, speciesID, filmID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("species.AddFilm"); err != nil {
		return false, err
	}
	sp, sok := r.s.species[speciesID]
	_, fok := r.s.films[filmID]
	return r.s.addPair(r.s.speciesFilms, pair{speciesID, filmID}, sok, fok, func() { sp.Edited = time.Now() })
}

func (r *memSpecies) RemoveFilm(ctx context.Context, speciesID, filmID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.removePair(r.s.speciesFilms, pair{speciesID, filmID}, func() { r.s.species[speciesID].Edited = time.Now() }), nil
}

func (r *memSpecies) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.species))
	r.s.species = map[uuid.UUID]*models.Species{}
	r.s.speciesPeople = map[pair]bool{}
	r.s.speciesFilms = map[pair]bool{}
	return n, nil
}
