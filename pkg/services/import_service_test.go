package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/swapi"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

const fixtureBaseURL = "https://swapi.test/api"

// failingSource fails selected URLs and passes the rest through.
type failingSource struct {
	next swapi.Source
	fail map[string]error
}

func (s *failingSource) Get(ctx context.Context, url string) ([]byte, error) {
	if err := s.fail[url]; err != nil {
		return nil, err
	}
	return s.next.Get(ctx, url)
}

// countingRecorder tallies ImportRecorder calls.
type countingRecorder struct {
	mu       sync.Mutex
	created  map[string]int
	added    map[string]int
	skipped  map[string]int
	fetches  map[string]int
	outcomes []string
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		created: map[string]int{},
		added:   map[string]int{},
		skipped: map[string]int{},
		fetches: map[string]int{},
	}
}

func (r *countingRecorder) EntityCreated(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created[kind]++
}

func (r *countingRecorder) LinkAdded(relation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added[relation]++
}

func (r *countingRecorder) LinkSkipped(relation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.skipped[relation]++
}

func (r *countingRecorder) FetchError(resource string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches[resource]++
}

func (r *countingRecorder) PopulateFinished(outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

type importFixture struct {
	store    *testhelpers.MemStore
	source   swapi.Source
	recorder *countingRecorder
	service  ImportService
}

func newImportFixture(t *testing.T, wrap func(swapi.Source) swapi.Source) *importFixture {
	t.Helper()

	fixture, err := swapi.LoadFixture("testdata/swapi.yaml")
	require.NoError(t, err)

	var src swapi.Source = fixture
	if wrap != nil {
		src = wrap(fixture)
	}

	store := testhelpers.NewMemStore()
	recorder := newCountingRecorder()
	svc := NewImportService(
		src,
		&config.SwapiConfig{BaseURL: fixtureBaseURL},
		store.Planets(), store.Films(), store.People(), store.Species(),
		store.WithTx,
		recorder,
		zaptest.NewLogger(t),
	)

	return &importFixture{store: store, source: src, recorder: recorder, service: svc}
}

func TestPopulate_ImportsEntitiesAndLinks(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()

	report, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)

	assert.False(t, report.AlreadyPopulated)
	assert.Equal(t, models.ImportCounts{Fetched: 3, Created: 3}, report.Planets)
	assert.Equal(t, models.ImportCounts{Fetched: 2, Created: 2}, report.Films)
	assert.Equal(t, models.ImportCounts{Fetched: 3, Created: 3}, report.People)
	assert.Equal(t, models.ImportCounts{Fetched: 2, Created: 2}, report.Species)
	assert.Equal(t, 13, report.LinksAdded)
	assert.Equal(t, 2, report.LinksSkipped, "missing film 3 and missing planet 4")
	assert.Empty(t, report.FetchErrors)

	luke, err := f.store.People().GetByName(ctx, "Luke Skywalker")
	require.NoError(t, err)
	tatooine, err := f.store.Planets().GetByName(ctx, "Tatooine")
	require.NoError(t, err)
	require.NotNil(t, luke.HomeworldID)
	assert.Equal(t, tatooine.ID, *luke.HomeworldID)
	assert.Equal(t, models.GenderMale, luke.Gender)
	assert.Equal(t, 2, luke.FilmCount)
	assert.Equal(t, "172", luke.Height)

	r2, err := f.store.People().GetByName(ctx, "R2-D2")
	require.NoError(t, err)
	assert.Nil(t, r2.HomeworldID, "unresolvable homeworld stays unset")
	assert.Equal(t, models.Gender(""), r2.Gender, "unknown gender stays unset")
	assert.Equal(t, 1, r2.FilmCount)

	anh, err := f.store.Films().GetByTitle(ctx, "A New Hope")
	require.NoError(t, err)
	assert.Equal(t, 4, anh.EpisodeID)
	assert.Equal(t, "1977-05-25", anh.ReleaseDateString())
	assert.Equal(t, 3, anh.CharacterCount)
	assert.Equal(t, 3, anh.PlanetCount)

	esb, err := f.store.Films().GetByTitle(ctx, "The Empire Strikes Back")
	require.NoError(t, err)
	assert.Equal(t, 5, esb.EpisodeID, "quoted episode numbers are accepted")
	assert.Equal(t, 0, esb.PlanetCount)

	human, err := f.store.Species().GetByName(ctx, "Human")
	require.NoError(t, err)
	assert.Nil(t, human.HomeworldID)
	assert.Equal(t, 2, human.PeopleCount)
	assert.Equal(t, 2, human.FilmCount)

	alderaan, err := f.store.Planets().GetByName(ctx, "Alderaan")
	require.NoError(t, err)
	assert.Equal(t, "2000000000", alderaan.Population)

	assert.Equal(t, 3, f.recorder.created["planet"])
	assert.Equal(t, 4, f.recorder.added[RelationPersonFilms])
	assert.Equal(t, 1, f.recorder.skipped[RelationFilmPlanets])
	assert.Equal(t, []string{OutcomeSucceeded}, f.recorder.outcomes)
}

func TestPopulate_GuardSkipsWhenPeopleExist(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)

	report, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)
	assert.True(t, report.AlreadyPopulated)
	assert.Zero(t, report.Planets.Fetched)
	assert.Zero(t, report.LinksAdded)

	total, err := f.store.People().Count(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{OutcomeSucceeded, OutcomeSkipped}, f.recorder.outcomes)
}

func TestPopulate_ForceClearsAndReimports(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)

	extra := &models.Planet{Name: "Dagobah"}
	require.NoError(t, f.store.Planets().Create(ctx, extra))

	report, err := f.service.Populate(ctx, PopulateOptions{Force: true})
	require.NoError(t, err)
	assert.True(t, report.Forced)
	assert.Equal(t, 3, report.Planets.Created, "everything was cleared first")
	assert.Equal(t, 13, report.LinksAdded)

	_, err = f.store.Planets().GetByName(ctx, "Dagobah")
	assert.Error(t, err, "force removes rows the source does not have")

	for _, count := range []func(context.Context, models.ListFilter) (int, error){
		f.store.Planets().Count, f.store.Films().Count, f.store.People().Count, f.store.Species().Count,
	} {
		n, err := count(ctx, models.ListFilter{})
		require.NoError(t, err)
		assert.Positive(t, n)
	}

	luke, err := f.store.People().GetByName(ctx, "Luke Skywalker")
	require.NoError(t, err)
	assert.Equal(t, 2, luke.FilmCount)
}

func TestPopulate_ExistingNaturalKeysAreReused(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()

	tatooine := &models.Planet{Name: "Tatooine", Climate: "hot"}
	require.NoError(t, f.store.Planets().Create(ctx, tatooine))

	report, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.ImportCounts{Fetched: 3, Created: 2, Existing: 1}, report.Planets)

	total, err := f.store.Planets().Count(ctx, models.ListFilter{Name: "Tatooine"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	stored, err := f.store.Planets().GetByName(ctx, "Tatooine")
	require.NoError(t, err)
	assert.Equal(t, tatooine.ID, stored.ID)
	assert.Equal(t, "hot", stored.Climate)
}

func TestPopulate_PageFailureKeepsPartialResults(t *testing.T) {
	pageTwo := fixtureBaseURL + "/planets/?page=2"
	f := newImportFixture(t, func(next swapi.Source) swapi.Source {
		return &failingSource{next: next, fail: map[string]error{
			pageTwo: &swapi.StatusError{URL: pageTwo, StatusCode: 502},
		}}
	})
	ctx := context.Background()

	report, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Planets.Fetched)
	require.Len(t, report.FetchErrors, 1)
	assert.Contains(t, report.FetchErrors[0], "planets")
	assert.Equal(t, 1, f.recorder.fetches[swapi.ResourcePlanets])

	_, err = f.store.Planets().GetByName(ctx, "Yavin IV")
	assert.Error(t, err)

	assert.Equal(t, 12, report.LinksAdded)
	assert.Equal(t, 3, report.LinksSkipped, "Yavin IV link is skipped too")
}

func TestPopulate_LinkFetchFailureIsSkipped(t *testing.T) {
	leia := fixtureBaseURL + "/people/2/"
	f := newImportFixture(t, func(next swapi.Source) swapi.Source {
		return &failingSource{next: next, fail: map[string]error{
			leia: errors.New("connection reset"),
		}}
	})
	ctx := context.Background()

	report, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 12, report.LinksAdded)
	assert.Equal(t, 3, report.LinksSkipped)
	assert.Equal(t, 1, f.recorder.skipped[RelationSpeciesPeople])

	human, err := f.store.Species().GetByName(ctx, "Human")
	require.NoError(t, err)
	assert.Equal(t, 1, human.PeopleCount)
}

func TestPopulate_UnhandledErrorRollsBack(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()
	f.store.Errors["species.GetOrCreate"] = errors.New("disk full")

	report, err := f.service.Populate(ctx, PopulateOptions{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "disk full")

	for _, count := range []func(context.Context, models.ListFilter) (int, error){
		f.store.Planets().Count, f.store.Films().Count, f.store.People().Count,
	} {
		n, err := count(ctx, models.ListFilter{})
		require.NoError(t, err)
		assert.Zero(t, n, "earlier phases must be rolled back")
	}
	assert.Equal(t, []string{OutcomeFailed}, f.recorder.outcomes)
}

func TestPopulate_ForceRollbackKeepsOldData(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx := context.Background()

	_, err := f.service.Populate(ctx, PopulateOptions{})
	require.NoError(t, err)

	f.store.Errors["people.AddFilm"] = errors.New("deadlock detected")
	_, err = f.service.Populate(ctx, PopulateOptions{Force: true})
	require.Error(t, err)

	delete(f.store.Errors, "people.AddFilm")
	luke, err := f.store.People().GetByName(ctx, "Luke Skywalker")
	require.NoError(t, err)
	assert.Equal(t, 2, luke.FilmCount)
}

func TestPopulate_GuardCountFailure(t *testing.T) {
	f := newImportFixture(t, nil)
	f.store.Errors["people.Count"] = errors.New("connection refused")

	_, err := f.service.Populate(context.Background(), PopulateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check existing data")
}

func TestPopulate_CancelledContextFails(t *testing.T) {
	f := newImportFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Populate(ctx, PopulateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPopulate_CachedSourceFetchesEachDocumentOnce(t *testing.T) {
	var cached *swapi.CachedSource
	f := newImportFixture(t, func(next swapi.Source) swapi.Source {
		cached = swapi.NewCachedSource(next, swapi.NewMemoryCache(), zaptest.NewLogger(t))
		return cached
	})

	report, err := f.service.Populate(context.Background(), PopulateOptions{})
	require.NoError(t, err)
	assert.Equal(t, 13, report.LinksAdded)

	hits, misses := cached.Stats()
	assert.Positive(t, hits, "link phase re-reads lists and detail documents")
	assert.Positive(t, misses)
}
