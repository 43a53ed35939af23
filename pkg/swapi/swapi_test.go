package swapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/config"
)

// mapSource serves canned documents and counts requests per URL.
type mapSource struct {
	docs  map[string]string
	fail  map[string]error
	calls map[string]int
}

func newMapSource(docs map[string]string) *mapSource {
	return &mapSource{docs: docs, fail: map[string]error{}, calls: map[string]int{}}
}

func (s *mapSource) Get(_ context.Context, url string) ([]byte, error) {
	s.calls[url]++
	if err := s.fail[url]; err != nil {
		return nil, err
	}
	doc, ok := s.docs[url]
	if !ok {
		return nil, &StatusError{URL: url, StatusCode: http.StatusNotFound}
	}
	return []byte(doc), nil
}

func TestFetchAll_FollowsNext(t *testing.T) {
	src := newMapSource(map[string]string{
		"http://x/people/":        `{"results":[{"name":"Luke Skywalker"}],"next":"http://x/people/?page=2"}`,
		"http://x/people/?page=2": `{"results":[{"name":"Leia Organa"},{"name":"Han Solo"}],"next":null}`,
	})

	people, err := FetchAll[PersonRecord](context.Background(), src, "http://x/people/")
	require.NoError(t, err)
	require.Len(t, people, 3)
	assert.Equal(t, "Han Solo", people[2].Name)
}

func TestFetchAll_PageFailureKeepsPartialResults(t *testing.T) {
	src := newMapSource(map[string]string{
		"http://x/planets/": `{"results":[{"name":"Tatooine"}],"next":"http://x/planets/?page=2"}`,
	})
	src.fail["http://x/planets/?page=2"] = errors.New("connection reset")

	planets, err := FetchAll[PlanetRecord](context.Background(), src, "http://x/planets/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.Len(t, planets, 1)
	assert.Equal(t, "Tatooine", planets[0].Name)
}

func TestFetchAll_StopsOnLoop(t *testing.T) {
	src := newMapSource(map[string]string{
		"http://x/films/": `{"results":[{"title":"A New Hope"}],"next":"http://x/films/"}`,
	})

	films, err := FetchAll[FilmRecord](context.Background(), src, "http://x/films/")
	require.Error(t, err)
	assert.Len(t, films, 1)
	assert.Equal(t, 1, src.calls["http://x/films/"])
}

func TestRecords_TolerateLooseTypes(t *testing.T) {
	src := newMapSource(map[string]string{
		"http://x/films/1/":  `{"title":"A New Hope","episode_id":"4","release_date":"1977-05-25"}`,
		"http://x/people/1/": `{"name":"Luke Skywalker","height":172,"mass":"77","homeworld":null}`,
	})

	film, err := FetchRecord[FilmRecord](context.Background(), src, "http://x/films/1/")
	require.NoError(t, err)
	assert.Equal(t, 4, int(film.EpisodeID))

	person, err := FetchRecord[PersonRecord](context.Background(), src, "http://x/people/1/")
	require.NoError(t, err)
	assert.Equal(t, "172", person.Height.String())
	assert.Equal(t, "", person.Homeworld.String())
}

func TestFetchNaturalKey(t *testing.T) {
	src := newMapSource(map[string]string{
		"http://x/planets/1/": `{"name":"Tatooine"}`,
		"http://x/films/1/":   `{"title":"A New Hope"}`,
		"http://x/empty/":     `{}`,
	})
	ctx := context.Background()

	key, err := FetchNaturalKey(ctx, src, "http://x/planets/1/")
	require.NoError(t, err)
	assert.Equal(t, "Tatooine", key)

	key, err = FetchNaturalKey(ctx, src, "http://x/films/1/")
	require.NoError(t, err)
	assert.Equal(t, "A New Hope", key)

	_, err = FetchNaturalKey(ctx, src, "http://x/empty/")
	assert.ErrorIs(t, err, ErrNoNaturalKey)

	_, err = FetchNaturalKey(ctx, src, "http://x/missing/")
	var se *StatusError
	assert.True(t, errors.As(err, &se))
}

func TestHTTPSource_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/planets/1/":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"name":"Tatooine"}`))
		default:
			http.Error(w, `{"detail":"Not found"}`, http.StatusNotFound)
		}
	}))
	defer server.Close()

	src := NewHTTPSource(&config.SwapiConfig{BaseURL: server.URL + "/api", TimeoutSeconds: 5}, zap.NewNop())

	body, err := src.Get(context.Background(), server.URL+"/api/planets/1/")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Tatooine"}`, string(body))

	_, err = src.Get(context.Background(), server.URL+"/api/planets/99/")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestFixtureSource(t *testing.T) {
	src, err := ParseFixture([]byte(`
documents:
  "https://swapi.dev/api/planets/":
    next: null
    results:
      - name: Tatooine
        diameter: 10465
        url: "https://swapi.dev/api/planets/1/"
`))
	require.NoError(t, err)
	assert.Equal(t, 1, src.Len())

	planets, err := FetchAll[PlanetRecord](context.Background(), src, "https://swapi.dev/api/planets/")
	require.NoError(t, err)
	require.Len(t, planets, 1)
	assert.Equal(t, "10465", planets[0].Diameter.String())

	_, err = src.Get(context.Background(), "https://swapi.dev/api/planets/2/")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCachedSource_ServesRepeatFetchesFromCache(t *testing.T) {
	inner := newMapSource(map[string]string{"http://x/planets/1/": `{"name":"Tatooine"}`})
	src := NewCachedSource(inner, NewMemoryCache(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		key, err := FetchNaturalKey(ctx, src, "http://x/planets/1/")
		require.NoError(t, err)
		assert.Equal(t, "Tatooine", key)
	}

	assert.Equal(t, 1, inner.calls["http://x/planets/1/"])
	hits, misses := src.Stats()
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, misses)
}

func TestCachedSource_DoesNotCacheFailures(t *testing.T) {
	inner := newMapSource(map[string]string{})
	src := NewCachedSource(inner, NewMemoryCache(), zap.NewNop())

	_, err := src.Get(context.Background(), "http://x/planets/9/")
	require.Error(t, err)
	_, err = src.Get(context.Background(), "http://x/planets/9/")
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls["http://x/planets/9/"])
}

func TestRedisCache_KeysAreScopedToTheRun(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	first := NewRedisCache(client, time.Hour, "run-a")
	second := NewRedisCache(client, time.Hour, "run-b")

	assert.Equal(t, "holocron:swapi:run-a:http://x/planets/1/", first.key("http://x/planets/1/"))
	assert.NotEqual(t, first.key("http://x/planets/1/"), second.key("http://x/planets/1/"))
}
