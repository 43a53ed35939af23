package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/graphql"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

func newGraphQLMux(t *testing.T) (*http.ServeMux, *testhelpers.MemStore) {
	t.Helper()
	store := testhelpers.NewMemStore()
	logger := zaptest.NewLogger(t)

	resolver := graphql.NewResolver(
		services.NewPersonService(store.People(), store.Planets(), store.Films(), store.Species(), logger),
		services.NewFilmService(store.Films(), store.Planets(), store.People(), store.Species(), store.WithTx, logger),
		services.NewPlanetService(store.Planets(), store.People(), store.Films(), store.WithTx, logger),
		services.NewSpeciesService(store.Species(), store.People(), store.Films(), store.Planets(), logger),
		services.NewStatsService(store.People(), store.Films(), store.Planets(), store.Species()),
		100,
	)

	mux := http.NewServeMux()
	NewGraphQLHandler(graphql.NewSchema(resolver), logger).RegisterRoutes(mux, "/api/starwars", passthrough)
	return mux, store
}

func serve(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGraphQL_Post(t *testing.T) {
	mux, store := newGraphQLMux(t)
	require.NoError(t, store.Planets().Create(context.Background(), &models.Planet{Name: "Hoth"}))

	body := `{"query":"query($n: Int) { allPlanets(first: $n) { totalCount edges { node { name } } } }","variables":{"n":1}}`
	rec := serve(mux, httptest.NewRequest(http.MethodPost, "/api/starwars/graphql/", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"data":{"allPlanets":{"totalCount":1,"edges":[{"node":{"name":"Hoth"}}]}}}`,
		rec.Body.String())
}

func TestGraphQL_PostMutation(t *testing.T) {
	mux, store := newGraphQLMux(t)

	body := `{"query":"mutation { createPlanet(name: \"Dagobah\", climate: \"murky\") { success errors planet { name climate } } }"}`
	rec := serve(mux, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"data":{"createPlanet":{"success":true,"errors":[],"planet":{"name":"Dagobah","climate":"murky"}}}}`,
		rec.Body.String())

	_, err := store.Planets().GetByName(context.Background(), "Dagobah")
	assert.NoError(t, err)
}

func TestGraphQL_Get(t *testing.T) {
	mux, _ := newGraphQLMux(t)

	q := url.Values{}
	q.Set("query", `query($name: String) { searchPeople(name: $name) { name } }`)
	q.Set("variables", `{"name":"luke"}`)
	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"searchPeople":[]}}`, rec.Body.String())
}

func TestGraphQL_GetRefusesMutation(t *testing.T) {
	mux, store := newGraphQLMux(t)

	q := url.Values{}
	q.Set("query", `mutation { createPlanet(name: "Hoth") { success } }`)
	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/graphql?"+q.Encode(), nil))
	require.Equal(t, http.StatusNotAcceptable, rec.Code)

	resp := decodeGraphQL(t, rec)
	assert.Nil(t, resp.Data)
	assert.Len(t, resp.Errors, 1)

	count, err := store.Planets().Count(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGraphQL_BadRequests(t *testing.T) {
	mux, _ := newGraphQLMux(t)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"malformed body", httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{")), http.StatusBadRequest},
		{"empty query", httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"  "}`)), http.StatusUnprocessableEntity},
		{"malformed variables", httptest.NewRequest(http.MethodGet, "/graphql?query=%7Bstats%7BtotalFilms%7D%7D&variables=nope", nil), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.req)
			assert.Equal(t, tt.status, rec.Code)

			resp := decodeGraphQL(t, rec)
			assert.Nil(t, resp.Data)
			assert.NotEmpty(t, resp.Errors)
		})
	}
}

func TestGraphQL_ErrorCodes(t *testing.T) {
	mux, store := newGraphQLMux(t)
	store.Errors["planets.Count"] = assert.AnError

	body := `{"query":"{ person(id: \"garbage\") { name } stats { totalPlanets } }"}`
	rec := serve(mux, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeGraphQL(t, rec)
	codes := map[string]any{}
	for _, e := range resp.Errors {
		codes[e.Path[0].(string)] = e.Extensions["code"]
	}
	assert.Equal(t, map[string]any{"person": "BAD_USER_INPUT", "stats": "INTERNAL_ERROR"}, codes)
}

func TestGraphQL_BodyLimit(t *testing.T) {
	mux, _ := newGraphQLMux(t)

	body := `{"query":"{ stats { totalFilms } }","variables":{"pad":"` + strings.Repeat("x", maxGraphQLBody) + `"}}`
	rec := serve(mux, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))

	resp := decodeGraphQL(t, rec)
	assert.Nil(t, resp.Data)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "could not read request body")
}

type graphQLResponse struct {
	Data   any `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Path       []any          `json:"path"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func decodeGraphQL(t *testing.T, rec *httptest.ResponseRecorder) graphQLResponse {
	t.Helper()
	var resp graphQLResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestGraphQL_Schema(t *testing.T) {
	mux, _ := newGraphQLMux(t)

	rec := serve(mux, httptest.NewRequest(http.MethodGet, "/api/starwars/graphql/schema", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, graphql.SDL(), rec.Body.String())
}
