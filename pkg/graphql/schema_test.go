package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/99designs/gqlgen/client"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
	"github.com/holocron-dev/holocron/pkg/testhelpers"
)

type gqlError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path"`
	Extensions map[string]any `json:"extensions"`
}

type gqlResult struct {
	Data   map[string]any
	Errors []gqlError
}

type gqlFixture struct {
	t      *testing.T
	store  *testhelpers.MemStore
	server *handler.Server
	client *client.Client

	tatooine *models.Planet
	anh      *models.Film
	luke     *models.Person
}

func newGQLFixture(t *testing.T) *gqlFixture {
	t.Helper()
	store := testhelpers.NewMemStore()
	logger := zaptest.NewLogger(t)

	resolver := NewResolver(
		services.NewPersonService(store.People(), store.Planets(), store.Films(), store.Species(), logger),
		services.NewFilmService(store.Films(), store.Planets(), store.People(), store.Species(), store.WithTx, logger),
		services.NewPlanetService(store.Planets(), store.People(), store.Films(), store.WithTx, logger),
		services.NewSpeciesService(store.Species(), store.People(), store.Films(), store.Planets(), logger),
		services.NewStatsService(store.People(), store.Films(), store.Planets(), store.Species()),
		2,
	)
	srv := handler.New(NewSchema(resolver))
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.Use(extension.Introspection{})

	f := &gqlFixture{t: t, store: store, server: srv, client: client.New(srv)}
	f.seed()
	return f
}

// seed stores Tatooine, A New Hope linked to it, Luke linked to both, plus
// Leia and Obi-Wan without links.
func (f *gqlFixture) seed() {
	ctx := context.Background()
	t := f.t

	f.tatooine = &models.Planet{Name: "Tatooine", Climate: "arid", Population: "200000"}
	require.NoError(t, f.store.Planets().Create(ctx, f.tatooine))

	f.anh = &models.Film{
		Title:       "A New Hope",
		EpisodeID:   4,
		Director:    "George Lucas",
		ReleaseDate: time.Date(1977, 5, 25, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.store.Films().Create(ctx, f.anh))
	_, err := f.store.Films().AddPlanet(ctx, f.anh.ID, f.tatooine.ID)
	require.NoError(t, err)

	f.luke = &models.Person{Name: "Luke Skywalker", Gender: models.GenderMale, HomeworldID: &f.tatooine.ID}
	require.NoError(t, f.store.People().Create(ctx, f.luke))
	_, err = f.store.People().AddFilm(ctx, f.luke.ID, f.anh.ID)
	require.NoError(t, err)

	require.NoError(t, f.store.People().Create(ctx, &models.Person{Name: "Leia Organa"}))
	require.NoError(t, f.store.People().Create(ctx, &models.Person{Name: "Obi-Wan Kenobi"}))
}

func (f *gqlFixture) query(query string, vars map[string]any, opts ...client.Option) gqlResult {
	f.t.Helper()
	for name, v := range vars {
		opts = append(opts, client.Var(name, v))
	}
	resp, err := f.client.RawPost(query, opts...)
	require.NoError(f.t, err)

	var out gqlResult
	out.Data, _ = resp.Data.(map[string]any)
	if len(resp.Errors) > 0 {
		require.NoError(f.t, json.Unmarshal(resp.Errors, &out.Errors), string(resp.Errors))
	}
	return out
}

// raw posts body and returns the untouched response.
func (f *gqlFixture) raw(method, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	var req *http.Request
	if method == http.MethodGet {
		req = httptest.NewRequest(method, "/graphql?"+body, nil)
	} else {
		req = httptest.NewRequest(method, "/graphql", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func obj(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	require.True(t, ok, "expected object, got %T", v)
	return m
}

func TestSchema_PersonWithRelations(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`query($id: ID!) {
		person(id: $id) {
			__typename
			id
			name
			gender
			height
			filmCount
			homeworld { name population }
			movies: films { totalCount edges { node { title episodeId releaseDate } } }
		}
	}`, map[string]any{"id": ToGlobalID(TypePerson, f.luke.ID)})
	require.Empty(t, res.Errors)

	person := obj(t, res.Data["person"])
	assert.Equal(t, "Person", person["__typename"])
	assert.Equal(t, ToGlobalID(TypePerson, f.luke.ID), person["id"])
	assert.Equal(t, "Luke Skywalker", person["name"])
	assert.Equal(t, "male", person["gender"])
	assert.Nil(t, person["height"])
	assert.EqualValues(t, 1, person["filmCount"])
	assert.Equal(t, "Tatooine", obj(t, person["homeworld"])["name"])

	movies := obj(t, person["movies"])
	assert.EqualValues(t, 1, movies["totalCount"])
	edges := movies["edges"].([]any)
	require.Len(t, edges, 1)
	node := obj(t, obj(t, edges[0])["node"])
	assert.Equal(t, "A New Hope", node["title"])
	assert.EqualValues(t, 4, node["episodeId"])
	assert.Equal(t, "1977-05-25", node["releaseDate"])
}

func TestSchema_FieldOrderFollowsSelection(t *testing.T) {
	f := newGQLFixture(t)

	rec := f.raw(http.MethodPost, `{"query":"{ planet(id: \"`+f.tatooine.ID.String()+`\") { name id climate } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		`{"data":{"planet":{"name":"Tatooine","id":"`+ToGlobalID(TypePlanet, f.tatooine.ID)+`","climate":"arid"}}}`,
		rec.Body.String())
}

func TestSchema_NodeWithFragments(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`
		query($id: ID!) {
			node(id: $id) {
				__typename
				... on Film { title }
				...personFields
			}
		}
		fragment personFields on Person { name }
	`, map[string]any{"id": ToGlobalID(TypeFilm, f.anh.ID)})
	require.Empty(t, res.Errors)

	node := obj(t, res.Data["node"])
	assert.Equal(t, "Film", node["__typename"])
	assert.Equal(t, "A New Hope", node["title"])
	assert.NotContains(t, node, "name")
}

func TestSchema_NodeRawUUID(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`{ node(id: "`+f.tatooine.ID.String()+`") { __typename id } }`, nil)
	require.Empty(t, res.Errors)
	assert.Equal(t, "Planet", obj(t, res.Data["node"])["__typename"])
}

func TestSchema_LookupMisses(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`query($film: ID!, $missing: ID!) {
		wrongType: person(id: $film) { name }
		unknown: person(id: $missing) { name }
		nothing: node(id: $missing) { id }
	}`, map[string]any{
		"film":    ToGlobalID(TypeFilm, f.anh.ID),
		"missing": uuid.NewString(),
	})
	require.Empty(t, res.Errors)
	assert.Nil(t, res.Data["wrongType"])
	assert.Nil(t, res.Data["unknown"])
	assert.Nil(t, res.Data["nothing"])
}

func TestSchema_MalformedID(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`{ person(id: "garbage") { name } stats { totalPeople } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "invalid id")
	assert.Equal(t, []any{"person"}, res.Errors[0].Path)
	assert.Nil(t, res.Data["person"])
	assert.EqualValues(t, 3, obj(t, res.Data["stats"])["totalPeople"])
}

func TestSchema_AllPeoplePagination(t *testing.T) {
	f := newGQLFixture(t)
	const q = `query($after: String) {
		allPeople(first: 2, after: $after) {
			totalCount
			pageInfo { hasNextPage hasPreviousPage endCursor }
			edges { cursor node { name } }
		}
	}`

	first := obj(t, f.query(q, nil).Data["allPeople"])
	assert.EqualValues(t, 3, first["totalCount"])
	info := obj(t, first["pageInfo"])
	assert.Equal(t, true, info["hasNextPage"])
	assert.Equal(t, false, info["hasPreviousPage"])
	edges := first["edges"].([]any)
	require.Len(t, edges, 2)
	assert.Equal(t, "Leia Organa", obj(t, obj(t, edges[0])["node"])["name"])

	second := obj(t, f.query(q, map[string]any{"after": info["endCursor"]}).Data["allPeople"])
	edges = second["edges"].([]any)
	require.Len(t, edges, 1)
	assert.Equal(t, "Obi-Wan Kenobi", obj(t, obj(t, edges[0])["node"])["name"])
	assert.Equal(t, false, obj(t, second["pageInfo"])["hasNextPage"])
}

func TestSchema_AllPeopleNameFilter(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`{ allPeople(name: "LUKE") { totalCount edges { node { name } } } }`, nil)
	require.Empty(t, res.Errors)
	assert.EqualValues(t, 1, obj(t, res.Data["allPeople"])["totalCount"])
}

func TestSchema_FirstOverLimitNullsData(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`{ allPeople(first: 5) { totalCount } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0].Message, "exceeds the first limit")
	assert.Nil(t, res.Data)
}

func TestSchema_SkipAndInclude(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`query($brief: Boolean!) {
		planet(id: "`+f.tatooine.ID.String()+`") {
			name
			climate @skip(if: $brief)
			residentCount @include(if: $brief)
		}
	}`, map[string]any{"brief": true})
	require.Empty(t, res.Errors)

	planet := obj(t, res.Data["planet"])
	assert.NotContains(t, planet, "climate")
	assert.EqualValues(t, 1, planet["residentCount"])
}

func TestSchema_ListQueries(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`query($luke: String!, $film: String!, $missing: String!) {
		searchPeople(name: "o") { name }
		filmsByCharacter(characterId: $luke) { title }
		charactersInFilm(filmId: $film) { name homeworld { name } }
		unknownFilms: filmsByCharacter(characterId: $missing) { title }
		stats { totalPeople totalFilms totalPlanets totalSpecies }
	}`, map[string]any{
		"luke":    ToGlobalID(TypePerson, f.luke.ID),
		"film":    f.anh.ID.String(),
		"missing": uuid.NewString(),
	})
	require.Empty(t, res.Errors)

	assert.Len(t, res.Data["searchPeople"], 2)
	assert.Len(t, res.Data["filmsByCharacter"], 1)
	characters := res.Data["charactersInFilm"].([]any)
	require.Len(t, characters, 1)
	assert.Equal(t, "Tatooine", obj(t, obj(t, characters[0])["homeworld"])["name"])
	assert.Empty(t, res.Data["unknownFilms"])
	assert.Equal(t,
		map[string]any{"totalPeople": 3.0, "totalFilms": 1.0, "totalPlanets": 1.0, "totalSpecies": 0.0},
		res.Data["stats"])
}

func TestSchema_ValidationErrors(t *testing.T) {
	f := newGQLFixture(t)

	for name, body := range map[string]string{
		"unknown field":     `{"query":"{ person(id: \"x\") { lightsaber } }"}`,
		"missing variable":  `{"query":"query($id: ID!) { person(id: $id) { name } }"}`,
		"ambiguous":         `{"query":"query A { stats { totalFilms } } query B { stats { totalPlanets } }"}`,
		"unknown operation": `{"query":"query A { stats { totalFilms } }","operationName":"C"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := f.raw(http.MethodPost, body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp struct {
				Data   any               `json:"data"`
				Errors []json.RawMessage `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Nil(t, resp.Data)
			assert.NotEmpty(t, resp.Errors)
		})
	}
}

func TestSchema_OperationSelection(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`query A { stats { totalFilms } } query B { stats { totalPlanets } }`, nil, client.Operation("B"))
	require.Empty(t, res.Errors)
	assert.Contains(t, obj(t, res.Data["stats"]), "totalPlanets")
	assert.NotContains(t, obj(t, res.Data["stats"]), "totalFilms")
}

func TestSchema_Introspection(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`{
		__schema { queryType { name } mutationType { name } }
		__type(name: "Person") { kind interfaces { name } fields { name } }
	}`, nil)
	require.Empty(t, res.Errors)

	schema := obj(t, res.Data["__schema"])
	assert.Equal(t, "Query", obj(t, schema["queryType"])["name"])
	assert.Equal(t, "Mutation", obj(t, schema["mutationType"])["name"])

	person := obj(t, res.Data["__type"])
	assert.Equal(t, "OBJECT", person["kind"])
	assert.Equal(t, []any{map[string]any{"name": "Node"}}, person["interfaces"])
	assert.Contains(t, person["fields"], map[string]any{"name": "homeworld"})
}

func TestSchema_CreatePersonUnknownHomeworld(t *testing.T) {
	f := newGQLFixture(t)
	before, err := f.store.People().Count(context.Background(), models.ListFilter{})
	require.NoError(t, err)

	for _, homeworld := range []string{uuid.NewString(), "nonsense"} {
		res := f.query(`mutation($hw: String) {
			createPerson(name: "Rey", homeworldId: $hw) { success errors person { id } }
		}`, map[string]any{"hw": homeworld})
		require.Empty(t, res.Errors)

		payload := obj(t, res.Data["createPerson"])
		assert.Equal(t, false, payload["success"])
		assert.Equal(t, []any{"Planet not found"}, payload["errors"])
		assert.Nil(t, payload["person"])
	}

	after, err := f.store.People().Count(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSchema_CreatePerson(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`mutation($hw: String) {
		createPerson(name: "Owen Lars", gender: "male", homeworldId: $hw) {
			success
			errors
			person { name gender homeworld { name } filmCount }
		}
	}`, map[string]any{"hw": ToGlobalID(TypePlanet, f.tatooine.ID)})
	require.Empty(t, res.Errors)

	payload := obj(t, res.Data["createPerson"])
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, []any{}, payload["errors"])
	person := obj(t, payload["person"])
	assert.Equal(t, "Owen Lars", person["name"])
	assert.Equal(t, "Tatooine", obj(t, person["homeworld"])["name"])
	assert.EqualValues(t, 0, person["filmCount"])
}

func TestSchema_CreatePlanetDuplicate(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`mutation { createPlanet(name: "Tatooine") { success errors planet { name } } }`, nil)
	require.Empty(t, res.Errors)

	payload := obj(t, res.Data["createPlanet"])
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, []any{`planet with name "Tatooine" already exists`}, payload["errors"])
}

func TestSchema_CreateFilmWithLinks(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`mutation($planets: [String], $characters: [String]) {
		createFilm(
			title: "The Empire Strikes Back"
			episodeId: 5
			openingCrawl: "It is a dark time for the Rebellion."
			director: "Irvin Kershner"
			producer: "Gary Kurtz"
			releaseDate: "1980-05-17"
			planetIds: $planets
			characterIds: $characters
		) {
			success
			errors
			film { title characterCount planetCount characters { edges { node { name } } } }
		}
	}`, map[string]any{
		"planets":    []any{ToGlobalID(TypePlanet, f.tatooine.ID), nil},
		"characters": []any{f.luke.ID.String()},
	})
	require.Empty(t, res.Errors)

	payload := obj(t, res.Data["createFilm"])
	require.Equal(t, true, payload["success"], payload["errors"])
	film := obj(t, payload["film"])
	assert.EqualValues(t, 1, film["characterCount"])
	assert.EqualValues(t, 1, film["planetCount"])
}

func TestSchema_CreateFilmMalformedIDs(t *testing.T) {
	f := newGQLFixture(t)

	res := f.query(`mutation {
		createFilm(
			title: "Rogue One", episodeId: 8, openingCrawl: "", director: "", producer: "",
			releaseDate: "2016-12-16", planetIds: ["scarif"], characterIds: ["jyn"]
		) { success errors film { id } }
	}`, nil)
	require.Empty(t, res.Errors)

	payload := obj(t, res.Data["createFilm"])
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, []any{"Planet not found: scarif", "Character not found: jyn"}, payload["errors"])

	count, err := f.store.Films().Count(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSchema_OverlongFieldsFailInBand(t *testing.T) {
	f := newGQLFixture(t)

	tests := []struct {
		name     string
		mutation string
		value    string
		field    string
		want     string
	}{
		{
			name:     "createPerson height",
			mutation: `mutation($v: String) { createPerson(name: "Chewbacca", height: $v) { success errors person { id } } }`,
			value:    "22800000000",
			field:    "createPerson",
			want:     "Height must be at most 10 characters",
		},
		{
			name:     "createPlanet diameter",
			mutation: `mutation($v: String) { createPlanet(name: "Kashyyyk", diameter: $v) { success errors planet { id } } }`,
			value:    strings.Repeat("9", 21),
			field:    "createPlanet",
			want:     "Diameter must be at most 20 characters",
		},
		{
			name: "createFilm title",
			mutation: `mutation($v: String!) { createFilm(title: $v, episodeId: 9, openingCrawl: "", director: "",
				producer: "", releaseDate: "2019-12-20") { success errors film { id } } }`,
			value: strings.Repeat("x", 101),
			field: "createFilm",
			want:  "Title must be at most 100 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.query(tt.mutation, map[string]any{"v": tt.value})
			require.Empty(t, res.Errors)

			payload := obj(t, res.Data[tt.field])
			assert.Equal(t, false, payload["success"])
			assert.Equal(t, []any{tt.want}, payload["errors"])
		})
	}
}

func TestSchema_GetRefusesMutation(t *testing.T) {
	f := newGQLFixture(t)

	q := url.Values{}
	q.Set("query", `mutation { createPlanet(name: "Hoth") { success } }`)
	rec := f.raw(http.MethodGet, q.Encode())
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)

	count, err := f.store.Planets().Count(context.Background(), models.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSchema_ResolverErrorOnNullableField(t *testing.T) {
	f := newGQLFixture(t)
	f.store.Errors["planets.GetByID"] = assert.AnError

	res := f.query(`{ planet(id: "`+f.tatooine.ID.String()+`") { name } stats { totalPlanets } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []any{"planet"}, res.Errors[0].Path)
	assert.Nil(t, res.Data["planet"])
	assert.NotNil(t, res.Data["stats"])
}

func TestSchema_ResolverErrorOnNonNullFieldReportedOnce(t *testing.T) {
	f := newGQLFixture(t)
	f.store.Errors["people.Count"] = assert.AnError

	res := f.query(`{ stats { totalPeople } }`, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, []any{"stats"}, res.Errors[0].Path)
	assert.Contains(t, res.Errors[0].Message, "failed to count people")
	assert.Nil(t, res.Data)
}

func TestSDL(t *testing.T) {
	assert.Contains(t, SDL(), "type Query")
	assert.NotNil(t, parsedSchema.Types["PersonConnection"])
	assert.Same(t, parsedSchema, NewSchema(&Resolver{}).Schema())
}
