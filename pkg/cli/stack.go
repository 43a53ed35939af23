package cli

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/graphql"
	"github.com/holocron-dev/holocron/pkg/handlers"
	"github.com/holocron-dev/holocron/pkg/logging"
	"github.com/holocron-dev/holocron/pkg/metrics"
	"github.com/holocron-dev/holocron/pkg/middleware"
	"github.com/holocron-dev/holocron/pkg/repositories"
	"github.com/holocron-dev/holocron/pkg/services"
)

// store is the set of repositories every service is built from.
type store struct {
	planets repositories.PlanetRepository
	films   repositories.FilmRepository
	people  repositories.PersonRepository
	species repositories.SpeciesRepository
	tx      database.TxFunc
}

func postgresStore() store {
	return store{
		planets: repositories.NewPlanetRepository(),
		films:   repositories.NewFilmRepository(),
		people:  repositories.NewPersonRepository(),
		species: repositories.NewSpeciesRepository(),
		tx:      database.WithTx,
	}
}

// stack holds the services the transports call into.
type stack struct {
	people  services.PersonService
	films   services.FilmService
	planets services.PlanetService
	species services.SpeciesService
	stats   services.StatsService
}

func newStack(s store, logger *zap.Logger) *stack {
	return &stack{
		people:  services.NewPersonService(s.people, s.planets, s.films, s.species, logger),
		films:   services.NewFilmService(s.films, s.planets, s.people, s.species, s.tx, logger),
		planets: services.NewPlanetService(s.planets, s.people, s.films, s.tx, logger),
		species: services.NewSpeciesService(s.species, s.people, s.films, s.planets, logger),
		stats:   services.NewStatsService(s.people, s.films, s.planets, s.species),
	}
}

// connect opens the pool, waiting for a database that is still starting.
func connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*database.DB, error) {
	connStr := cfg.Database.ConnectionString()
	logger.Info("Connecting to database",
		zap.String("database", logging.SanitizeConnectionString(connStr)))

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// scopes holds the per-request store setup. REST handlers run on one
// connection; GraphQL resolvers run concurrently and share the pool.
type scopes struct {
	rest    handlers.ScopeMiddleware
	graphql handlers.ScopeMiddleware
}

func postgresScopes(db *database.DB, logger *zap.Logger) scopes {
	return scopes{
		rest:    database.WithScope(db, logger),
		graphql: database.WithPoolScope(db),
	}
}

// newHandler mounts every route and wraps the mux in request metrics and
// logging. m and db may be nil.
func newHandler(
	cfg *config.Config,
	s *stack,
	sc scopes,
	db handlers.Pinger,
	m *metrics.Metrics,
	logger *zap.Logger,
) (http.Handler, error) {
	schema := graphql.NewSchema(graphql.NewResolver(s.people, s.films, s.planets, s.species, s.stats, cfg.Pagination.MaxPageSize))

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)
	handlers.NewStarWarsHandler(s.people, s.films, s.planets, s.species, s.stats, cfg, logger).
		RegisterRoutes(mux, sc.rest)
	handlers.NewGraphQLHandler(schema, logger).RegisterRoutes(mux, cfg.APIPrefix, sc.graphql)

	var handler http.Handler = mux
	if m != nil {
		if cfg.Metrics.Enabled {
			mux.Handle("GET "+cfg.Metrics.Path, m.Handler())
		}
		handler = middleware.RequestMetrics(m)(handler)
	}
	return middleware.RequestLogger(logger)(handler), nil
}
