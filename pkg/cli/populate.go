package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/metrics"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/services"
	"github.com/holocron-dev/holocron/pkg/swapi"
)

type populateOptions struct {
	force   bool
	fixture string
	cache   bool
	json    bool
}

func newPopulateCommand(a *app) *cobra.Command {
	opts := &populateOptions{}

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Import planets, films, characters and species from the source",
		Long: `Populate fetches every planet, film, person and species from the
configured SWAPI-compatible source and links them. It does nothing when
characters already exist unless --force is given, in which case all stored
entities are deleted first. The whole run is one transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.populate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.force, "force", false, "delete existing data and import again")
	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "read source documents from a YAML fixture instead of HTTP")
	cmd.Flags().BoolVar(&opts.cache, "cache", false, "reuse fetched documents within the run (Redis when configured)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")

	return cmd
}

func (a *app) populate(ctx context.Context, out io.Writer, opts *populateOptions) error {
	cfg, logger := a.cfg, a.logger

	if cfg.Database.MigrateOnStart {
		if err := migrate(cfg, logger); err != nil {
			return err
		}
	}

	source, closeSource, err := newSource(ctx, cfg, opts, logger)
	if err != nil {
		return err
	}
	defer closeSource()

	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	scope, err := db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer scope.Close()
	ctx = database.SetScope(ctx, scope)

	m, err := metrics.NewImportMetrics()
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	s := postgresStore()
	importer := services.NewImportService(source, &cfg.Swapi, s.planets, s.films, s.people, s.species, s.tx, m, logger)

	report, err := importer.Populate(ctx, services.PopulateOptions{Force: opts.force})
	pushImportMetrics(ctx, &cfg.Metrics, m, logger)
	if err != nil {
		return fmt.Errorf("populate: %w", err)
	}
	if cached, ok := source.(*swapi.CachedSource); ok {
		hits, misses := cached.Stats()
		report.Cache = &models.CacheStats{Hits: hits, Misses: misses}
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return printReport(out, report)
}

// newSource picks the document source for a populate run. The returned
// function releases anything the source holds open.
func newSource(ctx context.Context, cfg *config.Config, opts *populateOptions, logger *zap.Logger) (swapi.Source, func(), error) {
	noop := func() {}

	var source swapi.Source
	if opts.fixture != "" {
		fixture, err := swapi.LoadFixture(opts.fixture)
		if err != nil {
			return nil, noop, fmt.Errorf("load fixture: %w", err)
		}
		logger.Info("Using fixture source",
			zap.String("path", opts.fixture),
			zap.Int("documents", fixture.Len()))
		source = fixture
	} else {
		source = swapi.NewHTTPSource(&cfg.Swapi, logger)
	}

	if !opts.cache && !cfg.Swapi.CacheEnabled {
		return source, noop, nil
	}

	client, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, noop, err
	}
	if client == nil {
		logger.Info("Caching source documents in memory")
		return swapi.NewCachedSource(source, swapi.NewMemoryCache(), logger), noop, nil
	}

	run := uuid.NewString()
	logger.Info("Caching source documents in Redis",
		zap.String("addr", cfg.Redis.Addr()),
		zap.String("run", run),
		zap.Duration("ttl", cfg.Swapi.CacheTTL()))
	cache := swapi.NewRedisCache(client, cfg.Swapi.CacheTTL(), run)
	release := func() {
		removed, err := cache.Clear(context.Background())
		if err != nil {
			logger.Warn("Failed to clear cached source documents", zap.String("run", run), zap.Error(err))
		} else {
			logger.Debug("Cleared cached source documents", zap.String("run", run), zap.Int("keys", removed))
		}
		_ = client.Close()
	}
	return swapi.NewCachedSource(source, cache, logger), release, nil
}

// pushImportMetrics sends the run's counters to the configured Pushgateway.
// A failed push is logged and never fails the run.
func pushImportMetrics(ctx context.Context, cfg *config.MetricsConfig, m *metrics.ImportMetrics, logger *zap.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}
	job := cfg.PushJob
	if job == "" {
		job = metrics.DefaultPushJob
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := m.Push(ctx, cfg.PushgatewayURL, job, nil); err != nil {
		logger.Warn("Failed to push import metrics",
			zap.String("url", cfg.PushgatewayURL),
			zap.Error(err))
		return
	}
	logger.Info("Pushed import metrics",
		zap.String("url", cfg.PushgatewayURL),
		zap.String("job", job))
}

// printReport renders a populate report as an aligned table.
func printReport(out io.Writer, report *models.PopulateReport) error {
	if report.AlreadyPopulated {
		_, err := fmt.Fprintln(out, "Database already populated; use --force to import again.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tFETCHED\tCREATED\tEXISTING")
	for _, row := range []struct {
		name   string
		counts models.ImportCounts
	}{
		{"planets", report.Planets},
		{"films", report.Films},
		{"people", report.People},
		{"species", report.Species},
	} {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", row.name, row.counts.Fetched, row.counts.Created, row.counts.Existing)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nlinks added: %d, skipped: %d\n", report.LinksAdded, report.LinksSkipped)
	if report.Cache != nil {
		fmt.Fprintf(out, "cache hits: %d, misses: %d\n", report.Cache.Hits, report.Cache.Misses)
	}
	if n := len(report.FetchErrors); n > 0 {
		fmt.Fprintf(out, "fetch errors (%d):\n", n)
		for _, e := range report.FetchErrors {
			fmt.Fprintf(out, "  %s\n", e)
		}
	}
	_, err := fmt.Fprintf(out, "finished in %s\n", report.Duration.Round(time.Millisecond))
	return err
}
