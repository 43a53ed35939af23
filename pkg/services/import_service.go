package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/config"
	"github.com/holocron-dev/holocron/pkg/database"
	"github.com/holocron-dev/holocron/pkg/models"
	"github.com/holocron-dev/holocron/pkg/repositories"
	"github.com/holocron-dev/holocron/pkg/swapi"
)

// Link relation names used in logs and metrics.
const (
	RelationPersonFilms   = "person_films"
	RelationFilmPlanets   = "film_planets"
	RelationSpeciesPeople = "species_people"
	RelationSpeciesFilms  = "species_films"
)

// Populate outcomes reported to the ImportRecorder.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// PopulateOptions controls a populate run.
type PopulateOptions struct {
	// Force clears every entity before importing, even when people exist.
	Force bool
}

// ImportRecorder observes a populate run. Implementations must be safe to
// call from the goroutine running Populate.
type ImportRecorder interface {
	EntityCreated(kind string)
	LinkAdded(relation string)
	LinkSkipped(relation string)
	FetchError(resource string)
	PopulateFinished(outcome string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) EntityCreated(string)                   {}
func (nopRecorder) LinkAdded(string)                       {}
func (nopRecorder) LinkSkipped(string)                     {}
func (nopRecorder) FetchError(string)                      {}
func (nopRecorder) PopulateFinished(string, time.Duration) {}

// ImportService populates the store from the external source.
type ImportService interface {
	// Populate imports planets, films, people and species, then links them,
	// all inside one transaction. Per-page fetch failures and per-link
	// failures are reported, not returned. Any other error rolls the run back.
	Populate(ctx context.Context, opts PopulateOptions) (*models.PopulateReport, error)
}

type importService struct {
	source      swapi.Source
	cfg         *config.SwapiConfig
	planetRepo  repositories.PlanetRepository
	filmRepo    repositories.FilmRepository
	personRepo  repositories.PersonRepository
	speciesRepo repositories.SpeciesRepository
	tx          database.TxFunc
	recorder    ImportRecorder
	logger      *zap.Logger
}

// NewImportService creates a new ImportService. recorder may be nil.
func NewImportService(
	source swapi.Source,
	cfg *config.SwapiConfig,
	planetRepo repositories.PlanetRepository,
	filmRepo repositories.FilmRepository,
	personRepo repositories.PersonRepository,
	speciesRepo repositories.SpeciesRepository,
	tx database.TxFunc,
	recorder ImportRecorder,
	logger *zap.Logger,
) ImportService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &importService{
		source:      source,
		cfg:         cfg,
		planetRepo:  planetRepo,
		filmRepo:    filmRepo,
		personRepo:  personRepo,
		speciesRepo: speciesRepo,
		tx:          tx,
		recorder:    recorder,
		logger:      logger.Named("import"),
	}
}

var _ ImportService = (*importService)(nil)

// importRun carries the state of one Populate call.
type importRun struct {
	report   *models.PopulateReport
	recorder ImportRecorder
	logger   *zap.Logger
}

func (r *importRun) fetchFailed(resource string, err error) {
	r.report.FetchErrors = append(r.report.FetchErrors, fmt.Sprintf("%s: %v", resource, err))
	r.recorder.FetchError(resource)
	r.logger.Warn("Fetch failed, continuing with partial results",
		zap.String("resource", resource),
		zap.Error(err))
}

func (r *importRun) counted(counts *models.ImportCounts, kind string, created bool) {
	if created {
		counts.Created++
		r.recorder.EntityCreated(kind)
		return
	}
	counts.Existing++
}

func (r *importRun) linked(relation string) {
	r.report.LinksAdded++
	r.recorder.LinkAdded(relation)
}

func (r *importRun) skipped(relation string, n int, reason string, err error) {
	if n == 0 {
		return
	}
	r.report.LinksSkipped += n
	for i := 0; i < n; i++ {
		r.recorder.LinkSkipped(relation)
	}
	r.logger.Debug("Link skipped",
		zap.String("relation", relation),
		zap.Int("count", n),
		zap.String("reason", reason),
		zap.Error(err))
}

func (s *importService) Populate(ctx context.Context, opts PopulateOptions) (*models.PopulateReport, error) {
	start := time.Now()
	report := &models.PopulateReport{Forced: opts.Force}

	existing, err := s.personRepo.Count(ctx, models.ListFilter{})
	if err != nil {
		s.recorder.PopulateFinished(OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("failed to check existing data: %w", err)
	}
	if existing > 0 && !opts.Force {
		report.AlreadyPopulated = true
		report.Duration = time.Since(start)
		s.recorder.PopulateFinished(OutcomeSkipped, report.Duration)
		s.logger.Info("Database already populated, skipping import",
			zap.Int("people", existing))
		return report, nil
	}

	run := &importRun{report: report, recorder: s.recorder, logger: s.logger}

	s.logger.Info("Starting import",
		zap.String("base_url", s.cfg.BaseURL),
		zap.Bool("force", opts.Force))

	err = s.tx(ctx, func(ctx context.Context) error {
		if opts.Force {
			if err := s.clear(ctx); err != nil {
				return err
			}
		}
		if err := s.importPlanets(ctx, run); err != nil {
			return err
		}
		if err := s.importFilms(ctx, run); err != nil {
			return err
		}
		if err := s.importPeople(ctx, run); err != nil {
			return err
		}
		if err := s.importSpecies(ctx, run); err != nil {
			return err
		}
		return s.link(ctx, run)
	})

	report.Duration = time.Since(start)
	if err != nil {
		s.recorder.PopulateFinished(OutcomeFailed, report.Duration)
		s.logger.Error("Import failed, rolled back",
			zap.Duration("duration", report.Duration),
			zap.Error(err))
		return nil, fmt.Errorf("populate failed: %w", err)
	}

	s.recorder.PopulateFinished(OutcomeSucceeded, report.Duration)
	s.logger.Info("Import finished",
		zap.Int("planets_created", report.Planets.Created),
		zap.Int("films_created", report.Films.Created),
		zap.Int("people_created", report.People.Created),
		zap.Int("species_created", report.Species.Created),
		zap.Int("links_added", report.LinksAdded),
		zap.Int("links_skipped", report.LinksSkipped),
		zap.Int("fetch_errors", len(report.FetchErrors)),
		zap.Duration("duration", report.Duration))

	return report, nil
}

// clear deletes every entity. Join rows go with their owners.
func (s *importService) clear(ctx context.Context) error {
	steps := []struct {
		kind string
		fn   func(context.Context) (int64, error)
	}{
		{"species", s.speciesRepo.DeleteAll},
		{"people", s.personRepo.DeleteAll},
		{"films", s.filmRepo.DeleteAll},
		{"planets", s.planetRepo.DeleteAll},
	}

	for _, step := range steps {
		n, err := step.fn(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", step.kind, err)
		}
		s.logger.Info("Cleared existing data", zap.String("kind", step.kind), zap.Int64("deleted", n))
	}
	return nil
}

// fetchAll wraps swapi.FetchAll, recording a failed page and keeping the
// partial result. Only cancellation is returned as an error.
func fetchAll[T any](ctx context.Context, s *importService, run *importRun, resource string) ([]T, error) {
	records, err := swapi.FetchAll[T](ctx, s.source, s.cfg.ResourceURL(resource))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		run.fetchFailed(resource, err)
	}
	return records, nil
}

func (s *importService) importPlanets(ctx context.Context, run *importRun) error {
	records, err := fetchAll[swapi.PlanetRecord](ctx, s, run, swapi.ResourcePlanets)
	if err != nil {
		return err
	}
	run.report.Planets.Fetched = len(records)

	for _, rec := range records {
		if rec.Name == "" {
			run.fetchFailed(swapi.ResourcePlanets, fmt.Errorf("%s: %w", rec.URL, swapi.ErrNoNaturalKey))
			continue
		}
		_, created, err := s.planetRepo.GetOrCreate(ctx, &models.Planet{
			Name:           rec.Name,
			RotationPeriod: rec.RotationPeriod.String(),
			OrbitalPeriod:  rec.OrbitalPeriod.String(),
			Diameter:       rec.Diameter.String(),
			Climate:        rec.Climate.String(),
			Gravity:        rec.Gravity.String(),
			Terrain:        rec.Terrain.String(),
			SurfaceWater:   rec.SurfaceWater.String(),
			Population:     rec.Population.String(),
			SwapiURL:       rec.URL,
		})
		if err != nil {
			return fmt.Errorf("failed to store planet %q: %w", rec.Name, err)
		}
		run.counted(&run.report.Planets, "planet", created)
	}
	return nil
}

func (s *importService) importFilms(ctx context.Context, run *importRun) error {
	records, err := fetchAll[swapi.FilmRecord](ctx, s, run, swapi.ResourceFilms)
	if err != nil {
		return err
	}
	run.report.Films.Fetched = len(records)

	for _, rec := range records {
		if rec.Title == "" {
			run.fetchFailed(swapi.ResourceFilms, fmt.Errorf("%s: %w", rec.URL, swapi.ErrNoNaturalKey))
			continue
		}
		released, err := time.Parse(models.DateLayout, strings.TrimSpace(rec.ReleaseDate))
		if err != nil {
			return fmt.Errorf("film %q has invalid release date %q: %w", rec.Title, rec.ReleaseDate, err)
		}
		_, created, err := s.filmRepo.GetOrCreate(ctx, &models.Film{
			Title:        rec.Title,
			EpisodeID:    int(rec.EpisodeID),
			OpeningCrawl: rec.OpeningCrawl,
			Director:     rec.Director,
			Producer:     rec.Producer,
			ReleaseDate:  released,
			SwapiURL:     rec.URL,
		})
		if err != nil {
			return fmt.Errorf("failed to store film %q: %w", rec.Title, err)
		}
		run.counted(&run.report.Films, "film", created)
	}
	return nil
}

func (s *importService) importPeople(ctx context.Context, run *importRun) error {
	records, err := fetchAll[swapi.PersonRecord](ctx, s, run, swapi.ResourcePeople)
	if err != nil {
		return err
	}
	run.report.People.Fetched = len(records)

	for _, rec := range records {
		if rec.Name == "" {
			run.fetchFailed(swapi.ResourcePeople, fmt.Errorf("%s: %w", rec.URL, swapi.ErrNoNaturalKey))
			continue
		}
		homeworld, err := s.resolveHomeworld(ctx, rec.Homeworld.String())
		if err != nil {
			return err
		}

		gender := models.Gender(strings.ToLower(rec.Gender.String()))
		if !gender.IsValid() {
			s.logger.Debug("Unknown gender, leaving unset",
				zap.String("person", rec.Name),
				zap.String("gender", rec.Gender.String()))
			gender = ""
		}

		_, created, err := s.personRepo.GetOrCreate(ctx, &models.Person{
			Name:        rec.Name,
			Height:      rec.Height.String(),
			Mass:        rec.Mass.String(),
			HairColor:   rec.HairColor.String(),
			SkinColor:   rec.SkinColor.String(),
			EyeColor:    rec.EyeColor.String(),
			BirthYear:   rec.BirthYear.String(),
			Gender:      gender,
			HomeworldID: homeworld,
			SwapiURL:    rec.URL,
		})
		if err != nil {
			return fmt.Errorf("failed to store person %q: %w", rec.Name, err)
		}
		run.counted(&run.report.People, "person", created)
	}
	return nil
}

func (s *importService) importSpecies(ctx context.Context, run *importRun) error {
	records, err := fetchAll[swapi.SpeciesRecord](ctx, s, run, swapi.ResourceSpecies)
	if err != nil {
		return err
	}
	run.report.Species.Fetched = len(records)

	for _, rec := range records {
		if rec.Name == "" {
			run.fetchFailed(swapi.ResourceSpecies, fmt.Errorf("%s: %w", rec.URL, swapi.ErrNoNaturalKey))
			continue
		}
		homeworld, err := s.resolveHomeworld(ctx, rec.Homeworld.String())
		if err != nil {
			return err
		}

		_, created, err := s.speciesRepo.GetOrCreate(ctx, &models.Species{
			Name:            rec.Name,
			Classification:  rec.Classification.String(),
			Designation:     rec.Designation.String(),
			AverageHeight:   rec.AverageHeight.String(),
			SkinColors:      rec.SkinColors.String(),
			HairColors:      rec.HairColors.String(),
			EyeColors:       rec.EyeColors.String(),
			AverageLifespan: rec.AverageLifespan.String(),
			Language:        rec.Language.String(),
			HomeworldID:     homeworld,
			SwapiURL:        rec.URL,
		})
		if err != nil {
			return fmt.Errorf("failed to store species %q: %w", rec.Name, err)
		}
		run.counted(&run.report.Species, "species", created)
	}
	return nil
}

// resolveHomeworld follows a homeworld URL to a stored planet. A failed
// fetch or an unknown planet yields nil; only store failures and
// cancellation are errors.
func (s *importService) resolveHomeworld(ctx context.Context, url string) (*uuid.UUID, error) {
	if url == "" {
		return nil, nil
	}

	id, err := s.resolve(ctx, url, s.planetID)
	if err != nil {
		var skip *skipError
		if errors.As(err, &skip) {
			s.logger.Debug("Homeworld unresolved, leaving unset",
				zap.String("url", url),
				zap.Error(skip.err))
			return nil, nil
		}
		return nil, err
	}
	return &id, nil
}

// skipError marks a resolution failure that skips one item.
type skipError struct {
	reason string
	err    error
}

func (e *skipError) Error() string {
	return e.reason + ": " + e.err.Error()
}

func (e *skipError) Unwrap() error {
	return e.err
}

// resolve fetches the record behind url, reads its natural key and looks it
// up locally. Fetch failures and unknown keys come back as *skipError.
func (s *importService) resolve(
	ctx context.Context,
	url string,
	lookup func(ctx context.Context, key string) (uuid.UUID, error),
) (uuid.UUID, error) {
	key, err := swapi.FetchNaturalKey(ctx, s.source, url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return uuid.Nil, ctxErr
		}
		return uuid.Nil, &skipError{reason: "fetch failed", err: err}
	}

	id, err := lookup(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return uuid.Nil, &skipError{reason: "not stored", err: fmt.Errorf("%q: %w", key, err)}
		}
		return uuid.Nil, fmt.Errorf("failed to look up %q: %w", key, err)
	}
	return id, nil
}

// linkSet describes one many-to-many relation as seen from its owner records.
type linkSet struct {
	relation string
	owners   []linkOwner
	owner    func(ctx context.Context, key string) (uuid.UUID, error)
	target   func(ctx context.Context, key string) (uuid.UUID, error)
	add      func(ctx context.Context, ownerID, targetID uuid.UUID) (bool, error)
}

type linkOwner struct {
	key     string
	targets []string
}

func (s *importService) link(ctx context.Context, run *importRun) error {
	people, err := fetchAll[swapi.PersonRecord](ctx, s, run, swapi.ResourcePeople)
	if err != nil {
		return err
	}
	films, err := fetchAll[swapi.FilmRecord](ctx, s, run, swapi.ResourceFilms)
	if err != nil {
		return err
	}
	species, err := fetchAll[swapi.SpeciesRecord](ctx, s, run, swapi.ResourceSpecies)
	if err != nil {
		return err
	}

	personFilms := make([]linkOwner, 0, len(people))
	for _, p := range people {
		personFilms = append(personFilms, linkOwner{key: p.Name, targets: p.Films})
	}
	filmPlanets := make([]linkOwner, 0, len(films))
	for _, f := range films {
		filmPlanets = append(filmPlanets, linkOwner{key: f.Title, targets: f.Planets})
	}
	speciesPeople := make([]linkOwner, 0, len(species))
	speciesFilms := make([]linkOwner, 0, len(species))
	for _, sp := range species {
		speciesPeople = append(speciesPeople, linkOwner{key: sp.Name, targets: sp.People})
		speciesFilms = append(speciesFilms, linkOwner{key: sp.Name, targets: sp.Films})
	}

	sets := []linkSet{
		{
			relation: RelationPersonFilms,
			owners:   personFilms,
			owner:    s.personID,
			target:   s.filmID,
			add:      s.personRepo.AddFilm,
		},
		{
			relation: RelationFilmPlanets,
			owners:   filmPlanets,
			owner:    s.filmID,
			target:   s.planetID,
			add:      s.filmRepo.AddPlanet,
		},
		{
			relation: RelationSpeciesPeople,
			owners:   speciesPeople,
			owner:    s.speciesID,
			target:   s.personID,
			add:      s.speciesRepo.AddPerson,
		},
		{
			relation: RelationSpeciesFilms,
			owners:   speciesFilms,
			owner:    s.speciesID,
			target:   s.filmID,
			add:      s.speciesRepo.AddFilm,
		},
	}

	for _, set := range sets {
		if err := s.linkAll(ctx, run, set); err != nil {
			return err
		}
	}
	return nil
}

func (s *importService) linkAll(ctx context.Context, run *importRun, set linkSet) error {
	for _, o := range set.owners {
		if o.key == "" {
			run.skipped(set.relation, len(o.targets), "owner has no natural key", swapi.ErrNoNaturalKey)
			continue
		}
		ownerID, err := set.owner(ctx, o.key)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				run.skipped(set.relation, len(o.targets), "owner not stored", err)
				continue
			}
			return fmt.Errorf("failed to look up %q: %w", o.key, err)
		}

		for _, url := range o.targets {
			targetID, err := s.resolve(ctx, url, set.target)
			if err != nil {
				var skip *skipError
				if errors.As(err, &skip) {
					run.skipped(set.relation, 1, skip.reason, skip.err)
					continue
				}
				return err
			}

			added, err := set.add(ctx, ownerID, targetID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					run.skipped(set.relation, 1, "endpoint vanished", err)
					continue
				}
				return fmt.Errorf("failed to add %s link: %w", set.relation, err)
			}
			if added {
				run.linked(set.relation)
			}
		}
	}
	return nil
}

func (s *importService) personID(ctx context.Context, name string) (uuid.UUID, error) {
	p, err := s.personRepo.GetByName(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (s *importService) filmID(ctx context.Context, title string) (uuid.UUID, error) {
	f, err := s.filmRepo.GetByTitle(ctx, title)
	if err != nil {
		return uuid.Nil, err
	}
	return f.ID, nil
}

func (s *importService) planetID(ctx context.Context, name string) (uuid.UUID, error) {
	p, err := s.planetRepo.GetByName(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

func (s *importService) speciesID(ctx context.Context, name string) (uuid.UUID, error) {
	sp, err := s.speciesRepo.GetByName(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	return sp.ID, nil
}
