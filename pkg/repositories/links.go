package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/database"
)

// joinTable describes a many-to-many table. The owner side gets its edited
// timestamp bumped whenever the link set changes.
type joinTable struct {
	name       string
	ownerCol   string
	otherCol   string
	ownerTable string
	otherTable string
}

var (
	filmPlanets   = joinTable{"film_planets", "film_id", "planet_id", "films", "planets"}
	personFilms   = joinTable{"person_films", "person_id", "film_id", "people", "films"}
	speciesPeople = joinTable{"species_people", "species_id", "person_id", "species", "people"}
	speciesFilms  = joinTable{"species_films", "species_id", "film_id", "species", "films"}
)

// addLink stores the pair unless present. It returns true when a new pair was
// stored and apperrors.ErrNotFound when either endpoint is missing. The
// endpoint check happens inside the statement so a failed link never aborts
// an enclosing transaction.
func addLink(ctx context.Context, jt joinTable, ownerID, otherID uuid.UUID) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, apperrors.ErrNoScope
	}

	query := fmt.Sprintf(`
		WITH ins AS (
			INSERT INTO %[1]s (%[2]s, %[3]s)
			SELECT o.id, x.id FROM %[4]s o, %[5]s x WHERE o.id = $1 AND x.id = $2
			ON CONFLICT DO NOTHING
			RETURNING %[2]s
		), touched AS (
			UPDATE %[4]s SET edited = $3 WHERE id IN (SELECT %[2]s FROM ins)
			RETURNING id
		)
		SELECT
			EXISTS (SELECT 1 FROM %[4]s WHERE id = $1) AND EXISTS (SELECT 1 FROM %[5]s WHERE id = $2),
			EXISTS (SELECT 1 FROM touched)`,
		jt.name, jt.ownerCol, jt.otherCol, jt.ownerTable, jt.otherTable)

	var endpointsExist, added bool
	if err := scope.Conn.QueryRow(ctx, query, ownerID, otherID, time.Now()).Scan(&endpointsExist, &added); err != nil {
		if isForeignKeyViolation(err) {
			return false, apperrors.ErrNotFound
		}
		return false, fmt.Errorf("failed to link %s: %w", jt.name, err)
	}
	if !endpointsExist {
		return false, apperrors.ErrNotFound
	}
	return added, nil
}

// removeLink deletes the pair and reports whether it existed.
func removeLink(ctx context.Context, jt joinTable, ownerID, otherID uuid.UUID) (bool, error) {
	scope, ok := database.GetScope(ctx)
	if !ok {
		return false, apperrors.ErrNoScope
	}

	query := fmt.Sprintf(`
		WITH del AS (
			DELETE FROM %[1]s WHERE %[2]s = $1 AND %[3]s = $2
			RETURNING %[2]s
		)
		UPDATE %[4]s SET edited = $3 WHERE id IN (SELECT %[2]s FROM del)`,
		jt.name, jt.ownerCol, jt.otherCol, jt.ownerTable)

	result, err := scope.Conn.Exec(ctx, query, ownerID, otherID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to unlink %s: %w", jt.name, err)
	}
	return result.RowsAffected() > 0, nil
}
