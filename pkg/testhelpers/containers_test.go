//go:build integration

package testhelpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestDB_MigrationsApplied(t *testing.T) {
	testDB := GetTestDB(t)

	ctx := context.Background()

	var tableCount int
	err := testDB.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('planets', 'films', 'people', 'species',
		                     'film_planets', 'person_films', 'species_people', 'species_films')`).
		Scan(&tableCount)
	require.NoError(t, err)
	assert.Equal(t, 8, tableCount)
}

func TestTestDB_Truncate(t *testing.T) {
	testDB := GetTestDB(t)
	ctx := testDB.Context(t)

	_, err := testDB.DB.Exec(ctx, `INSERT INTO planets (id, name) VALUES (gen_random_uuid(), 'Hoth')`)
	require.NoError(t, err)

	testDB.Truncate(t)

	var n int
	require.NoError(t, testDB.DB.QueryRow(ctx, `SELECT COUNT(*) FROM planets`).Scan(&n))
	assert.Zero(t, n)
}
