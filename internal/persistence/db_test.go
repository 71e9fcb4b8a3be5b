package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/sim"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTraceRoundtrip(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()
	cfg.Seed = 1234

	runID, err := db.BeginRun(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	records := []sim.Record{
		{
			Step:   1,
			Events: []string{"WAR: Aldoria attacks Veridia over resources"},
			Stats: sim.GlobalStats{
				LivingNations:    20,
				GlobalGDP:        42e12,
				GlobalPopulation: 900e6,
				ClimateIndex:     0.3,
			},
		},
		{
			Step: 2,
			Stats: sim.GlobalStats{
				LivingNations:      19,
				GlobalGDP:          41e12,
				GlobalPopulation:   880e6,
				ClimateIndex:       0.32,
				NuclearDetonations: 1,
			},
		},
	}
	for _, rec := range records {
		require.NoError(t, db.SaveRecord(runID, rec))
	}

	loaded, err := db.LoadRecords(runID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, records[0].Step, loaded[0].Step)
	assert.Equal(t, records[0].Events, loaded[0].Events)
	assert.Equal(t, records[0].Stats, loaded[0].Stats)
	assert.Equal(t, records[1].Stats.NuclearDetonations, loaded[1].Stats.NuclearDetonations)
}

func TestDuplicateStepRejected(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.BeginRun(config.Default())
	require.NoError(t, err)

	rec := sim.Record{Step: 1}
	require.NoError(t, db.SaveRecord(runID, rec))
	assert.Error(t, db.SaveRecord(runID, rec), "one record per step per run")
}

func TestLoadRunConfig(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()
	cfg.Seed = 99
	cfg.NumNations = 7

	runID, err := db.BeginRun(cfg)
	require.NoError(t, err)

	loaded, err := db.LoadRunConfig(runID)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = db.LoadRunConfig("no-such-run")
	assert.Error(t, err)
}

func TestLoadRecordsEmptyRun(t *testing.T) {
	db := openTestDB(t)
	runID, err := db.BeginRun(config.Default())
	require.NoError(t, err)

	records, err := db.LoadRecords(runID)
	require.NoError(t, err)
	assert.Empty(t, records)
}
