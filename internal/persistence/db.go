// Package persistence stores simulation run traces in SQLite. A run is
// identified by a UUID and carries its seed and full configuration, so
// any trace can be replayed or compared against a re-run later.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/SurfitWasTaken/GeoSim/internal/config"
	"github.com/SurfitWasTaken/GeoSim/internal/sim"
)

// DB wraps a SQLite connection for trace persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		run_id TEXT NOT NULL REFERENCES runs(id),
		step INTEGER NOT NULL,
		living_nations INTEGER NOT NULL,
		global_gdp REAL NOT NULL,
		global_population REAL NOT NULL,
		climate_index REAL NOT NULL,
		nuclear_detonations INTEGER NOT NULL,
		record_json TEXT NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and returns its id.
func (db *DB) BeginRun(cfg config.Config) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	runID := uuid.NewString()
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, seed, config_json, created_at) VALUES (?, ?, ?, ?)",
		runID, cfg.Seed, string(cfgJSON), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	slog.Info("run started", "run_id", runID, "seed", cfg.Seed)
	return runID, nil
}

// SaveRecord appends one step record to a run's trace. The aggregate
// columns are denormalized for querying; the full record lives in the
// JSON blob.
func (db *DB) SaveRecord(runID string, rec sim.Record) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO records
		(run_id, step, living_nations, global_gdp, global_population,
		 climate_index, nuclear_detonations, record_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Step, rec.Stats.LivingNations, rec.Stats.GlobalGDP,
		rec.Stats.GlobalPopulation, rec.Stats.ClimateIndex,
		rec.Stats.NuclearDetonations, string(recJSON),
	)
	if err != nil {
		return fmt.Errorf("insert record step %d: %w", rec.Step, err)
	}
	return nil
}

// LoadRecords returns a run's full trace in step order.
func (db *DB) LoadRecords(runID string) ([]sim.Record, error) {
	var blobs []string
	err := db.conn.Select(&blobs,
		"SELECT record_json FROM records WHERE run_id = ? ORDER BY step",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}

	records := make([]sim.Record, 0, len(blobs))
	for _, blob := range blobs {
		var rec sim.Record
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadRunConfig returns the configuration a run was started with.
func (db *DB) LoadRunConfig(runID string) (config.Config, error) {
	var cfgJSON string
	if err := db.conn.Get(&cfgJSON, "SELECT config_json FROM runs WHERE id = ?", runID); err != nil {
		return config.Config{}, fmt.Errorf("select run %s: %w", runID, err)
	}

	var cfg config.Config
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return config.Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
