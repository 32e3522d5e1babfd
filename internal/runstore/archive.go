package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/GoSim-25-26J-441/nngs-runner/pkg/params"

	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    experiment TEXT NOT NULL,
    runner TEXT NOT NULL,
    algorithm TEXT NOT NULL,
    status TEXT NOT NULL,
    error TEXT,
    user_info TEXT NOT NULL,
    best_fitness REAL,
    iterations INTEGER,
    stop_reason TEXT,
    checkpoints TEXT NOT NULL,
    created_at_unix_ms INTEGER NOT NULL,
    started_at_unix_ms INTEGER,
    ended_at_unix_ms INTEGER
);
CREATE INDEX IF NOT EXISTS idx_runs_experiment ON runs(experiment);
`

// SQLiteArchive stores terminal run records in a SQLite database
type SQLiteArchive struct {
	db *sql.DB
}

// OpenArchive opens (creating if needed) the archive at path.
// ":memory:" gives a private in-memory database.
func OpenArchive(path string) (*SQLiteArchive, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create archive schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

// Save upserts rec
func (a *SQLiteArchive) Save(ctx context.Context, rec *RunRecord) error {
	userInfo, err := json.Marshal(userInfoJSON(rec.UserInfo))
	if err != nil {
		return fmt.Errorf("encode user_info: %w", err)
	}
	checkpoints, err := json.Marshal(rec.Checkpoints)
	if err != nil {
		return fmt.Errorf("encode checkpoints: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, experiment, runner, algorithm, status, error, user_info,
			best_fitness, iterations, stop_reason, checkpoints,
			created_at_unix_ms, started_at_unix_ms, ended_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			best_fitness = excluded.best_fitness,
			iterations = excluded.iterations,
			stop_reason = excluded.stop_reason,
			checkpoints = excluded.checkpoints,
			started_at_unix_ms = excluded.started_at_unix_ms,
			ended_at_unix_ms = excluded.ended_at_unix_ms`,
		rec.ID, rec.Experiment, rec.Runner, rec.Algorithm, string(rec.Status), rec.Error, string(userInfo),
		rec.BestFitness, rec.Iterations, rec.StopReason, string(checkpoints),
		rec.CreatedAtUnixMs, rec.StartedAtUnixMs, rec.EndedAtUnixMs,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

// List returns archived runs of experiment in creation order. An empty
// experiment lists everything.
func (a *SQLiteArchive) List(ctx context.Context, experiment string) ([]*RunRecord, error) {
	query := `SELECT id, experiment, runner, algorithm, status, error, user_info,
		best_fitness, iterations, stop_reason, checkpoints,
		created_at_unix_ms, started_at_unix_ms, ended_at_unix_ms FROM runs`
	var args []any
	if experiment != "" {
		query += ` WHERE experiment = ?`
		args = append(args, experiment)
	}
	query += ` ORDER BY created_at_unix_ms, rowid`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*RunRecord
	for rows.Next() {
		var (
			rec                   RunRecord
			status                string
			errMsg, stopReason    sql.NullString
			userInfo, checkpoints string
			started, ended        sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Experiment, &rec.Runner, &rec.Algorithm, &status, &errMsg, &userInfo,
			&rec.BestFitness, &rec.Iterations, &stopReason, &checkpoints,
			&rec.CreatedAtUnixMs, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.Status = Status(status)
		rec.Error = errMsg.String
		rec.StopReason = stopReason.String
		rec.StartedAtUnixMs = started.Int64
		rec.EndedAtUnixMs = ended.Int64

		pairs, err := decodeUserInfo(userInfo)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", rec.ID, err)
		}
		rec.UserInfo = pairs
		if err := json.Unmarshal([]byte(checkpoints), &rec.Checkpoints); err != nil {
			return nil, fmt.Errorf("run %s: decode checkpoints: %w", rec.ID, err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

// Close releases the database handle
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}

func decodeUserInfo(raw string) ([]params.Pair, error) {
	var pairs []params.Pair
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("decode user_info: %w", err)
	}
	return pairs, nil
}
