package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/kyleking/lazyrope/internal/record"
)

// DefaultFile is the archive database name inside the data directory.
const DefaultFile = "lazyrope.db"

// Archive mirrors every accepted record of a run into SQLite, keyed by a
// session id, alongside the CSV session file.
type Archive struct {
	db        *sql.DB
	log       *zap.Logger
	sessionID string
}

// Open opens (or creates) the database at path, applies the schema and
// registers a new session pointing at csvPath.
func Open(ctx context.Context, path, csvPath string, log *zap.Logger) (*Archive, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	a := &Archive{db: db, log: log, sessionID: uuid.NewString()}
	if err := a.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migration: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, csv_path) VALUES (?, ?, ?)`,
		a.sessionID, time.Now().UTC(), csvPath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("insert session: %w", err)
	}

	log.Info("archive session opened", zap.String("session", a.sessionID), zap.String("path", path))
	return a, nil
}

func (a *Archive) migrate(ctx context.Context) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS sessions (
    id         TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    csv_path   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id     TEXT NOT NULL REFERENCES sessions(id),
    mode           INTEGER NOT NULL,
    duration       INTEGER NOT NULL,
    avg_heart_rate INTEGER NOT NULL,
    max_heart_rate INTEGER NOT NULL,
    frequency      REAL NOT NULL,
    jump_count     INTEGER NOT NULL,
    recorded_at    DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_session_mode ON records(session_id, mode);
`
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create archive tables: %w", err)
	}
	return nil
}

// SessionID returns the id rows of this run are stored under.
func (a *Archive) SessionID() string {
	return a.sessionID
}

// Name identifies the sink in status messages.
func (a *Archive) Name() string {
	return "archive"
}

// Append stores r under the current session.
func (a *Archive) Append(r record.Record) error {
	_, err := a.db.Exec(
		`INSERT INTO records (session_id, mode, duration, avg_heart_rate, max_heart_rate, frequency, jump_count, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.sessionID, int(r.Mode), r.Duration, r.AvgHeartRate, r.MaxHeartRate, r.Frequency, r.JumpCount, r.RecordedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	a.log.Debug("record archived", zap.Int("mode", int(r.Mode)), zap.Int("jumps", r.JumpCount))
	return nil
}

// Count returns how many records the current session holds per mode.
func (a *Archive) Count(ctx context.Context) (map[record.Mode]int, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT mode, COUNT(*) FROM records WHERE session_id = ? GROUP BY mode`, a.sessionID)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[record.Mode]int)
	for rows.Next() {
		var mode, n int
		if err := rows.Scan(&mode, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[record.Mode(mode)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return counts, nil
}

// Close shuts down the database connection.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
