package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-converter/internal/converter"
	"media-converter/internal/logging"
	"media-converter/internal/metrics"
)

// Default timeout for journal operations
const defaultTimeout = 5 * time.Second

// Journal appends conversion attempts to a SQLite database. Every attempt
// made through one Journal shares a run ID.
type Journal struct {
	db    *sql.DB
	path  string
	runID string
}

// Open opens or creates the journal database at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	logging.Debug("History database path: %s", path)

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	// One writer; conversions are sequential.
	db.SetMaxOpenConns(1)

	j := &Journal{
		db:    db,
		path:  path,
		runID: uuid.NewString(),
	}

	if err := j.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close history database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return j, nil
}

func (j *Journal) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL DEFAULT '',
		kind TEXT NOT NULL,
		format TEXT NOT NULL,
		success INTEGER NOT NULL,
		message TEXT NOT NULL,
		source_digest TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_conversions_run_id ON conversions(run_id);
	CREATE INDEX IF NOT EXISTS idx_conversions_input_path ON conversions(input_path);
	`

	_, err := j.db.ExecContext(ctx, schema)
	return err
}

// RunID returns the identifier shared by every entry this Journal writes.
func (j *Journal) RunID() string {
	return j.runID
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends a conversion attempt.
func (j *Journal) Record(ctx context.Context, a converter.Attempt) (err error) {
	start := time.Now()
	defer func() { recordQuery("record", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO conversions (run_id, input_path, output_path, kind, format, success, message, source_digest, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		j.runID,
		a.InputPath,
		a.Result.OutputPath,
		string(a.Kind),
		a.Format,
		a.Result.Success,
		a.Result.Message,
		a.SourceDigest,
		a.Duration.Milliseconds(),
		a.Started.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record conversion: %w", err)
	}
	return nil
}

// recordQuery records journal query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.HistoryQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.HistoryQueryDuration.WithLabelValues(operation).Observe(duration)
}
