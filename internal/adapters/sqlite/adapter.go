// Package sqlite provides a SQLite-backed implementation of the run repository port.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elianzuoni/ml-project2/internal/core/domain"
	"github.com/elianzuoni/ml-project2/internal/core/ports"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

const defaultListLimit = 50

// Adapter implements the run repository port for SQLite
type Adapter struct {
	db *sql.DB
}

// compile-time interface assertion
var _ ports.RunRepository = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// An in-memory database lives as long as its connection.
	if strings.Contains(storagePath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveRun inserts the run or replaces every column of an existing one.
func (a *Adapter) SaveRun(ctx context.Context, run domain.AnalysisRun) error {
	request, err := json.Marshal(run.Request)
	if err != nil {
		return fmt.Errorf("failed to encode run request: %w", err)
	}
	params, err := json.Marshal(run.Request.Params)
	if err != nil {
		return fmt.Errorf("failed to encode run params: %w", err)
	}
	train, err := json.Marshal(nonNil(run.TrainComposers))
	if err != nil {
		return fmt.Errorf("failed to encode train composers: %w", err)
	}
	test, err := json.Marshal(nonNil(run.TestComposers))
	if err != nil {
		return fmt.Errorf("failed to encode test composers: %w", err)
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO runs (
			id, kind, selector, method, request, params, train_composers, test_composers,
			train_sentences, test_sentences, skipped_lines, status, error, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind=excluded.kind,
			selector=excluded.selector,
			method=excluded.method,
			request=excluded.request,
			params=excluded.params,
			train_composers=excluded.train_composers,
			test_composers=excluded.test_composers,
			train_sentences=excluded.train_sentences,
			test_sentences=excluded.test_sentences,
			skipped_lines=excluded.skipped_lines,
			status=excluded.status,
			error=excluded.error;
	`
	if _, err := a.db.ExecContext(
		ctx,
		query,
		run.ID,
		string(run.Request.Kind),
		string(run.Request.Selector),
		run.Request.Method,
		string(request),
		string(params),
		string(train),
		string(test),
		run.TrainSentences,
		run.TestSentences,
		run.SkippedLines,
		string(run.Status),
		run.Error,
		createdAt.UTC(),
	); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, request, train_composers, test_composers,
	train_sentences, test_sentences, skipped_lines, status, IFNULL(error, ''), created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (domain.AnalysisRun, error) {
	var (
		run     domain.AnalysisRun
		request string
		train   string
		test    string
		status  string
	)
	if err := row.Scan(
		&run.ID,
		&request,
		&train,
		&test,
		&run.TrainSentences,
		&run.TestSentences,
		&run.SkippedLines,
		&status,
		&run.Error,
		&run.CreatedAt,
	); err != nil {
		return domain.AnalysisRun{}, err
	}
	run.Status = domain.RunStatus(status)
	if err := json.Unmarshal([]byte(request), &run.Request); err != nil {
		return domain.AnalysisRun{}, fmt.Errorf("failed to decode request of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(train), &run.TrainComposers); err != nil {
		return domain.AnalysisRun{}, fmt.Errorf("failed to decode train composers of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(test), &run.TestComposers); err != nil {
		return domain.AnalysisRun{}, fmt.Errorf("failed to decode test composers of run %s: %w", run.ID, err)
	}
	return run, nil
}

func (a *Adapter) GetRun(ctx context.Context, id string) (domain.AnalysisRun, error) {
	row := a.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AnalysisRun{}, domain.ErrNotFound
		}
		return domain.AnalysisRun{}, fmt.Errorf("failed to load run: %w", err)
	}
	return run, nil
}

// ListRuns returns the newest runs first.
func (a *Adapter) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := a.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.AnalysisRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

func (a *Adapter) UpdateRunStatus(ctx context.Context, id string, status domain.RunStatus, errMsg string) error {
	res, err := a.db.ExecContext(ctx, "UPDATE runs SET status = ?, error = ? WHERE id = ?", string(status), errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveProjection replaces the stored projection of a run.
func (a *Adapter) SaveProjection(ctx context.Context, runID string, p domain.Projection) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections (run_id, method) VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET method=excluded.method;
	`, runID, p.Method); err != nil {
		return fmt.Errorf("failed to save projection of run %s: %w", runID, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM projection_points WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("failed to clear old points: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO projection_points (run_id, position, token, mode, x, y)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, pt := range p.Points {
		if _, err := stmt.ExecContext(ctx, runID, i, pt.Token, string(pt.Mode), pt.X, pt.Y); err != nil {
			return fmt.Errorf("failed to save point %q: %w", pt.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}
	return nil
}

// GetProjection returns the points of a run in vocabulary order.
func (a *Adapter) GetProjection(ctx context.Context, runID string) (domain.Projection, error) {
	var p domain.Projection
	row := a.db.QueryRowContext(ctx, "SELECT method FROM projections WHERE run_id = ?", runID)
	if err := row.Scan(&p.Method); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Projection{}, domain.ErrNotFound
		}
		return domain.Projection{}, fmt.Errorf("failed to load projection: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT token, mode, x, y FROM projection_points
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return domain.Projection{}, fmt.Errorf("failed to load projection points: %w", err)
	}
	defer rows.Close()

	p.Points = []domain.Point{}
	for rows.Next() {
		var (
			pt   domain.Point
			mode string
		)
		if err := rows.Scan(&pt.Token, &mode, &pt.X, &pt.Y); err != nil {
			return domain.Projection{}, fmt.Errorf("failed to scan projection point: %w", err)
		}
		pt.Mode = domain.KeyMode(mode)
		p.Points = append(p.Points, pt)
	}
	if err := rows.Err(); err != nil {
		return domain.Projection{}, fmt.Errorf("failed to iterate projection points: %w", err)
	}
	return p, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		selector TEXT NOT NULL,
		method TEXT NOT NULL,
		request TEXT NOT NULL,
		params TEXT NOT NULL,
		train_composers TEXT NOT NULL DEFAULT '[]',
		test_composers TEXT NOT NULL DEFAULT '[]',
		train_sentences INTEGER NOT NULL DEFAULT 0,
		test_sentences INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS projections (
		run_id TEXT PRIMARY KEY,
		method TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS projection_points (
		run_id TEXT,
		position INTEGER,
		token TEXT NOT NULL,
		mode TEXT NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY(run_id) REFERENCES projections(run_id) ON DELETE CASCADE
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	// Columns added after the first schema; older databases get them here.
	for _, column := range []string{
		"skipped_lines INTEGER NOT NULL DEFAULT 0",
		"error TEXT",
	} {
		if _, err := a.db.Exec("ALTER TABLE runs ADD COLUMN " + column); err != nil {
			if !isDuplicateColumnError(err) {
				return err
			}
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists"))
}

func nonNil(c []domain.Composer) []domain.Composer {
	if c == nil {
		return []domain.Composer{}
	}
	return c
}
