// Package storage persists the provisioning-run history.
package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/netinit-io/netinit/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrRunNotFound = errors.New("provision run not found")

// RunStore records provisioning runs in a SQLite database.
type RunStore struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewRunStore opens (and if needed creates) the run database under
// dataDir.
func NewRunStore(dataDir string) (*RunStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, "netinit.db")
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &RunStore{
		db:   db,
		path: dbPath,
	}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *RunStore) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	_, err = s.db.Exec(string(schema))
	return err
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// RecordRun persists one provisioning run. A missing id is generated.
func (s *RunStore) RecordRun(run *model.ProvisionRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = generateID("run")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO provision_runs
			(id, source, started_at, completed_at, links_total,
			 links_configured, reboot_required, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.StartedAt, run.CompletedAt, run.LinksTotal,
		run.LinksConfigured, run.RebootRequired, run.Status, run.ErrorMessage)
	if err != nil {
		return fmt.Errorf("inserting provision run: %w", err)
	}
	return nil
}

// LastRun returns the most recent provisioning run.
func (s *RunStore) LastRun() (*model.ProvisionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT id, source, started_at, completed_at, links_total,
		       links_configured, reboot_required, status, error_message
		FROM provision_runs
		ORDER BY started_at DESC
		LIMIT 1
	`)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A non-positive
// limit returns everything.
func (s *RunStore) ListRuns(limit int) ([]model.ProvisionRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, source, started_at, completed_at, links_total,
		       links_configured, reboot_required, status, error_message
		FROM provision_runs
		ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying provision runs: %w", err)
	}
	defer rows.Close()

	var runs []model.ProvisionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning provision run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.ProvisionRun, error) {
	var run model.ProvisionRun
	var errorMessage sql.NullString
	err := row.Scan(&run.ID, &run.Source, &run.StartedAt, &run.CompletedAt,
		&run.LinksTotal, &run.LinksConfigured, &run.RebootRequired,
		&run.Status, &errorMessage)
	if err != nil {
		return nil, err
	}
	run.ErrorMessage = errorMessage.String
	return &run, nil
}

// generateID produces a prefixed, time-ordered id.
func generateID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return prefix + "-" + uuid.New().String()
	}
	return prefix + "-" + id.String()
}
