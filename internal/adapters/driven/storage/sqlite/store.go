// Package sqlite provides the persistent AssessmentStore backed by
// SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/posture-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/posture-cli/internal/core/domain"
	"github.com/custodia-labs/posture-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.AssessmentStore = (*Store)(nil)

// Store is a SQLite-based implementation of driven.AssessmentStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.posture/data/posture.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".posture", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "posture.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveAssessment stores a new assessment.
func (s *Store) SaveAssessment(ctx context.Context, a *domain.Assessment) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, company_id, name, run_status, run_progress,
			run_started_at, run_completed_at, run_error,
			maturity_score, controls_covered, controls_partial, controls_gap, total_controls,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.CompanyID, a.Name, string(a.RunStatus), a.RunProgress,
		nullTime(a.RunStartedAt), nullTime(a.RunCompletedAt), a.RunError,
		a.MaturityScore, a.ControlsCovered, a.ControlsPartial, a.ControlsGap, a.TotalControls,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving assessment: %w", err)
	}
	return nil
}

// GetAssessment retrieves an assessment by ID.
func (s *Store) GetAssessment(ctx context.Context, id string) (*domain.Assessment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, company_id, name, run_status, run_progress,
			run_started_at, run_completed_at, run_error,
			maturity_score, controls_covered, controls_partial, controls_gap, total_controls,
			created_at, updated_at
		FROM assessments WHERE id = ?
	`, id)
	return scanAssessment(row)
}

// UpdateAssessment stores updated assessment fields.
func (s *Store) UpdateAssessment(ctx context.Context, a *domain.Assessment) error {
	a.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE assessments SET
			company_id = ?, name = ?, run_status = ?, run_progress = ?,
			run_started_at = ?, run_completed_at = ?, run_error = ?,
			maturity_score = ?, controls_covered = ?, controls_partial = ?,
			controls_gap = ?, total_controls = ?, updated_at = ?
		WHERE id = ?
	`, a.CompanyID, a.Name, string(a.RunStatus), a.RunProgress,
		nullTime(a.RunStartedAt), nullTime(a.RunCompletedAt), a.RunError,
		a.MaturityScore, a.ControlsCovered, a.ControlsPartial,
		a.ControlsGap, a.TotalControls, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("updating assessment: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListAssessments returns all assessments, newest first.
func (s *Store) ListAssessments(ctx context.Context) ([]domain.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, company_id, name, run_status, run_progress,
			run_started_at, run_completed_at, run_error,
			maturity_score, controls_covered, controls_partial, controls_gap, total_controls,
			created_at, updated_at
		FROM assessments ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing assessments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SaveSafeguards stores the safeguards for an assessment, preserving
// their slice order as the catalog order.
func (s *Store) SaveSafeguards(ctx context.Context, safeguards []domain.Safeguard) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for i, sg := range safeguards {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO safeguards (id, assessment_id, catalog_id, name, description, score, status, manual_override, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sg.ID, sg.AssessmentID, sg.CatalogID, sg.Name, sg.Description,
			sg.Score, string(sg.Status), boolToInt(sg.ManualOverride), i)
		if err != nil {
			return fmt.Errorf("saving safeguard %s: %w", sg.CatalogID, err)
		}
	}
	return tx.Commit()
}

// GetSafeguardsByAssessment returns an assessment's safeguards in
// catalog order.
func (s *Store) GetSafeguardsByAssessment(ctx context.Context, assessmentID string) ([]domain.Safeguard, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, assessment_id, catalog_id, name, description, score, status, manual_override
		FROM safeguards WHERE assessment_id = ? ORDER BY position
	`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("listing safeguards: %w", err)
	}
	defer rows.Close()

	var out []domain.Safeguard
	for rows.Next() {
		var sg domain.Safeguard
		var status string
		var override int
		if err := rows.Scan(&sg.ID, &sg.AssessmentID, &sg.CatalogID, &sg.Name,
			&sg.Description, &sg.Score, &status, &override); err != nil {
			return nil, fmt.Errorf("scanning safeguard: %w", err)
		}
		sg.Status = domain.SafeguardStatus(status)
		sg.ManualOverride = override != 0
		out = append(out, sg)
	}
	return out, rows.Err()
}

// UpdateSafeguard stores updated safeguard fields.
func (s *Store) UpdateSafeguard(ctx context.Context, sg *domain.Safeguard) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE safeguards SET score = ?, status = ?, manual_override = ? WHERE id = ?
	`, sg.Score, string(sg.Status), boolToInt(sg.ManualOverride), sg.ID)
	if err != nil {
		return fmt.Errorf("updating safeguard: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SaveCriteria stores criteria, preserving their slice order.
func (s *Store) SaveCriteria(ctx context.Context, criteria []domain.Criterion) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	for i, c := range criteria {
		citation, err := marshalCitation(c.Citation)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO criteria (id, safeguard_id, text, status, confidence, citation, reasoning, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, c.SafeguardID, c.Text, string(c.Status), c.Confidence, citation, c.Reasoning, i)
		if err != nil {
			return fmt.Errorf("saving criterion: %w", err)
		}
	}
	return tx.Commit()
}

// GetCriteriaBySafeguard returns a safeguard's criteria in order.
func (s *Store) GetCriteriaBySafeguard(ctx context.Context, safeguardID string) ([]domain.Criterion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, safeguard_id, text, status, confidence, citation, reasoning
		FROM criteria WHERE safeguard_id = ? ORDER BY position
	`, safeguardID)
	if err != nil {
		return nil, fmt.Errorf("listing criteria: %w", err)
	}
	defer rows.Close()

	var out []domain.Criterion
	for rows.Next() {
		var c domain.Criterion
		var status string
		var citation sql.NullString
		if err := rows.Scan(&c.ID, &c.SafeguardID, &c.Text, &status, &c.Confidence, &citation, &c.Reasoning); err != nil {
			return nil, fmt.Errorf("scanning criterion: %w", err)
		}
		c.Status = domain.CriterionStatus(status)
		if citation.Valid && citation.String != "" {
			var cit domain.Citation
			if err := json.Unmarshal([]byte(citation.String), &cit); err != nil {
				return nil, fmt.Errorf("unmarshaling citation: %w", err)
			}
			c.Citation = &cit
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateCriterion stores updated criterion fields.
func (s *Store) UpdateCriterion(ctx context.Context, c *domain.Criterion) error {
	citation, err := marshalCitation(c.Citation)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE criteria SET status = ?, confidence = ?, citation = ?, reasoning = ? WHERE id = ?
	`, string(c.Status), c.Confidence, citation, c.Reasoning, c.ID)
	if err != nil {
		return fmt.Errorf("updating criterion: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetFindingsByAssessment returns an assessment's findings.
func (s *Store) GetFindingsByAssessment(ctx context.Context, assessmentID string) ([]domain.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, assessment_id, catalog_id, title, description, severity, status, created_at
		FROM findings WHERE assessment_id = ? ORDER BY created_at
	`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("listing findings: %w", err)
	}
	defer rows.Close()

	var out []domain.Finding
	for rows.Next() {
		var f domain.Finding
		var severity, status string
		if err := rows.Scan(&f.ID, &f.AssessmentID, &f.CatalogID, &f.Title,
			&f.Description, &severity, &status, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		f.Severity = domain.Severity(severity)
		f.Status = domain.FindingStatus(status)
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateFinding stores a new finding. The (assessment, catalog id)
// uniqueness constraint backs finding deduplication.
func (s *Store) CreateFinding(ctx context.Context, f *domain.Finding) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (id, assessment_id, catalog_id, title, description, severity, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.AssessmentID, f.CatalogID, f.Title, f.Description,
		string(f.Severity), string(f.Status), f.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving finding: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row scanner) (*domain.Assessment, error) {
	var a domain.Assessment
	var status string
	var startedAt, completedAt sql.NullTime
	err := row.Scan(&a.ID, &a.CompanyID, &a.Name, &status, &a.RunProgress,
		&startedAt, &completedAt, &a.RunError,
		&a.MaturityScore, &a.ControlsCovered, &a.ControlsPartial, &a.ControlsGap, &a.TotalControls,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning assessment: %w", err)
	}
	a.RunStatus = domain.RunStatus(status)
	if startedAt.Valid {
		a.RunStartedAt = startedAt.Time
	}
	if completedAt.Valid {
		a.RunCompletedAt = completedAt.Time
	}
	return &a, nil
}

func marshalCitation(c *domain.Citation) (any, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshalling citation: %w", err)
	}
	return string(data), nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
