package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pvmonitor-cloud/internal/performance/application"
)

// SnapshotRepository persists report snapshots in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE performance_report_snapshots (
//	    id              TEXT PRIMARY KEY,
//	    installation_id TEXT NOT NULL,
//	    years           TEXT NOT NULL,
//	    report          JSONB NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX idx_report_snapshots_installation
//	    ON performance_report_snapshots (installation_id, created_at DESC);
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository constructs a repository over an open pool.
func NewSnapshotRepository(db *sql.DB) (*SnapshotRepository, error) {
	if db == nil {
		return nil, errors.New("postgres snapshot repo: nil db")
	}
	return &SnapshotRepository{db: db}, nil
}

// Save inserts a snapshot row.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot application.ReportSnapshot) error {
	if snapshot.ID == "" {
		return errors.New("postgres snapshot repo: empty id")
	}
	const q = `
		INSERT INTO performance_report_snapshots (id, installation_id, years, report, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q,
		snapshot.ID,
		snapshot.InstallationID,
		encodeYears(snapshot.Years),
		[]byte(snapshot.Report),
		snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres snapshot repo: insert: %w", err)
	}
	return nil
}

// GetByID loads one snapshot.
func (r *SnapshotRepository) GetByID(ctx context.Context, id string) (*application.ReportSnapshot, error) {
	const q = `
		SELECT id, installation_id, years, report, created_at
		FROM performance_report_snapshots
		WHERE id = $1`
	snapshot, err := scanSnapshot(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, application.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres snapshot repo: get: %w", err)
	}
	return snapshot, nil
}

// ListByInstallation returns snapshots for an installation, newest first.
func (r *SnapshotRepository) ListByInstallation(ctx context.Context, installationID string, limit int) ([]application.ReportSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
		SELECT id, installation_id, years, report, created_at
		FROM performance_report_snapshots
		WHERE installation_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, installationID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres snapshot repo: list: %w", err)
	}
	defer rows.Close()

	var result []application.ReportSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres snapshot repo: list scan: %w", err)
		}
		result = append(result, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres snapshot repo: list rows: %w", err)
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*application.ReportSnapshot, error) {
	var snapshot application.ReportSnapshot
	var years string
	var report []byte
	if err := row.Scan(&snapshot.ID, &snapshot.InstallationID, &years, &report, &snapshot.CreatedAt); err != nil {
		return nil, err
	}
	decoded, err := decodeYears(years)
	if err != nil {
		return nil, err
	}
	snapshot.Years = decoded
	snapshot.Report = json.RawMessage(report)
	return &snapshot, nil
}

// Years are stored comma separated so the column stays readable in ad
// hoc queries and snapshot rows never need a join.
func encodeYears(years []int) string {
	parts := make([]string, len(years))
	for i, y := range years {
		parts[i] = strconv.Itoa(y)
	}
	return strings.Join(parts, ",")
}

func decodeYears(encoded string) ([]int, error) {
	if encoded == "" {
		return nil, nil
	}
	parts := strings.Split(encoded, ",")
	years := make([]int, len(parts))
	for i, part := range parts {
		y, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid years column %q: %w", encoded, err)
		}
		years[i] = y
	}
	return years, nil
}
