package application

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pvmonitor-cloud/internal/observability/metrics"
)

// Clock provides time for application services.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now in UTC.
type SystemClock struct{}

// Now returns current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ReportSnapshot is a persisted aggregation result. The report payload
// is stored as rendered JSON so a snapshot replays exactly what the
// engine produced at capture time.
type ReportSnapshot struct {
	ID             string          `json:"id"`
	InstallationID string          `json:"installation_id"`
	Years          []int           `json:"years"`
	Report         json.RawMessage `json:"report"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SnapshotRepository persists report snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot ReportSnapshot) error
	GetByID(ctx context.Context, id string) (*ReportSnapshot, error)
	ListByInstallation(ctx context.Context, installationID string, limit int) ([]ReportSnapshot, error)
}

// ErrSnapshotNotFound is returned when a snapshot id is unknown.
var ErrSnapshotNotFound = errors.New("performance: snapshot not found")

// SnapshotService computes and persists report snapshots. Snapshots are
// a caching layer over the stateless engine, not a system of record.
type SnapshotService struct {
	aggregator *AggregationService
	repo       SnapshotRepository
	clock      Clock
	log        zerolog.Logger
}

// NewSnapshotService constructs the service.
func NewSnapshotService(aggregator *AggregationService, repo SnapshotRepository, clock Clock, log zerolog.Logger) (*SnapshotService, error) {
	if aggregator == nil {
		return nil, errors.New("snapshot service: nil aggregator")
	}
	if repo == nil {
		return nil, errors.New("snapshot service: nil repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SnapshotService{
		aggregator: aggregator,
		repo:       repo,
		clock:      clock,
		log:        log.With().Str("component", "snapshots").Logger(),
	}, nil
}

// Capture aggregates and persists a snapshot for the installation.
func (s *SnapshotService) Capture(ctx context.Context, installationID string, years []int) (*ReportSnapshot, error) {
	report, err := s.aggregator.Aggregate(ctx, installationID, years)
	if err != nil {
		metrics.IncSnapshotCapture(metrics.ResultError)
		return nil, err
	}
	payload, err := json.Marshal(report)
	if err != nil {
		metrics.IncSnapshotCapture(metrics.ResultError)
		return nil, err
	}

	snapshot := ReportSnapshot{
		ID:             uuid.NewString(),
		InstallationID: installationID,
		Years:          report.Years,
		Report:         payload,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		metrics.IncSnapshotCapture(metrics.ResultError)
		return nil, err
	}
	metrics.IncSnapshotCapture(metrics.ResultSuccess)
	s.log.Info().
		Str("installation_id", installationID).
		Str("snapshot_id", snapshot.ID).
		Ints("years", snapshot.Years).
		Msg("snapshot captured")
	return &snapshot, nil
}

// Get returns one snapshot by id.
func (s *SnapshotService) Get(ctx context.Context, id string) (*ReportSnapshot, error) {
	if id == "" {
		return nil, ErrSnapshotNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns the most recent snapshots for an installation.
func (s *SnapshotService) List(ctx context.Context, installationID string, limit int) ([]ReportSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListByInstallation(ctx, installationID, limit)
}
