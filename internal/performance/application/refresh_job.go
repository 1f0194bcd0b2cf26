package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pvmonitor-cloud/internal/observability/metrics"
)

// SnapshotRefreshJob recomputes and persists snapshots for a fixed set
// of installations over a trailing year window. It satisfies the
// scheduler Job interface.
type SnapshotRefreshJob struct {
	snapshots     *SnapshotService
	installations []string
	lookbackYears int
	timeout       time.Duration
	clock         Clock
	log           zerolog.Logger
}

// NewSnapshotRefreshJob constructs the job.
func NewSnapshotRefreshJob(snapshots *SnapshotService, installations []string, lookbackYears int, clock Clock, log zerolog.Logger) (*SnapshotRefreshJob, error) {
	if snapshots == nil {
		return nil, errors.New("snapshot refresh: nil snapshot service")
	}
	if lookbackYears <= 0 {
		lookbackYears = 2
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SnapshotRefreshJob{
		snapshots:     snapshots,
		installations: installations,
		lookbackYears: lookbackYears,
		timeout:       2 * time.Minute,
		clock:         clock,
		log:           log.With().Str("component", "snapshot-refresh").Logger(),
	}, nil
}

// Name identifies the job in scheduler logs.
func (j *SnapshotRefreshJob) Name() string { return "snapshot-refresh" }

// Run captures one snapshot per configured installation covering the
// trailing lookback window ending in the current year. Failures are
// logged per installation; the job reports the count of failures so the
// scheduler can flag the run.
func (j *SnapshotRefreshJob) Run() error {
	currentYear := j.clock.Now().Year()
	years := make([]int, 0, j.lookbackYears)
	for y := currentYear - j.lookbackYears + 1; y <= currentYear; y++ {
		years = append(years, y)
	}

	failed := 0
	for _, installationID := range j.installations {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		_, err := j.snapshots.Capture(ctx, installationID, years)
		cancel()
		if err != nil {
			failed++
			metrics.IncSnapshotRefreshFailure()
			j.log.Error().
				Err(err).
				Str("installation_id", installationID).
				Ints("years", years).
				Msg("snapshot refresh failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("snapshot refresh: %d of %d installations failed", failed, len(j.installations))
	}
	return nil
}
