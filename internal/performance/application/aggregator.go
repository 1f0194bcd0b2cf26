package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pvmonitor-cloud/internal/observability/metrics"
	performance "pvmonitor-cloud/internal/performance/domain"
)

// YearlyRecordFetcher retrieves one installation-year of raw per-string
// forecast/actual data from the monitoring data API.
type YearlyRecordFetcher interface {
	FetchYear(ctx context.Context, installationID string, year int) (performance.RawYearRecord, error)
}

// AggregationService is the public entry point of the SOLL-IST engine.
// It dispatches one fetch per selected year, waits for all of them, and
// runs normalization, accumulation and variance finalization. There is
// no cross-call state; every report is recomputed from its inputs.
type AggregationService struct {
	fetcher YearlyRecordFetcher
	log     zerolog.Logger
}

// NewAggregationService constructs the service.
func NewAggregationService(fetcher YearlyRecordFetcher, log zerolog.Logger) (*AggregationService, error) {
	if fetcher == nil {
		return nil, errors.New("aggregation service: nil fetcher")
	}
	return &AggregationService{
		fetcher: fetcher,
		log:     log.With().Str("component", "aggregation").Logger(),
	}, nil
}

// Aggregate produces the forecast-vs-actual report for an installation
// over a set of years. The year set is sorted ascending so identity
// fields resolve to the first chronological occurrence; a singleton set
// goes through the same path as the general multi-year case.
//
// Fetches run concurrently; if any year fails the whole call fails with
// a FetchError naming that year. Partial results are never accumulated.
func (s *AggregationService) Aggregate(ctx context.Context, installationID string, years []int) (*performance.AggregatedReport, error) {
	start := time.Now()
	report, err := s.aggregate(ctx, installationID, years)
	if err != nil {
		metrics.ObserveAggregation(metrics.ResultError, time.Since(start))
		return nil, err
	}
	metrics.ObserveAggregation(metrics.ResultSuccess, time.Since(start))
	s.log.Debug().
		Str("installation_id", installationID).
		Ints("years", report.Years).
		Int("strings", len(report.Strings)).
		Bool("forecast_available", report.ForecastAvailable).
		Dur("elapsed", time.Since(start)).
		Msg("report aggregated")
	return report, nil
}

func (s *AggregationService) aggregate(ctx context.Context, installationID string, years []int) (*performance.AggregatedReport, error) {
	if installationID == "" {
		return nil, performance.ErrEmptyInstallation
	}
	sorted, err := sortYears(years)
	if err != nil {
		return nil, err
	}

	raws, err := s.fetchAll(ctx, installationID, sorted)
	if err != nil {
		return nil, err
	}

	forecastAvailable := false
	perYear := make([][]performance.StringRecord, 0, len(raws))
	for _, raw := range raws {
		records, err := performance.NormalizeYear(raw)
		if err != nil {
			return nil, err
		}
		if raw.HasForecast {
			forecastAvailable = true
		}
		perYear = append(perYear, records)
	}

	report := performance.Finalize(performance.Accumulate(perYear), forecastAvailable)
	report.InstallationID = installationID
	report.Years = sorted
	return report, nil
}

// fetchAll runs one fetch per year concurrently and waits for all of
// them. Errors are checked in year order so the reported failure is
// deterministic when several years fail at once.
func (s *AggregationService) fetchAll(ctx context.Context, installationID string, years []int) ([]performance.RawYearRecord, error) {
	raws := make([]performance.RawYearRecord, len(years))
	errs := make([]error, len(years))

	var wg sync.WaitGroup
	for i, year := range years {
		wg.Add(1)
		go func(i, year int) {
			defer wg.Done()
			raw, err := s.fetcher.FetchYear(ctx, installationID, year)
			if err != nil {
				errs[i] = err
				return
			}
			if raw.Year == 0 {
				raw.Year = year
			}
			raws[i] = raw
		}(i, year)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &performance.FetchError{Year: years[i], Err: err}
		}
	}
	return raws, nil
}

func sortYears(years []int) ([]int, error) {
	if len(years) == 0 {
		return nil, performance.ErrNoYearsSelected
	}
	sorted := make([]int, len(years))
	copy(sorted, years)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, performance.ErrDuplicateYear
		}
	}
	return sorted, nil
}
