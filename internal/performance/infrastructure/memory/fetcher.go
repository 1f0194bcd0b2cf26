package memory

import (
	"context"
	"errors"
	"sync"

	performance "pvmonitor-cloud/internal/performance/domain"
)

// ErrYearNotFound is returned when no record exists for a year.
var ErrYearNotFound = errors.New("memory fetcher: no data for year")

// Fetcher is an in-memory YearlyRecordFetcher for demo/testing.
type Fetcher struct {
	mu   sync.RWMutex
	data map[string]map[int]performance.RawYearRecord
}

// NewFetcher constructs an empty fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{data: make(map[string]map[int]performance.RawYearRecord)}
}

// Put stores one installation-year payload.
func (f *Fetcher) Put(installationID string, raw performance.RawYearRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	years := f.data[installationID]
	if years == nil {
		years = make(map[int]performance.RawYearRecord)
		f.data[installationID] = years
	}
	years[raw.Year] = raw
}

// FetchYear returns the stored payload for the installation-year.
func (f *Fetcher) FetchYear(ctx context.Context, installationID string, year int) (performance.RawYearRecord, error) {
	_ = ctx
	f.mu.RLock()
	defer f.mu.RUnlock()
	raw, ok := f.data[installationID][year]
	if !ok {
		return performance.RawYearRecord{}, ErrYearNotFound
	}
	return raw, nil
}
