package performance

import (
	"errors"
	"fmt"
)

var (
	ErrNoYearsSelected   = errors.New("performance: no years selected")
	ErrDuplicateYear     = errors.New("performance: duplicate year in selection")
	ErrEmptyInstallation = errors.New("performance: empty installation id")
)

// MalformedRecordError reports a per-record invariant violation in a
// year's payload. Aggregation must not proceed on malformed input.
type MalformedRecordError struct {
	Year     int
	StringID string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("performance: malformed record (year=%d string=%s): %s", e.Year, e.StringID, e.Reason)
}

// FetchError reports that one year's data could not be retrieved. A
// single failed year fails the whole aggregation.
type FetchError struct {
	Year int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("performance: fetch year %d: %v", e.Year, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
