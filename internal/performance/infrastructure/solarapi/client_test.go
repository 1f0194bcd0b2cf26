package solarapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestFetchYearDecodesPayload(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"year": 2023,
			"installed_capacity_kwp": 9.9,
			"has_forecast": true,
			"strings": [
				{
					"id": "s1",
					"label": "Roof East",
					"rated_power_kwp": 4.5,
					"forecast_annual_kwh": 120,
					"actual_annual_kwh": 110,
					"monthly": [{"month": 1, "forecast_kwh": 120, "actual_kwh": 110}]
				}
			]
		}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "tok-123", WithBackoff(fastBackoff()))
	require.NoError(t, err)

	raw, err := client.FetchYear(context.Background(), "inst-1", 2023)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/installations/inst-1/years/2023/strings", gotPath)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, 2023, raw.Year)
	assert.True(t, raw.HasForecast)
	require.Len(t, raw.Strings, 1)
	assert.Equal(t, "Roof East", raw.Strings[0].Label)
	assert.InDelta(t, 4.5, raw.Strings[0].RatedPowerKWp, 1e-9)
}

func TestFetchYearFillsMissingYearField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"has_forecast": false, "strings": []}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", WithBackoff(fastBackoff()))
	require.NoError(t, err)

	raw, err := client.FetchYear(context.Background(), "inst-1", 2021)
	require.NoError(t, err)
	assert.Equal(t, 2021, raw.Year)
}

func TestFetchYearNotFoundIsTerminal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", WithBackoff(fastBackoff()))
	require.NoError(t, err)

	_, err = client.FetchYear(context.Background(), "inst-1", 1999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrYearNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "404 must not be retried")
}

func TestFetchYearRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"year": 2022, "has_forecast": true, "strings": []}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", WithBackoff(fastBackoff()))
	require.NoError(t, err)

	raw, err := client.FetchYear(context.Background(), "inst-1", 2022)
	require.NoError(t, err)
	assert.Equal(t, 2022, raw.Year)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchYearExhaustsRetryBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", WithBackoff(fastBackoff()))
	require.NoError(t, err)

	_, err = client.FetchYear(context.Background(), "inst-1", 2022)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "initial attempt plus two retries")
}

func TestFetchYearHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "", WithBackoff(BackoffConfig{
		MaxRetries:      5,
		InitialInterval: time.Hour,
		MaxInterval:     time.Hour,
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = client.FetchYear(ctx, "inst-1", 2022)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	_, err := NewClient("", "tok")
	assert.Error(t, err)
}
