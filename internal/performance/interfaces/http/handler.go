package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pvmonitor-cloud/internal/observability/metrics"
	"pvmonitor-cloud/internal/performance/application"
	performance "pvmonitor-cloud/internal/performance/domain"
	"pvmonitor-cloud/internal/performance/infrastructure/solarapi"
	"pvmonitor-cloud/internal/performance/interfaces"
)

// Handler provides performance report HTTP endpoints.
type Handler struct {
	aggregator *application.AggregationService
	snapshots  *application.SnapshotService
	log        zerolog.Logger
}

// NewHandler constructs a handler.
func NewHandler(aggregator *application.AggregationService, snapshots *application.SnapshotService, log zerolog.Logger) (*Handler, error) {
	if aggregator == nil {
		return nil, errors.New("performance handler: nil aggregator")
	}
	if snapshots == nil {
		return nil, errors.New("performance handler: nil snapshot service")
	}
	return &Handler{
		aggregator: aggregator,
		snapshots:  snapshots,
		log:        log.With().Str("component", "performance-http").Logger(),
	}, nil
}

// Routes mounts the handler on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/installations/{installationID}/performance", h.handleGetReport)
	r.Get("/installations/{installationID}/performance/export.csv", h.handleExportCSV)
	r.Get("/installations/{installationID}/performance/export.xlsx", h.handleExportXLSX)
	r.Get("/installations/{installationID}/performance/export.pdf", h.handleExportPDF)
	r.Post("/installations/{installationID}/snapshots", h.handleCaptureSnapshot)
	r.Get("/installations/{installationID}/snapshots", h.handleListSnapshots)
	r.Get("/snapshots/{snapshotID}", h.handleGetSnapshot)
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	installationID := chi.URLParam(r, "installationID")
	years, err := parseYears(r.URL.Query().Get("years"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.aggregator.Aggregate(r.Context(), installationID, years)
	if err != nil {
		h.respondAggregateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv", interfaces.BuildReportCSV)
}

func (h *Handler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", interfaces.BuildReportXLSX)
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "pdf", "application/pdf", interfaces.BuildReportPDF)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, format, contentType string, build func(*performance.AggregatedReport) ([]byte, error)) {
	start := time.Now()
	installationID := chi.URLParam(r, "installationID")
	years, err := parseYears(r.URL.Query().Get("years"))
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.aggregator.Aggregate(r.Context(), installationID, years)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		h.respondAggregateError(w, err)
		return
	}

	data, err := build(report)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		h.log.Error().Err(err).Str("format", format).Msg("export render failed")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))

	filename := fmt.Sprintf("performance_%s.%s", installationID, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleCaptureSnapshot(w http.ResponseWriter, r *http.Request) {
	installationID := chi.URLParam(r, "installationID")

	years, err := parseYears(r.URL.Query().Get("years"))
	if err != nil {
		// Fall back to a JSON body for clients that prefer it.
		var req struct {
			Years []int `json:"years"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil || len(req.Years) == 0 {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		years = req.Years
	}
	defer r.Body.Close()

	snapshot, err := h.snapshots.Capture(r.Context(), installationID, years)
	if err != nil {
		h.respondAggregateError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

func (h *Handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	installationID := chi.URLParam(r, "installationID")
	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	snapshots, err := h.snapshots.List(r.Context(), installationID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snapshots == nil {
		snapshots = []application.ReportSnapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (h *Handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshots.Get(r.Context(), chi.URLParam(r, "snapshotID"))
	if errors.Is(err, application.ErrSnapshotNotFound) {
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// respondAggregateError maps engine errors onto HTTP statuses. Selection
// errors are the caller's fault (400); malformed upstream payloads are
// unprocessable (422); a missing year is 404; any other fetch failure is
// an upstream problem (502).
func (h *Handler) respondAggregateError(w http.ResponseWriter, err error) {
	var malformed *performance.MalformedRecordError
	var fetchErr *performance.FetchError

	switch {
	case errors.Is(err, performance.ErrNoYearsSelected),
		errors.Is(err, performance.ErrDuplicateYear),
		errors.Is(err, performance.ErrEmptyInstallation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &malformed):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &fetchErr):
		if errors.Is(fetchErr.Err, solarapi.ErrYearNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Int("year", fetchErr.Year).Msg("upstream fetch failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		h.log.Error().Err(err).Msg("aggregation failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// parseYears parses the comma separated years query parameter.
func parseYears(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("years query parameter required, e.g. years=2022,2023")
	}
	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		years = append(years, year)
	}
	return years, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
