package interfaces

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	performance "pvmonitor-cloud/internal/performance/domain"
)

func sampleReport() *performance.AggregatedReport {
	best := "Roof East"
	worst := "Roof West"
	return &performance.AggregatedReport{
		InstallationID:    "inst-1",
		Years:             []int{2022, 2023},
		ForecastAvailable: true,
		Strings: []performance.AggregatedStringResult{
			{
				StringID:               "s1",
				Label:                  "Roof East",
				RatedPowerKWp:          5.4,
				Orientation:            "east",
				ForecastTotalKWh:       2100,
				ActualTotalKWh:         2150,
				DeviationKWh:           50,
				DeviationPercent:       performance.DefinedMetric(2.380952),
				PerformanceRatio:       performance.DefinedMetric(1.0238095),
				SpecificYieldKWhPerKWp: performance.DefinedMetric(398.15),
			},
			{
				StringID:               "s2",
				Label:                  "Roof West",
				RatedPowerKWp:          4.0,
				Orientation:            "west",
				ForecastTotalKWh:       1600,
				ActualTotalKWh:         1300,
				DeviationKWh:           -300,
				DeviationPercent:       performance.DefinedMetric(-18.75),
				PerformanceRatio:       performance.DefinedMetric(0.8125),
				SpecificYieldKWhPerKWp: performance.DefinedMetric(325),
			},
		},
		ForecastGrandTotalKWh:  3700,
		ActualGrandTotalKWh:    3450,
		DeviationGrandTotalKWh: -250,
		DeviationGrandPercent:  performance.DefinedMetric(-6.756757),
		InstalledCapacityKWp:   9.4,
		BestStringLabel:        &best,
		WorstStringLabel:       &worst,
	}
}

func TestReportRowsProjection(t *testing.T) {
	rows := ReportRows(sampleReport())
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"Roof East", "5.40", "east", "2100.00", "2150.00", "2.38", "102.38", "398.15",
	}, rows[0])
	assert.Equal(t, []string{
		"Roof West", "4.00", "west", "1600.00", "1300.00", "-18.75", "81.25", "325.00",
	}, rows[1])
}

func TestReportRowsUndefinedMetricsRenderAsNA(t *testing.T) {
	report := sampleReport()
	report.Strings[0].DeviationPercent = performance.UndefinedMetric()
	report.Strings[0].PerformanceRatio = performance.UndefinedMetric()
	report.Strings[0].SpecificYieldKWhPerKWp = performance.UndefinedMetric()

	rows := ReportRows(report)
	assert.Equal(t, "n/a", rows[0][5])
	assert.Equal(t, "n/a", rows[0][6])
	assert.Equal(t, "n/a", rows[0][7])
	// Absolute totals are always defined even when ratios are not.
	assert.Equal(t, "2150.00", rows[0][4])
}

func TestBuildReportCSV(t *testing.T) {
	data, err := BuildReportCSV(sampleReport())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, "Roof East", records[1][0])
	assert.Equal(t, "102.38", records[1][6])
	assert.Equal(t, "81.25", records[2][6])
}

func TestBuildReportXLSXProducesWorkbook(t *testing.T) {
	data, err := BuildReportXLSX(sampleReport())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, data[:2])
}

func TestBuildReportPDFProducesDocument(t *testing.T) {
	data, err := BuildReportPDF(sampleReport())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildReportPDFWithoutForecast(t *testing.T) {
	report := sampleReport()
	report.ForecastAvailable = false
	report.DeviationGrandPercent = performance.UndefinedMetric()
	report.BestStringLabel = nil
	report.WorstStringLabel = nil
	for i := range report.Strings {
		report.Strings[i].DeviationPercent = performance.UndefinedMetric()
		report.Strings[i].PerformanceRatio = performance.UndefinedMetric()
	}

	data, err := BuildReportPDF(report)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
