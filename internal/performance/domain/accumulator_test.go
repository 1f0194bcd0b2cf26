package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearRecord(id, label string, rated, forecast, actual float64) StringRecord {
	record := StringRecord{
		StringID:          id,
		Label:             label,
		RatedPowerKWp:     rated,
		ForecastAnnualKWh: forecast,
		ActualAnnualKWh:   actual,
	}
	// Spread the annual totals evenly so monthly sums match the annuals.
	for i := range record.MonthlyValues {
		record.MonthlyValues[i] = MonthlyValue{
			MonthIndex:  i + 1,
			ForecastKWh: forecast / MonthCount,
			ActualKWh:   actual / MonthCount,
		}
	}
	return record
}

func TestAccumulateSumsAcrossYears(t *testing.T) {
	year2024 := []StringRecord{yearRecord("a", "String A", 5, 1000, 950)}
	year2025 := []StringRecord{yearRecord("a", "String A", 5, 1100, 1200)}

	acc := Accumulate([][]StringRecord{year2024, year2025})
	require.Equal(t, 1, acc.Len())

	totals := acc.byID["a"]
	assert.InDelta(t, 2100, totals.forecastTotalKWh, 1e-9)
	assert.InDelta(t, 2150, totals.actualTotalKWh, 1e-9)

	// January of 2024 plus January of 2025.
	assert.InDelta(t, (1000.0+1100.0)/MonthCount, totals.monthly[0].ForecastKWh, 1e-9)
	assert.InDelta(t, (950.0+1200.0)/MonthCount, totals.monthly[0].ActualKWh, 1e-9)
	assert.Equal(t, 1, totals.monthly[0].MonthIndex)
}

func TestAccumulatePartialPresenceContributesZero(t *testing.T) {
	year2023 := []StringRecord{yearRecord("old", "Old string", 4, 800, 780)}
	year2024 := []StringRecord{
		yearRecord("old", "Old string", 4, 820, 810),
		yearRecord("new", "New string", 2, 400, 390),
	}

	acc := Accumulate([][]StringRecord{year2023, year2024})
	require.Equal(t, 2, acc.Len())

	newTotals := acc.byID["new"]
	assert.InDelta(t, 400, newTotals.forecastTotalKWh, 1e-9)
	assert.InDelta(t, 390, newTotals.actualTotalKWh, 1e-9)
}

func TestAccumulateIdentityFromFirstChronologicalYear(t *testing.T) {
	first := yearRecord("a", "Original name", 5, 100, 90)
	renamed := yearRecord("a", "Renamed", 6, 100, 90)

	acc := Accumulate([][]StringRecord{{first}, {renamed}})

	totals := acc.byID["a"]
	assert.Equal(t, "Original name", totals.label)
	assert.Equal(t, 5.0, totals.ratedPowerKWp)
	// Totals still include both years.
	assert.InDelta(t, 200, totals.forecastTotalKWh, 1e-9)
}

func TestAccumulatePreservesFirstEncounterOrder(t *testing.T) {
	year2023 := []StringRecord{
		yearRecord("b", "B", 1, 10, 10),
		yearRecord("a", "A", 1, 10, 10),
	}
	year2024 := []StringRecord{
		yearRecord("c", "C", 1, 10, 10),
		yearRecord("a", "A", 1, 10, 10),
	}

	acc := Accumulate([][]StringRecord{year2023, year2024})
	assert.Equal(t, []string{"b", "a", "c"}, acc.order)
}
