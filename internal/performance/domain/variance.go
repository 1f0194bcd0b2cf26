package performance

// Finalize derives per-string and grand variance metrics from
// accumulated totals and selects the best/worst performing strings.
//
// forecastAvailable=false is the soft "no forecast in any selected year"
// state: the report is still complete, but every deviation/ratio metric
// is undefined so callers render actual-only totals instead of a
// comparison.
//
// Grand percentages are always recomputed from summed kWh; per-string
// percentages are never summed or averaged.
func Finalize(acc *Accumulation, forecastAvailable bool) *AggregatedReport {
	report := &AggregatedReport{
		ForecastAvailable: forecastAvailable,
		Strings:           make([]AggregatedStringResult, 0, acc.Len()),
	}

	for _, id := range acc.order {
		totals := acc.byID[id]
		result := AggregatedStringResult{
			StringID:          totals.stringID,
			Label:             totals.label,
			RatedPowerKWp:     totals.ratedPowerKWp,
			Orientation:       totals.orientation,
			TiltDegrees:       totals.tiltDegrees,
			ForecastTotalKWh:  totals.forecastTotalKWh,
			ActualTotalKWh:    totals.actualTotalKWh,
			DeviationKWh:      totals.actualTotalKWh - totals.forecastTotalKWh,
			MonthlyAggregates: totals.monthly,
		}
		if forecastAvailable {
			result.DeviationPercent = Ratio(result.DeviationKWh*100, totals.forecastTotalKWh)
			result.PerformanceRatio = Ratio(totals.actualTotalKWh, totals.forecastTotalKWh)
		}
		result.SpecificYieldKWhPerKWp = Ratio(totals.actualTotalKWh, totals.ratedPowerKWp)

		report.ForecastGrandTotalKWh += result.ForecastTotalKWh
		report.ActualGrandTotalKWh += result.ActualTotalKWh
		report.InstalledCapacityKWp += result.RatedPowerKWp
		report.Strings = append(report.Strings, result)
	}

	report.DeviationGrandTotalKWh = report.ActualGrandTotalKWh - report.ForecastGrandTotalKWh
	if forecastAvailable {
		report.DeviationGrandPercent = Ratio(report.DeviationGrandTotalKWh*100, report.ForecastGrandTotalKWh)
	}

	rankStrings(report)
	return report
}

// rankStrings selects best and worst by performance ratio among strings
// with a defined ratio. Ties resolve to the earlier string in input
// order. Fewer than 2 comparable strings means no badges at all: best
// versus itself is not a meaningful comparison.
func rankStrings(report *AggregatedReport) {
	bestIdx, worstIdx := -1, -1
	defined := 0
	for i := range report.Strings {
		ratio := report.Strings[i].PerformanceRatio
		if !ratio.Defined {
			continue
		}
		defined++
		if bestIdx < 0 || ratio.Value > report.Strings[bestIdx].PerformanceRatio.Value {
			bestIdx = i
		}
		if worstIdx < 0 || ratio.Value < report.Strings[worstIdx].PerformanceRatio.Value {
			worstIdx = i
		}
	}
	if defined < 2 {
		return
	}
	best := report.Strings[bestIdx].Label
	worst := report.Strings[worstIdx].Label
	report.BestStringLabel = &best
	report.WorstStringLabel = &worst
}
