package performance

// NormalizeYear shapes one year's raw payload into StringRecords.
// Missing months are filled with zero values at their calendar position;
// a gap stays visible as a zero month, it is never compacted away.
// Month indices outside 1..12, duplicate months and negative rated power
// fail with MalformedRecordError.
func NormalizeYear(raw RawYearRecord) ([]StringRecord, error) {
	records := make([]StringRecord, 0, len(raw.Strings))
	for _, s := range raw.Strings {
		record, err := normalizeString(raw.Year, s)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func normalizeString(year int, s RawStringData) (StringRecord, error) {
	if s.ID == "" {
		return StringRecord{}, &MalformedRecordError{Year: year, Reason: "empty string id"}
	}
	if s.RatedPowerKWp < 0 {
		return StringRecord{}, &MalformedRecordError{Year: year, StringID: s.ID, Reason: "negative rated power"}
	}
	if len(s.Monthly) > MonthCount {
		return StringRecord{}, &MalformedRecordError{Year: year, StringID: s.ID, Reason: "more than 12 monthly entries"}
	}

	record := StringRecord{
		StringID:          s.ID,
		Label:             s.Label,
		RatedPowerKWp:     s.RatedPowerKWp,
		Orientation:       s.Orientation,
		TiltDegrees:       s.TiltDegrees,
		ForecastAnnualKWh: s.ForecastAnnualKWh,
		ActualAnnualKWh:   s.ActualAnnualKWh,
	}

	var seen [MonthCount]bool
	for _, m := range s.Monthly {
		if m.Month < 1 || m.Month > MonthCount {
			return StringRecord{}, &MalformedRecordError{Year: year, StringID: s.ID, Reason: "month index out of range"}
		}
		if seen[m.Month-1] {
			return StringRecord{}, &MalformedRecordError{Year: year, StringID: s.ID, Reason: "duplicate month index"}
		}
		seen[m.Month-1] = true
		record.MonthlyValues[m.Month-1] = MonthlyValue{
			MonthIndex:  m.Month,
			ForecastKWh: m.ForecastKWh,
			ActualKWh:   m.ActualKWh,
		}
	}
	for i := range record.MonthlyValues {
		if !seen[i] {
			record.MonthlyValues[i] = MonthlyValue{MonthIndex: i + 1}
		}
	}
	return record, nil
}
