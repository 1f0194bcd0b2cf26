package performance

// stringTotals is one string's running cross-year state. Identity fields
// are frozen at the first chronological occurrence; later years only add
// to the totals.
type stringTotals struct {
	stringID      string
	label         string
	ratedPowerKWp float64
	orientation   string
	tiltDegrees   *float64

	forecastTotalKWh float64
	actualTotalKWh   float64
	monthly          [MonthCount]MonthlyValue
}

// Accumulation is the keyed merge of normalized per-year string lists.
// Ordering follows first encounter across years, earliest year first.
type Accumulation struct {
	order []string
	byID  map[string]*stringTotals
}

// Accumulate merges per-year string lists into cross-year totals per
// string and per calendar month (all Januaries summed together, and so
// on). perYear must be ordered by ascending year. A string present in
// only some years contributes zero for its absent years.
func Accumulate(perYear [][]StringRecord) *Accumulation {
	acc := &Accumulation{byID: make(map[string]*stringTotals)}
	for _, records := range perYear {
		for _, record := range records {
			totals, ok := acc.byID[record.StringID]
			if !ok {
				totals = &stringTotals{
					stringID:      record.StringID,
					label:         record.Label,
					ratedPowerKWp: record.RatedPowerKWp,
					orientation:   record.Orientation,
					tiltDegrees:   record.TiltDegrees,
				}
				for i := range totals.monthly {
					totals.monthly[i].MonthIndex = i + 1
				}
				acc.byID[record.StringID] = totals
				acc.order = append(acc.order, record.StringID)
			}
			totals.forecastTotalKWh += record.ForecastAnnualKWh
			totals.actualTotalKWh += record.ActualAnnualKWh
			for i, month := range record.MonthlyValues {
				totals.monthly[i].ForecastKWh += month.ForecastKWh
				totals.monthly[i].ActualKWh += month.ActualKWh
			}
		}
	}
	return acc
}

// Len returns the number of distinct strings accumulated.
func (a *Accumulation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.order)
}
