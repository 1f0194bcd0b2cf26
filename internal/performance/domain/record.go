package performance

// MonthCount is the fixed length of a per-year monthly series.
const MonthCount = 12

// AnnualTotalToleranceKWh is the accepted gap between a supplied annual
// total and the sum of its monthly values. Both are preserved as-is; the
// annual totals drive the top-line KPIs, the monthly sums drive the
// per-month series.
const AnnualTotalToleranceKWh = 1e-3

// MonthlyValue is forecast and actual production for one calendar month.
// MonthIndex is 1-based (1 = January).
type MonthlyValue struct {
	MonthIndex  int     `json:"month_index"`
	ForecastKWh float64 `json:"forecast_kwh"`
	ActualKWh   float64 `json:"actual_kwh"`
}

// StringRecord is one PV string (sub-array) for one year, already
// normalized to a full 12-month calendar series.
type StringRecord struct {
	StringID          string
	Label             string
	RatedPowerKWp     float64
	Orientation       string
	TiltDegrees       *float64
	ForecastAnnualKWh float64
	ActualAnnualKWh   float64
	MonthlyValues     [MonthCount]MonthlyValue
}

// RawYearRecord is the data API payload for one installation-year.
type RawYearRecord struct {
	Year                 int             `json:"year"`
	InstalledCapacityKWp float64         `json:"installed_capacity_kwp"`
	HasForecast          bool            `json:"has_forecast"`
	Strings              []RawStringData `json:"strings"`
}

// RawStringData is one per-string object inside a RawYearRecord.
type RawStringData struct {
	ID                string            `json:"id"`
	Label             string            `json:"label"`
	RatedPowerKWp     float64           `json:"rated_power_kwp"`
	Orientation       string            `json:"orientation,omitempty"`
	TiltDegrees       *float64          `json:"tilt_degrees,omitempty"`
	ForecastAnnualKWh float64           `json:"forecast_annual_kwh"`
	ActualAnnualKWh   float64           `json:"actual_annual_kwh"`
	Monthly           []RawMonthlyValue `json:"monthly"`
}

// RawMonthlyValue is one monthly entry of a RawStringData. Month is
// 1-based; gaps in the series are allowed and normalize to zero months.
type RawMonthlyValue struct {
	Month       int     `json:"month"`
	ForecastKWh float64 `json:"forecast_kwh"`
	ActualKWh   float64 `json:"actual_kwh"`
}
