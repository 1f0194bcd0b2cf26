package performance

// AggregatedStringResult is one string summed across the selected years,
// with derived variance metrics.
type AggregatedStringResult struct {
	StringID               string                   `json:"string_id"`
	Label                  string                   `json:"label"`
	RatedPowerKWp          float64                  `json:"rated_power_kwp"`
	Orientation            string                   `json:"orientation,omitempty"`
	TiltDegrees            *float64                 `json:"tilt_degrees,omitempty"`
	ForecastTotalKWh       float64                  `json:"forecast_total_kwh"`
	ActualTotalKWh         float64                  `json:"actual_total_kwh"`
	DeviationKWh           float64                  `json:"deviation_kwh"`
	DeviationPercent       Metric                   `json:"deviation_percent"`
	PerformanceRatio       Metric                   `json:"performance_ratio"`
	SpecificYieldKWhPerKWp Metric                   `json:"specific_yield_kwh_per_kwp"`
	MonthlyAggregates      [MonthCount]MonthlyValue `json:"monthly_aggregates"`
}

// AggregatedReport is the full forecast-vs-actual comparison for one
// installation over a set of years. Strings keep their input order.
type AggregatedReport struct {
	InstallationID         string                   `json:"installation_id"`
	Years                  []int                    `json:"years"`
	ForecastAvailable      bool                     `json:"forecast_available"`
	Strings                []AggregatedStringResult `json:"strings"`
	ForecastGrandTotalKWh  float64                  `json:"forecast_grand_total_kwh"`
	ActualGrandTotalKWh    float64                  `json:"actual_grand_total_kwh"`
	DeviationGrandTotalKWh float64                  `json:"deviation_grand_total_kwh"`
	DeviationGrandPercent  Metric                   `json:"deviation_grand_percent"`
	InstalledCapacityKWp   float64                  `json:"installed_capacity_kwp"`
	BestStringLabel        *string                  `json:"best_string_label"`
	WorstStringLabel       *string                  `json:"worst_string_label"`
}
