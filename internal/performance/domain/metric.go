package performance

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Metric is a derived value that may be undefined. Divisions by zero
// (zero forecast, zero rated capacity) yield an undefined Metric, never
// NaN, Inf or a substituted zero, so callers can tell "not applicable"
// from a computed zero.
type Metric struct {
	Value   float64
	Defined bool
}

// DefinedMetric wraps a computed value.
func DefinedMetric(value float64) Metric {
	return Metric{Value: value, Defined: true}
}

// UndefinedMetric is the "not applicable" marker.
func UndefinedMetric() Metric {
	return Metric{}
}

// Ratio divides num by den with the zero guard applied.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return UndefinedMetric()
	}
	return DefinedMetric(num / den)
}

// MarshalJSON renders undefined metrics as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts null as undefined.
func (m *Metric) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = Metric{}
		return nil
	}
	value, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return err
	}
	*m = DefinedMetric(value)
	return nil
}
