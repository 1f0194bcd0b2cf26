package performance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricJSONNullForUndefined(t *testing.T) {
	payload, err := json.Marshal(struct {
		Ratio Metric `json:"ratio"`
	}{Ratio: UndefinedMetric()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ratio":null}`, string(payload))

	payload, err = json.Marshal(struct {
		Ratio Metric `json:"ratio"`
	}{Ratio: DefinedMetric(0.8125)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ratio":0.8125}`, string(payload))
}

func TestMetricJSONRoundTrip(t *testing.T) {
	var decoded struct {
		Ratio Metric `json:"ratio"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ratio":null}`), &decoded))
	assert.False(t, decoded.Ratio.Defined)

	require.NoError(t, json.Unmarshal([]byte(`{"ratio":1.25}`), &decoded))
	require.True(t, decoded.Ratio.Defined)
	assert.Equal(t, 1.25, decoded.Ratio.Value)
}
