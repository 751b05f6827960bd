package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClassifierPredict(t *testing.T) {
	var received predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"predictions":[{"label":1,"probabilities":[0.25,0.75]},{"label":0,"score":0.9}]}`))
	}))
	defer srv.Close()

	c, err := NewHTTPClassifier(srv.URL, WithFeatures([]string{"MATKL"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"MATKL"}, c.RequiredFeatures())

	out, err := c.Predict(context.Background(), []FeatureRow{{"MATKL": "M01"}, {"MATKL": "M02"}})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].Label)
	assert.Equal(t, []float64{0.25, 0.75}, out[0].Probabilities)
	require.NotNil(t, out[1].Score)
	assert.Equal(t, 0.9, *out[1].Score)

	require.Len(t, received.Rows, 2)
	assert.Equal(t, "M02", received.Rows[1]["MATKL"])
}

func TestHTTPClassifierPredict_Errors(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
	}{
		"server error":  {status: http.StatusInternalServerError, body: "boom"},
		"bad json":      {status: http.StatusOK, body: "{"},
		"missing label": {status: http.StatusOK, body: `{"predictions":[{"score":0.5}]}`},
		"label range":   {status: http.StatusOK, body: `{"predictions":[{"label":3,"score":0.5}]}`},
		"score range":   {status: http.StatusOK, body: `{"predictions":[{"label":0,"score":1.5}]}`},
		"no list":       {status: http.StatusOK, body: `{}`},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewHTTPClassifier(srv.URL)
			require.NoError(t, err)
			_, err = c.Predict(context.Background(), []FeatureRow{{}})
			assert.Error(t, err)
		})
	}
}

func TestNewHTTPClassifier_RequiresEndpoint(t *testing.T) {
	_, err := NewHTTPClassifier("  ")
	assert.ErrorIs(t, err, errEndpointRequired)
}
