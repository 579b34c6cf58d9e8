package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveProviderCall("p", OutcomeOK, time.Second, 0)
	m.ObservePoolReset()
	m.ObservePhrase(1, 2, 4, 0, 0, 0)
}

func TestObservePhrase(t *testing.T) {
	m := NewMetrics("")
	m.ObservePhrase(3, 10, 20, 2, 1, 1)
	m.ObservePhrase(4, 5, 10, 0, 0, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PhrasesCompleted))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.CandidatesChecked))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.AddressesChecked))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnknownResults))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HitsFound))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.CurrentIndex))
}

func TestHandlerServesProviderMetrics(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveProviderCall("blockstream", OutcomeRateLimited, 50*time.Millisecond, 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues("blockstream", OutcomeRateLimited)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderErrorStreak.WithLabelValues("blockstream")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_provider_calls_total{outcome="rate_limited",provider="blockstream"} 1`))
}
