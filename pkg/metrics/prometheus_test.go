package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	assert.Nil(t, m.GetOrCreateHandler())

	// noop meters accept calls without effect
	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateCountVecMeter("cv", []string{"l"}).AddWithLabel(1, map[string]string{"l": "v"})
	m.GetOrCreateGaugeMeter("g").Set(1)
}

func TestPrometheusMetrics(t *testing.T) {
	previous := metrics
	t.Cleanup(func() { metrics = previous })

	metrics = defaultNoopMetrics()
	InitializePrometheusMetrics()

	Counter("eras_finalized").Add(2)
	Counter("eras_finalized").Add(1)
	CounterVec("messages", []string{"status"}).AddWithLabel(1, map[string]string{"status": "sent"})
	Gauge("active_era").Set(7)

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "erarewards_eras_finalized 3")
	assert.Contains(t, string(body), `erarewards_messages{status="sent"} 1`)
	assert.Contains(t, string(body), "erarewards_active_era 7")
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	get := LazyLoad(func() int {
		calls++
		return 42
	})
	assert.Equal(t, 42, get())
	assert.Equal(t, 42, get())
	assert.Equal(t, 1, calls)
}
