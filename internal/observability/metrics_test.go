package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m1 := NewMetricsForTesting()
	m2 := NewMetricsForTesting()

	// Both sets must be registrable, so neither touched the default registry.
	assert.NotPanics(t, func() {
		prometheus.NewRegistry().MustRegister(m1.Predictions, m1.GeoRequests, m1.ModelLoaded)
		prometheus.NewRegistry().MustRegister(m2.Predictions, m2.GeoRequests, m2.ModelLoaded)
	})
}
