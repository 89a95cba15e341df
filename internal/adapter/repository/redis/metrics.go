package redis

import (
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

// observe records a Redis call. Misses are not errors.
func observe(m *metrics.Metrics, operation string, err error) {
	if m == nil {
		return
	}
	m.RedisOperations.WithLabelValues(operation).Inc()
	if err != nil {
		m.RedisErrors.WithLabelValues(operation).Inc()
	}
}
