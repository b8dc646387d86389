package bootstrap

import (
	"car-rental-booking/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Invoke(func() {
		metrics.Register(prometheus.DefaultRegisterer)
	}),
)
