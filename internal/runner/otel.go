package runner

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/flytrace/deconflict/internal/runner"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
