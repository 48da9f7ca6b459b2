package puzzle

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName names the generator's meter.
const InstrumentationName = "github.com/werhatvorfahrt/werhatvorfahrt/internal/puzzle"

func meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}
