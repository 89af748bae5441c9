package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerProvider_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	tp, err := InitTracerProvider(ctx, "fitlink-test", &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "handshake.init")
	span.End()

	Shutdown(ctx, tp, nil)

	assert.Contains(t, buf.String(), "handshake.init")
	assert.Contains(t, buf.String(), "fitlink-test")
}

func TestInitMeterProvider_RegistersCollector(t *testing.T) {
	reg := prometheus.NewRegistry()

	mp, err := InitMeterProvider(reg)
	require.NoError(t, err)
	defer Shutdown(context.Background(), nil, mp)

	counter, err := otel.Meter("test").Int64Counter("fitlink_test_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 2)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fitlink_test_events_total")
}
