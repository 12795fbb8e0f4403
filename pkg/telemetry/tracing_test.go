package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNormalize_Defaults(t *testing.T) {
	got := normalize(Options{SampleRatio: 5})
	require.Equal(t, "shop-admin", got.ServiceName)
	require.Equal(t, "localhost:4318", got.Endpoint)
	require.InDelta(t, 1.0, got.SampleRatio, 0)

	got = normalize(Options{ServiceName: "svc", Endpoint: "otel:4318", SampleRatio: -1})
	require.Equal(t, "svc", got.ServiceName)
	require.Equal(t, "otel:4318", got.Endpoint)
	require.InDelta(t, 0.0, got.SampleRatio, 0)
}

func TestSetupTracing_InstallsGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := SetupTracing(context.Background(), Options{
		ServiceName:    "shop-admin-test",
		ServiceVersion: "test",
		Environment:    "ci",
		SampleRatio:    0,
	})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, shutdown(ctx))
}
