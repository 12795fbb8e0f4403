package logger_test

import (
	"context"
	"testing"

	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_admin/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_AddsRequestMetadata(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.Wrap(zap.New(core))

	ctx := ctxmeta.WithRequestID(context.Background(), "req-1")
	ctx = ctxmeta.WithShop(ctx, "atelier.myshopify.com")

	log.Infof(ctx, "refreshed %d orders", 20)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "refreshed 20 orders", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "req-1", fields["request_id"])
	require.Equal(t, "atelier.myshopify.com", fields["shop"])
}

func TestZapLogger_NoMetadata_NoFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.Wrap(zap.New(core))

	log.Warnf(context.Background(), "plain")
	log.Errorf(nil, "nil ctx") //nolint:staticcheck // nil ctx допустим для логгера

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Empty(t, entries[0].ContextMap())
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestNewZapLogger_DevAndProd(t *testing.T) {
	for _, prod := range []bool{false, true} {
		log, cleanup, err := logger.NewZapLogger(prod)
		require.NoError(t, err)
		require.NotNil(t, log.Sugared())
		_ = cleanup()
	}
}
