package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Обновление снимка заказов.
var (
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_refresh_total",
			Help: "Number of snapshot refresh attempts by result",
		},
		[]string{"result"}, // ok|validation|unavailable|rejected|write_failed
	)
	RefreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orders_refresh_duration_seconds",
			Help:    "Duration of a snapshot refresh (fetch + write)",
			Buckets: prometheus.DefBuckets,
		},
	)
	SnapshotOrders = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_snapshot_orders",
			Help: "Number of orders in the published snapshot",
		},
	)
	SnapshotGeneration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orders_snapshot_generation",
			Help: "Generation of the published snapshot",
		},
	)
	SnapshotWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_snapshot_write_failures_total",
			Help: "Number of failed snapshot write attempts",
		},
	)
)

// Внешний API магазина.
var (
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopify_requests_total",
			Help: "Shopify Admin API requests by operation and result",
		},
		[]string{"op", "result"}, // result: ok|unavailable|rejected
	)
	SessionCacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_cache_operations_total",
			Help: "Access token cache operations",
		},
		[]string{"op"}, // hit|miss|fallback
	)
)

// Вебхуки через Kafka.
var (
	WebhookMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_messages_consumed_total",
			Help: "Number of webhook messages fetched from Kafka",
		},
		[]string{"topic"},
	)
	WebhookMessagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_messages_processed_total",
			Help: "Number of webhook messages processed successfully",
		},
		[]string{"topic"},
	)
	WebhookMessagesFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_messages_failed_total",
			Help: "Number of webhook messages failed to process",
		},
		[]string{"topic"},
	)
)

var registerOnce sync.Once

// MustRegister регистрирует коллекторы в default registry; повторные вызовы игнорируются.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RefreshTotal, RefreshDuration, SnapshotOrders, SnapshotGeneration, SnapshotWriteFailures,
			UpstreamRequests, SessionCacheOps,
			WebhookMessagesConsumed, WebhookMessagesProcessed, WebhookMessagesFailed,
		)
	})
}
