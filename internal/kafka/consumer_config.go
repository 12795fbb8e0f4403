package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ConsumerConfig — параметры консьюмера webhook-событий.
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string

	// PageSize — сколько заказов запрашивать при обновлении по событию.
	PageSize int

	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration

	// ErrorLogger — куда kafka-go пишет свои внутренние ошибки; nil — никуда.
	ErrorLogger kafka.Logger
}

// Значения по умолчанию для незаданных полей.
const (
	defaultWebhookTopic   = "shopify.webhooks"
	defaultGroupID        = "shop-admin"
	defaultPageSize       = 20
	defaultProcessTimeout = 30 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
)

// withDefaults — копия конфига с заполненными пустыми полями.
// Обработка события включает запрос к Shopify и запись снимка, отсюда запас по ProcessTimeout.
func (c *ConsumerConfig) withDefaults() ConsumerConfig {
	out := *c
	if strings.TrimSpace(out.Topic) == "" {
		out.Topic = defaultWebhookTopic
	}
	if strings.TrimSpace(out.GroupID) == "" {
		out.GroupID = defaultGroupID
	}
	if out.PageSize <= 0 {
		out.PageSize = defaultPageSize
	}
	if out.ProcessTimeout <= 0 {
		out.ProcessTimeout = defaultProcessTimeout
	}
	if out.RetryInitial <= 0 {
		out.RetryInitial = defaultRetryInitial
	}
	if out.RetryMax <= 0 {
		out.RetryMax = defaultRetryMax
	}
	if out.RetryMax < out.RetryInitial {
		out.RetryMax = out.RetryInitial
	}
	return out
}

// ReaderConfig — kafka.ReaderConfig с ручным коммитом оффсетов.
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0,
		ErrorLogger:    c.ErrorLogger,
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}
