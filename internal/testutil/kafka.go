//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// UniqueTopicAndGroup — топик и группа консьюмера с меткой времени, чтобы тесты не делили оффсеты.
// base="webhooks-itest" → "webhooks-itest-20250826T010203123456789".
func UniqueTopicAndGroup(base string) (topic, group string) {
	stamp := strings.ReplaceAll(time.Now().UTC().Format("20060102T150405.000000000"), ".", "")
	topic = base + "-" + stamp
	return topic, topic + "-admin"
}

// WebhookMessage — событие так, как его кладёт релей: JSON в теле и заголовки Shopify.
func WebhookMessage(ev domain.WebhookEvent) (kafka.Message, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal webhook event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(ev.ShopDomain),
		Value: body,
		Headers: []kafka.Header{
			{Key: "X-Shopify-Topic", Value: []byte(ev.Topic)},
			{Key: "X-Shopify-Shop-Domain", Value: []byte(ev.ShopDomain)},
			{Key: "X-Shopify-Webhook-Id", Value: []byte(uuid.NewString())},
		},
	}, nil
}

// ProduceWebhookEvent — опубликовать одно webhook-событие в topic.
func ProduceWebhookEvent(ctx context.Context, broker, topic string, ev domain.WebhookEvent) error {
	msg, err := WebhookMessage(ev)
	if err != nil {
		return err
	}
	return Produce(ctx, broker, topic, msg)
}

// Produce — синхронная запись сообщений как есть (в том числе заведомо битых).
func Produce(ctx context.Context, broker, topic string, msgs ...kafka.Message) error {
	w := &kafka.Writer{
		Addr:         kafka.TCP(firstBootstrap(broker)),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}
	defer w.Close()

	if err := w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// EnsureTopic — создать топик через контроллер кластера (существующий — не ошибка)
// и дождаться партиций в метаданных. broker: "host:port", "PLAINTEXT://host:port" или список через запятую.
func EnsureTopic(ctx context.Context, broker, topic string) error {
	addr := firstBootstrap(broker)

	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctrl, err := conn.Controller()
	if err != nil {
		return err
	}
	admin, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(ctrl.Host, strconv.Itoa(ctrl.Port)))
	if err != nil {
		return err
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return err
	}
	return waitTopicReady(ctx, addr, topic)
}

// firstBootstrap — первый адрес списка без схемы.
func firstBootstrap(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if u, err := url.Parse(first); err == nil && u.Scheme != "" && u.Host != "" {
		return u.Host
	}
	return first
}

func waitTopicReady(ctx context.Context, broker, topic string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	var lastErr error
	for {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			parts, perr := conn.ReadPartitions(topic)
			_ = conn.Close()
			if perr == nil && len(parts) > 0 {
				return nil
			}
			err = perr
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("topic %q not ready: %w", topic, lastErr)
			}
			return fmt.Errorf("topic %q not ready: %w", topic, ctx.Err())
		case <-tick.C:
		}
	}
}
