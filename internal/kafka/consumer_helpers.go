package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_admin/pkg/metrics"
)

// Заголовки, которые релей переносит из HTTP-запроса Shopify.
const (
	headerTopic     = "X-Shopify-Topic"
	headerShop      = "X-Shopify-Shop-Domain"
	headerWebhookID = "X-Shopify-Webhook-Id"
)

// errInvalidEvent — сообщение нельзя разобрать; повтор не поможет.
var errInvalidEvent = errors.New("invalid webhook event")

// decodeEvent — событие из тела сообщения; topic/shop при отсутствии берутся из заголовков.
func decodeEvent(msg *kafka.Message) (domain.WebhookEvent, string, error) {
	var ev domain.WebhookEvent
	if len(msg.Value) > 0 {
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return domain.WebhookEvent{}, "", fmt.Errorf("%w: %w", errInvalidEvent, err)
		}
	}

	var webhookID string
	for _, h := range msg.Headers {
		switch {
		case strings.EqualFold(h.Key, headerTopic) && ev.Topic == "":
			ev.Topic = string(h.Value)
		case strings.EqualFold(h.Key, headerShop) && ev.ShopDomain == "":
			ev.ShopDomain = string(h.Value)
		case strings.EqualFold(h.Key, headerWebhookID):
			webhookID = string(h.Value)
		}
	}

	ev.Topic = strings.TrimSpace(ev.Topic)
	if ev.Topic == "" {
		return domain.WebhookEvent{}, "", fmt.Errorf("%w: topic is empty", errInvalidEvent)
	}
	// без магазина обновляем магазин инстанса; чужой хост до клиента Shopify не доходит
	if strings.TrimSpace(ev.ShopDomain) != "" {
		shop, err := domain.NormalizeShopDomain(ev.ShopDomain)
		if err != nil {
			return domain.WebhookEvent{}, "", fmt.Errorf("%w: %w", errInvalidEvent, err)
		}
		ev.ShopDomain = shop
	} else {
		ev.ShopDomain = ""
	}
	return ev, webhookID, nil
}

// handleMessage обрабатывает одно сообщение и определяет, нужно ли коммитить оффсет.
func (c *Consumer) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ev, webhookID, err := decodeEvent(msg)
	if err != nil {
		// мусор не ретраим
		metrics.WebhookMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(ctx, "invalid message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	}

	if !ev.AffectsOrders() {
		metrics.WebhookMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	}

	msgCtx := ctxmeta.WithShop(ctx, ev.ShopDomain)
	msgCtx = ctxmeta.WithRequestID(msgCtx, webhookID)

	ctxTimeout, cancel := context.WithTimeout(msgCtx, c.processTimeout)
	res, err := c.service.Refresh(ctxTimeout, c.pageSize)
	cancel()

	switch {
	case err == nil:
		metrics.WebhookMessagesProcessed.WithLabelValues(topic).Inc()
		c.log.Infof(msgCtx, "refreshed by webhook event=%s offset=%d orders=%d generation=%d",
			ev.Topic, msg.Offset, res.OrdersCount, res.Generation)
		return true
	case errors.Is(err, domain.ErrUpstreamRejected), errors.Is(err, domain.ErrValidation):
		// Shopify ответил отказом: повтор того же события даст тот же результат
		metrics.WebhookMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(msgCtx, "refresh rejected event=%s offset=%d: %v (skipped)", ev.Topic, msg.Offset, err)
		return true
	case domain.IsRetryable(err):
		// недоступность upstream/БД: НЕ коммитим
		metrics.WebhookMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Warnf(msgCtx, "refresh failed event=%s offset=%d: %v (will retry without commit)", ev.Topic, msg.Offset, err)
		return false
	default:
		// неклассифицированная ошибка (таймаут и т.п.): тоже без коммита
		metrics.WebhookMessagesFailed.WithLabelValues(topic).Inc()
		c.log.Errorf(msgCtx, "refresh error event=%s offset=%d: %v (will retry without commit)", ev.Topic, msg.Offset, err)
		return false
	}
}

// commitSafely пытается закоммитить оффсет и залогировать ошибку.
func (c *Consumer) commitSafely(ctx context.Context, msg *kafka.Message) {
	if commitErr := c.reader.CommitMessages(ctx, *msg); commitErr != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, commitErr)
	}
}

// sleepWithBackoff ждет backoff или останавливается по контексту.
func (c *Consumer) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// nextBackoff возвращает следующее время ожидания повтора с учетом retryMax.
func (c *Consumer) nextBackoff(current time.Duration) time.Duration {
	current *= 2
	if current > c.retryMax {
		return c.retryMax
	}
	return current
}

// withJitterEqual — половина задержки фиксирована, вторая половина случайная.
func (c *Consumer) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	jitter := time.Duration(c.jitterRand.Int63n(int64(d-half) + 1))
	return half + jitter
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
