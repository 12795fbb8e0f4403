// Пакет shopify — клиент Shopify Admin GraphQL API и всё, что нужно для авторизации:
// проверка session token встроенной админки и источник offline-токенов магазинов.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_admin/pkg/metrics"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 8 << 20

// Config — параметры подключения к Admin API.
type Config struct {
	Shop       string // магазин по умолчанию, если в контексте запроса его нет
	APIVersion string
	Endpoint   string // полный URL GraphQL; пусто — https://{shop}/admin/api/{version}/graphql.json
	Timeout    time.Duration
}

var (
	_ ports.OrderSource   = (*Client)(nil)
	_ ports.CommentSource = (*Client)(nil)
)

// Client — GraphQL-клиент Admin API.
type Client struct {
	cfg    Config
	http   *http.Client
	tokens ports.AccessTokenSource
	log    ports.Logger
}

// NewClient — DI-конструктор. httpClient == nil — клиент с otelhttp-транспортом и таймаутом из cfg.
func NewClient(cfg Config, tokens ports.AccessTokenSource, log ports.Logger, httpClient *http.Client) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-10"
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{cfg: cfg, http: httpClient, tokens: tokens, log: log}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// shop — магазин запроса: из контекста (session token / вебхук), иначе из конфигурации.
// Домен вне *.myshopify.com отклоняется до запроса: токен уходит только в Shopify.
func (c *Client) shop(ctx context.Context) (string, error) {
	raw, ok := ctxmeta.ShopFromContext(ctx)
	if !ok {
		raw = c.cfg.Shop
	}
	if raw == "" {
		return "", fmt.Errorf("%w: shop is not known for this request", domain.ErrUpstreamRejected)
	}
	shop, err := domain.NormalizeShopDomain(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamRejected, err)
	}
	return shop, nil
}

func (c *Client) endpoint(shop string) string {
	if c.cfg.Endpoint != "" {
		return c.cfg.Endpoint
	}
	return "https://" + shop + "/admin/api/" + c.cfg.APIVersion + "/graphql.json"
}

// do — один GraphQL-запрос. Ошибки транспорта, 5xx, 429, THROTTLED и неразборчивый ответ —
// ErrUpstreamUnavailable; 4xx и непустой errors — ErrUpstreamRejected с текстом Shopify.
func (c *Client) do(ctx context.Context, op, query string, vars map[string]any, out any) (err error) {
	defer func() { metrics.UpstreamRequests.WithLabelValues(op, upstreamResult(err)).Inc() }()

	shop, err := c.shop(ctx)
	if err != nil {
		return err
	}
	token, err := c.tokens.AccessToken(ctx, shop)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("%w: %w", domain.ErrUpstreamRejected, err)
		}
		return fmt.Errorf("%w: access token: %w", domain.ErrUpstreamUnavailable, err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shop), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %w", domain.ErrUpstreamUnavailable, op, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s: status %d", domain.ErrUpstreamUnavailable, op, resp.StatusCode)
	case resp.StatusCode >= 400:
		msg := errorMessage(raw)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: status %d: %s", domain.ErrUpstreamRejected, op, resp.StatusCode, msg)
	}

	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrUpstreamUnavailable, op, err)
	}
	if errs := parseErrors(envelope.Errors); len(errs) > 0 {
		if throttled(errs) {
			return fmt.Errorf("%w: %s: throttled", domain.ErrUpstreamUnavailable, op)
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrUpstreamRejected, op, joinMessages(errs))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("%w: %s: empty data", domain.ErrUpstreamUnavailable, op)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%w: decode %s data: %w", domain.ErrUpstreamUnavailable, op, err)
	}
	return nil
}

// parseErrors — errors у Shopify бывает и массивом объектов, и строкой (ошибки авторизации).
func parseErrors(raw json.RawMessage) []graphQLError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []graphQLError
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
		return []graphQLError{{Message: msg}}
	}
	return []graphQLError{{Message: string(raw)}}
}

func errorMessage(raw []byte) string {
	var envelope graphQLResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	return joinMessages(parseErrors(envelope.Errors))
}

func throttled(errs []graphQLError) bool {
	for _, e := range errs {
		if e.Extensions.Code == "THROTTLED" {
			return true
		}
	}
	return false
}

func joinMessages(errs []graphQLError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

func upstreamResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUpstreamRejected):
		return "rejected"
	default:
		return "unavailable"
	}
}
