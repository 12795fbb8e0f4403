package domain

import (
	"fmt"
	"strings"
	"time"
)

const shopDomainSuffix = ".myshopify.com"

// ShopSession — offline-токен Admin API для магазина.
type ShopSession struct {
	Shop        string
	AccessToken string
	Scope       string
	UpdatedAt   time.Time
}

// WebhookEvent — уведомление Shopify, ретранслированное в Kafka.
type WebhookEvent struct {
	Topic      string `json:"topic"`
	ShopDomain string `json:"shop_domain"`
	ResourceID string `json:"admin_graphql_api_id,omitempty"`
}

// AffectsOrders — true для топиков вида orders/*.
func (e WebhookEvent) AffectsOrders() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(e.Topic)), "orders/")
}

// NormalizeShopDomain — домен магазина в нижнем регистре; допускается только <name>.myshopify.com.
func NormalizeShopDomain(raw string) (string, error) {
	shop := strings.ToLower(strings.TrimSpace(raw))
	name, ok := strings.CutSuffix(shop, shopDomainSuffix)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: shop domain %q is not *%s", ErrValidation, raw, shopDomainSuffix)
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return "", fmt.Errorf("%w: shop domain %q has invalid characters", ErrValidation, raw)
		}
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return "", fmt.Errorf("%w: shop domain %q has invalid characters", ErrValidation, raw)
	}
	return shop, nil
}
