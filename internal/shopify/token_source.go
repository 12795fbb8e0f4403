package shopify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var _ ports.AccessTokenSource = (*TokenSource)(nil)

// TokenSource — offline-токены магазинов: LRU с TTL поверх таблицы сессий.
// fallback — токен custom app из конфигурации; выдаётся только для fallbackShop.
type TokenSource struct {
	sessions     ports.SessionRepository
	cache        *expirable.LRU[string, string]
	fallbackShop string
	fallback     string
	log          ports.Logger
}

func NewTokenSource(
	sessions ports.SessionRepository,
	size int,
	ttl time.Duration,
	fallbackShop, fallback string,
	log ports.Logger,
) *TokenSource {
	if size <= 0 {
		size = 1
	}
	return &TokenSource{
		sessions:     sessions,
		cache:        expirable.NewLRU[string, string](size, nil, ttl),
		fallbackShop: strings.ToLower(strings.TrimSpace(fallbackShop)),
		fallback:     fallback,
		log:          log,
	}
}

// AccessToken — токен для shop. Нет ни сессии, ни fallback — domain.ErrSessionNotFound.
func (s *TokenSource) AccessToken(ctx context.Context, shop string) (string, error) {
	if token, ok := s.cache.Get(shop); ok {
		metrics.SessionCacheOps.WithLabelValues("hit").Inc()
		return token, nil
	}
	metrics.SessionCacheOps.WithLabelValues("miss").Inc()

	if s.sessions != nil {
		session, err := s.sessions.Get(ctx, shop)
		if err != nil {
			return "", fmt.Errorf("load session shop=%s: %w", shop, err)
		}
		if session != nil && session.AccessToken != "" {
			s.cache.Add(shop, session.AccessToken)
			return session.AccessToken, nil
		}
	}

	if s.fallback != "" && s.fallbackShop != "" && strings.EqualFold(shop, s.fallbackShop) {
		metrics.SessionCacheOps.WithLabelValues("fallback").Inc()
		return s.fallback, nil
	}
	s.log.Warnf(ctx, "no access token for shop=%s", shop)
	return "", fmt.Errorf("%w: %s", domain.ErrSessionNotFound, shop)
}

// Save — сохранить сессию (diagnose -save-token) и сразу положить токен в кэш.
func (s *TokenSource) Save(ctx context.Context, session *domain.ShopSession) error {
	if s.sessions == nil {
		return fmt.Errorf("session storage is not configured")
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return err
	}
	s.cache.Add(session.Shop, session.AccessToken)
	return nil
}
