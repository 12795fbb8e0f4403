package ports

import (
	"context"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// SessionRepository — хранилище offline-токенов магазинов.
type SessionRepository interface {
	// Get — сессия магазина; (nil, nil), если записи нет.
	Get(ctx context.Context, shop string) (*domain.ShopSession, error)
	Save(ctx context.Context, session *domain.ShopSession) error
}
