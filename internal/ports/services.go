package ports

import (
	"context"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// OrderCacheService — то, что нужно транспорту от кэша заказов.
type OrderCacheService interface {
	Refresh(ctx context.Context, pageSize int) (domain.RefreshResult, error)
	Snapshot(ctx context.Context) domain.Snapshot
	OrderComments(ctx context.Context, orderID string) ([]domain.Comment, error)
}

// PriceService — чтение прайс-листов.
type PriceService interface {
	FabricPrices(ctx context.Context) ([]domain.Fabric, error)
	LiningPrices(ctx context.Context) ([]domain.Lining, error)
}
