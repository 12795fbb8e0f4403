package ports

import (
	"context"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// OrderSource — upstream-источник заказов (Shopify Admin API).
type OrderSource interface {
	// FetchOrders — первая страница из first заказов, новые сверху.
	FetchOrders(ctx context.Context, first int) (domain.Snapshot, error)
}

// CommentSource — комментарии из таймлайна заказа.
type CommentSource interface {
	OrderComments(ctx context.Context, orderID string) ([]domain.Comment, error)
}
