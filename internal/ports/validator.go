package ports

import (
	"context"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// SnapshotValidator — проверка снимка, пришедшего из upstream, до записи.
type SnapshotValidator interface {
	Validate(ctx context.Context, snap domain.Snapshot, pageSize int) error
}
