package memory

import (
	"context"
	"sync/atomic"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/metrics"
)

var _ ports.SnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache — текущее поколение снимка заказов в памяти.
// Поколение неизменяемо: Publish подменяет указатель целиком, читатели не берут блокировок.
type SnapshotCache struct {
	current atomic.Pointer[domain.Snapshot]
}

func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{}
}

// Load — копия текущего поколения; пустой снимок, если ничего не опубликовано.
func (c *SnapshotCache) Load(_ context.Context) domain.Snapshot {
	snap := c.current.Load()
	if snap == nil {
		return domain.Snapshot{Orders: []domain.OrderSnapshot{}}
	}
	return snap.Clone()
}

// Publish — атомарно подменяет поколение. Вызывает единственный писатель,
// номер поколения не сравнивается: после сброса хранилища он начинается с 1.
func (c *SnapshotCache) Publish(_ context.Context, snap domain.Snapshot) {
	next := snap.Clone()
	c.current.Store(&next)

	metrics.SnapshotOrders.Set(float64(len(next.Orders)))
	metrics.SnapshotGeneration.Set(float64(next.Generation))
}

// Generation — номер опубликованного поколения (0 — пусто).
func (c *SnapshotCache) Generation() uint64 {
	if snap := c.current.Load(); snap != nil {
		return snap.Generation
	}
	return 0
}
