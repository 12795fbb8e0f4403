package ports

import (
	"context"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

// SnapshotStore — долговременное хранилище снимка заказов.
// Хранит не больше одного поколения; Replace атомарен (всё или ничего).
type SnapshotStore interface {
	// Replace — заменить содержимое целиком, вернуть номер нового поколения.
	Replace(ctx context.Context, snap domain.Snapshot) (uint64, error)

	// Load — последнее записанное поколение; пустой Snapshot, если записей нет.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Clear — удалить снимок (ручной сброс через diagnose).
	Clear(ctx context.Context) error
}

// SnapshotCache — in-memory копия последнего поколения.
// Требования к реализации: один писатель / много читателей, читатель не видит «рваной» записи,
// возврат копий.
type SnapshotCache interface {
	Load(ctx context.Context) domain.Snapshot
	Publish(ctx context.Context, snap domain.Snapshot)
}
