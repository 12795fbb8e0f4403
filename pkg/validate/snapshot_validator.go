package validate

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
)

// Проверка, что SnapshotValidator удовлетворяет интерфейсу ports.SnapshotValidator.
var _ ports.SnapshotValidator = (*SnapshotValidator)(nil)

// ErrInvalidSnapshot — базовая (sentinel error) ошибка валидации снимка.
var ErrInvalidSnapshot = errors.New("snapshot validation failed")

// SnapshotValidator — проверка снимка заказов перед записью в хранилище.
type SnapshotValidator struct{}

// NewSnapshotValidator — конструктор SnapshotValidator.
// Возвращает ErrInvalidSnapshot (с обёрнутой причиной) при любой проблеме.
func NewSnapshotValidator() *SnapshotValidator { return &SnapshotValidator{} }

// Validate — проверяет снимок целиком. pageSize <= 0 — без ограничения на размер страницы.
func (v *SnapshotValidator) Validate(_ context.Context, snap domain.Snapshot, pageSize int) error {
	if pageSize > 0 && len(snap.Orders) > pageSize {
		return fmt.Errorf("%w: получено %d заказов при first=%d", ErrInvalidSnapshot, len(snap.Orders), pageSize)
	}

	seen := make(map[string]struct{}, len(snap.Orders))
	for i := range snap.Orders {
		order := &snap.Orders[i]
		if err := v.validateOrder(order, i); err != nil {
			return err
		}
		if _, dup := seen[order.ID]; dup {
			return fmt.Errorf("%w: orders[%d].id %q повторяется", ErrInvalidSnapshot, i, order.ID)
		}
		seen[order.ID] = struct{}{}

		// порядок: новые сверху
		if i > 0 && order.CreatedAt.After(snap.Orders[i-1].CreatedAt) {
			return fmt.Errorf("%w: orders[%d] нарушает порядок по created_at", ErrInvalidSnapshot, i)
		}
	}
	return nil
}

// validateOrder — валидация одного заказа.
func (v *SnapshotValidator) validateOrder(order *domain.OrderSnapshot, i int) error {
	idx := strconv.Itoa(i)

	if order.ID == "" {
		return fmt.Errorf("%w: orders[%s].id обязателен", ErrInvalidSnapshot, idx)
	}
	if order.Name == "" {
		return fmt.Errorf("%w: orders[%s].name обязателен", ErrInvalidSnapshot, idx)
	}
	if order.CreatedAt.IsZero() {
		return fmt.Errorf("%w: orders[%s].created_at некорректен", ErrInvalidSnapshot, idx)
	}
	if order.TotalPrice.CurrencyCode == "" {
		return fmt.Errorf("%w: orders[%s].total_price.currency обязателен", ErrInvalidSnapshot, idx)
	}
	if order.TotalPrice.Amount.IsNegative() {
		return fmt.Errorf("%w: orders[%s].total_price.amount должен быть неотрицательным", ErrInvalidSnapshot, idx)
	}
	if order.Customer != nil && order.Customer.ID == "" {
		return fmt.Errorf("%w: orders[%s].customer.id обязателен", ErrInvalidSnapshot, idx)
	}
	return v.validateLineItems(order.LineItems, idx)
}

// Валидация позиций
func (v *SnapshotValidator) validateLineItems(items []domain.LineItem, orderIdx string) error {
	if len(items) > domain.MaxLineItemsPerOrder {
		return fmt.Errorf("%w: orders[%s] содержит %d позиций, максимум %d",
			ErrInvalidSnapshot, orderIdx, len(items), domain.MaxLineItemsPerOrder)
	}

	for j := range items {
		item := &items[j]
		if item.ID == "" {
			return fmt.Errorf("%w: orders[%s].line_items[%d].id обязателен", ErrInvalidSnapshot, orderIdx, j)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("%w: orders[%s].line_items[%d].quantity должен быть неотрицательным", ErrInvalidSnapshot, orderIdx, j)
		}
		if item.VariantPrice != nil && item.VariantPrice.IsNegative() {
			return fmt.Errorf("%w: orders[%s].line_items[%d].variant_price должен быть неотрицательным", ErrInvalidSnapshot, orderIdx, j)
		}
	}
	return nil
}
