package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
)

// ValidateSnapshotFromJSON — валидация выгрузки снимка (формат ответа GET /api/orders).
func ValidateSnapshotFromJSON(ctx context.Context, validator ports.SnapshotValidator, raw []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := decodeStrict(raw, &snap); err != nil {
		return nil, err
	}
	if err := validator.Validate(ctx, snap, 0); err != nil {
		return nil, err
	}
	return &snap, nil
}

// ValidateOrderFromJSON — валидация одного заказа из JSON.
func ValidateOrderFromJSON(ctx context.Context, validator ports.SnapshotValidator, raw []byte) (*domain.OrderSnapshot, error) {
	var order domain.OrderSnapshot
	if err := decodeStrict(raw, &order); err != nil {
		return nil, err
	}
	single := domain.Snapshot{Orders: []domain.OrderSnapshot{order}}
	if err := validator.Validate(ctx, single, 0); err != nil {
		return nil, err
	}
	return &order, nil
}

// decodeStrict — ровно один JSON-объект без неизвестных полей.
func decodeStrict(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return fmt.Errorf("invalid json: trailing data")
	}
	return nil
}
