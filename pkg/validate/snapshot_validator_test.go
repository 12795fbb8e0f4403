package validate_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/pkg/validate"
	"github.com/shopspring/decimal"
)

func validSnapshot() domain.Snapshot {
	price := decimal.RequireFromString("120.50")
	return domain.Snapshot{
		Orders: []domain.OrderSnapshot{
			{
				ID:         "gid://shopify/Order/2",
				Name:       "#1002",
				CreatedAt:  time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
				TotalPrice: domain.Money{Amount: price, CurrencyCode: "EUR"},
				Customer:   &domain.CustomerRef{ID: "gid://shopify/Customer/1"},
				LineItems: []domain.LineItem{
					{ID: "gid://shopify/LineItem/1", Title: "Suit", Quantity: 1, VariantPrice: &price},
				},
			},
			{
				ID:         "gid://shopify/Order/1",
				Name:       "#1001",
				CreatedAt:  time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				TotalPrice: domain.Money{Amount: decimal.Zero, CurrencyCode: "EUR"},
			},
		},
	}
}

func TestSnapshotValidator_Validate(t *testing.T) {
	v := validate.NewSnapshotValidator()
	ctx := context.Background()

	t.Run("valid snapshot", func(t *testing.T) {
		if err := v.Validate(ctx, validSnapshot(), 20); err != nil {
			t.Fatalf("expected valid snapshot, got: %v", err)
		}
	})

	t.Run("empty snapshot", func(t *testing.T) {
		if err := v.Validate(ctx, domain.Snapshot{}, 20); err != nil {
			t.Fatalf("expected valid empty snapshot, got: %v", err)
		}
	})

	type testCase struct {
		name     string
		pageSize int
		mutate   func(s *domain.Snapshot)
		msg      string
	}

	negative := decimal.RequireFromString("-1")

	cases := []testCase{
		{
			name:     "more orders than requested",
			pageSize: 1,
			mutate:   func(*domain.Snapshot) {},
			msg:      "получено 2 заказов при first=1",
		},
		{
			name:   "empty id",
			mutate: func(s *domain.Snapshot) { s.Orders[0].ID = "" },
			msg:    "orders[0].id обязателен",
		},
		{
			name:   "duplicate id",
			mutate: func(s *domain.Snapshot) { s.Orders[1].ID = s.Orders[0].ID },
			msg:    "повторяется",
		},
		{
			name:   "empty name",
			mutate: func(s *domain.Snapshot) { s.Orders[1].Name = "" },
			msg:    "orders[1].name обязателен",
		},
		{
			name:   "zero created_at",
			mutate: func(s *domain.Snapshot) { s.Orders[0].CreatedAt = time.Time{} },
			msg:    "orders[0].created_at некорректен",
		},
		{
			name: "ascending order",
			mutate: func(s *domain.Snapshot) {
				s.Orders[0], s.Orders[1] = s.Orders[1], s.Orders[0]
			},
			msg: "нарушает порядок",
		},
		{
			name:   "empty currency",
			mutate: func(s *domain.Snapshot) { s.Orders[0].TotalPrice.CurrencyCode = "" },
			msg:    "total_price.currency обязателен",
		},
		{
			name:   "negative total",
			mutate: func(s *domain.Snapshot) { s.Orders[0].TotalPrice.Amount = negative },
			msg:    "total_price.amount должен быть неотрицательным",
		},
		{
			name:   "customer without id",
			mutate: func(s *domain.Snapshot) { s.Orders[0].Customer.ID = "" },
			msg:    "customer.id обязателен",
		},
		{
			name: "too many line items",
			mutate: func(s *domain.Snapshot) {
				items := make([]domain.LineItem, domain.MaxLineItemsPerOrder+1)
				for i := range items {
					items[i] = domain.LineItem{ID: "li", Quantity: 1}
				}
				s.Orders[0].LineItems = items
			},
			msg: "позиций, максимум 50",
		},
		{
			name:   "empty line item id",
			mutate: func(s *domain.Snapshot) { s.Orders[0].LineItems[0].ID = "" },
			msg:    "line_items[0].id обязателен",
		},
		{
			name:   "negative quantity",
			mutate: func(s *domain.Snapshot) { s.Orders[0].LineItems[0].Quantity = -1 },
			msg:    "line_items[0].quantity должен быть неотрицательным",
		},
		{
			name:   "negative variant price",
			mutate: func(s *domain.Snapshot) { s.Orders[0].LineItems[0].VariantPrice = &negative },
			msg:    "line_items[0].variant_price должен быть неотрицательным",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := validSnapshot()
			tc.mutate(&snap)

			err := v.Validate(ctx, snap, tc.pageSize)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !errors.Is(err, validate.ErrInvalidSnapshot) {
				t.Errorf("expected ErrInvalidSnapshot, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("expected error message to contain %q, got %q", tc.msg, err.Error())
			}
		})
	}
}
