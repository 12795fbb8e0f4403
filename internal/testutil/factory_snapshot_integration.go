//go:build integration

package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Gunvolt24/shop_admin/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeOrder — валидный заказ с одной позицией.
func MakeOrder(createdAt time.Time, opts ...func(*domain.OrderSnapshot)) domain.OrderSnapshot {
	suffix := UniqSuffix()
	price := decimal.RequireFromString("19.90")
	o := domain.OrderSnapshot{
		ID:                "gid://shopify/Order/" + suffix,
		Name:              "#" + suffix,
		CreatedAt:         createdAt.UTC().Truncate(time.Second),
		UpdatedAt:         createdAt.UTC().Truncate(time.Second),
		TotalPrice:        domain.Money{Amount: decimal.RequireFromString("39.80"), CurrencyCode: "USD"},
		FinancialStatus:   "PAID",
		FulfillmentStatus: "UNFULFILLED",
		Customer: &domain.CustomerRef{
			ID:          "gid://shopify/Customer/" + suffix,
			DisplayName: "John Smith",
			Email:       "john@example.com",
		},
		LineItems: []domain.LineItem{{
			ID:               "gid://shopify/LineItem/" + suffix,
			Title:            "Shirt",
			Quantity:         2,
			CustomAttributes: []domain.Attribute{{Key: "fabric", Value: "F-001"}},
			VariantID:        "gid://shopify/ProductVariant/" + suffix,
			VariantTitle:     "M",
			VariantPrice:     &price,
		}},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithoutCustomer — гостевой заказ.
func WithoutCustomer() func(*domain.OrderSnapshot) {
	return func(o *domain.OrderSnapshot) { o.Customer = nil }
}

// WithLineItems — n позиций без цены варианта.
func WithLineItems(n int) func(*domain.OrderSnapshot) {
	return func(o *domain.OrderSnapshot) {
		o.LineItems = make([]domain.LineItem, 0, n)
		for i := 0; i < n; i++ {
			o.LineItems = append(o.LineItems, domain.LineItem{
				ID:               fmt.Sprintf("gid://shopify/LineItem/%s-%d", UniqSuffix(), i),
				Title:            fmt.Sprintf("Item %d", i),
				Quantity:         i + 1,
				CustomAttributes: []domain.Attribute{},
			})
		}
	}
}

// MakeSnapshot — n заказов по убыванию даты создания.
func MakeSnapshot(n int) domain.Snapshot {
	base := time.Now().UTC().Truncate(time.Second)
	orders := make([]domain.OrderSnapshot, 0, n)
	for i := 0; i < n; i++ {
		orders = append(orders, MakeOrder(base.Add(-time.Duration(i)*time.Minute)))
	}
	return domain.Snapshot{
		RefreshedAt: base,
		Orders:      orders,
		Cursor:      domain.PageCursor{HasNextPage: true, StartCursor: "start", EndCursor: "end"},
	}
}

// SeedFabric — ткань и её цены (price → effective_date "YYYY-MM-DD").
func SeedFabric(ctx context.Context, pool *pgxpool.Pool, code, name string, prices map[string]string) (int64, error) {
	return seedCatalogItem(ctx, pool, "fabrics", "code", "fabric_prices", "fabric_id", code, name, prices)
}

// SeedLining — подкладка и её цены.
func SeedLining(ctx context.Context, pool *pgxpool.Pool, typ, name string, prices map[string]string) (int64, error) {
	return seedCatalogItem(ctx, pool, "linings", "type", "lining_prices", "lining_id", typ, name, prices)
}

func seedCatalogItem(
	ctx context.Context, pool *pgxpool.Pool,
	table, keyCol, pricesTable, fkCol, key, name string, prices map[string]string,
) (int64, error) {
	var id int64
	if err := pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, name) VALUES ($1, $2) RETURNING id`, table, keyCol),
		key, name,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	for date, price := range prices {
		if _, err := pool.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (%s, price, effective_date) VALUES ($1, $2::numeric, $3::date)`, pricesTable, fkCol),
			id, price, date,
		); err != nil {
			return 0, fmt.Errorf("insert %s: %w", pricesTable, err)
		}
	}
	return id, nil
}
