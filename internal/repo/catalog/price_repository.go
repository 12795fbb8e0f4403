package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
)

var _ ports.PriceCatalog = (*PriceRepository)(nil)

// PriceRepository — справочник тканей/подкладок с последней ценой.
type PriceRepository struct {
	db *gorm.DB
}

// NewPriceRepository - конструктор PriceRepository.
func NewPriceRepository(db *gorm.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// priceRow — строка справочника с последней ценой (цены может не быть).
type priceRow struct {
	ID            int64
	ItemKey       string
	Name          string
	Price         decimal.NullDecimal
	EffectiveDate *time.Time
}

const fabricsQuery = `
	SELECT f.id, f.code AS item_key, f.name, p.price, p.effective_date
	FROM fabrics f
	LEFT JOIN (
		SELECT DISTINCT ON (fabric_id) fabric_id, price, effective_date
		FROM fabric_prices
		ORDER BY fabric_id, effective_date DESC, id DESC
	) p ON p.fabric_id = f.id
	ORDER BY f.code ASC
`

const liningsQuery = `
	SELECT l.id, l.type AS item_key, l.name, p.price, p.effective_date
	FROM linings l
	LEFT JOIN (
		SELECT DISTINCT ON (lining_id) lining_id, price, effective_date
		FROM lining_prices
		ORDER BY lining_id, effective_date DESC, id DESC
	) p ON p.lining_id = l.id
	ORDER BY l.type ASC
`

// Fabrics — ткани по code ASC, у каждой не больше одной (последней) цены.
func (r *PriceRepository) Fabrics(ctx context.Context) ([]domain.Fabric, error) {
	rows, err := r.load(ctx, fabricsQuery)
	if err != nil {
		return nil, fmt.Errorf("select fabrics: %w", err)
	}
	out := make([]domain.Fabric, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Fabric{ID: row.ID, Code: row.ItemKey, Name: row.Name, Prices: row.prices()})
	}
	return out, nil
}

// Linings — подкладки по type ASC, у каждой не больше одной (последней) цены.
func (r *PriceRepository) Linings(ctx context.Context) ([]domain.Lining, error) {
	rows, err := r.load(ctx, liningsQuery)
	if err != nil {
		return nil, fmt.Errorf("select linings: %w", err)
	}
	out := make([]domain.Lining, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Lining{ID: row.ID, Type: row.ItemKey, Name: row.Name, Prices: row.prices()})
	}
	return out, nil
}

func (r *PriceRepository) load(ctx context.Context, query string) ([]priceRow, error) {
	var rows []priceRow
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (row priceRow) prices() []domain.PriceEntry {
	if !row.Price.Valid || row.EffectiveDate == nil {
		return []domain.PriceEntry{}
	}
	return []domain.PriceEntry{{Price: row.Price.Decimal, EffectiveDate: row.EffectiveDate.UTC()}}
}
