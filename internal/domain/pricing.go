package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceEntry — цена, действующая с EffectiveDate.
type PriceEntry struct {
	Price         decimal.Decimal `json:"price"`
	EffectiveDate time.Time       `json:"effectiveDate"`
}

// Fabric — ткань; Prices содержит не больше одной (последней) цены.
type Fabric struct {
	ID     int64        `json:"id"`
	Code   string       `json:"code"`
	Name   string       `json:"name"`
	Prices []PriceEntry `json:"prices"`
}

// Lining — подкладка; Prices содержит не больше одной (последней) цены.
type Lining struct {
	ID     int64        `json:"id"`
	Type   string       `json:"type"`
	Name   string       `json:"name"`
	Prices []PriceEntry `json:"prices"`
}
