package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxLineItemsPerOrder — сколько позиций заказа забираем из Shopify (и храним) на один заказ.
const MaxLineItemsPerOrder = 50

// Money — сумма с кодом валюты (Shopify MoneyV2).
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// Attribute — пользовательский атрибут позиции (key/value из корзины).
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CustomerRef — ссылка на покупателя заказа.
type CustomerRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// LineItem — позиция заказа.
type LineItem struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Quantity         int              `json:"quantity"`
	CustomAttributes []Attribute      `json:"customAttributes"`
	VariantID        string           `json:"variantId,omitempty"`
	VariantTitle     string           `json:"variantTitle,omitempty"`
	VariantPrice     *decimal.Decimal `json:"variantPrice,omitempty"`
}

// OrderSnapshot — заказ в том виде, в каком он лежит в кэше.
// После записи не меняется: поколение заменяется только целиком.
type OrderSnapshot struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
	TotalPrice        Money        `json:"totalPrice"`
	FulfillmentStatus string       `json:"fulfillmentStatus"`
	FinancialStatus   string       `json:"financialStatus"`
	Customer          *CustomerRef `json:"customer,omitempty"`
	LineItems         []LineItem   `json:"lineItems"`
}

// PageCursor — положение снимка в списке заказов Shopify.
type PageCursor struct {
	HasNextPage     bool   `json:"hasNextPage"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	StartCursor     string `json:"startCursor,omitempty"`
	EndCursor       string `json:"endCursor,omitempty"`
}

// Snapshot — одно поколение кэша: заказы + курсор страницы.
// Generation == 0 означает «кэш пуст».
type Snapshot struct {
	Generation  uint64          `json:"generation"`
	RefreshedAt time.Time       `json:"refreshedAt"`
	Orders      []OrderSnapshot `json:"orders"`
	Cursor      PageCursor      `json:"pageInfo"`
}

// Empty — true, если ни одного поколения ещё не записано.
func (s Snapshot) Empty() bool { return s.Generation == 0 }

// Clone — глубокая копия снимка, чтобы внешние изменения не отражались на кэше.
func (s Snapshot) Clone() Snapshot {
	out := s
	if s.Orders == nil {
		out.Orders = []OrderSnapshot{}
		return out
	}
	out.Orders = make([]OrderSnapshot, len(s.Orders))
	for i := range s.Orders {
		out.Orders[i] = s.Orders[i].Clone()
	}
	return out
}

// Clone — глубокая копия заказа.
func (o OrderSnapshot) Clone() OrderSnapshot {
	out := o
	if o.Customer != nil {
		c := *o.Customer
		out.Customer = &c
	}
	if o.LineItems != nil {
		out.LineItems = make([]LineItem, len(o.LineItems))
		for i, li := range o.LineItems {
			if li.CustomAttributes != nil {
				li.CustomAttributes = append([]Attribute(nil), li.CustomAttributes...)
			}
			if li.VariantPrice != nil {
				p := *li.VariantPrice
				li.VariantPrice = &p
			}
			out.LineItems[i] = li
		}
	}
	return out
}

// RefreshResult — итог успешного обновления кэша.
type RefreshResult struct {
	OrdersCount int
	Generation  uint64
}
