package shopify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/shopspring/decimal"
)

// ordersQuery — первая страница заказов, новые сверху.
var ordersQuery = `query Orders($first: Int!) {
  orders(first: $first, sortKey: CREATED_AT, reverse: true) {
    pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
    nodes {
      id
      name
      createdAt
      updatedAt
      displayFinancialStatus
      displayFulfillmentStatus
      totalPriceSet { shopMoney { amount currencyCode } }
      customer { id displayName email }
      lineItems(first: ` + strconv.Itoa(domain.MaxLineItemsPerOrder) + `) {
        nodes {
          id
          title
          quantity
          customAttributes { key value }
          variant { id title price }
        }
      }
    }
  }
}`

type moneyV2 struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type orderNode struct {
	ID                       string    `json:"id"`
	Name                     string    `json:"name"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
	DisplayFinancialStatus   string    `json:"displayFinancialStatus"`
	DisplayFulfillmentStatus string    `json:"displayFulfillmentStatus"`
	TotalPriceSet            struct {
		ShopMoney moneyV2 `json:"shopMoney"`
	} `json:"totalPriceSet"`
	Customer *struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		Email       string `json:"email"`
	} `json:"customer"`
	LineItems struct {
		Nodes []lineItemNode `json:"nodes"`
	} `json:"lineItems"`
}

type lineItemNode struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Quantity         int                `json:"quantity"`
	CustomAttributes []domain.Attribute `json:"customAttributes"`
	Variant          *struct {
		ID    string  `json:"id"`
		Title string  `json:"title"`
		Price *string `json:"price"`
	} `json:"variant"`
}

type ordersData struct {
	Orders struct {
		PageInfo domain.PageCursor `json:"pageInfo"`
		Nodes    []orderNode       `json:"nodes"`
	} `json:"orders"`
}

// FetchOrders — первые first заказов магазина (sortKey CREATED_AT, reverse).
func (c *Client) FetchOrders(ctx context.Context, first int) (domain.Snapshot, error) {
	var data ordersData
	if err := c.do(ctx, "orders", ordersQuery, map[string]any{"first": first}, &data); err != nil {
		return domain.Snapshot{}, err
	}

	orders := make([]domain.OrderSnapshot, 0, len(data.Orders.Nodes))
	for i := range data.Orders.Nodes {
		order, err := toOrderSnapshot(&data.Orders.Nodes[i])
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("%w: %w", domain.ErrUpstreamRejected, err)
		}
		orders = append(orders, order)
	}
	return domain.Snapshot{Orders: orders, Cursor: data.Orders.PageInfo}, nil
}

func toOrderSnapshot(n *orderNode) (domain.OrderSnapshot, error) {
	amount, err := parseAmount(n.TotalPriceSet.ShopMoney.Amount)
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("order %s total: %w", n.ID, err)
	}

	order := domain.OrderSnapshot{
		ID:                n.ID,
		Name:              n.Name,
		CreatedAt:         n.CreatedAt.UTC(),
		UpdatedAt:         n.UpdatedAt.UTC(),
		TotalPrice:        domain.Money{Amount: amount, CurrencyCode: n.TotalPriceSet.ShopMoney.CurrencyCode},
		FulfillmentStatus: n.DisplayFulfillmentStatus,
		FinancialStatus:   n.DisplayFinancialStatus,
		LineItems:         make([]domain.LineItem, 0, len(n.LineItems.Nodes)),
	}
	if n.Customer != nil {
		order.Customer = &domain.CustomerRef{
			ID:          n.Customer.ID,
			DisplayName: n.Customer.DisplayName,
			Email:       n.Customer.Email,
		}
	}

	for _, li := range n.LineItems.Nodes {
		item := domain.LineItem{
			ID:               li.ID,
			Title:            li.Title,
			Quantity:         li.Quantity,
			CustomAttributes: li.CustomAttributes,
		}
		if item.CustomAttributes == nil {
			item.CustomAttributes = []domain.Attribute{}
		}
		if li.Variant != nil {
			item.VariantID = li.Variant.ID
			item.VariantTitle = li.Variant.Title
			if li.Variant.Price != nil {
				price, err := parseAmount(*li.Variant.Price)
				if err != nil {
					return domain.OrderSnapshot{}, fmt.Errorf("line item %s variant price: %w", li.ID, err)
				}
				item.VariantPrice = &price
			}
		}
		order.LineItems = append(order.LineItems, item)
	}
	return order, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
