package shopify

import "context"

// ShopInfo — минимальные сведения о магазине (для диагностики токена).
type ShopInfo struct {
	Name            string `json:"name"`
	MyshopifyDomain string `json:"myshopifyDomain"`
	CurrencyCode    string `json:"currencyCode"`
}

const shopQuery = `query Shop { shop { name myshopifyDomain currencyCode } }`

// Shop — запрос сведений о магазине; удобная проверка, что токен рабочий.
func (c *Client) Shop(ctx context.Context) (ShopInfo, error) {
	var data struct {
		Shop ShopInfo `json:"shop"`
	}
	if err := c.do(ctx, "shop", shopQuery, nil, &data); err != nil {
		return ShopInfo{}, err
	}
	return data.Shop, nil
}
