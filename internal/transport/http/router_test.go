package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports/mocks"
	rest "github.com/Gunvolt24/shop_admin/internal/transport/http"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
)

func init() { gin.SetMode(gin.TestMode) }

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

type fixture struct {
	orders *mocks.MockOrderCacheService
	prices *mocks.MockPriceService
	router *gin.Engine
}

func newFixture(t *testing.T, opts rest.RouterOptions) fixture {
	ctrl := gomock.NewController(t)
	orders := mocks.NewMockOrderCacheService(ctrl)
	prices := mocks.NewMockPriceService(ctrl)

	h := rest.NewHandler(orders, prices, noopLogger{}, time.Second, 20, 250)
	return fixture{orders: orders, prices: prices, router: rest.NewRouter(h, opts)}
}

func (f fixture) do(method, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestRefresh_OK_DefaultPageSize(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().Refresh(gomock.Any(), 20).
		Return(domain.RefreshResult{OrdersCount: 20, Generation: 3}, nil)

	w := f.do(http.MethodPost, "/api/orders/refresh")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.EqualValues(t, 20, body["ordersCount"])
	require.NotEmpty(t, body["message"])
}

func TestRefresh_OK_ZeroOrdersStillReportsCount(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().Refresh(gomock.Any(), 5).Return(domain.RefreshResult{Generation: 1}, nil)

	w := f.do(http.MethodPost, "/api/orders/refresh?first=5")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "ordersCount")
	require.EqualValues(t, 0, body["ordersCount"])
}

func TestRefresh_BadFirst_500WithoutUpstream(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})

	for _, q := range []string{"first=abc", "first=0", "first=251"} {
		w := f.do(http.MethodPost, "/api/orders/refresh?"+q)
		require.Equal(t, http.StatusInternalServerError, w.Code, q)
		body := decode(t, w)
		require.Equal(t, false, body["success"])
		require.NotContains(t, body, "ordersCount")
		require.Contains(t, body["message"], "Invalid request")
	}
}

func TestRefresh_Failures_500(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unavailable", fmt.Errorf("%w: timeout", domain.ErrUpstreamUnavailable), "unavailable"},
		{"rejected", fmt.Errorf("%w: Access denied", domain.ErrUpstreamRejected), "Access denied"},
		{"partial write", fmt.Errorf("%w: conn reset", domain.ErrPartialWrite), "previous data kept"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, rest.RouterOptions{})
			f.orders.EXPECT().Refresh(gomock.Any(), 20).Return(domain.RefreshResult{}, tt.err)

			w := f.do(http.MethodPost, "/api/orders/refresh")

			require.Equal(t, http.StatusInternalServerError, w.Code)
			body := decode(t, w)
			require.Equal(t, false, body["success"])
			require.Contains(t, body["message"], tt.want)
		})
	}
}

func TestRefresh_WrongMethod_405JSON(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})

	w := f.do(http.MethodGet, "/api/orders/refresh")

	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.Equal(t, "method not allowed", decode(t, w)["error"])
}

func TestListOrders_ReturnsSnapshot(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	snap := domain.Snapshot{
		Generation:  4,
		RefreshedAt: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC),
		Orders: []domain.OrderSnapshot{{
			ID: "gid://shopify/Order/1", Name: "#1001",
			TotalPrice: domain.Money{Amount: decimal.RequireFromString("10.5"), CurrencyCode: "EUR"},
			LineItems:  []domain.LineItem{},
		}},
		Cursor: domain.PageCursor{HasNextPage: true, EndCursor: "c1"},
	}
	f.orders.EXPECT().Snapshot(gomock.Any()).Return(snap)

	w := f.do(http.MethodGet, "/api/orders")

	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, uint64(4), got.Generation)
	require.Len(t, got.Orders, 1)
	require.True(t, got.Orders[0].TotalPrice.Amount.Equal(decimal.RequireFromString("10.5")))
	require.True(t, got.Cursor.HasNextPage)
}

func TestListOrders_Empty(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().Snapshot(gomock.Any()).Return(domain.Snapshot{Orders: []domain.OrderSnapshot{}})

	w := f.do(http.MethodGet, "/api/orders")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{}, decode(t, w)["orders"])
}

func TestComments_OK(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().OrderComments(gomock.Any(), "gid://shopify/Order/1").
		Return([]domain.Comment{{ID: "c1", Message: "call the client"}}, nil)

	w := f.do(http.MethodGet, "/api/orders/comments?orderId=gid://shopify/Order/1")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["comments"], 1)
	require.NotContains(t, body, "error")
}

func TestComments_NoOrderID_EmptyList(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().OrderComments(gomock.Any(), "").Return([]domain.Comment{}, nil)

	w := f.do(http.MethodGet, "/api/orders/comments")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{}, decode(t, w)["comments"])
}

func TestComments_Error_200WithEmptyList(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().OrderComments(gomock.Any(), "x").
		Return(nil, fmt.Errorf("%w: 502", domain.ErrUpstreamUnavailable))

	w := f.do(http.MethodGet, "/api/orders/comments?orderId=x")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, []any{}, body["comments"])
	require.Contains(t, body["error"], "upstream unavailable")
}

func TestFabricPrices(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.prices.EXPECT().FabricPrices(gomock.Any()).Return([]domain.Fabric{
		{ID: 1, Code: "F-100", Name: "Cotton", Prices: []domain.PriceEntry{{Price: decimal.RequireFromString("7")}}},
	}, nil)

	w := f.do(http.MethodGet, "/api/prices/fabrics")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Len(t, body["fabrics"], 1)
	require.NotContains(t, body, "error")
}

func TestPrices_Error_200WithEmptyList(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.prices.EXPECT().FabricPrices(gomock.Any()).Return(nil, errors.New("db down"))
	f.prices.EXPECT().LiningPrices(gomock.Any()).Return(nil, errors.New("db down"))

	w := f.do(http.MethodGet, "/api/prices/fabrics")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Equal(t, []any{}, body["fabrics"])
	require.Equal(t, "db down", body["error"])

	w = f.do(http.MethodGet, "/api/prices/linings")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	require.Equal(t, []any{}, body["linings"])
	require.Equal(t, "db down", body["error"])
}

func TestLiningPrices(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.prices.EXPECT().LiningPrices(gomock.Any()).Return([]domain.Lining{
		{ID: 1, Type: "acetate", Name: "Acetate", Prices: []domain.PriceEntry{}},
		{ID: 2, Type: "silk", Name: "Silk", Prices: []domain.PriceEntry{}},
	}, nil)

	w := f.do(http.MethodGet, "/api/prices/linings")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode(t, w)["linings"], 2)
}

func TestAuth_RequiredWhenVerifierSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockSessionVerifier(ctrl)
	f := newFixture(t, rest.RouterOptions{Verifier: verifier})

	// без токена — 401, сервис не вызывается
	w := f.do(http.MethodGet, "/api/orders")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// с токеном — магазин попадает в контекст
	verifier.EXPECT().Verify(gomock.Any(), "tok").Return("demo.myshopify.com", nil)
	f.orders.EXPECT().Snapshot(gomock.Any()).DoAndReturn(func(ctx context.Context) domain.Snapshot {
		shop, ok := ctxmeta.ShopFromContext(ctx)
		require.True(t, ok)
		require.Equal(t, "demo.myshopify.com", shop)
		return domain.Snapshot{Orders: []domain.OrderSnapshot{}}
	})
	w = f.do(http.MethodGet, "/api/orders", "Authorization", "Bearer tok")
	require.Equal(t, http.StatusOK, w.Code)

	// служебные ручки без авторизации
	w = f.do(http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pong", w.Body.String())
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{Readiness: func(context.Context) error { return nil }})
	w := f.do(http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	f = newFixture(t, rest.RouterOptions{Readiness: func(context.Context) error { return errors.New("db down") }})
	w = f.do(http.MethodGet, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "db down", decode(t, w)["error"])
}

func TestRequestID_EchoedAndMetricsServed(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	f.orders.EXPECT().Snapshot(gomock.Any()).Return(domain.Snapshot{Orders: []domain.OrderSnapshot{}})

	w := f.do(http.MethodGet, "/api/orders", "X-Request-ID", "rid-1")
	require.Equal(t, "rid-1", w.Header().Get("X-Request-ID"))

	w = f.do(http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestUnknownRoute_404JSON(t *testing.T) {
	f := newFixture(t, rest.RouterOptions{})
	w := f.do(http.MethodGet, "/nope")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "not found", decode(t, w)["error"])
}
