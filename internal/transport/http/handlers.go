package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/httpx"
)

// Handler — HTTP-ручки админки.
type Handler struct {
	orders          ports.OrderCacheService
	prices          ports.PriceService
	log             ports.Logger
	timeout         time.Duration
	defaultPageSize int
	maxPageSize     int
}

// NewHandler — DI-конструктор. timeout <= 0 — без собственного таймаута.
func NewHandler(
	orders ports.OrderCacheService,
	prices ports.PriceService,
	log ports.Logger,
	timeout time.Duration,
	defaultPageSize, maxPageSize int,
) *Handler {
	if maxPageSize <= 0 {
		maxPageSize = 250
	}
	if defaultPageSize <= 0 || defaultPageSize > maxPageSize {
		defaultPageSize = httpx.ClampInt(20, 1, maxPageSize)
	}
	return &Handler{
		orders:          orders,
		prices:          prices,
		log:             log,
		timeout:         timeout,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(c.Request.Context(), h.timeout)
	}
	return context.WithCancel(c.Request.Context())
}

type refreshResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	OrdersCount *int   `json:"ordersCount,omitempty"`
}

// refreshOrders — POST /api/orders/refresh[?first=N].
func (h *Handler) refreshOrders(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	pageSize, err := httpx.ParsePageSize(c, "first", h.defaultPageSize, h.maxPageSize)
	if err != nil {
		h.log.Warnf(ctx, "refresh rejected: %v", err)
		c.JSON(http.StatusInternalServerError, refreshResponse{Success: false, Message: refreshMessage(err)})
		return
	}

	res, err := h.orders.Refresh(ctx, pageSize)
	if err != nil {
		h.log.Errorf(ctx, "refresh failed first=%d err=%v", pageSize, err)
		c.JSON(http.StatusInternalServerError, refreshResponse{Success: false, Message: refreshMessage(err)})
		return
	}

	count := res.OrdersCount
	c.JSON(http.StatusOK, refreshResponse{Success: true, Message: "Order cache refreshed", OrdersCount: &count})
}

// refreshMessage — текст ошибки для UI: класс ошибки + причина.
func refreshMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request: " + err.Error()
	case errors.Is(err, domain.ErrUpstreamRejected):
		return "Shopify rejected the request: " + err.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "Shopify is unavailable: " + err.Error()
	case errors.Is(err, domain.ErrPartialWrite):
		return "Failed to store orders, previous data kept: " + err.Error()
	default:
		return "Failed to refresh orders: " + err.Error()
	}
}

// listOrders — GET /api/orders: последнее записанное поколение.
func (h *Handler) listOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.orders.Snapshot(c.Request.Context()))
}

// orderComments — GET /api/orders/comments?orderId=.
func (h *Handler) orderComments(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	orderID := c.Query("orderId")
	comments, err := h.orders.OrderComments(ctx, orderID)
	if err != nil {
		h.log.Warnf(ctx, "order comments failed order=%s err=%v", orderID, err)
		c.JSON(http.StatusOK, gin.H{"comments": []domain.Comment{}, "error": err.Error()})
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// fabricPrices — GET /api/prices/fabrics; при ошибке пустой список + error, всегда 200.
func (h *Handler) fabricPrices(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	fabrics, err := h.prices.FabricPrices(ctx)
	if err != nil {
		h.log.Errorf(ctx, "fabric prices failed err=%v", err)
		c.JSON(http.StatusOK, gin.H{"fabrics": []domain.Fabric{}, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fabrics": fabrics})
}

// liningPrices — GET /api/prices/linings.
func (h *Handler) liningPrices(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	linings, err := h.prices.LiningPrices(ctx)
	if err != nil {
		h.log.Errorf(ctx, "lining prices failed err=%v", err)
		c.JSON(http.StatusOK, gin.H{"linings": []domain.Lining{}, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"linings": linings})
}
