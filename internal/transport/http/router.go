package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/httpx"
)

// Readiness — проверка готовности зависимостей (БД) для /healthz.
type Readiness func(ctx context.Context) error

// RouterOptions — необязательные части роутера.
type RouterOptions struct {
	// Verifier == nil — авторизация /api выключена (локальная разработка).
	Verifier ports.SessionVerifier
	// OtelServiceName == "" — otelgin не подключается.
	OtelServiceName string
	Readiness       Readiness
}

// NewRouter — gin-роутер: служебные ручки + /api под session token.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	if opts.OtelServiceName != "" {
		r.Use(otelgin.Middleware(opts.OtelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", healthz(opts.Readiness))

	api := r.Group("/api")
	api.Use(httpx.SessionAuth(opts.Verifier, h.log))
	{
		api.POST("/orders/refresh", h.refreshOrders)
		api.GET("/orders", h.listOrders)
		api.GET("/orders/comments", h.orderComments)
		api.GET("/prices/fabrics", h.fabricPrices)
		api.GET("/prices/linings", h.liningPrices)
	}

	return r
}

func healthz(ready Readiness) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
