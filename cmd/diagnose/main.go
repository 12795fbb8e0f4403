// Утилита ручной диагностики: БД, схема, снимок заказов, сессия магазина, доступ к Shopify.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/Gunvolt24/shop_admin/config"
	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/migrate"
	"github.com/Gunvolt24/shop_admin/internal/repo/postgres"
	"github.com/Gunvolt24/shop_admin/internal/shopify"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_admin/pkg/logger"
	"github.com/Gunvolt24/shop_admin/pkg/validate"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run возвращает код выхода; отложенные закрытия пула и логгера отрабатывают до os.Exit.
func run(args []string) int {
	fs := flag.NewFlagSet("diagnose", flag.ContinueOnError)
	shop := fs.String("shop", "", "shop domain (*.myshopify.com); default ADMIN_SHOPIFY_SHOP")
	saveToken := fs.String("save-token", "", "store this offline access token for -shop")
	scope := fs.String("scope", "", "scopes saved together with -save-token")
	reset := fs.Bool("reset", false, "clear the stored order snapshot")
	validateFile := fs.String("validate", "", "validate an exported snapshot (.json or .jsonl) and exit")
	formatStr := fs.String("format", "auto", "format for -validate: auto|json|jsonl")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	_ = godotenv.Load(".env.local")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Проверка выгрузки не требует БД.
	if *validateFile != "" {
		summary, err := validate.ValidateFile(ctx, validate.NewSnapshotValidator(), *validateFile,
			validate.InputFormat(*formatStr), os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
			return 1
		}
		fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		return fail("config: %v", err)
	}
	if *shop == "" {
		*shop = cfg.Shopify.Shop
	}
	if strings.TrimSpace(*shop) != "" {
		if *shop, err = domain.NormalizeShopDomain(*shop); err != nil {
			return fail("shop: %v", err)
		}
	}

	logg, cleanupLogger, err := logger.NewZapLogger(false)
	if err != nil {
		return fail("logger: %v", err)
	}
	defer func() { _ = cleanupLogger() }()

	// 1) БД и схема
	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN, 2)
	if err != nil {
		return fail("postgres: %v", err)
	}
	defer pool.Close()
	fmt.Println("postgres: ok")

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()
	if v, vErr := migrate.Version(ctx, sqlDB); vErr != nil {
		fmt.Printf("schema: unknown (%v)\n", vErr)
	} else {
		fmt.Printf("schema: version %d\n", v)
	}

	// 2) Снимок заказов
	snapshots := postgres.NewSnapshotRepository(pool)
	if *reset {
		if err := snapshots.Clear(ctx); err != nil {
			return fail("reset snapshot: %v", err)
		}
		fmt.Println("snapshot: cleared")
	}
	stats, err := snapshots.Stats(ctx)
	switch {
	case err != nil:
		fmt.Printf("snapshot: error %v\n", err)
	case stats.Generation == 0:
		fmt.Println("snapshot: empty")
	default:
		fmt.Printf("snapshot: generation=%d orders=%d line_items=%d refreshed_at=%s\n",
			stats.Generation, stats.OrdersCount, stats.LineItems, stats.RefreshedAt.Format(time.RFC3339))
	}

	if *shop == "" {
		fmt.Println("shop: not set, skipping session and Shopify checks")
		return 0
	}

	// 3) Сессия магазина
	sessions := postgres.NewSessionRepository(pool)
	tokens := shopify.NewTokenSource(sessions, 1, time.Minute, cfg.Shopify.Shop, cfg.Shopify.AccessToken, logg)
	if *saveToken != "" {
		if err := tokens.Save(ctx, &domain.ShopSession{Shop: *shop, AccessToken: *saveToken, Scope: *scope}); err != nil {
			return fail("save token: %v", err)
		}
		fmt.Printf("session: saved for %s\n", *shop)
	}
	sess, err := sessions.Get(ctx, *shop)
	switch {
	case err != nil:
		fmt.Printf("session: error %v\n", err)
	case sess == nil && cfg.Shopify.AccessToken != "" && strings.EqualFold(*shop, cfg.Shopify.Shop):
		fmt.Printf("session: none for %s, fallback token from config will be used\n", *shop)
	case sess == nil:
		fmt.Printf("session: none for %s\n", *shop)
	default:
		fmt.Printf("session: %s scope=%q updated_at=%s\n", sess.Shop, sess.Scope, sess.UpdatedAt.Format(time.RFC3339))
	}

	// 4) Доступ к Admin API
	client := shopify.NewClient(shopify.Config{
		Shop:       *shop,
		APIVersion: cfg.Shopify.APIVersion,
		Endpoint:   cfg.Shopify.Endpoint,
		Timeout:    cfg.Shopify.Timeout,
	}, tokens, logg, nil)

	info, err := client.Shop(ctxmeta.WithShop(ctx, *shop))
	if err != nil {
		return fail("shopify: %v", err)
	}
	fmt.Printf("shopify: ok name=%q domain=%s currency=%s\n", info.Name, info.MyshopifyDomain, info.CurrencyCode)
	return 0
}

func fail(format string, args ...any) int {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return 1
}
