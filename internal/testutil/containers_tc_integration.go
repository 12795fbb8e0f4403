//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Gunvolt24/shop_admin/internal/migrate"
	pgrepo "github.com/Gunvolt24/shop_admin/internal/repo/postgres"
)

const (
	postgresImage = "postgres:16-alpine"
	redpandaImage = "docker.redpanda.com/redpandadata/redpanda:v23.3.8"
)

var tcLogger = log.New(os.Stdout, "[tc] ", log.LstdFlags)

// lifecycleLog — одна строка на этап: какой контейнер (role) поднят, готов, удалён.
func lifecycleLog(role string) tc.ContainerLifecycleHooks {
	step := func(name string) tc.ContainerHook {
		return func(_ context.Context, c tc.Container) error {
			id := c.GetContainerID()
			if len(id) > 12 {
				id = id[:12]
			}
			tcLogger.Printf("%s %s id=%s", role, name, id)
			return nil
		}
	}
	return tc.ContainerLifecycleHooks{
		PostStarts:     []tc.ContainerHook{step("started")},
		PostReadies:    []tc.ContainerHook{step("ready")},
		PostTerminates: []tc.ContainerHook{step("terminated")},
	}
}

// PGContainer — Postgres со схемой сервиса (снимок заказов, сессии, прайсы) и пулом к нему.
type PGContainer struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	DSN       string
}

// StartPostgresTC — контейнер Postgres, накатанные встроенные миграции и пул сервиса.
// stop закрывает пул и удаляет контейнер.
func StartPostgresTC(ctx context.Context) (*PGContainer, func(context.Context) error, error) {
	pg, err := postgres.Run(ctx, postgresImage,
		tc.WithLifecycleHooks(lifecycleLog("postgres")),
		postgres.WithDatabase("shop_admin"),
		postgres.WithUsername("app"),
		postgres.WithPassword("app"),
		tc.WithWaitStrategy(
			// в образе postgres строка готовности печатается дважды: до и после init-скриптов
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run postgres: %w", err)
	}
	terminate := func(err error) (*PGContainer, func(context.Context) error, error) {
		_ = pg.Terminate(context.Background())
		return nil, nil, err
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return terminate(fmt.Errorf("postgres dsn: %w", err))
	}

	if err := migrate.Up(ctx, dsn, NopLogger{}); err != nil {
		return terminate(fmt.Errorf("apply migrations: %w", err))
	}

	pool, err := pgrepo.NewPool(ctx, dsn, 5)
	if err != nil {
		return terminate(err)
	}

	stop := func(c context.Context) error {
		pool.Close()
		return pg.Terminate(c)
	}
	return &PGContainer{Container: pg, DSN: dsn, Pool: pool}, stop, nil
}

// KafkaEnv — Redpanda, куда тесты публикуют ретранслированные вебхуки Shopify.
type KafkaEnv struct {
	Container *redpanda.Container
	Broker    string
}

// StartKafkaTC — одиночный брокер Redpanda с автосозданием топиков.
func StartKafkaTC(ctx context.Context) (*KafkaEnv, func(context.Context) error, error) {
	rp, err := redpanda.Run(ctx, redpandaImage,
		tc.WithLifecycleHooks(lifecycleLog("redpanda")),
		redpanda.WithAutoCreateTopics(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("run redpanda: %w", err)
	}

	broker, err := rp.KafkaSeedBroker(ctx)
	if err != nil {
		_ = tc.TerminateContainer(rp)
		return nil, nil, fmt.Errorf("seed broker: %w", err)
	}

	stop := func(_ context.Context) error { return tc.TerminateContainer(rp) }
	return &KafkaEnv{Container: rp, Broker: broker}, stop, nil
}

// WebhookTopic — отдельные топик и группа на тест, топик создан и виден в метаданных.
func (e *KafkaEnv) WebhookTopic(ctx context.Context, name string) (topic, group string, err error) {
	topic, group = UniqueTopicAndGroup("webhooks-" + name)
	if err := EnsureTopic(ctx, e.Broker, topic); err != nil {
		return "", "", fmt.Errorf("ensure topic %s: %w", topic, err)
	}
	return topic, group, nil
}
