package kafka

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/kafka/mocks"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// runAsync запускает Consumer.Run в отдельной горутине и возвращает канал с ошибкой.
func runAsync(ctx context.Context, c *Consumer) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	return errCh
}

func newTestConsumer(r reader, s refresher) *Consumer {
	return &Consumer{
		reader: r, service: s, log: nopLogger{},
		pageSize:       20,
		processTimeout: 30 * time.Millisecond,
		retryInitial:   5 * time.Millisecond,
		retryMax:       10 * time.Millisecond,
		jitterRand:     rand.New(rand.NewSource(1)),
	}
}

func eventMessage(offset int64, topic, shop string) kafka.Message {
	return kafka.Message{
		Offset: offset,
		Value:  []byte(fmt.Sprintf(`{"topic":%q,"shop_domain":%q}`, topic, shop)),
	}
}

// blockUntilCancel — второй FetchMessage ждёт отмены контекста.
func blockUntilCancel(r *mocks.Mockreader) {
	r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (kafka.Message, error) {
			<-ctx.Done()
			return kafka.Message{}, ctx.Err()
		})
}

// runOnce — запустить цикл, дать обработать первое сообщение и остановить.
func runOnce(t *testing.T, c *Consumer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := runAsync(ctx, c)

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for Run to stop")
	}
}

func setupReader(ctrl *gomock.Controller) *mocks.Mockreader {
	r := mocks.NewMockreader(ctrl)
	rc := kafka.ReaderConfig{Topic: "shopify.webhooks", GroupID: "g1", Brokers: []string{"b:9092"}}
	r.EXPECT().Config().Return(rc).AnyTimes()
	return r
}

// Событие orders/* → Refresh с магазином из события → коммит
func TestRun_OrdersEvent_RefreshesAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().FetchMessage(gomock.Any()).
		Return(eventMessage(1, "orders/create", "Demo.myshopify.com"), nil)
	s.EXPECT().Refresh(gomock.Any(), 20).
		DoAndReturn(func(ctx context.Context, _ int) (domain.RefreshResult, error) {
			shop, ok := ctxmeta.ShopFromContext(ctx)
			require.True(t, ok)
			require.Equal(t, "demo.myshopify.com", shop)
			return domain.RefreshResult{OrdersCount: 3, Generation: 2}, nil
		})
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

// Топик и магазин могут прийти только в заголовках
func TestRun_TopicFromHeaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	msg := kafka.Message{
		Offset: 4,
		Value:  []byte(`{"id":1}`),
		Headers: []kafka.Header{
			{Key: "X-Shopify-Topic", Value: []byte("orders/updated")},
			{Key: "X-Shopify-Shop-Domain", Value: []byte("demo.myshopify.com")},
			{Key: "X-Shopify-Webhook-Id", Value: []byte("wh-1")},
		},
	}
	r.EXPECT().FetchMessage(gomock.Any()).Return(msg, nil)
	s.EXPECT().Refresh(gomock.Any(), 20).
		DoAndReturn(func(ctx context.Context, _ int) (domain.RefreshResult, error) {
			rid, _ := ctxmeta.RequestIDFromContext(ctx)
			require.Equal(t, "wh-1", rid)
			return domain.RefreshResult{}, nil
		})
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

// Событие не про заказы → без Refresh, но с коммитом
func TestRun_NonOrdersEvent_SkipsAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().FetchMessage(gomock.Any()).
		Return(eventMessage(2, "products/update", "demo.myshopify.com"), nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

// Невалидное сообщение => тоже коммитим (чтобы не ретраить мусор)
func TestRun_InvalidPayload_Commits(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().FetchMessage(gomock.Any()).
		Return(kafka.Message{Offset: 7, Value: []byte("bad")}, nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

// Событие с доменом вне *.myshopify.com → Refresh не вызывается, оффсет коммитится
func TestRun_ForeignShopDomain_SkipsAndCommits(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl) // Refresh без EXPECT

	r.EXPECT().FetchMessage(gomock.Any()).
		Return(eventMessage(9, "orders/create", "attacker.example"), nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

// Отказ Shopify / ошибка валидации → коммит без повторов
func TestRun_RejectedRefresh_Commits(t *testing.T) {
	for _, sentinel := range []error{domain.ErrUpstreamRejected, domain.ErrValidation} {
		sentinel := sentinel
		t.Run(sentinel.Error(), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			r := setupReader(ctrl)
			s := mocks.NewMockrefresher(ctrl)

			r.EXPECT().FetchMessage(gomock.Any()).
				Return(eventMessage(8, "orders/paid", "demo.myshopify.com"), nil)
			s.EXPECT().Refresh(gomock.Any(), 20).
				Return(domain.RefreshResult{}, fmt.Errorf("%w: access denied", sentinel))
			r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(nil)
			blockUntilCancel(r)

			runOnce(t, newTestConsumer(r, s))
		})
	}
}

// Временная ошибка (upstream/БД/таймаут) => НЕ коммитим
func TestRun_TemporaryFailure_NoCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().FetchMessage(gomock.Any()).
		Return(eventMessage(2, "orders/create", "demo.myshopify.com"), nil)
	s.EXPECT().Refresh(gomock.Any(), 20).
		Return(domain.RefreshResult{}, fmt.Errorf("%w: 503", domain.ErrUpstreamUnavailable))
	// CommitMessages специально не ожидаем: лишний вызов уронит тест.
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

// Ошибки FetchMessage ретраятся; по отмене контекста — корректный выход
func TestRun_FetchError_RetryThenStopOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().FetchMessage(gomock.Any()).
		DoAndReturn(func(_ context.Context) (kafka.Message, error) {
			return kafka.Message{}, errors.New("broker error")
		}).AnyTimes()

	c := newTestConsumer(r, s)

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, c.Run(ctx), context.DeadlineExceeded)
}

// CommitMessages вернул ошибку — только предупреждение; цикл живёт дальше
func TestRun_CommitWarnOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := setupReader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().FetchMessage(gomock.Any()).
		Return(eventMessage(3, "orders/create", "demo.myshopify.com"), nil)
	s.EXPECT().Refresh(gomock.Any(), 20).Return(domain.RefreshResult{}, nil)
	r.EXPECT().CommitMessages(gomock.Any(), gomock.Any()).Return(errors.New("temporary"))
	blockUntilCancel(r)

	runOnce(t, newTestConsumer(r, s))
}

func TestClose_DelegatesToReaderOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockreader(ctrl)
	s := mocks.NewMockrefresher(ctrl)

	r.EXPECT().Close().Return(nil).Times(1)

	c := newTestConsumer(r, s)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestDecodeEvent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		msg       kafka.Message
		wantTopic string
		wantShop  string
		wantErr   bool
	}{
		{"body", eventMessage(0, "orders/create", " Shop.myshopify.com "), "orders/create", "shop.myshopify.com", false},
		{"empty topic", kafka.Message{Value: []byte(`{"shop_domain":"a"}`)}, "", "", true},
		{"not json", kafka.Message{Value: []byte(`{`)}, "", "", true},
		{"shop from header", kafka.Message{
			Value:   []byte(`{"topic":"orders/paid"}`),
			Headers: []kafka.Header{{Key: "X-Shopify-Shop-Domain", Value: []byte("Demo.myshopify.com")}},
		}, "orders/paid", "demo.myshopify.com", false},
		{"foreign shop host", eventMessage(0, "orders/create", "attacker.example"), "", "", true},
		{"foreign shop header", kafka.Message{
			Value:   []byte(`{"topic":"orders/paid"}`),
			Headers: []kafka.Header{{Key: "X-Shopify-Shop-Domain", Value: []byte("demo.myshopify.com.evil.io")}},
		}, "", "", true},
		{"body wins over header", kafka.Message{
			Value:   []byte(`{"topic":"orders/paid"}`),
			Headers: []kafka.Header{{Key: "x-shopify-topic", Value: []byte("products/create")}},
		}, "orders/paid", "", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ev, _, err := decodeEvent(&tt.msg)
			if tt.wantErr {
				require.ErrorIs(t, err, errInvalidEvent)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantTopic, ev.Topic)
			require.Equal(t, tt.wantShop, ev.ShopDomain)
		})
	}
}

func TestNextBackoffAndJitter(t *testing.T) {
	c := newTestConsumer(nil, nil)

	require.Equal(t, 10*time.Millisecond, c.nextBackoff(5*time.Millisecond))
	require.Equal(t, 10*time.Millisecond, c.nextBackoff(8*time.Millisecond))

	for i := 0; i < 100; i++ {
		d := c.withJitterEqual(10 * time.Millisecond)
		require.GreaterOrEqual(t, d, 5*time.Millisecond)
		require.LessOrEqual(t, d, 10*time.Millisecond)
	}
	require.Zero(t, c.withJitterEqual(0))
}
