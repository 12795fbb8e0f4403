package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/Gunvolt24/shop_admin/pkg/ctxmeta"
	"github.com/Gunvolt24/shop_admin/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
)

var _ ports.OrderCacheService = (*OrderCacheService)(nil)

// RefreshOptions — ограничения обновления снимка.
type RefreshOptions struct {
	Shop           string        // магазин инстанса: запросы от имени других магазинов отклоняются
	MaxPageSize    int           // верхняя граница first у Shopify
	FetchTimeout   time.Duration // таймаут запроса к upstream
	CommitAttempts uint64        // попыток записи поколения (вся транзакция целиком)
	CommitBackoff  time.Duration // базовая пауза экспоненциального backoff
}

func (o RefreshOptions) withDefaults() RefreshOptions {
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = 250
	}
	if o.CommitAttempts == 0 {
		o.CommitAttempts = 1
	}
	if o.CommitBackoff <= 0 {
		o.CommitBackoff = 100 * time.Millisecond
	}
	o.Shop = strings.ToLower(strings.TrimSpace(o.Shop))
	return o
}

// OrderCacheService — обновление и чтение снимка заказов, комментарии к заказу.
// Владеет снимком единолично: пишет только Refresh, обновления идут строго по одному.
type OrderCacheService struct {
	source    ports.OrderSource
	comments  ports.CommentSource
	store     ports.SnapshotStore
	cache     ports.SnapshotCache
	validator ports.SnapshotValidator
	log       ports.Logger
	opts      RefreshOptions

	mu        sync.Mutex // не более одного обновления одновременно
	published bool       // Refresh уже публиковал поколение; под mu
	group     singleflight.Group
	now       func() time.Time
}

// NewOrderCacheService — DI-конструктор.
func NewOrderCacheService(
	source ports.OrderSource,
	comments ports.CommentSource,
	store ports.SnapshotStore,
	cache ports.SnapshotCache,
	validator ports.SnapshotValidator,
	log ports.Logger,
	opts RefreshOptions,
) *OrderCacheService {
	return &OrderCacheService{
		source:    source,
		comments:  comments,
		store:     store,
		cache:     cache,
		validator: validator,
		log:       log,
		opts:      opts.withDefaults(),
		now:       time.Now,
	}
}

// Refresh — забрать первые pageSize заказов (новые сверху), атомарно заменить ими
// снимок в хранилище и опубликовать новое поколение.
// Одинаковые параллельные запросы склеиваются; разные выполняются по очереди.
func (s *OrderCacheService) Refresh(ctx context.Context, pageSize int) (domain.RefreshResult, error) {
	if pageSize < 1 || pageSize > s.opts.MaxPageSize {
		metrics.RefreshTotal.WithLabelValues("validation").Inc()
		return domain.RefreshResult{}, fmt.Errorf("%w: page size must be between 1 and %d, got %d",
			domain.ErrValidation, s.opts.MaxPageSize, pageSize)
	}
	if err := s.checkShop(ctx); err != nil {
		metrics.RefreshTotal.WithLabelValues("validation").Inc()
		s.log.Warnf(ctx, "refresh rejected: %v", err)
		return domain.RefreshResult{}, err
	}

	key := "orders-cache:" + s.opts.Shop + ":" + strconv.Itoa(pageSize)
	v, err, shared := s.group.Do(key, func() (any, error) {
		// уход инициатора не обрывает запись: поколение пишется целиком или не пишется
		return s.refresh(context.WithoutCancel(ctx), pageSize)
	})
	if shared {
		s.log.Infof(ctx, "refresh coalesced key=%s", key)
	}
	if err != nil {
		return domain.RefreshResult{}, err
	}
	return v.(domain.RefreshResult), nil
}

func (s *OrderCacheService) refresh(ctx context.Context, pageSize int) (res domain.RefreshResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.RefreshDuration.Observe(time.Since(start).Seconds())
		metrics.RefreshTotal.WithLabelValues(refreshResult(err)).Inc()
	}()

	snap, err := s.fetch(ctx, pageSize)
	if err != nil {
		s.log.Warnf(ctx, "orders fetch failed first=%d err=%v", pageSize, err)
		return domain.RefreshResult{}, err
	}

	if vErr := s.validator.Validate(ctx, snap, pageSize); vErr != nil {
		s.log.Warnf(ctx, "upstream snapshot rejected err=%v", vErr)
		return domain.RefreshResult{}, fmt.Errorf("%w: %w", domain.ErrUpstreamRejected, vErr)
	}
	snap.RefreshedAt = s.now().UTC()

	generation, err := s.commit(ctx, snap)
	if err != nil {
		s.log.Errorf(ctx, "snapshot write failed orders=%d err=%v", len(snap.Orders), err)
		return domain.RefreshResult{}, fmt.Errorf("%w: %w", domain.ErrPartialWrite, err)
	}
	snap.Generation = generation
	// писатель один, поэтому публикуем без сравнения поколений: после сброса хранилища нумерация начинается заново
	s.cache.Publish(ctx, snap)
	s.published = true

	s.log.Infof(ctx, "orders snapshot refreshed generation=%d orders=%d took=%s",
		generation, len(snap.Orders), time.Since(start))
	return domain.RefreshResult{OrdersCount: len(snap.Orders), Generation: generation}, nil
}

// fetch — запрос к upstream с таймаутом; любая ошибка без классификации считается недоступностью.
func (s *OrderCacheService) fetch(ctx context.Context, pageSize int) (domain.Snapshot, error) {
	fetchCtx, cancel := s.withFetchTimeout(ctx)
	defer cancel()

	snap, err := s.source.FetchOrders(fetchCtx, pageSize)
	if err != nil {
		return domain.Snapshot{}, classifyUpstream(err)
	}
	return snap, nil
}

// commit — Replace как одна единица повтора: транзакция либо проходит целиком, либо повторяется целиком.
func (s *OrderCacheService) commit(ctx context.Context, snap domain.Snapshot) (uint64, error) {
	var generation uint64
	backoff := retry.WithMaxRetries(s.opts.CommitAttempts-1, retry.NewExponential(s.opts.CommitBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		gen, err := s.store.Replace(ctx, snap)
		if err != nil {
			metrics.SnapshotWriteFailures.Inc()
			if ctx.Err() != nil {
				return err
			}
			s.log.Warnf(ctx, "snapshot write attempt failed err=%v", err)
			return retry.RetryableError(err)
		}
		generation = gen
		return nil
	})
	return generation, err
}

// Snapshot — последнее полностью записанное поколение (копия) или пустой снимок.
// Чужому магазину снимок не отдаётся.
func (s *OrderCacheService) Snapshot(ctx context.Context) domain.Snapshot {
	if err := s.checkShop(ctx); err != nil {
		s.log.Warnf(ctx, "snapshot read rejected: %v", err)
		return domain.Snapshot{Orders: []domain.OrderSnapshot{}}
	}
	return s.cache.Load(ctx)
}

// WarmUp — поднять в память поколение из хранилища (при старте процесса).
// Если Refresh уже успел опубликовать поколение, прогрев его не перетирает.
func (s *OrderCacheService) WarmUp(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	snap, err := s.store.Load(ctx)
	if err != nil {
		s.log.Errorf(ctx, "snapshot load failed err=%v", err)
		return err
	}
	if snap.Empty() {
		s.log.Infof(ctx, "snapshot warm-up skipped: store is empty")
		return nil
	}
	if s.published {
		s.log.Infof(ctx, "snapshot warm-up skipped: generation already published")
		return nil
	}
	s.cache.Publish(ctx, snap)
	s.log.Infof(ctx, "snapshot warmed generation=%d orders=%d in %s",
		snap.Generation, len(snap.Orders), time.Since(start))
	return nil
}

// OrderComments — комментарии таймлайна заказа. Пустой orderID — пустой список без запроса к upstream.
func (s *OrderCacheService) OrderComments(ctx context.Context, orderID string) ([]domain.Comment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return []domain.Comment{}, nil
	}
	if err := s.checkShop(ctx); err != nil {
		return []domain.Comment{}, err
	}

	fetchCtx, cancel := s.withFetchTimeout(ctx)
	defer cancel()

	comments, err := s.comments.OrderComments(fetchCtx, orderID)
	if err != nil {
		s.log.Warnf(ctx, "order comments failed order=%s err=%v", orderID, err)
		return []domain.Comment{}, classifyUpstream(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil
}

// checkShop — снимок один на инстанс, поэтому магазин запроса (session token, вебхук)
// обязан совпасть с магазином инстанса. Запрос без магазина обслуживается от имени инстанса.
func (s *OrderCacheService) checkShop(ctx context.Context) error {
	shop, ok := ctxmeta.ShopFromContext(ctx)
	if !ok || (s.opts.Shop != "" && strings.EqualFold(shop, s.opts.Shop)) {
		return nil
	}
	return fmt.Errorf("%w: shop %q is not served by this instance", domain.ErrValidation, shop)
}

func (s *OrderCacheService) withFetchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.FetchTimeout)
}

// classifyUpstream — приводит ошибку upstream к таксономии домена.
func classifyUpstream(err error) error {
	switch {
	case errors.Is(err, domain.ErrUpstreamRejected), errors.Is(err, domain.ErrUpstreamUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
}

// refreshResult — метка исхода для метрик.
func refreshResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrPartialWrite):
		return "write_failed"
	case errors.Is(err, domain.ErrUpstreamRejected):
		return "rejected"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
