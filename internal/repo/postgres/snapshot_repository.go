package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
)

var _ ports.SnapshotStore = (*SnapshotRepository)(nil)

// SnapshotRepository — снимок заказов в Postgres.
// Таблицы: order_snapshot_meta (одна строка), order_snapshots, order_snapshot_line_items.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository — конструктор SnapshotRepository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Replace — в одной транзакции удаляет старое поколение, пишет новое и увеличивает номер поколения.
// При любой ошибке транзакция откатывается и в базе остаётся прежнее поколение.
func (r *SnapshotRepository) Replace(ctx context.Context, snap domain.Snapshot) (uint64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	// позиции заказов удаляются каскадом
	if _, err = tx.Exec(ctx, `DELETE FROM order_snapshots`); err != nil {
		return 0, fmt.Errorf("clear orders: %w", err)
	}

	if err = copyOrders(ctx, tx, snap.Orders); err != nil {
		return 0, err
	}
	if err = copyLineItems(ctx, tx, snap.Orders); err != nil {
		return 0, err
	}

	refreshedAt := snap.RefreshedAt
	if refreshedAt.IsZero() {
		refreshedAt = time.Now().UTC()
	}

	var generation int64
	if err = tx.QueryRow(ctx, `
		INSERT INTO order_snapshot_meta (
			id, generation, has_next_page, has_previous_page, start_cursor, end_cursor, orders_count, refreshed_at
		) VALUES (TRUE, 1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			generation = order_snapshot_meta.generation + 1,
			has_next_page = EXCLUDED.has_next_page,
			has_previous_page = EXCLUDED.has_previous_page,
			start_cursor = EXCLUDED.start_cursor,
			end_cursor = EXCLUDED.end_cursor,
			orders_count = EXCLUDED.orders_count,
			refreshed_at = EXCLUDED.refreshed_at
		RETURNING generation
	`,
		snap.Cursor.HasNextPage, snap.Cursor.HasPreviousPage,
		nullText(snap.Cursor.StartCursor), nullText(snap.Cursor.EndCursor),
		len(snap.Orders), refreshedAt,
	).Scan(&generation); err != nil {
		return 0, fmt.Errorf("upsert meta: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return uint64(generation), nil
}

func copyOrders(ctx context.Context, tx pgx.Tx, orders []domain.OrderSnapshot) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(orders))
	for i, o := range orders {
		var custID, custName, custEmail pgtype.Text
		if o.Customer != nil {
			custID = nullText(o.Customer.ID)
			custName = nullText(o.Customer.DisplayName)
			custEmail = nullText(o.Customer.Email)
		}
		rows = append(rows, []any{
			int32(i), o.ID, o.Name, o.CreatedAt, o.UpdatedAt,
			toNumeric(o.TotalPrice.Amount), o.TotalPrice.CurrencyCode,
			o.FinancialStatus, o.FulfillmentStatus,
			custID, custName, custEmail,
		})
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"order_snapshots"},
		[]string{
			"position", "id", "name", "created_at", "updated_at",
			"total_amount", "currency_code",
			"financial_status", "fulfillment_status",
			"customer_id", "customer_display_name", "customer_email",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy orders: %w", err)
	}
	return nil
}

func copyLineItems(ctx context.Context, tx pgx.Tx, orders []domain.OrderSnapshot) error {
	var rows [][]any
	for _, o := range orders {
		for i, li := range o.LineItems {
			attrs := li.CustomAttributes
			if attrs == nil {
				attrs = []domain.Attribute{}
			}
			raw, err := json.Marshal(attrs)
			if err != nil {
				return fmt.Errorf("marshal attributes order=%s: %w", o.ID, err)
			}
			rows = append(rows, []any{
				o.ID, int32(i), li.ID, li.Title, int32(li.Quantity), string(raw),
				nullText(li.VariantID), nullText(li.VariantTitle), toNullNumeric(li.VariantPrice),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"order_snapshot_line_items"},
		[]string{
			"order_id", "position", "id", "title", "quantity", "custom_attributes",
			"variant_id", "variant_title", "variant_price",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy line items: %w", err)
	}
	return nil
}

// Load — последнее записанное поколение; пустой снимок, если записей ещё нет.
// Мета, заказы и позиции читаются в одной read-only транзакции REPEATABLE READ:
// Replace из другого процесса между запросами не смешает два поколения.
func (r *SnapshotRepository) Load(ctx context.Context) (domain.Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	snap, err := loadSnapshot(ctx, tx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Snapshot{}, fmt.Errorf("commit: %w", err)
	}
	return snap, nil
}

func loadSnapshot(ctx context.Context, tx pgx.Tx) (domain.Snapshot, error) {
	snap := domain.Snapshot{Orders: []domain.OrderSnapshot{}}

	var (
		generation           int64
		startCursor, endCurs pgtype.Text
	)
	err := tx.QueryRow(ctx, `
		SELECT generation, has_next_page, has_previous_page, start_cursor, end_cursor, refreshed_at
		FROM order_snapshot_meta
		WHERE id
	`).Scan(&generation, &snap.Cursor.HasNextPage, &snap.Cursor.HasPreviousPage,
		&startCursor, &endCurs, &snap.RefreshedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return snap, nil
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select meta: %w", err)
	}
	snap.Generation = uint64(generation)
	snap.Cursor.StartCursor = startCursor.String
	snap.Cursor.EndCursor = endCurs.String
	snap.RefreshedAt = snap.RefreshedAt.UTC()

	// 1) Заказы в порядке страницы.
	oRows, err := tx.Query(ctx, `
		SELECT id, name, created_at, updated_at, total_amount, currency_code,
			financial_status, fulfillment_status,
			customer_id, customer_display_name, customer_email
		FROM order_snapshots
		ORDER BY position
	`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select orders: %w", err)
	}
	byID := make(map[string]int)
	for oRows.Next() {
		var (
			o                         domain.OrderSnapshot
			amount                    pgtype.Numeric
			custID, custName, custEml pgtype.Text
		)
		if err := oRows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt, &amount, &o.TotalPrice.CurrencyCode,
			&o.FinancialStatus, &o.FulfillmentStatus, &custID, &custName, &custEml); err != nil {
			oRows.Close()
			return domain.Snapshot{}, fmt.Errorf("scan order: %w", err)
		}
		o.CreatedAt = o.CreatedAt.UTC()
		o.UpdatedAt = o.UpdatedAt.UTC()
		o.TotalPrice.Amount = fromNumeric(amount)
		if custID.Valid {
			o.Customer = &domain.CustomerRef{ID: custID.String, DisplayName: custName.String, Email: custEml.String}
		}
		o.LineItems = []domain.LineItem{}
		byID[o.ID] = len(snap.Orders)
		snap.Orders = append(snap.Orders, o)
	}
	if err := oRows.Err(); err != nil {
		oRows.Close()
		return domain.Snapshot{}, fmt.Errorf("orders rows: %w", err)
	}
	oRows.Close()

	// 2) Позиции всех заказов разом.
	iRows, err := tx.Query(ctx, `
		SELECT order_id, id, title, quantity, custom_attributes, variant_id, variant_title, variant_price
		FROM order_snapshot_line_items
		ORDER BY order_id, position
	`)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("select line items: %w", err)
	}
	defer iRows.Close()
	for iRows.Next() {
		var (
			orderID                 string
			li                      domain.LineItem
			attrs                   []byte
			variantID, variantTitle pgtype.Text
			variantPrice            pgtype.Numeric
		)
		if err := iRows.Scan(&orderID, &li.ID, &li.Title, &li.Quantity, &attrs,
			&variantID, &variantTitle, &variantPrice); err != nil {
			return domain.Snapshot{}, fmt.Errorf("scan line item: %w", err)
		}
		if err := json.Unmarshal(attrs, &li.CustomAttributes); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode attributes order=%s: %w", orderID, err)
		}
		if li.CustomAttributes == nil {
			li.CustomAttributes = []domain.Attribute{}
		}
		li.VariantID = variantID.String
		li.VariantTitle = variantTitle.String
		li.VariantPrice = fromNullNumeric(variantPrice)

		if idx, ok := byID[orderID]; ok {
			snap.Orders[idx].LineItems = append(snap.Orders[idx].LineItems, li)
		}
	}
	if err := iRows.Err(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("line items rows: %w", err)
	}

	return snap, nil
}

// Clear — удалить снимок вместе с метаданными; следующий Replace начнёт с поколения 1.
func (r *SnapshotRepository) Clear(ctx context.Context) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM order_snapshots`); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM order_snapshot_meta`); err != nil {
		return fmt.Errorf("clear meta: %w", err)
	}
	return tx.Commit(ctx)
}

// SnapshotStats — сводка по сохранённому поколению (для diagnose).
type SnapshotStats struct {
	Generation  uint64
	OrdersCount int
	LineItems   int
	RefreshedAt time.Time
}

// Stats — сводка без загрузки заказов; нулевая структура, если снимка нет.
func (r *SnapshotRepository) Stats(ctx context.Context) (SnapshotStats, error) {
	var (
		st         SnapshotStats
		generation int64
	)
	err := r.pool.QueryRow(ctx, `
		SELECT m.generation, m.orders_count, m.refreshed_at,
			(SELECT count(*) FROM order_snapshot_line_items)
		FROM order_snapshot_meta m
		WHERE m.id
	`).Scan(&generation, &st.OrdersCount, &st.RefreshedAt, &st.LineItems)
	if errors.Is(err, pgx.ErrNoRows) {
		return SnapshotStats{}, nil
	}
	if err != nil {
		return SnapshotStats{}, fmt.Errorf("select stats: %w", err)
	}
	st.Generation = uint64(generation)
	st.RefreshedAt = st.RefreshedAt.UTC()
	return st, nil
}
