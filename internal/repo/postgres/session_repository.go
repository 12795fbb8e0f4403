package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
)

var _ ports.SessionRepository = (*SessionRepository)(nil)

// SessionRepository — offline-токены магазинов (таблица shopify_sessions).
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository - конструктор SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Get — сессия магазина или (nil, nil), если её нет.
func (r *SessionRepository) Get(ctx context.Context, shop string) (*domain.ShopSession, error) {
	shop = strings.ToLower(strings.TrimSpace(shop))
	if shop == "" {
		return nil, nil
	}

	var s domain.ShopSession
	err := r.pool.QueryRow(ctx, `
		SELECT shop, access_token, scope, updated_at
		FROM shopify_sessions
		WHERE shop = $1
	`, shop).Scan(&s.Shop, &s.AccessToken, &s.Scope, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

// Save — upsert по shop.
func (r *SessionRepository) Save(ctx context.Context, session *domain.ShopSession) error {
	if session == nil || strings.TrimSpace(session.Shop) == "" {
		return fmt.Errorf("%w: shop is required", domain.ErrValidation)
	}
	if session.AccessToken == "" {
		return fmt.Errorf("%w: access token is required", domain.ErrValidation)
	}
	updated := session.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	if _, err := r.pool.Exec(ctx, `
		INSERT INTO shopify_sessions (shop, access_token, scope, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			scope = EXCLUDED.scope,
			updated_at = EXCLUDED.updated_at
	`, strings.ToLower(strings.TrimSpace(session.Shop)), session.AccessToken, session.Scope, updated); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}
