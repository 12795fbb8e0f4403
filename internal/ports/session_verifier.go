package ports

import "context"

// SessionVerifier — проверка session token из встроенной админки.
// Возвращает домен магазина, от имени которого пришёл запрос.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (shop string, err error)
}

// AccessTokenSource — offline-токен Admin API для магазина.
type AccessTokenSource interface {
	AccessToken(ctx context.Context, shop string) (string, error)
}
