package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/Gunvolt24/shop_admin/internal/domain"
	"github.com/Gunvolt24/shop_admin/internal/ports"
	"github.com/golang-jwt/jwt/v5"
)

var _ ports.SessionVerifier = (*SessionVerifier)(nil)

var (
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrExpiredSessionToken = errors.New("session token expired")
)

// sessionClaims — payload session token App Bridge.
// iss: https://{shop}/admin, dest: https://{shop}, aud: API key приложения.
type sessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// SessionVerifier проверяет session token встроенной админки (HS256, секрет приложения).
type SessionVerifier struct {
	apiKey string
	secret []byte
	leeway time.Duration
}

func NewSessionVerifier(apiKey, apiSecret string) *SessionVerifier {
	return &SessionVerifier{apiKey: apiKey, secret: []byte(apiSecret), leeway: 5 * time.Second}
}

// Verify — подпись, aud, exp/nbf, совпадение iss и dest. Возвращает домен магазина.
func (v *SessionVerifier) Verify(_ context.Context, token string) (string, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidSessionToken
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(v.apiKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredSessionToken
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidSessionToken, err)
	}
	if !parsed.Valid {
		return "", ErrInvalidSessionToken
	}

	shop, err := shopHost(claims.Dest)
	if err != nil {
		return "", fmt.Errorf("%w: dest: %w", ErrInvalidSessionToken, err)
	}
	issuer, err := shopHost(claims.Issuer)
	if err != nil || issuer != shop {
		return "", fmt.Errorf("%w: iss does not match dest", ErrInvalidSessionToken)
	}
	return shop, nil
}

// shopHost — хост *.myshopify.com из URL вида https://shop.myshopify.com[/admin].
func shopHost(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return domain.NormalizeShopDomain(u.Hostname())
}
