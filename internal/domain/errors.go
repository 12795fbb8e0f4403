package domain

import "errors"

var (
	// ErrUpstreamUnavailable — сеть/транспорт/таймаут/5xx при обращении к Shopify.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamRejected — Shopify вернул корректный ответ с ошибкой (или данные не прошли проверку).
	ErrUpstreamRejected = errors.New("upstream rejected request")
	// ErrPartialWrite — не удалось записать новое поколение снимка в хранилище.
	ErrPartialWrite = errors.New("snapshot write failed")
	// ErrValidation — некорректный вход триггера.
	ErrValidation = errors.New("validation failed")
	// ErrSessionNotFound — для магазина нет сохранённого токена доступа.
	ErrSessionNotFound = errors.New("shop session not found")
)

// IsRetryable — можно ли повторить операцию позже с надеждой на успех.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrPartialWrite)
}
